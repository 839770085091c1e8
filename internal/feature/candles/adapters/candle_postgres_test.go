package adapters

import (
	"context"
	"testing"
	"time"

	"candle_importer/internal/feature/candles/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB prepares an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to initialize test database")

	err = db.AutoMigrate(&CandleModel{})
	require.NoError(t, err, "failed to migrate table")

	return db
}

func makeCandle(exchange, symbol string, at time.Time, close float64) entity.Candle {
	return entity.Candle{
		Exchange: exchange,
		Symbol:   symbol,
		Time:     at,
		Open:     100.0,
		High:     110.0,
		Low:      90.0,
		Close:    close,
		Volume:   12.5,
	}
}

func TestNewCandleRepository(t *testing.T) {
	db := setupTestDB(t)

	repo := NewCandleRepository(db)

	assert.NotNil(t, repo, "repository is nil")
	assert.NotNil(t, repo.db, "database connection is nil")
}

func TestCandlePostgres_UpsertBatch(t *testing.T) {
	t.Parallel()

	baseTime := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ctx := context.Background()

	t.Run("success: insert new candles", func(t *testing.T) {
		t.Parallel()
		db := setupTestDB(t)
		repo := NewCandleRepository(db)

		candles := []entity.Candle{
			makeCandle("Binance Spot", "BTC-USDT", baseTime, 105.0),
			makeCandle("Binance Spot", "BTC-USDT", baseTime.Add(time.Minute), 106.0),
		}
		require.NoError(t, repo.UpsertBatch(ctx, candles))

		var count int64
		require.NoError(t, db.Model(&CandleModel{}).Count(&count).Error)
		assert.Equal(t, int64(2), count)
	})

	t.Run("success: conflicting rows are updated, not duplicated", func(t *testing.T) {
		t.Parallel()
		db := setupTestDB(t)
		repo := NewCandleRepository(db)

		first := makeCandle("Binance Spot", "BTC-USDT", baseTime, 105.0)
		require.NoError(t, repo.UpsertBatch(ctx, []entity.Candle{first}))

		revised := first
		revised.Close = 999.0
		require.NoError(t, repo.UpsertBatch(ctx, []entity.Candle{revised}))

		var rows []CandleModel
		require.NoError(t, db.Find(&rows).Error)
		require.Len(t, rows, 1)
		assert.Equal(t, 999.0, rows[0].Close)
	})

	t.Run("success: same time on different exchanges stays separate", func(t *testing.T) {
		t.Parallel()
		db := setupTestDB(t)
		repo := NewCandleRepository(db)

		candles := []entity.Candle{
			makeCandle("Binance Spot", "BTC-USDT", baseTime, 105.0),
			makeCandle("Binance Perpetual Futures", "BTC-USDT", baseTime, 106.0),
		}
		require.NoError(t, repo.UpsertBatch(ctx, candles))

		var count int64
		require.NoError(t, db.Model(&CandleModel{}).Count(&count).Error)
		assert.Equal(t, int64(2), count)
	})

	t.Run("success: empty batch is a no-op", func(t *testing.T) {
		t.Parallel()
		db := setupTestDB(t)
		repo := NewCandleRepository(db)

		require.NoError(t, repo.UpsertBatch(ctx, nil))
	})
}

func TestCandlePostgres_LatestTime(t *testing.T) {
	t.Parallel()

	baseTime := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ctx := context.Background()

	t.Run("success: returns the newest stored candle time", func(t *testing.T) {
		t.Parallel()
		db := setupTestDB(t)
		repo := NewCandleRepository(db)

		candles := []entity.Candle{
			makeCandle("Binance Spot", "BTC-USDT", baseTime, 105.0),
			makeCandle("Binance Spot", "BTC-USDT", baseTime.Add(2*time.Minute), 107.0),
			makeCandle("Binance Spot", "BTC-USDT", baseTime.Add(time.Minute), 106.0),
		}
		require.NoError(t, repo.UpsertBatch(ctx, candles))

		latest, ok, err := repo.LatestTime(ctx, "Binance Spot", "BTC-USDT")
		require.NoError(t, err)
		require.True(t, ok)
		assert.True(t, latest.Equal(baseTime.Add(2*time.Minute)), "latest = %v", latest)
	})

	t.Run("success: no rows for the pair", func(t *testing.T) {
		t.Parallel()
		db := setupTestDB(t)
		repo := NewCandleRepository(db)

		_, ok, err := repo.LatestTime(ctx, "Binance Spot", "BTC-USDT")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("success: other pairs do not leak in", func(t *testing.T) {
		t.Parallel()
		db := setupTestDB(t)
		repo := NewCandleRepository(db)

		require.NoError(t, repo.UpsertBatch(ctx, []entity.Candle{
			makeCandle("Binance Spot", "ETH-USDT", baseTime.Add(time.Hour), 105.0),
		}))

		_, ok, err := repo.LatestTime(ctx, "Binance Spot", "BTC-USDT")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
