package adapters

import (
	"context"
	"errors"
	"time"

	"candle_importer/internal/feature/candles/domain/entity"
	"candle_importer/internal/feature/candles/usecase"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type candlePostgres struct {
	db *gorm.DB
}

var _ usecase.CandleRepository = (*candlePostgres)(nil)

func NewCandleRepository(db *gorm.DB) *candlePostgres {
	return &candlePostgres{db: db}
}

type CandleModel struct {
	ID       uint      `gorm:"primaryKey"`
	Exchange string    `gorm:"size:64;not null;uniqueIndex:candle_exch_sym_time,priority:1"`
	Symbol   string    `gorm:"size:32;not null;uniqueIndex:candle_exch_sym_time,priority:2"`
	Time     time.Time `gorm:"not null;uniqueIndex:candle_exch_sym_time,priority:3"`

	Open   float64 `gorm:"not null"`
	High   float64 `gorm:"not null"`
	Low    float64 `gorm:"not null"`
	Close  float64 `gorm:"not null"`
	Volume float64 `gorm:"not null;default:0"`
}

func (CandleModel) TableName() string {
	return "candle"
}

func toModel(e entity.Candle) CandleModel {
	return CandleModel{
		Exchange: e.Exchange,
		Symbol:   e.Symbol,
		Time:     e.Time,
		Open:     e.Open,
		High:     e.High,
		Low:      e.Low,
		Close:    e.Close,
		Volume:   e.Volume,
	}
}

func (r *candlePostgres) UpsertBatch(ctx context.Context, candles []entity.Candle) error {
	if len(candles) == 0 {
		return nil
	}
	ms := make([]CandleModel, 0, len(candles))
	for _, e := range candles {
		ms = append(ms, toModel(e))
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "exchange"}, {Name: "symbol"}, {Name: "time"}},
		DoUpdates: clause.AssignmentColumns([]string{"open", "high", "low", "close", "volume"}),
	}).Create(&ms).Error
}

// LatestTime は指定ペアの保存済み最新キャンドル時刻を返します。
// 1件も無い場合は ok=false を返します。
func (r *candlePostgres) LatestTime(ctx context.Context, exchangeID, symbol string) (time.Time, bool, error) {
	var row CandleModel
	err := r.db.WithContext(ctx).
		Where("exchange = ? AND symbol = ?", exchangeID, symbol).
		Order("time DESC").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return row.Time, true, nil
}
