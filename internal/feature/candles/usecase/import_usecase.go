package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"candle_importer/internal/feature/candles/domain/entity"
	"candle_importer/internal/shared/exchange"
)

const (
	// DefaultPageSize は1リクエストで取得するキャンドル件数です（Binanceのklines上限）。
	DefaultPageSize = 1000
	// candleInterval はインポート対象の足の間隔です。
	candleInterval = time.Minute
)

// KlineSource は取引所からキャンドルを1ページ分取得するリポジトリの
// インターフェイスです。外部APIの実装を抽象化します。
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type KlineSource interface {
	Fetch(ctx context.Context, ex exchange.ID, symbol string, from time.Time, limit int) ([]entity.Candle, error)
}

// CandleRepository はキャンドルの永続化レイヤーを抽象化します。
type CandleRepository interface {
	// UpsertBatch はキャンドルを一括で挿入（または更新）します。
	UpsertBatch(ctx context.Context, candles []entity.Candle) error
	// LatestTime は保存済みの最新キャンドル時刻を返します。
	// 1件も無い場合は ok=false を返します。
	LatestTime(ctx context.Context, exchangeID, symbol string) (time.Time, bool, error)
}

// RateLimiter はページリクエストの間隔を制御します。
type RateLimiter interface {
	WaitIfNeeded()
}

// ImportUsecase は1ペア分のヒストリカルキャンドルを開始日から現在まで
// ページ単位で取得し、データベースに永続化するユースケースです。
type ImportUsecase struct {
	source      KlineSource
	candle      CandleRepository
	rateLimiter RateLimiter
	pageSize    int
	now         func() time.Time
}

// NewImportUsecase は新しいImportUsecaseを作成します。
func NewImportUsecase(source KlineSource, candle CandleRepository, rateLimiter RateLimiter, pageSize int) *ImportUsecase {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &ImportUsecase{
		source:      source,
		candle:      candle,
		rateLimiter: rateLimiter,
		pageSize:    pageSize,
		now:         time.Now,
	}
}

// Import は指定ペアのキャンドルをstartから追いつくまでインポートします。
// 保存済みデータがあればその続きから再開します。接続系の失敗は
// ErrRateLimited / ErrConnectivityとして呼び出し側に分類済みで返ります。
func (iu *ImportUsecase) Import(ctx context.Context, ex exchange.ID, symbol string, start time.Time, showProgress bool) error {
	from := start

	latest, ok, err := iu.candle.LatestTime(ctx, string(ex), symbol)
	if err != nil {
		return fmt.Errorf("query latest candle: %w", err)
	}
	if ok && latest.Add(candleInterval).After(from) {
		// 途中まで取り込み済み。続きから再開する
		from = latest.Add(candleInterval)
	}

	for {
		if from.After(iu.now()) {
			return nil
		}

		iu.rateLimiter.WaitIfNeeded()
		cs, err := iu.source.Fetch(ctx, ex, symbol, from, iu.pageSize)
		if err != nil {
			return err
		}
		if len(cs) == 0 {
			return nil
		}

		// 取得したデータに取引所とシンボルを設定
		for i := range cs {
			cs[i].Exchange = string(ex)
			cs[i].Symbol = symbol
		}
		if err := iu.candle.UpsertBatch(ctx, cs); err != nil {
			return fmt.Errorf("store candles: %w", err)
		}

		last := cs[len(cs)-1].Time
		if showProgress {
			slog.Info("import progress", "exchange", ex, "symbol", symbol,
				"through", last.Format("2006-01-02 15:04"), "stored", len(cs))
		}

		if len(cs) < iu.pageSize {
			// 最終ページまで取得済み
			return nil
		}
		from = last.Add(candleInterval)
	}
}
