// Package runner はインポートデーモンのライフサイクルを所有します。
// サイクルのスケジューリング、ペアごとのインポート、失敗時のリトライを
// 単一のシーケンシャルなループとして駆動します。
package runner

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"candle_importer/internal/feature/candles/usecase"
	"candle_importer/internal/feature/symbols/domain/entity"
	"candle_importer/internal/shared/exchange"
	"candle_importer/internal/shared/schedule"
)

// リトライポリシー。エラー種別ごとに名前付きのバックオフを持ちます。
const (
	// rateLimitBackoff はHTTP 429系の失敗後に待つ時間です。
	rateLimitBackoff = 60 * time.Second
	// networkBackoff はそれ以外の接続系失敗後に待つ時間です。
	networkBackoff = 300 * time.Second
	// retryDelay は失敗した試行とリトライの間に必ず挟む短い待機です。
	// 失敗種別ごとのバックオフとは独立に適用されます。
	retryDelay = 5 * time.Second
	// defaultCycleInterval は--time未指定時のサイクル間隔です。
	defaultCycleInterval = 24 * time.Hour
)

// PairSource は現在DBに存在する(取引所, シンボル)ペアの集合を返します。
// サイクルごとに呼び出され、結果はそのサイクル内でのみ使われます。
type PairSource interface {
	ListPairs(ctx context.Context) ([]entity.Pair, error)
}

// CandleImporter は1ペア分のヒストリカルキャンドルをインポートします。
// 遅く、レートリミットされうる操作として扱います。観測可能な結果は
// 成功か、接続系エラー（usecase.ErrRateLimited / usecase.ErrConnectivity）のみです。
type CandleImporter interface {
	Import(ctx context.Context, ex exchange.ID, symbol string, start time.Time, showProgress bool) error
}

// Config は起動時に一度だけ組み立てられる実行設定です。以後変更されません。
type Config struct {
	RunNow       bool                // 初回の待機をスキップして直ちに実行する
	DailyAt      *schedule.DailyTime // 毎日の固定実行時刻。nilなら24時間間隔
	StartDate    time.Time           // インポートの開始日
	ShowProgress bool
}

// Runner は無限のインポートループを駆動します。
type Runner struct {
	cfg      Config
	pairs    PairSource
	importer CandleImporter

	// テストから差し替えるためのフック。
	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
}

// New は新しいRunnerを生成します。
func New(cfg Config, pairs PairSource, importer CandleImporter) *Runner {
	return &Runner{
		cfg:      cfg,
		pairs:    pairs,
		importer: importer,
		sleep:    schedule.Sleep,
		now:      time.Now,
	}
}

// Run は初回の待機のあと、外部から割り込まれるまでサイクルを繰り返します。
// ctxのキャンセル以外でreturnすることはありません。
func (r *Runner) Run(ctx context.Context) error {
	if err := r.waitForFirstCycle(ctx); err != nil {
		return err
	}
	for {
		if err := r.runCycle(ctx); err != nil {
			return err
		}
		if err := r.sleepUntilNextCycle(ctx); err != nil {
			return err
		}
	}
}

// waitForFirstCycle は起動時の初回待機を行います。--timeが指定されていて
// --nowが指定されていない場合のみ、次の指定時刻までブロックします。
func (r *Runner) waitForFirstCycle(ctx context.Context) error {
	if r.cfg.DailyAt != nil && !r.cfg.RunNow {
		slog.Info("daily time configured, waiting for the first run", "at", r.cfg.DailyAt.String())
		return r.sleepUntil(ctx, *r.cfg.DailyAt)
	}
	if r.cfg.RunNow {
		slog.Info("--now provided, starting immediately")
	} else {
		slog.Info("no daily time configured, running now and every 24 hours")
	}
	return nil
}

// runCycle は1サイクル分の処理を行います。ペア一覧を取得し、
// ペアごとにインポートを成功するまでリトライします。
func (r *Runner) runCycle(ctx context.Context) error {
	started := r.now()
	slog.Info("cycle started")

	pairs, err := r.listPairs(ctx)
	if err != nil {
		return err
	}
	slog.Info("loaded symbol pairs from db", "count", len(pairs))

	imported := 0
	for _, p := range pairs {
		ex, ok := exchange.Resolve(p.Exchange)
		if !ok {
			slog.Warn("unknown exchange, skipping pair", "exchange", p.Exchange, "symbol", p.Symbol)
			continue
		}
		if err := r.importPair(ctx, ex, p.Symbol); err != nil {
			return err
		}
		imported++
	}

	slog.Info("cycle complete", "imported", imported, "skipped", len(pairs)-imported,
		"elapsed", r.now().Sub(started).Round(time.Second))
	return nil
}

// listPairs はペア一覧の取得をDB接続の失敗に耐えるように繰り返します。
func (r *Runner) listPairs(ctx context.Context) ([]entity.Pair, error) {
	for {
		pairs, err := r.pairs.ListPairs(ctx)
		if err == nil {
			return pairs, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		slog.Warn("failed to load symbol pairs, retrying", "backoff", networkBackoff, "error", err)
		if err := r.sleep(ctx, networkBackoff); err != nil {
			return nil, err
		}
	}
}

// importPair は1ペアのインポートを成功するまでリトライします。
// リトライ回数に上限はなく、失敗し続けるペアはサイクル全体をブロックします。
func (r *Runner) importPair(ctx context.Context, ex exchange.ID, symbol string) error {
	for attempt := 1; ; attempt++ {
		slog.Info("importing candles", "exchange", ex, "symbol", symbol, "attempt", attempt)

		err := r.importer.Import(ctx, ex, symbol, r.cfg.StartDate, r.cfg.ShowProgress)
		if err == nil {
			slog.Info("finished importing candles", "exchange", ex, "symbol", symbol)
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		backoff := classify(err)
		if backoff == rateLimitBackoff {
			slog.Warn("rate limit exceeded, backing off", "exchange", ex, "symbol", symbol,
				"backoff", backoff, "error", err)
		} else {
			slog.Warn("import failed, backing off", "exchange", ex, "symbol", symbol,
				"backoff", backoff, "error", err)
		}
		if err := r.sleep(ctx, backoff); err != nil {
			return err
		}
		if err := r.sleep(ctx, retryDelay); err != nil {
			return err
		}
	}
}

// classify はエラー種別から適用するバックオフを決めます。
// 接続系と断定できないエラーもクラッシュさせず、長い方のバックオフで扱います。
func classify(err error) time.Duration {
	if errors.Is(err, usecase.ErrRateLimited) {
		return rateLimitBackoff
	}
	return networkBackoff
}

// sleepUntilNextCycle はサイクル間の待機を行います。
func (r *Runner) sleepUntilNextCycle(ctx context.Context) error {
	if r.cfg.DailyAt != nil {
		d := r.cfg.DailyAt.UntilNext(r.now())
		slog.Info("sleeping until next run", "at", r.cfg.DailyAt.String(), "seconds", int(d.Seconds()))
		return r.sleep(ctx, d)
	}
	slog.Info("sleeping for 24 hours")
	return r.sleep(ctx, defaultCycleInterval)
}

func (r *Runner) sleepUntil(ctx context.Context, at schedule.DailyTime) error {
	d := at.UntilNext(r.now())
	slog.Info("sleeping", "until", at.String(), "seconds", int(d.Seconds()))
	return r.sleep(ctx, d)
}
