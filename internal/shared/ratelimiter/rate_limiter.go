// Package ratelimiter は取引所APIへのリクエスト頻度を抑えるための
// シンプルな固定ウィンドウ式リミッターを提供します。
package ratelimiter

import (
	"log/slog"
	"time"
)

// Limiter は一定のウィンドウ内で許可するリクエスト数を制限します。
// 上限に達した場合、ウィンドウが明けるまでブロックします。
// シーケンシャルなインポートループから使う前提のため、ロックは持ちません。
type Limiter struct {
	limit       int           // 1ウィンドウあたりの上限
	window      time.Duration // リセット単位
	count       int
	windowStart time.Time
}

// New は指定された上限とウィンドウでLimiterを生成します。
func New(limit int, window time.Duration) *Limiter {
	return &Limiter{
		limit:       limit,
		window:      window,
		windowStart: time.Now(),
	}
}

// WaitIfNeeded は現在のウィンドウで上限に達している場合、
// 次のウィンドウが始まるまでブロックします。
func (l *Limiter) WaitIfNeeded() {
	now := time.Now()
	if now.Sub(l.windowStart) >= l.window {
		l.count = 0
		l.windowStart = now
	}

	l.count++
	if l.count > l.limit {
		sleep := l.window - now.Sub(l.windowStart)
		if sleep > 0 {
			slog.Info("request budget exhausted, pausing", "limit", l.limit, "sleep", sleep)
			time.Sleep(sleep)
		}
		l.count = 1
		l.windowStart = time.Now()
	}
}
