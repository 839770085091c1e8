// Package schedule は日次実行時刻の計算とキャンセル可能な待機を提供します。
package schedule

import (
	"context"
	"fmt"
	"time"
)

// DailyTime は毎日の実行時刻（ローカルタイム、24時間表記）を表します。
type DailyTime struct {
	Hour   int
	Minute int
}

// ParseDailyTime は"HH:MM"形式（24時間表記）の文字列をDailyTimeにパースします。
// "25:00"や"9:99"のような不正な値はエラーを返します。
func ParseDailyTime(s string) (DailyTime, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return DailyTime{}, fmt.Errorf("invalid time %q: must be HH:MM (24-hour)", s)
	}
	return DailyTime{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func (d DailyTime) String() string {
	return fmt.Sprintf("%02d:%02d", d.Hour, d.Minute)
}

// Next はnow以降で最初にDailyTimeを迎える時刻を返します。
// 本日の指定時刻がまだ先であれば本日、過ぎていれば翌日になります。
func (d DailyTime) Next(now time.Time) time.Time {
	target := time.Date(now.Year(), now.Month(), now.Day(), d.Hour, d.Minute, 0, 0, now.Location())
	if !target.After(now) {
		target = target.AddDate(0, 0, 1)
	}
	return target
}

// UntilNext は次にDailyTimeを迎えるまでの待機時間を返します。
// 戻り値は常に正で、24時間以下です。
func (d DailyTime) UntilNext(now time.Time) time.Duration {
	return d.Next(now).Sub(now)
}

// Sleep はdの間ブロックします。ctxがキャンセルされた場合は
// 直ちにctx.Err()を返します。プロセス割り込みで眠りを破る唯一の手段です。
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
