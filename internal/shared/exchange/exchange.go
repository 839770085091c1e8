// Package exchange はインポート対象として既知の取引所の識別子を定義します。
package exchange

import (
	"strings"
	"unicode"
)

// ID はインポートドライバが理解する取引所の正規識別子です。
type ID string

const (
	BinanceSpot             ID = "Binance Spot"
	BinanceUSSpot           ID = "Binance US Spot"
	BinancePerpetualFutures ID = "Binance Perpetual Futures"
)

// All は既知の取引所の閉じた集合です。candleテーブルのexchange列は
// 正規化の上でこの集合のいずれかに対応していなければなりません。
var All = []ID{
	BinanceSpot,
	BinanceUSSpot,
	BinancePerpetualFutures,
}

// byKey は正規化キー → ID の静的な対応表です。起動時に一度だけ構築します。
var byKey = func() map[string]ID {
	m := make(map[string]ID, len(All))
	for _, id := range All {
		m[Normalize(string(id))] = id
	}
	return m
}()

// Normalize は取引所名から英数字以外をすべて取り除き、大文字化します。
// "Binance Perpetual Futures"、"binance-perpetual-futures"、
// "BINANCE_PERPETUAL_FUTURES" はいずれも同じキーになります。
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return b.String()
}

// Resolve はDBに保存された生の取引所名を正規識別子に解決します。
// 対応がない場合は ok=false を返します。エラーにはなりません。
func Resolve(raw string) (ID, bool) {
	id, ok := byKey[Normalize(raw)]
	return id, ok
}
