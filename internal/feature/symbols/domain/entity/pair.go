// Package entity defines the domain models for the symbols feature.
package entity

import "strings"

// Pair identifies one importable market: the raw exchange name as stored in
// the candle table plus the symbol in dashy form.
type Pair struct {
	Exchange string // e.g. "Binance Perpetual Futures"
	Symbol   string // e.g. "BTC-USDT"
}

// quoteAssets はdashy変換で使用する既知のクオート通貨です。
// 長いものから順に照合するため、並び順に意味があります（USDTをUSDより先に）。
var quoteAssets = []string{
	"USDT", "USDC", "BUSD", "FDUSD", "TUSD",
	"USD", "BTC", "ETH", "BNB",
	"EUR", "GBP", "TRY", "JPY", "DAI",
}

// DashySymbol はDBに保存されたシンボルをインポートドライバが期待する
// dashy形式に変換します（例: "BTCUSDT" → "BTC-USDT"）。
// すでにダッシュを含む場合はそのまま返します。既知のクオート通貨で
// 終わらない場合は、先頭3文字の後ろにダッシュを挿入します。
func DashySymbol(symbol string) string {
	if strings.Contains(symbol, "-") {
		return symbol
	}
	for _, quote := range quoteAssets {
		if symbol == quote {
			return symbol
		}
		if len(symbol) > len(quote) && strings.HasSuffix(symbol, quote) {
			return symbol[:len(symbol)-len(quote)] + "-" + quote
		}
	}
	if len(symbol) <= 3 {
		return symbol
	}
	return symbol[:3] + "-" + symbol[3:]
}
