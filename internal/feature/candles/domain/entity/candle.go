// Package entity defines the domain models for the candles feature.
package entity

import "time"

// Candle represents one OHLCV (Open, High, Low, Close, Volume) aggregate
// for a symbol on an exchange over a fixed one-minute bucket.
type Candle struct {
	Exchange string    // Canonical exchange identifier (e.g. "Binance Perpetual Futures")
	Symbol   string    // Symbol in dashy form (e.g. "BTC-USDT")
	Time     time.Time // Open time of the candle bucket
	Open     float64   // Opening price
	High     float64   // Highest price during this bucket
	Low      float64   // Lowest price during this bucket
	Close    float64   // Closing price
	Volume   float64   // Traded base-asset volume
}
