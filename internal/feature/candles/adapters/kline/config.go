// Package kline provides a REST client for Binance-style kline endpoints.
package kline

import (
	"time"

	"candle_importer/internal/shared/exchange"
)

// Config holds configuration for the kline client.
type Config struct {
	Endpoints map[exchange.ID]string // kline endpoint per exchange
	Timeout   time.Duration          // HTTP request timeout
}

// DefaultConfig returns the production endpoints for every known exchange.
func DefaultConfig() Config {
	return Config{
		Endpoints: map[exchange.ID]string{
			exchange.BinanceSpot:             "https://api.binance.com/api/v3/klines",
			exchange.BinanceUSSpot:           "https://api.binance.us/api/v3/klines",
			exchange.BinancePerpetualFutures: "https://fapi.binance.com/fapi/v1/klines",
		},
		Timeout: 30 * time.Second,
	}
}
