package entity

import "testing"

func TestDashySymbol(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain USDT pair",
			input: "BTCUSDT",
			want:  "BTC-USDT",
		},
		{
			name:  "quote asset with common prefix: USDT wins over USD",
			input: "ETHUSDT",
			want:  "ETH-USDT",
		},
		{
			name:  "USD quoted pair",
			input: "BTCUSD",
			want:  "BTC-USD",
		},
		{
			name:  "BTC quoted pair",
			input: "ETHBTC",
			want:  "ETH-BTC",
		},
		{
			name:  "long base asset",
			input: "1000SHIBUSDT",
			want:  "1000SHIB-USDT",
		},
		{
			name:  "already dashy: unchanged",
			input: "BTC-USDT",
			want:  "BTC-USDT",
		},
		{
			name:  "unknown quote: dash after first three characters",
			input: "BTCXYZ",
			want:  "BTC-XYZ",
		},
		{
			name:  "too short to split",
			input: "BTC",
			want:  "BTC",
		},
		{
			name:  "quote asset alone is not a pair",
			input: "USDT",
			want:  "USDT",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DashySymbol(tc.input); got != tc.want {
				t.Errorf("DashySymbol(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}
