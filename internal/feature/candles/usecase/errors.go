// Package usecase はヒストリカルキャンドルのインポートロジックを実装します。
package usecase

import "errors"

var (
	// ErrRateLimited is returned when the exchange signalled HTTP 429 (or a
	// ban response). Callers back off briefly and retry the same pair.
	ErrRateLimited = errors.New("rate limited by exchange")

	// ErrConnectivity is returned for transport failures and server-side
	// errors. Callers back off longer and retry the same pair.
	ErrConnectivity = errors.New("exchange connection failed")
)
