// Package adapters はsymbolsフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"fmt"

	"candle_importer/internal/app/runner"
	"candle_importer/internal/feature/symbols/domain/entity"

	"github.com/jackc/pgx/v5"
)

// listPairsQuery はcandleテーブルに現在存在する(取引所, シンボル)の
// 組をすべて返します。
const listPairsQuery = `SELECT DISTINCT candle.exchange, candle.symbol FROM candle GROUP BY candle.exchange, candle.symbol`

// pairPostgres はPairSourceインターフェースのPostgreSQL実装です。
// 接続はサイクルごとに張り直します。クエリは1回だけなのでプールは持ちません。
type pairPostgres struct {
	connString string
}

var _ runner.PairSource = (*pairPostgres)(nil)

// NewPairSource は指定された接続文字列でpairPostgresの新しいインスタンスを生成します。
func NewPairSource(connString string) *pairPostgres {
	return &pairPostgres{connString: connString}
}

// ListPairs は接続を開き、ペア一覧を1回のクエリで取得して接続を閉じます。
// シンボルはdashy形式に変換して返します。
func (r *pairPostgres) ListPairs(ctx context.Context) ([]entity.Pair, error) {
	conn, err := pgx.Connect(ctx, r.connString)
	if err != nil {
		return nil, fmt.Errorf("connect candle db: %w", err)
	}
	defer conn.Close(ctx)

	rows, err := conn.Query(ctx, listPairsQuery)
	if err != nil {
		return nil, fmt.Errorf("query symbol pairs: %w", err)
	}
	defer rows.Close()

	var pairs []entity.Pair
	for rows.Next() {
		var exchangeName, symbol string
		if err := rows.Scan(&exchangeName, &symbol); err != nil {
			return nil, fmt.Errorf("scan symbol pair: %w", err)
		}
		pairs = append(pairs, entity.Pair{
			Exchange: exchangeName,
			Symbol:   entity.DashySymbol(symbol),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read symbol pairs: %w", err)
	}
	return pairs, nil
}
