package kline

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"candle_importer/internal/feature/candles/domain/entity"
	"candle_importer/internal/feature/candles/usecase"
	"candle_importer/internal/shared/exchange"
)

// Client は取引所のklines APIから1分足キャンドルを取得するKlineSource実装です。
// 対応する取引所（exchange.All）はいずれも同じBinance形式のレスポンスを返します。
type Client struct {
	cfg    Config
	client *http.Client
}

// ClientがKlineSourceを実装していることをコンパイル時に検証します。
var _ usecase.KlineSource = (*Client)(nil)

// New は指定された設定とHTTPクライアントでClientの新しいインスタンスを生成します。
func New(cfg Config, client *http.Client) *Client {
	return &Client{cfg: cfg, client: client}
}

// Fetch はfrom以降の1分足キャンドルを最大limit件取得します。
// 失敗は呼び出し側がリトライ方針を選べるように
// usecase.ErrRateLimited / usecase.ErrConnectivityに分類して返します。
func (c *Client) Fetch(ctx context.Context, ex exchange.ID, symbol string, from time.Time, limit int) ([]entity.Candle, error) {
	base, ok := c.cfg.Endpoints[ex]
	if !ok {
		return nil, fmt.Errorf("kline: no endpoint configured for exchange %q", ex)
	}

	q := url.Values{}
	// クエリパラメータを追加。シンボルはdashy形式から取引所形式に戻す
	q.Set("symbol", strings.ReplaceAll(symbol, "-", ""))
	q.Set("interval", "1m")
	q.Set("startTime", strconv.FormatInt(from.UnixMilli(), 10))
	q.Set("limit", strconv.Itoa(limit))

	u := fmt.Sprintf("%s?%s", base, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	res, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", usecase.ErrConnectivity, err)
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusTooManyRequests || res.StatusCode == http.StatusTeapot:
		// Binanceは429の無視が続くと418でBANを予告する
		return nil, fmt.Errorf("%w: http %d from %s", usecase.ErrRateLimited, res.StatusCode, ex)
	case res.StatusCode >= 500:
		return nil, fmt.Errorf("%w: http %d from %s", usecase.ErrConnectivity, res.StatusCode, ex)
	case res.StatusCode >= 400:
		return nil, fmt.Errorf("kline: http %d from %s", res.StatusCode, ex)
	}

	// レスポンスは [openTime, open, high, low, close, volume, ...] の配列の配列
	var rows [][]json.RawMessage
	if err := json.NewDecoder(res.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("%w: decode klines: %v", usecase.ErrConnectivity, err)
	}

	candles := make([]entity.Candle, 0, len(rows))
	for _, row := range rows {
		cd, err := parseRow(row)
		if err != nil {
			return nil, err
		}
		candles = append(candles, cd)
	}
	return candles, nil
}

// parseRow は1本分のkline配列をドメインエンティティに変換します。
func parseRow(row []json.RawMessage) (entity.Candle, error) {
	if len(row) < 6 {
		return entity.Candle{}, fmt.Errorf("kline row has %d fields, want at least 6", len(row))
	}

	// オープン時刻（ミリ秒）をパース
	var openMS int64
	if err := json.Unmarshal(row[0], &openMS); err != nil {
		return entity.Candle{}, fmt.Errorf("parse open time: %w", err)
	}

	// 始値をパース
	o, err := parsePrice(row[1])
	if err != nil {
		return entity.Candle{}, fmt.Errorf("parse open %s: %w", row[1], err)
	}
	// 高値をパース
	h, err := parsePrice(row[2])
	if err != nil {
		return entity.Candle{}, fmt.Errorf("parse high %s: %w", row[2], err)
	}
	// 安値をパース
	l, err := parsePrice(row[3])
	if err != nil {
		return entity.Candle{}, fmt.Errorf("parse low %s: %w", row[3], err)
	}
	// 終値をパース
	cl, err := parsePrice(row[4])
	if err != nil {
		return entity.Candle{}, fmt.Errorf("parse close %s: %w", row[4], err)
	}
	// 出来高をパース
	v, err := parsePrice(row[5])
	if err != nil {
		return entity.Candle{}, fmt.Errorf("parse volume %s: %w", row[5], err)
	}

	return entity.Candle{
		Time:   time.UnixMilli(openMS).UTC(),
		Open:   o,
		High:   h,
		Low:    l,
		Close:  cl,
		Volume: v,
	}, nil
}

// parsePrice は文字列でエンコードされた数値フィールドをパースします。
func parsePrice(raw json.RawMessage) (float64, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, err
	}
	return strconv.ParseFloat(s, 64)
}
