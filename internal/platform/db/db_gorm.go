// Package db はcandleデータベースへのgorm接続を管理します。
package db

import (
	"fmt"
	"log"
	"time"

	candleadapters "candle_importer/internal/feature/candles/adapters"

	gpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// retryInterval は接続失敗時に次の試行まで待つ時間です。
const retryInterval = 3 * time.Second

// Opener はDSNからgorm.DBを開く関数です。テストから差し替えます。
type Opener func(dsn string) (*gorm.DB, error)

// PostgresOpener は本番用のOpenerです。
func PostgresOpener(dsn string) (*gorm.DB, error) {
	return gorm.Open(gpostgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
}

// ConnectWithRetry は接続に成功するまで、最大timeoutの間リトライします。
func ConnectWithRetry(dsn string, timeout time.Duration, open Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := open(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("db connect failed after %s: %w", timeout, err)
		}
		log.Printf("DB connect failed, retrying...: %v", err)
		time.Sleep(retryInterval)
	}
}

// Migrate はcandleテーブルのスキーマを適用します。
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&candleadapters.CandleModel{})
}
