// Package config は設定ファイルと環境変数からデーモンの設定を読み込みます。
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultStartDate はインポート開始日のデフォルト値です。
const DefaultStartDate = "2018-01-01"

// DB はcandleデータベースへの接続パラメータです。
type DB struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
}

// Importer はインポートドライバの挙動を調整するパラメータです。
type Importer struct {
	StartDate         string `yaml:"start_date"`          // YYYY-MM-DD
	PageSize          int    `yaml:"page_size"`           // 1リクエストあたりの取得件数
	RequestsPerMinute int    `yaml:"requests_per_minute"` // klinesリクエストの上限
	ShowProgress      bool   `yaml:"show_progress"`
}

// Config は起動時に一度だけ読み込まれるデーモン全体の設定です。
type Config struct {
	DB       DB       `yaml:"db"`
	Importer Importer `yaml:"importer"`
}

// defaults はファイルにも環境変数にもない項目の既定値です。
func defaults() *Config {
	return &Config{
		DB: DB{
			Host:    "localhost",
			Port:    "5432",
			User:    "postgres",
			Name:    "jesse_db",
			SSLMode: "disable",
		},
		Importer: Importer{
			StartDate:         DefaultStartDate,
			PageSize:          1000,
			RequestsPerMinute: 60,
		},
	}
}

// Load はYAMLファイルを読み込み、環境変数で上書きした設定を返します。
// ファイルが存在しない場合は既定値と環境変数のみで構成します。
func Load(path string) (*Config, error) {
	cfg := defaults()

	f, err := os.Open(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// 設定ファイルは任意
	case err != nil:
		return nil, fmt.Errorf("open config: %w", err)
	default:
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
			return nil, fmt.Errorf("decode config %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if _, err := cfg.Importer.StartTime(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv は設定された環境変数で設定値を上書きします。
func applyEnv(cfg *Config) {
	overrideEnv(&cfg.DB.Host, "DB_HOST")
	overrideEnv(&cfg.DB.Port, "DB_PORT")
	overrideEnv(&cfg.DB.User, "DB_USER")
	overrideEnv(&cfg.DB.Password, "DB_PASSWORD")
	overrideEnv(&cfg.DB.Name, "DB_NAME")
	overrideEnv(&cfg.DB.SSLMode, "DB_SSLMODE")
	overrideEnv(&cfg.Importer.StartDate, "IMPORT_START_DATE")
}

func overrideEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// DSN はgormとpgxの双方が受け付けるkey=value形式の接続文字列を返します。
func (d DB) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// StartTime はインポート開始日をローカルタイムの時刻として返します。
func (i Importer) StartTime() (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", i.StartDate, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid start date %q: must be YYYY-MM-DD", i.StartDate)
	}
	return t, nil
}
