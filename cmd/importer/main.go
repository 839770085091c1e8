package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"candle_importer/internal/app/runner"
	candleadapters "candle_importer/internal/feature/candles/adapters"
	"candle_importer/internal/feature/candles/adapters/kline"
	candlesusecase "candle_importer/internal/feature/candles/usecase"
	symboladapters "candle_importer/internal/feature/symbols/adapters"
	"candle_importer/internal/platform/config"
	"candle_importer/internal/platform/db"
	"candle_importer/internal/shared/ratelimiter"
	"candle_importer/internal/shared/schedule"
)

var (
	runNow     bool
	dailyTime  string
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "candle-importer",
	Short: "Imports historical candles for every exchange/symbol pair in the database",
	Long: `candle-importer periodically loads the distinct (exchange, symbol) pairs
from the candle database and imports historical candles for each of them,
retrying indefinitely on connectivity failures. Cycles run every 24 hours,
or at a fixed daily local time when --time is given.`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().BoolVar(&runNow, "now", false, "run the main job immediately (skip the initial wait)")
	rootCmd.Flags().StringVar(&dailyTime, "time", "", "local time (24h) to run each day, e.g. 23:00")
	rootCmd.Flags().StringVar(&configPath, "config", "config.yaml", "path to the YAML config file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	var dailyAt *schedule.DailyTime
	if dailyTime != "" {
		dt, err := schedule.ParseDailyTime(dailyTime)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error: --time must be in HH:MM (24-hour) format, e.g. 23:00")
			os.Exit(2)
		}
		dailyAt = &dt
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(2)
	}
	startDate, err := cfg.Importer.StartTime()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(2)
	}

	// 割り込みシグナルをキャンセルに変換。全ての待機とインポートはここから降りるctxを見る
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// db
	gormDB, err := db.ConnectWithRetry(cfg.DB.DSN(), 60*time.Second, db.PostgresOpener)
	if err != nil {
		log.Fatalf("failed to connect candle db: %v", err)
	}
	if os.Getenv("RUN_MIGRATIONS") == "true" {
		if err := db.Migrate(gormDB); err != nil {
			log.Fatalf("failed to migrate: %v", err)
		}
	}

	// Repository
	pairSource := symboladapters.NewPairSource(cfg.DB.DSN())
	candleRepo := candleadapters.NewCandleRepository(gormDB)

	klineCfg := kline.DefaultConfig()
	klineClient := kline.New(klineCfg, &http.Client{Timeout: klineCfg.Timeout})

	// Usecase
	limiter := ratelimiter.New(cfg.Importer.RequestsPerMinute, time.Minute)
	importUC := candlesusecase.NewImportUsecase(klineClient, candleRepo, limiter, cfg.Importer.PageSize)

	// Runner
	r := runner.New(runner.Config{
		RunNow:       runNow,
		DailyAt:      dailyAt,
		StartDate:    startDate,
		ShowProgress: cfg.Importer.ShowProgress,
	}, pairSource, importUC)

	if err := r.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			slog.Info("received interrupt, exiting gracefully")
			return nil
		}
		return err
	}
	return nil
}
