// Package db は予測ログ用のgorm接続を生成します。
package db

import (
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	predictionadapters "stock_predictor/internal/feature/prediction/adapters"
)

const (
	// DefaultConnectTimeout は起動時の接続リトライを諦めるまでの時間です。
	DefaultConnectTimeout = 60 * time.Second
	retryInterval         = 3 * time.Second
)

// Config はDB接続設定です。
type Config struct {
	Driver string // "sqlite" | "postgres"
	DSN    string
}

// Opener はDSNからgorm接続を開きます。テストで差し替えます。
type Opener func(dsn string) (*gorm.DB, error)

// NewOpener はドライバー名に対応するOpenerを返します。
func NewOpener(driver string) (Opener, error) {
	var dial func(string) gorm.Dialector
	switch driver {
	case "sqlite":
		dial = sqlite.Open
	case "postgres":
		dial = postgres.Open
	default:
		return nil, fmt.Errorf("unsupported db driver %q", driver)
	}
	return func(dsn string) (*gorm.DB, error) {
		return gorm.Open(dial(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
	}, nil
}

// ConnectWithRetry は timeout を超えるまで retryInterval ごとに接続を試みます。
func ConnectWithRetry(dsn string, timeout time.Duration, open Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := open(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().Add(retryInterval).After(deadline) {
			return nil, fmt.Errorf("db connect failed after %s: %w", timeout, err)
		}
		slog.Warn("DB connect failed, retrying", "error", err)
		time.Sleep(retryInterval)
	}
}

// OpenDB は接続してprediction_logsテーブルをマイグレーションします。
func OpenDB(cfg Config) (*gorm.DB, error) {
	open, err := NewOpener(cfg.Driver)
	if err != nil {
		return nil, err
	}
	db, err := ConnectWithRetry(cfg.DSN, DefaultConnectTimeout, open)
	if err != nil {
		return nil, err
	}

	// マイグレーション
	if err := db.AutoMigrate(&predictionadapters.PredictionLogModel{}); err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	slog.Info("DB connection successful", "driver", cfg.Driver)
	return db, nil
}
