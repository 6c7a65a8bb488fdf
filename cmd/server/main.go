package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	redisv9 "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"stock_predictor/internal/app/config"
	"stock_predictor/internal/app/di"
	"stock_predictor/internal/app/router"
	predicthandler "stock_predictor/internal/feature/prediction/transport/handler"
	predictusecase "stock_predictor/internal/feature/prediction/usecase"
	infradb "stock_predictor/internal/platform/db"
	"stock_predictor/internal/platform/externalapi/history"
	"stock_predictor/internal/platform/http/handler"
	"stock_predictor/internal/platform/metrics"
	"stock_predictor/internal/platform/ratelimit"
	infraredis "stock_predictor/internal/platform/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	health := handler.NewHealthHandler()

	// Redis（レート制限用、任意）
	var rdb *redisv9.Client
	if cfg.Redis.Addr != "" {
		if tmp, err := infraredis.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB); err != nil {
			slog.Warn("Redis unavailable. Falling back to in-memory rate limiting.")
		} else {
			rdb = tmp
			health.AddCheck("redis", infraredis.Ping(rdb))
			defer func() {
				if err := rdb.Close(); err != nil {
					slog.Error("failed to close Redis client", "error", err)
				}
			}()
		}
	}

	// db（予測ログ用、任意）
	var db *gorm.DB
	if cfg.PredictionLog.Driver != "" {
		db, err = infradb.OpenDB(infradb.Config{Driver: cfg.PredictionLog.Driver, DSN: cfg.PredictionLog.DSN})
		if err != nil {
			slog.Error("failed to open prediction log database", "error", err)
			os.Exit(1)
		}
		sqlDB, err := db.DB()
		if err != nil {
			slog.Error("failed to get sql.DB", "error", err)
			os.Exit(1)
		}
		health.AddCheck("db", sqlDB.PingContext)
		defer sqlDB.Close()
	}

	// メトリクス
	opts := router.Options{
		AllowOrigins: cfg.Server.AllowOrigins,
		MetricsPath:  cfg.Metrics.Path,
	}
	var (
		fetchObs   history.FetchObserver
		predictObs predicthandler.PredictionObserver
	)
	if cfg.Metrics.Enabled {
		rec := metrics.New(prometheus.DefaultRegisterer)
		fetchObs, predictObs = rec, rec
		opts.RequestObserver = rec
		opts.MetricsHandler = promhttp.Handler()
	}
	// レート制限（Redisがなければインスタンス内で数える）
	if rdb != nil {
		opts.Limiter = ratelimit.NewRedisLimiter(rdb, cfg.Redis.RateLimit, cfg.Redis.RateWindow, "ratelimit")
	} else {
		opts.Limiter = ratelimit.NewMemoryLimiter(cfg.Redis.RateLimit, cfg.Redis.RateWindow)
	}

	// Repository
	historyRepo := di.NewHistoryClient(history.Config{BaseURL: cfg.History.BaseURL, Timeout: cfg.History.Timeout}, fetchObs)
	logRepo := di.NewPredictionLogRepository(db)

	// Usecase
	predictUC := predictusecase.NewPredictUsecase(historyRepo, logRepo)

	// Handler
	predictH := predicthandler.NewPredictHandler(predictUC, predictObs)

	// ルータ生成
	r := router.NewRouter(predictH, health, opts)

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("server starting", "addr", srv.Addr, "history_base_url", cfg.History.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
}
