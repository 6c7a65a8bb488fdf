package router

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	predicthandler "stock_predictor/internal/feature/prediction/transport/handler"
	"stock_predictor/internal/platform/http/handler"
	"stock_predictor/internal/platform/http/middleware"
	"stock_predictor/internal/platform/ratelimit"
)

// Options はルーターの任意設定です。ゼロ値でも動作します。
type Options struct {
	// AllowOrigins に "*" が含まれる場合は全オリジンを許可する
	AllowOrigins []string
	// RequestObserver が nil の場合はリクエストメトリクスを記録しない
	RequestObserver middleware.RequestObserver
	// MetricsHandler が nil の場合は MetricsPath を公開しない
	MetricsHandler http.Handler
	MetricsPath    string
	// Limiter が nil の場合はレート制限しない
	Limiter ratelimit.Limiter
}

func NewRouter(predict *predicthandler.PredictHandler, health *handler.HealthHandler, opts Options) *gin.Engine {
	r := gin.Default()

	// CORS は404を含む全ルートに適用
	r.Use(cors.New(corsConfig(opts.AllowOrigins)))
	if opts.RequestObserver != nil {
		r.Use(middleware.Metrics(opts.RequestObserver))
	}

	// 導通確認用
	r.GET("/healthz", health.Health)
	r.HEAD("/healthz", health.Health)
	r.OPTIONS("/healthz", health.Health)

	if opts.MetricsHandler != nil {
		path := opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(opts.MetricsHandler))
	}

	// 予測API
	api := r.Group("/")
	if opts.Limiter != nil {
		api.Use(ratelimit.Middleware(opts.Limiter))
	}
	{
		api.GET("/predict/:symbol", predict.Predict)
		api.GET("/predictions/:symbol", predict.ListPredictions)
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Retry-After"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
