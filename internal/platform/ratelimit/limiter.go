// Package ratelimit は固定ウィンドウ方式のリクエスト制限を提供します。
// Redis版（インスタンス間で共有）とメモリ版（単一インスタンス）があります。
package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	// DefaultLimit はウィンドウあたりの既定の上限回数です。
	DefaultLimit = 60
	// DefaultWindow は既定のウィンドウ幅です。
	DefaultWindow = time.Minute
	// ErrorMessage は上限超過時にクライアントへ返すメッセージです。
	ErrorMessage = "Rate limit exceeded, please retry later"
)

// Limiter はクライアント単位でリクエストの可否を判定します。
type Limiter interface {
	// Allow はカウンタを1つ進め、上限以内なら true と次のウィンドウまでの時間を返します。
	Allow(ctx context.Context, client string) (bool, time.Duration, error)
}

var (
	_ Limiter = (*RedisLimiter)(nil)
	_ Limiter = (*MemoryLimiter)(nil)
)

// Middleware は上限を超えたクライアントに 429 を返すginミドルウェアです。
// Limiter のエラー時はリクエストを通します（フェイルオープン）。
func Middleware(l Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, retryAfter, err := l.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			slog.Warn("rate limiter unavailable, allowing request", "client", c.ClientIP(), "error", err)
			c.Next()
			return
		}
		if !ok {
			secs := int(retryAfter.Round(time.Second) / time.Second)
			if secs < 1 {
				secs = 1
			}
			c.Header("Retry-After", fmt.Sprint(secs))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": ErrorMessage})
			return
		}
		c.Next()
	}
}

func normalize(limit int, window time.Duration) (int, time.Duration) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return limit, window
}
