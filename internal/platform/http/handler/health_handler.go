// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
)

// checkTimeout は依存先1件あたりの確認時間の上限です。
const checkTimeout = 2 * time.Second

// CheckFunc は依存先の疎通を確認し、問題があればエラーを返します。
type CheckFunc func(ctx context.Context) error

// HealthHandler は /healthz を処理します。
// 登録された依存先（DB、Redisなど）の確認結果をまとめて返します。
type HealthHandler struct {
	checks map[string]CheckFunc
}

// NewHealthHandler は依存先の確認なしのHealthHandlerを生成します。
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{checks: map[string]CheckFunc{}}
}

// AddCheck は名前付きの確認を登録します。同名の登録は上書きされます。
func (h *HealthHandler) AddCheck(name string, fn CheckFunc) *HealthHandler {
	h.checks[name] = fn
	return h
}

// Health はサービスヘルスチェック用の /healthz エンドポイントを処理します。
// HTTPメソッドに応じて適切にレスポンスし、キャッシュを防止します。
// いずれかの確認が失敗した場合は 503 を返します。
func (h *HealthHandler) Health(c *gin.Context) {
	// 明示的にキャッシュを防止
	c.Header("Cache-Control", "no-store")

	if c.Request.Method == http.MethodOptions {
		c.Status(http.StatusNoContent)
		return
	}

	results, healthy := h.run(c.Request.Context())
	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}

	if c.Request.Method == http.MethodHead {
		c.Status(status)
		return
	}

	body := gin.H{"status": "ok"}
	if !healthy {
		body["status"] = "degraded"
	}
	if len(results) > 0 {
		body["checks"] = results
	}
	c.JSON(status, body)
}

// run は登録された確認を名前順に実行します。
func (h *HealthHandler) run(ctx context.Context) (map[string]string, bool) {
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make(map[string]string, len(names))
	healthy := true
	for _, name := range names {
		cctx, cancel := context.WithTimeout(ctx, checkTimeout)
		err := h.checks[name](cctx)
		cancel()
		if err != nil {
			results[name] = err.Error()
			healthy = false
			continue
		}
		results[name] = "ok"
	}
	return results, healthy
}
