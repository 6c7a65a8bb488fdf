// Package di provides dependency injection factories for creating application components.
package di

import (
	"stock_predictor/internal/platform/externalapi/history"
	infrahttp "stock_predictor/internal/platform/http"
)

// NewHistoryClient creates a fully configured HistoryClient with HTTP client.
// observer may be nil when metrics are disabled.
func NewHistoryClient(cfg history.Config, observer history.FetchObserver) *history.HistoryClient {
	httpClient := infrahttp.NewHTTPClient(cfg.Timeout)
	return history.NewHistoryClient(cfg, httpClient, observer)
}
