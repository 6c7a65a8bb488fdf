package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"stock_predictor/internal/feature/prediction/domain"
	"stock_predictor/internal/feature/prediction/domain/entity"
	"stock_predictor/internal/feature/prediction/usecase"
	"stock_predictor/internal/platform/externalapi/history/dto"
)

// dateLayouts are tried in order when parsing a record's date.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// FetchObserver receives the duration and outcome of each upstream request.
type FetchObserver interface {
	ObserveFetch(outcome string, seconds float64)
}

// HistoryClient は履歴サービスから日次終値を取得するHistoryRepository実装です。
type HistoryClient struct {
	cfg      Config
	client   *http.Client
	validate *validator.Validate
	observer FetchObserver
}

// HistoryClientがHistoryRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.HistoryRepository = (*HistoryClient)(nil)

// NewHistoryClient は指定された設定とHTTPクライアントでHistoryClientの新しいインスタンスを生成します。
// observer は nil でも構いません。
func NewHistoryClient(cfg Config, client *http.Client, observer FetchObserver) *HistoryClient {
	return &HistoryClient{
		cfg:      cfg,
		client:   client,
		validate: validator.New(),
		observer: observer,
	}
}

// GetHistory は GET {BaseURL}/history/{symbol} を呼び出し、観測値のスライスを返します。
//
// 通信エラー、200以外のステータス、空の配列は domain.ErrHistoryUnavailable、
// デコードやフィールドの解析に失敗した場合は domain.ErrMalformedHistory を返します。
func (h *HistoryClient) GetHistory(ctx context.Context, symbol string) ([]entity.Observation, error) {
	start := time.Now()
	obs, err := h.fetch(ctx, symbol)
	if h.observer != nil {
		h.observer.ObserveFetch(fetchOutcome(err), time.Since(start).Seconds())
	}
	return obs, err
}

func (h *HistoryClient) fetch(ctx context.Context, symbol string) ([]entity.Observation, error) {
	u := fmt.Sprintf("%s/history/%s", strings.TrimRight(h.cfg.BaseURL, "/"), url.PathEscape(symbol))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", domain.ErrHistoryUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrHistoryUnavailable, err)
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: history http %d", domain.ErrHistoryUnavailable, res.StatusCode)
	}

	var body []dto.HistoryRecord
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode body: %v", domain.ErrMalformedHistory, err)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: empty history for %q", domain.ErrHistoryUnavailable, symbol)
	}

	obs := make([]entity.Observation, 0, len(body))
	for i, r := range body {
		if err := h.validate.StructCtx(ctx, r); err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", domain.ErrMalformedHistory, i, err)
		}

		// 日付をパース
		d, err := parseDate(r.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: parse date %q: %v", domain.ErrMalformedHistory, i, r.Date, err)
		}

		obs = append(obs, entity.Observation{Date: d, Close: *r.Close})
	}
	return obs, nil
}

func parseDate(s string) (time.Time, error) {
	var err error
	for _, layout := range dateLayouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

func fetchOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrMalformedHistory):
		return "malformed"
	default:
		return "unavailable"
	}
}
