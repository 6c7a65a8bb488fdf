// Package handler はpredictionフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"stock_predictor/internal/feature/prediction/domain"
	"stock_predictor/internal/feature/prediction/domain/entity"
	"stock_predictor/internal/feature/prediction/transport/http/dto"
)

// クライアントへ返すエラーメッセージ
const (
	MsgHistoryUnavailable = "Historical data not available"
	MsgHistoryMalformed   = "Historical data malformed"
	MsgDegenerateFit      = "Not enough distinct dates to fit a trend"
	MsgNonFiniteFit       = "Historical prices out of range for a trend fit"
	MsgPredictionFailed   = "Prediction failed"
	MsgListFailed         = "Prediction log not available"
)

// PredictUsecase は予測のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type PredictUsecase interface {
	Predict(ctx context.Context, symbol string) (*entity.Prediction, error)
	ListPredictions(ctx context.Context, symbol string, limit int) ([]entity.Prediction, error)
}

// PredictionObserver は /predict の結果を受け取ります（メトリクス用）。
type PredictionObserver interface {
	ObservePrediction(outcome string)
}

// PredictHandler は予測のHTTPリクエストを処理します。
type PredictHandler struct {
	uc  PredictUsecase
	obs PredictionObserver
}

// NewPredictHandler は指定されたusecaseでPredictHandlerの新しいインスタンスを生成します。
// obs は nil でも構いません。
func NewPredictHandler(uc PredictUsecase, obs PredictionObserver) *PredictHandler {
	return &PredictHandler{uc: uc, obs: obs}
}

// Predict は銘柄の1年後の予測価格をJSONで返します。
//
// エンドポイント例:
// GET /predict/:symbol
func (h *PredictHandler) Predict(c *gin.Context) {
	symbol := c.Param("symbol")

	p, err := h.uc.Predict(c.Request.Context(), symbol)
	if err != nil {
		status, msg, outcome := classify(err)
		h.observe(outcome)
		if status >= http.StatusInternalServerError {
			slog.Error("prediction failed", "symbol", symbol, "outcome", outcome, "error", err)
		} else {
			slog.Warn("prediction rejected", "symbol", symbol, "outcome", outcome, "error", err)
		}
		c.JSON(status, dto.ErrorResponse{Error: msg})
		return
	}

	h.observe("ok")
	c.JSON(http.StatusOK, dto.PredictionResponse{
		Symbol:         p.Symbol,
		PredictedPrice: p.PredictedPrice,
		Currency:       p.Currency,
	})
}

// ListPredictions は銘柄の直近の予測結果を返します。
//
// エンドポイント例:
// GET /predictions/:symbol?limit=20
func (h *PredictHandler) ListPredictions(c *gin.Context) {
	symbol := c.Param("symbol")
	// 不正な値は0となり、usecase側で既定値に置き換えられる
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	ps, err := h.uc.ListPredictions(c.Request.Context(), symbol, limit)
	if err != nil {
		slog.Error("failed to list predictions", "symbol", symbol, "error", err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: MsgListFailed})
		return
	}

	out := make([]dto.PredictionLogItem, 0, len(ps))
	for _, p := range ps {
		out = append(out, dto.PredictionLogItem{
			Symbol:         p.Symbol,
			PredictedPrice: p.PredictedPrice,
			Currency:       p.Currency,
			Observations:   p.Observations,
			LastObserved:   p.LastObserved.UTC().Format("2006-01-02"),
			TargetDate:     p.TargetDate.UTC().Format("2006-01-02"),
			CreatedAt:      p.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, out)
}

func (h *PredictHandler) observe(outcome string) {
	if h.obs != nil {
		h.obs.ObservePrediction(outcome)
	}
}

// classify はエラーをHTTPステータス・メッセージ・メトリクス用の結果名に変換します。
func classify(err error) (int, string, string) {
	switch {
	case errors.Is(err, domain.ErrHistoryUnavailable):
		return http.StatusInternalServerError, MsgHistoryUnavailable, "unavailable"
	case errors.Is(err, domain.ErrMalformedHistory):
		return http.StatusInternalServerError, MsgHistoryMalformed, "malformed"
	case errors.Is(err, domain.ErrDegenerateFit):
		return http.StatusUnprocessableEntity, MsgDegenerateFit, "degenerate"
	case errors.Is(err, domain.ErrNonFiniteFit):
		return http.StatusUnprocessableEntity, MsgNonFiniteFit, "nonfinite"
	default:
		return http.StatusInternalServerError, MsgPredictionFailed, "error"
	}
}
