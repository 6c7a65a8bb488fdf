// Package usecase は株価トレンド予測のビジネスロジックを実装します。
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"stock_predictor/internal/feature/prediction/domain/entity"
)

const (
	// DefaultListLimit は予測履歴のデフォルト返却件数です。
	DefaultListLimit = 20
	// MaxListLimit は予測履歴の最大返却件数です。
	MaxListLimit = 100
)

// HistoryRepository は銘柄の日次終値の取得元を抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type HistoryRepository interface {
	// GetHistory は銘柄の観測値を返します。順序は保証されません。
	GetHistory(ctx context.Context, symbol string) ([]entity.Observation, error)
}

// PredictionLogRepository は算出済みの予測結果の記録先を抽象化します。
type PredictionLogRepository interface {
	Save(ctx context.Context, p entity.Prediction) error
	ListRecent(ctx context.Context, symbol string, limit int) ([]entity.Prediction, error)
}

// predictUsecase は予測のユースケースを定義します。
type predictUsecase struct {
	history HistoryRepository
	log     PredictionLogRepository
	now     func() time.Time
}

// NewPredictUsecase はpredictUsecaseの新しいインスタンスを生成します。
func NewPredictUsecase(history HistoryRepository, log PredictionLogRepository) *predictUsecase {
	return &predictUsecase{history: history, log: log, now: time.Now}
}

// Predict は履歴を取得してトレンドを当てはめ、1年後の価格を予測します。
// 予測は毎回履歴から計算し直し、結果の記録はベストエフォートで行います。
func (u *predictUsecase) Predict(ctx context.Context, symbol string) (*entity.Prediction, error) {
	obs, err := u.history.GetHistory(ctx, symbol)
	if err != nil {
		return nil, err
	}

	trend, err := FitTrend(obs)
	if err != nil {
		return nil, fmt.Errorf("fit trend for %q: %w", symbol, err)
	}

	p := entity.Prediction{
		Symbol:         symbol,
		PredictedPrice: trend.Project(),
		Currency:       entity.Currency,
		Observations:   trend.Points,
		LastObserved:   trend.Last,
		TargetDate:     trend.TargetDate(),
		CreatedAt:      u.now().UTC(),
	}

	// 記録に失敗しても予測結果は返す
	if err := u.log.Save(ctx, p); err != nil {
		slog.Warn("failed to record prediction", "symbol", symbol, "error", err)
	}

	return &p, nil
}

// ListPredictions は銘柄の直近の予測結果を新しい順に返します。
func (u *predictUsecase) ListPredictions(ctx context.Context, symbol string, limit int) ([]entity.Prediction, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	return u.log.ListRecent(ctx, symbol, limit)
}
