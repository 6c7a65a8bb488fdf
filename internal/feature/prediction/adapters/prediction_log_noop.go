package adapters

import (
	"context"

	"stock_predictor/internal/feature/prediction/domain/entity"
	"stock_predictor/internal/feature/prediction/usecase"
)

// NoopPredictionLog is used when no prediction log database is configured.
type NoopPredictionLog struct{}

var _ usecase.PredictionLogRepository = NoopPredictionLog{}

func (NoopPredictionLog) Save(context.Context, entity.Prediction) error { return nil }

func (NoopPredictionLog) ListRecent(context.Context, string, int) ([]entity.Prediction, error) {
	return []entity.Prediction{}, nil
}
