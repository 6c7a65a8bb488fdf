package di

import (
	"stock_predictor/internal/feature/prediction/adapters"
	"stock_predictor/internal/feature/prediction/usecase"

	"gorm.io/gorm"
)

// NewPredictionLogRepository creates a PredictionLogRepository implementation.
// If a database is available, it returns a gorm-backed implementation.
// Otherwise, it falls back to a no-op log.
func NewPredictionLogRepository(db *gorm.DB) usecase.PredictionLogRepository {
	if db != nil {
		return adapters.NewPredictionLogRepository(db)
	}
	return adapters.NoopPredictionLog{}
}
