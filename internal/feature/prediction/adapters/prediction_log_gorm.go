// Package adapters はpredictionフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"time"

	"gorm.io/gorm"

	"stock_predictor/internal/feature/prediction/domain/entity"
	"stock_predictor/internal/feature/prediction/usecase"
)

// predictionLogGorm はPredictionLogRepositoryインターフェースのgorm実装です。
type predictionLogGorm struct {
	db *gorm.DB
}

var _ usecase.PredictionLogRepository = (*predictionLogGorm)(nil)

// NewPredictionLogRepository は指定されたDB接続でpredictionLogGormの新しいインスタンスを生成します。
func NewPredictionLogRepository(db *gorm.DB) *predictionLogGorm {
	return &predictionLogGorm{db: db}
}

// PredictionLogModel は算出済みの予測結果1件を表すテーブル行です。
type PredictionLogModel struct {
	ID             uint      `gorm:"primaryKey"`
	Symbol         string    `gorm:"size:32;not null;index:prediction_sym_created,priority:1"`
	PredictedPrice float64   `gorm:"not null"`
	Currency       string    `gorm:"size:8;not null"`
	Observations   int       `gorm:"not null"`
	LastObserved   time.Time `gorm:"not null"`
	TargetDate     time.Time `gorm:"not null"`
	CreatedAt      time.Time `gorm:"not null;index:prediction_sym_created,priority:2"`
}

func (PredictionLogModel) TableName() string {
	return "prediction_logs"
}

func toModel(p entity.Prediction) PredictionLogModel {
	return PredictionLogModel{
		Symbol:         p.Symbol,
		PredictedPrice: p.PredictedPrice,
		Currency:       p.Currency,
		Observations:   p.Observations,
		LastObserved:   p.LastObserved,
		TargetDate:     p.TargetDate,
		CreatedAt:      p.CreatedAt,
	}
}

// Save は予測結果を1件記録します。
func (r *predictionLogGorm) Save(ctx context.Context, p entity.Prediction) error {
	m := toModel(p)
	return r.db.WithContext(ctx).Create(&m).Error
}

// ListRecent は銘柄の予測結果を新しい順に最大 limit 件返します。
func (r *predictionLogGorm) ListRecent(ctx context.Context, symbol string, limit int) ([]entity.Prediction, error) {
	var rows []PredictionLogModel
	q := r.db.WithContext(ctx).
		Where("symbol = ?", symbol).
		Order("created_at DESC").
		Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.Prediction, 0, len(rows))
	for _, m := range rows {
		out = append(out, entity.Prediction{
			Symbol:         m.Symbol,
			PredictedPrice: m.PredictedPrice,
			Currency:       m.Currency,
			Observations:   m.Observations,
			LastObserved:   m.LastObserved,
			TargetDate:     m.TargetDate,
			CreatedAt:      m.CreatedAt,
		})
	}
	return out, nil
}
