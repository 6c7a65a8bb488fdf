package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock_predictor/internal/feature/prediction/domain"
	"stock_predictor/internal/feature/prediction/domain/entity"
	"stock_predictor/internal/feature/prediction/usecase"
)

// mockHistoryRepository はHistoryRepositoryインターフェースのモック実装です。
type mockHistoryRepository struct {
	GetHistoryFunc func(ctx context.Context, symbol string) ([]entity.Observation, error)
	Calls          int
}

func (m *mockHistoryRepository) GetHistory(ctx context.Context, symbol string) ([]entity.Observation, error) {
	m.Calls++
	if m.GetHistoryFunc != nil {
		return m.GetHistoryFunc(ctx, symbol)
	}
	return nil, errors.New("GetHistoryFunc is not implemented")
}

// mockPredictionLog はPredictionLogRepositoryインターフェースのモック実装です。
type mockPredictionLog struct {
	SaveErr      error
	Saved        []entity.Prediction
	ListFunc     func(ctx context.Context, symbol string, limit int) ([]entity.Prediction, error)
	ListedLimits []int
}

func (m *mockPredictionLog) Save(_ context.Context, p entity.Prediction) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Saved = append(m.Saved, p)
	return nil
}

func (m *mockPredictionLog) ListRecent(ctx context.Context, symbol string, limit int) ([]entity.Prediction, error) {
	m.ListedLimits = append(m.ListedLimits, limit)
	if m.ListFunc != nil {
		return m.ListFunc(ctx, symbol, limit)
	}
	return nil, nil
}

func twoDayHistory(context.Context, string) ([]entity.Observation, error) {
	return []entity.Observation{
		{Date: date(2023, 1, 2), Close: 102},
		{Date: date(2023, 1, 1), Close: 100},
	}, nil
}

// TestPredictUsecase_Predict はPredictの成功・失敗パターンを検証します。
func TestPredictUsecase_Predict(t *testing.T) {
	t.Parallel()

	errUpstream := fmt.Errorf("%w: history http 404", domain.ErrHistoryUnavailable)

	tests := []struct {
		name      string
		history   func(ctx context.Context, symbol string) ([]entity.Observation, error)
		saveErr   error
		wantPrice float64
		wantErr   error
		wantSaved int
	}{
		{
			name:      "success: projects one year ahead",
			history:   twoDayHistory,
			wantPrice: 832.00,
			wantSaved: 1,
		},
		{
			name:      "success: log failure does not fail the prediction",
			history:   twoDayHistory,
			saveErr:   errors.New("disk full"),
			wantPrice: 832.00,
		},
		{
			name: "error: history unavailable is passed through",
			history: func(context.Context, string) ([]entity.Observation, error) {
				return nil, errUpstream
			},
			wantErr: domain.ErrHistoryUnavailable,
		},
		{
			name: "error: single observation is degenerate",
			history: func(context.Context, string) ([]entity.Observation, error) {
				return []entity.Observation{{Date: date(2023, 1, 1), Close: 100}}, nil
			},
			wantErr: domain.ErrDegenerateFit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			hist := &mockHistoryRepository{GetHistoryFunc: tt.history}
			log := &mockPredictionLog{SaveErr: tt.saveErr}
			uc := usecase.NewPredictUsecase(hist, log)

			p, err := uc.Predict(context.Background(), "AAPL")

			assert.Equal(t, 1, hist.Calls)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, p)
				assert.Empty(t, log.Saved)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, p)
			assert.Equal(t, "AAPL", p.Symbol)
			assert.Equal(t, tt.wantPrice, p.PredictedPrice)
			assert.Equal(t, "USD", p.Currency)
			assert.Equal(t, 2, p.Observations)
			assert.Equal(t, date(2023, 1, 2), p.LastObserved)
			assert.Equal(t, date(2024, 1, 2), p.TargetDate)
			assert.False(t, p.CreatedAt.IsZero())
			assert.Len(t, log.Saved, tt.wantSaved)
		})
	}
}

// TestPredictUsecase_ListPredictions はlimitの既定値と上限の扱いを検証します。
func TestPredictUsecase_ListPredictions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		limit     int
		wantLimit int
	}{
		{name: "zero uses default", limit: 0, wantLimit: usecase.DefaultListLimit},
		{name: "negative uses default", limit: -5, wantLimit: usecase.DefaultListLimit},
		{name: "within range is kept", limit: 7, wantLimit: 7},
		{name: "above max is capped", limit: 1000, wantLimit: usecase.MaxListLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			log := &mockPredictionLog{
				ListFunc: func(_ context.Context, symbol string, _ int) ([]entity.Prediction, error) {
					return []entity.Prediction{{Symbol: symbol, PredictedPrice: 1.5, Currency: "USD"}}, nil
				},
			}
			uc := usecase.NewPredictUsecase(&mockHistoryRepository{}, log)

			got, err := uc.ListPredictions(context.Background(), "MSFT", tt.limit)
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, "MSFT", got[0].Symbol)
			assert.Equal(t, []int{tt.wantLimit}, log.ListedLimits)
		})
	}
}
