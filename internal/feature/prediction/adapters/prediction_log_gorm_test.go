package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"stock_predictor/internal/feature/prediction/domain/entity"
)

// setupTestDB prepares an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err, "failed to initialize test database")

	// :memory: はコネクションごとに別DBになるため1本に固定
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	err = db.AutoMigrate(&PredictionLogModel{})
	require.NoError(t, err, "failed to migrate table")

	return db
}

func prediction(symbol string, price float64, created time.Time) entity.Prediction {
	last := time.Date(2024, 6, 28, 0, 0, 0, 0, time.UTC)
	return entity.Prediction{
		Symbol:         symbol,
		PredictedPrice: price,
		Currency:       entity.Currency,
		Observations:   18,
		LastObserved:   last,
		TargetDate:     last.AddDate(0, 0, 365),
		CreatedAt:      created,
	}
}

func TestNewPredictionLogRepository(t *testing.T) {
	db := setupTestDB(t)

	repo := NewPredictionLogRepository(db)

	assert.NotNil(t, repo, "repository is nil")
	assert.NotNil(t, repo.db, "database connection is nil")
}

func TestPredictionLogGorm_Save(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	repo := NewPredictionLogRepository(db)
	created := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)

	err := repo.Save(context.Background(), prediction("AAPL", 243.17, created))
	require.NoError(t, err)

	var rows []PredictionLogModel
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, "AAPL", rows[0].Symbol)
	assert.Equal(t, 243.17, rows[0].PredictedPrice)
	assert.Equal(t, "USD", rows[0].Currency)
	assert.Equal(t, 18, rows[0].Observations)
	assert.True(t, rows[0].CreatedAt.Equal(created))
}

func TestPredictionLogGorm_ListRecent(t *testing.T) {
	t.Parallel()

	base := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		seed       []entity.Prediction
		symbol     string
		limit      int
		wantPrices []float64
	}{
		{
			name: "newest first",
			seed: []entity.Prediction{
				prediction("AAPL", 1, base),
				prediction("AAPL", 3, base.Add(2*time.Hour)),
				prediction("AAPL", 2, base.Add(time.Hour)),
			},
			symbol:     "AAPL",
			limit:      10,
			wantPrices: []float64{3, 2, 1},
		},
		{
			name: "limit applied",
			seed: []entity.Prediction{
				prediction("AAPL", 1, base),
				prediction("AAPL", 2, base.Add(time.Hour)),
				prediction("AAPL", 3, base.Add(2*time.Hour)),
			},
			symbol:     "AAPL",
			limit:      2,
			wantPrices: []float64{3, 2},
		},
		{
			name: "other symbols excluded",
			seed: []entity.Prediction{
				prediction("AAPL", 1, base),
				prediction("MSFT", 9, base.Add(time.Hour)),
			},
			symbol:     "MSFT",
			limit:      10,
			wantPrices: []float64{9},
		},
		{
			name:       "no rows returns empty slice",
			symbol:     "TSLA",
			limit:      10,
			wantPrices: []float64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			db := setupTestDB(t)
			repo := NewPredictionLogRepository(db)
			for _, p := range tt.seed {
				require.NoError(t, repo.Save(context.Background(), p))
			}

			got, err := repo.ListRecent(context.Background(), tt.symbol, tt.limit)
			require.NoError(t, err)

			prices := make([]float64, 0, len(got))
			for _, p := range got {
				assert.Equal(t, tt.symbol, p.Symbol)
				prices = append(prices, p.PredictedPrice)
			}
			assert.Equal(t, tt.wantPrices, prices)
		})
	}
}

func TestNoopPredictionLog(t *testing.T) {
	t.Parallel()

	var log NoopPredictionLog
	require.NoError(t, log.Save(context.Background(), prediction("AAPL", 1, time.Now())))

	got, err := log.ListRecent(context.Background(), "AAPL", 10)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
