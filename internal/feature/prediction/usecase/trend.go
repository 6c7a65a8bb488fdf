package usecase

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"stock_predictor/internal/feature/prediction/domain"
	"stock_predictor/internal/feature/prediction/domain/entity"
)

const (
	// HorizonDays は最終観測日から予測対象日までの日数です（固定）。
	HorizonDays = 365

	day           = 24 * time.Hour
	secondsPerDay = 86400
)

// Trend は (日数オフセット, 終値) に対する最小二乗直線です。
type Trend struct {
	Slope     float64   // 1日あたりの価格変化
	Intercept float64   // オフセット0（最古の観測日）での価格
	Origin    time.Time // オフセット0に対応する日付
	Last      time.Time // 最終観測日
	MaxOffset int       // 最終観測日のオフセット
	Points    int       // フィットに使った観測数
}

// FitTrend は観測値を日付順に並べ替え、最古の日付からの経過日数を説明変数として
// 終値に直線を当てはめます。入力スライスは変更しません。
// 異なる日数オフセットが2つ未満の場合は domain.ErrDegenerateFit を返します。
func FitTrend(obs []entity.Observation) (Trend, error) {
	if len(obs) < 2 {
		return Trend{}, fmt.Errorf("%w: %d observation(s)", domain.ErrDegenerateFit, len(obs))
	}

	sorted := make([]entity.Observation, len(obs))
	copy(sorted, obs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	origin := sorted[0].Date.UTC()
	xs := make([]float64, len(sorted))
	ys := make([]float64, len(sorted))
	maxOffset := 0
	for i, o := range sorted {
		offset := dayOffset(origin, o.Date)
		if offset > maxOffset {
			maxOffset = offset
		}
		xs[i] = float64(offset)
		ys[i] = o.Close
	}
	// 昇順なので最大オフセットが0なら全て同じ日
	if maxOffset == 0 {
		return Trend{}, fmt.Errorf("%w: all %d observations fall on %s",
			domain.ErrDegenerateFit, len(obs), origin.Format("2006-01-02"))
	}

	n := float64(len(xs))
	var sumX, sumY float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
	}
	meanX, meanY := sumX/n, sumY/n

	var sxx, sxy float64
	for i := range xs {
		dx := xs[i] - meanX
		sxx += dx * dx
		sxy += dx * (ys[i] - meanY)
	}

	slope := sxy / sxx
	trend := Trend{
		Slope:     slope,
		Intercept: meanY - slope*meanX,
		Origin:    origin,
		Last:      sorted[len(sorted)-1].Date.UTC(),
		MaxOffset: maxOffset,
		Points:    len(obs),
	}
	// 終値が極端に大きいと和がオーバーフローして NaN/Inf になる
	if v := trend.At(maxOffset + HorizonDays); !isFinite(trend.Slope) || !isFinite(trend.Intercept) || !isFinite(v) {
		return Trend{}, fmt.Errorf("%w: slope=%v intercept=%v projection=%v",
			domain.ErrNonFiniteFit, trend.Slope, trend.Intercept, v)
	}
	return trend, nil
}

// At は指定オフセットでの直線の値を返します。
func (t Trend) At(offset int) float64 {
	return t.Intercept + t.Slope*float64(offset)
}

// Project は最終観測日から HorizonDays 日後の値を小数点以下2桁に丸めて返します。
func (t Trend) Project() float64 {
	return roundCents(t.At(t.MaxOffset + HorizonDays))
}

// TargetDate は予測対象日を返します。
func (t Trend) TargetDate() time.Time {
	return t.Last.Add(HorizonDays * day)
}

// dayOffset は origin から d までの経過日数（切り捨て）です。
// time.Duration は約292年で飽和するため秒単位で計算します。
func dayOffset(origin, d time.Time) int {
	secs := d.Unix() - origin.Unix()
	if d.Nanosecond() < origin.Nanosecond() {
		secs--
	}
	days := secs / secondsPerDay
	if secs%secondsPerDay < 0 {
		days--
	}
	return int(days)
}

// roundCents は2進値を正確に10進丸めします（ちょうど半分は偶数側）。
func roundCents(v float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 2, 64), 64)
	if err != nil {
		return v
	}
	return r
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
