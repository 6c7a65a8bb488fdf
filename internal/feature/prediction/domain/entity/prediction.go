package entity

import "time"

// Currency is the only currency predictions are quoted in.
const Currency = "USD"

// Prediction is the one-year-ahead trend projection for a symbol.
type Prediction struct {
	Symbol         string
	PredictedPrice float64   // Rounded to 2 decimal places
	Currency       string
	Observations   int       // Number of observations the trend was fitted on
	LastObserved   time.Time // Latest observation date
	TargetDate     time.Time // LastObserved + 365 days
	CreatedAt      time.Time
}
