// Package dto defines the JSON bodies of the prediction endpoints.
package dto

// PredictionResponse is the body of a successful GET /predict/:symbol.
type PredictionResponse struct {
	Symbol         string  `json:"symbol"`
	PredictedPrice float64 `json:"predicted_price"` // 小数点以下2桁
	Currency       string  `json:"currency"`
}

// PredictionLogItem is one element of GET /predictions/:symbol.
type PredictionLogItem struct {
	Symbol         string  `json:"symbol"`
	PredictedPrice float64 `json:"predicted_price"`
	Currency       string  `json:"currency"`
	Observations   int     `json:"observations"`
	LastObserved   string  `json:"last_observed"` // YYYY-MM-DD
	TargetDate     string  `json:"target_date"`   // YYYY-MM-DD
	CreatedAt      string  `json:"created_at"`    // RFC 3339
}

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Error string `json:"error"`
}
