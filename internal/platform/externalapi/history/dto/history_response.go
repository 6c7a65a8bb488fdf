// Package dto defines data transfer objects for the history service responses.
package dto

// HistoryRecord is one element of the JSON array returned by GET /history/{symbol}.
// Only date and close are consumed; other price fields are ignored.
// Close is a pointer so that a missing field can be told apart from 0.
type HistoryRecord struct {
	Date  string   `json:"date" validate:"required"`
	Close *float64 `json:"close" validate:"required"`
}
