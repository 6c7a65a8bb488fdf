// Package entity defines the domain models for the prediction feature.
package entity

import "time"

// Observation is one daily closing price for a symbol.
type Observation struct {
	Date  time.Time // Trading day (only the calendar date is significant)
	Close float64   // Closing price
}
