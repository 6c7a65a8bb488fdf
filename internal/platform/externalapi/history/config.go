// Package history provides a client for the upstream historical price service.
package history

import "time"

// DefaultTimeout bounds a single history request when none is configured.
const DefaultTimeout = 10 * time.Second

// Config holds configuration for the history service client.
type Config struct {
	BaseURL string        // Base URL of the service (e.g., "http://localhost:5000")
	Timeout time.Duration // HTTP request timeout
}
