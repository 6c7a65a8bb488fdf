// Package domain defines domain-level errors for the prediction feature.
package domain

import "errors"

var (
	// ErrHistoryUnavailable indicates that the history service could not
	// provide data: transport failure, timeout, non-200 status or an empty series.
	ErrHistoryUnavailable = errors.New("historical data not available")

	// ErrMalformedHistory indicates that the history service answered 200
	// but the payload could not be decoded into observations.
	ErrMalformedHistory = errors.New("historical data malformed")

	// ErrDegenerateFit indicates that the observations span fewer than two
	// distinct days, so no line can be fitted.
	ErrDegenerateFit = errors.New("not enough distinct dates to fit a trend")

	// ErrNonFiniteFit indicates that the closes are too large for the fit to
	// stay finite (NaN or Inf in the slope, intercept or projection).
	ErrNonFiniteFit = errors.New("trend fit is not finite")
)
