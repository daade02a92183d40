package domain

import "errors"

// Errors raised by the analysis pipeline and its collaborators. Callers match
// them with errors.Is; the wrapping message carries the detail.
var (
	// ErrInsufficientData means a series is shorter than a stage's minimum.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrMalformedInput means non-monotonic timestamps or NaN/negative values.
	ErrMalformedInput = errors.New("malformed input")
	// ErrUpstreamUnavailable wraps any data-feed failure seen by a caller.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrThresholdConfig means tuning parameters failed validation at construction.
	ErrThresholdConfig = errors.New("invalid threshold config")

	// ErrNoData is returned by a feed that has nothing for the symbol.
	ErrNoData = errors.New("no data")
	// ErrRateLimited is returned by a feed that refused the request.
	ErrRateLimited = errors.New("rate limited")
)
