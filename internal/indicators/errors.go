package indicators

import "errors"

// ErrInsufficientData marks a history shorter than an indicator's
// minimum length. It is an expected condition, not a failure: callers
// treat the indicator as unavailable and continue.
var ErrInsufficientData = errors.New("insufficient data")
