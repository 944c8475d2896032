package scoring

import "errors"

// Sentinel kinds for score validation errors.
var (
	ErrMissingField    = errors.New("missing heat, skater, or judge id")
	ErrValueOutOfRange = errors.New("score value outside 0.0-10.0")
	ErrRunOutOfRange   = errors.New("run number outside the heat's run range")
)
