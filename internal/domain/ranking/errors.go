package ranking

import "errors"

// Sentinel kinds for ranking errors.
var (
	ErrUnknownSystem = errors.New("unknown scoring system")
)
