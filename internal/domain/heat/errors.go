package heat

import "errors"

// Sentinel kinds for heat state machine errors.
var (
	ErrCompleted      = errors.New("heat already completed")
	ErrNoParticipants = errors.New("heat has no participants")
)
