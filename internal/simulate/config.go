// Package simulate drives a running heatline server through a full contest
// over its HTTP API: registration, qualifier heats, scoring, and phase
// transitions down to a final winner.
package simulate

import "time"

// Config controls one simulated contest.
type Config struct {
	// BaseURL of the running service.
	BaseURL string

	// ContestID and CategoryID address the simulated scope.
	ContestID  string
	CategoryID string

	// Skaters is the qualifier field size.
	Skaters int

	// Judges is how many judges score every run.
	Judges int

	// Timeout bounds each HTTP request.
	Timeout time.Duration

	// Seed makes the generated scores reproducible.
	Seed int64

	// Verbose enables per-request logging.
	Verbose bool
}

// Stats accumulates counters over one simulation run.
type Stats struct {
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	ScoresSubmitted int
	HeatsCompleted  int
	PhaseAdvances   int
	Requests        int
	Errors          int
}
