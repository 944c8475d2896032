// Package heat implements the heat progression state machine.
//
// A heat rotates through its participants in order. Each full rotation
// finishes one run; once every skater has used every run the heat completes.
// Advancement is command-driven only: the machine never consults the clock,
// an operator explicitly advances after each run.
package heat

import (
	"github.com/skatium/heatline/internal/domain/model"
)

// AdvanceResult reports the state after an Advance call.
type AdvanceResult struct {
	// Completed is true when the advance finished the heat.
	Completed bool
	// SkaterIndex and Run are the heat's position after the advance.
	SkaterIndex int
	Run         int
}

// StartRun arms a heat for its next run. A pending heat moves to in_progress;
// a heat already in progress is left untouched (the call exists so the
// operator can re-arm the external timer). Returns whether the status changed.
func StartRun(h *model.Heat) (bool, error) {
	switch h.Status {
	case model.HeatPending:
		h.Status = model.HeatInProgress
		return true, nil
	case model.HeatInProgress:
		return false, nil
	default:
		return false, ErrCompleted
	}
}

// Advance moves the heat to the next skater, or the next run once the
// rotation wraps. Completing the final run transitions the heat to completed
// and resets the cursor for re-display. Advancing a completed heat fails with
// ErrCompleted and leaves the heat unchanged.
//
// Jam heats advance a whole group at once: the cursor steps by the group size
// and the run increments when the window wraps past the last participant.
func Advance(h *model.Heat) (AdvanceResult, error) {
	if h.Status == model.HeatCompleted {
		return AdvanceResult{}, ErrCompleted
	}
	if len(h.Participants) == 0 {
		return AdvanceResult{}, ErrNoParticipants
	}

	step := h.GroupSize()
	nextIndex := h.CurrentSkaterIdx + step
	nextRun := currentRun(h)
	if nextIndex >= len(h.Participants) {
		nextIndex = 0
		nextRun++
	}

	if nextRun > h.RunsPerSkater {
		h.Status = model.HeatCompleted
		h.CurrentSkaterIdx = 0
		h.CurrentRun = 1
		return AdvanceResult{Completed: true, SkaterIndex: 0, Run: 1}, nil
	}

	h.CurrentSkaterIdx = nextIndex
	h.CurrentRun = nextRun
	return AdvanceResult{SkaterIndex: nextIndex, Run: nextRun}, nil
}

// ActiveSkaters returns the skaters currently on course: one for single-run
// heats, the active jam window otherwise.
func ActiveSkaters(h *model.Heat) []string {
	n := len(h.Participants)
	if n == 0 {
		return nil
	}
	i := h.CurrentSkaterIdx
	end := i + h.GroupSize()
	if end > n {
		end = n
	}
	out := make([]string, end-i)
	copy(out, h.Participants[i:end])
	return out
}

// NextSkaters returns the group up next, wrapping around the rotation.
func NextSkaters(h *model.Heat) []string {
	n := len(h.Participants)
	if n == 0 {
		return nil
	}
	i := h.CurrentSkaterIdx + h.GroupSize()
	if i >= n {
		i = 0
	}
	end := i + h.GroupSize()
	if end > n {
		end = n
	}
	out := make([]string, end-i)
	copy(out, h.Participants[i:end])
	return out
}

// Progress returns the completed fraction of the heat in [0, 1].
func Progress(h *model.Heat) float64 {
	n := len(h.Participants)
	if n == 0 || h.RunsPerSkater == 0 {
		return 0
	}
	if h.Status == model.HeatCompleted {
		return 1
	}
	done := (currentRun(h)-1)*n + h.CurrentSkaterIdx
	return float64(done) / float64(n*h.RunsPerSkater)
}

// RemainingAdvances returns how many Advance calls a single-run heat needs to
// complete from its current position.
func RemainingAdvances(h *model.Heat) int {
	if h.Status == model.HeatCompleted {
		return 0
	}
	n := len(h.Participants)
	return n*h.RunsPerSkater - ((currentRun(h)-1)*n + h.CurrentSkaterIdx)
}

// currentRun normalizes an unset run counter to 1.
func currentRun(h *model.Heat) int {
	if h.CurrentRun < 1 {
		return 1
	}
	return h.CurrentRun
}
