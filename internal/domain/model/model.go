// Package model contains domain records passed between layers.
package model

import "time"

// Phase is a stage of a contest. Categories progress through phases in the
// order returned by Phases().
type Phase string

const (
	PhaseQualifier Phase = "qualifier"
	PhaseSemi      Phase = "semi"
	PhaseFinal     Phase = "final"
)

// Phases returns the contest phases in progression order.
func Phases() []Phase {
	return []Phase{PhaseQualifier, PhaseSemi, PhaseFinal}
}

// Valid reports whether p is a known phase.
func (p Phase) Valid() bool {
	switch p {
	case PhaseQualifier, PhaseSemi, PhaseFinal:
		return true
	}
	return false
}

// Next returns the phase after p. ok is false when p is the final phase or
// unknown.
func (p Phase) Next() (next Phase, ok bool) {
	seq := Phases()
	for i, ph := range seq {
		if ph == p && i+1 < len(seq) {
			return seq[i+1], true
		}
	}
	return "", false
}

// HeatStatus is the lifecycle state of a heat. Transitions only move forward:
// pending -> in_progress -> completed.
type HeatStatus string

const (
	HeatPending    HeatStatus = "pending"
	HeatInProgress HeatStatus = "in_progress"
	HeatCompleted  HeatStatus = "completed"
)

// RunType selects how skaters rotate within a heat.
type RunType string

const (
	// RunSingle rotates one active skater at a time.
	RunSingle RunType = "single_run"
	// RunJam keeps a group of skaters active on a shared timer.
	RunJam RunType = "jam"
)

// Stance is a skater's footing preference.
type Stance string

const (
	StanceRegular Stance = "regular"
	StanceGoofy   Stance = "goofy"
)

// ScoringSystem selects the metric rankings are ordered by.
type ScoringSystem string

const (
	ScoreByBest    ScoringSystem = "best"
	ScoreByAverage ScoringSystem = "average"
	ScoreByTotal   ScoringSystem = "total"
)

// Valid reports whether s is a known scoring system.
func (s ScoringSystem) Valid() bool {
	switch s {
	case ScoreByBest, ScoreByAverage, ScoreByTotal:
		return true
	}
	return false
}

// Skater identifies a registered competitor. Profile fields are owned by the
// surrounding application; the engine only carries them through to reads.
type Skater struct {
	ID       string
	Name     string
	Stance   Stance
	Sponsors string
}

// Category is a competition bracket within a contest. Read-only to the engine.
type Category struct {
	ID              string
	ContestID       string
	Name            string
	Description     string
	EntryFee        float64
	MaxParticipants int // 0 means uncapped
}

// Heat is the unit of competition: an ordered group of skaters rotating
// through timed runs. Participants order is fixed at creation and defines the
// rotation. Version guards concurrent mutation.
type Heat struct {
	ID            string
	ContestID     string
	CategoryID    string
	Phase         Phase
	HeatNumber    int
	Participants  []string
	RunsPerSkater int
	TimePerRun    int // seconds
	RunType       RunType
	SkatersPerJam int // active group size when RunType is RunJam

	Status            HeatStatus
	CurrentSkaterIdx  int // 0-based index into Participants
	CurrentRun        int // 1-based

	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// GroupSize returns how many skaters share the active window: 1 for
// single-run heats, SkatersPerJam (clamped to the field size) for jams.
func (h *Heat) GroupSize() int {
	if h.RunType != RunJam || h.SkatersPerJam <= 1 {
		return 1
	}
	if h.SkatersPerJam > len(h.Participants) {
		return len(h.Participants)
	}
	return h.SkatersPerJam
}

// Score is one judge's evaluation of one skater's run. At most one score
// exists per (HeatID, SkaterID, JudgeID, RunNumber); re-submission overwrites.
type Score struct {
	ID        string
	HeatID    string
	SkaterID  string
	JudgeID   string
	RunNumber int
	Value     float64
	Notes     string // private to the submitting judge
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ScoreKey identifies the uniqueness constraint for a score.
type ScoreKey struct {
	HeatID    string
	SkaterID  string
	JudgeID   string
	RunNumber int
}

// Key returns the upsert key for s.
func (s *Score) Key() ScoreKey {
	return ScoreKey{HeatID: s.HeatID, SkaterID: s.SkaterID, JudgeID: s.JudgeID, RunNumber: s.RunNumber}
}

// Ranking is a derived standings row for one skater in one phase. The full
// set for a (contest, category, phase) is replaced wholesale on recompute.
type Ranking struct {
	ID           string
	ContestID    string
	CategoryID   string
	SkaterID     string
	SkaterName   string
	SkaterStance Stance
	Sponsors     string
	Phase        Phase
	Position     int // 1-based, unique
	BestScore    float64
	AverageScore float64
	TotalScore   float64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PhaseSettings is the per-phase configuration supplied at contest setup.
type PhaseSettings struct {
	Phase                  Phase
	RunsPerSkater          int
	TimePerRun             int // seconds
	AutoHeatThreshold      int
	MaxParticipantsPerHeat int // 0 means all qualifying skaters share one heat
	ScoringSystem          ScoringSystem
}

// Scope addresses one category's slice of one contest phase. Heats, scores,
// and rankings are all grouped by scope.
type Scope struct {
	ContestID  string
	CategoryID string
	Phase      Phase
}

// HeatView is the read shape for one heat: the record plus rotation-derived
// fields the consoles render.
type HeatView struct {
	Heat          Heat
	ActiveSkaters []string
	NextSkaters   []string
	Progress      float64
}

// PhaseResult reports a completed phase transition.
type PhaseResult struct {
	From      Phase
	To        Phase
	Advancers []Ranking
	Heats     []Heat
}

// Contest carries the engine-relevant slice of a contest record.
type Contest struct {
	ID            string
	Title         string
	RunType       RunType
	SkatersPerJam int
	CurrentPhase  Phase
}
