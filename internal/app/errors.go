package service

import "errors"

var (
	// ErrPhaseNotComplete is returned when a phase transition is requested
	// while the scope still has unfinished heats.
	ErrPhaseNotComplete = errors.New("phase has unfinished heats")

	// ErrTerminalPhase is returned when the contest is already in its
	// final phase.
	ErrTerminalPhase = errors.New("contest is in its terminal phase")

	// ErrPoolBelowThreshold is returned when a heat build is requested
	// before the pool reaches the phase's participation threshold.
	ErrPoolBelowThreshold = errors.New("pool below auto-heat threshold")

	// ErrUnknownPhase is returned when no settings exist for a phase.
	ErrUnknownPhase = errors.New("unknown phase")

	// ErrNoRankings is returned when a phase transition finds no standings
	// to seed the next phase from.
	ErrNoRankings = errors.New("no rankings for phase")
)
