// Package repository defines the persistence contracts for the contest
// engine and an in-memory implementation.
package repository

import (
	"context"

	"github.com/skatium/heatline/internal/domain/model"
)

// HeatStore persists heats. Mutations go through MutateHeat so the
// implementation can serialize writers per heat.
type HeatStore interface {
	// CreateHeats persists new heats, minting ids for records without one.
	CreateHeats(ctx context.Context, heats []model.Heat) ([]model.Heat, error)

	// Heat returns a heat by id. ErrNotFound when absent.
	Heat(ctx context.Context, id string) (model.Heat, error)

	// HeatsByScope returns all heats for a scope, ordered by heat number.
	HeatsByScope(ctx context.Context, scope model.Scope) ([]model.Heat, error)

	// MutateHeat applies fn to the stored heat under the heat's write lock
	// and returns the updated record. The mutation is atomic: no two
	// mutations of the same heat interleave, and fn returning an error
	// leaves the heat unchanged.
	MutateHeat(ctx context.Context, id string, fn func(*model.Heat) error) (model.Heat, error)
}

// ScoreStore persists judge scores with upsert-by-key semantics.
type ScoreStore interface {
	// UpsertScore writes a score. When a score already exists for the same
	// (heat, skater, judge, run) key its value and notes are replaced, its
	// creation timestamp kept. Returns the stored record and whether it
	// was newly created.
	UpsertScore(ctx context.Context, score model.Score) (model.Score, bool, error)

	// ScoresByHeat returns every score recorded for a heat.
	ScoresByHeat(ctx context.Context, heatID string) ([]model.Score, error)
}

// RankingStore persists derived standings. A scope's set is replaced
// wholesale so readers never observe a half-updated table.
type RankingStore interface {
	ReplaceRankings(ctx context.Context, scope model.Scope, rankings []model.Ranking) error
	Rankings(ctx context.Context, scope model.Scope) ([]model.Ranking, error)
}

// ContestStore persists the engine-relevant contest slice.
type ContestStore interface {
	PutContest(ctx context.Context, contest model.Contest) error
	Contest(ctx context.Context, id string) (model.Contest, error)

	// AdvancePhase moves a contest's phase pointer from expected to next.
	// Fails with ErrConflict when the stored phase is no longer expected,
	// which serializes concurrent transitions.
	AdvancePhase(ctx context.Context, contestID string, expected, next model.Phase) error
}

// RosterStore keeps the skater profiles the engine carries through to reads.
type RosterStore interface {
	PutSkater(ctx context.Context, skater model.Skater) error
	Skater(ctx context.Context, id string) (model.Skater, error)
}

// Store bundles every persistence concern the engine needs.
type Store interface {
	HeatStore
	ScoreStore
	RankingStore
	ContestStore
	RosterStore
}
