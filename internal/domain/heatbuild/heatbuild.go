// Package heatbuild partitions a skater pool into heats.
//
// Building is pure: given the same pool and settings it produces the same
// partition, keeping heat assignment deterministic and auditable. Persistence
// plus the create-once guard live with the caller.
package heatbuild

import (
	"github.com/skatium/heatline/internal/domain/model"
)

// SeedingPolicy controls how an ordered pool spreads across several heats.
type SeedingPolicy string

const (
	// SeedSequential fills each heat before opening the next, preserving
	// pool order. This is the default policy.
	SeedSequential SeedingPolicy = "sequential"
	// SeedSnake deals the pool across heats in serpentine order so top
	// seeds land in different heats.
	SeedSnake SeedingPolicy = "snake"
)

// Settings configures a build for one (contest, category, phase) scope.
type Settings struct {
	AutoHeatThreshold      int
	MaxParticipantsPerHeat int // 0 puts all qualifying skaters in one heat
	Policy                 SeedingPolicy
}

// Ready reports whether the pool has reached the participation threshold.
func Ready(poolSize int, s Settings) bool {
	return s.AutoHeatThreshold > 0 && poolSize >= s.AutoHeatThreshold
}

// Build partitions pool into heats. It returns nil when the pool has not
// reached the threshold. Pool order is preserved within each heat.
func Build(pool []string, s Settings) ([][]string, error) {
	if len(pool) == 0 || !Ready(len(pool), s) {
		return nil, nil
	}

	max := s.MaxParticipantsPerHeat
	if max <= 0 || max >= len(pool) {
		single := make([]string, len(pool))
		copy(single, pool)
		return [][]string{single}, nil
	}

	heatCount := (len(pool) + max - 1) / max

	switch s.Policy {
	case SeedSnake:
		return snake(pool, heatCount), nil
	case SeedSequential, "":
		return sequential(pool, max), nil
	default:
		return nil, ErrUnknownPolicy
	}
}

// sequential chunks the pool in order, each heat filled to max before the
// next opens.
func sequential(pool []string, max int) [][]string {
	var heats [][]string
	for start := 0; start < len(pool); start += max {
		end := start + max
		if end > len(pool) {
			end = len(pool)
		}
		chunk := make([]string, end-start)
		copy(chunk, pool[start:end])
		heats = append(heats, chunk)
	}
	return heats
}

// snake deals pool entries across heatCount heats, reversing direction each
// pass: 0,1,2,2,1,0,0,1,2,...
func snake(pool []string, heatCount int) [][]string {
	heats := make([][]string, heatCount)
	idx, dir := 0, 1
	for _, skater := range pool {
		heats[idx] = append(heats[idx], skater)
		next := idx + dir
		if next < 0 || next >= heatCount {
			dir = -dir
		} else {
			idx = next
		}
	}
	return heats
}

// NewHeat assembles an unsaved heat record for one partition. Heat numbers
// are sequential from 1 within the scope and never reused.
func NewHeat(contestID, categoryID string, phase model.Phase, number int, participants []string, cfg model.PhaseSettings, runType model.RunType, skatersPerJam int) model.Heat {
	return model.Heat{
		ContestID:     contestID,
		CategoryID:    categoryID,
		Phase:         phase,
		HeatNumber:    number,
		Participants:  participants,
		RunsPerSkater: cfg.RunsPerSkater,
		TimePerRun:    cfg.TimePerRun,
		RunType:       runType,
		SkatersPerJam: skatersPerJam,
		Status:        model.HeatPending,
		CurrentRun:    1,
	}
}
