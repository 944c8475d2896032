// Package config defines service configuration structures and loading.
//
// Conventions:
// - Defaults come from New; Load layers an optional YAML file and env vars.
// - External errors are wrapped via this package's sentinel kinds.
package config

import (
	"runtime"

	"github.com/skatium/heatline/internal/domain/heatbuild"
	"github.com/skatium/heatline/internal/domain/model"
)

// PhaseConfig is the per-phase contest setup consumed by the engine.
type PhaseConfig struct {
	// RunsPerSkater is how many runs each skater gets in a heat.
	RunsPerSkater int `koanf:"runs_per_skater"`

	// TimePerRun is the run duration in seconds.
	TimePerRun int `koanf:"time_per_run"`

	// AutoHeatThreshold is the minimum pool size before heats are built.
	AutoHeatThreshold int `koanf:"auto_heat_threshold"`

	// MaxParticipantsPerHeat caps heat size; 0 means one shared heat.
	MaxParticipantsPerHeat int `koanf:"max_participants_per_heat"`

	// ScoringSystem orders rankings: best, average, or total.
	ScoringSystem string `koanf:"scoring_system"`
}

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// SeedingPolicy spreads ranked skaters across later-phase heats:
	// sequential or snake.
	SeedingPolicy string `koanf:"seeding_policy"`

	// RecomputeQueueSize bounds the ranking recompute queue.
	RecomputeQueueSize int `koanf:"recompute_queue_size"`

	// RecomputeWorkers sets the number of recompute workers.
	RecomputeWorkers int `koanf:"recompute_workers"`

	// Phases holds the per-phase contest defaults, keyed by phase name.
	Phases map[string]PhaseConfig `koanf:"phases"`
}

// New returns a Config with the conventional contest defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		Addr:               ":9090",
		SeedingPolicy:      string(heatbuild.SeedSequential),
		RecomputeQueueSize: 1024,
		RecomputeWorkers:   runtime.NumCPU(),
		Phases: map[string]PhaseConfig{
			string(model.PhaseQualifier): {RunsPerSkater: 2, TimePerRun: 60, AutoHeatThreshold: 8, ScoringSystem: string(model.ScoreByBest)},
			string(model.PhaseSemi):      {RunsPerSkater: 2, TimePerRun: 60, AutoHeatThreshold: 6, ScoringSystem: string(model.ScoreByBest)},
			string(model.PhaseFinal):     {RunsPerSkater: 3, TimePerRun: 90, AutoHeatThreshold: 4, ScoringSystem: string(model.ScoreByBest)},
		},
	}
}

// PhaseSettings converts the configured phase block into the domain record.
// Returns ErrUnknownPhase when the phase has no configuration.
func (c *Config) PhaseSettings(phase model.Phase) (model.PhaseSettings, error) {
	pc, ok := c.Phases[string(phase)]
	if !ok {
		return model.PhaseSettings{}, ErrUnknownPhase
	}
	return model.PhaseSettings{
		Phase:                  phase,
		RunsPerSkater:          pc.RunsPerSkater,
		TimePerRun:             pc.TimePerRun,
		AutoHeatThreshold:      pc.AutoHeatThreshold,
		MaxParticipantsPerHeat: pc.MaxParticipantsPerHeat,
		ScoringSystem:          model.ScoringSystem(pc.ScoringSystem),
	}, nil
}
