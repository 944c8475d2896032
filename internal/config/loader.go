package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/skatium/heatline/internal/domain/heatbuild"
	"github.com/skatium/heatline/internal/domain/model"
)

// Load builds a Config by layering defaults, an optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New)
//  2. file (YAML) if HEATLINE_CONFIG is set
//  3. env (prefix HEATLINE_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("HEATLINE_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: HEATLINE_ADDR, HEATLINE_LOG_LEVEL, ...
	// Keys keep their underscores to match the koanf tags on the struct.
	envProvider := env.Provider("HEATLINE_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "heatline_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	switch heatbuild.SeedingPolicy(c.SeedingPolicy) {
	case heatbuild.SeedSequential, heatbuild.SeedSnake:
	default:
		return fmt.Errorf("%w: unknown seeding_policy %q", ErrInvalidConfig, c.SeedingPolicy)
	}
	for name, pc := range c.Phases {
		if !model.Phase(name).Valid() {
			return fmt.Errorf("%w: unknown phase %q", ErrInvalidConfig, name)
		}
		if pc.RunsPerSkater < 1 {
			return fmt.Errorf("%w: phase %s needs at least one run per skater", ErrInvalidConfig, name)
		}
		if pc.TimePerRun < 1 {
			return fmt.Errorf("%w: phase %s needs a positive time_per_run", ErrInvalidConfig, name)
		}
		if !model.ScoringSystem(pc.ScoringSystem).Valid() {
			return fmt.Errorf("%w: phase %s has unknown scoring_system %q", ErrInvalidConfig, name, pc.ScoringSystem)
		}
	}
	return nil
}
