package simulate

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/skatium/heatline/pkg/logger"
)

const (
	defaultSkaters = 8
	defaultJudges  = 3
	defaultTimeout = 10 * time.Second

	// rankingsPollInterval paces the wait for the asynchronous
	// recompute to land after the last heat of a phase completes.
	rankingsPollInterval = 200 * time.Millisecond
	rankingsPollAttempts = 25
)

// Run drives one full contest against the server at cfg.BaseURL and
// returns the accumulated stats.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	applyDefaults(cfg)

	stats := &Stats{StartTime: time.Now()}
	c := newClient(cfg, stats)
	log := logger.Get().Named("simulate")
	rng := rand.New(rand.NewSource(cfg.Seed))

	// Step 1: make sure the server is up before generating anything.
	if err := c.health(ctx); err != nil {
		return stats, fmt.Errorf("health check: %w", err)
	}

	// Step 2: register the contest and the qualifier field.
	if err := c.registerContest(ctx, cfg.ContestID, "Simulated Contest"); err != nil {
		return stats, err
	}
	pool := make([]string, cfg.Skaters)
	for i := range pool {
		pool[i] = fmt.Sprintf("skater-%02d", i+1)
		if err := c.registerSkater(ctx, pool[i], fmt.Sprintf("Skater %02d", i+1)); err != nil {
			return stats, err
		}
	}
	log.Info(ctx, "field registered",
		logger.String("contest", cfg.ContestID),
		logger.Int("skaters", cfg.Skaters),
	)

	// Step 3: build the qualifier bracket.
	heats, err := c.buildHeats(ctx, cfg.ContestID, cfg.CategoryID, "qualifier", pool)
	if err != nil {
		return stats, fmt.Errorf("build qualifier: %w", err)
	}

	// Step 4: run every phase to completion, advancing between them.
	phase := "qualifier"
	for {
		if err := runHeats(ctx, c, log, rng, cfg, heats); err != nil {
			return stats, fmt.Errorf("run %s heats: %w", phase, err)
		}
		log.Info(ctx, "phase complete",
			logger.String("phase", phase),
			logger.Int("heats", len(heats)),
		)

		if phase == "final" {
			break
		}
		next, err := c.advancePhase(ctx, cfg.ContestID, cfg.CategoryID)
		if err != nil {
			return stats, fmt.Errorf("advance from %s: %w", phase, err)
		}
		stats.PhaseAdvances++
		log.Info(ctx, "phase advanced",
			logger.String("from", next.From),
			logger.String("to", next.To),
			logger.Int("advancers", len(next.Advancers)),
		)
		phase = next.To
		heats = next.Heats
	}

	// Step 5: wait for the final recompute and verify the standings.
	standings, err := awaitRankings(ctx, c, cfg, "final")
	if err != nil {
		return stats, err
	}
	if err := verifyStandings(standings); err != nil {
		return stats, err
	}
	log.Info(ctx, "contest decided",
		logger.String("winner", standings[0].SkaterID),
		logger.String("name", standings[0].SkaterName),
		logger.Float64("best", standings[0].BestScore),
	)

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	log.Info(ctx, "simulation finished",
		logger.Duration("duration", stats.Duration),
		logger.Int("scores", stats.ScoresSubmitted),
		logger.Int("heats", stats.HeatsCompleted),
		logger.Int("requests", stats.Requests),
		logger.Int("errors", stats.Errors),
	)
	return stats, nil
}

func applyDefaults(cfg *Config) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:9090"
	}
	if cfg.ContestID == "" {
		cfg.ContestID = "sim-contest"
	}
	if cfg.CategoryID == "" {
		cfg.CategoryID = "street-open"
	}
	if cfg.Skaters <= 0 {
		cfg.Skaters = defaultSkaters
	}
	if cfg.Judges <= 0 {
		cfg.Judges = defaultJudges
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
}

// runHeats scores and completes every heat of the current phase. Each
// run gets one score per judge before the rotation advances past it.
func runHeats(ctx context.Context, c *client, log logger.Logger, rng *rand.Rand, cfg *Config, heats []heatPayload) error {
	for _, h := range heats {
		if err := c.startHeat(ctx, h.ID); err != nil {
			return err
		}
		for run := 1; run <= h.RunsPerSkater; run++ {
			for _, skaterID := range h.Participants {
				for j := 1; j <= cfg.Judges; j++ {
					judgeID := fmt.Sprintf("judge-%d", j)
					value := 3.0 + rng.Float64()*7.0
					if err := c.submitScore(ctx, h.ID, skaterID, judgeID, run, value); err != nil {
						return err
					}
					c.stats.ScoresSubmitted++
				}
				completed, err := c.advanceHeat(ctx, h.ID)
				if err != nil {
					return err
				}
				if completed {
					c.stats.HeatsCompleted++
				}
			}
		}
		if cfg.Verbose {
			log.Debug(ctx, "heat finished",
				logger.String("heat", h.ID),
				logger.Int("number", h.HeatNumber),
			)
		}
	}
	return nil
}

// awaitRankings polls until the recompute for the given phase has
// produced standings, or gives up after rankingsPollAttempts.
func awaitRankings(ctx context.Context, c *client, cfg *Config, phase string) ([]rankingPayload, error) {
	var last error
	for attempt := 0; attempt < rankingsPollAttempts; attempt++ {
		rows, err := c.rankings(ctx, cfg.ContestID, cfg.CategoryID, phase)
		if err == nil && len(rows) > 0 {
			return rows, nil
		}
		last = err
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(rankingsPollInterval):
		}
	}
	if last != nil {
		return nil, fmt.Errorf("rankings never appeared for %s: %w", phase, last)
	}
	return nil, fmt.Errorf("rankings never appeared for %s", phase)
}

// verifyStandings checks that positions are contiguous from one and
// best scores never increase down the table.
func verifyStandings(rows []rankingPayload) error {
	for i, row := range rows {
		if row.Position != i+1 {
			return fmt.Errorf("standings: position %d at index %d", row.Position, i)
		}
		if i > 0 && row.BestScore > rows[i-1].BestScore {
			return fmt.Errorf("standings: %s outscores the rank above it", row.SkaterID)
		}
	}
	return nil
}
