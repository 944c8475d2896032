package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/skatium/heatline/internal/simulate"
	"github.com/skatium/heatline/pkg/logger"
)

// Default configuration constants.
const (
	defaultSkaters    = 8
	defaultJudges     = 3
	defaultTimeout    = 10 * time.Second
	defaultRunTimeout = 5 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:9090", "Base URL of the service")
		contestID  = flag.String("contest", "sim-contest", "Contest identifier to register")
		categoryID = flag.String("category", "street-open", "Category identifier to run")
		skaters    = flag.Int("skaters", defaultSkaters, "Qualifier field size")
		judges     = flag.Int("judges", defaultJudges, "Number of judges scoring every run")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		seed       = flag.Int64("seed", 0, "Score generator seed (0 picks a random one)")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	if *verbose {
		_ = logger.SetLevelString("debug")
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	config := &simulate.Config{
		BaseURL:    *baseURL,
		ContestID:  *contestID,
		CategoryID: *categoryID,
		Skaters:    *skaters,
		Judges:     *judges,
		Timeout:    *timeout,
		Seed:       *seed,
		Verbose:    *verbose,
	}

	if _, err := simulate.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Simulation failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
