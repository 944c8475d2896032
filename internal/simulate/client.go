package simulate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/skatium/heatline/pkg/logger"
)

// client is a thin JSON wrapper over the service's HTTP API.
type client struct {
	baseURL string
	http    *http.Client
	stats   *Stats
	verbose bool
}

func newClient(cfg *Config, stats *Stats) *client {
	return &client{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: cfg.Timeout},
		stats:   stats,
		verbose: cfg.Verbose,
	}
}

// do sends a JSON request and decodes the response into out when non-nil.
// Statuses outside okStatuses fail with the response body in the error.
func (c *client) do(ctx context.Context, method, path string, body, out any, okStatuses ...int) error {
	c.stats.Requests++

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.stats.Errors++
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if c.verbose {
		logger.Get().Debug(ctx, "request done",
			logger.String("method", method),
			logger.String("path", path),
			logger.Int("status", resp.StatusCode),
		)
	}

	ok := false
	for _, status := range okStatuses {
		if resp.StatusCode == status {
			ok = true
			break
		}
	}
	if !ok {
		c.stats.Errors++
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: unexpected status %d: %s", method, path, resp.StatusCode, raw)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode %s %s: %w", method, path, err)
		}
	}
	return nil
}

// Wire shapes the simulator cares about.

type heatPayload struct {
	ID            string   `json:"id"`
	Phase         string   `json:"phase"`
	HeatNumber    int      `json:"heat_number"`
	Participants  []string `json:"participants"`
	RunsPerSkater int      `json:"runs_per_skater"`
	Status        string   `json:"status"`
}

type buildPayload struct {
	Built bool          `json:"built"`
	Heats []heatPayload `json:"heats"`
}

type advancePayload struct {
	Heat      heatPayload `json:"heat"`
	Completed bool        `json:"completed"`
}

type rankingPayload struct {
	Position   int     `json:"position"`
	SkaterID   string  `json:"skater_id"`
	SkaterName string  `json:"skater_name"`
	BestScore  float64 `json:"best_score"`
}

type phasePayload struct {
	From      string           `json:"from"`
	To        string           `json:"to"`
	Advancers []rankingPayload `json:"advancers"`
	Heats     []heatPayload    `json:"heats"`
}

func (c *client) health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, nil, http.StatusOK)
}

func (c *client) registerContest(ctx context.Context, id, title string) error {
	return c.do(ctx, http.MethodPost, "/contests",
		map[string]string{"id": id, "title": title}, nil, http.StatusCreated)
}

func (c *client) registerSkater(ctx context.Context, id, name string) error {
	return c.do(ctx, http.MethodPost, "/skaters",
		map[string]string{"id": id, "name": name}, nil, http.StatusCreated)
}

func (c *client) buildHeats(ctx context.Context, contestID, categoryID, phase string, pool []string) ([]heatPayload, error) {
	var out buildPayload
	err := c.do(ctx, http.MethodPost, "/heats/build", map[string]any{
		"contest_id":  contestID,
		"category_id": categoryID,
		"phase":       phase,
		"pool":        pool,
	}, &out, http.StatusCreated, http.StatusOK)
	return out.Heats, err
}

func (c *client) startHeat(ctx context.Context, heatID string) error {
	return c.do(ctx, http.MethodPost, "/heats/start",
		map[string]string{"heat_id": heatID}, nil, http.StatusOK)
}

func (c *client) advanceHeat(ctx context.Context, heatID string) (bool, error) {
	var out advancePayload
	err := c.do(ctx, http.MethodPost, "/heats/advance",
		map[string]string{"heat_id": heatID}, &out, http.StatusOK)
	return out.Completed, err
}

func (c *client) submitScore(ctx context.Context, heatID, skaterID, judgeID string, run int, value float64) error {
	return c.do(ctx, http.MethodPost, "/scores", map[string]any{
		"heat_id":    heatID,
		"skater_id":  skaterID,
		"judge_id":   judgeID,
		"run_number": run,
		"value":      value,
	}, nil, http.StatusCreated, http.StatusOK)
}

func (c *client) advancePhase(ctx context.Context, contestID, categoryID string) (phasePayload, error) {
	var out phasePayload
	err := c.do(ctx, http.MethodPost, "/phases/advance", map[string]string{
		"contest_id":  contestID,
		"category_id": categoryID,
	}, &out, http.StatusOK)
	return out, err
}

func (c *client) rankings(ctx context.Context, contestID, categoryID, phase string) ([]rankingPayload, error) {
	var out []rankingPayload
	err := c.do(ctx, http.MethodGet,
		"/rankings?contest_id="+contestID+"&category_id="+categoryID+"&phase="+phase,
		nil, &out, http.StatusOK)
	return out, err
}
