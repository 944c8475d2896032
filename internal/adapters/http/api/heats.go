// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/skatium/heatline/internal/domain/heat"
	"github.com/skatium/heatline/internal/domain/model"
)

// HeatDependencies defines the interface for heat operations.
type HeatDependencies interface {
	StartHeat(ctx context.Context, heatID string) (model.Heat, error)
	AdvanceHeat(ctx context.Context, heatID string) (model.Heat, heat.AdvanceResult, error)
	Heat(ctx context.Context, heatID string) (model.HeatView, error)
	BuildHeats(ctx context.Context, scope model.Scope, pool []string) ([]model.Heat, bool, error)
}

// HeatsHandler handles heat lifecycle requests.
type HeatsHandler struct {
	deps HeatDependencies
}

// NewHeatsHandler creates a new heats handler.
func NewHeatsHandler(deps HeatDependencies) *HeatsHandler {
	return &HeatsHandler{deps: deps}
}

type heatResponse struct {
	ID               string    `json:"id"`
	ContestID        string    `json:"contest_id"`
	CategoryID       string    `json:"category_id"`
	Phase            string    `json:"phase"`
	HeatNumber       int       `json:"heat_number"`
	Participants     []string  `json:"participants"`
	RunsPerSkater    int       `json:"runs_per_skater"`
	TimePerRun       int       `json:"time_per_run"`
	RunType          string    `json:"run_type"`
	SkatersPerJam    int       `json:"skaters_per_jam,omitempty"`
	Status           string    `json:"status"`
	CurrentSkaterIdx int       `json:"current_skater_index"`
	CurrentRun       int       `json:"current_run"`
	Version          int       `json:"version"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func toHeatResponse(h model.Heat) heatResponse {
	return heatResponse{
		ID:               h.ID,
		ContestID:        h.ContestID,
		CategoryID:       h.CategoryID,
		Phase:            string(h.Phase),
		HeatNumber:       h.HeatNumber,
		Participants:     h.Participants,
		RunsPerSkater:    h.RunsPerSkater,
		TimePerRun:       h.TimePerRun,
		RunType:          string(h.RunType),
		SkatersPerJam:    h.SkatersPerJam,
		Status:           string(h.Status),
		CurrentSkaterIdx: h.CurrentSkaterIdx,
		CurrentRun:       h.CurrentRun,
		Version:          h.Version,
		UpdatedAt:        h.UpdatedAt,
	}
}

type heatViewResponse struct {
	heatResponse
	ActiveSkaters []string `json:"active_skaters"`
	NextSkaters   []string `json:"next_skaters"`
	Progress      float64  `json:"progress"`
}

// heatIDRequest is the body for heat lifecycle commands.
type heatIDRequest struct {
	HeatID string `json:"heat_id"`
}

// HandleStart handles POST /heats/start requests.
func (h *HeatsHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	heatID, ok := h.commandHeatID(w, r)
	if !ok {
		return
	}

	started, err := h.deps.StartHeat(r.Context(), heatID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toHeatResponse(started))
}

type advanceResponse struct {
	Heat          heatResponse `json:"heat"`
	Completed     bool         `json:"completed"`
	ActiveSkaters []string     `json:"active_skaters"`
}

// HandleAdvance handles POST /heats/advance requests.
func (h *HeatsHandler) HandleAdvance(w http.ResponseWriter, r *http.Request) {
	heatID, ok := h.commandHeatID(w, r)
	if !ok {
		return
	}

	updated, res, err := h.deps.AdvanceHeat(r.Context(), heatID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, advanceResponse{
		Heat:          toHeatResponse(updated),
		Completed:     res.Completed,
		ActiveSkaters: heat.ActiveSkaters(&updated),
	})
}

// HandleGet handles GET /heats/{id} requests.
func (h *HeatsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/heats/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	view, err := h.deps.Heat(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, heatViewResponse{
		heatResponse:  toHeatResponse(view.Heat),
		ActiveSkaters: view.ActiveSkaters,
		NextSkaters:   view.NextSkaters,
		Progress:      view.Progress,
	})
}

// buildRequest mirrors the wire schema for POST /heats/build.
type buildRequest struct {
	ContestID  string   `json:"contest_id"`
	CategoryID string   `json:"category_id"`
	Phase      string   `json:"phase"`
	Pool       []string `json:"pool"`
}

func (b buildRequest) validate() error {
	switch {
	case strings.TrimSpace(b.ContestID) == "",
		strings.TrimSpace(b.CategoryID) == "":
		return ErrBadRequest
	}
	if !model.Phase(b.Phase).Valid() {
		return ErrBadRequest
	}
	return nil
}

type buildResponse struct {
	Built bool           `json:"built"`
	Heats []heatResponse `json:"heats"`
}

// HandleBuild handles POST /heats/build requests. Builds are idempotent per
// scope: a repeat answers 200 with the existing heats instead of 201.
func (h *HeatsHandler) HandleBuild(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req buildRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	scope := model.Scope{
		ContestID:  req.ContestID,
		CategoryID: req.CategoryID,
		Phase:      model.Phase(req.Phase),
	}
	heats, built, err := h.deps.BuildHeats(r.Context(), scope, req.Pool)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	out := make([]heatResponse, len(heats))
	for i, hr := range heats {
		out[i] = toHeatResponse(hr)
	}
	status := http.StatusOK
	if built {
		status = http.StatusCreated
	}
	writeJSON(w, status, buildResponse{Built: built, Heats: out})
}

// commandHeatID decodes and validates the heat id body shared by the
// lifecycle commands.
func (h *HeatsHandler) commandHeatID(w http.ResponseWriter, r *http.Request) (string, bool) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return "", false
	}

	var req heatIDRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return "", false
	}
	if strings.TrimSpace(req.HeatID) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return "", false
	}
	return req.HeatID, true
}
