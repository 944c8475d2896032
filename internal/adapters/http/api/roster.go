// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/skatium/heatline/internal/domain/model"
)

// RosterDependencies defines the interface for registration operations.
type RosterDependencies interface {
	RegisterContest(ctx context.Context, contest model.Contest) error
	RegisterSkater(ctx context.Context, skater model.Skater) error
}

// RosterHandler handles contest and skater registration.
type RosterHandler struct {
	deps RosterDependencies
}

// NewRosterHandler creates a new roster handler.
func NewRosterHandler(deps RosterDependencies) *RosterHandler {
	return &RosterHandler{deps: deps}
}

// contestRequest mirrors the wire schema for POST /contests.
type contestRequest struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	RunType       string `json:"run_type,omitempty"`
	SkatersPerJam int    `json:"skaters_per_jam,omitempty"`
	CurrentPhase  string `json:"current_phase,omitempty"`
}

// HandleContest handles POST /contests requests.
func (h *RosterHandler) HandleContest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req contestRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if strings.TrimSpace(req.ID) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	runType := model.RunType(req.RunType)
	if runType == "" {
		runType = model.RunSingle
	}

	err := h.deps.RegisterContest(r.Context(), model.Contest{
		ID:            req.ID,
		Title:         req.Title,
		RunType:       runType,
		SkatersPerJam: req.SkatersPerJam,
		CurrentPhase:  model.Phase(req.CurrentPhase),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "registered"})
}

// skaterRequest mirrors the wire schema for POST /skaters.
type skaterRequest struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Stance   string `json:"stance,omitempty"`
	Sponsors string `json:"sponsors,omitempty"`
}

// HandleSkater handles POST /skaters requests.
func (h *RosterHandler) HandleSkater(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req skaterRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if strings.TrimSpace(req.ID) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	err := h.deps.RegisterSkater(r.Context(), model.Skater{
		ID:       req.ID,
		Name:     req.Name,
		Stance:   model.Stance(req.Stance),
		Sponsors: req.Sponsors,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "registered"})
}
