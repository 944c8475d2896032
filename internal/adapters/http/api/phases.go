// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/skatium/heatline/internal/domain/model"
)

// PhaseDependencies defines the interface for phase transitions.
type PhaseDependencies interface {
	AdvancePhase(ctx context.Context, contestID, categoryID string) (model.PhaseResult, error)
}

// PhasesHandler handles phase transition requests.
type PhasesHandler struct {
	deps PhaseDependencies
}

// NewPhasesHandler creates a new phases handler.
func NewPhasesHandler(deps PhaseDependencies) *PhasesHandler {
	return &PhasesHandler{deps: deps}
}

// phaseAdvanceRequest mirrors the wire schema for POST /phases/advance.
type phaseAdvanceRequest struct {
	ContestID  string `json:"contest_id"`
	CategoryID string `json:"category_id"`
}

type phaseAdvanceResponse struct {
	From      string            `json:"from"`
	To        string            `json:"to"`
	Advancers []rankingResponse `json:"advancers"`
	Heats     []heatResponse    `json:"heats"`
}

// HandleAdvance handles POST /phases/advance requests.
func (h *PhasesHandler) HandleAdvance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req phaseAdvanceRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if strings.TrimSpace(req.ContestID) == "" || strings.TrimSpace(req.CategoryID) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	result, err := h.deps.AdvancePhase(r.Context(), req.ContestID, req.CategoryID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := phaseAdvanceResponse{
		From:      string(result.From),
		To:        string(result.To),
		Advancers: make([]rankingResponse, len(result.Advancers)),
		Heats:     make([]heatResponse, len(result.Heats)),
	}
	for i, rk := range result.Advancers {
		resp.Advancers[i] = rankingResponse{
			Position:     rk.Position,
			SkaterID:     rk.SkaterID,
			SkaterName:   rk.SkaterName,
			BestScore:    rk.BestScore,
			AverageScore: rk.AverageScore,
			TotalScore:   rk.TotalScore,
		}
	}
	for i, ht := range result.Heats {
		resp.Heats[i] = toHeatResponse(ht)
	}
	writeJSON(w, http.StatusOK, resp)
}
