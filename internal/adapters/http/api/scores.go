// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/skatium/heatline/internal/domain/model"
	"github.com/skatium/heatline/internal/domain/scoring"
)

// judgeHeader carries the requesting judge's id; only that judge's private
// notes survive redaction on reads.
const judgeHeader = "X-Judge-ID"

// ScoreDependencies defines the interface for score operations.
type ScoreDependencies interface {
	SubmitScore(ctx context.Context, sub scoring.Submission) (model.Score, bool, error)
	Scores(ctx context.Context, heatID string, filter scoring.Filter, viewerJudgeID string) ([]model.Score, error)
}

// ScoresHandler handles score submission and reads.
type ScoresHandler struct {
	deps ScoreDependencies
}

// NewScoresHandler creates a new scores handler.
func NewScoresHandler(deps ScoreDependencies) *ScoresHandler {
	return &ScoresHandler{deps: deps}
}

// scoreRequest mirrors the wire schema for POST /scores.
type scoreRequest struct {
	HeatID    string  `json:"heat_id"`
	SkaterID  string  `json:"skater_id"`
	JudgeID   string  `json:"judge_id"`
	RunNumber int     `json:"run_number"`
	Value     float64 `json:"value"`
	Notes     string  `json:"notes,omitempty"`
}

func (s scoreRequest) validate() error {
	switch {
	case strings.TrimSpace(s.HeatID) == "",
		strings.TrimSpace(s.SkaterID) == "",
		strings.TrimSpace(s.JudgeID) == "":
		return ErrBadRequest
	}
	return nil
}

type scoreResponse struct {
	ID        string    `json:"id"`
	HeatID    string    `json:"heat_id"`
	SkaterID  string    `json:"skater_id"`
	JudgeID   string    `json:"judge_id"`
	RunNumber int       `json:"run_number"`
	Value     float64   `json:"value"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toScoreResponse(s model.Score) scoreResponse {
	return scoreResponse{
		ID:        s.ID,
		HeatID:    s.HeatID,
		SkaterID:  s.SkaterID,
		JudgeID:   s.JudgeID,
		RunNumber: s.RunNumber,
		Value:     s.Value,
		Notes:     s.Notes,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

// HandleScores routes POST and GET /scores requests.
func (h *ScoresHandler) HandleScores(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handleSubmit(w, r)
	case http.MethodGet:
		h.handleList(w, r)
	default:
		http.NotFound(w, r)
	}
}

// handleSubmit handles POST /scores. Re-submission for the same
// (heat, skater, judge, run) overwrites and answers 200 instead of 201.
func (h *ScoresHandler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	stored, created, err := h.deps.SubmitScore(r.Context(), scoring.Submission{
		HeatID:    req.HeatID,
		SkaterID:  req.SkaterID,
		JudgeID:   req.JudgeID,
		RunNumber: req.RunNumber,
		Value:     req.Value,
		Notes:     req.Notes,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, toScoreResponse(stored))
}

// handleList handles GET /scores?heat_id=&skater_id=&judge_id= requests.
func (h *ScoresHandler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	heatID := q.Get("heat_id")
	if heatID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	scores, err := h.deps.Scores(r.Context(), heatID, scoring.Filter{
		SkaterID: q.Get("skater_id"),
		JudgeID:  q.Get("judge_id"),
	}, r.Header.Get(judgeHeader))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	out := make([]scoreResponse, len(scores))
	for i, s := range scores {
		out[i] = toScoreResponse(s)
	}
	writeJSON(w, http.StatusOK, out)
}
