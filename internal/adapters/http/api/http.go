// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/skatium/heatline/internal/adapters/repository"
	service "github.com/skatium/heatline/internal/app"
	"github.com/skatium/heatline/internal/domain/heat"
	"github.com/skatium/heatline/internal/domain/model"
	"github.com/skatium/heatline/internal/domain/scoring"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Score operations.
	SubmitScore(ctx context.Context, sub scoring.Submission) (model.Score, bool, error)
	Scores(ctx context.Context, heatID string, filter scoring.Filter, viewerJudgeID string) ([]model.Score, error)

	// Heat operations.
	StartHeat(ctx context.Context, heatID string) (model.Heat, error)
	AdvanceHeat(ctx context.Context, heatID string) (model.Heat, heat.AdvanceResult, error)
	Heat(ctx context.Context, heatID string) (model.HeatView, error)
	BuildHeats(ctx context.Context, scope model.Scope, pool []string) ([]model.Heat, bool, error)

	// Phase and ranking operations.
	AdvancePhase(ctx context.Context, contestID, categoryID string) (model.PhaseResult, error)
	Rankings(ctx context.Context, scope model.Scope) ([]model.Ranking, error)

	// Registration.
	RegisterContest(ctx context.Context, contest model.Contest) error
	RegisterSkater(ctx context.Context, skater model.Skater) error
}

// Server wires HTTP routes for the contest API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	scoresHandler   *ScoresHandler
	heatsHandler    *HeatsHandler
	rankingsHandler *RankingsHandler
	phasesHandler   *PhasesHandler
	rosterHandler   *RosterHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		scoresHandler:   NewScoresHandler(deps),
		heatsHandler:    NewHeatsHandler(deps),
		rankingsHandler: NewRankingsHandler(deps),
		phasesHandler:   NewPhasesHandler(deps),
		rosterHandler:   NewRosterHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/scores", MetricsMiddleware(s.scoresHandler.HandleScores, "scores"))
	mux.HandleFunc("/heats/start", MetricsMiddleware(s.heatsHandler.HandleStart, "heats_start"))
	mux.HandleFunc("/heats/advance", MetricsMiddleware(s.heatsHandler.HandleAdvance, "heats_advance"))
	mux.HandleFunc("/heats/build", MetricsMiddleware(s.heatsHandler.HandleBuild, "heats_build"))
	mux.HandleFunc("/heats/", MetricsMiddleware(s.heatsHandler.HandleGet, "heats_get"))
	mux.HandleFunc("/phases/advance", MetricsMiddleware(s.phasesHandler.HandleAdvance, "phases_advance"))
	mux.HandleFunc("/rankings", MetricsMiddleware(s.rankingsHandler.HandleGet, "rankings"))
	mux.HandleFunc("/contests", MetricsMiddleware(s.rosterHandler.HandleContest, "contests"))
	mux.HandleFunc("/skaters", MetricsMiddleware(s.rosterHandler.HandleSkater, "skaters"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeDomainError translates service errors into HTTP responses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, repository.ErrConflict):
		writeError(w, http.StatusConflict, "conflict", err)
	case errors.Is(err, heat.ErrCompleted):
		writeError(w, http.StatusConflict, "heat_completed", err)
	case errors.Is(err, heat.ErrNoParticipants):
		writeError(w, http.StatusUnprocessableEntity, "no_participants", err)
	case errors.Is(err, scoring.ErrMissingField),
		errors.Is(err, scoring.ErrValueOutOfRange),
		errors.Is(err, scoring.ErrRunOutOfRange):
		writeError(w, http.StatusUnprocessableEntity, "invalid_score", err)
	case errors.Is(err, service.ErrPhaseNotComplete):
		writeError(w, http.StatusConflict, "phase_not_complete", err)
	case errors.Is(err, service.ErrTerminalPhase):
		writeError(w, http.StatusConflict, "terminal_phase", err)
	case errors.Is(err, service.ErrNoRankings):
		writeError(w, http.StatusConflict, "no_rankings", err)
	case errors.Is(err, service.ErrPoolBelowThreshold):
		writeError(w, http.StatusUnprocessableEntity, "pool_below_threshold", err)
	case errors.Is(err, service.ErrUnknownPhase):
		writeError(w, http.StatusBadRequest, "unknown_phase", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return ErrBadRequest
	}
	return nil
}
