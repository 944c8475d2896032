// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/skatium/heatline/internal/domain/model"
)

// RankingDependencies defines the interface for ranking reads.
type RankingDependencies interface {
	Rankings(ctx context.Context, scope model.Scope) ([]model.Ranking, error)
}

// RankingsHandler handles ranking requests.
type RankingsHandler struct {
	deps RankingDependencies
}

// NewRankingsHandler creates a new rankings handler.
func NewRankingsHandler(deps RankingDependencies) *RankingsHandler {
	return &RankingsHandler{deps: deps}
}

type rankingResponse struct {
	Position     int     `json:"position"`
	SkaterID     string  `json:"skater_id"`
	SkaterName   string  `json:"skater_name,omitempty"`
	Stance       string  `json:"stance,omitempty"`
	Sponsors     string  `json:"sponsors,omitempty"`
	BestScore    float64 `json:"best_score"`
	AverageScore float64 `json:"average_score"`
	TotalScore   float64 `json:"total_score"`
}

// HandleGet handles GET /rankings?contest_id=&category_id=&phase= requests.
func (h *RankingsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	q := r.URL.Query()
	scope := model.Scope{
		ContestID:  q.Get("contest_id"),
		CategoryID: q.Get("category_id"),
		Phase:      model.Phase(q.Get("phase")),
	}
	if scope.ContestID == "" || scope.CategoryID == "" || !scope.Phase.Valid() {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	rankings, err := h.deps.Rankings(r.Context(), scope)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	out := make([]rankingResponse, len(rankings))
	for i, rk := range rankings {
		out[i] = rankingResponse{
			Position:     rk.Position,
			SkaterID:     rk.SkaterID,
			SkaterName:   rk.SkaterName,
			Stance:       string(rk.SkaterStance),
			Sponsors:     rk.Sponsors,
			BestScore:    rk.BestScore,
			AverageScore: rk.AverageScore,
			TotalScore:   rk.TotalScore,
		}
	}
	writeJSON(w, http.StatusOK, out)
}
