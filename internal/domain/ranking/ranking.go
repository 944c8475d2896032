// Package ranking aggregates judge scores into phase standings.
//
// Compute is a pure function of its input: given the same scores and scoring
// system it always yields the same ordering, so callers may recompute
// redundantly and converge.
package ranking

import (
	"sort"

	"github.com/skatium/heatline/internal/domain/model"
)

// Standing is one skater's aggregated result within a phase. Position is
// 1-based and unique; the scope (contest, category, phase) is the caller's.
type Standing struct {
	SkaterID     string
	Position     int
	BestScore    float64
	AverageScore float64
	TotalScore   float64
	ScoreCount   int
}

// Compute aggregates scores per skater and orders them by the configured
// scoring system, best score descending. Ties on the primary metric break by
// best score descending, then skater id ascending, so the order is total and
// reproducible.
func Compute(scores []model.Score, system model.ScoringSystem) ([]Standing, error) {
	if !system.Valid() {
		return nil, ErrUnknownSystem
	}

	bySkater := make(map[string]*Standing)
	for i := range scores {
		s := &scores[i]
		st, ok := bySkater[s.SkaterID]
		if !ok {
			st = &Standing{SkaterID: s.SkaterID, BestScore: s.Value}
			bySkater[s.SkaterID] = st
		}
		if s.Value > st.BestScore {
			st.BestScore = s.Value
		}
		st.TotalScore += s.Value
		st.ScoreCount++
	}

	standings := make([]Standing, 0, len(bySkater))
	for _, st := range bySkater {
		st.AverageScore = st.TotalScore / float64(st.ScoreCount)
		standings = append(standings, *st)
	}

	sort.Slice(standings, func(i, j int) bool {
		a, b := &standings[i], &standings[j]
		am, bm := metric(a, system), metric(b, system)
		if am != bm {
			return am > bm
		}
		if a.BestScore != b.BestScore {
			return a.BestScore > b.BestScore
		}
		return a.SkaterID < b.SkaterID
	})

	for i := range standings {
		standings[i].Position = i + 1
	}
	return standings, nil
}

// TopK returns the first k standings, or all of them when fewer exist.
// Ranking order is preserved so later phases seed from it directly.
func TopK(standings []Standing, k int) []Standing {
	if k <= 0 || k >= len(standings) {
		return standings
	}
	return standings[:k]
}

func metric(s *Standing, system model.ScoringSystem) float64 {
	switch system {
	case model.ScoreByAverage:
		return s.AverageScore
	case model.ScoreByTotal:
		return s.TotalScore
	default:
		return s.BestScore
	}
}
