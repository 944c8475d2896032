// Package scoring validates judge score submissions and shapes score reads.
package scoring

import (
	"sort"
	"strings"

	"github.com/skatium/heatline/internal/domain/model"
)

// Score bounds, inclusive.
const (
	MinValue = 0.0
	MaxValue = 10.0
)

// Submission is one judge's score for one run, before persistence.
type Submission struct {
	HeatID    string
	SkaterID  string
	JudgeID   string
	RunNumber int
	Value     float64
	Notes     string
}

// Validate checks a submission against the score bounds and the heat's run
// range. runsPerSkater comes from the target heat.
func Validate(sub Submission, runsPerSkater int) error {
	switch {
	case strings.TrimSpace(sub.HeatID) == "",
		strings.TrimSpace(sub.SkaterID) == "",
		strings.TrimSpace(sub.JudgeID) == "":
		return ErrMissingField
	}
	if sub.Value < MinValue || sub.Value > MaxValue {
		return ErrValueOutOfRange
	}
	if sub.RunNumber < 1 || sub.RunNumber > runsPerSkater {
		return ErrRunOutOfRange
	}
	return nil
}

// Filter narrows a score read. Zero values match everything.
type Filter struct {
	SkaterID string
	JudgeID  string
}

// Apply filters scores in place-order and, when the filter pins down a single
// skater/judge pair, sorts the result by run number ascending.
func (f Filter) Apply(scores []model.Score) []model.Score {
	out := make([]model.Score, 0, len(scores))
	for _, s := range scores {
		if f.SkaterID != "" && s.SkaterID != f.SkaterID {
			continue
		}
		if f.JudgeID != "" && s.JudgeID != f.JudgeID {
			continue
		}
		out = append(out, s)
	}
	if f.SkaterID != "" && f.JudgeID != "" {
		sort.Slice(out, func(i, j int) bool { return out[i].RunNumber < out[j].RunNumber })
	}
	return out
}

// RedactNotes strips judge notes from every score not submitted by judgeID.
// Notes are private to their author.
func RedactNotes(scores []model.Score, judgeID string) []model.Score {
	out := make([]model.Score, len(scores))
	copy(out, scores)
	for i := range out {
		if out[i].JudgeID != judgeID {
			out[i].Notes = ""
		}
	}
	return out
}
