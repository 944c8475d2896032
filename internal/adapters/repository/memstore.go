package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/skatium/heatline/internal/domain/model"
)

// MemStore is an in-memory Store. Heat mutations are serialized per heat by
// a lock owned by each entry; score upserts are atomic under the score lock,
// so re-submissions are last-write-wins without read-then-write races.
type MemStore struct {
	now func() time.Time

	mu       sync.RWMutex
	heats    map[string]*heatEntry
	scores   map[string]map[model.ScoreKey]model.Score // heat id -> key -> score
	rankings map[model.Scope][]model.Ranking
	contests map[string]model.Contest
	skaters  map[string]model.Skater
}

// heatEntry pairs a heat with its writer lock. The entry lock, not the map
// lock, serializes mutations so unrelated heats never contend.
type heatEntry struct {
	mu   sync.Mutex
	heat model.Heat
}

// Option applies a configuration option to the MemStore.
type Option func(*MemStore)

// WithNow overrides the store's clock.
func WithNow(now func() time.Time) Option {
	return func(s *MemStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewMemStore creates an empty in-memory store.
func NewMemStore(opts ...Option) *MemStore {
	s := &MemStore{
		now:      time.Now,
		heats:    make(map[string]*heatEntry),
		scores:   make(map[string]map[model.ScoreKey]model.Score),
		rankings: make(map[model.Scope][]model.Ranking),
		contests: make(map[string]model.Contest),
		skaters:  make(map[string]model.Skater),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateHeats persists new heats, minting ids for records without one.
func (s *MemStore) CreateHeats(ctx context.Context, heats []model.Heat) ([]model.Heat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Heat, 0, len(heats))
	ts := s.now()
	for _, h := range heats {
		if h.ID == "" {
			h.ID = uuid.NewString()
		}
		h.Version = 1
		h.CreatedAt = ts
		h.UpdatedAt = ts
		s.heats[h.ID] = &heatEntry{heat: cloneHeat(h)}
		out = append(out, cloneHeat(h))
	}
	return out, nil
}

// Heat returns a heat by id.
func (s *MemStore) Heat(ctx context.Context, id string) (model.Heat, error) {
	s.mu.RLock()
	entry, ok := s.heats[id]
	s.mu.RUnlock()
	if !ok {
		return model.Heat{}, ErrNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return cloneHeat(entry.heat), nil
}

// HeatsByScope returns all heats for a scope, ordered by heat number.
func (s *MemStore) HeatsByScope(ctx context.Context, scope model.Scope) ([]model.Heat, error) {
	s.mu.RLock()
	entries := make([]*heatEntry, 0)
	for _, entry := range s.heats {
		entries = append(entries, entry)
	}
	s.mu.RUnlock()

	var out []model.Heat
	for _, entry := range entries {
		entry.mu.Lock()
		h := entry.heat
		if h.ContestID == scope.ContestID && h.CategoryID == scope.CategoryID && h.Phase == scope.Phase {
			out = append(out, cloneHeat(h))
		}
		entry.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].HeatNumber < out[j].HeatNumber })
	return out, nil
}

// MutateHeat applies fn under the heat's writer lock. fn sees a copy; the
// copy replaces the stored record only when fn succeeds.
func (s *MemStore) MutateHeat(ctx context.Context, id string, fn func(*model.Heat) error) (model.Heat, error) {
	s.mu.RLock()
	entry, ok := s.heats[id]
	s.mu.RUnlock()
	if !ok {
		return model.Heat{}, ErrNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	updated := cloneHeat(entry.heat)
	if err := fn(&updated); err != nil {
		return model.Heat{}, err
	}
	updated.Version = entry.heat.Version + 1
	updated.UpdatedAt = s.now()
	entry.heat = cloneHeat(updated)
	return updated, nil
}

// UpsertScore writes a score, replacing any score with the same key.
func (s *MemStore) UpsertScore(ctx context.Context, score model.Score) (model.Score, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byKey, ok := s.scores[score.HeatID]
	if !ok {
		byKey = make(map[model.ScoreKey]model.Score)
		s.scores[score.HeatID] = byKey
	}

	ts := s.now()
	key := score.Key()
	if existing, seen := byKey[key]; seen {
		existing.Value = score.Value
		existing.Notes = score.Notes
		existing.UpdatedAt = ts
		byKey[key] = existing
		return existing, false, nil
	}

	if score.ID == "" {
		score.ID = uuid.NewString()
	}
	score.CreatedAt = ts
	score.UpdatedAt = ts
	byKey[key] = score
	return score, true, nil
}

// ScoresByHeat returns every score recorded for a heat.
func (s *MemStore) ScoresByHeat(ctx context.Context, heatID string) ([]model.Score, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byKey := s.scores[heatID]
	out := make([]model.Score, 0, len(byKey))
	for _, sc := range byKey {
		out = append(out, sc)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := &out[i], &out[j]
		if a.SkaterID != b.SkaterID {
			return a.SkaterID < b.SkaterID
		}
		if a.JudgeID != b.JudgeID {
			return a.JudgeID < b.JudgeID
		}
		return a.RunNumber < b.RunNumber
	})
	return out, nil
}

// ReplaceRankings swaps in a scope's new standings wholesale.
func (s *MemStore) ReplaceRankings(ctx context.Context, scope model.Scope, rankings []model.Ranking) error {
	fresh := make([]model.Ranking, len(rankings))
	copy(fresh, rankings)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rankings[scope] = fresh
	return nil
}

// Rankings returns the current standings for a scope, position ascending.
func (s *MemStore) Rankings(ctx context.Context, scope model.Scope) ([]model.Ranking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.rankings[scope]
	out := make([]model.Ranking, len(stored))
	copy(out, stored)
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

// PutContest stores or replaces a contest record.
func (s *MemStore) PutContest(ctx context.Context, contest model.Contest) error {
	if contest.ID == "" {
		contest.ID = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contests[contest.ID] = contest
	return nil
}

// Contest returns a contest by id.
func (s *MemStore) Contest(ctx context.Context, id string) (model.Contest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.contests[id]
	if !ok {
		return model.Contest{}, ErrNotFound
	}
	return c, nil
}

// AdvancePhase moves the contest's phase pointer from expected to next,
// failing with ErrConflict when another transition got there first.
func (s *MemStore) AdvancePhase(ctx context.Context, contestID string, expected, next model.Phase) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.contests[contestID]
	if !ok {
		return ErrNotFound
	}
	if c.CurrentPhase != expected {
		return ErrConflict
	}
	c.CurrentPhase = next
	s.contests[contestID] = c
	return nil
}

// PutSkater stores or replaces a skater profile.
func (s *MemStore) PutSkater(ctx context.Context, skater model.Skater) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.skaters[skater.ID] = skater
	return nil
}

// Skater returns a skater profile by id.
func (s *MemStore) Skater(ctx context.Context, id string) (model.Skater, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sk, ok := s.skaters[id]
	if !ok {
		return model.Skater{}, ErrNotFound
	}
	return sk, nil
}

func cloneHeat(h model.Heat) model.Heat {
	participants := make([]string, len(h.Participants))
	copy(participants, h.Participants)
	h.Participants = participants
	return h
}

var _ Store = (*MemStore)(nil)
