// Package service provides the core contest engine that implements the
// dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/skatium/heatline/internal/adapters/mq/queue"
	"github.com/skatium/heatline/internal/adapters/mq/worker"
	"github.com/skatium/heatline/internal/adapters/notify"
	"github.com/skatium/heatline/internal/adapters/repository"
	"github.com/skatium/heatline/internal/domain/heat"
	"github.com/skatium/heatline/internal/domain/heatbuild"
	"github.com/skatium/heatline/internal/domain/model"
	"github.com/skatium/heatline/internal/domain/ranking"
	"github.com/skatium/heatline/internal/domain/scoring"
	"github.com/skatium/heatline/pkg/logger"
	"github.com/skatium/heatline/pkg/metrics"
)

// recomputeAdapter adapts the Service to the worker.Recomputer interface.
type recomputeAdapter struct {
	svc *Service
}

func (a *recomputeAdapter) Recompute(ctx context.Context, job queue.Job) error {
	return a.svc.RecomputeRankings(ctx, job.Scope)
}

// Service implements the API dependencies for the contest engine.
type Service struct {
	mu sync.RWMutex

	// Core components
	store     repository.Store
	recompute queue.Queue
	pool      *worker.Pool
	notifier  notify.Notifier

	// Configuration
	workerCount int
	queueSize   int
	seeding     heatbuild.SeedingPolicy
	phases      map[model.Phase]model.PhaseSettings

	// buildLocks serializes heat building and phase transitions per scope.
	buildMu    sync.Mutex
	buildLocks map[model.Scope]*sync.Mutex

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the persistence backend.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithRecomputeWorkers sets the number of ranking recompute workers.
func WithRecomputeWorkers(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the recompute queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithSeedingPolicy sets how ranked skaters spread across later-phase heats.
func WithSeedingPolicy(policy heatbuild.SeedingPolicy) Option {
	return func(s *Service) {
		if policy != "" {
			s.seeding = policy
		}
	}
}

// WithPhaseSettings replaces the per-phase contest defaults.
func WithPhaseSettings(phases map[model.Phase]model.PhaseSettings) Option {
	return func(s *Service) {
		if len(phases) > 0 {
			s.phases = phases
		}
	}
}

// WithNotifier sets the event notifier.
func WithNotifier(n notify.Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// defaultPhaseSettings mirrors the conventional contest format: two short
// qualifier and semi runs, three longer final runs.
func defaultPhaseSettings() map[model.Phase]model.PhaseSettings {
	return map[model.Phase]model.PhaseSettings{
		model.PhaseQualifier: {Phase: model.PhaseQualifier, RunsPerSkater: 2, TimePerRun: 60, AutoHeatThreshold: 8, ScoringSystem: model.ScoreByBest},
		model.PhaseSemi:      {Phase: model.PhaseSemi, RunsPerSkater: 2, TimePerRun: 60, AutoHeatThreshold: 6, ScoringSystem: model.ScoreByBest},
		model.PhaseFinal:     {Phase: model.PhaseFinal, RunsPerSkater: 3, TimePerRun: 90, AutoHeatThreshold: 4, ScoringSystem: model.ScoreByBest},
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU(),
		queueSize:   1024,
		seeding:     heatbuild.SeedSequential,
		phases:      defaultPhaseSettings(),
		notifier:    notify.Noop{},
		buildLocks:  make(map[model.Scope]*sync.Mutex),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting contest engine...")

	if s.store == nil {
		s.store = repository.NewMemStore()
		s.logger.Info(ctx, "using in-memory store")
	}

	s.recompute = queue.NewCoalescingQueue(
		queue.WithCapacity(s.queueSize),
	)
	s.pool = worker.NewPool(s.workerCount, s.recompute, &recomputeAdapter{svc: s})
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "contest engine started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.String("seeding", string(s.seeding)),
	)

	return nil
}

// Stop gracefully shuts down the service. Pending recomputes are drained.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping contest engine...")

	if s.recompute != nil {
		_ = s.recompute.Close()
	}
	if s.pool != nil {
		s.pool.Stop()
	}

	s.started = false
	s.logger.Info(context.Background(), "contest engine stopped")
}

// SubmitScore validates and persists one judge's score for one run. The
// second return reports whether the score was newly created (false on
// overwrite). The scope's rankings are recomputed asynchronously.
func (s *Service) SubmitScore(ctx context.Context, sub scoring.Submission) (model.Score, bool, error) {
	h, err := s.store.Heat(ctx, sub.HeatID)
	if err != nil {
		return model.Score{}, false, fmt.Errorf("submit score: %w", err)
	}

	if err := scoring.Validate(sub, h.RunsPerSkater); err != nil {
		metrics.RecordValidationError()
		return model.Score{}, false, err
	}

	stored, created, err := s.store.UpsertScore(ctx, model.Score{
		HeatID:    sub.HeatID,
		SkaterID:  sub.SkaterID,
		JudgeID:   sub.JudgeID,
		RunNumber: sub.RunNumber,
		Value:     sub.Value,
		Notes:     sub.Notes,
	})
	if err != nil {
		return model.Score{}, false, fmt.Errorf("submit score: %w", err)
	}

	metrics.RecordScoreSubmitted()
	if !created {
		metrics.RecordScoreOverwrite()
		s.logger.Debug(ctx, "score overwritten",
			logger.String("heatID", stored.HeatID),
			logger.String("skaterID", stored.SkaterID),
			logger.String("judgeID", stored.JudgeID),
			logger.Int("run", stored.RunNumber),
		)
	}

	s.enqueueRecompute(ctx, s.scopeOf(&h))
	s.notifier.Notify(ctx, notify.KindScoreRecorded, h.ID)

	return stored, created, nil
}

// Scores returns a heat's scores, narrowed by filter. Judge notes are
// private: every note not authored by viewerJudgeID is redacted.
func (s *Service) Scores(ctx context.Context, heatID string, filter scoring.Filter, viewerJudgeID string) ([]model.Score, error) {
	if _, err := s.store.Heat(ctx, heatID); err != nil {
		return nil, fmt.Errorf("read scores: %w", err)
	}

	scores, err := s.store.ScoresByHeat(ctx, heatID)
	if err != nil {
		return nil, fmt.Errorf("read scores: %w", err)
	}

	return scoring.RedactNotes(filter.Apply(scores), viewerJudgeID), nil
}

// StartHeat arms a heat for its next run.
func (s *Service) StartHeat(ctx context.Context, heatID string) (model.Heat, error) {
	var changed bool
	updated, err := s.store.MutateHeat(ctx, heatID, func(h *model.Heat) error {
		var err error
		changed, err = heat.StartRun(h)
		return err
	})
	if err != nil {
		return model.Heat{}, fmt.Errorf("start heat: %w", err)
	}

	if changed {
		metrics.RecordHeatStarted()
		s.notifier.Notify(ctx, notify.KindHeatStarted, updated.ID)
		s.logger.Info(ctx, "heat started",
			logger.String("heatID", updated.ID),
			logger.Int("heatNumber", updated.HeatNumber),
		)
	}
	return updated, nil
}

// AdvanceHeat moves a heat to its next skater or run. Completing the final
// run finishes the heat and schedules a rankings recompute for its scope.
func (s *Service) AdvanceHeat(ctx context.Context, heatID string) (model.Heat, heat.AdvanceResult, error) {
	var res heat.AdvanceResult
	updated, err := s.store.MutateHeat(ctx, heatID, func(h *model.Heat) error {
		var err error
		res, err = heat.Advance(h)
		return err
	})
	if err != nil {
		return model.Heat{}, heat.AdvanceResult{}, fmt.Errorf("advance heat: %w", err)
	}

	metrics.RecordHeatAdvance()

	if res.Completed {
		metrics.RecordHeatCompleted()
		s.enqueueRecompute(ctx, s.scopeOf(&updated))
		s.notifier.Notify(ctx, notify.KindHeatCompleted, updated.ID)
		s.logger.Info(ctx, "heat completed",
			logger.String("heatID", updated.ID),
			logger.Int("heatNumber", updated.HeatNumber),
		)
	} else {
		s.notifier.Notify(ctx, notify.KindHeatAdvanced, updated.ID)
	}

	return updated, res, nil
}

// Heat returns a heat enriched with its active and upcoming rotation groups.
func (s *Service) Heat(ctx context.Context, heatID string) (model.HeatView, error) {
	h, err := s.store.Heat(ctx, heatID)
	if err != nil {
		return model.HeatView{}, fmt.Errorf("read heat: %w", err)
	}

	return model.HeatView{
		Heat:          h,
		ActiveSkaters: heat.ActiveSkaters(&h),
		NextSkaters:   heat.NextSkaters(&h),
		Progress:      heat.Progress(&h),
	}, nil
}

// HeatsByScope returns a scope's heats ordered by heat number.
func (s *Service) HeatsByScope(ctx context.Context, scope model.Scope) ([]model.Heat, error) {
	return s.store.HeatsByScope(ctx, scope)
}

// BuildHeats partitions the pool into heats for the scope. Builds are
// idempotent per scope: when heats already exist they are returned unchanged
// with built=false, so retried requests never double-build.
func (s *Service) BuildHeats(ctx context.Context, scope model.Scope, pool []string) (heats []model.Heat, built bool, err error) {
	settings, ok := s.phases[scope.Phase]
	if !ok {
		return nil, false, ErrUnknownPhase
	}

	lock := s.scopeLock(scope)
	lock.Lock()
	defer lock.Unlock()

	existing, err := s.store.HeatsByScope(ctx, scope)
	if err != nil {
		return nil, false, fmt.Errorf("build heats: %w", err)
	}
	if len(existing) > 0 {
		return existing, false, nil
	}

	partitions, err := heatbuild.Build(pool, heatbuild.Settings{
		AutoHeatThreshold:      settings.AutoHeatThreshold,
		MaxParticipantsPerHeat: settings.MaxParticipantsPerHeat,
		Policy:                 s.seeding,
	})
	if err != nil {
		return nil, false, fmt.Errorf("build heats: %w", err)
	}
	if len(partitions) == 0 {
		return nil, false, ErrPoolBelowThreshold
	}

	created, err := s.createHeats(ctx, scope, partitions, settings)
	if err != nil {
		return nil, false, err
	}
	return created, true, nil
}

// createHeats assembles and persists heats for the partitions, picking up
// the contest's run type when one is registered.
func (s *Service) createHeats(ctx context.Context, scope model.Scope, partitions [][]string, settings model.PhaseSettings) ([]model.Heat, error) {
	runType := model.RunSingle
	skatersPerJam := 0
	if contest, err := s.store.Contest(ctx, scope.ContestID); err == nil {
		if contest.RunType != "" {
			runType = contest.RunType
		}
		skatersPerJam = contest.SkatersPerJam
	}

	heats := make([]model.Heat, len(partitions))
	for i, part := range partitions {
		heats[i] = heatbuild.NewHeat(scope.ContestID, scope.CategoryID, scope.Phase, i+1, part, settings, runType, skatersPerJam)
	}

	created, err := s.store.CreateHeats(ctx, heats)
	if err != nil {
		return nil, fmt.Errorf("create heats: %w", err)
	}

	metrics.RecordHeatsBuilt(len(created))
	s.logger.Info(ctx, "heats built",
		logger.String("contestID", scope.ContestID),
		logger.String("categoryID", scope.CategoryID),
		logger.String("phase", string(scope.Phase)),
		logger.Int("heats", len(created)),
	)
	return created, nil
}

// AdvancePhase closes the contest's current phase for one category and
// seeds the next: every heat in the scope must be completed, the top of the
// standings advances, and the next phase's heats are built from them.
func (s *Service) AdvancePhase(ctx context.Context, contestID, categoryID string) (model.PhaseResult, error) {
	contest, err := s.store.Contest(ctx, contestID)
	if err != nil {
		metrics.RecordPhaseTransitionError()
		return model.PhaseResult{}, fmt.Errorf("advance phase: %w", err)
	}

	current := contest.CurrentPhase
	next, ok := current.Next()
	if !ok {
		metrics.RecordPhaseTransitionError()
		return model.PhaseResult{}, ErrTerminalPhase
	}

	scope := model.Scope{ContestID: contestID, CategoryID: categoryID, Phase: current}
	nextScope := model.Scope{ContestID: contestID, CategoryID: categoryID, Phase: next}

	lock := s.scopeLock(nextScope)
	lock.Lock()
	defer lock.Unlock()

	advancers, err := s.phaseAdvancers(ctx, scope, next)
	if err != nil {
		metrics.RecordPhaseTransitionError()
		return model.PhaseResult{}, err
	}

	// Move the contest's phase pointer first so concurrent transitions
	// serialize on the compare-and-swap. A lost race is fine as long as
	// the pointer already moved where we wanted it.
	if err := s.store.AdvancePhase(ctx, contestID, current, next); err != nil {
		refreshed, rerr := s.store.Contest(ctx, contestID)
		if rerr != nil || refreshed.CurrentPhase != next {
			metrics.RecordPhaseTransitionError()
			return model.PhaseResult{}, fmt.Errorf("advance phase: %w", err)
		}
	}

	pool := make([]string, len(advancers))
	for i, r := range advancers {
		pool[i] = r.SkaterID
	}

	nextSettings := s.phases[next]
	threshold := nextSettings.AutoHeatThreshold
	if len(pool) < threshold {
		// Fewer advancers than the format expects still make a bracket.
		nextSettings.AutoHeatThreshold = len(pool)
	}

	partitions, err := heatbuild.Build(pool, heatbuild.Settings{
		AutoHeatThreshold:      nextSettings.AutoHeatThreshold,
		MaxParticipantsPerHeat: nextSettings.MaxParticipantsPerHeat,
		Policy:                 s.seeding,
	})
	if err != nil {
		metrics.RecordPhaseTransitionError()
		return model.PhaseResult{}, fmt.Errorf("advance phase: %w", err)
	}

	var heats []model.Heat
	existing, err := s.store.HeatsByScope(ctx, nextScope)
	if err == nil && len(existing) > 0 {
		heats = existing
	} else {
		heats, err = s.createHeats(ctx, nextScope, partitions, nextSettings)
		if err != nil {
			metrics.RecordPhaseTransitionError()
			return model.PhaseResult{}, err
		}
	}

	metrics.RecordPhaseTransition()
	s.notifier.Notify(ctx, notify.KindPhaseTransition, contestID)
	s.logger.Info(ctx, "phase advanced",
		logger.String("contestID", contestID),
		logger.String("categoryID", categoryID),
		logger.String("from", string(current)),
		logger.String("to", string(next)),
		logger.Int("advancers", len(advancers)),
		logger.Int("heats", len(heats)),
	)

	return model.PhaseResult{From: current, To: next, Advancers: advancers, Heats: heats}, nil
}

// phaseAdvancers verifies the scope is finished and returns the standings
// slice that advances, sized by the next phase's threshold.
func (s *Service) phaseAdvancers(ctx context.Context, scope model.Scope, next model.Phase) ([]model.Ranking, error) {
	heats, err := s.store.HeatsByScope(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("advance phase: %w", err)
	}
	if len(heats) == 0 {
		return nil, ErrPhaseNotComplete
	}
	for i := range heats {
		if heats[i].Status != model.HeatCompleted {
			return nil, ErrPhaseNotComplete
		}
	}

	// The async recompute may still be in flight; standings are cheap to
	// rebuild, so compute them inline before cutting the field.
	if err := s.RecomputeRankings(ctx, scope); err != nil {
		return nil, fmt.Errorf("advance phase: %w", err)
	}

	rankings, err := s.store.Rankings(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("advance phase: %w", err)
	}
	if len(rankings) == 0 {
		return nil, ErrNoRankings
	}

	cut := 0
	if settings, ok := s.phases[next]; ok {
		cut = settings.AutoHeatThreshold
	}
	if cut <= 0 || cut > len(rankings) {
		cut = len(rankings)
	}
	return rankings[:cut], nil
}

// RecomputeRankings rebuilds a scope's standings from its full score state
// and replaces the stored set wholesale.
func (s *Service) RecomputeRankings(ctx context.Context, scope model.Scope) error {
	heats, err := s.store.HeatsByScope(ctx, scope)
	if err != nil {
		return fmt.Errorf("recompute rankings: %w", err)
	}

	var scores []model.Score
	for i := range heats {
		hs, err := s.store.ScoresByHeat(ctx, heats[i].ID)
		if err != nil {
			return fmt.Errorf("recompute rankings: %w", err)
		}
		scores = append(scores, hs...)
	}

	system := model.ScoreByBest
	if settings, ok := s.phases[scope.Phase]; ok && settings.ScoringSystem.Valid() {
		system = settings.ScoringSystem
	}

	standings, err := ranking.Compute(scores, system)
	if err != nil {
		return fmt.Errorf("recompute rankings: %w", err)
	}

	rankings := make([]model.Ranking, len(standings))
	for i, st := range standings {
		var profile model.Skater
		if skater, err := s.store.Skater(ctx, st.SkaterID); err == nil {
			profile = skater
		}
		rankings[i] = model.Ranking{
			ContestID:    scope.ContestID,
			CategoryID:   scope.CategoryID,
			SkaterID:     st.SkaterID,
			SkaterName:   profile.Name,
			SkaterStance: profile.Stance,
			Sponsors:     profile.Sponsors,
			Phase:        scope.Phase,
			Position:     st.Position,
			BestScore:    st.BestScore,
			AverageScore: st.AverageScore,
			TotalScore:   st.TotalScore,
		}
	}

	if err := s.store.ReplaceRankings(ctx, scope, rankings); err != nil {
		return fmt.Errorf("recompute rankings: %w", err)
	}

	metrics.UpdateRankedSkaters(len(rankings))
	s.notifier.Notify(ctx, notify.KindRankingsUpdated, scope.ContestID)
	return nil
}

// Rankings returns the stored standings for a scope, best first.
func (s *Service) Rankings(ctx context.Context, scope model.Scope) ([]model.Ranking, error) {
	return s.store.Rankings(ctx, scope)
}

// RegisterContest stores the engine-relevant contest slice. A contest with
// no phase starts in the qualifier.
func (s *Service) RegisterContest(ctx context.Context, contest model.Contest) error {
	if contest.CurrentPhase == "" {
		contest.CurrentPhase = model.PhaseQualifier
	}
	if !contest.CurrentPhase.Valid() {
		return ErrUnknownPhase
	}
	return s.store.PutContest(ctx, contest)
}

// RegisterSkater stores a skater profile for ranking reads.
func (s *Service) RegisterSkater(ctx context.Context, skater model.Skater) error {
	return s.store.PutSkater(ctx, skater)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"seeding":     string(s.seeding),
	}

	if s.started {
		stats["queueLength"] = s.recompute.Len(context.Background())
	}

	return stats
}

// enqueueRecompute schedules a standings rebuild for the scope. Before the
// worker pool exists (unit tests, startup) the rebuild runs inline.
func (s *Service) enqueueRecompute(ctx context.Context, scope model.Scope) {
	s.mu.RLock()
	q := s.recompute
	s.mu.RUnlock()

	if q == nil || !q.Enqueue(ctx, queue.Job{Scope: scope}) {
		if err := s.RecomputeRankings(ctx, scope); err != nil {
			s.logger.Error(ctx, "inline ranking recompute failed",
				logger.String("contestID", scope.ContestID),
				logger.Error(err),
			)
		}
	}
}

// scopeLock returns the mutex serializing builds and transitions for scope.
func (s *Service) scopeLock(scope model.Scope) *sync.Mutex {
	s.buildMu.Lock()
	defer s.buildMu.Unlock()

	lock, ok := s.buildLocks[scope]
	if !ok {
		lock = &sync.Mutex{}
		s.buildLocks[scope] = lock
	}
	return lock
}

func (s *Service) scopeOf(h *model.Heat) model.Scope {
	return model.Scope{ContestID: h.ContestID, CategoryID: h.CategoryID, Phase: h.Phase}
}
