package repository_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	repository "github.com/skatium/heatline/internal/adapters/repository"
	model "github.com/skatium/heatline/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func testScope() model.Scope {
	return model.Scope{ContestID: "contest-1", CategoryID: "cat-1", Phase: model.PhaseQualifier}
}

func testHeat(number int) model.Heat {
	return model.Heat{
		ContestID:     "contest-1",
		CategoryID:    "cat-1",
		Phase:         model.PhaseQualifier,
		HeatNumber:    number,
		Participants:  []string{"s1", "s2", "s3"},
		RunsPerSkater: 2,
		TimePerRun:    60,
		RunType:       model.RunSingle,
		Status:        model.HeatPending,
		CurrentRun:    1,
	}
}

func TestMemStoreHeats(t *testing.T) {
	Convey("Given an empty store", t, func() {
		ctx := context.Background()
		store := repository.NewMemStore()

		Convey("When creating heats", func() {
			created, err := store.CreateHeats(ctx, []model.Heat{testHeat(2), testHeat(1)})
			So(err, ShouldBeNil)
			So(created, ShouldHaveLength, 2)

			Convey("Then ids are minted and versions start at one", func() {
				So(created[0].ID, ShouldNotBeEmpty)
				So(created[1].ID, ShouldNotBeEmpty)
				So(created[0].ID, ShouldNotEqual, created[1].ID)
				So(created[0].Version, ShouldEqual, 1)
			})

			Convey("And HeatsByScope returns them ordered by heat number", func() {
				heats, err := store.HeatsByScope(ctx, testScope())
				So(err, ShouldBeNil)
				So(heats, ShouldHaveLength, 2)
				So(heats[0].HeatNumber, ShouldEqual, 1)
				So(heats[1].HeatNumber, ShouldEqual, 2)
			})

			Convey("And a different scope sees nothing", func() {
				other := testScope()
				other.Phase = model.PhaseFinal
				heats, err := store.HeatsByScope(ctx, other)
				So(err, ShouldBeNil)
				So(heats, ShouldBeEmpty)
			})
		})

		Convey("When looking up a missing heat", func() {
			_, err := store.Heat(ctx, "nope")
			So(err, ShouldEqual, repository.ErrNotFound)
		})
	})
}

func TestMemStoreMutateHeat(t *testing.T) {
	Convey("Given a stored heat", t, func() {
		ctx := context.Background()
		store := repository.NewMemStore()
		created, err := store.CreateHeats(ctx, []model.Heat{testHeat(1)})
		So(err, ShouldBeNil)
		id := created[0].ID

		Convey("When mutating it", func() {
			updated, err := store.MutateHeat(ctx, id, func(h *model.Heat) error {
				h.Status = model.HeatInProgress
				return nil
			})
			So(err, ShouldBeNil)

			Convey("Then the change persists with a version bump", func() {
				So(updated.Status, ShouldEqual, model.HeatInProgress)
				So(updated.Version, ShouldEqual, 2)

				got, err := store.Heat(ctx, id)
				So(err, ShouldBeNil)
				So(got.Status, ShouldEqual, model.HeatInProgress)
			})
		})

		Convey("When the mutator fails", func() {
			boom := fmt.Errorf("boom")
			_, err := store.MutateHeat(ctx, id, func(h *model.Heat) error {
				h.Status = model.HeatCompleted
				return boom
			})

			Convey("Then the heat is unchanged", func() {
				So(err, ShouldEqual, boom)
				got, err := store.Heat(ctx, id)
				So(err, ShouldBeNil)
				So(got.Status, ShouldEqual, model.HeatPending)
				So(got.Version, ShouldEqual, 1)
			})
		})

		Convey("When many goroutines mutate concurrently", func() {
			const writers = 32
			var wg sync.WaitGroup
			wg.Add(writers)
			for i := 0; i < writers; i++ {
				go func() {
					defer wg.Done()
					_, _ = store.MutateHeat(ctx, id, func(h *model.Heat) error {
						h.CurrentSkaterIdx = (h.CurrentSkaterIdx + 1) % len(h.Participants)
						return nil
					})
				}()
			}
			wg.Wait()

			Convey("Then every mutation was serialized", func() {
				got, err := store.Heat(ctx, id)
				So(err, ShouldBeNil)
				So(got.Version, ShouldEqual, 1+writers)
				So(got.CurrentSkaterIdx, ShouldEqual, writers%len(got.Participants))
			})
		})
	})
}

func TestMemStoreScores(t *testing.T) {
	Convey("Given a store with a controllable clock", t, func() {
		ctx := context.Background()
		current := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
		store := repository.NewMemStore(repository.WithNow(func() time.Time { return current }))

		base := model.Score{
			HeatID:    "heat-1",
			SkaterID:  "s1",
			JudgeID:   "j1",
			RunNumber: 1,
			Value:     7.5,
			Notes:     "clean line",
		}

		Convey("When submitting a new score", func() {
			stored, created, err := store.UpsertScore(ctx, base)
			So(err, ShouldBeNil)

			Convey("Then it is created with an id and timestamps", func() {
				So(created, ShouldBeTrue)
				So(stored.ID, ShouldNotBeEmpty)
				So(stored.CreatedAt.Equal(current), ShouldBeTrue)
				So(stored.UpdatedAt.Equal(current), ShouldBeTrue)
			})

			Convey("And re-submitting the same key overwrites in place", func() {
				current = current.Add(time.Minute)
				resub := base
				resub.Value = 9.0
				resub.Notes = "even better"

				stored2, created2, err := store.UpsertScore(ctx, resub)
				So(err, ShouldBeNil)
				So(created2, ShouldBeFalse)
				So(stored2.ID, ShouldEqual, stored.ID)
				So(stored2.Value, ShouldAlmostEqual, 9.0)
				So(stored2.Notes, ShouldEqual, "even better")
				So(stored2.CreatedAt.Equal(stored.CreatedAt), ShouldBeTrue)
				So(stored2.UpdatedAt.Equal(current), ShouldBeTrue)

				scores, err := store.ScoresByHeat(ctx, "heat-1")
				So(err, ShouldBeNil)
				So(scores, ShouldHaveLength, 1)
			})

			Convey("And a different run number is an independent record", func() {
				second := base
				second.RunNumber = 2
				_, created2, err := store.UpsertScore(ctx, second)
				So(err, ShouldBeNil)
				So(created2, ShouldBeTrue)

				scores, err := store.ScoresByHeat(ctx, "heat-1")
				So(err, ShouldBeNil)
				So(scores, ShouldHaveLength, 2)
			})
		})

		Convey("When many judges submit concurrently", func() {
			const judges = 16
			var wg sync.WaitGroup
			wg.Add(judges)
			for i := 0; i < judges; i++ {
				go func(n int) {
					defer wg.Done()
					sc := base
					sc.JudgeID = fmt.Sprintf("judge-%02d", n)
					_, _, _ = store.UpsertScore(ctx, sc)
				}(i)
			}
			wg.Wait()

			Convey("Then each key holds exactly one score", func() {
				scores, err := store.ScoresByHeat(ctx, "heat-1")
				So(err, ShouldBeNil)
				So(scores, ShouldHaveLength, judges)
			})
		})
	})
}

func TestMemStoreRankings(t *testing.T) {
	Convey("Given a store", t, func() {
		ctx := context.Background()
		store := repository.NewMemStore()
		scope := testScope()

		first := []model.Ranking{
			{SkaterID: "a", Position: 1, BestScore: 9},
			{SkaterID: "b", Position: 2, BestScore: 8},
		}

		Convey("When replacing rankings twice", func() {
			So(store.ReplaceRankings(ctx, scope, first), ShouldBeNil)

			second := []model.Ranking{
				{SkaterID: "b", Position: 1, BestScore: 9.5},
				{SkaterID: "a", Position: 2, BestScore: 9},
				{SkaterID: "c", Position: 3, BestScore: 7},
			}
			So(store.ReplaceRankings(ctx, scope, second), ShouldBeNil)

			Convey("Then only the second set survives, position ordered", func() {
				got, err := store.Rankings(ctx, scope)
				So(err, ShouldBeNil)
				So(got, ShouldHaveLength, 3)
				So(got[0].SkaterID, ShouldEqual, "b")
				So(got[2].SkaterID, ShouldEqual, "c")
			})
		})

		Convey("When reading an empty scope", func() {
			got, err := store.Rankings(ctx, scope)
			So(err, ShouldBeNil)
			So(got, ShouldBeEmpty)
		})
	})
}

func TestMemStoreContests(t *testing.T) {
	Convey("Given a stored contest in the qualifier phase", t, func() {
		ctx := context.Background()
		store := repository.NewMemStore()
		So(store.PutContest(ctx, model.Contest{
			ID:           "contest-1",
			Title:        "Back Alley Open",
			RunType:      model.RunSingle,
			CurrentPhase: model.PhaseQualifier,
		}), ShouldBeNil)

		Convey("When advancing the phase with the right expectation", func() {
			err := store.AdvancePhase(ctx, "contest-1", model.PhaseQualifier, model.PhaseSemi)
			So(err, ShouldBeNil)

			got, err := store.Contest(ctx, "contest-1")
			So(err, ShouldBeNil)
			So(got.CurrentPhase, ShouldEqual, model.PhaseSemi)

			Convey("Then a second transition with the stale expectation conflicts", func() {
				err := store.AdvancePhase(ctx, "contest-1", model.PhaseQualifier, model.PhaseSemi)
				So(err, ShouldEqual, repository.ErrConflict)
			})
		})

		Convey("When advancing a missing contest", func() {
			err := store.AdvancePhase(ctx, "ghost", model.PhaseQualifier, model.PhaseSemi)
			So(err, ShouldEqual, repository.ErrNotFound)
		})
	})
}

func TestMemStoreRoster(t *testing.T) {
	Convey("Given a store", t, func() {
		ctx := context.Background()
		store := repository.NewMemStore()

		So(store.PutSkater(ctx, model.Skater{ID: "s1", Name: "Ray", Stance: model.StanceGoofy}), ShouldBeNil)

		sk, err := store.Skater(ctx, "s1")
		So(err, ShouldBeNil)
		So(sk.Name, ShouldEqual, "Ray")

		_, err = store.Skater(ctx, "missing")
		So(err, ShouldEqual, repository.ErrNotFound)
	})
}
