package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/skatium/heatline/internal/adapters/mq/queue"
	"github.com/skatium/heatline/internal/domain/model"
	"github.com/skatium/heatline/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

type recordingRecomputer struct {
	mu    sync.Mutex
	seen  []model.Scope
	fail  map[string]error
	recvd chan struct{}
}

func newRecordingRecomputer() *recordingRecomputer {
	return &recordingRecomputer{
		fail:  make(map[string]error),
		recvd: make(chan struct{}, 64),
	}
}

func (r *recordingRecomputer) Recompute(_ context.Context, job queue.Job) error {
	r.mu.Lock()
	r.seen = append(r.seen, job.Scope)
	err := r.fail[job.Scope.ContestID]
	r.mu.Unlock()

	r.recvd <- struct{}{}
	return err
}

func (r *recordingRecomputer) scopes() []model.Scope {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Scope, len(r.seen))
	copy(out, r.seen)
	return out
}

func (r *recordingRecomputer) waitFor(n int, timeout time.Duration) bool {
	deadline := time.After(timeout)
	for i := 0; i < n; i++ {
		select {
		case <-r.recvd:
		case <-deadline:
			return false
		}
	}
	return true
}

func jobFor(contestID string) queue.Job {
	return queue.Job{Scope: model.Scope{
		ContestID:  contestID,
		CategoryID: "street-open",
		Phase:      model.PhaseQualifier,
	}}
}

func TestWorkerProcessesJobs(t *testing.T) {
	Convey("Given a running worker", t, func() {
		q := queue.NewCoalescingQueue(queue.WithCapacity(16))
		rec := newRecordingRecomputer()
		w := New(q, rec, WithName("test"))

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		Convey("When jobs are enqueued", func() {
			So(q.Enqueue(ctx, jobFor("c1")), ShouldBeTrue)
			So(q.Enqueue(ctx, jobFor("c2")), ShouldBeTrue)

			Convey("Then the recomputer sees each scope", func() {
				So(rec.waitFor(2, time.Second), ShouldBeTrue)

				scopes := rec.scopes()
				So(scopes, ShouldHaveLength, 2)
				So(scopes[0].ContestID, ShouldEqual, "c1")
				So(scopes[1].ContestID, ShouldEqual, "c2")
			})
		})

		Convey("When a recompute fails", func() {
			rec.fail["bad"] = errors.New("store unavailable")
			So(q.Enqueue(ctx, jobFor("bad")), ShouldBeTrue)
			So(q.Enqueue(ctx, jobFor("good")), ShouldBeTrue)

			Convey("Then the worker keeps processing later jobs", func() {
				So(rec.waitFor(2, time.Second), ShouldBeTrue)

				scopes := rec.scopes()
				So(scopes[len(scopes)-1].ContestID, ShouldEqual, "good")
			})
		})

		Reset(func() {
			cancel()
			_ = q.Close()
		})
	})
}

func TestWorkerShutdown(t *testing.T) {
	Convey("Given a running worker", t, func() {
		q := queue.NewCoalescingQueue(queue.WithCapacity(16))
		defer q.Close()
		rec := newRecordingRecomputer()
		w := New(q, rec)

		ctx := context.Background()
		go w.Run(ctx)

		Convey("When the worker is shut down", func() {
			shutdownCtx, cancel := context.WithTimeout(ctx, time.Second)
			defer cancel()

			Convey("Then shutdown completes before the deadline", func() {
				So(w.Shutdown(shutdownCtx), ShouldBeNil)
			})
		})
	})
}

func TestPool(t *testing.T) {
	Convey("Given a pool of workers over one queue", t, func() {
		q := queue.NewCoalescingQueue(queue.WithCapacity(64))
		defer q.Close()
		rec := newRecordingRecomputer()
		p := NewPool(3, q, rec)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		p.Start(ctx)

		Convey("When many scopes are enqueued", func() {
			const jobs = 12
			for i := 0; i < jobs; i++ {
				So(q.Enqueue(ctx, jobFor("contest-"+string(rune('a'+i)))), ShouldBeTrue)
			}

			Convey("Then every scope is recomputed exactly once", func() {
				So(rec.waitFor(jobs, 2*time.Second), ShouldBeTrue)

				seen := make(map[string]int)
				for _, s := range rec.scopes() {
					seen[s.ContestID]++
				}
				So(seen, ShouldHaveLength, jobs)
				for _, n := range seen {
					So(n, ShouldEqual, 1)
				}
			})
		})

		Convey("When the pool is stopped", func() {
			Convey("Then Stop returns without hanging", func() {
				p.Stop()
			})
		})

		Reset(func() {
			cancel()
		})
	})
}

func TestPoolClampsWorkerCount(t *testing.T) {
	Convey("Given a pool requested with zero workers", t, func() {
		q := queue.NewCoalescingQueue()
		defer q.Close()

		p := NewPool(0, q, newRecordingRecomputer())

		Convey("Then it still runs a single worker", func() {
			So(p.workers, ShouldHaveLength, 1)
		})
	})
}
