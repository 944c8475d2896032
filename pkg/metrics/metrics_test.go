package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNewManagerWithCustomRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewManager(
		WithNamespace("testns"),
		WithSubsystem("testsub"),
		WithPrometheusRegistry(reg),
	)
	if m == nil {
		t.Fatal("NewManager returned nil")
	}

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	if len(mfs) == 0 {
		t.Fatal("no metrics registered on custom registry")
	}

	found := false
	for _, mf := range mfs {
		if mf.GetName() == "testns_testsub_scores_submitted_total" {
			found = true
		}
	}
	if !found {
		t.Error("scores_submitted_total not registered under custom namespace")
	}
}

func TestGlobalHelpers(t *testing.T) {
	// Helpers must not panic and must show up on the global registry.
	RecordScoreSubmitted()
	RecordScoreOverwrite()
	RecordValidationError()
	RecordHeatAdvance()
	RecordHeatStarted()
	RecordHeatCompleted()
	RecordHeatsBuilt(3)
	UpdateActiveHeats(2)
	RecordRankingRecompute()
	RecordRankingRecomputeDuration(1.5)
	UpdateRankedSkaters(8)
	RecordPhaseTransition()
	RecordPhaseTransitionError()
	UpdateRecomputeQueueDepth(1)
	RecordRecomputeCoalesced()
	RecordRecomputeEnqueueDrop()
	RecordNotificationPublished()
	RecordHTTPRequest("scores", "POST", "201")
	RecordHTTPRequestDuration("scores", "POST", "201", 3.2)

	mfs, err := GetRegistry().Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	if len(mfs) == 0 {
		t.Fatal("global registry has no metrics")
	}
}
