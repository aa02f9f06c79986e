package triage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/deixis/shelltriage/internal/runner"
)

func newTestHarness(t *testing.T) (*Harness, string) {
	t.Helper()
	h := &Harness{
		Runner:     &runner.Runner{Timeout: 10 * time.Second, MaxOutput: 1 << 20},
		Classifier: quietClassifier(),
	}
	return h, filepath.Join(t.TempDir(), "w1")
}

func TestTriage_FineRun(t *testing.T) {
	h, prefix := newTestHarness(t)
	v, res, err := h.Triage(context.Background(), []string{"echo", SuccessMarker}, prefix)
	if err != nil {
		t.Fatalf("Triage: %v", err)
	}
	if v.Level != Fine {
		t.Errorf("Level = %v, want fine", v.Level)
	}
	if res.Status != runner.Normal {
		t.Errorf("Status = %v, want normal", res.Status)
	}
}

func TestTriage_SelfExit(t *testing.T) {
	h, prefix := newTestHarness(t)
	v, _, err := h.Triage(context.Background(), []string{"echo", SelfExitMarker}, prefix)
	if err != nil {
		t.Fatalf("Triage: %v", err)
	}
	if v.Level != DecidedToExit {
		t.Errorf("Level = %v, want decided-to-exit", v.Level)
	}
}

func TestInteresting_ThresholdComparison(t *testing.T) {
	h, prefix := newTestHarness(t)

	// A fine run is never interesting above fine.
	ok, v, err := h.Interesting(context.Background(), MallocError, []string{"echo", SuccessMarker}, prefix)
	if err != nil {
		t.Fatalf("Interesting: %v", err)
	}
	if ok {
		t.Errorf("fine run reported interesting at malloc-error threshold (level %v)", v.Level)
	}

	// did-not-finish meets a did-not-finish threshold.
	ok, v, err = h.Interesting(context.Background(), DidNotFinish, []string{"echo", "noise"}, prefix)
	if err != nil {
		t.Fatalf("Interesting: %v", err)
	}
	if !ok {
		t.Errorf("did-not-finish run not interesting at its own threshold (level %v)", v.Level)
	}
}

func TestInteresting_SpawnFailure(t *testing.T) {
	h, prefix := newTestHarness(t)
	if _, _, err := h.Interesting(context.Background(), Fine, []string{"no-such-shell-xyz"}, prefix); err == nil {
		t.Fatal("expected spawn failure to surface as an error")
	}
}
