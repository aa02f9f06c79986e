package triage

import (
	"context"

	"github.com/deixis/shelltriage/internal/runner"
)

// Harness couples a Runner with a Classifier. Construct it once (the
// classifier's detectors carry the one-time baseline) and reuse it for
// every candidate; repeated calls share no mutable state.
type Harness struct {
	Runner     *runner.Runner
	Classifier *Classifier
}

// Triage executes argv and classifies the outcome.
func (h *Harness) Triage(ctx context.Context, argv []string, logPrefix string) (*Verdict, *runner.RunResult, error) {
	res, err := h.Runner.Run(ctx, argv, logPrefix)
	if err != nil {
		return nil, nil, err
	}
	v, err := h.Classifier.Classify(res)
	if err != nil {
		return nil, res, err
	}
	return v, res, nil
}

// Interesting is the predicate a reduction tool calls once per
// candidate input: it reports whether the run classifies at or above
// min. The verdict is returned alongside for logging.
func (h *Harness) Interesting(ctx context.Context, min Level, argv []string, logPrefix string) (bool, *Verdict, error) {
	v, _, err := h.Triage(ctx, argv, logPrefix)
	if err != nil {
		return false, nil, err
	}
	return v.Level >= min, v, nil
}
