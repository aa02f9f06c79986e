// Package triage classifies one fuzzing run into an ordered severity
// level by merging the run's exit status with signals found in its log.
package triage

import (
	"fmt"
	"strconv"
)

// Level is the severity of one fuzzing run. Levels are ordered from
// most expected to least expected, not from best to worst: a benign
// common outcome (timeout) must never outrank a rarer, more interesting
// one (novel crash) when both hold for the same run. Downstream
// reduction keeps a run when its level meets a chosen threshold.
type Level int

const (
	// Fine means the shell reported the success marker and nothing
	// anomalous was detected.
	Fine Level = iota
	// TimedOut means the run exceeded its timeout.
	TimedOut
	// AbnormalExit means the shell exited nonzero without crashing.
	AbnormalExit
	// DidNotFinish means neither magic marker appeared in the log.
	DidNotFinish
	// DecidedToExit means the shell printed its self-termination marker.
	DecidedToExit
	// MallocError means the log shows allocator corruption.
	MallocError
	// NewAssertOrCrash means a novel assertion or crash signature was
	// found, one not covered by the known baseline.
	NewAssertOrCrash
)

var levelNames = map[Level]string{
	Fine:             "fine",
	TimedOut:         "timed-out",
	AbnormalExit:     "abnormal-exit",
	DidNotFinish:     "did-not-finish",
	DecidedToExit:    "decided-to-exit",
	MallocError:      "malloc-error",
	NewAssertOrCrash: "new-assert-or-crash",
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "unknown"
}

// ParseLevel accepts a level name ("malloc-error") or its numeric rank
// ("5"), the latter for compatibility with reducers that pass levels as
// integers.
func ParseLevel(s string) (Level, error) {
	for l, name := range levelNames {
		if s == name {
			return l, nil
		}
	}
	if n, err := strconv.Atoi(s); err == nil {
		l := Level(n)
		if _, ok := levelNames[l]; ok {
			return l, nil
		}
	}
	return Fine, fmt.Errorf("unknown level %q", s)
}

// Max returns the more severe of two levels.
func Max(a, b Level) Level {
	if a > b {
		return a
	}
	return b
}
