package triage

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/deixis/shelltriage/internal/runner"
)

// Magic marker lines printed by the fuzz driver running inside the
// shell. Matching is exact per line, never substring, so payload text
// that merely mentions a marker phrase cannot flip the classification.
const (
	SuccessMarker  = "It's looking good!"
	SelfExitMarker = "jsfunfuzz stopping due to above error!"
)

// LogDetector reports whether a log holds an anomaly that is novel
// relative to a baseline established at construction.
type LogDetector interface {
	Amiss(logPath string) (bool, error)
}

// CrashDetector is a LogDetector variant that also receives the
// runner's failure message as context.
type CrashDetector interface {
	Amiss(logPath, crashMsg string) (bool, error)
}

// Verdict is the outcome of classifying one run.
type Verdict struct {
	Level   Level
	Issues  []string // one entry per detected anomaly; empty iff Level == Fine
	Summary string   // one-line human-readable description of the run
}

// Classifier merges a RunResult with its log content. The detectors
// are established once (with their baseline) and read-only afterwards;
// a nil detector skips that check.
type Classifier struct {
	Assertions LogDetector
	Crashes    CrashDetector
	Malloc     LogDetector
}

// Classify computes the severity of one run. Signals accumulate in a
// fixed order and the final level is the maximum reached, so turning
// any single detector positive can only raise the result. Detector
// failures propagate; they are never treated as "no issue".
func (c *Classifier) Classify(res *runner.RunResult) (*Verdict, error) {
	lev, issues, err := scanMarkers(res.LogPath)
	if err != nil {
		return nil, err
	}

	if c.Assertions != nil {
		amiss, err := c.Assertions.Amiss(res.LogPath)
		if err != nil {
			return nil, fmt.Errorf("assertion detector: %w", err)
		}
		if amiss {
			issues = append(issues, "unknown assertion")
			lev = Max(lev, NewAssertOrCrash)
		}
	}

	if res.Status == runner.Crashed && c.Crashes != nil {
		amiss, err := c.Crashes.Amiss(res.LogPath, res.Msg)
		if err != nil {
			return nil, fmt.Errorf("crash detector: %w", err)
		}
		if amiss {
			issues = append(issues, "unknown crash")
			lev = Max(lev, NewAssertOrCrash)
		}
	}

	if c.Malloc != nil {
		amiss, err := c.Malloc.Amiss(res.LogPath)
		if err != nil {
			return nil, fmt.Errorf("malloc detector: %w", err)
		}
		if amiss {
			issues = append(issues, "malloc error")
			lev = Max(lev, MallocError)
		}
	}

	// Status-derived floors come last so a higher content-based level
	// is preserved.
	if res.Status == runner.Abnormal {
		issues = append(issues, "abnormal exit")
		lev = Max(lev, AbnormalExit)
	}
	if res.Status == runner.TimedOut {
		issues = append(issues, "timed out")
		lev = Max(lev, TimedOut)
	}

	return &Verdict{
		Level:   lev,
		Issues:  issues,
		Summary: summarize(res, issues),
	}, nil
}

// scanMarkers derives the base level from the magic markers in the log.
// The scan walks every line without short-circuiting, so when both
// markers appear the later line in file order wins.
func scanMarkers(logPath string) (Level, []string, error) {
	f, err := os.Open(logPath)
	if err != nil {
		return Fine, nil, fmt.Errorf("opening log: %w", err)
	}
	defer f.Close()

	lev := DidNotFinish
	issues := []string{"did not finish"}

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		switch sc.Text() {
		case SuccessMarker:
			lev = Fine
			issues = nil
		case SelfExitMarker:
			lev = DecidedToExit
			issues = []string{"decided to exit"}
		}
	}
	if err := sc.Err(); err != nil {
		return Fine, nil, fmt.Errorf("scanning log: %w", err)
	}
	return lev, issues, nil
}

// summarize builds the one-line run description, always produced even
// when no anomaly was found.
func summarize(res *runner.RunResult, issues []string) string {
	prefix := strings.TrimSuffix(res.LogPath, "-out")
	amiss := ""
	if len(issues) > 0 {
		amiss = "*[" + strings.Join(issues, ", ") + "] "
	}
	return fmt.Sprintf("%s: %s%s (%.1f seconds)", prefix, amiss, res.Msg, res.ElapsedSeconds)
}
