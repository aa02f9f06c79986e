// Package report persists triage run records so that past runs can be
// re-examined without re-executing the shell.
package report

import (
	"github.com/deixis/shelltriage/internal/runner"
	"github.com/deixis/shelltriage/internal/triage"
)

// Record is the stored outcome of one triage run.
type Record struct {
	ID             string   `json:"id"`
	Command        []string `json:"command"`
	Status         string   `json:"status"`
	Level          string   `json:"level"`
	Issues         []string `json:"issues,omitempty"`
	Summary        string   `json:"summary"`
	ElapsedSeconds float64  `json:"elapsed_seconds"`
	LogPath        string   `json:"log_path"`
	Truncated      bool     `json:"truncated,omitempty"`
}

// NewRecord builds a Record from a run and its verdict.
func NewRecord(argv []string, res *runner.RunResult, v *triage.Verdict) *Record {
	return &Record{
		ID:             res.RunID,
		Command:        append([]string(nil), argv...),
		Status:         res.Status.String(),
		Level:          v.Level.String(),
		Issues:         append([]string(nil), v.Issues...),
		Summary:        v.Summary,
		ElapsedSeconds: res.ElapsedSeconds,
		LogPath:        res.LogPath,
		Truncated:      res.Truncated,
	}
}

// Store persists and retrieves triage records.
type Store interface {
	Save(rec *Record) error
	Load(runID string) (*Record, error)
}
