package mcp

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/deixis/shelltriage/internal/report"
	"github.com/deixis/shelltriage/internal/runner"
	"github.com/deixis/shelltriage/internal/shell"
	"github.com/deixis/shelltriage/internal/triage"
)

type runParams struct {
	Command        []string `json:"command" jsonschema:"The shell invocation: binary followed by its arguments."`
	TimeoutSeconds *int     `json:"timeout_seconds,omitempty" jsonschema:"Per-run timeout in seconds. Defaults to the configured timeout."`
	LogPrefix      string   `json:"log_prefix,omitempty" jsonschema:"Path prefix for the run's log file. Defaults to a unique prefix in the log directory."`
}

func (h *handler) runHandler(ctx context.Context, req *mcp.CallToolRequest, params runParams) (*mcp.CallToolResult, any, error) {
	rec, err := h.triage(ctx, params.Command, params.TimeoutSeconds, params.LogPrefix)
	if err != nil {
		return errorResult(fmt.Sprintf("triage failed: %v", err))
	}
	return textResult(formatRecord(rec))
}

type interestingParams struct {
	MinimumLevel   string   `json:"minimum_level" jsonschema:"Severity threshold, e.g. abnormal-exit or malloc-error. A run is interesting when it classifies at or above this level."`
	Command        []string `json:"command" jsonschema:"The shell invocation: binary followed by its arguments."`
	TimeoutSeconds *int     `json:"timeout_seconds,omitempty" jsonschema:"Per-run timeout in seconds. Defaults to the configured timeout."`
	LogPrefix      string   `json:"log_prefix,omitempty" jsonschema:"Path prefix for the run's log file. Defaults to a unique prefix in the log directory."`
}

func (h *handler) interestingHandler(ctx context.Context, req *mcp.CallToolRequest, params interestingParams) (*mcp.CallToolResult, any, error) {
	min, err := triage.ParseLevel(params.MinimumLevel)
	if err != nil {
		return errorResult(err.Error())
	}

	rec, err := h.triage(ctx, params.Command, params.TimeoutSeconds, params.LogPrefix)
	if err != nil {
		return errorResult(fmt.Sprintf("triage failed: %v", err))
	}

	lev, err := triage.ParseLevel(rec.Level)
	if err != nil {
		return errorResult(err.Error())
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Interesting: %v\n", lev >= min)
	fmt.Fprintf(&b, "Threshold: %s\n\n", min)
	b.WriteString(formatRecord(rec))
	return textResult(b.String())
}

// triage runs one command and stores the record.
func (h *handler) triage(ctx context.Context, argv []string, timeoutSeconds *int, logPrefix string) (*report.Record, error) {
	timeout := h.cfg.Timeout()
	if timeoutSeconds != nil && *timeoutSeconds > 0 {
		timeout = time.Duration(*timeoutSeconds) * time.Second
	}
	if logPrefix == "" {
		logPrefix = filepath.Join(h.logDir, "triage-"+uuid.New().String())
	}

	harness := &triage.Harness{
		Runner:     &runner.Runner{Timeout: timeout, MaxOutput: h.cfg.MaxOutputBytes()},
		Classifier: h.classifier,
	}
	v, res, err := harness.Triage(ctx, argv, logPrefix)
	if err != nil {
		return nil, err
	}

	rec := report.NewRecord(argv, res, v)
	_ = h.store.Save(rec)
	return rec, nil
}

type verifyParams struct {
	Shell             string `json:"shell" jsonschema:"Path to the shell binary to verify."`
	Arch              string `json:"arch,omitempty" jsonschema:"Expected bitness, 32 or 64. Empty skips the architecture check."`
	Debug             bool   `json:"debug,omitempty" jsonschema:"Whether the binary is expected to be a debug build."`
	Asan              bool   `json:"asan,omitempty" jsonschema:"Whether the binary is expected to be built with AddressSanitizer."`
	MoreDeterministic bool   `json:"more_deterministic,omitempty" jsonschema:"Whether the binary is expected to be a more-deterministic build."`
}

func (h *handler) verifyHandler(ctx context.Context, req *mcp.CallToolRequest, params verifyParams) (*mcp.CallToolResult, any, error) {
	opts := shell.BuildOptions{
		Arch:              params.Arch,
		Debug:             params.Debug,
		ASan:              params.Asan,
		MoreDeterministic: params.MoreDeterministic,
	}
	if err := shell.Verify(params.Shell, opts); err != nil {
		return errorResult(fmt.Sprintf("verification failed: %v", err))
	}
	return textResult(fmt.Sprintf("%s matches the expected build configuration.", params.Shell))
}

type showParams struct {
	RunID string `json:"run_id" jsonschema:"Run identifier from a previous triage_run output."`
}

func (h *handler) showHandler(ctx context.Context, req *mcp.CallToolRequest, params showParams) (*mcp.CallToolResult, any, error) {
	rec, err := h.store.Load(params.RunID)
	if err != nil {
		return errorResult(fmt.Sprintf("loading record: %v", err))
	}
	return textResult(formatRecord(rec))
}

func formatRecord(rec *report.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Level: %s\n", rec.Level)
	fmt.Fprintf(&b, "Run: %s\n", rec.ID)
	fmt.Fprintf(&b, "Status: %s\n", rec.Status)
	fmt.Fprintf(&b, "Command: %s\n", strings.Join(rec.Command, " "))
	if len(rec.Issues) > 0 {
		fmt.Fprintln(&b, "Issues:")
		for _, issue := range rec.Issues {
			fmt.Fprintf(&b, "  - %s\n", issue)
		}
	} else {
		fmt.Fprintln(&b, "Issues: none")
	}
	fmt.Fprintf(&b, "Log: %s\n", rec.LogPath)
	if rec.Truncated {
		fmt.Fprintln(&b, "Log truncated at the output cap.")
	}
	fmt.Fprintf(&b, "\n%s\n", rec.Summary)
	return b.String()
}
