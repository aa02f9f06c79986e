// Package mcp provides the shelltriage MCP server, registering the
// triage tools and publishing model instructions.
package mcp

import (
	_ "embed"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/deixis/shelltriage"
	"github.com/deixis/shelltriage/internal/config"
	"github.com/deixis/shelltriage/internal/report"
	"github.com/deixis/shelltriage/internal/triage"
)

//go:embed instructions.md
var Instructions string

// handler holds shared dependencies for all tool handlers. The
// classifier carries the one-time detector baseline; per-call runners
// are built from the config so a tool call may override the timeout.
type handler struct {
	cfg        *config.Config
	classifier *triage.Classifier
	store      report.Store
	logDir     string
}

// NewServer creates an MCP server with all shelltriage tools registered.
func NewServer(cfg *config.Config, classifier *triage.Classifier, store report.Store, logDir string) *mcp.Server {
	h := &handler{
		cfg:        cfg,
		classifier: classifier,
		store:      store,
		logDir:     logDir,
	}

	opts := &mcp.ServerOptions{
		Instructions: Instructions,
		Capabilities: &mcp.ServerCapabilities{
			Tools: &mcp.ToolCapabilities{ListChanged: false},
		},
	}
	s := mcp.NewServer(&mcp.Implementation{Name: "shelltriage", Version: shelltriage.Version}, opts)

	mcp.AddTool(s, &mcp.Tool{
		Name: "triage_run",
		Description: `Run the shell under test once and classify the outcome.

Executes the command with a timeout, captures its combined output to a log,
and reports the severity level (fine through new-assert-or-crash) with the
detected issues. The record is stored for drill-down via triage_show.`,
	}, h.runHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name: "triage_interesting",
		Description: `Run the shell once and report whether the outcome meets a severity threshold.

This is the predicate a reduction tool calls per candidate input: true means
the run classified at or above minimum_level and is worth keeping.`,
	}, h.interestingHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name: "triage_verify",
		Description: `Verify that a shell binary matches its expected build configuration.

Checks bitness via file(1) and compiled flags via getBuildConfiguration().
Any mismatch is reported as an error; fuzzing should not start against a
mismatched binary.`,
	}, h.verifyHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name: "triage_show",
		Description: `Show a stored triage record.

Use the run_id from a previous triage_run output.`,
	}, h.showHandler)

	return s
}

// textResult is a helper to build a text-only tool result.
func textResult(text string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}, nil, nil
}

// errorResult is a helper to build an error tool result.
func errorResult(text string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}, nil, nil
}
