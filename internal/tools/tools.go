// Package tools implements the MCP tool handlers for repository
// introspection and AI-backed analysis.
//
// Each tool is a struct that receives its collaborators at construction
// and exposes a Definition for registration plus a Handle compatible
// with mcp-go's CallToolRequest signature. Validation always runs before
// any collaborator call; user-facing failures come back as tool error
// text, never as protocol errors.
package tools

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/gitscope/gitscope/internal/git"
	"github.com/gitscope/gitscope/internal/llm"
	"github.com/gitscope/gitscope/internal/ratelimit"
)

// GitBackend is the slice of the VCS collaborator the tools need.
// *git.Repo implements it; tests inject fakes.
type GitBackend interface {
	Log(ctx context.Context, opts git.LogOptions) ([]git.Commit, error)
	Show(ctx context.Context, ref string) (git.Commit, error)
	Files(ctx context.Context, ref string) ([]string, error)
	Diff(ctx context.Context, opts git.DiffOptions) (string, error)
	DiffForCommit(ctx context.Context, ref string) (string, git.ChangeSource, error)
	Stats(ctx context.Context) (git.Stats, error)
	Authors(ctx context.Context) ([]git.Author, error)
}

// Completer is the completion-API collaborator.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
	Model() string
}

// AI wraps the optional completion backend. The unconfigured state is
// explicit so handlers fail fast with one configuration error instead
// of nil checks scattered through every call site.
type AI struct {
	c Completer
}

// NewAI wraps a configured completion client.
func NewAI(c Completer) AI { return AI{c: c} }

// UnconfiguredAI is the explicit "no backend" variant.
func UnconfiguredAI() AI { return AI{} }

// Configured reports whether a completion backend is available.
func (a AI) Configured() bool { return a.c != nil }

// Complete forwards to the wrapped client. Callers must check
// Configured first; an unconfigured Complete is a programming error.
func (a AI) Complete(ctx context.Context, system, user string) (string, error) {
	if a.c == nil {
		return "", errors.New("completion backend not configured")
	}
	return a.c.Complete(ctx, system, user)
}

// Model returns the configured model identifier, or "" when unconfigured.
func (a AI) Model() string {
	if a.c == nil {
		return ""
	}
	return a.c.Model()
}

// ReportConfig carries the report-writing settings shared by the
// AI-backed tools.
type ReportConfig struct {
	OutputDir  string
	Language   string
	MaxCommits int
}

// --- error rendering ---
//
// The dispatcher contract: every failure becomes one textual error
// message on the tool result, prefixed with its class.

func errValidation(field, msg string) *mcp.CallToolResult {
	return mcp.NewToolResultError(fmt.Sprintf("Validation error: %s: %s", field, msg))
}

func errConfiguration() *mcp.CallToolResult {
	return mcp.NewToolResultError(
		"Configuration error: completion backend not configured — " +
			"set GITSCOPE_API_KEY and GITSCOPE_MODEL to enable AI analysis tools",
	)
}

// errFromBackend maps collaborator failures onto the error taxonomy,
// keeping the message closest to where the failure originated.
func errFromBackend(err error) *mcp.CallToolResult {
	var limitErr *ratelimit.LimitError
	if errors.As(err, &limitErr) {
		return mcp.NewToolResultError(fmt.Sprintf(
			"Rate limit exceeded: too many completion-API calls, retry in %s",
			limitErr.Wait.Round(time.Millisecond),
		))
	}
	var apiErr *llm.APIError
	if errors.As(err, &apiErr) {
		return mcp.NewToolResultError("Backend error: " + apiErr.Error())
	}
	var gitErr *git.BackendError
	if errors.As(err, &gitErr) {
		return mcp.NewToolResultError("Backend error: " + gitErr.Error())
	}
	return mcp.NewToolResultError("Backend error: " + err.Error())
}
