// Package server wires the gitscope MCP components and creates the
// server instance.
//
// This is the composition root: it loads configuration, creates the
// concrete collaborators, and injects them into the tool handlers.
// No business logic lives here — only wiring.
package server

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/gitscope/gitscope/internal/config"
	"github.com/gitscope/gitscope/internal/git"
	"github.com/gitscope/gitscope/internal/history"
	"github.com/gitscope/gitscope/internal/llm"
	"github.com/gitscope/gitscope/internal/ratelimit"
	"github.com/gitscope/gitscope/internal/tools"
)

// Version is set at build time via ldflags.
var Version = "dev"

// NewLogger builds the process logger. Everything goes to stderr:
// stdout belongs to the MCP transport and must stay clean.
func NewLogger() *zap.Logger {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderCfg),
		zapcore.Lock(os.Stderr),
		zapcore.InfoLevel,
	)
	return zap.New(core)
}

// New creates and configures the MCP server with all seven tools
// registered. This is the single place where all dependencies are
// resolved.
//
// The returned cleanup function closes the history store's database
// connection and must be called on shutdown (typically via defer).
// It is always non-nil and safe to call even if history init failed.
func New(logger *zap.Logger) (*server.MCPServer, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, noop, fmt.Errorf("loading configuration: %w", err)
	}

	repo := git.Open(cfg.RepoPath)

	// The completion backend is optional: without credentials the
	// introspection tools keep working and the AI tools return one
	// configuration error per call.
	ai := tools.UnconfiguredAI()
	if cfg.AIConfigured() {
		limiter := ratelimit.New(cfg.RateMaxCalls, cfg.RateWindow())
		ai = tools.NewAI(llm.New(llm.Config{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
			Limiter: limiter,
		}))
		logger.Info("completion backend configured",
			zap.String("model", cfg.Model),
			zap.Int("rate_max_calls", cfg.RateMaxCalls),
			zap.Duration("rate_window", cfg.RateWindow()),
		)
	} else {
		logger.Warn("completion backend not configured; analyze-commit and generate-project-summary will return a configuration error")
	}

	// History is an independent subsystem: if it fails to initialize,
	// every tool keeps working and analyses simply go unrecorded.
	cleanup := noop
	var hist *history.Store
	histPath, histErr := history.DefaultPath()
	if histErr == nil {
		hist, histErr = history.Open(histPath)
	}
	if histErr != nil {
		logger.Warn("analysis history disabled", zap.Error(histErr))
		hist = nil
	} else {
		cleanup = func() {
			if err := hist.Close(); err != nil {
				logger.Warn("closing history store", zap.Error(err))
			}
		}
	}

	s := server.NewMCPServer(
		"gitscope",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	reportCfg := tools.ReportConfig{
		OutputDir:  cfg.OutputDir,
		Language:   cfg.Language,
		MaxCommits: cfg.MaxCommits,
	}

	// --- Register introspection tools ---

	listCommits := tools.NewListCommitsTool(repo)
	s.AddTool(listCommits.Definition(), listCommits.Handle)

	showDiff := tools.NewShowDiffTool(repo, cfg.RepoPath)
	s.AddTool(showDiff.Definition(), showDiff.Handle)

	commitDetail := tools.NewCommitDetailTool(repo)
	s.AddTool(commitDetail.Definition(), commitDetail.Handle)

	repoStats := tools.NewRepositoryStatsTool(repo)
	s.AddTool(repoStats.Definition(), repoStats.Handle)

	listAuthors := tools.NewListAuthorsTool(repo)
	s.AddTool(listAuthors.Definition(), listAuthors.Handle)

	// --- Register AI analysis tools ---

	analyzeCommit := tools.NewAnalyzeCommitTool(repo, ai, hist, reportCfg, logger)
	s.AddTool(analyzeCommit.Definition(), analyzeCommit.Handle)

	projectSummary := tools.NewProjectSummaryTool(repo, ai, hist, reportCfg, logger)
	s.AddTool(projectSummary.Definition(), projectSummary.Handle)

	return s, cleanup, nil
}

// noop is the default cleanup when history is disabled.
func noop() {}

// serverInstructions returns the system instructions that tell the AI
// client how to use gitscope effectively.
func serverInstructions() string {
	return `You have access to gitscope, an MCP server for exploring and
analyzing one git repository.

## Tools

Introspection (always available):
- list-commits: recent commits, filterable by author and date range
- show-diff: diff for a commit, between two commits, or the working tree;
  optionally restricted to one file
- commit-detail: full metadata and changes for one commit
- repository-stats: commit count, contributors, branch, first/last commit
- list-authors: contributors ranked by commit count

AI analysis (require GITSCOPE_API_KEY and GITSCOPE_MODEL):
- analyze-commit: explain what one commit changed and why
- generate-project-summary: summarize recent development activity

## Usage notes

- Commit references may be hashes (7-40 hex chars), branch or tag names,
  or symbolic refs like HEAD.
- Dates accept YYYY-MM-DD, YYYY-MM-DD HH:MM:SS, or RFC 3339.
- The AI tools can write their result as a markdown report; pass
  outputFile (a plain filename, no directories) or generateSummary.
- AI calls are rate limited. On a rate-limit error, wait the indicated
  time before retrying instead of retrying immediately.
- Start with repository-stats or list-commits to orient yourself, then
  drill into individual commits with commit-detail or show-diff.`
}
