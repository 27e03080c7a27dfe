package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/gitscope/gitscope/internal/fsguard"
	"github.com/gitscope/gitscope/internal/history"
	"github.com/gitscope/gitscope/internal/llm"
	"github.com/gitscope/gitscope/internal/validate"
)

// AnalyzeCommitTool handles the analyze-commit MCP tool: it fetches one
// commit's detail and asks the completion backend to explain it.
type AnalyzeCommitTool struct {
	repo   GitBackend
	ai     AI
	hist   *history.Store
	cfg    ReportConfig
	logger *zap.Logger
}

// NewAnalyzeCommitTool creates an AnalyzeCommitTool with its
// dependencies. hist may be nil — recording is then skipped.
func NewAnalyzeCommitTool(repo GitBackend, ai AI, hist *history.Store, cfg ReportConfig, logger *zap.Logger) *AnalyzeCommitTool {
	return &AnalyzeCommitTool{repo: repo, ai: ai, hist: hist, cfg: cfg, logger: logger}
}

// Definition returns the MCP tool definition for registration.
func (t *AnalyzeCommitTool) Definition() mcp.Tool {
	return mcp.NewTool("analyze-commit",
		mcp.WithDescription(
			"Analyze one commit with the configured AI model: what changed, "+
				"why, and any risks. Optionally writes the analysis as a markdown report.",
		),
		mcp.WithString("commitHash",
			mcp.Required(),
			mcp.Description("The commit to analyze: hash, branch, tag, or symbolic reference."),
		),
		mcp.WithBoolean("generateSummary",
			mcp.Description("Also write the analysis to a report file in the output directory."),
		),
		mcp.WithString("outputFile",
			mcp.Description("Report filename without extension. Defaults to commit-analysis-{hash}-{timestamp}."),
		),
	)
}

// Handle processes the analyze-commit tool call. All validation and the
// configuration check run before any external call.
func (t *AnalyzeCommitTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	commitHash, err := req.RequireString("commitHash")
	if err != nil {
		return errValidation("commitHash", "required"), nil
	}
	if !validate.IsValidCommitRef(commitHash) {
		return errValidation("commitHash", "not a valid commit reference"), nil
	}
	outputFile := req.GetString("outputFile", "")
	if outputFile != "" && !validate.IsValidFilename(outputFile) {
		return errValidation("outputFile", "must be a plain filename without separators"), nil
	}
	generateSummary := req.GetBool("generateSummary", false)

	if !t.ai.Configured() {
		return errConfiguration(), nil
	}

	commit, err := t.repo.Show(ctx, commitHash)
	if err != nil {
		return errFromBackend(err), nil
	}
	files, err := t.repo.Files(ctx, commitHash)
	if err != nil {
		return errFromBackend(err), nil
	}
	diff, _, err := t.repo.DiffForCommit(ctx, commitHash)
	if err != nil {
		return errFromBackend(err), nil
	}

	system, user := llm.CommitAnalysisPrompt(commit, files, diff, t.cfg.Language)
	analysis, err := t.ai.Complete(ctx, system, user)
	if err != nil {
		return errFromBackend(err), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Commit Analysis: %s\n\n", shortHash(commit.Hash))
	fmt.Fprintf(&sb, "**Subject:** %s\n", commit.Subject)
	fmt.Fprintf(&sb, "**Author:** %s <%s>\n", commit.Author, commit.Email)
	fmt.Fprintf(&sb, "**Date:** %s\n\n", commit.Date)
	sb.WriteString(analysis)
	sb.WriteString("\n")
	report := sb.String()

	savedPath := ""
	if generateSummary || outputFile != "" {
		name := outputFile
		if name == "" {
			name = defaultReportName("commit-analysis", shortHash(commit.Hash))
		}
		savedPath, err = fsguard.WriteReport(t.cfg.OutputDir, name, report)
		if err != nil {
			return mcp.NewToolResultError("File error: " + err.Error()), nil
		}
		report += fmt.Sprintf("\n---\n_Report saved to %s_\n", savedPath)
	}

	recordAnalysis(t.logger, t.hist, history.Entry{
		Tool:       "analyze-commit",
		Subject:    commit.Hash,
		Model:      t.ai.Model(),
		OutputFile: savedPath,
	})

	return mcp.NewToolResultText(report), nil
}
