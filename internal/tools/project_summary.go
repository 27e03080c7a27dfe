package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gitscope/gitscope/internal/fsguard"
	"github.com/gitscope/gitscope/internal/git"
	"github.com/gitscope/gitscope/internal/history"
	"github.com/gitscope/gitscope/internal/llm"
	"github.com/gitscope/gitscope/internal/validate"
)

// summaryHardCap is the absolute ceiling on commits per summary,
// independent of the configured max_commits.
const summaryHardCap = 50

// detailFetchParallelism bounds concurrent per-commit detail fetches.
const detailFetchParallelism = 4

// perCommitDiffBudget keeps individual diffs small inside the digest.
const perCommitDiffBudget = 400

// ProjectSummaryTool handles the generate-project-summary MCP tool: it
// collects recent commit details and asks the completion backend for a
// project-level summary.
type ProjectSummaryTool struct {
	repo   GitBackend
	ai     AI
	hist   *history.Store
	cfg    ReportConfig
	logger *zap.Logger
}

// NewProjectSummaryTool creates a ProjectSummaryTool with its
// dependencies. hist may be nil — recording is then skipped.
func NewProjectSummaryTool(repo GitBackend, ai AI, hist *history.Store, cfg ReportConfig, logger *zap.Logger) *ProjectSummaryTool {
	return &ProjectSummaryTool{repo: repo, ai: ai, hist: hist, cfg: cfg, logger: logger}
}

// Definition returns the MCP tool definition for registration.
func (t *ProjectSummaryTool) Definition() mcp.Tool {
	return mcp.NewTool("generate-project-summary",
		mcp.WithDescription(
			"Summarize recent development activity with the configured AI model. "+
				"Reviews the most recent commits and their changes. "+
				"Optionally writes the summary as a markdown report.",
		),
		mcp.WithNumber("commitCount",
			mcp.Description("How many recent commits to review (max 50). Defaults to 10."),
		),
		mcp.WithString("outputFile",
			mcp.Description("Report filename without extension. Defaults to project-summary-{count}-commits-{timestamp}."),
		),
	)
}

// commitDigest is the per-commit detail gathered for the prompt.
type commitDigest struct {
	commit git.Commit
	files  []string
	diff   string
	source git.ChangeSource
}

// Handle processes the generate-project-summary tool call.
func (t *ProjectSummaryTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	maxCount := summaryHardCap
	if t.cfg.MaxCommits > 0 && t.cfg.MaxCommits < maxCount {
		maxCount = t.cfg.MaxCommits
	}
	commitCount := req.GetInt("commitCount", 10)
	if commitCount < 1 || commitCount > maxCount {
		return errValidation("commitCount", fmt.Sprintf("must be between 1 and %d", maxCount)), nil
	}
	outputFile := req.GetString("outputFile", "")
	if outputFile != "" && !validate.IsValidFilename(outputFile) {
		return errValidation("outputFile", "must be a plain filename without separators"), nil
	}

	if !t.ai.Configured() {
		return errConfiguration(), nil
	}

	commits, err := t.repo.Log(ctx, git.LogOptions{Limit: commitCount})
	if err != nil {
		return errFromBackend(err), nil
	}
	if len(commits) == 0 {
		return mcp.NewToolResultText("The repository has no commits to summarize."), nil
	}

	// Per-commit fetches are independent; run them concurrently but
	// slot results by index so the digest keeps the listing order.
	digests := make([]commitDigest, len(commits))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(detailFetchParallelism)
	for i, c := range commits {
		group.Go(func() error {
			d := commitDigest{commit: c}
			// Best effort: a commit whose detail cannot be fetched
			// still appears in the digest with what we have.
			d.files, _ = t.repo.Files(groupCtx, c.Hash)
			d.diff, d.source, _ = t.repo.DiffForCommit(groupCtx, c.Hash)
			digests[i] = d
			return nil
		})
	}
	_ = group.Wait()

	digest := buildDigest(digests)
	system, user := llm.ProjectSummaryPrompt(digest, len(commits), t.cfg.Language)
	summary, err := t.ai.Complete(ctx, system, user)
	if err != nil {
		return errFromBackend(err), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Project Summary (%d commits)\n\n", len(commits))
	sb.WriteString(summary)
	sb.WriteString("\n\n## Commits Reviewed\n\n")
	sb.WriteString(digest)
	report := sb.String()

	savedPath := ""
	if outputFile != "" {
		savedPath, err = fsguard.WriteReport(t.cfg.OutputDir, outputFile, report)
		if err != nil {
			return mcp.NewToolResultError("File error: " + err.Error()), nil
		}
		report += fmt.Sprintf("\n---\n_Report saved to %s_\n", savedPath)
	}

	recordAnalysis(t.logger, t.hist, history.Entry{
		Tool:       "generate-project-summary",
		Subject:    fmt.Sprintf("%d commits", len(commits)),
		Model:      t.ai.Model(),
		OutputFile: savedPath,
	})

	return mcp.NewToolResultText(report), nil
}

// buildDigest renders numbered per-commit entries, newest first,
// matching the order of the original listing.
func buildDigest(digests []commitDigest) string {
	var sb strings.Builder
	for i, d := range digests {
		c := d.commit
		fmt.Fprintf(&sb, "%d. `%s` %s %s — %s\n", i+1, shortHash(c.Hash), c.Date, c.Author, c.Subject)
		if len(d.files) > 0 {
			fmt.Fprintf(&sb, "   Files: %s\n", strings.Join(d.files, ", "))
		}
		switch d.source {
		case git.SourceUnavailable:
			sb.WriteString("   Changes: unavailable\n")
		default:
			if snippet := strings.TrimSpace(llm.TruncateToTokenBudget(d.diff, perCommitDiffBudget)); snippet != "" {
				fmt.Fprintf(&sb, "   Changes:\n```diff\n%s\n```\n", snippet)
			}
		}
	}
	return sb.String()
}
