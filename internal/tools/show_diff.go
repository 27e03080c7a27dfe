package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/gitscope/gitscope/internal/git"
	"github.com/gitscope/gitscope/internal/validate"
)

// ShowDiffTool handles the show-diff MCP tool.
type ShowDiffTool struct {
	repo     GitBackend
	repoPath string
}

// NewShowDiffTool creates a ShowDiffTool. repoPath is the repository
// root used to contain the filePath argument.
func NewShowDiffTool(repo GitBackend, repoPath string) *ShowDiffTool {
	return &ShowDiffTool{repo: repo, repoPath: repoPath}
}

// Definition returns the MCP tool definition for registration.
func (t *ShowDiffTool) Definition() mcp.Tool {
	return mcp.NewTool("show-diff",
		mcp.WithDescription(
			"Show a diff: a single commit's changes (commitHash), a range "+
				"(fromCommit/toCommit), or the working tree when nothing is given. "+
				"Optionally scoped to one file.",
		),
		mcp.WithString("commitHash",
			mcp.Description("Show the changes introduced by this commit."),
		),
		mcp.WithString("fromCommit",
			mcp.Description("Diff range start (commit reference)."),
		),
		mcp.WithString("toCommit",
			mcp.Description("Diff range end (commit reference)."),
		),
		mcp.WithString("filePath",
			mcp.Description("Restrict the diff to this file, relative to the repository root."),
		),
	)
}

// Handle processes the show-diff tool call.
func (t *ShowDiffTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	commitHash := req.GetString("commitHash", "")
	fromCommit := req.GetString("fromCommit", "")
	toCommit := req.GetString("toCommit", "")
	filePath := req.GetString("filePath", "")

	for field, ref := range map[string]string{
		"commitHash": commitHash,
		"fromCommit": fromCommit,
		"toCommit":   toCommit,
	} {
		if ref != "" && !validate.IsValidCommitRef(ref) {
			return errValidation(field, "not a valid commit reference"), nil
		}
	}
	if filePath != "" && !validate.IsValidPath(filePath, t.repoPath) {
		return errValidation("filePath", "must stay inside the repository"), nil
	}

	diff, err := t.repo.Diff(ctx, git.DiffOptions{
		Commit: commitHash,
		From:   fromCommit,
		To:     toCommit,
		Path:   filePath,
	})
	if err != nil {
		return errFromBackend(err), nil
	}

	if strings.TrimSpace(diff) == "" {
		return mcp.NewToolResultText("No changes in the requested range."), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("# Diff\n\n```diff\n%s\n```", strings.TrimRight(diff, "\n"))), nil
}
