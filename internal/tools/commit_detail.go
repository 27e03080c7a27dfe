package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/gitscope/gitscope/internal/git"
	"github.com/gitscope/gitscope/internal/validate"
)

// CommitDetailTool handles the commit-detail MCP tool.
type CommitDetailTool struct {
	repo GitBackend
}

// NewCommitDetailTool creates a CommitDetailTool with its dependencies.
func NewCommitDetailTool(repo GitBackend) *CommitDetailTool {
	return &CommitDetailTool{repo: repo}
}

// Definition returns the MCP tool definition for registration.
func (t *CommitDetailTool) Definition() mcp.Tool {
	return mcp.NewTool("commit-detail",
		mcp.WithDescription(
			"Show the full detail of one commit: metadata, touched files, "+
				"and the changes it introduced.",
		),
		mcp.WithString("commitHash",
			mcp.Required(),
			mcp.Description("The commit to inspect: hash, branch, tag, or symbolic reference."),
		),
	)
}

// Handle processes the commit-detail tool call.
func (t *CommitDetailTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	commitHash, err := req.RequireString("commitHash")
	if err != nil {
		return errValidation("commitHash", "required"), nil
	}
	if !validate.IsValidCommitRef(commitHash) {
		return errValidation("commitHash", "not a valid commit reference"), nil
	}

	commit, err := t.repo.Show(ctx, commitHash)
	if err != nil {
		return errFromBackend(err), nil
	}
	files, err := t.repo.Files(ctx, commitHash)
	if err != nil {
		return errFromBackend(err), nil
	}
	diff, source, err := t.repo.DiffForCommit(ctx, commitHash)
	if err != nil {
		return errFromBackend(err), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Commit %s\n\n", shortHash(commit.Hash))
	fmt.Fprintf(&sb, "**Hash:** %s\n", commit.Hash)
	fmt.Fprintf(&sb, "**Author:** %s <%s>\n", commit.Author, commit.Email)
	fmt.Fprintf(&sb, "**Date:** %s\n", commit.Date)
	fmt.Fprintf(&sb, "**Subject:** %s\n\n", commit.Subject)

	if len(files) > 0 {
		sb.WriteString("## Files\n\n")
		for _, f := range files {
			fmt.Fprintf(&sb, "- %s\n", f)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Changes\n\n")
	switch source {
	case git.SourceDiffed:
		fmt.Fprintf(&sb, "```diff\n%s\n```\n", strings.TrimRight(diff, "\n"))
	case git.SourceRootCommit:
		sb.WriteString("_Root commit — showing the full initial tree._\n\n")
		fmt.Fprintf(&sb, "```diff\n%s\n```\n", strings.TrimRight(diff, "\n"))
	default:
		sb.WriteString("_Changes could not be determined for this commit._\n")
	}

	return mcp.NewToolResultText(sb.String()), nil
}
