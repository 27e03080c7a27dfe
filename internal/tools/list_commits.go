package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/gitscope/gitscope/internal/git"
	"github.com/gitscope/gitscope/internal/validate"
)

// ListCommitsTool handles the list-commits MCP tool.
type ListCommitsTool struct {
	repo GitBackend
}

// NewListCommitsTool creates a ListCommitsTool with its dependencies.
func NewListCommitsTool(repo GitBackend) *ListCommitsTool {
	return &ListCommitsTool{repo: repo}
}

// Definition returns the MCP tool definition for registration.
func (t *ListCommitsTool) Definition() mcp.Tool {
	return mcp.NewTool("list-commits",
		mcp.WithDescription(
			"List commits from the configured repository, newest first. "+
				"Supports limiting the count and filtering by date range and author.",
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of commits to return, between 1 and 1000. Defaults to 20."),
		),
		mcp.WithString("since",
			mcp.Description("Only commits after this date (e.g. 2024-01-31 or RFC3339)."),
		),
		mcp.WithString("until",
			mcp.Description("Only commits before this date (e.g. 2024-06-30 or RFC3339)."),
		),
		mcp.WithString("author",
			mcp.Description("Only commits whose author matches this pattern."),
		),
	)
}

// Handle processes the list-commits tool call.
func (t *ListCommitsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", 20)
	if limit < 1 || limit > 1000 {
		return errValidation("limit", "must be between 1 and 1000"), nil
	}

	since := req.GetString("since", "")
	if since != "" && !validDate(since) {
		return errValidation("since", "not a recognized date"), nil
	}
	until := req.GetString("until", "")
	if until != "" && !validDate(until) {
		return errValidation("until", "not a recognized date"), nil
	}

	// The author filter is free text; strip shell metacharacters and
	// traversal sequences before it reaches the backend.
	author := validate.Sanitize(req.GetString("author", ""))

	commits, err := t.repo.Log(ctx, git.LogOptions{
		Limit:  limit,
		Since:  since,
		Until:  until,
		Author: author,
	})
	if err != nil {
		return errFromBackend(err), nil
	}

	if len(commits) == 0 {
		return mcp.NewToolResultText("No commits matched the given filters."), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Commits\n\nShowing %d commit(s), newest first.\n\n", len(commits))
	for i, c := range commits {
		fmt.Fprintf(&sb, "%d. `%s` %s %s — %s\n", i+1, shortHash(c.Hash), c.Date, c.Author, c.Subject)
	}
	return mcp.NewToolResultText(sb.String()), nil
}
