package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// RepositoryStatsTool handles the repository-stats MCP tool.
type RepositoryStatsTool struct {
	repo GitBackend
}

// NewRepositoryStatsTool creates a RepositoryStatsTool with its dependencies.
func NewRepositoryStatsTool(repo GitBackend) *RepositoryStatsTool {
	return &RepositoryStatsTool{repo: repo}
}

// Definition returns the MCP tool definition for registration.
func (t *RepositoryStatsTool) Definition() mcp.Tool {
	return mcp.NewTool("repository-stats",
		mcp.WithDescription(
			"Show aggregate statistics for the configured repository: "+
				"commit count, contributors, active branch, first and last commit dates.",
		),
	)
}

// Handle processes the repository-stats tool call.
func (t *RepositoryStatsTool) Handle(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := t.repo.Stats(ctx)
	if err != nil {
		return errFromBackend(err), nil
	}
	authors, err := t.repo.Authors(ctx)
	if err != nil {
		return errFromBackend(err), nil
	}

	var sb strings.Builder
	sb.WriteString("# Repository Statistics\n\n")
	fmt.Fprintf(&sb, "**Total commits:** %d\n", stats.TotalCommits)
	fmt.Fprintf(&sb, "**Contributors:** %d\n", len(authors))
	fmt.Fprintf(&sb, "**Active branch:** %s\n", stats.Branch)
	fmt.Fprintf(&sb, "**First commit:** %s\n", stats.FirstCommitAt)
	fmt.Fprintf(&sb, "**Last commit:** %s\n", stats.LastCommitAt)
	return mcp.NewToolResultText(sb.String()), nil
}
