package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// ListAuthorsTool handles the list-authors MCP tool.
type ListAuthorsTool struct {
	repo GitBackend
}

// NewListAuthorsTool creates a ListAuthorsTool with its dependencies.
func NewListAuthorsTool(repo GitBackend) *ListAuthorsTool {
	return &ListAuthorsTool{repo: repo}
}

// Definition returns the MCP tool definition for registration.
func (t *ListAuthorsTool) Definition() mcp.Tool {
	return mcp.NewTool("list-authors",
		mcp.WithDescription("List repository contributors with their commit counts, most active first."),
	)
}

// Handle processes the list-authors tool call.
func (t *ListAuthorsTool) Handle(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	authors, err := t.repo.Authors(ctx)
	if err != nil {
		return errFromBackend(err), nil
	}

	if len(authors) == 0 {
		return mcp.NewToolResultText("No authors found — is the repository empty?"), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Authors (%d)\n\n", len(authors))
	for _, a := range authors {
		if a.Email != "" {
			fmt.Fprintf(&sb, "- %s <%s> — %d commit(s)\n", a.Name, a.Email, a.Commits)
		} else {
			fmt.Fprintf(&sb, "- %s — %d commit(s)\n", a.Name, a.Commits)
		}
	}
	return mcp.NewToolResultText(sb.String()), nil
}
