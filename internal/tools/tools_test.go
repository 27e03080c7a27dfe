package tools

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/gitscope/gitscope/internal/git"
)

// --- Test fakes ---

// fakeGit implements GitBackend with canned data and call counters.
type fakeGit struct {
	commits []git.Commit
	files   map[string][]string
	diffs   map[string]string
	source  git.ChangeSource
	stats   git.Stats
	authors []git.Author

	logErr  error
	showErr error
	diffErr error

	logCalls    int
	lastLogOpts git.LogOptions
	calls       int
}

func (f *fakeGit) Log(_ context.Context, opts git.LogOptions) ([]git.Commit, error) {
	f.calls++
	f.logCalls++
	f.lastLogOpts = opts
	if f.logErr != nil {
		return nil, f.logErr
	}
	commits := f.commits
	if opts.Limit > 0 && opts.Limit < len(commits) {
		commits = commits[:opts.Limit]
	}
	return commits, nil
}

func (f *fakeGit) Show(_ context.Context, ref string) (git.Commit, error) {
	f.calls++
	if f.showErr != nil {
		return git.Commit{}, f.showErr
	}
	for _, c := range f.commits {
		if c.Hash == ref || strings.HasPrefix(c.Hash, ref) {
			return c, nil
		}
	}
	return git.Commit{}, &git.BackendError{Op: "log", Detail: "unknown revision " + ref}
}

func (f *fakeGit) Files(_ context.Context, ref string) ([]string, error) {
	f.calls++
	return f.files[ref], nil
}

func (f *fakeGit) Diff(_ context.Context, opts git.DiffOptions) (string, error) {
	f.calls++
	if f.diffErr != nil {
		return "", f.diffErr
	}
	key := opts.Commit
	if key == "" {
		key = opts.From + ".." + opts.To
	}
	return f.diffs[key], nil
}

func (f *fakeGit) DiffForCommit(_ context.Context, ref string) (string, git.ChangeSource, error) {
	f.calls++
	if f.source == git.SourceUnavailable {
		return "", git.SourceUnavailable, nil
	}
	return f.diffs[ref], f.source, nil
}

func (f *fakeGit) Stats(_ context.Context) (git.Stats, error) {
	f.calls++
	return f.stats, nil
}

func (f *fakeGit) Authors(_ context.Context) ([]git.Author, error) {
	f.calls++
	return f.authors, nil
}

// fakeCompleter counts calls and returns a canned completion.
type fakeCompleter struct {
	response string
	err      error
	calls    int
}

func (f *fakeCompleter) Complete(_ context.Context, _, _ string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeCompleter) Model() string { return "test-model" }

// --- Result helpers ---

func isErrorResult(result *mcp.CallToolResult) bool {
	return result != nil && result.IsError
}

func getResultText(result *mcp.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func callWith(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func threeCommits() []git.Commit {
	return []git.Commit{
		{Hash: "ccc3333ccc3333ccc3333ccc3333ccc3333ccc33", Author: "Ada", Email: "ada@example.com", Date: "2024-03-01T10:00:00+00:00", Subject: "third"},
		{Hash: "bbb2222bbb2222bbb2222bbb2222bbb2222bbb22", Author: "Grace", Email: "grace@example.com", Date: "2024-02-01T10:00:00+00:00", Subject: "second"},
		{Hash: "aaa1111aaa1111aaa1111aaa1111aaa1111aaa11", Author: "Ada", Email: "ada@example.com", Date: "2024-01-01T10:00:00+00:00", Subject: "first"},
	}
}

// --- ListCommitsTool ---

// End-to-end scenario: a limit above the repository size returns every
// commit there is, newest first.
func TestListCommitsTool_FewerCommitsThanLimit(t *testing.T) {
	backend := &fakeGit{commits: threeCommits()}
	tool := NewListCommitsTool(backend)

	result, err := tool.Handle(context.Background(), callWith(map[string]interface{}{"limit": 5}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("unexpected error: %s", getResultText(result))
	}

	text := getResultText(result)
	if !strings.Contains(text, "Showing 3 commit(s)") {
		t.Errorf("expected 3 commits, got: %s", text)
	}
	// Newest first: "third" before "second" before "first".
	if strings.Index(text, "third") > strings.Index(text, "second") {
		t.Error("commits are not newest first")
	}
	if strings.Contains(text, "4.") {
		t.Error("report should have exactly 3 numbered entries")
	}
}

func TestListCommitsTool_DefaultLimit(t *testing.T) {
	backend := &fakeGit{commits: threeCommits()}
	tool := NewListCommitsTool(backend)

	if _, err := tool.Handle(context.Background(), callWith(nil)); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if backend.lastLogOpts.Limit != 20 {
		t.Errorf("default limit = %d, want 20", backend.lastLogOpts.Limit)
	}
}

func TestListCommitsTool_LimitOutOfRange(t *testing.T) {
	backend := &fakeGit{commits: threeCommits()}
	tool := NewListCommitsTool(backend)

	for _, limit := range []int{0, -3, 1001} {
		result, err := tool.Handle(context.Background(), callWith(map[string]interface{}{"limit": limit}))
		if err != nil {
			t.Fatalf("Handle: %v", err)
		}
		if !isErrorResult(result) {
			t.Errorf("limit=%d should be rejected", limit)
		}
		if !strings.Contains(getResultText(result), "Validation error") {
			t.Errorf("limit=%d: message = %s", limit, getResultText(result))
		}
	}
	if backend.logCalls != 0 {
		t.Errorf("backend called %d times despite invalid limit", backend.logCalls)
	}
}

func TestListCommitsTool_BadDates(t *testing.T) {
	backend := &fakeGit{commits: threeCommits()}
	tool := NewListCommitsTool(backend)

	result, err := tool.Handle(context.Background(), callWith(map[string]interface{}{"since": "not-a-date"}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !isErrorResult(result) || !strings.Contains(getResultText(result), "since") {
		t.Errorf("bad since should yield a field-named validation error, got: %s", getResultText(result))
	}
}

func TestListCommitsTool_SanitizesAuthor(t *testing.T) {
	backend := &fakeGit{commits: threeCommits()}
	tool := NewListCommitsTool(backend)

	_, err := tool.Handle(context.Background(), callWith(map[string]interface{}{"author": "ada;$(rm -rf)"}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if got := backend.lastLogOpts.Author; got != "adarm -rf" {
		t.Errorf("sanitized author = %q, want %q", got, "adarm -rf")
	}
}

func TestListCommitsTool_EmptyRepository(t *testing.T) {
	tool := NewListCommitsTool(&fakeGit{})

	result, err := tool.Handle(context.Background(), callWith(nil))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("empty repo is not an error: %s", getResultText(result))
	}
	if !strings.Contains(getResultText(result), "No commits") {
		t.Errorf("text = %s", getResultText(result))
	}
}

func TestListCommitsTool_BackendError(t *testing.T) {
	backend := &fakeGit{logErr: &git.BackendError{Op: "log", Detail: "not a git repository"}}
	tool := NewListCommitsTool(backend)

	result, err := tool.Handle(context.Background(), callWith(nil))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	text := getResultText(result)
	if !isErrorResult(result) || !strings.Contains(text, "Backend error") || !strings.Contains(text, "not a git repository") {
		t.Errorf("text = %s", text)
	}
}

// --- ShowDiffTool ---

func TestShowDiffTool_SingleCommit(t *testing.T) {
	backend := &fakeGit{diffs: map[string]string{"abc1234": "+added line"}}
	tool := NewShowDiffTool(backend, "/repo")

	result, err := tool.Handle(context.Background(), callWith(map[string]interface{}{"commitHash": "abc1234"}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !strings.Contains(getResultText(result), "+added line") {
		t.Errorf("text = %s", getResultText(result))
	}
}

func TestShowDiffTool_InvalidRef(t *testing.T) {
	backend := &fakeGit{}
	tool := NewShowDiffTool(backend, "/repo")

	result, err := tool.Handle(context.Background(), callWith(map[string]interface{}{"fromCommit": "bad ref!"}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !isErrorResult(result) || !strings.Contains(getResultText(result), "fromCommit") {
		t.Errorf("text = %s", getResultText(result))
	}
	if backend.calls != 0 {
		t.Error("backend must not be called on validation failure")
	}
}

func TestShowDiffTool_PathEscapesRepository(t *testing.T) {
	backend := &fakeGit{}
	tool := NewShowDiffTool(backend, "/repo")

	result, err := tool.Handle(context.Background(), callWith(map[string]interface{}{"filePath": "../secret"}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !isErrorResult(result) || !strings.Contains(getResultText(result), "filePath") {
		t.Errorf("text = %s", getResultText(result))
	}
	if backend.calls != 0 {
		t.Error("backend must not be called on validation failure")
	}
}

func TestShowDiffTool_NoChanges(t *testing.T) {
	backend := &fakeGit{diffs: map[string]string{}}
	tool := NewShowDiffTool(backend, "/repo")

	result, err := tool.Handle(context.Background(), callWith(nil))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !strings.Contains(getResultText(result), "No changes") {
		t.Errorf("text = %s", getResultText(result))
	}
}

// --- CommitDetailTool ---

func TestCommitDetailTool_Success(t *testing.T) {
	commits := threeCommits()
	backend := &fakeGit{
		commits: commits,
		files:   map[string][]string{commits[0].Hash: {"parser.go", "lexer.go"}},
		diffs:   map[string]string{commits[0].Hash: "+change"},
		source:  git.SourceDiffed,
	}
	tool := NewCommitDetailTool(backend)

	result, err := tool.Handle(context.Background(), callWith(map[string]interface{}{"commitHash": commits[0].Hash}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	text := getResultText(result)
	for _, want := range []string{"Ada", "third", "parser.go", "+change"} {
		if !strings.Contains(text, want) {
			t.Errorf("detail missing %q: %s", want, text)
		}
	}
}

func TestCommitDetailTool_MissingHash(t *testing.T) {
	tool := NewCommitDetailTool(&fakeGit{})

	result, err := tool.Handle(context.Background(), callWith(nil))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !isErrorResult(result) || !strings.Contains(getResultText(result), "commitHash") {
		t.Errorf("text = %s", getResultText(result))
	}
}

func TestCommitDetailTool_ChangesUnavailable(t *testing.T) {
	commits := threeCommits()
	backend := &fakeGit{commits: commits, source: git.SourceUnavailable}
	tool := NewCommitDetailTool(backend)

	result, err := tool.Handle(context.Background(), callWith(map[string]interface{}{"commitHash": commits[0].Hash}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !strings.Contains(getResultText(result), "could not be determined") {
		t.Errorf("text = %s", getResultText(result))
	}
}

// --- RepositoryStatsTool / ListAuthorsTool ---

func TestRepositoryStatsTool(t *testing.T) {
	backend := &fakeGit{
		stats: git.Stats{TotalCommits: 42, Branch: "main", FirstCommitAt: "2020-01-01", LastCommitAt: "2024-06-01"},
		authors: []git.Author{
			{Commits: 30, Name: "Ada", Email: "ada@example.com"},
			{Commits: 12, Name: "Grace", Email: "grace@example.com"},
		},
	}
	tool := NewRepositoryStatsTool(backend)

	result, err := tool.Handle(context.Background(), mcp.CallToolRequest{})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	text := getResultText(result)
	for _, want := range []string{"42", "main", "2020-01-01", "Contributors:** 2"} {
		if !strings.Contains(text, want) {
			t.Errorf("stats missing %q: %s", want, text)
		}
	}
}

func TestListAuthorsTool(t *testing.T) {
	backend := &fakeGit{authors: []git.Author{{Commits: 30, Name: "Ada", Email: "ada@example.com"}}}
	tool := NewListAuthorsTool(backend)

	result, err := tool.Handle(context.Background(), mcp.CallToolRequest{})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	text := getResultText(result)
	if !strings.Contains(text, "Ada <ada@example.com> — 30 commit(s)") {
		t.Errorf("text = %s", text)
	}
}

func TestListAuthorsTool_Empty(t *testing.T) {
	tool := NewListAuthorsTool(&fakeGit{})

	result, err := tool.Handle(context.Background(), mcp.CallToolRequest{})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !strings.Contains(getResultText(result), "No authors") {
		t.Errorf("text = %s", getResultText(result))
	}
}
