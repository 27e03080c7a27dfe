package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gitscope/gitscope/internal/git"
	"github.com/gitscope/gitscope/internal/ratelimit"
)

// newCompletionServer returns a test server answering /chat/completions
// with the given status and body, plus a pointer to the request count.
func newCompletionServer(t *testing.T, status int, body string) (*httptest.Server, *int) {
	t.Helper()
	calls := new(int)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s, want /chat/completions", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); !strings.HasPrefix(got, "Bearer sk-") {
			t.Errorf("Authorization = %q, want Bearer sk-...", got)
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, calls
}

func completionBody(text string) string {
	resp := chatResponse{}
	resp.Choices = append(resp.Choices, struct {
		Message chatMessage `json:"message"`
	}{Message: chatMessage{Role: "assistant", Content: text}})
	data, _ := json.Marshal(resp)
	return string(data)
}

func TestClient_Complete_Success(t *testing.T) {
	srv, calls := newCompletionServer(t, http.StatusOK, completionBody("the analysis"))
	c := New(Config{APIKey: "sk-test12345678", Model: "gpt-4o", BaseURL: srv.URL})

	out, err := c.Complete(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != "the analysis" {
		t.Errorf("out = %q", out)
	}
	if *calls != 1 {
		t.Errorf("backend calls = %d, want 1", *calls)
	}
}

func TestClient_Complete_StatusMapping(t *testing.T) {
	tests := []struct {
		status int
		kind   Kind
	}{
		{http.StatusUnauthorized, KindUnauthorized},
		{http.StatusForbidden, KindUnauthorized},
		{http.StatusTooManyRequests, KindThrottled},
		{http.StatusBadRequest, KindBadRequest},
		{http.StatusInternalServerError, KindGeneric},
	}
	for _, tt := range tests {
		srv, _ := newCompletionServer(t, tt.status, `{"error":"nope"}`)
		c := New(Config{APIKey: "sk-test12345678", Model: "gpt-4o", BaseURL: srv.URL})

		_, err := c.Complete(context.Background(), "s", "u")
		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("status %d: error = %v, want *APIError", tt.status, err)
		}
		if apiErr.Kind != tt.kind {
			t.Errorf("status %d: kind = %v, want %v", tt.status, apiErr.Kind, tt.kind)
		}
		if apiErr.StatusCode != tt.status {
			t.Errorf("StatusCode = %d, want %d", apiErr.StatusCode, tt.status)
		}
	}
}

func TestClient_Complete_EmptyChoices(t *testing.T) {
	srv, _ := newCompletionServer(t, http.StatusOK, `{"choices":[]}`)
	c := New(Config{APIKey: "sk-test12345678", Model: "gpt-4o", BaseURL: srv.URL})

	if _, err := c.Complete(context.Background(), "s", "u"); err == nil {
		t.Error("empty choices should error")
	}
}

func TestClient_Complete_AdmissionDenied(t *testing.T) {
	srv, calls := newCompletionServer(t, http.StatusOK, completionBody("ok"))
	limiter := ratelimit.New(1, time.Minute)
	c := New(Config{APIKey: "sk-test12345678", Model: "gpt-4o", BaseURL: srv.URL, Limiter: limiter})

	if _, err := c.Complete(context.Background(), "s", "u"); err != nil {
		t.Fatalf("first call: %v", err)
	}
	_, err := c.Complete(context.Background(), "s", "u")
	var limitErr *ratelimit.LimitError
	if !errors.As(err, &limitErr) {
		t.Fatalf("second call error = %v, want *ratelimit.LimitError", err)
	}
	if limitErr.Wait <= 0 {
		t.Errorf("Wait = %v, want positive", limitErr.Wait)
	}
	if *calls != 1 {
		t.Errorf("backend calls = %d, want 1 (denied call must not reach the network)", *calls)
	}
}

func TestNew_Defaults(t *testing.T) {
	c := New(Config{APIKey: "sk-test12345678", Model: "gpt-4o"})
	if c.baseURL != DefaultBaseURL {
		t.Errorf("baseURL = %q, want default", c.baseURL)
	}
	if c.limiter == nil {
		t.Error("limiter should never be nil")
	}
}

// --- prompts ---

func TestTruncateToTokenBudget_ShortTextUntouched(t *testing.T) {
	text := "short diff"
	if got := TruncateToTokenBudget(text, 100); got != text {
		t.Errorf("got %q, want unchanged input", got)
	}
}

func TestCommitAnalysisPrompt_IncludesCommitAndLanguage(t *testing.T) {
	c := git.Commit{Hash: "abc1234", Author: "Ada", Email: "ada@example.com", Date: "2024-03-01", Subject: "fix parser"}
	system, user := CommitAnalysisPrompt(c, []string{"parser.go"}, "diff text", "spanish")

	if !strings.Contains(system, "spanish") {
		t.Errorf("system prompt should carry the language directive: %q", system)
	}
	for _, want := range []string{"abc1234", "Ada", "fix parser", "parser.go", "diff text"} {
		if !strings.Contains(user, want) {
			t.Errorf("user prompt missing %q", want)
		}
	}
}

func TestProjectSummaryPrompt_IncludesCountAndDigest(t *testing.T) {
	system, user := ProjectSummaryPrompt("1. abc1234 first\n2. def5678 second", 2, "")

	if !strings.Contains(system, "english") {
		t.Errorf("default language should be english: %q", system)
	}
	if !strings.Contains(user, "2 most recent commits") {
		t.Errorf("user prompt missing commit count: %q", user)
	}
	if !strings.Contains(user, "def5678") {
		t.Errorf("user prompt missing digest content")
	}
}
