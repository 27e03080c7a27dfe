// Package llm is the completion-API collaborator: a minimal client for
// an OpenAI-compatible chat-completions endpoint.
//
// Every network call passes the sliding-window limiter first. The
// limiter guards our own call rate; a 429 from the server is still
// possible and is reported as a throttled APIError.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gitscope/gitscope/internal/ratelimit"
)

// DefaultBaseURL is the OpenAI-compatible endpoint used when the
// configuration supplies none.
const DefaultBaseURL = "https://api.openai.com/v1"

// requestTimeout bounds one completion round trip.
const requestTimeout = 120 * time.Second

// For testing: allow overriding the HTTP client.
var httpClient = &http.Client{Timeout: requestTimeout}

// Config carries everything a Client needs.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	// Limiter gates admission. A nil Limiter gets the defaults.
	Limiter *ratelimit.Limiter
}

// Client talks to one completion backend with one credential and one
// admission window.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	limiter *ratelimit.Limiter
}

// New builds a Client from cfg.
func New(cfg Config) *Client {
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	limiter := cfg.Limiter
	if limiter == nil {
		limiter = ratelimit.New(ratelimit.DefaultMaxCalls, ratelimit.DefaultWindow)
	}
	return &Client{
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		baseURL: baseURL,
		limiter: limiter,
	}
}

// Model returns the configured model identifier.
func (c *Client) Model() string { return c.model }

// Kind classifies an APIError by the backend's HTTP status.
type Kind int

const (
	KindGeneric Kind = iota
	KindUnauthorized
	KindThrottled
	KindBadRequest
)

// APIError reports a transport or HTTP failure from the completion
// backend with a human-readable message.
type APIError struct {
	StatusCode int
	Kind       Kind
	Message    string
}

func (e *APIError) Error() string {
	switch e.Kind {
	case KindUnauthorized:
		return fmt.Sprintf("completion API rejected the credentials (status %d): %s", e.StatusCode, e.Message)
	case KindThrottled:
		return fmt.Sprintf("completion API throttled the request (status %d): %s", e.StatusCode, e.Message)
	case KindBadRequest:
		return fmt.Sprintf("completion API rejected the request (status %d): %s", e.StatusCode, e.Message)
	default:
		if e.StatusCode > 0 {
			return fmt.Sprintf("completion API error (status %d): %s", e.StatusCode, e.Message)
		}
		return "completion API error: " + e.Message
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Complete sends one system+user prompt pair and returns the generated
// text. The admission check happens here, on the actual network call,
// so batched tool handlers cannot bypass it.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	if !c.limiter.Allow() {
		return "", &ratelimit.LimitError{Wait: c.limiter.RetryAfter()}
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("encoding completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", &APIError{Kind: KindGeneric, Message: err.Error()}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", statusError(resp)
	}

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", &APIError{Kind: KindGeneric, Message: "decoding response: " + err.Error()}
	}
	if len(decoded.Choices) == 0 || decoded.Choices[0].Message.Content == "" {
		return "", &APIError{Kind: KindGeneric, Message: "response contained no completion"}
	}
	return decoded.Choices[0].Message.Content, nil
}

// statusError maps a non-200 response to an APIError, keeping a slice
// of the body as the message.
func statusError(resp *http.Response) *APIError {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	msg := strings.TrimSpace(string(snippet))
	if msg == "" {
		msg = resp.Status
	}

	kind := KindGeneric
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		kind = KindUnauthorized
	case http.StatusTooManyRequests:
		kind = KindThrottled
	case http.StatusBadRequest:
		kind = KindBadRequest
	}
	return &APIError{StatusCode: resp.StatusCode, Kind: kind, Message: msg}
}
