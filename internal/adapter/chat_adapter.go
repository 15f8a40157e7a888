package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	m "pyskel.dev/pkg/pyskel/internal/model"
)

const (
	chatCompletionsPath = "/chat/completions"
	defaultChatTimeout  = 60 * time.Second
	maxErrorBodyBytes   = 4096
)

// ChatAdapter abstracts the remote chat-completion API used to draft tests.
type ChatAdapter interface {
	// Complete sends req and returns the decoded response.
	Complete(ctx context.Context, req m.ChatRequest) (m.ChatResponse, error)
}

// APIError is returned when the remote API answers with a non-200 status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API Error: %d %s", e.StatusCode, e.Body)
}

// HTTPChatAdapter talks to an OpenAI-compatible chat-completions endpoint.
type HTTPChatAdapter struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewHTTPChatAdapter constructs an HTTPChatAdapter. A non-positive timeout
// selects the 60s default.
func NewHTTPChatAdapter(baseURL, token string, timeout time.Duration) *HTTPChatAdapter {
	if timeout <= 0 {
		timeout = defaultChatTimeout
	}

	return &HTTPChatAdapter{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: timeout},
	}
}

// Complete posts req to {baseURL}/chat/completions.
func (a *HTTPChatAdapter) Complete(ctx context.Context, req m.ChatRequest) (m.ChatResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return m.ChatResponse{}, fmt.Errorf("encode chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+chatCompletionsPath, bytes.NewReader(payload))
	if err != nil {
		return m.ChatResponse{}, fmt.Errorf("build chat request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")

	if a.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+a.token)
	}

	start := time.Now()

	resp, err := a.client.Do(httpReq)
	if err != nil {
		slog.ErrorContext(ctx, "chat completion request failed", "url", httpReq.URL.String(), "error", err)
		return m.ChatResponse{}, fmt.Errorf("chat completion request: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	slog.DebugContext(ctx, "chat completion response", "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return m.ChatResponse{}, &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var decoded m.ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return m.ChatResponse{}, fmt.Errorf("decode chat response: %w", err)
	}

	return decoded, nil
}
