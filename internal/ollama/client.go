// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP client for communicating with Ollama API.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dilekce/dilekce-tui/internal/llm"
	"github.com/dilekce/dilekce-tui/internal/prompt"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the Ollama client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// Is matches another ClientError of the same type, so errors.Is works with
// the sentinels below.
func (e *ClientError) Is(target error) bool {
	t, ok := target.(*ClientError)
	return ok && t.Type != ErrTypeUnknown && t.Type == e.Type
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeNotRunning
	ErrTypeTimeout
	ErrTypeModelNotFound
	ErrTypeContextExceeded
	ErrTypeConnection
	ErrTypeInvalidResponse
)

// Sentinel errors for easy checking.
var (
	ErrNotRunning      = &ClientError{Type: ErrTypeNotRunning, Message: "Ollama is not running"}
	ErrTimeout         = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
	ErrModelNotFound   = &ClientError{Type: ErrTypeModelNotFound, Message: "model not found"}
	ErrContextExceeded = &ClientError{Type: ErrTypeContextExceeded, Message: "context window exceeded"}
)

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the Ollama client.
type ClientConfig struct {
	// BaseURL is the Ollama API base URL (default: http://127.0.0.1:11434)
	BaseURL string

	// Model is sent with every completion request.
	Model string

	// Timeout bounds one completion including the streamed body (default: 5m)
	Timeout time.Duration

	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client

	Logger *zap.Logger
}

const (
	defaultBaseURL = "http://127.0.0.1:11434"
	defaultModel   = "qwen3"
	defaultTimeout = 5 * time.Minute
)

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the Ollama API. It implements
// llm.Client and is safe for concurrent use.
//
// Example:
//
//	client := ollama.NewClient(ollama.ClientConfig{Model: "qwen3"})
//	resp, err := client.Complete(ctx, prompt.Build(in))
type Client struct {
	baseURL    string
	model      string
	timeout    time.Duration
	httpClient *http.Client
	logger     *zap.Logger
}

var _ llm.Client = (*Client)(nil)

// NewClient creates a new Ollama client, filling in defaults for zero values.
func NewClient(cfg ClientConfig) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		model:      cfg.Model,
		timeout:    cfg.Timeout,
		httpClient: cfg.HTTPClient,
		logger:     cfg.Logger,
	}
	if c.baseURL == "" {
		c.baseURL = defaultBaseURL
	}
	if c.model == "" {
		c.model = defaultModel
	}
	if c.timeout <= 0 {
		c.timeout = defaultTimeout
	}
	// Streaming bodies outlive any fixed client timeout; deadlines come from
	// the request context instead.
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c
}

// Provider implements llm.Client.
func (c *Client) Provider() string { return "ollama" }

// Model implements llm.Client.
func (c *Client) Model() string { return c.model }

// BaseURL returns the server address.
func (c *Client) BaseURL() string { return c.baseURL }

// =============================================================================
// HEALTH CHECK AND MODELS
// =============================================================================

// CheckRunning verifies that Ollama is reachable and running.
func (c *Client) CheckRunning(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/", nil)
	if err != nil {
		return err
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return &ClientError{
			Type:    ErrTypeConnection,
			Message: "unexpected status from Ollama: " + resp.Status,
		}
	}
	return nil
}

// ListModels retrieves all installed models.
func (c *Client) ListModels(ctx context.Context) ([]ModelInfo, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/tags", nil)
	if err != nil {
		return nil, err
	}
	defer drainAndClose(resp.Body)

	if err := checkStatus(resp, "failed to list models"); err != nil {
		return nil, err
	}

	var result ListModelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}
	return result.Models, nil
}

// =============================================================================
// CHAT OPERATIONS
// =============================================================================

// Chat sends a non-streaming chat request.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	req.Stream = false
	resp, err := c.post(ctx, "/api/chat", req)
	if err != nil {
		return nil, err
	}
	defer drainAndClose(resp.Body)

	if err := checkStatus(resp, "chat request failed"); err != nil {
		return nil, err
	}

	var result ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}
	if result.Error != "" {
		return nil, classify(http.StatusOK, result.Error)
	}
	return &result, nil
}

// StreamCallback is called for each chunk received during streaming.
type StreamCallback func(chunk StreamChunk)

// ChatStream sends a streaming chat request and calls the callback for each
// chunk, in order. It returns when the final chunk arrives or on error.
func (c *Client) ChatStream(ctx context.Context, req ChatRequest, callback StreamCallback) error {
	req.Stream = true
	resp, err := c.post(ctx, "/api/chat", req)
	if err != nil {
		return err
	}
	defer drainAndClose(resp.Body)

	if err := checkStatus(resp, "stream request failed"); err != nil {
		return err
	}
	return NewStreamReader(resp.Body).Process(ctx, callback)
}

// Complete implements llm.Client.
func (c *Client) Complete(ctx context.Context, req prompt.Request) (*llm.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.Chat(ctx, NewChatRequest(c.model, req, false))
	if err != nil {
		c.logger.Warn("ollama completion failed", zap.String("model", c.model), zap.Error(err))
		return nil, err
	}

	out := &llm.Response{
		Content:          resp.Message.Content,
		Thinking:         resp.Message.Thinking,
		Model:            resp.Model,
		PromptTokens:     resp.PromptEvalCount,
		CompletionTokens: resp.EvalCount,
		Duration:         resp.TotalTime(),
	}
	if out.Duration == 0 {
		out.Duration = time.Since(start)
	}
	c.logger.Debug("ollama completion",
		zap.String("model", out.Model),
		zap.String("mode", string(req.Mode)),
		zap.Int("prompt_tokens", out.PromptTokens),
		zap.Int("completion_tokens", out.CompletionTokens))
	return llm.Check(out)
}

// Stream implements llm.Client.
func (c *Client) Stream(ctx context.Context, req prompt.Request, onDelta func(string)) (*llm.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	acc := NewStreamAccumulator()
	err := c.ChatStream(ctx, NewChatRequest(c.model, req, true), func(chunk StreamChunk) {
		acc.Add(chunk)
		if chunk.Content != "" && onDelta != nil {
			onDelta(chunk.Content)
		}
	})
	if err == nil {
		err = acc.Err()
	}
	if err != nil {
		c.logger.Warn("ollama stream failed", zap.String("model", c.model), zap.Error(err))
		return nil, err
	}

	out := acc.Response()
	if out.Model == "" {
		out.Model = c.model
	}
	if out.Duration == 0 {
		out.Duration = time.Since(start)
	}
	return llm.Check(out)
}

// =============================================================================
// HTTP HELPERS
// =============================================================================

func (c *Client) post(ctx context.Context, path string, body interface{}) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}
	return c.do(ctx, http.MethodPost, path, data)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			return nil, &ClientError{Type: ErrTypeTimeout, Message: "request timed out", Cause: err}
		case errors.Is(err, context.Canceled):
			return nil, &ClientError{Type: ErrTypeConnection, Message: "request canceled", Cause: err}
		}
		return nil, &ClientError{Type: ErrTypeNotRunning, Message: "Ollama is not running at " + c.baseURL, Cause: err}
	}
	return resp, nil
}

// checkStatus turns a non-200 response into a ClientError, using the error
// body Ollama sends when there is one.
func checkStatus(resp *http.Response, action string) error {
	if resp.StatusCode == http.StatusOK {
		return nil
	}
	var body apiError
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
		return classify(resp.StatusCode, body.Error)
	}
	if resp.StatusCode == http.StatusNotFound {
		return ErrModelNotFound
	}
	return &ClientError{Type: ErrTypeInvalidResponse, Message: action + ": " + resp.Status}
}

func classify(status int, message string) *ClientError {
	lower := strings.ToLower(message)
	switch {
	case status == http.StatusNotFound || strings.Contains(lower, "not found"):
		return &ClientError{Type: ErrTypeModelNotFound, Message: message}
	case strings.Contains(lower, "context length") || strings.Contains(lower, "context window"):
		return &ClientError{Type: ErrTypeContextExceeded, Message: message}
	}
	return &ClientError{Type: ErrTypeInvalidResponse, Message: message}
}

// IsModelNotFound checks if an error is a model not found error.
func IsModelNotFound(err error) bool {
	return errors.Is(err, ErrModelNotFound)
}

// IsNotRunning checks if an error indicates Ollama is not running.
func IsNotRunning(err error) bool {
	return errors.Is(err, ErrNotRunning)
}

// IsTimeout checks if an error is a timeout error.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

func drainAndClose(r io.ReadCloser) {
	_, _ = io.Copy(io.Discard, r)
	r.Close()
}
