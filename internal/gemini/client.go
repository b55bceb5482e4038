// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gemini implements llm.Client on the Google Gen AI SDK.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/dilekce/dilekce-tui/internal/llm"
	"github.com/dilekce/dilekce-tui/internal/model"
	"github.com/dilekce/dilekce-tui/internal/prompt"
)

// ErrMissingAPIKey is returned by NewClient without an API key.
var ErrMissingAPIKey = errors.New("gemini API key is required (set DILEKCE_GEMINI_KEY or GEMINI_API_KEY)")

const defaultModel = "gemini-2.5-flash"

// Config configures a Client.
type Config struct {
	APIKey  string
	Model   string
	Timeout time.Duration

	// BaseURL overrides the API endpoint, mainly for tests.
	BaseURL    string
	HTTPClient *http.Client

	Logger *zap.Logger
}

// Client sends requests to the Gemini API.
type Client struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

var _ llm.Client = (*Client)(nil)

// NewClient creates a Gemini client.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Minute
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  cfg.HTTPClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Client{
		client:  gc,
		model:   cfg.Model,
		timeout: cfg.Timeout,
		logger:  cfg.Logger,
	}, nil
}

// Provider implements llm.Client.
func (c *Client) Provider() string { return "gemini" }

// Model implements llm.Client.
func (c *Client) Model() string { return c.model }

// Complete implements llm.Client.
func (c *Client) Complete(ctx context.Context, req prompt.Request) (*llm.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	contents, config := BuildRequest(c.model, req)
	start := time.Now()
	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		c.logger.Warn("gemini completion failed", zap.String("model", c.model), zap.Error(err))
		return nil, fmt.Errorf("gemini completion failed: %w", err)
	}

	out := &llm.Response{Model: c.model, Duration: time.Since(start)}
	collect(out, resp)
	c.logger.Debug("gemini completion",
		zap.String("model", c.model),
		zap.String("mode", string(req.Mode)),
		zap.Int("prompt_tokens", out.PromptTokens),
		zap.Int("completion_tokens", out.CompletionTokens))
	return llm.Check(out)
}

// Stream implements llm.Client.
func (c *Client) Stream(ctx context.Context, req prompt.Request, onDelta func(string)) (*llm.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	contents, config := BuildRequest(c.model, req)
	start := time.Now()
	out := &llm.Response{Model: c.model}

	for resp, err := range c.client.Models.GenerateContentStream(ctx, c.model, contents, config) {
		if err != nil {
			c.logger.Warn("gemini stream failed", zap.String("model", c.model), zap.Error(err))
			return nil, fmt.Errorf("gemini stream failed: %w", err)
		}
		delta := collect(out, resp)
		if delta != "" && onDelta != nil {
			onDelta(delta)
		}
	}

	out.Duration = time.Since(start)
	return llm.Check(out)
}

// =============================================================================
// CONVERSION
// =============================================================================

// BuildRequest converts an assembled request into Gemini contents and
// generation config. System messages become the system instruction.
func BuildRequest(modelName string, req prompt.Request) ([]*genai.Content, *genai.GenerateContentConfig) {
	var system []string
	contents := make([]*genai.Content, 0, len(req.Messages))

	for _, m := range req.Messages {
		switch m.Role {
		case model.RoleSystem:
			system = append(system, m.Content)
		case model.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}

	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(req.Options.Temperature)),
		MaxOutputTokens: int32(req.Options.MaxOutputTokens),
		ThinkingConfig:  thinkingConfig(modelName, req.Options.Reasoning),
	}
	if len(system) > 0 {
		config.SystemInstruction = genai.NewContentFromText(strings.Join(system, "\n\n"), genai.RoleUser)
	}
	return contents, config
}

// thinkingConfig requests thoughts for reasoning modes. Flash models can
// switch thinking off with a zero budget; other models keep their default.
func thinkingConfig(modelName string, reasoning bool) *genai.ThinkingConfig {
	info, known := model.GetModelInfo(modelName)
	if known && !info.Reasoning {
		return nil
	}
	if reasoning {
		return &genai.ThinkingConfig{IncludeThoughts: true}
	}
	if strings.Contains(modelName, "flash") {
		return &genai.ThinkingConfig{ThinkingBudget: genai.Ptr[int32](0)}
	}
	return nil
}

// collect appends the text of resp to out and returns the new answer text.
// Thought parts go to out.Thinking.
func collect(out *llm.Response, resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	if resp.ModelVersion != "" {
		out.Model = resp.ModelVersion
	}
	if u := resp.UsageMetadata; u != nil {
		if u.PromptTokenCount > 0 {
			out.PromptTokens = int(u.PromptTokenCount)
		}
		if u.CandidatesTokenCount > 0 {
			out.CompletionTokens = int(u.CandidatesTokenCount)
		}
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var delta strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.Text == "" {
			continue
		}
		if part.Thought {
			out.Thinking += part.Text
			continue
		}
		delta.WriteString(part.Text)
	}
	out.Content += delta.String()
	return delta.String()
}
