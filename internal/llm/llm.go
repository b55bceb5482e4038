// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package llm defines the transport contract between assembled prompts and
// model providers.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dilekce/dilekce-tui/internal/model"
	"github.com/dilekce/dilekce-tui/internal/prompt"
)

// ErrEmptyResponse is returned when a provider answers without any text.
var ErrEmptyResponse = errors.New("model returned an empty response")

// Client sends assembled requests to a model provider.
type Client interface {
	// Complete sends req and waits for the whole answer.
	Complete(ctx context.Context, req prompt.Request) (*Response, error)

	// Stream sends req and calls onDelta with each piece of answer text as it
	// arrives. The returned Response holds the accumulated answer.
	Stream(ctx context.Context, req prompt.Request, onDelta func(string)) (*Response, error)

	// Provider names the backend ("ollama", "gemini").
	Provider() string

	// Model is the model requests are sent to.
	Model() string
}

// Response is a finished completion.
type Response struct {
	Content  string `json:"content"`
	Thinking string `json:"thinking,omitempty"`
	Model    string `json:"model"`

	PromptTokens     int           `json:"prompt_tokens"`
	CompletionTokens int           `json:"completion_tokens"`
	Duration         time.Duration `json:"duration"`
}

// Message returns the answer as an assistant chat message.
func (r *Response) Message() model.ChatMessage {
	return model.NewAssistantMessage(r.Content)
}

// TokensPerSecond returns the generation speed, or 0 when unknown.
func (r *Response) TokensPerSecond() float64 {
	if r.Duration <= 0 || r.CompletionTokens == 0 {
		return 0
	}
	return float64(r.CompletionTokens) / r.Duration.Seconds()
}

// Stats formats token counts and timing for a status line.
func (r *Response) Stats() string {
	s := fmt.Sprintf("%d+%d token, %.1fs", r.PromptTokens, r.CompletionTokens, r.Duration.Seconds())
	if tps := r.TokensPerSecond(); tps > 0 {
		s += fmt.Sprintf(", %.1f tok/s", tps)
	}
	return s
}

// Check returns ErrEmptyResponse when r carries no answer text.
func Check(r *Response) (*Response, error) {
	if r == nil || strings.TrimSpace(r.Content) == "" {
		return r, ErrEmptyResponse
	}
	return r, nil
}
