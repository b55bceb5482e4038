// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for sessions and chat messages.
package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/dilekce/dilekce-tui/internal/mode"
)

const (
	// MaxMessages is the maximum number of messages kept in a session.
	// Older non-system messages are pruned beyond it.
	MaxMessages = 1000

	// TitleLength is the maximum title length in runes.
	TitleLength = 50

	// UntitledTitle is shown for sessions without a user message.
	UntitledTitle = "Yeni oturum"

	// DefaultContextWindow is used when the model's window is unknown.
	DefaultContextWindow = 32768

	// messageOverhead approximates per-message framing tokens.
	messageOverhead = 4
)

// =============================================================================
// SESSION STATE TYPE
// =============================================================================

// SessionState is one drafting session: the selected mode and the
// conversation so far. Treat values as immutable; the session package
// produces new states through its reducers.
type SessionState struct {
	// Identity
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Mode is the active writing mode.
	Mode mode.Mode `json:"mode"`

	// Messages is the history in conversation order.
	Messages []ChatMessage `json:"messages"`

	// Model is the LLM model name used for the session, if known.
	Model string `json:"model,omitempty"`

	// Context tracking
	TokensUsed     int     `json:"tokens_used"`
	ContextWindow  int     `json:"context_window"`
	ContextPercent float64 `json:"-"`
}

// NewSessionState returns an empty session in the default mode.
func NewSessionState() *SessionState {
	now := time.Now()
	return &SessionState{
		ID:            NewSessionID(),
		CreatedAt:     now,
		UpdatedAt:     now,
		Mode:          mode.Default,
		Messages:      []ChatMessage{},
		ContextWindow: DefaultContextWindow,
	}
}

// NewSessionID generates a session identifier.
func NewSessionID() string {
	return uuid.NewString()
}

// Clone returns a deep copy of s.
func (s *SessionState) Clone() *SessionState {
	if s == nil {
		return nil
	}
	clone := *s
	clone.Messages = CloneMessages(s.Messages)
	return &clone
}

// =============================================================================
// DERIVED FIELDS
// =============================================================================

// Refresh recomputes the title, token estimate and context percentage, and
// prunes the history to MaxMessages. An explicit title is kept.
func (s *SessionState) Refresh() {
	s.pruneOldMessages()
	if s.Title == "" {
		s.Title = deriveTitle(s.Messages)
	}
	s.TokensUsed = EstimateTokens(s.Messages)
	if s.ContextWindow > 0 {
		s.ContextPercent = float64(s.TokensUsed) / float64(s.ContextWindow) * 100
	} else {
		s.ContextPercent = 0
	}
}

// DisplayTitle returns the title or a placeholder for untitled sessions.
func (s *SessionState) DisplayTitle() string {
	if s.Title != "" {
		return s.Title
	}
	return UntitledTitle
}

// IsEmpty reports whether the session has no messages.
func (s *SessionState) IsEmpty() bool {
	return len(s.Messages) == 0
}

// IsContextNearLimit reports whether context usage is at or above 75%.
func (s *SessionState) IsContextNearLimit() bool {
	return s.ContextPercent >= 75
}

// IsContextCritical reports whether context usage is at or above 90%.
func (s *SessionState) IsContextCritical() bool {
	return s.ContextPercent >= 90
}

// LastMessage returns the most recent message with the given role.
func (s *SessionState) LastMessage(role Role) (ChatMessage, bool) {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == role {
			return s.Messages[i], true
		}
	}
	return ChatMessage{}, false
}

// EstimateTokens estimates the token count of msgs including framing.
func EstimateTokens(msgs []ChatMessage) int {
	total := 0
	for _, m := range msgs {
		total += m.EstimateTokens() + messageOverhead
	}
	return total
}

func deriveTitle(msgs []ChatMessage) string {
	for _, m := range msgs {
		if m.Role == RoleUser && !m.IsEmpty() {
			return m.Preview(TitleLength)
		}
	}
	return ""
}

// pruneOldMessages drops the oldest messages beyond MaxMessages. The order
// of the rest is unchanged.
func (s *SessionState) pruneOldMessages() {
	if len(s.Messages) <= MaxMessages {
		return
	}
	s.Messages = append([]ChatMessage(nil), s.Messages[len(s.Messages)-MaxMessages:]...)
}

// =============================================================================
// SUMMARY TYPE
// =============================================================================

// Summary is the lightweight listing form of a session.
type Summary struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Mode         mode.Mode `json:"mode"`
	MessageCount int       `json:"message_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Preview      string    `json:"preview"`
}

// Summarize returns the listing form of s.
func (s *SessionState) Summarize() Summary {
	preview := ""
	if m, ok := s.LastMessage(RoleUser); ok {
		preview = m.Preview(80)
	}
	return Summary{
		ID:           s.ID,
		Title:        s.DisplayTitle(),
		Mode:         s.Mode,
		MessageCount: len(s.Messages),
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
		Preview:      preview,
	}
}
