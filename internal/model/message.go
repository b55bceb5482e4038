// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for sessions and chat messages.
package model

import (
	"strings"

	"github.com/dilekce/dilekce-tui/internal/util"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// Valid reports whether r is one of the three chat roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// InHistory reports whether messages of role r belong in a session
// history. System messages are produced per request from the mode and are
// never stored.
func (r Role) InHistory() bool {
	return r == RoleUser || r == RoleAssistant
}

// DisplayName returns the Turkish display name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "Siz"
	case RoleAssistant:
		return "Asistan"
	case RoleSystem:
		return "Sistem"
	default:
		return string(r)
	}
}

// =============================================================================
// CHAT MESSAGE TYPE
// =============================================================================

// ChatMessage is one entry of a conversation as sent to the model.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// NewSystemMessage creates a system message.
func NewSystemMessage(content string) ChatMessage {
	return ChatMessage{Role: RoleSystem, Content: content}
}

// NewUserMessage creates a user message.
func NewUserMessage(content string) ChatMessage {
	return ChatMessage{Role: RoleUser, Content: content}
}

// NewAssistantMessage creates an assistant message.
func NewAssistantMessage(content string) ChatMessage {
	return ChatMessage{Role: RoleAssistant, Content: content}
}

// Preview returns the content on one line, cut to maxLen runes with "..."
// when longer.
func (m ChatMessage) Preview(maxLen int) string {
	return util.TruncateRunes(util.OneLine(m.Content), maxLen)
}

// IsEmpty reports whether the message has only whitespace.
func (m ChatMessage) IsEmpty() bool {
	return strings.TrimSpace(m.Content) == ""
}

// EstimateTokens gives a rough token count at ~4 bytes per token.
func (m ChatMessage) EstimateTokens() int {
	return (len(m.Content) + 3) / 4
}

// HistoryMessages returns the user and assistant messages of msgs in order,
// as a new slice.
func HistoryMessages(msgs []ChatMessage) []ChatMessage {
	out := make([]ChatMessage, 0, len(msgs))
	for _, m := range msgs {
		if m.Role.InHistory() {
			out = append(out, m)
		}
	}
	return out
}

// CloneMessages returns a copy of msgs. A nil input yields an empty slice.
func CloneMessages(msgs []ChatMessage) []ChatMessage {
	out := make([]ChatMessage, len(msgs))
	copy(out, msgs)
	return out
}
