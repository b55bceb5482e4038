// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session holds the drafting session state and its persistence loop.
package session

import (
	"time"

	"github.com/dilekce/dilekce-tui/internal/mode"
	"github.com/dilekce/dilekce-tui/internal/model"
)

// =============================================================================
// REDUCERS
// =============================================================================

// Each reducer takes the current state and returns a new one. The input is
// never modified. A nil input is treated as a fresh session.

// ApplyModeChange selects mode m. Unknown modes select mode.Default.
func ApplyModeChange(s *model.SessionState, m mode.Mode) *model.SessionState {
	next := cloneOrNew(s)
	if !m.Valid() {
		m = mode.Default
	}
	if next.Mode == m {
		return next
	}
	next.Mode = m
	next.UpdatedAt = time.Now()
	return next
}

// CycleMode advances to the next mode in the cycle.
func CycleMode(s *model.SessionState) *model.SessionState {
	current := mode.Default
	if s != nil {
		current = s.Mode
	}
	return ApplyModeChange(s, mode.Next(current))
}

// AppendMessage adds msg to the history. Empty messages and roles other
// than user and assistant are ignored.
func AppendMessage(s *model.SessionState, msg model.ChatMessage) *model.SessionState {
	next := cloneOrNew(s)
	if msg.IsEmpty() || !msg.Role.InHistory() {
		return next
	}
	next.Messages = append(next.Messages, msg)
	next.UpdatedAt = time.Now()
	next.Refresh()
	return next
}

// Restore adopts a loaded session. An unknown stored mode falls back to
// mode.Default, stored system messages are dropped and derived fields are
// recomputed.
func Restore(loaded *model.SessionState) *model.SessionState {
	next := cloneOrNew(loaded)
	if !next.Mode.Valid() {
		next.Mode = mode.Default
	}
	next.Messages = model.HistoryMessages(next.Messages)
	if next.ContextWindow <= 0 {
		next.ContextWindow = model.DefaultContextWindow
	}
	next.Refresh()
	return next
}

// Reset starts a new empty session. The selected mode and model settings
// carry over.
func Reset(s *model.SessionState) *model.SessionState {
	next := model.NewSessionState()
	if s != nil {
		if s.Mode.Valid() {
			next.Mode = s.Mode
		}
		next.Model = s.Model
		if s.ContextWindow > 0 {
			next.ContextWindow = s.ContextWindow
		}
	}
	return next
}

func cloneOrNew(s *model.SessionState) *model.SessionState {
	if s == nil {
		return model.NewSessionState()
	}
	return s.Clone()
}
