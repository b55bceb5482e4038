// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the interactive drafting view of the TUI.
package chat

import (
	"time"

	"github.com/dilekce/dilekce-tui/internal/llm"
	"github.com/dilekce/dilekce-tui/internal/model"
)

// =============================================================================
// STREAMING MESSAGES
// =============================================================================

// StreamTickMsg is sent at the render frame rate while a stream runs.
type StreamTickMsg struct {
	Time time.Time
}

// StreamDoneMsg ends the stream with the given ID.
type StreamDoneMsg struct {
	ID       int
	Response *llm.Response
	Err      error
}

// =============================================================================
// PERSISTENCE MESSAGES
// =============================================================================

// SessionSavedMsg reports an explicit save.
type SessionSavedMsg struct {
	Session *model.SessionState
	Err     error
}

// SessionLoadedMsg carries a session loaded by /load.
type SessionLoadedMsg struct {
	Session *model.SessionState
	Err     error
}

// SaveErrorMsg reports a background save failure.
type SaveErrorMsg struct {
	Err error
}
