// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists drafting sessions.
package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dilekce/dilekce-tui/internal/model"
)

// =============================================================================
// HISTORY STORE INTERFACE
// =============================================================================

// Summary is the listing form of a stored session.
type Summary = model.Summary

// HistoryStore persists sessions by ID.
type HistoryStore interface {
	// List returns summaries ordered by UpdatedAt, newest first. A limit of
	// zero or less means no limit.
	List(ctx context.Context, limit, offset int) ([]Summary, error)

	// Load returns the session with id, or ErrNotFound.
	Load(ctx context.Context, id string) (*model.SessionState, error)

	// Save writes s, replacing any session with the same ID, and returns the
	// stored form. An empty ID is assigned; timestamps are filled in.
	Save(ctx context.Context, s *model.SessionState) (*model.SessionState, error)

	// Delete removes the session with id, or returns ErrNotFound.
	Delete(ctx context.Context, id string) error

	// Close releases resources held by the store.
	Close() error
}

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Open returns the store for backend rooted at dir. The file backend keeps
// one JSON file per session under dir/sessions; the sqlite backend uses
// dir/history.db.
func Open(backend, dir string, maxSessions int) (HistoryStore, error) {
	switch strings.ToLower(backend) {
	case "", BackendFile:
		s, err := NewFileStore(filepath.Join(dir, "sessions"))
		if err != nil {
			return nil, err
		}
		s.MaxSessions = maxSessions
		return s, nil
	case BackendSQLite:
		s, err := NewSQLiteStore(filepath.Join(dir, "history.db"))
		if err != nil {
			return nil, err
		}
		s.MaxSessions = maxSessions
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrNotFound is returned when a session doesn't exist.
// Use errors.Is(err, ErrNotFound) to check for this error.
var ErrNotFound = &SessionError{Message: "session not found"}

// ErrInvalidID is returned for IDs that cannot name a stored session.
var ErrInvalidID = &SessionError{Message: "invalid session id"}

// SessionError is a storage error comparable with errors.Is.
type SessionError struct {
	Message string
	ID      string
}

// Error implements the error interface.
func (e *SessionError) Error() string {
	if e.ID != "" {
		return e.Message + ": " + e.ID
	}
	return e.Message
}

// Is matches errors with the same message regardless of ID.
func (e *SessionError) Is(target error) bool {
	t, ok := target.(*SessionError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}

func notFound(id string) error {
	return &SessionError{Message: ErrNotFound.Message, ID: id}
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

// validateID rejects IDs that are empty or could escape the store directory.
func validateID(id string) error {
	if id == "" || len(id) > 128 || strings.ContainsAny(id, `/\:`) || strings.Contains(id, "..") {
		return &SessionError{Message: ErrInvalidID.Message, ID: id}
	}
	return nil
}

// prepare returns the copy of s that gets stored: ID assigned, timestamps
// set and derived fields refreshed.
func prepare(s *model.SessionState) (*model.SessionState, error) {
	if s == nil {
		return nil, fmt.Errorf("cannot save nil session")
	}
	out := s.Clone()
	if out.ID == "" {
		out.ID = model.NewSessionID()
	}
	if err := validateID(out.ID); err != nil {
		return nil, err
	}
	if out.Messages == nil {
		out.Messages = []model.ChatMessage{}
	}
	now := time.Now()
	if out.CreatedAt.IsZero() {
		out.CreatedAt = now
	}
	if out.UpdatedAt.IsZero() {
		out.UpdatedAt = now
	}
	out.Refresh()
	return out, nil
}

// page applies limit and offset to summaries.
func page(summaries []Summary, limit, offset int) []Summary {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(summaries) {
		return []Summary{}
	}
	summaries = summaries[offset:]
	if limit > 0 && limit < len(summaries) {
		summaries = summaries[:limit]
	}
	return summaries
}
