// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists drafting sessions.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/dilekce/dilekce-tui/internal/autocomplete"
	"github.com/dilekce/dilekce-tui/internal/mode"
	"github.com/dilekce/dilekce-tui/internal/model"
)

// sqliteSchema is applied on open. Times are Unix nanoseconds; messages are
// stored as a JSON array.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS sessions (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL DEFAULT '',
    mode TEXT NOT NULL,
    model TEXT NOT NULL DEFAULT '',
    context_window INTEGER NOT NULL DEFAULT 0,
    message_count INTEGER NOT NULL DEFAULT 0,
    preview TEXT NOT NULL DEFAULT '',
    messages TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sessions_updated_at ON sessions(updated_at DESC);
`

// =============================================================================
// SQLITE STORE
// =============================================================================

// SQLiteStore keeps sessions in a single SQLite database.
type SQLiteStore struct {
	db *sql.DB

	// MaxSessions limits stored sessions (0 = unlimited).
	MaxSessions int
}

// NewSQLiteStore opens or creates the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: db, MaxSessions: DefaultMaxSessions}, nil
}

// Save upserts the session and prunes old sessions.
func (s *SQLiteStore) Save(ctx context.Context, state *model.SessionState) (*model.SessionState, error) {
	out, err := prepare(state)
	if err != nil {
		return nil, err
	}
	messages, err := json.Marshal(out.Messages)
	if err != nil {
		return nil, fmt.Errorf("failed to encode messages: %w", err)
	}
	sum := out.Summarize()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sessions (id, title, mode, model, context_window, message_count, preview, messages, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			mode = excluded.mode,
			model = excluded.model,
			context_window = excluded.context_window,
			message_count = excluded.message_count,
			preview = excluded.preview,
			messages = excluded.messages,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at`,
		out.ID, out.Title, string(out.Mode), out.Model, out.ContextWindow,
		len(out.Messages), sum.Preview, string(messages),
		out.CreatedAt.UnixNano(), out.UpdatedAt.UnixNano(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save session %s: %w", out.ID, err)
	}

	if s.MaxSessions > 0 {
		_, err = tx.ExecContext(ctx, `
			DELETE FROM sessions WHERE id NOT IN (
				SELECT id FROM sessions ORDER BY updated_at DESC LIMIT ?
			)`, s.MaxSessions)
		if err != nil {
			return nil, fmt.Errorf("failed to prune sessions: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit session %s: %w", out.ID, err)
	}
	return out, nil
}

// Load reads a session by ID.
func (s *SQLiteStore) Load(ctx context.Context, id string) (*model.SessionState, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	var (
		state              model.SessionState
		modeName, messages string
		created, updated   int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, mode, model, context_window, messages, created_at, updated_at
		FROM sessions WHERE id = ?`, id,
	).Scan(&state.ID, &state.Title, &modeName, &state.Model, &state.ContextWindow, &messages, &created, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound(id)
		}
		return nil, fmt.Errorf("failed to load session %s: %w", id, err)
	}

	if err := json.Unmarshal([]byte(messages), &state.Messages); err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", id, err)
	}
	state.Mode = mode.Mode(modeName)
	state.CreatedAt = time.Unix(0, created)
	state.UpdatedAt = time.Unix(0, updated)
	state.Refresh()
	return &state, nil
}

// List returns session summaries, most recently updated first.
func (s *SQLiteStore) List(ctx context.Context, limit, offset int) ([]Summary, error) {
	if limit <= 0 {
		limit = -1 // no limit in SQLite
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, mode, message_count, preview, created_at, updated_at
		FROM sessions ORDER BY updated_at DESC, id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	summaries := []Summary{}
	for rows.Next() {
		var (
			sum              Summary
			modeName         string
			created, updated int64
		)
		if err := rows.Scan(&sum.ID, &sum.Title, &modeName, &sum.MessageCount, &sum.Preview, &created, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		if sum.Title == "" {
			sum.Title = model.UntitledTitle
		}
		sum.Mode = mode.Mode(modeName)
		sum.CreatedAt = time.Unix(0, created)
		sum.UpdatedAt = time.Unix(0, updated)
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

// Delete removes a session by ID.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return notFound(id)
	}
	return nil
}

// Search returns sessions whose title or any message contains query, using
// Turkish case folding.
func (s *SQLiteStore) Search(ctx context.Context, query string) ([]Summary, error) {
	needle := autocomplete.Fold(strings.TrimSpace(query))
	all, err := s.List(ctx, 0, 0)
	if err != nil || needle == "" {
		return all, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id, title, messages FROM sessions`)
	if err != nil {
		return nil, fmt.Errorf("failed to search sessions: %w", err)
	}
	defer rows.Close()

	hits := make(map[string]bool)
	for rows.Next() {
		var id, title, messages string
		if err := rows.Scan(&id, &title, &messages); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		if strings.Contains(autocomplete.Fold(title), needle) {
			hits[id] = true
			continue
		}
		var msgs []model.ChatMessage
		if json.Unmarshal([]byte(messages), &msgs) != nil {
			continue
		}
		for _, m := range msgs {
			if strings.Contains(autocomplete.Fold(m.Content), needle) {
				hits[id] = true
				break
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	results := make([]Summary, 0, len(hits))
	for _, sum := range all {
		if hits[sum.ID] {
			results = append(results, sum)
		}
	}
	return results, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
