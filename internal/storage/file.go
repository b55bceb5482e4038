// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists drafting sessions.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/dilekce/dilekce-tui/internal/autocomplete"
	"github.com/dilekce/dilekce-tui/internal/model"
	"github.com/dilekce/dilekce-tui/internal/util"
)

// DefaultMaxSessions is the number of sessions kept before the oldest are
// pruned.
const DefaultMaxSessions = 100

// =============================================================================
// FILE STORE
// =============================================================================

// FileStore keeps one JSON file per session in a directory.
type FileStore struct {
	// BaseDir is the directory holding <id>.json files.
	BaseDir string

	// MaxSessions limits stored sessions (0 = unlimited).
	MaxSessions int

	mu sync.Mutex
}

// NewFileStore creates the directory if needed and returns a store for it.
func NewFileStore(baseDir string) (*FileStore, error) {
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}
	return &FileStore{
		BaseDir:     baseDir,
		MaxSessions: DefaultMaxSessions,
	}, nil
}

// Save writes the session atomically and prunes old sessions.
func (s *FileStore) Save(ctx context.Context, state *model.SessionState) (*model.SessionState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out, err := prepare(state)
	if err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := util.AtomicWriteFile(s.filePath(out.ID), data, 0600); err != nil {
		return nil, fmt.Errorf("failed to write session %s: %w", out.ID, err)
	}
	if s.MaxSessions > 0 {
		s.enforceLimit(ctx)
	}
	return out, nil
}

// Load reads a session by ID.
func (s *FileStore) Load(ctx context.Context, id string) (*model.SessionState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateID(id); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.filePath(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, notFound(id)
		}
		return nil, fmt.Errorf("failed to read session %s: %w", id, err)
	}

	var state model.SessionState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", id, err)
	}
	state.Refresh()
	return &state, nil
}

// List returns session summaries, most recently updated first. Unreadable
// files are skipped.
func (s *FileStore) List(ctx context.Context, limit, offset int) ([]Summary, error) {
	all, err := s.listAll(ctx)
	if err != nil {
		return nil, err
	}
	return page(all, limit, offset), nil
}

// Delete removes a session by ID.
func (s *FileStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateID(id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.filePath(id)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return notFound(id)
		}
		return fmt.Errorf("failed to delete session %s: %w", id, err)
	}
	return nil
}

// Close implements HistoryStore. FileStore holds no resources.
func (s *FileStore) Close() error {
	return nil
}

// Clear removes all stored sessions.
func (s *FileStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.BaseDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".json") {
			os.Remove(filepath.Join(s.BaseDir, entry.Name()))
		}
	}
	return nil
}

// =============================================================================
// SEARCH
// =============================================================================

// Search returns sessions whose title or any message contains query. The
// comparison uses Turkish case folding.
func (s *FileStore) Search(ctx context.Context, query string) ([]Summary, error) {
	all, err := s.listAll(ctx)
	if err != nil {
		return nil, err
	}
	needle := autocomplete.Fold(strings.TrimSpace(query))
	if needle == "" {
		return all, nil
	}

	var results []Summary
	for _, sum := range all {
		if strings.Contains(autocomplete.Fold(sum.Title), needle) {
			results = append(results, sum)
			continue
		}
		state, err := s.Load(ctx, sum.ID)
		if err != nil {
			continue
		}
		for _, msg := range state.Messages {
			if strings.Contains(autocomplete.Fold(msg.Content), needle) {
				results = append(results, sum)
				break
			}
		}
	}
	return results, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func (s *FileStore) listAll(ctx context.Context) ([]Summary, error) {
	entries, err := os.ReadDir(s.BaseDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Summary{}, nil
		}
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	summaries := make([]Summary, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		state, err := s.Load(ctx, strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			continue
		}
		summaries = append(summaries, state.Summarize())
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
	})
	return summaries, nil
}

// enforceLimit removes the oldest sessions beyond MaxSessions. Caller holds mu.
func (s *FileStore) enforceLimit(ctx context.Context) {
	all, err := s.listAll(ctx)
	if err != nil || len(all) <= s.MaxSessions {
		return
	}
	for _, sum := range all[s.MaxSessions:] {
		os.Remove(s.filePath(sum.ID))
	}
}

func (s *FileStore) filePath(id string) string {
	return filepath.Join(s.BaseDir, id+".json")
}
