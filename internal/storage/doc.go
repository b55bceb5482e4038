// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists drafting sessions.
//
// # Key Types
//
//   - HistoryStore: List, Load, Save and Delete sessions by ID
//   - FileStore: one JSON file per session, written atomically
//   - SQLiteStore: all sessions in one SQLite database (WAL mode)
//   - SessionError: comparable error; check ErrNotFound with errors.Is
//
// # Usage
//
//	store, err := storage.Open("sqlite", "~/.dilekce", 100)
//	saved, err := store.Save(ctx, state)
//	recent, err := store.List(ctx, 20, 0)
//	state, err := store.Load(ctx, recent[0].ID)
//	if errors.Is(err, storage.ErrNotFound) {
//	    // start fresh
//	}
//
// # Storage Location
//
// Sessions live under ~/.dilekce/sessions/ (file backend) or in
// ~/.dilekce/history.db (sqlite backend).
package storage
