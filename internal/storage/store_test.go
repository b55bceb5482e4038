// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dilekce/dilekce-tui/internal/mode"
	"github.com/dilekce/dilekce-tui/internal/model"
)

// backends runs fn against every HistoryStore implementation.
func backends(t *testing.T, fn func(t *testing.T, store HistoryStore)) {
	t.Helper()

	t.Run("file", func(t *testing.T) {
		store, err := NewFileStore(filepath.Join(t.TempDir(), "sessions"))
		require.NoError(t, err)
		defer store.Close()
		fn(t, store)
	})

	t.Run("sqlite", func(t *testing.T) {
		store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "history.db"))
		require.NoError(t, err)
		defer store.Close()
		fn(t, store)
	})
}

func sessionAt(title string, updated time.Time) *model.SessionState {
	s := model.NewSessionState()
	s.Messages = []model.ChatMessage{
		model.NewUserMessage(title),
		model.NewAssistantMessage("yanıt: " + title),
	}
	s.CreatedAt = updated.Add(-time.Minute)
	s.UpdatedAt = updated
	return s
}

// =============================================================================
// HISTORY STORE CONTRACT
// =============================================================================

func TestHistoryStore_SaveAndLoad(t *testing.T) {
	backends(t, func(t *testing.T, store HistoryStore) {
		ctx := context.Background()
		s := sessionAt("Kira tespit davası", time.Now())
		s.Mode = mode.Yazdir
		s.Model = "qwen3"

		saved, err := store.Save(ctx, s)
		require.NoError(t, err)
		assert.Equal(t, s.ID, saved.ID)
		assert.Equal(t, "Kira tespit davası", saved.Title)

		loaded, err := store.Load(ctx, s.ID)
		require.NoError(t, err)
		assert.Equal(t, s.ID, loaded.ID)
		assert.Equal(t, mode.Yazdir, loaded.Mode)
		assert.Equal(t, "qwen3", loaded.Model)
		assert.Equal(t, s.Messages, loaded.Messages)
		assert.True(t, s.UpdatedAt.Equal(loaded.UpdatedAt), "UpdatedAt %v != %v", s.UpdatedAt, loaded.UpdatedAt)
		assert.True(t, s.CreatedAt.Equal(loaded.CreatedAt))
		assert.Positive(t, loaded.TokensUsed)
	})
}

func TestHistoryStore_SaveAssignsIDAndTimestamps(t *testing.T) {
	backends(t, func(t *testing.T, store HistoryStore) {
		s := &model.SessionState{Mode: mode.Sor}

		saved, err := store.Save(context.Background(), s)
		require.NoError(t, err)
		assert.NotEmpty(t, saved.ID)
		assert.False(t, saved.CreatedAt.IsZero())
		assert.False(t, saved.UpdatedAt.IsZero())
		assert.Empty(t, s.ID, "input must not change")

		loaded, err := store.Load(context.Background(), saved.ID)
		require.NoError(t, err)
		assert.NotNil(t, loaded.Messages)
	})
}

func TestHistoryStore_SaveIsIdempotentPerID(t *testing.T) {
	backends(t, func(t *testing.T, store HistoryStore) {
		ctx := context.Background()
		s := sessionAt("ilk", time.Now())

		_, err := store.Save(ctx, s)
		require.NoError(t, err)
		_, err = store.Save(ctx, s)
		require.NoError(t, err)

		s.Messages = append(s.Messages, model.NewUserMessage("ikinci"))
		s.UpdatedAt = s.UpdatedAt.Add(time.Second)
		_, err = store.Save(ctx, s)
		require.NoError(t, err)

		list, err := store.List(ctx, 0, 0)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, 3, list[0].MessageCount)
		assert.Equal(t, "ikinci", list[0].Preview)
	})
}

func TestHistoryStore_LoadNotFound(t *testing.T) {
	backends(t, func(t *testing.T, store HistoryStore) {
		_, err := store.Load(context.Background(), "yok")
		assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)

		err = store.Delete(context.Background(), "yok")
		assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)
	})
}

func TestHistoryStore_RejectsInvalidIDs(t *testing.T) {
	backends(t, func(t *testing.T, store HistoryStore) {
		for _, id := range []string{"../escape", `a\b`, "a/b", "c:d"} {
			_, err := store.Load(context.Background(), id)
			assert.ErrorIs(t, err, ErrInvalidID, "id %q", id)

			s := model.NewSessionState()
			s.ID = id
			_, err = store.Save(context.Background(), s)
			assert.ErrorIs(t, err, ErrInvalidID, "id %q", id)
		}
	})
}

func TestHistoryStore_ListOrderingAndPaging(t *testing.T) {
	backends(t, func(t *testing.T, store HistoryStore) {
		ctx := context.Background()
		base := time.Now().Add(-time.Hour)
		var ids []string
		for i := 0; i < 5; i++ {
			s := sessionAt(fmt.Sprintf("oturum %d", i), base.Add(time.Duration(i)*time.Minute))
			_, err := store.Save(ctx, s)
			require.NoError(t, err)
			ids = append(ids, s.ID)
		}

		all, err := store.List(ctx, 0, 0)
		require.NoError(t, err)
		require.Len(t, all, 5)
		for i, sum := range all {
			assert.Equal(t, ids[4-i], sum.ID, "position %d", i)
		}

		pageTwo, err := store.List(ctx, 2, 2)
		require.NoError(t, err)
		require.Len(t, pageTwo, 2)
		assert.Equal(t, ids[2], pageTwo[0].ID)
		assert.Equal(t, ids[1], pageTwo[1].ID)

		past, err := store.List(ctx, 10, 10)
		require.NoError(t, err)
		assert.Empty(t, past)
	})
}

func TestHistoryStore_Delete(t *testing.T) {
	backends(t, func(t *testing.T, store HistoryStore) {
		ctx := context.Background()
		s := sessionAt("silinecek", time.Now())
		_, err := store.Save(ctx, s)
		require.NoError(t, err)

		require.NoError(t, store.Delete(ctx, s.ID))
		_, err = store.Load(ctx, s.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestHistoryStore_Search(t *testing.T) {
	backends(t, func(t *testing.T, store HistoryStore) {
		ctx := context.Background()
		a := sessionAt("İŞ Mahkemesi başvurusu", time.Now())
		b := sessionAt("Kira artışı", time.Now().Add(time.Second))
		b.Messages = append(b.Messages, model.NewAssistantMessage("TBK m. 344 uyarınca ISLAH edilir"))
		for _, s := range []*model.SessionState{a, b} {
			_, err := store.Save(ctx, s)
			require.NoError(t, err)
		}

		searcher, ok := store.(Searcher)
		require.True(t, ok)

		results, err := searcher.Search(ctx, "iş mahkemesi")
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, a.ID, results[0].ID)

		results, err = searcher.Search(ctx, "ıslah")
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, b.ID, results[0].ID)

		results, err = searcher.Search(ctx, "")
		require.NoError(t, err)
		assert.Len(t, results, 2)
	})
}

func TestHistoryStore_EnforcesMaxSessions(t *testing.T) {
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	fileStore, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	fileStore.MaxSessions = 2

	sqliteStore, err := NewSQLiteStore(filepath.Join(t.TempDir(), "h.db"))
	require.NoError(t, err)
	defer sqliteStore.Close()
	sqliteStore.MaxSessions = 2

	for _, store := range []HistoryStore{fileStore, sqliteStore} {
		var newest string
		for i := 0; i < 4; i++ {
			s := sessionAt("s", base.Add(time.Duration(i)*time.Minute))
			_, err := store.Save(ctx, s)
			require.NoError(t, err)
			newest = s.ID
		}
		list, err := store.List(ctx, 0, 0)
		require.NoError(t, err)
		assert.Len(t, list, 2)
		assert.Equal(t, newest, list[0].ID)
	}
}

func TestHistoryStore_CancelledContext(t *testing.T) {
	backends(t, func(t *testing.T, store HistoryStore) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := store.Save(ctx, model.NewSessionState())
		assert.ErrorIs(t, err, context.Canceled)
	})
}

// =============================================================================
// FILE STORE SPECIFICS
// =============================================================================

func TestFileStore_SkipsCorruptFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "bozuk.json"), []byte("{"), 0600))
	_, err = store.Save(context.Background(), sessionAt("sağlam", time.Now()))
	require.NoError(t, err)

	list, err := store.List(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestFileStore_Clear(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	_, err = store.Save(context.Background(), sessionAt("a", time.Now()))
	require.NoError(t, err)

	require.NoError(t, store.Clear(context.Background()))
	list, err := store.List(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	fs, err := Open("file", dir, 10)
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, fs)
	assert.DirExists(t, filepath.Join(dir, "sessions"))

	ss, err := Open("SQLite", dir, 10)
	require.NoError(t, err)
	defer ss.Close()
	assert.IsType(t, &SQLiteStore{}, ss)
	assert.FileExists(t, filepath.Join(dir, "history.db"))

	_, err = Open("redis", dir, 10)
	assert.Error(t, err)
}

func TestSessionError(t *testing.T) {
	err := notFound("abc")
	assert.Equal(t, "session not found: abc", err.Error())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrInvalidID)
	assert.ErrorIs(t, fmt.Errorf("wrapped: %w", err), ErrNotFound)
}
