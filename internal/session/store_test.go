// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/dilekce/dilekce-tui/internal/mode"
	"github.com/dilekce/dilekce-tui/internal/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestNewStore(t *testing.T) {
	s := NewStore(nil)
	assert.Equal(t, mode.Sor, s.Mode())
	assert.Empty(t, s.State().Messages)

	initial := model.NewSessionState()
	initial.Mode = mode.Yazdir
	s = NewStore(initial)
	initial.Mode = mode.Ozetle
	assert.Equal(t, mode.Yazdir, s.Mode(), "store must copy the initial state")
}

func TestStore_StateIsCopy(t *testing.T) {
	s := NewStore(nil)
	s.Append(model.NewUserMessage("a"))

	st := s.State()
	st.Messages[0].Content = "changed"
	assert.Equal(t, "a", s.State().Messages[0].Content)
}

func TestStore_Transitions(t *testing.T) {
	s := NewStore(nil)

	assert.Equal(t, mode.Ozetle, s.CycleMode().Mode)
	assert.Equal(t, mode.Yazdir, s.SetMode(mode.Yazdir).Mode)

	st := s.Append(model.NewUserMessage("soru"))
	require.Len(t, st.Messages, 1)

	id := st.ID
	st = s.Reset()
	assert.NotEqual(t, id, st.ID)
	assert.Equal(t, mode.Yazdir, st.Mode)
	assert.Empty(t, st.Messages)

	loaded := &model.SessionState{ID: id, Mode: mode.Sor, Messages: []model.ChatMessage{model.NewUserMessage("x")}}
	st = s.Restore(loaded)
	assert.Equal(t, id, st.ID)
	assert.Equal(t, "x", st.Title)
}

func TestStore_NilReducerResultStartsFresh(t *testing.T) {
	s := NewStore(nil)
	st := s.Dispatch(func(*model.SessionState) *model.SessionState { return nil })
	require.NotNil(t, st)
	assert.Equal(t, mode.Sor, st.Mode)
}

func TestStore_ListenersInOrder(t *testing.T) {
	s := NewStore(nil)

	var calls []string
	s.Subscribe(func(st *model.SessionState) { calls = append(calls, "a:"+string(st.Mode)) })
	unsubscribe := s.Subscribe(func(st *model.SessionState) { calls = append(calls, "b:"+string(st.Mode)) })

	s.CycleMode()
	unsubscribe()
	s.CycleMode()

	assert.Equal(t, []string{"a:ozetle", "b:ozetle", "a:yazdir"}, calls)
}

func TestStore_ListenerCanReadState(t *testing.T) {
	s := NewStore(nil)
	var seen mode.Mode
	s.Subscribe(func(*model.SessionState) { seen = s.Mode() })

	s.SetMode(mode.Ozetle)
	assert.Equal(t, mode.Ozetle, seen)
}

func TestStore_ConcurrentDispatchKeepsEveryMessage(t *testing.T) {
	s := NewStore(nil)

	var (
		mu       sync.Mutex
		lengths  []int
		wg       sync.WaitGroup
		workers  = 8
		perCount = 25
	)
	s.Subscribe(func(st *model.SessionState) {
		mu.Lock()
		lengths = append(lengths, len(st.Messages))
		mu.Unlock()
	})

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perCount; i++ {
				s.Append(model.NewUserMessage("m"))
			}
		}()
	}
	wg.Wait()

	assert.Len(t, s.State().Messages, workers*perCount)
	require.Len(t, lengths, workers*perCount)
	for i, n := range lengths {
		assert.Equal(t, i+1, n, "listener %d saw out-of-order state", i)
	}
}
