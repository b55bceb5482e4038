// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session holds the drafting session state and its persistence loop.
package session

import (
	"sync"

	"github.com/dilekce/dilekce-tui/internal/mode"
	"github.com/dilekce/dilekce-tui/internal/model"
)

// =============================================================================
// STORE
// =============================================================================

// Reducer computes the next state from the current one.
type Reducer func(*model.SessionState) *model.SessionState

// Listener is notified with the new state after every transition.
type Listener func(*model.SessionState)

// Store holds the current session state and applies reducers one at a time.
// Listeners run synchronously on the dispatching goroutine, in dispatch
// order. A listener may read State but must not Dispatch.
type Store struct {
	// dispatchMu serializes whole transitions including notification.
	dispatchMu sync.Mutex

	mu        sync.RWMutex
	state     *model.SessionState
	listeners map[int]Listener
	nextID    int
}

// NewStore creates a store holding initial, or a fresh session when nil.
func NewStore(initial *model.SessionState) *Store {
	if initial == nil {
		initial = model.NewSessionState()
	}
	return &Store{
		state:     initial.Clone(),
		listeners: make(map[int]Listener),
	}
}

// State returns a copy of the current state.
func (s *Store) State() *model.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Mode returns the active mode.
func (s *Store) Mode() mode.Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Mode
}

// Dispatch applies r to the current state, stores the result and notifies
// listeners. It returns a copy of the new state.
func (s *Store) Dispatch(r Reducer) *model.SessionState {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	s.mu.Lock()
	next := r(s.state.Clone())
	if next == nil {
		next = model.NewSessionState()
	}
	s.state = next
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	for _, l := range listeners {
		l(next.Clone())
	}
	return next.Clone()
}

// Subscribe registers l and returns a function that removes it.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = l

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// snapshotListeners returns listeners in registration order. Caller holds mu.
func (s *Store) snapshotListeners() []Listener {
	out := make([]Listener, 0, len(s.listeners))
	for id := 0; id < s.nextID; id++ {
		if l, ok := s.listeners[id]; ok {
			out = append(out, l)
		}
	}
	return out
}

// =============================================================================
// CONVENIENCE TRANSITIONS
// =============================================================================

// SetMode selects m.
func (s *Store) SetMode(m mode.Mode) *model.SessionState {
	return s.Dispatch(func(st *model.SessionState) *model.SessionState {
		return ApplyModeChange(st, m)
	})
}

// CycleMode advances to the next mode.
func (s *Store) CycleMode() *model.SessionState {
	return s.Dispatch(CycleMode)
}

// Append adds a message to the history.
func (s *Store) Append(msg model.ChatMessage) *model.SessionState {
	return s.Dispatch(func(st *model.SessionState) *model.SessionState {
		return AppendMessage(st, msg)
	})
}

// Restore replaces the state with a loaded session.
func (s *Store) Restore(loaded *model.SessionState) *model.SessionState {
	return s.Dispatch(func(*model.SessionState) *model.SessionState {
		return Restore(loaded)
	})
}

// Reset starts a new session keeping the selected mode.
func (s *Store) Reset() *model.SessionState {
	return s.Dispatch(Reset)
}
