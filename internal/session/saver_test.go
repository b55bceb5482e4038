// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dilekce/dilekce-tui/internal/model"
)

// fakePersister records saved snapshots. When gate is set, each Save
// announces itself on started and waits for a value on gate.
type fakePersister struct {
	mu      sync.Mutex
	saved   []*model.SessionState
	err     error
	started chan struct{}
	gate    chan struct{}
}

func (f *fakePersister) Save(ctx context.Context, s *model.SessionState) (*model.SessionState, error) {
	if f.gate != nil {
		f.started <- struct{}{}
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.saved = append(f.saved, s)
	return s, nil
}

func (f *fakePersister) snapshots() []*model.SessionState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*model.SessionState(nil), f.saved...)
}

func stateWith(n int) *model.SessionState {
	s := model.NewSessionState()
	for i := 0; i < n; i++ {
		s = AppendMessage(s, model.NewUserMessage("m"))
	}
	return s
}

func TestSaver_WritesSubmittedState(t *testing.T) {
	p := &fakePersister{}
	saved := make(chan *model.SessionState, 1)
	s := NewSaver(p, SaverConfig{OnSaved: func(st *model.SessionState) { saved <- st }})
	defer s.Close()

	require.True(t, s.Submit(stateWith(1)))

	select {
	case st := <-saved:
		assert.Len(t, st.Messages, 1)
	case <-time.After(5 * time.Second):
		t.Fatal("snapshot was not saved")
	}
}

func TestSaver_CoalescesWhileBusy(t *testing.T) {
	p := &fakePersister{started: make(chan struct{}), gate: make(chan struct{})}
	s := NewSaver(p, SaverConfig{})

	s.Submit(stateWith(1))
	<-p.started

	for n := 2; n <= 5; n++ {
		s.Submit(stateWith(n))
	}
	p.gate <- struct{}{}

	<-p.started
	p.gate <- struct{}{}
	s.Close()

	got := p.snapshots()
	require.Len(t, got, 2)
	assert.Len(t, got[0].Messages, 1)
	assert.Len(t, got[1].Messages, 5)
}

func TestSaver_CloseDrainsPending(t *testing.T) {
	p := &fakePersister{}
	// A long interval keeps the second snapshot waiting on the limiter.
	s := NewSaver(p, SaverConfig{MinInterval: time.Hour})

	s.Submit(stateWith(1))
	require.Eventually(t, func() bool { return len(p.snapshots()) == 1 }, 5*time.Second, 10*time.Millisecond)

	s.Submit(stateWith(2))
	s.Close()

	got := p.snapshots()
	require.Len(t, got, 2)
	assert.Len(t, got[1].Messages, 2)
}

func TestSaver_SubmitAfterClose(t *testing.T) {
	p := &fakePersister{}
	s := NewSaver(p, SaverConfig{})
	s.Close()
	s.Close()

	assert.False(t, s.Submit(stateWith(1)))
	assert.Empty(t, p.snapshots())
	assert.True(t, s.Submit(nil))
}

func TestSaver_ReportsErrors(t *testing.T) {
	wantErr := errors.New("disk full")
	p := &fakePersister{err: wantErr}

	errs := make(chan error, 1)
	s := NewSaver(p, SaverConfig{OnError: func(err error) { errs <- err }})
	defer s.Close()

	s.Submit(stateWith(1))

	select {
	case err := <-errs:
		assert.ErrorIs(t, err, wantErr)
	case <-time.After(5 * time.Second):
		t.Fatal("error was not reported")
	}
}

func TestSaver_TimeoutBoundsSave(t *testing.T) {
	p := &fakePersister{started: make(chan struct{}, 1), gate: make(chan struct{})}

	errs := make(chan error, 1)
	s := NewSaver(p, SaverConfig{Timeout: 20 * time.Millisecond, OnError: func(err error) { errs <- err }})
	defer s.Close()

	s.Submit(stateWith(1))

	select {
	case err := <-errs:
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	case <-time.After(5 * time.Second):
		t.Fatal("save did not time out")
	}
}

func TestSaver_StoreListener(t *testing.T) {
	p := &fakePersister{}
	s := NewSaver(p, SaverConfig{})
	store := NewStore(nil)
	unsubscribe := store.Subscribe(s.Listener())

	store.Append(model.NewUserMessage("a"))
	store.Append(model.NewUserMessage("b"))
	unsubscribe()
	s.Close()

	got := p.snapshots()
	require.NotEmpty(t, got)
	assert.Len(t, got[len(got)-1].Messages, 2)
}
