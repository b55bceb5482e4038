// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session holds the drafting session state and its persistence loop.
package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/dilekce/dilekce-tui/internal/model"
)

// =============================================================================
// SAVER CONFIGURATION
// =============================================================================

// Persister writes a session snapshot.
type Persister interface {
	Save(ctx context.Context, s *model.SessionState) (*model.SessionState, error)
}

// SaverConfig holds configuration for the background saver.
type SaverConfig struct {
	// MinInterval is the minimum time between two writes (default: 500ms).
	// Zero or negative disables throttling.
	MinInterval time.Duration

	// Timeout bounds a single write (default: 5s).
	Timeout time.Duration

	// OnError receives write failures. It runs on the saver goroutine.
	OnError func(error)

	// OnSaved receives the stored form of each written snapshot.
	OnSaved func(*model.SessionState)

	// Logger receives debug and error logs. Nil disables logging.
	Logger *zap.Logger
}

// DefaultSaverConfig returns the default saver configuration.
func DefaultSaverConfig() SaverConfig {
	return SaverConfig{
		MinInterval: 500 * time.Millisecond,
		Timeout:     5 * time.Second,
	}
}

// =============================================================================
// SAVER
// =============================================================================

// Saver persists session snapshots on a background goroutine. Submit never
// blocks; snapshots submitted while a write is in flight coalesce so only
// the newest one is written next.
type Saver struct {
	persister Persister
	limiter   *rate.Limiter
	timeout   time.Duration
	onError   func(error)
	onSaved   func(*model.SessionState)
	logger    *zap.Logger

	mu      sync.Mutex
	pending *model.SessionState
	closed  bool

	wake   chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// NewSaver starts a saver writing through p.
func NewSaver(p Persister, cfg SaverConfig) *Saver {
	defaults := DefaultSaverConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	limit := rate.Inf
	if cfg.MinInterval > 0 {
		limit = rate.Every(cfg.MinInterval)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Saver{
		persister: p,
		limiter:   rate.NewLimiter(limit, 1),
		timeout:   cfg.Timeout,
		onError:   cfg.OnError,
		onSaved:   cfg.OnSaved,
		logger:    logger.Named("saver"),
		wake:      make(chan struct{}, 1),
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	go s.run()
	return s
}

// Submit queues a snapshot of state for writing. It returns false once the
// saver is closed.
func (s *Saver) Submit(state *model.SessionState) bool {
	if state == nil {
		return true
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.logger.Debug("snapshot dropped after close", zap.String("session_id", state.ID))
		return false
	}
	s.pending = state.Clone()
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
	return true
}

// Listener returns a store listener that submits every new state.
func (s *Saver) Listener() Listener {
	return func(st *model.SessionState) {
		s.Submit(st)
	}
}

// Close writes the last pending snapshot, if any, and stops the goroutine.
// It is safe to call more than once.
func (s *Saver) Close() {
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		s.cancel()
	})
	<-s.done
}

func (s *Saver) run() {
	defer close(s.done)

	for {
		select {
		case <-s.ctx.Done():
			s.writePending()
			return
		case <-s.wake:
		}

		// A cancelled wait means Close was called; the next iteration drains.
		if err := s.limiter.Wait(s.ctx); err != nil {
			continue
		}
		s.writePending()
	}
}

// writePending writes the newest pending snapshot.
func (s *Saver) writePending() {
	s.mu.Lock()
	state := s.pending
	s.pending = nil
	s.mu.Unlock()

	if state == nil {
		return
	}

	// Not derived from s.ctx: the final drain runs after cancellation.
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	saved, err := s.persister.Save(ctx, state)
	if err != nil {
		s.logger.Error("session save failed", zap.String("session_id", state.ID), zap.Error(err))
		if s.onError != nil {
			s.onError(err)
		}
		return
	}

	s.logger.Debug("session saved", zap.String("session_id", state.ID), zap.Int("messages", len(state.Messages)))
	if s.onSaved != nil {
		s.onSaved(saved)
	}
}
