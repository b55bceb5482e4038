// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package autocomplete provides inline legal-phrase completion.
package autocomplete

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const (
	// memoTTL bounds how long a memoized match is kept.
	memoTTL = 5 * time.Minute

	// memoLimit is the item count above which the memo is pruned.
	memoLimit = 4096

	// reloadDebounce coalesces bursts of write events from editors.
	reloadDebounce = 200 * time.Millisecond
)

// =============================================================================
// PROVIDER
// =============================================================================

// Provider hands out the current Dictionary and memoizes matches per
// fragment. Each Dictionary stays immutable; a reload builds a new one and
// swaps the pointer.
type Provider struct {
	dict   atomic.Pointer[Dictionary]
	gen    atomic.Uint64
	memo   *cache.Cache
	logger *zap.Logger
}

// NewProvider creates a provider serving d. A nil logger disables logging.
func NewProvider(d *Dictionary, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Provider{
		// No janitor goroutine; pruning happens inline in remember.
		memo:   cache.New(memoTTL, 0),
		logger: logger.Named("autocomplete"),
	}
	p.dict.Store(d)
	return p
}

// Dictionary returns the dictionary currently in use.
func (p *Provider) Dictionary() *Dictionary {
	return p.dict.Load()
}

// Swap replaces the dictionary and drops memoized matches.
func (p *Provider) Swap(d *Dictionary) {
	p.dict.Store(d)
	p.gen.Add(1)
	p.memo.Flush()
}

// Match is Dictionary.Match with memoization of the fragment lookup.
func (p *Provider) Match(fragment, trailingText string) *Suggestion {
	if fragment == "" {
		return nil
	}

	key := strconv.FormatUint(p.gen.Load(), 10) + "\x00" + fragment
	var best *Suggestion
	if v, ok := p.memo.Get(key); ok {
		best = v.(*Suggestion)
	} else {
		best = p.Dictionary().match(fragment)
		p.remember(key, best)
	}

	if best == nil || collides(best, trailingText) {
		return nil
	}
	s := *best
	return &s
}

// Complete extracts the fragment before the caret and matches it.
func (p *Provider) Complete(before, after string) (string, *Suggestion) {
	fragment := ExtractFragment(before)
	return fragment, p.Match(fragment, after)
}

func (p *Provider) remember(key string, s *Suggestion) {
	p.memo.SetDefault(key, s)
	if p.memo.ItemCount() > memoLimit {
		p.memo.DeleteExpired()
		if p.memo.ItemCount() > memoLimit {
			p.memo.Flush()
		}
	}
}

// =============================================================================
// FILE WATCHING
// =============================================================================

// Reload rebuilds the dictionary from path and swaps it in. On error the
// current dictionary is kept.
func (p *Provider) Reload(path string) error {
	d, err := LoadFile(path)
	if err != nil {
		return err
	}
	p.Swap(d)
	p.logger.Info("dictionary reloaded", zap.String("path", path), zap.Int("entries", d.Len()))
	return nil
}

// Watch reloads the dictionary whenever the file at path changes, until ctx
// is cancelled. The parent directory is watched so that editors which save
// by rename are picked up too. Watch returns once the watcher is running.
func (p *Provider) Watch(ctx context.Context, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve dictionary path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	go p.watchLoop(ctx, watcher, abs)
	return nil
}

func (p *Provider) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, path string) {
	defer watcher.Close()

	timer := time.NewTimer(reloadDebounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				timer.Reset(reloadDebounce)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			p.logger.Warn("dictionary watcher error", zap.Error(err))

		case <-timer.C:
			if err := p.Reload(path); err != nil {
				p.logger.Warn("dictionary reload failed, keeping previous", zap.String("path", path), zap.Error(err))
			}
		}
	}
}
