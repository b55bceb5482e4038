// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the interactive drafting view of the TUI.
package chat

import (
	"context"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dilekce/dilekce-tui/internal/llm"
	"github.com/dilekce/dilekce-tui/internal/prompt"
)

const (
	defaultBatchSize = 15
	defaultMaxFPS    = 30
)

// =============================================================================
// STREAMING BUFFER
// =============================================================================

// StreamingBuffer collects deltas from the streaming goroutine until the
// render loop takes them. A flush happens once batchSize deltas are
// pending or a frame interval has passed, whichever comes first.
type StreamingBuffer struct {
	mu        sync.Mutex
	buffer    strings.Builder
	pending   int
	lastFlush time.Time

	batchSize int
	interval  time.Duration
}

// NewStreamingBuffer creates a buffer flushing every 15 deltas or 30 times
// a second.
func NewStreamingBuffer() *StreamingBuffer {
	return NewStreamingBufferWithConfig(defaultBatchSize, defaultMaxFPS)
}

// NewStreamingBufferWithConfig creates a buffer with custom thresholds.
// Out-of-range values fall back to the defaults; maxFPS is capped at 60.
func NewStreamingBufferWithConfig(batchSize, maxFPS int) *StreamingBuffer {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	if maxFPS <= 0 || maxFPS > 60 {
		maxFPS = defaultMaxFPS
	}
	return &StreamingBuffer{
		batchSize: batchSize,
		interval:  time.Second / time.Duration(maxFPS),
		lastFlush: time.Now(),
	}
}

// Write appends a delta. Safe to call from the streaming goroutine.
func (sb *StreamingBuffer) Write(delta string) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.buffer.WriteString(delta)
	sb.pending++
}

// Flush returns the pending text when a threshold is reached.
func (sb *StreamingBuffer) Flush() (string, bool) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	if sb.buffer.Len() == 0 {
		return "", false
	}
	if sb.pending < sb.batchSize && time.Since(sb.lastFlush) < sb.interval {
		return "", false
	}
	return sb.takeLocked(), true
}

// ForceFlush returns all pending text regardless of thresholds.
func (sb *StreamingBuffer) ForceFlush() (string, bool) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	if sb.buffer.Len() == 0 {
		return "", false
	}
	return sb.takeLocked(), true
}

// Pending returns the number of deltas not yet flushed.
func (sb *StreamingBuffer) Pending() int {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	return sb.pending
}

func (sb *StreamingBuffer) takeLocked() string {
	content := sb.buffer.String()
	sb.buffer.Reset()
	sb.pending = 0
	sb.lastFlush = time.Now()
	return content
}

// =============================================================================
// STREAM JOB
// =============================================================================

// streamJob is one in-flight request. The Model keeps a pointer so its
// cancel function survives Bubble Tea's value copies.
type streamJob struct {
	id     int
	buffer *StreamingBuffer

	mu     sync.Mutex
	cancel context.CancelFunc
}

// startStream returns the job and the command that runs it. The command
// blocks until the answer completes and yields a StreamDoneMsg.
func startStream(parent context.Context, id int, client llm.Client, req prompt.Request) (*streamJob, tea.Cmd) {
	ctx, cancel := context.WithCancel(parent)
	job := &streamJob{id: id, buffer: NewStreamingBuffer(), cancel: cancel}

	cmd := func() tea.Msg {
		defer job.stop()
		resp, err := client.Stream(ctx, req, job.buffer.Write)
		return StreamDoneMsg{ID: id, Response: resp, Err: err}
	}
	return job, cmd
}

// stop cancels the request. Safe to call more than once.
func (j *streamJob) stop() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.cancel != nil {
		j.cancel()
		j.cancel = nil
	}
}

// streamTickCmd schedules the next frame.
func streamTickCmd() tea.Cmd {
	return tea.Tick(time.Second/defaultMaxFPS, func(t time.Time) tea.Msg {
		return StreamTickMsg{Time: t}
	})
}
