// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP client for communicating with Ollama API.
package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dilekce/dilekce-tui/internal/llm"
)

// =============================================================================
// STREAM CHUNK
// =============================================================================

// StreamChunk represents a single line of a streaming response.
type StreamChunk struct {
	Content  string
	Thinking string
	Model    string

	// Timing and token counts, only populated on the final chunk.
	Done             bool
	DoneReason       string
	TotalDuration    time.Duration
	PromptTokens     int
	CompletionTokens int

	// Error is set when the server reports a failure mid-stream.
	Error error
}

// =============================================================================
// STREAM READER
// =============================================================================

// maxLineSize bounds a single NDJSON line.
const maxLineSize = 1 << 20

// StreamReader handles line-by-line JSON parsing of streaming responses.
type StreamReader struct {
	scanner *bufio.Scanner
}

// NewStreamReader creates a new stream reader from an io.Reader.
func NewStreamReader(r io.Reader) *StreamReader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &StreamReader{scanner: scanner}
}

// Process reads the stream and calls the callback for each chunk. It blocks
// until the final chunk, the end of the body, or cancellation. Malformed
// lines are skipped; an error line is delivered as a chunk with Error set
// and ends processing.
func (s *StreamReader) Process(ctx context.Context, callback StreamCallback) error {
	for s.scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := bytes.TrimSpace(s.scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var resp ChatResponse
		if err := json.Unmarshal(line, &resp); err != nil {
			continue
		}

		chunk := StreamChunk{
			Content:  resp.Message.Content,
			Thinking: resp.Message.Thinking,
			Model:    resp.Model,
			Done:     resp.Done,
		}
		if resp.Error != "" {
			chunk.Error = classify(http.StatusOK, resp.Error)
			chunk.Done = true
		}
		if resp.Done {
			chunk.DoneReason = resp.DoneReason
			chunk.TotalDuration = time.Duration(resp.TotalDuration)
			chunk.PromptTokens = resp.PromptEvalCount
			chunk.CompletionTokens = resp.EvalCount
		}

		callback(chunk)
		if chunk.Done {
			return nil
		}
	}

	if err := s.scanner.Err(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return &ClientError{Type: ErrTypeTimeout, Message: "stream timed out", Cause: err}
		}
		return &ClientError{Type: ErrTypeConnection, Message: "stream interrupted", Cause: err}
	}
	return ctx.Err()
}

// =============================================================================
// STREAM ACCUMULATOR
// =============================================================================

// StreamAccumulator collects chunks into a final response.
type StreamAccumulator struct {
	content  strings.Builder
	thinking strings.Builder
	final    StreamChunk
	model    string
	done     bool
	err      error
}

// NewStreamAccumulator creates an empty accumulator.
func NewStreamAccumulator() *StreamAccumulator {
	return &StreamAccumulator{}
}

// Add records one chunk.
func (a *StreamAccumulator) Add(chunk StreamChunk) {
	a.content.WriteString(chunk.Content)
	a.thinking.WriteString(chunk.Thinking)
	if chunk.Model != "" {
		a.model = chunk.Model
	}
	if chunk.Error != nil {
		a.err = chunk.Error
	}
	if chunk.Done {
		a.done = true
		a.final = chunk
	}
}

// Content returns the answer text so far.
func (a *StreamAccumulator) Content() string {
	return a.content.String()
}

// IsDone reports whether the final chunk arrived.
func (a *StreamAccumulator) IsDone() bool {
	return a.done
}

// Err returns the first error reported by the stream.
func (a *StreamAccumulator) Err() error {
	return a.err
}

// Response converts the accumulated stream to an llm.Response.
func (a *StreamAccumulator) Response() *llm.Response {
	return &llm.Response{
		Content:          a.content.String(),
		Thinking:         a.thinking.String(),
		Model:            a.model,
		PromptTokens:     a.final.PromptTokens,
		CompletionTokens: a.final.CompletionTokens,
		Duration:         a.final.TotalDuration,
	}
}
