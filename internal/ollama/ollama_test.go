// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dilekce/dilekce-tui/internal/mode"
	"github.com/dilekce/dilekce-tui/internal/prompt"
)

func request(m mode.Mode, text string) prompt.Request {
	return prompt.Build(prompt.Input{Mode: m, UserInput: text})
}

// chatServer serves /api/chat with handler and records the decoded request.
func chatServer(t *testing.T, handler func(w http.ResponseWriter, req ChatRequest)) (*httptest.Server, *ChatRequest) {
	t.Helper()
	var got ChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		handler(w, got)
	}))
	t.Cleanup(srv.Close)
	return srv, &got
}

// =============================================================================
// REQUEST BUILDING
// =============================================================================

func TestNewChatRequest_MapsModeOptions(t *testing.T) {
	req := NewChatRequest("llama3.1", request(mode.Ozetle, "Metni özetle"), false)

	require.NotNil(t, req.Options)
	assert.Equal(t, 0.2, req.Options.Temperature)
	assert.Equal(t, 1024, req.Options.NumPredict)
	assert.Nil(t, req.Think, "think is not sent to models without reasoning")

	require.Len(t, req.Messages, 2)
	assert.Equal(t, "system", req.Messages[0].Role)
	assert.Equal(t, mode.SystemMessage(mode.Ozetle), req.Messages[0].Content)
	assert.Equal(t, Message{Role: "user", Content: "Metni özetle"}, req.Messages[1])
}

func TestNewChatRequest_ThinkFlag(t *testing.T) {
	req := NewChatRequest("qwen3:8b", request(mode.Yazdir, "x"), true)
	require.NotNil(t, req.Think)
	assert.True(t, *req.Think)
	assert.True(t, req.Stream)

	req = NewChatRequest("qwen3", request(mode.Sor, "x"), false)
	require.NotNil(t, req.Think)
	assert.False(t, *req.Think)

	data, err := json.Marshal(NewChatRequest("gemma3", request(mode.Yazdir, "x"), false))
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"think"`)
}

// =============================================================================
// NON-STREAMING
// =============================================================================

func TestClient_Complete(t *testing.T) {
	srv, got := chatServer(t, func(w http.ResponseWriter, req ChatRequest) {
		_ = json.NewEncoder(w).Encode(ChatResponse{
			Model:           req.Model,
			Message:         Message{Role: "assistant", Content: "HMK m. 119 uyarınca...", Thinking: "düşün"},
			Done:            true,
			PromptEvalCount: 50,
			EvalCount:       20,
			TotalDuration:   int64(2 * time.Second),
		})
	})

	client := NewClient(ClientConfig{BaseURL: srv.URL + "/", Model: "qwen3"})
	resp, err := client.Complete(context.Background(), request(mode.Sor, "Dava dilekçesinde neler bulunur?"))
	require.NoError(t, err)

	assert.False(t, got.Stream)
	assert.Equal(t, "qwen3", got.Model)
	assert.Equal(t, "HMK m. 119 uyarınca...", resp.Content)
	assert.Equal(t, "düşün", resp.Thinking)
	assert.Equal(t, 50, resp.PromptTokens)
	assert.Equal(t, 20, resp.CompletionTokens)
	assert.Equal(t, 2*time.Second, resp.Duration)
	assert.Equal(t, "ollama", client.Provider())
	assert.Equal(t, srv.URL, client.BaseURL())
}

func TestClient_CompleteErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(error) bool
	}{
		{"model not found", http.StatusNotFound, `{"error":"model 'x' not found"}`, IsModelNotFound},
		{"bare 404", http.StatusNotFound, ``, IsModelNotFound},
		{"context", http.StatusBadRequest, `{"error":"input exceeds context length"}`, func(err error) bool {
			return errors.Is(err, ErrContextExceeded)
		}},
		{"server error", http.StatusInternalServerError, `oops`, func(err error) bool {
			var ce *ClientError
			return errors.As(err, &ce) && ce.Type == ErrTypeInvalidResponse
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := chatServer(t, func(w http.ResponseWriter, _ ChatRequest) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})
			_, err := NewClient(ClientConfig{BaseURL: srv.URL}).Complete(context.Background(), request(mode.Sor, "x"))
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error %v", err)
		})
	}
}

func TestClient_EmptyAnswer(t *testing.T) {
	srv, _ := chatServer(t, func(w http.ResponseWriter, _ ChatRequest) {
		_ = json.NewEncoder(w).Encode(ChatResponse{Done: true})
	})
	_, err := NewClient(ClientConfig{BaseURL: srv.URL}).Complete(context.Background(), request(mode.Sor, "x"))
	assert.Error(t, err)
}

func TestClient_NotRunning(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := NewClient(ClientConfig{BaseURL: url})
	err := client.CheckRunning(context.Background())
	assert.True(t, IsNotRunning(err), "got %v", err)

	_, err = client.Complete(context.Background(), request(mode.Sor, "x"))
	assert.True(t, IsNotRunning(err), "got %v", err)
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv, _ := chatServer(t, func(w http.ResponseWriter, _ ChatRequest) {
		<-release
	})
	defer close(release)

	client := NewClient(ClientConfig{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	_, err := client.Complete(context.Background(), request(mode.Sor, "x"))
	assert.True(t, IsTimeout(err), "got %v", err)
}

// =============================================================================
// STREAMING
// =============================================================================

func TestClient_Stream(t *testing.T) {
	srv, got := chatServer(t, func(w http.ResponseWriter, req ChatRequest) {
		for _, part := range []string{"Sayın ", "Mahkeme", ""} {
			fmt.Fprintf(w, `{"model":"qwen3","message":{"role":"assistant","content":%q}}`+"\n", part)
		}
		fmt.Fprintln(w, "not json")
		fmt.Fprintln(w, `{"model":"qwen3","message":{"content":""},"done":true,"prompt_eval_count":9,"eval_count":3,"total_duration":1000000000}`)
	})

	var deltas []string
	client := NewClient(ClientConfig{BaseURL: srv.URL, Model: "qwen3"})
	resp, err := client.Stream(context.Background(), request(mode.Yazdir, "x"), func(d string) {
		deltas = append(deltas, d)
	})
	require.NoError(t, err)

	assert.True(t, got.Stream)
	assert.Equal(t, []string{"Sayın ", "Mahkeme"}, deltas)
	assert.Equal(t, "Sayın Mahkeme", resp.Content)
	assert.Equal(t, 9, resp.PromptTokens)
	assert.Equal(t, 3, resp.CompletionTokens)
	assert.Equal(t, time.Second, resp.Duration)
}

func TestClient_StreamErrorLine(t *testing.T) {
	srv, _ := chatServer(t, func(w http.ResponseWriter, _ ChatRequest) {
		fmt.Fprintln(w, `{"message":{"content":"ya"}}`)
		fmt.Fprintln(w, `{"error":"model 'x' not found"}`)
	})

	_, err := NewClient(ClientConfig{BaseURL: srv.URL}).Stream(context.Background(), request(mode.Sor, "x"), nil)
	assert.True(t, IsModelNotFound(err), "got %v", err)
}

func TestStreamReader_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := NewStreamReader(strings.NewReader(`{"message":{"content":"a"}}`+"\n")).Process(ctx, func(StreamChunk) { calls++ })
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}

func TestStreamAccumulator(t *testing.T) {
	acc := NewStreamAccumulator()
	acc.Add(StreamChunk{Content: "a", Thinking: "t1", Model: "m"})
	acc.Add(StreamChunk{Content: "b", Thinking: "t2"})
	assert.False(t, acc.IsDone())
	acc.Add(StreamChunk{Done: true, PromptTokens: 1, CompletionTokens: 2})

	assert.True(t, acc.IsDone())
	assert.NoError(t, acc.Err())
	assert.Equal(t, "ab", acc.Content())
	r := acc.Response()
	assert.Equal(t, "t1t2", r.Thinking)
	assert.Equal(t, "m", r.Model)
	assert.Equal(t, 2, r.CompletionTokens)
}

// =============================================================================
// MODELS AND TYPES
// =============================================================================

func TestClient_ListModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			_, _ = io.WriteString(w, "Ollama is running")
		case "/api/tags":
			_, _ = io.WriteString(w, `{"models":[{"name":"qwen3:8b","size":5200000000,"details":{"parameter_size":"8B"}}]}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{BaseURL: srv.URL})
	require.NoError(t, client.CheckRunning(context.Background()))

	models, err := client.ListModels(context.Background())
	require.NoError(t, err)
	require.Len(t, models, 1)
	assert.Equal(t, "qwen3:8b", models[0].Name)
	assert.Equal(t, "8B", models[0].Details.ParameterSize)
	assert.Equal(t, "4.8 GB", models[0].FormatSize())
}

func TestModelInfo_FormatSize(t *testing.T) {
	tests := []struct {
		size int64
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
	}
	for _, tt := range tests {
		m := ModelInfo{Size: tt.size}
		assert.Equal(t, tt.want, m.FormatSize())
	}
}

func TestChatResponse_TokensPerSecond(t *testing.T) {
	r := &ChatResponse{EvalCount: 100, EvalDuration: int64(2 * time.Second)}
	assert.InDelta(t, 50.0, r.TokensPerSecond(), 0.001)
	assert.Zero(t, (&ChatResponse{EvalCount: 5}).TokensPerSecond())
}

func TestClientError(t *testing.T) {
	cause := errors.New("dial tcp")
	err := &ClientError{Type: ErrTypeNotRunning, Message: "down", Cause: cause}
	assert.Equal(t, "down: dial tcp", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrNotRunning)
	assert.NotErrorIs(t, err, ErrTimeout)
	assert.False(t, errors.Is(&ClientError{}, &ClientError{}), "unknown types never match")
}
