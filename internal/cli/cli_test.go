// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dilekce/dilekce-tui/internal/autocomplete"
	"github.com/dilekce/dilekce-tui/internal/config"
	"github.com/dilekce/dilekce-tui/internal/llm"
	"github.com/dilekce/dilekce-tui/internal/mode"
	"github.com/dilekce/dilekce-tui/internal/model"
	"github.com/dilekce/dilekce-tui/internal/prompt"
	"github.com/dilekce/dilekce-tui/internal/session"
	"github.com/dilekce/dilekce-tui/internal/storage"
	"github.com/dilekce/dilekce-tui/internal/ui/chat"
)

// =============================================================================
// HELPERS
// =============================================================================

type fakeClient struct {
	answer string
	err    error

	mu       sync.Mutex
	requests []prompt.Request
}

func (f *fakeClient) Provider() string { return "fake" }
func (f *fakeClient) Model() string    { return "fake-model" }

func (f *fakeClient) Complete(ctx context.Context, req prompt.Request) (*llm.Response, error) {
	return f.Stream(ctx, req, nil)
}

func (f *fakeClient) Stream(_ context.Context, req prompt.Request, onDelta func(string)) (*llm.Response, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, word := range strings.SplitAfter(f.answer, " ") {
		if onDelta != nil {
			onDelta(word)
		}
	}
	return &llm.Response{
		Content:          f.answer,
		Model:            "fake-model",
		PromptTokens:     12,
		CompletionTokens: 4,
		Duration:         time.Second,
	}, nil
}

func (f *fakeClient) last(t *testing.T) prompt.Request {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.requests)
	return f.requests[len(f.requests)-1]
}

type testApp struct {
	*App
	out, errOut *bytes.Buffer
	client      *fakeClient
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	t.Setenv("DILEKCE_HOME", t.TempDir())

	cfg := config.Default()
	cfg.Storage.Dir = t.TempDir()
	cfg.Dictionary.Watch = false

	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	client := &fakeClient{answer: "Sayın Mahkeme, talep ediyorum."}

	app := NewApp(strings.NewReader(""), out, errOut).WithConfig(cfg, zap.NewNop())
	app.NewClient = func(context.Context, *config.Config, *zap.Logger) (llm.Client, error) {
		return client, nil
	}
	return &testApp{App: app, out: out, errOut: errOut, client: client}
}

func (ta *testApp) run(args ...string) error {
	root := ta.RootCommand()
	root.SetArgs(args)
	return root.ExecuteContext(context.Background())
}

// decode parses a JSONResponse and its data into v.
func decode(t *testing.T, data []byte, v interface{}) JSONResponse {
	t.Helper()
	var raw struct {
		JSONResponse
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(data, &raw), string(data))
	if v != nil {
		require.NoError(t, json.Unmarshal(raw.Data, v))
	}
	return raw.JSONResponse
}

func (ta *testApp) store(t *testing.T) storage.HistoryStore {
	t.Helper()
	store, err := ta.openStore()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func seedSession(t *testing.T, store storage.HistoryStore, question string) *model.SessionState {
	t.Helper()
	s := model.NewSessionState()
	s.Mode = mode.Yazdir
	s.Messages = []model.ChatMessage{
		model.NewUserMessage(question),
		model.NewAssistantMessage("Dilekçe taslağı"),
	}
	saved, err := store.Save(context.Background(), s)
	require.NoError(t, err)
	return saved
}

// =============================================================================
// ASK
// =============================================================================

func TestAsk_Raw(t *testing.T) {
	ta := newTestApp(t)

	require.NoError(t, ta.run("ask", "--raw", "Dava", "dilekçesi"))

	assert.Equal(t, "Sayın Mahkeme, talep ediyorum.\n", ta.out.String())
	req := ta.client.last(t)
	assert.Equal(t, mode.Sor, req.Mode)
	assert.Equal(t, "Dava dilekçesi", req.Messages[len(req.Messages)-1].Content)
}

func TestAsk_JSON(t *testing.T) {
	ta := newTestApp(t)

	require.NoError(t, ta.run("ask", "--json", "--mode", "yazdır", "Kira artışı"))

	var result askResult
	resp := decode(t, ta.out.Bytes(), &result)
	assert.True(t, resp.Success)
	assert.Equal(t, "ask", resp.Command)
	assert.Equal(t, mode.Yazdir, result.Mode)
	assert.Equal(t, "Sayın Mahkeme, talep ediyorum.", result.Answer)
	assert.Equal(t, 12, result.PromptTokens)
	assert.Equal(t, int64(1000), result.DurationMs)
	assert.Empty(t, result.SessionID)
}

func TestAsk_Save(t *testing.T) {
	ta := newTestApp(t)

	require.NoError(t, ta.run("ask", "--json", "--save", "--mode", "ozetle", "Kararı özetle"))

	var result askResult
	decode(t, ta.out.Bytes(), &result)
	require.NotEmpty(t, result.SessionID)

	s, err := ta.store(t).Load(context.Background(), result.SessionID)
	require.NoError(t, err)
	assert.Equal(t, mode.Ozetle, s.Mode)
	assert.Equal(t, "fake-model", s.Model)
	require.Len(t, s.Messages, 2)
	assert.Equal(t, "Kararı özetle", s.Messages[0].Content)
	assert.Equal(t, model.RoleAssistant, s.Messages[1].Role)
}

func TestAsk_Stdin(t *testing.T) {
	ta := newTestApp(t)
	ta.In = strings.NewReader("  Tahliye davası nasıl açılır?\n")

	require.NoError(t, ta.run("ask", "--raw"))
	req := ta.client.last(t)
	assert.Equal(t, "Tahliye davası nasıl açılır?", req.Messages[len(req.Messages)-1].Content)
}

func TestAsk_ContextFile(t *testing.T) {
	ta := newTestApp(t)
	path := filepath.Join(t.TempDir(), "karar.txt")
	require.NoError(t, os.WriteFile(path, []byte("Davacının talebinin kabulüne"), 0600))

	require.NoError(t, ta.run("ask", "--raw", "--mode", "ozetle", "-c", path, "Özetle"))

	req := ta.client.last(t)
	user := req.Messages[len(req.Messages)-1].Content
	assert.Contains(t, user, "Özetle")
	assert.Contains(t, user, "Davacının talebinin kabulüne")
}

func TestAsk_Errors(t *testing.T) {
	t.Run("no question", func(t *testing.T) {
		ta := newTestApp(t)
		assert.EqualError(t, ta.run("ask"), "no question given")
	})

	t.Run("unknown mode", func(t *testing.T) {
		ta := newTestApp(t)
		err := ta.run("ask", "--mode", "hukuk", "x")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown mode")
	})

	t.Run("missing context file", func(t *testing.T) {
		ta := newTestApp(t)
		err := ta.run("ask", "-c", filepath.Join(t.TempDir(), "yok.txt"), "x")
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("client error as JSON", func(t *testing.T) {
		ta := newTestApp(t)
		ta.client.err = errors.New("Ollama is not running")

		err := ta.run("ask", "--json", "x")
		require.Error(t, err)
		resp := decode(t, ta.out.Bytes(), nil)
		assert.False(t, resp.Success)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "Ollama is not running", *resp.Error)
	})
}

// =============================================================================
// COMPLETE AND DICTIONARY
// =============================================================================

func TestComplete(t *testing.T) {
	ta := newTestApp(t)

	require.NoError(t, ta.run("complete", "--json", "Gereği için SM"))

	var c completion
	decode(t, ta.out.Bytes(), &c)
	assert.Equal(t, "SM", c.Fragment)
	require.NotNil(t, c.Suggestion)
	assert.True(t, c.Suggestion.Alias)
	assert.Equal(t, "Gereği için Sayın Mahkeme", c.Result)
	assert.Equal(t, len([]rune(c.Result)), c.Caret)
}

func TestComplete_NoSuggestion(t *testing.T) {
	ta := newTestApp(t)

	require.NoError(t, ta.run("complete", "Gereği için "))
	assert.Contains(t, ta.out.String(), "yok")
}

func TestComplete_CustomDictionary(t *testing.T) {
	ta := newTestApp(t)
	path := filepath.Join(t.TempDir(), "ifadeler.txt")
	require.NoError(t, os.WriteFile(path, []byte("# ifadeler\nihtiyati tedbir | İT\n"), 0600))
	ta.Config().Dictionary.Path = path

	require.NoError(t, ta.run("complete", "--after", " kararı", "ihti"))
	out := ta.out.String()
	assert.Contains(t, out, "ihtiyati tedbir")
	assert.Contains(t, out, "ihtiyati tedbir kararı")
}

func TestDictCheck(t *testing.T) {
	ta := newTestApp(t)
	path := filepath.Join(t.TempDir(), "ifadeler.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`phrases:
  - target: Sayın Mahkeme
    aliases: [SM, S.M.]
  - target: talep ediyorum
`), 0600))

	require.NoError(t, ta.run("dict", "check", "--json", path))

	var r dictReport
	decode(t, ta.out.Bytes(), &r)
	assert.Equal(t, dictReport{Path: path, Format: "yaml", Entries: 2, Aliases: 2}, r)
}

func TestDictCheck_Invalid(t *testing.T) {
	ta := newTestApp(t)
	path := filepath.Join(t.TempDir(), "bozuk.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"phrase": [`), 0600))

	assert.Error(t, ta.run("dict", "check", path))
}

func TestDictList(t *testing.T) {
	ta := newTestApp(t)

	require.NoError(t, ta.run("dict", "list", "--json"))

	var entries []autocomplete.Entry
	decode(t, ta.out.Bytes(), &entries)
	assert.Equal(t, autocomplete.Builtin().Len(), len(entries))
	assert.Equal(t, "Sayın Mahkeme", entries[0].Target)
}

func TestWordCompleter(t *testing.T) {
	provider := autocomplete.NewProvider(autocomplete.MustNew([]autocomplete.Entry{
		{Target: "talep ediyorum"},
		{Target: "Türk Borçlar Kanunu", Aliases: []string{"TBK"}},
	}), nil)
	complete := wordCompleter(provider)

	head, words, tail := complete("arz ve tal", 10)
	assert.Equal(t, "arz ve ", head)
	assert.Equal(t, []string{"talep ediyorum"}, words)
	assert.Empty(t, tail)

	head, words, tail = complete("madde TBK uyarınca", 9)
	assert.Equal(t, "madde ", head)
	assert.Equal(t, []string{"Türk Borçlar Kanunu"}, words)
	assert.Equal(t, " uyarınca", tail)

	head, words, _ = complete("hiçbiri", 7)
	assert.Equal(t, "hiçbiri", head)
	assert.Empty(t, words)
}

// =============================================================================
// MODES
// =============================================================================

func TestModes_JSON(t *testing.T) {
	ta := newTestApp(t)
	ta.Config().Session.DefaultMode = "yazdir"

	require.NoError(t, ta.run("modes", "--json"))

	var modes []modeInfo
	decode(t, ta.out.Bytes(), &modes)
	require.Len(t, modes, 3)
	assert.Equal(t, []string{"sor", "ozetle", "yazdir"}, []string{modes[0].Name, modes[1].Name, modes[2].Name})
	assert.True(t, modes[2].Default)
	assert.False(t, modes[0].Default)
	assert.InDelta(t, 0.7, modes[2].Options.Temperature, 0.0001)
	assert.NotEmpty(t, modes[1].SystemPrompt)
}

func TestModes_Text(t *testing.T) {
	ta := newTestApp(t)

	require.NoError(t, ta.run("modes"))
	out := ta.out.String()
	for _, m := range mode.All() {
		assert.Contains(t, out, m.Label())
	}
	assert.NotContains(t, out, mode.SystemMessage(mode.Sor))
}

func TestModels_JSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			_, _ = io.WriteString(w, "Ollama is running")
		case "/api/tags":
			_, _ = io.WriteString(w, `{"models":[{"name":"qwen3:8b"},{"name":"gemma3"}]}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	ta := newTestApp(t)
	ta.Config().LLM.OllamaURL = srv.URL

	require.NoError(t, ta.run("models", "--json"))
	var listing modelListing
	decode(t, ta.out.Bytes(), &listing)
	assert.NotEmpty(t, listing.Known)
	require.Len(t, listing.Installed, 2)
	assert.Equal(t, "gemma3", listing.Installed[0].Name, "sorted by name")
	assert.Equal(t, ta.Config().LLM.Model, listing.Current)
}

func TestModels_OllamaDown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	ta := newTestApp(t)
	ta.Config().LLM.OllamaURL = url

	require.NoError(t, ta.run("models"))
	assert.Contains(t, ta.out.String(), "erişilemedi")
}

// =============================================================================
// SESSIONS
// =============================================================================

func TestSessionList(t *testing.T) {
	ta := newTestApp(t)
	store := ta.store(t)
	first := seedSession(t, store, "İşe iade davası")
	seedSession(t, store, "Kira tespit davası")

	require.NoError(t, ta.run("session", "list", "--json"))
	var list []storage.Summary
	decode(t, ta.out.Bytes(), &list)
	assert.Len(t, list, 2)

	ta.out.Reset()
	require.NoError(t, ta.run("session", "list", "--json", "--search", "işe iade"))
	list = nil
	decode(t, ta.out.Bytes(), &list)
	require.Len(t, list, 1)
	assert.Equal(t, first.ID, list[0].ID)

	ta.out.Reset()
	require.NoError(t, ta.run("session", "list", "-n", "1"))
	assert.NotEmpty(t, ta.out.String())
}

func TestListSessions_Paging(t *testing.T) {
	ta := newTestApp(t)
	store := ta.store(t)
	for i := 0; i < 3; i++ {
		seedSession(t, store, "Tazminat davası")
	}
	ctx := context.Background()

	found, err := listSessions(ctx, store, "tazminat", 2, 0)
	require.NoError(t, err)
	assert.Len(t, found, 2)

	found, err = listSessions(ctx, store, "tazminat", 2, 2)
	require.NoError(t, err)
	assert.Len(t, found, 1)

	found, err = listSessions(ctx, store, "tazminat", 0, 5)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestSessionShowAndExport(t *testing.T) {
	ta := newTestApp(t)
	saved := seedSession(t, ta.store(t), "Nafaka artırımı")

	require.NoError(t, ta.run("session", "show", "--raw", saved.ID))
	assert.Contains(t, ta.out.String(), "Nafaka artırımı")
	assert.Contains(t, ta.out.String(), "Dilekçe taslağı")

	ta.out.Reset()
	require.NoError(t, ta.run("session", "export", "-f", "json", saved.ID))
	var exported model.SessionState
	require.NoError(t, json.Unmarshal(ta.out.Bytes(), &exported))
	assert.Equal(t, saved.ID, exported.ID)
	assert.Len(t, exported.Messages, 2)

	path := filepath.Join(t.TempDir(), "out", "oturum.md")
	require.NoError(t, ta.run("session", "export", "-o", path, saved.ID))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "---\n"))
	assert.Contains(t, string(data), "title: Nafaka artırımı")

	dir := t.TempDir()
	require.NoError(t, ta.run("session", "export", "-f", "html", "--theme", "light", "-o", dir, saved.ID))
	matches, err := filepath.Glob(filepath.Join(dir, "dilekce_Nafaka_artırımı_*.html"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	data, err = os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), `<body class="light-theme">`)

	assert.Error(t, ta.run("session", "export", "-f", "pdf", saved.ID))
	assert.Error(t, ta.run("session", "export", "--open", saved.ID))
}

func TestSessionDelete(t *testing.T) {
	ta := newTestApp(t)
	store := ta.store(t)
	saved := seedSession(t, store, "Silinecek")

	require.NoError(t, ta.run("session", "rm", saved.ID))
	_, err := store.Load(context.Background(), saved.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	err = ta.run("session", "delete", saved.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

// =============================================================================
// CONFIG
// =============================================================================

func TestConfigInitSetGet(t *testing.T) {
	ta := newTestApp(t)
	path := filepath.Join(t.TempDir(), "config.toml")

	require.NoError(t, ta.run("config", "init", "--config", path))
	assert.FileExists(t, path)
	assert.Error(t, ta.run("config", "init", "--config", path), "existing file needs --force")
	require.NoError(t, ta.run("config", "init", "--force", "--config", path))

	require.NoError(t, ta.run("config", "set", "--config", path, "llm.model", "gemma3"))
	require.NoError(t, ta.run("config", "set", "--config", path, "session.autosave", "false"))

	cfg := config.Default()
	require.NoError(t, config.LoadTOML(cfg, path))
	assert.Equal(t, "gemma3", cfg.LLM.Model)
	assert.False(t, cfg.Session.Autosave)

	err := ta.run("config", "set", "--config", path, "storage.backend", "nosql")
	require.Error(t, err)
	require.NoError(t, config.LoadTOML(cfg, path))
	assert.Equal(t, "file", cfg.Storage.Backend, "invalid values are not written")

	assert.Error(t, ta.run("config", "set", "--config", path, "llm.nope", "x"))
}

func TestConfigGet_Redacts(t *testing.T) {
	ta := newTestApp(t)
	ta.Config().LLM.GeminiKey = "AIza-secret"

	require.NoError(t, ta.run("config", "get", "llm.gemini_key"))
	assert.Equal(t, "[REDACTED]\n", ta.out.String())

	ta.out.Reset()
	require.NoError(t, ta.run("config", "show"))
	assert.NotContains(t, ta.out.String(), "AIza-secret")
}

func TestConfigPathAndKeys(t *testing.T) {
	ta := newTestApp(t)

	require.NoError(t, ta.run("config", "path", "--config", "/tmp/dilekce.toml"))
	assert.Equal(t, "/tmp/dilekce.toml\n", ta.out.String())

	ta.out.Reset()
	require.NoError(t, ta.run("config", "keys"))
	assert.Contains(t, ta.out.String(), "llm.model\n")
	assert.Contains(t, ta.out.String(), "dictionary.path\n")
}

func TestSetup_FlagOverrides(t *testing.T) {
	ta := newTestApp(t)

	require.NoError(t, ta.run("config", "get", "llm.provider", "-p", "gemini"))
	assert.Equal(t, "gemini\n", ta.out.String())
	assert.Equal(t, "gemini", config.Global().LLM.Provider)
	t.Cleanup(config.ResetGlobalForTesting)

	err := newTestApp(t).run("config", "get", "llm.provider", "-p", "openai")
	assert.Error(t, err)
}

func TestSetup_MissingConfigFileUsesDefaults(t *testing.T) {
	t.Setenv("DILEKCE_HOME", t.TempDir())
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	app := NewApp(strings.NewReader(""), out, errOut)

	root := app.RootCommand()
	root.SetArgs([]string{"config", "get", "llm.model", "--config", filepath.Join(t.TempDir(), "yok.toml")})
	require.NoError(t, root.Execute())

	assert.Equal(t, config.Default().LLM.Model+"\n", out.String())
	assert.Contains(t, errOut.String(), "using defaults")
}

// =============================================================================
// CHAT REPL
// =============================================================================

func newChatSession(t *testing.T, client *fakeClient) (*chatSession, *bytes.Buffer) {
	t.Helper()
	history, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)
	out := &bytes.Buffer{}
	return &chatSession{
		client:  client,
		store:   session.NewStore(newSession(mode.Sor, client)),
		history: history,
		out:     out,
		logger:  zap.NewNop(),
	}, out
}

func TestChatSession(t *testing.T) {
	ctx := context.Background()
	client := &fakeClient{answer: "Sayın Mahkeme"}
	s, out := newChatSession(t, client)

	more, err := s.handle(ctx, "   ")
	assert.True(t, more)
	assert.NoError(t, err)

	_, err = s.handle(ctx, "/mode yazdır")
	require.NoError(t, err)
	assert.Equal(t, mode.Yazdir, s.store.Mode())
	assert.Equal(t, "[Dilekçe] › ", s.prompt())

	_, err = s.handle(ctx, "Tahliye dilekçesi yaz")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Sayın Mahkeme\n")
	assert.Equal(t, mode.Yazdir, client.last(t).Mode)
	require.Len(t, s.store.State().Messages, 2)

	_, err = s.handle(ctx, "/save")
	require.NoError(t, err)
	saved, err := s.history.List(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	id := saved[0].ID
	assert.Contains(t, out.String(), id)

	_, err = s.handle(ctx, "/clear")
	require.NoError(t, err)
	assert.Empty(t, s.store.State().Messages)
	assert.Equal(t, mode.Yazdir, s.store.Mode())

	_, err = s.handle(ctx, "/load "+id)
	require.NoError(t, err)
	assert.Len(t, s.store.State().Messages, 2)

	out.Reset()
	_, err = s.handle(ctx, "/history")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Tahliye dilekçesi yaz")

	more, err = s.handle(ctx, "/quit")
	assert.False(t, more)
	assert.NoError(t, err)
}

func TestChatSession_Errors(t *testing.T) {
	ctx := context.Background()
	client := &fakeClient{err: errors.New("boom")}
	s, _ := newChatSession(t, client)

	_, err := s.handle(ctx, "Soru")
	assert.EqualError(t, err, "boom")
	assert.Empty(t, s.store.State().Messages, "failed turns are not recorded")

	_, err = s.handle(ctx, "/mode hukuk")
	assert.Error(t, err)
	assert.Equal(t, mode.Sor, s.store.Mode())

	_, err = s.handle(ctx, "/load")
	assert.Error(t, err)

	_, err = s.handle(ctx, "/bilinmeyen")
	assert.Error(t, err)

	s.history = nil
	_, err = s.handle(ctx, "/save")
	assert.Error(t, err)
}

func TestChatSession_ModeCycle(t *testing.T) {
	s, _ := newChatSession(t, &fakeClient{})
	for _, want := range []mode.Mode{mode.Ozetle, mode.Yazdir, mode.Sor} {
		_, err := s.handle(context.Background(), "/mode")
		require.NoError(t, err)
		assert.Equal(t, want, s.store.Mode())
	}
}

// =============================================================================
// CLIENT FACTORY
// =============================================================================

func TestNewClient(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()

	cfg := config.Default()
	client, err := NewClient(ctx, cfg, logger)
	require.NoError(t, err)
	assert.Equal(t, "ollama", client.Provider())
	assert.Equal(t, "qwen3", client.Model())

	cfg.LLM.Provider = "gemini"
	cfg.LLM.GeminiKey = "test-key"
	client, err = NewClient(ctx, cfg, logger)
	require.NoError(t, err)
	assert.Equal(t, "gemini", client.Provider())
	assert.Equal(t, defaultGeminiModel, client.Model(), "ollama model replaced")

	cfg.LLM.Provider = "openai"
	_, err = NewClient(ctx, cfg, logger)
	assert.Error(t, err)
}

func TestRunTUI_RequiresTerminal(t *testing.T) {
	if IsTTY() && IsStdoutTTY() {
		t.Skip("running in a terminal")
	}
	ta := newTestApp(t)
	called := false
	ta.RunTUI = func(context.Context, chat.Options) error {
		called = true
		return nil
	}

	err := ta.run()
	require.Error(t, err)
	assert.False(t, called)
}

func TestJSONResponse(t *testing.T) {
	var buf bytes.Buffer
	err := writeJSON(&buf, "test", func() (interface{}, error) {
		return nil, errors.New("bad")
	})
	require.Error(t, err)

	resp := decode(t, buf.Bytes(), nil)
	assert.False(t, resp.Success)
	assert.Equal(t, "test", resp.Command)
	_, err = time.Parse(time.RFC3339, resp.Timestamp)
	assert.NoError(t, err)
}
