// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the interactive drafting view of the TUI.
package chat

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/dilekce/dilekce-tui/internal/autocomplete"
	"github.com/dilekce/dilekce-tui/internal/llm"
	"github.com/dilekce/dilekce-tui/internal/logging"
	"github.com/dilekce/dilekce-tui/internal/model"
	"github.com/dilekce/dilekce-tui/internal/session"
	"github.com/dilekce/dilekce-tui/internal/storage"
	"github.com/dilekce/dilekce-tui/internal/ui/styles"
)

// maxInputLength bounds a single user turn in runes.
const maxInputLength = 8192

// =============================================================================
// OPTIONS
// =============================================================================

// Completer proposes a phrase completion for the text around the caret.
// *autocomplete.Provider implements it.
type Completer interface {
	Complete(before, after string) (string, *autocomplete.Suggestion)
}

// Options configures the chat view.
type Options struct {
	Client     llm.Client
	Dictionary Completer

	// History stores sessions. Nil disables saving and loading.
	History storage.HistoryStore

	// Initial is the starting session. Nil starts an empty one.
	Initial *model.SessionState

	// Autosave writes every session change through a Saver using Saver.
	Autosave bool
	Saver    session.SaverConfig

	GhostText  bool
	ShowTokens bool
	Theme      string

	Logger *zap.Logger
}

// =============================================================================
// CHAT STATE
// =============================================================================

// State represents the current state of the chat view.
type State int

const (
	StateReady     State = iota // Ready for input
	StateStreaming              // Receiving an answer
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view.
type Model struct {
	ctx    context.Context
	opts   Options
	logger *zap.Logger

	// Session
	store       *session.Store
	saver       *session.Saver
	unsubscribe func()
	saveErrs    chan error

	// UI components
	theme    *styles.Theme
	keys     KeyMap
	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	markdown *markdownRenderer

	width  int
	height int
	ready  bool

	// Streaming
	state        State
	stream       *streamJob
	nextStreamID int
	pendingInput string
	partial      string

	// Completion
	fragment   string
	suggestion *autocomplete.Suggestion

	// Status
	lastStats string
	statusMsg string
	lastError error
	showHelp  bool
}

// New creates the chat view. Call Close when the program exits.
func New(ctx context.Context, opts Options) Model {
	logger := logging.OrNop(opts.Logger)

	initial := opts.Initial
	if initial == nil {
		initial = model.NewSessionState()
	}

	ti := textinput.New()
	ti.Prompt = "› "
	ti.Placeholder = "Sorunuzu veya olayı yazın..."
	ti.CharLimit = maxInputLength
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	theme := styles.NewTheme(opts.Theme)
	ti.PromptStyle = theme.InputPrompt
	ti.PlaceholderStyle = theme.Hint

	m := Model{
		ctx:      ctx,
		opts:     opts,
		logger:   logger,
		store:    session.NewStore(session.Restore(initial)),
		theme:    theme,
		keys:     DefaultKeyMap(),
		input:    ti,
		viewport: viewport.New(80, 20),
		spinner:  sp,
		markdown: newMarkdownRenderer(theme.IsDark),
	}

	if opts.Autosave && opts.History != nil {
		m.saveErrs = make(chan error, 1)
		cfg := opts.Saver
		saveErrs := m.saveErrs
		cfg.OnError = func(err error) {
			select {
			case saveErrs <- err:
			default:
			}
		}
		if cfg.Logger == nil {
			cfg.Logger = logger
		}
		m.saver = session.NewSaver(opts.History, cfg)
		m.unsubscribe = m.store.Subscribe(m.saver.Listener())
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForSaveError())
}

// Session returns the current session state.
func (m Model) Session() *model.SessionState {
	return m.store.State()
}

// Close stops a running stream and flushes pending saves.
func (m Model) Close() {
	if m.stream != nil {
		m.stream.stop()
	}
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
	if m.saver != nil {
		m.saver.Close()
	}
}

// waitForSaveError delivers the next background save failure.
func (m Model) waitForSaveError() tea.Cmd {
	if m.saveErrs == nil {
		return nil
	}
	ch := m.saveErrs
	ctx := m.ctx
	return func() tea.Msg {
		select {
		case err := <-ch:
			return SaveErrorMsg{Err: err}
		case <-ctx.Done():
			return nil
		}
	}
}

// =============================================================================
// PROGRAM
// =============================================================================

// Run starts the chat view full screen and blocks until it exits or ctx
// ends.
func Run(ctx context.Context, opts Options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := New(ctx, opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()

	// The final model owns the latest stream and saver state.
	if fm, ok := final.(Model); ok {
		fm.Close()
	} else {
		m.Close()
	}

	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
