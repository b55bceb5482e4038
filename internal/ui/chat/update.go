// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the interactive drafting view of the TUI.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/dilekce/dilekce-tui/internal/autocomplete"
	"github.com/dilekce/dilekce-tui/internal/mode"
	"github.com/dilekce/dilekce-tui/internal/model"
	"github.com/dilekce/dilekce-tui/internal/prompt"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if m.state != StateStreaming {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case StreamTickMsg:
		return m.handleStreamTick()

	case StreamDoneMsg:
		return m.handleStreamDone(msg)

	case SessionSavedMsg:
		if msg.Err != nil {
			m.lastError = msg.Err
		} else {
			m.statusMsg = "Kaydedildi: " + msg.Session.ID
		}
		return m, nil

	case SessionLoadedMsg:
		if msg.Err != nil {
			m.lastError = msg.Err
			return m, nil
		}
		next := m.store.Restore(msg.Session)
		m.statusMsg = fmt.Sprintf("Yüklendi: %s (%d mesaj)", next.DisplayTitle(), len(next.Messages))
		m.refreshViewport(true)
		return m, nil

	case SaveErrorMsg:
		m.lastError = fmt.Errorf("otomatik kayıt: %w", msg.Err)
		return m, m.waitForSaveError()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// KEYS
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.stream != nil {
			m.stream.stop()
		}
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.Cancel):
		switch {
		case m.stream != nil:
			m.stream.stop()
			m.statusMsg = "Durduruluyor..."
		case m.lastError != nil:
			m.lastError = nil
		default:
			m.suggestion = nil
		}
		return m, nil

	case key.Matches(msg, m.keys.Accept):
		m.acceptSuggestion()
		return m, nil

	case key.Matches(msg, m.keys.CycleMode):
		next := m.store.CycleMode()
		m.statusMsg = "Mod: " + next.Mode.Label()
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		return m.submit()

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfViewDown()
		return m, nil

	case key.Matches(msg, m.keys.NewSession):
		return m.newSession(), nil

	case key.Matches(msg, m.keys.Save):
		return m, m.saveCmd()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.refreshSuggestion()
	return m, cmd
}

// =============================================================================
// COMPLETION
// =============================================================================

// refreshSuggestion matches the word before the caret.
func (m *Model) refreshSuggestion() {
	m.fragment, m.suggestion = "", nil
	if !m.opts.GhostText || m.opts.Dictionary == nil {
		return
	}
	before, after := autocomplete.SplitAtCaret(m.input.Value(), m.input.Position())
	m.fragment, m.suggestion = m.opts.Dictionary.Complete(before, after)
}

// acceptSuggestion splices the current suggestion in at the caret.
func (m *Model) acceptSuggestion() {
	if m.suggestion == nil {
		return
	}
	before, after := autocomplete.SplitAtCaret(m.input.Value(), m.input.Position())
	text, caret := m.suggestion.Apply(before, after)
	m.input.SetValue(text)
	m.input.SetCursor(caret)
	m.refreshSuggestion()
}

// =============================================================================
// SUBMIT AND COMMANDS
// =============================================================================

func (m Model) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" || m.state == StateStreaming {
		return m, nil
	}
	m.input.Reset()
	m.suggestion = nil

	if strings.HasPrefix(text, "/") {
		return m.command(text)
	}

	state := m.store.State()
	req := prompt.Build(prompt.Input{
		Mode:      state.Mode,
		UserInput: text,
		History:   state.Messages,
	})

	m.nextStreamID++
	job, run := startStream(m.ctx, m.nextStreamID, m.opts.Client, req)
	m.stream = job
	m.state = StateStreaming
	m.pendingInput = text
	m.partial = ""
	m.lastError = nil
	m.statusMsg = ""
	m.refreshViewport(true)

	m.logger.Debug("request started",
		zap.Int("stream", job.id),
		zap.String("mode", req.Mode.String()),
		zap.Int("messages", len(req.Messages)))

	return m, tea.Batch(run, streamTickCmd(), m.spinner.Tick)
}

// command runs a slash command.
func (m Model) command(line string) (tea.Model, tea.Cmd) {
	parts := strings.Fields(line)
	args := parts[1:]

	switch strings.ToLower(parts[0]) {
	case "/mode", "/m":
		var next *model.SessionState
		if len(args) == 0 {
			next = m.store.CycleMode()
		} else {
			md, ok := mode.Parse(args[0])
			if !ok {
				m.lastError = fmt.Errorf("bilinmeyen mod %q (sor, ozetle, yazdir)", args[0])
				return m, nil
			}
			next = m.store.SetMode(md)
		}
		m.statusMsg = "Mod: " + next.Mode.Label()

	case "/new", "/yeni", "/clear":
		return m.newSession(), nil

	case "/save":
		return m, m.saveCmd()

	case "/load":
		if len(args) != 1 {
			m.lastError = errors.New("kullanım: /load <id>")
			return m, nil
		}
		return m, m.loadCmd(args[0])

	case "/help":
		m.showHelp = true

	case "/quit", "/q", "/exit":
		return m, tea.Quit

	default:
		m.lastError = fmt.Errorf("bilinmeyen komut %s", parts[0])
	}
	return m, nil
}

func (m Model) newSession() Model {
	if m.state == StateStreaming {
		return m
	}
	m.store.Reset()
	m.lastStats = ""
	m.lastError = nil
	m.statusMsg = "Yeni oturum"
	m.refreshViewport(true)
	return m
}

func (m Model) saveCmd() tea.Cmd {
	history := m.opts.History
	if history == nil {
		return func() tea.Msg { return SessionSavedMsg{Err: errors.New("oturum deposu yok")} }
	}
	state := m.store.State()
	ctx := m.ctx
	return func() tea.Msg {
		saved, err := history.Save(ctx, state)
		return SessionSavedMsg{Session: saved, Err: err}
	}
}

func (m Model) loadCmd(id string) tea.Cmd {
	history := m.opts.History
	if history == nil {
		return func() tea.Msg { return SessionLoadedMsg{Err: errors.New("oturum deposu yok")} }
	}
	ctx := m.ctx
	return func() tea.Msg {
		s, err := history.Load(ctx, id)
		return SessionLoadedMsg{Session: s, Err: err}
	}
}

// =============================================================================
// STREAMING
// =============================================================================

func (m Model) handleStreamTick() (tea.Model, tea.Cmd) {
	if m.stream == nil {
		return m, nil
	}
	if delta, ok := m.stream.buffer.Flush(); ok {
		m.partial += delta
		m.refreshViewport(m.viewport.AtBottom())
	}
	return m, streamTickCmd()
}

func (m Model) handleStreamDone(msg StreamDoneMsg) (tea.Model, tea.Cmd) {
	if m.stream == nil || msg.ID != m.stream.id {
		return m, nil
	}
	job := m.stream
	if delta, ok := job.buffer.ForceFlush(); ok {
		m.partial += delta
	}
	m.stream = nil
	m.state = StateReady

	switch {
	case errors.Is(msg.Err, context.Canceled):
		m.statusMsg = "Yanıt durduruldu"
		m.input.SetValue(m.pendingInput)
		m.input.CursorEnd()
	case msg.Err != nil:
		m.lastError = msg.Err
		m.input.SetValue(m.pendingInput)
		m.input.CursorEnd()
		m.logger.Warn("request failed", zap.Int("stream", msg.ID), zap.Error(msg.Err))
	default:
		m.store.Append(model.NewUserMessage(m.pendingInput))
		next := m.store.Append(msg.Response.Message())
		m.lastStats = msg.Response.Stats()
		if next.IsContextCritical() {
			m.statusMsg = "Bağlam penceresi dolmak üzere; Ctrl+N ile yeni oturum açın"
		}
	}

	m.pendingInput = ""
	m.partial = ""
	m.refreshViewport(true)
	return m, nil
}
