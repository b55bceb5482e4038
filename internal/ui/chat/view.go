// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the interactive drafting view of the TUI.
package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dilekce/dilekce-tui/internal/model"
	"github.com/dilekce/dilekce-tui/internal/ui/styles"
	"github.com/dilekce/dilekce-tui/internal/util"
)

// chromeHeight is the number of lines outside the viewport: header, input
// border, input, hint and status bar.
const chromeHeight = 5

// =============================================================================
// LAYOUT
// =============================================================================

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.theme.SetSize(width, height)
	m.viewport.Width = width
	m.viewport.Height = max(height-chromeHeight, 1)
	m.input.Width = max(width-6, 10)
	m.ready = true
	m.refreshViewport(m.viewport.AtBottom())
}

// refreshViewport re-renders the conversation. With follow the view
// scrolls to the newest line.
func (m *Model) refreshViewport(follow bool) {
	m.viewport.SetContent(m.renderConversation())
	if follow {
		m.viewport.GotoBottom()
	}
}

// =============================================================================
// VIEW
// =============================================================================

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Yükleniyor..."
	}
	if m.showHelp {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.renderHelp())
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.viewport.View(),
		m.theme.InputContainer.Width(m.width).Render(m.renderInput()),
		m.renderHint(),
		m.renderStatus(),
	)
}

func (m Model) renderHeader() string {
	state := m.store.State()
	left := m.theme.HeaderTitle.Render("dilekce") + " " + m.theme.ModeBadge(state.Mode)

	info := ""
	if m.opts.Client != nil {
		info = m.opts.Client.Provider() + "/" + m.opts.Client.Model()
	}
	if m.theme.GetLayoutMode() != styles.LayoutNarrow {
		info = util.TruncateWidth(state.DisplayTitle(), 30) + " · " + info
	}
	right := m.theme.HeaderInfo.Render(info)

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return m.theme.Header.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (m Model) renderConversation() string {
	width := max(m.viewport.Width-2, 20)
	state := m.store.State()

	var blocks []string
	for _, msg := range state.Messages {
		blocks = append(blocks, m.renderMessage(msg, width))
	}
	if m.pendingInput != "" {
		blocks = append(blocks, m.renderMessage(model.NewUserMessage(m.pendingInput), width))
		body := m.partial
		if body == "" {
			body = m.spinner.View() + " düşünüyor..."
		}
		blocks = append(blocks,
			m.theme.AssistantLabel.Render(model.RoleAssistant.DisplayName())+"\n"+
				m.theme.UserText.Width(width).Render(body))
	}
	if len(blocks) == 0 {
		return m.theme.Hint.Render(emptyHint(state.Mode.Label()))
	}
	return strings.Join(blocks, "\n\n")
}

func (m Model) renderMessage(msg model.ChatMessage, width int) string {
	switch msg.Role {
	case model.RoleAssistant:
		return m.theme.AssistantLabel.Render(msg.Role.DisplayName()) + "\n" +
			m.markdown.Render(msg.Content, width)
	default:
		return m.theme.UserLabel.Render(msg.Role.DisplayName()) + "\n" +
			m.theme.UserText.Width(width).Render(msg.Content)
	}
}

func emptyHint(label string) string {
	return fmt.Sprintf("Mod: %s. Yazmaya başlayın; Tab ifadeyi tamamlar, Shift+Tab modu değiştirir.", label)
}

// renderInput draws the input with the suggestion as ghost text when the
// caret is at the end of the line.
func (m Model) renderInput() string {
	view := m.input.View()
	if m.suggestion != nil && m.input.Position() == len([]rune(m.input.Value())) {
		view += m.theme.Ghost.Render(m.suggestion.Remainder)
	}
	return view
}

func (m Model) renderHint() string {
	if m.suggestion == nil {
		return ""
	}
	hint := "Tab → " + m.suggestion.Target
	if m.suggestion.Alias {
		hint += " (" + m.fragment + ")"
	}
	return m.theme.Hint.Render("  " + util.TruncateWidth(hint, max(m.width-2, 10)))
}

func (m Model) renderStatus() string {
	state := m.store.State()

	var left string
	switch {
	case m.lastError != nil:
		left = m.theme.StatusError.Render("Hata: " + util.OneLine(m.lastError.Error()))
	case m.state == StateStreaming:
		left = m.spinner.View() + " " + state.Mode.Label() + " yanıtı yazılıyor (Esc durdurur)"
	case m.statusMsg != "":
		left = m.statusMsg
	default:
		left = m.shortHelp()
	}

	var parts []string
	ctxText := fmt.Sprintf("bağlam %%%.0f", state.ContextPercent)
	switch {
	case state.IsContextCritical():
		ctxText = m.theme.StatusCritical.Render(ctxText)
	case state.IsContextNearLimit():
		ctxText = m.theme.StatusWarning.Render(ctxText)
	}
	parts = append(parts, ctxText)
	if m.opts.ShowTokens && m.lastStats != "" {
		parts = append(parts, m.lastStats)
	}
	right := strings.Join(parts, " · ")

	avail := m.width - lipgloss.Width(right) - 3
	left = util.TruncateWidth(left, max(avail, 0))
	gap := max(avail-lipgloss.Width(left), 1)
	return m.theme.StatusBar.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (m Model) shortHelp() string {
	var parts []string
	for _, b := range m.keys.ShortHelp() {
		h := b.Help()
		parts = append(parts, m.theme.ShortcutKey.Render(h.Key)+" "+m.theme.ShortcutDesc.Render(h.Desc))
	}
	return strings.Join(parts, "  ")
}

func (m Model) renderHelp() string {
	var sb strings.Builder
	sb.WriteString(m.theme.HeaderTitle.Render("Kısayollar") + "\n\n")
	for _, group := range m.keys.FullHelp() {
		for _, b := range group {
			h := b.Help()
			sb.WriteString(m.theme.ShortcutKey.Render(util.PadRight(h.Key, 8)) + " " + h.Desc + "\n")
		}
		sb.WriteString("\n")
	}
	sb.WriteString(m.theme.HeaderTitle.Render("Komutlar") + "\n\n")
	for _, c := range [][2]string{
		{"/mode [ad]", "modu değiştir"},
		{"/new", "yeni oturum"},
		{"/save", "oturumu kaydet"},
		{"/load <id>", "kayıtlı oturumu yükle"},
		{"/quit", "çık"},
	} {
		sb.WriteString(m.theme.ShortcutKey.Render(util.PadRight(c[0], 12)) + " " + c[1] + "\n")
	}
	sb.WriteString("\n" + m.theme.Hint.Render("Kapatmak için bir tuşa basın"))
	return m.theme.Help.Render(sb.String())
}
