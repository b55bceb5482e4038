// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dilekce/dilekce-tui/internal/mode"
	"github.com/dilekce/dilekce-tui/internal/model"
	"github.com/dilekce/dilekce-tui/internal/prompt"
)

func TestApplyModeChange(t *testing.T) {
	s := model.NewSessionState()

	next := ApplyModeChange(s, mode.Yazdir)
	assert.Equal(t, mode.Yazdir, next.Mode)
	assert.Equal(t, mode.Sor, s.Mode, "input must not change")

	fallback := ApplyModeChange(next, mode.Mode("bilinmeyen"))
	assert.Equal(t, mode.Sor, fallback.Mode)

	same := ApplyModeChange(s, mode.Sor)
	assert.Equal(t, s.UpdatedAt, same.UpdatedAt)
}

func TestCycleMode_ThreeStepsReturn(t *testing.T) {
	s := model.NewSessionState()
	for _, m := range mode.All() {
		s = ApplyModeChange(s, m)
		got := CycleMode(CycleMode(CycleMode(s)))
		assert.Equal(t, m, got.Mode)
	}

	assert.Equal(t, mode.Ozetle, CycleMode(nil).Mode)
}

func TestAppendMessage(t *testing.T) {
	s := model.NewSessionState()

	next := AppendMessage(s, model.NewUserMessage("Kira artışı nasıl hesaplanır?"))
	require.Len(t, next.Messages, 1)
	assert.Empty(t, s.Messages, "input must not change")
	assert.Equal(t, "Kira artışı nasıl hesaplanır?", next.Title)
	assert.Positive(t, next.TokensUsed)

	unchanged := AppendMessage(next, model.NewUserMessage("   "))
	assert.Len(t, unchanged.Messages, 1)

	invalid := AppendMessage(next, model.ChatMessage{Role: "tool", Content: "x"})
	assert.Len(t, invalid.Messages, 1)

	system := AppendMessage(next, model.NewSystemMessage("başka talimat"))
	assert.Len(t, system.Messages, 1)
}

func TestAppendMessage_DoesNotShareBackingArray(t *testing.T) {
	s := model.NewSessionState()
	s.Messages = make([]model.ChatMessage, 0, 4)
	s = AppendMessage(s, model.NewUserMessage("a"))

	b := AppendMessage(s, model.NewAssistantMessage("b"))
	c := AppendMessage(s, model.NewAssistantMessage("c"))

	assert.Equal(t, "b", b.Messages[1].Content)
	assert.Equal(t, "c", c.Messages[1].Content)
}

func TestRestore(t *testing.T) {
	loaded := &model.SessionState{
		ID:       "abc",
		Mode:     mode.Mode("eski"),
		Messages: []model.ChatMessage{model.NewUserMessage("soru")},
	}

	got := Restore(loaded)
	assert.Equal(t, "abc", got.ID)
	assert.Equal(t, mode.Sor, got.Mode)
	assert.Equal(t, "soru", got.Title)
	assert.Equal(t, model.DefaultContextWindow, got.ContextWindow)
	assert.Equal(t, mode.Mode("eski"), loaded.Mode, "input must not change")

	withSystem := Restore(&model.SessionState{
		ID:   "eski",
		Mode: mode.Sor,
		Messages: []model.ChatMessage{
			model.NewSystemMessage("eski talimat"),
			model.NewUserMessage("a"),
			model.NewAssistantMessage("b"),
		},
	})
	assert.Equal(t, []model.ChatMessage{model.NewUserMessage("a"), model.NewAssistantMessage("b")}, withSystem.Messages)

	empty := Restore(&model.SessionState{ID: "x", Mode: mode.Ozetle})
	assert.NotNil(t, empty.Messages)
	assert.Equal(t, mode.Ozetle, empty.Mode)
}

func TestRestoredSession_AssemblesSingleSystemMessage(t *testing.T) {
	s := Restore(&model.SessionState{
		ID:   "eski",
		Mode: mode.Sor,
		Messages: []model.ChatMessage{
			model.NewSystemMessage("eski talimat"),
			model.NewUserMessage("a"),
			model.NewAssistantMessage("b"),
		},
	})
	s = AppendMessage(s, model.NewSystemMessage("başka"))

	got := prompt.Assemble(prompt.Input{Mode: s.Mode, UserInput: "c", History: s.Messages})

	require.Len(t, got, 4)
	for i, msg := range got {
		if i == 0 {
			assert.Equal(t, model.RoleSystem, msg.Role)
			continue
		}
		assert.NotEqual(t, model.RoleSystem, msg.Role, "index %d", i)
	}
}

func TestReset(t *testing.T) {
	s := model.NewSessionState()
	s = ApplyModeChange(s, mode.Ozetle)
	s = AppendMessage(s, model.NewUserMessage("a"))
	s.Model = "qwen3"

	next := Reset(s)
	assert.NotEqual(t, s.ID, next.ID)
	assert.Empty(t, next.Messages)
	assert.Empty(t, next.Title)
	assert.Equal(t, mode.Ozetle, next.Mode)
	assert.Equal(t, "qwen3", next.Model)

	assert.Equal(t, mode.Sor, Reset(nil).Mode)
}
