// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package prompt assembles mode-aware chat requests.
package prompt

import (
	"strings"

	"github.com/dilekce/dilekce-tui/internal/mode"
	"github.com/dilekce/dilekce-tui/internal/model"
)

const (
	// ContextSeparator sits between the user's text and an attached document.
	ContextSeparator = "\n\n---\n"

	// ContextLabel introduces the attached document.
	ContextLabel = "Bağlam belgesi:"
)

// Input is everything needed to build one request.
type Input struct {
	Mode        mode.Mode
	UserInput   string
	ContextText string
	History     []model.ChatMessage
}

// Request is an assembled message list with its generation options.
type Request struct {
	Mode     mode.Mode           `json:"mode"`
	Messages []model.ChatMessage `json:"messages"`
	Options  mode.Options        `json:"options"`
}

// Assemble builds the message list for in: the mode's system message, then
// the user and assistant turns of the history in order, then the current
// user turn. System messages in the history are skipped, so the result has
// exactly one system message and it comes first. The result is a new slice;
// in.History is not modified.
func Assemble(in Input) []model.ChatMessage {
	messages := make([]model.ChatMessage, 0, len(in.History)+2)

	if sys := mode.SystemMessage(in.Mode); sys != "" {
		messages = append(messages, model.NewSystemMessage(sys))
	}
	for _, m := range in.History {
		if m.Role.InHistory() {
			messages = append(messages, m)
		}
	}
	messages = append(messages, model.NewUserMessage(UserContent(in.UserInput, in.ContextText)))

	return messages
}

// UserContent returns the user turn text with the context document attached
// when there is one.
func UserContent(userInput, contextText string) string {
	if strings.TrimSpace(contextText) == "" {
		return userInput
	}
	return userInput + ContextSeparator + ContextLabel + "\n" + contextText
}

// Build assembles the messages for in and pairs them with the mode's
// generation options. Unknown modes resolve to the default mode.
func Build(in Input) Request {
	m := in.Mode
	if !m.Valid() {
		m = mode.Default
	}
	return Request{
		Mode:     m,
		Messages: Assemble(in),
		Options:  mode.CompletionOptions(m),
	}
}

// SystemPrompt returns the content of the leading system message, if any.
func (r Request) SystemPrompt() string {
	if len(r.Messages) > 0 && r.Messages[0].Role == model.RoleSystem {
		return r.Messages[0].Content
	}
	return ""
}

// Conversation returns the messages after the leading system message.
func (r Request) Conversation() []model.ChatMessage {
	if len(r.Messages) > 0 && r.Messages[0].Role == model.RoleSystem {
		return r.Messages[1:]
	}
	return r.Messages
}
