// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for sessions and chat messages.
//
// # Key Types
//
//   - SessionState: one drafting session with mode and history
//   - ChatMessage: a role and content pair as sent to the model
//   - Summary: lightweight listing form of a session
//   - ModelInfo: context window and provider of a known LLM
//
// # Usage
//
//	s := model.NewSessionState()
//	s.Messages = append(s.Messages, model.NewUserMessage("Kira artışı nasıl hesaplanır?"))
//	s.Refresh()
//	fmt.Println(s.Title, s.ContextPercent)
package model
