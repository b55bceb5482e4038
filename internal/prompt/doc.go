// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package prompt assembles mode-aware chat requests.
//
// A request is the mode's system instruction, followed by the conversation
// history, followed by the new user turn. An attached context document is
// appended to the user turn after a separator and label.
//
// # Usage
//
//	req := prompt.Build(prompt.Input{
//	    Mode:        mode.Ozetle,
//	    UserInput:   "Kararı özetle",
//	    ContextText: decisionText,
//	    History:     state.Messages,
//	})
//	resp, err := client.Complete(ctx, req)
package prompt
