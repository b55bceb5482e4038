// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the interactive drafting view of the TUI.

The view is a Bubble Tea model with three parts: a scrolling conversation,
a single-line input and a status bar.

# Phrase completion

While typing, the word before the caret is matched against the phrase
dictionary. The suggested remainder is drawn as dimmed ghost text after
the caret and Tab splices it in. Shorthand aliases replace the word
instead of extending it, so "TBK" becomes "Türk Borçlar Kanunu".

# Modes

Shift+Tab cycles sor → ozetle → yazdir. The active mode selects the system
instruction and generation options of the next request and is shown as a
colored badge in the header.

# Streaming

A submitted turn streams through llm.Client.Stream. Deltas are collected
in a StreamingBuffer and drawn at a capped frame rate; the exchange joins
the session history only when the answer completes. Esc cancels.

# Persistence

With autosave on, a session.Saver subscribed to the store writes every
change to the history store in the background. Save failures appear in the
status bar.

# Key Bindings

	Enter       Send
	Tab         Accept suggestion
	Shift+Tab   Next mode
	Esc         Cancel answer / dismiss error
	PgUp/PgDn   Scroll
	Ctrl+N      New session
	Ctrl+S      Save session
	F1          Help
	Ctrl+C      Quit

# Slash Commands

	/mode [name]   Switch mode, or cycle without a name
	/new           New session
	/save          Save session
	/load <id>     Continue a stored session
	/quit          Quit
*/
package chat
