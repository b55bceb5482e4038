// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package autocomplete provides inline legal-phrase completion.
//
// On every keystroke the editor takes the text before the caret, extracts
// the partial word being typed and asks the dictionary for a completion. The
// suggestion's remainder is shown as ghost text and spliced in on accept.
//
// # Key Types
//
//   - Dictionary: immutable phrase table with a folded-rune prefix index
//   - Entry: a phrase and its shorthand aliases
//   - Suggestion: the winning phrase and the remainder to insert
//   - Provider: current dictionary holder with memoization and file watching
//
// # Matching Rules
//
// Comparison uses Turkish case folding (İ/i and I/ı are distinct pairs) and
// keeps diacritics. When several phrases match, an exact alias hit wins, then
// the shortest phrase, then the one registered first.
//
// # Usage
//
//	dict := autocomplete.Builtin()
//	fragment, s := dict.Complete("Sayın Mah", "")
//	if s != nil {
//	    fmt.Println(fragment + s.Remainder) // Mahkeme
//	}
//
// Load a custom phrase list and follow edits to it:
//
//	d, err := autocomplete.LoadFile("phrases.toml")
//	p := autocomplete.NewProvider(d, logger)
//	err = p.Watch(ctx, "phrases.toml")
package autocomplete
