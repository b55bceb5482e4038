// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package autocomplete provides inline legal-phrase completion.
package autocomplete

import (
	"unicode"
	"unicode/utf8"
)

// ExtractFragment returns the partial word the user is typing: the run of
// non-whitespace runes at the end of textBeforeCaret. It returns "" when the
// text is empty or ends in whitespace.
//
// Only the trailing run is scanned, so the cost does not grow with the size
// of the document.
func ExtractFragment(textBeforeCaret string) string {
	end := len(textBeforeCaret)
	i := end
	for i > 0 {
		r, size := utf8.DecodeLastRuneInString(textBeforeCaret[:i])
		if unicode.IsSpace(r) {
			break
		}
		i -= size
	}
	return textBeforeCaret[i:end]
}

// SplitAtCaret splits text at a rune offset into the text before and after
// the caret. Offsets outside the text are clamped.
func SplitAtCaret(text string, caret int) (before, after string) {
	if caret <= 0 {
		return "", text
	}
	n := 0
	for i := range text {
		if n == caret {
			return text[:i], text[i:]
		}
		n++
	}
	return text, ""
}
