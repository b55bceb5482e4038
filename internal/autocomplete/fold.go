// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package autocomplete provides inline legal-phrase completion.
package autocomplete

import (
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// =============================================================================
// TURKISH CASE FOLDING
// =============================================================================

// Normalize returns s in Unicode NFC form. A decomposed "I" + U+0307 becomes
// "İ", so dotted capitals fold the same way regardless of how they were typed.
func Normalize(s string) string {
	return norm.NFC.String(s)
}

// Fold lowercases s under Turkish casing rules (İ -> i, I -> ı) after NFC
// normalization. Diacritics are preserved: "Ç" folds to "ç", never "c".
//
// The result always has the same number of runes as Normalize(s), which lets
// callers map positions in the folded form back to the original text.
func Fold(s string) string {
	return string(foldRunes(Normalize(s)))
}

// foldRunes folds an already-normalized string rune by rune.
//
// A fresh Caser is built per call; cases.Caser is stateful and must not be
// shared between goroutines.
func foldRunes(s string) []rune {
	caser := cases.Lower(language.Turkish)
	out := make([]rune, 0, utf8.RuneCountInString(s))
	for _, r := range s {
		out = append(out, foldRune(caser, r))
	}
	return out
}

// foldRune lowercases a single rune, keeping the 1:1 rune mapping.
func foldRune(caser cases.Caser, r rune) rune {
	switch r {
	case 'I':
		return 'ı'
	case 'İ':
		return 'i'
	}
	if r < utf8.RuneSelf {
		return unicode.ToLower(r)
	}
	lower := caser.String(string(r))
	caser.Reset()
	if utf8.RuneCountInString(lower) != 1 {
		return unicode.ToLower(r)
	}
	lr, _ := utf8.DecodeRuneInString(lower)
	return lr
}
