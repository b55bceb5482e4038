// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package autocomplete provides inline legal-phrase completion.
package autocomplete

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// =============================================================================
// ENTRY TYPE
// =============================================================================

// Entry is a known legal phrase together with optional shorthand aliases.
type Entry struct {
	// Target is the canonical phrase inserted on completion (e.g. "Sayın Mahkeme").
	Target string `toml:"target" yaml:"target" json:"target"`

	// Aliases are alternative keys that also select Target (e.g. "SM").
	Aliases []string `toml:"aliases,omitempty" yaml:"aliases,omitempty" json:"aliases,omitempty"`
}

// ErrEmptyTarget is returned when an entry has no usable target phrase.
var ErrEmptyTarget = errors.New("dictionary entry has empty target")

// indexedEntry is an Entry with its precomputed normalized and folded forms.
type indexedEntry struct {
	Entry
	target  []rune // NFC runes in dictionary casing
	folded  []rune // Turkish-folded target, same length as target
	aliases [][]rune
}

// =============================================================================
// DICTIONARY
// =============================================================================

// Dictionary is an immutable phrase table with a prefix index.
//
// A Dictionary is safe for concurrent use; nothing mutates it after New
// returns. To change the phrase set, build a new Dictionary (see Provider).
type Dictionary struct {
	entries []indexedEntry
	root    *trieNode
}

// New builds a Dictionary from entries. Registration order is preserved and
// used as the final tie-break when several phrases match equally well.
func New(entries []Entry) (*Dictionary, error) {
	d := &Dictionary{
		entries: make([]indexedEntry, 0, len(entries)),
		root:    newTrieNode(),
	}

	for i, e := range entries {
		target := Normalize(strings.TrimSpace(e.Target))
		if target == "" {
			return nil, fmt.Errorf("entry %d: %w", i, ErrEmptyTarget)
		}

		ie := indexedEntry{
			Entry:  Entry{Target: target},
			target: []rune(target),
			folded: foldRunes(target),
		}
		for _, alias := range e.Aliases {
			alias = Normalize(strings.TrimSpace(alias))
			if alias == "" {
				continue
			}
			ie.Aliases = append(ie.Aliases, alias)
			ie.aliases = append(ie.aliases, foldRunes(alias))
		}
		d.entries = append(d.entries, ie)
	}

	for i := range d.entries {
		d.root.insert(i, d.entries[i].folded, false)
		for _, alias := range d.entries[i].aliases {
			d.root.insert(i, alias, true)
		}
	}
	d.root.rank(d.entries)

	return d, nil
}

// MustNew is like New but panics on error. Intended for static tables.
func MustNew(entries []Entry) *Dictionary {
	d, err := New(entries)
	if err != nil {
		panic(err)
	}
	return d
}

// Len returns the number of registered entries.
func (d *Dictionary) Len() int {
	if d == nil {
		return 0
	}
	return len(d.entries)
}

// Entries returns a copy of the registered entries in registration order.
func (d *Dictionary) Entries() []Entry {
	if d == nil {
		return nil
	}
	out := make([]Entry, len(d.entries))
	for i, e := range d.entries {
		out[i] = Entry{Target: e.Target, Aliases: append([]string(nil), e.Aliases...)}
	}
	return out
}

// =============================================================================
// SUGGESTION TYPE
// =============================================================================

// Suggestion is a proposed completion of the current fragment.
type Suggestion struct {
	// Target is the full dictionary phrase.
	Target string `json:"target"`

	// Remainder is the text to insert after the fragment. It is never empty.
	// For a prefix match, fragment + Remainder spells Target (in dictionary
	// casing). Alias replacements are the exception: Remainder equals Target
	// and the fragment is removed first, so fragment + Remainder does not
	// form Target. Use Apply rather than concatenating.
	Remainder string `json:"remainder"`

	// Alias is true when the fragment matched a shorthand alias that is not
	// a prefix of Target. The fragment is then replaced rather than extended.
	Alias bool `json:"alias,omitempty"`
}

// Apply splices the suggestion into the text around the caret and returns
// the new text and the caret position (in runes) just after the insertion.
func (s *Suggestion) Apply(before, after string) (string, int) {
	if s == nil {
		return before + after, utf8.RuneCountInString(before)
	}
	if s.Alias {
		before = before[:len(before)-len(ExtractFragment(before))]
	}
	before += s.Remainder
	return before + after, utf8.RuneCountInString(before)
}

// =============================================================================
// MATCHING
// =============================================================================

// Match returns the best completion for fragment, or nil when there is none.
//
// Candidates are entries whose folded target or any folded alias starts with
// the folded fragment. Entries the fragment already spells out completely are
// skipped. Among the rest, an entry with an alias exactly equal to the
// fragment wins, then the shortest target, then the earliest registered.
//
// trailingText is the text after the caret. When it already begins with the
// remainder, the suggestion is suppressed so the completion does not
// duplicate adjacent text.
func (d *Dictionary) Match(fragment, trailingText string) *Suggestion {
	best := d.match(fragment)
	if best == nil || collides(best, trailingText) {
		return nil
	}
	return best
}

// match resolves the best candidate for fragment without looking at the text
// after the caret.
func (d *Dictionary) match(fragment string) *Suggestion {
	if d == nil || fragment == "" {
		return nil
	}

	key := foldRunes(Normalize(fragment))
	node := d.root.find(key)
	if node == nil {
		return nil
	}

	for _, i := range node.aliasEnds {
		if s := d.suggest(i, key); s != nil {
			return s
		}
	}
	for _, i := range node.ranked {
		if s := d.suggest(i, key); s != nil {
			return s
		}
	}
	return nil
}

// collides reports whether the text after the caret already starts with the
// suggested remainder.
func collides(s *Suggestion, trailingText string) bool {
	if trailingText == "" {
		return false
	}
	return hasRunePrefix(foldRunes(Normalize(trailingText)), foldRunes(s.Remainder))
}

// Complete extracts the fragment before the caret and matches it.
func (d *Dictionary) Complete(before, after string) (string, *Suggestion) {
	fragment := ExtractFragment(before)
	return fragment, d.Match(fragment, after)
}

// suggest builds the suggestion for entry i given the folded fragment key,
// or returns nil when the entry cannot complete it.
func (d *Dictionary) suggest(i int, key []rune) *Suggestion {
	e := &d.entries[i]
	if hasRunePrefix(e.folded, key) {
		if len(e.folded) == len(key) {
			return nil
		}
		return &Suggestion{Target: e.Target, Remainder: string(e.target[len(key):])}
	}
	return &Suggestion{Target: e.Target, Remainder: e.Target, Alias: true}
}

// hasRunePrefix reports whether s begins with prefix.
func hasRunePrefix(s, prefix []rune) bool {
	if len(prefix) > len(s) {
		return false
	}
	for i, r := range prefix {
		if s[i] != r {
			return false
		}
	}
	return true
}
