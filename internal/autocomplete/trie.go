// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package autocomplete provides inline legal-phrase completion.
package autocomplete

import "slices"

// trieNode is a node of the folded-rune prefix index.
//
// ranked holds every entry with a key (target or alias) passing through this
// node, ordered by target length then registration order. aliasEnds holds the
// entries with an alias ending exactly here, in the same order.
type trieNode struct {
	children  map[rune]*trieNode
	ranked    []int
	aliasEnds []int
}

func newTrieNode() *trieNode {
	return &trieNode{children: make(map[rune]*trieNode)}
}

// insert indexes key for entry i. Entries must be inserted in registration
// order so that each list is already sorted by ordinal.
func (n *trieNode) insert(i int, key []rune, alias bool) {
	node := n
	for _, r := range key {
		child, ok := node.children[r]
		if !ok {
			child = newTrieNode()
			node.children[r] = child
		}
		node = child
		if last := len(node.ranked) - 1; last < 0 || node.ranked[last] != i {
			node.ranked = append(node.ranked, i)
		}
	}
	if alias && len(key) > 0 {
		if last := len(node.aliasEnds) - 1; last < 0 || node.aliasEnds[last] != i {
			node.aliasEnds = append(node.aliasEnds, i)
		}
	}
}

// rank sorts every list by target length, keeping registration order for
// equal lengths.
func (n *trieNode) rank(entries []indexedEntry) {
	byLength := func(a, b int) int {
		return len(entries[a].target) - len(entries[b].target)
	}
	stack := []*trieNode{n}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		slices.SortStableFunc(node.ranked, byLength)
		slices.SortStableFunc(node.aliasEnds, byLength)
		for _, child := range node.children {
			stack = append(stack, child)
		}
	}
}

// find walks key from n and returns the node it ends on, or nil.
func (n *trieNode) find(key []rune) *trieNode {
	node := n
	for _, r := range key {
		next, ok := node.children[r]
		if !ok {
			return nil
		}
		node = next
	}
	return node
}
