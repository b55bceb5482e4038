// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for sessions and chat messages.
package model

import (
	"fmt"
	"sort"
	"strings"
)

// =============================================================================
// MODEL INFO TYPE
// =============================================================================

// ModelInfo describes an LLM model known to the application.
type ModelInfo struct {
	// ID is the model identifier used in API calls.
	ID string `json:"id"`

	// Name is the human-readable display name.
	Name string `json:"name"`

	// Provider is "ollama" or "gemini".
	Provider string `json:"provider"`

	// ContextWindow is the context size in tokens.
	ContextWindow int `json:"context_window"`

	// Reasoning is true when the model accepts a thinking budget.
	Reasoning bool `json:"reasoning,omitempty"`
}

// Models is the registry of well-known models keyed by ID.
var Models = map[string]ModelInfo{
	"gemini-2.5-flash": {
		ID: "gemini-2.5-flash", Name: "Gemini 2.5 Flash", Provider: "gemini",
		ContextWindow: 1048576, Reasoning: true,
	},
	"gemini-2.5-pro": {
		ID: "gemini-2.5-pro", Name: "Gemini 2.5 Pro", Provider: "gemini",
		ContextWindow: 1048576, Reasoning: true,
	},
	"gemini-2.0-flash": {
		ID: "gemini-2.0-flash", Name: "Gemini 2.0 Flash", Provider: "gemini",
		ContextWindow: 1048576,
	},
	"qwen3": {
		ID: "qwen3", Name: "Qwen 3", Provider: "ollama",
		ContextWindow: 40960, Reasoning: true,
	},
	"qwen2.5": {
		ID: "qwen2.5", Name: "Qwen 2.5", Provider: "ollama",
		ContextWindow: 32768,
	},
	"llama3.1": {
		ID: "llama3.1", Name: "Llama 3.1", Provider: "ollama",
		ContextWindow: 131072,
	},
	"gemma3": {
		ID: "gemma3", Name: "Gemma 3", Provider: "ollama",
		ContextWindow: 131072,
	},
	"deepseek-r1": {
		ID: "deepseek-r1", Name: "DeepSeek R1", Provider: "ollama",
		ContextWindow: 131072, Reasoning: true,
	},
}

// =============================================================================
// LOOKUP
// =============================================================================

// GetModelInfo looks up a model by ID. Ollama tags are ignored, so
// "qwen2.5:7b" resolves to "qwen2.5".
func GetModelInfo(nameOrID string) (ModelInfo, bool) {
	id := strings.ToLower(strings.TrimSpace(nameOrID))
	if info, ok := Models[id]; ok {
		return info, true
	}
	if base, _, found := strings.Cut(id, ":"); found {
		if info, ok := Models[base]; ok {
			return info, true
		}
	}
	return ModelInfo{}, false
}

// ContextWindowFor returns the context window of the named model, or
// DefaultContextWindow when unknown.
func ContextWindowFor(nameOrID string) int {
	if info, ok := GetModelInfo(nameOrID); ok && info.ContextWindow > 0 {
		return info.ContextWindow
	}
	return DefaultContextWindow
}

// GetModelsByProvider returns the models of a provider sorted by ID.
func GetModelsByProvider(provider string) []ModelInfo {
	var out []ModelInfo
	for _, m := range Models {
		if strings.EqualFold(m.Provider, provider) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ContextString returns a short human-readable context size, e.g. "128K".
func (m ModelInfo) ContextString() string {
	switch {
	case m.ContextWindow >= 1000000:
		return fmt.Sprintf("%dM", m.ContextWindow/1000000)
	case m.ContextWindow >= 1000:
		return fmt.Sprintf("%dK", m.ContextWindow/1000)
	default:
		return fmt.Sprintf("%d", m.ContextWindow)
	}
}
