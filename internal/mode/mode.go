// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package mode defines the writing modes and their generation settings.
package mode

import "strings"

// =============================================================================
// MODE TYPE
// =============================================================================

// Mode selects how the assistant treats a user turn.
type Mode string

const (
	// Sor answers a legal question.
	Sor Mode = "sor"

	// Ozetle summarizes the supplied text.
	Ozetle Mode = "ozetle"

	// Yazdir drafts a petition or other legal document.
	Yazdir Mode = "yazdir"

	// Default is the mode of a new session and the fallback for unknown values.
	Default = Sor
)

// Options are the generation parameters attached to a request.
type Options struct {
	Temperature     float64 `json:"temperature" toml:"temperature"`
	MaxOutputTokens int     `json:"max_output_tokens" toml:"max_output_tokens"`
	Reasoning       bool    `json:"reasoning,omitempty" toml:"reasoning"`
}

// definition is the static description of a mode.
type definition struct {
	label       string
	instruction string
	options     Options
}

// order is the mode cycle. Next walks it and wraps around.
var order = []Mode{Sor, Ozetle, Yazdir}

var definitions = map[Mode]definition{
	Sor: {
		label: "Soru",
		instruction: "Sen Türk hukukunda uzman bir hukuk asistanısın. Soruları Türkçe, " +
			"açık ve doğru biçimde yanıtla. İlgili kanun maddelerini ve yerleşik " +
			"Yargıtay içtihatlarını belirt. Emin olmadığın konularda bunu açıkça söyle.",
		options: Options{Temperature: 0.3, MaxOutputTokens: 2048},
	},
	Ozetle: {
		label: "Özet",
		instruction: "Sen Türk hukukunda uzman bir hukuk asistanısın. Verilen metni " +
			"Türkçe olarak özetle. Tarafları, talepleri, dayanılan hukuki gerekçeleri ve " +
			"sonucu maddeler halinde sırala. Metinde olmayan bilgi ekleme.",
		options: Options{Temperature: 0.2, MaxOutputTokens: 1024},
	},
	Yazdir: {
		label: "Dilekçe",
		instruction: "Sen Türk hukukunda uzman bir hukuk asistanısın. Kullanıcının " +
			"anlattığı olaya göre usule uygun bir dilekçe taslağı hazırla. Mahkeme " +
			"başlığı, taraflar, konu, açıklamalar, hukuki nedenler, deliller ve sonuç " +
			"ve istem bölümlerini eksiksiz yaz. Bilinmeyen bilgiler için köşeli " +
			"parantez içinde yer tutucu bırak.",
		options: Options{Temperature: 0.7, MaxOutputTokens: 4096, Reasoning: true},
	},
}

// =============================================================================
// REGISTRY
// =============================================================================

// All returns the modes in cycle order.
func All() []Mode {
	return append([]Mode(nil), order...)
}

// Parse resolves a mode name. Matching ignores case and surrounding space,
// and accepts the Turkish spellings "özetle" and "yazdır".
func Parse(s string) (Mode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sor":
		return Sor, true
	case "ozetle", "özetle":
		return Ozetle, true
	case "yazdir", "yazdır":
		return Yazdir, true
	}
	return Default, false
}

// Valid reports whether m is one of the known modes.
func (m Mode) Valid() bool {
	_, ok := definitions[m]
	return ok
}

// String returns the mode name.
func (m Mode) String() string {
	return string(m)
}

// Label returns the Turkish display name of the mode.
func (m Mode) Label() string {
	return lookup(m).label
}

// SystemMessage returns the system instruction for m. Unknown modes get the
// instruction of Default.
func SystemMessage(m Mode) string {
	return lookup(m).instruction
}

// CompletionOptions returns the generation parameters for m. Unknown modes
// get the parameters of Default.
func CompletionOptions(m Mode) Options {
	return lookup(m).options
}

// Next returns the mode after m in the cycle sor → ozetle → yazdir → sor.
// An unknown mode is treated as Default.
func Next(m Mode) Mode {
	if !m.Valid() {
		m = Default
	}
	for i, o := range order {
		if o == m {
			return order[(i+1)%len(order)]
		}
	}
	return Default
}

func lookup(m Mode) definition {
	if d, ok := definitions[m]; ok {
		return d
	}
	return definitions[Default]
}
