// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package autocomplete provides inline legal-phrase completion.
package autocomplete

import (
	"bufio"
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// DICTIONARY FILE FORMATS
// =============================================================================

// Format identifies a dictionary file encoding.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// phraseFile is the document shape shared by the TOML, YAML and JSON formats.
type phraseFile struct {
	Phrases []Entry `toml:"phrase" yaml:"phrases" json:"phrases"`
}

// FormatFromPath picks a format from the file extension. Unknown extensions
// are treated as plain text.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML
	case ".yaml", ".yml":
		return FormatYAML
	case ".json":
		return FormatJSON
	default:
		return FormatText
	}
}

// LoadFile reads and indexes a dictionary file.
func LoadFile(path string) (*Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dictionary %s: %w", path, err)
	}
	entries, err := Parse(data, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to parse dictionary %s: %w", path, err)
	}
	return New(entries)
}

// Parse decodes dictionary entries from data.
//
// The text format has one phrase per line. Aliases follow a "|" separator and
// are comma separated. Blank lines and lines starting with "#" are skipped:
//
//	Sayın Mahkeme | SM, sayın mah.
//	talep ediyorum
func Parse(data []byte, format Format) ([]Entry, error) {
	switch format {
	case FormatTOML:
		var f phraseFile
		if _, err := toml.Decode(string(data), &f); err != nil {
			return nil, err
		}
		return f.Phrases, nil

	case FormatYAML:
		var f phraseFile
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, err
		}
		return f.Phrases, nil

	case FormatJSON:
		trimmed := bytes.TrimSpace(data)
		if len(trimmed) > 0 && trimmed[0] == '[' {
			var entries []Entry
			if err := json.Unmarshal(trimmed, &entries); err != nil {
				return nil, err
			}
			return entries, nil
		}
		var f phraseFile
		if err := json.Unmarshal(trimmed, &f); err != nil {
			return nil, err
		}
		return f.Phrases, nil

	case FormatText:
		return parseText(data)

	default:
		return nil, fmt.Errorf("unknown dictionary format %q", format)
	}
}

func parseText(data []byte) ([]Entry, error) {
	var entries []Entry
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		target, rest, hasAliases := strings.Cut(line, "|")
		entry := Entry{Target: strings.TrimSpace(target)}
		if hasAliases {
			for _, alias := range strings.Split(rest, ",") {
				if alias = strings.TrimSpace(alias); alias != "" {
					entry.Aliases = append(entry.Aliases, alias)
				}
			}
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// =============================================================================
// BUILT-IN PHRASES
// =============================================================================

//go:embed data/phrases.toml
var builtinPhrases []byte

var (
	builtinOnce sync.Once
	builtinDict *Dictionary
)

// Builtin returns the dictionary compiled into the binary. It is built once
// and shared.
func Builtin() *Dictionary {
	builtinOnce.Do(func() {
		entries, err := Parse(builtinPhrases, FormatTOML)
		if err != nil {
			panic(fmt.Sprintf("autocomplete: embedded phrases: %v", err))
		}
		builtinDict = MustNew(entries)
	})
	return builtinDict
}
