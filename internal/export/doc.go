// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export renders drafting sessions as documents.
//
// # Formats
//
//   - Markdown: YAML front matter, a metadata list and one section per turn
//   - JSON: the stored session, unchanged
//   - HTML: a standalone page with embedded CSS in a dark or light theme
//
// # Usage
//
//	exp, err := export.New("html", nil)
//	if err != nil {
//	    return err
//	}
//	data, err := exp.Export(state)
//	path := export.Filename(state, exp, time.Now())
package export
