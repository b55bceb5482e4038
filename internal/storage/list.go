// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists drafting sessions.
package storage

import (
	"context"
	"strconv"
	"strings"

	"github.com/dilekce/dilekce-tui/internal/util"
)

// Searcher is implemented by stores that support full-text session search.
type Searcher interface {
	Search(ctx context.Context, query string) ([]Summary, error)
}

// =============================================================================
// SESSION LIST FORMATTING
// =============================================================================

const (
	idColumn      = 8
	createdColumn = 16
	modeColumn    = 8
	countColumn   = 6
	titleColumn   = 40
)

// FormatSessionList renders summaries as an aligned table.
func FormatSessionList(sessions []Summary) string {
	if len(sessions) == 0 {
		return "Kayıtlı oturum yok.\n"
	}

	var sb strings.Builder
	header := util.PadRight("ID", idColumn) + "  " +
		util.PadRight("Oluşturulma", createdColumn) + "  " +
		util.PadRight("Mod", modeColumn) + "  " +
		util.PadRight("Mesaj", countColumn) + "  Başlık"
	sb.WriteString(header + "\n")
	sb.WriteString(strings.Repeat("-", util.StringWidth(header)+titleColumn-util.StringWidth("Başlık")) + "\n")

	for _, s := range sessions {
		sb.WriteString(util.PadRight(util.SafeSubstring(s.ID, 0, idColumn), idColumn) + "  " +
			util.PadRight(s.CreatedAt.Format("2006-01-02 15:04"), createdColumn) + "  " +
			util.PadRight(string(s.Mode), modeColumn) + "  " +
			util.PadRight(strconv.Itoa(s.MessageCount), countColumn) + "  " +
			util.TruncateWidth(s.Title, titleColumn) + "\n")
	}
	return sb.String()
}
