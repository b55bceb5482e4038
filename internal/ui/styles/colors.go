// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the dilekce TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/dilekce/dilekce-tui/internal/mode"
)

// =============================================================================
// ACCENT COLORS
// =============================================================================

var Purple = lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#A78BFA"}

var Cyan = lipgloss.AdaptiveColor{Light: "#0891B2", Dark: "#22D3EE"}

var Emerald = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34D399"}

var Rose = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}

var Amber = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}

// =============================================================================
// SURFACE AND TEXT COLORS
// =============================================================================

var SurfaceDim = lipgloss.AdaptiveColor{Light: "#F5F5F5", Dark: "#181825"}

var Overlay = lipgloss.AdaptiveColor{Light: "#E5E5E5", Dark: "#313244"}

var TextPrimary = lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#CDD6F4"}

var TextSecondary = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#A6ADC8"}

var TextMuted = lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6C7086"}

var TextInverse = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#1E1E2E"}

// GhostText colors the suggested remainder after the caret.
var GhostText = lipgloss.AdaptiveColor{Light: "#A1A1AA", Dark: "#585B70"}

// =============================================================================
// MODE COLORS
// =============================================================================

var modeColors = map[mode.Mode]lipgloss.AdaptiveColor{
	mode.Sor:    Cyan,
	mode.Ozetle: Emerald,
	mode.Yazdir: Purple,
}

// ModeColor returns the badge color of m. Unknown modes use the color of
// mode.Default.
func ModeColor(m mode.Mode) lipgloss.AdaptiveColor {
	if c, ok := modeColors[m]; ok {
		return c
	}
	return modeColors[mode.Default]
}
