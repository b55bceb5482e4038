// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the dilekce TUI.

All colors are Lip Gloss AdaptiveColor values, so the same palette serves
light and dark terminals.

# Color System (colors.go)

  - Purple - assistant messages and the title
  - Cyan - user messages and the input prompt
  - Emerald, Amber, Rose - success, warning and error states

Each writing mode has its own badge color (ModeColor), so the active mode
is visible at a glance in the header.

# Theme (theme.go)

NewTheme builds the styles for a configured theme name: "dark", "light" or
"auto". Auto asks the terminal for its background; the fixed names skip
detection, which avoids the terminal query on slow connections.

	theme := styles.NewTheme(cfg.UI.Theme)
	header := theme.Header.Render("dilekce")
*/
package styles
