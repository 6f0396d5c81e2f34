// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the chatterm TUI.

# Color System (colors.go)

Every color is declared once as a lipgloss.AdaptiveColor holding its light
and dark variant. Unlike automatic background detection, chatterm lets the
user pick the theme (and remembers it), so a Theme resolves each palette
entry to the variant of its mode:

	theme := styles.NewTheme(prefs.ThemeLight)
	theme.BotBubble.Render(text)

## Palette

  - Purple - brand accent, bot turns
  - Cyan - user turns, links, focus
  - Emerald - success toasts, "Copied!"
  - Amber - warnings, the Thinking indicator
  - Rose - error toasts, validation messages

# Theme (theme.go)

A Theme carries every lipgloss.Style the views use: header, auth panel,
inputs and buttons, chat bubbles, code blocks, copy button, toasts and the
status bar. It also names the matching chroma and glamour styles so code
and prose follow the same mode.

# Animations (animations.go)

Spinner frame sets used by the "Thinking..." indicator.
*/
package styles
