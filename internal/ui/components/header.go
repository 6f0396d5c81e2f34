// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/chatterm/internal/ui/styles"
	"github.com/jeranaias/chatterm/internal/util"
)

// Brand is the application name shown in the header.
const Brand = "chatterm"

// RenderHeader renders the top bar: brand on the left, the signed-in user
// and the theme toggle icon on the right.
func RenderHeader(theme *styles.Theme, user string, width int) string {
	left := theme.HeaderBrand.Render(Brand)
	right := theme.ThemeToggle.Render(theme.Mode.Icon())
	if user != "" {
		right = theme.HeaderUser.Render(util.TruncateWidth(user, 32)) + " " + right
	}

	inner := width - theme.Header.GetHorizontalPadding()
	gap := inner - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	line := left + strings.Repeat(" ", gap) + right
	return theme.Header.Width(width).Render(line)
}

// RenderStatusBar renders key hints and an optional note on the right.
func RenderStatusBar(theme *styles.Theme, bindings []key.Binding, note string, width int) string {
	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		if !b.Enabled() {
			continue
		}
		h := b.Help()
		hints = append(hints, theme.ShortcutKey.Render(h.Key)+" "+theme.ShortcutDesc.Render(h.Desc))
	}
	left := strings.Join(hints, "  ")

	inner := width - theme.StatusBar.GetHorizontalPadding()
	if note != "" {
		gap := inner - lipgloss.Width(left) - lipgloss.Width(note)
		if gap < 2 {
			return theme.StatusBar.Width(width).Render(left)
		}
		left += strings.Repeat(" ", gap) + note
	}
	return theme.StatusBar.Width(width).Render(left)
}

// TranscriptNote summarizes the transcript for the status bar.
func TranscriptNote(turns int) string {
	return countLabel(turns, "message")
}
