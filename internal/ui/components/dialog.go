// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/chatterm/internal/ui/styles"
)

// RenderConfirm renders a yes/no dialog centered in width x height.
func RenderConfirm(theme *styles.Theme, title, question string, width, height int) string {
	body := lipgloss.JoinVertical(lipgloss.Left,
		theme.DialogTitle.Render(title),
		"",
		question,
		"",
		theme.ShortcutKey.Render("y")+" "+theme.ShortcutDesc.Render("yes")+"   "+
			theme.ShortcutKey.Render("n/esc")+" "+theme.ShortcutDesc.Render("no"),
	)
	box := theme.Dialog.Render(body)
	if width <= 0 || height <= 0 {
		return box
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
