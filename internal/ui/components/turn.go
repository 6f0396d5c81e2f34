// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/chatterm/internal/clipboard"
	"github.com/jeranaias/chatterm/internal/model"
	"github.com/jeranaias/chatterm/internal/ui/styles"
)

// TurnView renders one chat turn.
type TurnView struct {
	Turn model.ChatTurn
	// CopyLabel is the copy button label; empty hides the button.
	CopyLabel string
	// Selected highlights the bot turn the copy key acts on.
	Selected bool
	Width    int
}

// Render renders the avatar, the segments inside a bubble and, for bot
// turns, the copy button under the bubble.
func (v TurnView) Render(theme *styles.Theme, prose *ProseRenderer) string {
	width := v.Width
	if width < 24 {
		width = 24
	}
	avatar := theme.Avatar.Render(v.Turn.Sender().Avatar())
	inner := width - lipgloss.Width(avatar) - 4

	parts := make([]string, 0, len(v.Turn.Segments()))
	for _, seg := range v.Turn.Segments() {
		switch seg.Kind {
		case model.SegmentCode:
			parts = append(parts, NewCodeBlock(seg.Text, inner).Render(theme))
		default:
			parts = append(parts, prose.Render(theme, seg.Text, inner))
		}
	}
	body := strings.Join(parts, "\n")

	bubble := theme.UserBubble
	if v.Turn.Sender() == model.SenderBot {
		bubble = theme.BotBubble
		if v.Selected {
			bubble = theme.BotBubbleSelected
		}
	}
	rendered := bubble.MaxWidth(width - lipgloss.Width(avatar)).Render(body)

	if v.Turn.Sender() == model.SenderUser {
		row := lipgloss.JoinHorizontal(lipgloss.Top, rendered, " ", v.Turn.Sender().Avatar())
		return lipgloss.PlaceHorizontal(width, lipgloss.Right, row)
	}

	row := lipgloss.JoinHorizontal(lipgloss.Top, avatar, rendered)
	if v.CopyLabel == "" {
		return row
	}
	return row + "\n" + strings.Repeat(" ", lipgloss.Width(avatar)) + renderCopyButton(theme, v.CopyLabel)
}

func renderCopyButton(theme *styles.Theme, label string) string {
	if label == clipboard.LabelCopied {
		return theme.CopyButtonDone.Render(label)
	}
	return theme.CopyButton.Render(label)
}
