// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/chatterm/internal/ui/styles"
)

// screen is a page the root model can show.
type screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (screen, tea.Cmd)
	// Body renders the page between the header and the status bar.
	Body(width, height int) string
	// ShortHelp lists the bindings shown in the status bar.
	ShortHelp() []key.Binding
	// User is the signed-in email shown in the header, if known.
	User() string
}

// =============================================================================
// FORM HELPERS
// =============================================================================

const formWidth = 44

func newInput(placeholder string, charLimit int, password bool) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = ""
	ti.CharLimit = charLimit
	ti.Width = formWidth - 4
	if password {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
	}
	return ti
}

// renderField draws a labelled input. disabled fields show their value dimmed.
func renderField(theme *styles.Theme, label string, input textinput.Model, disabled bool) string {
	box := theme.Field
	content := input.View()
	switch {
	case disabled:
		box = theme.FieldDisabled
		content = input.Value()
	case input.Focused():
		box = theme.FieldFocused
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		theme.Label.Render(label),
		box.Width(formWidth).Render(content),
	)
}

// renderButton draws the submit button of a form.
func renderButton(theme *styles.Theme, label string, focused, busy bool) string {
	switch {
	case busy:
		return theme.ButtonBusy.Render(label)
	case focused:
		return theme.ButtonFocused.Render(label)
	default:
		return theme.Button.Render(label)
	}
}

// centerPanel frames content as a panel in the middle of the body area.
func centerPanel(theme *styles.Theme, panel string, width, height int) string {
	if width <= 0 || height <= 0 {
		return theme.Panel.Render(panel)
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, theme.Panel.Render(panel))
}
