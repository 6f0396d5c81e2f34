// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/jeranaias/chatterm/internal/recovery"
	"github.com/jeranaias/chatterm/internal/views"
)

// ResetModel is the new-password page reached after a verified reset code.
type ResetModel struct {
	shared *Shared
	keys   FormKeyMap

	password textinput.Model
	confirm  textinput.Model
	focus    int
	guard    *recovery.Guard
}

// NewResetModel creates the reset page.
func NewResetModel(shared *Shared) ResetModel {
	m := ResetModel{
		shared:   shared,
		keys:     DefaultFormKeyMap(),
		password: newInput("new password", 128, true),
		confirm:  newInput("repeat password", 128, true),
		guard:    &recovery.Guard{},
	}
	m.applyFocus()
	return m
}

// Init starts the cursor blink.
func (m ResetModel) Init() tea.Cmd { return textinput.Blink }

// User is always empty on the reset page.
func (m ResetModel) User() string { return "" }

// ShortHelp lists the reset page bindings.
func (m ResetModel) ShortHelp() []key.Binding {
	return []key.Binding{m.keys.Submit, m.keys.Next, m.keys.Back}
}

// Update handles keys and the submission result.
func (m ResetModel) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Back):
			return m, navigateCmd(views.AuthPage)
		case key.Matches(msg, m.keys.Submit):
			return m.submit()
		case key.Matches(msg, m.keys.Next):
			m.focus = (m.focus + 1) % 3
			m.applyFocus()
			return m, nil
		case key.Matches(msg, m.keys.Prev):
			m.focus = (m.focus + 2) % 3
			m.applyFocus()
			return m, nil
		}
	case resetResultMsg:
		return m.handleResult(msg)
	}

	var cmd tea.Cmd
	switch m.focus {
	case 0:
		m.password, cmd = m.password.Update(msg)
	case 1:
		m.confirm, cmd = m.confirm.Update(msg)
	}
	return m, cmd
}

func (m ResetModel) submit() (screen, tea.Cmd) {
	password := m.password.Value()
	if err := recovery.ValidateNewPassword(password, m.confirm.Value()); err != nil {
		m.shared.Toasts.FromError(err)
		return m, nil
	}
	if !m.guard.TryAcquire() {
		return m, nil
	}
	return m, resetCmd(m.shared, password)
}

func (m ResetModel) handleResult(msg resetResultMsg) (screen, tea.Cmd) {
	m.guard.Release()
	if msg.err != nil {
		m.shared.Logger.Info("password reset failed", zap.Error(msg.err))
		m.shared.Toasts.FromError(msg.err)
		return m, nil
	}
	m.shared.Toasts.Info(msg.result.Notice())
	m.password.Reset()
	m.confirm.Reset()
	if cmd := redirectCmd(msg.result); cmd != nil {
		return m, cmd
	}
	return m, navigateCmd(views.AuthPage)
}

func (m *ResetModel) applyFocus() {
	m.password.Blur()
	m.confirm.Blur()
	switch m.focus {
	case 0:
		m.password.Focus()
	case 1:
		m.confirm.Focus()
	}
}

// Body renders the reset form.
func (m ResetModel) Body(width, height int) string {
	theme := m.shared.Theme
	busy := m.guard.Busy()
	label := "Reset Password"
	if busy {
		label = "Please wait..."
	}
	panel := lipgloss.JoinVertical(lipgloss.Left,
		theme.PanelTitle.Render("Choose a New Password"),
		"",
		renderField(theme, "New password", m.password, false),
		"",
		renderField(theme, "Confirm password", m.confirm, false),
		"",
		renderButton(theme, label, m.focus == 2, busy),
		"",
		theme.Hint.Render("At least 6 characters."),
	)
	return centerPanel(theme, panel, width, height)
}
