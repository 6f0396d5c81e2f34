// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/jeranaias/chatterm/internal/ui/components"
	"github.com/jeranaias/chatterm/internal/views"
)

// Rows taken by the header and the status bar.
const (
	headerRows = 1
	statusRows = 1
)

// Model is the root model. It owns the shared state and routes messages to
// the active page.
type Model struct {
	shared  *Shared
	keys    GlobalKeyMap
	page    views.Page
	current screen

	// ticking is set while a toast expiry tick is scheduled.
	ticking bool
}

// New creates the root model on the given page.
func New(shared *Shared, page views.Page) Model {
	m := Model{shared: shared, keys: DefaultGlobalKeyMap()}
	m.page = page
	m.current = m.screenFor(page)
	return m
}

// Page returns the active page.
func (m Model) Page() views.Page { return m.page }

// Shared returns the shared state.
func (m Model) Shared() *Shared { return m.shared }

// Init initializes the active page.
func (m Model) Init() tea.Cmd {
	return m.current.Init()
}

// Update routes msg. Global keys, navigation, resize and toast expiry are
// handled here; everything else goes to the page.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.ToggleTheme):
			if err := m.shared.ToggleTheme(); err != nil {
				m.shared.Toasts.Error("Could not save the theme preference.")
			}
			var cmd tea.Cmd
			m.current, cmd = m.current.Update(themeChangedMsg{})
			cmds = append(cmds, cmd, m.scheduleTick())
			return m, tea.Batch(cmds...)
		}

	case tea.WindowSizeMsg:
		m.shared.SetSize(msg.Width, msg.Height)

	case NavigateMsg:
		m.shared.Logger.Debug("navigate", zap.String("from", m.page.String()), zap.String("to", msg.Page.String()))
		m.page = msg.Page
		m.current = m.screenFor(msg.Page)
		cmds = append(cmds, m.current.Init(), m.scheduleTick())
		return m, tea.Batch(cmds...)

	case components.ToastTickMsg:
		m.ticking = false
		if m.shared.Toasts.Tick() {
			cmds = append(cmds, m.scheduleTick())
		}
		return m, tea.Batch(cmds...)
	}

	var cmd tea.Cmd
	m.current, cmd = m.current.Update(msg)
	cmds = append(cmds, cmd, m.scheduleTick())
	return m, tea.Batch(cmds...)
}

// scheduleTick starts the toast expiry timer when toasts are showing.
func (m *Model) scheduleTick() tea.Cmd {
	if m.ticking || len(m.shared.Toasts.Toasts()) == 0 {
		return nil
	}
	m.ticking = true
	return components.ToastTickCmd()
}

func (m Model) screenFor(page views.Page) screen {
	switch page {
	case views.ResetPage:
		return NewResetModel(m.shared)
	case views.HomePage:
		return NewHomeModel(m.shared)
	default:
		return NewAuthModel(m.shared)
	}
}

// View renders header, toasts, page body and status bar.
func (m Model) View() string {
	s := m.shared
	width := s.Width
	if width <= 0 {
		width = 80
	}

	header := components.RenderHeader(s.Theme, m.current.User(), width)
	toasts := components.RenderToastStack(s.Theme, s.Toasts.Toasts(), width)

	bindings := append(m.current.ShortHelp(), m.keys.ToggleTheme, m.keys.Quit)
	note := ""
	if home, ok := m.current.(HomeModel); ok && home.View() == views.ChatView {
		note = components.TranscriptNote(home.Transcript().Len())
	}
	status := components.RenderStatusBar(s.Theme, bindings, note, width)

	bodyHeight := s.Height - headerRows - statusRows
	if toasts != "" {
		bodyHeight -= lipgloss.Height(toasts)
	}
	if bodyHeight < 1 {
		bodyHeight = 0
	}
	body := m.current.Body(width, bodyHeight)

	parts := []string{header}
	if toasts != "" {
		parts = append(parts, toasts)
	}
	parts = append(parts, body, status)
	return strings.Join(parts, "\n")
}
