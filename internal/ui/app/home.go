// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/jeranaias/chatterm/internal/apperr"
	"github.com/jeranaias/chatterm/internal/clipboard"
	"github.com/jeranaias/chatterm/internal/model"
	"github.com/jeranaias/chatterm/internal/render"
	"github.com/jeranaias/chatterm/internal/ui/components"
	"github.com/jeranaias/chatterm/internal/ui/styles"
	"github.com/jeranaias/chatterm/internal/views"
)

// Home page texts.
const (
	MsgNewChatStarted = "New chat started!"
	NewChatQuestion   = "Are you sure you want to start a new chat? Your current history will be cleared."
	ThinkingLabel     = "Thinking..."
	SendLabel         = "Send"
)

// Layout rows outside the transcript: input box with border, the send line
// and a spacer.
const (
	inputRows    = 3
	inputChrome  = 2
	sendLineRows = 1
)

// HomeModel is the home page: a welcome panel followed by the chat.
type HomeModel struct {
	shared *Shared
	keys   ChatKeyMap
	view   views.HomeView
	email  string

	transcript *model.Transcript
	buttons    map[string]*clipboard.Button
	// selected is the ID of the bot turn copy acts on; empty follows the
	// latest reply.
	selected string

	input    textarea.Model
	viewport viewport.Model
	spinner  spinner.Model

	// loading locks the chat form while a message is outstanding.
	loading    bool
	confirming bool
	pending    bool
}

// NewHomeModel creates the home page on its welcome panel.
func NewHomeModel(shared *Shared) HomeModel {
	keys := DefaultChatKeyMap()

	ta := textarea.New()
	ta.Placeholder = "Type your message..."
	ta.ShowLineNumbers = false
	ta.Prompt = ""
	ta.CharLimit = 4000
	ta.SetHeight(inputRows)
	ta.KeyMap.InsertNewline.SetEnabled(false)

	sp := spinner.New(
		spinner.WithSpinner(styles.DotsSpinner.Bubble()),
		spinner.WithStyle(shared.Theme.Spinner),
	)

	m := HomeModel{
		shared:     shared,
		keys:       keys,
		view:       views.WelcomeView,
		transcript: model.NewTranscript(),
		buttons:    map[string]*clipboard.Button{},
		input:      ta,
		viewport:   viewport.New(0, 0),
		spinner:    sp,
	}
	m.resize(shared.Width, shared.Height)
	m.refresh()
	return m
}

// View returns the active home view.
func (m HomeModel) View() views.HomeView { return m.view }

// Transcript returns the chat transcript.
func (m HomeModel) Transcript() *model.Transcript { return m.transcript }

// Loading reports whether a chat message is outstanding.
func (m HomeModel) Loading() bool { return m.loading }

// User returns the signed-in email once check_auth has answered.
func (m HomeModel) User() string { return m.email }

// Init checks the session.
func (m HomeModel) Init() tea.Cmd {
	return checkAuthCmd(m.shared)
}

// ShortHelp lists the bindings of the active view.
func (m HomeModel) ShortHelp() []key.Binding {
	if m.confirming {
		return []key.Binding{m.keys.Confirm, m.keys.Cancel}
	}
	if m.view == views.WelcomeView {
		return []key.Binding{m.keys.Continue, m.keys.Logout}
	}
	send := m.keys.Send
	send.SetEnabled(!m.loading)
	return []key.Binding{send, m.keys.Newline, m.keys.Copy, m.keys.SelectPrev, m.keys.NewChat, m.keys.Logout}
}

// Update handles keys, request results and timers.
func (m HomeModel) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		m.refresh()
		return m, nil

	case themeChangedMsg:
		m.spinner.Style = m.shared.Theme.Spinner
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case authCheckMsg:
		return m.handleAuthCheck(msg)

	case chatResultMsg:
		return m.handleChatResult(msg)

	case newChatResultMsg:
		return m.handleNewChatResult(msg)

	case logoutResultMsg:
		return m.handleLogoutResult(msg)

	case copyResultMsg:
		return m.handleCopyResult(msg)

	case clipboard.RevertMsg:
		if b, ok := m.buttons[msg.Key]; ok && b.Revert(msg) {
			m.refresh()
		}
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	if m.view == views.ChatView && !m.loading {
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

func (m HomeModel) handleKey(msg tea.KeyMsg) (screen, tea.Cmd) {
	if m.confirming {
		switch {
		case key.Matches(msg, m.keys.Confirm):
			m.confirming = false
			m.pending = true
			return m, newChatCmd(m.shared)
		case key.Matches(msg, m.keys.Cancel):
			m.confirming = false
		}
		return m, nil
	}

	if key.Matches(msg, m.keys.Logout) {
		if m.pending {
			return m, nil
		}
		m.pending = true
		return m, logoutCmd(m.shared)
	}

	if m.view == views.WelcomeView {
		if key.Matches(msg, m.keys.Continue) {
			m.view = m.view.Continue()
			m.refresh()
			cmd := m.input.Focus()
			return m, cmd
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.NewChat):
		if !m.pending {
			m.confirming = true
		}
		return m, nil
	case key.Matches(msg, m.keys.Copy):
		return m.copySelected()
	case key.Matches(msg, m.keys.SelectPrev):
		m.moveSelection(-1)
		return m, nil
	case key.Matches(msg, m.keys.SelectNext):
		m.moveSelection(1)
		return m, nil
	case key.Matches(msg, m.keys.PageUp):
		m.viewport.ViewUp()
		return m, nil
	case key.Matches(msg, m.keys.PageDown):
		m.viewport.ViewDown()
		return m, nil
	case key.Matches(msg, m.keys.Send):
		return m.send()
	case key.Matches(msg, m.keys.Newline):
		if !m.loading {
			m.input.InsertString("\n")
		}
		return m, nil
	}

	if m.loading {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// CHAT
// =============================================================================

// send appends the user turn and dispatches the message. A second send while
// one is outstanding is ignored.
func (m HomeModel) send() (screen, tea.Cmd) {
	if m.loading {
		return m, nil
	}
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}

	m.transcript.Append(render.Render(text, model.SenderUser))
	m.input.Reset()
	m.input.Blur()
	m.loading = true
	m.selected = ""
	m.refresh()
	m.viewport.GotoBottom()

	return m, tea.Batch(m.spinner.Tick, chatCmd(m.shared, text))
}

func (m HomeModel) handleChatResult(msg chatResultMsg) (screen, tea.Cmd) {
	m.loading = false

	reply := ""
	if msg.result != nil {
		reply = msg.result.Body.Response
	}
	if msg.err != nil {
		m.shared.Logger.Info("chat request failed", zap.Error(msg.err))
		m.shared.Toasts.FromError(msg.err)
	}
	turn := render.ReplyTurn(reply, msg.err)

	m.transcript.Append(turn)
	m.refresh()
	m.viewport.GotoBottom()
	cmd := m.input.Focus()
	return m, cmd
}

func (m HomeModel) handleNewChatResult(msg newChatResultMsg) (screen, tea.Cmd) {
	m.pending = false
	if msg.err != nil {
		m.shared.Logger.Info("new chat failed", zap.Error(msg.err))
		m.shared.Toasts.FromError(msg.err)
		return m, nil
	}
	m.transcript.Clear()
	m.buttons = map[string]*clipboard.Button{}
	m.selected = ""
	m.shared.Toasts.Info(MsgNewChatStarted)
	m.refresh()
	m.viewport.GotoTop()
	return m, nil
}

func (m HomeModel) handleLogoutResult(msg logoutResultMsg) (screen, tea.Cmd) {
	m.pending = false
	if msg.err != nil {
		m.shared.Logger.Info("logout failed", zap.Error(msg.err))
		m.shared.Toasts.FromError(msg.err)
		return m, nil
	}
	m.shared.Toasts.Info(msg.result.Notice())
	if cmd := redirectCmd(msg.result); cmd != nil {
		return m, cmd
	}
	return m, navigateCmd(views.AuthPage)
}

func (m HomeModel) handleAuthCheck(msg authCheckMsg) (screen, tea.Cmd) {
	if msg.err != nil {
		m.shared.Logger.Info("session check failed", zap.Error(msg.err))
		m.shared.Toasts.FromError(msg.err)
		return m, navigateCmd(views.AuthPage)
	}
	if msg.status == nil || !msg.status.Authenticated {
		return m, navigateCmd(views.AuthPage)
	}
	m.email = msg.status.Email
	return m, nil
}

// =============================================================================
// COPY
// =============================================================================

// selectedTurn resolves the turn copy acts on.
func (m HomeModel) selectedTurn() (model.ChatTurn, bool) {
	if m.selected != "" {
		for _, t := range m.transcript.Turns() {
			if t.ID() == m.selected {
				return t, true
			}
		}
	}
	return m.transcript.LastCopyable()
}

func (m HomeModel) copySelected() (screen, tea.Cmd) {
	turn, ok := m.selectedTurn()
	if !ok {
		return m, nil
	}
	payload, ok := turn.CopyPayload()
	if !ok {
		return m, nil
	}
	if m.shared.Copier == nil {
		m.shared.Toasts.FromError(apperr.ClipboardFailure(clipboard.ErrUnavailable, clipboard.ErrUnavailable))
		return m, nil
	}
	return m, copyCmd(m.shared, turn.ID(), payload)
}

func (m HomeModel) handleCopyResult(msg copyResultMsg) (screen, tea.Cmd) {
	if msg.err != nil {
		m.shared.Logger.Warn("copy failed", zap.String("turn", msg.turnID), zap.Error(msg.err))
		m.shared.Toasts.FromError(msg.err)
		return m, nil
	}
	b, ok := m.buttons[msg.turnID]
	if !ok {
		b = clipboard.NewButton(msg.turnID)
		m.buttons[msg.turnID] = b
	}
	cmd := b.Copied()
	m.refresh()
	return m, cmd
}

// moveSelection steps through the copyable turns.
func (m *HomeModel) moveSelection(delta int) {
	var ids []string
	for _, t := range m.transcript.Turns() {
		if _, ok := t.CopyPayload(); ok {
			ids = append(ids, t.ID())
		}
	}
	if len(ids) == 0 {
		return
	}

	current := len(ids) - 1
	if cur, ok := m.selectedTurn(); ok {
		for i, id := range ids {
			if id == cur.ID() {
				current = i
			}
		}
	}
	next := current + delta
	if next < 0 {
		next = 0
	}
	if next >= len(ids) {
		next = len(ids) - 1
	}
	if next == len(ids)-1 {
		m.selected = ""
	} else {
		m.selected = ids[next]
	}
	m.refresh()
}

// CopyLabel returns the button label of the turn with id.
func (m HomeModel) CopyLabel(id string) string {
	if b, ok := m.buttons[id]; ok {
		return b.Label()
	}
	return clipboard.LabelCopy
}

// =============================================================================
// LAYOUT AND VIEW
// =============================================================================

func (m *HomeModel) resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	m.input.SetWidth(width - 4)
	vpHeight := height - headerRows - statusRows - inputRows - inputChrome - sendLineRows
	if vpHeight < 3 {
		vpHeight = 3
	}
	m.viewport.Width = width
	m.viewport.Height = vpHeight
}

// refresh re-renders the transcript into the viewport.
func (m *HomeModel) refresh() {
	if m.viewport.Width <= 0 {
		return
	}
	atBottom := m.viewport.AtBottom()

	var current string
	if t, ok := m.selectedTurn(); ok {
		current = t.ID()
	}

	turns := m.transcript.Turns()
	rendered := make([]string, 0, len(turns))
	for _, t := range turns {
		view := components.TurnView{Turn: t, Width: m.viewport.Width - 1}
		if _, ok := t.CopyPayload(); ok {
			view.CopyLabel = m.CopyLabel(t.ID())
			view.Selected = t.ID() == current
		}
		rendered = append(rendered, view.Render(m.shared.Theme, m.shared.Prose))
	}
	m.viewport.SetContent(strings.Join(rendered, "\n\n"))
	if atBottom {
		m.viewport.GotoBottom()
	}
}

// Body renders the welcome panel or the chat.
func (m HomeModel) Body(width, height int) string {
	switch {
	case m.confirming:
		return components.RenderConfirm(m.shared.Theme, "New Chat", NewChatQuestion, width, height)
	case m.view == views.WelcomeView:
		return m.welcome(width, height)
	default:
		return m.chat(width, height)
	}
}

func (m HomeModel) welcome(width, height int) string {
	theme := m.shared.Theme
	title := "Welcome!"
	if m.email != "" {
		title = "Welcome, " + m.email + "!"
	}
	box := theme.WelcomeBox.Render(lipgloss.JoinVertical(lipgloss.Center,
		theme.WelcomeTitle.Render(title),
		"",
		theme.WelcomeInfo.Render("Ask anything. Replies with code get a copy button."),
		"",
		theme.ShortcutKey.Render(m.keys.Continue.Help().Key)+" "+theme.ShortcutDesc.Render(m.keys.Continue.Help().Desc),
	))
	if width <= 0 || height <= 0 {
		return box
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

func (m HomeModel) chat(width, height int) string {
	theme := m.shared.Theme

	vp := m.viewport
	if h := height - inputRows - inputChrome - sendLineRows; h > 0 && h < vp.Height {
		vp.Height = h
		if m.viewport.AtBottom() {
			vp.GotoBottom()
		}
	}

	status := theme.ShortcutKey.Render(SendLabel)
	if m.loading {
		status = m.spinner.View() + " " + theme.ThinkingText.Render(ThinkingLabel)
	}

	input := theme.InputContainer.Width(width - 2).Render(m.input.View())
	return lipgloss.JoinVertical(lipgloss.Left, vp.View(), input, status)
}
