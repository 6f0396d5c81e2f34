// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/jeranaias/chatterm/internal/apperr"
	"github.com/jeranaias/chatterm/internal/recovery"
	"github.com/jeranaias/chatterm/internal/views"
)

// MsgMissingCredentials is shown when login or register is submitted empty.
const MsgMissingCredentials = "Please enter your email and password."

// AuthModel is the login page. It holds the three auth forms and shows one
// at a time according to its active view.
type AuthModel struct {
	shared *Shared
	keys   FormKeyMap
	view   views.AuthView

	loginEmail       textinput.Model
	loginPassword    textinput.Model
	registerEmail    textinput.Model
	registerPassword textinput.Model
	recoveryEmail    textinput.Model
	recoveryCode     textinput.Model

	// focus indexes the current form's fields; len(fields) is the button.
	focus int

	loginGuard    *recovery.Guard
	registerGuard *recovery.Guard
	flow          *recovery.Flow
}

// NewAuthModel creates the auth page showing the login form.
func NewAuthModel(shared *Shared) AuthModel {
	m := AuthModel{
		shared:           shared,
		keys:             DefaultFormKeyMap(),
		view:             views.LoginView,
		loginEmail:       newInput("you@example.com", 254, false),
		loginPassword:    newInput("password", 128, true),
		registerEmail:    newInput("you@example.com", 254, false),
		registerPassword: newInput("password", 128, true),
		recoveryEmail:    newInput("you@example.com", 254, false),
		recoveryCode:     newInput("123456", recovery.CodeLength, false),
		loginGuard:       &recovery.Guard{},
		registerGuard:    &recovery.Guard{},
		flow:             recovery.NewFlow(),
	}
	m.applyFocus()
	return m
}

// View returns the active auth view.
func (m AuthModel) View() views.AuthView { return m.view }

// Recovery returns the current recovery attempt.
func (m AuthModel) Recovery() *recovery.Flow { return m.flow }

// Init starts the cursor blink.
func (m AuthModel) Init() tea.Cmd {
	return textinput.Blink
}

// User is always empty on the auth page.
func (m AuthModel) User() string { return "" }

// ShortHelp lists the auth page bindings, hiding the link to the current view.
func (m AuthModel) ShortHelp() []key.Binding {
	login, register, forgot := m.keys.Login, m.keys.Register, m.keys.Forgot
	login.SetEnabled(m.view != views.LoginView)
	register.SetEnabled(m.view != views.RegisterView)
	forgot.SetEnabled(m.view != views.RecoveryView)
	return []key.Binding{m.keys.Submit, m.keys.Next, login, register, forgot}
}

// Update handles keys and submission results.
func (m AuthModel) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case credentialsResultMsg:
		return m.handleCredentialsResult(msg)
	case recoveryResultMsg:
		return m.handleRecoveryResult(msg)
	}

	var cmd tea.Cmd
	if in := m.focusedInput(); in != nil {
		*in, cmd = in.Update(msg)
	}
	return m, cmd
}

func (m AuthModel) handleKey(msg tea.KeyMsg) (screen, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Login):
		return m.switchTo(views.LoginView), nil
	case key.Matches(msg, m.keys.Register):
		return m.switchTo(views.RegisterView), nil
	case key.Matches(msg, m.keys.Forgot):
		return m.switchTo(views.RecoveryView), nil
	case key.Matches(msg, m.keys.Back):
		if m.view != views.LoginView {
			return m.switchTo(views.LoginView), nil
		}
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		return m.submit()
	case key.Matches(msg, m.keys.Next):
		m.focus = (m.focus + 1) % (len(m.fields()) + 1)
		m.applyFocus()
		return m, nil
	case key.Matches(msg, m.keys.Prev):
		n := len(m.fields()) + 1
		m.focus = (m.focus + n - 1) % n
		m.applyFocus()
		return m, nil
	}

	var cmd tea.Cmd
	if in := m.focusedInput(); in != nil {
		*in, cmd = in.Update(msg)
	}
	return m, cmd
}

// switchTo changes the active view. Leaving recovery starts a fresh attempt.
func (m AuthModel) switchTo(to views.AuthView) AuthModel {
	next, discard := m.view.Switch(to)
	if discard {
		m.flow = recovery.NewFlow()
		m.recoveryEmail.Reset()
		m.recoveryCode.Reset()
	}
	m.view = next
	m.focus = 0
	m.applyFocus()
	return m
}

// =============================================================================
// SUBMISSION
// =============================================================================

func (m AuthModel) submit() (screen, tea.Cmd) {
	switch m.view {
	case views.RegisterView:
		return m.submitCredentials(registerForm, m.registerEmail, m.registerPassword, m.registerGuard)
	case views.RecoveryView:
		return m.submitRecovery()
	default:
		return m.submitCredentials(loginForm, m.loginEmail, m.loginPassword, m.loginGuard)
	}
}

func (m AuthModel) submitCredentials(form formKind, emailIn, passwordIn textinput.Model, guard *recovery.Guard) (screen, tea.Cmd) {
	email := strings.TrimSpace(emailIn.Value())
	password := passwordIn.Value()
	if email == "" || password == "" {
		m.shared.Toasts.FromError(apperr.ValidationFailure(MsgMissingCredentials))
		return m, nil
	}
	if !guard.TryAcquire() {
		return m, nil
	}
	if form == registerForm {
		return m, registerCmd(m.shared, email, password)
	}
	return m, loginCmd(m.shared, email, password)
}

func (m AuthModel) submitRecovery() (screen, tea.Cmd) {
	form := recovery.Form{
		Email: strings.TrimSpace(m.recoveryEmail.Value()),
		Code:  strings.TrimSpace(m.recoveryCode.Value()),
	}
	action, ok := m.flow.Submit(form)
	if !ok {
		return m, nil
	}
	switch a := action.(type) {
	case recovery.Invalid:
		m.shared.Logger.Debug("recovery form rejected", zap.String("reason", a.Reason))
		m.shared.Toasts.FromError(apperr.ValidationFailure(recovery.MsgIncompleteCode))
		return m, nil
	case recovery.RequestCode:
		if a.Email == "" {
			m.flow.Resolve(action, false)
			m.shared.Toasts.FromError(apperr.ValidationFailure("Please enter your email."))
			return m, nil
		}
	}
	return m, recoveryCmd(m.shared, m.flow, action)
}

func (m AuthModel) handleCredentialsResult(msg credentialsResultMsg) (screen, tea.Cmd) {
	guard := m.loginGuard
	if msg.form == registerForm {
		guard = m.registerGuard
	}
	guard.Release()

	if msg.err != nil {
		m.shared.Logger.Info("auth request failed", zap.Error(msg.err))
		m.shared.Toasts.FromError(msg.err)
		return m, nil
	}
	m.shared.Toasts.Info(msg.result.Notice())

	if msg.form == registerForm {
		m.registerEmail.Reset()
		m.registerPassword.Reset()
		m.view = views.AfterRegister()
		m.loginEmail.SetValue(msg.email)
		m.loginPassword.Reset()
		m.focus = 1
		m.applyFocus()
		return m, nil
	}
	m.loginPassword.Reset()
	return m, redirectCmd(msg.result)
}

func (m AuthModel) handleRecoveryResult(msg recoveryResultMsg) (screen, tea.Cmd) {
	success := msg.err == nil
	msg.flow.Resolve(msg.action, success)

	if !success {
		m.shared.Logger.Info("recovery request failed", zap.Error(msg.err))
		m.shared.Toasts.FromError(msg.err)
		return m, nil
	}

	// A result for an attempt the user has already left only reports.
	if msg.flow != m.flow {
		m.shared.Toasts.Info(msg.result.Notice())
		return m, nil
	}

	switch a := msg.action.(type) {
	case recovery.RequestCode:
		m.shared.Toasts.Info(recovery.CodeSentMessage(a.Email))
		m.recoveryEmail.SetValue(m.flow.State().Email())
		m.focus = 0
		m.applyFocus()
		return m, nil
	case recovery.VerifyCode:
		m.shared.Toasts.Info(msg.result.Notice())
		m.flow = recovery.NewFlow()
		m.recoveryEmail.Reset()
		m.recoveryCode.Reset()
		return m, redirectCmd(msg.result)
	}
	return m, nil
}

// =============================================================================
// FOCUS
// =============================================================================

type labelled struct {
	label string
	input *textinput.Model
}

// fields returns the focusable inputs of the active form in order.
func (m *AuthModel) fields() []labelled {
	switch m.view {
	case views.RegisterView:
		return []labelled{{"Email", &m.registerEmail}, {"Password", &m.registerPassword}}
	case views.RecoveryView:
		if m.flow.State().EmailLocked() {
			return []labelled{{"Reset code", &m.recoveryCode}}
		}
		return []labelled{{"Email", &m.recoveryEmail}}
	default:
		return []labelled{{"Email", &m.loginEmail}, {"Password", &m.loginPassword}}
	}
}

func (m *AuthModel) focusedInput() *textinput.Model {
	fields := m.fields()
	if m.focus < len(fields) {
		return fields[m.focus].input
	}
	return nil
}

func (m *AuthModel) applyFocus() {
	for _, in := range []*textinput.Model{
		&m.loginEmail, &m.loginPassword,
		&m.registerEmail, &m.registerPassword,
		&m.recoveryEmail, &m.recoveryCode,
	} {
		in.Blur()
	}
	fields := m.fields()
	if m.focus > len(fields) {
		m.focus = 0
	}
	if m.focus < len(fields) {
		fields[m.focus].input.Focus()
	}
}

// =============================================================================
// VIEW
// =============================================================================

// Body renders the active form.
func (m AuthModel) Body(width, height int) string {
	theme := m.shared.Theme
	rows := []string{theme.PanelTitle.Render(m.view.Title()), ""}

	state := m.flow.State()
	if m.view == views.RecoveryView && state.EmailLocked() {
		rows = append(rows, renderField(theme, "Email", m.recoveryEmail, true), "")
	}
	for _, f := range m.fields() {
		rows = append(rows, renderField(theme, f.label, *f.input, false), "")
	}

	busy := m.busy()
	label := m.buttonLabel()
	if busy {
		label = "Please wait..."
	}
	rows = append(rows, renderButton(theme, label, m.focus == len(m.fields()), busy), "")

	if m.view == views.RecoveryView && state.EmailLocked() {
		rows = append(rows, theme.FormMessage.Render(recovery.CodeSentMessage(state.Email())), "")
	}
	rows = append(rows, m.links()...)

	return centerPanel(theme, lipgloss.JoinVertical(lipgloss.Left, rows...), width, height)
}

func (m AuthModel) busy() bool {
	switch m.view {
	case views.RegisterView:
		return m.registerGuard.Busy()
	case views.RecoveryView:
		return m.flow.Busy()
	default:
		return m.loginGuard.Busy()
	}
}

func (m AuthModel) buttonLabel() string {
	switch m.view {
	case views.RegisterView:
		return "Register"
	case views.RecoveryView:
		if m.flow.State().EmailLocked() {
			return "Verify Code"
		}
		return "Send Code"
	default:
		return "Login"
	}
}

func (m AuthModel) links() []string {
	theme := m.shared.Theme
	link := func(b key.Binding, text string) string {
		return theme.Hint.Render(text+" ") + theme.Link.Render(b.Help().Key)
	}
	switch m.view {
	case views.RegisterView:
		return []string{link(m.keys.Login, "Already have an account?")}
	case views.RecoveryView:
		return []string{link(m.keys.Login, "Remembered it?")}
	default:
		return []string{
			link(m.keys.Register, "No account yet?"),
			link(m.keys.Forgot, "Forgot your password?"),
		}
	}
}
