// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/chatterm/internal/apperr"
	"github.com/jeranaias/chatterm/internal/recovery"
	"github.com/jeranaias/chatterm/internal/views"
)

func fillLogin(s screen, email, password string) screen {
	s, _ = feed(s, typed(email), keyPress(tea.KeyTab), typed(password))
	return s
}

func TestAuth_LoginRedirectsHome(t *testing.T) {
	svc := newFakeService()
	svc.on("login", success("Login successful!", "/home.html"))
	shared := newTestShared(svc, nil)

	s := fillLogin(NewAuthModel(shared), "a@b.com", "secret1")
	s, cmd := s.Update(keyPress(tea.KeyEnter))
	require.NotNil(t, cmd)
	assert.True(t, s.(AuthModel).busy())

	result := find[credentialsResultMsg](t, cmd)
	assert.Equal(t, []string{"login a@b.com secret1"}, svc.Calls())

	s, cmd = s.Update(result)
	nav := find[NavigateMsg](t, cmd)
	assert.Equal(t, views.HomePage, nav.Page)
	assert.Equal(t, "Login successful!", lastToast(t, shared))
	assert.False(t, s.(AuthModel).busy())
}

func TestAuth_LoginRejected(t *testing.T) {
	svc := newFakeService()
	svc.on("login", reply{err: apperr.ServerRejected(401, "Invalid email or password")})
	shared := newTestShared(svc, nil)

	s := fillLogin(NewAuthModel(shared), "a@b.com", "wrong")
	_, cmd := s.Update(keyPress(tea.KeyEnter))
	s, cmd = s.Update(find[credentialsResultMsg](t, cmd))

	assert.Nil(t, cmd)
	assert.Equal(t, "Invalid email or password", lastToast(t, shared))
	assert.Equal(t, views.LoginView, s.(AuthModel).View())
}

func TestAuth_SecondSubmitWhileOutstandingIsIgnored(t *testing.T) {
	svc := newFakeService()
	shared := newTestShared(svc, nil)

	s := fillLogin(NewAuthModel(shared), "a@b.com", "secret1")
	s, first := s.Update(keyPress(tea.KeyEnter))
	require.NotNil(t, first)
	_, second := s.Update(keyPress(tea.KeyEnter))
	assert.Nil(t, second)
}

func TestAuth_EmptyCredentialsNeverReachServer(t *testing.T) {
	svc := newFakeService()
	shared := newTestShared(svc, nil)

	_, cmd := NewAuthModel(shared).Update(keyPress(tea.KeyEnter))
	assert.Nil(t, cmd)
	assert.Empty(t, svc.Calls())
	assert.Equal(t, MsgMissingCredentials, lastToast(t, shared))
}

func TestAuth_RegisterSwitchesToLogin(t *testing.T) {
	svc := newFakeService()
	svc.on("register", reply{result: successResult("Registration successful! Please log in.", 201)})
	shared := newTestShared(svc, nil)

	s, _ := NewAuthModel(shared).Update(keyPress(tea.KeyCtrlR))
	require.Equal(t, views.RegisterView, s.(AuthModel).View())

	s = fillLogin(s, "new@b.com", "secret1")
	_, cmd := s.Update(keyPress(tea.KeyEnter))
	s, _ = s.Update(find[credentialsResultMsg](t, cmd))

	auth := s.(AuthModel)
	assert.Equal(t, views.LoginView, auth.View())
	assert.Equal(t, "new@b.com", auth.loginEmail.Value())
	assert.Equal(t, "Registration successful! Please log in.", lastToast(t, shared))
}

func TestAuth_RecoveryFullPath(t *testing.T) {
	svc := newFakeService()
	svc.on("forgot", success("If the email is registered, a reset code has been sent.", ""))
	svc.on("verify", success("Code verified.", "/reset.html"))
	shared := newTestShared(svc, nil)

	s, _ := NewAuthModel(shared).Update(keyPress(tea.KeyCtrlG))
	require.Equal(t, views.RecoveryView, s.(AuthModel).View())

	// Request a code.
	s, _ = s.Update(typed("a@b.com"))
	s, cmd := s.Update(keyPress(tea.KeyEnter))
	s, _ = s.Update(find[recoveryResultMsg](t, cmd))

	state := s.(AuthModel).Recovery().State()
	assert.Equal(t, recovery.AwaitingCode, state.Phase())
	assert.True(t, state.EmailLocked())
	assert.Equal(t, recovery.CodeSentMessage("a@b.com"), lastToast(t, shared))

	// An incomplete code stays local.
	s, _ = s.Update(typed("12345"))
	s, cmd = s.Update(keyPress(tea.KeyEnter))
	assert.Nil(t, cmd)
	assert.Equal(t, recovery.MsgIncompleteCode, lastToast(t, shared))

	// The full code verifies against the frozen email.
	s, _ = s.Update(typed("6"))
	s, cmd = s.Update(keyPress(tea.KeyEnter))
	_, cmd = s.Update(find[recoveryResultMsg](t, cmd))

	nav := find[NavigateMsg](t, cmd)
	assert.Equal(t, views.ResetPage, nav.Page)
	assert.Equal(t, []string{"forgot a@b.com", "verify a@b.com 123456"}, svc.Calls())
}

func TestAuth_FailedCodeRequestStaysAwaitingEmail(t *testing.T) {
	svc := newFakeService()
	svc.on("forgot", reply{err: apperr.NetworkFailure(errBoom)})
	shared := newTestShared(svc, nil)

	s, _ := feed(NewAuthModel(shared), keyPress(tea.KeyCtrlG), typed("a@b.com"))
	s, cmd := s.Update(keyPress(tea.KeyEnter))
	s, _ = s.Update(find[recoveryResultMsg](t, cmd))

	flow := s.(AuthModel).Recovery()
	assert.Equal(t, recovery.AwaitingEmail, flow.State().Phase())
	assert.False(t, flow.Busy())
	assert.Equal(t, apperr.MsgNetwork, lastToast(t, shared))
}

func TestAuth_LeavingRecoveryDiscardsState(t *testing.T) {
	svc := newFakeService()
	shared := newTestShared(svc, nil)

	s, _ := feed(NewAuthModel(shared), keyPress(tea.KeyCtrlG), typed("a@b.com"))
	s, cmd := s.Update(keyPress(tea.KeyEnter))
	s, _ = s.Update(find[recoveryResultMsg](t, cmd))
	require.Equal(t, recovery.AwaitingCode, s.(AuthModel).Recovery().State().Phase())

	s, _ = feed(s, keyPress(tea.KeyEsc), keyPress(tea.KeyCtrlG))
	auth := s.(AuthModel)
	assert.Equal(t, recovery.AwaitingEmail, auth.Recovery().State().Phase())
	assert.Empty(t, auth.recoveryEmail.Value())
}

func TestAuth_StaleRecoveryResultDoesNotTouchNewAttempt(t *testing.T) {
	svc := newFakeService()
	shared := newTestShared(svc, nil)

	s, _ := feed(NewAuthModel(shared), keyPress(tea.KeyCtrlG), typed("a@b.com"))
	s, cmd := s.Update(keyPress(tea.KeyEnter))
	pending := find[recoveryResultMsg](t, cmd)

	s, _ = feed(s, keyPress(tea.KeyEsc), keyPress(tea.KeyCtrlG))
	s, _ = s.Update(pending)

	flow := s.(AuthModel).Recovery()
	assert.NotSame(t, pending.flow, flow)
	assert.Equal(t, recovery.AwaitingEmail, flow.State().Phase())
	assert.False(t, pending.flow.Busy())
}

func TestAuth_BodyShowsTitle(t *testing.T) {
	shared := newTestShared(newFakeService(), nil)
	m := NewAuthModel(shared)
	assert.Contains(t, m.Body(100, 30), "Welcome Back")

	s, _ := m.Update(keyPress(tea.KeyCtrlR))
	assert.Contains(t, s.Body(100, 30), "Create Account")
}
