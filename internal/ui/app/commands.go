// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/chatterm/internal/api"
	"github.com/jeranaias/chatterm/internal/recovery"
	"github.com/jeranaias/chatterm/internal/views"
)

// =============================================================================
// COMMAND CREATORS
// =============================================================================

func navigateCmd(page views.Page) tea.Cmd {
	return func() tea.Msg {
		return NavigateMsg{Page: page}
	}
}

// redirectCmd navigates to the page a successful result points at, if any.
func redirectCmd(result *api.Result) tea.Cmd {
	if result == nil || result.Body.Redirect == "" {
		return nil
	}
	page, ok := views.PageFor(result.Body.Redirect)
	if !ok {
		return nil
	}
	return navigateCmd(page)
}

func loginCmd(s *Shared, email, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := s.requestContext()
		defer cancel()
		result, err := s.Service.Login(ctx, email, password)
		return credentialsResultMsg{form: loginForm, email: email, result: result, err: err}
	}
}

func registerCmd(s *Shared, email, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := s.requestContext()
		defer cancel()
		result, err := s.Service.Register(ctx, email, password)
		return credentialsResultMsg{form: registerForm, email: email, result: result, err: err}
	}
}

func recoveryCmd(s *Shared, flow *recovery.Flow, action recovery.Action) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := s.requestContext()
		defer cancel()

		var (
			result *api.Result
			err    error
		)
		switch a := action.(type) {
		case recovery.RequestCode:
			result, err = s.Service.ForgotPassword(ctx, a.Email)
		case recovery.VerifyCode:
			result, err = s.Service.VerifyCode(ctx, a.Email, a.Code)
		}
		return recoveryResultMsg{flow: flow, action: action, result: result, err: err}
	}
}

func resetCmd(s *Shared, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := s.requestContext()
		defer cancel()
		result, err := s.Service.ResetPassword(ctx, password)
		return resetResultMsg{result: result, err: err}
	}
}

func checkAuthCmd(s *Shared) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := s.requestContext()
		defer cancel()
		status, err := s.Service.CheckAuth(ctx)
		return authCheckMsg{status: status, err: err}
	}
}

func chatCmd(s *Shared, message string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := s.requestContext()
		defer cancel()
		result, err := s.Service.Chat(ctx, message)
		return chatResultMsg{result: result, err: err}
	}
}

func newChatCmd(s *Shared) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := s.requestContext()
		defer cancel()
		result, err := s.Service.NewChat(ctx)
		return newChatResultMsg{result: result, err: err}
	}
}

func logoutCmd(s *Shared) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := s.requestContext()
		defer cancel()
		result, err := s.Service.Logout(ctx)
		return logoutResultMsg{result: result, err: err}
	}
}

func copyCmd(s *Shared, turnID, payload string) tea.Cmd {
	done := func(err error) tea.Msg {
		return copyResultMsg{turnID: turnID, err: err}
	}
	if pc, ok := s.Copier.(ProgramCopier); ok {
		return pc.Cmd(context.Background(), payload, done)
	}
	return func() tea.Msg {
		return done(s.Copier.Copy(context.Background(), payload))
	}
}
