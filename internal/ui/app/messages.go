// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"github.com/jeranaias/chatterm/internal/api"
	"github.com/jeranaias/chatterm/internal/recovery"
	"github.com/jeranaias/chatterm/internal/views"
)

// NavigateMsg asks the root model to show another page.
type NavigateMsg struct {
	Page views.Page
}

// formKind names the auth forms that submit credentials.
type formKind int

const (
	loginForm formKind = iota
	registerForm
)

// credentialsResultMsg reports a login or register submission.
type credentialsResultMsg struct {
	form   formKind
	email  string
	result *api.Result
	err    error
}

// recoveryResultMsg reports a request-code or verify-code submission. flow
// identifies the recovery attempt the result belongs to.
type recoveryResultMsg struct {
	flow   *recovery.Flow
	action recovery.Action
	result *api.Result
	err    error
}

// resetResultMsg reports a new-password submission.
type resetResultMsg struct {
	result *api.Result
	err    error
}

// authCheckMsg reports check_auth on the home page.
type authCheckMsg struct {
	status *api.AuthStatus
	err    error
}

// chatResultMsg reports a chat message round trip.
type chatResultMsg struct {
	result *api.Result
	err    error
}

// newChatResultMsg reports a new_chat request.
type newChatResultMsg struct {
	result *api.Result
	err    error
}

// logoutResultMsg reports a logout request.
type logoutResultMsg struct {
	result *api.Result
	err    error
}

// copyResultMsg reports a clipboard write for the turn with id turnID.
type copyResultMsg struct {
	turnID string
	err    error
}

// themeChangedMsg tells the page to re-render after a theme toggle.
type themeChangedMsg struct{}
