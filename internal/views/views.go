// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package views holds the active-view variants of each screen. Each screen
// keeps exactly one of these in a single field, so two panels can never be
// visible at once.
package views

import "strings"

// =============================================================================
// AUTH SCREEN
// =============================================================================

// AuthView is the panel shown on the login screen.
type AuthView int

const (
	LoginView AuthView = iota
	RegisterView
	RecoveryView
)

// String returns the view name.
func (v AuthView) String() string {
	switch v {
	case LoginView:
		return "login"
	case RegisterView:
		return "register"
	case RecoveryView:
		return "recovery"
	default:
		return "unknown"
	}
}

// Title is the panel heading.
func (v AuthView) Title() string {
	switch v {
	case RegisterView:
		return "Create Account"
	case RecoveryView:
		return "Reset Password"
	default:
		return "Welcome Back"
	}
}

// Switch moves from v to to. discardRecovery is true when the recovery
// panel is being left, in which case its state must be thrown away.
func (v AuthView) Switch(to AuthView) (next AuthView, discardRecovery bool) {
	return to, v == RecoveryView && to != RecoveryView
}

// AfterRegister is the view shown once registration succeeds.
func AfterRegister() AuthView {
	return LoginView
}

// =============================================================================
// HOME SCREEN
// =============================================================================

// HomeView is the panel shown on the home screen.
type HomeView int

const (
	WelcomeView HomeView = iota
	ChatView
)

// String returns the view name.
func (v HomeView) String() string {
	if v == ChatView {
		return "chat"
	}
	return "welcome"
}

// Continue moves from the welcome panel to the chat.
func (v HomeView) Continue() HomeView {
	return ChatView
}

// =============================================================================
// PAGES
// =============================================================================

// Page is a top-level screen.
type Page int

const (
	AuthPage Page = iota
	ResetPage
	HomePage
)

// String returns the page name.
func (p Page) String() string {
	switch p {
	case ResetPage:
		return "reset"
	case HomePage:
		return "home"
	default:
		return "auth"
	}
}

// PageFor maps a server redirect target to a page. Unknown targets report
// false.
func PageFor(redirect string) (Page, bool) {
	path := redirect
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	switch {
	case path == "/":
		return AuthPage, true
	case strings.HasSuffix(path, "/index.html"):
		return AuthPage, true
	case strings.HasSuffix(path, "/reset.html"):
		return ResetPage, true
	case strings.HasSuffix(path, "/home.html"):
		return HomePage, true
	default:
		return AuthPage, false
	}
}
