// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// GLOBAL KEYS
// =============================================================================

// GlobalKeyMap holds bindings that work on every page.
type GlobalKeyMap struct {
	Quit        key.Binding
	ToggleTheme key.Binding
}

// DefaultGlobalKeyMap returns the page-independent bindings.
func DefaultGlobalKeyMap() GlobalKeyMap {
	return GlobalKeyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+q"),
			key.WithHelp("C-c", "quit"),
		),
		ToggleTheme: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("C-t", "theme"),
		),
	}
}

// =============================================================================
// FORM KEYS
// =============================================================================

// FormKeyMap holds bindings of the auth and reset forms.
type FormKeyMap struct {
	Next     key.Binding
	Prev     key.Binding
	Submit   key.Binding
	Login    key.Binding
	Register key.Binding
	Forgot   key.Binding
	Back     key.Binding
}

// DefaultFormKeyMap returns the form bindings.
func DefaultFormKeyMap() FormKeyMap {
	return FormKeyMap{
		Next: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("Tab", "next field"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("S-Tab", "prev field"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "submit"),
		),
		Login: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("C-l", "login"),
		),
		Register: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("C-r", "register"),
		),
		Forgot: key.NewBinding(
			key.WithKeys("ctrl+g"),
			key.WithHelp("C-g", "forgot password"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "back to login"),
		),
	}
}

// =============================================================================
// CHAT KEYS
// =============================================================================

// ChatKeyMap holds bindings of the home page.
type ChatKeyMap struct {
	Send       key.Binding
	Newline    key.Binding
	Copy       key.Binding
	SelectPrev key.Binding
	SelectNext key.Binding
	PageUp     key.Binding
	PageDown   key.Binding
	NewChat    key.Binding
	Logout     key.Binding
	Continue   key.Binding
	Confirm    key.Binding
	Cancel     key.Binding
}

// DefaultChatKeyMap returns the home page bindings.
func DefaultChatKeyMap() ChatKeyMap {
	return ChatKeyMap{
		Send: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "send"),
		),
		Newline: key.NewBinding(
			key.WithKeys("ctrl+j", "alt+enter"),
			key.WithHelp("C-j", "newline"),
		),
		Copy: key.NewBinding(
			key.WithKeys("ctrl+y"),
			key.WithHelp("C-y", "copy reply"),
		),
		SelectPrev: key.NewBinding(
			key.WithKeys("alt+up", "shift+up"),
			key.WithHelp("S-up", "prev reply"),
		),
		SelectNext: key.NewBinding(
			key.WithKeys("alt+down", "shift+down"),
			key.WithHelp("S-down", "next reply"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("PgUp", "scroll up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("PgDn", "scroll down"),
		),
		NewChat: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("C-n", "new chat"),
		),
		Logout: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("C-o", "logout"),
		),
		Continue: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("Enter", "start chatting"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("y", "Y"),
			key.WithHelp("y", "yes"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("n", "N", "esc"),
			key.WithHelp("n", "no"),
		),
	}
}
