// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app contains the bubbletea models of the terminal client.
//
// The root Model routes between three pages, mirroring the service's HTML
// pages:
//   - AuthModel: login, register and the two-step password recovery form
//   - ResetModel: choose a new password after a verified reset code
//   - HomeModel: the welcome panel and the chat transcript
//
// Network calls run as tea.Cmds and report back through the result
// messages in messages.go. Every failure ends up as a toast; no error
// leaves Update.
package app
