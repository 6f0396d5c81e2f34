// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli is the chatterm command line, built on cobra.
//
// # Commands
//
//   - (none): full-screen interface
//   - chat [--plain]: full-screen interface, or a line-mode REPL with history
//   - ask: log in, send one message, print the reply
//   - serve: development chat service
//   - theme: show or change the saved theme
//   - config: show, get, set, path, reset
//   - version
//
// The root command's PersistentPreRunE loads the configuration and builds the
// zap logger. Commands that own the terminal log to ~/.chatterm/chatterm.log;
// the rest log to stderr.
package cli
