// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for chatterm.
//
// Supports both TOML and JSON configuration formats, with defaults,
// environment variable overrides, and validation.
//
// # Sections
//
//   - [client]: chat service URL and request timeout
//   - [ui]: initial theme and word wrap
//   - [log]: log level and file
//   - [server]: the development server (chatterm serve)
//
// # Configuration Precedence
//
//   - Environment variables (CHATTERM_*, GEMINI_*)
//   - ~/.chatterm/config.toml
//   - ~/.chatterm/config.json
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	client, err := api.NewClient(&api.Config{
//	    BaseURL: cfg.Client.ServerURL,
//	    Timeout: cfg.Client.Timeout(),
//	}, logger)
package config
