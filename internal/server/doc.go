// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server is a development server for the chat service API.
//
// Endpoints (all JSON):
//   - POST /api/register         - create an account
//   - POST /api/login            - start a logged-in session
//   - POST /api/forgot_password  - send a 6-digit reset code (logged, not mailed)
//   - POST /api/verify_code      - check a reset code, authorize the reset
//   - POST /api/reset_password   - set a new password
//   - GET  /api/check_auth       - report the session's login state
//   - POST /api/logout           - end the session and its chat
//   - POST /api/new_chat         - forget the current conversation
//   - POST /api/chat             - send a message to the model
//   - GET  /health               - liveness
//   - GET  /ready                - store and model status
//
// Users and reset codes live in SQLite; sessions and conversations live in
// memory behind an opaque cookie.
package server
