// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat turns and transcripts.
//
// # Key Types
//
//   - Sender: who produced a turn (User or Bot)
//   - Segment: one classified unit (Prose or Code) of a parsed chat message
//   - ChatTurn: an immutable rendered exchange unit
//   - Transcript: the ordered, append-only list of turns shown on screen
//
// ChatTurns are produced by the render package; this package only holds them.
//
// # Usage
//
//	tr := model.NewTranscript()
//	tr.Append(render.Render("hi", model.SenderUser))
//	tr.Clear() // new chat: back to the greeting
package model
