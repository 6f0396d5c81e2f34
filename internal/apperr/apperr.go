// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package apperr defines the error kinds chatterm surfaces to the user.
//
// Every failure that reaches the UI is one of four kinds. None of them is
// fatal: callers convert them to a transient notification with Notice and
// keep their current state so the user can retry.
package apperr

import (
	"errors"
	"strings"
)

// =============================================================================
// ERROR KINDS
// =============================================================================

// Kind categorizes an error for user-facing handling.
type Kind int

const (
	KindUnknown Kind = iota
	// KindNetwork means the request never completed.
	KindNetwork
	// KindServerRejected means the server answered with a failure status.
	KindServerRejected
	// KindValidation means local input was rejected before any request.
	KindValidation
	// KindClipboard means every copy mechanism failed.
	KindClipboard
)

// String returns the kind's name.
func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindServerRejected:
		return "server_rejected"
	case KindValidation:
		return "validation"
	case KindClipboard:
		return "clipboard"
	default:
		return "unknown"
	}
}

// Default user-facing messages.
const (
	MsgNetwork   = "Network error. Please try again."
	MsgClipboard = "Failed to copy text. Please select and copy manually."
	MsgUnknown   = "Something went wrong. Please try again."
)

// =============================================================================
// ERROR TYPE
// =============================================================================

// Error is a categorized chatterm error.
type Error struct {
	Kind    Kind
	Message string
	// Status is the HTTP status for KindServerRejected, zero otherwise.
	Status int
	Cause  error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports kind equality so errors.Is(err, &Error{Kind: KindNetwork}) works
// without comparing messages.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Message == "" && t.Kind == e.Kind
}

// Sentinels for errors.Is checks by kind.
var (
	ErrNetwork        = &Error{Kind: KindNetwork}
	ErrServerRejected = &Error{Kind: KindServerRejected}
	ErrValidation     = &Error{Kind: KindValidation}
	ErrClipboard      = &Error{Kind: KindClipboard}
)

// NetworkFailure wraps a transport error.
func NetworkFailure(cause error) *Error {
	return &Error{Kind: KindNetwork, Message: MsgNetwork, Cause: cause}
}

// ServerRejected records a failure response from the server.
func ServerRejected(status int, message string) *Error {
	return &Error{Kind: KindServerRejected, Status: status, Message: message}
}

// ValidationFailure records locally rejected input.
func ValidationFailure(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// ClipboardFailure records that both copy mechanisms failed. primary and
// fallback are the errors from each attempt; either may be nil.
func ClipboardFailure(primary, fallback error) *Error {
	return &Error{Kind: KindClipboard, Message: MsgClipboard, Cause: errors.Join(primary, fallback)}
}

// KindOf returns the kind of err, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// =============================================================================
// NOTIFICATIONS
// =============================================================================

// Notice converts err into the single line shown to the user. The cause is
// left out; it belongs in the log.
func Notice(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if !errors.As(err, &e) {
		return MsgUnknown
	}
	msg := strings.TrimSpace(e.Message)
	if msg != "" {
		return msg
	}
	switch e.Kind {
	case KindNetwork:
		return MsgNetwork
	case KindClipboard:
		return MsgClipboard
	default:
		return MsgUnknown
	}
}
