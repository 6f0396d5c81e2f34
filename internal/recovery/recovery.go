// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package recovery implements the two-step password recovery form.
//
// The same form is used twice. First it asks for an email and requests a
// code; once the server confirms, the email is frozen and the form asks for
// the 6-digit code instead. The package only decides what to send; the
// caller performs the request and reports back.
package recovery

import (
	"fmt"
	"unicode/utf8"
)

// CodeLength is the number of characters a reset code must have.
const CodeLength = 6

// User-facing messages.
const (
	MsgIncompleteCode = "Please enter the full 6-digit code."
	ReasonIncomplete  = "incomplete code"
)

// CodeSentMessage is shown after a code request succeeds.
func CodeSentMessage(email string) string {
	return fmt.Sprintf("A 6-digit code has been sent to %s.", email)
}

// Phase is the step the recovery form is on.
type Phase int

const (
	AwaitingEmail Phase = iota
	AwaitingCode
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case AwaitingEmail:
		return "awaiting_email"
	case AwaitingCode:
		return "awaiting_code"
	default:
		return "unknown"
	}
}

// State is the recovery session data. The zero value is AwaitingEmail.
type State struct {
	phase Phase
	email string
}

// NewState returns the initial state.
func NewState() State {
	return State{phase: AwaitingEmail}
}

// Phase returns the current phase.
func (s State) Phase() Phase {
	return s.phase
}

// Email returns the frozen email. It is empty while AwaitingEmail.
func (s State) Email() string {
	return s.email
}

// EmailLocked reports whether the email input must be disabled.
func (s State) EmailLocked() bool {
	return s.phase == AwaitingCode
}

// CodeSent returns the state after the server accepted a code request for
// email. Once AwaitingCode the state is returned unchanged, so the email
// cannot be replaced.
func (s State) CodeSent(email string) State {
	if s.phase == AwaitingCode {
		return s
	}
	return State{phase: AwaitingCode, email: email}
}

// Form is what the user typed into the recovery form.
type Form struct {
	Email string
	Code  string
}

// Action tells the caller what to do with a submission.
type Action interface {
	action()
}

// RequestCode asks the server to send a reset code to Email.
type RequestCode struct {
	Email string
}

// VerifyCode asks the server to check Code for Email.
type VerifyCode struct {
	Email string
	Code  string
}

// Invalid means the submission was rejected locally and nothing is sent.
type Invalid struct {
	Reason string
}

func (RequestCode) action() {}
func (VerifyCode) action()  {}
func (Invalid) action()     {}

// Submit decides the action for a submission of form in state. The returned
// state always equals the input; advancing is the caller's job via CodeSent
// once the server acknowledges.
func Submit(state State, form Form) (State, Action) {
	switch state.phase {
	case AwaitingCode:
		if utf8.RuneCountInString(form.Code) != CodeLength {
			return state, Invalid{Reason: ReasonIncomplete}
		}
		return state, VerifyCode{Email: state.email, Code: form.Code}
	default:
		return state, RequestCode{Email: form.Email}
	}
}
