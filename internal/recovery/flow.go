// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package recovery

import (
	"sync/atomic"
	"unicode/utf8"

	"github.com/jeranaias/chatterm/internal/apperr"
)

// MinPasswordLength is the shortest password the reset page accepts.
const MinPasswordLength = 6

// Guard allows one outstanding submission at a time.
type Guard struct {
	busy atomic.Bool
}

// TryAcquire claims the guard. It returns false if a submission is already
// outstanding.
func (g *Guard) TryAcquire() bool {
	return g.busy.CompareAndSwap(false, true)
}

// Release reopens the guard.
func (g *Guard) Release() {
	g.busy.Store(false)
}

// Busy reports whether a submission is outstanding.
func (g *Guard) Busy() bool {
	return g.busy.Load()
}

// Flow is one visible recovery form: its state plus the in-flight guard.
// Discard the Flow when the form is hidden.
type Flow struct {
	state State
	guard Guard
}

// NewFlow returns a flow in AwaitingEmail.
func NewFlow() *Flow {
	return &Flow{state: NewState()}
}

// State returns the current state.
func (f *Flow) State() State {
	return f.state
}

// Busy reports whether a submission is outstanding.
func (f *Flow) Busy() bool {
	return f.guard.Busy()
}

// Submit evaluates form. When the action needs the server the guard is
// taken and ok is true; the caller must call Resolve when the request
// finishes. Invalid actions never take the guard. If a submission is
// already outstanding, ok is false and action is nil.
func (f *Flow) Submit(form Form) (action Action, ok bool) {
	if f.guard.Busy() {
		return nil, false
	}
	_, action = Submit(f.state, form)
	if _, invalid := action.(Invalid); invalid {
		return action, true
	}
	if !f.guard.TryAcquire() {
		return nil, false
	}
	return action, true
}

// Resolve records the server's answer to action and releases the guard.
// A successful RequestCode advances to AwaitingCode. Everything else leaves
// the state alone; a successful VerifyCode ends the flow and the caller
// navigates away.
func (f *Flow) Resolve(action Action, success bool) {
	defer f.guard.Release()
	if !success {
		return
	}
	if req, isRequest := action.(RequestCode); isRequest {
		f.state = f.state.CodeSent(req.Email)
	}
}

// ValidateNewPassword checks the reset page's two password fields.
func ValidateNewPassword(password, confirm string) error {
	if password != confirm {
		return apperr.ValidationFailure("Passwords do not match.")
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return apperr.ValidationFailure("Password must be at least 6 characters.")
	}
	return nil
}
