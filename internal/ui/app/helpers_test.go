// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/chatterm/internal/api"
	"github.com/jeranaias/chatterm/internal/prefs"
)

// =============================================================================
// FAKES
// =============================================================================

type reply struct {
	result *api.Result
	err    error
}

type fakeService struct {
	mu      sync.Mutex
	calls   []string
	replies map[string]reply
	auth    *api.AuthStatus
	authErr error
}

func newFakeService() *fakeService {
	return &fakeService{replies: map[string]reply{}}
}

func success(message, redirect string) reply {
	return reply{result: &api.Result{OK: true, Status: 200, Body: api.Response{Message: message, Redirect: redirect}}}
}

func (f *fakeService) on(endpoint string, r reply) { f.replies[endpoint] = r }

func (f *fakeService) record(call string) reply {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	endpoint := call
	for i, c := range call {
		if c == ' ' {
			endpoint = call[:i]
			break
		}
	}
	if r, ok := f.replies[endpoint]; ok {
		return r
	}
	return reply{result: &api.Result{OK: true, Status: 200}}
}

func (f *fakeService) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeService) Register(_ context.Context, email, password string) (*api.Result, error) {
	r := f.record("register " + email + " " + password)
	return r.result, r.err
}

func (f *fakeService) Login(_ context.Context, email, password string) (*api.Result, error) {
	r := f.record("login " + email + " " + password)
	return r.result, r.err
}

func (f *fakeService) ForgotPassword(_ context.Context, email string) (*api.Result, error) {
	r := f.record("forgot " + email)
	return r.result, r.err
}

func (f *fakeService) VerifyCode(_ context.Context, email, code string) (*api.Result, error) {
	r := f.record("verify " + email + " " + code)
	return r.result, r.err
}

func (f *fakeService) ResetPassword(_ context.Context, password string) (*api.Result, error) {
	r := f.record("reset " + password)
	return r.result, r.err
}

func (f *fakeService) CheckAuth(context.Context) (*api.AuthStatus, error) {
	f.record("check_auth")
	return f.auth, f.authErr
}

func (f *fakeService) Logout(context.Context) (*api.Result, error) {
	r := f.record("logout")
	return r.result, r.err
}

func (f *fakeService) NewChat(context.Context) (*api.Result, error) {
	r := f.record("new_chat")
	return r.result, r.err
}

func (f *fakeService) Chat(_ context.Context, message string) (*api.Result, error) {
	r := f.record("chat " + message)
	return r.result, r.err
}

type fakeCopier struct {
	mu     sync.Mutex
	copied []string
	err    error
}

func (c *fakeCopier) Copy(_ context.Context, payload string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.copied = append(c.copied, payload)
	return nil
}

var errBoom = errors.New("boom")

// =============================================================================
// HELPERS
// =============================================================================

func newTestShared(svc Service, copier Copier) *Shared {
	s := NewShared(Options{Service: svc, Copier: copier, Prefs: prefs.NewMemoryStore()})
	s.SetSize(100, 40)
	return s
}

// run executes cmd and returns the messages it produces, expanding batches.
// Commands that block, such as timers, are abandoned after a short wait.
func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()

	var msg tea.Msg
	select {
	case msg = <-done:
	case <-time.After(100 * time.Millisecond):
		return nil
	}

	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, run(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

// find returns the first message of type T produced by cmd.
func find[T tea.Msg](t *testing.T, cmd tea.Cmd) T {
	t.Helper()
	for _, msg := range run(cmd) {
		if m, ok := msg.(T); ok {
			return m
		}
	}
	var zero T
	require.Failf(t, "message not produced", "%T", zero)
	return zero
}

func keyPress(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

func typed(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// feed sends msgs to s in order and returns the final screen and last cmd.
func feed(s screen, msgs ...tea.Msg) (screen, tea.Cmd) {
	var cmd tea.Cmd
	for _, msg := range msgs {
		s, cmd = s.Update(msg)
	}
	return s, cmd
}

func lastToast(t *testing.T, s *Shared) string {
	t.Helper()
	toasts := s.Toasts.Toasts()
	require.NotEmpty(t, toasts)
	return toasts[0].Message
}

func successResult(message string, status int) *api.Result {
	return &api.Result{OK: true, Status: status, Body: api.Response{Message: message}}
}
