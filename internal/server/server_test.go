// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jeranaias/chatterm/internal/api"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		// started by an init in the genai dependency tree
		goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"),
	)
}

// =============================================================================
// HARNESS
// =============================================================================

type fakeBackend struct {
	mu      sync.Mutex
	reply   string
	err     error
	history [][]Turn
}

func (f *fakeBackend) Reply(_ context.Context, history []Turn) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.history = append(f.history, append([]Turn(nil), history...))
	return f.reply, f.err
}

func (f *fakeBackend) fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeBackend) last() []Turn {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.history) == 0 {
		return nil
	}
	return f.history[len(f.history)-1]
}

type harness struct {
	t      *testing.T
	srv    *Server
	store  *Store
	logs   *observer.ObservedLogs
	ts     *httptest.Server
	client *http.Client
}

func newHarness(t *testing.T, backend ChatBackend) *harness {
	t.Helper()

	store, err := OpenStore(":memory:")
	require.NoError(t, err)

	core, logs := observer.New(zap.DebugLevel)
	srv := New(Config{ForgotRatePerMin: 2}, store, backend, zap.New(core))
	ts := httptest.NewServer(srv.Handler())

	h := &harness{t: t, srv: srv, store: store, logs: logs, ts: ts}
	h.client = h.newClient()

	t.Cleanup(func() {
		ts.Close()
		store.Close()
	})
	return h
}

// newClient returns a client with its own cookie jar, i.e. a fresh browser.
func (h *harness) newClient() *http.Client {
	jar, err := cookiejar.New(nil)
	require.NoError(h.t, err)
	c := &http.Client{Jar: jar, Timeout: 10 * time.Second}
	h.t.Cleanup(c.CloseIdleConnections)
	return c
}

func (h *harness) do(c *http.Client, method, path string, body any) (int, api.Response) {
	h.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(h.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, h.ts.URL+path, &buf)
	require.NoError(h.t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Do(req)
	require.NoError(h.t, err)
	defer resp.Body.Close()

	var out api.Response
	require.NoError(h.t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func (h *harness) post(path string, body any) (int, api.Response) {
	return h.do(h.client, http.MethodPost, path, body)
}

func (h *harness) register(email, password string) {
	h.t.Helper()
	status, _ := h.post(api.PathRegister, api.CredentialsRequest{Email: email, Password: password})
	require.Equal(h.t, http.StatusCreated, status)
}

func (h *harness) login(email, password string) {
	h.t.Helper()
	status, _ := h.post(api.PathLogin, api.CredentialsRequest{Email: email, Password: password})
	require.Equal(h.t, http.StatusOK, status)
}

// lastCode returns the code from the most recent simulated reset email.
func (h *harness) lastCode() string {
	h.t.Helper()
	entries := h.logs.FilterMessage("password reset code sent").All()
	require.NotEmpty(h.t, entries, "no reset code was sent")
	code, _ := entries[len(entries)-1].ContextMap()["code"].(string)
	require.Len(h.t, code, 6)
	return code
}

// =============================================================================
// ACCOUNT TESTS
// =============================================================================

func TestRegister(t *testing.T) {
	h := newHarness(t, nil)

	status, body := h.post(api.PathRegister, api.CredentialsRequest{Email: "a@x.io", Password: "pw"})
	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, MsgRegistered, body.Message)

	status, body = h.post(api.PathRegister, api.CredentialsRequest{Email: "a@x.io", Password: "other"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, MsgUserExists, body.Message)
}

func TestRegister_MissingFields(t *testing.T) {
	h := newHarness(t, nil)

	tests := []api.CredentialsRequest{
		{Email: "", Password: "pw"},
		{Email: "a@x.io", Password: ""},
		{Email: "   ", Password: "pw"},
	}
	for _, req := range tests {
		status, body := h.post(api.PathRegister, req)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, MsgMissingCredentials, body.Message)
	}
}

func TestRegister_BadBodiesAreLogged(t *testing.T) {
	h := newHarness(t, nil)

	oversized := `{"email":"` + strings.Repeat("a", MaxRequestBodySize) + `","password":"pw"}`
	for _, body := range []string{"{not json", oversized} {
		resp, err := h.client.Post(h.ts.URL+api.PathRegister, "application/json", strings.NewReader(body))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	}

	entries := h.logs.FilterMessage("request body rejected").All()
	require.Len(t, entries, 2)
	assert.Equal(t, api.PathRegister, entries[0].ContextMap()["path"])
	assert.EqualValues(t, MaxRequestBodySize, entries[1].ContextMap()["limit"])
}

func TestLogin(t *testing.T) {
	h := newHarness(t, nil)
	h.register("a@x.io", "pw")

	status, body := h.post(api.PathLogin, api.CredentialsRequest{Email: "a@x.io", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, MsgInvalidLogin, body.Message)

	status, body = h.post(api.PathLogin, api.CredentialsRequest{Email: "nobody@x.io", Password: "pw"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, MsgInvalidLogin, body.Message)

	status, body = h.post(api.PathLogin, api.CredentialsRequest{Email: "a@x.io", Password: "pw"})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, MsgLoggedIn, body.Message)
	assert.Equal(t, api.RedirectHome, body.Redirect)
}

func TestCheckAuth(t *testing.T) {
	h := newHarness(t, nil)
	h.register("a@x.io", "pw")

	status, body := h.do(h.client, http.MethodGet, api.PathCheckAuth, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.False(t, body.Authenticated)

	h.login("a@x.io", "pw")
	status, body = h.do(h.client, http.MethodGet, api.PathCheckAuth, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, body.Authenticated)
	assert.Equal(t, "a@x.io", body.Email)

	// Sessions belong to the cookie, not the server.
	status, _ = h.do(h.newClient(), http.MethodGet, api.PathCheckAuth, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestLogout(t *testing.T) {
	backend := &fakeBackend{reply: "hi"}
	h := newHarness(t, backend)
	h.register("a@x.io", "pw")
	h.login("a@x.io", "pw")
	h.post(api.PathChat, api.ChatRequest{Message: "hello"})
	require.Equal(t, 1, h.srv.chats.Len())

	status, body := h.post(api.PathLogout, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, MsgLoggedOut, body.Message)
	assert.Equal(t, 0, h.srv.chats.Len())

	status, _ = h.do(h.client, http.MethodGet, api.PathCheckAuth, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

// =============================================================================
// PASSWORD RESET TESTS
// =============================================================================

func TestPasswordReset_RoundTrip(t *testing.T) {
	h := newHarness(t, nil)
	h.register("a@x.io", "old")

	status, body := h.post(api.PathForgotPassword, api.EmailRequest{Email: "a@x.io"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, MsgCodeSent, body.Message)

	code := h.lastCode()

	status, body = h.post(api.PathVerifyCode, api.VerifyCodeRequest{Email: "a@x.io", Code: code})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, MsgCodeVerified, body.Message)
	assert.Equal(t, api.RedirectReset, body.Redirect)

	// The code is single use.
	status, body = h.post(api.PathVerifyCode, api.VerifyCodeRequest{Email: "a@x.io", Code: code})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, MsgNoResetProcess, body.Message)

	status, body = h.post(api.PathResetPassword, api.ResetPasswordRequest{Password: "new"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, MsgPasswordUpdated, body.Message)

	// The authorization is consumed by the reset.
	status, body = h.post(api.PathResetPassword, api.ResetPasswordRequest{Password: "again"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, MsgResetUnauthorized, body.Message)

	status, _ = h.post(api.PathLogin, api.CredentialsRequest{Email: "a@x.io", Password: "old"})
	assert.Equal(t, http.StatusUnauthorized, status)
	h.login("a@x.io", "new")
}

func TestForgotPassword_UnknownEmail(t *testing.T) {
	h := newHarness(t, nil)

	status, body := h.post(api.PathForgotPassword, api.EmailRequest{Email: "ghost@x.io"})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, MsgCodeSent, body.Message)
	assert.Zero(t, h.logs.FilterMessage("password reset code sent").Len())
}

func TestForgotPassword_RateLimited(t *testing.T) {
	h := newHarness(t, nil)
	h.register("a@x.io", "pw")

	for i := 0; i < 2; i++ {
		status, _ := h.post(api.PathForgotPassword, api.EmailRequest{Email: "a@x.io"})
		require.Equal(t, http.StatusOK, status)
	}
	status, body := h.post(api.PathForgotPassword, api.EmailRequest{Email: "A@x.io"})
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Equal(t, MsgTooManyRequests, body.Message)
}

func TestVerifyCode_Wrong(t *testing.T) {
	h := newHarness(t, nil)
	h.register("a@x.io", "pw")
	h.post(api.PathForgotPassword, api.EmailRequest{Email: "a@x.io"})

	wrong := "000000"
	if h.lastCode() == wrong {
		wrong = "111111"
	}
	status, body := h.post(api.PathVerifyCode, api.VerifyCodeRequest{Email: "a@x.io", Code: wrong})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, MsgInvalidCode, body.Message)

	// A wrong guess leaves the real code usable.
	status, _ = h.post(api.PathVerifyCode, api.VerifyCodeRequest{Email: "a@x.io", Code: h.lastCode()})
	assert.Equal(t, http.StatusOK, status)
}

func TestVerifyCode_Expired(t *testing.T) {
	h := newHarness(t, nil)
	h.register("a@x.io", "pw")

	issuer := NewCodeIssuer(time.Minute)
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Minute) }
	token, code, err := issuer.Issue("a@x.io")
	require.NoError(t, err)
	require.NoError(t, h.store.PutResetToken(context.Background(), token))

	status, body := h.post(api.PathVerifyCode, api.VerifyCodeRequest{Email: "a@x.io", Code: code})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, MsgCodeExpired, body.Message)

	_, err = h.store.ResetToken(context.Background(), "a@x.io")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResetPassword_Empty(t *testing.T) {
	h := newHarness(t, nil)
	h.register("a@x.io", "pw")
	h.post(api.PathForgotPassword, api.EmailRequest{Email: "a@x.io"})
	h.post(api.PathVerifyCode, api.VerifyCodeRequest{Email: "a@x.io", Code: h.lastCode()})

	status, body := h.post(api.PathResetPassword, api.ResetPasswordRequest{Password: ""})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, MsgEmptyPassword, body.Message)
}

// =============================================================================
// CHAT TESTS
// =============================================================================

func TestChat_NoBackend(t *testing.T) {
	h := newHarness(t, nil)

	status, body := h.post(api.PathChat, api.ChatRequest{Message: "hi"})
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, MsgNoBackend, body.Error)
}

func TestChat_MissingMessage(t *testing.T) {
	h := newHarness(t, &fakeBackend{reply: "x"})

	status, body := h.post(api.PathChat, api.ChatRequest{})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, MsgMissingMessage, body.Error)
}

func TestChat_KeepsHistory(t *testing.T) {
	backend := &fakeBackend{reply: "pong"}
	h := newHarness(t, backend)

	status, body := h.post(api.PathChat, api.ChatRequest{Message: "ping"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "pong", body.Response)

	h.post(api.PathChat, api.ChatRequest{Message: "again"})
	assert.Equal(t, []Turn{
		{Role: RoleUser, Text: "ping"},
		{Role: RoleModel, Text: "pong"},
		{Role: RoleUser, Text: "again"},
	}, backend.last())

	status, body = h.post(api.PathNewChat, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, MsgNewChat, body.Message)

	h.post(api.PathChat, api.ChatRequest{Message: "fresh"})
	assert.Equal(t, []Turn{{Role: RoleUser, Text: "fresh"}}, backend.last())
}

func TestChat_BackendFailure(t *testing.T) {
	backend := &fakeBackend{reply: "pong"}
	h := newHarness(t, backend)
	backend.fail(errors.New("quota exceeded"))

	status, body := h.post(api.PathChat, api.ChatRequest{Message: "ping"})
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, MsgBackendFailed+"quota exceeded", body.Error)

	// The failed turn is not kept.
	backend.fail(nil)
	h.post(api.PathChat, api.ChatRequest{Message: "retry"})
	assert.Equal(t, []Turn{{Role: RoleUser, Text: "retry"}}, backend.last())
}

// =============================================================================
// INFRASTRUCTURE TESTS
// =============================================================================

func TestHealth(t *testing.T) {
	h := newHarness(t, nil)

	resp, err := h.client.Get(h.ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestReady(t *testing.T) {
	h := newHarness(t, nil)

	resp, err := h.client.Get(h.ts.URL + "/ready")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var ready ReadyResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ready))
	assert.Equal(t, "degraded", ready.Status)
	assert.Equal(t, "ok", ready.Database)
	assert.Equal(t, "not_configured", ready.Backend)
}

func TestReady_StoreClosed(t *testing.T) {
	h := newHarness(t, &fakeBackend{})
	require.NoError(t, h.store.Close())

	resp, err := h.client.Get(h.ts.URL + "/ready")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestSecurityHeaders(t *testing.T) {
	h := newHarness(t, nil)

	resp, err := h.client.Get(h.ts.URL + api.PathCheckAuth)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
}

func TestRecoveryMiddleware(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	handler := RecoveryMiddleware(zap.New(core))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body api.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, MsgUnexpected, body.Error)
	assert.Equal(t, 1, logs.Len())
}

func TestServe_Shutdown(t *testing.T) {
	store, err := OpenStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := New(Config{}, store, nil, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	client := &http.Client{Timeout: 5 * time.Second}
	defer client.CloseIdleConnections()
	require.Eventually(t, func() bool {
		resp, err := client.Get("http://" + ln.Addr().String() + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(ShutdownTimeout):
		t.Fatal("server did not shut down")
	}
}
