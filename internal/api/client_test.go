// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/chatterm/internal/apperr"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(&Config{BaseURL: srv.URL + "/", Timeout: 5 * time.Second}, nil)
	require.NoError(t, err)
	return client
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNewClient_Defaults(t *testing.T) {
	client, err := NewClient(nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:5000", client.BaseURL())
	assert.Equal(t, 60*time.Second, client.httpClient.Timeout)
	assert.NotNil(t, client.httpClient.Jar)
}

func TestCall_SendsJSONBody(t *testing.T) {
	var got CredentialsRequest
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, PathLogin, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(w, http.StatusOK, Response{Message: "Login successful", Redirect: RedirectHome})
	}))

	res, err := client.Login(context.Background(), "a@b.com", "secret")

	require.NoError(t, err)
	assert.Equal(t, CredentialsRequest{Email: "a@b.com", Password: "secret"}, got)
	assert.True(t, res.OK)
	assert.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, RedirectHome, res.Body.Redirect)
	assert.Equal(t, "Login successful", res.Notice())
}

func TestCall_SuccessWithoutMessage(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{})
	}))

	res, err := client.NewChat(context.Background())

	require.NoError(t, err)
	assert.Equal(t, DefaultSuccessMessage, res.Notice())
}

func TestCall_ServerRejected(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    any
		wantMsg string
	}{
		{
			name:    "message field",
			status:  http.StatusUnauthorized,
			body:    Response{Message: "Invalid email or password"},
			wantMsg: "Invalid email or password",
		},
		{
			name:    "error field",
			status:  http.StatusInternalServerError,
			body:    Response{Error: "Gemini API key not configured on the server."},
			wantMsg: "Gemini API key not configured on the server.",
		},
		{
			name:    "no usable body",
			status:  http.StatusBadGateway,
			body:    nil,
			wantMsg: "Error: Bad Gateway",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.body == nil {
					w.WriteHeader(tt.status)
					_, _ = w.Write([]byte("<html>bad gateway</html>"))
					return
				}
				writeJSON(w, tt.status, tt.body)
			}))

			res, err := client.Chat(context.Background(), "hi")

			require.Error(t, err)
			assert.ErrorIs(t, err, apperr.ErrServerRejected)
			assert.Equal(t, tt.wantMsg, apperr.Notice(err))
			require.NotNil(t, res)
			assert.False(t, res.OK)
			assert.Equal(t, tt.status, res.Status)

			var ae *apperr.Error
			require.ErrorAs(t, err, &ae)
			assert.Equal(t, tt.status, ae.Status)
		})
	}
}

func TestCall_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client, err := NewClient(&Config{BaseURL: url, Timeout: time.Second}, nil)
	require.NoError(t, err)

	res, err := client.ForgotPassword(context.Background(), "a@b.com")

	assert.Nil(t, res)
	assert.ErrorIs(t, err, apperr.ErrNetwork)
	assert.Equal(t, apperr.MsgNetwork, apperr.Notice(err))
}

func TestCall_ContextCancelled(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, Response{})
	}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Logout(ctx)
	assert.ErrorIs(t, err, apperr.ErrNetwork)
}

func TestCall_KeepsSessionCookie(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(PathLogin, func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "chatterm_session", Value: "abc", Path: "/"})
		writeJSON(w, http.StatusOK, Response{Redirect: RedirectHome})
	})
	mux.HandleFunc(PathCheckAuth, func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie("chatterm_session")
		if err != nil || c.Value != "abc" {
			writeJSON(w, http.StatusUnauthorized, Response{})
			return
		}
		writeJSON(w, http.StatusOK, Response{Authenticated: true, Email: "a@b.com"})
	})
	client := newTestClient(t, mux)
	ctx := context.Background()

	status, err := client.CheckAuth(ctx)
	require.NoError(t, err)
	assert.False(t, status.Authenticated, "401 means logged out, not an error")

	_, err = client.Login(ctx, "a@b.com", "secret")
	require.NoError(t, err)

	status, err = client.CheckAuth(ctx)
	require.NoError(t, err)
	assert.Equal(t, &AuthStatus{Authenticated: true, Email: "a@b.com"}, status)
}

func TestEndpoints_PathsAndBodies(t *testing.T) {
	type seen struct {
		method string
		path   string
		body   map[string]string
	}
	var last seen
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		last = seen{method: r.Method, path: r.URL.Path}
		if r.ContentLength > 0 {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&last.body))
		}
		writeJSON(w, http.StatusOK, Response{Message: "ok"})
	}))
	ctx := context.Background()

	tests := []struct {
		name string
		call func() error
		want seen
	}{
		{"register", func() error { _, err := client.Register(ctx, "a@b.com", "pw"); return err },
			seen{http.MethodPost, PathRegister, map[string]string{"email": "a@b.com", "password": "pw"}}},
		{"forgot", func() error { _, err := client.ForgotPassword(ctx, "a@b.com"); return err },
			seen{http.MethodPost, PathForgotPassword, map[string]string{"email": "a@b.com"}}},
		{"verify", func() error { _, err := client.VerifyCode(ctx, "a@b.com", "123456"); return err },
			seen{http.MethodPost, PathVerifyCode, map[string]string{"email": "a@b.com", "code": "123456"}}},
		{"reset", func() error { _, err := client.ResetPassword(ctx, "abcdef"); return err },
			seen{http.MethodPost, PathResetPassword, map[string]string{"password": "abcdef"}}},
		{"chat", func() error { _, err := client.Chat(ctx, "hello"); return err },
			seen{http.MethodPost, PathChat, map[string]string{"message": "hello"}}},
		{"logout", func() error { _, err := client.Logout(ctx); return err },
			seen{http.MethodPost, PathLogout, nil}},
		{"new chat", func() error { _, err := client.NewChat(ctx); return err },
			seen{http.MethodPost, PathNewChat, nil}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			last = seen{}
			require.NoError(t, tt.call())
			assert.Equal(t, tt.want, last)
		})
	}
}
