// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/chatterm/internal/apperr"
)

// maxResponseSize caps how much of a response body is read.
const maxResponseSize = 4 * 1024 * 1024

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// Config holds options for the API client.
type Config struct {
	// BaseURL is the chat service root (default: http://127.0.0.1:5000)
	BaseURL string

	// Timeout for a single request (default: 60s, the AI can be slow)
	Timeout time.Duration

	// UserAgent sent with every request
	UserAgent string
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:   "http://127.0.0.1:5000",
		Timeout:   60 * time.Second,
		UserAgent: "chatterm",
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the chat service. It keeps the session cookie in its own
// jar, so one Client is one logged-in session.
//
// The Client is safe for concurrent use.
type Client struct {
	config     *Config
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a client. Zero fields of config take their defaults.
func NewClient(config *Config, logger *zap.Logger) (*Client, error) {
	defaults := DefaultConfig()
	if config == nil {
		config = defaults
	}
	cfg := *config
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaults.BaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaults.UserAgent
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	if logger == nil {
		logger = zap.NewNop()
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	return &Client{
		config: &cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Jar:     jar,
		},
		logger: logger,
	}, nil
}

// BaseURL returns the service root the client talks to.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// Call sends body as JSON (nil means no body) to endpoint and decodes the
// answer.
//
// A transport failure returns a nil Result and an apperr.NetworkFailure. A
// non-2xx answer returns the Result together with an apperr.ServerRejected
// whose message is the server's "message", else its "error", else
// "Error: <status text>".
func (c *Client) Call(ctx context.Context, endpoint, method string, body any) (*Result, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, apperr.ValidationFailure(fmt.Sprintf("encode request: %v", err))
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+endpoint, reader)
	if err != nil {
		return nil, apperr.NetworkFailure(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.config.UserAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("api call failed",
			zap.String("endpoint", endpoint),
			zap.Error(err))
		return nil, apperr.NetworkFailure(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, apperr.NetworkFailure(fmt.Errorf("read response: %w", err))
	}

	result := &Result{
		OK:     resp.StatusCode >= 200 && resp.StatusCode < 300,
		Status: resp.StatusCode,
	}
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &result.Body); err != nil {
			c.logger.Debug("undecodable response body",
				zap.String("endpoint", endpoint),
				zap.Int("status", resp.StatusCode),
				zap.Error(err))
		}
	}

	c.logger.Debug("api call",
		zap.String("method", method),
		zap.String("endpoint", endpoint),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if !result.OK {
		return result, apperr.ServerRejected(resp.StatusCode, rejectionMessage(resp.StatusCode, result.Body))
	}
	return result, nil
}

// rejectionMessage picks the text shown for a failed response.
func rejectionMessage(status int, body Response) string {
	switch {
	case body.Message != "":
		return body.Message
	case body.Error != "":
		return body.Error
	default:
		return "Error: " + http.StatusText(status)
	}
}

// =============================================================================
// ENDPOINTS
// =============================================================================

// Register creates an account.
func (c *Client) Register(ctx context.Context, email, password string) (*Result, error) {
	return c.Call(ctx, PathRegister, http.MethodPost, CredentialsRequest{Email: email, Password: password})
}

// Login starts a session. On success Body.Redirect names the home page.
func (c *Client) Login(ctx context.Context, email, password string) (*Result, error) {
	return c.Call(ctx, PathLogin, http.MethodPost, CredentialsRequest{Email: email, Password: password})
}

// ForgotPassword asks the server to send a reset code to email.
func (c *Client) ForgotPassword(ctx context.Context, email string) (*Result, error) {
	return c.Call(ctx, PathForgotPassword, http.MethodPost, EmailRequest{Email: email})
}

// VerifyCode checks a reset code. On success Body.Redirect names the reset
// page and the session may set a new password.
func (c *Client) VerifyCode(ctx context.Context, email, code string) (*Result, error) {
	return c.Call(ctx, PathVerifyCode, http.MethodPost, VerifyCodeRequest{Email: email, Code: code})
}

// ResetPassword sets the new password for the verified session.
func (c *Client) ResetPassword(ctx context.Context, password string) (*Result, error) {
	return c.Call(ctx, PathResetPassword, http.MethodPost, ResetPasswordRequest{Password: password})
}

// CheckAuth reports whether the session is logged in. A 401 is a normal
// "not authenticated" answer, not an error.
func (c *Client) CheckAuth(ctx context.Context) (*AuthStatus, error) {
	res, err := c.Call(ctx, PathCheckAuth, http.MethodGet, nil)
	if res != nil && res.Status == http.StatusUnauthorized {
		return &AuthStatus{}, nil
	}
	if err != nil {
		return nil, err
	}
	return &AuthStatus{Authenticated: res.Body.Authenticated, Email: res.Body.Email}, nil
}

// Logout ends the session.
func (c *Client) Logout(ctx context.Context) (*Result, error) {
	return c.Call(ctx, PathLogout, http.MethodPost, nil)
}

// NewChat drops the server-side conversation history.
func (c *Client) NewChat(ctx context.Context) (*Result, error) {
	return c.Call(ctx, PathNewChat, http.MethodPost, nil)
}

// Chat sends one user message. The reply is in Body.Response; it can be
// empty even on success, which callers treat as a server error.
func (c *Client) Chat(ctx context.Context, message string) (*Result, error) {
	return c.Call(ctx, PathChat, http.MethodPost, ChatRequest{Message: message})
}
