// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

// Endpoint paths.
const (
	PathRegister       = "/api/register"
	PathLogin          = "/api/login"
	PathForgotPassword = "/api/forgot_password"
	PathVerifyCode     = "/api/verify_code"
	PathResetPassword  = "/api/reset_password"
	PathCheckAuth      = "/api/check_auth"
	PathLogout         = "/api/logout"
	PathNewChat        = "/api/new_chat"
	PathChat           = "/api/chat"
)

// Redirect targets the server hands back.
const (
	RedirectLogin = "/"
	RedirectIndex = "/index.html"
	RedirectReset = "/reset.html"
	RedirectHome  = "/home.html"
)

// DefaultSuccessMessage is shown when a successful response has no message.
const DefaultSuccessMessage = "Success!"

// =============================================================================
// REQUEST BODIES
// =============================================================================

// CredentialsRequest is the body of register and login.
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// EmailRequest is the body of forgot_password.
type EmailRequest struct {
	Email string `json:"email"`
}

// VerifyCodeRequest is the body of verify_code.
type VerifyCodeRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// ResetPasswordRequest is the body of reset_password.
type ResetPasswordRequest struct {
	Password string `json:"password"`
}

// ChatRequest is the body of chat.
type ChatRequest struct {
	Message string `json:"message"`
}

// =============================================================================
// RESPONSE
// =============================================================================

// Response is the union of every field the service returns. Endpoints fill
// the subset they need.
type Response struct {
	Message       string `json:"message,omitempty"`
	Redirect      string `json:"redirect,omitempty"`
	Response      string `json:"response,omitempty"`
	Error         string `json:"error,omitempty"`
	Authenticated bool   `json:"authenticated,omitempty"`
	Email         string `json:"email,omitempty"`
}

// Result is a completed exchange.
type Result struct {
	OK     bool
	Status int
	Body   Response
}

// Notice returns the success message for a toast.
func (r *Result) Notice() string {
	if r == nil || r.Body.Message == "" {
		return DefaultSuccessMessage
	}
	return r.Body.Message
}

// AuthStatus is the answer of check_auth.
type AuthStatus struct {
	Authenticated bool
	Email         string
}
