// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/jeranaias/chatterm/internal/api"
)

// Messages returned by the API.
const (
	MsgMissingCredentials = "Missing email or password"
	MsgUserExists         = "User already exists"
	MsgRegistered         = "Registration successful! You can now log in."
	MsgInvalidLogin       = "Invalid email or password"
	MsgLoggedIn           = "Login successful"
	MsgCodeSent           = "If the email is registered, a reset code has been sent."
	MsgTooManyRequests    = "Too many reset requests. Please wait a minute and try again."
	MsgNoResetProcess     = "Invalid email or reset process expired."
	MsgCodeExpired        = "Reset code has expired. Please try again."
	MsgCodeVerified       = "Code verified successfully."
	MsgInvalidCode        = "Invalid reset code."
	MsgResetUnauthorized  = "Reset authorization failed. Please restart the process."
	MsgEmptyPassword      = "New password cannot be empty."
	MsgPasswordUpdated    = "Password updated successfully! You can now log in."
	MsgLoggedOut          = "Logged out successfully"
	MsgNewChat            = "New chat started"
	MsgNoBackend          = "Gemini API key not configured on the server."
	MsgMissingMessage     = "Missing message content"
	MsgBackendFailed      = "Failed to communicate with the AI model: "
	MsgUnexpected         = "An unexpected error occurred while processing the response."
)

func messageBody(msg string) api.Response { return api.Response{Message: msg} }

func errorBody(msg string) api.Response { return api.Response{Error: msg} }

// ============================================================================
// ACCOUNTS
// ============================================================================

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req api.CredentialsRequest
	s.decodeJSON(w, r, &req)
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, messageBody(MsgMissingCredentials))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.internalError(w, "hash password", err)
		return
	}
	if err := s.store.CreateUser(r.Context(), email, string(hash)); err != nil {
		if errors.Is(err, ErrUserExists) {
			writeJSON(w, http.StatusConflict, messageBody(MsgUserExists))
			return
		}
		s.internalError(w, "create user", err)
		return
	}

	s.logger.Info("user registered", zap.String("email", email))
	writeJSON(w, http.StatusCreated, messageBody(MsgRegistered))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req api.CredentialsRequest
	s.decodeJSON(w, r, &req)
	email := strings.TrimSpace(req.Email)

	hash, err := s.store.PasswordHash(r.Context(), email)
	if errors.Is(err, ErrNotFound) {
		writeJSON(w, http.StatusUnauthorized, messageBody(MsgInvalidLogin))
		return
	}
	if err != nil {
		s.internalError(w, "load user", err)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)) != nil {
		writeJSON(w, http.StatusUnauthorized, messageBody(MsgInvalidLogin))
		return
	}

	var oldChat string
	s.sessions.Update(SessionID(r.Context()), func(sess *Session) {
		sess.LoggedIn = true
		sess.Email = email
		oldChat, sess.ChatID = sess.ChatID, ""
	})
	if oldChat != "" {
		s.chats.Delete(oldChat)
	}
	writeJSON(w, http.StatusOK, api.Response{Message: MsgLoggedIn, Redirect: api.RedirectHome})
}

func (s *Server) handleCheckAuth(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Get(SessionID(r.Context()))
	if !sess.LoggedIn {
		writeJSON(w, http.StatusUnauthorized, api.Response{Authenticated: false})
		return
	}
	writeJSON(w, http.StatusOK, api.Response{Authenticated: true, Email: sess.Email})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	var chatID string
	s.sessions.Update(SessionID(r.Context()), func(sess *Session) {
		chatID = sess.ChatID
		sess.LoggedIn = false
		sess.Email = ""
		sess.ChatID = ""
	})
	if chatID != "" {
		s.chats.Delete(chatID)
	}
	writeJSON(w, http.StatusOK, messageBody(MsgLoggedOut))
}

// ============================================================================
// PASSWORD RESET
// ============================================================================

func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req api.EmailRequest
	s.decodeJSON(w, r, &req)
	email := strings.TrimSpace(req.Email)

	if email != "" && !s.limiter.Allow(email) {
		writeJSON(w, http.StatusTooManyRequests, messageBody(MsgTooManyRequests))
		return
	}

	exists, err := s.store.UserExists(r.Context(), email)
	if err != nil {
		s.internalError(w, "load user", err)
		return
	}
	if exists {
		token, code, err := s.codes.Issue(email)
		if err != nil {
			s.internalError(w, "issue reset code", err)
			return
		}
		if err := s.store.PutResetToken(r.Context(), token); err != nil {
			s.internalError(w, "store reset code", err)
			return
		}
		// Simulated email.
		s.logger.Info("password reset code sent",
			zap.String("to", email),
			zap.String("code", code),
			zap.Time("expires_at", token.ExpiresAt),
		)
	}
	writeJSON(w, http.StatusOK, messageBody(MsgCodeSent))
}

func (s *Server) handleVerifyCode(w http.ResponseWriter, r *http.Request) {
	var req api.VerifyCodeRequest
	s.decodeJSON(w, r, &req)
	email := strings.TrimSpace(req.Email)

	token, err := s.store.ResetToken(r.Context(), email)
	if errors.Is(err, ErrNotFound) {
		writeJSON(w, http.StatusBadRequest, messageBody(MsgNoResetProcess))
		return
	}
	if err != nil {
		s.internalError(w, "load reset code", err)
		return
	}

	switch s.codes.Check(token, strings.TrimSpace(req.Code)) {
	case CodeExpired:
		if err := s.store.DeleteResetToken(r.Context(), email); err != nil {
			s.logger.Warn("failed to delete expired reset code", zap.Error(err))
		}
		writeJSON(w, http.StatusBadRequest, messageBody(MsgCodeExpired))
	case CodeInvalid:
		writeJSON(w, http.StatusBadRequest, messageBody(MsgInvalidCode))
	default:
		if err := s.store.DeleteResetToken(r.Context(), email); err != nil {
			s.internalError(w, "consume reset code", err)
			return
		}
		s.sessions.Update(SessionID(r.Context()), func(sess *Session) {
			sess.ResetEmail = email
		})
		writeJSON(w, http.StatusOK, api.Response{Message: MsgCodeVerified, Redirect: api.RedirectReset})
	}
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req api.ResetPasswordRequest
	s.decodeJSON(w, r, &req)

	var email string
	s.sessions.Update(SessionID(r.Context()), func(sess *Session) {
		email, sess.ResetEmail = sess.ResetEmail, ""
	})
	if email == "" {
		writeJSON(w, http.StatusUnauthorized, messageBody(MsgResetUnauthorized))
		return
	}
	if req.Password == "" {
		writeJSON(w, http.StatusBadRequest, messageBody(MsgEmptyPassword))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.internalError(w, "hash password", err)
		return
	}
	if err := s.store.UpdatePassword(r.Context(), email, string(hash)); err != nil {
		s.internalError(w, "update password", err)
		return
	}
	s.logger.Info("password reset", zap.String("email", email))
	writeJSON(w, http.StatusOK, messageBody(MsgPasswordUpdated))
}

// ============================================================================
// CHAT
// ============================================================================

func (s *Server) handleNewChat(w http.ResponseWriter, r *http.Request) {
	s.sessions.Update(SessionID(r.Context()), func(sess *Session) {
		sess.ChatID = ""
	})
	writeJSON(w, http.StatusOK, messageBody(MsgNewChat))
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if s.backend == nil {
		writeJSON(w, http.StatusInternalServerError, errorBody(MsgNoBackend))
		return
	}

	var req api.ChatRequest
	s.decodeJSON(w, r, &req)
	if req.Message == "" {
		writeJSON(w, http.StatusBadRequest, errorBody(MsgMissingMessage))
		return
	}

	sess := s.sessions.Update(SessionID(r.Context()), func(sess *Session) {
		if sess.ChatID == "" {
			sess.ChatID = uuid.NewString()
		}
	})

	userTurn := Turn{Role: RoleUser, Text: req.Message}
	history := append(s.chats.History(sess.ChatID), userTurn)

	reply, err := s.backend.Reply(r.Context(), history)
	if err != nil {
		s.logger.Warn("model request failed", zap.String("chat_id", sess.ChatID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorBody(MsgBackendFailed+err.Error()))
		return
	}

	s.chats.Append(sess.ChatID, userTurn, Turn{Role: RoleModel, Text: reply})
	writeJSON(w, http.StatusOK, api.Response{Response: reply})
}

// ReadyResponse is the body of GET /ready.
type ReadyResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Database string `json:"database"`
	Backend  string `json:"backend"`
	Sessions int    `json:"sessions"`
}

// handleReady reports whether the store answers and a model is configured.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ready := ReadyResponse{
		Status:   "ok",
		Version:  Version,
		Database: "ok",
		Backend:  "configured",
		Sessions: s.sessions.Len(),
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.store.Ping(ctx); err != nil {
		s.logger.Warn("store ping failed", zap.Error(err))
		ready.Database = "unavailable"
		ready.Status = "unavailable"
		writeJSON(w, http.StatusServiceUnavailable, ready)
		return
	}
	if s.backend == nil {
		ready.Backend = "not_configured"
		ready.Status = "degraded"
	}
	writeJSON(w, http.StatusOK, ready)
}

func (s *Server) internalError(w http.ResponseWriter, op string, err error) {
	s.logger.Error("request failed", zap.String("op", op), zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, errorBody(MsgUnexpected))
}
