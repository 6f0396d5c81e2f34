// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"context"
	"net/http"
	"sync"

	"github.com/google/uuid"
)

// SessionCookie is the name of the session cookie.
const SessionCookie = "chatterm_session"

// Session is the server-side state behind one cookie.
type Session struct {
	LoggedIn bool
	Email    string
	// ResetEmail is set by a verified reset code and consumed by the reset.
	ResetEmail string
	// ChatID names the conversation; empty until the first chat message.
	ChatID string
}

// SessionStore maps opaque session ids to sessions.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewSessionStore creates an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*Session)}
}

// Update runs fn on the session id under the store lock, creating it if
// needed, and returns a copy of the result.
func (s *SessionStore) Update(id string, fn func(*Session)) Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		sess = &Session{}
		s.sessions[id] = sess
	}
	if fn != nil {
		fn(sess)
	}
	return *sess
}

// Get returns a copy of the session id.
func (s *SessionStore) Get(id string) Session {
	return s.Update(id, nil)
}

// Len returns the number of sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

type sessionKey struct{}

// SessionMiddleware makes sure every request carries a session id, issuing a
// cookie when the client has none.
func SessionMiddleware(store *SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ""
			if c, err := r.Cookie(SessionCookie); err == nil {
				if _, err := uuid.Parse(c.Value); err == nil {
					id = c.Value
				}
			}
			if id == "" {
				id = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookie,
					Value:    id,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}
			store.Update(id, nil)
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, id)))
		})
	}
}

// SessionID returns the session id placed in ctx by SessionMiddleware.
func SessionID(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey{}).(string)
	return id
}

// =============================================================================
// CONVERSATIONS
// =============================================================================

// Conversations keeps chat histories by chat id.
type Conversations struct {
	mu    sync.Mutex
	chats map[string][]Turn
}

// NewConversations creates an empty history store.
func NewConversations() *Conversations {
	return &Conversations{chats: make(map[string][]Turn)}
}

// History returns a copy of the turns of chatID.
func (c *Conversations) History(chatID string) []Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Turn(nil), c.chats[chatID]...)
}

// Append adds turns to chatID.
func (c *Conversations) Append(chatID string, turns ...Turn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.chats[chatID] = append(c.chats[chatID], turns...)
}

// Delete drops chatID.
func (c *Conversations) Delete(chatID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.chats, chatID)
}

// Len returns the number of conversations.
func (c *Conversations) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.chats)
}
