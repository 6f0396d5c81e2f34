// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/chatterm/internal/api"
	"github.com/jeranaias/chatterm/internal/prefs"
	"github.com/jeranaias/chatterm/internal/ui/components"
	"github.com/jeranaias/chatterm/internal/ui/styles"
)

// DefaultRequestTimeout bounds a single request when none is configured.
const DefaultRequestTimeout = 60 * time.Second

// Service is the subset of the API client the models call.
type Service interface {
	Register(ctx context.Context, email, password string) (*api.Result, error)
	Login(ctx context.Context, email, password string) (*api.Result, error)
	ForgotPassword(ctx context.Context, email string) (*api.Result, error)
	VerifyCode(ctx context.Context, email, code string) (*api.Result, error)
	ResetPassword(ctx context.Context, password string) (*api.Result, error)
	CheckAuth(ctx context.Context) (*api.AuthStatus, error)
	Logout(ctx context.Context) (*api.Result, error)
	NewChat(ctx context.Context) (*api.Result, error)
	Chat(ctx context.Context, message string) (*api.Result, error)
}

// Copier places text on the clipboard.
type Copier interface {
	Copy(ctx context.Context, payload string) error
}

// ProgramCopier is a Copier that can hand terminal writes to the running
// program instead of writing from a command goroutine.
type ProgramCopier interface {
	Copier
	Cmd(ctx context.Context, payload string, done func(error) tea.Msg) tea.Cmd
}

// Options configures a Shared.
type Options struct {
	Service Service
	Copier  Copier
	Prefs   prefs.Store
	Logger  *zap.Logger
	Timeout time.Duration
}

// Shared holds the state every page reads: dependencies, the active theme,
// the toast stack and the terminal size. Pages keep a pointer so a theme
// toggle or resize is visible everywhere.
type Shared struct {
	Service Service
	Copier  Copier
	Prefs   prefs.Store
	Logger  *zap.Logger
	Timeout time.Duration

	Theme  *styles.Theme
	Toasts *components.ToastManager
	Prose  *components.ProseRenderer

	Width  int
	Height int
}

// NewShared builds the shared state. The theme is read from the preference
// store and falls back to dark.
func NewShared(opts Options) *Shared {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	store := opts.Prefs
	if store == nil {
		store = prefs.NewMemoryStore()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	mode, err := prefs.LoadTheme(store)
	if err != nil {
		logger.Warn("failed to read theme preference", zap.Error(err))
	}

	return &Shared{
		Service: opts.Service,
		Copier:  opts.Copier,
		Prefs:   store,
		Logger:  logger,
		Timeout: timeout,
		Theme:   styles.NewTheme(mode),
		Toasts:  components.NewToastManager(),
		Prose:   components.NewProseRenderer(logger),
	}
}

// ToggleTheme flips and persists the theme. A store failure is logged and
// reported, but the new theme still applies.
func (s *Shared) ToggleTheme() error {
	next, err := prefs.ToggleTheme(s.Prefs, s.Theme.Mode)
	theme := styles.NewTheme(next)
	theme.SetSize(s.Width, s.Height)
	s.Theme = theme
	if err != nil {
		s.Logger.Warn("failed to persist theme", zap.String("theme", string(next)), zap.Error(err))
	}
	return err
}

// SetSize records the terminal size.
func (s *Shared) SetSize(width, height int) {
	s.Width = width
	s.Height = height
	s.Theme.SetSize(width, height)
}

func (s *Shared) requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.Timeout)
}
