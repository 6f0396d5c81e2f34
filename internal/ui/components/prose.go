// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/jeranaias/chatterm/internal/render"
	"github.com/jeranaias/chatterm/internal/ui/styles"
)

// ProseRenderer renders Prose segments as terminal markdown. Renderers are
// cached per style and width because glamour setup is expensive.
type ProseRenderer struct {
	mu     sync.Mutex
	cache  map[proseKey]*glamour.TermRenderer
	logger *zap.Logger
}

type proseKey struct {
	style string
	width int
}

// NewProseRenderer creates a prose renderer.
func NewProseRenderer(logger *zap.Logger) *ProseRenderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProseRenderer{cache: map[proseKey]*glamour.TermRenderer{}, logger: logger}
}

// Render renders text for theme at width. Text holding a stray fence marker
// is shown literally, since markdown would open a code block there.
func (p *ProseRenderer) Render(theme *styles.Theme, text string, width int) string {
	if width < 20 {
		width = 20
	}
	plain := func() string {
		return lipgloss.NewStyle().Width(width).Render(strings.TrimSpace(text))
	}
	if strings.Contains(text, render.FenceMarker) {
		return plain()
	}

	r, err := p.renderer(theme, width)
	if err != nil {
		p.logger.Debug("glamour renderer unavailable", zap.Error(err))
		return plain()
	}
	out, err := r.Render(text)
	if err != nil {
		p.logger.Debug("glamour render failed", zap.Error(err))
		return plain()
	}
	return strings.Trim(out, "\n")
}

func (p *ProseRenderer) renderer(theme *styles.Theme, width int) (*glamour.TermRenderer, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := proseKey{style: theme.GlamourStyle(), width: width}
	if r, ok := p.cache[key]; ok {
		return r, nil
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(key.style),
		glamour.WithColorProfile(theme.ColorProfile),
		glamour.WithWordWrap(width),
		glamour.WithEmoji(),
	)
	if err != nil {
		return nil, err
	}
	p.cache[key] = r
	return r, nil
}
