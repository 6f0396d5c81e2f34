// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/chatterm/internal/apperr"
	"github.com/jeranaias/chatterm/internal/clipboard"
	"github.com/jeranaias/chatterm/internal/model"
	"github.com/jeranaias/chatterm/internal/prefs"
	"github.com/jeranaias/chatterm/internal/render"
	"github.com/jeranaias/chatterm/internal/ui/styles"
)

// =============================================================================
// TOASTS
// =============================================================================

func TestToastManager_NewestFirstAndBounded(t *testing.T) {
	m := NewToastManager()
	for i := 0; i < MaxToasts+2; i++ {
		m.Info("toast " + string(rune('a'+i)))
	}

	toasts := m.Toasts()
	require.Len(t, toasts, MaxToasts)
	assert.Equal(t, "toast g", toasts[0].Message, "newest first")
	assert.Equal(t, "toast c", toasts[MaxToasts-1].Message)
}

func TestToastManager_ExpiresAfterFourSeconds(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewToastManager()
	m.SetClock(func() time.Time { return now })

	m.Info("hello")
	now = now.Add(3900 * time.Millisecond)
	assert.True(t, m.Tick())
	assert.Len(t, m.Toasts(), 1)

	now = now.Add(100 * time.Millisecond)
	assert.False(t, m.Tick())
	assert.Empty(t, m.Toasts())
}

func TestToastManager_FromError(t *testing.T) {
	m := NewToastManager()
	m.FromError(apperr.ServerRejected(401, "Invalid email or password"))
	m.FromError(apperr.NetworkFailure(assert.AnError))

	toasts := m.Toasts()
	require.Len(t, toasts, 2)
	assert.Equal(t, apperr.MsgNetwork, toasts[0].Message)
	assert.Equal(t, ToastError, toasts[0].Kind)
	assert.Equal(t, "Invalid email or password", toasts[1].Message)
}

func TestToastManager_RemoveAndClear(t *testing.T) {
	m := NewToastManager()
	id := m.Error("a")
	m.Info("b")

	m.Remove(id)
	require.Len(t, m.Toasts(), 1)
	assert.Equal(t, "b", m.Toasts()[0].Message)

	m.Clear()
	assert.Empty(t, m.Toasts())
}

func TestRenderToastStack(t *testing.T) {
	theme := styles.NewTheme(prefs.ThemeDark)
	m := NewToastManager()
	m.Info("Login successful")
	m.Error("Passwords do not match.")

	out := RenderToastStack(theme, m.Toasts(), 80)
	assert.Contains(t, out, "Passwords do not match.")
	assert.Contains(t, out, "Login successful")
	assert.Less(t, strings.Index(out, "Passwords"), strings.Index(out, "Login"))

	assert.Empty(t, RenderToastStack(theme, nil, 80))
}

// =============================================================================
// CODE BLOCKS
// =============================================================================

func TestSplitInfoString(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantLang string
		wantBody string
	}{
		{"go tag", "go\nfmt.Println(1)", "go", "fmt.Println(1)"},
		{"python tag", "python\nprint(1)", "python", "print(1)"},
		{"single line", "print(1)", "", "print(1)"},
		{"code first line", "x = 1\ny = 2", "", "x = 1\ny = 2"},
		{"unknown word", "notalanguage\nbody", "", "notalanguage\nbody"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lang, body := splitInfoString(tt.text)
			assert.Equal(t, tt.wantLang, lang)
			assert.Equal(t, tt.wantBody, body)
		})
	}
}

func TestCodeBlock_Render(t *testing.T) {
	theme := styles.NewTheme(prefs.ThemeDark)

	out := NewCodeBlock("go\nfmt.Println(1)", 60).Render(theme)
	assert.Contains(t, out, "go")
	assert.Contains(t, out, "Println")
	assert.Contains(t, out, "1")

	empty := NewCodeBlock("", 60).Render(theme)
	assert.NotEmpty(t, empty, "an empty code segment still renders a box")
}

// =============================================================================
// TURNS
// =============================================================================

func TestTurnView_BotWithCopyButton(t *testing.T) {
	theme := styles.NewTheme(prefs.ThemeDark)
	prose := NewProseRenderer(nil)
	turn := render.Render("Try this:\n```\nls -la\n```\nDone", model.SenderBot)

	out := TurnView{Turn: turn, CopyLabel: clipboard.LabelCopy, Width: 80}.Render(theme, prose)

	assert.Contains(t, out, "🤖")
	assert.Contains(t, out, "Try this")
	assert.Contains(t, out, "ls -la")
	assert.Contains(t, out, "Done")
	assert.Contains(t, out, clipboard.LabelCopy)

	copied := TurnView{Turn: turn, CopyLabel: clipboard.LabelCopied, Width: 80}.Render(theme, prose)
	assert.Contains(t, copied, clipboard.LabelCopied)
}

func TestTurnView_UserHasNoCopyButton(t *testing.T) {
	theme := styles.NewTheme(prefs.ThemeLight)
	turn := render.Render("hello there", model.SenderUser)

	out := TurnView{Turn: turn, Width: 60}.Render(theme, NewProseRenderer(nil))

	assert.Contains(t, out, "🧑")
	assert.Contains(t, out, "hello there")
	assert.NotContains(t, out, clipboard.LabelCopy)
}

func TestProseRenderer_StrayFenceIsLiteral(t *testing.T) {
	theme := styles.NewTheme(prefs.ThemeDark)
	out := NewProseRenderer(nil).Render(theme, "a ``` b", 40)
	assert.Contains(t, out, "```")
}

// =============================================================================
// HEADER, STATUS BAR, DIALOG
// =============================================================================

func TestRenderHeader(t *testing.T) {
	dark := styles.NewTheme(prefs.ThemeDark)
	out := RenderHeader(dark, "a@b.com", 80)
	assert.Contains(t, out, Brand)
	assert.Contains(t, out, "a@b.com")
	assert.Contains(t, out, "☀️")

	light := styles.NewTheme(prefs.ThemeLight)
	assert.Contains(t, RenderHeader(light, "", 80), "🌙")
}

func TestRenderStatusBar(t *testing.T) {
	theme := styles.NewTheme(prefs.ThemeDark)
	bindings := []key.Binding{
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
		key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "new chat"), key.WithDisabled()),
	}

	out := RenderStatusBar(theme, bindings, TranscriptNote(3), 80)
	assert.Contains(t, out, "send")
	assert.NotContains(t, out, "new chat")
	assert.Contains(t, out, "3 messages")
	assert.Equal(t, "1 message", TranscriptNote(1))
}

func TestRenderConfirm(t *testing.T) {
	theme := styles.NewTheme(prefs.ThemeDark)
	out := RenderConfirm(theme, "New chat", "Start over?", 80, 24)
	assert.Contains(t, out, "New chat")
	assert.Contains(t, out, "Start over?")
}
