// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/chatterm/internal/prefs"
)

func TestNewTheme_Modes(t *testing.T) {
	dark := NewTheme(prefs.ThemeDark)
	if dark.Mode != prefs.ThemeDark {
		t.Errorf("Mode = %q, want dark", dark.Mode)
	}
	if dark.ChromaStyle() != "catppuccin-mocha" || dark.GlamourStyle() != "dark" {
		t.Errorf("dark theme styles = %q/%q", dark.ChromaStyle(), dark.GlamourStyle())
	}

	light := NewTheme(prefs.ThemeLight)
	if light.ChromaStyle() != "catppuccin-latte" || light.GlamourStyle() != "light" {
		t.Errorf("light theme styles = %q/%q", light.ChromaStyle(), light.GlamourStyle())
	}
}

func TestNewTheme_UnknownModeFallsBack(t *testing.T) {
	theme := NewTheme(prefs.Theme("neon"))
	if theme.Mode != prefs.DefaultTheme {
		t.Errorf("Mode = %q, want %q", theme.Mode, prefs.DefaultTheme)
	}
}

func TestResolve(t *testing.T) {
	if got := Resolve(Purple, prefs.ThemeDark); got != lipgloss.Color(Purple.Dark) {
		t.Errorf("Resolve(dark) = %v", got)
	}
	if got := Resolve(Purple, prefs.ThemeLight); got != lipgloss.Color(Purple.Light) {
		t.Errorf("Resolve(light) = %v", got)
	}
}

func TestTheme_ModesDiffer(t *testing.T) {
	dark := NewTheme(prefs.ThemeDark)
	light := NewTheme(prefs.ThemeLight)

	if dark.BotBubble.GetForeground() == light.BotBubble.GetForeground() {
		t.Error("bot bubble foreground should differ between modes")
	}
}

func TestThemeInitStyles(t *testing.T) {
	theme := NewTheme(prefs.ThemeDark)

	styles := []struct {
		name  string
		style lipgloss.Style
	}{
		{"Header", theme.Header},
		{"Panel", theme.Panel},
		{"UserBubble", theme.UserBubble},
		{"BotBubble", theme.BotBubble},
		{"CodeBlock", theme.CodeBlock},
		{"CopyButton", theme.CopyButton},
		{"ToastError", theme.ToastError},
		{"StatusBar", theme.StatusBar},
	}
	for _, s := range styles {
		if s.style.Render("test") == "" {
			t.Errorf("%s style should be initialized", s.name)
		}
	}
}

func TestSpinnerConfig(t *testing.T) {
	s := DotsSpinner.Bubble()
	if len(s.Frames) != len(DotsSpinner.Frames) {
		t.Errorf("frames = %d, want %d", len(s.Frames), len(DotsSpinner.Frames))
	}
	if s.FPS != DotsSpinner.Duration() {
		t.Errorf("FPS = %v, want %v", s.FPS, DotsSpinner.Duration())
	}
	if (SpinnerConfig{}).Duration() <= 0 {
		t.Error("zero FPS must not divide by zero")
	}
}
