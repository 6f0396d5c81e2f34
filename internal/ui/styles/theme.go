// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/jeranaias/chatterm/internal/prefs"
)

// Theme holds all the styled components for one color mode.
type Theme struct {
	Mode         prefs.Theme
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// HEADER STYLES
	// ==========================================================================

	Header      lipgloss.Style
	HeaderBrand lipgloss.Style
	HeaderUser  lipgloss.Style
	ThemeToggle lipgloss.Style

	// ==========================================================================
	// AUTH PANEL STYLES
	// ==========================================================================

	Panel         lipgloss.Style
	PanelTitle    lipgloss.Style
	Label         lipgloss.Style
	Field         lipgloss.Style
	FieldFocused  lipgloss.Style
	FieldDisabled lipgloss.Style
	Button        lipgloss.Style
	ButtonFocused lipgloss.Style
	ButtonBusy    lipgloss.Style
	Link          lipgloss.Style
	Hint          lipgloss.Style
	FormMessage   lipgloss.Style

	// ==========================================================================
	// WELCOME STYLES
	// ==========================================================================

	WelcomeBox   lipgloss.Style
	WelcomeTitle lipgloss.Style
	WelcomeInfo  lipgloss.Style

	// ==========================================================================
	// CHAT STYLES
	// ==========================================================================

	UserBubble        lipgloss.Style
	BotBubble         lipgloss.Style
	BotBubbleSelected lipgloss.Style
	Avatar            lipgloss.Style

	CodeBlock     lipgloss.Style
	CodeLangBadge lipgloss.Style
	CodeLineNum   lipgloss.Style

	CopyButton     lipgloss.Style
	CopyButtonDone lipgloss.Style

	InputContainer lipgloss.Style
	ThinkingText   lipgloss.Style
	Spinner        lipgloss.Style

	// ==========================================================================
	// NOTIFICATION STYLES
	// ==========================================================================

	ToastInfo  lipgloss.Style
	ToastError lipgloss.Style

	// ==========================================================================
	// STATUS BAR STYLES
	// ==========================================================================

	StatusBar    lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style

	// ==========================================================================
	// DIALOG STYLES
	// ==========================================================================

	Dialog      lipgloss.Style
	DialogTitle lipgloss.Style
}

// NewTheme creates a theme for mode with all styles configured.
func NewTheme(mode prefs.Theme) *Theme {
	if _, ok := prefs.ParseTheme(string(mode)); !ok {
		mode = prefs.DefaultTheme
	}
	colorProfile := termenv.ColorProfile()

	t := &Theme{
		Mode:         mode,
		ColorProfile: colorProfile,
		Width:        80,
		Height:       24,
	}
	t.initStyles()
	return t
}

// c resolves a palette entry for this theme's mode.
func (t *Theme) c(color lipgloss.AdaptiveColor) lipgloss.Color {
	return Resolve(color, t.Mode)
}

func (t *Theme) initStyles() {
	// Header
	t.Header = lipgloss.NewStyle().
		Background(t.c(SurfaceDim)).
		Padding(0, 1)

	t.HeaderBrand = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.c(Purple))

	t.HeaderUser = lipgloss.NewStyle().
		Foreground(t.c(TextSecondary))

	t.ThemeToggle = lipgloss.NewStyle().
		Padding(0, 1)

	// Auth panel
	t.Panel = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(t.c(Purple)).
		Padding(1, 3).
		Width(52)

	t.PanelTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.c(Purple)).
		MarginBottom(1)

	t.Label = lipgloss.NewStyle().
		Foreground(t.c(TextSecondary))

	t.Field = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(t.c(Overlay)).
		Padding(0, 1)

	t.FieldFocused = t.Field.
		BorderForeground(t.c(Cyan))

	t.FieldDisabled = t.Field.
		Foreground(t.c(TextMuted)).
		BorderForeground(t.c(OverlayDim))

	t.Button = lipgloss.NewStyle().
		Foreground(t.c(TextPrimary)).
		Background(t.c(Overlay)).
		Padding(0, 2)

	t.ButtonFocused = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.c(TextInverse)).
		Background(t.c(Purple)).
		Padding(0, 2)

	t.ButtonBusy = lipgloss.NewStyle().
		Foreground(t.c(TextMuted)).
		Background(t.c(OverlayDim)).
		Padding(0, 2)

	t.Link = lipgloss.NewStyle().
		Foreground(t.c(Cyan)).
		Underline(true)

	t.Hint = lipgloss.NewStyle().
		Foreground(t.c(TextMuted)).
		Italic(true)

	t.FormMessage = lipgloss.NewStyle().
		Foreground(t.c(Emerald))

	// Welcome
	t.WelcomeBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(t.c(Cyan)).
		Padding(1, 4).
		Align(lipgloss.Center)

	t.WelcomeTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.c(Cyan))

	t.WelcomeInfo = lipgloss.NewStyle().
		Foreground(t.c(TextSecondary))

	// Chat bubbles
	t.UserBubble = lipgloss.NewStyle().
		Foreground(t.c(UserBubbleFg)).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(t.c(UserBubbleBorder)).
		Padding(0, 1)

	t.BotBubble = lipgloss.NewStyle().
		Foreground(t.c(BotBubbleFg)).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(t.c(BotBubbleBorder)).
		Padding(0, 1)

	t.BotBubbleSelected = t.BotBubble.
		BorderStyle(lipgloss.ThickBorder()).
		BorderForeground(t.c(SelectionBorder))

	t.Avatar = lipgloss.NewStyle().
		MarginRight(1)

	// Code blocks
	t.CodeBlock = lipgloss.NewStyle().
		Background(t.c(SurfaceDim)).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(t.c(Overlay)).
		Padding(0, 1)

	t.CodeLangBadge = lipgloss.NewStyle().
		Foreground(t.c(TextMuted)).
		Background(t.c(OverlayDim)).
		Padding(0, 1).
		Bold(true)

	t.CodeLineNum = lipgloss.NewStyle().
		Foreground(t.c(TextMuted)).
		Width(4).
		Align(lipgloss.Right).
		MarginRight(1)

	// Copy button
	t.CopyButton = lipgloss.NewStyle().
		Foreground(t.c(TextSecondary)).
		Background(t.c(Overlay)).
		Padding(0, 1)

	t.CopyButtonDone = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.c(TextInverse)).
		Background(t.c(Emerald)).
		Padding(0, 1)

	// Input
	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(t.c(Cyan)).
		Padding(0, 1)

	t.ThinkingText = lipgloss.NewStyle().
		Foreground(t.c(Amber)).
		Italic(true)

	t.Spinner = lipgloss.NewStyle().
		Foreground(t.c(Amber))

	// Toasts
	t.ToastInfo = lipgloss.NewStyle().
		Foreground(t.c(TextPrimary)).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(t.c(Emerald)).
		Padding(0, 1)

	t.ToastError = lipgloss.NewStyle().
		Foreground(t.c(TextPrimary)).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(t.c(Rose)).
		Padding(0, 1)

	// Status bar
	t.StatusBar = lipgloss.NewStyle().
		Foreground(t.c(TextSecondary)).
		Background(t.c(SurfaceDim)).
		Padding(0, 1)

	t.ShortcutKey = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.c(Cyan))

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(t.c(TextMuted))

	// Dialog
	t.Dialog = lipgloss.NewStyle().
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(t.c(Amber)).
		Padding(1, 2).
		Width(56)

	t.DialogTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.c(Amber))
}

// ChromaStyle names the chroma style for code in this mode.
func (t *Theme) ChromaStyle() string {
	if t.Mode == prefs.ThemeLight {
		return "catppuccin-latte"
	}
	return "catppuccin-mocha"
}

// GlamourStyle names the glamour standard style for prose in this mode.
func (t *Theme) GlamourStyle() string {
	if t.Mode == prefs.ThemeLight {
		return "light"
	}
	return "dark"
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}
