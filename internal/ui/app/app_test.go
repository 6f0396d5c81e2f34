// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/chatterm/internal/prefs"
	"github.com/jeranaias/chatterm/internal/ui/components"
	"github.com/jeranaias/chatterm/internal/views"
)

func TestNewShared_ThemeFromStore(t *testing.T) {
	store := prefs.NewMemoryStore()
	require.NoError(t, store.Set(prefs.KeyTheme, "light"))

	shared := NewShared(Options{Service: newFakeService(), Prefs: store})
	assert.Equal(t, prefs.ThemeLight, shared.Theme.Mode)
	assert.Equal(t, DefaultRequestTimeout, shared.Timeout)
}

func TestModel_ToggleThemePersists(t *testing.T) {
	shared := newTestShared(newFakeService(), nil)
	m := New(shared, views.AuthPage)

	next, _ := m.Update(keyPress(tea.KeyCtrlT))
	assert.Equal(t, prefs.ThemeLight, next.(Model).Shared().Theme.Mode)

	value, ok, err := shared.Prefs.Get(prefs.KeyTheme)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "light", value)

	next, _ = next.Update(keyPress(tea.KeyCtrlT))
	assert.Equal(t, prefs.ThemeDark, next.(Model).Shared().Theme.Mode)
}

func TestModel_NavigateSwitchesPage(t *testing.T) {
	svc := newFakeService()
	shared := newTestShared(svc, nil)
	m := New(shared, views.AuthPage)

	next, cmd := m.Update(NavigateMsg{Page: views.HomePage})
	assert.Equal(t, views.HomePage, next.(Model).Page())
	run(cmd)
	assert.Contains(t, svc.Calls(), "check_auth")
}

func TestModel_QuitKey(t *testing.T) {
	m := New(newTestShared(newFakeService(), nil), views.AuthPage)
	_, cmd := m.Update(keyPress(tea.KeyCtrlC))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModel_ToastTickSchedulesOnce(t *testing.T) {
	shared := newTestShared(newFakeService(), nil)
	m := New(shared, views.AuthPage)

	// An empty submit raises a toast and starts the expiry timer.
	next, cmd := m.Update(keyPress(tea.KeyEnter))
	require.NotNil(t, cmd)
	assert.True(t, next.(Model).ticking)

	next, cmd = next.Update(keyPress(tea.KeyEnter))
	assert.Nil(t, cmd, "timer already running")

	shared.Toasts.Clear()
	next, cmd = next.Update(components.ToastTickMsg{})
	assert.Nil(t, cmd)
	assert.False(t, next.(Model).ticking)
}

func TestModel_ViewComposesPage(t *testing.T) {
	shared := newTestShared(newFakeService(), nil)
	m := New(shared, views.ResetPage)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 90, Height: 30})

	out := next.View()
	assert.Contains(t, out, components.Brand)
	assert.Contains(t, out, "Choose a New Password")
	assert.Contains(t, out, "quit")
}
