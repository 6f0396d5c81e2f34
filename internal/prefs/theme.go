// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package prefs

import "strings"

// Theme is the color scheme name.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// DefaultTheme is used when nothing valid is stored.
const DefaultTheme = ThemeDark

// ParseTheme returns the theme named s and whether it is known.
func ParseTheme(s string) (Theme, bool) {
	switch Theme(strings.ToLower(strings.TrimSpace(s))) {
	case ThemeDark:
		return ThemeDark, true
	case ThemeLight:
		return ThemeLight, true
	default:
		return DefaultTheme, false
	}
}

// Toggled returns the other theme.
func (t Theme) Toggled() Theme {
	if t == ThemeLight {
		return ThemeDark
	}
	return ThemeLight
}

// Icon is the toggle's label: the sun switches to light, the moon to dark.
func (t Theme) Icon() string {
	if t == ThemeLight {
		return "🌙"
	}
	return "☀️"
}

// LoadTheme reads the stored theme, falling back to DefaultTheme when it is
// missing or unknown. The returned theme is always usable; the error only
// reports a store failure worth logging.
func LoadTheme(store Store) (Theme, error) {
	if store == nil {
		return DefaultTheme, nil
	}
	v, ok, err := store.Get(KeyTheme)
	if err != nil || !ok {
		return DefaultTheme, err
	}
	theme, _ := ParseTheme(v)
	return theme, nil
}

// ToggleTheme flips current and persists the result. The new theme is
// returned even if persisting fails.
func ToggleTheme(store Store, current Theme) (Theme, error) {
	next := current.Toggled()
	if store == nil {
		return next, nil
	}
	return next, store.Set(KeyTheme, string(next))
}
