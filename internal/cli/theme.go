// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// theme.go - theme command: show, set or toggle the saved theme.
package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jeranaias/chatterm/internal/prefs"
)

func newThemeCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:       "theme [dark|light|toggle]",
		Short:     "Show or change the color theme",
		Long:      "Without an argument, print the saved theme. The interface toggles it with Ctrl+T.",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{string(prefs.ThemeDark), string(prefs.ThemeLight), "toggle"},
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.themeStore()
			if err != nil {
				return err
			}
			arg := ""
			if len(args) == 1 {
				arg = args[0]
			}
			return runTheme(cmd.OutOrStdout(), store, arg)
		},
	}
}

// themeStore always uses the saved preferences; a theme forced in the config
// does not apply here.
func (a *App) themeStore() (prefs.Store, error) {
	if a.prefsStore != nil {
		return a.prefsStore, nil
	}
	path, err := prefs.DefaultPath()
	if err != nil {
		return nil, err
	}
	return prefs.NewFileStore(path), nil
}

func runTheme(out io.Writer, store prefs.Store, arg string) error {
	current, err := prefs.LoadTheme(store)
	if err != nil {
		return err
	}

	var next prefs.Theme
	switch arg {
	case "":
		fmt.Fprintln(out, current)
		return nil
	case "toggle":
		next, err = prefs.ToggleTheme(store, current)
		if err != nil {
			return err
		}
	default:
		theme, ok := prefs.ParseTheme(arg)
		if !ok {
			return fmt.Errorf("unknown theme %q (want dark or light)", arg)
		}
		if err := store.Set(prefs.KeyTheme, string(theme)); err != nil {
			return err
		}
		next = theme
	}
	fmt.Fprintln(out, next)
	return nil
}
