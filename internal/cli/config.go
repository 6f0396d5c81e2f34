// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config.go - config command: show, get, set, path, reset.
package cli

import (
	"crypto/sha256"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/chatterm/internal/config"
)

func newConfigCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "View and modify configuration",
		Long: `View and modify ~/.chatterm/config.toml.

Keys use dot notation:
  ` + strings.Join(config.GetAllKeys(), "\n  "),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.showConfig(cmd.OutOrStdout(), false)
		},
	}

	var asJSON bool
	show := &cobra.Command{
		Use:   "show",
		Short: "Display the current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.showConfig(cmd.OutOrStdout(), asJSON)
		},
	}
	show.Flags().BoolVar(&asJSON, "json", false, "output as JSON")

	get := &cobra.Command{
		Use:   "get <key>",
		Short: "Print one configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := a.cfg.Get(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), maskIfSecret(args[0], fmt.Sprint(v)))
			return nil
		},
	}

	set := &cobra.Command{
		Use:     "set <key> <value>",
		Short:   "Set a configuration value and save it",
		Example: "  chatterm config set client.server_url http://127.0.0.1:8080\n  chatterm config set ui.theme light",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]
			updated := a.cfg.Clone()
			if err := updated.Set(key, value); err != nil {
				return err
			}
			if err := updated.Validate(); err != nil {
				return err
			}
			if err := a.saveConfig(updated); err != nil {
				return err
			}
			a.cfg = updated
			fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("Set"), key, "=", maskIfSecret(key, value))
			return nil
		},
	}

	path := &cobra.Command{
		Use:   "path",
		Short: "Show the configuration file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.configFile()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), p)
			return nil
		},
	}

	reset := &cobra.Command{
		Use:   "reset",
		Short: "Reset the configuration to defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if err := a.saveConfig(cfg); err != nil {
				return err
			}
			a.cfg = cfg
			fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("Configuration reset to defaults"))
			return nil
		},
	}

	cmd.AddCommand(show, get, set, path, reset)
	return cmd
}

func (a *App) configFile() (string, error) {
	if a.configPath != "" {
		return a.configPath, nil
	}
	return config.ConfigPathTOML()
}

func (a *App) saveConfig(cfg *config.Config) error {
	if a.configPath == "" {
		return config.Save(cfg)
	}
	if strings.HasSuffix(a.configPath, ".json") {
		return config.SaveJSON(cfg, a.configPath)
	}
	return config.SaveTOML(cfg, a.configPath)
}

func (a *App) showConfig(out io.Writer, asJSON bool) error {
	if asJSON {
		fmt.Fprintln(out, a.cfg.String())
		return nil
	}
	fmt.Fprintln(out, TitleStyle.Render("chatterm configuration"))
	for _, key := range config.GetAllKeys() {
		v, err := a.cfg.Get(key)
		if err != nil {
			return err
		}
		value := maskIfSecret(key, fmt.Sprint(v))
		if value == "" {
			value = DimStyle.Render("(not set)")
		}
		fmt.Fprintln(out, RenderLabel(key)+ValueStyle.Render(value))
	}
	return nil
}

// maskAPIKey replaces a key with a short SHA-256 fingerprint so two keys can
// be told apart without revealing either.
func maskAPIKey(key string) string {
	if key == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(key))
	return fmt.Sprintf("sha256:%x...", hash[:4])
}

// maskIfSecret masks value when key names a secret.
func maskIfSecret(key, value string) string {
	lower := strings.ToLower(key)
	for _, s := range []string{"key", "secret", "token", "password"} {
		if strings.Contains(lower, s) {
			return maskAPIKey(value)
		}
	}
	return value
}
