// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// serve.go - runs the development chat service.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/chatterm/internal/server"
)

func newServeCmd(a *App) *cobra.Command {
	var (
		addr    string
		dbPath  string
		envFile string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the development chat service",
		Long: `Run a local chat service that speaks the same API as production.

Accounts and reset codes are kept in SQLite (in memory unless --db is set).
Reset codes are written to the log instead of being emailed. Chat replies come
from Gemini when GEMINI_API_KEY is set; without it, chat answers with an error.

Variables from --env-file (default .env) are loaded before the config's
environment overrides are applied.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("load %s: %w", envFile, err)
			}
			cfg := a.cfg
			cfg.ApplyEnvOverrides()
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if dbPath != "" {
				cfg.Server.DBPath = dbPath
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	cmd.Flags().StringVar(&dbPath, "db", "", "sqlite database path (overrides server.db_path)")
	cmd.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file to load")
	return cmd
}

func (a *App) serve(ctx context.Context) error {
	cfg := a.cfg.Server

	store, err := server.OpenStore(cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	var backend server.ChatBackend
	if cfg.GeminiAPIKey != "" {
		gemini, err := server.NewGeminiBackend(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return err
		}
		backend = gemini
		a.logger.Info("chat backend ready", zap.String("model", cfg.GeminiModel))
	} else {
		a.logger.Warn("GEMINI_API_KEY not set; chat requests will fail")
	}

	srv := server.New(server.Config{
		Addr:             cfg.Addr,
		ResetCodeTTL:     cfg.ResetCodeTTL(),
		ForgotRatePerMin: cfg.ForgotRatePerMin,
	}, store, backend, a.logger)
	return srv.ListenAndServe(ctx)
}
