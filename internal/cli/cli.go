// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - root command, global flags and shared setup for chatterm.
package cli

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/chatterm/internal/api"
	"github.com/jeranaias/chatterm/internal/clipboard"
	"github.com/jeranaias/chatterm/internal/config"
	"github.com/jeranaias/chatterm/internal/logging"
	"github.com/jeranaias/chatterm/internal/prefs"
	"github.com/jeranaias/chatterm/internal/ui/app"
	"github.com/jeranaias/chatterm/internal/views"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// annotationFileLog marks commands that own the terminal and must log to
// the log file instead of stderr.
const annotationFileLog = "chatterm/file-log"

// App carries what every command needs once the root has run its setup.
type App struct {
	configPath string
	serverURL  string
	verbose    bool

	cfg      *config.Config
	logger   *zap.Logger
	closeLog func()

	// prefsStore overrides the preference store. Used in tests.
	prefsStore prefs.Store
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	if err := NewRootCmd(&App{}).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error:"), err)
		return 1
	}
	return 0
}

// NewRootCmd builds the command tree around a.
func NewRootCmd(a *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "chatterm",
		Short: "Terminal client for the chat service",
		Long: `chatterm is a terminal client for the AI chat service.

Run without a command to open the full-screen interface: log in or register,
recover a forgotten password, then chat with the assistant. Code in replies is
highlighted and any reply can be copied to the clipboard.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Annotations:   map[string]string{annotationFileLog: "true"},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.teardown()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default ~/.chatterm/config.toml)")
	flags.StringVar(&a.serverURL, "server", "", "chat service URL (overrides client.server_url)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newChatCmd(a),
		newAskCmd(a),
		newServeCmd(a),
		newThemeCmd(a),
		newConfigCmd(a),
		newVersionCmd(),
	)
	return root
}

// setup loads the configuration and builds the logger.
func (a *App) setup(cmd *cobra.Command) error {
	cfg, err := a.loadConfig()
	if cfg == nil {
		return err
	}
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), WarningStyle.Render("Warning:"), err, "(using defaults)")
	}
	if a.serverURL != "" {
		cfg.Client.ServerURL = a.serverURL
	}
	a.cfg = cfg

	opts := logging.Options{Level: cfg.Log.Level, Verbose: a.verbose, Writer: cmd.ErrOrStderr()}
	if cmd.Annotations[annotationFileLog] == "true" {
		path, err := cfg.LogPath()
		if err != nil {
			return err
		}
		opts.File = path
	}
	logger, closeLog, err := logging.New(opts)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = logger
	a.closeLog = closeLog
	return nil
}

func (a *App) teardown() {
	if a.closeLog != nil {
		a.closeLog()
		a.closeLog = nil
	}
}

func (a *App) loadConfig() (*config.Config, error) {
	if a.configPath == "" {
		return config.Load()
	}
	cfg, err := config.LoadFromPath(a.configPath)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// newClient returns an API client with a fresh session.
func (a *App) newClient() (*api.Client, error) {
	return api.NewClient(&api.Config{
		BaseURL:   a.cfg.Client.ServerURL,
		Timeout:   a.cfg.Client.Timeout(),
		UserAgent: "chatterm/" + Version,
	}, a.logger)
}

// preferences returns the theme preference store. A theme forced in the
// config is served from memory so toggling does not overwrite the saved one.
func (a *App) preferences() (prefs.Store, error) {
	if a.prefsStore != nil {
		return a.prefsStore, nil
	}
	if theme, ok := prefs.ParseTheme(a.cfg.UI.Theme); ok {
		store := prefs.NewMemoryStore()
		if err := store.Set(prefs.KeyTheme, string(theme)); err != nil {
			return nil, err
		}
		return store, nil
	}
	path, err := prefs.DefaultPath()
	if err != nil {
		return nil, err
	}
	return prefs.NewFileStore(path), nil
}

func (a *App) shared(term io.Writer) (*app.Shared, error) {
	client, err := a.newClient()
	if err != nil {
		return nil, err
	}
	store, err := a.preferences()
	if err != nil {
		return nil, err
	}
	return app.NewShared(app.Options{
		Service: client,
		Copier:  clipboard.NewCopier(term, a.logger),
		Prefs:   store,
		Logger:  a.logger,
		Timeout: a.cfg.Client.Timeout(),
	}), nil
}

// runTUI opens the full-screen interface on the auth page.
func (a *App) runTUI() error {
	shared, err := a.shared(os.Stdout)
	if err != nil {
		return err
	}
	a.logger.Info("starting tui", zap.String("server", a.cfg.Client.ServerURL), zap.String("version", Version))

	p := tea.NewProgram(
		app.New(shared, views.AuthPage),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "chatterm %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
		},
	}
}
