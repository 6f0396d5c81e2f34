// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - one-shot question: log in, ask, print the reply.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/chatterm/internal/apperr"
	"github.com/jeranaias/chatterm/internal/render"
	"github.com/jeranaias/chatterm/internal/ui/app"
)

// Environment variables read by ask when the flags are absent.
const (
	EnvEmail    = "CHATTERM_EMAIL"
	EnvPassword = "CHATTERM_PASSWORD"
)

type askOptions struct {
	email    string
	password string
	question string
	// markdown renders the reply with glamour; off for piped output.
	markdown bool
	wrap     int
}

func newAskCmd(a *App) *cobra.Command {
	var (
		email string
		raw   bool
	)
	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a single question and print the reply",
		Long: `Log in, send one message and print the reply.

The email comes from --email or ` + EnvEmail + `. The password comes from
` + EnvPassword + ` or is prompted for without echo.`,
		Example: `  chatterm ask --email me@example.com "How do I reverse a list in Go?"
  CHATTERM_PASSWORD=secret chatterm ask "Explain defer" > answer.md`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := askOptions{
				email:    email,
				password: os.Getenv(EnvPassword),
				question: strings.Join(args, " "),
				markdown: !raw && IsStdoutTTY(),
				wrap:     a.cfg.UI.WordWrap,
			}
			if opts.email == "" {
				opts.email = os.Getenv(EnvEmail)
			}
			if opts.password == "" {
				pw, err := readPassword(cmd.InOrStdin(), cmd.ErrOrStderr(), "password: ")
				if err != nil {
					return err
				}
				opts.password = pw
			}

			client, err := a.newClient()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.Client.Timeout())
			defer cancel()
			return runAsk(ctx, client, cmd.OutOrStdout(), opts, a.logger)
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email (default $"+EnvEmail+")")
	cmd.Flags().BoolVar(&raw, "raw", false, "print the reply without markdown rendering")
	return cmd
}

// runAsk logs in with opts and prints the reply to opts.question on out.
func runAsk(ctx context.Context, service app.Service, out io.Writer, opts askOptions, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if strings.TrimSpace(opts.email) == "" || opts.password == "" {
		return errors.New(app.MsgMissingCredentials)
	}
	if strings.TrimSpace(opts.question) == "" {
		return errors.New("nothing to ask")
	}

	if _, err := service.Login(ctx, strings.TrimSpace(opts.email), opts.password); err != nil {
		return errors.New(apperr.Notice(err))
	}
	defer func() {
		if _, err := service.Logout(context.WithoutCancel(ctx)); err != nil {
			logger.Debug("logout after ask failed", zap.Error(err))
		}
	}()

	reply := ""
	result, err := service.Chat(ctx, opts.question)
	if err != nil {
		logger.Warn("chat request failed", zap.Error(err))
	} else if result != nil {
		reply = result.Body.Response
	}

	text := reply
	if err != nil || reply == "" {
		// Same fallback text the interface shows.
		text, _ = render.ReplyTurn(reply, err).CopyPayload()
	}
	fmt.Fprint(out, formatReply(text, opts))
	if err != nil {
		return errors.New(apperr.Notice(err))
	}
	return nil
}

// formatReply renders markdown for a terminal and leaves it alone otherwise.
func formatReply(text string, opts askOptions) string {
	if !opts.markdown {
		if !strings.HasSuffix(text, "\n") {
			text += "\n"
		}
		return text
	}
	wrap := opts.wrap
	if wrap <= 0 {
		wrap = DefaultTerminalWidth
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return text + "\n"
	}
	rendered, err := r.Render(text)
	if err != nil {
		return text + "\n"
	}
	return rendered
}
