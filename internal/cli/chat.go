// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - the chat command and its line-mode REPL.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/jeranaias/chatterm/internal/api"
	"github.com/jeranaias/chatterm/internal/apperr"
	"github.com/jeranaias/chatterm/internal/config"
	"github.com/jeranaias/chatterm/internal/model"
	"github.com/jeranaias/chatterm/internal/recovery"
	"github.com/jeranaias/chatterm/internal/render"
	"github.com/jeranaias/chatterm/internal/ui/app"
	"github.com/jeranaias/chatterm/internal/ui/components"
	"github.com/jeranaias/chatterm/internal/ui/styles"
)

func newChatCmd(a *App) *cobra.Command {
	var plain bool
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with the assistant",
		Long: `Chat with the assistant.

By default this opens the full-screen interface. With --plain it runs a
line-mode session instead, which works over slow links and in terminals
without alternate screen support.

Line-mode commands:
  /login      log in
  /register   create an account
  /forgot     reset a forgotten password
  /new        start a new chat
  /copy       copy the last reply to the clipboard
  /logout     log out
  /help       show this list
  /quit       leave`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationFileLog: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if !plain {
				return a.runTUI()
			}
			return a.runPlainChat(cmd)
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "line-mode chat instead of the full-screen interface")
	return cmd
}

func (a *App) runPlainChat(cmd *cobra.Command) error {
	shared, err := a.shared(os.Stdout)
	if err != nil {
		return err
	}
	input := NewChatCLI()
	defer input.Close()

	chat := newPlainChat(shared, input, cmd.OutOrStdout(), GetTerminalWidth())
	return chat.Run(cmd.Context())
}

// =============================================================================
// INPUT HISTORY
// =============================================================================

// lineReader is the input side of the REPL.
type lineReader interface {
	ReadInput(prompt string) (string, error)
	ReadPassword(prompt string) (string, error)
}

// ChatCLI provides input history and line editing for line-mode chat.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a ChatCLI and loads saved history.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}
	c := &ChatCLI{
		line:        line,
		historyFile: filepath.Join(configDir, "chat_history"),
	}
	c.LoadHistory()
	return c
}

// LoadHistory loads input history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		_, _ = c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line with history navigation.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" && !strings.HasPrefix(input, "/") {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// ReadPassword reads a line without echo. Passwords never enter history.
func (c *ChatCLI) ReadPassword(prompt string) (string, error) {
	if !IsTTY() {
		return c.line.Prompt(prompt)
	}
	fmt.Print(prompt)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// SaveHistory persists input history with owner-only permissions.
func (c *ChatCLI) SaveHistory() {
	if err := os.MkdirAll(filepath.Dir(c.historyFile), 0700); err != nil {
		return
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = c.line.WriteHistory(f)
}

// Close saves history and restores the terminal.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// =============================================================================
// SESSION
// =============================================================================

// plainChat is a line-mode chat session. It drives the same service, copy
// and recovery logic as the full-screen interface.
type plainChat struct {
	service app.Service
	copier  app.Copier
	timeout time.Duration
	logger  *zap.Logger

	theme *styles.Theme
	prose *components.ProseRenderer

	in    lineReader
	out   io.Writer
	width int

	email      string
	transcript *model.Transcript
}

func newPlainChat(shared *app.Shared, in lineReader, out io.Writer, width int) *plainChat {
	return &plainChat{
		service:    shared.Service,
		copier:     shared.Copier,
		timeout:    shared.Timeout,
		logger:     shared.Logger,
		theme:      shared.Theme,
		prose:      shared.Prose,
		in:         in,
		out:        out,
		width:      width,
		transcript: model.NewTranscript(),
	}
}

// errQuit ends the REPL.
var errQuit = errors.New("quit")

// Run runs the REPL until /quit, Ctrl+C or end of input.
func (c *plainChat) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	fmt.Fprintln(c.out, TitleStyle.Render("chatterm"))

	status, err := c.checkAuth(ctx)
	switch {
	case err != nil:
		c.fail(err)
	case status.Authenticated:
		c.email = status.Email
	}
	if c.email == "" {
		c.info("Not logged in. Use /login, /register or /forgot.")
	} else {
		c.welcome()
	}

	for {
		input, err := c.in.ReadInput(PromptStyle.Render("you> "))
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(c.out)
				return nil
			}
			return err
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			if err := c.command(ctx, input); err != nil {
				if errors.Is(err, errQuit) {
					return nil
				}
				if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
					fmt.Fprintln(c.out)
					return nil
				}
				return err
			}
			continue
		}
		c.send(ctx, input)
	}
}

// command handles a slash command. Only input errors are returned.
func (c *plainChat) command(ctx context.Context, input string) error {
	name := strings.ToLower(strings.Fields(input)[0])
	switch name {
	case "/quit", "/exit", "/q":
		return errQuit
	case "/help", "/?":
		c.help()
	case "/login":
		return c.login(ctx)
	case "/register":
		return c.register(ctx)
	case "/forgot":
		return c.forgot(ctx)
	case "/logout":
		c.logout(ctx)
	case "/new":
		return c.newChat(ctx)
	case "/copy":
		c.copyLast(ctx)
	default:
		c.info("Unknown command " + name + ". Type /help for the list.")
	}
	return nil
}

func (c *plainChat) help() {
	lines := []string{
		"/login      log in",
		"/register   create an account",
		"/forgot     reset a forgotten password",
		"/new        start a new chat",
		"/copy       copy the last reply",
		"/logout     log out",
		"/quit       leave",
	}
	for _, l := range lines {
		fmt.Fprintln(c.out, DimStyle.Render("  "+l))
	}
}

func (c *plainChat) welcome() {
	c.success("Logged in as " + c.email)
	c.separator()
	c.printTurn(model.GreetingTurn())
}

// =============================================================================
// ACCOUNT
// =============================================================================

func (c *plainChat) credentials() (email, password string, err error) {
	if email, err = c.in.ReadInput("email: "); err != nil {
		return "", "", err
	}
	if password, err = c.in.ReadPassword("password: "); err != nil {
		return "", "", err
	}
	return strings.TrimSpace(email), password, nil
}

func (c *plainChat) login(ctx context.Context) error {
	email, password, err := c.credentials()
	if err != nil {
		return err
	}
	if email == "" || password == "" {
		c.info(app.MsgMissingCredentials)
		return nil
	}

	reqCtx, cancel := c.requestContext(ctx)
	defer cancel()
	if _, err := c.service.Login(reqCtx, email, password); err != nil {
		c.fail(err)
		return nil
	}
	c.email = email
	c.transcript.Clear()
	c.welcome()
	return nil
}

func (c *plainChat) register(ctx context.Context) error {
	email, password, err := c.credentials()
	if err != nil {
		return err
	}
	if email == "" || password == "" {
		c.info(app.MsgMissingCredentials)
		return nil
	}

	reqCtx, cancel := c.requestContext(ctx)
	defer cancel()
	result, err := c.service.Register(reqCtx, email, password)
	if err != nil {
		c.fail(err)
		return nil
	}
	c.success(result.Notice())
	return nil
}

func (c *plainChat) logout(ctx context.Context) {
	reqCtx, cancel := c.requestContext(ctx)
	defer cancel()
	result, err := c.service.Logout(reqCtx)
	if err != nil {
		c.fail(err)
		return
	}
	c.email = ""
	c.transcript.Clear()
	c.success(result.Notice())
}

// forgot walks the recovery flow: email, then code, then the new password.
func (c *plainChat) forgot(ctx context.Context) error {
	flow := recovery.NewFlow()
	for {
		var form recovery.Form
		if flow.State().EmailLocked() {
			code, err := c.in.ReadInput(fmt.Sprintf("code sent to %s: ", flow.State().Email()))
			if err != nil {
				return err
			}
			form = recovery.Form{Email: flow.State().Email(), Code: strings.TrimSpace(code)}
			if form.Code == "" {
				c.info("Recovery cancelled.")
				return nil
			}
		} else {
			email, err := c.in.ReadInput("email: ")
			if err != nil {
				return err
			}
			form = recovery.Form{Email: strings.TrimSpace(email)}
			if form.Email == "" {
				c.info("Recovery cancelled.")
				return nil
			}
		}

		action, ok := flow.Submit(form)
		if !ok {
			continue
		}
		success, done := c.runRecoveryAction(ctx, action)
		if _, invalid := action.(recovery.Invalid); !invalid {
			flow.Resolve(action, success)
		}
		if done {
			if !success {
				return nil
			}
			return c.resetPassword(ctx)
		}
		if !success && !flow.State().EmailLocked() {
			return nil
		}
	}
}

// runRecoveryAction performs action. done is true once a code was verified
// or the flow cannot continue.
func (c *plainChat) runRecoveryAction(ctx context.Context, action recovery.Action) (success, done bool) {
	reqCtx, cancel := c.requestContext(ctx)
	defer cancel()

	switch act := action.(type) {
	case recovery.Invalid:
		c.info(recovery.MsgIncompleteCode)
		return false, false
	case recovery.RequestCode:
		if _, err := c.service.ForgotPassword(reqCtx, act.Email); err != nil {
			c.fail(err)
			return false, false
		}
		c.success(recovery.CodeSentMessage(act.Email))
		return true, false
	case recovery.VerifyCode:
		result, err := c.service.VerifyCode(reqCtx, act.Email, act.Code)
		if err != nil {
			c.fail(err)
			return false, false
		}
		c.success(result.Notice())
		return true, true
	}
	return false, true
}

func (c *plainChat) resetPassword(ctx context.Context) error {
	for {
		password, err := c.in.ReadPassword("new password: ")
		if err != nil {
			return err
		}
		confirm, err := c.in.ReadPassword("confirm password: ")
		if err != nil {
			return err
		}
		if err := recovery.ValidateNewPassword(password, confirm); err != nil {
			c.fail(err)
			continue
		}

		reqCtx, cancel := c.requestContext(ctx)
		result, err := c.service.ResetPassword(reqCtx, password)
		cancel()
		if err != nil {
			c.fail(err)
			return nil
		}
		c.success(result.Notice())
		return nil
	}
}

// =============================================================================
// CHAT
// =============================================================================

func (c *plainChat) send(ctx context.Context, text string) {
	if c.email == "" {
		c.info("Log in first with /login.")
		return
	}
	c.transcript.Append(render.Render(text, model.SenderUser))
	fmt.Fprintln(c.out, DimStyle.Render(app.ThinkingLabel))

	reqCtx, cancel := c.requestContext(ctx)
	defer cancel()
	reply := ""
	result, err := c.service.Chat(reqCtx, text)
	if err != nil {
		c.logger.Info("chat request failed", zap.Error(err))
		c.fail(err)
	} else if result != nil {
		reply = result.Body.Response
	}

	turn := render.ReplyTurn(reply, err)
	c.transcript.Append(turn)
	c.printTurn(turn)
}

func (c *plainChat) newChat(ctx context.Context) error {
	answer, err := c.in.ReadInput(app.NewChatQuestion + " [y/N] ")
	if err != nil {
		return err
	}
	if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
		return nil
	}

	reqCtx, cancel := c.requestContext(ctx)
	defer cancel()
	if _, err := c.service.NewChat(reqCtx); err != nil {
		c.fail(err)
		return nil
	}
	c.transcript.Clear()
	c.success(app.MsgNewChatStarted)
	c.separator()
	c.printTurn(model.GreetingTurn())
	return nil
}

func (c *plainChat) copyLast(ctx context.Context) {
	turn, ok := c.transcript.LastCopyable()
	if !ok {
		c.info("Nothing to copy yet.")
		return
	}
	payload, _ := turn.CopyPayload()
	if err := c.copier.Copy(ctx, payload); err != nil {
		c.fail(err)
		return
	}
	c.success("Copied!")
}

// =============================================================================
// OUTPUT
// =============================================================================

func (c *plainChat) printTurn(turn model.ChatTurn) {
	view := components.TurnView{Turn: turn, Width: c.width}
	fmt.Fprintln(c.out, view.Render(c.theme, c.prose))
}

func (c *plainChat) separator() {
	fmt.Fprintln(c.out, RenderSeparator(c.width))
}

func (c *plainChat) info(msg string) {
	fmt.Fprintln(c.out, DimStyle.Render(msg))
}

func (c *plainChat) success(msg string) {
	fmt.Fprintln(c.out, SuccessStyle.Render(msg))
}

func (c *plainChat) fail(err error) {
	fmt.Fprintln(c.out, ErrorStyle.Render(apperr.Notice(err)))
}

func (c *plainChat) checkAuth(ctx context.Context) (api.AuthStatus, error) {
	reqCtx, cancel := c.requestContext(ctx)
	defer cancel()
	status, err := c.service.CheckAuth(reqCtx)
	if err != nil || status == nil {
		return api.AuthStatus{}, err
	}
	return *status, nil
}

func (c *plainChat) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.timeout)
}
