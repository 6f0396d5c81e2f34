// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package clipboard

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"
)

// Cmd copies payload from inside a running bubbletea program. The primary
// mechanism runs in the command goroutine. The fallback runs through
// tea.Exec, which pauses the renderer, so an OSC 52 sequence reaches the
// terminal between frames and never inside one. done builds the result
// message from the final error.
func (c *Copier) Cmd(ctx context.Context, payload string, done func(error) tea.Msg) tea.Cmd {
	return func() tea.Msg {
		primaryErr := c.copyPrimary(ctx, payload)
		if primaryErr == nil {
			return done(nil)
		}
		if err := ctx.Err(); err != nil {
			return done(c.failed(primaryErr, err))
		}
		if c.fallback == nil {
			return done(c.failed(primaryErr, ErrUnavailable))
		}

		exec := &fallbackExec{writer: c.fallback, payload: payload}
		return tea.Exec(exec, func(err error) tea.Msg {
			if err != nil {
				return done(c.failed(primaryErr, err))
			}
			return done(nil)
		})()
	}
}

// fallbackExec adapts the fallback Writer to tea.ExecCommand. An OSC52
// writer is pointed at the program's output.
type fallbackExec struct {
	writer  Writer
	payload string
}

func (e *fallbackExec) Run() error {
	return safeWrite(e.writer, e.payload)
}

func (e *fallbackExec) SetStdin(io.Reader) {}

func (e *fallbackExec) SetStdout(w io.Writer) {
	if o, ok := e.writer.(OSC52); ok && w != nil {
		o.Out = w
		e.writer = o
	}
}

func (e *fallbackExec) SetStderr(io.Writer) {}
