// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package clipboard implements the copy action for bot turns.
//
// A copy first goes to the system clipboard. If that fails for any reason
// (error, panic, no clipboard utility installed) it falls back to an OSC 52
// escape sequence written to the terminal, which most modern terminals
// (and tmux/screen with passthrough) turn into a clipboard write. Only when
// both fail does Copy return an apperr.ClipboardFailure.
package clipboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/atotto/clipboard"
	"github.com/aymanbagabas/go-osc52/v2"
	"go.uber.org/zap"

	"github.com/jeranaias/chatterm/internal/apperr"
)

// ErrUnavailable is returned by a Writer that has no backing facility.
var ErrUnavailable = errors.New("clipboard facility unavailable")

// Writer places text somewhere the user can paste it from.
type Writer interface {
	WriteText(text string) error
}

// WriterFunc adapts a function to Writer.
type WriterFunc func(text string) error

// WriteText calls f.
func (f WriterFunc) WriteText(text string) error {
	return f(text)
}

// =============================================================================
// SYSTEM CLIPBOARD
// =============================================================================

// System writes through the OS clipboard (pbcopy, xclip/xsel/wl-copy,
// Windows API).
type System struct{}

// WriteText implements Writer.
func (System) WriteText(text string) error {
	if clipboard.Unsupported {
		return ErrUnavailable
	}
	return clipboard.WriteAll(text)
}

// =============================================================================
// OSC 52
// =============================================================================

// OSC52 writes an OSC 52 set-clipboard sequence to Out. Inside tmux or GNU
// screen the sequence is wrapped so the multiplexer passes it through.
type OSC52 struct {
	Out io.Writer
	// Getenv defaults to os.Getenv.
	Getenv func(string) string
}

// WriteText implements Writer.
func (o OSC52) WriteText(text string) error {
	if o.Out == nil {
		return ErrUnavailable
	}
	getenv := o.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	seq := osc52.New(text)
	switch {
	case getenv("TMUX") != "":
		seq = seq.Tmux()
	case getenv("STY") != "":
		seq = seq.Screen()
	}
	if _, err := seq.WriteTo(o.Out); err != nil {
		return fmt.Errorf("write osc52 sequence: %w", err)
	}
	return nil
}

// =============================================================================
// COPIER
// =============================================================================

// Copier runs the primary mechanism and, on failure, the fallback.
type Copier struct {
	primary  Writer
	fallback Writer
	logger   *zap.Logger
}

// NewCopier returns a Copier using the system clipboard with an OSC 52
// fallback written to term.
func NewCopier(term io.Writer, logger *zap.Logger) *Copier {
	return NewCopierWith(System{}, OSC52{Out: term}, logger)
}

// NewCopierWith returns a Copier with explicit mechanisms. Either may be nil,
// which counts as unavailable.
func NewCopierWith(primary, fallback Writer, logger *zap.Logger) *Copier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Copier{primary: primary, fallback: fallback, logger: logger}
}

// Copy places payload on the clipboard. It never panics; when both
// mechanisms fail, or ctx is done before either runs, the returned error is
// an apperr.ClipboardFailure.
func (c *Copier) Copy(ctx context.Context, payload string) error {
	primaryErr := c.copyPrimary(ctx, payload)
	if primaryErr == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return c.failed(primaryErr, err)
	}

	fallbackErr := safeWrite(c.fallback, payload)
	if fallbackErr == nil {
		return nil
	}
	return c.failed(primaryErr, fallbackErr)
}

func (c *Copier) copyPrimary(ctx context.Context, payload string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := safeWrite(c.primary, payload)
	if err != nil {
		c.logger.Debug("primary clipboard failed, trying osc52", zap.Error(err))
	}
	return err
}

func (c *Copier) failed(primaryErr, fallbackErr error) error {
	c.logger.Warn("clipboard copy failed",
		zap.NamedError("primary", primaryErr),
		zap.NamedError("fallback", fallbackErr))
	return apperr.ClipboardFailure(primaryErr, fallbackErr)
}

// safeWrite converts a missing writer or a panic into an error.
func safeWrite(w Writer, text string) (err error) {
	if w == nil {
		return ErrUnavailable
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("clipboard writer panicked: %v", r)
		}
	}()
	return w.WriteText(text)
}
