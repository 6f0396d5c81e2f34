// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package clipboard

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Button labels.
const (
	LabelCopy   = "Copy"
	LabelCopied = "Copied!"
)

// RevertDelay is how long "Copied!" stays up after a successful copy.
const RevertDelay = 2 * time.Second

// RevertMsg asks the button for Key to go back to LabelCopy. Gen identifies
// which success scheduled it.
type RevertMsg struct {
	Key string
	Gen int
}

// Button is the copy affordance of one bot turn. After a success it shows
// "Copied!" for exactly one RevertDelay window; a new success restarts the
// window and the earlier revert is ignored when it arrives, so reverts never
// queue up.
type Button struct {
	key   string
	label string
	gen   int
}

// NewButton returns a button showing LabelCopy.
func NewButton(key string) *Button {
	return &Button{key: key, label: LabelCopy}
}

// Label returns the current label.
func (b *Button) Label() string {
	return b.label
}

// Copied switches to LabelCopied and returns the command that delivers the
// revert after RevertDelay.
func (b *Button) Copied() tea.Cmd {
	b.gen++
	b.label = LabelCopied
	msg := RevertMsg{Key: b.key, Gen: b.gen}
	return tea.Tick(RevertDelay, func(time.Time) tea.Msg {
		return msg
	})
}

// Revert applies msg if it belongs to this button's latest success. It
// reports whether the label changed.
func (b *Button) Revert(msg RevertMsg) bool {
	if msg.Key != b.key || msg.Gen != b.gen || b.label == LabelCopy {
		return false
	}
	b.label = LabelCopy
	return true
}
