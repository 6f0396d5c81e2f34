// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// SENDER
// =============================================================================

// Sender identifies who produced a chat turn.
type Sender int

const (
	SenderUser Sender = iota
	SenderBot
)

// String returns the wire/CSS-style name of the sender.
func (s Sender) String() string {
	if s == SenderBot {
		return "bot"
	}
	return "user"
}

// Avatar returns the glyph shown next to the sender's turns.
func (s Sender) Avatar() string {
	if s == SenderBot {
		return "🤖"
	}
	return "🧑"
}

// =============================================================================
// SEGMENT
// =============================================================================

// SegmentKind classifies a segment.
type SegmentKind int

const (
	SegmentProse SegmentKind = iota
	SegmentCode
)

// String returns the kind name.
func (k SegmentKind) String() string {
	if k == SegmentCode {
		return "code"
	}
	return "prose"
}

// Segment is one parsed unit of a chat message. Code text has its fences and
// surrounding whitespace removed; Prose text is kept as written.
type Segment struct {
	Kind SegmentKind
	Text string
}

// Prose returns a prose segment.
func Prose(text string) Segment {
	return Segment{Kind: SegmentProse, Text: text}
}

// Code returns a code segment.
func Code(text string) Segment {
	return Segment{Kind: SegmentCode, Text: text}
}

// =============================================================================
// CHAT TURN
// =============================================================================

// ChatTurn is one rendered exchange unit. It is never mutated after creation;
// accessors return copies.
type ChatTurn struct {
	id          string
	sender      Sender
	segments    []Segment
	copyPayload string
	hasCopy     bool
	createdAt   time.Time
}

// NewChatTurn builds a turn. copyPayload is only kept for bot turns.
func NewChatTurn(sender Sender, segments []Segment, copyPayload string) ChatTurn {
	segs := make([]Segment, len(segments))
	copy(segs, segments)
	turn := ChatTurn{
		id:        uuid.NewString(),
		sender:    sender,
		segments:  segs,
		createdAt: time.Now(),
	}
	if sender == SenderBot {
		turn.copyPayload = copyPayload
		turn.hasCopy = true
	}
	return turn
}

// ID returns the turn's unique id.
func (t ChatTurn) ID() string { return t.id }

// Sender returns who produced the turn.
func (t ChatTurn) Sender() Sender { return t.sender }

// CreatedAt returns when the turn was built.
func (t ChatTurn) CreatedAt() time.Time { return t.createdAt }

// Segments returns a copy of the turn's segments in order.
func (t ChatTurn) Segments() []Segment {
	out := make([]Segment, len(t.segments))
	copy(out, t.segments)
	return out
}

// CopyPayload returns the text placed on the clipboard by the copy action.
// ok is false for user turns and for the greeting.
func (t ChatTurn) CopyPayload() (payload string, ok bool) {
	return t.copyPayload, t.hasCopy
}

// Greeting text shown at the top of every fresh transcript.
const Greeting = "Hello! I am your AI assistant. How can I help you today?"

// GreetingTurn returns the bot turn that seeds an empty transcript. It has no
// copy affordance.
func GreetingTurn() ChatTurn {
	return ChatTurn{
		id:        uuid.NewString(),
		sender:    SenderBot,
		segments:  []Segment{Prose(Greeting)},
		createdAt: time.Now(),
	}
}
