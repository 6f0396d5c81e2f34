// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render turns free-form chat text into typed segments.
//
// A fenced block runs from one "```" marker to the next one, inclusive, and
// may span lines. Text between fenced blocks is prose. Only matched pairs
// count: an unterminated fence (odd number of markers) stays literal prose,
// as does a lone marker in the middle of a sentence.
package render

import (
	"strings"

	"github.com/jeranaias/chatterm/internal/apperr"
	"github.com/jeranaias/chatterm/internal/model"
)

// FenceMarker delimits code segments.
const FenceMarker = "```"

// piece is one unit of the partition produced by scan.
type piece struct {
	text   string
	fenced bool
}

// scan partitions text into alternating not-fenced and fenced pieces in
// order of appearance. Fenced pieces include both markers. Empty pieces are
// kept; the caller decides what to drop.
func scan(text string) []piece {
	var pieces []piece
	rest := text
	for {
		open := strings.Index(rest, FenceMarker)
		if open < 0 {
			break
		}
		body := rest[open+len(FenceMarker):]
		closing := strings.Index(body, FenceMarker)
		if closing < 0 {
			// Unterminated: everything from here on is literal.
			break
		}
		end := open + len(FenceMarker) + closing + len(FenceMarker)
		pieces = append(pieces,
			piece{text: rest[:open]},
			piece{text: rest[open:end], fenced: true},
		)
		rest = rest[end:]
	}
	return append(pieces, piece{text: rest})
}

// Segments parses text into segments in original order. Fenced pieces become
// Code segments with exactly one marker stripped from each end and whitespace
// trimmed, even when that leaves them empty. Other pieces become Prose with
// their original text, unless they are blank, in which case they are dropped.
func Segments(text string) []model.Segment {
	var segs []model.Segment
	for _, p := range scan(text) {
		switch {
		case p.fenced:
			inner := p.text[len(FenceMarker) : len(p.text)-len(FenceMarker)]
			segs = append(segs, model.Code(strings.TrimSpace(inner)))
		case strings.TrimSpace(p.text) != "":
			segs = append(segs, model.Prose(p.text))
		}
	}
	return segs
}

// CopyPayload returns what the copy action places on the clipboard: the raw
// text with every fence marker removed, trimmed. It works on the raw text,
// not on segments, so stray markers are removed too.
func CopyPayload(text string) string {
	return strings.TrimSpace(strings.ReplaceAll(text, FenceMarker, ""))
}

// Render builds the chat turn for text. Bot turns carry a copy payload; user
// turns do not.
func Render(text string, sender model.Sender) model.ChatTurn {
	return model.NewChatTurn(sender, Segments(text), CopyPayload(text))
}

// Fallback bot texts used when a response cannot be rendered normally.
const (
	ServerErrorText  = "Server Error: Failed to get a valid response from the AI."
	NetworkErrorText = "Network Error: Could not reach the server."
)

// ServerErrorTurn is the synthetic bot turn shown when the response carried
// no text.
func ServerErrorTurn() model.ChatTurn {
	return Render(ServerErrorText, model.SenderBot)
}

// NetworkErrorTurn is the synthetic bot turn shown when the chat request
// never completed.
func NetworkErrorTurn() model.ChatTurn {
	return Render(NetworkErrorText, model.SenderBot)
}

// ReplyTurn is the bot turn for the outcome of a chat request: the rendered
// reply, or the matching fallback when the request failed or came back empty.
func ReplyTurn(reply string, err error) model.ChatTurn {
	switch {
	case err != nil && apperr.KindOf(err) == apperr.KindNetwork:
		return NetworkErrorTurn()
	case err != nil, reply == "":
		return ServerErrorTurn()
	default:
		return Render(reply, model.SenderBot)
	}
}
