// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// MaxTurns bounds the transcript so a long session cannot grow without limit.
// The oldest turns after the greeting are dropped first.
const MaxTurns = 1000

// Transcript is the ordered, append-only list of turns on screen. Only the
// chat view appends to it.
type Transcript struct {
	turns []ChatTurn
}

// NewTranscript returns a transcript seeded with the greeting.
func NewTranscript() *Transcript {
	return &Transcript{turns: []ChatTurn{GreetingTurn()}}
}

// Append adds a turn at the end.
func (t *Transcript) Append(turn ChatTurn) {
	t.turns = append(t.turns, turn)
	if len(t.turns) > MaxTurns {
		excess := len(t.turns) - MaxTurns
		// Keep the greeting at index 0.
		t.turns = append(t.turns[:1], t.turns[1+excess:]...)
	}
}

// Turns returns the turns in display order.
func (t *Transcript) Turns() []ChatTurn {
	out := make([]ChatTurn, len(t.turns))
	copy(out, t.turns)
	return out
}

// Len returns the number of turns, greeting included.
func (t *Transcript) Len() int {
	return len(t.turns)
}

// Last returns the newest turn.
func (t *Transcript) Last() (ChatTurn, bool) {
	if len(t.turns) == 0 {
		return ChatTurn{}, false
	}
	return t.turns[len(t.turns)-1], true
}

// LastCopyable returns the newest turn that has a copy payload.
func (t *Transcript) LastCopyable() (ChatTurn, bool) {
	for i := len(t.turns) - 1; i >= 0; i-- {
		if _, ok := t.turns[i].CopyPayload(); ok {
			return t.turns[i], true
		}
	}
	return ChatTurn{}, false
}

// Clear discards every turn and re-seeds the greeting. Used by "new chat".
func (t *Transcript) Clear() {
	t.turns = []ChatTurn{GreetingTurn()}
}
