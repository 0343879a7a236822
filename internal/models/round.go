package models

import (
	"time"

	"github.com/google/uuid"
)

// RoundResolution records the terminal outcome of a round. Never mutated
// once written.
type RoundResolution struct {
	LoserID   uuid.UUID `json:"loserId"`
	WinnerID  uuid.UUID `json:"winnerId"`
	Actual    string    `json:"actualCreature"`
	Declared  string    `json:"declaredCreature"`
	Believed  bool      `json:"believedClaim"`
	Truthful  bool      `json:"truthful"`
	TimedOut  bool      `json:"timedOut"`
	GameEnded bool      `json:"gameEnded"`
}

// Round is one claim in flight: a physical card, the player asserting a
// creature about it, and the player who must answer. A pass-back mutates the
// target/declaration in place; a response completes it.
type Round struct {
	ID        uuid.UUID `json:"id"`
	RoomID    uuid.UUID `json:"roomId"`
	CardID    uuid.UUID `json:"cardId"`
	ClaimerID uuid.UUID `json:"claimerId"`
	Declared  string    `json:"declaredCreature"`
	TargetID  uuid.UUID `json:"targetPlayerId"`
	PassCount int       `json:"passCount"`
	Complete  bool      `json:"complete"`
	CreatedAt time.Time `json:"createdAt"`

	Resolution *RoundResolution `json:"resolution,omitempty"`
}
