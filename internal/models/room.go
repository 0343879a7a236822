package models

import (
	"time"

	"github.com/google/uuid"
)

// RoomStatus defines the lifecycle state of a room.
type RoomStatus string

const (
	RoomStatusWaiting   RoomStatus = "waiting"
	RoomStatusActive    RoomStatus = "active"
	RoomStatusCompleted RoomStatus = "completed"
)

// RoomConfig captures the game-time configuration chosen at room creation.
type RoomConfig struct {
	// LossMode selects the loss condition: "same_creature" or "total_count".
	LossMode string `json:"lossMode"`

	// SameCreatureThreshold is the pile size of one creature that loses the
	// game under "same_creature".
	SameCreatureThreshold int `json:"sameCreatureThreshold"`

	// TotalCountThreshold is the total pile size that loses the game under
	// "total_count".
	TotalCountThreshold int `json:"totalCountThreshold"`

	// CardsPerPlayer is how many cards each player is dealt.
	CardsPerPlayer int `json:"cardsPerPlayer"`

	// RespondTimeoutSec is how many seconds the claim target has to respond
	// or pass before forfeiting the exchange (0 => no limit).
	RespondTimeoutSec int `json:"respondTimeoutSec"`

	// ReconnectGraceSec is added to a live respond deadline when the player
	// it is waiting on reconnects.
	ReconnectGraceSec int `json:"reconnectGraceSec"`

	// Private rooms require the join code chosen by the creator.
	Private bool `json:"private"`
}

// DefaultRoomConfig returns the standard two-player configuration.
func DefaultRoomConfig() RoomConfig {
	return RoomConfig{
		LossMode:              "same_creature",
		SameCreatureThreshold: 3,
		TotalCountThreshold:   4,
		CardsPerPlayer:        16,
		RespondTimeoutSec:     60,
		ReconnectGraceSec:     15,
	}
}

// Room identifies one game instance as stored and listed. The live session
// state around it is owned by the game package.
type Room struct {
	ID           uuid.UUID  `json:"id"`
	HostPlayerID uuid.UUID  `json:"hostPlayerId"`
	Status       RoomStatus `json:"status"`
	Config       RoomConfig `json:"config"`
	CreatedAt    time.Time  `json:"createdAt"`

	// JoinCodeHash is the bcrypt hash of the private-room join code.
	JoinCodeHash string `json:"-"`
}
