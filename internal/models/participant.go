package models

import (
	"time"

	"github.com/google/uuid"
)

// ConnectionStatus is a participant's liveness as seen by the room.
type ConnectionStatus string

const (
	StatusConnected    ConnectionStatus = "connected"
	StatusDisconnected ConnectionStatus = "disconnected"
	StatusReconnecting ConnectionStatus = "reconnecting"
)

// Participant is one player's membership in a room. Created on join, owned
// by the room, removed only when the room is torn down. The hand and penalty
// pile live in the engine; this struct carries the session-side attributes.
type Participant struct {
	PlayerID uuid.UUID        `json:"playerId"`
	Username string           `json:"username"`
	Seat     int              `json:"seat"` // 0 or 1
	Status   ConnectionStatus `json:"connectionStatus"`
	JoinedAt time.Time        `json:"joinedAt"`

	// DisconnectedAt is set while Status != connected, for recovery reporting.
	DisconnectedAt time.Time `json:"-"`
}
