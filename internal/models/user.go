package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the authenticated identity behind a player, handed to the engine
// by the auth collaborator. Registration and profile management live outside
// this service.
type User struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}
