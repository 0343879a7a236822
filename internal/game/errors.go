// internal/game/errors.go
package game

import (
	"errors"

	"github.com/blattodea-games/roachpoker/internal/realtime"
)

// Sentinel errors returned by room operations. The ws and handler layers
// translate these into wire error codes in exactly one place (ErrorCode);
// room code only ever wraps or returns the sentinels.
var (
	ErrAccessDenied    = errors.New("player is not a participant of this room")
	ErrRoomNotFound    = errors.New("room not found")
	ErrGameNotActive   = errors.New("game is not active")
	ErrNotYourTurn     = errors.New("not your turn")
	ErrPlayerNotInGame = errors.New("player is not in this game")
	ErrInvalidAction   = errors.New("invalid action")
	ErrRecoveryFailed  = errors.New("state recovery failed")
)

// Wire error codes surfaced in game_action_error and room_join_failed
// payloads.
const (
	CodeAccessDenied    = "ACCESS_DENIED"
	CodeRoomNotFound    = "ROOM_NOT_FOUND"
	CodeGameNotActive   = "GAME_NOT_ACTIVE"
	CodeNotYourTurn     = "NOT_YOUR_TURN"
	CodePlayerNotInGame = "PLAYER_NOT_IN_GAME"
	CodeInvalidAction   = "INVALID_ACTION"
	CodeRecoveryFailed  = "RECOVERY_FAILED"
)

// ErrorCode maps an error from a room operation or the membership registry
// to its wire code. Anything unrecognized is reported as INVALID_ACTION so
// a rejected action always carries a code the client can dispatch on.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrAccessDenied) || errors.Is(err, realtime.ErrAccessDenied):
		return CodeAccessDenied
	case errors.Is(err, ErrRoomNotFound):
		return CodeRoomNotFound
	case errors.Is(err, ErrGameNotActive):
		return CodeGameNotActive
	case errors.Is(err, ErrNotYourTurn):
		return CodeNotYourTurn
	case errors.Is(err, ErrPlayerNotInGame):
		return CodePlayerNotInGame
	case errors.Is(err, ErrRecoveryFailed):
		return CodeRecoveryFailed
	default:
		return CodeInvalidAction
	}
}
