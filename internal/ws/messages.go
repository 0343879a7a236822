// Package ws is the websocket transport: it authenticates connections,
// decodes client commands, routes them to rooms, and drains each
// connection's outbound queue. All game semantics live in internal/game;
// this package moves envelopes.
package ws

import "github.com/google/uuid"

// Client command types. Server-to-client event types are defined next to
// their payloads in internal/game.
const (
	MsgJoinRoom        = "join_room"
	MsgLeaveRoom       = "leave_room"
	MsgStartGame       = "start_game"
	MsgClaimCard       = "claim_card"
	MsgRespondToClaim  = "respond_to_claim"
	MsgPassCard        = "pass_card"
	MsgGetGameState    = "get_game_state"
	MsgHeartbeat       = "heartbeat"
	MsgRequestRecovery = "request_state_recovery"
	MsgConfirmSync     = "confirm_sync"
)

// Heartbeat reply event type, emitted only to the pinging connection.
const EventHeartbeatAck = "heartbeat_ack"

type joinRoomRequest struct {
	RoomID uuid.UUID `json:"room_id"`
}

type leaveRoomRequest struct {
	RoomID uuid.UUID `json:"room_id"`
}

type startGameRequest struct {
	RoomID uuid.UUID `json:"room_id"`
}

type claimCardRequest struct {
	RoomID          uuid.UUID `json:"room_id"`
	CardID          uuid.UUID `json:"card_id"`
	ClaimedCreature string    `json:"claimed_creature"`
	TargetPlayerID  uuid.UUID `json:"target_player_id"`
}

type respondToClaimRequest struct {
	RoomID       uuid.UUID `json:"room_id"`
	RoundID      uuid.UUID `json:"round_id"`
	BelieveClaim bool      `json:"believe_claim"`
}

type passCardRequest struct {
	RoomID         uuid.UUID `json:"room_id"`
	RoundID        uuid.UUID `json:"round_id"`
	TargetPlayerID uuid.UUID `json:"target_player_id"`
	NewClaim       string    `json:"new_claim"`
}

type getGameStateRequest struct {
	RoomID uuid.UUID `json:"room_id"`
}

// heartbeatRequest carries the client's send time in unix milliseconds so
// the ack can report observed latency.
type heartbeatRequest struct {
	Timestamp int64 `json:"timestamp"`
}

type heartbeatAck struct {
	ServerTimestamp int64 `json:"server_timestamp"`
	LatencyMs       int64 `json:"latency_ms"`
}

type recoveryRequest struct {
	RoomID                  uuid.UUID `json:"room_id"`
	LastKnownSessionVersion uint64    `json:"last_known_session_version"`
	ConnectionLostAt        int64     `json:"connection_lost_at"` // unix millis, 0 when unknown
}

type confirmSyncRequest struct {
	RoomID         uuid.UUID `json:"room_id"`
	SessionVersion uint64    `json:"session_version"`
}
