// internal/game/events.go
package game

import (
	"time"

	"github.com/google/uuid"
)

// Server-to-client event types. Client-to-server types live in the ws
// package next to their decoders.
const (
	EventRoomJoined        = "room_joined"
	EventRoomJoinFailed    = "room_join_failed"
	EventRoomLeft          = "room_left"
	EventParticipantJoined = "participant_joined"
	EventParticipantLeft   = "participant_left"
	EventParticipantStatus = "participant_status_update"
	EventGameStarted       = "game_started"
	EventCardClaimed       = "card_claimed"
	EventClaimResponded    = "claim_responded"
	EventRoundCompleted    = "round_completed"
	EventGameEnded         = "game_ended"
	EventCardPassed        = "card_passed"
	EventGameStateUpdate   = "game_state_update"
	EventStateRecoveryData = "state_recovery_data"
	EventRecoveryFailed    = "recovery_failed"
	EventGameActionError   = "game_action_error"
)

// RoomJoinedPayload answers a successful join_room bind.
type RoomJoinedPayload struct {
	RoomID            uuid.UUID         `json:"room_id"`
	RoomState         RoomView          `json:"room_state"`
	Participants      []ParticipantView `json:"participants"`
	YourParticipation ParticipantView   `json:"your_participation"`
}

// RoomJoinFailedPayload answers a rejected join_room bind.
type RoomJoinFailedPayload struct {
	RoomID    uuid.UUID `json:"room_id"`
	ErrorCode string    `json:"error_code"`
	Message   string    `json:"message"`
}

// RoomLeftPayload acknowledges leave_room to the leaver.
type RoomLeftPayload struct {
	RoomID uuid.UUID `json:"room_id"`
}

// ParticipantJoinedPayload announces a new participant to the room.
type ParticipantJoinedPayload struct {
	RoomID      uuid.UUID       `json:"room_id"`
	Participant ParticipantView `json:"participant"`
}

// ParticipantLeftPayload announces a voluntary departure.
type ParticipantLeftPayload struct {
	RoomID        uuid.UUID `json:"room_id"`
	ParticipantID uuid.UUID `json:"participant_id"`
	Reason        string    `json:"reason"`
}

// ParticipantStatusPayload announces a connection status change.
type ParticipantStatusPayload struct {
	RoomID           uuid.UUID `json:"room_id"`
	ParticipantID    uuid.UUID `json:"participant_id"`
	ConnectionStatus string    `json:"connection_status"`
}

// GameStartedPayload announces the deal. Hands go out privately via
// game_state_update; this frame only carries the public facts.
type GameStartedPayload struct {
	RoomID         uuid.UUID `json:"room_id"`
	StartedByID    uuid.UUID `json:"started_by_id"`
	NextClaimantID uuid.UUID `json:"next_claimant_id"`
	CardsPerPlayer int       `json:"cards_per_player"`
	SessionVersion uint64    `json:"session_version"`
}

// CardClaimedPayload announces a new claim in flight. The card itself is
// face down: only its wire identity and the (possibly false) declaration
// are public.
type CardClaimedPayload struct {
	RoomID           uuid.UUID `json:"room_id"`
	RoundID          uuid.UUID `json:"round_id"`
	ClaimingPlayerID uuid.UUID `json:"claiming_player_id"`
	ClaimedCreature  string    `json:"claimed_creature"`
	TargetPlayerID   uuid.UUID `json:"target_player_id"`
	SessionVersion   uint64    `json:"session_version"`
	Timestamp        time.Time `json:"timestamp"`
}

// ClaimRespondedPayload announces the target's belief call. The outcome
// follows in round_completed or game_ended under the same session version.
type ClaimRespondedPayload struct {
	RoomID         uuid.UUID `json:"room_id"`
	RoundID        uuid.UUID `json:"round_id"`
	ResponderID    uuid.UUID `json:"responder_id"`
	BelievedClaim  bool      `json:"believed_claim"`
	SessionVersion uint64    `json:"session_version"`
}

// RoundCompletedPayload reveals the resolved round: the card's actual
// creature, who takes it, and who claims next.
type RoundCompletedPayload struct {
	RoomID           uuid.UUID `json:"room_id"`
	RoundID          uuid.UUID `json:"round_id"`
	LoserID          uuid.UUID `json:"loser_id"`
	WinnerID         uuid.UUID `json:"winner_id"`
	ActualCreature   string    `json:"actual_creature"`
	DeclaredCreature string    `json:"declared_creature"`
	BelievedClaim    bool      `json:"believed_claim"`
	Truthful         bool      `json:"truthful"`
	TimedOut         bool      `json:"timed_out"`
	PassCount        int       `json:"pass_count"`
	LoserPileCount   int       `json:"loser_pile_count"` // loser's pile for the actual creature, post-resolution
	NextClaimantID   uuid.UUID `json:"next_claimant_id"`
	SessionVersion   uint64    `json:"session_version"`
}

// FinalRoundView is the resolution detail embedded in game_ended when the
// game ended on a resolved round (absent for forfeits).
type FinalRoundView struct {
	RoundID          uuid.UUID `json:"round_id"`
	LoserID          uuid.UUID `json:"loser_id"`
	ActualCreature   string    `json:"actual_creature"`
	DeclaredCreature string    `json:"declared_creature"`
	BelievedClaim    bool      `json:"believed_claim"`
	Truthful         bool      `json:"truthful"`
	TimedOut         bool      `json:"timed_out"`
	PassCount        int       `json:"pass_count"`
}

// GameEndedPayload announces the terminal state of the room.
type GameEndedPayload struct {
	RoomID         uuid.UUID       `json:"room_id"`
	WinnerID       uuid.UUID       `json:"winner_id"`
	Losers         []uuid.UUID     `json:"losers"`
	Reason         string          `json:"reason"`
	RoundsPlayed   int             `json:"rounds_played"`
	FinalRound     *FinalRoundView `json:"final_round,omitempty"`
	SessionVersion uint64          `json:"session_version"`
	Timestamp      time.Time       `json:"timestamp"`
}

// CardPassedPayload announces a pass-back: same card, new target, new lie.
type CardPassedPayload struct {
	RoomID             uuid.UUID `json:"room_id"`
	RoundID            uuid.UUID `json:"round_id"`
	FromPlayerID       uuid.UUID `json:"from_player_id"`
	ToPlayerID         uuid.UUID `json:"to_player_id"`
	NewClaimedCreature string    `json:"new_claimed_creature"`
	PassCount          int       `json:"pass_count"`
	SessionVersion     uint64    `json:"session_version"`
	Timestamp          time.Time `json:"timestamp"`
}

// GameStateUpdatePayload carries a per-viewer state snapshot. Sent only to
// the requesting or dealt-to connection, never broadcast.
type GameStateUpdatePayload struct {
	RoomID    uuid.UUID `json:"room_id"`
	GameState RoomView  `json:"game_state"`
}

// StateRecoveryPayload answers request_state_recovery. UpToDate true means
// the client's version matched and no snapshot was attached.
type StateRecoveryPayload struct {
	RoomID                 uuid.UUID `json:"room_id"`
	UpToDate               bool      `json:"up_to_date"`
	SessionVersion         uint64    `json:"session_version"`
	GameState              *RoomView `json:"game_state,omitempty"`
	MissedEventTypes       []string  `json:"missed_event_types,omitempty"`
	DisconnectedDurationMs int64     `json:"disconnected_duration_ms"`
}

// RecoveryFailedPayload answers an unrecoverable request_state_recovery.
// The reason is deliberately generic: it never distinguishes "no such
// room" from "not your room".
type RecoveryFailedPayload struct {
	RoomID uuid.UUID `json:"room_id"`
	Reason string    `json:"reason"`
}

// GameActionErrorPayload is sent to the offending connection only, naming
// the action that was rejected.
type GameActionErrorPayload struct {
	ErrorCode       string `json:"error_code"`
	Message         string `json:"message"`
	ActionAttempted string `json:"action_attempted"`
}
