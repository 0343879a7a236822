// internal/game/view.go
package game

import (
	"time"

	"github.com/google/uuid"

	"github.com/blattodea-games/roachpoker/engine"
	"github.com/blattodea-games/roachpoker/internal/models"
)

// CardView is one card in the requester's own hand. Other players' cards
// never appear in any view, only their counts.
type CardView struct {
	ID       uuid.UUID `json:"id"`
	Creature string    `json:"creature"`
	Idx      int       `json:"idx"`
}

// ParticipantView is one player's public state as seen by any observer:
// hand size, penalty piles, and liveness. Penalty piles are face up in
// this game, so both players' piles are always fully visible.
type ParticipantView struct {
	PlayerID         uuid.UUID      `json:"player_id"`
	Username         string         `json:"username"`
	Seat             int            `json:"seat"`
	ConnectionStatus string         `json:"connection_status"`
	HandSize         int            `json:"hand_size"`
	PenaltyPiles     map[string]int `json:"penalty_piles"`
	PenaltyTotal     int            `json:"penalty_total"`
	IsTurn           bool           `json:"is_turn"`
}

// RoundView is the pending round as seen by the requester. The card's
// actual creature is never included; only the declaration is public.
type RoundView struct {
	RoundID          uuid.UUID  `json:"round_id"`
	ClaimingPlayerID uuid.UUID  `json:"claiming_player_id"`
	DeclaredCreature string     `json:"declared_creature"`
	TargetPlayerID   uuid.UUID  `json:"target_player_id"`
	PassCount        int        `json:"pass_count"`
	YouMayRespond    bool       `json:"you_may_respond"`
	YouMayPass       bool       `json:"you_may_pass"`
	RespondDeadline  *time.Time `json:"respond_deadline,omitempty"`
}

// RulesView is the public slice of the room config clients need to render
// pile thresholds.
type RulesView struct {
	LossMode              string `json:"loss_mode"`
	SameCreatureThreshold int    `json:"same_creature_threshold"`
	TotalCountThreshold   int    `json:"total_count_threshold"`
	CardsPerPlayer        int    `json:"cards_per_player"`
	RespondTimeoutSec     int    `json:"respond_timeout_sec"`
}

// RoomView is a snapshot of the room tailored to one requester: their own
// hand revealed, the opponent reduced to counts.
type RoomView struct {
	RoomID         uuid.UUID         `json:"room_id"`
	Status         string            `json:"status"`
	HostPlayerID   uuid.UUID         `json:"host_player_id"`
	SessionVersion uint64            `json:"session_version"`
	Rules          RulesView         `json:"rules"`
	Participants   []ParticipantView `json:"participants"`
	YourHand       []CardView        `json:"your_hand,omitempty"`
	Round          *RoundView        `json:"round,omitempty"`
	NextClaimantID *uuid.UUID        `json:"next_claimant_id,omitempty"`
	ReserveCount   int               `json:"reserve_count"`
	RoundsPlayed   int               `json:"rounds_played"`
	WinnerID       *uuid.UUID        `json:"winner_id,omitempty"`
	LoserID        *uuid.UUID        `json:"loser_id,omitempty"`
	LossReason     string            `json:"loss_reason,omitempty"`
}

// viewForLocked builds the requester's redacted snapshot from engine state
// as the authoritative source. Assumes lock is held by caller.
func (r *Room) viewForLocked(forPlayer uuid.UUID) RoomView {
	view := RoomView{
		RoomID:         r.ID,
		Status:         string(r.Status),
		HostPlayerID:   r.HostPlayerID,
		SessionVersion: r.SessionVersion,
		Rules: RulesView{
			LossMode:              r.Config.LossMode,
			SameCreatureThreshold: r.Config.SameCreatureThreshold,
			TotalCountThreshold:   r.Config.TotalCountThreshold,
			CardsPerPlayer:        r.Config.CardsPerPlayer,
			RespondTimeoutSec:     r.Config.RespondTimeoutSec,
		},
	}

	view.Participants = make([]ParticipantView, len(r.Participants))
	for i, p := range r.Participants {
		view.Participants[i] = r.participantViewLocked(p)
	}

	if r.Status == models.RoomStatusWaiting {
		return view
	}

	view.ReserveCount = int(r.Engine.ReserveLen)
	view.RoundsPlayed = int(r.Engine.RoundsPlayed)

	// Own hand, revealed.
	if seat, ok := r.PlayerToEngine[forPlayer]; ok {
		handLen := r.Engine.Players[seat].HandLen
		view.YourHand = make([]CardView, handLen)
		for j := uint8(0); j < handLen; j++ {
			view.YourHand[j] = CardView{
				ID:       r.cards.hands[seat][j],
				Creature: engine.CreatureName(r.Engine.Players[seat].Hand[j].Creature()),
				Idx:      int(j),
			}
		}
	}

	if r.CurrentRound != nil {
		mayAct := r.CurrentRound.TargetID == forPlayer && r.Status == models.RoomStatusActive
		rv := &RoundView{
			RoundID:          r.CurrentRound.ID,
			ClaimingPlayerID: r.CurrentRound.ClaimerID,
			DeclaredCreature: r.CurrentRound.Declared,
			TargetPlayerID:   r.CurrentRound.TargetID,
			PassCount:        r.CurrentRound.PassCount,
			YouMayRespond:    mayAct,
			YouMayPass:       mayAct,
		}
		if r.respondTimer != nil {
			deadline := r.respondDeadline
			rv.RespondDeadline = &deadline
		}
		view.Round = rv
	} else if r.Status == models.RoomStatusActive {
		next := r.EngineToPlayer[r.Engine.NextClaimant]
		view.NextClaimantID = &next
	}

	if r.Status == models.RoomStatusCompleted && r.Engine.WinnerIdx() >= 0 {
		winner := r.EngineToPlayer[uint8(r.Engine.WinnerIdx())]
		loser := r.EngineToPlayer[uint8(r.Engine.LoserIdx())]
		view.WinnerID = &winner
		view.LoserID = &loser
		view.LossReason = engine.LossReasonName(r.Engine.LossReason)
	}

	return view
}

// JoinedPayloadFor builds the room_joined payload for a participant whose
// connection just bound to the room.
func (r *Room) JoinedPayloadFor(playerID uuid.UUID) (RoomJoinedPayload, error) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	p := r.participantLocked(playerID)
	if p == nil {
		return RoomJoinedPayload{}, ErrAccessDenied
	}
	views := make([]ParticipantView, len(r.Participants))
	for i, q := range r.Participants {
		views[i] = r.participantViewLocked(q)
	}
	return RoomJoinedPayload{
		RoomID:            r.ID,
		RoomState:         r.viewForLocked(playerID),
		Participants:      views,
		YourParticipation: r.participantViewLocked(p),
	}, nil
}

// RoomSummary is the listing line for one room: enough to pick a game,
// nothing about its contents.
type RoomSummary struct {
	RoomID       uuid.UUID `json:"room_id"`
	Status       string    `json:"status"`
	HostPlayerID uuid.UUID `json:"host_player_id"`
	HostUsername string    `json:"host_username"`
	Private      bool      `json:"private"`
	Participants int       `json:"participants"`
	CreatedAt    time.Time `json:"created_at"`
}

// Summary builds the room's listing line.
func (r *Room) Summary() RoomSummary {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	s := RoomSummary{
		RoomID:       r.ID,
		Status:       string(r.Status),
		HostPlayerID: r.HostPlayerID,
		Private:      r.JoinCodeHash != "",
		Participants: len(r.Participants),
		CreatedAt:    r.CreatedAt,
	}
	if p := r.participantLocked(r.HostPlayerID); p != nil {
		s.HostUsername = p.Username
	}
	return s
}

// participantViewLocked builds one player's public view. Assumes lock is
// held by caller.
func (r *Room) participantViewLocked(p *models.Participant) ParticipantView {
	pv := ParticipantView{
		PlayerID:         p.PlayerID,
		Username:         p.Username,
		Seat:             p.Seat,
		ConnectionStatus: string(p.Status),
		PenaltyPiles:     make(map[string]int),
	}
	seat, ok := r.PlayerToEngine[p.PlayerID]
	if !ok || r.Status == models.RoomStatusWaiting {
		return pv
	}
	pv.HandSize = int(r.Engine.Players[seat].HandLen)
	pv.PenaltyTotal = int(r.Engine.Players[seat].PenaltyTotal)
	for c := uint8(0); c < engine.NumCreatures; c++ {
		if n := r.Engine.Players[seat].Penalty[c]; n > 0 {
			pv.PenaltyPiles[engine.CreatureName(c)] = int(n)
		}
	}
	if r.Status == models.RoomStatusActive {
		pv.IsTurn = r.Engine.ActingPlayer() == seat
	}
	return pv
}
