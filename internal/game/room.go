// internal/game/room.go
package game

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/blattodea-games/roachpoker/engine"
	"github.com/blattodea-games/roachpoker/internal/auth"
	"github.com/blattodea-games/roachpoker/internal/cache"
	"github.com/blattodea-games/roachpoker/internal/database"
	"github.com/blattodea-games/roachpoker/internal/models"
)

// eventLogCap bounds the per-room ring of broadcast event types kept for
// recovery reporting.
const eventLogCap = 128

// eventLogEntry tags a broadcast event type with the session version it
// was emitted under.
type eventLogEntry struct {
	Version uint64
	Type    string
}

// Room owns the authoritative state of one game session. All mutating
// actions pass through its mutex serially; state is committed before any
// broadcast goes out, so a slow client can only ever see a stale view,
// never corrupt the source of truth.
type Room struct {
	ID           uuid.UUID
	HostPlayerID uuid.UUID
	Status       models.RoomStatus
	Config       models.RoomConfig
	JoinCodeHash string // bcrypt hash of the join code; empty for public rooms
	CreatedAt    time.Time

	Participants []*models.Participant // index == seat

	// Engine integration — authoritative game state.
	Engine         engine.GameState
	cards          cardTracker
	PlayerToEngine map[uuid.UUID]uint8
	EngineToPlayer [engine.MaxPlayers]uuid.UUID

	// SessionVersion orders every state-affecting operation on the room.
	// It increments exactly once per accepted mutating action; rejected
	// actions never touch it.
	SessionVersion uint64

	CurrentRound *models.Round // nil unless a claim is awaiting a response

	respondDeadline time.Time
	respondTimer    clockwork.Timer
	respondEpoch    uint64 // invalidates timer callbacks from replaced deadlines

	recentEvents []eventLogEntry
	actionIndex  int

	clock clockwork.Clock
	Mu    sync.Mutex

	// Communication callbacks, wired by the manager. The room never talks
	// to a transport directly.
	BroadcastFn         func(eventType string, payload interface{})
	BroadcastToPlayerFn func(playerID uuid.UUID, eventType string, payload interface{})
}

// NewRoom creates a waiting room with the host seated at 0. The host's
// connection status starts disconnected and flips when their socket binds.
func NewRoom(hostID uuid.UUID, hostName string, cfg models.RoomConfig, clock clockwork.Clock) *Room {
	id, _ := uuid.NewRandom()
	r := &Room{
		ID:             id,
		HostPlayerID:   hostID,
		Status:         models.RoomStatusWaiting,
		Config:         cfg,
		CreatedAt:      clock.Now(),
		PlayerToEngine: make(map[uuid.UUID]uint8),
		clock:          clock,
	}
	r.Participants = append(r.Participants, &models.Participant{
		PlayerID: hostID,
		Username: hostName,
		Seat:     0,
		Status:   models.StatusDisconnected,
		JoinedAt: clock.Now(),
	})
	return r
}

// AddParticipant seats a player in a waiting room. Re-adding an existing
// participant is idempotent and returns the existing record. For private
// rooms the join code is verified here, before any seat is taken.
func (r *Room) AddParticipant(playerID uuid.UUID, username, joinCode string) (*models.Participant, error) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if p := r.participantLocked(playerID); p != nil {
		return p, nil
	}
	if r.JoinCodeHash != "" && !auth.VerifyJoinCode(r.JoinCodeHash, joinCode) {
		return nil, fmt.Errorf("%w: join code mismatch", ErrAccessDenied)
	}
	if r.Status != models.RoomStatusWaiting {
		return nil, ErrAccessDenied
	}
	if len(r.Participants) >= engine.MaxPlayers {
		return nil, fmt.Errorf("%w: room is full", ErrInvalidAction)
	}

	p := &models.Participant{
		PlayerID: playerID,
		Username: username,
		Seat:     len(r.Participants),
		Status:   models.StatusDisconnected,
		JoinedAt: r.clock.Now(),
	}
	r.Participants = append(r.Participants, p)
	r.SessionVersion++

	if database.DB != nil {
		go database.RecordParticipant(r.ID, *p)
	}
	r.logAction(playerID, "join_room", map[string]interface{}{"username": username, "seat": p.Seat})
	r.broadcast(EventParticipantJoined, ParticipantJoinedPayload{
		RoomID:      r.ID,
		Participant: r.participantViewLocked(p),
	})
	log.Printf("Room %s: player %s (%s) joined at seat %d.", r.ID, playerID, username, p.Seat)
	return p, nil
}

// Start deals the game. Only the host may start, and only once both seats
// are taken. Hands go out privately; the broadcast carries public facts.
func (r *Room) Start(playerID uuid.UUID) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	switch r.Status {
	case models.RoomStatusActive:
		return fmt.Errorf("%w: game already started", ErrInvalidAction)
	case models.RoomStatusCompleted:
		return ErrGameNotActive
	}
	if playerID != r.HostPlayerID {
		return fmt.Errorf("%w: only the host may start the game", ErrInvalidAction)
	}
	if len(r.Participants) != engine.MaxPlayers {
		return fmt.Errorf("%w: waiting for a second player", ErrInvalidAction)
	}

	for i, p := range r.Participants {
		r.PlayerToEngine[p.PlayerID] = uint8(i)
		r.EngineToPlayer[i] = p.PlayerID
	}

	seed := uint64(r.clock.Now().UnixNano())
	r.Engine = engine.NewGame(seed, r.engineRules())
	r.Engine.Deal()
	r.cards.deal(&r.Engine)

	r.Status = models.RoomStatusActive
	r.SessionVersion++

	if database.DB != nil {
		go database.UpdateRoomStatus(r.ID, models.RoomStatusActive)
	}
	r.logAction(playerID, "start_game", map[string]interface{}{"seed": seed})
	r.broadcast(EventGameStarted, GameStartedPayload{
		RoomID:         r.ID,
		StartedByID:    playerID,
		NextClaimantID: r.EngineToPlayer[r.Engine.NextClaimant],
		CardsPerPlayer: int(r.Engine.Players[0].HandLen),
		SessionVersion: r.SessionVersion,
	})
	for _, p := range r.Participants {
		r.toPlayer(p.PlayerID, EventGameStateUpdate, GameStateUpdatePayload{
			RoomID:    r.ID,
			GameState: r.viewForLocked(p.PlayerID),
		})
	}
	log.Printf("Room %s: game started by %s, %s claims first.", r.ID, playerID, r.EngineToPlayer[r.Engine.NextClaimant])
	return nil
}

// HandleClaim starts a new round: playerID slides cardID face down to
// targetID under the declared creature name. The declaration is never
// checked against the card.
func (r *Room) HandleClaim(playerID, cardID uuid.UUID, declaredName string, targetID uuid.UUID) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if r.Status != models.RoomStatusActive {
		return ErrGameNotActive
	}
	seat, ok := r.PlayerToEngine[playerID]
	if !ok {
		return ErrPlayerNotInGame
	}
	targetSeat, ok := r.PlayerToEngine[targetID]
	if !ok || targetID == playerID {
		return fmt.Errorf("%w: target must be the other participant", ErrInvalidAction)
	}
	declared, ok := engine.CreatureFromName(declaredName)
	if !ok {
		return fmt.Errorf("%w: unknown creature %q", ErrInvalidAction, declaredName)
	}
	if r.CurrentRound != nil {
		return fmt.Errorf("%w: a round is already awaiting a response", ErrInvalidAction)
	}
	if seat != r.Engine.NextClaimant {
		return ErrNotYourTurn
	}
	idx, ok := r.cards.handSlot(seat, cardID)
	if !ok {
		return fmt.Errorf("%w: card is not in your hand", ErrInvalidAction)
	}
	if err := r.Engine.ClaimCard(seat, idx, declared, targetSeat); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAction, err)
	}
	r.cards.takeHandCard(seat, idx)

	now := r.clock.Now()
	r.CurrentRound = &models.Round{
		ID:        uuid.New(),
		RoomID:    r.ID,
		CardID:    cardID,
		ClaimerID: playerID,
		Declared:  declaredName,
		TargetID:  targetID,
		CreatedAt: now,
	}
	r.SessionVersion++
	r.scheduleRespondTimerLocked()

	r.logAction(playerID, "claim_card", map[string]interface{}{
		"roundId":  r.CurrentRound.ID.String(),
		"declared": declaredName,
		"target":   targetID.String(),
	})
	r.broadcast(EventCardClaimed, CardClaimedPayload{
		RoomID:           r.ID,
		RoundID:          r.CurrentRound.ID,
		ClaimingPlayerID: playerID,
		ClaimedCreature:  declaredName,
		TargetPlayerID:   targetID,
		SessionVersion:   r.SessionVersion,
		Timestamp:        now,
	})
	return nil
}

// HandleRespond resolves the pending round with the target's belief call.
// Late or duplicate responses are detected by round identity and rejected
// rather than double-applied.
func (r *Room) HandleRespond(playerID, roundID uuid.UUID, believesClaim bool) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if r.Status != models.RoomStatusActive {
		return ErrGameNotActive
	}
	seat, ok := r.PlayerToEngine[playerID]
	if !ok {
		return ErrPlayerNotInGame
	}
	if r.CurrentRound == nil {
		return fmt.Errorf("%w: no round is awaiting a response", ErrInvalidAction)
	}
	if roundID != r.CurrentRound.ID {
		return fmt.Errorf("%w: round %s is not the pending round", ErrInvalidAction, roundID)
	}
	if r.CurrentRound.TargetID != playerID {
		return ErrNotYourTurn
	}

	res, err := r.Engine.Respond(seat, believesClaim)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAction, err)
	}
	r.SessionVersion++
	r.stopRespondTimerLocked()
	round := r.finishRoundLocked(res)

	r.logAction(playerID, "respond_to_claim", map[string]interface{}{
		"roundId": round.ID.String(),
		"believe": believesClaim,
		"loser":   round.Resolution.LoserID.String(),
	})
	r.broadcast(EventClaimResponded, ClaimRespondedPayload{
		RoomID:         r.ID,
		RoundID:        round.ID,
		ResponderID:    playerID,
		BelievedClaim:  believesClaim,
		SessionVersion: r.SessionVersion,
	})
	r.concludeRoundLocked(round, res)
	return nil
}

// HandlePassBack redirects the pending card to a new target under a new
// declaration without resolving it. The card's true creature stays hidden.
func (r *Room) HandlePassBack(playerID, roundID, newTargetID uuid.UUID, newDeclaredName string) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if r.Status != models.RoomStatusActive {
		return ErrGameNotActive
	}
	seat, ok := r.PlayerToEngine[playerID]
	if !ok {
		return ErrPlayerNotInGame
	}
	if r.CurrentRound == nil {
		return fmt.Errorf("%w: no round is awaiting a response", ErrInvalidAction)
	}
	if roundID != r.CurrentRound.ID {
		return fmt.Errorf("%w: round %s is not the pending round", ErrInvalidAction, roundID)
	}
	if r.CurrentRound.TargetID != playerID {
		return ErrNotYourTurn
	}
	newTargetSeat, ok := r.PlayerToEngine[newTargetID]
	if !ok || newTargetID == playerID {
		return fmt.Errorf("%w: must pass to the other participant", ErrInvalidAction)
	}
	newDeclared, ok := engine.CreatureFromName(newDeclaredName)
	if !ok {
		return fmt.Errorf("%w: unknown creature %q", ErrInvalidAction, newDeclaredName)
	}

	if err := r.Engine.PassBack(seat, newTargetSeat, newDeclared); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAction, err)
	}
	round := r.CurrentRound
	round.ClaimerID = playerID
	round.TargetID = newTargetID
	round.Declared = newDeclaredName
	round.PassCount++
	r.SessionVersion++
	r.scheduleRespondTimerLocked()

	r.logAction(playerID, "pass_card", map[string]interface{}{
		"roundId":   round.ID.String(),
		"declared":  newDeclaredName,
		"target":    newTargetID.String(),
		"passCount": round.PassCount,
	})
	r.broadcast(EventCardPassed, CardPassedPayload{
		RoomID:             r.ID,
		RoundID:            round.ID,
		FromPlayerID:       playerID,
		ToPlayerID:         newTargetID,
		NewClaimedCreature: newDeclaredName,
		PassCount:          round.PassCount,
		SessionVersion:     r.SessionVersion,
		Timestamp:          r.clock.Now(),
	})
	return nil
}

// StateFor returns the requester's redacted view of the room.
func (r *Room) StateFor(playerID uuid.UUID) (RoomView, error) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if r.participantLocked(playerID) == nil {
		return RoomView{}, ErrAccessDenied
	}
	return r.viewForLocked(playerID), nil
}

// HandleRejoin is called when a participant's socket binds to the room. A
// first-time bind goes straight to connected; a bind after a drop goes to
// reconnecting until the client confirms sync.
func (r *Room) HandleRejoin(playerID uuid.UUID) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	p := r.participantLocked(playerID)
	if p == nil {
		return ErrAccessDenied
	}
	next := models.StatusReconnecting
	if p.DisconnectedAt.IsZero() {
		next = models.StatusConnected
	}
	if p.Status == models.StatusConnected || p.Status == next {
		return nil
	}
	r.setStatusLocked(p, next)
	r.logAction(playerID, "player_reconnect", nil)
	return nil
}

// HandleDisconnect marks a participant disconnected. The pending round, if
// any, stays live: a dropped target can still reconnect and respond before
// the deadline.
func (r *Room) HandleDisconnect(playerID uuid.UUID) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	p := r.participantLocked(playerID)
	if p == nil || p.Status == models.StatusDisconnected {
		return
	}
	p.DisconnectedAt = r.clock.Now()
	r.setStatusLocked(p, models.StatusDisconnected)
	r.logAction(playerID, "player_disconnect", nil)
	log.Printf("Room %s: player %s disconnected.", r.ID, playerID)
}

// HandleLeave processes a voluntary departure. Leaving a waiting room
// frees the seat; leaving an active game forfeits it. Leaving a room the
// player is not in is a no-op.
func (r *Room) HandleLeave(playerID uuid.UUID) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	p := r.participantLocked(playerID)
	if p == nil {
		return nil
	}

	switch r.Status {
	case models.RoomStatusWaiting:
		for i, q := range r.Participants {
			if q.PlayerID == playerID {
				r.Participants = append(r.Participants[:i], r.Participants[i+1:]...)
				break
			}
		}
		for i, q := range r.Participants {
			q.Seat = i
		}
		r.SessionVersion++
		r.logAction(playerID, "leave_room", nil)
		r.broadcast(EventParticipantLeft, ParticipantLeftPayload{
			RoomID:        r.ID,
			ParticipantID: playerID,
			Reason:        "left",
		})

	case models.RoomStatusActive:
		seat := r.PlayerToEngine[playerID]
		if err := r.Engine.Forfeit(seat); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidAction, err)
		}
		r.SessionVersion++
		p.DisconnectedAt = r.clock.Now()
		p.Status = models.StatusDisconnected
		r.stopRespondTimerLocked()
		if round := r.CurrentRound; round != nil {
			round.Complete = true
			r.cards.settle()
			r.CurrentRound = nil
			if database.DB != nil {
				go database.RecordRound(*round)
			}
		}
		r.logAction(playerID, "leave_room", map[string]interface{}{"forfeit": true})
		r.broadcast(EventParticipantLeft, ParticipantLeftPayload{
			RoomID:        r.ID,
			ParticipantID: playerID,
			Reason:        "forfeit",
		})
		r.endGameLocked(r.EngineToPlayer[engine.Opponent(seat)], playerID, engine.LossReasonName(engine.LossForfeit), nil)

	case models.RoomStatusCompleted:
		p.Status = models.StatusDisconnected
		if p.DisconnectedAt.IsZero() {
			p.DisconnectedAt = r.clock.Now()
		}
		r.logAction(playerID, "leave_room", nil)
		r.broadcast(EventParticipantLeft, ParticipantLeftPayload{
			RoomID:        r.ID,
			ParticipantID: playerID,
			Reason:        "left",
		})
	}
	log.Printf("Room %s: player %s left (status %s).", r.ID, playerID, r.Status)
	return nil
}

// expireRespond is the respond-deadline callback. The epoch guards against
// timers that were replaced or stopped after this fire was scheduled.
func (r *Room) expireRespond(epoch uint64) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if epoch != r.respondEpoch || r.CurrentRound == nil || r.Status != models.RoomStatusActive {
		return
	}
	res, err := r.Engine.ExpireClaim()
	if err != nil {
		log.Printf("Room %s: respond deadline fired but claim could not expire: %v", r.ID, err)
		return
	}
	r.SessionVersion++
	r.respondTimer = nil
	round := r.finishRoundLocked(res)

	r.logAction(uuid.Nil, "respond_timeout", map[string]interface{}{
		"roundId": round.ID.String(),
		"loser":   round.Resolution.LoserID.String(),
	})
	log.Printf("Room %s: round %s expired against %s.", r.ID, round.ID, round.Resolution.LoserID)
	r.concludeRoundLocked(round, res)
}

// finishRoundLocked settles the pending round from an engine resolution
// and hands it to the write-behind store. Assumes lock is held by caller.
func (r *Room) finishRoundLocked(res engine.Resolution) *models.Round {
	round := r.CurrentRound
	r.cards.settle()
	round.Complete = true
	round.PassCount = int(res.PassCount)
	round.Resolution = &models.RoundResolution{
		LoserID:   r.EngineToPlayer[res.Loser],
		WinnerID:  r.EngineToPlayer[res.Winner],
		Actual:    engine.CreatureName(res.Actual),
		Declared:  engine.CreatureName(res.Declared),
		Believed:  res.Believed,
		Truthful:  res.Truthful,
		TimedOut:  res.TimedOut,
		GameEnded: res.GameOver,
	}
	r.CurrentRound = nil
	if database.DB != nil {
		go database.RecordRound(*round)
	}
	return round
}

// concludeRoundLocked emits the outcome of a settled round: either the
// round-completed broadcast or, when the resolution ended the game, the
// game-ended broadcast. Assumes lock is held by caller.
func (r *Room) concludeRoundLocked(round *models.Round, res engine.Resolution) {
	if res.GameOver {
		final := &FinalRoundView{
			RoundID:          round.ID,
			LoserID:          round.Resolution.LoserID,
			ActualCreature:   round.Resolution.Actual,
			DeclaredCreature: round.Resolution.Declared,
			BelievedClaim:    round.Resolution.Believed,
			Truthful:         round.Resolution.Truthful,
			TimedOut:         round.Resolution.TimedOut,
			PassCount:        round.PassCount,
		}
		r.endGameLocked(round.Resolution.WinnerID, round.Resolution.LoserID, engine.LossReasonName(res.Reason), final)
		return
	}
	r.broadcast(EventRoundCompleted, RoundCompletedPayload{
		RoomID:           r.ID,
		RoundID:          round.ID,
		LoserID:          round.Resolution.LoserID,
		WinnerID:         round.Resolution.WinnerID,
		ActualCreature:   round.Resolution.Actual,
		DeclaredCreature: round.Resolution.Declared,
		BelievedClaim:    round.Resolution.Believed,
		Truthful:         round.Resolution.Truthful,
		TimedOut:         round.Resolution.TimedOut,
		PassCount:        round.PassCount,
		LoserPileCount:   int(r.Engine.PenaltyCount(res.Loser, res.Actual)),
		NextClaimantID:   r.EngineToPlayer[r.Engine.NextClaimant],
		SessionVersion:   r.SessionVersion,
	})
}

// endGameLocked transitions the room to completed and announces it. The
// caller has already incremented the session version for the action that
// ended the game. Assumes lock is held by caller.
func (r *Room) endGameLocked(winnerID, loserID uuid.UUID, reason string, finalRound *FinalRoundView) {
	r.Status = models.RoomStatusCompleted
	r.stopRespondTimerLocked()

	if database.DB != nil {
		go database.UpdateRoomStatus(r.ID, models.RoomStatusCompleted)
		go database.StoreGameResult(context.Background(), r.ID, winnerID, loserID, reason, int(r.Engine.RoundsPlayed))
	}
	r.logAction(uuid.Nil, "game_end", map[string]interface{}{
		"winner": winnerID.String(),
		"loser":  loserID.String(),
		"reason": reason,
	})
	r.broadcast(EventGameEnded, GameEndedPayload{
		RoomID:         r.ID,
		WinnerID:       winnerID,
		Losers:         []uuid.UUID{loserID},
		Reason:         reason,
		RoundsPlayed:   int(r.Engine.RoundsPlayed),
		FinalRound:     finalRound,
		SessionVersion: r.SessionVersion,
		Timestamp:      r.clock.Now(),
	})
	log.Printf("Room %s: game over, %s wins (%s).", r.ID, winnerID, reason)
}

// scheduleRespondTimerLocked arms a fresh respond deadline for the pending
// round, replacing any previous one. Assumes lock is held by caller.
func (r *Room) scheduleRespondTimerLocked() {
	r.stopRespondTimerLocked()
	if r.Config.RespondTimeoutSec <= 0 {
		return
	}
	d := time.Duration(r.Config.RespondTimeoutSec) * time.Second
	r.respondDeadline = r.clock.Now().Add(d)
	r.respondEpoch++
	epoch := r.respondEpoch
	r.respondTimer = r.clock.AfterFunc(d, func() { r.expireRespond(epoch) })
}

// stopRespondTimerLocked disarms the respond deadline. Assumes lock is
// held by caller.
func (r *Room) stopRespondTimerLocked() {
	r.respondEpoch++
	if r.respondTimer != nil {
		r.respondTimer.Stop()
		r.respondTimer = nil
	}
}

// extendRespondDeadlineLocked pushes the live deadline out by grace. The
// deadline extends rather than restarts, so repeated reconnects cannot
// stall the round forever. Assumes lock is held by caller.
func (r *Room) extendRespondDeadlineLocked(grace time.Duration) {
	if r.respondTimer == nil || grace <= 0 {
		return
	}
	r.respondTimer.Stop()
	r.respondDeadline = r.respondDeadline.Add(grace)
	r.respondEpoch++
	epoch := r.respondEpoch
	d := r.respondDeadline.Sub(r.clock.Now())
	if d < 0 {
		d = 0
	}
	r.respondTimer = r.clock.AfterFunc(d, func() { r.expireRespond(epoch) })
	log.Printf("Room %s: respond deadline extended by %s for reconnect.", r.ID, grace)
}

// setStatusLocked updates a participant's connection status, bumps the
// session version, and announces the change. Assumes lock is held by
// caller.
func (r *Room) setStatusLocked(p *models.Participant, status models.ConnectionStatus) {
	p.Status = status
	if status == models.StatusConnected {
		p.DisconnectedAt = time.Time{}
	}
	r.SessionVersion++
	r.broadcast(EventParticipantStatus, ParticipantStatusPayload{
		RoomID:           r.ID,
		ParticipantID:    p.PlayerID,
		ConnectionStatus: string(status),
	})
}

// participantLocked finds a participant by player ID. Assumes lock is held
// by caller.
func (r *Room) participantLocked(playerID uuid.UUID) *models.Participant {
	for _, p := range r.Participants {
		if p.PlayerID == playerID {
			return p
		}
	}
	return nil
}

// StatusNow returns the room's lifecycle status.
func (r *Room) StatusNow() models.RoomStatus {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	return r.Status
}

// ParticipantCount returns the number of seated players.
func (r *Room) ParticipantCount() int {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	return len(r.Participants)
}

// AllDeparted reports whether every participant has disconnected or left,
// used to decide when a completed room can be torn down.
func (r *Room) AllDeparted() bool {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	for _, p := range r.Participants {
		if p.Status != models.StatusDisconnected {
			return false
		}
	}
	return true
}

// broadcast records the event type in the recovery ring and fans it out to
// the room. Assumes lock is held by caller.
func (r *Room) broadcast(eventType string, payload interface{}) {
	r.recentEvents = append(r.recentEvents, eventLogEntry{Version: r.SessionVersion, Type: eventType})
	if len(r.recentEvents) > eventLogCap {
		r.recentEvents = r.recentEvents[len(r.recentEvents)-eventLogCap:]
	}
	if r.BroadcastFn != nil {
		r.BroadcastFn(eventType, payload)
	} else {
		log.Printf("Warning: Room %s: BroadcastFn is nil, cannot broadcast event type %s.", r.ID, eventType)
	}
}

// toPlayer sends a private event to one participant's connection. Assumes
// lock is held by caller.
func (r *Room) toPlayer(playerID uuid.UUID, eventType string, payload interface{}) {
	if r.BroadcastToPlayerFn != nil {
		r.BroadcastToPlayerFn(playerID, eventType, payload)
	} else {
		log.Printf("Warning: Room %s: BroadcastToPlayerFn is nil, cannot send %s to %s.", r.ID, eventType, playerID)
	}
}

// logAction publishes an action record to the room action log. Fire and
// forget; the log is diagnostics, never a source of truth.
func (r *Room) logAction(actorID uuid.UUID, actionType string, payload map[string]interface{}) {
	r.actionIndex++
	if payload == nil {
		payload = make(map[string]interface{})
	}
	record := cache.RoomActionRecord{
		RoomID:        r.ID,
		ActionIndex:   r.actionIndex,
		ActorPlayerID: actorID, // Nil for room-level events.
		ActionType:    actionType,
		ActionPayload: payload,
		Timestamp:     r.clock.Now().UnixMilli(),
	}
	go func(rec cache.RoomActionRecord) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if cache.Rdb == nil {
			return
		}
		if err := cache.PublishRoomAction(ctx, rec); err != nil {
			log.Printf("Error: Room %s: failed publishing action %d (%s) to Redis: %v", r.ID, rec.ActionIndex, rec.ActionType, err)
		}
	}(record)
}

// engineRules maps the room config onto engine rules. Assumes lock is held
// by caller.
func (r *Room) engineRules() engine.Rules {
	rules := engine.DefaultRules()
	if mode, ok := engine.LossModeFromName(r.Config.LossMode); ok {
		rules.Mode = mode
	}
	if r.Config.SameCreatureThreshold > 0 {
		rules.SameCreatureThreshold = uint8(r.Config.SameCreatureThreshold)
	}
	if r.Config.TotalCountThreshold > 0 {
		rules.TotalCountThreshold = uint8(r.Config.TotalCountThreshold)
	}
	if r.Config.CardsPerPlayer > 0 {
		rules.CardsPerPlayer = uint8(r.Config.CardsPerPlayer)
	}
	return rules
}
