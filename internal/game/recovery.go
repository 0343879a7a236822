// internal/game/recovery.go
package game

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/blattodea-games/roachpoker/internal/models"
)

// RecoveryData is the coordinator's answer to a recovery request. When
// UpToDate is set the client's version matched and View stays nil.
type RecoveryData struct {
	UpToDate         bool
	SessionVersion   uint64
	View             *RoomView
	MissedEventTypes []string
	DisconnectedFor  time.Duration
}

// RequestRecovery reconciles a reconnecting client's last known session
// version against the room. A matching version gets a lightweight ack; a
// stale one gets a full snapshot plus the broadcast types it missed and
// how long it was gone. Game state is never touched, so repeating the
// request with the same version yields an identical snapshot.
func (r *Room) RequestRecovery(playerID uuid.UUID, lastKnownVersion uint64, connectionLostAt time.Time) (*RecoveryData, error) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	p := r.participantLocked(playerID)
	if p == nil {
		// Same failure as an unknown room: the caller learns nothing about
		// who plays here.
		return nil, ErrRecoveryFailed
	}

	// A request from a dropped player flips them to reconnecting before
	// the snapshot is built, so the snapshot already reflects it and a
	// repeat request sees no further change.
	if p.Status == models.StatusDisconnected {
		r.setStatusLocked(p, models.StatusReconnecting)
	}

	if lastKnownVersion == r.SessionVersion {
		return &RecoveryData{UpToDate: true, SessionVersion: r.SessionVersion}, nil
	}
	if lastKnownVersion > r.SessionVersion {
		return nil, fmt.Errorf("%w: version %d is ahead of this room", ErrRecoveryFailed, lastKnownVersion)
	}

	view := r.viewForLocked(playerID)
	return &RecoveryData{
		SessionVersion:   r.SessionVersion,
		View:             &view,
		MissedEventTypes: r.eventTypesSinceLocked(lastKnownVersion),
		DisconnectedFor:  r.disconnectedForLocked(p, connectionLostAt),
	}, nil
}

// ConfirmSync completes the recovery handshake: the participant is marked
// connected, and if the pending round was waiting on them, its deadline is
// extended by the configured grace rather than restarted.
func (r *Room) ConfirmSync(playerID uuid.UUID, version uint64) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	p := r.participantLocked(playerID)
	if p == nil {
		return ErrAccessDenied
	}
	if version != r.SessionVersion {
		log.Printf("Room %s: player %s confirmed sync at version %d, room is at %d.", r.ID, playerID, version, r.SessionVersion)
	}
	if p.Status == models.StatusConnected {
		return nil
	}
	r.setStatusLocked(p, models.StatusConnected)
	if r.CurrentRound != nil && r.CurrentRound.TargetID == playerID {
		r.extendRespondDeadlineLocked(time.Duration(r.Config.ReconnectGraceSec) * time.Second)
	}
	r.logAction(playerID, "confirm_sync", map[string]interface{}{"version": version})
	return nil
}

// eventTypesSinceLocked returns the broadcast types emitted after the
// given version, oldest first. The ring is bounded, so a very stale client
// gets only the most recent window — the snapshot is the real recovery.
// Assumes lock is held by caller.
func (r *Room) eventTypesSinceLocked(since uint64) []string {
	var out []string
	for _, e := range r.recentEvents {
		if e.Version > since {
			out = append(out, e.Type)
		}
	}
	return out
}

// disconnectedForLocked measures how long the participant was gone,
// preferring the server-observed drop time over the client's own claim.
// Assumes lock is held by caller.
func (r *Room) disconnectedForLocked(p *models.Participant, connectionLostAt time.Time) time.Duration {
	since := p.DisconnectedAt
	if since.IsZero() {
		since = connectionLostAt
	}
	if since.IsZero() {
		return 0
	}
	d := r.clock.Now().Sub(since)
	if d < 0 {
		return 0
	}
	return d
}
