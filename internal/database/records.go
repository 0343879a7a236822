package database

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/blattodea-games/roachpoker/internal/models"
)

// recordTimeout bounds each write-behind statement. Recorders are
// invoked via `go` from the room state machine and must not block it.
const recordTimeout = 5 * time.Second

// UpsertRoom writes a room row, refreshing status and config on conflict.
func UpsertRoom(room models.Room) {
	if DB == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	cfg, err := json.Marshal(room.Config)
	if err != nil {
		logrus.Errorf("marshal room config for %s: %v", room.ID, err)
		return
	}
	_, err = DB.Exec(ctx, `
		INSERT INTO rooms (id, host_player_id, status, config, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET status = EXCLUDED.status, config = EXCLUDED.config, updated_at = now()
	`, room.ID, room.HostPlayerID, string(room.Status), cfg, room.CreatedAt)
	if err != nil {
		logrus.Errorf("upsert room %s: %v", room.ID, err)
	}
}

// UpdateRoomStatus records a room lifecycle transition.
func UpdateRoomStatus(roomID uuid.UUID, status models.RoomStatus) {
	if DB == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	_, err := DB.Exec(ctx, `
		UPDATE rooms SET status = $2, updated_at = now() WHERE id = $1
	`, roomID, string(status))
	if err != nil {
		logrus.Errorf("update room %s status: %v", roomID, err)
	}
}

// RecordParticipant writes a participant row for a room.
func RecordParticipant(roomID uuid.UUID, p models.Participant) {
	if DB == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	_, err := DB.Exec(ctx, `
		INSERT INTO room_players (room_id, player_id, username, seat, joined_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (room_id, player_id) DO NOTHING
	`, roomID, p.PlayerID, p.Username, p.Seat, p.JoinedAt)
	if err != nil {
		logrus.Errorf("record participant %s in room %s: %v", p.PlayerID, roomID, err)
	}
}

// RecordRound writes a completed round with its resolution.
func RecordRound(round models.Round) {
	if DB == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	var resolution []byte
	if round.Resolution != nil {
		var err error
		resolution, err = json.Marshal(round.Resolution)
		if err != nil {
			logrus.Errorf("marshal resolution for round %s: %v", round.ID, err)
			return
		}
	}
	_, err := DB.Exec(ctx, `
		INSERT INTO rounds (id, room_id, card_id, claimer_id, target_id, declared, pass_count, resolution, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE
		SET declared = EXCLUDED.declared, pass_count = EXCLUDED.pass_count, resolution = EXCLUDED.resolution
	`, round.ID, round.RoomID, round.CardID, round.ClaimerID, round.TargetID, round.Declared, round.PassCount, resolution, round.CreatedAt)
	if err != nil {
		logrus.Errorf("record round %s: %v", round.ID, err)
	}
}

// StoreGameResult writes the final outcome of a finished game.
func StoreGameResult(ctx context.Context, roomID, winnerID, loserID uuid.UUID, lossReason string, roundsPlayed int) {
	if DB == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, recordTimeout)
	defer cancel()

	_, err := DB.Exec(ctx, `
		INSERT INTO game_results (room_id, winner_id, loser_id, loss_reason, rounds_played)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (room_id) DO NOTHING
	`, roomID, winnerID, loserID, lossReason, roundsPlayed)
	if err != nil {
		logrus.Errorf("store game result for room %s: %v", roomID, err)
	}
}
