// internal/game/manager.go
package game

import (
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/blattodea-games/roachpoker/engine"
	"github.com/blattodea-games/roachpoker/internal/auth"
	"github.com/blattodea-games/roachpoker/internal/database"
	"github.com/blattodea-games/roachpoker/internal/models"
	"github.com/blattodea-games/roachpoker/internal/realtime"
)

// RoomManager owns the live room set. It wires each room's broadcast
// callbacks to the realtime fan-out and keeps the membership registry's
// grant set in step with room participation.
type RoomManager struct {
	mu    sync.RWMutex
	rooms map[uuid.UUID]*Room

	registry   *realtime.Registry
	dispatcher *realtime.Dispatcher
	clock      clockwork.Clock
	defaults   models.RoomConfig
}

// NewRoomManager builds a manager around the shared registry and
// dispatcher. defaults fills in unset fields of per-room configs.
func NewRoomManager(reg *realtime.Registry, disp *realtime.Dispatcher, clock clockwork.Clock, defaults models.RoomConfig) *RoomManager {
	return &RoomManager{
		rooms:      make(map[uuid.UUID]*Room),
		registry:   reg,
		dispatcher: disp,
		clock:      clock,
		defaults:   defaults,
	}
}

// CreateRoom opens a waiting room with the host seated. For private rooms
// the generated join code is returned exactly once; only its hash is kept.
func (m *RoomManager) CreateRoom(hostID uuid.UUID, hostName string, cfg models.RoomConfig) (*Room, string, error) {
	cfg = m.normalizeConfig(cfg)
	room := NewRoom(hostID, hostName, cfg, m.clock)

	joinCode := ""
	if cfg.Private {
		joinCode = auth.GenerateJoinCode()
		hash, err := auth.HashJoinCode(joinCode)
		if err != nil {
			return nil, "", fmt.Errorf("hash join code: %w", err)
		}
		room.JoinCodeHash = hash
	}
	m.wireRoom(room)
	m.registry.Grant(room.ID, hostID)

	m.mu.Lock()
	m.rooms[room.ID] = room
	m.mu.Unlock()

	if database.DB != nil {
		go database.UpsertRoom(models.Room{
			ID:           room.ID,
			HostPlayerID: hostID,
			Status:       models.RoomStatusWaiting,
			Config:       cfg,
			CreatedAt:    room.CreatedAt,
		})
		go database.RecordParticipant(room.ID, *room.Participants[0])
	}
	log.Printf("Room %s: created by %s (%s), private=%v.", room.ID, hostID, hostName, cfg.Private)
	return room, joinCode, nil
}

// GetRoom looks up a live room.
func (m *RoomManager) GetRoom(roomID uuid.UUID) (*Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	room, ok := m.rooms[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return room, nil
}

// Rooms returns a snapshot of the live room set.
func (m *RoomManager) Rooms() []*Room {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Room, 0, len(m.rooms))
	for _, room := range m.rooms {
		out = append(out, room)
	}
	return out
}

// JoinRoom seats a player and grants their future connections access to
// the room. Rejoining is idempotent.
func (m *RoomManager) JoinRoom(roomID, playerID uuid.UUID, username, joinCode string) (*Room, *models.Participant, error) {
	room, err := m.GetRoom(roomID)
	if err != nil {
		return nil, nil, err
	}
	p, err := room.AddParticipant(playerID, username, joinCode)
	if err != nil {
		return nil, nil, err
	}
	m.registry.Grant(roomID, playerID)
	return room, p, nil
}

// StartGame deals the room's game on behalf of the host.
func (m *RoomManager) StartGame(roomID, playerID uuid.UUID) error {
	room, err := m.GetRoom(roomID)
	if err != nil {
		return err
	}
	return room.Start(playerID)
}

// LeaveRoom processes a voluntary departure, revokes the player's grant,
// and tears the room down once nothing is left to coordinate: a waiting
// room whose host walked away, or a completed room everyone has left.
func (m *RoomManager) LeaveRoom(roomID, playerID uuid.UUID) error {
	room, err := m.GetRoom(roomID)
	if err != nil {
		return err
	}
	hostLeft := playerID == room.HostPlayerID
	if err := room.HandleLeave(playerID); err != nil {
		return err
	}
	m.registry.Revoke(roomID, playerID)

	switch {
	case room.StatusNow() == models.RoomStatusWaiting && (hostLeft || room.ParticipantCount() == 0):
		m.teardown(room)
	case room.StatusNow() == models.RoomStatusCompleted && room.AllDeparted():
		m.teardown(room)
	}
	return nil
}

// wireRoom points the room's callbacks at the shared dispatcher. Private
// sends resolve the player's live connection through the registry.
func (m *RoomManager) wireRoom(room *Room) {
	roomID := room.ID
	room.BroadcastFn = func(eventType string, payload interface{}) {
		m.dispatcher.ToRoom(roomID, eventType, payload)
	}
	room.BroadcastToPlayerFn = func(playerID uuid.UUID, eventType string, payload interface{}) {
		if connID, ok := m.registry.ConnForPlayer(roomID, playerID); ok {
			m.dispatcher.ToConnection(connID, eventType, payload)
		}
	}
}

// teardown drops a room from the live set and clears its registry state.
func (m *RoomManager) teardown(room *Room) {
	m.mu.Lock()
	delete(m.rooms, room.ID)
	m.mu.Unlock()
	m.registry.DropRoom(room.ID)
	log.Printf("Room %s: torn down.", room.ID)
}

// normalizeConfig fills unset or out-of-range config fields from the
// manager defaults.
func (m *RoomManager) normalizeConfig(cfg models.RoomConfig) models.RoomConfig {
	def := m.defaults
	if _, ok := engine.LossModeFromName(cfg.LossMode); !ok || cfg.LossMode == "" {
		cfg.LossMode = def.LossMode
	}
	if cfg.SameCreatureThreshold <= 0 {
		cfg.SameCreatureThreshold = def.SameCreatureThreshold
	}
	if cfg.TotalCountThreshold <= 0 {
		cfg.TotalCountThreshold = def.TotalCountThreshold
	}
	if cfg.CardsPerPlayer <= 0 || cfg.CardsPerPlayer > engine.MaxHandSize {
		cfg.CardsPerPlayer = def.CardsPerPlayer
	}
	if cfg.RespondTimeoutSec <= 0 {
		cfg.RespondTimeoutSec = def.RespondTimeoutSec
	}
	if cfg.ReconnectGraceSec <= 0 {
		cfg.ReconnectGraceSec = def.ReconnectGraceSec
	}
	return cfg
}
