// Package realtime provides the connection-facing plumbing shared by
// all rooms: membership bookkeeping, liveness tracking, and event
// fan-out. Nothing in this package understands game rules; it moves
// identifiers and bytes. State is partitioned by room and connection
// key so traffic in one room never contends with another.
package realtime

import (
	"errors"
	"hash/fnv"
	"sync"

	"github.com/google/uuid"
)

// ErrAccessDenied is returned when a connection tries to join a room
// whose participant set does not include its player.
var ErrAccessDenied = errors.New("player is not a participant of this room")

const numShards = 16

func shardIdx(id uuid.UUID) int {
	h := fnv.New32a()
	h.Write(id[:])
	return int(h.Sum32() % numShards)
}

// Registry tracks which connections belong to which rooms, in both
// directions. Membership is permitted only for players the room has
// granted; the grant set is maintained by the room lifecycle, not here.
type Registry struct {
	roomShards [numShards]roomShard
	connShards [numShards]connShard
}

type roomShard struct {
	mu         sync.RWMutex
	allowed    map[uuid.UUID]map[uuid.UUID]bool      // roomID -> player set
	members    map[uuid.UUID]map[uuid.UUID]uuid.UUID // roomID -> connID -> playerID
	playerConn map[uuid.UUID]map[uuid.UUID]uuid.UUID // roomID -> playerID -> latest connID
}

type connShard struct {
	mu    sync.RWMutex
	rooms map[uuid.UUID]map[uuid.UUID]bool // connID -> room set
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	r := &Registry{}
	for i := range r.roomShards {
		r.roomShards[i].allowed = make(map[uuid.UUID]map[uuid.UUID]bool)
		r.roomShards[i].members = make(map[uuid.UUID]map[uuid.UUID]uuid.UUID)
		r.roomShards[i].playerConn = make(map[uuid.UUID]map[uuid.UUID]uuid.UUID)
	}
	for i := range r.connShards {
		r.connShards[i].rooms = make(map[uuid.UUID]map[uuid.UUID]bool)
	}
	return r
}

// Grant allows playerID to join roomID. Called when a participant is
// added to a room.
func (r *Registry) Grant(roomID, playerID uuid.UUID) {
	rs := &r.roomShards[shardIdx(roomID)]
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if rs.allowed[roomID] == nil {
		rs.allowed[roomID] = make(map[uuid.UUID]bool)
	}
	rs.allowed[roomID][playerID] = true
}

// Revoke removes playerID from roomID's grant set.
func (r *Registry) Revoke(roomID, playerID uuid.UUID) {
	rs := &r.roomShards[shardIdx(roomID)]
	rs.mu.Lock()
	defer rs.mu.Unlock()
	delete(rs.allowed[roomID], playerID)
	if len(rs.allowed[roomID]) == 0 {
		delete(rs.allowed, roomID)
	}
}

// Join binds a connection to a room. Fails with ErrAccessDenied when
// the player has not been granted membership.
//
// Lock order is always room shard then connection shard, so Join and
// Leave cannot deadlock against each other.
func (r *Registry) Join(roomID, connID, playerID uuid.UUID) error {
	rs := &r.roomShards[shardIdx(roomID)]
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if !rs.allowed[roomID][playerID] {
		return ErrAccessDenied
	}
	if rs.members[roomID] == nil {
		rs.members[roomID] = make(map[uuid.UUID]uuid.UUID)
	}
	rs.members[roomID][connID] = playerID
	if rs.playerConn[roomID] == nil {
		rs.playerConn[roomID] = make(map[uuid.UUID]uuid.UUID)
	}
	rs.playerConn[roomID][playerID] = connID

	cs := &r.connShards[shardIdx(connID)]
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if cs.rooms[connID] == nil {
		cs.rooms[connID] = make(map[uuid.UUID]bool)
	}
	cs.rooms[connID][roomID] = true
	return nil
}

// Leave removes a connection from a room. Idempotent: leaving a room
// the connection is not in is a no-op.
func (r *Registry) Leave(roomID, connID uuid.UUID) {
	rs := &r.roomShards[shardIdx(roomID)]
	rs.mu.Lock()
	defer rs.mu.Unlock()

	playerID, wasMember := rs.members[roomID][connID]
	delete(rs.members[roomID], connID)
	if len(rs.members[roomID]) == 0 {
		delete(rs.members, roomID)
	}
	// A reconnect replaces the player's conn before the old one leaves;
	// only clear the mapping if it still points at this connection.
	if wasMember && rs.playerConn[roomID][playerID] == connID {
		delete(rs.playerConn[roomID], playerID)
		if len(rs.playerConn[roomID]) == 0 {
			delete(rs.playerConn, roomID)
		}
	}

	cs := &r.connShards[shardIdx(connID)]
	cs.mu.Lock()
	defer cs.mu.Unlock()
	delete(cs.rooms[connID], roomID)
	if len(cs.rooms[connID]) == 0 {
		delete(cs.rooms, connID)
	}
}

// LeaveAll removes the connection from every room it is bound to and
// returns the affected room IDs, used for disconnect cleanup.
func (r *Registry) LeaveAll(connID uuid.UUID) []uuid.UUID {
	rooms := r.RoomsOf(connID)
	for _, roomID := range rooms {
		r.Leave(roomID, connID)
	}
	return rooms
}

// DropRoom removes a room's members and grants entirely. Called when
// the room is torn down.
func (r *Registry) DropRoom(roomID uuid.UUID) {
	rs := &r.roomShards[shardIdx(roomID)]
	rs.mu.Lock()
	conns := make([]uuid.UUID, 0, len(rs.members[roomID]))
	for connID := range rs.members[roomID] {
		conns = append(conns, connID)
	}
	delete(rs.members, roomID)
	delete(rs.allowed, roomID)
	delete(rs.playerConn, roomID)
	rs.mu.Unlock()

	for _, connID := range conns {
		cs := &r.connShards[shardIdx(connID)]
		cs.mu.Lock()
		delete(cs.rooms[connID], roomID)
		if len(cs.rooms[connID]) == 0 {
			delete(cs.rooms, connID)
		}
		cs.mu.Unlock()
	}
}

// MembersOf returns the connections currently bound to a room.
func (r *Registry) MembersOf(roomID uuid.UUID) []uuid.UUID {
	rs := &r.roomShards[shardIdx(roomID)]
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	out := make([]uuid.UUID, 0, len(rs.members[roomID]))
	for connID := range rs.members[roomID] {
		out = append(out, connID)
	}
	return out
}

// ConnForPlayer returns the connection a player is currently bound to a
// room with. When the player has joined on more than one connection the
// most recent one wins; that is the one a private frame should go to.
func (r *Registry) ConnForPlayer(roomID, playerID uuid.UUID) (uuid.UUID, bool) {
	rs := &r.roomShards[shardIdx(roomID)]
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	connID, ok := rs.playerConn[roomID][playerID]
	return connID, ok
}

// RoomsOf returns every room a connection is currently bound to.
func (r *Registry) RoomsOf(connID uuid.UUID) []uuid.UUID {
	cs := &r.connShards[shardIdx(connID)]
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	out := make([]uuid.UUID, 0, len(cs.rooms[connID]))
	for roomID := range cs.rooms[connID] {
		out = append(out, roomID)
	}
	return out
}
