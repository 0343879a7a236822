package realtime

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// checkBidirectional asserts conn ∈ MembersOf(room) ⇔ room ∈ RoomsOf(conn)
// for every given room and connection.
func checkBidirectional(t *testing.T, r *Registry, rooms, conns []uuid.UUID) {
	t.Helper()
	membership := make(map[uuid.UUID]map[uuid.UUID]bool)
	for _, roomID := range rooms {
		membership[roomID] = make(map[uuid.UUID]bool)
		for _, connID := range r.MembersOf(roomID) {
			membership[roomID][connID] = true
		}
	}
	for _, connID := range conns {
		for _, roomID := range r.RoomsOf(connID) {
			assert.True(t, membership[roomID][connID],
				"conn %s lists room %s but room does not list conn", connID, roomID)
			delete(membership[roomID], connID)
		}
	}
	for roomID, leftover := range membership {
		assert.Empty(t, leftover, "room %s lists conns that do not list it back", roomID)
	}
}

func TestJoinRequiresGrant(t *testing.T) {
	r := NewRegistry()
	roomID, connID, playerID := uuid.New(), uuid.New(), uuid.New()

	err := r.Join(roomID, connID, playerID)
	require.ErrorIs(t, err, ErrAccessDenied)
	assert.Empty(t, r.MembersOf(roomID))

	r.Grant(roomID, playerID)
	require.NoError(t, r.Join(roomID, connID, playerID))
	assert.Equal(t, []uuid.UUID{connID}, r.MembersOf(roomID))
	assert.Equal(t, []uuid.UUID{roomID}, r.RoomsOf(connID))
}

func TestRevokeBlocksFutureJoins(t *testing.T) {
	r := NewRegistry()
	roomID, playerID := uuid.New(), uuid.New()

	r.Grant(roomID, playerID)
	r.Revoke(roomID, playerID)

	err := r.Join(roomID, uuid.New(), playerID)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestLeaveIdempotent(t *testing.T) {
	r := NewRegistry()
	roomID, connID, playerID := uuid.New(), uuid.New(), uuid.New()

	r.Grant(roomID, playerID)
	require.NoError(t, r.Join(roomID, connID, playerID))

	r.Leave(roomID, connID)
	r.Leave(roomID, connID) // second leave is a no-op
	assert.Empty(t, r.MembersOf(roomID))
	assert.Empty(t, r.RoomsOf(connID))
}

func TestBidirectionalConsistency(t *testing.T) {
	r := NewRegistry()
	rooms := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	conns := []uuid.UUID{uuid.New(), uuid.New(), uuid.New(), uuid.New()}
	players := []uuid.UUID{uuid.New(), uuid.New(), uuid.New(), uuid.New()}

	for _, roomID := range rooms {
		for _, playerID := range players {
			r.Grant(roomID, playerID)
		}
	}
	// Each conn joins a different subset of rooms.
	for i, connID := range conns {
		for j, roomID := range rooms {
			if (i+j)%2 == 0 {
				require.NoError(t, r.Join(roomID, connID, players[i]))
			}
		}
	}
	checkBidirectional(t, r, rooms, conns)

	r.Leave(rooms[0], conns[0])
	r.LeaveAll(conns[2])
	checkBidirectional(t, r, rooms, conns)
}

func TestLeaveAllReturnsAffectedRooms(t *testing.T) {
	r := NewRegistry()
	connID, playerID := uuid.New(), uuid.New()
	roomA, roomB := uuid.New(), uuid.New()

	r.Grant(roomA, playerID)
	r.Grant(roomB, playerID)
	require.NoError(t, r.Join(roomA, connID, playerID))
	require.NoError(t, r.Join(roomB, connID, playerID))

	affected := r.LeaveAll(connID)
	assert.ElementsMatch(t, []uuid.UUID{roomA, roomB}, affected)
	assert.Empty(t, r.MembersOf(roomA))
	assert.Empty(t, r.MembersOf(roomB))
	assert.Empty(t, r.RoomsOf(connID))
}

func TestDropRoomClearsBothSides(t *testing.T) {
	r := NewRegistry()
	roomID, playerID := uuid.New(), uuid.New()
	connA, connB := uuid.New(), uuid.New()

	r.Grant(roomID, playerID)
	require.NoError(t, r.Join(roomID, connA, playerID))
	require.NoError(t, r.Join(roomID, connB, playerID))

	r.DropRoom(roomID)
	assert.Empty(t, r.MembersOf(roomID))
	assert.Empty(t, r.RoomsOf(connA))
	assert.Empty(t, r.RoomsOf(connB))

	// Grants are gone too: rejoining requires a fresh grant.
	err := r.Join(roomID, connA, playerID)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestConcurrentJoinLeave(t *testing.T) {
	r := NewRegistry()
	const workers = 8
	rooms := make([]uuid.UUID, workers)
	conns := make([]uuid.UUID, workers)
	players := make([]uuid.UUID, workers)
	for i := range rooms {
		rooms[i] = uuid.New()
		conns[i] = uuid.New()
		players[i] = uuid.New()
		r.Grant(rooms[i], players[i])
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for n := 0; n < 100; n++ {
				_ = r.Join(rooms[i], conns[i], players[i])
				_ = r.MembersOf(rooms[i])
				r.Leave(rooms[i], conns[i])
			}
		}(i)
	}
	wg.Wait()

	for i := range rooms {
		assert.Empty(t, r.MembersOf(rooms[i]))
		assert.Empty(t, r.RoomsOf(conns[i]))
	}
}

func TestConnForPlayerTracksLatestConnection(t *testing.T) {
	r := NewRegistry()
	roomID := uuid.New()
	playerID := uuid.New()
	oldConn := uuid.New()
	newConn := uuid.New()

	r.Grant(roomID, playerID)

	_, ok := r.ConnForPlayer(roomID, playerID)
	assert.False(t, ok, "player with no connection should not resolve")

	require.NoError(t, r.Join(roomID, oldConn, playerID))
	got, ok := r.ConnForPlayer(roomID, playerID)
	require.True(t, ok)
	assert.Equal(t, oldConn, got)

	// Reconnect on a new connection before the old one is cleaned up.
	require.NoError(t, r.Join(roomID, newConn, playerID))
	got, ok = r.ConnForPlayer(roomID, playerID)
	require.True(t, ok)
	assert.Equal(t, newConn, got, "latest connection should win")

	// The stale connection leaving must not clobber the fresh mapping.
	r.Leave(roomID, oldConn)
	got, ok = r.ConnForPlayer(roomID, playerID)
	require.True(t, ok)
	assert.Equal(t, newConn, got)

	r.Leave(roomID, newConn)
	_, ok = r.ConnForPlayer(roomID, playerID)
	assert.False(t, ok)
}
