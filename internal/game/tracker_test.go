// internal/game/tracker_test.go
package game

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blattodea-games/roachpoker/engine"
)

func TestTrackerMirrorsEngineSlots(t *testing.T) {
	g := engine.NewGame(7, engine.DefaultRules())
	g.Deal()

	var tr cardTracker
	tr.deal(&g)

	before := tr.handIDs(0)
	require.Len(t, before, 16)
	seen := make(map[uuid.UUID]bool)
	for _, id := range before {
		assert.False(t, seen[id], "card identities must be unique")
		seen[id] = true
	}

	// Removing slot 5 shifts the tail left, exactly like the engine does.
	idx, ok := tr.handSlot(0, before[5])
	require.True(t, ok)
	require.Equal(t, uint8(5), idx)

	taken := tr.takeHandCard(0, 5)
	assert.Equal(t, before[5], taken)
	assert.Equal(t, taken, tr.inFlight)

	after := tr.handIDs(0)
	require.Len(t, after, 15)
	assert.Equal(t, before[:5], after[:5])
	assert.Equal(t, before[6:], after[5:])

	_, ok = tr.handSlot(0, taken)
	assert.False(t, ok, "an in-flight card is in nobody's hand")

	assert.Equal(t, taken, tr.settle())
	assert.Equal(t, uuid.Nil, tr.inFlight)

	_, ok = tr.handSlot(0, uuid.New())
	assert.False(t, ok)
}
