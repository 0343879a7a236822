// internal/game/tracker.go
package game

import (
	"github.com/google/uuid"

	"github.com/blattodea-games/roachpoker/engine"
)

// cardTracker mirrors the engine's hand slots with stable wire identities.
// The engine packs cards into uint8s and shifts hands left on removal; the
// tracker applies the same shifts to parallel UUID slices so slot i of a
// hand always names the same physical card as the engine's slot i. Clients
// only ever see the UUIDs; the packed card values never leave the server
// except through a resolution reveal.
type cardTracker struct {
	hands    [engine.MaxPlayers][]uuid.UUID
	inFlight uuid.UUID // card of the pending round, uuid.Nil when none
}

// deal assigns a fresh identity to every dealt card. Assumes the engine
// has already dealt.
func (t *cardTracker) deal(g *engine.GameState) {
	for p := 0; p < engine.MaxPlayers; p++ {
		n := int(g.Players[p].HandLen)
		t.hands[p] = make([]uuid.UUID, n)
		for i := 0; i < n; i++ {
			t.hands[p][i] = uuid.New()
		}
	}
	t.inFlight = uuid.Nil
}

// handSlot finds the hand index of cardID in seat's hand.
func (t *cardTracker) handSlot(seat uint8, cardID uuid.UUID) (uint8, bool) {
	for i, id := range t.hands[seat] {
		if id == cardID {
			return uint8(i), true
		}
	}
	return 0, false
}

// takeHandCard removes slot idx from seat's hand and marks it in flight,
// mirroring engine.removeHandCard's left shift.
func (t *cardTracker) takeHandCard(seat, idx uint8) uuid.UUID {
	id := t.hands[seat][idx]
	t.hands[seat] = append(t.hands[seat][:idx], t.hands[seat][idx+1:]...)
	t.inFlight = id
	return id
}

// settle clears the in-flight card and returns its identity. The card
// lives on only in the round record; penalty piles are tracked by count.
func (t *cardTracker) settle() uuid.UUID {
	id := t.inFlight
	t.inFlight = uuid.Nil
	return id
}

// handIDs returns seat's card identities in slot order.
func (t *cardTracker) handIDs(seat uint8) []uuid.UUID {
	out := make([]uuid.UUID, len(t.hands[seat]))
	copy(out, t.hands[seat])
	return out
}
