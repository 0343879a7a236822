package engine

import "testing"

// TestCardCreatureCopy verifies Creature/Copy roundtrip for all 64 cards.
func TestCardCreatureCopy(t *testing.T) {
	for creature := uint8(0); creature < NumCreatures; creature++ {
		for dup := uint8(0); dup < CopiesPerCreature; dup++ {
			c := NewCard(creature, dup)
			if c.Creature() != creature {
				t.Errorf("NewCard(%d,%d).Creature() = %d, want %d", creature, dup, c.Creature(), creature)
			}
			if c.Copy() != dup {
				t.Errorf("NewCard(%d,%d).Copy() = %d, want %d", creature, dup, c.Copy(), dup)
			}
		}
	}
}

// TestCardValuesDistinct verifies all 64 packed values are distinct and fit in 6 bits.
func TestCardValuesDistinct(t *testing.T) {
	seen := make(map[Card]bool)
	for creature := uint8(0); creature < NumCreatures; creature++ {
		for dup := uint8(0); dup < CopiesPerCreature; dup++ {
			c := NewCard(creature, dup)
			if uint8(c) >= DeckSize {
				t.Errorf("NewCard(%d,%d) = %d, exceeds deck range", creature, dup, c)
			}
			if seen[c] {
				t.Errorf("duplicate packed value for creature=%d copy=%d", creature, dup)
			}
			seen[c] = true
		}
	}
	if len(seen) != DeckSize {
		t.Errorf("got %d distinct cards, want %d", len(seen), DeckSize)
	}
}

// TestCreatureNames verifies the name table roundtrips and rejects unknowns.
func TestCreatureNames(t *testing.T) {
	want := []string{"cockroach", "mouse", "frog", "bat", "fly", "scorpion", "spider", "stinkbug"}
	for i, name := range want {
		if got := CreatureName(uint8(i)); got != name {
			t.Errorf("CreatureName(%d) = %q, want %q", i, got, name)
		}
		creature, ok := CreatureFromName(name)
		if !ok || creature != uint8(i) {
			t.Errorf("CreatureFromName(%q) = (%d, %v), want (%d, true)", name, creature, ok, i)
		}
	}
	if got := CreatureName(NumCreatures); got != "" {
		t.Errorf("CreatureName(out of range) = %q, want empty", got)
	}
	if _, ok := CreatureFromName("dragon"); ok {
		t.Error("CreatureFromName accepted an unknown creature")
	}
}

// TestCardString verifies the debug rendering.
func TestCardString(t *testing.T) {
	c := NewCard(CreatureFrog, 3)
	if got := c.String(); got != "frog-3" {
		t.Errorf("String() = %q, want %q", got, "frog-3")
	}
	if got := EmptyCard.String(); got != "empty" {
		t.Errorf("EmptyCard.String() = %q, want %q", got, "empty")
	}
}

// TestLossReasonNames verifies wire names for every loss reason.
func TestLossReasonNames(t *testing.T) {
	tests := []struct {
		reason uint8
		want   string
	}{
		{LossNone, ""},
		{LossPenaltyPile, "penalty_threshold"},
		{LossOutOfCards, "out_of_cards"},
		{LossForfeit, "forfeit"},
	}
	for _, tt := range tests {
		if got := LossReasonName(tt.reason); got != tt.want {
			t.Errorf("LossReasonName(%d) = %q, want %q", tt.reason, got, tt.want)
		}
	}
}

// TestLossModeNames verifies the mode names roundtrip and unknowns are
// rejected without defaulting silently.
func TestLossModeNames(t *testing.T) {
	for _, mode := range []LossMode{LossSameCreature, LossTotalCount} {
		name := LossModeName(mode)
		if name == "" {
			t.Fatalf("LossModeName(%d) is empty", mode)
		}
		got, ok := LossModeFromName(name)
		if !ok || got != mode {
			t.Errorf("LossModeFromName(%q) = (%d, %v), want (%d, true)", name, got, ok, mode)
		}
	}
	if _, ok := LossModeFromName("sudden_death"); ok {
		t.Error("LossModeFromName accepted an unknown mode")
	}
}
