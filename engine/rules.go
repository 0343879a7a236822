package engine

// LossMode selects which penalty-pile condition ends the game. The source
// game circulates in two variants and they are NOT reconciled here: a table
// picks exactly one mode per game.
type LossMode uint8

const (
	// LossSameCreature ends the game when one player's pile holds
	// SameCreatureThreshold cards of a single creature.
	LossSameCreature LossMode = 0
	// LossTotalCount ends the game when one player's pile holds
	// TotalCountThreshold cards of any mix of creatures.
	LossTotalCount LossMode = 1
)

// LossModeName returns the wire name for a loss mode.
func LossModeName(m LossMode) string {
	if m == LossTotalCount {
		return "total_count"
	}
	return "same_creature"
}

// LossModeFromName resolves a wire name to its LossMode.
func LossModeFromName(name string) (LossMode, bool) {
	switch name {
	case "same_creature":
		return LossSameCreature, true
	case "total_count":
		return LossTotalCount, true
	}
	return LossSameCreature, false
}

// Rules holds configurable game rule settings.
type Rules struct {
	Mode                  LossMode // which loss condition applies
	SameCreatureThreshold uint8    // pile size of one creature that loses (LossSameCreature)
	TotalCountThreshold   uint8    // total pile size that loses (LossTotalCount)
	CardsPerPlayer        uint8    // cards dealt to each player; remainder set aside
}

// DefaultRules returns the standard two-player rules.
func DefaultRules() Rules {
	return Rules{
		Mode:                  LossSameCreature,
		SameCreatureThreshold: 3,
		TotalCountThreshold:   4,
		CardsPerPlayer:        16,
	}
}

// cardsPerPlayer returns the effective deal size, clamped so two hands never
// exceed the deck.
func (r *Rules) cardsPerPlayer() uint8 {
	n := r.CardsPerPlayer
	if n == 0 {
		n = 16
	}
	if n > MaxHandSize {
		n = MaxHandSize
	}
	return n
}
