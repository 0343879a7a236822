package engine

// Creature constants — packed into bits 3–5 of Card.
const (
	CreatureCockroach uint8 = 0
	CreatureMouse     uint8 = 1
	CreatureFrog      uint8 = 2
	CreatureBat       uint8 = 3
	CreatureFly       uint8 = 4
	CreatureScorpion  uint8 = 5
	CreatureSpider    uint8 = 6
	CreatureStinkbug  uint8 = 7
)

// creatureNames maps creature constants to their wire names.
var creatureNames = [NumCreatures]string{
	"cockroach", "mouse", "frog", "bat", "fly", "scorpion", "spider", "stinkbug",
}

// CreatureName returns the wire name for a creature constant, or "" if out of range.
func CreatureName(creature uint8) string {
	if creature >= NumCreatures {
		return ""
	}
	return creatureNames[creature]
}

// CreatureFromName resolves a wire name to its creature constant.
func CreatureFromName(name string) (uint8, bool) {
	for i, n := range creatureNames {
		if n == name {
			return uint8(i), true
		}
	}
	return 0, false
}

// Card is a packed uint8: bits 3–5 = creature, bits 0–2 = copy index (0–7).
// The full deck is 8 creatures × 8 copies = 64 distinct values.
type Card uint8

// EmptyCard represents the absence of a card.
const EmptyCard Card = 0xFF

// NewCard constructs a Card from creature and copy index.
func NewCard(creature, copyIdx uint8) Card {
	return Card(((creature & 0x07) << 3) | (copyIdx & 0x07))
}

// Creature returns the creature bits (3–5).
func (c Card) Creature() uint8 { return (uint8(c) >> 3) & 0x07 }

// Copy returns the copy-index bits (0–2).
func (c Card) Copy() uint8 { return uint8(c) & 0x07 }

// String renders the card as "<creature>-<copy>", e.g. "frog-3".
func (c Card) String() string {
	if c == EmptyCard {
		return "empty"
	}
	return creatureNames[c.Creature()] + "-" + string('0'+rune(c.Copy()))
}

// ClaimState holds the one in-flight claim, if any. A game has at most one
// active claim at a time; a new claim is illegal while one is pending.
type ClaimState struct {
	Active    bool
	Card      Card  // the face-down card in transit
	Claimant  uint8 // player who asserted the current declaration
	Declared  uint8 // declared creature (may be a lie)
	Target    uint8 // player who must respond or pass
	PassCount uint8 // times the card has been passed back
}

// LossReason constants recorded when the game terminates. A respond
// deadline expiring is not a loss reason of its own: it resolves the
// round (Resolution.TimedOut) and the game ends only if the pile crosses.
const (
	LossNone        uint8 = 0
	LossPenaltyPile uint8 = 1 // penalty pile crossed the configured threshold
	LossOutOfCards  uint8 = 2 // player due to claim had no cards left
	LossForfeit     uint8 = 3 // player forfeited (disconnect policy or leave)
)

// LossReasonName returns the wire name for a loss reason.
func LossReasonName(reason uint8) string {
	switch reason {
	case LossPenaltyPile:
		return "penalty_threshold"
	case LossOutOfCards:
		return "out_of_cards"
	case LossForfeit:
		return "forfeit"
	}
	return ""
}

// Resolution describes the outcome of one resolved claim. It is a pure
// function of the claim state and the belief flag — no wall-clock input.
type Resolution struct {
	Loser     uint8 // receives the penalty card
	Winner    uint8
	Card      Card
	Actual    uint8 // the card's actual creature; the pile it is filed under
	Declared  uint8 // declared creature at resolution time
	Believed  bool  // responder's belief flag (false for timeout resolutions)
	Truthful  bool  // declared == actual
	TimedOut  bool  // resolved by deadline expiry, not a response
	PassCount uint8
	GameOver  bool
	Reason    uint8 // LossPenaltyPile/LossOutOfCards when GameOver, else LossNone
}
