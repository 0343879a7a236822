// Package engine implements the Roach Poker card game rules.
//
// This package provides a self-contained, allocation-free game engine for
// the two-player bluffing game: one player slides a face-down card across
// the table with a declared creature, the other believes it, doubts it, or
// passes it back under a new declaration. The engine is pure state; all
// session concerns (identity, timing, transport) live in the service layer.
package engine

const (
	MaxPlayers        = 2
	NumCreatures      = 8
	CopiesPerCreature = 8
	DeckSize          = 64 // NumCreatures * CopiesPerCreature
	MaxHandSize       = 32 // DeckSize / MaxPlayers
)

// PlayerState holds one player's hand and penalty pile.
type PlayerState struct {
	Hand         [MaxHandSize]Card
	HandLen      uint8
	Penalty      [NumCreatures]uint8 // penalty pile, counted per creature
	PenaltyTotal uint8               // sum of Penalty; never decreases
}

// GameState holds the complete, self-contained state of one Roach Poker
// game. It is a flat value type (no pointers, no slices) so snapshots are
// plain copies.
type GameState struct {
	Players      [MaxPlayers]PlayerState
	Reserve      [DeckSize]Card // undealt remainder, face down, out of play
	ReserveLen   uint8
	Claim        ClaimState
	NextClaimant uint8  // player expected to claim while no claim is active
	RoundsPlayed uint16 // completed claim/response exchanges
	Flags        uint16
	Winner       int8 // -1 until terminal
	Loser        int8 // -1 until terminal
	LossReason   uint8
	RNG          uint64
	Rules        Rules
}

// ---------------------------------------------------------------------------
// Flags bitfield
// ---------------------------------------------------------------------------

const (
	FlagStarted  uint16 = 1 << 0
	FlagGameOver uint16 = 1 << 1
)

func (g *GameState) IsStarted() bool  { return g.Flags&FlagStarted != 0 }
func (g *GameState) IsGameOver() bool { return g.Flags&FlagGameOver != 0 }

// ---------------------------------------------------------------------------
// xorshift64 RNG — inline, no interface
// ---------------------------------------------------------------------------

func (g *GameState) nextRand() uint64 {
	x := g.RNG
	x ^= x << 13
	x ^= x >> 7
	x ^= x << 17
	g.RNG = x
	return x
}

// randN returns a random number in [0, n).
func (g *GameState) randN(n uint64) uint64 {
	return g.nextRand() % n
}

// ---------------------------------------------------------------------------
// NewGame and Deal
// ---------------------------------------------------------------------------

// NewGame initializes a new GameState with the given seed and rules.
// The deck is built but not yet shuffled or dealt.
func NewGame(seed uint64, rules Rules) GameState {
	var g GameState
	g.RNG = seed
	if g.RNG == 0 {
		g.RNG = 1 // xorshift can't start at 0
	}
	g.Rules = rules
	g.Winner = -1
	g.Loser = -1

	// Build the deck: 8 copies of each of the 8 creatures.
	idx := 0
	for creature := uint8(0); creature < NumCreatures; creature++ {
		for dup := uint8(0); dup < CopiesPerCreature; dup++ {
			g.Reserve[idx] = NewCard(creature, dup)
			idx++
		}
	}
	g.ReserveLen = DeckSize

	return g
}

// Deal shuffles the deck, gives each player their hand, sets the remainder
// aside face down, and picks a random starting claimant.
func (g *GameState) Deal() {
	// Fisher-Yates shuffle.
	for i := int(g.ReserveLen) - 1; i > 0; i-- {
		j := int(g.randN(uint64(i + 1)))
		g.Reserve[i], g.Reserve[j] = g.Reserve[j], g.Reserve[i]
	}

	// Deal alternately from the top of the reserve.
	perPlayer := g.Rules.cardsPerPlayer()
	for c := uint8(0); c < perPlayer; c++ {
		for p := uint8(0); p < MaxPlayers; p++ {
			g.ReserveLen--
			g.Players[p].Hand[c] = g.Reserve[g.ReserveLen]
			g.Players[p].HandLen++
		}
	}

	g.NextClaimant = uint8(g.randN(MaxPlayers))
	g.Flags |= FlagStarted
}

// ---------------------------------------------------------------------------
// Query methods
// ---------------------------------------------------------------------------

// Opponent returns the other player's index.
func Opponent(player uint8) uint8 { return 1 - player }

// HandCard returns the card at idx in player's hand, or EmptyCard if out of
// range.
func (g *GameState) HandCard(player, idx uint8) Card {
	if player >= MaxPlayers || idx >= g.Players[player].HandLen {
		return EmptyCard
	}
	return g.Players[player].Hand[idx]
}

// PenaltyCount returns player's penalty-pile count for one creature.
func (g *GameState) PenaltyCount(player, creature uint8) uint8 {
	if player >= MaxPlayers || creature >= NumCreatures {
		return 0
	}
	return g.Players[player].Penalty[creature]
}

// removeHandCard removes the card at idx from player's hand, shifting the
// remainder left so slot order stays stable for external card tracking.
func (g *GameState) removeHandCard(player, idx uint8) Card {
	p := &g.Players[player]
	card := p.Hand[idx]
	for i := idx; i+1 < p.HandLen; i++ {
		p.Hand[i] = p.Hand[i+1]
	}
	p.HandLen--
	p.Hand[p.HandLen] = EmptyCard
	return card
}
