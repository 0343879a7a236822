package engine

import "testing"

// TestNewGameDeck verifies NewGame builds the full 64-card deck with no duplicates.
func TestNewGameDeck(t *testing.T) {
	g := NewGame(42, DefaultRules())

	if g.ReserveLen != DeckSize {
		t.Fatalf("ReserveLen = %d, want %d", g.ReserveLen, DeckSize)
	}

	seen := make(map[Card]bool)
	perCreature := make(map[uint8]int)
	for i := uint8(0); i < g.ReserveLen; i++ {
		c := g.Reserve[i]
		if c == EmptyCard {
			t.Errorf("Reserve[%d] is EmptyCard", i)
			continue
		}
		if seen[c] {
			t.Errorf("duplicate card at index %d: creature=%d copy=%d", i, c.Creature(), c.Copy())
		}
		seen[c] = true
		perCreature[c.Creature()]++
	}

	if len(seen) != DeckSize {
		t.Errorf("got %d unique cards, want %d", len(seen), DeckSize)
	}
	for creature := uint8(0); creature < NumCreatures; creature++ {
		if perCreature[creature] != CopiesPerCreature {
			t.Errorf("creature %d has %d copies, want %d", creature, perCreature[creature], CopiesPerCreature)
		}
	}
}

// TestDeal verifies hand sizes, reserve remainder, and the started flag.
func TestDeal(t *testing.T) {
	rules := DefaultRules()
	g := NewGame(42, rules)
	g.Deal()

	if !g.IsStarted() {
		t.Fatal("game should be started after Deal")
	}
	for p := uint8(0); p < MaxPlayers; p++ {
		if g.Players[p].HandLen != rules.CardsPerPlayer {
			t.Errorf("player %d HandLen = %d, want %d", p, g.Players[p].HandLen, rules.CardsPerPlayer)
		}
	}
	wantReserve := uint8(DeckSize - int(rules.CardsPerPlayer)*MaxPlayers)
	if g.ReserveLen != wantReserve {
		t.Errorf("ReserveLen = %d, want %d", g.ReserveLen, wantReserve)
	}
	if g.NextClaimant >= MaxPlayers {
		t.Errorf("NextClaimant = %d, out of range", g.NextClaimant)
	}

	// Dealt cards plus reserve must still cover the whole deck exactly once.
	seen := make(map[Card]bool)
	for p := uint8(0); p < MaxPlayers; p++ {
		for i := uint8(0); i < g.Players[p].HandLen; i++ {
			c := g.Players[p].Hand[i]
			if seen[c] {
				t.Errorf("card %v dealt twice", c)
			}
			seen[c] = true
		}
	}
	for i := uint8(0); i < g.ReserveLen; i++ {
		c := g.Reserve[i]
		if seen[c] {
			t.Errorf("card %v in both a hand and the reserve", c)
		}
		seen[c] = true
	}
	if len(seen) != DeckSize {
		t.Errorf("hands + reserve cover %d cards, want %d", len(seen), DeckSize)
	}
}

// TestDealDeterministic verifies the same seed produces the same deal.
func TestDealDeterministic(t *testing.T) {
	a := NewGame(7, DefaultRules())
	b := NewGame(7, DefaultRules())
	a.Deal()
	b.Deal()

	if a.NextClaimant != b.NextClaimant {
		t.Errorf("NextClaimant differs: %d vs %d", a.NextClaimant, b.NextClaimant)
	}
	for p := uint8(0); p < MaxPlayers; p++ {
		for i := uint8(0); i < a.Players[p].HandLen; i++ {
			if a.Players[p].Hand[i] != b.Players[p].Hand[i] {
				t.Fatalf("player %d hand differs at %d: %v vs %v", p, i, a.Players[p].Hand[i], b.Players[p].Hand[i])
			}
		}
	}
}

// TestDealClampsOversizedHands verifies cardsPerPlayer clamps to the deck.
func TestDealClampsOversizedHands(t *testing.T) {
	rules := DefaultRules()
	rules.CardsPerPlayer = 200
	g := NewGame(42, rules)
	g.Deal()

	for p := uint8(0); p < MaxPlayers; p++ {
		if g.Players[p].HandLen != MaxHandSize {
			t.Errorf("player %d HandLen = %d, want clamp to %d", p, g.Players[p].HandLen, MaxHandSize)
		}
	}
	if g.ReserveLen != 0 {
		t.Errorf("ReserveLen = %d, want 0 after full deal", g.ReserveLen)
	}
}

// TestRemoveHandCardKeepsOrder verifies removal shifts the remaining slots left.
func TestRemoveHandCardKeepsOrder(t *testing.T) {
	g := NewGame(42, DefaultRules())
	g.Deal()

	p := g.NextClaimant
	before := make([]Card, g.Players[p].HandLen)
	copy(before, g.Players[p].Hand[:g.Players[p].HandLen])

	removed := g.removeHandCard(p, 1)
	if removed != before[1] {
		t.Fatalf("removed %v, want %v", removed, before[1])
	}
	if int(g.Players[p].HandLen) != len(before)-1 {
		t.Fatalf("HandLen = %d, want %d", g.Players[p].HandLen, len(before)-1)
	}
	want := append([]Card{before[0]}, before[2:]...)
	for i, c := range want {
		if g.Players[p].Hand[i] != c {
			t.Errorf("Hand[%d] = %v, want %v", i, g.Players[p].Hand[i], c)
		}
	}
	if g.Players[p].Hand[g.Players[p].HandLen] != EmptyCard {
		t.Error("vacated slot should hold EmptyCard")
	}
}

// TestFullGamePlayout drives an entire game to termination using only the
// public operations, checking the invariants hold throughout.
func TestFullGamePlayout(t *testing.T) {
	rules := DefaultRules()
	rules.Mode = LossTotalCount
	rules.TotalCountThreshold = 4
	g := NewGame(99, rules)
	g.Deal()

	rounds := 0
	for !g.IsTerminal() {
		if rounds > 100 {
			t.Fatal("game did not terminate")
		}
		claimant := g.NextClaimant
		target := Opponent(claimant)
		if !g.CanClaim(claimant) {
			t.Fatalf("round %d: expected claimant %d cannot claim", rounds, claimant)
		}
		declared := g.Players[claimant].Hand[0].Creature() // truthful declaration
		if err := g.ClaimCard(claimant, 0, declared, target); err != nil {
			t.Fatalf("round %d: claim: %v", rounds, err)
		}
		if !g.Claim.Active {
			t.Fatalf("round %d: claim not active after ClaimCard", rounds)
		}

		// Alternate belief so both branches of the resolution rule run.
		believes := rounds%2 == 0
		res, err := g.Respond(target, believes)
		if err != nil {
			t.Fatalf("round %d: respond: %v", rounds, err)
		}
		if g.Claim.Active {
			t.Fatalf("round %d: claim still active after resolution", rounds)
		}
		if g.NextClaimant != res.Loser && !g.IsTerminal() {
			t.Fatalf("round %d: next claimant %d, want loser %d", rounds, g.NextClaimant, res.Loser)
		}
		// Declaration was truthful, so believes==true means the claimant loses.
		wantLoser := target
		if believes {
			wantLoser = claimant
		}
		if res.Loser != wantLoser {
			t.Fatalf("round %d: loser = %d, want %d", rounds, res.Loser, wantLoser)
		}
		rounds++
	}

	if g.WinnerIdx() < 0 || g.LoserIdx() < 0 {
		t.Fatal("terminal game must record winner and loser")
	}
	if g.LossReason != LossPenaltyPile {
		t.Fatalf("LossReason = %d, want LossPenaltyPile", g.LossReason)
	}
	total := g.Players[g.LoserIdx()].PenaltyTotal
	if total < rules.TotalCountThreshold {
		t.Fatalf("loser PenaltyTotal = %d, want >= %d", total, rules.TotalCountThreshold)
	}
}
