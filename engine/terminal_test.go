package engine

import "testing"

// dealtGame returns a started game where player 0 is the next claimant.
func dealtGame(t *testing.T, rules Rules) GameState {
	t.Helper()
	g := NewGame(42, rules)
	g.Deal()
	g.NextClaimant = 0
	return g
}

// loseOneExchange resolves one forced exchange so that loser receives a card
// of the given creature.
func loseOneExchange(t *testing.T, g *GameState, loser uint8, creature uint8) Resolution {
	t.Helper()
	winner := Opponent(loser)
	// Winner claims truthfully; loser doubts and is wrong.
	forceClaim(g, winner, loser, NewCard(creature, uint8(g.RoundsPlayed)&0x7), creature)
	res, err := g.Respond(loser, false)
	if err != nil {
		t.Fatalf("respond: %v", err)
	}
	if res.Loser != loser {
		t.Fatalf("loser = %d, want %d", res.Loser, loser)
	}
	return res
}

// TestLossSameCreatureThreshold verifies the same-creature loss mode.
func TestLossSameCreatureThreshold(t *testing.T) {
	rules := DefaultRules()
	rules.Mode = LossSameCreature
	rules.SameCreatureThreshold = 3
	g := dealtGame(t, rules)

	// Two frogs and two bats: no loss yet.
	loseOneExchange(t, &g, 1, CreatureFrog)
	loseOneExchange(t, &g, 1, CreatureFrog)
	loseOneExchange(t, &g, 1, CreatureBat)
	loseOneExchange(t, &g, 1, CreatureBat)
	if g.IsTerminal() {
		t.Fatal("game ended before any creature reached the threshold")
	}
	if g.Players[1].PenaltyTotal != 4 {
		t.Fatalf("PenaltyTotal = %d, want 4", g.Players[1].PenaltyTotal)
	}

	// Third frog crosses the threshold.
	res := loseOneExchange(t, &g, 1, CreatureFrog)
	if !res.GameOver {
		t.Fatal("resolution should end the game")
	}
	if res.Reason != LossPenaltyPile {
		t.Errorf("reason = %d, want LossPenaltyPile", res.Reason)
	}
	if !g.IsTerminal() || g.LoserIdx() != 1 || g.WinnerIdx() != 0 {
		t.Errorf("terminal=%v winner=%d loser=%d, want true/0/1", g.IsTerminal(), g.WinnerIdx(), g.LoserIdx())
	}
}

// TestLossTotalCountThreshold verifies the total-count loss mode.
func TestLossTotalCountThreshold(t *testing.T) {
	rules := DefaultRules()
	rules.Mode = LossTotalCount
	rules.TotalCountThreshold = 4
	g := dealtGame(t, rules)

	// Four different creatures: same-creature mode would not trigger, total mode must.
	loseOneExchange(t, &g, 0, CreatureFrog)
	loseOneExchange(t, &g, 0, CreatureBat)
	loseOneExchange(t, &g, 0, CreatureFly)
	if g.IsTerminal() {
		t.Fatal("game ended early")
	}
	res := loseOneExchange(t, &g, 0, CreatureSpider)
	if !res.GameOver || res.Reason != LossPenaltyPile {
		t.Fatalf("res = %+v, want game over with LossPenaltyPile", res)
	}
	if g.LoserIdx() != 0 || g.WinnerIdx() != 1 {
		t.Errorf("winner=%d loser=%d, want 1/0", g.WinnerIdx(), g.LoserIdx())
	}
}

// TestSameCreatureModeIgnoresTotal verifies the modes are independent knobs.
func TestSameCreatureModeIgnoresTotal(t *testing.T) {
	rules := DefaultRules()
	rules.Mode = LossSameCreature
	rules.SameCreatureThreshold = 3
	rules.TotalCountThreshold = 4
	g := dealtGame(t, rules)

	// Six penalties, no creature at 3: total-count mode would have ended this
	// twice over, same-creature mode must not.
	creatures := []uint8{CreatureFrog, CreatureBat, CreatureFly, CreatureSpider, CreatureMouse, CreatureScorpion}
	for _, c := range creatures {
		res := loseOneExchange(t, &g, 1, c)
		if res.GameOver {
			t.Fatalf("game ended on creature %d in same-creature mode", c)
		}
	}
	if g.Players[1].PenaltyTotal != 6 {
		t.Fatalf("PenaltyTotal = %d, want 6", g.Players[1].PenaltyTotal)
	}
}

// TestOutOfCardsLoss verifies a player due to claim with no cards loses.
func TestOutOfCardsLoss(t *testing.T) {
	rules := DefaultRules()
	rules.Mode = LossSameCreature
	rules.SameCreatureThreshold = 100 // keep the pile condition out of the way
	g := dealtGame(t, rules)

	// Drain player 1's hand.
	g.Players[1].HandLen = 0

	// Player 1 loses an exchange and must claim next with an empty hand.
	res := loseOneExchange(t, &g, 1, CreatureFrog)
	if !res.GameOver {
		t.Fatal("resolution should end the game when the loser cannot claim")
	}
	if res.Reason != LossOutOfCards {
		t.Errorf("reason = %d, want LossOutOfCards", res.Reason)
	}
	if g.LossReason != LossOutOfCards || g.LoserIdx() != 1 {
		t.Errorf("LossReason=%d loser=%d, want LossOutOfCards/1", g.LossReason, g.LoserIdx())
	}
}

// TestPenaltyTotalsNeverDecrease verifies pile monotonicity over many exchanges.
func TestPenaltyTotalsNeverDecrease(t *testing.T) {
	rules := DefaultRules()
	rules.Mode = LossTotalCount
	rules.TotalCountThreshold = 200
	g := dealtGame(t, rules)

	var prev [MaxPlayers]uint8
	for i := 0; i < 12; i++ {
		loser := uint8(i % 2)
		loseOneExchange(t, &g, loser, uint8(i)%NumCreatures)
		for p := uint8(0); p < MaxPlayers; p++ {
			if g.Players[p].PenaltyTotal < prev[p] {
				t.Fatalf("player %d PenaltyTotal decreased: %d -> %d", p, prev[p], g.Players[p].PenaltyTotal)
			}
			prev[p] = g.Players[p].PenaltyTotal
		}
	}
}
