package engine

import "testing"

// TestDecisionCtx verifies the context transitions across one exchange.
func TestDecisionCtx(t *testing.T) {
	g, claimant, target := setupClaimTest(t, DefaultRules())

	if got := g.DecisionCtx(); got != CtxNoClaim {
		t.Fatalf("DecisionCtx = %d, want CtxNoClaim", got)
	}
	if got := g.ActingPlayer(); got != claimant {
		t.Fatalf("ActingPlayer = %d, want claimant %d", got, claimant)
	}

	if err := g.ClaimCard(claimant, 0, CreatureFly, target); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if got := g.DecisionCtx(); got != CtxAwaitingResponse {
		t.Fatalf("DecisionCtx = %d, want CtxAwaitingResponse", got)
	}
	if got := g.ActingPlayer(); got != target {
		t.Fatalf("ActingPlayer = %d, want target %d", got, target)
	}

	if _, err := g.Respond(target, true); err != nil {
		t.Fatalf("respond: %v", err)
	}
	if got := g.DecisionCtx(); got != CtxNoClaim {
		t.Fatalf("DecisionCtx = %d, want CtxNoClaim after resolution", got)
	}

	if err := g.Forfeit(0); err != nil {
		t.Fatalf("forfeit: %v", err)
	}
	if got := g.DecisionCtx(); got != CtxTerminal {
		t.Fatalf("DecisionCtx = %d, want CtxTerminal", got)
	}
}

// TestCanClaimRespondPass verifies the legality predicates per player.
func TestCanClaimRespondPass(t *testing.T) {
	g, claimant, target := setupClaimTest(t, DefaultRules())

	if !g.CanClaim(claimant) {
		t.Error("expected claimant should be able to claim")
	}
	if g.CanClaim(target) {
		t.Error("non-claimant should not be able to claim")
	}
	if g.CanRespond(claimant) || g.CanRespond(target) {
		t.Error("nobody can respond before a claim exists")
	}

	if err := g.ClaimCard(claimant, 0, CreatureFly, target); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if g.CanClaim(claimant) || g.CanClaim(target) {
		t.Error("nobody can claim while one is in flight")
	}
	if !g.CanRespond(target) || !g.CanPassBack(target) {
		t.Error("target should be able to respond and pass")
	}
	if g.CanRespond(claimant) || g.CanPassBack(claimant) {
		t.Error("claimant cannot respond to their own claim")
	}

	// After a pass the roles flip.
	if err := g.PassBack(target, claimant, CreatureBat); err != nil {
		t.Fatalf("pass: %v", err)
	}
	if !g.CanRespond(claimant) || g.CanRespond(target) {
		t.Error("after a pass only the original claimant may respond")
	}
}

// TestCanClaimEmptyHand verifies claiming requires at least one card.
func TestCanClaimEmptyHand(t *testing.T) {
	g, claimant, _ := setupClaimTest(t, DefaultRules())
	g.Players[claimant].HandLen = 0
	if g.CanClaim(claimant) {
		t.Error("a player with no cards cannot claim")
	}
}
