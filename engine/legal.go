package engine

// DecisionContext describes what kind of decision the game is waiting on.
type DecisionContext uint8

const (
	CtxNoClaim          DecisionContext = iota // 0 — NextClaimant must claim
	CtxAwaitingResponse                        // 1 — Claim.Target must respond or pass
	CtxTerminal                                // 2
)

// DecisionCtx returns the current decision context.
func (g *GameState) DecisionCtx() DecisionContext {
	if g.IsTerminal() {
		return CtxTerminal
	}
	if g.Claim.Active {
		return CtxAwaitingResponse
	}
	return CtxNoClaim
}

// ActingPlayer returns the player the game is waiting on: the claim target
// while a claim is in flight, otherwise the next claimant.
func (g *GameState) ActingPlayer() uint8 {
	if g.Claim.Active {
		return g.Claim.Target
	}
	return g.NextClaimant
}

// CanClaim reports whether player may start a new claim right now.
func (g *GameState) CanClaim(player uint8) bool {
	return g.IsStarted() && !g.IsGameOver() && !g.Claim.Active &&
		player == g.NextClaimant && g.Players[player].HandLen > 0
}

// CanRespond reports whether player may resolve the in-flight claim.
func (g *GameState) CanRespond(player uint8) bool {
	return !g.IsGameOver() && g.Claim.Active && player == g.Claim.Target
}

// CanPassBack reports whether player may pass the in-flight card onward.
// Passing and responding share the same precondition in the two-player game.
func (g *GameState) CanPassBack(player uint8) bool {
	return g.CanRespond(player)
}
