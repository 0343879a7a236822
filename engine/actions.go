package engine

import "fmt"

// ClaimCard starts a new exchange: player slides the card at handIdx face
// down to target, declaring it to be the given creature. The declaration is
// not checked against the card — lying is the game.
func (g *GameState) ClaimCard(player, handIdx, declared, target uint8) error {
	if !g.IsStarted() {
		return fmt.Errorf("game has not started")
	}
	if g.IsGameOver() {
		return fmt.Errorf("game is already over")
	}
	if g.Claim.Active {
		return fmt.Errorf("a claim is already in flight (pass count %d)", g.Claim.PassCount)
	}
	if player >= MaxPlayers {
		return fmt.Errorf("invalid player %d", player)
	}
	if player != g.NextClaimant {
		return fmt.Errorf("player %d is not the expected claimant (%d)", player, g.NextClaimant)
	}
	if target >= MaxPlayers || target == player {
		return fmt.Errorf("invalid claim target %d", target)
	}
	if declared >= NumCreatures {
		return fmt.Errorf("invalid declared creature %d", declared)
	}
	if handIdx >= g.Players[player].HandLen {
		return fmt.Errorf("hand index %d out of range (hand size %d)", handIdx, g.Players[player].HandLen)
	}

	card := g.removeHandCard(player, handIdx)
	g.Claim = ClaimState{
		Active:   true,
		Card:     card,
		Claimant: player,
		Declared: declared,
		Target:   target,
	}
	return nil
}

// Respond resolves the in-flight claim. The responder wins the exchange
// exactly when their belief matches the truth of the declaration: a correct
// guess sends the penalty card to the claimant, a wrong one keeps it. The
// card is always filed under its actual creature, and the loser claims next.
func (g *GameState) Respond(player uint8, believes bool) (Resolution, error) {
	if g.IsGameOver() {
		return Resolution{}, fmt.Errorf("game is already over")
	}
	if !g.Claim.Active {
		return Resolution{}, fmt.Errorf("no claim in flight")
	}
	if player != g.Claim.Target {
		return Resolution{}, fmt.Errorf("player %d is not the claim target (%d)", player, g.Claim.Target)
	}

	truthful := g.Claim.Declared == g.Claim.Card.Creature()
	loser := g.Claim.Target
	if believes == truthful {
		loser = g.Claim.Claimant
	}
	res := g.resolve(loser, believes, truthful, false)
	return res, nil
}

// PassBack redirects the in-flight card to newTarget under a fresh
// declaration without resolving the exchange. The card's true creature is
// never revealed by a pass.
func (g *GameState) PassBack(player, newTarget, newDeclared uint8) error {
	if g.IsGameOver() {
		return fmt.Errorf("game is already over")
	}
	if !g.Claim.Active {
		return fmt.Errorf("no claim in flight")
	}
	if player != g.Claim.Target {
		return fmt.Errorf("player %d is not the claim target (%d)", player, g.Claim.Target)
	}
	if newTarget >= MaxPlayers || newTarget == player {
		return fmt.Errorf("invalid pass target %d", newTarget)
	}
	if newDeclared >= NumCreatures {
		return fmt.Errorf("invalid declared creature %d", newDeclared)
	}

	g.Claim.Claimant = player
	g.Claim.Target = newTarget
	g.Claim.Declared = newDeclared
	g.Claim.PassCount++
	return nil
}

// ExpireClaim resolves the in-flight claim against the target without a
// belief. The caller decides when a deadline has passed; the engine only
// applies the forfeit deterministically.
func (g *GameState) ExpireClaim() (Resolution, error) {
	if g.IsGameOver() {
		return Resolution{}, fmt.Errorf("game is already over")
	}
	if !g.Claim.Active {
		return Resolution{}, fmt.Errorf("no claim in flight")
	}
	truthful := g.Claim.Declared == g.Claim.Card.Creature()
	res := g.resolve(g.Claim.Target, false, truthful, true)
	return res, nil
}

// Forfeit ends the game immediately with player as the loser.
func (g *GameState) Forfeit(player uint8) error {
	if g.IsGameOver() {
		return fmt.Errorf("game is already over")
	}
	if player >= MaxPlayers {
		return fmt.Errorf("invalid player %d", player)
	}
	g.endGame(player, LossForfeit)
	return nil
}

// resolve files the penalty card against loser, clears the claim, hands the
// next claim to the loser, and evaluates the loss conditions.
func (g *GameState) resolve(loser uint8, believed, truthful, timedOut bool) Resolution {
	card := g.Claim.Card
	actual := card.Creature()

	res := Resolution{
		Loser:     loser,
		Winner:    Opponent(loser),
		Card:      card,
		Actual:    actual,
		Declared:  g.Claim.Declared,
		Believed:  believed,
		Truthful:  truthful,
		TimedOut:  timedOut,
		PassCount: g.Claim.PassCount,
	}

	g.Players[loser].Penalty[actual]++
	g.Players[loser].PenaltyTotal++
	g.Claim = ClaimState{}
	g.NextClaimant = loser
	g.RoundsPlayed++

	if reason := g.lossReason(loser); reason != LossNone {
		g.endGame(loser, reason)
		res.GameOver = true
		res.Reason = reason
	}
	return res
}

// endGame marks the game terminal with the given loser.
func (g *GameState) endGame(loser uint8, reason uint8) {
	g.Flags |= FlagGameOver
	g.Loser = int8(loser)
	g.Winner = int8(Opponent(loser))
	g.LossReason = reason
}
