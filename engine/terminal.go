package engine

// IsTerminal returns true when the game is over.
func (g *GameState) IsTerminal() bool { return g.Flags&FlagGameOver != 0 }

// WinnerIdx returns the winner's player index, or -1 if the game is live.
func (g *GameState) WinnerIdx() int8 { return g.Winner }

// LoserIdx returns the loser's player index, or -1 if the game is live.
func (g *GameState) LoserIdx() int8 { return g.Loser }

// lossReason evaluates whether player has just lost, per the configured
// mode. Exactly one mode applies; the thresholds are independent knobs.
func (g *GameState) lossReason(player uint8) uint8 {
	p := &g.Players[player]

	switch g.Rules.Mode {
	case LossTotalCount:
		if p.PenaltyTotal >= g.Rules.TotalCountThreshold {
			return LossPenaltyPile
		}
	default: // LossSameCreature
		for c := uint8(0); c < NumCreatures; c++ {
			if p.Penalty[c] >= g.Rules.SameCreatureThreshold {
				return LossPenaltyPile
			}
		}
	}

	// A player due to claim with an empty hand cannot continue and loses.
	if player == g.NextClaimant && !g.Claim.Active && p.HandLen == 0 {
		return LossOutOfCards
	}
	return LossNone
}
