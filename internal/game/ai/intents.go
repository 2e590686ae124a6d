package ai

import (
	"github.com/riftbound/duel-server-go/internal/carddef"
	"github.com/riftbound/duel-server-go/internal/game"
)

func intp(v int) *int { return &v }

// legalActions enumerates candidate intents for the player in the
// current position. It over-approximates slightly; candidates the
// engine rejects are discarded during evaluation.
func (a *Agent) legalActions(s *game.State, player int) []game.Action {
	if s.Over {
		return nil
	}
	p := s.Players[player]

	if s.Phase == game.PhaseMulligan {
		if p.MulliganConfirmed {
			return nil
		}
		return a.mulliganOptions(s, player)
	}

	var out []game.Action

	// Closed state: respond or pass.
	if s.Closed {
		if s.Priority != player {
			return nil
		}
		out = append(out, game.Action{Type: game.ActionPassPriority, Player: player})
		out = append(out, a.reactionPlays(s, player)...)
		return out
	}

	if s.TurnPlayer != player {
		return nil
	}

	if s.Phase != game.PhaseAction {
		return []game.Action{{Type: game.ActionAdvancePhase, Player: player}}
	}

	out = append(out, game.Action{Type: game.ActionAdvancePhase, Player: player})
	out = append(out, a.mainPlays(s, player)...)
	out = append(out, a.moves(s, player)...)
	out = append(out, a.faceDownPlacements(s, player)...)
	if len(out) > a.candidateCap() {
		out = out[:a.candidateCap()]
	}
	return out
}

// candidateCap bounds the search width per difficulty.
func (a *Agent) candidateCap() int {
	switch a.difficulty {
	case Easy:
		return 8
	case Medium:
		return 16
	case Hard:
		return 32
	default:
		return 48
	}
}

// mulliganOptions proposes keeping the hand and recycling the most
// expensive cards.
func (a *Agent) mulliganOptions(s *game.State, player int) []game.Action {
	p := s.Players[player]
	out := []game.Action{{Type: game.ActionConfirmMulligan, Player: player}}

	var expensive []string
	for _, c := range p.Hand {
		if c.Def.Cost >= 3 {
			expensive = append(expensive, c.ID)
		}
		if len(expensive) == 2 {
			break
		}
	}
	if len(expensive) > 0 {
		out = append(out, game.Action{Type: game.ActionConfirmMulligan, Player: player, RecycleIDs: expensive})
	}
	return out
}

// mainPlays proposes every affordable play from hand and the champion
// zone, to base and to each battlefield where Accelerate allows it.
func (a *Agent) mainPlays(s *game.State, player int) []game.Action {
	p := s.Players[player]
	var out []game.Action

	propose := func(c *game.CardInstance, from game.Zone) {
		base := game.Action{
			Type: game.ActionPlayCard, Player: player,
			CardID: c.ID, From: from, AutoPay: true,
			Targets: a.defaultTargets(s, player, c.Def.Ability.Effect),
		}
		out = append(out, base)
		if c.Def.Kind == carddef.KindUnit && c.HasKeyword("Accelerate") {
			for idx := 0; idx < game.NumBattlefields; idx++ {
				fwd := base
				fwd.Destination = intp(idx)
				fwd.Accelerate = true
				out = append(out, fwd)
			}
		}
		if c.Def.Kind == carddef.KindGear {
			for idx := 0; idx < game.NumBattlefields; idx++ {
				if len(s.Battlefields[idx].Units[player]) == 0 {
					continue
				}
				fwd := base
				fwd.Destination = intp(idx)
				out = append(out, fwd)
			}
		}
	}

	for _, c := range p.Hand {
		propose(c, game.ZoneHand)
	}
	if p.Champion != nil {
		propose(p.Champion, game.ZoneChampion)
	}

	// Hidden cards ready to spring.
	for idx := 0; idx < game.NumBattlefields; idx++ {
		bf := s.Battlefields[idx]
		if bf.FaceDown != nil && bf.FaceDownOwner == player {
			out = append(out, game.Action{
				Type: game.ActionPlayCard, Player: player,
				CardID: bf.FaceDown.ID, From: game.ZoneFaceDown,
				Destination: intp(idx), AutoPay: true,
			})
		}
	}
	return out
}

// reactionPlays proposes spells and Legion cards while a chain or
// window is pending.
func (a *Agent) reactionPlays(s *game.State, player int) []game.Action {
	var out []game.Action
	for _, c := range s.Players[player].Hand {
		if c.Def.Kind != carddef.KindSpell && !c.HasKeyword("Legion") {
			continue
		}
		out = append(out, game.Action{
			Type: game.ActionPlayCard, Player: player,
			CardID: c.ID, AutoPay: true,
			Targets: a.defaultTargets(s, player, c.Def.Ability.Effect),
		})
	}
	return out
}

// moves proposes sending every group of ready base units to each
// battlefield, plus single-unit probes.
func (a *Agent) moves(s *game.State, player int) []game.Action {
	p := s.Players[player]
	var ready []string
	for _, c := range p.BaseUnits {
		if !c.Exhausted && !c.Stunned {
			ready = append(ready, c.ID)
		}
	}
	if len(ready) == 0 {
		return nil
	}

	var out []game.Action
	for idx := 0; idx < game.NumBattlefields; idx++ {
		out = append(out, game.Action{
			Type: game.ActionStandardMove, Player: player,
			UnitIDs: append([]string(nil), ready...), Destination: intp(idx),
		})
		if len(ready) > 1 {
			out = append(out, game.Action{
				Type: game.ActionStandardMove, Player: player,
				UnitIDs: []string{ready[0]}, Destination: intp(idx),
			})
		}
	}
	return out
}

// faceDownPlacements proposes hiding each Hidden card at each
// controlled battlefield without a face-down card.
func (a *Agent) faceDownPlacements(s *game.State, player int) []game.Action {
	var out []game.Action
	for idx := 0; idx < game.NumBattlefields; idx++ {
		bf := s.Battlefields[idx]
		if bf.Controller != player || bf.FaceDown != nil {
			continue
		}
		for _, c := range s.Players[player].Hand {
			if c.HasKeyword("Hidden") {
				out = append(out, game.Action{
					Type: game.ActionPlaceFaceDown, Player: player,
					CardID: c.ID, Destination: intp(idx),
				})
				break
			}
		}
	}
	return out
}
