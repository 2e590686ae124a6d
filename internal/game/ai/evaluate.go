package ai

import (
	"github.com/riftbound/duel-server-go/internal/game"
	"github.com/riftbound/duel-server-go/internal/game/ability"
	"github.com/riftbound/duel-server-go/internal/game/target"
)

// Heuristic weights. Score differential dominates; everything else
// breaks ties between lines that do not score.
const (
	wScore      = 100.0
	wVictory    = 10000.0
	wControl    = 15.0
	wMight      = 3.0
	wUnits      = 2.0
	wGear       = 1.0
	wHand       = 1.0
	wReadyRunes = 0.5
)

// evaluate scores a quiescent position from the player's point of
// view. Higher is better.
func evaluate(s *game.State, player int) float64 {
	opp := game.Opponent(player)
	if s.Over {
		if s.Winner == player {
			return wVictory
		}
		return -wVictory
	}

	score := float64(s.Players[player].Score-s.Players[opp].Score) * wScore

	for _, bf := range s.Battlefields {
		if bf.Controller == player {
			score += wControl
		} else if bf.Controller == opp {
			score -= wControl
		}
	}

	score += float64(boardMight(s, player)-boardMight(s, opp)) * wMight
	score += float64(unitCount(s, player)-unitCount(s, opp)) * wUnits
	score += float64(gearCount(s, player)-gearCount(s, opp)) * wGear
	score += float64(len(s.Players[player].Hand)-len(s.Players[opp].Hand)) * wHand
	score += float64(readyRunes(s, player)-readyRunes(s, opp)) * wReadyRunes

	// Being one point from victory is worth pressing toward.
	if s.Players[player].Score == game.VictoryThreshold-1 {
		score += wControl
	}
	return score
}

func boardMight(s *game.State, player int) int {
	total := 0
	for _, c := range s.Players[player].BaseUnits {
		total += c.EffectiveMight()
	}
	for _, bf := range s.Battlefields {
		for _, c := range bf.Units[player] {
			total += c.EffectiveMight()
		}
	}
	return total
}

func unitCount(s *game.State, player int) int {
	n := len(s.Players[player].BaseUnits)
	for _, bf := range s.Battlefields {
		n += len(bf.Units[player])
	}
	return n
}

func gearCount(s *game.State, player int) int {
	n := len(s.Players[player].BaseGear)
	for _, bf := range s.Battlefields {
		n += len(bf.Gear[player])
	}
	return n
}

func readyRunes(s *game.State, player int) int {
	n := 0
	for _, r := range s.Players[player].RunesInPlay {
		if !r.Exhausted {
			n++
		}
	}
	return n
}

// defaultTargets picks targets for a targeted effect: removal and
// damage aim at the opponent's biggest unit, buffs at the player's
// own. Untargeted effects get none.
func (a *Agent) defaultTargets(s *game.State, player int, effectText string) []target.Target {
	if effectText == "" {
		return nil
	}
	res := ability.Interpret(effectText)
	for _, e := range res.Effects {
		if !e.Targeted() || e.MaxTargets == 0 {
			continue
		}
		owner := game.Opponent(player)
		if e.Scope.Friendly || e.Kind == ability.EffectReady ||
			e.Kind == ability.EffectBuff || e.Kind == ability.EffectMightThisTurn ||
			e.Kind == ability.EffectGrantKeyword {
			owner = player
		}
		if t, ok := biggestUnit(s, owner); ok {
			return []target.Target{t}
		}
		return nil
	}
	return nil
}

// biggestUnit finds the owner's highest-might unit in play.
func biggestUnit(s *game.State, owner int) (target.Target, bool) {
	var best *game.CardInstance
	bestZone := ""
	for _, c := range s.Players[owner].BaseUnits {
		if best == nil || c.EffectiveMight() > best.EffectiveMight() {
			best, bestZone = c, string(game.ZoneBase)
		}
	}
	for _, bf := range s.Battlefields {
		for _, c := range bf.Units[owner] {
			if best == nil || c.EffectiveMight() > best.EffectiveMight() {
				best, bestZone = c, string(game.ZoneBattlefield)
			}
		}
	}
	if best == nil {
		return target.Target{}, false
	}
	return target.Unit(owner, best.ID, bestZone), true
}
