package game

import (
	"strings"

	"github.com/riftbound/duel-server-go/internal/game/ability"
)

// Keyword names the combat resolver cares about.
const (
	kwTank    = "Tank"
	kwAssault = "Assault"
	kwShield  = "Shield"
)

// sideMight totals a side's might for simultaneous damage. Attackers
// add their Assault values, defenders their Shield values.
func sideMight(units []*CardInstance, attacking bool) int {
	total := 0
	for _, u := range units {
		total += u.EffectiveMight()
		if attacking {
			total += u.KeywordValue(kwAssault)
		} else {
			total += u.KeywordValue(kwShield)
		}
	}
	return total
}

// assignDamage spreads incoming damage over units: Tank units must
// absorb first, every unit up to the last takes at most lethal, and
// whatever is left spills onto the last unit in assignment order.
func assignDamage(units []*CardInstance, incoming int) {
	if incoming <= 0 || len(units) == 0 {
		return
	}
	ordered := make([]*CardInstance, 0, len(units))
	for _, u := range units {
		if u.HasKeyword(kwTank) {
			ordered = append(ordered, u)
		}
	}
	for _, u := range units {
		if !u.HasKeyword(kwTank) {
			ordered = append(ordered, u)
		}
	}

	remaining := incoming
	for i, u := range ordered {
		if remaining <= 0 {
			break
		}
		if i == len(ordered)-1 {
			u.Damage += remaining
			remaining = 0
			break
		}
		need := u.EffectiveMight() - u.Damage
		if need < 0 {
			need = 0
		}
		dealt := need
		if dealt > remaining {
			dealt = remaining
		}
		u.Damage += dealt
		remaining -= dealt
	}
}

// resolveCombatDamage runs the auto-assigned damage step: both sides'
// totals hit the other side simultaneously, then the sweep removes
// casualties.
func (s *State) resolveCombatDamage(idx int) {
	bf := s.Battlefields[idx]
	attacker := bf.Contester
	defender := bf.Controller
	if attacker == NoPlayer || defender == NoPlayer {
		return
	}

	atkUnits := bf.Units[attacker]
	defUnits := bf.Units[defender]
	atkMight := sideMight(atkUnits, true)
	defMight := sideMight(defUnits, false)

	s.logf("combat at %s: %s attacks with %d might, %s defends with %d",
		s.battlefieldName(idx), s.Players[attacker].Name, atkMight,
		s.Players[defender].Name, defMight)

	assignDamage(defUnits, atkMight)
	assignDamage(atkUnits, defMight)
	s.Sweep()
}

// resolveCombatOutcome runs the resolution step after casualties are
// removed. Ties favor the defender: surviving attackers recall home
// exhausted and the defender keeps control.
func (s *State) resolveCombatOutcome(idx int) {
	bf := s.Battlefields[idx]
	attacker := bf.Contester
	defender := bf.Controller
	if attacker == NoPlayer {
		return
	}

	atkAlive := len(bf.Units[attacker]) > 0
	defAlive := defender != NoPlayer && len(bf.Units[defender]) > 0
	bf.Contester = NoPlayer

	switch {
	case atkAlive && defAlive:
		s.recallUnits(attacker, idx, true)
		s.logf("%s holds %s; attackers recall exhausted", s.Players[defender].Name, s.battlefieldName(idx))
	case atkAlive:
		bf.Controller = attacker
		s.logf("%s conquers %s", s.Players[attacker].Name, s.battlefieldName(idx))
		s.tryScore(attacker, idx, true)
	case defAlive:
		s.logf("%s defends %s", s.Players[defender].Name, s.battlefieldName(idx))
	default:
		bf.Controller = NoPlayer
		s.logf("%s is left uncontrolled", s.battlefieldName(idx))
	}
	s.Sweep()
}

// resolveShowdown closes a one-sided showdown: the unopposed side
// takes or keeps the battlefield.
func (s *State) resolveShowdown(idx int) {
	bf := s.Battlefields[idx]
	attacker := bf.Contester
	defender := bf.Controller
	if attacker == NoPlayer {
		return
	}

	if len(bf.Units[attacker]) == 0 {
		// The contest evaporated (attackers died to reactions).
		bf.Contester = NoPlayer
		s.logf("contest of %s fizzles", s.battlefieldName(idx))
		s.Sweep()
		return
	}
	if defender != NoPlayer && len(bf.Units[defender]) > 0 {
		// Both sides present after reactions: the showdown becomes a
		// combat and proceeds to damage.
		s.resolveCombatDamage(idx)
		s.resolveCombatOutcome(idx)
		return
	}

	bf.Contester = NoPlayer
	if defender == attacker || defender == NoPlayer {
		bf.Controller = attacker
		s.logf("%s takes %s unopposed", s.Players[attacker].Name, s.battlefieldName(idx))
		s.Sweep()
		return
	}
	bf.Controller = attacker
	s.logf("%s conquers %s unopposed", s.Players[attacker].Name, s.battlefieldName(idx))
	s.tryScore(attacker, idx, true)
	s.Sweep()
}

// recallUnits sends a player's units at a battlefield back to base,
// optionally exhausted.
func (s *State) recallUnits(player, idx int, exhausted bool) {
	bf := s.Battlefields[idx]
	for _, u := range bf.Units[player] {
		u.Exhausted = u.Exhausted || exhausted
		s.Players[player].BaseUnits = append(s.Players[player].BaseUnits, u)
	}
	bf.Units[player] = nil
}

// awardPoint gives a player a point unconditionally (Burn Out, card
// effects) and checks for victory.
func (s *State) awardPoint(player int) {
	p := s.Players[player]
	p.Score++
	s.logf("%s scores a point (%d/%d)", p.Name, p.Score, VictoryThreshold)
	if p.Score >= VictoryThreshold {
		s.endGame(player)
	}
}

// tryScore attempts a battlefield score for Hold or Conquer. A player
// scores a given battlefield at most once per turn. The Final Point
// cannot be taken via Conquer unless the player has scored every
// other battlefield this turn; a blocked Final Point draws a card
// instead.
func (s *State) tryScore(player, idx int, viaConquer bool) {
	if s.Over {
		return
	}
	p := s.Players[player]
	if p.BattlefieldsScored[idx] {
		s.logf("%s already scored %s this turn", p.Name, s.battlefieldName(idx))
		return
	}
	if viaConquer && p.Score == VictoryThreshold-1 && !p.ScoredAllOthers(idx) {
		s.logf("%s cannot take the final point by conquest; draws a card instead", p.Name)
		s.DrawCards(player, 1)
		return
	}
	p.BattlefieldsScored[idx] = true
	s.awardPoint(player)
	if !s.Over {
		s.fireScoreTriggers(player, idx)
	}
}

// fireScoreTriggers resolves Hold-triggered abilities of the scoring
// player's units at the scored battlefield. They resolve immediately,
// without a reactive window.
func (s *State) fireScoreTriggers(player, idx int) {
	bf := s.Battlefields[idx]
	for _, c := range append([]*CardInstance(nil), bf.Units[player]...) {
		ab := c.Def.Ability
		if !strings.EqualFold(ab.Trigger, "Hold") || ab.Effect == "" {
			continue
		}
		s.logf("%s's %s triggers", s.Players[player].Name, c.Def.Name)
		res := ability.Interpret(ab.Effect)
		if res.Unsupported != "" {
			s.Unsupported = append(s.Unsupported, res.Unsupported)
			s.logf("UNSUPPORTED effect: %q (no changes applied)", res.Unsupported)
			continue
		}
		for _, e := range res.Effects {
			if e.Targeted() && e.MaxTargets > 0 {
				continue // targeted triggers need a declared target; none here
			}
			s.applyEffect(player, e, nil, idx)
			if s.Over {
				return
			}
		}
	}
	s.Sweep()
}
