package game

import (
	"github.com/riftbound/duel-server-go/internal/carddef"
	"github.com/riftbound/duel-server-go/internal/game/ability"
	"github.com/riftbound/duel-server-go/internal/game/chain"
	"github.com/riftbound/duel-server-go/internal/game/target"
)

// resolveItem resolves one popped chain item: revalidate targets,
// place the card if it is a play, and run its effect text through the
// interpreter.
func (s *State) resolveItem(item chain.Item) {
	ctl := item.Controller

	// Targets declared at commit time may have become illegal; dead
	// or moved ones are dropped silently. A targeted effect with a
	// hard minimum that lost every target fizzles.
	live := s.liveTargets(ctl, item.Targets)
	if item.Requirement.Wanted() && item.Requirement.Min > 0 && len(live) == 0 && len(item.Targets) > 0 {
		s.logf("%s fizzles: no legal targets remain", item.Description)
		s.finishPlay(item, false)
		return
	}

	var card *CardInstance
	if item.Kind == chain.KindPlay {
		card = s.stagedCard(ctl, item.CardID)
	}

	srcBF := item.Destination
	if srcBF < 0 && s.Window != WindowNone {
		srcBF = s.WindowBattlefield
	}

	if item.EffectText != "" {
		res := ability.Interpret(item.EffectText)
		if res.Unsupported != "" {
			s.Unsupported = append(s.Unsupported, res.Unsupported)
			s.logf("UNSUPPORTED effect: %q (no changes applied)", res.Unsupported)
		}
		for _, e := range res.Effects {
			s.applyEffect(ctl, e, live, srcBF)
			if s.Over {
				return
			}
		}
	}

	if card != nil {
		s.finishPlay(item, true)
	}
}

// stagedCard finds a staged card without unstaging it.
func (s *State) stagedCard(player int, cardID string) *CardInstance {
	for _, c := range s.Players[player].Staged {
		if c.ID == cardID {
			return c
		}
	}
	return nil
}

// finishPlay moves a resolved (or fizzled) play out of staging: units
// and gear enter their destination, everything else goes to trash.
func (s *State) finishPlay(item chain.Item, resolved bool) {
	if item.Kind != chain.KindPlay {
		return
	}
	p := s.Players[item.Controller]
	rest, card := removeCard(p.Staged, item.CardID)
	if card == nil {
		return
	}
	p.Staged = rest

	if !resolved {
		voidInstance(card)
		p.Trash = append(p.Trash, card)
		return
	}

	switch card.Def.Kind {
	case carddef.KindUnit:
		if item.Destination >= 0 && item.Destination < NumBattlefields {
			bf := s.Battlefields[item.Destination]
			bf.Units[item.Controller] = append(bf.Units[item.Controller], card)
			s.markContest(item.Controller, item.Destination)
		} else {
			p.BaseUnits = append(p.BaseUnits, card)
		}
	case carddef.KindGear:
		if item.Destination >= 0 && item.Destination < NumBattlefields {
			bf := s.Battlefields[item.Destination]
			bf.Gear[item.Controller] = append(bf.Gear[item.Controller], card)
		} else {
			p.BaseGear = append(p.BaseGear, card)
		}
	default:
		voidInstance(card)
		p.Trash = append(p.Trash, card)
	}
}

// markContest records a contest when a player puts units onto a
// battlefield the opponent holds. The window opens once the chain
// empties. Unclaimed battlefields are taken silently at sweep.
func (s *State) markContest(player, idx int) {
	bf := s.Battlefields[idx]
	if bf.Controller == player || bf.Controller == NoPlayer {
		return
	}
	bf.Contester = player
	// Reinforcements into an already open window do not queue a
	// second one.
	if s.Window != WindowNone && s.WindowBattlefield == idx {
		return
	}
	bf.PendingWindow = true
}

// liveTargets keeps the declared targets that still resolve to a legal
// object. Enemy units with Deflect cannot be targeted.
func (s *State) liveTargets(ctl int, declared []target.Target) []target.Target {
	var out []target.Target
	for _, t := range declared {
		switch t.Kind {
		case target.KindUnit:
			c, _, ok := s.resolveUnitTarget(t)
			if !ok {
				continue
			}
			if t.Owner != ctl && c.HasKeyword("Deflect") {
				continue
			}
			out = append(out, t)
		case target.KindBattlefield:
			if t.Battlefield >= 0 && t.Battlefield < NumBattlefields {
				out = append(out, t)
			}
		}
	}
	return out
}

// applyEffect applies one interpreted primitive.
func (s *State) applyEffect(ctl int, e ability.Effect, declared []target.Target, srcBF int) {
	switch e.Kind {
	case ability.EffectDraw:
		s.DrawCards(ctl, e.Amount)
	case ability.EffectChannel:
		s.ChannelRunes(ctl, e.Amount)
	case ability.EffectAddEnergy:
		s.Players[ctl].Pool.AddEnergy(e.Amount)
	case ability.EffectAddPower:
		s.Players[ctl].Pool.AddPower(s.effectDomain(ctl, e), e.Amount)
	case ability.EffectTokens:
		s.spawnTokens(ctl, e, srcBF)
	case ability.EffectGrantKeyword:
		s.forEffectUnits(ctl, e, declared, srcBF, func(c *CardInstance) {
			if e.ThisTurn {
				c.TurnKeywords = append(c.TurnKeywords, e.Keyword)
			} else {
				c.Keywords = append(c.Keywords, e.Keyword)
			}
		})
	case ability.EffectStun:
		s.forEffectUnits(ctl, e, declared, srcBF, func(c *CardInstance) {
			c.Stunned = true
			c.Exhausted = true
		})
	case ability.EffectReady:
		s.forEffectUnits(ctl, e, declared, srcBF, func(c *CardInstance) { c.Exhausted = false })
	case ability.EffectBuff:
		s.forEffectUnits(ctl, e, declared, srcBF, func(c *CardInstance) { c.PermBuff += e.Amount })
	case ability.EffectMightThisTurn:
		s.forEffectUnits(ctl, e, declared, srcBF, func(c *CardInstance) { c.TurnBonus += e.Amount })
	case ability.EffectKill:
		s.applyRemoval(ctl, e, declared, srcBF, s.KillUnit, e.DrawOnKill)
	case ability.EffectBanish:
		s.applyRemoval(ctl, e, declared, srcBF, s.BanishUnit, 0)
	case ability.EffectReturn:
		s.applyRemoval(ctl, e, declared, srcBF, s.ReturnUnit, 0)
	case ability.EffectDamage, ability.EffectDamageAOE:
		s.applyDamage(ctl, e, declared, srcBF)
	}
}

// effectDomain picks the domain for an any-domain power gain: the
// controller's legend's primary domain, falling back to fury.
func (s *State) effectDomain(ctl int, e ability.Effect) carddef.Domain {
	if !e.AnyDomain {
		return e.Domain
	}
	if legend := s.Players[ctl].Legend; legend != nil && len(legend.Def.Domains) > 0 {
		return legend.Def.Domains[0]
	}
	return carddef.DomainFury
}

// tokenDef is the shared definition of spawned tokens; might comes
// from the instance buff so one definition serves every size.
var tokenDef = &carddef.Card{ID: "token", Name: "Recruit", Kind: carddef.KindUnit}

func (s *State) spawnTokens(ctl int, e ability.Effect, srcBF int) {
	for i := 0; i < e.Count; i++ {
		tok := &CardInstance{
			ID:       s.newInstanceID("token"),
			Def:      tokenDef,
			PermBuff: e.Might,
			Token:    true,
		}
		if e.Scope.Here && srcBF >= 0 && srcBF < NumBattlefields {
			bf := s.Battlefields[srcBF]
			bf.Units[ctl] = append(bf.Units[ctl], tok)
			s.markContest(ctl, srcBF)
		} else {
			s.Players[ctl].BaseUnits = append(s.Players[ctl].BaseUnits, tok)
		}
	}
	s.logf("%s plays %d token(s)", s.Players[ctl].Name, e.Count)
}

// effectUnits resolves the unit set a primitive applies to: declared
// targets for targeted primitives, the scope-inferred implicit set for
// mass ones.
func (s *State) effectUnits(ctl int, e ability.Effect, declared []target.Target, srcBF int) []*CardInstance {
	if e.Targeted() && e.MaxTargets > 0 {
		var out []*CardInstance
		for _, t := range declared {
			if c, _, ok := s.resolveUnitTarget(t); ok {
				out = append(out, c)
			}
		}
		return out
	}
	return s.scopeUnits(ctl, e.Scope, srcBF)
}

func (s *State) forEffectUnits(ctl int, e ability.Effect, declared []target.Target, srcBF int, apply func(*CardInstance)) {
	for _, c := range s.effectUnits(ctl, e, declared, srcBF) {
		apply(c)
	}
}

// scopeUnits builds the implicit target set of a mass effect from its
// friendly/enemy/here qualifiers.
func (s *State) scopeUnits(ctl int, scope ability.Scope, srcBF int) []*CardInstance {
	var out []*CardInstance
	include := func(owner int, units []*CardInstance) {
		if scope.Friendly && owner != ctl {
			return
		}
		if scope.Enemy && owner == ctl {
			return
		}
		out = append(out, units...)
	}
	if scope.Here {
		if srcBF < 0 || srcBF >= NumBattlefields {
			return nil
		}
		bf := s.Battlefields[srcBF]
		include(0, bf.Units[0])
		include(1, bf.Units[1])
		return out
	}
	for owner := 0; owner < 2; owner++ {
		include(owner, s.Players[owner].BaseUnits)
		for _, bf := range s.Battlefields {
			include(owner, bf.Units[owner])
		}
	}
	return out
}

// applyRemoval kills, banishes or returns the effect's units. The
// conditional draw rider fires per removed target that was present
// beforehand and gone afterwards.
func (s *State) applyRemoval(ctl int, e ability.Effect, declared []target.Target, srcBF int, remove func(owner int, id string), drawOnKill int) {
	type snap struct {
		owner int
		id    string
	}
	var snaps []snap
	if e.Targeted() && e.MaxTargets > 0 {
		for _, t := range declared {
			if _, _, ok := s.resolveUnitTarget(t); ok {
				snaps = append(snaps, snap{t.Owner, t.UnitID})
			}
		}
	} else {
		for _, c := range s.scopeUnits(ctl, e.Scope, srcBF) {
			owner := s.ownerOf(c.ID)
			if owner != NoPlayer {
				snaps = append(snaps, snap{owner, c.ID})
			}
		}
	}

	for _, sn := range snaps {
		remove(sn.owner, sn.id)
		if drawOnKill > 0 {
			if _, _, alive := s.findUnit(sn.owner, sn.id); !alive {
				s.DrawCards(ctl, drawOnKill)
			}
		}
		if s.Over {
			return
		}
	}
}

// applyDamage deals effect damage and sweeps, honoring the
// conditional draw rider via a before/after existence check.
func (s *State) applyDamage(ctl int, e ability.Effect, declared []target.Target, srcBF int) {
	units := s.effectUnits(ctl, e, declared, srcBF)
	type snap struct {
		owner int
		id    string
	}
	var snaps []snap
	for _, c := range units {
		if owner := s.ownerOf(c.ID); owner != NoPlayer {
			snaps = append(snaps, snap{owner, c.ID})
		}
		c.Damage += e.Amount
	}
	s.Sweep()
	if e.DrawOnKill > 0 {
		for _, sn := range snaps {
			if _, _, alive := s.findUnit(sn.owner, sn.id); !alive {
				s.DrawCards(ctl, e.DrawOnKill)
				if s.Over {
					return
				}
			}
		}
	}
}

// ownerOf finds which player owns an in-play unit.
func (s *State) ownerOf(unitID string) int {
	for owner := 0; owner < 2; owner++ {
		if _, _, ok := s.findUnit(owner, unitID); ok {
			return owner
		}
	}
	return NoPlayer
}
