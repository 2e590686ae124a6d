package game

import "fmt"

// channelPerTurn is the number of runes channeled in the channel
// phase.
const channelPerTurn = 2

// ConfirmMulligan resolves a player's mulligan: up to two hand cards
// go to the bottom of the deck and are replaced. The duel starts once
// both players have confirmed.
func (s *State) ConfirmMulligan(player int, recycleIDs []string) error {
	if s.Phase != PhaseMulligan {
		return fmt.Errorf("mulligan is over")
	}
	p := s.Players[player]
	if p.MulliganConfirmed {
		return fmt.Errorf("%s already confirmed their hand", p.Name)
	}
	if len(recycleIDs) > 2 {
		return fmt.Errorf("at most 2 cards may be recycled, got %d", len(recycleIDs))
	}

	for _, id := range recycleIDs {
		rest, card := removeCard(p.Hand, id)
		if card == nil {
			return fmt.Errorf("card %s is not in hand", id)
		}
		p.Hand = rest
		p.Deck = append(p.Deck, card)
	}
	s.DrawCards(player, len(recycleIDs))
	p.MulliganConfirmed = true
	s.logf("%s keeps their hand (recycled %d)", p.Name, len(recycleIDs))

	if s.Players[0].MulliganConfirmed && s.Players[1].MulliganConfirmed {
		s.beginTurn()
	}
	return nil
}

// AdvancePhase moves the turn player to the next phase. Only legal
// with an empty chain and no open window; advancing out of the action
// phase ends the turn.
func (s *State) AdvancePhase(player int) error {
	if s.Over {
		return fmt.Errorf("game is over")
	}
	if s.Phase == PhaseMulligan {
		return fmt.Errorf("confirm mulligan first")
	}
	if player != s.TurnPlayer {
		return fmt.Errorf("only the turn player may advance the phase")
	}
	if !s.Chain.IsEmpty() || s.Window != WindowNone {
		return fmt.Errorf("cannot advance phase while effects are pending")
	}

	switch s.Phase {
	case PhaseAwaken:
		s.enterScoring()
	case PhaseScoring:
		s.enterChannel()
	case PhaseChannel:
		s.enterDraw()
	case PhaseDraw:
		// The pool fills during channel and draw for upkeep effects
		// and empties when the phase ends.
		s.Players[s.TurnPlayer].Pool.Empty()
		s.Phase = PhaseAction
		s.Priority = s.TurnPlayer
		s.logf("%s's action phase", s.Players[s.TurnPlayer].Name)
	case PhaseAction:
		s.runEnding()
	default:
		return fmt.Errorf("cannot advance from %s", s.Phase)
	}
	s.Sweep()
	return nil
}

// beginTurn enters the awaken phase for the turn player.
func (s *State) beginTurn() {
	s.Phase = PhaseAwaken
	s.Priority = s.TurnPlayer
	p := s.Players[s.TurnPlayer]
	s.logf("turn %d: %s awakens", s.Turn, p.Name)

	readyAll := func(cards []*CardInstance) {
		for _, c := range cards {
			c.Exhausted = false
		}
	}
	readyAll(p.BaseUnits)
	readyAll(p.BaseGear)
	for _, bf := range s.Battlefields {
		readyAll(bf.Units[s.TurnPlayer])
		readyAll(bf.Gear[s.TurnPlayer])
	}
	if p.Legend != nil {
		p.Legend.Exhausted = false
	}
	for _, r := range p.RunesInPlay {
		r.Exhausted = false
	}
	s.Sweep()
}

// enterScoring resolves Hold scoring for every battlefield the turn
// player controls.
func (s *State) enterScoring() {
	s.Phase = PhaseScoring
	p := s.TurnPlayer
	s.logf("%s's scoring phase", s.Players[p].Name)
	for idx, bf := range s.Battlefields {
		if s.Over {
			return
		}
		if bf.Controller == p {
			s.logf("%s holds %s", s.Players[p].Name, s.battlefieldName(idx))
			s.tryScore(p, idx, false)
		}
	}
}

/// enterChannel channels the turn's runes: two per turn, plus one extra
// the first time the non-starting player channels.
func (s *State) enterChannel() {
	s.Phase = PhaseChannel
	p := s.Players[s.TurnPlayer]
	n := channelPerTurn
	if !p.ChanneledOnce && s.TurnPlayer != s.StartingPlayer {
		n++
	}
	p.ChanneledOnce = true
	s.ChannelRunes(s.TurnPlayer, n)
}

// enterDraw draws the turn card.
func (s *State) enterDraw() {
	s.Phase = PhaseDraw
	s.DrawCards(s.TurnPlayer, 1)
}

// runEnding performs turn cleanup and hands the turn over: stun flags
// clear first, then damage, this-turn bonuses and this-turn keywords,
// temporary units leave play, pools empty, and the next player
// awakens.
func (s *State) runEnding() {
	s.Phase = PhaseEnding
	s.logf("%s ends their turn", s.Players[s.TurnPlayer].Name)

	for owner := 0; owner < 2; owner++ {
		for _, c := range s.allUnits(owner) {
			c.Stunned = false
		}
	}
	for owner := 0; owner < 2; owner++ {
		for _, c := range append([]*CardInstance(nil), s.allUnits(owner)...) {
			if c.HasKeyword("Temporary") {
				s.KillUnit(owner, c.ID)
				continue
			}
			c.Damage = 0
			c.TurnBonus = 0
			c.TurnKeywords = nil
		}
		p := s.Players[owner]
		p.Pool.Empty()
		p.CardsPlayedThisTurn = 0
		p.BattlefieldsScored = make(map[int]bool)
	}

	// Gear never persists at a battlefield past cleanup.
	for _, bf := range s.Battlefields {
		for owner := 0; owner < 2; owner++ {
			if len(bf.Gear[owner]) == 0 {
				continue
			}
			s.Players[owner].BaseGear = append(s.Players[owner].BaseGear, bf.Gear[owner]...)
			bf.Gear[owner] = nil
		}
	}

	s.TurnPlayer = Opponent(s.TurnPlayer)
	s.Turn++
	s.beginTurn()
}

// allUnits lists a player's units everywhere in play.
func (s *State) allUnits(owner int) []*CardInstance {
	out := append([]*CardInstance(nil), s.Players[owner].BaseUnits...)
	for _, bf := range s.Battlefields {
		out = append(out, bf.Units[owner]...)
	}
	return out
}
