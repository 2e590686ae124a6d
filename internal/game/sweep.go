package game

// Sweep is the state-based-action pass that re-establishes the global
// invariants after any mutation: lethal damage kills, uncontested
// battlefields recompute their controller, orphaned face-down cards
// are voided, stray gear recalls to base, and pools clamp to zero.
// It is idempotent and runs after every chain resolution, phase
// change, and combat step.
func (s *State) Sweep() {
	if s.Over {
		return
	}

	// Kill units whose damage meets effective might. A unit at zero
	// might is never killed by damage alone.
	for owner := 0; owner < 2; owner++ {
		for _, c := range append([]*CardInstance(nil), s.Players[owner].BaseUnits...) {
			if lethal(c) {
				s.KillUnit(owner, c.ID)
			}
		}
	}
	for _, bf := range s.Battlefields {
		for owner := 0; owner < 2; owner++ {
			for _, c := range append([]*CardInstance(nil), bf.Units[owner]...) {
				if lethal(c) {
					s.KillUnit(owner, c.ID)
				}
			}
		}
	}

	for idx, bf := range s.Battlefields {
		s.sweepBattlefield(idx, bf)
	}

	for _, p := range s.Players {
		p.Pool.Clamp()
	}
}

func lethal(c *CardInstance) bool {
	m := c.EffectiveMight()
	return m > 0 && c.Damage >= m
}

func (s *State) sweepBattlefield(idx int, bf *BattlefieldState) {
	// An uncontested battlefield where only one player holds units is
	// controlled by that player. Control changes from combat go
	// through the combat resolver; this pass only repairs the
	// uncontested case (units left, a lone side remains).
	if bf.Contester == NoPlayer {
		for p := 0; p < 2; p++ {
			if len(bf.Units[p]) > 0 && len(bf.Units[Opponent(p)]) == 0 && bf.Controller != p {
				bf.Controller = p
				s.logf("%s controls %s", s.Players[p].Name, s.battlefieldName(idx))
			}
		}
	}

	// A face-down card is void once its owner no longer controls the
	// battlefield.
	if bf.FaceDown != nil && bf.Controller != bf.FaceDownOwner {
		owner := bf.FaceDownOwner
		card := bf.FaceDown
		bf.FaceDown = nil
		bf.FaceDownOwner = NoPlayer
		voidInstance(card)
		s.Players[owner].Trash = append(s.Players[owner].Trash, card)
		s.logf("%s's face-down card at %s is discarded", s.Players[owner].Name, s.battlefieldName(idx))
	}

	// Stray gear recalls to base: gear only stays at a battlefield
	// while its owner has units there. Cleanup recalls the rest.
	for p := 0; p < 2; p++ {
		if len(bf.Gear[p]) == 0 || len(bf.Units[p]) > 0 {
			continue
		}
		for _, g := range bf.Gear[p] {
			s.Players[p].BaseGear = append(s.Players[p].BaseGear, g)
		}
		bf.Gear[p] = nil
		s.logf("%s's gear recalls to base", s.Players[p].Name)
	}
}

func (s *State) battlefieldName(idx int) string {
	bf := s.Battlefields[idx]
	if bf.Card != nil {
		return bf.Card.Name
	}
	return "battlefield"
}
