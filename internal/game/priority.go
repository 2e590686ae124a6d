package game

import (
	"fmt"

	"github.com/riftbound/duel-server-go/internal/game/chain"
)

// PassPriority registers a pass from the current priority holder.
// One pass hands focus to the other player; two consecutive passes
// resolve the top chain item or, with an empty chain, advance the
// active window.
func (s *State) PassPriority(player int) error {
	if s.Over {
		return fmt.Errorf("game is over")
	}
	if !s.Closed {
		return fmt.Errorf("nothing to respond to")
	}
	if player != s.Priority {
		return fmt.Errorf("%s does not have priority", s.Players[player].Name)
	}

	s.PassCount++
	if s.PassCount < 2 {
		s.Priority = Opponent(player)
		return nil
	}
	s.PassCount = 0

	if !s.Chain.IsEmpty() {
		s.resolveTop()
		return nil
	}
	if s.Window != WindowNone {
		s.advanceWindow()
		return nil
	}
	s.reopen()
	return nil
}

// commitChainItem pushes a committed play onto the chain, closes the
// state and hands priority to the item's controller.
func (s *State) commitChainItem(item chain.Item) {
	s.Chain.Push(item)
	s.Closed = true
	s.PassCount = 0
	s.Priority = item.Controller
}

// resolveTop pops and resolves the most recently pushed chain item.
func (s *State) resolveTop() {
	item, err := s.Chain.Pop()
	if err != nil {
		return
	}
	s.resolveItem(item)
	s.Sweep()

	if s.Over {
		return
	}
	if top, ok := s.Chain.Peek(); ok {
		// More pending effects: priority returns to the controller of
		// the new top item.
		s.Priority = top.Controller
		s.PassCount = 0
		return
	}
	if s.Window != WindowNone {
		// The chain emptied inside a reactive window: stay closed so
		// the next two passes close the window itself. The reacting
		// player keeps first focus.
		s.PassCount = 0
		s.Priority = Opponent(s.Battlefields[s.WindowBattlefield].Contester)
		return
	}
	s.reopen()
}

// advanceWindow progresses the open reactive window once both players
// pass on an empty chain.
func (s *State) advanceWindow() {
	idx := s.WindowBattlefield
	switch s.Window {
	case WindowShowdown:
		s.closeWindow()
		s.resolveShowdown(idx)
	case WindowCombat:
		// Once the showdown step closes, damage and resolution run
		// without further reactions.
		s.WindowStep = CombatStepDamage
		s.resolveCombatDamage(idx)
		if s.Over {
			return
		}
		s.WindowStep = CombatStepResolution
		s.closeWindow()
		s.resolveCombatOutcome(idx)
	default:
		s.reopen()
		return
	}
	if !s.Over {
		s.reopen()
	}
}

func (s *State) closeWindow() {
	s.Window = WindowNone
	s.WindowStep = CombatStepShowdown
	s.WindowBattlefield = 0
}

// reopen returns to the OPEN state and opens the next pending window,
// if any battlefield still needs one.
func (s *State) reopen() {
	s.Closed = false
	s.PassCount = 0
	s.Priority = s.TurnPlayer
	s.openPendingWindow()
}

// openPendingWindow scans battlefields in index order for contests
// awaiting a reactive window. One-sided contests (showdowns) open
// before two-sided ones (combats); at most one window is open at a
// time.
func (s *State) openPendingWindow() {
	if s.Over || s.Window != WindowNone || !s.Chain.IsEmpty() {
		return
	}

	open := func(idx int, w WindowType) {
		bf := s.Battlefields[idx]
		bf.PendingWindow = false
		s.Window = w
		s.WindowStep = CombatStepShowdown
		s.WindowBattlefield = idx
		s.Closed = true
		s.PassCount = 0
		// The reacting player gets first focus: whoever did not force
		// the contest.
		s.Priority = Opponent(bf.Contester)
		s.logf("%s window opens at %s", w, s.battlefieldName(idx))
	}

	for idx, bf := range s.Battlefields {
		if bf.PendingWindow && !s.contestTwoSided(bf) {
			open(idx, WindowShowdown)
			return
		}
	}
	for idx, bf := range s.Battlefields {
		if bf.PendingWindow && s.contestTwoSided(bf) {
			open(idx, WindowCombat)
			return
		}
	}
}

// contestTwoSided reports whether both the contester and the
// controller have units at a contested battlefield.
func (s *State) contestTwoSided(bf *BattlefieldState) bool {
	if bf.Contester == NoPlayer || bf.Controller == NoPlayer {
		return false
	}
	if bf.Contester == bf.Controller {
		return false
	}
	return len(bf.Units[bf.Contester]) > 0 && len(bf.Units[bf.Controller]) > 0
}
