package game

import (
	"fmt"

	"github.com/riftbound/duel-server-go/internal/carddef"
)

// Privacy configures what a projection reveals. Zero value hides
// everything hidden information rules normally hide.
type Privacy struct {
	RevealHands     bool
	RevealFaceDown  bool
	RevealDeckOrder bool
}

// hiddenDef is the shared definition behind every placeholder entry.
var hiddenDef = &carddef.Card{ID: "hidden", Name: "Hidden Card"}

// View returns a redacted copy of the state for the given viewer.
// Concealed zones keep their size but carry opaque placeholders, so a
// client can render card backs without learning what they hide. Pass
// NoPlayer for a spectator who sees neither hand.
func (s *State) View(viewer int, priv Privacy) *State {
	v := s.Clone()

	for p := 0; p < 2; p++ {
		ps := v.Players[p]
		if p != viewer && !priv.RevealHands {
			ps.Hand = placeholders(len(ps.Hand), p, "hand")
		}
		if !priv.RevealDeckOrder {
			ps.Deck = placeholders(len(ps.Deck), p, "deck")
			ps.RuneDeck = runePlaceholders(len(ps.RuneDeck), p)
		}
	}

	for _, bf := range v.Battlefields {
		if bf.FaceDown == nil {
			continue
		}
		if bf.FaceDownOwner == viewer || priv.RevealFaceDown {
			continue
		}
		bf.FaceDown = &CardInstance{ID: "hidden-facedown", Def: hiddenDef}
	}
	return v
}

func placeholders(n, owner int, zone string) []*CardInstance {
	out := make([]*CardInstance, n)
	for i := range out {
		out[i] = &CardInstance{
			ID:  fmt.Sprintf("hidden-%s-%d-%d", zone, owner, i),
			Def: hiddenDef,
		}
	}
	return out
}

func runePlaceholders(n, owner int) []*RuneInstance {
	out := make([]*RuneInstance, n)
	for i := range out {
		out[i] = &RuneInstance{
			ID:  fmt.Sprintf("hidden-rune-%d-%d", owner, i),
			Def: hiddenDef,
		}
	}
	return out
}
