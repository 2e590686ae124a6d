package game

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/riftbound/duel-server-go/internal/carddef"
)

func duelUnit(id string, cost, might int, keywords ...string) *carddef.Card {
	return &carddef.Card{
		ID:      id,
		Name:    id,
		Kind:    carddef.KindUnit,
		Domains: []carddef.Domain{carddef.DomainFury},
		Cost:    cost,
		Might:   might,
		Ability: carddef.Ability{Keywords: keywords},
	}
}

func duelSpell(id string, cost int, effect string) *carddef.Card {
	return &carddef.Card{
		ID:      id,
		Name:    id,
		Kind:    carddef.KindSpell,
		Domains: []carddef.Domain{carddef.DomainFury},
		Cost:    cost,
		Ability: carddef.Ability{Effect: effect},
	}
}

func duelGear(id string, cost int) *carddef.Card {
	return &carddef.Card{
		ID:      id,
		Name:    id,
		Kind:    carddef.KindGear,
		Domains: []carddef.Domain{carddef.DomainFury},
		Cost:    cost,
	}
}

func duelRune(d carddef.Domain) *carddef.Card {
	return &carddef.Card{ID: "rune-" + string(d), Name: "Rune", Kind: carddef.KindRune, Domains: []carddef.Domain{d}}
}

func duelDeck(name string) DeckList {
	d := DeckList{
		Name:   name,
		Legend: &carddef.Card{ID: "legend-" + name, Name: "Legend", Kind: carddef.KindLegend, Domains: []carddef.Domain{carddef.DomainFury}},
		Battlefield: &carddef.Card{
			ID: "bf-" + name, Name: "Arena " + name, Kind: carddef.KindBattlefield,
		},
	}
	for i := 0; i < 12; i++ {
		d.Cards = append(d.Cards, duelUnit("grunt", 1, 2))
	}
	for i := 0; i < 10; i++ {
		d.Runes = append(d.Runes, duelRune(carddef.DomainFury))
	}
	return d
}

func newDuel(t *testing.T) *State {
	t.Helper()
	s := NewState("test", 42, 0, [2]DeckList{duelDeck("Alice"), duelDeck("Bob")})
	require.NoError(t, s.ConfirmMulligan(0, nil))
	require.NoError(t, s.ConfirmMulligan(1, nil))
	return s
}

// intp returns a pointer to an int, for Action.Destination.
func intp(v int) *int { return &v }

// toActionPhase advances a fresh duel to the turn player's action
// phase.
func toActionPhase(t *testing.T, s *State) {
	t.Helper()
	for s.Phase != PhaseAction {
		require.NoError(t, s.AdvancePhase(s.TurnPlayer))
	}
}

func TestOpeningDeal(t *testing.T) {
	s := NewState("test", 42, 0, [2]DeckList{duelDeck("Alice"), duelDeck("Bob")})
	require.Equal(t, PhaseMulligan, s.Phase)
	for i := 0; i < 2; i++ {
		require.Len(t, s.Players[i].Hand, 4)
		require.Len(t, s.Players[i].Deck, 8)
		require.Len(t, s.Players[i].RuneDeck, 10)
		require.NotNil(t, s.Players[i].Legend)
	}
}

func TestMulliganRecycle(t *testing.T) {
	s := NewState("test", 42, 0, [2]DeckList{duelDeck("Alice"), duelDeck("Bob")})
	p := s.Players[0]
	back := []string{p.Hand[0].ID, p.Hand[1].ID}

	require.NoError(t, s.ConfirmMulligan(0, back))
	require.Len(t, p.Hand, 4)
	require.Len(t, p.Deck, 8)
	require.True(t, p.MulliganConfirmed)

	// Recycled cards went to the bottom of the deck.
	bottom := []string{p.Deck[6].ID, p.Deck[7].ID}
	require.ElementsMatch(t, back, bottom)

	require.Error(t, s.ConfirmMulligan(0, nil), "double confirm")
	require.Error(t, s.ConfirmMulligan(1, []string{"a", "b", "c"}), "too many recycles")

	require.Equal(t, PhaseMulligan, s.Phase)
	require.NoError(t, s.ConfirmMulligan(1, nil))
	require.Equal(t, PhaseAwaken, s.Phase)
	require.Equal(t, 0, s.TurnPlayer)
}

func TestPhaseFlow(t *testing.T) {
	s := newDuel(t)

	require.Error(t, s.AdvancePhase(1), "only the turn player advances")

	require.NoError(t, s.AdvancePhase(0))
	require.Equal(t, PhaseScoring, s.Phase)

	require.NoError(t, s.AdvancePhase(0))
	require.Equal(t, PhaseChannel, s.Phase)
	require.Len(t, s.Players[0].RunesInPlay, 2)

	require.NoError(t, s.AdvancePhase(0))
	require.Equal(t, PhaseDraw, s.Phase)
	require.Len(t, s.Players[0].Hand, 5)

	require.NoError(t, s.AdvancePhase(0))
	require.Equal(t, PhaseAction, s.Phase)
	require.Equal(t, 0, s.Priority)
}

func TestTurnHandoverAndExtraChannel(t *testing.T) {
	s := newDuel(t)
	toActionPhase(t, s)

	require.NoError(t, s.AdvancePhase(0))
	require.Equal(t, PhaseAwaken, s.Phase)
	require.Equal(t, 1, s.TurnPlayer)
	require.Equal(t, 2, s.Turn)

	// The non-starting player channels an extra rune the first time.
	require.NoError(t, s.AdvancePhase(1))
	require.NoError(t, s.AdvancePhase(1))
	require.Len(t, s.Players[1].RunesInPlay, 3)
}

func TestEndingClearsTurnState(t *testing.T) {
	s := newDuel(t)
	toActionPhase(t, s)

	u := duelUnit("vet", 0, 3)
	inst := s.newInstance(u)
	inst.Damage = 1
	inst.TurnBonus = 2
	inst.Stunned = true
	inst.TurnKeywords = []string{"Assault 1"}
	s.Players[0].BaseUnits = append(s.Players[0].BaseUnits, inst)
	s.Players[0].Pool.AddEnergy(3)

	require.NoError(t, s.AdvancePhase(0))

	require.Equal(t, 0, inst.Damage)
	require.Equal(t, 0, inst.TurnBonus)
	require.False(t, inst.Stunned)
	require.Empty(t, inst.TurnKeywords)
	require.Equal(t, 0, s.Players[0].Pool.Energy)
	require.Equal(t, 0, s.Players[0].Pool.TotalPower())
}

func TestTemporaryUnitsLeaveAtCleanup(t *testing.T) {
	s := newDuel(t)
	toActionPhase(t, s)

	tmp := s.newInstance(duelUnit("phantom", 0, 2, "Temporary"))
	s.Players[0].BaseUnits = append(s.Players[0].BaseUnits, tmp)

	require.NoError(t, s.AdvancePhase(0))
	require.Empty(t, s.Players[0].BaseUnits)
	require.Len(t, s.Players[0].Trash, 1)
}

func TestCloneIsIndependent(t *testing.T) {
	s := newDuel(t)
	cp := s.Clone()

	cp.Players[0].Hand = cp.Players[0].Hand[:1]
	cp.Players[0].Pool.AddEnergy(5)
	cp.Battlefields[0].Controller = 1

	require.Len(t, s.Players[0].Hand, 4)
	require.Equal(t, 0, s.Players[0].Pool.Energy)
	require.Equal(t, NoPlayer, s.Battlefields[0].Controller)
}

func TestBurnOut(t *testing.T) {
	s := newDuel(t)
	p := s.Players[0]
	p.Trash = append(p.Trash, p.Deck...)
	p.Deck = nil

	s.DrawCards(0, 1)
	require.Equal(t, 1, s.Players[1].Score)
	require.Len(t, p.Hand, 5)
	require.Empty(t, p.Trash)
}

func TestBurnOutWithNothingLeftEndsGame(t *testing.T) {
	s := newDuel(t)
	p := s.Players[0]
	p.Deck = nil
	p.Trash = nil

	s.DrawCards(0, 1)
	require.True(t, s.Over)
	require.Equal(t, 1, s.Winner)
}
