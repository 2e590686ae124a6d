package ai

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/riftbound/duel-server-go/internal/carddef"
	"github.com/riftbound/duel-server-go/internal/game"
)

func testCard(id string, kind carddef.Kind, cost, might int, keywords ...string) *carddef.Card {
	return &carddef.Card{
		ID: id, Name: id, Kind: kind,
		Domains: []carddef.Domain{carddef.DomainFury},
		Cost:    cost, Might: might,
		Ability: carddef.Ability{Keywords: keywords},
	}
}

func testDeck(name string) game.DeckList {
	d := game.DeckList{
		Name:        name,
		Legend:      testCard("legend-"+name, carddef.KindLegend, 0, 0),
		Battlefield: testCard("bf-"+name, carddef.KindBattlefield, 0, 0),
	}
	for i := 0; i < 12; i++ {
		d.Cards = append(d.Cards, testCard("grunt", carddef.KindUnit, 1, 2))
	}
	for i := 0; i < 10; i++ {
		d.Runes = append(d.Runes, testCard("rune", carddef.KindRune, 0, 0))
	}
	return d
}

func startedGame(t *testing.T) *game.State {
	t.Helper()
	s := game.NewState("ai-test", 7, 0, [2]game.DeckList{testDeck("Bot"), testDeck("Rival")})
	require.NoError(t, s.ConfirmMulligan(0, nil))
	require.NoError(t, s.ConfirmMulligan(1, nil))
	return s
}

func TestAgentConfirmsMulligan(t *testing.T) {
	s := game.NewState("ai-test", 7, 0, [2]game.DeckList{testDeck("Bot"), testDeck("Rival")})
	agent := New(Hard, 1, nil)

	action, ok := agent.ChooseAction(s, 0)
	require.True(t, ok)
	require.Equal(t, game.ActionConfirmMulligan, action.Type)
	require.NoError(t, s.Apply(action))
}

func TestAgentOnlyActsWithInitiative(t *testing.T) {
	s := startedGame(t)
	agent := New(Hard, 1, nil)

	_, ok := agent.ChooseAction(s, 1)
	require.False(t, ok, "not the turn player, nothing to do")
}

func TestAgentPlaysThroughATurn(t *testing.T) {
	s := startedGame(t)
	agent := New(Hard, 1, nil)

	turn := s.Turn
	for i := 0; i < 200 && s.Turn == turn && !s.Over; i++ {
		player := s.Priority
		action, ok := agent.ChooseAction(s, player)
		if !ok {
			player = game.Opponent(player)
			action, ok = agent.ChooseAction(s, player)
		}
		require.True(t, ok, "someone must always have a move")
		require.NoError(t, s.Apply(action))
	}
	require.Equal(t, turn+1, s.Turn, "the agent finishes its turn")
}

func TestAgentPrefersScoringLine(t *testing.T) {
	s := startedGame(t)
	for s.Phase != game.PhaseAction {
		require.NoError(t, s.AdvancePhase(0))
	}
	// A ready unit at base and an undefended enemy battlefield: moving
	// in conquers and scores, which must beat passing the turn.
	u := &game.CardInstance{ID: "striker", Def: testCard("striker", carddef.KindUnit, 0, 3)}
	s.Players[0].BaseUnits = append(s.Players[0].BaseUnits, u)
	s.Battlefields[0].Controller = 1

	agent := New(Hard, 1, nil)
	action, ok := agent.ChooseAction(s, 0)
	require.True(t, ok)
	require.Equal(t, game.ActionStandardMove, action.Type)
}

func TestDifficultySampling(t *testing.T) {
	cands := []candidate{
		{score: 10, action: game.Action{Type: game.ActionAdvancePhase}},
		{score: 5, action: game.Action{Type: game.ActionPassPriority}},
		{score: 1, action: game.Action{Type: game.ActionStandardMove}},
	}

	hard := New(Hard, 1, nil)
	for i := 0; i < 20; i++ {
		require.Equal(t, game.ActionAdvancePhase, hard.sample(cands).action.Type)
	}

	medium := New(Medium, 1, nil)
	runnerUp := 0
	for i := 0; i < 200; i++ {
		if medium.sample(cands).action.Type == game.ActionPassPriority {
			runnerUp++
		}
	}
	require.Greater(t, runnerUp, 10, "medium sometimes takes the runner-up")
	require.Less(t, runnerUp, 120)

	easy := New(Easy, 1, nil)
	seen := map[game.ActionType]bool{}
	for i := 0; i < 200; i++ {
		seen[easy.sample(cands).action.Type] = true
	}
	require.GreaterOrEqual(t, len(seen), 2, "easy spreads over the top candidates")
}

func TestConcurrentSampling(t *testing.T) {
	// Both seats of an AI-vs-AI match can decide at once on the same
	// agent; its rng must tolerate that.
	cands := []candidate{
		{score: 10, action: game.Action{Type: game.ActionAdvancePhase}},
		{score: 5, action: game.Action{Type: game.ActionPassPriority}},
	}
	agent := New(Easy, 1, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				agent.sample(cands)
			}
		}()
	}
	wg.Wait()
}

func TestSchedulerActsAfterDelay(t *testing.T) {
	engine := game.NewEngine(nil)
	id, err := engine.NewGame(7, 0, [2]game.DeckList{testDeck("Bot"), testDeck("Rival")})
	require.NoError(t, err)

	agent := New(Hard, 1, nil)
	sched := NewScheduler(engine, agent, 0, 10*time.Millisecond, nil)
	sched.Poke(id)

	require.Eventually(t, func() bool {
		s, err := engine.Snapshot(id)
		return err == nil && s.Players[0].MulliganConfirmed
	}, 2*time.Second, 20*time.Millisecond)
	sched.Stop(id)
}

func TestSchedulerDropsStaleDecision(t *testing.T) {
	engine := game.NewEngine(nil)
	id, err := engine.NewGame(7, 0, [2]game.DeckList{testDeck("Bot"), testDeck("Rival")})
	require.NoError(t, err)

	agent := New(Hard, 1, nil)
	sched := NewScheduler(engine, agent, 0, 50*time.Millisecond, nil)
	sched.Poke(id)
	// The game disappears before the delay fires; the scheduler must
	// cope without panicking.
	engine.Remove(id)
	time.Sleep(120 * time.Millisecond)
}
