package game

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func engineWithGame(t *testing.T) (*Engine, string) {
	t.Helper()
	e := NewEngine(zap.NewNop())
	id, err := e.NewGame(42, 0, [2]DeckList{duelDeck("Alice"), duelDeck("Bob")})
	require.NoError(t, err)
	return e, id
}

func TestEngineSubmitAndReplay(t *testing.T) {
	e, id := engineWithGame(t)

	require.NoError(t, e.Submit(id, Action{Type: ActionConfirmMulligan, Player: 0}))
	require.NoError(t, e.Submit(id, Action{Type: ActionConfirmMulligan, Player: 1}))

	snap, err := e.Snapshot(id)
	require.NoError(t, err)
	require.Equal(t, PhaseAwaken, snap.Phase)

	replay, err := e.Replay(id)
	require.NoError(t, err)
	require.Len(t, replay, 2)
	require.Equal(t, 1, replay[0].Seq)
	require.Equal(t, ActionConfirmMulligan, replay[1].Action.Type)
}

func TestEngineRejectedActionLeavesStateUntouched(t *testing.T) {
	e, id := engineWithGame(t)

	before, err := e.Snapshot(id)
	require.NoError(t, err)

	// Advancing during mulligan is illegal.
	err = e.Submit(id, Action{Type: ActionAdvancePhase, Player: 0})
	require.Error(t, err)

	after, err := e.Snapshot(id)
	require.NoError(t, err)
	require.Equal(t, before.Phase, after.Phase)
	require.Len(t, after.Log, len(before.Log))

	replay, err := e.Replay(id)
	require.NoError(t, err)
	require.Empty(t, replay, "rejected actions are not recorded")
}

func TestEngineUnknownGame(t *testing.T) {
	e := NewEngine(nil)
	require.Error(t, e.Submit("missing", Action{Type: ActionPassPriority, Player: 0}))
	_, err := e.Project("missing", 0, Privacy{})
	require.Error(t, err)
}

func TestEngineRemove(t *testing.T) {
	e, id := engineWithGame(t)
	require.Len(t, e.GameIDs(), 1)
	e.Remove(id)
	require.Empty(t, e.GameIDs())
	_, err := e.Snapshot(id)
	require.Error(t, err)
}

func TestEngineDeterministicReplay(t *testing.T) {
	e1, id1 := engineWithGame(t)
	e2 := NewEngine(nil)
	id2, err := e2.NewGame(42, 0, [2]DeckList{duelDeck("Alice"), duelDeck("Bob")})
	require.NoError(t, err)

	script := []Action{
		{Type: ActionConfirmMulligan, Player: 0},
		{Type: ActionConfirmMulligan, Player: 1},
		{Type: ActionAdvancePhase, Player: 0},
		{Type: ActionAdvancePhase, Player: 0},
		{Type: ActionAdvancePhase, Player: 0},
	}
	for _, a := range script {
		require.NoError(t, e1.Submit(id1, a))
		require.NoError(t, e2.Submit(id2, a))
	}

	s1, err := e1.Snapshot(id1)
	require.NoError(t, err)
	s2, err := e2.Snapshot(id2)
	require.NoError(t, err)

	require.Equal(t, s1.Phase, s2.Phase)
	require.Equal(t, len(s1.Players[0].Hand), len(s2.Players[0].Hand))
	for i := range s1.Players[0].Hand {
		require.Equal(t, s1.Players[0].Hand[i].Def.ID, s2.Players[0].Hand[i].Def.ID)
	}
}
