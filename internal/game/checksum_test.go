package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func freshDuel() *State {
	return NewState("test", 42, 0, [2]DeckList{duelDeck("Alice"), duelDeck("Bob")})
}

func TestChecksumStableAcrossClones(t *testing.T) {
	s := freshDuel()
	require.Equal(t, s.Checksum(), s.Clone().Checksum())
}

func TestChecksumConvergesOnReplay(t *testing.T) {
	script := []Action{
		{Type: ActionConfirmMulligan, Player: 0},
		{Type: ActionConfirmMulligan, Player: 1},
		{Type: ActionAdvancePhase, Player: 0},
		{Type: ActionAdvancePhase, Player: 0},
		{Type: ActionAdvancePhase, Player: 0},
	}
	run := func() string {
		s := freshDuel()
		for _, a := range script {
			require.NoError(t, s.Apply(a))
		}
		return s.Checksum()
	}
	require.Equal(t, run(), run())
}

func TestChecksumDetectsDivergence(t *testing.T) {
	a := freshDuel()
	b := freshDuel()
	require.Equal(t, a.Checksum(), b.Checksum())

	require.NoError(t, b.Apply(Action{Type: ActionConfirmMulligan, Player: 0}))
	require.NotEqual(t, a.Checksum(), b.Checksum())
}

func TestChecksumIgnoresLog(t *testing.T) {
	s := freshDuel()
	before := s.Checksum()
	s.logf("kibitzing")
	require.Equal(t, before, s.Checksum())
}
