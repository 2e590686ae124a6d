package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHoldScoring(t *testing.T) {
	s := newDuel(t)
	s.Battlefields[0].Controller = 0
	s.Battlefields[0].Units[0] = append(s.Battlefields[0].Units[0], s.newInstance(duelUnit("holder", 0, 2)))

	require.NoError(t, s.AdvancePhase(0))
	require.Equal(t, PhaseScoring, s.Phase)
	require.Equal(t, 1, s.Players[0].Score)
	require.True(t, s.Players[0].BattlefieldsScored[0])
}

func TestBattlefieldScoresOncePerTurn(t *testing.T) {
	s := newDuel(t)
	s.Players[0].BattlefieldsScored[0] = true

	s.tryScore(0, 0, false)
	require.Equal(t, 0, s.Players[0].Score)
}

func TestFinalPointBlockedViaConquer(t *testing.T) {
	s := newDuel(t)
	p := s.Players[0]
	p.Score = VictoryThreshold - 1
	hand := len(p.Hand)

	s.tryScore(0, 0, true)
	require.Equal(t, VictoryThreshold-1, p.Score)
	require.False(t, s.Over)
	require.Len(t, p.Hand, hand+1, "blocked final point draws instead")
}

func TestFinalPointViaConquerAfterScoringAllOthers(t *testing.T) {
	s := newDuel(t)
	p := s.Players[0]
	p.Score = VictoryThreshold - 1
	p.BattlefieldsScored[1] = true

	s.tryScore(0, 0, true)
	require.Equal(t, VictoryThreshold, p.Score)
	require.True(t, s.Over)
	require.Equal(t, 0, s.Winner)
}

func TestFinalPointViaHoldUnrestricted(t *testing.T) {
	s := newDuel(t)
	s.Players[0].Score = VictoryThreshold - 1

	s.tryScore(0, 0, false)
	require.True(t, s.Over)
	require.Equal(t, 0, s.Winner)
}

func TestHoldTriggerFires(t *testing.T) {
	s := newDuel(t)
	tax := duelUnit("collector", 0, 1)
	tax.Ability.Trigger = "Hold"
	tax.Ability.Effect = "Draw a card."
	s.Battlefields[0].Controller = 0
	s.Battlefields[0].Units[0] = append(s.Battlefields[0].Units[0], s.newInstance(tax))
	hand := len(s.Players[0].Hand)

	s.tryScore(0, 0, false)
	require.Equal(t, 1, s.Players[0].Score)
	require.Len(t, s.Players[0].Hand, hand+1)
}

func TestScoreNeverExceedsThreshold(t *testing.T) {
	s := newDuel(t)
	s.Players[0].Score = VictoryThreshold - 1

	s.tryScore(0, 0, false)
	s.tryScore(0, 1, false)
	require.Equal(t, VictoryThreshold, s.Players[0].Score)
	require.True(t, s.Over)
}
