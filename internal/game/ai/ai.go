// Package ai implements the computer opponent: it enumerates legal
// actions for a position, evaluates each by simulating it on a clone
// of the state, and picks one according to its difficulty tier.
package ai

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/riftbound/duel-server-go/internal/game"
)

// Difficulty selects how thoroughly the agent searches and how
// greedily it picks from the scored candidates.
type Difficulty string

const (
	Easy     Difficulty = "EASY"
	Medium   Difficulty = "MEDIUM"
	Hard     Difficulty = "HARD"
	VeryHard Difficulty = "VERY_HARD"
)

// ParseDifficulty maps a configuration string to a difficulty tier.
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(strings.ToUpper(strings.TrimSpace(s)))
	switch d {
	case Easy, Medium, Hard, VeryHard:
		return d, nil
	}
	return "", fmt.Errorf("unknown difficulty %q", s)
}

// Agent decides actions for one player. Safe for concurrent use: the
// scheduler may fire for both seats of an AI-vs-AI match at once.
type Agent struct {
	difficulty Difficulty

	mu  sync.Mutex
	rng *rand.Rand

	logger *zap.Logger
}

// New creates an agent. The seed fixes its sampling, which keeps
// games reproducible alongside the engine's deterministic shuffles.
func New(difficulty Difficulty, seed int64, logger *zap.Logger) *Agent {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Agent{
		difficulty: difficulty,
		rng:        rand.New(rand.NewSource(seed)),
		logger:     logger,
	}
}

type candidate struct {
	action game.Action
	score  float64
}

// ChooseAction picks an action for the player, or reports that the
// player has nothing to decide right now.
func (a *Agent) ChooseAction(s *game.State, player int) (game.Action, bool) {
	actions := a.legalActions(s, player)
	if len(actions) == 0 {
		return game.Action{}, false
	}

	cands := make([]candidate, 0, len(actions))
	for _, act := range actions {
		sim := s.Clone()
		if err := sim.Apply(act); err != nil {
			continue
		}
		fastForward(sim)
		cands = append(cands, candidate{action: act, score: evaluate(sim, player)})
	}
	if len(cands) == 0 {
		return game.Action{}, false
	}

	sort.SliceStable(cands, func(i, j int) bool { return cands[i].score > cands[j].score })
	pick := a.sample(cands)

	a.logger.Debug("ai decision",
		zap.Int("player", player),
		zap.String("action", string(pick.action.Type)),
		zap.Float64("score", pick.score),
		zap.Int("candidates", len(cands)),
	)
	return pick.action, true
}

// sample applies the difficulty's selection policy to the sorted
// candidate list.
func (a *Agent) sample(cands []candidate) candidate {
	a.mu.Lock()
	defer a.mu.Unlock()
	switch a.difficulty {
	case Easy:
		n := 4
		if len(cands) < n {
			n = len(cands)
		}
		return cands[a.rng.Intn(n)]
	case Medium:
		if len(cands) > 1 && a.rng.Float64() < 0.25 {
			return cands[1]
		}
		return cands[0]
	default:
		return cands[0]
	}
}

// fastForward drives a simulated state to quiescence by passing
// priority for both sides: pending chains, showdowns and combats all
// resolve under the assumption of no further reactions. Bounded so a
// surprise loop cannot hang the search.
func fastForward(s *game.State) {
	for i := 0; i < 64; i++ {
		if s.Over || !s.Closed {
			return
		}
		if err := s.Apply(game.Action{Type: game.ActionPassPriority, Player: s.Priority}); err != nil {
			return
		}
	}
}
