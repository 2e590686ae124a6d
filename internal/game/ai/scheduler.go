package ai

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/riftbound/duel-server-go/internal/game"
)

// Scheduler runs an agent against an engine with a deliberate think
// delay. Every state change reschedules the pending decision, so the
// agent never acts on a stale position: the decision is made fresh
// from a snapshot taken when the delay fires, and a submit rejected by
// the engine is simply dropped.
type Scheduler struct {
	engine *game.Engine
	agent  *Agent
	player int
	delay  time.Duration
	logger *zap.Logger

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// NewScheduler wires an agent to an engine for one seat.
func NewScheduler(engine *game.Engine, agent *Agent, player int, delay time.Duration, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		engine: engine,
		agent:  agent,
		player: player,
		delay:  delay,
		logger: logger,
		timers: make(map[string]*time.Timer),
	}
}

// Poke signals that a game's state changed. Any pending decision for
// that game is cancelled and a new one is scheduled after the delay.
func (sc *Scheduler) Poke(gameID string) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if t, ok := sc.timers[gameID]; ok {
		t.Stop()
	}
	sc.timers[gameID] = time.AfterFunc(sc.delay, func() { sc.act(gameID) })
}

// Stop cancels any pending decision for a game.
func (sc *Scheduler) Stop(gameID string) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if t, ok := sc.timers[gameID]; ok {
		t.Stop()
		delete(sc.timers, gameID)
	}
}

// act takes a fresh snapshot, decides and submits. The snapshot is
// taken after the delay, never before, so the decision always sees
// the latest state.
func (sc *Scheduler) act(gameID string) {
	snap, err := sc.engine.Snapshot(gameID)
	if err != nil {
		sc.Stop(gameID)
		return
	}
	if snap.Over {
		sc.Stop(gameID)
		return
	}

	action, ok := sc.agent.ChooseAction(snap, sc.player)
	if !ok {
		return
	}
	if err := sc.engine.Submit(gameID, action); err != nil {
		// The position changed between snapshot and submit; the next
		// Poke will try again.
		sc.logger.Debug("ai action dropped",
			zap.String("game_id", gameID),
			zap.String("action", string(action.Type)),
			zap.Error(err),
		)
		return
	}
	// Acting may leave the agent with priority again (e.g. it holds
	// focus after a resolution), so reschedule.
	sc.Poke(gameID)
}
