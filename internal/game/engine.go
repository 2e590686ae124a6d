package game

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReplayEntry records one accepted action, for replay and audit.
type ReplayEntry struct {
	Seq    int       `json:"seq"`
	Action Action    `json:"action"`
	Time   time.Time `json:"time"`
}

// Engine owns every running duel. All entry points apply a
// clone-then-mutate discipline: an action mutates a throwaway clone,
// and the clone replaces the stored state only when the action
// succeeded, so concurrent readers never observe a half-applied
// mutation.
type Engine struct {
	logger *zap.Logger

	// onChange is called after every accepted action, outside the
	// engine lock. Set once before the engine starts taking traffic.
	onChange func(gameID string)

	mu      sync.RWMutex
	games   map[string]*State
	replays map[string][]ReplayEntry
}

// NewEngine creates an engine.
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		logger:  logger,
		games:   make(map[string]*State),
		replays: make(map[string][]ReplayEntry),
	}
}

// OnChange registers a callback invoked after every accepted action.
// Not safe to call once actions are flowing.
func (e *Engine) OnChange(fn func(gameID string)) {
	e.onChange = fn
}

// NewGame starts a duel and returns its id.
func (e *Engine) NewGame(seed int64, startingPlayer int, decks [2]DeckList) (string, error) {
	if startingPlayer != 0 && startingPlayer != 1 {
		return "", fmt.Errorf("invalid starting player %d", startingPlayer)
	}
	id := uuid.NewString()
	s := NewState(id, seed, startingPlayer, decks)

	e.mu.Lock()
	e.games[id] = s
	e.replays[id] = nil
	e.mu.Unlock()

	e.logger.Info("game created",
		zap.String("game_id", id),
		zap.Int64("seed", seed),
		zap.Int("starting_player", startingPlayer),
	)
	return id, nil
}

// Submit applies one action to a game. On success the accepted action
// is appended to the game's replay log.
func (e *Engine) Submit(gameID string, a Action) error {
	e.mu.Lock()
	s, ok := e.games[gameID]
	if !ok {
		e.mu.Unlock()
		return fmt.Errorf("game %s not found", gameID)
	}

	next := s.Clone()
	if err := next.Apply(a); err != nil {
		e.mu.Unlock()
		e.logger.Debug("action rejected",
			zap.String("game_id", gameID),
			zap.String("action", string(a.Type)),
			zap.Int("player", a.Player),
			zap.Error(err),
		)
		return err
	}

	e.games[gameID] = next
	e.replays[gameID] = append(e.replays[gameID], ReplayEntry{
		Seq:    len(e.replays[gameID]) + 1,
		Action: a,
		Time:   time.Now(),
	})
	e.mu.Unlock()

	e.logger.Info("action applied",
		zap.String("game_id", gameID),
		zap.String("action", string(a.Type)),
		zap.Int("player", a.Player),
		zap.String("phase", next.Phase.String()),
	)
	if next.Over {
		e.logger.Info("game over",
			zap.String("game_id", gameID),
			zap.Int("winner", next.Winner),
			zap.String("checksum", next.Checksum()),
		)
	}
	if e.onChange != nil {
		e.onChange(gameID)
	}
	return nil
}

// Project returns a redacted view of a game for a viewer. Pass
// NoPlayer for a spectator.
func (e *Engine) Project(gameID string, viewer int, priv Privacy) (*State, error) {
	e.mu.RLock()
	s, ok := e.games[gameID]
	e.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("game %s not found", gameID)
	}
	return s.View(viewer, priv), nil
}

// Snapshot returns a full clone of a game's state. Intended for the
// AI and for persistence, not for clients.
func (e *Engine) Snapshot(gameID string) (*State, error) {
	e.mu.RLock()
	s, ok := e.games[gameID]
	e.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("game %s not found", gameID)
	}
	return s.Clone(), nil
}

// Replay returns the accepted-action log of a game.
func (e *Engine) Replay(gameID string) ([]ReplayEntry, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if _, ok := e.games[gameID]; !ok {
		return nil, fmt.Errorf("game %s not found", gameID)
	}
	return append([]ReplayEntry(nil), e.replays[gameID]...), nil
}

// Remove drops a finished game.
func (e *Engine) Remove(gameID string) {
	e.mu.Lock()
	delete(e.games, gameID)
	delete(e.replays, gameID)
	e.mu.Unlock()
	e.logger.Info("game removed", zap.String("game_id", gameID))
}

// GameIDs lists the ids of every running game.
func (e *Engine) GameIDs() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	ids := make([]string, 0, len(e.games))
	for id := range e.games {
		ids = append(ids, id)
	}
	return ids
}
