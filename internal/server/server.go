// Package server exposes the duel engine over HTTP and websockets:
// a JSON action API plus per-seat redacted state projections.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/riftbound/duel-server-go/internal/carddef"
	"github.com/riftbound/duel-server-go/internal/game"
	"github.com/riftbound/duel-server-go/internal/game/ai"
	"github.com/riftbound/duel-server-go/internal/repository"
)

// Options configures the server.
type Options struct {
	Engine          *game.Engine
	Library         map[string]*carddef.Card
	Matches         *repository.MatchRepository // nil disables persistence
	Privacy         game.Privacy
	AIDifficulty    ai.Difficulty
	AIThinkDelay    time.Duration
	AllowAllOrigins bool
	Logger          *zap.Logger
}

// Server handles the HTTP and websocket surface.
type Server struct {
	engine   *game.Engine
	library  map[string]*carddef.Card
	matches  *repository.MatchRepository
	privacy  game.Privacy
	hub      *Hub
	logger   *zap.Logger
	upgrader websocket.Upgrader

	aiDifficulty ai.Difficulty
	aiDelay      time.Duration

	mu         sync.Mutex
	schedulers map[string]*ai.Scheduler
}

// New creates a server and starts its hub.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		engine:       opts.Engine,
		library:      opts.Library,
		matches:      opts.Matches,
		privacy:      opts.Privacy,
		hub:          NewHub(logger),
		logger:       logger,
		aiDifficulty: opts.AIDifficulty,
		aiDelay:      opts.AIThinkDelay,
		schedulers:   make(map[string]*ai.Scheduler),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return opts.AllowAllOrigins },
		},
	}
	s.engine.OnChange(s.afterAction)
	go s.hub.Run()
	return s
}

// Router builds the route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/games", s.handleCreateGame).Methods(http.MethodPost)
	api.HandleFunc("/games", s.handleListGames).Methods(http.MethodGet)
	api.HandleFunc("/games/{id}", s.handleGetGame).Methods(http.MethodGet)
	api.HandleFunc("/games/{id}/actions", s.handleSubmitAction).Methods(http.MethodPost)
	api.HandleFunc("/games/{id}/replay", s.handleGetReplay).Methods(http.MethodGet)
	api.HandleFunc("/matches", s.handleListMatches).Methods(http.MethodGet)
	api.HandleFunc("/matches/{id}", s.handleGetMatch).Methods(http.MethodGet)
	api.HandleFunc("/cards", s.handleListCards).Methods(http.MethodGet)
	r.HandleFunc("/ws/games/{id}", s.handleWS)
	return r
}

// DeckSpec names the cards of one deck by library id.
type DeckSpec struct {
	Name        string   `json:"name"`
	Legend      string   `json:"legend"`
	Champion    string   `json:"champion,omitempty"`
	Battlefield string   `json:"battlefield"`
	Cards       []string `json:"cards"`
	Runes       []string `json:"runes"`
}

type createGameRequest struct {
	Seed           int64       `json:"seed,omitempty"`
	StartingPlayer int         `json:"startingPlayer"`
	Decks          [2]DeckSpec `json:"decks"`
	// VsAI seats the computer opponent as player 1.
	VsAI bool `json:"vsAi,omitempty"`
}

type createGameResponse struct {
	GameID string `json:"gameId"`
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	var decks [2]game.DeckList
	for i, spec := range req.Decks {
		deck, err := s.resolveDeck(spec)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err)
			return
		}
		decks[i] = deck
	}

	seed := req.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	id, err := s.engine.NewGame(seed, req.StartingPlayer, decks)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	if req.VsAI {
		agent := ai.New(s.aiDifficulty, seed, s.logger)
		sched := ai.NewScheduler(s.engine, agent, 1, s.aiDelay, s.logger)
		s.mu.Lock()
		s.schedulers[id] = sched
		s.mu.Unlock()
		sched.Poke(id)
	}

	s.writeJSON(w, http.StatusCreated, createGameResponse{GameID: id})
}

// resolveDeck looks a deck spec up against the card library.
func (s *Server) resolveDeck(spec DeckSpec) (game.DeckList, error) {
	deck := game.DeckList{Name: spec.Name}

	lookup := func(id string) (*carddef.Card, error) {
		if id == "" {
			return nil, nil
		}
		c, ok := s.library[id]
		if !ok {
			return nil, errors.New("unknown card " + id)
		}
		return c, nil
	}

	var err error
	if deck.Legend, err = lookup(spec.Legend); err != nil {
		return deck, err
	}
	if deck.Champion, err = lookup(spec.Champion); err != nil {
		return deck, err
	}
	if deck.Battlefield, err = lookup(spec.Battlefield); err != nil {
		return deck, err
	}
	for _, id := range spec.Cards {
		c, err := lookup(id)
		if err != nil {
			return deck, err
		}
		deck.Cards = append(deck.Cards, c)
	}
	for _, id := range spec.Runes {
		c, err := lookup(id)
		if err != nil {
			return deck, err
		}
		deck.Runes = append(deck.Runes, c)
	}
	return deck, nil
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string][]string{"games": s.engine.GameIDs()})
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	viewer := viewerFromQuery(r)

	view, err := s.engine.Project(id, viewer, s.privacy)
	if err != nil {
		s.writeError(w, http.StatusNotFound, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toGameView(view))
}

func (s *Server) handleSubmitAction(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var action game.Action
	if err := json.NewDecoder(r.Body).Decode(&action); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := s.engine.Submit(id, action); err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	view, err := s.engine.Project(id, action.Player, s.privacy)
	if err != nil {
		s.writeError(w, http.StatusNotFound, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toGameView(view))
}

// afterAction runs after every accepted action: it fans the new state
// out to subscribers, pokes the AI and persists the match once it
// finishes.
func (s *Server) afterAction(gameID string) {
	s.hub.Notify(gameID, func(viewer int) ([]byte, error) {
		view, err := s.engine.Project(gameID, viewer, s.privacy)
		if err != nil {
			return nil, err
		}
		return marshalUpdate("game_state", gameID, toGameView(view))
	})

	s.mu.Lock()
	sched := s.schedulers[gameID]
	s.mu.Unlock()
	if sched != nil {
		sched.Poke(gameID)
	}

	snap, err := s.engine.Snapshot(gameID)
	if err != nil || !snap.Over {
		return
	}
	if sched != nil {
		sched.Stop(gameID)
		s.mu.Lock()
		delete(s.schedulers, gameID)
		s.mu.Unlock()
	}
	if s.matches == nil {
		return
	}
	replay, err := s.engine.Replay(gameID)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.matches.SaveMatch(ctx, snap, replay); err != nil {
		s.logger.Error("persist match", zap.String("game_id", gameID), zap.Error(err))
		return
	}
	s.logger.Info("match persisted", zap.String("game_id", gameID))
}

func (s *Server) handleGetReplay(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	replay, err := s.engine.Replay(id)
	if err != nil {
		s.writeError(w, http.StatusNotFound, err)
		return
	}
	snap, err := s.engine.Snapshot(id)
	if err != nil {
		s.writeError(w, http.StatusNotFound, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"gameId":   id,
		"actions":  replay,
		"checksum": snap.Checksum(),
	})
}

func (s *Server) handleListMatches(w http.ResponseWriter, r *http.Request) {
	if s.matches == nil {
		s.writeError(w, http.StatusNotImplemented, errors.New("match persistence disabled"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	matches, err := s.matches.ListRecent(r.Context(), limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"matches": matches})
}

func (s *Server) handleGetMatch(w http.ResponseWriter, r *http.Request) {
	if s.matches == nil {
		s.writeError(w, http.StatusNotImplemented, errors.New("match persistence disabled"))
		return
	}
	id := mux.Vars(r)["id"]
	match, err := s.matches.GetMatch(r.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, match)
}

func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	cards := make([]*carddef.Card, 0, len(s.library))
	for _, c := range s.library {
		cards = append(cards, c)
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"cards": cards})
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	viewer := viewerFromQuery(r)

	if _, err := s.engine.Project(id, viewer, s.privacy); err != nil {
		s.writeError(w, http.StatusNotFound, err)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("ws upgrade", zap.Error(err))
		return
	}

	client := &Client{
		conn:   conn,
		send:   make(chan []byte, 64),
		gameID: id,
		viewer: viewer,
	}
	s.hub.register <- client

	// Send the initial state straight away.
	if view, err := s.engine.Project(id, viewer, s.privacy); err == nil {
		if payload, err := marshalUpdate("game_state", id, toGameView(view)); err == nil {
			client.send <- payload
		}
	}

	go client.writePump()
	go client.readPump(s.hub)
}

// viewerFromQuery parses the player query parameter; anything else is
// a spectator.
func viewerFromQuery(r *http.Request) int {
	switch r.URL.Query().Get("player") {
	case "0":
		return 0
	case "1":
		return 1
	default:
		return game.NoPlayer
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("write response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
