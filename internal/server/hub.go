package server

import (
	"encoding/json"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// WSMessage is the envelope for everything sent over a game socket.
type WSMessage struct {
	Type   string `json:"type"`
	GameID string `json:"gameId,omitempty"`
	Data   any    `json:"data,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Client is one websocket subscriber. Each client watches a single
// game from a single seat.
type Client struct {
	conn   *websocket.Conn
	send   chan []byte
	gameID string
	viewer int
}

// Hub fans accepted-action updates out to game subscribers.
type Hub struct {
	logger *zap.Logger

	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan gameUpdate
}

type gameUpdate struct {
	gameID string
	// render produces the per-viewer payload, so each subscriber
	// receives its own redaction.
	render func(viewer int) ([]byte, error)
}

// NewHub creates a hub. Run must be started on its own goroutine.
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		logger:     logger,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan gameUpdate, 16),
	}
}

// Run pumps registrations and broadcasts until the process exits.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			h.logger.Debug("ws client registered",
				zap.String("game_id", client.gameID),
				zap.Int("viewer", client.viewer),
			)

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.logger.Debug("ws client unregistered", zap.String("game_id", client.gameID))
			}

		case update := <-h.broadcast:
			for client := range h.clients {
				if client.gameID != update.gameID {
					continue
				}
				payload, err := update.render(client.viewer)
				if err != nil {
					h.logger.Warn("render game update", zap.Error(err))
					continue
				}
				select {
				case client.send <- payload:
				default:
					// Slow consumer: drop it rather than block the hub.
					close(client.send)
					delete(h.clients, client)
				}
			}
		}
	}
}

// Notify queues a state update for a game's subscribers.
func (h *Hub) Notify(gameID string, render func(viewer int) ([]byte, error)) {
	select {
	case h.broadcast <- gameUpdate{gameID: gameID, render: render}:
	default:
		h.logger.Warn("hub broadcast queue full, dropping update",
			zap.String("game_id", gameID))
	}
}

func (c *Client) readPump(h *Hub) {
	defer func() {
		h.unregister <- c
		c.conn.Close()
	}()
	// Subscribers are read-only; actions go through the HTTP API. The
	// read loop only drains control frames and detects disconnects.
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()
	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
}

func marshalUpdate(msgType, gameID string, data any) ([]byte, error) {
	return json.Marshal(WSMessage{Type: msgType, GameID: gameID, Data: data})
}
