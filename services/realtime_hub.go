package services

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const writeWait = 10 * time.Second

type WSClient struct {
	UserID uint
	Conn   *websocket.Conn
	mu     sync.Mutex // gorilla connections allow one concurrent writer
}

func (c *WSClient) write(msg []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.Conn.WriteMessage(websocket.TextMessage, msg)
}

// RealtimeHub fans alerts out to every open socket of a user.
type RealtimeHub struct {
	mu      sync.RWMutex
	clients map[uint]map[*WSClient]struct{}
	log     zerolog.Logger
}

func NewRealtimeHub(log zerolog.Logger) *RealtimeHub {
	return &RealtimeHub{
		clients: make(map[uint]map[*WSClient]struct{}),
		log:     log.With().Str("component", "realtime").Logger(),
	}
}

func (h *RealtimeHub) Register(c *WSClient) {
	h.mu.Lock()
	if h.clients[c.UserID] == nil {
		h.clients[c.UserID] = make(map[*WSClient]struct{})
	}
	h.clients[c.UserID][c] = struct{}{}
	h.mu.Unlock()
	h.log.Debug().Uint("user_id", c.UserID).Msg("socket registered")
}

func (h *RealtimeHub) Unregister(c *WSClient) {
	h.mu.Lock()
	if set := h.clients[c.UserID]; set != nil {
		delete(set, c)
		if len(set) == 0 {
			delete(h.clients, c.UserID)
		}
	}
	h.mu.Unlock()
	_ = c.Conn.Close()
}

// Connections is the number of open sockets for userID.
func (h *RealtimeHub) Connections(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

func (h *RealtimeHub) Broadcast(userID uint, payload any) {
	msg, err := json.Marshal(payload)
	if err != nil {
		h.log.Error().Err(err).Msg("encode realtime payload")
		return
	}
	h.mu.RLock()
	targets := make([]*WSClient, 0, len(h.clients[userID]))
	for c := range h.clients[userID] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		if err := c.write(msg); err != nil {
			h.log.Warn().Err(err).Uint("user_id", userID).Msg("dropping socket after write failure")
			h.Unregister(c)
		}
	}
}

// Close disconnects every client.
func (h *RealtimeHub) Close() {
	h.mu.Lock()
	all := h.clients
	h.clients = make(map[uint]map[*WSClient]struct{})
	h.mu.Unlock()
	for _, set := range all {
		for c := range set {
			_ = c.Conn.Close()
		}
	}
}
