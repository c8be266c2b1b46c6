package websocket

import (
	"context"
	"sync"

	"HydroWatchAPI/internal/logger"
)

// Message is the envelope every subscriber receives: {type, data}.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Hub owns the set of live subscriber connections and serializes membership
// changes and fan-out through its run loop. Subscribers whose send buffer is
// full are dropped silently; there is no buffering for late joiners.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Message
	register   chan *Client
	unregister chan *Client
	log        *logger.Logger
	mu         sync.Mutex
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		broadcast:  make(chan Message, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		log:        log,
	}
}

// Run drives the hub until the context is cancelled.
func (h *Hub) Run(ctx context.Context) {
	h.log.Info("WebSocket hub started")
	for {
		select {
		case <-ctx.Done():
			h.log.Info("WebSocket hub shutting down...")
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			h.log.Info("WS client connected. Total: %d", total)
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Not ready to receive: drop the subscriber, no retry.
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast queues a typed event for delivery to every connected subscriber.
func (h *Hub) Broadcast(eventType string, payload interface{}) {
	h.broadcast <- Message{
		Type: eventType,
		Data: payload,
	}
}

// ClientCount reports current membership.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
