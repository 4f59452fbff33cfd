package websocket

import (
	"context"
	"time"

	"github.com/SumitJoshiGIT/distributed-task-runner/pkg/logging"
)

// Hub maintains the set of active clients and broadcasts task events to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan *Message
	register   chan *Client
	unregister chan *Client

	ctx    context.Context
	cancel context.CancelFunc
	logger logging.Logger
}

// NewHub creates a new WebSocket hub
func NewHub(logger logging.Logger) *Hub {
	ctx, cancel := context.WithCancel(context.Background())

	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan *Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		ctx:        ctx,
		cancel:     cancel,
		logger:     logger,
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	h.logger.Info("Starting WebSocket hub")

	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			h.logger.Debugf("WebSocket client %s connected (%d active)", client.ID, len(h.clients))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
				h.logger.Debugf("WebSocket client %s disconnected (%d active)", client.ID, len(h.clients))
			}

		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					// slow consumer, drop it
					delete(h.clients, client)
					close(client.Send)
				}
			}

		case <-h.ctx.Done():
			h.logger.Info("WebSocket hub shutting down")
			return
		}
	}
}

// Broadcast queues a message for every connected client. Never blocks.
func (h *Hub) Broadcast(msgType string, data *TaskEventData) {
	msg := &Message{
		Type:      msgType,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
	select {
	case h.broadcast <- msg:
	default:
		h.logger.Warn("WebSocket broadcast buffer full, dropping event")
	}
}

// Shutdown stops the hub loop.
func (h *Hub) Shutdown() {
	h.cancel()
}
