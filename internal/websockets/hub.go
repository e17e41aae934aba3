package websockets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
)

// ErrHubStopped is returned by Publish once Run has returned
var ErrHubStopped = errors.New("websocket hub is stopped")

type broadcast struct {
	topic   string
	message []byte
}

// Hub fans events out to connected proprietor clients. It implements the
// service event publisher.
type Hub struct {
	clients map[*Client]bool

	register chan *Client

	unregister chan *Client

	broadcast chan broadcast

	done chan struct{}

	connected atomic.Int64

	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		broadcast:  make(chan broadcast, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Publish queues an event for every client subscribed to routingKey
func (h *Hub) Publish(ctx context.Context, routingKey string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	message, err := json.Marshal(Message{Type: MessageType(routingKey), Data: data})
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	select {
	case <-h.done:
		return ErrHubStopped
	default:
	}

	select {
	case h.broadcast <- broadcast{topic: routingKey, message: message}:
		return nil
	case <-h.done:
		return ErrHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ClientCount returns the number of registered clients
func (h *Hub) ClientCount() int {
	return int(h.connected.Load())
}

// Run serves registrations and broadcasts until ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		close(h.done)
		for client := range h.clients {
			h.remove(client)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.register:
			h.clients[client] = true
			h.connected.Add(1)
			h.logger.Debug("websocket client connected", "client_id", client.id, "nickname", client.nickname)
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.remove(client)
				h.logger.Debug("websocket client disconnected", "client_id", client.id)
			}
		case b := <-h.broadcast:
			for client := range h.clients {
				if !client.subscribed(b.topic) {
					continue
				}
				select {
				case client.send <- b.message:
				default:
					h.remove(client)
					h.logger.Warn("dropped slow websocket client", "client_id", client.id)
				}
			}
		}
	}
}

func (h *Hub) remove(client *Client) {
	delete(h.clients, client)
	close(client.send)
	h.connected.Add(-1)
}
