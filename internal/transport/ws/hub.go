package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/google/uuid"
)

// StatusStore mirrors online/offline transitions into an external store.
type StatusStore interface {
	SetStatus(userID uuid.UUID, status string)
}

// Hub tracks every connected user on this process and routes events to
// specific connections. Presence is per-process only; a user connected to
// another instance is invisible here.
type Hub struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]*Client

	register   chan *Client
	unregister chan *Client

	presence StatusStore
}

func NewHub(presence StatusStore) *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		presence:   presence,
	}
}

// Run starts the Hub's main event loop. Call this in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			prev, replaced := h.clients[client.userID]
			h.clients[client.userID] = client
			count := len(h.clients)
			h.mu.Unlock()
			if replaced && prev != client {
				// Kick the stale connection: closing its channels makes
				// its WritePump exit and close the socket, and its
				// eventual unregister becomes a no-op.
				close(prev.send)
				close(prev.done)
				log.Printf("ws hub: user %s reconnected, dropping previous connection", client.userID)
			}
			log.Printf("ws hub: user %s connected (%d total)", client.userID, count)

			if h.presence != nil {
				h.presence.SetStatus(client.userID, "online")
			}
			h.broadcastStatus(client.userID, "online")
			h.broadcastCount(count)

		case client := <-h.unregister:
			h.mu.Lock()
			registered, ok := h.clients[client.userID]
			if ok && registered == client {
				delete(h.clients, client.userID)
			}
			count := len(h.clients)
			h.mu.Unlock()
			if !ok || registered != client {
				continue
			}
			close(client.send)
			close(client.done)
			log.Printf("ws hub: user %s disconnected (%d total)", client.userID, count)

			if h.presence != nil {
				h.presence.SetStatus(client.userID, "offline")
			}
			h.broadcastStatus(client.userID, "offline")
			h.broadcastCount(count)
		}
	}
}

// SendToUser delivers an event to a specific user's connection, if any.
// Returns false when the user has no live connection on this process.
func (h *Hub) SendToUser(userID uuid.UUID, event *Event) bool {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("ws hub: marshal error: %v", err)
		return false
	}

	h.mu.RLock()
	client, ok := h.clients[userID]
	h.mu.RUnlock()
	if !ok {
		return false
	}

	select {
	case client.send <- data:
		return true
	default:
		return false
	}
}

// Count returns the number of users currently connected to this process.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) broadcastStatus(userID uuid.UUID, status string) {
	evt, err := NewEvent(EventTypeStatusUpdate, StatusUpdatePayload{
		UserID: userID,
		Status: status,
	})
	if err != nil {
		return
	}
	h.broadcastAll(evt)
}

func (h *Hub) broadcastCount(count int) {
	evt, err := NewEvent(EventTypeUsersCount, count)
	if err != nil {
		return
	}
	h.broadcastAll(evt)
}

func (h *Hub) broadcastAll(event *Event) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		select {
		case client.send <- data:
		default:
		}
	}
}
