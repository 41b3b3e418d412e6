package websocket

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var (
	// ErrClientClosed is returned when attempting to send to a closed client
	ErrClientClosed = errors.New("client is closed")
	// ErrSendBufferFull is returned when a client is not keeping up
	ErrSendBufferFull = errors.New("client send buffer is full")
	// ErrTooManyClients is returned by Register when the user is at the connection cap
	ErrTooManyClients = errors.New("too many connections for user")
)

// DefaultMaxClientsPerUser caps tabs and devices per user
const DefaultMaxClientsPerUser = 5

// ClientInterface defines the interface that clients must implement
type ClientInterface interface {
	ID() string
	UserID() uuid.UUID
	Wants(entity EntityType) bool
	Send(data []byte) error
	Close() error
}

// Hub manages WebSocket connections organized by user.
// It is safe for concurrent use.
type Hub struct {
	// users maps user ID to a map of client ID to client
	users             map[uuid.UUID]map[string]ClientInterface
	maxClientsPerUser int
	mu                sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		users:             make(map[uuid.UUID]map[string]ClientInterface),
		maxClientsPerUser: DefaultMaxClientsPerUser,
	}
}

// MaxClientsPerUser returns the per-user connection cap
func (h *Hub) MaxClientsPerUser() int {
	return h.maxClientsPerUser
}

// Register adds a client to the hub under its user
func (h *Hub) Register(client ClientInterface) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	userID := client.UserID()
	if h.users[userID] == nil {
		h.users[userID] = make(map[string]ClientInterface)
	}
	if len(h.users[userID]) >= h.maxClientsPerUser {
		log.Warn().
			Str("user_id", userID.String()).
			Int("limit", h.maxClientsPerUser).
			Msg("WebSocket client rejected: connection cap reached")
		return ErrTooManyClients
	}
	h.users[userID][client.ID()] = client

	log.Debug().
		Str("user_id", userID.String()).
		Str("client_id", client.ID()).
		Msg("WebSocket client registered")
	return nil
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client ClientInterface) {
	h.mu.Lock()
	defer h.mu.Unlock()

	userID := client.UserID()
	clients, ok := h.users[userID]
	if !ok {
		return
	}
	if _, exists := clients[client.ID()]; !exists {
		return
	}

	delete(clients, client.ID())
	if len(clients) == 0 {
		delete(h.users, userID)
	}

	log.Debug().
		Str("user_id", userID.String()).
		Str("client_id", client.ID()).
		Msg("WebSocket client unregistered")
}

// Broadcast sends an event to every connection of the user that is
// subscribed to the event's entity. Clients that cannot keep up are
// dropped so the browser reconnects and refetches the ledger.
func (h *Hub) Broadcast(userID uuid.UUID, event Event) {
	data, err := event.ToJSON()
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID.String()).
			Str("event_type", event.Type).
			Msg("Failed to serialize event")
		return
	}

	h.mu.RLock()
	clients, ok := h.users[userID]
	if !ok || len(clients) == 0 {
		h.mu.RUnlock()
		return
	}

	recipients := make([]ClientInterface, 0, len(clients))
	for _, client := range clients {
		if client.Wants(event.Entity) {
			recipients = append(recipients, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range recipients {
		go func(c ClientInterface) {
			err := c.Send(data)
			switch {
			case err == nil:
			case errors.Is(err, ErrSendBufferFull):
				log.Warn().
					Str("user_id", userID.String()).
					Str("client_id", c.ID()).
					Msg("Dropping slow WebSocket client")
				h.Unregister(c)
				c.Close()
			default:
				log.Warn().
					Err(err).
					Str("user_id", userID.String()).
					Str("client_id", c.ID()).
					Msg("Failed to send to client")
			}
		}(client)
	}

	log.Debug().
		Str("user_id", userID.String()).
		Str("event_type", event.Type).
		Int("recipients", len(recipients)).
		Msg("Broadcast event")
}

// ClientCount returns the number of connections a user has open
func (h *Hub) ClientCount(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID])
}

// TotalClientCount returns the total number of connected clients
func (h *Hub) TotalClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, clients := range h.users {
		total += len(clients)
	}
	return total
}
