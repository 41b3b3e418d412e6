package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// Control messages are small JSON objects
	maxMessageSize = 512

	// Ledger events arrive in bursts during a recurring sweep
	sendBufferSize = 256
)

// Client is one browser connection of a user. It receives the ledger events
// it is subscribed to and accepts subscribe/unsubscribe control messages.
type Client struct {
	id           string
	userID       uuid.UUID
	conn         *websocket.Conn
	hub          *Hub
	subscription *Subscription
	send         chan []byte
	closed       bool
	mu           sync.RWMutex
	closeOnce    sync.Once
}

// NewClient creates a client subscribed to entities
func NewClient(conn *websocket.Conn, userID uuid.UUID, hub *Hub, entities []EntityType) *Client {
	return &Client{
		id:           uuid.New().String(),
		userID:       userID,
		conn:         conn,
		hub:          hub,
		subscription: NewSubscription(entities),
		send:         make(chan []byte, sendBufferSize),
	}
}

func (c *Client) ID() string {
	return c.id
}

func (c *Client) UserID() uuid.UUID {
	return c.userID
}

// Wants reports whether the client is subscribed to entity
func (c *Client) Wants(entity EntityType) bool {
	return c.subscription.Wants(entity)
}

// Send queues a message. A full buffer means the browser stopped reading;
// the hub drops such clients so they reconnect and refetch.
func (c *Client) Send(data []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return ErrClientClosed
	}

	select {
	case c.send <- data:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// SendEvent serialises and queues an event for this connection only
func (c *Client) SendEvent(event Event) error {
	data, err := event.ToJSON()
	if err != nil {
		return err
	}
	return c.Send(data)
}

// SessionPayload describes the connection in session.* events
type SessionPayload struct {
	ClientID string       `json:"clientId"`
	UserID   string       `json:"userId"`
	Entities []EntityType `json:"entities"`
}

// SendReady tells the browser which entities it will receive events for
func (c *Client) SendReady() error {
	return c.SendEvent(SessionReady(SessionPayload{
		ClientID: c.id,
		UserID:   c.userID.String(),
		Entities: c.subscription.Entities(),
	}))
}

// Close is safe to call more than once
func (c *Client) Close() error {
	var closeErr error
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		close(c.send)
		c.mu.Unlock()

		closeErr = c.conn.Close()
	})
	return closeErr
}

func (c *Client) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// handleControl applies one inbound message and answers with the new
// session state or a session.error
func (c *Client) handleControl(data []byte) {
	var msg ControlMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.SendEvent(SessionError("malformed control message"))
		return
	}
	if err := c.subscription.Apply(msg); err != nil {
		c.SendEvent(SessionError(err.Error()))
		return
	}

	log.Debug().
		Str("client_id", c.id).
		Str("user_id", c.userID.String()).
		Str("action", msg.Action).
		Interface("entities", c.subscription.Entities()).
		Msg("WebSocket subscription changed")
	c.SendReady()
}

// ReadPump reads control messages until the connection closes.
// Run it in its own goroutine.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().
					Err(err).
					Str("client_id", c.id).
					Str("user_id", c.userID.String()).
					Msg("WebSocket unexpected close")
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}
		c.handleControl(data)
	}
}

// WritePump writes queued events and keeps the connection alive with pings.
// Run it in its own goroutine.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "resync required"))
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Warn().
					Err(err).
					Str("client_id", c.id).
					Str("user_id", c.userID.String()).
					Msg("WebSocket write error")
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
