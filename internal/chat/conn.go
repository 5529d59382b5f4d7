package chat

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/peerbridge/chat-service/internal/domain"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	sendBufferSize = 64
)

var (
	ErrConnClosed   = errors.New("connection closed")
	ErrSendBlocked  = errors.New("send buffer full")
	ErrWriteTimeout = errors.New("write timed out")
)

// Conn wraps a WebSocket connection with a single writer goroutine, so
// broadcasts from multiple rooms never interleave writes on the socket.
type Conn struct {
	id   string
	ws   *websocket.Conn
	send chan []byte
	done chan struct{}

	closeOnce sync.Once

	mu     sync.RWMutex
	room   string
	userID string
	role   domain.Role
}

// NewConn wraps an upgraded WebSocket connection and starts its writer
func NewConn(ws *websocket.Conn) *Conn {
	c := &Conn{
		id:   uuid.NewString(),
		ws:   ws,
		send: make(chan []byte, sendBufferSize),
		done: make(chan struct{}),
	}
	go c.writeLoop()
	return c
}

func (c *Conn) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	// Closing here closes done, so a dead peer flips WriteEvent into an
	// immediate ErrConnClosed instead of absorbing events until the buffer
	// fills and stalls the broadcaster.
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case data := <-c.send:
			if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

// WriteEvent queues an enveloped event for delivery. A full buffer means
// the peer has stopped draining; the event is dropped with an error rather
// than blocking the broadcaster.
func (c *Conn) WriteEvent(event string, data any) error {
	select {
	case <-c.done:
		return ErrConnClosed
	default:
	}

	env := struct {
		Event string `json:"event"`
		Data  any    `json:"data,omitempty"`
	}{Event: event, Data: data}

	raw, err := json.Marshal(env)
	if err != nil {
		return err
	}

	select {
	case c.send <- raw:
		return nil
	case <-time.After(writeWait):
		return ErrWriteTimeout
	case <-c.done:
		return ErrConnClosed
	}
}

// Close shuts the connection down exactly once
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		err = c.ws.Close()
	})
	return err
}

// ID returns the process-local connection identifier
func (c *Conn) ID() string {
	return c.id
}

// SetMembership records which room this connection joined and as whom
func (c *Conn) SetMembership(room, userID string, role domain.Role) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.room = room
	c.userID = userID
	c.role = role
}

// Membership returns the joined room and actor identity; room is empty
// before the first join.
func (c *Conn) Membership() (room, userID string, role domain.Role) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.room, c.userID, c.role
}

// Room returns just the joined room id
func (c *Conn) Room() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.room
}
