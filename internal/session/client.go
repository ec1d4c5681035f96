package session

import (
	"sync"

	"github.com/gorilla/websocket"

	"oneonone/internal/models"
)

// Client is one live socket bound to a single room and role. It never
// outlives its connection.
type Client struct {
	Conn   *websocket.Conn
	Role   models.Role
	UserID string

	mu     sync.Mutex
	hook   func(any)
	closed bool
}

func NewClient(conn *websocket.Conn, role models.Role, userID string) *Client {
	return &Client{Conn: conn, Role: role, UserID: userID}
}

// SetSendHook replaces the default WebSocket sender (used in tests).
func (c *Client) SetSendHook(fn func(any)) {
	c.mu.Lock()
	c.hook = fn
	c.mu.Unlock()
}

func (c *Client) Send(frame any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.hook != nil {
		c.hook(frame)
		return
	}
	if c.Conn == nil {
		return
	}
	_ = c.Conn.WriteJSON(frame)
}

// Close tears down the underlying socket. Closing an already-closed client
// is a no-op.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if c.Conn != nil {
		_ = c.Conn.Close()
	}
}

func (c *Client) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
