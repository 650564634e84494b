// File: game/client.go
package game

import (
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/net/websocket"
)

// Client is anything a session can push wire messages to.
type Client interface {
	ID() string
	Send(v interface{}) error
	Close() error
}

// ErrClientClosed is returned by Send after Close.
var ErrClientClosed = errors.New("client closed")

// WebsocketClient sends JSON frames over a websocket connection. Sends are
// serialised so the broadcaster and the connection handler can share it.
type WebsocketClient struct {
	id     string
	conn   *websocket.Conn
	mu     sync.Mutex
	closed bool
}

func NewWebsocketClient(conn *websocket.Conn) *WebsocketClient {
	return &WebsocketClient{id: uuid.NewString(), conn: conn}
}

func (c *WebsocketClient) ID() string { return c.id }

func (c *WebsocketClient) Send(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClientClosed
	}
	return websocket.JSON.Send(c.conn, v)
}

func (c *WebsocketClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}

// IsConnectionClosed reports whether err means the peer went away.
func IsConnectionClosed(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrClientClosed) {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "use of closed network connection") ||
		strings.Contains(errStr, "broken pipe") ||
		strings.Contains(errStr, "connection reset by peer") ||
		strings.Contains(errStr, "EOF") ||
		strings.Contains(errStr, "write: connection timed out")
}
