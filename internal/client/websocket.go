package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/five82/imagestrip/internal/protocol"
)

const handshakeTimeout = 5 * time.Second

// ErrConnClosed is returned by Cycle after Close.
var ErrConnClosed = errors.New("websocket transport closed")

// Conn runs cycles over a session WebSocket. Cycles are serialized: each
// Signals frame is answered by exactly one Directives frame. A failed cycle
// leaves the socket unusable, so it is dropped and the next cycle redials.
type Conn struct {
	client *Client
	id     string

	mu     sync.Mutex
	ws     *websocket.Conn
	closed bool
}

// Dial opens the WebSocket transport of session id.
func (c *Client) Dial(ctx context.Context, id string) (*Conn, error) {
	conn := &Conn{client: c, id: id}
	ws, err := conn.dial(ctx)
	if err != nil {
		return nil, err
	}
	conn.ws = ws
	return conn, nil
}

// Cycle writes sig and waits for the reply. The context deadline, if any,
// bounds the round trip.
func (c *Conn) Cycle(ctx context.Context, sig protocol.Signals) (protocol.Directives, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return protocol.Directives{}, ErrConnClosed
	}
	if c.ws == nil {
		ws, err := c.dial(ctx)
		if err != nil {
			return protocol.Directives{}, err
		}
		c.ws = ws
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(requestTimeout)
	}
	_ = c.ws.SetWriteDeadline(deadline)
	_ = c.ws.SetReadDeadline(deadline)

	if err := c.ws.WriteJSON(sig); err != nil {
		c.drop()
		return protocol.Directives{}, fmt.Errorf("send signals: %w", err)
	}
	var d protocol.Directives
	if err := c.ws.ReadJSON(&d); err != nil {
		c.drop()
		return protocol.Directives{}, fmt.Errorf("read directives: %w", err)
	}
	return d, nil
}

// Close sends a close frame and releases the connection. Later cycles fail
// with ErrConnClosed.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.ws == nil {
		return nil
	}
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	err := c.ws.Close()
	c.ws = nil
	return err
}

func (c *Conn) dial(ctx context.Context) (*websocket.Conn, error) {
	u := c.client.BaseURL()
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u = u.ResolveReference(&url.URL{Path: sessionPath(c.id) + "/ws"})

	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	ws, _, err := dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", u.Redacted(), err)
	}
	return ws, nil
}

// drop discards a socket after a failed read or write. gorilla/websocket
// connections cannot be reused once a deadline has expired.
func (c *Conn) drop() {
	_ = c.ws.Close()
	c.ws = nil
}
