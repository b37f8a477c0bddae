package ws

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/oklog/ulid/v2"

	"github.com/wl39/todo-sync/internal/dto"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	maxInboundSize = 512
	sendBuffer     = 16
)

var (
	// ErrClosed is returned by Send after the connection was closed.
	ErrClosed = errors.New("connection closed")
	// ErrSlowConsumer is returned when the outbound buffer is full; the
	// manager treats it like any other send failure and drops the peer.
	ErrSlowConsumer = errors.New("send buffer full")
)

// Client is a gorilla-backed live connection. Writes go through a buffered
// channel drained by a single write pump, so Send never blocks the
// publishing goroutine. Inbound frames are read only for liveness and close
// detection.
type Client struct {
	id   string
	conn *websocket.Conn
	send chan dto.Event
	done chan struct{}
	once sync.Once
}

// NewClient wraps an upgraded websocket connection.
func NewClient(conn *websocket.Conn) *Client {
	return &Client{
		id:   ulid.Make().String(),
		conn: conn,
		send: make(chan dto.Event, sendBuffer),
		done: make(chan struct{}),
	}
}

func (c *Client) ID() string { return c.id }

// Send queues an event for the write pump. It fails fast when the peer is
// gone or stalled.
func (c *Client) Send(evt dto.Event) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}
	select {
	case c.send <- evt:
		return nil
	case <-c.done:
		return ErrClosed
	default:
		return ErrSlowConsumer
	}
}

// Close shuts the connection down. Safe to call multiple times.
func (c *Client) Close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

// Run binds the client to a channel on the manager and blocks until the peer
// disconnects or fails. The deferred Disconnect guarantees the registry never
// keeps a dangling subscriber.
func (c *Client) Run(m *Manager, channel string) {
	m.Connect(c, channel)
	defer m.Disconnect(c, channel)

	go c.writePump()
	c.readPump()
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case evt := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(evt); err != nil {
				c.Close()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

func (c *Client) readPump() {
	defer c.Close()

	c.conn.SetReadLimit(maxInboundSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		// Inbound frames carry no commands; reading detects close and errors.
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
