/*
Package ws adapts gorilla/websocket connections to the session protocol.

This file defines the Client struct, one authenticated WebSocket connection. It runs the
read and write loops, keeps the heartbeat alive and turns a full outbound queue into a
dropped connection so that a slow consumer never blocks a broadcast.
*/
package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"focusroom/internal/app/session"
	"focusroom/internal/app/user"
	"focusroom/internal/metrics"
	"focusroom/internal/pkg/logx"
	"focusroom/internal/pkg/randx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of a frame sent by the client.
	maxMessageSize = 8192

	// number of outbound frames queued before the connection counts as a slow consumer.
	sendBufferSize = 256
)

// Handler consumes the frames of a connection.
type Handler interface {
	HandleFrame(c session.Conn, data []byte)
	Disconnect(c session.Conn)
}

// Client represents an active WebSocket connection and its authenticated user.
type Client struct {
	id   string
	conn *websocket.Conn
	user user.User

	// a buffered channel used to queue frames waiting to be written.
	send chan []byte

	// closed is set once send has been closed; guarded by mu.
	closed bool
	mu     sync.Mutex

	handler Handler
	logger  zerolog.Logger
}

// NewClient constructs a Client for an upgraded connection.
func NewClient(conn *websocket.Conn, u user.User, handler Handler) *Client {
	return newClient(conn, u, handler, sendBufferSize)
}

func newClient(conn *websocket.Conn, u user.User, handler Handler, buffer int) *Client {
	id := randx.ConnectionID()
	return &Client{
		id:      id,
		conn:    conn,
		user:    u,
		send:    make(chan []byte, buffer),
		handler: handler,
		logger: logx.Logger().With().
			Str("component", "WSClient").
			Str("connection_id", id).
			Str("user_id", u.ID).
			Logger(),
	}
}

// ID returns the connection id.
func (c *Client) ID() string {
	return c.id
}

// User returns the identity resolved at handshake.
func (c *Client) User() user.User {
	return c.user
}

// Send queues a frame without blocking. When the queue is full the connection is
// shut down and the frame is dropped.
func (c *Client) Send(frame []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}

	select {
	case c.send <- frame:
		return true
	default:
		c.logger.Warn().Int("queue_len", len(c.send)).Msg("Client send queue full. Dropping slow connection.")
		c.closed = true
		close(c.send)
		return false
	}
}

// closeSend stops the write loop. Safe to call more than once.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// Run serves the connection until it closes. It blocks the calling goroutine.
func (c *Client) Run() {
	metrics.ConnectionsActive.Inc()
	c.logger.Info().Str("username", c.user.Username).Msg("WebSocket connection established.")

	go c.WritePump()
	c.ReadPump()
}

// ReadPump reads frames from the connection and hands them to the handler.
// It performs the disconnect cleanup when the connection ends.
func (c *Client) ReadPump() {
	defer c.cleanupOnDisconnect()

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Error reading message (Client close/going away)")
			}
			break
		}

		c.handler.HandleFrame(c, data)
	}
}

func (c *Client) cleanupOnDisconnect() {
	c.logger.Info().Msg("Client connection cleanup starting.")

	c.handler.Disconnect(c)
	c.closeSend()
	metrics.ConnectionsActive.Dec()

	if err := c.conn.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("Client connection close error")
	}
}

// WritePump writes queued frames and periodic pings to the connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Client connection close error in WritePump")
		}
	}()

	for {
		select {
		case frame, ok := <-c.send:
			if !c.writeQueuedFrame(frame, ok) {
				return
			}

		case <-ticker.C:
			if !c.writePing() {
				return
			}
		}
	}
}

// writeQueuedFrame returns false when the write loop should stop.
func (c *Client) writeQueuedFrame(frame []byte, ok bool) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if !ok {
		if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
			c.logger.Debug().Err(err).Msg("Error writing close message")
		}
		return false
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		c.logger.Error().Err(err).Msg("Error writing message")
		return false
	}

	return true
}

func (c *Client) writePing() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
		return false
	}

	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		c.logger.Error().Err(err).Msg("Error writing ping")
		return false
	}

	return true
}
