package http

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"livequiz-service/internal/app"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait).
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096

	// Size of the send channel buffer.
	sendBufferSize = 64
)

// wsClient is one connected participant. It implements app.ClientConn:
// Send queues the event and a single writer goroutine delivers the queue in
// order, so a slow client can never block a session broadcast.
type wsClient struct {
	conn   *websocket.Conn
	id     string
	send   chan []byte
	done   chan struct{}
	logger *zap.Logger

	mu     sync.Mutex
	closed bool
}

func newWSClient(conn *websocket.Conn, id string, logger *zap.Logger) *wsClient {
	return &wsClient{
		conn:   conn,
		id:     id,
		send:   make(chan []byte, sendBufferSize),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Send implements app.ClientConn.
func (c *wsClient) Send(event app.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return c.enqueue(data)
}

// sendMessage delivers a non-event protocol message (connected, joinResult).
func (c *wsClient) sendMessage(msgType string, payload any) {
	data, err := json.Marshal(serverMessage{Type: msgType, Payload: payload})
	if err != nil {
		c.logger.Debug("marshal message failed", zap.String("type", msgType), zap.Error(err))
		return
	}
	_ = c.enqueue(data)
}

func (c *wsClient) enqueue(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	select {
	case c.send <- data:
	default:
		c.logger.Warn("send buffer full, message dropped", zap.String("playerId", c.id))
	}
	return nil
}

// Close implements app.ClientConn.
func (c *wsClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	close(c.done)
	return c.conn.Close()
}

// writePump drains the send queue to the connection and keeps it alive with
// periodic pings.
func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			return
		case data := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
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
