package gateway

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	sendBufferSize = 64
	writeTimeout   = 10 * time.Second
	pongTimeout    = 60 * time.Second
	pingInterval   = 45 * time.Second
)

// Client is one viewer connection. It owns a buffered send queue and a
// writer goroutine, so a slow or broken connection never blocks the hub or
// a submission request.
type Client struct {
	conn *websocket.Conn
	send chan []byte
	ip   string

	// registered flips once the hub has admitted the client; guarded by
	// the hub mutex.
	registered bool

	closeOnce sync.Once
}

func newClient(conn *websocket.Conn, ip string) *Client {
	return &Client{
		conn: conn,
		send: make(chan []byte, sendBufferSize),
		ip:   ip,
	}
}

// enqueue appends a frame to the send queue; false means the queue is full.
func (c *Client) enqueue(data []byte) bool {
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}

// writePump drains the send queue onto the socket and keeps the connection
// alive with pings. One writer per connection; frames stay ordered.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				c.conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeTimeout))
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards inbound frames (the channel is server-push only) and
// signals the hub when the peer goes away.
func (c *Client) readPump(hub *Hub) {
	defer func() {
		hub.unregister <- c
	}()

	c.conn.SetReadLimit(1024)
	c.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongTimeout))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
