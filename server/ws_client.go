package server

import (
	"log/slog"
	"sync"
	"time"

	"integral-solver/config"

	"github.com/gofiber/contrib/websocket"
)

// FeedClient is one websocket subscriber. Only writePump writes to conn.
type FeedClient struct {
	conn *websocket.Conn
	send chan []byte
	hub  *FeedHub
	once sync.Once
	done chan struct{}
	gone chan struct{}
}

func NewFeedClient(conn *websocket.Conn, hub *FeedHub) *FeedClient {
	c := &FeedClient{
		conn: conn,
		send: make(chan []byte, config.WSSendBuffer),
		hub:  hub,
		done: make(chan struct{}),
		gone: make(chan struct{}),
	}
	go c.writePump()
	return c
}

func (c *FeedClient) writePump() {
	ticker := time.NewTicker(config.WSPingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		close(c.gone)
	}()
	for {
		select {
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(config.WSWriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				slog.Error("client write error", "err", err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(config.WSWriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				slog.Debug("client ping failed", "err", err)
				return
			}
		case <-c.done:
			return
		}
	}
}

// enqueue drops the client when its buffer is full.
func (c *FeedClient) enqueue(msg []byte) {
	select {
	case <-c.done:
	case c.send <- msg:
	default:
		slog.Warn("Client send channel full, dropping client", "client", c.conn.RemoteAddr())
		c.Close()
	}
}

func (c *FeedClient) Close() {
	c.once.Do(func() {
		close(c.done)
		c.hub.RemoveClientConn(c)
	})
}

// Wait blocks until the write pump has exited. The connection must not be
// handed back to the server before that.
func (c *FeedClient) Wait() { <-c.gone }
