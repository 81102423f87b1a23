package server

import (
	"sync"

	"github.com/gofiber/contrib/websocket"
)

// FeedHub fans solve events out to the subscribers of one topic.
type FeedHub struct {
	topic   string
	mu      sync.Mutex
	clients map[*FeedClient]struct{}
}

func NewFeedHub(topic string) *FeedHub {
	return &FeedHub{topic: topic, clients: make(map[*FeedClient]struct{})}
}

func (h *FeedHub) AddClientConn(conn *websocket.Conn) *FeedClient {
	h.mu.Lock()
	defer h.mu.Unlock()
	cl := NewFeedClient(conn, h)
	h.clients[cl] = struct{}{}
	return cl
}

func (h *FeedHub) RemoveClientConn(c *FeedClient) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}

func (h *FeedHub) BroadcastMessage(msg []byte) {
	h.mu.Lock()
	clients := make([]*FeedClient, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()
	for _, c := range clients {
		c.enqueue(msg)
	}
}

func (h *FeedHub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *FeedHub) IsEmpty() bool { return h.Len() == 0 }

func (h *FeedHub) Cleanup() {
	h.mu.Lock()
	clients := make([]*FeedClient, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()
	for _, c := range clients {
		c.Close()
	}
}
