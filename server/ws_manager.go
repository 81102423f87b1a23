package server

import (
	"log/slog"
	"strings"
	"sync"

	"integral-solver/api"
	"integral-solver/solver"

	"github.com/bytedance/sonic"
	"github.com/gofiber/contrib/websocket"
)

const TopicAll = "all"

// MethodSlug turns a method label into a feed topic, e.g.
// "Integration by Parts" becomes "integration-by-parts".
func MethodSlug(method string) string {
	return strings.ToLower(strings.Join(strings.Fields(method), "-"))
}

var topics = func() map[string]struct{} {
	m := map[string]struct{}{TopicAll: {}}
	for t := solver.TechniqueBasic; t <= solver.TechniqueParts; t++ {
		m[MethodSlug(t.String())] = struct{}{}
	}
	return m
}()

func validTopic(topic string) bool {
	_, ok := topics[topic]
	return ok
}

type HubManager struct {
	mu   sync.Mutex
	hubs map[string]*FeedHub
}

func NewHubManager() *HubManager {
	return &HubManager{hubs: make(map[string]*FeedHub)}
}

func (m *HubManager) GetHub(topic string) *FeedHub {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hubs[topic]
}

// Subscribe adds conn to the hub for topic, creating the hub if needed. It
// holds the manager lock throughout so CleanupHub cannot drop the hub
// between lookup and registration.
func (m *HubManager) Subscribe(topic string, conn *websocket.Conn) *FeedClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	hub, exists := m.hubs[topic]
	if !exists {
		hub = NewFeedHub(topic)
		m.hubs[topic] = hub
		slog.Debug("Created feed hub", "topic", topic)
	}
	return hub.AddClientConn(conn)
}

func (m *HubManager) CleanupHub(topic string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if hub, ok := m.hubs[topic]; ok && hub.IsEmpty() {
		delete(m.hubs, topic)
		slog.Debug("Cleaning up empty hub", "topic", topic)
	}
}

// Broadcast sends ev to the subscribers of topic, if there are any.
func (m *HubManager) Broadcast(topic string, ev api.SolveEvent) {
	hub := m.GetHub(topic)
	if hub == nil {
		return
	}
	data, err := sonic.Marshal(ev)
	if err != nil {
		slog.Error("Failed to encode solve event", "id", ev.ID, "err", err)
		return
	}
	hub.BroadcastMessage(data)
}

func (m *HubManager) Subscribers() int {
	m.mu.Lock()
	hubs := make([]*FeedHub, 0, len(m.hubs))
	for _, h := range m.hubs {
		hubs = append(hubs, h)
	}
	m.mu.Unlock()
	n := 0
	for _, h := range hubs {
		n += h.Len()
	}
	return n
}

func (m *HubManager) CloseAll() {
	m.mu.Lock()
	hubs := m.hubs
	m.hubs = make(map[string]*FeedHub)
	m.mu.Unlock()
	for _, h := range hubs {
		h.Cleanup()
	}
}
