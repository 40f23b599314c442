package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait = 5 * time.Second
	// sendBuffer is how many events may queue for one connection before it
	// is considered stuck and dropped.
	sendBuffer = 64
)

// EventInvalidate tells clients to mark every cached query whose key starts
// with Key as stale.
const EventInvalidate = "invalidate"

type Event struct {
	Type string   `json:"type"`
	Key  []string `json:"key"`
}

type client struct {
	conn     *websocket.Conn
	userID   string
	send     chan []byte
	done     chan struct{}
	lastSeen time.Time
}

// writeLoop is the only writer of data frames on c.conn.
func (m *Manager) writeLoop(id string, c *client) {
	for {
		select {
		case <-c.done:
			return
		case payload := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				m.log.Debug("dropping websocket connection after write error",
					zap.String("conn_id", id), zap.String("user_id", c.userID), zap.Error(err))
				m.Unregister(id)
				return
			}
		}
	}
}

// Manager keeps track of live-update websocket connections and fans
// invalidation events out to all of them.
type Manager struct {
	mu          sync.RWMutex
	connections map[string]*client // connection id -> client
	log         *zap.Logger
	now         func() time.Time

	// OnCount, when set, is called with the connection count after every
	// register or unregister.
	OnCount func(n int)
	// OnPublish, when set, is called with the resource name of every
	// published event.
	OnPublish func(resource string)
}

func NewManager(log *zap.Logger) *Manager {
	return &Manager{
		connections: make(map[string]*client),
		log:         log,
		now:         time.Now,
	}
}

// Register adds a connection for userID and returns its connection id.
func (m *Manager) Register(userID string, conn *websocket.Conn) string {
	id := uuid.New().String()
	c := &client{
		conn:     conn,
		userID:   userID,
		send:     make(chan []byte, sendBuffer),
		done:     make(chan struct{}),
		lastSeen: m.now(),
	}
	m.mu.Lock()
	m.connections[id] = c
	n := len(m.connections)
	m.mu.Unlock()
	go m.writeLoop(id, c)
	m.reportCount(n)
	return id
}

// Unregister closes and removes a connection.
func (m *Manager) Unregister(id string) {
	m.mu.Lock()
	c, ok := m.connections[id]
	if ok {
		delete(m.connections, id)
	}
	n := len(m.connections)
	m.mu.Unlock()
	if !ok {
		return
	}
	close(c.done)
	_ = c.conn.Close()
	m.reportCount(n)
}

// Close drops every connection.
func (m *Manager) Close() {
	m.mu.RLock()
	ids := make([]string, 0, len(m.connections))
	for id := range m.connections {
		ids = append(ids, id)
	}
	m.mu.RUnlock()
	for _, id := range ids {
		m.Unregister(id)
	}
}

// Touch records activity on a connection.
func (m *Manager) Touch(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.connections[id]; ok {
		c.lastSeen = m.now()
	}
}

// Publish queues an invalidation event for key on every connection and
// returns without waiting for any write. A connection whose queue is full
// is dropped.
func (m *Manager) Publish(key ...string) {
	if len(key) == 0 {
		return
	}
	payload, err := json.Marshal(Event{Type: EventInvalidate, Key: key})
	if err != nil {
		m.log.Error("marshal invalidation event", zap.Error(err))
		return
	}
	if m.OnPublish != nil {
		m.OnPublish(key[0])
	}

	var stuck []string
	m.mu.RLock()
	for id, c := range m.connections {
		select {
		case c.send <- payload:
		default:
			stuck = append(stuck, id)
		}
	}
	m.mu.RUnlock()

	for _, id := range stuck {
		m.log.Debug("dropping websocket connection with a full send queue", zap.String("conn_id", id))
		m.Unregister(id)
	}
}

// Prune closes connections idle for longer than maxIdle and returns how many
// were closed.
func (m *Manager) Prune(maxIdle time.Duration) int {
	cutoff := m.now().Add(-maxIdle)
	var stale []string
	m.mu.RLock()
	for id, c := range m.connections {
		if c.lastSeen.Before(cutoff) {
			stale = append(stale, id)
		}
	}
	m.mu.RUnlock()

	for _, id := range stale {
		m.Unregister(id)
	}
	return len(stale)
}

// Count returns the number of open connections.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.connections)
}

// Users returns the distinct user ids with at least one open connection.
func (m *Manager) Users() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	seen := make(map[string]struct{}, len(m.connections))
	ids := make([]string, 0, len(m.connections))
	for _, c := range m.connections {
		if _, ok := seen[c.userID]; ok {
			continue
		}
		seen[c.userID] = struct{}{}
		ids = append(ids, c.userID)
	}
	return ids
}

func (m *Manager) reportCount(n int) {
	if m.OnCount != nil {
		m.OnCount(n)
	}
}
