package feed

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const writeWait = 10 * time.Second

type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) writeJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(v)
}

func (c *client) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

// Hub holds at most one live connection per operator. A new connection
// replaces the previous one.
type Hub struct {
	clients map[uuid.UUID]*client
	mutex   sync.RWMutex
	log     logrus.FieldLogger
}

func NewHub(log logrus.FieldLogger) *Hub {
	return &Hub{
		clients: make(map[uuid.UUID]*client),
		log:     log.WithField("module", "feed"),
	}
}

func (h *Hub) Register(operatorID uuid.UUID, conn *websocket.Conn) *client {
	c := &client{conn: conn}

	h.mutex.Lock()
	old := h.clients[operatorID]
	h.clients[operatorID] = c
	h.mutex.Unlock()

	if old != nil {
		_ = old.conn.Close()
	}
	return c
}

// Unregister drops c if it is still the operator's current connection.
func (h *Hub) Unregister(operatorID uuid.UUID, c *client) {
	h.mutex.Lock()
	if cur, ok := h.clients[operatorID]; ok && cur == c {
		delete(h.clients, operatorID)
	}
	h.mutex.Unlock()

	_ = c.conn.Close()
}

func (h *Hub) SendTo(operatorID uuid.UUID, event interface{}) bool {
	h.mutex.RLock()
	c, ok := h.clients[operatorID]
	h.mutex.RUnlock()
	if !ok {
		return false
	}

	if err := c.writeJSON(event); err != nil {
		h.log.WithError(err).WithField("operator_id", operatorID).Debug("feed write failed")
		h.Unregister(operatorID, c)
		return false
	}
	return true
}

func (h *Hub) IsOnline(operatorID uuid.UUID) bool {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	_, ok := h.clients[operatorID]
	return ok
}

func (h *Hub) OnlineCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

func (h *Hub) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for id, c := range h.clients {
		_ = c.conn.Close()
		delete(h.clients, id)
	}
}
