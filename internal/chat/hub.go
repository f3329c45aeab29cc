// Package chat fans chat messages out to workspace members over
// WebSocket connections.
package chat

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// sendBuffer is the per-client outbound queue; clients that fall
	// this far behind are disconnected
	sendBuffer = 32
)

// Message is a chat message exchanged over the wire
type Message struct {
	ID         string    `json:"id"`
	Sender     string    `json:"senderId"`
	SenderName string    `json:"senderName,omitempty"`
	Body       string    `json:"message"`
	Type       string    `json:"type"` // text | system
	Timestamp  time.Time `json:"timestamp"`
}

// PersistFunc stores a message durably before it is broadcast
type PersistFunc func(code string, m Message) error

// Hub manages WebSocket connections grouped by workspace code
type Hub struct {
	persist PersistFunc

	mu    sync.RWMutex
	rooms map[string]map[*client]bool
}

type client struct {
	hub  *Hub
	code string
	user string
	name string
	conn *websocket.Conn
	send chan Message
}

// NewHub creates a hub; persist may be nil for transient chat
func NewHub(persist PersistFunc) *Hub {
	return &Hub{
		persist: persist,
		rooms:   make(map[string]map[*client]bool),
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Workspaces gate access by invite code
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWS upgrades the request and joins the connection to a workspace
// room. The caller is expected to have verified the workspace exists.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, code, user, name string) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &client{
		hub:  h,
		code: code,
		user: user,
		name: name,
		conn: conn,
		send: make(chan Message, sendBuffer),
	}

	h.mu.Lock()
	room, ok := h.rooms[code]
	if !ok {
		room = make(map[*client]bool)
		h.rooms[code] = room
	}
	room[c] = true
	h.mu.Unlock()

	go c.writePump()
	go c.readPump()
	return nil
}

// Broadcast persists a message and delivers it to every connection in
// the workspace room. Slow clients are dropped rather than blocked on.
func (h *Hub) Broadcast(code string, m Message) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now()
	}
	if m.Type == "" {
		m.Type = "text"
	}

	if h.persist != nil {
		if err := h.persist(code, m); err != nil {
			log.Printf("chat: persisting message in %s failed: %v", code, err)
		}
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[code] {
		select {
		case c.send <- m:
		default:
			go c.conn.Close()
		}
	}
}

// RoomSize returns the number of live connections in a workspace
func (h *Hub) RoomSize(code string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[code])
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[c.code]
	if !ok {
		return
	}
	if _, ok := room[c]; ok {
		delete(room, c)
		close(c.send)
	}
	if len(room) == 0 {
		delete(h.rooms, c.code)
	}
}

func (c *client) readPump() {
	defer func() {
		c.hub.remove(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var in struct {
			Message string `json:"message"`
		}
		if err := c.conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("chat: read from %s failed: %v", c.user, err)
			}
			return
		}
		if in.Message == "" {
			continue
		}
		c.hub.Broadcast(c.code, Message{
			Sender:     c.user,
			SenderName: c.name,
			Body:       in.Message,
		})
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case m, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(m); err != nil {
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
