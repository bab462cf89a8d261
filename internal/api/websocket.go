package api

import (
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/notely/notely/internal/auth"
	"github.com/notely/notely/internal/core"
	"github.com/notely/notely/internal/logging"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
	wsSendBuffer = 16
)

// WebSocketMessage is the envelope pushed to clients
type WebSocketMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// envelope addresses a message to one user, or everyone when user is empty.
// When accepted is set, Run reports how many clients queued the message.
type envelope struct {
	user     core.UserID
	msg      WebSocketMessage
	accepted chan int
}

type wsClient struct {
	id   string
	user core.UserID
	conn *websocket.Conn
	send chan WebSocketMessage
}

// WebSocketHub fans server events out to connected clients
type WebSocketHub struct {
	clients    map[*wsClient]bool
	register   chan *wsClient
	unregister chan *wsClient
	broadcast  chan envelope
	done       chan struct{}
	stopOnce   sync.Once
	upgrader   websocket.Upgrader

	mu    sync.RWMutex
	count int
	users map[core.UserID]int
}

// NewWebSocketHub creates a hub; call Run to start delivering
func NewWebSocketHub() *WebSocketHub {
	return &WebSocketHub{
		clients:    make(map[*wsClient]bool),
		register:   make(chan *wsClient),
		unregister: make(chan *wsClient),
		broadcast:  make(chan envelope, 64),
		done:       make(chan struct{}),
		users:      make(map[core.UserID]int),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Origins are enforced by CORS and the session token
			},
		},
	}
}

// Run delivers messages until Stop is called
func (h *WebSocketHub) Run() {
	for {
		select {
		case <-h.done:
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			h.recount()
			return

		case c := <-h.register:
			h.clients[c] = true
			h.recount()
			logging.Debug("websocket client %s connected (user %s)", c.id, c.user)

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				h.recount()
			}

		case env := <-h.broadcast:
			accepted, dropped := 0, false
			for c := range h.clients {
				if env.user != "" && c.user != env.user {
					continue
				}
				select {
				case c.send <- env.msg:
					accepted++
				default:
					// Slow client, drop it
					delete(h.clients, c)
					close(c.send)
					dropped = true
				}
			}
			if dropped {
				h.recount()
			}
			if env.accepted != nil {
				env.accepted <- accepted
			}
		}
	}
}

// Stop ends Run and closes every client
func (h *WebSocketHub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// Broadcast sends msg to every client
func (h *WebSocketHub) Broadcast(msg WebSocketMessage) {
	h.enqueue(envelope{msg: msg})
}

// NotifyUser sends an event to the clients of one user. It reports whether
// at least one of them queued it; false when the user is offline, the hub is
// stopped or busy past wsWriteWait.
func (h *WebSocketHub) NotifyUser(user core.UserID, event string, payload interface{}) bool {
	if !h.Connected(user) {
		return false
	}

	env := envelope{
		user:     user,
		msg:      WebSocketMessage{Type: event, Data: payload, Timestamp: time.Now()},
		accepted: make(chan int, 1),
	}
	timeout := time.NewTimer(wsWriteWait)
	defer timeout.Stop()

	select {
	case h.broadcast <- env:
	case <-h.done:
		return false
	case <-timeout.C:
		logging.Warn("websocket hub busy, %s for %s not sent", event, user)
		return false
	}

	select {
	case n := <-env.accepted:
		return n > 0
	case <-h.done:
		return false
	case <-timeout.C:
		return false
	}
}

func (h *WebSocketHub) enqueue(env envelope) {
	select {
	case h.broadcast <- env:
	case <-h.done:
	default:
		logging.Warn("websocket broadcast queue full, dropping %s", env.msg.Type)
	}
}

// ClientCount returns the number of connected clients
func (h *WebSocketHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}

// Connected reports whether the user has at least one open client
func (h *WebSocketHub) Connected(user core.UserID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.users[user] > 0
}

// ConnectedUsers lists users with at least one open client, sorted
func (h *WebSocketHub) ConnectedUsers() []core.UserID {
	h.mu.RLock()
	users := make([]core.UserID, 0, len(h.users))
	for u := range h.users {
		users = append(users, u)
	}
	h.mu.RUnlock()

	sort.Slice(users, func(i, j int) bool { return users[i] < users[j] })
	return users
}

// recount refreshes the counters read by other goroutines; only Run calls it
func (h *WebSocketHub) recount() {
	users := make(map[core.UserID]int)
	for c := range h.clients {
		users[c.user]++
	}

	h.mu.Lock()
	h.count = len(h.clients)
	h.users = users
	h.mu.Unlock()
}

// ServeHTTP upgrades the request; the user must already be in the context
func (h *WebSocketHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFrom(r.Context())
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn("websocket upgrade failed: %v", err)
		return
	}

	c := &wsClient{
		id:   uuid.New().String(),
		user: user,
		conn: conn,
		send: make(chan WebSocketMessage, wsSendBuffer),
	}

	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go h.writePump(c)
	h.readPump(c)
}

// readPump only handles control frames; clients do not send events
func (h *WebSocketHub) readPump(c *wsClient) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *WebSocketHub) writePump(c *wsClient) {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
