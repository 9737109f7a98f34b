package ws

import (
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/repair-desk/internal/auth"
)

const heartbeatInterval = 30 * time.Second

// Conn is the subset of a websocket connection the hub needs. Satisfied by
// *websocket.Conn; tests substitute fakes.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// client pairs a user's connection with a write lock, since gorilla
// connections allow only one concurrent writer.
type client struct {
	id   string
	conn Conn
	mu   sync.Mutex
}

func (c *client) send(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

// onlineUsersFrame is the full online-set snapshot pushed on every change
type onlineUsersFrame struct {
	Type string   `json:"type"`
	IDs  []string `json:"ids"`
}

// statusChangeFrame announces a single user going online or offline
type statusChangeFrame struct {
	Type      string `json:"type"`
	ID        string `json:"id"`
	IsOnline  bool   `json:"isOnline"`
	Timestamp string `json:"timestamp"`
}

type heartbeatFrame struct {
	Type string `json:"type"`
}

// Hub tracks the set of users currently holding an open websocket to this
// process. The online set is exactly the key set of the connection table;
// there is no second structure to reconcile. A Hub is constructed once in
// main and injected wherever presence or push delivery is needed.
type Hub struct {
	auth *auth.Service

	mu    sync.RWMutex
	conns map[string]*client

	upgrader websocket.Upgrader
}

// NewHub creates a hub using the given auth service for handshake
// verification.
func NewHub(authService *auth.Service) *Hub {
	return &Hub{
		auth:  authService,
		conns: make(map[string]*client),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// HandleWS upgrades the request and runs the connection lifecycle. The
// identity token is carried as a ?token= query parameter; a missing or
// invalid token closes the channel with policy violation code 1008.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	token := h.auth.TokenFromQuery(r)
	if token == "" {
		closeWithPolicyViolation(conn, "Authentication required")
		return
	}

	claims, err := h.auth.ValidateToken(token)
	if err != nil {
		closeWithPolicyViolation(conn, "Invalid token")
		return
	}

	id := claims.UserID
	h.Register(id, conn)
	log.WithField("user", id).Info("user connected")

	// Snapshot for the newly connected client
	c := h.lookup(id)
	if c != nil {
		c.send(onlineUsersFrame{Type: "ONLINE_USERS", IDs: h.OnlineUsers()})
	}

	done := make(chan struct{})
	go h.heartbeat(id, conn, done)

	// Drain client frames until the transport signals close or error.
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			break
		}
		log.WithField("user", id).Debugf("received message: %s", message)
	}

	close(done)
	conn.Close()
	h.Unregister(id)
	log.WithField("user", id).Info("user disconnected")
}

// heartbeat pushes an advisory keep-alive frame every interval while the
// connection is open.
func (h *Hub) heartbeat(id string, conn Conn, done <-chan struct{}) {
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			c := h.lookup(id)
			if c == nil || c.conn != conn {
				return
			}
			if err := c.send(heartbeatFrame{Type: "heartbeat"}); err != nil {
				return
			}
		}
	}
}

// Register records a user's connection and broadcasts the updated online
// set. A second connection for the same user replaces the first in the
// table without closing it; the stale connection is reaped when its own
// read loop ends.
func (h *Hub) Register(id string, conn Conn) {
	h.mu.Lock()
	h.conns[id] = &client{id: id, conn: conn}
	h.mu.Unlock()

	h.broadcastOnlineUsers()
	h.broadcastUserStatus(id, true)
}

// Unregister removes a user from the connection table. Removing an absent
// user is a no-op, so double-removal on close-then-error is safe.
func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	_, present := h.conns[id]
	delete(h.conns, id)
	h.mu.Unlock()

	if !present {
		return
	}
	h.broadcastOnlineUsers()
	h.broadcastUserStatus(id, false)
}

// OnlineUsers returns the current online set as a sorted slice
func (h *Hub) OnlineUsers() []string {
	h.mu.RLock()
	ids := make([]string, 0, len(h.conns))
	for id := range h.conns {
		ids = append(ids, id)
	}
	h.mu.RUnlock()

	sort.Strings(ids)
	return ids
}

// IsOnline reports whether the user currently holds a connection
func (h *Hub) IsOnline(id string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.conns[id]
	return ok
}

// NotifyUser pushes a payload to one user if connected. Returns whether
// delivery was attempted; a disconnected recipient is not an error.
func (h *Hub) NotifyUser(id string, payload interface{}) bool {
	c := h.lookup(id)
	if c == nil {
		return false
	}
	if err := c.send(payload); err != nil {
		log.WithError(err).WithField("user", id).Warn("failed to push to user")
		h.Unregister(id)
		return false
	}
	return true
}

// BroadcastToAll pushes a payload to every connected user, skipping any
// connection found dead. Returns the count of attempted recipients.
func (h *Hub) BroadcastToAll(payload interface{}) int {
	return h.broadcast(payload)
}

func (h *Hub) broadcastOnlineUsers() {
	h.broadcast(onlineUsersFrame{Type: "ONLINE_USERS", IDs: h.OnlineUsers()})
}

func (h *Hub) broadcastUserStatus(id string, online bool) {
	h.broadcast(statusChangeFrame{
		Type:      "USER_STATUS_CHANGE",
		ID:        id,
		IsOnline:  online,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Hub) broadcast(payload interface{}) int {
	h.mu.RLock()
	clients := make([]*client, 0, len(h.conns))
	for _, c := range h.conns {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	count := 0
	for _, c := range clients {
		if err := c.send(payload); err != nil {
			log.WithField("user", c.id).Debug("skipping dead connection")
			continue
		}
		count++
	}
	return count
}

func (h *Hub) lookup(id string) *client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.conns[id]
}

// closeWithPolicyViolation rejects a handshake with close code 1008 and
// the given reason.
func closeWithPolicyViolation(conn *websocket.Conn, reason string) {
	deadline := time.Now().Add(time.Second)
	conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason),
		deadline,
	)
	conn.Close()
}
