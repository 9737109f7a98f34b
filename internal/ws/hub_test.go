package ws

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/repair-desk/internal/auth"
	"github.com/ukydev/repair-desk/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeConn records every frame written to it
type fakeConn struct {
	mu     sync.Mutex
	frames []interface{}
	fail   bool
	closed bool
}

func (f *fakeConn) WriteJSON(v interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("connection gone")
	}
	f.frames = append(f.frames, v)
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) frameCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.frames)
}

func (f *fakeConn) lastFrames(n int) []interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n > len(f.frames) {
		n = len(f.frames)
	}
	return append([]interface{}{}, f.frames[len(f.frames)-n:]...)
}

func newTestHub() *Hub {
	service, _ := auth.NewService()
	return NewHub(service)
}

func TestHub_RegisterAndQuery(t *testing.T) {
	hub := newTestHub()

	hub.Register("u1", &fakeConn{})
	hub.Register("u2", &fakeConn{})

	assert.Equal(t, []string{"u1", "u2"}, hub.OnlineUsers())
	assert.True(t, hub.IsOnline("u1"))
	assert.True(t, hub.IsOnline("u2"))
	assert.False(t, hub.IsOnline("u3"))
}

func TestHub_UnregisterRemovesUser(t *testing.T) {
	hub := newTestHub()

	hub.Register("u1", &fakeConn{})
	hub.Register("u2", &fakeConn{})

	hub.Unregister("u1")
	assert.Equal(t, []string{"u2"}, hub.OnlineUsers())
	assert.False(t, hub.IsOnline("u1"))
}

func TestHub_UnregisterIsIdempotent(t *testing.T) {
	hub := newTestHub()
	c2 := &fakeConn{}

	hub.Register("u1", &fakeConn{})
	hub.Register("u2", c2)

	hub.Unregister("u1")
	framesAfterFirst := c2.frameCount()

	// Double removal is a no-op: state unchanged, nothing broadcast
	hub.Unregister("u1")
	assert.Equal(t, []string{"u2"}, hub.OnlineUsers())
	assert.Equal(t, framesAfterFirst, c2.frameCount())
}

func TestHub_RegisterBroadcastsSnapshotAndStatus(t *testing.T) {
	hub := newTestHub()
	c1 := &fakeConn{}

	hub.Register("u1", c1)
	hub.Register("u2", &fakeConn{})

	// u1 saw its own registration broadcasts plus u2's
	frames := c1.lastFrames(2)
	require.Len(t, frames, 2)

	snapshot, ok := frames[0].(onlineUsersFrame)
	require.True(t, ok)
	assert.Equal(t, "ONLINE_USERS", snapshot.Type)
	assert.Equal(t, []string{"u1", "u2"}, snapshot.IDs)

	status, ok := frames[1].(statusChangeFrame)
	require.True(t, ok)
	assert.Equal(t, "USER_STATUS_CHANGE", status.Type)
	assert.Equal(t, "u2", status.ID)
	assert.True(t, status.IsOnline)
	assert.NotEmpty(t, status.Timestamp)
}

func TestHub_UnregisterBroadcastsOfflineStatus(t *testing.T) {
	hub := newTestHub()
	c2 := &fakeConn{}

	hub.Register("u1", &fakeConn{})
	hub.Register("u2", c2)
	hub.Unregister("u1")

	frames := c2.lastFrames(2)
	require.Len(t, frames, 2)

	snapshot, ok := frames[0].(onlineUsersFrame)
	require.True(t, ok)
	assert.Equal(t, []string{"u2"}, snapshot.IDs)

	status, ok := frames[1].(statusChangeFrame)
	require.True(t, ok)
	assert.Equal(t, "u1", status.ID)
	assert.False(t, status.IsOnline)
}

// A second connection for the same user replaces the first handle in the
// table without closing it. This pins the current behavior; the stale
// connection is only reaped by its own read loop.
func TestHub_DuplicateConnectionReplacesHandle(t *testing.T) {
	hub := newTestHub()
	first := &fakeConn{}
	second := &fakeConn{}

	hub.Register("u1", first)
	hub.Register("u1", second)

	assert.Equal(t, []string{"u1"}, hub.OnlineUsers())
	assert.False(t, first.closed)

	firstFrames := first.frameCount()
	hub.NotifyUser("u1", map[string]string{"type": "PROFILE_VIEWED"})

	// Only the second handle receives pushes now
	assert.Equal(t, firstFrames, first.frameCount())
	assert.Equal(t, map[string]string{"type": "PROFILE_VIEWED"}, second.lastFrames(1)[0])
}

func TestHub_NotifyUser(t *testing.T) {
	hub := newTestHub()
	c1 := &fakeConn{}
	hub.Register("u1", c1)

	payload := map[string]string{"type": "SYSTEM_ALERT"}

	assert.True(t, hub.NotifyUser("u1", payload))
	assert.Equal(t, payload, c1.lastFrames(1)[0])

	// Disconnected recipient: delivery not attempted, not an error
	assert.False(t, hub.NotifyUser("nobody", payload))
}

func TestHub_NotifyUser_DeadConnectionIsDropped(t *testing.T) {
	hub := newTestHub()
	c1 := &fakeConn{fail: true}
	hub.Register("u1", c1)

	assert.False(t, hub.NotifyUser("u1", map[string]string{"type": "SYSTEM_ALERT"}))
	assert.False(t, hub.IsOnline("u1"))
}

func TestHub_BroadcastToAll(t *testing.T) {
	hub := newTestHub()
	c1 := &fakeConn{}
	c2 := &fakeConn{}
	dead := &fakeConn{fail: true}

	hub.Register("u1", c1)
	hub.Register("u2", c2)
	hub.Register("u3", dead)

	payload := map[string]string{"type": "SYSTEM_ALERT"}
	count := hub.BroadcastToAll(payload)

	// The dead connection is skipped, not retried, not an error
	assert.Equal(t, 2, count)
	assert.Equal(t, payload, c1.lastFrames(1)[0])
	assert.Equal(t, payload, c2.lastFrames(1)[0])
}

func TestHub_BroadcastToAll_Empty(t *testing.T) {
	hub := newTestHub()
	assert.Equal(t, 0, hub.BroadcastToAll(map[string]string{"type": "SYSTEM_ALERT"}))
}

func dialTestServer(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func TestHandleWS_RejectsMissingToken(t *testing.T) {
	hub := newTestHub()
	server := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn := dialTestServer(t, url)
	defer conn.Close()

	_, _, err := conn.ReadMessage()
	closeErr := &websocket.CloseError{}
	require.ErrorAs(t, err, &closeErr)
	assert.Equal(t, websocket.ClosePolicyViolation, closeErr.Code)
	assert.Equal(t, "Authentication required", closeErr.Text)
}

func TestHandleWS_RejectsInvalidToken(t *testing.T) {
	hub := newTestHub()
	server := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "?token=garbage"
	conn := dialTestServer(t, url)
	defer conn.Close()

	_, _, err := conn.ReadMessage()
	closeErr := &websocket.CloseError{}
	require.ErrorAs(t, err, &closeErr)
	assert.Equal(t, websocket.ClosePolicyViolation, closeErr.Code)
	assert.Equal(t, "Invalid token", closeErr.Text)
}

func TestHandleWS_AuthenticatedConnectionGetsSnapshot(t *testing.T) {
	service, _ := auth.NewService()
	hub := NewHub(service)
	server := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	defer server.Close()

	user := &models.User{ID: primitive.NewObjectID(), Name: "Tom Hale", Role: models.RoleTechnician}
	token, err := service.GenerateToken(user)
	require.NoError(t, err)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "?token=" + token
	conn := dialTestServer(t, url)
	defer conn.Close()

	// First frames are the snapshot broadcast and the status change,
	// followed by the snapshot addressed to this client.
	deadline := time.Now().Add(2 * time.Second)
	conn.SetReadDeadline(deadline)

	sawSnapshot := false
	for i := 0; i < 3; i++ {
		var frame map[string]interface{}
		require.NoError(t, conn.ReadJSON(&frame))
		if frame["type"] == "ONLINE_USERS" {
			ids, ok := frame["ids"].([]interface{})
			require.True(t, ok)
			assert.Contains(t, ids, user.ID.Hex())
			sawSnapshot = true
		}
	}
	assert.True(t, sawSnapshot)

	conn.Close()
	waitUntil(t, func() bool { return !hub.IsOnline(user.ID.Hex()) })
}

func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	assert.True(t, cond())
}
