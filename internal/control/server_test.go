package control

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/scienceol/awake/internal/protocol"
	"github.com/scienceol/awake/internal/toggle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"vawter.tech/stopper"
)

// fakeController flips a boolean and reports labels through the server,
// the way toggle.Controller does through its renderer.
type fakeController struct {
	mu      sync.Mutex
	enabled bool
	quits   int
	srv     *Server
}

func (f *fakeController) Activate() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enabled = !f.enabled
	f.srv.SetMenuLabel(toggle.LabelFor(f.state()))
	return nil
}

func (f *fakeController) Quit() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.quits++
	return nil
}

func (f *fakeController) State() toggle.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state()
}

func (f *fakeController) state() toggle.State {
	if f.enabled {
		return toggle.Enabled
	}
	return toggle.Disabled
}

func newTestServer(t *testing.T) (*Server, *fakeController, string) {
	t.Helper()
	srv := New(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	ctrl := &fakeController{srv: srv}
	srv.SetController(ctrl)

	hs := httptest.NewServer(srv)
	t.Cleanup(hs.Close)
	return srv, ctrl, "ws" + strings.TrimPrefix(hs.URL, "http") + Path
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) protocol.Response {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var resp protocol.Response
	require.NoError(t, conn.ReadJSON(&resp))
	return resp
}

func TestConnectedHandshake(t *testing.T) {
	_, _, url := newTestServer(t)
	conn := dial(t, url)

	msg := read(t, conn)
	assert.Equal(t, protocol.TypeConnected, msg.Type)
	assert.NotEmpty(t, msg.ClientID)
	assert.Equal(t, "Enable", msg.Label)
	assert.Equal(t, "disabled", msg.State)
}

func TestActivateBroadcastsLabel(t *testing.T) {
	srv, _, url := newTestServer(t)
	a := dial(t, url)
	b := dial(t, url)
	read(t, a)
	read(t, b)
	require.Eventually(t, func() bool { return srv.Clients() == 2 }, time.Second, 10*time.Millisecond)

	require.NoError(t, a.WriteJSON(protocol.Request{Type: protocol.TypeActivate}))

	for _, c := range []*websocket.Conn{a, b} {
		msg := read(t, c)
		assert.Equal(t, protocol.TypeLabel, msg.Type)
		assert.Equal(t, "Disable", msg.Label)
		assert.Equal(t, "enabled", msg.State)
	}
}

func TestRequests(t *testing.T) {
	_, ctrl, url := newTestServer(t)
	conn := dial(t, url)
	read(t, conn)

	require.NoError(t, conn.WriteJSON(protocol.Request{Type: protocol.TypePing}))
	assert.Equal(t, protocol.TypePong, read(t, conn).Type)

	require.NoError(t, conn.WriteJSON(protocol.Request{Type: protocol.TypeStatus}))
	status := read(t, conn)
	assert.Equal(t, protocol.TypeStatus, status.Type)
	assert.Equal(t, "Enable", status.Label)

	require.NoError(t, conn.WriteJSON(protocol.Request{Type: "reboot"}))
	unknown := read(t, conn)
	assert.Equal(t, protocol.TypeError, unknown.Type)
	assert.Contains(t, unknown.Error, "reboot")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	assert.Equal(t, protocol.TypeError, read(t, conn).Type)

	require.NoError(t, conn.WriteJSON(protocol.Request{Type: protocol.TypeQuit}))
	require.NoError(t, conn.WriteJSON(protocol.Request{Type: protocol.TypePing}))
	read(t, conn)
	ctrl.mu.Lock()
	assert.Equal(t, 1, ctrl.quits)
	ctrl.mu.Unlock()
}

func TestNotReadyWithoutController(t *testing.T) {
	srv := New(nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, Path, nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestServeStopsWithContext(t *testing.T) {
	srv := New(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	srv.SetController(&fakeController{srv: srv})

	sctx := stopper.WithContext(context.Background())
	addr, err := srv.Serve(sctx, "127.0.0.1:0")
	require.NoError(t, err)

	conn := dial(t, "ws://"+addr.String()+Path)
	read(t, conn)

	sctx.Stop(time.Second)
	require.NoError(t, sctx.Wait())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err, "connection closed on stop")
}
