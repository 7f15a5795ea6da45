// Package control serves a local websocket endpoint that lets other
// programs flip the toggle and follow its label.
package control

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/scienceol/awake/internal/logging"
	"github.com/scienceol/awake/internal/protocol"
	"github.com/scienceol/awake/internal/toggle"
	"vawter.tech/stopper"
)

const (
	// Path is the websocket endpoint.
	Path = "/ws"

	writeTimeout    = 10 * time.Second
	writeChanSize   = 32
	shutdownTimeout = 2 * time.Second
)

// Controller is the part of toggle.Controller the server drives.
type Controller interface {
	Activate() error
	Quit() error
	State() toggle.State
}

// Server accepts control connections and broadcasts label changes.
type Server struct {
	ctrl Controller
	log  *slog.Logger

	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[string]*client
}

type client struct {
	conn *websocket.Conn
	ch   chan protocol.Response
}

// New creates a Server. Call SetController before serving; the server is
// usually built before the controller because it is one of its renderers.
func New(logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		log:     logger,
		clients: make(map[string]*client),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// SetController attaches the controller events are dispatched to.
func (s *Server) SetController(c Controller) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctrl = c
}

func (s *Server) controller() Controller {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl
}

// SetMenuLabel broadcasts the label to every connected client. It never
// blocks: clients whose queue is full miss the update.
func (s *Server) SetMenuLabel(text string) {
	state := toggle.Disabled
	if text == toggle.LabelDisable {
		state = toggle.Enabled
	}
	msg := protocol.Response{Type: protocol.TypeLabel, Label: text, State: state.String()}

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, c := range s.clients {
		select {
		case c.ch <- msg:
		default:
			s.log.Debug("control client queue full, label dropped", "client", id)
		}
	}
}

// Clients returns the number of connected clients.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Serve listens on addr until sctx stops.
func (s *Server) Serve(sctx *stopper.Context, addr string) (net.Addr, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("control listen: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle(Path, s)
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	sctx.Go(func(sctx *stopper.Context) error {
		defer logging.LogPanic("control-serve", nil)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("control server stopped", "error", err)
			return err
		}
		return nil
	})
	sctx.Go(func(sctx *stopper.Context) error {
		<-sctx.Stopping()
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		// Shutdown does not close hijacked websocket connections.
		s.closeAll()
		return srv.Shutdown(ctx)
	})

	s.log.Info("control server listening", "addr", ln.Addr().String())
	return ln.Addr(), nil
}

// ServeHTTP upgrades the request and runs the connection until the
// client goes away.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctrl := s.controller()
	if ctrl == nil {
		http.Error(w, "controller not ready", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("control upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	id := uuid.NewString()
	ch := make(chan protocol.Response, writeChanSize)
	done := make(chan struct{})

	s.mu.Lock()
	s.clients[id] = &client{conn: conn, ch: ch}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.clients, id)
		s.mu.Unlock()
		close(done)
	}()

	s.log.Debug("control client connected", "client", id, "remote", r.RemoteAddr)

	state := ctrl.State()
	ch <- protocol.Response{
		Type:     protocol.TypeConnected,
		ClientID: id,
		Label:    toggle.LabelFor(state),
		State:    state.String(),
	}

	go s.writeLoop(conn, ch, done)

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			s.log.Debug("control client disconnected", "client", id, "error", err)
			return
		}

		var req protocol.Request
		if err := json.Unmarshal(raw, &req); err != nil {
			s.send(ch, protocol.Response{Type: protocol.TypeError, Error: "invalid message: " + err.Error()})
			continue
		}
		s.handle(ctrl, ch, req)
	}
}

func (s *Server) handle(ctrl Controller, ch chan protocol.Response, req protocol.Request) {
	switch req.Type {
	case protocol.TypeActivate:
		// Failures are logged by the controller. The label broadcast
		// tells the client whether anything changed.
		_ = ctrl.Activate()
	case protocol.TypeQuit:
		_ = ctrl.Quit()
	case protocol.TypeStatus:
		state := ctrl.State()
		s.send(ch, protocol.Response{Type: protocol.TypeStatus, Label: toggle.LabelFor(state), State: state.String()})
	case protocol.TypePing:
		s.send(ch, protocol.Response{Type: protocol.TypePong})
	default:
		s.send(ch, protocol.Response{Type: protocol.TypeError, Error: fmt.Sprintf("unknown request type: %s", req.Type)})
	}
}

// send enqueues a reply. Non-blocking, drops the message if the buffer is full.
func (s *Server) send(ch chan protocol.Response, msg protocol.Response) {
	select {
	case ch <- msg:
	default:
	}
}

// writeLoop is the single goroutine that writes to the connection.
func (s *Server) writeLoop(conn *websocket.Conn, ch <-chan protocol.Response, done <-chan struct{}) {
	defer logging.LogPanic("control-write", nil)
	for {
		select {
		case <-done:
			return
		case msg := <-ch:
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(msg); err != nil {
				s.log.Debug("control write error", "error", err)
				_ = conn.Close()
				return
			}
		}
	}
}

// closeAll drops every client connection. Their read loops then fail
// and unregister them.
func (s *Server) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, c := range s.clients {
		s.log.Debug("closing control client", "client", id)
		_ = c.conn.Close()
	}
}
