// Package pushserver is the WebSocket push server (C8): it accepts
// subscribers, parses per-session control frames, and paces snapshot
// pushes from the shared broadcast store. Transport is
// github.com/gorilla/websocket, grounded on
// yencarnacion-exit-indicator's internal/server/ws.go hub/client pattern;
// the control-frame parser and session state machine are grounded on
// original_source/mbo-stream/src/ws_server.cpp.
package pushserver

import (
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/yu-ming-Wang/batonics-trading-systems-take-home/helper"
	"github.com/yu-ming-Wang/batonics-trading-systems-take-home/snapshot"
)

var upgrader = websocket.Upgrader{
	HandshakeTimeout: 10 * time.Second,
	ReadBufferSize:   4096,
	WriteBufferSize:  4096,
	CheckOrigin:      func(r *http.Request) bool { return true },
}

// Alerter receives a fire-and-forget notification; satisfied by *alert.Sink.
type Alerter interface {
	Notify(message string)
}

// Server owns the HTTP listener that upgrades connections to WebSocket
// sessions. DefaultSymbol and DefaultPushMs seed each new session's state.
type Server struct {
	store         *snapshot.Store
	defaultSymbol string
	defaultPushMs int
	alerter       Alerter

	httpServer *http.Server
}

// New builds a Server bound to store; it does not listen until Start is called.
func New(store *snapshot.Store, defaultSymbol string, defaultPushMs int, alerter Alerter) *Server {
	return &Server{
		store:         store,
		defaultSymbol: defaultSymbol,
		defaultPushMs: defaultPushMs,
		alerter:       alerter,
	}
}

// Start binds port and serves in a background goroutine. A bind failure
// is FatalConfig per the error-handling design: it hands one alert to the
// alerter, logs, and returns a non-nil error for the caller to treat as
// fatal (process exit). Notify does not wait for delivery, so the alert is
// not guaranteed to be sent before the process exits.
func (s *Server) Start(port int) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleUpgrade)

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	ln, err := listen(s.httpServer.Addr)
	if err != nil {
		if s.alerter != nil {
			s.alerter.Notify(fmt.Sprintf("push server failed to bind port %d: %v", port, err))
		}
		helper.Error("push server bind failed: %v", err)
		return err
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			helper.Error("push server stopped: %v", err)
		}
	}()
	helper.Info("push server listening on %s", s.httpServer.Addr)
	return nil
}

func (s *Server) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	sess := newSession(conn, s.store, s.defaultSymbol, s.defaultPushMs)
	sess.run()
}

// Close shuts the listener down; existing sessions drain on their own
// read/write errors once the underlying connections are closed.
func (s *Server) Close() error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Close()
}

func listen(addr string) (net.Listener, error) {
	return net.Listen("tcp", addr)
}
