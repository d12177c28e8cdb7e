package pushserver

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/yu-ming-Wang/batonics-trading-systems-take-home/snapshot"
)

const (
	minDepth = 1
	maxDepth = 200

	minPushMs = 10
	maxPushMs = 5000

	defaultDepth = 10
)

// session is one subscriber's state, grounded on
// original_source/mbo-stream/src/ws_server.cpp's WsSession. The read-pump
// and tick-pump goroutines share this struct through mu, taking it only
// for the duration of a field read/write, never across a socket I/O call.
type session struct {
	conn  *websocket.Conn
	store *snapshot.Store

	mu            sync.Mutex
	symbol        string
	depth         int
	pushMs        int
	lastSent      *string
	writeInFlight bool

	writeMu sync.Mutex // serializes conn.WriteMessage across the two pumps
}

func newSession(conn *websocket.Conn, store *snapshot.Store, defaultSymbol string, defaultPushMs int) *session {
	if defaultPushMs < minPushMs || defaultPushMs > maxPushMs {
		defaultPushMs = 50
	}
	return &session{
		conn:   conn,
		store:  store,
		symbol: defaultSymbol,
		depth:  defaultDepth,
		pushMs: defaultPushMs,
	}
}

// run starts the read-pump and blocks until the session's tick-pump exits
// (on write error or closed connection).
func (s *session) run() {
	done := make(chan struct{})
	go s.readPump(done)
	s.tickPump(done)
}

func (s *session) readPump(done chan struct{}) {
	defer close(done)
	defer s.conn.Close()

	s.conn.SetReadLimit(4096)
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			return
		}

		cm, ok := parseControlMessage(string(data))
		if !ok {
			continue
		}
		s.applyControl(cm)
	}
}

func (s *session) applyControl(cm controlMessage) {
	s.mu.Lock()
	if cm.Symbol != "" {
		s.symbol = cm.Symbol
	}
	if cm.HasDep {
		d := cm.Depth
		if d < minDepth {
			d = minDepth
		}
		if d > maxDepth {
			d = maxDepth
		}
		s.depth = d
	}
	if cm.HasPMs {
		pm := cm.PushMs
		if pm < minPushMs {
			pm = minPushMs
		}
		if pm > maxPushMs {
			pm = maxPushMs
		}
		s.pushMs = pm
	}
	symbol, depth, pushMs := s.symbol, s.depth, s.pushMs
	s.mu.Unlock()

	s.writeText(ackJSON(symbol, depth, pushMs))
}

func (s *session) tickPump(readDone chan struct{}) {
	for {
		s.mu.Lock()
		interval := time.Duration(s.pushMs) * time.Millisecond
		s.mu.Unlock()

		select {
		case <-readDone:
			return
		case <-time.After(interval):
		}

		if s.tick() {
			return
		}
	}
}

// tick performs one data-plane step. Returns true if the session should
// end (write failed).
func (s *session) tick() bool {
	s.mu.Lock()
	if s.writeInFlight {
		s.mu.Unlock()
		return false
	}
	symbol := s.symbol
	s.mu.Unlock()

	cur := s.store.Load(symbol)
	if cur == nil {
		return false
	}

	s.mu.Lock()
	if s.lastSent == cur {
		s.mu.Unlock()
		return false
	}
	s.lastSent = cur
	s.writeInFlight = true
	s.mu.Unlock()

	err := s.writeText(*cur)

	s.mu.Lock()
	s.writeInFlight = false
	s.mu.Unlock()

	return err != nil
}

func (s *session) writeText(msg string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return s.conn.WriteMessage(websocket.TextMessage, []byte(msg))
}
