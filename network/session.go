package network

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"pong/room"
)

// session is one connected player: its websocket, outbound queue and, once
// bound, the room and slot it plays in.
type session struct {
	id   string
	srv  *Server
	ws   *websocket.Conn
	send chan []byte

	mu     sync.Mutex // guards closed; everything else is read-loop-only
	closed bool

	cur  *room.Room
	slot int
}

func newSession(srv *Server, ws *websocket.Conn) *session {
	return &session{
		id:   uuid.NewString(),
		srv:  srv,
		ws:   ws,
		send: make(chan []byte, sendBuffer),
	}
}

// Send queues a frame without blocking; a full queue drops the frame so a
// slow client can never stall a room's tick loop. Sending after teardown
// is a no-op.
func (s *session) Send(b []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	select {
	case s.send <- b:
	default:
		// drop for liveness
	}
	return nil
}

// readPump reads client frames until the connection dies, then tears the
// session down. Runs on the handler goroutine.
func (s *session) readPump() {
	defer s.teardown()
	s.ws.SetReadLimit(readLimit)
	_ = s.ws.SetReadDeadline(time.Now().Add(pongWait))
	s.ws.SetPongHandler(func(string) error {
		return s.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, payload, err := s.ws.ReadMessage()
		if err != nil {
			return
		}
		s.handleMessage(payload)
	}
}

// writePump drains the send queue onto the wire and keeps the connection
// alive with pings.
func (s *session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.ws.Close()
	}()

	for {
		select {
		case b, ok := <-s.send:
			if !ok {
				return
			}
			_ = s.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.ws.WriteMessage(websocket.TextMessage, b); err != nil {
				return
			}
		case <-ticker.C:
			_ = s.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// teardown posts Leave to the bound room (terminating the match) and shuts
// the writer down. Disconnect is not an error: it is the normal end of a
// match.
func (s *session) teardown() {
	if s.cur != nil {
		s.cur.Post(room.Leave{Slot: s.slot})
		s.cur = nil
	}
	s.mu.Lock()
	s.closed = true
	close(s.send)
	s.mu.Unlock()
	s.srv.log.Infow("client disconnected", "session", s.id)
}
