package network

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"pong/room"
)

const (
	readLimit  = 1 << 20 // 1MB
	pongWait   = 60 * time.Second
	pingPeriod = 25 * time.Second
	writeWait  = 10 * time.Second
	sendBuffer = 64
)

// Server accepts websocket connections and routes their messages to the
// session directory and the player's current room.
type Server struct {
	rooms    *room.Manager
	log      *zap.SugaredLogger
	upgrader websocket.Upgrader
}

func NewServer(rooms *room.Manager, log *zap.SugaredLogger) *Server {
	return &Server{
		rooms: rooms,
		log:   log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// For dev, allow all origins. Lock this down in prod.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// HandleWS upgrades the connection and runs its read loop until the client
// goes away.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warnw("upgrade failed", "err", err)
		return
	}

	sess := newSession(s, ws)
	s.log.Infow("client connected", "session", sess.id)
	go sess.writePump()
	sess.readPump()
}
