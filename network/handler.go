package network

import (
	"pong/game"
	"pong/protocol"
	"pong/room"
)

func (s *session) handleMessage(payload []byte) {
	env, err := protocol.DecodeEnvelope(payload)
	if err != nil {
		s.srv.log.Debugw("malformed frame", "session", s.id, "err", err)
		s.sendError("invalid message format")
		return
	}

	switch env.T {
	case protocol.MsgCreate:
		s.handleCreate()
	case protocol.MsgJoin:
		j, err := protocol.DecodePayload[protocol.Join](env)
		if err != nil {
			s.sendError("invalid message format")
			return
		}
		s.handleJoin(j.Code)
	case protocol.MsgMove:
		mv, err := protocol.DecodePayload[protocol.Move](env)
		if err != nil {
			s.sendError("invalid message format")
			return
		}
		s.handleMove(mv.Direction)
	case protocol.MsgReady:
		s.handleReady()
	default:
		s.sendError("unknown message type")
	}
}

func (s *session) handleCreate() {
	if s.inRoom() {
		s.sendError("already in a room")
		return
	}
	rm := s.srv.rooms.Create()
	res, errMsg := s.joinRoom(rm)
	if errMsg != "" {
		s.sendError(errMsg)
		return
	}
	s.reply(protocol.MsgRoomCreated, protocol.RoomCreated{Code: rm.Code})
	s.reply(protocol.MsgRoomJoined, protocol.RoomJoined{Code: rm.Code, Slot: res.Slot})
	s.reply(protocol.MsgWaiting, nil)
}

func (s *session) handleJoin(code string) {
	if s.inRoom() {
		s.sendError("already in a room")
		return
	}
	rm, ok := s.srv.rooms.Get(code)
	if !ok {
		s.sendError("room not found")
		return
	}
	res, errMsg := s.joinRoom(rm)
	if errMsg != "" {
		s.sendError(errMsg)
		return
	}
	s.reply(protocol.MsgRoomJoined, protocol.RoomJoined{Code: rm.Code, Slot: res.Slot})
}

func (s *session) handleMove(direction string) {
	if !s.inRoom() {
		s.sendError("not in a room")
		return
	}
	dir, ok := parseDirection(direction)
	if !ok {
		s.sendError("invalid direction")
		return
	}
	s.cur.Post(room.Move{Slot: s.slot, Direction: dir})
}

func (s *session) handleReady() {
	if !s.inRoom() {
		s.sendError("not in a room")
		return
	}
	s.cur.Post(room.Ready{Slot: s.slot})
}

// joinRoom asks the room for a slot and binds the session on success. The
// select on Done covers a room that terminates while our Join is in
// flight.
func (s *session) joinRoom(rm *room.Room) (room.JoinResult, string) {
	reply := make(chan room.JoinResult, 1)
	rm.Post(room.Join{Conn: s, Reply: reply})
	select {
	case res := <-reply:
		if !res.OK {
			return res, "room is full"
		}
		s.cur = rm
		s.slot = res.Slot
		return res, ""
	case <-rm.Done():
		return room.JoinResult{}, "room not found"
	}
}

// inRoom reports whether the session is still bound to a live room. A room
// that terminated underneath us (opponent left, match over and evicted)
// releases the binding so the player can create or join again.
func (s *session) inRoom() bool {
	if s.cur == nil {
		return false
	}
	if _, ok := s.srv.rooms.Get(s.cur.Code); !ok {
		s.cur = nil
		s.slot = 0
		return false
	}
	return true
}

func (s *session) reply(t string, payload any) {
	b, err := protocol.Encode(t, payload)
	if err != nil {
		s.srv.log.Errorw("encode reply", "session", s.id, "type", t, "err", err)
		return
	}
	_ = s.Send(b)
}

func (s *session) sendError(reason string) {
	s.reply(protocol.MsgError, protocol.Error{Reason: reason})
}

func parseDirection(d string) (game.Direction, bool) {
	switch d {
	case "up":
		return game.Up, true
	case "down":
		return game.Down, true
	case "stop":
		return game.Stop, true
	}
	return game.Stop, false
}
