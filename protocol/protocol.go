package protocol

import (
	"encoding/json"
)

// Message kinds, client -> server.
const (
	MsgCreate = "create"
	MsgJoin   = "join"
	MsgMove   = "move"
	MsgReady  = "ready"
)

// Message kinds, server -> client.
const (
	MsgRoomCreated    = "room_created"
	MsgRoomJoined     = "room_joined"
	MsgOpponentJoined = "opponent_joined"
	MsgReadyAck       = "ready_ack"
	MsgWaiting        = "waiting"
	MsgMatchStarted   = "match_started"
	MsgState          = "state"
	MsgMatchOver      = "match_over"
	MsgOpponentLeft   = "opponent_left"
	MsgError          = "error"
)

// TickHz is the authoritative simulation and broadcast rate. Every tick
// produces exactly one state message while a match is playing.
const TickHz = 60

type Envelope struct {
	T string          `json:"t"`
	P json.RawMessage `json:"p,omitempty"` // raw payload bytes
}
