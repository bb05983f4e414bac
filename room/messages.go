package room

import "pong/game"

// Conn is the send capability for one player connection. Send must not
// block: the room calls it from its tick loop. Sending to a dead
// connection is a no-op; disconnects are detected on the read path.
type Conn interface {
	Send([]byte) error
}

// Join: request a slot. Reply must be buffered (cap 1) so the room never
// blocks answering a caller that gave up. OK is false when the match
// already has two players.
type Join struct {
	Conn  Conn
	Reply chan<- JoinResult
}

type JoinResult struct {
	Slot int
	OK   bool
}

// Ready: the slot acknowledged the ready check. Idempotent.
type Ready struct {
	Slot int
}

// Move: latest movement intent for a slot, applied on the next tick.
type Move struct {
	Slot      int
	Direction game.Direction
}

// Leave: issued on disconnect. Always terminates the match.
type Leave struct {
	Slot int
}
