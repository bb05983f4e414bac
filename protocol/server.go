package protocol

// Payloads sent by the server.

type RoomCreated struct {
	Code string `json:"code"`
}

type RoomJoined struct {
	Code string `json:"code"`
	Slot int    `json:"slot"` // 1 or 2, fixed for the lifetime of the match
}

type ReadyAck struct {
	Slot int `json:"slot"`
}

type MatchOver struct {
	Winner int `json:"winner"`
}

type Error struct {
	Reason string `json:"reason"`
}

// State is the full authoritative snapshot broadcast every tick while a
// match is playing.
type State struct {
	Status string         `json:"status"`
	Winner int            `json:"winner,omitempty"`
	Ball   BallSnapshot   `json:"ball"`
	P1     PaddleSnapshot `json:"p1"`
	P2     PaddleSnapshot `json:"p2"`
}

type BallSnapshot struct {
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	VX float64 `json:"vx"`
	VY float64 `json:"vy"`
}

type PaddleSnapshot struct {
	Y     float64 `json:"y"`
	Score int     `json:"score"`
}
