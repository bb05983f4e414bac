package game

// Internal truth authoritative match state

// Status is the lifecycle tag of a match.
type Status string

const (
	StatusWaiting Status = "waiting"
	StatusPlaying Status = "playing"
	// StatusPaused is part of the wire contract but the server never
	// transitions into it.
	StatusPaused   Status = "paused"
	StatusFinished Status = "finished"
)

// Direction is a player's movement intent. It is sticky: the paddle keeps
// moving every tick until the client sends a new intent.
type Direction int

const (
	Stop Direction = iota
	Up
	Down
)

// Ball is replaced wholesale on every serve, never mutated back to a
// starting state in place.
type Ball struct {
	X, Y   float64
	VX, VY float64 // units per tick
}

type Paddle struct {
	Y     float64 // top edge, clamped to [0, CanvasHeight-PaddleHeight]
	Score int
}

type State struct {
	Ball   Ball
	P1     Paddle
	P2     Paddle
	Status Status
	Winner int // 1 or 2, set only when Status == StatusFinished
}
