package game

import (
	"math"
	"math/rand"
)

// Engine advances one match by fixed time steps. It does no I/O and knows
// nothing about connections; the room owns scheduling. Serve angles come
// from the injected RNG, so a seeded source replays identically.
type Engine struct {
	state State
	rng   *rand.Rand
}

func NewEngine(rng *rand.Rand) *Engine {
	e := &Engine{rng: rng}
	mid := CanvasHeight/2 - PaddleHeight/2
	e.state = State{
		Ball:   e.serve(e.randomSide()),
		P1:     Paddle{Y: mid},
		P2:     Paddle{Y: mid},
		Status: StatusWaiting,
	}
	return e
}

// State returns a snapshot of the current state.
func (e *Engine) State() State {
	return e.state
}

// Restore replaces the state wholesale, e.g. to seed a specific scenario.
func (e *Engine) Restore(st State) {
	e.state = st
}

// Start begins play with a fresh serve in a random direction.
func (e *Engine) Start() {
	e.state.Status = StatusPlaying
	e.state.Ball = e.serve(e.randomSide())
}

// Update advances the match by exactly one tick: paddles, then ball, then
// scoring, then the win check. Outside of playing it leaves the state
// untouched.
func (e *Engine) Update(in1, in2 Direction) State {
	if e.state.Status != StatusPlaying {
		return e.state
	}

	e.movePaddle(&e.state.P1, in1)
	e.movePaddle(&e.state.P2, in2)
	e.moveBall()
	e.checkScoring()
	e.checkWinner()

	return e.state
}

func (e *Engine) movePaddle(p *Paddle, dir Direction) {
	switch dir {
	case Up:
		p.Y = math.Max(0, p.Y-PaddleSpeed)
	case Down:
		p.Y = math.Min(CanvasHeight-PaddleHeight, p.Y+PaddleSpeed)
	}
}

func (e *Engine) moveBall() {
	b := &e.state.Ball

	b.X += b.VX
	b.Y += b.VY

	// Top and bottom walls reflect with no energy loss.
	if b.Y <= 0 || b.Y >= CanvasHeight-BallSize {
		b.VY = -b.VY
		b.Y = math.Max(0, math.Min(CanvasHeight-BallSize, b.Y))
	}

	e.checkPaddleCollision()
}

func (e *Engine) checkPaddleCollision() {
	b := &e.state.Ball

	// Left paddle, slot 1. Snapping X back onto the paddle face keeps the
	// hit from triggering again next tick.
	if b.X <= PaddleWidth &&
		b.Y+BallSize >= e.state.P1.Y &&
		b.Y <= e.state.P1.Y+PaddleHeight &&
		b.VX < 0 {
		b.VX = -b.VX
		b.X = PaddleWidth
		hit := (b.Y + BallSize/2 - e.state.P1.Y) / PaddleHeight
		b.VY = (hit - 0.5) * BallSpeed * 2
		e.speedUp()
	}

	// Right paddle, slot 2.
	if b.X+BallSize >= CanvasWidth-PaddleWidth &&
		b.Y+BallSize >= e.state.P2.Y &&
		b.Y <= e.state.P2.Y+PaddleHeight &&
		b.VX > 0 {
		b.VX = -b.VX
		b.X = CanvasWidth - PaddleWidth - BallSize
		hit := (b.Y + BallSize/2 - e.state.P2.Y) / PaddleHeight
		b.VY = (hit - 0.5) * BallSpeed * 2
		e.speedUp()
	}
}

// speedUp makes every return a little faster until the ball reaches twice
// the base speed.
func (e *Engine) speedUp() {
	b := &e.state.Ball
	if math.Hypot(b.VX, b.VY) < maxBallSpeed {
		b.VX *= speedUpFactor
		b.VY *= speedUpFactor
	}
}

func (e *Engine) checkScoring() {
	b := e.state.Ball

	// Past the left edge: slot 2 scores, serve back toward slot 1.
	if b.X < 0 {
		e.state.P2.Score++
		e.state.Ball = e.serve(-1)
	}

	// Past the right edge: slot 1 scores, serve toward slot 2.
	if b.X > CanvasWidth {
		e.state.P1.Score++
		e.state.Ball = e.serve(1)
	}
}

func (e *Engine) checkWinner() {
	switch {
	case e.state.P1.Score >= WinningScore:
		e.state.Status = StatusFinished
		e.state.Winner = 1
	case e.state.P2.Score >= WinningScore:
		e.state.Status = StatusFinished
		e.state.Winner = 2
	}
}

// serve builds a center-court ball at base speed heading toward direction
// (+1 right, -1 left) at a random angle within 45 degrees of horizontal.
func (e *Engine) serve(direction int) Ball {
	angle := (e.rng.Float64() - 0.5) * math.Pi / 2
	return Ball{
		X:  CanvasWidth / 2,
		Y:  CanvasHeight / 2,
		VX: math.Cos(angle) * BallSpeed * float64(direction),
		VY: math.Sin(angle) * BallSpeed,
	}
}

func (e *Engine) randomSide() int {
	if e.rng.Float64() > 0.5 {
		return 1
	}
	return -1
}
