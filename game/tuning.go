package game

const (
	CanvasWidth  = 800.0
	CanvasHeight = 600.0
	PaddleWidth  = 10.0
	PaddleHeight = 100.0
	BallSize     = 10.0
	PaddleSpeed  = 8.0 // units per tick
	BallSpeed    = 6.0 // base serve speed, units per tick
	WinningScore = 5

	speedUpFactor = 1.05
	maxBallSpeed  = BallSpeed * 2 // speed-up stops once the ball reaches this
)
