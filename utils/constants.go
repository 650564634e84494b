package utils

import "time"

const (
	Period = 16 * time.Millisecond // ~60 ticks per second

	BoardWidth  = 800
	BoardHeight = 500

	PaddleWidth  = 12
	PaddleHeight = 90
	PaddleMargin = 25 //INFO Distance between the board edge and the paddle's outer face
	BallSize     = 15

	ServeSpeedX = 6
	ServeSpeedY = 4
	SpinFactor  = 0.13

	AISpeed    = 5
	AIDeadZone = 10

	MaxSessions = 64
)
