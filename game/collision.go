package game

// Box is an axis-aligned rectangle given by its top-left corner and size.
type Box struct {
	X, Y float64
	W, H float64
}

func (b Box) Right() float64   { return b.X + b.W }
func (b Box) Bottom() float64  { return b.Y + b.H }
func (b Box) CenterY() float64 { return b.Y + b.H/2 }

// Overlaps reports whether a and b intersect on both axes. Touching edges do
// not count: each axis uses a.min < b.max && a.max > b.min.
func Overlaps(a, b Box) bool {
	return a.X < b.Right() &&
		a.Right() > b.X &&
		a.Y < b.Bottom() &&
		a.Bottom() > b.Y
}

// CollidePaddle reflects the ball off paddle when they overlap, adds spin
// proportional to the distance between their centres and moves the ball flush
// against the paddle face it came from. It reports the hit, if any.
func (ball *Ball) CollidePaddle(paddle *Paddle, spinFactor float64) (Hit, bool) {
	if paddle == nil || !Overlaps(ball.Box(), paddle.Box()) {
		return Hit{}, false
	}

	ball.ReflectVelocityX()
	offset := ball.CenterY() - paddle.CenterY()
	ball.Vy += offset * spinFactor

	switch paddle.Side {
	case SidePlayer:
		ball.X = paddle.X + paddle.Width
	case SideAI:
		ball.X = paddle.X - ball.Size
	}

	return Hit{Kind: HitPaddle, Side: paddle.Side, Offset: offset}, true
}
