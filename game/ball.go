package game

import (
	"math/rand"

	"github.com/lguibr/solopong/utils"
)

// Ball is a square of fixed Size moving at a constant per-tick velocity.
type Ball struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Vx   float64 `json:"vx"`
	Vy   float64 `json:"vy"`
	Size float64 `json:"size"`
}

// NewBall places a ball at the centre of the canvas with a random serve.
func NewBall(canvas Canvas, cfg utils.Config, rng *rand.Rand) *Ball {
	ball := &Ball{Size: cfg.BallSize}
	ball.Reset(canvas, cfg.ServeSpeedX*utils.RandomSign(rng), cfg.ServeSpeedY, rng)
	return ball
}

func (b *Ball) Box() Box         { return Box{X: b.X, Y: b.Y, W: b.Size, H: b.Size} }
func (b *Ball) CenterY() float64 { return b.Y + b.Size/2 }

// Move advances the ball by one tick of velocity.
func (b *Ball) Move() {
	b.X += b.Vx
	b.Y += b.Vy
}

func (b *Ball) ReflectVelocityX() { b.Vx = -b.Vx }
func (b *Ball) ReflectVelocityY() { b.Vy = -b.Vy }

// CollideWalls bounces the ball off the top and bottom edges. When the ball
// touches or crosses either edge the vertical velocity flips and the ball is
// clamped back inside the canvas.
func (b *Ball) CollideWalls(canvas Canvas) (Hit, bool) {
	if b.Y > 0 && b.Y+b.Size < canvas.Height {
		return Hit{}, false
	}
	b.ReflectVelocityY()
	b.Y = canvas.ClampY(b.Y, b.Size)
	return Hit{Kind: HitWall}, true
}

// Reset recentres the ball. vx is used as the new horizontal velocity; the
// vertical speed keeps its magnitude and gets a random sign.
func (b *Ball) Reset(canvas Canvas, vx, speedY float64, rng *rand.Rand) {
	b.X, b.Y = canvas.CenterOrigin(b.Size)
	b.Vx = vx
	b.Vy = speedY * utils.RandomSign(rng)
}

// Conceded reports which side let the ball through, if any. The player
// concedes once the ball's left edge is past x=0; the AI once its right edge
// is past the canvas width.
func (b *Ball) Conceded(canvas Canvas) (Side, bool) {
	if b.X < 0 {
		return SidePlayer, true
	}
	if b.X+b.Size > canvas.Width {
		return SideAI, true
	}
	return "", false
}
