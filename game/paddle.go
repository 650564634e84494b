// File: game/paddle.go
package game

import (
	"math"

	"github.com/lguibr/solopong/utils"
)

// Paddle is a vertical bar at a fixed X that only moves along Y.
type Paddle struct {
	Side   Side    `json:"side"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	canvas Canvas
}

// NewPaddle builds the paddle for side, vertically centred. The player paddle
// sits PaddleMargin from the left edge, the AI paddle mirrors it on the right.
func NewPaddle(canvas Canvas, cfg utils.Config, side Side) *Paddle {
	x := cfg.PaddleMargin
	if side == SideAI {
		x = canvas.Width - cfg.PaddleMargin - cfg.PaddleWidth
	}
	return &Paddle{
		Side:   side,
		X:      x,
		Y:      canvas.Height/2 - cfg.PaddleHeight/2,
		Width:  cfg.PaddleWidth,
		Height: cfg.PaddleHeight,
		canvas: canvas,
	}
}

func (p *Paddle) Box() Box         { return Box{X: p.X, Y: p.Y, W: p.Width, H: p.Height} }
func (p *Paddle) CenterY() float64 { return p.Y + p.Height/2 }

// SetY moves the paddle's top edge to y, clamped to [0, canvasHeight-Height].
// NaN is ignored.
func (p *Paddle) SetY(y float64) {
	if math.IsNaN(y) {
		return
	}
	p.Y = p.canvas.ClampY(y, p.Height)
}

// CenterOn moves the paddle so its centre sits at y (within bounds). Pointer
// input uses this: the cursor grabs the middle of the paddle.
func (p *Paddle) CenterOn(y float64) {
	p.SetY(y - p.Height/2)
}

// Move shifts the paddle by dy and clamps it. It returns the displacement
// actually applied.
func (p *Paddle) Move(dy float64) float64 {
	before := p.Y
	p.SetY(p.Y + dy)
	return p.Y - before
}
