package game

import "github.com/lguibr/solopong/utils"

// Canvas is the fixed-size playing area. It never changes during a session.
type Canvas struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func NewCanvas(width, height float64) Canvas {
	if width == 0 {
		width = utils.BoardWidth
	}
	if height == 0 {
		height = utils.BoardHeight
	}
	return Canvas{Width: width, Height: height}
}

// ClampY keeps an object of the given height inside the canvas vertically.
func (c Canvas) ClampY(y, height float64) float64 {
	return utils.Clamp(y, 0, c.Height-height)
}

// CenterOrigin returns the top-left corner that centres a size×size square.
func (c Canvas) CenterOrigin(size float64) (float64, float64) {
	return c.Width/2 - size/2, c.Height/2 - size/2
}
