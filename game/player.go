package game

// Side identifies one half of the board and the paddle defending it.
type Side string

const (
	SidePlayer Side = "player" // left, driven by pointer input
	SideAI     Side = "ai"     // right, driven by the AI controller
)

// Opponent returns the other side.
func (s Side) Opponent() Side {
	if s == SidePlayer {
		return SideAI
	}
	return SidePlayer
}

// HitKind tells what the ball touched during a tick.
type HitKind string

const (
	HitWall   HitKind = "wall"
	HitPaddle HitKind = "paddle"
)

// Hit records one contact resolved during a tick.
type Hit struct {
	Kind   HitKind `json:"kind"`
	Side   Side    `json:"side,omitempty"`   // paddle hits only
	Offset float64 `json:"offset,omitempty"` // ball centre minus paddle centre
}
