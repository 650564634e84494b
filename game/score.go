package game

import "fmt"

// Score holds both counters for a session. It only ever grows.
type Score struct {
	Player int `json:"playerScore"`
	AI     int `json:"aiScore"`
}

// ScoreChanged is emitted every time a side scores.
type ScoreChanged struct {
	Side     Side `json:"side"`
	NewValue int  `json:"newValue"`
}

// Award adds exactly one point to side and returns the resulting event.
func (s *Score) Award(side Side) ScoreChanged {
	switch side {
	case SidePlayer:
		s.Player++
		return ScoreChanged{Side: side, NewValue: s.Player}
	case SideAI:
		s.AI++
		return ScoreChanged{Side: side, NewValue: s.AI}
	}
	panic(fmt.Sprintf("game: unknown side %q", side))
}

// Of returns the counter for side.
func (s Score) Of(side Side) int {
	if side == SidePlayer {
		return s.Player
	}
	return s.AI
}
