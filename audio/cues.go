// Package audio turns game events into short synthesized sound cues.
package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/lguibr/solopong/game"
)

const sampleRate = beep.SampleRate(44100)

// Cue names one sound the game can make.
type Cue int

const (
	CuePaddle Cue = iota
	CueWall
	CuePlayerScored
	CueAIScored
)

func (c Cue) String() string {
	switch c {
	case CuePaddle:
		return "paddle"
	case CueWall:
		return "wall"
	case CuePlayerScored:
		return "player_scored"
	case CueAIScored:
		return "ai_scored"
	}
	return "unknown"
}

// tone is one segment of a cue.
type tone struct {
	freq     float64
	duration time.Duration
}

var cueTones = map[Cue][]tone{
	CuePaddle:       {{freq: 880, duration: 40 * time.Millisecond}},
	CueWall:         {{freq: 440, duration: 30 * time.Millisecond}},
	CuePlayerScored: {{freq: 660, duration: 90 * time.Millisecond}, {freq: 990, duration: 140 * time.Millisecond}},
	CueAIScored:     {{freq: 330, duration: 90 * time.Millisecond}, {freq: 220, duration: 180 * time.Millisecond}},
}

// NewCueStreamer builds a finite streamer for cue at the given volume in
// (0, 1]. It returns false for an unknown cue.
func NewCueStreamer(cue Cue, volume float64) (beep.Streamer, bool) {
	tones, ok := cueTones[cue]
	if !ok {
		return nil, false
	}
	parts := make([]beep.Streamer, 0, len(tones))
	for _, t := range tones {
		osc, err := generators.SineTone(sampleRate, t.freq)
		if err != nil {
			return nil, false
		}
		parts = append(parts, beep.Take(sampleRate.N(t.duration), osc))
	}
	return withVolume(beep.Seq(parts...), volume), true
}

// withVolume scales s linearly; zero or less mutes it.
func withVolume(s beep.Streamer, volume float64) beep.Streamer {
	if volume <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(volume)}
}

// CuesFor maps one tick's events to cues, hits first.
func CuesFor(result game.TickResult) []Cue {
	var cues []Cue
	for _, h := range result.Hits {
		switch h.Kind {
		case game.HitPaddle:
			cues = append(cues, CuePaddle)
		case game.HitWall:
			cues = append(cues, CueWall)
		}
	}
	for _, e := range result.Scores {
		cues = append(cues, ScoreCue(e.Side))
	}
	return cues
}

// ScoreCue is the cue for side scoring.
func ScoreCue(side game.Side) Cue {
	if side == game.SidePlayer {
		return CuePlayerScored
	}
	return CueAIScored
}
