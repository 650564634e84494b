package audio

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

// SoundBoard plays cues through the system speaker. Every method is safe to
// call before Initialize or after it failed; the board just stays silent.
type SoundBoard struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	volume      float64
	initialized bool
}

func NewSoundBoard(volume float64) *SoundBoard {
	return &SoundBoard{mixer: &beep.Mixer{}, volume: volume}
}

// Initialize opens the speaker and starts the mixer.
func (sb *SoundBoard) Initialize() error {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	if sb.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		return err
	}
	speaker.Play(sb.mixer)
	sb.initialized = true
	return nil
}

// Play queues cue on the mixer.
func (sb *SoundBoard) Play(cue Cue) {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	if !sb.initialized {
		return
	}
	streamer, ok := NewCueStreamer(cue, sb.volume)
	if !ok {
		return
	}
	speaker.Lock()
	sb.mixer.Add(streamer)
	speaker.Unlock()
}

// PlayAll plays each cue in cues.
func (sb *SoundBoard) PlayAll(cues []Cue) {
	for _, c := range cues {
		sb.Play(c)
	}
}

// Close silences everything still playing.
func (sb *SoundBoard) Close() {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	if !sb.initialized {
		return
	}
	speaker.Lock()
	sb.mixer.Clear()
	speaker.Unlock()
	sb.initialized = false
}
