package main

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/lguibr/solopong/audio"
	"github.com/lguibr/solopong/game"
	"github.com/lguibr/solopong/logger"
	"github.com/lguibr/solopong/utils"
	"golang.org/x/net/websocket"
)

// frame is one snapshot plus the sound cues it should trigger.
type frame struct {
	snap game.Snapshot
	cues []audio.Cue
}

// frameSource feeds the UI with frames and takes pointer input.
type frameSource interface {
	Frames() <-chan frame
	SetPointer(y float64)
	Close() error
}

// localSource runs a Session in process at the configured tick period.
type localSource struct {
	mu      sync.Mutex
	session *game.Session
	period  time.Duration
	frames  chan frame
	stop    chan struct{}
	once    sync.Once
}

func newLocalSource(cfg utils.Config, opts ...game.SessionOption) *localSource {
	return &localSource{
		session: game.NewSession(cfg, opts...),
		period:  cfg.TickPeriod,
		frames:  make(chan frame, 1),
		stop:    make(chan struct{}),
	}
}

func (s *localSource) start() {
	go func() {
		ticker := time.NewTicker(s.period)
		defer ticker.Stop()
		defer close(s.frames)
		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				f := s.step()
				select {
				case s.frames <- f:
				case <-s.stop:
					return
				}
			}
		}
	}()
}

func (s *localSource) step() frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := s.session.Tick()
	return frame{snap: result.Snapshot, cues: audio.CuesFor(result)}
}

func (s *localSource) Frames() <-chan frame { return s.frames }

func (s *localSource) SetPointer(y float64) {
	s.mu.Lock()
	s.session.SetPointer(y)
	s.mu.Unlock()
}

func (s *localSource) Close() error {
	s.once.Do(func() { close(s.stop) })
	return nil
}

// remoteSource follows a session on a pong server over a websocket.
type remoteSource struct {
	conn   *websocket.Conn
	sendMu sync.Mutex
	frames chan frame
	log    logger.Logger
}

// dialRemote connects to url. An empty sessionID asks the server for a
// fresh session.
func dialRemote(url, sessionID string) (*remoteSource, error) {
	if sessionID != "" {
		url += "?session=" + sessionID
	}
	conn, err := websocket.Dial(url, "", "http://localhost/")
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	r := &remoteSource{
		conn:   conn,
		frames: make(chan frame, 1),
		log:    logger.Named("remote"),
	}
	go r.readLoop()
	return r, nil
}

func (r *remoteSource) readLoop() {
	defer close(r.frames)
	var pending []audio.Cue
	for {
		var raw json.RawMessage
		if err := websocket.JSON.Receive(r.conn, &raw); err != nil {
			if !game.IsConnectionClosed(err) {
				r.log.Warn(context.Background(), "read failed", logger.Error(err))
			}
			return
		}
		f, cue, err := decodeServerMessage(raw)
		if err != nil {
			r.log.Debug(context.Background(), "dropping frame", logger.Error(err))
			continue
		}
		switch {
		case cue != nil:
			pending = append(pending, *cue)
		case f != nil:
			f.cues = pending
			// A slow UI skips frames; cues carry over to the next one.
			select {
			case r.frames <- *f:
				pending = nil
			default:
			}
		}
	}
}

// decodeServerMessage turns one server frame into either a snapshot frame or
// a score cue. Session assignments and unknown types yield neither.
func decodeServerMessage(raw []byte) (*frame, *audio.Cue, error) {
	var header game.MessageHeader
	if err := json.Unmarshal(raw, &header); err != nil {
		return nil, nil, err
	}
	switch header.MessageType {
	case game.MessageTypeSnapshot:
		var update game.SnapshotUpdate
		if err := json.Unmarshal(raw, &update); err != nil {
			return nil, nil, err
		}
		return &frame{snap: update.Snapshot}, nil, nil
	case game.MessageTypeScoreChanged:
		var update game.ScoreUpdate
		if err := json.Unmarshal(raw, &update); err != nil {
			return nil, nil, err
		}
		cue := audio.ScoreCue(update.Side)
		return nil, &cue, nil
	}
	return nil, nil, nil
}

func (r *remoteSource) Frames() <-chan frame { return r.frames }

func (r *remoteSource) SetPointer(y float64) {
	r.sendMu.Lock()
	defer r.sendMu.Unlock()
	msg := game.PointerMessage{MessageType: game.MessageTypePointer, Y: y}
	if err := websocket.JSON.Send(r.conn, msg); err != nil && !game.IsConnectionClosed(err) {
		r.log.Warn(context.Background(), "pointer send failed", logger.Error(err))
	}
}

func (r *remoteSource) Close() error {
	return r.conn.Close()
}
