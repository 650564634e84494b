// File: game/test_utils.go
package game

import (
	"math/rand"
	"sync"

	"github.com/lguibr/solopong/utils"
)

// newTestSession builds a session on the default 800x500 board with a fixed
// random seed so serves are reproducible.
func newTestSession(opts ...SessionOption) *Session {
	opts = append([]SessionOption{WithRand(rand.New(rand.NewSource(1))), WithSessionID("test-session")}, opts...)
	return NewSession(utils.DefaultConfig(), opts...)
}

// placeBall overwrites the ball's position and velocity.
func placeBall(s *Session, x, y, vx, vy float64) {
	b := s.Ball()
	b.X, b.Y, b.Vx, b.Vy = x, y, vx, vy
}

// recordingClient is an in-memory Client that keeps everything it is sent.
type recordingClient struct {
	id     string
	mu     sync.Mutex
	sent   []interface{}
	closed bool
	err    error
}

func newRecordingClient(id string) *recordingClient {
	return &recordingClient{id: id}
}

func (c *recordingClient) ID() string { return c.id }

func (c *recordingClient) Send(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, v)
	return nil
}

func (c *recordingClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *recordingClient) failWith(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
}

func (c *recordingClient) messages() []interface{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]interface{}, len(c.sent))
	copy(out, c.sent)
	return out
}

func (c *recordingClient) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// snapshotsOf filters the snapshot updates out of a client's messages.
func snapshotsOf(msgs []interface{}) []SnapshotUpdate {
	var out []SnapshotUpdate
	for _, m := range msgs {
		if u, ok := m.(SnapshotUpdate); ok {
			out = append(out, u)
		}
	}
	return out
}

// scoreEventsOf filters the score updates out of a client's messages.
func scoreEventsOf(msgs []interface{}) []ScoreUpdate {
	var out []ScoreUpdate
	for _, m := range msgs {
		if u, ok := m.(ScoreUpdate); ok {
			out = append(out, u)
		}
	}
	return out
}
