// File: game/session.go
package game

import (
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/lguibr/solopong/utils"
)

// Snapshot is everything a renderer needs to draw one frame.
type Snapshot struct {
	SessionID     string  `json:"sessionId,omitempty"`
	Tick          uint64  `json:"tick"`
	PlayerPaddleY float64 `json:"playerPaddleY"`
	AIPaddleY     float64 `json:"aiPaddleY"`
	BallX         float64 `json:"ballX"`
	BallY         float64 `json:"ballY"`
	BoardWidth    float64 `json:"boardWidth"`
	BoardHeight   float64 `json:"boardHeight"`
	PlayerScore   int     `json:"playerScore"`
	AIScore       int     `json:"aiScore"`

	// Geometry, so remote renderers do not need the server config.
	PaddleWidth  float64 `json:"paddleWidth"`
	PaddleHeight float64 `json:"paddleHeight"`
	PaddleMargin float64 `json:"paddleMargin"`
	BallSize     float64 `json:"ballSize"`
}

// TickResult is the output of one Session.Tick.
type TickResult struct {
	Snapshot Snapshot
	Scores   []ScoreChanged
	Hits     []Hit
}

// Session owns the state of one game: ball, both paddles and the score.
// It is not safe for concurrent use; SessionActor serialises access when the
// session is shared.
type Session struct {
	ID     string
	cfg    utils.Config
	canvas Canvas
	ball   *Ball
	player *Paddle
	ai     *Paddle
	score  Score
	brain  AIController
	rng    *rand.Rand
	tick   uint64
}

// SessionOption customises NewSession.
type SessionOption func(*Session)

// WithRand makes serve directions reproducible.
func WithRand(rng *rand.Rand) SessionOption {
	return func(s *Session) { s.rng = rng }
}

// WithSessionID overrides the generated session ID.
func WithSessionID(id string) SessionOption {
	return func(s *Session) { s.ID = id }
}

// NewSession starts a session: paddles centred, ball served from the centre
// in a random direction.
func NewSession(cfg utils.Config, opts ...SessionOption) *Session {
	s := &Session{
		ID:     uuid.NewString(),
		cfg:    cfg,
		canvas: NewCanvas(cfg.BoardWidth, cfg.BoardHeight),
		brain:  AIController{Speed: cfg.AISpeed, DeadZone: cfg.AIDeadZone},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	s.player = NewPaddle(s.canvas, cfg, SidePlayer)
	s.ai = NewPaddle(s.canvas, cfg, SideAI)
	s.ball = NewBall(s.canvas, cfg, s.rng)
	return s
}

func (s *Session) Ball() *Ball          { return s.ball }
func (s *Session) PlayerPaddle() *Paddle { return s.player }
func (s *Session) AIPaddle() *Paddle     { return s.ai }
func (s *Session) Score() Score          { return s.score }
func (s *Session) Canvas() Canvas        { return s.canvas }
func (s *Session) Ticks() uint64         { return s.tick }

// SetPointer maps a pointer's vertical board coordinate onto the player
// paddle. Last write before a tick wins.
func (s *Session) SetPointer(y float64) {
	s.player.CenterOn(y)
}

// Tick advances the session by one frame. The order is fixed: move the ball,
// bounce off walls, resolve the player paddle then the AI paddle, check for a
// score, step the AI, then build the snapshot. Paddle hits are resolved
// before scoring so a last-moment save counts, and the AI reacts to the ball
// after collisions.
func (s *Session) Tick() TickResult {
	var result TickResult

	s.ball.Move()

	if hit, ok := s.ball.CollideWalls(s.canvas); ok {
		result.Hits = append(result.Hits, hit)
	}
	if hit, ok := s.ball.CollidePaddle(s.player, s.cfg.SpinFactor); ok {
		result.Hits = append(result.Hits, hit)
	}
	if hit, ok := s.ball.CollidePaddle(s.ai, s.cfg.SpinFactor); ok {
		result.Hits = append(result.Hits, hit)
	}

	if conceder, ok := s.ball.Conceded(s.canvas); ok {
		scorer := conceder.Opponent()
		result.Scores = append(result.Scores, s.score.Award(scorer))
		s.serve(scorer)
	}

	s.brain.Step(s.ai, s.ball.CenterY())

	s.tick++
	result.Snapshot = s.Snapshot()
	return result
}

// serve resets the ball after scorer made a point. The serve heads toward the
// scorer's side: +x after the AI scores, -x after the player scores.
func (s *Session) serve(scorer Side) {
	direction := 1.0
	if scorer == SidePlayer {
		direction = -1
	}
	s.ball.Reset(s.canvas, s.cfg.ServeSpeedX*direction, s.cfg.ServeSpeedY, s.rng)
}

// Snapshot returns the current render state without advancing.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		SessionID:     s.ID,
		Tick:          s.tick,
		PlayerPaddleY: s.player.Y,
		AIPaddleY:     s.ai.Y,
		BallX:         s.ball.X,
		BallY:         s.ball.Y,
		BoardWidth:    s.canvas.Width,
		BoardHeight:   s.canvas.Height,
		PlayerScore:   s.score.Player,
		AIScore:       s.score.AI,
		PaddleWidth:   s.cfg.PaddleWidth,
		PaddleHeight:  s.cfg.PaddleHeight,
		PaddleMargin:  s.cfg.PaddleMargin,
		BallSize:      s.ball.Size,
	}
}
