// File: game/session_actor.go
package game

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/lguibr/solopong/bollywood"
	"github.com/lguibr/solopong/logger"
	"github.com/lguibr/solopong/metrics"
	"github.com/lguibr/solopong/utils"
)

// SessionActor hosts one Session. Ticks, pointer input and subscriptions all
// arrive as messages, so the session is only ever touched from Receive.
type SessionActor struct {
	engine         *bollywood.Engine
	cfg            utils.Config
	session        *Session
	managerPID     *bollywood.PID
	broadcasterPID *bollywood.PID
	selfPID        *bollywood.PID
	log            logger.Logger

	manualTicks  bool
	started      bool
	ticker       *time.Ticker
	stopTickerCh chan struct{}
}

// SessionActorOption customises a SessionActor at construction.
type SessionActorOption func(*SessionActor)

// WithBroadcaster makes the actor publish to an existing broadcaster instead
// of spawning its own.
func WithBroadcaster(pid *bollywood.PID) SessionActorOption {
	return func(a *SessionActor) { a.broadcasterPID = pid }
}

// WithManualTicks disables the internal ticker; the session only advances
// when something else posts ticks.
func WithManualTicks() SessionActorOption {
	return func(a *SessionActor) { a.manualTicks = true }
}

// NewSessionActorProducer creates a producer for a SessionActor driving
// session. managerPID may be nil.
func NewSessionActorProducer(engine *bollywood.Engine, cfg utils.Config, session *Session, managerPID *bollywood.PID, opts ...SessionActorOption) bollywood.Producer {
	return func() bollywood.Actor {
		a := &SessionActor{
			engine:       engine,
			cfg:          cfg,
			session:      session,
			managerPID:   managerPID,
			stopTickerCh: make(chan struct{}),
			log:          logger.Named("session").With(logger.String("session_id", session.ID)),
		}
		for _, opt := range opts {
			opt(a)
		}
		return a
	}
}

// Receive is the main message handler for the SessionActor.
func (a *SessionActor) Receive(ctx bollywood.Context) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Error(context.Background(), "panic recovered in Receive",
				logger.Any("panic", r), logger.String("stack", string(debug.Stack())))
			if ctx.RequestID() != "" {
				ctx.Reply(fmt.Errorf("session %s panicked: %v", a.session.ID, r))
			}
		}
	}()

	if a.selfPID == nil {
		a.selfPID = ctx.Self()
		a.log = a.log.With(logger.String("pid", a.selfPID.String()))
	}

	switch m := ctx.Message().(type) {
	case bollywood.Started:
		a.handleStart(ctx)

	case tickMsg:
		a.handleTick()

	case PointerMoved:
		a.session.SetPointer(m.Y)

	case Subscribe:
		a.handleSubscribe(m.Client)

	case Unsubscribe:
		a.engine.Send(a.broadcasterPID, RemoveClient{ClientID: m.ClientID}, a.selfPID)

	case ClientGone:
		a.log.Debug(context.Background(), "client dropped by broadcaster", logger.String("client_id", m.ClientID))

	case GetSnapshotRequest:
		if ctx.RequestID() != "" {
			ctx.Reply(a.session.Snapshot())
		}

	case bollywood.Stopping:
		a.handleStopping()

	case bollywood.Stopped:
		a.log.Debug(context.Background(), "stopped")

	default:
		a.log.Warn(context.Background(), "unknown message", logger.String("type", fmt.Sprintf("%T", m)))
		if ctx.RequestID() != "" {
			ctx.Reply(fmt.Errorf("unknown message type: %T", m))
		}
	}
}

func (a *SessionActor) handleStart(ctx bollywood.Context) {
	if a.broadcasterPID == nil {
		a.broadcasterPID = a.engine.Spawn(bollywood.NewProps(NewBroadcasterProducer(a.selfPID)))
		if a.broadcasterPID == nil {
			a.log.Error(context.Background(), "failed to spawn broadcaster, stopping")
			a.engine.Stop(a.selfPID)
			return
		}
	}
	a.started = true
	metrics.SessionStarted()
	a.log.Info(context.Background(), "session started",
		logger.String("broadcaster", a.broadcasterPID.String()),
		logger.Bool("manual_ticks", a.manualTicks))
	if !a.manualTicks {
		a.startTicker()
	}
}

// handleTick advances the session one frame and publishes the result. Score
// events go out ahead of the snapshot that reflects them.
func (a *SessionActor) handleTick() {
	start := time.Now()
	result := a.session.Tick()
	metrics.ObserveTick(time.Since(start))

	for _, hit := range result.Hits {
		switch hit.Kind {
		case HitPaddle:
			metrics.RecordPaddleHit(string(hit.Side))
		case HitWall:
			metrics.RecordWallBounce()
		}
	}

	updates := make([]interface{}, 0, len(result.Scores)+1)
	for _, e := range result.Scores {
		metrics.RecordScore(string(e.Side))
		a.log.Info(context.Background(), "point scored",
			logger.String("side", string(e.Side)), logger.Int("new_value", e.NewValue),
			logger.Int64("tick", int64(result.Snapshot.Tick)))
		updates = append(updates, NewScoreUpdate(e))
	}
	updates = append(updates, NewSnapshotUpdate(result.Snapshot))
	a.engine.Send(a.broadcasterPID, BroadcastCommand{Messages: updates}, a.selfPID)

	if len(result.Scores) > 0 && a.managerPID != nil {
		a.engine.Send(a.managerPID, sessionScored{SessionID: a.session.ID, Score: a.session.Score()}, a.selfPID)
	}
}

// handleSubscribe registers client with the broadcaster and greets it with
// its session ID and the current frame.
func (a *SessionActor) handleSubscribe(client Client) {
	if client == nil {
		return
	}
	greeting := []interface{}{
		SessionAssignment{MessageType: MessageTypeSessionAssignment, SessionID: a.session.ID},
		NewSnapshotUpdate(a.session.Snapshot()),
	}
	a.engine.Send(a.broadcasterPID, AddClient{Client: client, Greeting: greeting}, a.selfPID)
	a.log.Info(context.Background(), "client subscribed", logger.String("client_id", client.ID()))
}

func (a *SessionActor) handleStopping() {
	a.stopTicker()
	if a.broadcasterPID != nil {
		a.engine.Stop(a.broadcasterPID)
	}
	// Stop can win the race against Started.
	if !a.started {
		return
	}
	metrics.SessionStopped()
	score := a.session.Score()
	a.log.Info(context.Background(), "session stopping",
		logger.Int("player_score", score.Player), logger.Int("ai_score", score.AI),
		logger.Int64("ticks", int64(a.session.Ticks())))
}

// startTicker posts a tick to the actor's own mailbox every TickPeriod.
func (a *SessionActor) startTicker() {
	period := a.cfg.TickPeriod
	if period <= 0 {
		period = utils.Period
	}
	a.ticker = time.NewTicker(period)
	tickerCh := a.ticker.C
	stopCh := a.stopTickerCh
	engine, self := a.engine, a.selfPID

	go func() {
		defer func() {
			if r := recover(); r != nil {
				a.log.Error(context.Background(), "panic recovered in ticker loop", logger.Any("panic", r))
			}
		}()
		for {
			select {
			case <-stopCh:
				return
			case <-tickerCh:
				engine.Send(self, tickMsg{}, nil)
			}
		}
	}()
}

func (a *SessionActor) stopTicker() {
	if a.ticker != nil {
		a.ticker.Stop()
	}
	select {
	case <-a.stopTickerCh:
	default:
		close(a.stopTickerCh)
	}
}
