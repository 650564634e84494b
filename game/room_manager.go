// File: game/room_manager.go
package game

import (
	"context"
	"fmt"
	"runtime/debug"
	"sort"

	"github.com/lguibr/solopong/bollywood"
	"github.com/lguibr/solopong/logger"
	"github.com/lguibr/solopong/utils"
)

// SessionManagerActor owns every running session and the SessionActor that
// drives it.
type SessionManagerActor struct {
	engine      *bollywood.Engine
	cfg         utils.Config
	sessions    map[string]*SessionInfo // keyed by session ID
	selfPID     *bollywood.PID
	log         logger.Logger
	sessionOpts []SessionOption
	actorOpts   []SessionActorOption
	maxSessions int
}

// SessionManagerOption customises a SessionManagerActor.
type SessionManagerOption func(*SessionManagerActor)

// WithSessionOptions applies opts to every session the manager creates.
func WithSessionOptions(opts ...SessionOption) SessionManagerOption {
	return func(a *SessionManagerActor) { a.sessionOpts = append(a.sessionOpts, opts...) }
}

// WithSessionActorOptions applies opts to every SessionActor the manager spawns.
func WithSessionActorOptions(opts ...SessionActorOption) SessionManagerOption {
	return func(a *SessionManagerActor) { a.actorOpts = append(a.actorOpts, opts...) }
}

// NewSessionManagerProducer creates a producer for the SessionManagerActor.
func NewSessionManagerProducer(engine *bollywood.Engine, cfg utils.Config, opts ...SessionManagerOption) bollywood.Producer {
	return func() bollywood.Actor {
		a := &SessionManagerActor{
			engine:      engine,
			cfg:         cfg,
			sessions:    make(map[string]*SessionInfo),
			log:         logger.Named("session_manager"),
			maxSessions: cfg.MaxSessions,
		}
		if a.maxSessions <= 0 {
			a.maxSessions = utils.MaxSessions
		}
		for _, opt := range opts {
			opt(a)
		}
		return a
	}
}

// Receive Method
func (a *SessionManagerActor) Receive(ctx bollywood.Context) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Error(context.Background(), "panic recovered in Receive",
				logger.Any("panic", r), logger.String("stack", string(debug.Stack())))
			if ctx.RequestID() != "" {
				ctx.Reply(fmt.Errorf("session manager panicked: %v", r))
			}
		}
	}()

	if a.selfPID == nil {
		a.selfPID = ctx.Self()
	}

	switch msg := ctx.Message().(type) {
	case bollywood.Started:
		a.log.Info(context.Background(), "started",
			logger.String("pid", a.selfPID.String()), logger.Int("max_sessions", a.maxSessions))

	case CreateSessionRequest:
		reply(ctx, a.handleCreate())

	case FindSessionRequest:
		reply(ctx, a.handleFind(msg.SessionID))

	case ListSessionsRequest:
		reply(ctx, a.handleList())

	case CloseSessionRequest:
		reply(ctx, a.handleClose(msg.SessionID))

	case sessionScored:
		if info, ok := a.sessions[msg.SessionID]; ok {
			info.PlayerScore = msg.Score.Player
			info.AIScore = msg.Score.AI
		}

	case bollywood.Stopping:
		a.log.Info(context.Background(), "stopping, shutting down all sessions", logger.Int("sessions", len(a.sessions)))
		for id, info := range a.sessions {
			a.engine.Stop(info.PID)
			delete(a.sessions, id)
		}

	case bollywood.Stopped:

	default:
		a.log.Warn(context.Background(), "unknown message", logger.String("type", fmt.Sprintf("%T", msg)))
		if ctx.RequestID() != "" {
			ctx.Reply(fmt.Errorf("unknown message type: %T", msg))
		}
	}
}

// reply answers an Ask. Requests that did not come via Ask have nobody to
// answer and are dropped.
func reply(ctx bollywood.Context, response interface{}) {
	if ctx.RequestID() != "" {
		ctx.Reply(response)
	}
}

func (a *SessionManagerActor) handleCreate() interface{} {
	if len(a.sessions) >= a.maxSessions {
		a.log.Warn(context.Background(), "session limit reached", logger.Int("max_sessions", a.maxSessions))
		return fmt.Errorf("%w: limit is %d", ErrTooManySessions, a.maxSessions)
	}

	session := NewSession(a.cfg, a.sessionOpts...)
	if _, exists := a.sessions[session.ID]; exists {
		return fmt.Errorf("session %s already exists", session.ID)
	}
	pid := a.engine.Spawn(bollywood.NewProps(NewSessionActorProducer(a.engine, a.cfg, session, a.selfPID, a.actorOpts...)))
	if pid == nil {
		return fmt.Errorf("failed to spawn actor for session %s", session.ID)
	}

	info := &SessionInfo{SessionID: session.ID, PID: pid}
	a.sessions[session.ID] = info
	a.log.Info(context.Background(), "session created",
		logger.String("session_id", session.ID), logger.Int("sessions", len(a.sessions)))
	return *info
}

func (a *SessionManagerActor) handleFind(id string) interface{} {
	info, ok := a.sessions[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return *info
}

func (a *SessionManagerActor) handleList() interface{} {
	list := make([]SessionInfo, 0, len(a.sessions))
	for _, info := range a.sessions {
		list = append(list, *info)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].SessionID < list[j].SessionID })
	return SessionListResponse{Sessions: list}
}

func (a *SessionManagerActor) handleClose(id string) interface{} {
	info, ok := a.sessions[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	delete(a.sessions, id)
	a.engine.Stop(info.PID)
	a.log.Info(context.Background(), "session closed",
		logger.String("session_id", id), logger.Int("sessions", len(a.sessions)))
	return *info
}
