// File: server/connection_handler.go
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/lguibr/solopong/bollywood"
	"github.com/lguibr/solopong/game"
	"github.com/lguibr/solopong/logger"
	"golang.org/x/net/websocket"
)

const (
	readTimeout         = 90 * time.Second
	readLoopExitTimeout = 2 * time.Second
)

// errActorStopping marks cleanup triggered by the actor's own shutdown.
var errActorStopping = errors.New("connection handler actor stopping")

// readLoopMsg carries one raw frame read from the websocket.
type readLoopMsg struct {
	Payload json.RawMessage
}

// readLoopExited is sent to the handler when its read loop returns.
type readLoopExited struct {
	Err error
}

// ConnectionHandlerActor owns one websocket subscription: it attaches the
// client to its session and turns inbound pointer frames into PointerMoved.
type ConnectionHandlerActor struct {
	conn       *websocket.Conn
	client     *game.WebsocketClient
	engine     *bollywood.Engine
	managerPID *bollywood.PID
	sessionPID *bollywood.PID
	sessionID  string
	ownSession bool // close the session when the connection ends
	selfPID    *bollywood.PID
	log        logger.Logger

	stopReadLoop   chan struct{}
	readLoopDone   chan struct{}
	readLoopActive bool
	done           chan struct{}
	closeOnce      sync.Once
}

// ConnectionHandlerArgs holds arguments for creating the actor.
type ConnectionHandlerArgs struct {
	Conn       *websocket.Conn
	Engine     *bollywood.Engine
	ManagerPID *bollywood.PID
	Session    game.SessionInfo
	OwnSession bool
	Done       chan struct{}
}

// NewConnectionHandlerProducer creates a producer for ConnectionHandlerActor.
func NewConnectionHandlerProducer(args ConnectionHandlerArgs) bollywood.Producer {
	return func() bollywood.Actor {
		addr := "unknown"
		if args.Conn != nil && args.Conn.Request() != nil {
			addr = args.Conn.Request().RemoteAddr
		}
		return &ConnectionHandlerActor{
			conn:         args.Conn,
			client:       game.NewWebsocketClient(args.Conn),
			engine:       args.Engine,
			managerPID:   args.ManagerPID,
			sessionPID:   args.Session.PID,
			sessionID:    args.Session.SessionID,
			ownSession:   args.OwnSession,
			log:          logger.Named("connection").With(logger.String("remote", addr), logger.String("session_id", args.Session.SessionID)),
			stopReadLoop: make(chan struct{}),
			readLoopDone: make(chan struct{}),
			done:         args.Done,
		}
	}
}

// Receive handles messages for the ConnectionHandlerActor.
func (a *ConnectionHandlerActor) Receive(ctx bollywood.Context) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Error(context.Background(), "panic recovered in Receive",
				logger.Any("panic", r), logger.String("stack", string(debug.Stack())))
			a.cleanup(fmt.Errorf("panic in Receive: %v", r))
		}
	}()

	if a.selfPID == nil {
		a.selfPID = ctx.Self()
	}

	switch msg := ctx.Message().(type) {
	case bollywood.Started:
		if a.sessionPID == nil {
			a.cleanup(errors.New("missing session PID"))
			return
		}
		a.engine.Send(a.sessionPID, game.Subscribe{Client: a.client}, a.selfPID)
		a.readLoopActive = true
		go a.readLoop(a.engine, a.selfPID)
		a.log.Debug(context.Background(), "subscribed", logger.String("client_id", a.client.ID()))

	case readLoopMsg:
		a.handleFrame(msg.Payload)

	case readLoopExited:
		a.cleanup(msg.Err)

	case bollywood.Stopping:
		a.signalAndWaitForReadLoop()
		a.performCleanupActions(errActorStopping)

	case bollywood.Stopped:
		a.closeOnce.Do(func() {
			if a.done != nil {
				close(a.done)
			}
		})
	}
}

// handleFrame decodes one client frame. Only pointer frames are understood;
// anything else is ignored.
func (a *ConnectionHandlerActor) handleFrame(payload json.RawMessage) {
	var header game.MessageHeader
	if err := json.Unmarshal(payload, &header); err != nil {
		a.log.Debug(context.Background(), "dropping malformed frame", logger.Error(err))
		return
	}
	if header.MessageType != game.MessageTypePointer {
		return
	}
	var pointer game.PointerMessage
	if err := json.Unmarshal(payload, &pointer); err != nil {
		a.log.Debug(context.Background(), "dropping malformed pointer frame", logger.Error(err))
		return
	}
	a.engine.Send(a.sessionPID, game.PointerMoved{Y: pointer.Y}, a.selfPID)
}

func (a *ConnectionHandlerActor) readLoop(engine *bollywood.Engine, selfPID *bollywood.PID) {
	var exitErr error
	defer func() {
		if r := recover(); r != nil {
			exitErr = fmt.Errorf("panic in read loop: %v", r)
		}
		close(a.readLoopDone)
		engine.Send(selfPID, readLoopExited{Err: exitErr}, nil)
	}()

	for {
		select {
		case <-a.stopReadLoop:
			return
		default:
		}

		var message json.RawMessage
		_ = a.conn.SetReadDeadline(time.Now().Add(readTimeout))
		err := websocket.JSON.Receive(a.conn, &message)
		_ = a.conn.SetReadDeadline(time.Time{})
		if err != nil {
			exitErr = err
			return
		}
		engine.Send(selfPID, readLoopMsg{Payload: message}, nil)
	}
}

// signalAndWaitForReadLoop stops the read loop and waits for it to exit.
func (a *ConnectionHandlerActor) signalAndWaitForReadLoop() {
	select {
	case <-a.stopReadLoop:
		return
	default:
		close(a.stopReadLoop)
	}

	// Closing unblocks a pending Receive.
	_ = a.client.Close()

	if !a.readLoopActive {
		return
	}
	select {
	case <-a.readLoopDone:
	case <-time.After(readLoopExitTimeout):
		a.log.Warn(context.Background(), "timeout waiting for read loop to exit")
	}
}

// cleanup runs when the connection ends on its own, then stops the actor.
func (a *ConnectionHandlerActor) cleanup(reason error) {
	a.signalAndWaitForReadLoop()
	a.performCleanupActions(reason)
	if !errors.Is(reason, errActorStopping) && a.selfPID != nil {
		a.engine.Stop(a.selfPID)
	}
}

func (a *ConnectionHandlerActor) performCleanupActions(reason error) {
	if a.sessionPID == nil {
		return
	}
	if game.IsConnectionClosed(reason) || reason == nil || errors.Is(reason, errActorStopping) {
		a.log.Debug(context.Background(), "connection closed")
	} else {
		a.log.Info(context.Background(), "connection ended", logger.Error(reason))
	}
	a.engine.Send(a.sessionPID, game.Unsubscribe{ClientID: a.client.ID()}, a.selfPID)
	if a.ownSession && a.managerPID != nil {
		a.engine.Send(a.managerPID, game.CloseSessionRequest{SessionID: a.sessionID}, a.selfPID)
	}
	a.sessionPID = nil
}
