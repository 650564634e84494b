// File: game/broadcaster_actor.go
package game

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/lguibr/solopong/bollywood"
	"github.com/lguibr/solopong/logger"
	"github.com/lguibr/solopong/metrics"
)

// BroadcasterActor fans a session's wire messages out to its clients.
type BroadcasterActor struct {
	clients    map[string]Client
	selfPID    *bollywood.PID
	sessionPID *bollywood.PID // notified when a client is dropped
	log        logger.Logger
}

// NewBroadcasterProducer creates a producer for BroadcasterActor.
func NewBroadcasterProducer(sessionPID *bollywood.PID) bollywood.Producer {
	return func() bollywood.Actor {
		return &BroadcasterActor{
			clients:    make(map[string]Client),
			sessionPID: sessionPID,
			log:        logger.Named("broadcaster"),
		}
	}
}

// Receive handles messages for the BroadcasterActor.
func (a *BroadcasterActor) Receive(ctx bollywood.Context) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Error(context.Background(), "panic recovered in Receive",
				logger.Any("panic", r), logger.String("stack", string(debug.Stack())))
		}
	}()

	if a.selfPID == nil {
		a.selfPID = ctx.Self()
		a.log = a.log.With(logger.String("pid", a.selfPID.String()))
	}

	switch msg := ctx.Message().(type) {
	case bollywood.Started:

	case AddClient:
		a.addClient(ctx, msg)

	case RemoveClient:
		if client, ok := a.clients[msg.ClientID]; ok {
			a.drop(client)
		}

	case BroadcastCommand:
		a.broadcast(ctx, msg.Messages)

	case bollywood.Stopping:
		a.closeAll()

	case bollywood.Stopped:

	default:
		a.log.Warn(context.Background(), "unknown message", logger.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (a *BroadcasterActor) addClient(ctx bollywood.Context, msg AddClient) {
	if msg.Client == nil {
		return
	}
	a.clients[msg.Client.ID()] = msg.Client
	metrics.ClientConnected()
	for _, m := range msg.Greeting {
		if err := msg.Client.Send(m); err != nil {
			a.log.Warn(context.Background(), "greeting failed, dropping client",
				logger.String("client_id", msg.Client.ID()), logger.Error(err))
			a.handleDisconnects(ctx, []Client{msg.Client})
			return
		}
	}
}

// broadcast sends every message to every client, in order. Clients whose
// connection is gone are dropped after the pass.
func (a *BroadcasterActor) broadcast(ctx bollywood.Context, messages []interface{}) {
	if len(a.clients) == 0 || len(messages) == 0 {
		return
	}

	var disconnected []Client
	for _, client := range a.clients {
		for _, m := range messages {
			err := client.Send(m)
			if err == nil {
				continue
			}
			if IsConnectionClosed(err) {
				disconnected = append(disconnected, client)
				break
			}
			a.log.Error(context.Background(), "failed to send to client",
				logger.String("client_id", client.ID()), logger.Error(err))
		}
	}

	if len(disconnected) > 0 {
		a.handleDisconnects(ctx, disconnected)
	}
}

// handleDisconnects drops clients and tells the session about each one.
func (a *BroadcasterActor) handleDisconnects(ctx bollywood.Context, clients []Client) {
	for _, client := range clients {
		a.drop(client)
		if a.sessionPID != nil {
			ctx.Engine().Send(a.sessionPID, ClientGone{ClientID: client.ID()}, a.selfPID)
		}
	}
}

func (a *BroadcasterActor) drop(client Client) {
	if _, ok := a.clients[client.ID()]; !ok {
		return
	}
	delete(a.clients, client.ID())
	_ = client.Close()
	metrics.ClientDisconnected()
}

func (a *BroadcasterActor) closeAll() {
	if len(a.clients) > 0 {
		a.log.Info(context.Background(), "closing clients", logger.Int("count", len(a.clients)))
	}
	for _, client := range a.clients {
		a.drop(client)
	}
}
