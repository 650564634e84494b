package bollywood

import (
	"fmt"
	"runtime/debug"
	"sync/atomic"

	"github.com/lguibr/solopong/logger"
)

const defaultMailboxSize = 1024

// process represents the running instance of an actor, including its state and mailbox.
type process struct {
	engine  *Engine
	pid     *PID
	actor   Actor
	mailbox chan *messageEnvelope
	props   *Props
	stopCh  chan struct{}
	stopped atomic.Bool
}

func newProcess(engine *Engine, pid *PID, props *Props, mailboxSize int) *process {
	return &process{
		engine:  engine,
		pid:     pid,
		props:   props,
		mailbox: make(chan *messageEnvelope, mailboxSize),
		stopCh:  make(chan struct{}),
	}
}

// sendMessage enqueues without blocking; a full mailbox drops the message.
func (p *process) sendMessage(envelope *messageEnvelope) bool {
	if p.stopped.Load() && !isSystemMessage(envelope.Message) {
		return false
	}
	select {
	case p.mailbox <- envelope:
		return true
	default:
		p.engine.log.Warn(background, "mailbox full, dropping message",
			logger.String("pid", p.pid.ID), logger.String("type", fmt.Sprintf("%T", envelope.Message)))
		return false
	}
}

func (p *process) closeStop() {
	select {
	case <-p.stopCh:
	default:
		close(p.stopCh)
	}
}

// run is the main loop for the actor process.
func (p *process) run() {
	defer func() {
		p.stopped.Store(true)
		if p.actor != nil {
			func() {
				defer func() {
					if r := recover(); r != nil {
						p.engine.log.Error(background, "actor panicked during Stopped",
							logger.String("pid", p.pid.ID), logger.Any("panic", r))
					}
				}()
				p.invokeReceive(&messageEnvelope{Message: Stopped{}})
			}()
		}
		p.engine.remove(p.pid)
		p.drainMailbox()
	}()

	defer func() {
		if r := recover(); r != nil {
			p.engine.log.Error(background, "actor panicked",
				logger.String("pid", p.pid.ID), logger.Any("panic", r), logger.String("stack", string(debug.Stack())))
			p.stopped.Store(true)
			p.closeStop()
		}
	}()

	p.actor = p.props.Produce()
	if p.actor == nil {
		panic(fmt.Sprintf("actor %s producer returned nil actor", p.pid.ID))
	}

	for {
		select {
		case <-p.stopCh:
			if p.stopped.CompareAndSwap(false, true) {
				p.invokeReceive(&messageEnvelope{Message: Stopping{}})
			}
			return

		case envelope := <-p.mailbox:
			if p.stopped.Load() && !isSystemMessage(envelope.Message) {
				if envelope.RequestID != "" {
					p.engine.resolve(envelope.RequestID, ErrActorNotFound)
				}
				continue
			}

			switch envelope.Message.(type) {
			case Stopping:
				if p.stopped.CompareAndSwap(false, true) {
					p.invokeReceive(envelope)
					p.closeStop()
				}
			case Stopped:
				// Delivered by the deferred handler only.
			default:
				p.invokeReceive(envelope)
			}
		}
	}
}

// drainMailbox fails every Ask still queued when the actor exits.
func (p *process) drainMailbox() {
	for {
		select {
		case envelope := <-p.mailbox:
			if envelope.RequestID != "" {
				p.engine.resolve(envelope.RequestID, fmt.Errorf("%w: %s", ErrActorNotFound, p.pid.ID))
			}
		default:
			return
		}
	}
}

// invokeReceive calls the actor's Receive method within a protected context.
func (p *process) invokeReceive(envelope *messageEnvelope) {
	ctx := &context{
		engine:    p.engine,
		self:      p.pid,
		sender:    envelope.Sender,
		message:   envelope.Message,
		requestID: envelope.RequestID,
	}

	defer func() {
		if r := recover(); r != nil {
			p.engine.log.Error(background, "actor panicked during Receive",
				logger.String("pid", p.pid.ID),
				logger.String("type", fmt.Sprintf("%T", envelope.Message)),
				logger.Any("panic", r),
				logger.String("stack", string(debug.Stack())))
			if envelope.RequestID != "" {
				p.engine.resolve(envelope.RequestID, fmt.Errorf("actor %s panicked: %v", p.pid.ID, r))
			}
		}
	}()
	p.actor.Receive(ctx)
}
