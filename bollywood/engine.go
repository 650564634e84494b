package bollywood

import (
	stdcontext "context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lguibr/solopong/logger"
)

var background = stdcontext.Background()

// Engine manages the lifecycle and message dispatching for actors.
type Engine struct {
	pidCounter  uint64
	reqCounter  uint64
	actors      map[string]*process
	mu          sync.RWMutex
	stopping    atomic.Bool
	mailboxSize int
	log         logger.Logger

	pendingMu sync.Mutex
	pending   map[string]chan interface{}
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for engine and process diagnostics.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithMailboxSize sets the per-actor mailbox capacity.
func WithMailboxSize(size int) Option {
	return func(e *Engine) {
		if size > 0 {
			e.mailboxSize = size
		}
	}
}

// NewEngine creates a new actor engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		actors:      make(map[string]*process),
		pending:     make(map[string]chan interface{}),
		mailboxSize: defaultMailboxSize,
		log:         logger.Named("bollywood"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) nextPID() *PID {
	id := atomic.AddUint64(&e.pidCounter, 1)
	return &PID{ID: fmt.Sprintf("actor-%d", id)}
}

// Spawn creates and starts a new actor based on the provided Props.
// It returns the PID of the newly created actor, or nil once the engine is stopping.
func (e *Engine) Spawn(props *Props) *PID {
	if e.stopping.Load() {
		e.log.Warn(background, "engine is stopping, cannot spawn new actors")
		return nil
	}

	pid := e.nextPID()
	proc := newProcess(e, pid, props, e.mailboxSize)

	e.mu.Lock()
	e.actors[pid.ID] = proc
	e.mu.Unlock()

	go proc.run()

	proc.sendMessage(&messageEnvelope{Message: Started{}})
	return pid
}

// Send delivers a message to the actor identified by the PID.
func (e *Engine) Send(pid *PID, message interface{}, sender *PID) {
	if pid == nil {
		return
	}
	if e.stopping.Load() && !isSystemMessage(message) {
		return
	}
	if proc, ok := e.lookup(pid); ok {
		proc.sendMessage(&messageEnvelope{Sender: sender, Message: message})
	}
}

// Ask sends message to pid and waits for the actor to call Context.Reply.
// An error value given to Reply is returned as the error.
func (e *Engine) Ask(pid *PID, message interface{}, timeout time.Duration) (interface{}, error) {
	if e.stopping.Load() {
		return nil, ErrEngineStopping
	}
	if pid == nil {
		return nil, ErrActorNotFound
	}
	proc, ok := e.lookup(pid)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrActorNotFound, pid.ID)
	}

	requestID := fmt.Sprintf("req-%d", atomic.AddUint64(&e.reqCounter, 1))
	replyCh := make(chan interface{}, 1)
	e.pendingMu.Lock()
	e.pending[requestID] = replyCh
	e.pendingMu.Unlock()
	defer func() {
		e.pendingMu.Lock()
		delete(e.pending, requestID)
		e.pendingMu.Unlock()
	}()

	if !proc.sendMessage(&messageEnvelope{Message: message, RequestID: requestID}) {
		return nil, fmt.Errorf("%w: %s", ErrActorNotFound, pid.ID)
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case reply := <-replyCh:
		if err, isErr := reply.(error); isErr {
			return nil, err
		}
		return reply, nil
	case <-timer.C:
		return nil, fmt.Errorf("%w after %s waiting for %s", ErrTimeout, timeout, pid.ID)
	}
}

func (e *Engine) resolve(requestID string, response interface{}) {
	e.pendingMu.Lock()
	replyCh, ok := e.pending[requestID]
	e.pendingMu.Unlock()
	if !ok {
		return
	}
	select {
	case replyCh <- response:
	default:
	}
}

func (e *Engine) lookup(pid *PID) (*process, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	proc, ok := e.actors[pid.ID]
	return proc, ok
}

// Stop requests an actor to stop processing messages and shut down.
func (e *Engine) Stop(pid *PID) {
	if pid == nil {
		return
	}
	proc, ok := e.lookup(pid)
	if !ok {
		return
	}
	proc.sendMessage(&messageEnvelope{Message: Stopping{}})
	proc.closeStop()
}

// ActorCount reports how many actors are currently running.
func (e *Engine) ActorCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.actors)
}

func (e *Engine) remove(pid *PID) {
	e.mu.Lock()
	delete(e.actors, pid.ID)
	e.mu.Unlock()
}

// Shutdown stops all actors and waits up to timeout for them to terminate.
func (e *Engine) Shutdown(timeout time.Duration) {
	if !e.stopping.CompareAndSwap(false, true) {
		return
	}

	e.mu.RLock()
	pidsToStop := make([]*PID, 0, len(e.actors))
	for _, proc := range e.actors {
		pidsToStop = append(pidsToStop, proc.pid)
	}
	e.mu.RUnlock()

	e.log.Info(background, "engine shutdown initiated", logger.Int("actors", len(pidsToStop)))
	for _, pid := range pidsToStop {
		e.Stop(pid)
	}

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if e.ActorCount() == 0 {
			e.log.Info(background, "engine shutdown complete")
			return
		}
		time.Sleep(10 * time.Millisecond)
	}

	e.mu.Lock()
	remaining := make([]string, 0, len(e.actors))
	for id := range e.actors {
		remaining = append(remaining, id)
	}
	e.actors = make(map[string]*process)
	e.mu.Unlock()
	e.log.Warn(background, "engine shutdown timeout", logger.Any("remaining", remaining))
}
