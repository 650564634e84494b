// File: game/session_actor_test.go
package game

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/lguibr/solopong/bollywood"
	"github.com/lguibr/solopong/metrics"
	"github.com/lguibr/solopong/utils"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	askTimeout          = 500 * time.Millisecond
	waitForStateTimeout = 2 * time.Second
	pollInterval        = 5 * time.Millisecond
	testShutdownTimeout = 2 * time.Second
)

// spawnTestSession starts a SessionActor around s with manual ticks unless
// opts say otherwise.
func spawnTestSession(t *testing.T, s *Session, cfg utils.Config, opts ...SessionActorOption) (*bollywood.Engine, *bollywood.PID) {
	t.Helper()
	engine := bollywood.NewEngine()
	pid := engine.Spawn(bollywood.NewProps(NewSessionActorProducer(engine, cfg, s, nil, opts...)))
	require.NotNil(t, pid, "SessionActor PID should not be nil")
	t.Cleanup(func() { engine.Shutdown(testShutdownTimeout) })
	return engine, pid
}

func askSnapshot(t *testing.T, engine *bollywood.Engine, pid *bollywood.PID) Snapshot {
	t.Helper()
	reply, err := engine.Ask(pid, GetSnapshotRequest{}, askTimeout)
	require.NoError(t, err)
	snap, ok := reply.(Snapshot)
	require.True(t, ok, "expected Snapshot, got %T", reply)
	return snap
}

func TestSessionActor_SubscribeGreetsClient(t *testing.T) {
	engine, pid := spawnTestSession(t, newTestSession(), utils.DefaultConfig(), WithManualTicks())
	client := newRecordingClient("c1")

	engine.Send(pid, Subscribe{Client: client}, nil)

	require.Eventually(t, func() bool { return len(client.messages()) >= 2 }, waitForStateTimeout, pollInterval)
	msgs := client.messages()
	assert.Equal(t, SessionAssignment{MessageType: MessageTypeSessionAssignment, SessionID: "test-session"}, msgs[0])
	snapshot, ok := msgs[1].(SnapshotUpdate)
	require.True(t, ok)
	assert.Equal(t, MessageTypeSnapshot, snapshot.MessageType)
	assert.Equal(t, uint64(0), snapshot.Tick)
}

func TestSessionActor_TickBroadcastsSnapshot(t *testing.T) {
	s := newTestSession()
	placeBall(s, 400, 250, 6, 4)
	engine, pid := spawnTestSession(t, s, utils.DefaultConfig(), WithManualTicks())
	client := newRecordingClient("c1")
	engine.Send(pid, Subscribe{Client: client}, nil)

	engine.Send(pid, tickMsg{}, nil)

	require.Eventually(t, func() bool { return len(snapshotsOf(client.messages())) >= 2 }, waitForStateTimeout, pollInterval)
	snap := snapshotsOf(client.messages())[1]
	assert.Equal(t, uint64(1), snap.Tick)
	assert.Equal(t, 406.0, snap.BallX)
	assert.Equal(t, 254.0, snap.BallY)
}

func TestSessionActor_ScoreEventPrecedesSnapshot(t *testing.T) {
	s := newTestSession()
	placeBall(s, 5, 100, -6, 4)
	engine, pid := spawnTestSession(t, s, utils.DefaultConfig(), WithManualTicks())
	client := newRecordingClient("c1")
	engine.Send(pid, Subscribe{Client: client}, nil)

	engine.Send(pid, tickMsg{}, nil)

	require.Eventually(t, func() bool { return len(scoreEventsOf(client.messages())) == 1 }, waitForStateTimeout, pollInterval)
	require.Eventually(t, func() bool { return len(client.messages()) >= 4 }, waitForStateTimeout, pollInterval)
	msgs := client.messages()
	assert.Equal(t, ScoreUpdate{MessageType: MessageTypeScoreChanged, Side: SideAI, NewValue: 1}, msgs[2])
	after, ok := msgs[3].(SnapshotUpdate)
	require.True(t, ok)
	assert.Equal(t, 1, after.AIScore)
	assert.Equal(t, 392.5, after.BallX)
}

func TestSessionActor_PointerInput(t *testing.T) {
	engine, pid := spawnTestSession(t, newTestSession(), utils.DefaultConfig(), WithManualTicks())

	engine.Send(pid, PointerMoved{Y: 100}, nil)
	assert.Equal(t, 55.0, askSnapshot(t, engine, pid).PlayerPaddleY)

	engine.Send(pid, PointerMoved{Y: -40}, nil)
	engine.Send(pid, PointerMoved{Y: 9999}, nil)
	assert.Equal(t, 410.0, askSnapshot(t, engine, pid).PlayerPaddleY, "last pointer write wins")
}

func TestSessionActor_TickerDrivesSession(t *testing.T) {
	cfg := utils.DefaultConfig()
	cfg.TickPeriod = 2 * time.Millisecond
	engine, pid := spawnTestSession(t, newTestSession(), cfg)

	assert.Eventually(t, func() bool {
		reply, err := engine.Ask(pid, GetSnapshotRequest{}, askTimeout)
		return err == nil && reply.(Snapshot).Tick >= 5
	}, waitForStateTimeout, 10*time.Millisecond)
}

func TestSessionActor_DropsDeadClient(t *testing.T) {
	engine, pid := spawnTestSession(t, newTestSession(), utils.DefaultConfig(), WithManualTicks())
	healthy := newRecordingClient("healthy")
	dead := newRecordingClient("dead")
	engine.Send(pid, Subscribe{Client: healthy}, nil)
	engine.Send(pid, Subscribe{Client: dead}, nil)
	require.Eventually(t, func() bool { return len(dead.messages()) == 2 }, waitForStateTimeout, pollInterval)

	dead.failWith(io.EOF)
	engine.Send(pid, tickMsg{}, nil)
	engine.Send(pid, tickMsg{}, nil)

	assert.Eventually(t, dead.isClosed, waitForStateTimeout, pollInterval)
	assert.Eventually(t, func() bool { return len(snapshotsOf(healthy.messages())) == 3 }, waitForStateTimeout, pollInterval)
	assert.False(t, healthy.isClosed())
}

func TestSessionActor_Unsubscribe(t *testing.T) {
	engine, pid := spawnTestSession(t, newTestSession(), utils.DefaultConfig(), WithManualTicks())
	client := newRecordingClient("c1")
	engine.Send(pid, Subscribe{Client: client}, nil)
	engine.Send(pid, Unsubscribe{ClientID: "c1"}, nil)

	assert.Eventually(t, client.isClosed, waitForStateTimeout, pollInterval)
	engine.Send(pid, tickMsg{}, nil)
	askSnapshot(t, engine, pid)
	time.Sleep(20 * time.Millisecond)
	assert.Len(t, snapshotsOf(client.messages()), 1, "no frames after unsubscribe")
}

func TestSessionActor_StopClosesClients(t *testing.T) {
	engine, pid := spawnTestSession(t, newTestSession(), utils.DefaultConfig(), WithManualTicks())
	client := newRecordingClient("c1")
	engine.Send(pid, Subscribe{Client: client}, nil)
	require.Eventually(t, func() bool { return len(client.messages()) == 2 }, waitForStateTimeout, pollInterval)

	engine.Stop(pid)

	assert.Eventually(t, client.isClosed, waitForStateTimeout, pollInterval)
	assert.Eventually(t, func() bool { return engine.ActorCount() == 0 }, waitForStateTimeout, pollInterval)
}

func TestSessionActor_UnknownAsk(t *testing.T) {
	engine, pid := spawnTestSession(t, newTestSession(), utils.DefaultConfig(), WithManualTicks())
	_, err := engine.Ask(pid, struct{ Foo int }{1}, askTimeout)
	assert.Error(t, err)
}

// MockBroadcasterActor captures everything a session publishes.
type MockBroadcasterActor struct {
	received chan interface{}
}

func (a *MockBroadcasterActor) Receive(ctx bollywood.Context) {
	switch ctx.Message().(type) {
	case bollywood.Started, bollywood.Stopping, bollywood.Stopped:
	default:
		a.received <- ctx.Message()
	}
}

func TestSessionActor_WithInjectedBroadcaster(t *testing.T) {
	engine := bollywood.NewEngine()
	defer engine.Shutdown(testShutdownTimeout)
	mock := &MockBroadcasterActor{received: make(chan interface{}, 16)}
	mockPID := engine.Spawn(bollywood.NewProps(func() bollywood.Actor { return mock }))

	s := newTestSession()
	placeBall(s, 780, 100, 6, 4)
	pid := engine.Spawn(bollywood.NewProps(NewSessionActorProducer(engine, utils.DefaultConfig(), s, nil, WithManualTicks(), WithBroadcaster(mockPID))))
	engine.Send(pid, tickMsg{}, nil)

	select {
	case msg := <-mock.received:
		cmd, ok := msg.(BroadcastCommand)
		require.True(t, ok, "expected BroadcastCommand, got %T", msg)
		require.Len(t, cmd.Messages, 2)
		assert.Equal(t, NewScoreUpdate(ScoreChanged{Side: SidePlayer, NewValue: 1}), cmd.Messages[0])
		assert.IsType(t, SnapshotUpdate{}, cmd.Messages[1])
	case <-time.After(waitForStateTimeout):
		t.Fatal("broadcaster received nothing")
	}
}

func TestSessionActor_ImmediateStopKeepsActiveSessionsGaugeBalanced(t *testing.T) {
	previous := metrics.Global()
	manager := metrics.NewManager()
	metrics.SetGlobal(manager)
	t.Cleanup(func() { metrics.SetGlobal(previous) })

	engine := bollywood.NewEngine()
	const sessions = 200
	for i := 0; i < sessions; i++ {
		pid := engine.Spawn(bollywood.NewProps(NewSessionActorProducer(engine, utils.DefaultConfig(), newTestSession(), nil, WithManualTicks())))
		require.NotNil(t, pid)
		engine.Stop(pid)
	}
	require.Eventually(t, func() bool { return engine.ActorCount() == 0 }, waitForStateTimeout, pollInterval)
	engine.Shutdown(testShutdownTimeout)

	expected := `
# HELP pongo_game_active_sessions Sessions currently running
# TYPE pongo_game_active_sessions gauge
pongo_game_active_sessions 0
`
	assert.NoError(t, testutil.GatherAndCompare(manager.Registry(), strings.NewReader(expected), "pongo_game_active_sessions"))
}
