package game

import (
	"testing"
	"time"

	"github.com/lguibr/solopong/bollywood"
	"github.com/lguibr/solopong/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Test Setup ---
func setupSessionManagerTest(t *testing.T, cfg utils.Config) (*bollywood.Engine, *bollywood.PID) {
	t.Helper()
	engine := bollywood.NewEngine()
	producer := NewSessionManagerProducer(engine, cfg, WithSessionActorOptions(WithManualTicks()))
	managerPID := engine.Spawn(bollywood.NewProps(producer))
	require.NotNil(t, managerPID, "SessionManager PID should not be nil")
	t.Cleanup(func() { engine.Shutdown(testShutdownTimeout) })
	return engine, managerPID
}

func createSession(t *testing.T, engine *bollywood.Engine, managerPID *bollywood.PID) SessionInfo {
	t.Helper()
	reply, err := engine.Ask(managerPID, CreateSessionRequest{}, askTimeout)
	require.NoError(t, err)
	info, ok := reply.(SessionInfo)
	require.True(t, ok, "expected SessionInfo, got %T", reply)
	return info
}

func listSessions(t *testing.T, engine *bollywood.Engine, managerPID *bollywood.PID) []SessionInfo {
	t.Helper()
	reply, err := engine.Ask(managerPID, ListSessionsRequest{}, askTimeout)
	require.NoError(t, err)
	list, ok := reply.(SessionListResponse)
	require.True(t, ok, "expected SessionListResponse, got %T", reply)
	return list.Sessions
}

// --- Tests ---

func TestSessionManager_StartsEmpty(t *testing.T) {
	engine, managerPID := setupSessionManagerTest(t, utils.DefaultConfig())
	assert.Empty(t, listSessions(t, engine, managerPID))
}

func TestSessionManager_CreateFindClose(t *testing.T) {
	engine, managerPID := setupSessionManagerTest(t, utils.DefaultConfig())

	info := createSession(t, engine, managerPID)
	assert.NotEmpty(t, info.SessionID)
	require.NotNil(t, info.PID)

	reply, err := engine.Ask(managerPID, FindSessionRequest{SessionID: info.SessionID}, askTimeout)
	require.NoError(t, err)
	assert.Equal(t, info.PID, reply.(SessionInfo).PID)

	// The spawned actor is live and answers for its own session.
	snap := askSnapshot(t, engine, info.PID)
	assert.Equal(t, info.SessionID, snap.SessionID)

	_, err = engine.Ask(managerPID, CloseSessionRequest{SessionID: info.SessionID}, askTimeout)
	require.NoError(t, err)

	_, err = engine.Ask(managerPID, FindSessionRequest{SessionID: info.SessionID}, askTimeout)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Empty(t, listSessions(t, engine, managerPID))
	assert.Eventually(t, func() bool { return engine.ActorCount() == 1 }, waitForStateTimeout, pollInterval,
		"only the manager should remain")
}

func TestSessionManager_CloseUnknown(t *testing.T) {
	engine, managerPID := setupSessionManagerTest(t, utils.DefaultConfig())
	_, err := engine.Ask(managerPID, CloseSessionRequest{SessionID: "nope"}, askTimeout)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionManager_EnforcesLimit(t *testing.T) {
	cfg := utils.DefaultConfig()
	cfg.MaxSessions = 2
	engine, managerPID := setupSessionManagerTest(t, cfg)

	first := createSession(t, engine, managerPID)
	createSession(t, engine, managerPID)

	_, err := engine.Ask(managerPID, CreateSessionRequest{}, askTimeout)
	assert.ErrorIs(t, err, ErrTooManySessions)

	_, err = engine.Ask(managerPID, CloseSessionRequest{SessionID: first.SessionID}, askTimeout)
	require.NoError(t, err)
	createSession(t, engine, managerPID)
	assert.Len(t, listSessions(t, engine, managerPID), 2)
}

func TestSessionManager_ListReportsScores(t *testing.T) {
	engine, managerPID := setupSessionManagerTest(t, utils.DefaultConfig())
	a := createSession(t, engine, managerPID)
	b := createSession(t, engine, managerPID)

	engine.Send(managerPID, sessionScored{SessionID: a.SessionID, Score: Score{Player: 3, AI: 1}}, nil)
	engine.Send(managerPID, sessionScored{SessionID: "unknown", Score: Score{Player: 9}}, nil)

	sessions := listSessions(t, engine, managerPID)
	require.Len(t, sessions, 2)
	byID := map[string]SessionInfo{}
	for _, s := range sessions {
		byID[s.SessionID] = s
	}
	assert.Equal(t, 3, byID[a.SessionID].PlayerScore)
	assert.Equal(t, 1, byID[a.SessionID].AIScore)
	assert.Equal(t, 0, byID[b.SessionID].PlayerScore)
	assert.True(t, sessions[0].SessionID < sessions[1].SessionID, "list is sorted by ID")
}

func TestSessionManager_SessionReportsScore(t *testing.T) {
	engine, managerPID := setupSessionManagerTest(t, utils.DefaultConfig())
	info := createSession(t, engine, managerPID)

	// Let the real session play on its own until someone scores.
	for i := 0; i < 2000; i++ {
		engine.Send(info.PID, tickMsg{}, nil)
		if i%200 == 199 {
			askSnapshot(t, engine, info.PID)
		}
	}

	assert.Eventually(t, func() bool {
		reply, err := engine.Ask(managerPID, ListSessionsRequest{}, askTimeout)
		if err != nil {
			return false
		}
		for _, s := range reply.(SessionListResponse).Sessions {
			if s.PlayerScore+s.AIScore > 0 {
				return true
			}
		}
		return false
	}, waitForStateTimeout, 10*time.Millisecond)
}

func TestSessionManager_StopStopsSessions(t *testing.T) {
	engine, managerPID := setupSessionManagerTest(t, utils.DefaultConfig())
	createSession(t, engine, managerPID)
	createSession(t, engine, managerPID)
	require.Eventually(t, func() bool { return engine.ActorCount() == 5 }, waitForStateTimeout, pollInterval)

	engine.Stop(managerPID)

	assert.Eventually(t, func() bool { return engine.ActorCount() == 0 }, waitForStateTimeout, pollInterval)
}

func TestSessionManager_UnknownAsk(t *testing.T) {
	engine, managerPID := setupSessionManagerTest(t, utils.DefaultConfig())
	_, err := engine.Ask(managerPID, "hello", askTimeout)
	assert.Error(t, err)
}
