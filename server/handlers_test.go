// File: server/handlers_test.go
package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/lguibr/solopong/game"
	"github.com/lguibr/solopong/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func createSession(t *testing.T, env testEnv) string {
	t.Helper()
	resp, err := http.Post(env.Server.URL+"/sessions", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body createSessionResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotEmpty(t, body.SessionID)
	return body.SessionID
}

func listSessions(t *testing.T, env testEnv) []game.SessionInfo {
	t.Helper()
	resp, err := http.Get(env.Server.URL + "/sessions")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body game.SessionListResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body.Sessions
}

func doDelete(t *testing.T, env testEnv, id string) int {
	t.Helper()
	req, err := http.NewRequest(http.MethodDelete, env.Server.URL+"/sessions/"+id, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	return resp.StatusCode
}

func getBody(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestSessions_CreateListDelete(t *testing.T) {
	env := setupTestEnv(t, utils.DefaultConfig())

	assert.Empty(t, listSessions(t, env))

	id := createSession(t, env)
	sessions := listSessions(t, env)
	require.Len(t, sessions, 1)
	assert.Equal(t, id, sessions[0].SessionID)
	assert.GreaterOrEqual(t, sessions[0].PlayerScore, 0)

	assert.Equal(t, http.StatusNoContent, doDelete(t, env, id))
	assert.Empty(t, listSessions(t, env))
	assert.Equal(t, http.StatusNotFound, doDelete(t, env, id))
}

func TestSessions_LimitReturnsServiceUnavailable(t *testing.T) {
	cfg := utils.DefaultConfig()
	cfg.MaxSessions = 1
	env := setupTestEnv(t, cfg)

	createSession(t, env)

	resp, err := http.Post(env.Server.URL+"/sessions", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	var body errorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Contains(t, body.Error, "too many sessions")
}

func TestFrame(t *testing.T) {
	env := setupTestEnv(t, utils.DefaultConfig())
	id := createSession(t, env)

	testCases := []struct {
		name       string
		query      string
		wantStatus int
		wantBody   string
	}{
		{"missing session", "", http.StatusBadRequest, "missing session"},
		{"unknown session", "?session=nope", http.StatusNotFound, "session not found"},
		{"bad cols", "?session=" + id + "&cols=abc", http.StatusBadRequest, "invalid cols"},
		{"rows out of range", "?session=" + id + "&rows=0", http.StatusBadRequest, "invalid rows"},
		{"default size", "?session=" + id, http.StatusOK, "PLAYER 0"},
		{"custom size", "?session=" + id + "&cols=40&rows=12", http.StatusOK, "AI 0"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := getBody(t, env.Server.URL+"/frame"+tc.query)
			assert.Equal(t, tc.wantStatus, status)
			assert.Contains(t, body, tc.wantBody)
		})
	}
}

func TestFrame_RespectsGridSize(t *testing.T) {
	env := setupTestEnv(t, utils.DefaultConfig())
	id := createSession(t, env)

	status, body := getBody(t, env.Server.URL+"/frame?session="+id+"&cols=40&rows=12")
	require.Equal(t, http.StatusOK, status)

	lines := strings.Split(strings.TrimRight(body, "\n"), "\n")
	// Header, top border, rows, bottom border.
	require.Len(t, lines, 12+3)
	assert.Equal(t, "+"+strings.Repeat("-", 40)+"+", lines[1])
}

func TestSnapshot_JSONAndMsgpack(t *testing.T) {
	env := setupTestEnv(t, utils.DefaultConfig())
	id := createSession(t, env)
	url := env.Server.URL + "/sessions/" + id + "/snapshot"

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	var fromJSON game.Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&fromJSON))
	assert.Equal(t, id, fromJSON.SessionID)
	assert.Equal(t, 800.0, fromJSON.BoardWidth)

	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	req.Header.Set("Accept", contentTypeMsgpack)
	packed, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer packed.Body.Close()
	require.Equal(t, http.StatusOK, packed.StatusCode)
	assert.Equal(t, contentTypeMsgpack, packed.Header.Get("Content-Type"))

	dec := msgpack.NewDecoder(packed.Body)
	dec.SetCustomStructTag("json")
	var fromMsgpack game.Snapshot
	require.NoError(t, dec.Decode(&fromMsgpack))
	assert.Equal(t, id, fromMsgpack.SessionID)
	assert.Equal(t, 500.0, fromMsgpack.BoardHeight)
	assert.Equal(t, 90.0, fromMsgpack.PaddleHeight)
}

func TestSnapshot_UnknownSession(t *testing.T) {
	env := setupTestEnv(t, utils.DefaultConfig())
	status, _ := getBody(t, env.Server.URL+"/sessions/nope/snapshot?format=msgpack")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestHealth(t *testing.T) {
	env := setupTestEnv(t, utils.DefaultConfig())
	status, body := getBody(t, env.Server.URL+"/health")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `"ok"`)
}

func TestMetricsEndpoint(t *testing.T) {
	env := setupTestEnv(t, utils.DefaultConfig())
	createSession(t, env)

	status, body := getBody(t, env.Server.URL+"/metrics")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `pongo_game_http_requests_total{endpoint="POST /sessions",method="POST",status_code="201"} 1`)
}

func TestMetricsEndpoint_Disabled(t *testing.T) {
	cfg := utils.DefaultConfig()
	cfg.MetricsEnabled = false
	env := setupTestEnv(t, cfg)

	status, _ := getBody(t, env.Server.URL+"/metrics")
	assert.Equal(t, http.StatusNotFound, status)
}
