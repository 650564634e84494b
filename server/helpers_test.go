// File: server/helpers_test.go
package server

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lguibr/solopong/bollywood"
	"github.com/lguibr/solopong/game"
	"github.com/lguibr/solopong/metrics"
	"github.com/lguibr/solopong/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"
)

const (
	testShutdownTimeout = 2 * time.Second
	readTimeoutShort    = 2 * time.Second
	waitForStateTimeout = 3 * time.Second
	pollInterval        = 10 * time.Millisecond
)

type testEnv struct {
	Engine     *bollywood.Engine
	ManagerPID *bollywood.PID
	Server     *httptest.Server
	Metrics    *metrics.Manager
	WsURL      string
	Origin     string
}

// setupTestEnv starts an engine, a session manager and an HTTP test server
// with every route mounted.
func setupTestEnv(t *testing.T, cfg utils.Config) testEnv {
	t.Helper()

	engine := bollywood.NewEngine()
	managerPID := engine.Spawn(bollywood.NewProps(game.NewSessionManagerProducer(engine, cfg)))
	require.NotNil(t, managerPID, "manager PID should not be nil")

	m := metrics.NewManager(metrics.WithPrometheusRegistry(prometheus.NewRegistry()))
	srv := New(engine, managerPID, WithConfig(cfg), WithMetrics(m), WithAskTimeout(time.Second))
	ts := httptest.NewServer(srv.Routes())

	t.Cleanup(func() {
		ts.Close()
		engine.Shutdown(testShutdownTimeout)
	})

	return testEnv{
		Engine:     engine,
		ManagerPID: managerPID,
		Server:     ts,
		Metrics:    m,
		WsURL:      "ws" + strings.TrimPrefix(ts.URL, "http"),
		Origin:     "http://localhost/",
	}
}

func (e testEnv) dial(t *testing.T, query string) *websocket.Conn {
	t.Helper()
	ws, err := websocket.Dial(e.WsURL+"/subscribe"+query, "", e.Origin)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })
	return ws
}

// readWsJSONMessage reads one JSON frame, failing after timeout instead of
// blocking the test forever.
func readWsJSONMessage(t *testing.T, ws *websocket.Conn, timeout time.Duration, v interface{}) error {
	t.Helper()
	if ws == nil {
		return errors.New("websocket connection is nil")
	}

	readDone := make(chan error, 1)
	go func() {
		if err := ws.SetReadDeadline(time.Now().Add(timeout)); err != nil {
			if errors.Is(err, net.ErrClosed) {
				readDone <- io.EOF
				return
			}
			readDone <- fmt.Errorf("failed to set read deadline: %w", err)
			return
		}
		err := websocket.JSON.Receive(ws, v)
		_ = ws.SetReadDeadline(time.Time{})
		readDone <- err
	}()

	select {
	case err := <-readDone:
		return err
	case <-time.After(timeout + 500*time.Millisecond):
		_ = ws.Close()
		return fmt.Errorf("websocket read timeout after %v", timeout)
	}
}

// readUntil reads frames until one has the wanted messageType.
func readUntil(t *testing.T, ws *websocket.Conn, messageType string, v interface{}) {
	t.Helper()
	deadline := time.Now().Add(waitForStateTimeout)
	for time.Now().Before(deadline) {
		var raw map[string]interface{}
		require.NoError(t, readWsJSONMessage(t, ws, readTimeoutShort, &raw))
		if raw["messageType"] != messageType {
			continue
		}
		if v != nil {
			remarshal(t, raw, v)
		}
		return
	}
	t.Fatalf("no %q message within %v", messageType, waitForStateTimeout)
}
