// File: server/server.go
package server

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/lguibr/solopong/bollywood"
	"github.com/lguibr/solopong/logger"
	"github.com/lguibr/solopong/metrics"
	"github.com/lguibr/solopong/utils"
	"golang.org/x/net/websocket"
)

const defaultAskTimeout = 2 * time.Second

// Server exposes the session manager over HTTP and websockets.
type Server struct {
	engine     *bollywood.Engine
	managerPID *bollywood.PID
	cfg        utils.Config
	log        logger.Logger
	metrics    *metrics.Manager
	askTimeout time.Duration
}

// Option customises a Server.
type Option func(*Server)

func WithConfig(cfg utils.Config) Option {
	return func(s *Server) { s.cfg = cfg }
}

func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

func WithMetrics(m *metrics.Manager) Option {
	return func(s *Server) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithAskTimeout bounds every request the server makes to an actor.
func WithAskTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.askTimeout = d
		}
	}
}

// New creates a server that routes session requests to managerPID.
func New(engine *bollywood.Engine, managerPID *bollywood.PID, opts ...Option) *Server {
	s := &Server{
		engine:     engine,
		managerPID: managerPID,
		cfg:        utils.DefaultConfig(),
		log:        logger.Named("server"),
		metrics:    metrics.Global(),
		askTimeout: defaultAskTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes returns the HTTP handler for every endpoint.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /sessions", s.HandleCreateSession())
	mux.HandleFunc("GET /sessions", s.HandleListSessions())
	mux.HandleFunc("DELETE /sessions/{id}", s.HandleDeleteSession())
	mux.HandleFunc("GET /sessions/{id}/snapshot", s.HandleSnapshot())
	mux.HandleFunc("GET /frame", s.HandleFrame())
	mux.Handle("GET /subscribe", websocket.Handler(s.HandleSubscribe()))
	mux.HandleFunc("GET /health", s.HandleHealth())
	if s.cfg.MetricsEnabled {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}
	return s.instrument(mux)
}

// instrument counts every request by route pattern and status code.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		pattern := r.Pattern
		if pattern == "" {
			pattern = "unmatched"
		}
		s.metrics.RecordHTTPRequest(pattern, r.Method, strconv.Itoa(rec.status))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack lets the websocket handler take over the connection.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}
