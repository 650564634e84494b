// File: server/handlers.go
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"

	"github.com/lguibr/solopong/bollywood"
	"github.com/lguibr/solopong/game"
	"github.com/lguibr/solopong/logger"
	"github.com/lguibr/solopong/render"
	"github.com/vmihailenco/msgpack/v5"
)

const contentTypeMsgpack = "application/msgpack"

type createSessionResponse struct {
	SessionID string `json:"sessionId"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// HandleCreateSession starts a new session.
func (s *Server) HandleCreateSession() http.HandlerFunc {
	return s.recovering(func(w http.ResponseWriter, r *http.Request) {
		info, err := s.createSession()
		if err != nil {
			s.writeActorError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusCreated, createSessionResponse{SessionID: info.SessionID})
	})
}

// HandleListSessions lists running sessions with their scores.
func (s *Server) HandleListSessions() http.HandlerFunc {
	return s.recovering(func(w http.ResponseWriter, r *http.Request) {
		reply, err := s.engine.Ask(s.managerPID, game.ListSessionsRequest{}, s.askTimeout)
		if err != nil {
			s.writeActorError(w, r, err)
			return
		}
		list, ok := reply.(game.SessionListResponse)
		if !ok {
			s.writeActorError(w, r, fmt.Errorf("unexpected reply %T", reply))
			return
		}
		s.writeJSON(w, http.StatusOK, list)
	})
}

// HandleDeleteSession stops a session.
func (s *Server) HandleDeleteSession() http.HandlerFunc {
	return s.recovering(func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if _, err := s.engine.Ask(s.managerPID, game.CloseSessionRequest{SessionID: id}, s.askTimeout); err != nil {
			s.writeActorError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

// HandleFrame renders a session's current snapshot as plain text. The grid
// size can be set with the cols and rows query parameters.
func (s *Server) HandleFrame() http.HandlerFunc {
	return s.recovering(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		id := q.Get("session")
		if id == "" {
			s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing session parameter"})
			return
		}
		cols, err := intParam(q.Get("cols"), render.DefaultCols)
		if err != nil {
			s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid cols: " + err.Error()})
			return
		}
		rows, err := intParam(q.Get("rows"), render.DefaultRows)
		if err != nil {
			s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid rows: " + err.Error()})
			return
		}

		info, err := s.findSession(id)
		if err != nil {
			s.writeActorError(w, r, err)
			return
		}
		snap, err := s.snapshot(info.PID)
		if err != nil {
			s.writeActorError(w, r, err)
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(render.ASCII(snap, cols, rows))); err != nil {
			s.log.Warn(r.Context(), "failed to write frame", logger.Error(err))
		}
	})
}

// HandleSnapshot returns a session's current snapshot as JSON, or as
// msgpack when the client asks for it with format=msgpack or an Accept header.
func (s *Server) HandleSnapshot() http.HandlerFunc {
	return s.recovering(func(w http.ResponseWriter, r *http.Request) {
		info, err := s.findSession(r.PathValue("id"))
		if err != nil {
			s.writeActorError(w, r, err)
			return
		}
		snap, err := s.snapshot(info.PID)
		if err != nil {
			s.writeActorError(w, r, err)
			return
		}

		if !wantsMsgpack(r) {
			s.writeJSON(w, http.StatusOK, snap)
			return
		}
		w.Header().Set("Content-Type", contentTypeMsgpack)
		w.WriteHeader(http.StatusOK)
		enc := msgpack.NewEncoder(w)
		enc.SetCustomStructTag("json")
		if err := enc.Encode(&snap); err != nil {
			s.log.Warn(r.Context(), "failed to encode snapshot", logger.Error(err))
		}
	})
}

func wantsMsgpack(r *http.Request) bool {
	if r.URL.Query().Get("format") == "msgpack" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), contentTypeMsgpack)
}

// HandleHealth reports whether the session manager answers.
func (s *Server) HandleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := s.engine.Ask(s.managerPID, game.ListSessionsRequest{}, s.askTimeout); err != nil {
			s.writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func (s *Server) createSession() (game.SessionInfo, error) {
	reply, err := s.engine.Ask(s.managerPID, game.CreateSessionRequest{}, s.askTimeout)
	if err != nil {
		return game.SessionInfo{}, err
	}
	info, ok := reply.(game.SessionInfo)
	if !ok {
		return game.SessionInfo{}, fmt.Errorf("unexpected reply %T", reply)
	}
	return info, nil
}

func (s *Server) findSession(id string) (game.SessionInfo, error) {
	reply, err := s.engine.Ask(s.managerPID, game.FindSessionRequest{SessionID: id}, s.askTimeout)
	if err != nil {
		return game.SessionInfo{}, err
	}
	info, ok := reply.(game.SessionInfo)
	if !ok {
		return game.SessionInfo{}, fmt.Errorf("unexpected reply %T", reply)
	}
	return info, nil
}

func (s *Server) snapshot(pid *bollywood.PID) (game.Snapshot, error) {
	reply, err := s.engine.Ask(pid, game.GetSnapshotRequest{}, s.askTimeout)
	if err != nil {
		return game.Snapshot{}, err
	}
	snap, ok := reply.(game.Snapshot)
	if !ok {
		return game.Snapshot{}, fmt.Errorf("unexpected reply %T", reply)
	}
	return snap, nil
}

// writeActorError maps actor errors onto HTTP status codes.
func (s *Server) writeActorError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, game.ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, game.ErrTooManySessions):
		status = http.StatusServiceUnavailable
	case errors.Is(err, bollywood.ErrTimeout):
		status = http.StatusGatewayTimeout
	}
	if status >= http.StatusInternalServerError {
		s.log.Error(r.Context(), "request failed",
			logger.String("path", r.URL.Path), logger.Int("status", status), logger.Error(err))
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn(context.Background(), "failed to encode response", logger.Error(err))
	}
}

func (s *Server) recovering(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.log.Error(r.Context(), "panic recovered in handler",
					logger.String("path", r.URL.Path), logger.Any("panic", rec),
					logger.String("stack", string(debug.Stack())))
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()
		h(w, r)
	}
}

func intParam(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if v <= 0 || v > 500 {
		return 0, fmt.Errorf("%d out of range", v)
	}
	return v, nil
}
