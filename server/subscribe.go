// File: server/subscribe.go
package server

import (
	"context"

	"github.com/lguibr/solopong/bollywood"
	"github.com/lguibr/solopong/game"
	"github.com/lguibr/solopong/logger"
	"golang.org/x/net/websocket"
)

// HandleSubscribe attaches a websocket to a session. Without a session query
// parameter a fresh session is created and closed again when the socket goes
// away. An unknown session id closes the socket immediately.
func (s *Server) HandleSubscribe() func(ws *websocket.Conn) {
	return func(ws *websocket.Conn) {
		id := ws.Request().URL.Query().Get("session")

		var (
			info game.SessionInfo
			err  error
		)
		own := id == ""
		if own {
			info, err = s.createSession()
		} else {
			info, err = s.findSession(id)
		}
		if err != nil {
			s.log.Warn(context.Background(), "subscribe rejected",
				logger.String("session_id", id), logger.String("remote", ws.Request().RemoteAddr), logger.Error(err))
			_ = ws.Close()
			return
		}

		done := make(chan struct{})
		pid := s.engine.Spawn(bollywood.NewProps(NewConnectionHandlerProducer(ConnectionHandlerArgs{
			Conn:       ws,
			Engine:     s.engine,
			ManagerPID: s.managerPID,
			Session:    info,
			OwnSession: own,
			Done:       done,
		})))
		if pid == nil {
			s.log.Error(context.Background(), "failed to spawn connection handler", logger.String("session_id", info.SessionID))
			if own {
				s.engine.Send(s.managerPID, game.CloseSessionRequest{SessionID: info.SessionID}, nil)
			}
			_ = ws.Close()
			return
		}

		// The websocket package closes the connection when this returns.
		<-done
	}
}
