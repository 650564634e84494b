// File: game/messages.go
package game

import (
	"github.com/lguibr/solopong/bollywood"
)

// --- Message Header ---
// Used for identifying message types after unmarshalling from JSON
type MessageHeader struct {
	MessageType string `json:"messageType"`
}

// Wire message types.
const (
	MessageTypeSnapshot          = "snapshot"
	MessageTypeScoreChanged      = "scoreChanged"
	MessageTypeSessionAssignment = "sessionAssignment"
	MessageTypePointer           = "pointer"
)

// --- WebSocket Messages (Client <-> Server) ---

// SnapshotUpdate carries one rendered frame to subscribers.
type SnapshotUpdate struct {
	MessageType string `json:"messageType"` // "snapshot"
	Snapshot
}

func NewSnapshotUpdate(s Snapshot) SnapshotUpdate {
	return SnapshotUpdate{MessageType: MessageTypeSnapshot, Snapshot: s}
}

// ScoreUpdate signals that one side scored.
type ScoreUpdate struct {
	MessageType string `json:"messageType"` // "scoreChanged"
	Side        Side   `json:"side"`
	NewValue    int    `json:"newValue"`
}

func NewScoreUpdate(e ScoreChanged) ScoreUpdate {
	return ScoreUpdate{MessageType: MessageTypeScoreChanged, Side: e.Side, NewValue: e.NewValue}
}

// SessionAssignment tells a freshly attached client which session it watches.
type SessionAssignment struct {
	MessageType string `json:"messageType"` // "sessionAssignment"
	SessionID   string `json:"sessionId"`
}

// PointerMessage is the only message a client sends: the pointer's vertical
// position in board coordinates.
type PointerMessage struct {
	MessageType string  `json:"messageType"` // "pointer"
	Y           float64 `json:"y"`
}

// --- Actor Messages (Internal Communication) ---

// --- SessionActor Messages ---

// tickMsg is posted by the session's own ticker.
type tickMsg struct{}

// PointerMoved forwards pointer input to a session.
type PointerMoved struct {
	Y float64
}

// Subscribe attaches a client to a session's broadcast.
type Subscribe struct {
	Client Client
}

// Unsubscribe detaches a client, by ID.
type Unsubscribe struct {
	ClientID string
}

// GetSnapshotRequest asks a SessionActor for its current snapshot (via Ask).
type GetSnapshotRequest struct{}

// --- SessionManagerActor Messages ---

// CreateSessionRequest asks the manager to start a new session (via Ask).
// The reply is a SessionInfo or an error.
type CreateSessionRequest struct{}

// FindSessionRequest looks a session up by ID (via Ask). The reply is a
// SessionInfo or ErrSessionNotFound.
type FindSessionRequest struct {
	SessionID string
}

// ListSessionsRequest asks for every running session (via Ask).
type ListSessionsRequest struct{}

// SessionListResponse is the reply to ListSessionsRequest.
type SessionListResponse struct {
	Sessions []SessionInfo `json:"sessions"`
}

// CloseSessionRequest stops a session (via Ask). The reply is a SessionInfo
// for the stopped session or ErrSessionNotFound.
type CloseSessionRequest struct {
	SessionID string
}

// SessionInfo describes one running session.
type SessionInfo struct {
	SessionID   string         `json:"sessionId"`
	PlayerScore int            `json:"playerScore"`
	AIScore     int            `json:"aiScore"`
	PID         *bollywood.PID `json:"-"`
}

// sessionScored is sent by a SessionActor to its manager after every point.
type sessionScored struct {
	SessionID string
	Score     Score
}

// --- BroadcasterActor Messages ---

// AddClient tells the Broadcaster to start sending updates to a client.
// Greeting is sent to that client alone before any broadcast.
type AddClient struct {
	Client   Client
	Greeting []interface{}
}

// RemoveClient tells the Broadcaster to stop sending updates to a client.
type RemoveClient struct {
	ClientID string
}

// BroadcastCommand fans a batch of wire messages out to every client.
type BroadcastCommand struct {
	Messages []interface{}
}

// ClientGone is sent by the Broadcaster to its session when a send fails.
type ClientGone struct {
	ClientID string
}
