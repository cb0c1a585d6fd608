package session

import (
	"fmt"
	"time"

	"keygate/internal/shared/biztime"
	"keygate/internal/shared/id"
)

// Session is one device's exclusive claim on an access key, kept alive by
// heartbeats. The store enforces at most one row per key at any instant;
// starting a new session for a key displaces the old one.
type Session struct {
	dbID          uint
	sessionID     string
	accessKey     string
	startedAt     time.Time
	lastHeartbeat time.Time
}

// NewSession creates a session claim for the given key.
func NewSession(accessKey string) (*Session, error) {
	if accessKey == "" {
		return nil, fmt.Errorf("access key is required")
	}

	sessionID, err := id.NewSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	now := biztime.NowUTC()
	return &Session{
		sessionID:     sessionID,
		accessKey:     accessKey,
		startedAt:     now,
		lastHeartbeat: now,
	}, nil
}

// ReconstructSession rebuilds a Session from persistence.
func ReconstructSession(dbID uint, sessionID, accessKey string,
	startedAt, lastHeartbeat time.Time) (*Session, error) {

	if sessionID == "" {
		return nil, fmt.Errorf("session ID cannot be empty")
	}
	if accessKey == "" {
		return nil, fmt.Errorf("access key cannot be empty")
	}

	return &Session{
		dbID:          dbID,
		sessionID:     sessionID,
		accessKey:     accessKey,
		startedAt:     startedAt,
		lastHeartbeat: lastHeartbeat,
	}, nil
}

func (s *Session) DBID() uint {
	return s.dbID
}

func (s *Session) SessionID() string {
	return s.sessionID
}

func (s *Session) AccessKey() string {
	return s.accessKey
}

func (s *Session) StartedAt() time.Time {
	return s.startedAt
}

func (s *Session) LastHeartbeatAt() time.Time {
	return s.lastHeartbeat
}

// Touch refreshes the heartbeat timestamp.
func (s *Session) Touch() {
	s.lastHeartbeat = biztime.NowUTC()
}

// IsStale reports whether the session has missed heartbeats long enough
// to be reclaimed.
func (s *Session) IsStale(now time.Time, timeout time.Duration) bool {
	return now.Sub(s.lastHeartbeat) > timeout
}
