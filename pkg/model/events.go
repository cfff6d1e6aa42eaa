package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	EventSessionLogin  = "session.login"
	EventSessionLogout = "session.logout"
)

// Envelope wraps every session lifecycle event published on the bus.
type Envelope struct {
	ID        uuid.UUID       `json:"id"`
	EventType string          `json:"event_type"`
	Service   string          `json:"service"`
	SessionID string          `json:"session_id"`
	Version   string          `json:"version"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// SessionLogin never carries the credential itself.
type SessionLogin struct {
	Username  string `json:"username"`
	TokenType string `json:"token_type,omitempty"`
	ExpiresIn int64  `json:"expires_in,omitempty"`
}
