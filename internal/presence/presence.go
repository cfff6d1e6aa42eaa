package presence

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Checker-Finance/session-client/internal/httpclient"
)

// presencePath is spelled the way the backend routes it.
const presencePath = "/api/pressence"

// Payload is the user's current location report.
type Payload struct {
	UserID    string  `json:"user_id"`
	Lng       float64 `json:"lng"`
	Lat       float64 `json:"lat"`
	Timestamp string  `json:"timestamp"`
}

// Validate rejects payloads the backend cannot attribute or place.
func (p Payload) Validate() error {
	if p.UserID == "" {
		return errors.New("user_id is required")
	}
	if p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("lat %v out of range", p.Lat)
	}
	if p.Lng < -180 || p.Lng > 180 {
		return fmt.Errorf("lng %v out of range", p.Lng)
	}
	return nil
}

// Reporter posts presence reports. It never retries: a stale location is not worth resending.
type Reporter struct {
	exec *httpclient.Executor
	now  func() time.Time
}

func NewReporter(exec *httpclient.Executor) *Reporter {
	return &Reporter{exec: exec.Single(), now: time.Now}
}

// Send posts p; an empty Timestamp is filled with the current UTC time.
// Failures are returned to the caller.
func (r *Reporter) Send(ctx context.Context, p Payload) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("invalid presence: %w", err)
	}
	if p.Timestamp == "" {
		p.Timestamp = r.now().UTC().Format(time.RFC3339)
	}
	if err := r.exec.DoJSON(ctx, http.MethodPost, presencePath, p, nil); err != nil {
		return fmt.Errorf("send presence: %w", err)
	}
	return nil
}
