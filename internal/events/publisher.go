package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/Checker-Finance/session-client/internal/metrics"
	"github.com/Checker-Finance/session-client/pkg/authclient"
	"github.com/Checker-Finance/session-client/pkg/model"
)

// jetStream is the slice of nats.JetStreamContext the publisher needs.
type jetStream interface {
	PublishMsg(m *nats.Msg, opts ...nats.PubOpt) (*nats.PubAck, error)
}

// Publisher emits session lifecycle events. Publishing is best-effort:
// failures are logged and counted, never returned to login/logout.
type Publisher struct {
	js        jetStream
	subject   string
	service   string
	sessionID string
	logger    *zap.Logger
	now       func() time.Time
}

var _ authclient.Listener = (*Publisher)(nil)

// New creates a Publisher on the connection's JetStream context.
func New(nc *nats.Conn, subject, service, sessionID string, logger *zap.Logger) (*Publisher, error) {
	js, err := nc.JetStream()
	if err != nil {
		return nil, err
	}
	return newPublisher(js, subject, service, sessionID, logger), nil
}

func newPublisher(js jetStream, subject, service, sessionID string, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{
		js:        js,
		subject:   subject,
		service:   service,
		sessionID: sessionID,
		logger:    logger,
		now:       time.Now,
	}
}

func (p *Publisher) LoggedIn(username string, resp *authclient.LoginResponse) {
	payload := model.SessionLogin{Username: username}
	if resp != nil {
		payload.TokenType = resp.TokenType
		payload.ExpiresIn = resp.ExpiresIn
	}
	p.publish(model.EventSessionLogin, payload)
}

func (p *Publisher) LoggedOut() {
	p.publish(model.EventSessionLogout, nil)
}

func (p *Publisher) publish(eventType string, payload any) {
	env := &model.Envelope{
		ID:        uuid.New(),
		EventType: eventType,
		Service:   p.service,
		SessionID: p.sessionID,
		Version:   "1.0.0",
		Timestamp: p.now().UTC(),
	}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			p.logger.Error("events.marshal_failed", zap.String("event_type", eventType), zap.Error(err))
			metrics.IncEvent(p.subject, "error")
			return
		}
		env.Payload = data
	}

	data, err := json.Marshal(env)
	if err != nil {
		p.logger.Error("events.marshal_failed", zap.String("event_type", eventType), zap.Error(err))
		metrics.IncEvent(p.subject, "error")
		return
	}

	msg := &nats.Msg{
		Subject: p.subject,
		Data:    data,
		Header: nats.Header{
			"event_type":   []string{eventType},
			"service":      []string{p.service},
			"content_type": []string{"application/json"},
		},
	}

	if _, err := p.js.PublishMsg(msg); err != nil {
		p.logger.Warn("events.publish_failed",
			zap.String("subject", p.subject),
			zap.String("event_type", eventType),
			zap.Error(err))
		metrics.IncEvent(p.subject, "error")
		return
	}

	metrics.IncEvent(p.subject, "ok")
	p.logger.Debug("events.publish_success",
		zap.String("subject", p.subject),
		zap.String("event_type", eventType))
}
