package api

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Checker-Finance/session-client/internal/dataset"
	"github.com/Checker-Finance/session-client/internal/presence"
	"github.com/Checker-Finance/session-client/pkg/authclient"
	"github.com/Checker-Finance/session-client/pkg/session"
	"github.com/Checker-Finance/session-client/pkg/utils"
)

// SessionClient is the part of authclient.Client the handler drives.
type SessionClient interface {
	Login(ctx context.Context, username, password string) (*authclient.LoginResponse, error)
	Logout(ctx context.Context)
	Token(ctx context.Context) (string, bool)
	Store() session.Store
}

// PresenceSender forwards presence reports to the backend.
type PresenceSender interface {
	Send(ctx context.Context, p presence.Payload) error
}

// DatasetFetcher loads the dataset from the backend.
type DatasetFetcher interface {
	Get(ctx context.Context) (*dataset.Response, error)
}

// SessionHandler exposes the local session agent over HTTP.
type SessionHandler struct {
	logger   *zap.Logger
	client   SessionClient
	presence PresenceSender
	dataset  DatasetFetcher
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(logger *zap.Logger, client SessionClient, p PresenceSender, d DatasetFetcher) *SessionHandler {
	return &SessionHandler{
		logger:   logger,
		client:   client,
		presence: p,
		dataset:  d,
	}
}

// SessionStatus is the body of GET /api/v1/session.
type SessionStatus struct {
	Authenticated bool   `json:"authenticated"`
	TokenKey      string `json:"token_key"`
	Token         string `json:"token,omitempty"`
}

// LoginBody is the body of POST /api/v1/session/login.
type LoginBody struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResult is returned on a successful login. The token itself is never echoed.
type LoginResult struct {
	TokenType string `json:"token_type"`
	ExpiresIn int64  `json:"expires_in"`
}

// GetSession reports whether a credential is held.
func (h *SessionHandler) GetSession(c *fiber.Ctx) error {
	token, ok := h.client.Token(c.UserContext())
	return c.JSON(SessionStatus{
		Authenticated: ok,
		TokenKey:      h.client.Store().Key(),
		Token:         utils.MaskToken(token),
	})
}

// LoginHandler performs the login exchange.
func (h *SessionHandler) LoginHandler(c *fiber.Ctx) error {
	var req LoginBody
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if req.Username == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "username and password are required"})
	}

	resp, err := h.client.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		var authErr *authclient.AuthenticationFailedError
		if errors.As(err, &authErr) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":  authclient.Describe(err),
				"status": authErr.StatusCode,
				"body":   authErr.Body,
			})
		}
		h.logger.Error("api.login.failed",
			zap.String("username", req.Username),
			zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": authclient.Describe(err)})
	}

	return c.JSON(LoginResult{TokenType: resp.TokenType, ExpiresIn: resp.ExpiresIn})
}

// LogoutHandler clears the credential. It always succeeds.
func (h *SessionHandler) LogoutHandler(c *fiber.Ctx) error {
	h.client.Logout(c.UserContext())
	return c.SendStatus(fiber.StatusNoContent)
}

// PresenceHandler forwards a location report.
func (h *SessionHandler) PresenceHandler(c *fiber.Ctx) error {
	var p presence.Payload
	if err := c.BodyParser(&p); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := p.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := h.presence.Send(c.UserContext(), p); err != nil {
		h.logger.Warn("api.presence.failed",
			zap.String("user_id", p.UserID),
			zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
	return c.SendStatus(fiber.StatusAccepted)
}

// DatasetHandler proxies the dataset.
func (h *SessionHandler) DatasetHandler(c *fiber.Ctx) error {
	resp, err := h.dataset.Get(c.UserContext())
	if err != nil {
		h.logger.Warn("api.dataset.failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(resp)
}
