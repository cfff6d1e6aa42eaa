// Package authclient performs the username/password login exchange and attaches
// the resulting session credential to outbound requests.
//
// Consumers pick the attachment form that fits their HTTP stack:
// BuildAuthHeaders for plain header maps, Header for net/http header sets,
// Authorize for a single request, and Transport to wrap an http.Client so
// every request it sends carries the current credential.
package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Checker-Finance/session-client/internal/metrics"
	"github.com/Checker-Finance/session-client/pkg/session"
)

const (
	loginPath = "/auth/login"

	// HeaderAuthorization is the header owned by the client.
	HeaderAuthorization = "Authorization"

	maxErrorBody = 64 << 10
	maxLoginBody = 1 << 20
)

// Client performs the login exchange and stamps the session credential on outbound requests.
// It never caches the credential: every header build re-reads the store.
type Client struct {
	logger   *zap.Logger
	baseURL  string
	store    session.Store
	http     *http.Client
	listener Listener
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient sets the client used for the login exchange.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.http = c
		}
	}
}

// WithListener registers an observer for login/logout transitions.
func WithListener(l Listener) Option {
	return func(cl *Client) {
		cl.listener = l
	}
}

// New creates a Client for the API at baseURL backed by store.
func New(logger *zap.Logger, baseURL string, store session.Store, opts ...Option) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		logger:  logger,
		baseURL: strings.TrimRight(baseURL, "/"),
		store:   store,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Store exposes the backing credential store.
func (c *Client) Store() session.Store { return c.store }

// Login exchanges username/password for a credential and stores it.
// A failed login leaves any existing credential in place.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	data, err := json.Marshal(LoginRequest{Username: username, Password: password})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+loginPath, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.ObserveDuration(metrics.OutboundRequestDuration, start, loginPath, http.MethodPost)
	if err != nil {
		metrics.IncLogin("error")
		c.logger.Error("session.login_failed",
			zap.String("user", username),
			zap.Error(err))
		return nil, fmt.Errorf("login request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck
	metrics.IncOutbound(loginPath, http.MethodPost, fmt.Sprint(resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		metrics.IncLogin("auth_failed")
		c.logger.Warn("session.login_rejected",
			zap.String("user", username),
			zap.Int("status", resp.StatusCode))
		return nil, &AuthenticationFailedError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxLoginBody))
	if err != nil {
		metrics.IncLogin("error")
		c.logger.Error("session.login_failed",
			zap.String("user", username),
			zap.Error(err))
		return nil, fmt.Errorf("login request: read body: %w", err)
	}

	// the whole body must be one JSON object; trailing bytes are malformed
	var lr LoginResponse
	if err := json.Unmarshal(raw, &lr); err != nil {
		metrics.IncLogin("malformed")
		c.logger.Error("session.login_malformed", zap.Error(err))
		return nil, &MalformedAuthResponseError{Reason: "decode login response", Err: err}
	}
	if lr.AccessToken == "" {
		metrics.IncLogin("malformed")
		c.logger.Error("session.login_malformed", zap.String("reason", "empty access_token"))
		return nil, &MalformedAuthResponseError{Reason: "no access_token in response"}
	}

	if err := c.store.Set(ctx, lr.AccessToken); err != nil {
		metrics.IncLogin("error")
		return nil, fmt.Errorf("store credential: %w", err)
	}

	metrics.IncLogin("ok")
	c.logger.Info("session.login_success",
		zap.String("user", username),
		zap.String("token_type", lr.TokenType),
		zap.Int64("expires_in", lr.ExpiresIn))

	if c.listener != nil {
		c.listener.LoggedIn(username, &lr)
	}
	return &lr, nil
}

// Logout drops the current credential. No network call is made.
func (c *Client) Logout(ctx context.Context) {
	c.store.Clear(ctx)
	metrics.LogoutsTotal.Inc()
	c.logger.Info("session.logout", zap.String("key", c.store.Key()))

	if c.listener != nil {
		c.listener.LoggedOut()
	}
}

// Token returns the current credential, if any.
func (c *Client) Token(ctx context.Context) (string, bool) {
	return c.store.Get(ctx)
}

// Authenticated reports whether a credential is currently stored.
func (c *Client) Authenticated(ctx context.Context) bool {
	_, ok := c.store.Get(ctx)
	return ok
}

// BuildAuthHeaders copies base and sets Authorization from the stored credential.
// Any caller-supplied Authorization entry is dropped; with no credential the result
// carries none. base is never modified.
func (c *Client) BuildAuthHeaders(ctx context.Context, base map[string]string) map[string]string {
	out := make(map[string]string, len(base)+1)
	for k, v := range base {
		if strings.EqualFold(k, HeaderAuthorization) {
			continue
		}
		out[k] = v
	}
	if token, ok := c.store.Get(ctx); ok {
		out[HeaderAuthorization] = bearer(token)
	}
	return out
}

// Header is BuildAuthHeaders for an http.Header collection.
func (c *Client) Header(ctx context.Context, base http.Header) http.Header {
	out := base.Clone()
	if out == nil {
		out = make(http.Header)
	}
	out.Del(HeaderAuthorization)
	if token, ok := c.store.Get(ctx); ok {
		out.Set(HeaderAuthorization, bearer(token))
	}
	return out
}

// Authorize applies the header policy to req in place, using req's context.
func (c *Client) Authorize(req *http.Request) {
	if req.Header == nil {
		req.Header = make(http.Header)
	}
	req.Header.Del(HeaderAuthorization)
	if token, ok := c.store.Get(req.Context()); ok {
		req.Header.Set(HeaderAuthorization, bearer(token))
	}
}

func bearer(token string) string {
	return "Bearer " + token
}
