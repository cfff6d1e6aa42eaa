package secrets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// ErrIncompleteCredentials is returned when a secret lacks username or password.
var ErrIncompleteCredentials = errors.New("secret is missing username or password")

// Resolver resolves login credentials from a Provider, caching results locally
// to reduce API calls. The secret is expected to hold "username" and "password".
type Resolver struct {
	logger   *zap.Logger
	provider Provider
	cache    *Cache[Credentials]
}

// NewResolver constructs a login credential resolver.
func NewResolver(logger *zap.Logger, provider Provider, cache *Cache[Credentials]) *Resolver {
	return &Resolver{
		logger:   logger,
		provider: provider,
		cache:    cache,
	}
}

func cacheKey(secretID string) string {
	return strings.ToLower(strings.TrimSpace(secretID))
}

// LoginCredentials fetches or returns cached credentials for secretID.
func (r *Resolver) LoginCredentials(ctx context.Context, secretID string) (Credentials, error) {
	key := cacheKey(secretID)
	if key == "" {
		return Credentials{}, errors.New("secret id is required")
	}

	if creds, ok := r.cache.Get(key); ok {
		return creds, nil
	}

	secretMap, err := r.provider.GetSecret(ctx, secretID)
	if err != nil {
		r.logger.Warn("aws.secret_fetch_failed",
			zap.String("key", secretID),
			zap.Error(err))
		return Credentials{}, fmt.Errorf("resolve login credentials %q: %w", secretID, err)
	}

	creds := Credentials{
		Username: secretMap["username"],
		Password: secretMap["password"],
	}
	if !creds.Valid() {
		return Credentials{}, fmt.Errorf("parse secret %q: %w", secretID, ErrIncompleteCredentials)
	}

	r.cache.Put(key, creds)
	r.logger.Info("aws.login_credentials_resolved",
		zap.String("key", secretID),
		zap.String("username", creds.Username),
	)
	return creds, nil
}

// Invalidate drops cached credentials, e.g. after the server rejected them.
func (r *Resolver) Invalidate(secretID string) {
	r.cache.Bust(cacheKey(secretID))
}
