package config

import (
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreBackendMemory = "memory"
	StoreBackendRedis  = "redis"
)

// Config holds the runtime configuration for a session-client instance.
// API base URL and token key are handed to the auth client at construction.
type Config struct {
	ServiceName string // e.g. "session-client"
	Env         string // e.g. "dev", "uat", "prod"
	LogLevel    string // "debug", "info", etc.
	Host        string // local agent bind address; loopback unless overridden
	Port        int    // local agent HTTP port

	APIBase     string        // remote API base, e.g. http://localhost:8000
	TokenKey    string        // storage slot name for the session credential
	HTTPTimeout time.Duration // outbound client timeout

	StoreBackend string // "memory" | "redis"
	RedisAddr    string
	RedisDB      int
	RedisPass    string
	SessionTTL   time.Duration // upper bound on an abandoned redis slot

	NATSURL       string // empty disables session events
	EventsSubject string

	AWSRegion       string
	LoginSecretID   string // AWS Secrets Manager id holding {"username","password"}
	LoginUsername   string
	LoginPassword   string
	AutoLogin       bool
	SecretsCacheTTL time.Duration

	RateRPS   int
	RateBurst int
	RetryMax  int
}

// Load loads configuration from environment variables and .env file if present.
func Load() *Config {
	// load .env silently (no error if missing)
	_ = godotenv.Load()

	return &Config{
		ServiceName:     GetEnv("SERVICE_NAME", "session-client"),
		Env:             GetEnv("ENV", "dev"),
		LogLevel:        GetEnv("LOG_LEVEL", "info"),
		Host:            GetEnv("HOST", "127.0.0.1"),
		Port:            GetEnvInt("PORT", 9020),
		APIBase:         strings.TrimRight(GetEnv("API_BASE", "http://localhost:8000"), "/"),
		TokenKey:        GetEnv("TOKEN_KEY", "app_token"),
		HTTPTimeout:     GetEnvDuration("HTTP_TIMEOUT", 15*time.Second),
		StoreBackend:    strings.ToLower(GetEnv("STORE_BACKEND", StoreBackendMemory)),
		RedisAddr:       GetEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:         GetEnvInt("REDIS_DB", 0),
		RedisPass:       GetEnv("REDIS_PASS", ""),
		SessionTTL:      GetEnvDuration("SESSION_TTL", 12*time.Hour),
		NATSURL:         GetEnv("NATS_URL", ""),
		EventsSubject:   GetEnv("EVENTS_SUBJECT", "evt.session.v1"),
		AWSRegion:       GetEnv("AWS_REGION", "us-east-2"),
		LoginSecretID:   GetEnv("LOGIN_SECRET_ID", ""),
		LoginUsername:   GetEnv("LOGIN_USERNAME", ""),
		LoginPassword:   GetEnv("LOGIN_PASSWORD", ""),
		AutoLogin:       GetEnvBool("AUTO_LOGIN", false),
		SecretsCacheTTL: GetEnvDuration("SECRETS_CACHE_TTL", 30*time.Minute),
		RateRPS:         GetEnvInt("RATE_RPS", 5),
		RateBurst:       GetEnvInt("RATE_BURST", 10),
		RetryMax:        GetEnvInt("RETRY_MAX", 2),
	}
}

// UseRedis reports whether the credential slot lives in Redis.
func (c *Config) UseRedis() bool {
	return c.StoreBackend == StoreBackendRedis
}

// EventsEnabled reports whether session events are published.
func (c *Config) EventsEnabled() bool {
	return c.NATSURL != ""
}

// ListenAddr is the host:port the local agent binds to.
func (c *Config) ListenAddr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
