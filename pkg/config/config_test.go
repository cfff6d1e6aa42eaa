package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	// Clear any env vars that would override defaults
	envVars := []string{
		"SERVICE_NAME", "ENV", "LOG_LEVEL", "HOST", "PORT",
		"API_BASE", "TOKEN_KEY", "HTTP_TIMEOUT",
		"STORE_BACKEND", "REDIS_ADDR", "REDIS_DB", "SESSION_TTL",
		"NATS_URL", "EVENTS_SUBJECT", "LOGIN_SECRET_ID", "AUTO_LOGIN",
		"RATE_RPS", "RATE_BURST", "RETRY_MAX",
	}
	for _, key := range envVars {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.ServiceName != "session-client" {
		t.Errorf("expected ServiceName=session-client, got %s", cfg.ServiceName)
	}
	if cfg.Env != "dev" {
		t.Errorf("expected Env=dev, got %s", cfg.Env)
	}
	if cfg.APIBase != "http://localhost:8000" {
		t.Errorf("expected APIBase=http://localhost:8000, got %s", cfg.APIBase)
	}
	if cfg.TokenKey != "app_token" {
		t.Errorf("expected TokenKey=app_token, got %s", cfg.TokenKey)
	}
	if cfg.HTTPTimeout != 15*time.Second {
		t.Errorf("expected HTTPTimeout=15s, got %v", cfg.HTTPTimeout)
	}
	if cfg.StoreBackend != StoreBackendMemory || cfg.UseRedis() {
		t.Errorf("expected memory store backend, got %s", cfg.StoreBackend)
	}
	if cfg.SessionTTL != 12*time.Hour {
		t.Errorf("expected SessionTTL=12h, got %v", cfg.SessionTTL)
	}
	if cfg.EventsEnabled() {
		t.Errorf("expected events disabled without NATS_URL")
	}
	if cfg.EventsSubject != "evt.session.v1" {
		t.Errorf("expected EventsSubject=evt.session.v1, got %s", cfg.EventsSubject)
	}
	if cfg.Port != 9020 {
		t.Errorf("expected Port=9020, got %d", cfg.Port)
	}
	if cfg.Host != "127.0.0.1" {
		t.Errorf("expected Host=127.0.0.1, got %s", cfg.Host)
	}
	if cfg.ListenAddr() != "127.0.0.1:9020" {
		t.Errorf("expected ListenAddr=127.0.0.1:9020, got %s", cfg.ListenAddr())
	}
	if cfg.AutoLogin {
		t.Errorf("expected AutoLogin=false")
	}
	if cfg.RetryMax != 2 {
		t.Errorf("expected RetryMax=2, got %d", cfg.RetryMax)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SERVICE_NAME", "test-service")
	t.Setenv("ENV", "prod")
	t.Setenv("API_BASE", "https://api.example.com/")
	t.Setenv("TOKEN_KEY", "custom_slot")
	t.Setenv("HTTP_TIMEOUT", "3s")
	t.Setenv("STORE_BACKEND", "REDIS")
	t.Setenv("REDIS_DB", "4")
	t.Setenv("NATS_URL", "nats://nats:4222")
	t.Setenv("AUTO_LOGIN", "true")
	t.Setenv("PORT", "8088")

	cfg := Load()

	if cfg.ServiceName != "test-service" {
		t.Errorf("expected ServiceName=test-service, got %s", cfg.ServiceName)
	}
	if cfg.APIBase != "https://api.example.com" {
		t.Errorf("expected trailing slash trimmed, got %s", cfg.APIBase)
	}
	if cfg.TokenKey != "custom_slot" {
		t.Errorf("expected TokenKey=custom_slot, got %s", cfg.TokenKey)
	}
	if cfg.HTTPTimeout != 3*time.Second {
		t.Errorf("expected HTTPTimeout=3s, got %v", cfg.HTTPTimeout)
	}
	if !cfg.UseRedis() {
		t.Errorf("expected redis backend, got %s", cfg.StoreBackend)
	}
	if cfg.RedisDB != 4 {
		t.Errorf("expected RedisDB=4, got %d", cfg.RedisDB)
	}
	if !cfg.EventsEnabled() {
		t.Errorf("expected events enabled")
	}
	if !cfg.AutoLogin {
		t.Errorf("expected AutoLogin=true")
	}
	if cfg.Port != 8088 {
		t.Errorf("expected Port=8088, got %d", cfg.Port)
	}
}

func TestGetEnv_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("X_INT", "abc")
	t.Setenv("X_DUR", "forever")
	t.Setenv("X_BOOL", "maybe")

	if got := GetEnvInt("X_INT", 7); got != 7 {
		t.Errorf("expected 7, got %d", got)
	}
	if got := GetEnvDuration("X_DUR", time.Second); got != time.Second {
		t.Errorf("expected 1s, got %v", got)
	}
	if got := GetEnvBool("X_BOOL", true); !got {
		t.Errorf("expected true fallback")
	}
}

func TestListenAddr_HostOverride(t *testing.T) {
	t.Setenv("HOST", "0.0.0.0")
	t.Setenv("PORT", "8080")

	cfg := Load()
	if cfg.ListenAddr() != "0.0.0.0:8080" {
		t.Errorf("expected ListenAddr=0.0.0.0:8080, got %s", cfg.ListenAddr())
	}

	cfg.Host = "::1"
	if cfg.ListenAddr() != "[::1]:8080" {
		t.Errorf("expected ListenAddr=[::1]:8080, got %s", cfg.ListenAddr())
	}
}
