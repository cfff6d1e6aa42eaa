package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Checker-Finance/session-client/internal/metrics"
	"github.com/Checker-Finance/session-client/internal/rate"
)

const (
	// maxResponseBody caps how much of a response is read into memory.
	maxResponseBody = 8 << 20
	// maxLoggedBody caps response text carried into logs and errors.
	maxLoggedBody = 512
)

// Backoff returns the retry sleep duration for the given attempt number.
func Backoff(attempt int) time.Duration {
	switch attempt {
	case 0:
		return 100 * time.Millisecond
	case 1:
		return 250 * time.Millisecond
	default:
		return 500 * time.Millisecond
	}
}

// Authorizer stamps credentials on an outgoing request.
type Authorizer interface {
	Authorize(req *http.Request)
}

// StatusError is returned for 4xx responses, and for 5xx once retries are exhausted.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s returned %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// Executor handles rate-limited, retrying, authenticated HTTP calls against one API base.
type Executor struct {
	logger   *zap.Logger
	rateMgr  *rate.Manager
	http     *http.Client
	baseURL  string
	retryMax int
	auth     Authorizer
	maxBody  int64
}

// New creates an Executor. auth is consulted on every attempt, so a credential
// that changes between retries is picked up. rateMgr and auth may be nil.
func New(
	logger *zap.Logger,
	rateMgr *rate.Manager,
	httpClient *http.Client,
	baseURL string,
	retryMax int,
	auth Authorizer,
) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if retryMax < 0 {
		retryMax = 0
	}
	return &Executor{
		logger:   logger,
		rateMgr:  rateMgr,
		http:     httpClient,
		baseURL:  strings.TrimRight(baseURL, "/"),
		retryMax: retryMax,
		auth:     auth,
		maxBody:  maxResponseBody,
	}
}

// Single returns a copy of e that never retries.
func (e *Executor) Single() *Executor {
	cp := *e
	cp.retryMax = 0
	return &cp
}

// DoJSON sends body (JSON-encoded when non-nil) to path and decodes the response into out.
// 5xx and transport failures are retried up to retryMax times; 4xx is returned immediately.
func (e *Executor) DoJSON(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	if e.rateMgr != nil {
		if err := e.rateMgr.Wait(ctx, path); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}
	}

	var lastErr error
	for attempt := 0; attempt <= e.retryMax; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(Backoff(attempt - 1)):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		req, err := e.newRequest(ctx, method, path, payload)
		if err != nil {
			return err
		}

		start := time.Now()
		resp, err := e.http.Do(req)
		metrics.ObserveDuration(metrics.OutboundRequestDuration, start, path, method)
		if err != nil {
			lastErr = err
			metrics.IncOutbound(path, method, "error")
			e.logger.Warn("httpclient.request_failed",
				zap.String("path", path),
				zap.Error(err),
				zap.Int("attempt", attempt))
			continue
		}

		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, e.maxBody+1))
		_ = resp.Body.Close()
		metrics.IncOutbound(path, method, strconv.Itoa(resp.StatusCode))
		if readErr != nil {
			lastErr = readErr
			e.logger.Warn("httpclient.read_failed",
				zap.String("path", path),
				zap.Error(readErr),
				zap.Int("attempt", attempt))
			continue
		}
		if int64(len(respBody)) > e.maxBody {
			return fmt.Errorf("%s %s: response body exceeds %d bytes", method, path, e.maxBody)
		}

		if resp.StatusCode >= 500 {
			e.logger.Warn("httpclient.server_error",
				zap.Int("status", resp.StatusCode),
				zap.String("path", path),
				zap.Duration("latency", time.Since(start)))
			lastErr = &StatusError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: truncate(respBody)}
			continue
		}

		if resp.StatusCode >= 400 {
			return &StatusError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: truncate(respBody)}
		}

		if out != nil && len(respBody) > 0 {
			if err := json.Unmarshal(respBody, out); err != nil {
				e.logger.Warn("httpclient.decode_failed",
					zap.Error(err),
					zap.String("path", path),
					zap.String("body", truncate(respBody)))
				return fmt.Errorf("decode failed: %w", err)
			}
		}

		e.logger.Debug("httpclient.success",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.Duration("elapsed", time.Since(start)))
		return nil
	}

	return fmt.Errorf("%s %s failed after %d attempts: %w", method, path, e.retryMax+1, lastErr)
}

func (e *Executor) newRequest(ctx context.Context, method, path string, payload []byte) (*http.Request, error) {
	var rdr io.Reader
	if payload != nil {
		rdr = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, e.baseURL+path, rdr)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if e.auth != nil {
		e.auth.Authorize(req)
	}
	return req, nil
}

func truncate(b []byte) string {
	if len(b) <= maxLoggedBody {
		return string(b)
	}
	return string(b[:maxLoggedBody]) + "...(truncated)"
}
