package authclient

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthenticationFailed matches any login rejected by the endpoint.
	ErrAuthenticationFailed = errors.New("authentication failed")
	// ErrMalformedAuthResponse matches any login response that breaks the contract.
	ErrMalformedAuthResponse = errors.New("malformed auth response")
)

// AuthenticationFailedError is returned when the login endpoint answers with a non-2xx status.
type AuthenticationFailedError struct {
	StatusCode int
	Body       string
}

func (e *AuthenticationFailedError) Error() string {
	return fmt.Sprintf("login failed (%d): %s", e.StatusCode, e.Body)
}

func (e *AuthenticationFailedError) Is(target error) bool {
	return target == ErrAuthenticationFailed
}

// MalformedAuthResponseError is returned when a 2xx login response cannot be used.
type MalformedAuthResponseError struct {
	Reason string
	Err    error
}

func (e *MalformedAuthResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed auth response: %s: %v", e.Reason, e.Err)
	}
	return "malformed auth response: " + e.Reason
}

func (e *MalformedAuthResponseError) Unwrap() error { return e.Err }

func (e *MalformedAuthResponseError) Is(target error) bool {
	return target == ErrMalformedAuthResponse
}

// Describe turns a login error into a message suitable for display.
func Describe(err error) string {
	var authErr *AuthenticationFailedError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &authErr):
		return fmt.Sprintf("Sign-in rejected by server (status %d). Check your username and password.", authErr.StatusCode)
	case errors.Is(err, ErrMalformedAuthResponse):
		return "Sign-in failed: the server returned an unexpected response."
	default:
		return "Sign-in failed: the server could not be reached."
	}
}
