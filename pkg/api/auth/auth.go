// Package auth authenticates requests to the chat API. Methods are tried
// in a configurable chain; an empty chain leaves the API open, which is the
// default when running against the mock tool server locally.
package auth

import (
	"errors"
	"net/http"
	"strings"
)

// Method validates the credentials on an incoming request.
type Method interface {
	// Name identifies the method in logs and in Result.Method.
	Name() string

	// Authenticate returns the caller's identity, or an error when the
	// request carries no acceptable credentials for this method.
	Authenticate(r *http.Request) (*Result, error)
}

// Result is the identity attached to an authenticated request.
type Result struct {
	Authenticated bool     `json:"authenticated"`
	Username      string   `json:"username,omitempty"`
	Email         string   `json:"email,omitempty"`
	Groups        []string `json:"groups,omitempty"`
	Subject       string   `json:"subject,omitempty"`
	Method        string   `json:"method"`
}

// extractBearerToken pulls the token out of an Authorization header of the
// form "Bearer <token>". The scheme is matched case-insensitively and the
// token is trimmed of surrounding whitespace.
func extractBearerToken(r *http.Request) (token string, err error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		err = errors.New("missing Authorization header")
		return token, err
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		err = errors.New("invalid Authorization header format (expected: Bearer <token>)")
		return token, err
	}

	token = strings.TrimSpace(parts[1])
	return token, err
}
