package auth

import (
	"crypto/subtle"
	"errors"
	"net/http"
)

// StaticTokenAuth accepts a single pre-shared bearer token. It is the
// simplest way to close the chat endpoint off, suitable for demos and
// single-tenant deployments.
type StaticTokenAuth struct {
	token string
}

// NewStaticTokenAuth creates a static token authenticator.
func NewStaticTokenAuth(token string) (auth *StaticTokenAuth) {
	auth = &StaticTokenAuth{
		token: token,
	}
	return auth
}

// Name returns the auth method name.
func (a *StaticTokenAuth) Name() (name string) {
	name = "static-bearer"
	return name
}

// Authenticate compares the presented bearer token against the configured
// one in constant time.
func (a *StaticTokenAuth) Authenticate(r *http.Request) (result *Result, err error) {
	var token string
	token, err = extractBearerToken(r)
	if err != nil {
		return result, err
	}

	if subtle.ConstantTimeCompare([]byte(token), []byte(a.token)) != 1 {
		err = errors.New("invalid token")
		return result, err
	}

	result = &Result{
		Authenticated: true,
		Method:        a.Name(),
		Username:      "static-token-user",
	}
	return result, err
}
