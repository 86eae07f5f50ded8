package auth

import (
	"errors"
	"net/http"
)

// APIKeyAuth maps X-API-Key header values to usernames. Keys are opaque
// strings handed out per client; revoking a client means removing its key
// from the map and restarting.
type APIKeyAuth struct {
	keys map[string]string
}

// NewAPIKeyAuth creates an API key authenticator over a key-to-username map.
func NewAPIKeyAuth(keys map[string]string) (auth *APIKeyAuth) {
	auth = &APIKeyAuth{
		keys: keys,
	}
	return auth
}

// Name returns the auth method name.
func (a *APIKeyAuth) Name() (name string) {
	name = "api-key"
	return name
}

// Authenticate looks the presented key up in the configured map.
func (a *APIKeyAuth) Authenticate(r *http.Request) (result *Result, err error) {
	//nolint:canonicalheader // X-API-Key is the conventional spelling, not X-Api-Key
	apiKey := r.Header.Get("X-API-Key")
	if apiKey == "" {
		err = errors.New("missing X-API-Key header")
		return result, err
	}

	username, exists := a.keys[apiKey]
	if !exists {
		err = errors.New("invalid API key")
		return result, err
	}

	result = &Result{
		Authenticated: true,
		Method:        a.Name(),
		Username:      username,
	}
	return result, err
}
