package auth

import (
	"fmt"
	"log/slog"
	"net/http"
)

// Chain tries a list of authentication methods in order and accepts the
// first one that succeeds.
type Chain struct {
	methods []Method
	logger  *slog.Logger
}

// NewChain builds a chain over the given methods. A chain with no methods
// authenticates every request as anonymous.
func NewChain(methods []Method, logger *slog.Logger) (chain *Chain) {
	chain = &Chain{
		methods: methods,
		logger:  logger,
	}
	return chain
}

// Authenticate runs each method against the request until one accepts it.
// When every method rejects the request, the last rejection is returned.
func (c *Chain) Authenticate(r *http.Request) (result *Result, err error) {
	if len(c.methods) == 0 {
		result = &Result{
			Authenticated: true,
			Method:        "none",
			Username:      "anonymous",
		}
		return result, err
	}

	var lastErr error
	for _, method := range c.methods {
		result, err = method.Authenticate(r)
		if err == nil {
			c.logger.Debug("auth method accepted request",
				slog.String("method", method.Name()),
				slog.String("username", result.Username))
			//nolint:nilerr // err is nil on the accepted branch
			return result, err
		}
		lastErr = err
		c.logger.Debug("auth method rejected request",
			slog.String("method", method.Name()),
			slog.String("error", err.Error()))
	}

	err = fmt.Errorf("all authentication methods failed: %w", lastErr)
	return result, err
}

// Name returns the chain name.
func (c *Chain) Name() (name string) {
	name = "auth-chain"
	return name
}
