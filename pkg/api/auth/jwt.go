package auth

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/golang-jwt/jwt/v4"
)

// JWTAuth validates bearer tokens signed with a shared secret. The signing
// algorithm is pinned at construction; tokens carrying any other alg are
// rejected before signature verification.
type JWTAuth struct {
	secret    []byte
	algorithm string
}

// JWTConfig holds JWT configuration.
type JWTConfig struct {
	Secret    []byte
	Algorithm string
}

// NewJWTAuth creates a JWT authenticator. Algorithm defaults to HS256.
func NewJWTAuth(config *JWTConfig) (auth *JWTAuth, err error) {
	if len(config.Secret) == 0 {
		err = errors.New("JWT secret is required")
		return auth, err
	}

	algorithm := config.Algorithm
	if algorithm == "" {
		algorithm = "HS256"
	}

	auth = &JWTAuth{
		secret:    config.Secret,
		algorithm: algorithm,
	}
	return auth, err
}

// Name returns the auth method name.
func (a *JWTAuth) Name() (name string) {
	name = "jwt"
	return name
}

// Authenticate parses and verifies the bearer token, then maps its claims
// to an identity. Expiry and not-before are enforced by the parser.
func (a *JWTAuth) Authenticate(r *http.Request) (result *Result, err error) {
	var tokenString string
	tokenString, err = extractBearerToken(r)
	if err != nil {
		return result, err
	}

	var token *jwt.Token
	token, err = jwt.Parse(tokenString, func(token *jwt.Token) (key interface{}, keyErr error) {
		expectedMethod := jwt.GetSigningMethod(a.algorithm)
		if expectedMethod == nil {
			keyErr = fmt.Errorf("unsupported signing algorithm: %s", a.algorithm)
			return key, keyErr
		}

		// The configured algorithm is the only one accepted; a token
		// must not pick its own.
		if token.Method.Alg() != expectedMethod.Alg() {
			keyErr = fmt.Errorf("unexpected signing method: %v (expected: %s)", token.Header["alg"], a.algorithm)
			return key, keyErr
		}

		key = a.secret
		return key, keyErr
	})
	if err != nil {
		err = fmt.Errorf("token validation failed: %w", err)
		return result, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		err = errors.New("invalid token claims")
		return result, err
	}

	result = identityFromClaims(claims, a.Name())
	return result, err
}
