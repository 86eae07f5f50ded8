package auth

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const defaultJWKSCacheTime = 300 * time.Second

// OIDCAuth validates RSA-signed bearer tokens against the issuer's JWKS
// endpoint. Keys are cached between requests; an unknown kid forces a
// refresh so rotated keys are picked up without waiting out the TTL.
type OIDCAuth struct {
	issuerURL        string
	audience         string
	allowedGroups    []string
	skipIssuerVerify bool
	cacheTTL         time.Duration
	httpClient       *http.Client
	logger           *slog.Logger

	mu           sync.Mutex
	jwksCache    map[string]*rsa.PublicKey
	jwksCacheExp time.Time
}

// OIDCConfig holds OIDC configuration.
type OIDCConfig struct {
	IssuerURL        string
	Audience         string
	AllowedGroups    []string
	JWKSCacheTime    int // seconds
	SkipIssuerVerify bool
}

// JWK represents a JSON Web Key.
type JWK struct {
	Kty string `json:"kty"`
	Use string `json:"use"`
	Kid string `json:"kid"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// JWKSResponse represents the JWKS endpoint response.
type JWKSResponse struct {
	Keys []JWK `json:"keys"`
}

// NewOIDCAuth creates an OIDC authenticator.
func NewOIDCAuth(config *OIDCConfig, logger *slog.Logger) (auth *OIDCAuth) {
	cacheTTL := time.Duration(config.JWKSCacheTime) * time.Second
	if cacheTTL == 0 {
		cacheTTL = defaultJWKSCacheTime
	}

	auth = &OIDCAuth{
		issuerURL:        config.IssuerURL,
		audience:         config.Audience,
		allowedGroups:    config.AllowedGroups,
		skipIssuerVerify: config.SkipIssuerVerify,
		cacheTTL:         cacheTTL,
		httpClient:       &http.Client{Timeout: 10 * time.Second},
		logger:           logger,
		jwksCache:        make(map[string]*rsa.PublicKey),
	}
	return auth
}

// Name returns the auth method name.
func (a *OIDCAuth) Name() (name string) {
	name = "oidc"
	return name
}

// Authenticate verifies the bearer token's signature against the issuer's
// published keys, checks the standard claims, and enforces group membership
// when allowed groups are configured.
func (a *OIDCAuth) Authenticate(r *http.Request) (result *Result, err error) {
	var tokenString string
	tokenString, err = extractBearerToken(r)
	if err != nil {
		return result, err
	}

	// The kid lives in the unverified header; it selects which JWKS key
	// verifies the signature.
	parser := &jwt.Parser{}
	var token *jwt.Token
	token, _, err = parser.ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		err = fmt.Errorf("failed to parse token: %w", err)
		return result, err
	}

	kid, ok := token.Header["kid"].(string)
	if !ok {
		err = errors.New("missing kid in token header")
		return result, err
	}

	var publicKey *rsa.PublicKey
	publicKey, err = a.getPublicKey(r.Context(), kid)
	if err != nil {
		err = fmt.Errorf("failed to get public key: %w", err)
		return result, err
	}

	var validatedToken *jwt.Token
	validatedToken, err = jwt.Parse(tokenString, func(token *jwt.Token) (key interface{}, keyErr error) {
		if _, methodOK := token.Method.(*jwt.SigningMethodRSA); !methodOK {
			keyErr = fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			return key, keyErr
		}
		key = publicKey
		return key, keyErr
	})
	if err != nil {
		err = fmt.Errorf("token validation failed: %w", err)
		return result, err
	}

	claims, ok := validatedToken.Claims.(jwt.MapClaims)
	if !ok || !validatedToken.Valid {
		err = errors.New("invalid token claims")
		return result, err
	}

	err = a.validateStandardClaims(claims)
	if err != nil {
		err = fmt.Errorf("standard claims validation failed: %w", err)
		return result, err
	}

	identity := identityFromClaims(claims, a.Name())

	err = a.validateAuthorization(identity)
	if err != nil {
		err = fmt.Errorf("authorization failed: %w", err)
		return result, err
	}

	a.logger.Debug("oidc token validated",
		slog.String("subject", identity.Subject),
		slog.String("username", identity.Username),
		slog.Any("groups", identity.Groups))

	result = identity
	return result, err
}

// validateStandardClaims checks issuer, audience, expiry, and not-before.
// The exp claim is required; iss and aud checks apply per configuration.
func (a *OIDCAuth) validateStandardClaims(claims jwt.MapClaims) (err error) {
	if !a.skipIssuerVerify {
		iss, ok := claims["iss"].(string)
		if !ok || iss != a.issuerURL {
			err = fmt.Errorf("invalid issuer: expected %s, got %s", a.issuerURL, iss)
			return err
		}
	}

	if a.audience != "" && !audienceContains(claims["aud"], a.audience) {
		err = fmt.Errorf("invalid audience: expected %s, got %v", a.audience, claims["aud"])
		return err
	}

	exp, ok := claims["exp"].(float64)
	if !ok {
		err = errors.New("missing exp claim")
		return err
	}
	if time.Unix(int64(exp), 0).Before(time.Now()) {
		err = errors.New("token has expired")
		return err
	}

	if nbf, nbfOK := claims["nbf"].(float64); nbfOK {
		if time.Unix(int64(nbf), 0).After(time.Now()) {
			err = errors.New("token not yet valid")
			return err
		}
	}

	return err
}

// audienceContains reports whether the aud claim, either a single string or
// a list, names the wanted audience.
func audienceContains(raw interface{}, want string) (found bool) {
	switch aud := raw.(type) {
	case string:
		found = aud == want
	case []interface{}:
		for _, entry := range aud {
			if value, ok := entry.(string); ok && value == want {
				found = true
				break
			}
		}
	}
	return found
}

// validateAuthorization enforces group membership. An empty allowed-groups
// list admits every authenticated user.
func (a *OIDCAuth) validateAuthorization(result *Result) (err error) {
	if len(a.allowedGroups) == 0 {
		return err
	}

	for _, userGroup := range result.Groups {
		for _, allowedGroup := range a.allowedGroups {
			if userGroup == allowedGroup {
				a.logger.Debug("group membership authorized",
					slog.String("username", result.Username),
					slog.String("group", userGroup))
				return err
			}
		}
	}

	err = fmt.Errorf("user %s not in any allowed groups %v, user groups: %v",
		result.Username, a.allowedGroups, result.Groups)
	return err
}

// getPublicKey returns the cached key for kid, refreshing the JWKS cache
// when the TTL has lapsed or the kid is unknown.
func (a *OIDCAuth) getPublicKey(ctx context.Context, kid string) (key *rsa.PublicKey, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if time.Now().Before(a.jwksCacheExp) {
		if cached, exists := a.jwksCache[kid]; exists {
			key = cached
			return key, err
		}
	}

	err = a.refreshJWKSCache(ctx)
	if err != nil {
		err = fmt.Errorf("failed to refresh JWKS cache: %w", err)
		return key, err
	}

	cached, exists := a.jwksCache[kid]
	if !exists {
		err = fmt.Errorf("key with kid %s not found in JWKS", kid)
		return key, err
	}

	key = cached
	return key, err
}

// refreshJWKSCache fetches the issuer's keys and rebuilds the cache.
// Callers must hold a.mu.
func (a *OIDCAuth) refreshJWKSCache(ctx context.Context) (err error) {
	jwksURL := strings.TrimSuffix(a.issuerURL, "/") + "/keys"

	var req *http.Request
	req, err = http.NewRequestWithContext(ctx, http.MethodGet, jwksURL, nil)
	if err != nil {
		err = fmt.Errorf("failed to create JWKS request: %w", err)
		return err
	}

	var resp *http.Response
	resp, err = a.httpClient.Do(req)
	if err != nil {
		err = fmt.Errorf("failed to fetch JWKS: %w", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err = fmt.Errorf("JWKS endpoint returned status %d", resp.StatusCode)
		return err
	}

	var jwksResp JWKSResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&jwksResp)
	if decodeErr != nil {
		err = fmt.Errorf("failed to decode JWKS response: %w", decodeErr)
		return err
	}

	a.jwksCache = make(map[string]*rsa.PublicKey)

	for _, jwk := range jwksResp.Keys {
		if jwk.Kty != "RSA" {
			continue
		}

		publicKey, parseErr := a.parseRSAPublicKey(&jwk)
		if parseErr != nil {
			a.logger.Warn("skipping JWK that failed to parse",
				slog.String("kid", jwk.Kid),
				slog.Any("error", parseErr))
			continue
		}

		a.jwksCache[jwk.Kid] = publicKey
	}

	a.jwksCacheExp = time.Now().Add(a.cacheTTL)

	a.logger.Debug("jwks cache refreshed",
		slog.Int("keys_cached", len(a.jwksCache)),
		slog.Time("expires_at", a.jwksCacheExp))

	return err
}

// parseRSAPublicKey builds an RSA public key from a JWK's base64url modulus
// and exponent.
func (a *OIDCAuth) parseRSAPublicKey(jwk *JWK) (key *rsa.PublicKey, err error) {
	var nBytes []byte
	nBytes, err = base64.RawURLEncoding.DecodeString(jwk.N)
	if err != nil {
		err = fmt.Errorf("failed to decode modulus: %w", err)
		return key, err
	}

	var eBytes []byte
	eBytes, err = base64.RawURLEncoding.DecodeString(jwk.E)
	if err != nil {
		err = fmt.Errorf("failed to decode exponent: %w", err)
		return key, err
	}

	exponent := 0
	for _, b := range eBytes {
		exponent = exponent*256 + int(b)
	}

	key = &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: exponent,
	}
	return key, err
}
