package auth

import (
	"github.com/golang-jwt/jwt/v4"
)

// identityFromClaims maps the identity claims shared by JWT and OIDC tokens
// onto a Result. The subject doubles as the username until a more specific
// claim (preferred_username, then username) overrides it.
func identityFromClaims(claims jwt.MapClaims, method string) (result *Result) {
	result = &Result{
		Authenticated: true,
		Method:        method,
	}

	if sub, ok := claims["sub"].(string); ok {
		result.Subject = sub
		result.Username = sub
	}

	for _, claim := range []string{"preferred_username", "username"} {
		if username, ok := claims[claim].(string); ok {
			result.Username = username
			break
		}
	}

	if email, ok := claims["email"].(string); ok {
		result.Email = email
	}

	result.Groups = groupsFromClaim(claims)
	return result
}

// groupsFromClaim reads the groups claim, which arrives as []interface{}
// from parsed JSON but may be a plain []string when claims are built in
// process.
func groupsFromClaim(claims jwt.MapClaims) (groups []string) {
	raw, ok := claims["groups"]
	if !ok {
		return groups
	}

	switch value := raw.(type) {
	case []string:
		groups = value
	case []interface{}:
		for _, entry := range value {
			if group, isString := entry.(string); isString {
				groups = append(groups, group)
			}
		}
	}

	return groups
}
