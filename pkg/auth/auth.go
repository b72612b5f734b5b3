// Package auth validates access tokens issued by the Auth0 tenant configured
// in the environment record, including the "permissions" claim used for RBAC.
package auth

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v4"
	"github.com/lestrrat-go/jwx/v2/jwk"

	"github.com/baristalabs/barista/pkg/config"
)

// Tokens must be signed with RS256, per the tenant configuration
const signingAlgorithm = "RS256"

// Error is a standardized way to communicate auth failure modes
type Error struct {
	// Short error code, such as "invalid_claims"
	Code string
	// Human-readable description
	Description string
	// HTTP status code the error maps to
	StatusCode int
}

// Error implements the error interface
func (e *Error) Error() string {
	return e.Code + ": " + e.Description
}

func newError(code string, description string, statusCode int) *Error {
	return &Error{
		Code:        code,
		Description: description,
		StatusCode:  statusCode,
	}
}

// BearerToken extracts the token from the value of an Authorization header.
// The header must be in the format "Bearer <token>".
func BearerToken(authorization string) (string, *Error) {
	if authorization == "" {
		return "", newError("authorization_header_missing", "Authorization header is required.", http.StatusUnauthorized)
	}

	parts := strings.Fields(authorization)
	switch {
	case len(parts) == 0:
		return "", newError("authorization_header_missing", "Authorization header is required.", http.StatusUnauthorized)
	case strings.ToLower(parts[0]) != "bearer":
		return "", newError("header_malformed", `Authorization header must start with "Bearer".`, http.StatusUnauthorized)
	case len(parts) == 1:
		return "", newError("header_malformed", "Token not found.", http.StatusUnauthorized)
	case len(parts) > 2:
		return "", newError("header_malformed", `Authorization header must be in the format "Bearer <token>".`, http.StatusUnauthorized)
	}

	return parts[1], nil
}

// CheckPermission ensures the requested permission is included in the
// "permissions" claim of the token's payload.
func CheckPermission(claims jwt.MapClaims, permission string) *Error {
	permsAny, ok := claims["permissions"]
	if !ok {
		return newError("invalid_claims", "Permissions not included in token.", http.StatusBadRequest)
	}
	perms, ok := permsAny.([]any)
	if !ok {
		return newError("invalid_claims", "Permissions not included in token.", http.StatusBadRequest)
	}

	for _, p := range perms {
		if str, ok := p.(string); ok && str == permission {
			return nil
		}
	}

	return newError("unauthorized_action", "Permission not found.", http.StatusForbidden)
}

// Verifier validates tokens issued by an Auth0 tenant
type Verifier struct {
	audience string
	issuer   string
	jwksURL  string

	cache      *jwk.Cache
	staticKeys jwk.Set
	parser     *jwt.Parser
}

// NewVerifier creates a Verifier for the tenant in the environment record.
// The tenant's key set is fetched lazily and kept refreshed in background
// until the context is canceled.
func NewVerifier(ctx context.Context, env config.Environment) (*Verifier, error) {
	v := &Verifier{
		audience: env.Auth0.Audience,
		issuer:   env.Auth0.Issuer(),
		jwksURL:  env.Auth0.JWKSURL(),
		parser:   jwt.NewParser(jwt.WithValidMethods([]string{signingAlgorithm})),
	}

	v.cache = jwk.NewCache(ctx)
	err := v.cache.Register(v.jwksURL, jwk.WithMinRefreshInterval(15*time.Minute))
	if err != nil {
		return nil, fmt.Errorf("failed to register JWKS URL '%s': %w", v.jwksURL, err)
	}

	return v, nil
}

// WithKeySet makes the Verifier use a fixed key set rather than the tenant's
// JWKS endpoint. Used in tests and offline tooling.
func (v *Verifier) WithKeySet(set jwk.Set) *Verifier {
	v.staticKeys = set
	return v
}

func (v *Verifier) keySet(ctx context.Context) (jwk.Set, error) {
	if v.staticKeys != nil {
		return v.staticKeys, nil
	}
	return v.cache.Get(ctx, v.jwksURL)
}

// ValidateToken verifies the signature of a token against the tenant's key
// set, then validates its claims. Returns the decoded payload.
func (v *Verifier) ValidateToken(ctx context.Context, raw string) (jwt.MapClaims, *Error) {
	token, err := v.parser.ParseWithClaims(raw, jwt.MapClaims{}, func(t *jwt.Token) (any, error) {
		kid, ok := t.Header["kid"].(string)
		if !ok || kid == "" {
			return nil, errors.New("token header does not contain a key ID")
		}

		set, err := v.keySet(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to retrieve the tenant's key set: %w", err)
		}
		key, found := set.LookupKeyID(kid)
		if !found {
			return nil, fmt.Errorf("no key with ID '%s' in the tenant's key set", kid)
		}

		var pubKey rsa.PublicKey
		err = key.Raw(&pubKey)
		if err != nil {
			return nil, fmt.Errorf("failed to extract the raw public key: %w", err)
		}
		return &pubKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, newError("token_expired", "Token expired.", http.StatusUnauthorized)
		}
		return nil, newError("invalid_header", "Unable to parse authentication token.", http.StatusUnauthorized)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, newError("invalid_header", "Unable to parse authentication token.", http.StatusUnauthorized)
	}

	// Validate audience and issuer
	if !claims.VerifyAudience(v.audience, true) {
		return nil, newError("invalid_claims", "Incorrect claims. Please, check the audience and issuer.", http.StatusUnauthorized)
	}
	if !claims.VerifyIssuer(v.issuer, true) {
		return nil, newError("invalid_claims", "Incorrect claims. Please, check the audience and issuer.", http.StatusUnauthorized)
	}

	return claims, nil
}
