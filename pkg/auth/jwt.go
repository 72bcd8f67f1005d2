package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	pkgerrors "isometry-backend/pkg/errors"
)

// JWTConfig holds token validation settings
type JWTConfig struct {
	SecretKey string
	Issuer    string
	Audience  string
	Leeway    time.Duration
}

// UserContext carries the authenticated identity through a request
type UserContext struct {
	UserID string
	Email  string
}

type userContextKey struct{}

// JWTValidator validates bearer tokens signed with HMAC
type JWTValidator struct {
	config JWTConfig
	parser *jwt.Parser
}

// NewJWTValidator creates a validator for the given configuration
func NewJWTValidator(config JWTConfig) (*JWTValidator, error) {
	if config.SecretKey == "" {
		return nil, fmt.Errorf("jwt secret key is required")
	}
	if config.Leeway == 0 {
		config.Leeway = 30 * time.Second
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(config.Leeway),
		jwt.WithExpirationRequired(),
	}
	if config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(config.Issuer))
	}
	if config.Audience != "" {
		opts = append(opts, jwt.WithAudience(config.Audience))
	}

	return &JWTValidator{
		config: config,
		parser: jwt.NewParser(opts...),
	}, nil
}

// Validate parses and verifies a raw token and returns the identity
// from its claims.
func (v *JWTValidator) Validate(tokenString string) (*UserContext, error) {
	claims := jwt.MapClaims{}
	token, err := v.parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(v.config.SecretKey), nil
	})
	if err != nil {
		return nil, pkgerrors.NewUnauthorizedError("invalid token").WithCause(err)
	}
	if !token.Valid {
		return nil, pkgerrors.NewUnauthorizedError("invalid token")
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, pkgerrors.NewUnauthorizedError("token has no subject")
	}
	email, _ := claims["email"].(string)

	return &UserContext{UserID: sub, Email: email}, nil
}

// ExtractBearerToken pulls the raw token out of an Authorization header
func ExtractBearerToken(header string) (string, error) {
	if header == "" {
		return "", pkgerrors.NewUnauthorizedError("missing authorization header")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", pkgerrors.NewUnauthorizedError("authorization header must be a bearer token")
	}
	return strings.TrimSpace(parts[1]), nil
}

// WithUser stores the authenticated identity on the context
func WithUser(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// GetUserFromContext retrieves the authenticated identity
func GetUserFromContext(ctx context.Context) (*UserContext, error) {
	user, ok := ctx.Value(userContextKey{}).(*UserContext)
	if !ok || user == nil {
		return nil, pkgerrors.NewUnauthorizedError("no authenticated user in context")
	}
	return user, nil
}
