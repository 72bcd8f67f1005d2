package middleware

import (
	"net"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"isometry-backend/infrastructure/config"
	"isometry-backend/pkg/auth"
	"isometry-backend/pkg/common"
)

// localUserID identifies the implicit owner when authentication is
// disabled. The store is single-tenant either way.
const localUserID = "local"

// Authenticate builds the request authentication middleware. With auth
// disabled every request runs as the local user; with auth enabled the
// bearer token is validated and rate limits apply per client IP.
func Authenticate(cfg *config.Config, logger *zap.Logger) func(next http.Handler) http.Handler {
	if !cfg.EnableAuth {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				ctx := auth.WithUser(r.Context(), &auth.UserContext{UserID: localUserID})
				next.ServeHTTP(w, r.WithContext(ctx))
			})
		}
	}

	validator, err := auth.NewJWTValidator(auth.JWTConfig{
		SecretKey: cfg.JWTSecret,
		Issuer:    cfg.JWTIssuer,
	})
	if err != nil {
		logger.Error("JWT validator setup failed", zap.Error(err))
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication unavailable")
			})
		}
	}

	ipLimiter := auth.NewIPRateLimiter(100)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, _ := ipLimiter.Allow(r.Context(), clientIP(r))
			if !allowed {
				common.RespondError(w, http.StatusTooManyRequests, "TOO_MANY_REQUESTS", "rate limit exceeded")
				return
			}

			token, err := auth.ExtractBearerToken(r.Header.Get("Authorization"))
			if err != nil {
				common.RespondAppError(w, err)
				return
			}

			user, err := validator.Validate(token)
			if err != nil {
				logger.Debug("Token rejected", zap.Error(err))
				common.RespondAppError(w, err)
				return
			}

			ctx := auth.WithUser(r.Context(), user)
			ctx = common.WithUserID(ctx, user.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// clientIP extracts the originating address, honoring proxy headers.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	if real := r.Header.Get("X-Real-IP"); real != "" {
		return real
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
