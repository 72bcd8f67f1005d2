package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"isometry-backend/pkg/common"
)

// Logger creates a logging middleware. The request ID (caller-supplied
// header or chi-generated) is stashed on the context so handlers can
// echo it in response metadata.
func Logger(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			reqID := common.ExtractRequestID(r)
			if reqID == "" {
				reqID = middleware.GetReqID(r.Context())
			}
			r = r.WithContext(common.WithRequestID(r.Context(), reqID))

			// Wrap response writer to capture status code
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info("HTTP request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("requestID", reqID),
				zap.String("remoteAddr", r.RemoteAddr),
			)
		})
	}
}
