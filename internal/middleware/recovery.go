package middleware

import (
	"net/http"

	"go.uber.org/zap"
)

// WithRecovery turns panics into the application's error page instead of a
// dropped connection. render draws the 500 response.
func WithRecovery(logger *zap.Logger, render func(http.ResponseWriter, *http.Request)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic recovered",
						zap.String("method", r.Method),
						zap.String("path", r.URL.Path),
						zap.Any("error", err),
					)
					render(w, r)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
