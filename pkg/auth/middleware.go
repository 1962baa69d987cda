package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/bgmsons/catalog/pkg/api"
	"github.com/bgmsons/catalog/pkg/auth/token"
	"github.com/bgmsons/catalog/pkg/observability"
	"github.com/bgmsons/catalog/pkg/transport"
)

// Middleware creates the access gate as HTTP middleware. It must be the
// outermost layer of the API chain: rejected requests are answered here
// and never reach the wrapped handler.
func Middleware(validator TokenValidator, policy Policy) func(http.Handler) http.Handler {
	gate := NewGate(validator, policy)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			result := gate.Evaluate(r)
			observability.AuthDecisionsTotal.WithLabelValues(result.Decision.String()).Inc()

			switch result.Decision {
			case Exempt:
				next.ServeHTTP(w, r)

			case Allowed:
				slog.Debug("authentication succeeded",
					"subject", result.Identity.Subject,
					"method", r.Method,
					"path", r.URL.Path,
				)
				next.ServeHTTP(w, r.WithContext(SetIdentity(r.Context(), result.Identity)))

			default:
				slog.Warn("authentication failed",
					"method", r.Method,
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
					"reason", rejectReason(result.Err),
				)
				WriteUnauthorized(w)
			}
		})
	}
}

// WriteUnauthorized writes the uniform 401 reply.
func WriteUnauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	transport.WriteAPIError(w, api.NewUnauthorizedError(ErrUnauthenticated.Error()))
}

// rejectReason classifies a rejection for logs only.
func rejectReason(err error) string {
	switch {
	case errors.Is(err, ErrMissingCredentials):
		return "missing_credentials"
	case errors.Is(err, token.ErrInvalidToken):
		return "invalid_token"
	default:
		return "rejected"
	}
}
