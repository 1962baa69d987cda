package transport

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/bgmsons/catalog/pkg/api"
)

// Recovery returns middleware that catches panics in the handler and
// converts them to server error responses. The server continues to
// accept new requests after a panic is recovered.
func Recovery(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			defer func() {
				if v := recover(); v != nil {
					logger.Error("handler panic",
						slog.String("request_id", RequestIDFromContext(r.Context())),
						slog.String("path", r.URL.Path),
						slog.String("panic", fmt.Sprint(v)),
					)
					if !rec.written {
						WriteAPIError(w, api.NewServerError("internal server error"))
					}
				}
			}()
			next.ServeHTTP(rec, r)
		})
	}
}
