package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bgmsons/catalog/pkg/api"
	"github.com/bgmsons/catalog/pkg/auth"
	"github.com/bgmsons/catalog/pkg/identity"
	"github.com/bgmsons/catalog/pkg/mail"
	"github.com/bgmsons/catalog/pkg/observability"
	"github.com/bgmsons/catalog/pkg/storage"
	"github.com/bgmsons/catalog/pkg/transport"
)

// TokenCodec issues and validates bearer tokens.
type TokenCodec interface {
	auth.TokenValidator
	Issue(subject string) (string, error)
	ExpiresIn() time.Duration
}

// EnquiryRelay delivers enquiry mails.
type EnquiryRelay interface {
	Send(ctx context.Context, kind mail.Kind, e mail.Enquiry) error
}

// Dependencies are the collaborators the adapter serves.
type Dependencies struct {
	Products transport.ProductStore
	Admins   *identity.Service
	Tokens   TokenCodec

	// Mail is optional; when nil the enquiry endpoints answer 503.
	Mail EnquiryRelay

	// LoginLimiter is optional; when nil login attempts are not throttled.
	LoginLimiter auth.RateLimiter

	// Policy defaults to auth.DefaultPolicy().
	Policy auth.Policy

	Logger *slog.Logger
}

// Config holds configuration for the HTTP adapter.
type Config struct {
	MaxBodySize int64

	// MetricsPath mounts the Prometheus handler when non-empty.
	MetricsPath string

	// Now overrides the clock used for product creation dates.
	Now func() time.Time
}

// DefaultConfig returns the default adapter configuration.
func DefaultConfig() Config {
	return Config{
		MaxBodySize: 1 << 20,
		MetricsPath: "/metrics",
		Now:         time.Now,
	}
}

// Adapter serves the catalog API over HTTP.
type Adapter struct {
	deps   Dependencies
	config Config
	logger *slog.Logger
	mux    *http.ServeMux
}

// NewAdapter creates an HTTP adapter and registers the API routes.
func NewAdapter(deps Dependencies, cfg Config) *Adapter {
	if deps.Policy == nil {
		deps.Policy = auth.DefaultPolicy()
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if cfg.MaxBodySize <= 0 {
		cfg.MaxBodySize = DefaultConfig().MaxBodySize
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	a := &Adapter{
		deps:   deps,
		config: cfg,
		logger: deps.Logger,
		mux:    http.NewServeMux(),
	}

	a.mux.HandleFunc("POST /api/admin/signup", a.handleSignup)
	a.mux.HandleFunc("POST /api/admin/login", a.handleLogin)
	a.mux.HandleFunc("PUT /api/admin/update", a.handleUpdateCredentials)
	a.mux.HandleFunc("GET /api/admin/verify", a.handleVerify)

	a.mux.HandleFunc("GET /api/products", a.handleListProducts)
	a.mux.HandleFunc("POST /api/products", a.handleCreateProduct)
	a.mux.HandleFunc("GET /api/products/{id}", a.handleGetProduct)
	a.mux.HandleFunc("PUT /api/products/{id}", a.handleUpdateProduct)
	a.mux.HandleFunc("DELETE /api/products/{id}", a.handleDeleteProduct)

	a.mux.HandleFunc("POST /api/mail/send-enquiry", a.handleSendEnquiry)
	a.mux.HandleFunc("POST /api/mail/send-product-enquiry", a.handleSendProductEnquiry)

	return a
}

// APIHandler returns the /api/ routes behind the statically ordered
// interceptor chain. The access gate runs first; nothing else sees a
// protected request before it has been authenticated.
func (a *Adapter) APIHandler() http.Handler {
	return transport.Chain(
		auth.Middleware(a.deps.Tokens, a.deps.Policy),
		transport.Recovery(a.logger),
		transport.RequestID(),
		transport.Logging(a.logger),
		observability.MetricsMiddleware,
	)(a.mux)
}

// Handler returns the root handler: the gated API plus the unauthenticated
// health and metrics endpoints.
func (a *Adapter) Handler() http.Handler {
	root := http.NewServeMux()
	root.Handle("/api/", a.APIHandler())
	root.HandleFunc("GET /healthz", a.handleHealth)
	if a.config.MetricsPath != "" {
		root.Handle("GET "+a.config.MetricsPath, promhttp.Handler())
	}
	return root
}

// handleHealth handles GET /healthz.
func (a *Adapter) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := a.deps.Products.HealthCheck(r.Context()); err != nil {
		a.logger.Error("health check failed", "error", err)
		transport.WriteAPIError(w, api.NewUnavailableError("storage unavailable"))
		return
	}
	transport.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decodeJSON decodes the request body into v, bounded by MaxBodySize.
func (a *Adapter) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, a.config.MaxBodySize)

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			transport.WriteErrorResponse(w,
				api.NewInvalidRequestError("body", fmt.Sprintf("request body too large (max %d bytes)", a.config.MaxBodySize)),
				http.StatusRequestEntityTooLarge,
			)
			return false
		}
		transport.WriteAPIError(w, api.NewInvalidRequestError("body", "invalid JSON: "+err.Error()))
		return false
	}
	return true
}

// writeStoreError maps storage failures onto API errors.
func (a *Adapter) writeStoreError(w http.ResponseWriter, r *http.Request, err error, what string) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		transport.WriteAPIError(w, api.NewNotFoundError(what+" not found"))
	case errors.Is(err, storage.ErrConflict):
		transport.WriteAPIError(w, api.NewConflictError(what+" already exists"))
	default:
		a.internalError(w, r, "storage operation failed", err)
	}
}

// clientKey returns the remote IP used to key the login limiter.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
