package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/bgmsons/catalog/pkg/api"
	"github.com/bgmsons/catalog/pkg/auth"
	"github.com/bgmsons/catalog/pkg/identity"
	"github.com/bgmsons/catalog/pkg/observability"
	"github.com/bgmsons/catalog/pkg/transport"
)

// Reply messages of the admin endpoints.
const (
	msgCreated          = "Admin created successfully"
	msgUsernameTaken    = "Admin with this username already exists"
	msgLoginOK          = "Admin login successful"
	msgInvalidLogin     = "Invalid admin credentials"
	msgUpdated          = "Admin credentials updated successfully"
	msgInvalidCurrent   = "Invalid current admin credentials"
	msgTokenValid       = "Token is valid"
	msgTokenInvalid     = "Invalid or expired token"
	msgTooManyAttempts  = "too many login attempts, try again later"
	msgInternalError    = "internal server error"
	loginRetryAfterSecs = 60
)

// handleSignup handles POST /api/admin/signup.
func (a *Adapter) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req api.CredentialsRequest
	if !a.decodeJSON(w, r, &req) {
		return
	}
	if apiErr := api.ValidateCredentials(&req); apiErr != nil {
		transport.WriteAPIError(w, apiErr)
		return
	}

	_, err := a.deps.Admins.Create(r.Context(), req.Username, req.Password)
	switch {
	case err == nil:
		a.logger.Info("admin created", "username", req.Username)
		transport.WriteJSON(w, http.StatusOK, api.AuthReply{Success: true, Message: msgCreated, Username: req.Username})
	case errors.Is(err, identity.ErrUsernameTaken):
		transport.WriteJSON(w, http.StatusConflict, api.AuthReply{Message: msgUsernameTaken})
	case errors.Is(err, identity.ErrEmptyCredentials):
		transport.WriteAPIError(w, api.NewInvalidRequestError("", err.Error()))
	default:
		a.internalError(w, r, "admin signup failed", err)
	}
}

// handleLogin handles POST /api/admin/login.
func (a *Adapter) handleLogin(w http.ResponseWriter, r *http.Request) {
	if a.deps.LoginLimiter != nil {
		if err := a.deps.LoginLimiter.Allow(r.Context(), clientKey(r)); err != nil {
			observability.LoginThrottledTotal.Inc()
			a.logger.Warn("login throttled", "remote_addr", r.RemoteAddr)
			w.Header().Set("Retry-After", strconv.Itoa(loginRetryAfterSecs))
			transport.WriteAPIError(w, api.NewTooManyRequestsError(msgTooManyAttempts))
			return
		}
	}

	var req api.CredentialsRequest
	if !a.decodeJSON(w, r, &req) {
		return
	}
	if apiErr := api.ValidateCredentials(&req); apiErr != nil {
		transport.WriteAPIError(w, apiErr)
		return
	}

	ok, err := a.deps.Admins.VerifyCredentials(r.Context(), req.Username, req.Password)
	if err != nil {
		observability.LoginAttemptsTotal.WithLabelValues("error").Inc()
		a.internalError(w, r, "admin login failed", err)
		return
	}
	if !ok {
		observability.LoginAttemptsTotal.WithLabelValues("invalid").Inc()
		a.logger.Warn("admin login rejected", "username", req.Username, "remote_addr", r.RemoteAddr)
		transport.WriteJSON(w, http.StatusUnauthorized, api.AuthReply{Message: msgInvalidLogin})
		return
	}

	tok, err := a.deps.Tokens.Issue(req.Username)
	if err != nil {
		observability.LoginAttemptsTotal.WithLabelValues("error").Inc()
		a.internalError(w, r, "issuing token failed", err)
		return
	}

	observability.LoginAttemptsTotal.WithLabelValues("success").Inc()
	a.logger.Info("admin logged in", "username", req.Username)
	transport.WriteJSON(w, http.StatusOK, api.LoginReply{
		Success:   true,
		Message:   msgLoginOK,
		Token:     tok,
		ExpiresIn: int64(a.deps.Tokens.ExpiresIn().Seconds()),
	})
}

// handleUpdateCredentials handles PUT /api/admin/update. The gate has
// already verified the token; the caller may only change its own record.
func (a *Adapter) handleUpdateCredentials(w http.ResponseWriter, r *http.Request) {
	var req api.UpdateCredentialsRequest
	if !a.decodeJSON(w, r, &req) {
		return
	}
	if apiErr := api.ValidateUpdateCredentials(&req); apiErr != nil {
		transport.WriteAPIError(w, apiErr)
		return
	}

	subject, ok := auth.SubjectFromContext(r.Context())
	if !ok || subject != req.CurrentUsername {
		a.logger.Warn("credential update for another admin rejected",
			"subject", subject,
			"username", req.CurrentUsername,
		)
		transport.WriteJSON(w, http.StatusUnauthorized, api.AuthReply{Message: msgInvalidCurrent})
		return
	}

	admin, err := a.deps.Admins.Update(r.Context(), req.CurrentUsername, req.CurrentPassword, req.NewUsername, req.NewPassword)
	switch {
	case err == nil:
		a.logger.Info("admin credentials updated", "username", req.CurrentUsername, "new_username", admin.Username)
		transport.WriteJSON(w, http.StatusOK, api.AuthReply{Success: true, Message: msgUpdated, Username: admin.Username})
	case errors.Is(err, identity.ErrInvalidCredentials):
		transport.WriteJSON(w, http.StatusUnauthorized, api.AuthReply{Message: msgInvalidCurrent})
	case errors.Is(err, identity.ErrUsernameTaken):
		transport.WriteJSON(w, http.StatusConflict, api.AuthReply{Message: msgUsernameTaken})
	case errors.Is(err, identity.ErrEmptyCredentials):
		transport.WriteAPIError(w, api.NewInvalidRequestError("", err.Error()))
	default:
		a.internalError(w, r, "admin update failed", err)
	}
}

// handleVerify handles GET /api/admin/verify. The route is exempt from the
// gate and checks the presented token itself.
func (a *Adapter) handleVerify(w http.ResponseWriter, r *http.Request) {
	tok, err := auth.BearerToken(r.Header.Get("Authorization"))
	if err == nil {
		var subject string
		subject, err = a.deps.Tokens.Validate(tok)
		if err == nil {
			transport.WriteJSON(w, http.StatusOK, api.AuthReply{Success: true, Message: msgTokenValid, Username: subject})
			return
		}
	}

	w.Header().Set("WWW-Authenticate", "Bearer")
	transport.WriteJSON(w, http.StatusUnauthorized, api.AuthReply{Message: msgTokenInvalid})
}

// internalError logs err and writes a 500 without exposing its text.
func (a *Adapter) internalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	a.logger.Error(msg,
		"request_id", transport.RequestIDFromContext(r.Context()),
		"error", err,
	)
	transport.WriteAPIError(w, api.NewServerError(msgInternalError))
}
