package auth

import (
	"errors"
	"net/http"
	"strings"
)

// Decision represents the outcome of evaluating one request.
type Decision int

const (
	// Exempt means the route policy let the request through without
	// credentials. No identity is attached.
	Exempt Decision = iota

	// Allowed means a valid bearer token was presented. The identity is
	// attached to the request context.
	Allowed

	// Rejected means the request is protected and the credentials were
	// missing or invalid. The request never reaches a handler.
	Rejected
)

// String returns the metric label for the decision.
func (d Decision) String() string {
	switch d {
	case Exempt:
		return "exempt"
	case Allowed:
		return "allowed"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Result carries the outcome of a gate evaluation.
type Result struct {
	Decision Decision
	Identity *Identity // populated only when Decision == Allowed
	Err      error     // populated only when Decision == Rejected
}

// Identity represents an authenticated caller.
type Identity struct {
	// Subject is the admin username the token was issued to.
	Subject string
}

// TokenValidator validates a bearer token and returns its subject.
// Implementations must not distinguish malformed, forged and expired
// tokens in their error.
type TokenValidator interface {
	Validate(token string) (string, error)
}

// Policy decides whether a request shape bypasses the credential check.
type Policy interface {
	IsExempt(method, path string) bool
}

// BearerScheme is the Authorization header prefix the gate accepts.
const BearerScheme = "Bearer "

// Sentinel errors.
var (
	ErrUnauthenticated    = errors.New("authentication required")
	ErrMissingCredentials = errors.New("missing or invalid Authorization header")
	ErrTooManyRequests    = errors.New("rate limit exceeded")
)

// BearerToken extracts the token from an Authorization header value.
// The scheme is matched case-sensitively and the token must be non-empty.
func BearerToken(header string) (string, error) {
	if !strings.HasPrefix(header, BearerScheme) {
		return "", ErrMissingCredentials
	}
	tok := strings.TrimPrefix(header, BearerScheme)
	if tok == "" {
		return "", ErrMissingCredentials
	}
	return tok, nil
}

// Gate evaluates requests against a route policy and a token validator.
type Gate struct {
	validator TokenValidator
	policy    Policy
}

// NewGate creates a gate.
func NewGate(validator TokenValidator, policy Policy) *Gate {
	return &Gate{validator: validator, policy: policy}
}

// Evaluate decides the fate of a single request. It has no side effects.
func (g *Gate) Evaluate(r *http.Request) Result {
	if g.policy.IsExempt(r.Method, r.URL.Path) {
		return Result{Decision: Exempt}
	}

	tok, err := BearerToken(r.Header.Get("Authorization"))
	if err != nil {
		return Result{Decision: Rejected, Err: err}
	}

	subject, err := g.validator.Validate(tok)
	if err != nil {
		return Result{Decision: Rejected, Err: err}
	}

	return Result{
		Decision: Allowed,
		Identity: &Identity{Subject: subject},
	}
}
