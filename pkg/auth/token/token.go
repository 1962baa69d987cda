// Package token issues and validates the signed bearer tokens presented
// to the access gate.
//
// Tokens are HS256 JWTs carrying sub, iat and exp (and iss when an issuer
// is configured). They are stateless: nothing is persisted, and a token
// stays valid until exp even if the admin's password changes.
package token

import (
	"errors"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// DefaultTTL is the token lifetime when Config.TTL is zero.
const DefaultTTL = 7 * 24 * time.Hour

var (
	// ErrInvalidToken is the single outcome for malformed, forged, and
	// expired tokens alike.
	ErrInvalidToken = errors.New("invalid or expired token")

	// ErrMissingSecret is returned by New when no signing secret is configured.
	ErrMissingSecret = errors.New("token signing secret is not configured")
)

// Config holds the codec configuration.
type Config struct {
	// Secret is the HMAC signing key. Required.
	Secret string

	// TTL is the token lifetime. Default: 7 days.
	TTL time.Duration

	// Issuer is set as the iss claim and required on validation when non-empty.
	Issuer string

	// Now overrides the clock (useful for testing). Default: time.Now.
	Now func() time.Time
}

// applyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) applyDefaults() {
	if c.TTL == 0 {
		c.TTL = DefaultTTL
	}
	if c.Now == nil {
		c.Now = time.Now
	}
}

// Codec creates and validates bearer tokens. It holds no mutable state
// and is safe for concurrent use.
type Codec struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// New creates a codec. It fails when the secret is empty.
func New(cfg Config) (*Codec, error) {
	if cfg.Secret == "" {
		return nil, ErrMissingSecret
	}
	cfg.applyDefaults()
	return &Codec{
		secret: []byte(cfg.Secret),
		ttl:    cfg.TTL,
		issuer: cfg.Issuer,
		now:    cfg.Now,
	}, nil
}

// ExpiresIn returns the lifetime of issued tokens.
func (c *Codec) ExpiresIn() time.Duration {
	return c.ttl
}

// Issue mints a token for subject, valid from now until now+TTL.
func (c *Codec) Issue(subject string) (string, error) {
	now := c.now()
	claims := jwtlib.RegisteredClaims{
		Subject:   subject,
		Issuer:    c.issuer,
		IssuedAt:  jwtlib.NewNumericDate(now),
		ExpiresAt: jwtlib.NewNumericDate(now.Add(c.ttl)),
	}
	return jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(c.secret)
}

// Validate verifies the signature and expiry of tokenStr and returns its
// subject. Every failure collapses to ErrInvalidToken.
func (c *Codec) Validate(tokenStr string) (string, error) {
	if tokenStr == "" {
		return "", ErrInvalidToken
	}

	var claims jwtlib.RegisteredClaims
	token, err := jwtlib.ParseWithClaims(tokenStr, &claims, func(*jwtlib.Token) (interface{}, error) {
		return c.secret, nil
	}, c.parserOptions()...)
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	if claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// ExtractSubject decodes the sub claim without verifying the signature or
// expiry. Only call it on a token that Validate has already accepted.
func (c *Codec) ExtractSubject(tokenStr string) string {
	var claims jwtlib.RegisteredClaims
	if _, _, err := jwtlib.NewParser().ParseUnverified(tokenStr, &claims); err != nil {
		return ""
	}
	return claims.Subject
}

// parserOptions builds JWT parser options based on the configuration.
func (c *Codec) parserOptions() []jwtlib.ParserOption {
	opts := []jwtlib.ParserOption{
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithExpirationRequired(),
		jwtlib.WithTimeFunc(c.now),
		jwtlib.WithStrictDecoding(),
	}

	if c.issuer != "" {
		opts = append(opts, jwtlib.WithIssuer(c.issuer))
	}

	return opts
}
