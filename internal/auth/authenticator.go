// Package auth gates the MCP endpoint. Callers are admitted either through a
// trusted forwarded-identity header set by the upstream proxy, or by presenting
// the shared external access token as a bearer credential.
package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/bobmcallan/uc-mcp/internal/common"
)

const (
	// HeaderForwardedEmail carries the identity asserted by the upstream proxy.
	HeaderForwardedEmail = "X-Forwarded-Email"
	// HeaderAuthorization carries the bearer credential for external callers.
	HeaderAuthorization = "Authorization"

	bearerPrefix = "Bearer "

	// ExternalUserIdentity is the label attached to token-authenticated callers.
	ExternalUserIdentity = "external-user@databricksapps"
)

// Method names the path by which a caller was admitted.
type Method string

const (
	MethodForwardedEmail Method = "forwarded_email"
	MethodBearerToken    Method = "bearer_token"
	MethodNone           Method = "none"
)

// Outcome labels reported to an Observer.
const (
	OutcomeAdmitted     = "admitted"
	OutcomeForbidden    = "forbidden"
	OutcomeUnauthorized = "unauthorized"
)

var (
	// ErrUnauthorized is returned when the request carries no usable credentials.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden is returned when a bearer token is presented but does not match.
	ErrForbidden = errors.New("forbidden")
)

// Error is a rejection carrying the HTTP status and the detail message sent to the caller.
type Error struct {
	Status int
	Detail string
	kind   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.kind, e.Detail)
}

// Unwrap exposes ErrUnauthorized or ErrForbidden to errors.Is.
func (e *Error) Unwrap() error {
	return e.kind
}

// Identity is the label attached to an admitted request.
type Identity struct {
	Label  string
	Method Method
}

func (i Identity) String() string {
	return i.Label
}

// IsExternal reports whether the caller was admitted by token.
func (i Identity) IsExternal() bool {
	return i.Method == MethodBearerToken
}

// Observer receives one call per authentication decision.
type Observer interface {
	ObserveAuth(method, outcome string)
}

// Authenticator decides whether a request is admitted and under which identity.
// It holds no per-request state and is safe for concurrent use.
type Authenticator struct {
	expectedToken string
	logger        *common.Logger
	observer      Observer
}

// Option configures an Authenticator.
type Option func(*Authenticator)

// WithObserver reports each decision to o.
func WithObserver(o Observer) Option {
	return func(a *Authenticator) { a.observer = o }
}

// NewAuthenticator creates an authenticator that accepts expectedToken for
// bearer callers. An empty expectedToken rejects every bearer attempt.
func NewAuthenticator(expectedToken string, logger *common.Logger, opts ...Option) *Authenticator {
	a := &Authenticator{
		expectedToken: expectedToken,
		logger:        logger,
	}
	for _, opt := range opts {
		opt(a)
	}
	if expectedToken == "" {
		logger.Warn().Msg("no external access token configured, bearer authentication will always be rejected")
	}
	return a
}

// Authenticate evaluates the request headers. The forwarded-email header is
// checked first and always wins over an Authorization header.
func (a *Authenticator) Authenticate(r *http.Request) (Identity, error) {
	logger := a.logger.ForContext(r.Context())

	if email := r.Header.Get(HeaderForwardedEmail); email != "" {
		logger.Info().
			Str("identity", email).
			Str("method", string(MethodForwardedEmail)).
			Msg("authenticated internal user")
		a.observe(MethodForwardedEmail, OutcomeAdmitted)
		return Identity{Label: email, Method: MethodForwardedEmail}, nil
	}

	if header := r.Header.Get(HeaderAuthorization); strings.HasPrefix(header, bearerPrefix) {
		token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
		if a.tokenMatches(token) {
			logger.Info().
				Str("identity", ExternalUserIdentity).
				Str("method", string(MethodBearerToken)).
				Msg("authenticated external user via token")
			a.observe(MethodBearerToken, OutcomeAdmitted)
			return Identity{Label: ExternalUserIdentity, Method: MethodBearerToken}, nil
		}

		logger.Warn().
			Str("method", string(MethodBearerToken)).
			Str("path", r.URL.Path).
			Str("remote", r.RemoteAddr).
			Msg("rejected request with invalid bearer token")
		a.observe(MethodBearerToken, OutcomeForbidden)
		return Identity{}, &Error{Status: http.StatusForbidden, Detail: "Invalid token", kind: ErrForbidden}
	}

	logger.Warn().
		Str("path", r.URL.Path).
		Str("remote", r.RemoteAddr).
		Msg("rejected request without credentials")
	a.observe(MethodNone, OutcomeUnauthorized)
	return Identity{}, &Error{Status: http.StatusUnauthorized, Detail: "Unauthorized", kind: ErrUnauthorized}
}

// tokenMatches compares in constant time. An unset expected token matches nothing.
func (a *Authenticator) tokenMatches(token string) bool {
	if a.expectedToken == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(a.expectedToken)) == 1
}

func (a *Authenticator) observe(method Method, outcome string) {
	if a.observer != nil {
		a.observer.ObserveAuth(string(method), outcome)
	}
}
