// Package authorizer runs the per-request authorization pass: resolve the
// role behind a token, validate the backing session against the role's
// expiry policy, refresh it on success, evict it on failure.
package authorizer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"jobgate/api/internal/expiry"
	"jobgate/api/internal/metrics"
	"jobgate/api/internal/models"
	"jobgate/api/internal/repository"
	"jobgate/api/internal/session"
)

// ErrUnauthorized is the single externally visible failure. The internal
// reason travels in the wrapped error text for logs and metrics; clients
// only ever see a bare 401.
var ErrUnauthorized = errors.New("unauthorized")

const (
	reasonUnresolvedToken = "unresolved_token"
	reasonSessionMissing  = "session_missing"
	reasonSessionExpired  = "session_expired"
	reasonResolverError   = "resolver_error"
)

// RoleResolver maps a presented token to a role. Unknown tokens must yield
// an error matching repository.ErrTokenNotFound; they never degrade to the
// visitor role.
type RoleResolver interface {
	ResolveRole(ctx context.Context, token string) (models.Role, error)
}

// Identity is the resolved result attached to request-scoped state.
type Identity struct {
	Role  models.Role
	Token string
}

type Authorizer struct {
	resolver RoleResolver
	store    session.Store
	policies map[models.Role]expiry.Policy
	fallback expiry.Policy
	log      zerolog.Logger
	metrics  *metrics.AuthMetrics
	nowF     func() time.Time
}

func New(
	resolver RoleResolver,
	store session.Store,
	policies map[models.Role]expiry.Policy,
	fallback expiry.Policy,
	log zerolog.Logger,
	m *metrics.AuthMetrics,
) *Authorizer {
	return &Authorizer{
		resolver: resolver,
		store:    store,
		policies: policies,
		fallback: fallback,
		log:      log,
		metrics:  m,
		nowF:     time.Now,
	}
}

// PolicyFor returns the expiry policy configured for the role, or the
// fallback when the role has no entry.
func (a *Authorizer) PolicyFor(role models.Role) expiry.Policy {
	if p, ok := a.policies[role]; ok {
		return p
	}
	return a.fallback
}

// Authorize runs one authorization pass. An empty token is valid anonymous
// input and resolves to the visitor role without touching the session
// store. Every rejection of a presented token evicts that token from the
// store first, so a token rejected once never keeps a valid-looking entry.
func (a *Authorizer) Authorize(ctx context.Context, token string) (Identity, error) {
	if token == "" {
		a.countDecision("allow", "visitor")
		return Identity{Role: models.RoleVisitor}, nil
	}

	role, err := a.resolver.ResolveRole(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return Identity{}, a.reject(ctx, token, reasonUnresolvedToken)
		}
		// Transient resolver failure: reject the request but leave the
		// session alone; the token may still be perfectly valid.
		a.log.Error().Err(err).Msg("role resolution failed")
		a.countDecision("deny", reasonResolverError)
		return Identity{}, fmt.Errorf("%s: %w", reasonResolverError, ErrUnauthorized)
	}

	if !role.RequiresSession() {
		a.countDecision("allow", string(role))
		return Identity{Role: role, Token: token}, nil
	}

	sess, err := a.store.Get(ctx, token)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return Identity{}, a.reject(ctx, token, reasonSessionMissing)
		}
		a.log.Error().Err(err).Msg("session lookup failed")
		a.countDecision("deny", reasonSessionMissing)
		return Identity{}, fmt.Errorf("%s: %w", reasonSessionMissing, ErrUnauthorized)
	}

	if a.PolicyFor(role).IsExpired(sess, a.nowF()) {
		return Identity{}, a.reject(ctx, token, reasonSessionExpired)
	}

	if err := a.store.Touch(ctx, token); err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			// The session vanished between the lookup and the refresh,
			// most likely to a concurrent eviction. Observable anomaly,
			// but the checks already passed; the request stands.
			a.log.Warn().Str("role", string(role)).Msg("touch on missing session")
		} else {
			a.log.Error().Err(err).Msg("session touch failed")
		}
	}

	a.countDecision("allow", string(role))
	return Identity{Role: role, Token: token}, nil
}

// reject evicts the token before signaling failure so an expired or invalid
// token never remains valid-looking in storage after a rejection.
func (a *Authorizer) reject(ctx context.Context, token string, reason string) error {
	if err := a.store.Remove(ctx, token); err != nil {
		a.log.Error().Err(err).Msg("session eviction failed")
	}
	a.log.Debug().Str("reason", reason).Msg("request rejected")
	a.countDecision("deny", reason)
	return fmt.Errorf("%s: %w", reason, ErrUnauthorized)
}

func (a *Authorizer) countDecision(result string, reason string) {
	if a.metrics == nil {
		return
	}
	a.metrics.Decisions.WithLabelValues(result, reason).Inc()
}
