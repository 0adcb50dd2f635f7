// Package session owns the mapping from opaque token to session metadata.
// A session records only when it was issued and when it was last used; who
// the token belongs to lives in the identity tables and is resolved
// separately (the token value is the join key).
package session

import (
	"context"
	"errors"
	"time"
)

// ErrSessionNotFound is returned by Get when no session exists for a token,
// and by Touch when asked to refresh a token that has no backing session.
// For Get this is a normal outcome; for Touch it signals an inconsistency
// between the identity mapping and the store that callers should surface.
var ErrSessionNotFound = errors.New("session not found")

type Session struct {
	Token        string
	CreatedAt    time.Time
	LastAccessAt time.Time
}

// Store is the shared mutable session state. Implementations must allow
// operations on different tokens to proceed without blocking one another,
// and must keep operations on the same token linearizable: a Touch racing a
// Remove never resurrects the removed entry.
type Store interface {
	// Create issues a fresh token and inserts a session with
	// CreatedAt == LastAccessAt == now.
	Create(ctx context.Context) (Session, error)

	// Get is a pure lookup; it never mutates the session.
	Get(ctx context.Context, token string) (Session, error)

	// Touch sets LastAccessAt to now. LastAccessAt never moves backwards.
	Touch(ctx context.Context, token string) error

	// Remove deletes the entry if present. Removing an absent token is not
	// an error.
	Remove(ctx context.Context, token string) error

	// Count reports the number of live sessions.
	Count(ctx context.Context) (int, error)

	// Sweep removes every session for which expired returns true and
	// reports how many were removed.
	Sweep(ctx context.Context, expired func(Session, time.Time) bool) (int, error)
}
