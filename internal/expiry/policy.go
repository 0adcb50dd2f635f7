// Package expiry holds the pluggable session expiry predicates. Policies
// are pure values: a function of the session and the current time, safe to
// share across concurrent requests without synchronization.
package expiry

import (
	"fmt"
	"time"

	"jobgate/api/internal/session"
)

const (
	DefaultFixedLifespan = 30 * 24 * time.Hour
	DefaultIdleTimeout   = 3 * time.Minute
)

type Policy interface {
	// IsExpired reports whether the session should no longer be accepted.
	IsExpired(s session.Session, now time.Time) bool
	Name() string
}

// FixedLifespan expires a session a fixed duration after issuance,
// regardless of how recently it was used.
type FixedLifespan struct {
	Lifespan time.Duration
}

func (p FixedLifespan) IsExpired(s session.Session, now time.Time) bool {
	return now.Sub(s.CreatedAt) > p.Lifespan
}

func (p FixedLifespan) Name() string { return "fixed" }

// IdleTimeout expires a session once it has gone unused for the timeout,
// regardless of when it was issued.
type IdleTimeout struct {
	Timeout time.Duration
}

func (p IdleTimeout) IsExpired(s session.Session, now time.Time) bool {
	return now.Sub(s.LastAccessAt) > p.Timeout
}

func (p IdleTimeout) Name() string { return "idle" }

// Extended is the two-stage policy: until the fixed lifespan elapses the
// session is valid no matter how long it sits idle; after that it stays
// valid only while it keeps being used within the idle timeout.
type Extended struct {
	Fixed FixedLifespan
	Idle  IdleTimeout
}

func (p Extended) IsExpired(s session.Session, now time.Time) bool {
	return p.Fixed.IsExpired(s, now) && p.Idle.IsExpired(s, now)
}

func (p Extended) Name() string { return "extended" }

// FromName builds the named policy from the configured durations. Valid
// names are "fixed", "idle" and "extended".
func FromName(name string, lifespan, idleTimeout time.Duration) (Policy, error) {
	switch name {
	case "fixed":
		return FixedLifespan{Lifespan: lifespan}, nil
	case "idle":
		return IdleTimeout{Timeout: idleTimeout}, nil
	case "extended":
		return Extended{
			Fixed: FixedLifespan{Lifespan: lifespan},
			Idle:  IdleTimeout{Timeout: idleTimeout},
		}, nil
	}
	return nil, fmt.Errorf("unknown expiry policy %q", name)
}
