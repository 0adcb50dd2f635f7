package expiry

import (
	"testing"
	"time"

	"jobgate/api/internal/session"
)

func sessionAt(created, lastAccess time.Time) session.Session {
	return session.Session{
		Token:        "tok",
		CreatedAt:    created,
		LastAccessAt: lastAccess,
	}
}

func TestFixedLifespan_FreshSessionNotExpired(t *testing.T) {
	now := time.Now()
	p := FixedLifespan{Lifespan: DefaultFixedLifespan}

	if p.IsExpired(sessionAt(now, now), now) {
		t.Fatal("fresh session should not be expired")
	}
}

func TestFixedLifespan_ExpiredRegardlessOfLastAccess(t *testing.T) {
	now := time.Now()
	created := now.Add(-DefaultFixedLifespan - time.Second)
	p := FixedLifespan{Lifespan: DefaultFixedLifespan}

	// Touched one second ago; the fixed lifespan ignores it.
	if !p.IsExpired(sessionAt(created, now.Add(-time.Second)), now) {
		t.Fatal("session past its lifespan should be expired")
	}
}

func TestFixedLifespan_ExactBoundaryNotExpired(t *testing.T) {
	now := time.Now()
	created := now.Add(-DefaultFixedLifespan)
	p := FixedLifespan{Lifespan: DefaultFixedLifespan}

	if p.IsExpired(sessionAt(created, created), now) {
		t.Fatal("session exactly at its lifespan should not be expired yet")
	}
}

func TestIdleTimeout_FreshSessionNotExpired(t *testing.T) {
	now := time.Now()
	p := IdleTimeout{Timeout: DefaultIdleTimeout}

	if p.IsExpired(sessionAt(now, now), now) {
		t.Fatal("fresh session should not be expired")
	}
}

func TestIdleTimeout_ExpiredRegardlessOfAge(t *testing.T) {
	now := time.Now()
	p := IdleTimeout{Timeout: DefaultIdleTimeout}

	// Created just now but idle past the timeout.
	lastAccess := now.Add(-DefaultIdleTimeout - time.Second)
	if !p.IsExpired(sessionAt(now.Add(-time.Minute), lastAccess), now) {
		t.Fatal("idle session should be expired")
	}
}

func TestExtended(t *testing.T) {
	now := time.Now()
	p := Extended{
		Fixed: FixedLifespan{Lifespan: DefaultFixedLifespan},
		Idle:  IdleTimeout{Timeout: DefaultIdleTimeout},
	}

	tests := []struct {
		name       string
		created    time.Time
		lastAccess time.Time
		expired    bool
	}{
		{
			name:       "31 days old, touched 1 second ago",
			created:    now.Add(-31 * 24 * time.Hour),
			lastAccess: now.Add(-time.Second),
			expired:    false,
		},
		{
			name:       "31 days old, idle 4 minutes",
			created:    now.Add(-31 * 24 * time.Hour),
			lastAccess: now.Add(-4 * time.Minute),
			expired:    true,
		},
		{
			name:       "10 days old, idle 10 minutes",
			created:    now.Add(-10 * 24 * time.Hour),
			lastAccess: now.Add(-10 * time.Minute),
			expired:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.IsExpired(sessionAt(tt.created, tt.lastAccess), now)
			if got != tt.expired {
				t.Errorf("IsExpired = %v, want %v", got, tt.expired)
			}
		})
	}
}

func TestFromName(t *testing.T) {
	for _, name := range []string{"fixed", "idle", "extended"} {
		p, err := FromName(name, DefaultFixedLifespan, DefaultIdleTimeout)
		if err != nil {
			t.Fatalf("FromName(%q): %v", name, err)
		}
		if p.Name() != name {
			t.Errorf("Name() = %q, want %q", p.Name(), name)
		}
	}

	if _, err := FromName("sliding", DefaultFixedLifespan, DefaultIdleTimeout); err == nil {
		t.Fatal("FromName should reject unknown policy names")
	}
}
