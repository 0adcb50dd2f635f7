package models

import (
	"fmt"
	"time"
)

type Role string

const (
	// RoleVisitor is the anonymous role. It requires no session and is
	// assigned whenever a request carries no token.
	RoleVisitor Role = "visitor"

	RoleApplicant Role = "applicant"
	RoleEmployer  Role = "employer"
	RoleAdmin     Role = "admin"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleVisitor, RoleApplicant, RoleEmployer, RoleAdmin:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// RequiresSession reports whether a request resolved to this role must be
// backed by a live session. Only visitors are exempt.
func (r Role) RequiresSession() bool {
	return r != RoleVisitor
}

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
)

type User struct {
	ID           string
	Email        string
	PasswordHash []byte
	DisplayName  string
	Role         Role
	Status       UserStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
