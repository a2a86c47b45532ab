// Package entity defines the core business entities for the domain layer.
package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// UserRole represents the access level of a dashboard user.
type UserRole string

const (
	UserRoleUser  UserRole = "USER"
	UserRoleAdmin UserRole = "ADMIN"
)

// User represents a subscriber or administrator of the streaming service.
// Users are owned by the account subsystem; the mutual connection core only reads them.
type User struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	Mobile       string
	Age          int
	Country      string
	Role         UserRole
	CreatedAt    time.Time
}

// NewUser creates a new User with the USER role.
func NewUser(name, email, passwordHash, country string) *User {
	return &User{
		ID:           uuid.New(),
		Name:         name,
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: passwordHash,
		Country:      country,
		Role:         UserRoleUser,
		CreatedAt:    time.Now().UTC(),
	}
}

// IsAdmin returns true if the user may manage mutual connection groups.
func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

// UserDisplayInfo is the subset of user fields shown next to group members.
type UserDisplayInfo struct {
	ID      uuid.UUID
	Name    string
	Email   string
	Country string
}
