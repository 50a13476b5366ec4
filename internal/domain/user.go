package domain

import "time"

// Role represents the access level of a user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User represents a registered rider.
// Balance is mutated only through the wallet service and never goes negative.
type User struct {
	ID            string
	Email         string
	PasswordHash  string
	Name          string
	Phone         string
	Balance       float64
	Role          Role
	IsActive      bool
	EmailVerified bool
	LastLogin     time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
