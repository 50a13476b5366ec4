package repository

import (
	"context"
	"time"

	"ecorueda/internal/domain"
)

// UserRepository defines the persistence operations for users.
type UserRepository interface {
	// Create persists a new user.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by email.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// UpdateProfile updates a user's name and phone.
	UpdateProfile(ctx context.Context, id, name, phone string) error

	// UpdatePassword replaces the stored password hash.
	UpdatePassword(ctx context.Context, id, passwordHash string) error

	// UpdateLastLogin stamps the user's last login time.
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error

	// Credit adds amount to the user's balance.
	Credit(ctx context.Context, id string, amount float64) error

	// Debit subtracts amount from the user's balance. The balance check
	// and the update are a single conditional statement; Debit returns
	// (false, nil) when the balance is too low.
	Debit(ctx context.Context, id string, amount float64) (bool, error)
}
