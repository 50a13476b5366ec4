package repository

import (
	"context"

	"ecorueda/internal/domain"
)

// PaymentMethodRepository defines the persistence operations for stored
// payment methods.
type PaymentMethodRepository interface {
	// Create persists a new payment method.
	Create(ctx context.Context, method *domain.PaymentMethod) error

	// GetByID retrieves a payment method by ID.
	GetByID(ctx context.Context, id string) (*domain.PaymentMethod, error)

	// GetByUserID retrieves all of a user's payment methods.
	GetByUserID(ctx context.Context, userID string) ([]*domain.PaymentMethod, error)

	// GetActiveByUserID retrieves the user's active methods, default first,
	// then newest first.
	GetActiveByUserID(ctx context.Context, userID string) ([]*domain.PaymentMethod, error)

	// ExistsCard reports whether the user already stored this card.
	ExistsCard(ctx context.Context, userID, cardLast4, provider string) (bool, error)

	// ClearDefault clears the default flag on all of the user's methods.
	ClearDefault(ctx context.Context, userID string) error

	// SetDefault marks the method as the user's default.
	SetDefault(ctx context.Context, id string) error

	// Deactivate soft-deletes the method.
	Deactivate(ctx context.Context, id string) error
}
