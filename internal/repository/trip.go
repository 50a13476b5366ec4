package repository

import (
	"context"

	"ecorueda/internal/domain"
)

// TripRepository defines the persistence operations for trips.
type TripRepository interface {
	// CreateIfNoneOngoing inserts the trip only if the user has no ongoing
	// trip; of two concurrent starts exactly one succeeds. Returns
	// (false, nil) when an ongoing trip already exists.
	CreateIfNoneOngoing(ctx context.Context, trip *domain.Trip) (bool, error)

	// GetByID retrieves a trip by ID.
	GetByID(ctx context.Context, id string) (*domain.Trip, error)

	// GetActiveByUserID retrieves the user's ongoing trip.
	// Returns nil if no ongoing trip exists.
	GetActiveByUserID(ctx context.Context, userID string) (*domain.Trip, error)

	// Finish marks the trip completed with its end fields and price. Only an
	// ongoing trip can be finished; ErrNotFound means the trip is missing or
	// already settled, so a retried finish cannot charge twice.
	Finish(ctx context.Context, trip *domain.Trip) error

	// Cancel marks the trip cancelled. Only an ongoing trip can be
	// cancelled; ErrNotFound means the trip is missing or already settled.
	Cancel(ctx context.Context, id string) error

	// GetHistoryByUserID retrieves a page of the user's completed trips,
	// newest first, along with the total completed count.
	GetHistoryByUserID(ctx context.Context, userID string, limit, offset int) ([]*domain.Trip, int, error)

	// GetStatsByUserID aggregates trip counts, distance, minutes and spend.
	GetStatsByUserID(ctx context.Context, userID string) (*domain.TripStats, error)
}
