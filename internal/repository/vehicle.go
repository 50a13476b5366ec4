package repository

import (
	"context"

	"ecorueda/internal/domain"
)

// VehicleRepository defines the persistence operations for vehicles.
type VehicleRepository interface {
	// Create persists a new vehicle.
	Create(ctx context.Context, vehicle *domain.Vehicle) error

	// GetByID retrieves a vehicle by ID.
	GetByID(ctx context.Context, id string) (*domain.Vehicle, error)

	// GetAvailable retrieves all vehicles in the available state.
	GetAvailable(ctx context.Context) ([]*domain.Vehicle, error)

	// FindInBounds retrieves available vehicles inside a coordinate box.
	FindInBounds(ctx context.Context, minLat, maxLat, minLng, maxLng float64) ([]*domain.Vehicle, error)

	// ExistsAt reports whether a vehicle already sits at the exact coordinates.
	ExistsAt(ctx context.Context, lat, lng float64) (bool, error)

	// UpdateStatusFrom transitions status only if the current status matches
	// from. Returns (false, nil) when the vehicle is in a different state,
	// which is how concurrent transitions on the same row are serialized.
	UpdateStatusFrom(ctx context.Context, id string, from, to domain.VehicleStatus) (bool, error)

	// Release moves an in-use vehicle back to available and writes its
	// end-of-use location and battery in the same statement, so a failure
	// cannot leave an available vehicle with stale coordinates. Returns
	// (false, nil) when the vehicle is not in use.
	Release(ctx context.Context, id string, lat, lng float64, battery int) (bool, error)

	// UpdateStatus sets the status unconditionally.
	UpdateStatus(ctx context.Context, id string, status domain.VehicleStatus) error

	// UpdateBattery sets the battery level.
	UpdateBattery(ctx context.Context, id string, battery int) error

	// UpdateLocation sets the coordinates.
	UpdateLocation(ctx context.Context, id string, lat, lng float64) error

	// CountByStatus returns the number of vehicles in the given state.
	CountByStatus(ctx context.Context, status domain.VehicleStatus) (int, error)

	// CountAvailableByType returns the number of available vehicles of a type.
	CountAvailableByType(ctx context.Context, vehicleType domain.VehicleType) (int, error)
}
