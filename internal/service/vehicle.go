package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"ecorueda/internal/domain"
	"ecorueda/internal/redis"
	"ecorueda/internal/repository"
)

// Service area bounding box (Costa Rica).
const (
	serviceAreaLatMin = 8.0
	serviceAreaLatMax = 11.3
	serviceAreaLngMin = -86.0
	serviceAreaLngMax = -82.5
)

// kmPerDegree is the fixed-degree approximation used for nearby search.
// The resulting filter is a rectangle, not a geodesic circle.
const kmPerDegree = 111.0

const coordLockTTL = 10 * time.Second

// VehicleService handles the vehicle inventory and its availability state.
type VehicleService struct {
	vehicleRepo repository.VehicleRepository
	geocoder    Geocoder
	coordLock   redis.CoordLockInterface
	statsCache  redis.StatsCacheInterface
}

// NewVehicleService creates a new VehicleService. coordLock and statsCache
// may be nil when Redis is not wired (tests).
func NewVehicleService(
	vehicleRepo repository.VehicleRepository,
	geocoder Geocoder,
	coordLock redis.CoordLockInterface,
	statsCache redis.StatsCacheInterface,
) *VehicleService {
	return &VehicleService{
		vehicleRepo: vehicleRepo,
		geocoder:    geocoder,
		coordLock:   coordLock,
		statsCache:  statsCache,
	}
}

// CreateVehicleRequest contains the parameters for adding a vehicle.
type CreateVehicleRequest struct {
	Company     domain.VehicleCompany
	Type        domain.VehicleType
	Lat         float64
	Lng         float64
	Battery     *int // nil defaults to a full battery
	PricePerMin float64
}

// Create validates the request, resolves region labels best-effort and adds
// the vehicle in the available state. A vehicle at the exact same coordinate
// pair is rejected.
func (s *VehicleService) Create(ctx context.Context, req CreateVehicleRequest) (*domain.Vehicle, error) {
	switch req.Company {
	case domain.CompanyTier, domain.CompanyLime, domain.CompanyBird:
	default:
		return nil, ErrInvalidCompany
	}

	switch req.Type {
	case domain.VehicleTypeScooter, domain.VehicleTypeBike:
	default:
		return nil, ErrInvalidVehicleType
	}

	battery := 100
	if req.Battery != nil {
		battery = *req.Battery
	}
	if battery < 0 || battery > 100 {
		return nil, ErrInvalidBattery
	}

	if req.PricePerMin <= 0 {
		return nil, ErrInvalidPrice
	}

	if req.Lat < serviceAreaLatMin || req.Lat > serviceAreaLatMax ||
		req.Lng < serviceAreaLngMin || req.Lng > serviceAreaLngMax {
		return nil, ErrOutsideServiceArea
	}

	if s.coordLock != nil {
		ok, err := s.coordLock.AcquireCoordLock(ctx, req.Lat, req.Lng, coordLockTTL)
		if err == nil && ok {
			defer func() { _ = s.coordLock.ReleaseCoordLock(ctx, req.Lat, req.Lng) }()
		} else if err == nil && !ok {
			return nil, ErrVehicleExistsAtLocation
		}
		// On a Redis error the duplicate check below still applies.
	}

	exists, err := s.vehicleRepo.ExistsAt(ctx, req.Lat, req.Lng)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrVehicleExistsAtLocation
	}

	// Best effort; an empty result leaves the labels null.
	location := s.geocoder.ReverseLookup(ctx, req.Lat, req.Lng)

	vehicle := &domain.Vehicle{
		ID:          uuid.New().String(),
		Company:     req.Company,
		Type:        req.Type,
		Lat:         req.Lat,
		Lng:         req.Lng,
		Battery:     battery,
		PricePerMin: req.PricePerMin,
		Status:      domain.VehicleStatusAvailable,
		Canton:      location.Canton,
		Distrito:    location.Distrito,
	}

	if err := s.vehicleRepo.Create(ctx, vehicle); err != nil {
		return nil, err
	}

	return vehicle, nil
}

// Get retrieves a vehicle by ID.
func (s *VehicleService) Get(ctx context.Context, id string) (*domain.Vehicle, error) {
	return s.vehicleRepo.GetByID(ctx, id)
}

// GetAvailable retrieves all available vehicles.
func (s *VehicleService) GetAvailable(ctx context.Context) ([]*domain.Vehicle, error) {
	return s.vehicleRepo.GetAvailable(ctx)
}

// NearbyFilters narrows a nearby search.
type NearbyFilters struct {
	Type    domain.VehicleType
	Company domain.VehicleCompany
}

// SearchNearby returns available vehicles inside a bounding box derived from
// radiusKm, with optional type/company filters applied in memory. Corners of
// the box over-include slightly relative to a true circle.
func (s *VehicleService) SearchNearby(ctx context.Context, lat, lng, radiusKm float64, filters NearbyFilters) ([]*domain.Vehicle, error) {
	if radiusKm <= 0 {
		radiusKm = 1
	}

	delta := radiusKm / kmPerDegree

	vehicles, err := s.vehicleRepo.FindInBounds(ctx, lat-delta, lat+delta, lng-delta, lng+delta)
	if err != nil {
		return nil, err
	}

	filtered := vehicles[:0]
	for _, v := range vehicles {
		if filters.Type != "" && v.Type != filters.Type {
			continue
		}
		if filters.Company != "" && v.Company != filters.Company {
			continue
		}
		filtered = append(filtered, v)
	}

	return filtered, nil
}

// Reserve transitions a vehicle from available to in_use. The transition is
// conditioned on the current status at write time, so of two concurrent
// reservations exactly one succeeds.
func (s *VehicleService) Reserve(ctx context.Context, id string) (*domain.Vehicle, error) {
	ok, err := s.vehicleRepo.UpdateStatusFrom(ctx, id, domain.VehicleStatusAvailable, domain.VehicleStatusInUse)
	if err != nil {
		return nil, err
	}
	if !ok {
		if _, err := s.vehicleRepo.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrVehicleNotAvailable
	}

	return s.vehicleRepo.GetByID(ctx, id)
}

// ReleaseRequest contains the end-of-use state for a vehicle.
type ReleaseRequest struct {
	Battery int
	Lat     float64
	Lng     float64
}

// Release transitions a vehicle from in_use back to available. The status
// flip and the end-of-use location/battery land in one statement.
func (s *VehicleService) Release(ctx context.Context, id string, req ReleaseRequest) (*domain.Vehicle, error) {
	if req.Battery < 0 || req.Battery > 100 {
		return nil, ErrInvalidBattery
	}

	ok, err := s.vehicleRepo.Release(ctx, id, req.Lat, req.Lng, req.Battery)
	if err != nil {
		return nil, err
	}
	if !ok {
		if _, err := s.vehicleRepo.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrVehicleNotInUse
	}

	return s.vehicleRepo.GetByID(ctx, id)
}

// UpdateStatus sets a vehicle's status directly. A vehicle attached to an
// ongoing trip cannot be moved to maintenance.
func (s *VehicleService) UpdateStatus(ctx context.Context, id string, status domain.VehicleStatus) error {
	switch status {
	case domain.VehicleStatusAvailable, domain.VehicleStatusInUse, domain.VehicleStatusMaintenance:
	default:
		return ErrInvalidStatus
	}

	if status == domain.VehicleStatusMaintenance {
		ok, err := s.vehicleRepo.UpdateStatusFrom(ctx, id, domain.VehicleStatusAvailable, domain.VehicleStatusMaintenance)
		if err != nil {
			return err
		}
		if !ok {
			if _, err := s.vehicleRepo.GetByID(ctx, id); err != nil {
				return err
			}
			return ErrVehicleInUse
		}
		return nil
	}

	return s.vehicleRepo.UpdateStatus(ctx, id, status)
}

// UpdateBattery sets a vehicle's battery level.
func (s *VehicleService) UpdateBattery(ctx context.Context, id string, battery int) error {
	if battery < 0 || battery > 100 {
		return ErrInvalidBattery
	}

	return s.vehicleRepo.UpdateBattery(ctx, id, battery)
}

// UpdateLocation sets a vehicle's coordinates.
func (s *VehicleService) UpdateLocation(ctx context.Context, id string, lat, lng float64) error {
	return s.vehicleRepo.UpdateLocation(ctx, id, lat, lng)
}

// Stats returns fleet availability counts, served from cache when fresh.
func (s *VehicleService) Stats(ctx context.Context) (*domain.VehicleStats, error) {
	if s.statsCache != nil {
		if cached, err := s.statsCache.GetVehicleStats(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	available, err := s.vehicleRepo.CountByStatus(ctx, domain.VehicleStatusAvailable)
	if err != nil {
		return nil, err
	}
	inUse, err := s.vehicleRepo.CountByStatus(ctx, domain.VehicleStatusInUse)
	if err != nil {
		return nil, err
	}
	maintenance, err := s.vehicleRepo.CountByStatus(ctx, domain.VehicleStatusMaintenance)
	if err != nil {
		return nil, err
	}
	scooters, err := s.vehicleRepo.CountAvailableByType(ctx, domain.VehicleTypeScooter)
	if err != nil {
		return nil, err
	}
	bikes, err := s.vehicleRepo.CountAvailableByType(ctx, domain.VehicleTypeBike)
	if err != nil {
		return nil, err
	}

	stats := &domain.VehicleStats{
		Available:        available,
		InUse:            inUse,
		Maintenance:      maintenance,
		ScooterAvailable: scooters,
		BikeAvailable:    bikes,
	}

	if s.statsCache != nil {
		_ = s.statsCache.SetVehicleStats(ctx, stats)
	}

	return stats, nil
}
