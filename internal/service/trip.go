package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"ecorueda/internal/domain"
	"ecorueda/internal/repository"
)

// TripService coordinates the trip state machine. Finish and cancel are the
// only operations that span the wallet, trip and vehicle tables, and they run
// inside a single transaction.
type TripService struct {
	tx          repository.TxRunner
	tripRepo    repository.TripRepository
	vehicleRepo repository.VehicleRepository
}

// NewTripService creates a new TripService.
func NewTripService(
	tx repository.TxRunner,
	tripRepo repository.TripRepository,
	vehicleRepo repository.VehicleRepository,
) *TripService {
	return &TripService{
		tx:          tx,
		tripRepo:    tripRepo,
		vehicleRepo: vehicleRepo,
	}
}

// StartTripRequest contains the parameters for starting a trip.
type StartTripRequest struct {
	VehicleID    string
	StartLat     float64
	StartLng     float64
	StartAddress string
}

// StartTrip creates an ongoing trip for the user. Vehicle reservation is a
// separate explicit call; starting a trip does not flip the vehicle to in_use.
// The ongoing-trip check and the insert are one conditional statement, so two
// concurrent starts cannot both succeed.
func (s *TripService) StartTrip(ctx context.Context, userID string, req StartTripRequest) (*domain.Trip, error) {
	if req.VehicleID != "" {
		if _, err := s.vehicleRepo.GetByID(ctx, req.VehicleID); err != nil {
			return nil, err
		}
	}

	trip := &domain.Trip{
		ID:           uuid.New().String(),
		UserID:       userID,
		VehicleID:    req.VehicleID,
		Status:       domain.TripStatusOngoing,
		StartTime:    time.Now(),
		StartLat:     req.StartLat,
		StartLng:     req.StartLng,
		StartAddress: req.StartAddress,
	}

	created, err := s.tripRepo.CreateIfNoneOngoing(ctx, trip)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, ErrActiveTripExists
	}

	return trip, nil
}

// FinishTripRequest contains the end-of-trip data supplied by the client.
type FinishTripRequest struct {
	EndLat          float64
	EndLng          float64
	EndAddress      string
	DurationMinutes float64
	Distance        float64
}

// FinishTrip completes the user's ongoing trip. The price is the vehicle's
// per-minute rate times the reported duration (zero without a vehicle). The
// wallet debit, the trip completion and the vehicle release commit as one
// transaction; on insufficient funds nothing is written. The vehicle's
// battery and location are not touched here - only the explicit release
// endpoint carries them.
func (s *TripService) FinishTrip(ctx context.Context, userID string, req FinishTripRequest) (*domain.Trip, error) {
	if req.DurationMinutes < 0 {
		return nil, ErrInvalidDuration
	}

	var finished *domain.Trip

	err := s.tx.RunInTx(ctx, func(r repository.TxRepos) error {
		trip, err := r.Trips.GetActiveByUserID(ctx, userID)
		if err != nil {
			return err
		}
		if trip == nil {
			return ErrNoActiveTrip
		}

		price := 0.0
		if trip.VehicleID != "" {
			vehicle, err := r.Vehicles.GetByID(ctx, trip.VehicleID)
			if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return err
			}
			if vehicle != nil {
				price = vehicle.PricePerMin * req.DurationMinutes
			}
		}

		if price > 0 {
			if err := debit(ctx, r.Users, userID, price); err != nil {
				return err
			}
		}

		trip.Status = domain.TripStatusCompleted
		trip.EndTime = time.Now()
		trip.EndLat = req.EndLat
		trip.EndLng = req.EndLng
		trip.EndAddress = req.EndAddress
		trip.DurationMinutes = req.DurationMinutes
		trip.Distance = req.Distance
		trip.Price = price

		// Finish touches zero rows when the trip is no longer ongoing,
		// which is how a racing second finish loses.
		if err := r.Trips.Finish(ctx, trip); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrNoActiveTrip
			}
			return err
		}

		if trip.VehicleID != "" {
			// The registry may not reflect in_use when the client skipped the
			// reserve call; release unconditionally.
			if err := r.Vehicles.UpdateStatus(ctx, trip.VehicleID, domain.VehicleStatusAvailable); err != nil &&
				!errors.Is(err, repository.ErrNotFound) {
				return err
			}
		}

		finished = trip
		return nil
	})
	if err != nil {
		return nil, err
	}

	return finished, nil
}

// CancelTrip cancels the user's ongoing trip and releases the vehicle if one
// is attached. The wallet is untouched.
func (s *TripService) CancelTrip(ctx context.Context, userID string) (*domain.Trip, error) {
	var cancelled *domain.Trip

	err := s.tx.RunInTx(ctx, func(r repository.TxRepos) error {
		trip, err := r.Trips.GetActiveByUserID(ctx, userID)
		if err != nil {
			return err
		}
		if trip == nil {
			return ErrNoActiveTrip
		}

		if trip.VehicleID != "" {
			if err := r.Vehicles.UpdateStatus(ctx, trip.VehicleID, domain.VehicleStatusAvailable); err != nil &&
				!errors.Is(err, repository.ErrNotFound) {
				return err
			}
		}

		if err := r.Trips.Cancel(ctx, trip.ID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrNoActiveTrip
			}
			return err
		}

		trip.Status = domain.TripStatusCancelled
		cancelled = trip
		return nil
	})
	if err != nil {
		return nil, err
	}

	return cancelled, nil
}

// ActiveTrip retrieves the user's ongoing trip, or nil when there is none.
func (s *TripService) ActiveTrip(ctx context.Context, userID string) (*domain.Trip, error) {
	return s.tripRepo.GetActiveByUserID(ctx, userID)
}

// GetTrip retrieves a trip, verifying it belongs to the user.
func (s *TripService) GetTrip(ctx context.Context, tripID, userID string) (*domain.Trip, error) {
	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}

	if trip.UserID != userID {
		return nil, ErrNotTripOwner
	}

	return trip, nil
}

// HistoryPage is one page of a user's completed trips.
type HistoryPage struct {
	Trips []*domain.Trip
	Total int
	Pages int
	Page  int
	Limit int
}

// History retrieves a page of the user's completed trips, newest first.
func (s *TripService) History(ctx context.Context, userID string, page, limit int) (*HistoryPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	trips, total, err := s.tripRepo.GetHistoryByUserID(ctx, userID, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}

	pages := (total + limit - 1) / limit

	return &HistoryPage{
		Trips: trips,
		Total: total,
		Pages: pages,
		Page:  page,
		Limit: limit,
	}, nil
}

// Stats aggregates the user's trip history.
func (s *TripService) Stats(ctx context.Context, userID string) (*domain.TripStats, error) {
	return s.tripRepo.GetStatsByUserID(ctx, userID)
}
