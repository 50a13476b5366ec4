package tests

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ecorueda/internal/domain"
	"ecorueda/internal/repository"
	"ecorueda/internal/service"
)

// ──────────────────────────────────────────────
// TRIP LIFECYCLE
// ──────────────────────────────────────────────

func newTripService(users *MockUserRepository, vehicles *MockVehicleRepository, trips *MockTripRepository) *service.TripService {
	tx := NewMockTxRunner(users, vehicles, trips, NewMockPaymentMethodRepository())
	return service.NewTripService(tx, trips, vehicles)
}

func TestTrip_StartCreatesOngoingTrip(t *testing.T) {
	t.Parallel()

	userRepo := NewMockUserRepository()
	vehicleRepo := NewMockVehicleRepository()
	tripRepo := NewMockTripRepository()

	vehicleRepo.AddVehicle(&domain.Vehicle{
		ID:          "vehicle-1",
		Status:      domain.VehicleStatusAvailable,
		PricePerMin: 0.35,
	})

	svc := newTripService(userRepo, vehicleRepo, tripRepo)

	trip, err := svc.StartTrip(context.Background(), "user-1", service.StartTripRequest{
		VehicleID:    "vehicle-1",
		StartLat:     9.93,
		StartLng:     -84.08,
		StartAddress: "Avenida Central",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if trip.Status != domain.TripStatusOngoing {
		t.Errorf("expected status %s, got %s", domain.TripStatusOngoing, trip.Status)
	}
	if trip.UserID != "user-1" {
		t.Errorf("expected user-1, got %s", trip.UserID)
	}
	if trip.ID == "" {
		t.Error("expected a generated trip ID")
	}

	// Starting a trip must not touch the vehicle; reservation is explicit.
	if got := vehicleRepo.GetVehicle("vehicle-1").Status; got != domain.VehicleStatusAvailable {
		t.Errorf("expected vehicle to stay %s, got %s", domain.VehicleStatusAvailable, got)
	}
}

func TestTrip_StartWithoutVehicle(t *testing.T) {
	t.Parallel()

	userRepo := NewMockUserRepository()
	vehicleRepo := NewMockVehicleRepository()
	tripRepo := NewMockTripRepository()
	svc := newTripService(userRepo, vehicleRepo, tripRepo)

	trip, err := svc.StartTrip(context.Background(), "user-1", service.StartTripRequest{
		StartLat: 9.93,
		StartLng: -84.08,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if trip.VehicleID != "" {
		t.Errorf("expected empty vehicle ID, got %s", trip.VehicleID)
	}
}

func TestTrip_StartRejectsUnknownVehicle(t *testing.T) {
	t.Parallel()

	svc := newTripService(NewMockUserRepository(), NewMockVehicleRepository(), NewMockTripRepository())

	_, err := svc.StartTrip(context.Background(), "user-1", service.StartTripRequest{
		VehicleID: "nope",
	})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestTrip_StartRejectsSecondOngoingTrip(t *testing.T) {
	t.Parallel()

	tripRepo := NewMockTripRepository()
	tripRepo.AddTrip(&domain.Trip{
		ID:     "trip-1",
		UserID: "user-1",
		Status: domain.TripStatusOngoing,
	})

	svc := newTripService(NewMockUserRepository(), NewMockVehicleRepository(), tripRepo)

	_, err := svc.StartTrip(context.Background(), "user-1", service.StartTripRequest{})
	if !errors.Is(err, service.ErrActiveTripExists) {
		t.Errorf("expected ErrActiveTripExists, got %v", err)
	}
	if tripRepo.CountTrips() != 1 {
		t.Errorf("expected 1 trip, got %d", tripRepo.CountTrips())
	}
}

func TestTrip_ConcurrentStartsOnlyOneWins(t *testing.T) {
	t.Parallel()

	tripRepo := NewMockTripRepository()
	svc := newTripService(NewMockUserRepository(), NewMockVehicleRepository(), tripRepo)

	const attempts = 20
	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.StartTrip(context.Background(), "user-1", service.StartTripRequest{})
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
		} else if !errors.Is(err, service.ErrActiveTripExists) {
			t.Errorf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Errorf("expected exactly 1 successful start, got %d", wins)
	}
	if tripRepo.CountTrips() != 1 {
		t.Errorf("expected 1 stored trip, got %d", tripRepo.CountTrips())
	}
}

func TestTrip_FinishDebitsWalletAndReleasesVehicle(t *testing.T) {
	t.Parallel()

	userRepo := NewMockUserRepository()
	vehicleRepo := NewMockVehicleRepository()
	tripRepo := NewMockTripRepository()

	userRepo.AddUser(&domain.User{ID: "user-1", Balance: 100})
	vehicleRepo.AddVehicle(&domain.Vehicle{
		ID:          "vehicle-1",
		Status:      domain.VehicleStatusInUse,
		PricePerMin: 0.35,
	})
	tripRepo.AddTrip(&domain.Trip{
		ID:        "trip-1",
		UserID:    "user-1",
		VehicleID: "vehicle-1",
		Status:    domain.TripStatusOngoing,
		StartTime: time.Now().Add(-100 * time.Minute),
	})

	svc := newTripService(userRepo, vehicleRepo, tripRepo)

	trip, err := svc.FinishTrip(context.Background(), "user-1", service.FinishTripRequest{
		EndLat:          9.94,
		EndLng:          -84.07,
		DurationMinutes: 100,
		Distance:        12.5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 0.35/min * 100 min = 35; balance 100 - 35 = 65.
	if trip.Price != 35 {
		t.Errorf("expected price 35, got %v", trip.Price)
	}
	if got := userRepo.GetUser("user-1").Balance; got != 65 {
		t.Errorf("expected balance 65, got %v", got)
	}
	if trip.Status != domain.TripStatusCompleted {
		t.Errorf("expected status %s, got %s", domain.TripStatusCompleted, trip.Status)
	}
	if got := vehicleRepo.GetVehicle("vehicle-1").Status; got != domain.VehicleStatusAvailable {
		t.Errorf("expected vehicle released to %s, got %s", domain.VehicleStatusAvailable, got)
	}
	if stored := tripRepo.GetTrip("trip-1"); stored.Status != domain.TripStatusCompleted {
		t.Errorf("expected stored trip completed, got %s", stored.Status)
	}
}

func TestTrip_FinishWithoutVehicleIsFree(t *testing.T) {
	t.Parallel()

	userRepo := NewMockUserRepository()
	tripRepo := NewMockTripRepository()

	userRepo.AddUser(&domain.User{ID: "user-1", Balance: 10})
	tripRepo.AddTrip(&domain.Trip{
		ID:     "trip-1",
		UserID: "user-1",
		Status: domain.TripStatusOngoing,
	})

	svc := newTripService(userRepo, NewMockVehicleRepository(), tripRepo)

	trip, err := svc.FinishTrip(context.Background(), "user-1", service.FinishTripRequest{
		DurationMinutes: 42,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if trip.Price != 0 {
		t.Errorf("expected price 0, got %v", trip.Price)
	}
	if got := userRepo.GetUser("user-1").Balance; got != 10 {
		t.Errorf("expected balance untouched at 10, got %v", got)
	}
	if userRepo.DebitCallCount != 0 {
		t.Errorf("expected no debit call, got %d", userRepo.DebitCallCount)
	}
}

func TestTrip_FinishInsufficientFundsWritesNothing(t *testing.T) {
	t.Parallel()

	userRepo := NewMockUserRepository()
	vehicleRepo := NewMockVehicleRepository()
	tripRepo := NewMockTripRepository()

	userRepo.AddUser(&domain.User{ID: "user-1", Balance: 5})
	vehicleRepo.AddVehicle(&domain.Vehicle{
		ID:          "vehicle-1",
		Status:      domain.VehicleStatusInUse,
		PricePerMin: 1.0,
	})
	tripRepo.AddTrip(&domain.Trip{
		ID:        "trip-1",
		UserID:    "user-1",
		VehicleID: "vehicle-1",
		Status:    domain.TripStatusOngoing,
	})

	svc := newTripService(userRepo, vehicleRepo, tripRepo)

	_, err := svc.FinishTrip(context.Background(), "user-1", service.FinishTripRequest{
		DurationMinutes: 30,
	})
	if !errors.Is(err, service.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	// Nothing moved: balance intact, trip still ongoing, vehicle still in use.
	if got := userRepo.GetUser("user-1").Balance; got != 5 {
		t.Errorf("expected balance 5, got %v", got)
	}
	if got := tripRepo.GetTrip("trip-1").Status; got != domain.TripStatusOngoing {
		t.Errorf("expected trip still %s, got %s", domain.TripStatusOngoing, got)
	}
	if got := vehicleRepo.GetVehicle("vehicle-1").Status; got != domain.VehicleStatusInUse {
		t.Errorf("expected vehicle still %s, got %s", domain.VehicleStatusInUse, got)
	}
	if tripRepo.FinishCallCount != 0 {
		t.Errorf("expected no finish call, got %d", tripRepo.FinishCallCount)
	}
}

func TestTrip_SecondFinishDoesNotChargeTwice(t *testing.T) {
	t.Parallel()

	userRepo := NewMockUserRepository()
	vehicleRepo := NewMockVehicleRepository()
	tripRepo := NewMockTripRepository()

	userRepo.AddUser(&domain.User{ID: "user-1", Balance: 100})
	vehicleRepo.AddVehicle(&domain.Vehicle{
		ID:          "vehicle-1",
		Status:      domain.VehicleStatusInUse,
		PricePerMin: 0.35,
	})
	tripRepo.AddTrip(&domain.Trip{
		ID:        "trip-1",
		UserID:    "user-1",
		VehicleID: "vehicle-1",
		Status:    domain.TripStatusOngoing,
	})

	svc := newTripService(userRepo, vehicleRepo, tripRepo)

	if _, err := svc.FinishTrip(context.Background(), "user-1", service.FinishTripRequest{
		DurationMinutes: 100,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A client retry of the same finish must not settle the trip again.
	_, err := svc.FinishTrip(context.Background(), "user-1", service.FinishTripRequest{
		DurationMinutes: 100,
	})
	if !errors.Is(err, service.ErrNoActiveTrip) {
		t.Fatalf("expected ErrNoActiveTrip, got %v", err)
	}

	if got := userRepo.GetUser("user-1").Balance; got != 65 {
		t.Errorf("expected single charge leaving balance 65, got %v", got)
	}
	if userRepo.DebitCallCount != 1 {
		t.Errorf("expected 1 debit call, got %d", userRepo.DebitCallCount)
	}
	if tripRepo.FinishCallCount != 1 {
		t.Errorf("expected 1 finish write, got %d", tripRepo.FinishCallCount)
	}
}

func TestTrip_ConcurrentFinishesOnlyOneCompletes(t *testing.T) {
	t.Parallel()

	userRepo := NewMockUserRepository()
	tripRepo := NewMockTripRepository()

	userRepo.AddUser(&domain.User{ID: "user-1", Balance: 100})
	tripRepo.AddTrip(&domain.Trip{
		ID:     "trip-1",
		UserID: "user-1",
		Status: domain.TripStatusOngoing,
	})

	svc := newTripService(userRepo, NewMockVehicleRepository(), tripRepo)

	const attempts = 10
	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.FinishTrip(context.Background(), "user-1", service.FinishTripRequest{
				DurationMinutes: 10,
			})
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
		} else if !errors.Is(err, service.ErrNoActiveTrip) {
			t.Errorf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Errorf("expected exactly 1 successful finish, got %d", wins)
	}
	if got := tripRepo.GetTrip("trip-1").Status; got != domain.TripStatusCompleted {
		t.Errorf("expected trip completed, got %s", got)
	}
}

func TestTrip_FinishLosingRaceReportsNoActiveTrip(t *testing.T) {
	t.Parallel()

	tripRepo := NewMockTripRepository()
	tripRepo.AddTrip(&domain.Trip{
		ID:     "trip-1",
		UserID: "user-1",
		Status: domain.TripStatusOngoing,
	})
	// Zero rows from the guarded completion update surfaces as not found.
	tripRepo.FinishError = repository.ErrNotFound

	svc := newTripService(NewMockUserRepository(), NewMockVehicleRepository(), tripRepo)

	_, err := svc.FinishTrip(context.Background(), "user-1", service.FinishTripRequest{})
	if !errors.Is(err, service.ErrNoActiveTrip) {
		t.Errorf("expected ErrNoActiveTrip, got %v", err)
	}
}

func TestTrip_CancelCannotFlipCompletedTrip(t *testing.T) {
	t.Parallel()

	userRepo := NewMockUserRepository()
	tripRepo := NewMockTripRepository()

	userRepo.AddUser(&domain.User{ID: "user-1", Balance: 50})
	tripRepo.AddTrip(&domain.Trip{
		ID:     "trip-1",
		UserID: "user-1",
		Status: domain.TripStatusOngoing,
	})

	svc := newTripService(userRepo, NewMockVehicleRepository(), tripRepo)

	if _, err := svc.FinishTrip(context.Background(), "user-1", service.FinishTripRequest{
		DurationMinutes: 5,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.CancelTrip(context.Background(), "user-1"); !errors.Is(err, service.ErrNoActiveTrip) {
		t.Errorf("expected ErrNoActiveTrip, got %v", err)
	}
	if got := tripRepo.GetTrip("trip-1").Status; got != domain.TripStatusCompleted {
		t.Errorf("expected trip to stay completed, got %s", got)
	}
}

func TestTrip_FinishRejectsNegativeDuration(t *testing.T) {
	t.Parallel()

	svc := newTripService(NewMockUserRepository(), NewMockVehicleRepository(), NewMockTripRepository())

	_, err := svc.FinishTrip(context.Background(), "user-1", service.FinishTripRequest{
		DurationMinutes: -1,
	})
	if !errors.Is(err, service.ErrInvalidDuration) {
		t.Errorf("expected ErrInvalidDuration, got %v", err)
	}
}

func TestTrip_FinishWithoutOngoingTrip(t *testing.T) {
	t.Parallel()

	svc := newTripService(NewMockUserRepository(), NewMockVehicleRepository(), NewMockTripRepository())

	_, err := svc.FinishTrip(context.Background(), "user-1", service.FinishTripRequest{})
	if !errors.Is(err, service.ErrNoActiveTrip) {
		t.Errorf("expected ErrNoActiveTrip, got %v", err)
	}
}

func TestTrip_FinishToleratesVanishedVehicle(t *testing.T) {
	t.Parallel()

	userRepo := NewMockUserRepository()
	tripRepo := NewMockTripRepository()

	userRepo.AddUser(&domain.User{ID: "user-1", Balance: 50})
	tripRepo.AddTrip(&domain.Trip{
		ID:        "trip-1",
		UserID:    "user-1",
		VehicleID: "gone",
		Status:    domain.TripStatusOngoing,
	})

	svc := newTripService(userRepo, NewMockVehicleRepository(), tripRepo)

	trip, err := svc.FinishTrip(context.Background(), "user-1", service.FinishTripRequest{
		DurationMinutes: 15,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if trip.Price != 0 {
		t.Errorf("expected price 0 for missing vehicle, got %v", trip.Price)
	}
	if got := userRepo.GetUser("user-1").Balance; got != 50 {
		t.Errorf("expected balance 50, got %v", got)
	}
}

func TestTrip_CancelReleasesVehicleWithoutCharge(t *testing.T) {
	t.Parallel()

	userRepo := NewMockUserRepository()
	vehicleRepo := NewMockVehicleRepository()
	tripRepo := NewMockTripRepository()

	userRepo.AddUser(&domain.User{ID: "user-1", Balance: 20})
	vehicleRepo.AddVehicle(&domain.Vehicle{
		ID:          "vehicle-1",
		Status:      domain.VehicleStatusInUse,
		PricePerMin: 0.5,
	})
	tripRepo.AddTrip(&domain.Trip{
		ID:        "trip-1",
		UserID:    "user-1",
		VehicleID: "vehicle-1",
		Status:    domain.TripStatusOngoing,
	})

	svc := newTripService(userRepo, vehicleRepo, tripRepo)

	trip, err := svc.CancelTrip(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if trip.Status != domain.TripStatusCancelled {
		t.Errorf("expected status %s, got %s", domain.TripStatusCancelled, trip.Status)
	}
	if got := vehicleRepo.GetVehicle("vehicle-1").Status; got != domain.VehicleStatusAvailable {
		t.Errorf("expected vehicle released, got %s", got)
	}
	if got := userRepo.GetUser("user-1").Balance; got != 20 {
		t.Errorf("expected balance untouched at 20, got %v", got)
	}
	if userRepo.DebitCallCount != 0 {
		t.Errorf("expected no debit call, got %d", userRepo.DebitCallCount)
	}
}

func TestTrip_CancelWithoutOngoingTrip(t *testing.T) {
	t.Parallel()

	svc := newTripService(NewMockUserRepository(), NewMockVehicleRepository(), NewMockTripRepository())

	_, err := svc.CancelTrip(context.Background(), "user-1")
	if !errors.Is(err, service.ErrNoActiveTrip) {
		t.Errorf("expected ErrNoActiveTrip, got %v", err)
	}
}

func TestTrip_ActiveTripNilWhenNone(t *testing.T) {
	t.Parallel()

	svc := newTripService(NewMockUserRepository(), NewMockVehicleRepository(), NewMockTripRepository())

	trip, err := svc.ActiveTrip(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if trip != nil {
		t.Errorf("expected nil trip, got %+v", trip)
	}
}

func TestTrip_GetEnforcesOwnership(t *testing.T) {
	t.Parallel()

	tripRepo := NewMockTripRepository()
	tripRepo.AddTrip(&domain.Trip{
		ID:     "trip-1",
		UserID: "user-1",
		Status: domain.TripStatusCompleted,
	})

	svc := newTripService(NewMockUserRepository(), NewMockVehicleRepository(), tripRepo)

	if _, err := svc.GetTrip(context.Background(), "trip-1", "user-1"); err != nil {
		t.Fatalf("unexpected error for owner: %v", err)
	}

	_, err := svc.GetTrip(context.Background(), "trip-1", "user-2")
	if !errors.Is(err, service.ErrNotTripOwner) {
		t.Errorf("expected ErrNotTripOwner, got %v", err)
	}
}

func TestTrip_HistoryPaginatesCompletedOnly(t *testing.T) {
	t.Parallel()

	tripRepo := NewMockTripRepository()
	base := time.Now()
	for i := 0; i < 12; i++ {
		tripRepo.AddTrip(&domain.Trip{
			ID:      "trip-" + string(rune('a'+i)),
			UserID:  "user-1",
			Status:  domain.TripStatusCompleted,
			EndTime: base.Add(time.Duration(i) * time.Minute),
		})
	}
	tripRepo.AddTrip(&domain.Trip{
		ID:     "trip-ongoing",
		UserID: "user-1",
		Status: domain.TripStatusOngoing,
	})
	tripRepo.AddTrip(&domain.Trip{
		ID:     "trip-cancelled",
		UserID: "user-1",
		Status: domain.TripStatusCancelled,
	})

	svc := newTripService(NewMockUserRepository(), NewMockVehicleRepository(), tripRepo)

	// Zero values fall back to page 1, limit 10.
	page, err := svc.History(context.Background(), "user-1", 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Total != 12 {
		t.Errorf("expected total 12, got %d", page.Total)
	}
	if page.Pages != 2 {
		t.Errorf("expected 2 pages, got %d", page.Pages)
	}
	if len(page.Trips) != 10 {
		t.Errorf("expected 10 trips on page 1, got %d", len(page.Trips))
	}

	second, err := svc.History(context.Background(), "user-1", 2, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(second.Trips) != 2 {
		t.Errorf("expected 2 trips on page 2, got %d", len(second.Trips))
	}
}

func TestTrip_StatsAggregates(t *testing.T) {
	t.Parallel()

	tripRepo := NewMockTripRepository()
	tripRepo.AddTrip(&domain.Trip{
		ID: "t1", UserID: "user-1", Status: domain.TripStatusCompleted,
		Distance: 3, DurationMinutes: 10, Price: 5,
	})
	tripRepo.AddTrip(&domain.Trip{
		ID: "t2", UserID: "user-1", Status: domain.TripStatusCompleted,
		Distance: 2, DurationMinutes: 20, Price: 7,
	})
	tripRepo.AddTrip(&domain.Trip{ID: "t3", UserID: "user-1", Status: domain.TripStatusCancelled})
	tripRepo.AddTrip(&domain.Trip{ID: "t4", UserID: "other", Status: domain.TripStatusCompleted, Price: 99})

	svc := newTripService(NewMockUserRepository(), NewMockVehicleRepository(), tripRepo)

	stats, err := svc.Stats(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TotalTrips != 3 || stats.CompletedTrips != 2 || stats.CancelledTrips != 1 {
		t.Errorf("unexpected counts: %+v", stats)
	}
	if stats.TotalDistance != 5 || stats.TotalMinutes != 30 || stats.TotalSpent != 12 {
		t.Errorf("unexpected totals: %+v", stats)
	}
}
