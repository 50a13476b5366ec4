package tests

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"ecorueda/internal/domain"
	"ecorueda/internal/repository"
	"ecorueda/internal/service"
)

// ──────────────────────────────────────────────
// MOCK USER REPOSITORY
// ──────────────────────────────────────────────

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User

	// Counters for verification
	CreateCallCount int32
	CreditCallCount int32
	DebitCallCount  int32

	// Error injection
	CreateError error
	CreditError error
	DebitError  error
}

// NewMockUserRepository creates a new mock user repository.
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users: make(map[string]*domain.User),
	}
}

// AddUser adds a user to the mock repository.
func (m *MockUserRepository) AddUser(user *domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
}

// GetUser returns a user for test assertions.
func (m *MockUserRepository) GetUser(id string) *domain.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.users[id]
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	copy := *user
	return &copy, nil
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Email == email {
			copy := *u
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, id, name, phone string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.Name = name
	user.Phone = phone
	return nil
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.PasswordHash = passwordHash
	return nil
}

func (m *MockUserRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.LastLogin = at
	return nil
}

func (m *MockUserRepository) Credit(ctx context.Context, id string, amount float64) error {
	atomic.AddInt32(&m.CreditCallCount, 1)
	if m.CreditError != nil {
		return m.CreditError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.Balance += amount
	return nil
}

// Debit mirrors the conditional UPDATE: the check and the subtraction happen
// under one lock, and a short balance reports (false, nil) without writing.
func (m *MockUserRepository) Debit(ctx context.Context, id string, amount float64) (bool, error) {
	atomic.AddInt32(&m.DebitCallCount, 1)
	if m.DebitError != nil {
		return false, m.DebitError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return false, nil
	}
	if user.Balance < amount {
		return false, nil
	}
	user.Balance -= amount
	return true, nil
}

// ──────────────────────────────────────────────
// MOCK VEHICLE REPOSITORY
// ──────────────────────────────────────────────

// MockVehicleRepository is a mock implementation of VehicleRepository.
type MockVehicleRepository struct {
	mu       sync.RWMutex
	vehicles map[string]*domain.Vehicle

	// Counters for verification
	CreateCallCount           int32
	UpdateStatusFromCallCount int32
	UpdateStatusCallCount     int32

	// Error injection
	CreateError       error
	UpdateStatusError error
}

// NewMockVehicleRepository creates a new mock vehicle repository.
func NewMockVehicleRepository() *MockVehicleRepository {
	return &MockVehicleRepository{
		vehicles: make(map[string]*domain.Vehicle),
	}
}

// AddVehicle adds a vehicle to the mock repository.
func (m *MockVehicleRepository) AddVehicle(vehicle *domain.Vehicle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vehicles[vehicle.ID] = vehicle
}

// GetVehicle returns a vehicle for test assertions.
func (m *MockVehicleRepository) GetVehicle(id string) *domain.Vehicle {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.vehicles[id]
}

func (m *MockVehicleRepository) Create(ctx context.Context, vehicle *domain.Vehicle) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vehicles[vehicle.ID] = vehicle
	return nil
}

func (m *MockVehicleRepository) GetByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	vehicle, ok := m.vehicles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *vehicle
	return &copy, nil
}

func (m *MockVehicleRepository) GetAvailable(ctx context.Context) ([]*domain.Vehicle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Vehicle, 0)
	for _, v := range m.vehicles {
		if v.Status == domain.VehicleStatusAvailable {
			copy := *v
			result = append(result, &copy)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *MockVehicleRepository) FindInBounds(ctx context.Context, minLat, maxLat, minLng, maxLng float64) ([]*domain.Vehicle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Vehicle, 0)
	for _, v := range m.vehicles {
		if v.Status != domain.VehicleStatusAvailable {
			continue
		}
		if v.Lat < minLat || v.Lat > maxLat || v.Lng < minLng || v.Lng > maxLng {
			continue
		}
		copy := *v
		result = append(result, &copy)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *MockVehicleRepository) ExistsAt(ctx context.Context, lat, lng float64) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, v := range m.vehicles {
		if v.Lat == lat && v.Lng == lng {
			return true, nil
		}
	}
	return false, nil
}

// UpdateStatusFrom mirrors the conditional UPDATE: check and transition are
// one critical section, so concurrent callers serialize on the row.
func (m *MockVehicleRepository) UpdateStatusFrom(ctx context.Context, id string, from, to domain.VehicleStatus) (bool, error) {
	atomic.AddInt32(&m.UpdateStatusFromCallCount, 1)
	if m.UpdateStatusError != nil {
		return false, m.UpdateStatusError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	vehicle, ok := m.vehicles[id]
	if !ok {
		return false, nil
	}
	if vehicle.Status != from {
		return false, nil
	}
	vehicle.Status = to
	vehicle.Reserved = to == domain.VehicleStatusInUse
	return true, nil
}

// Release mirrors the single-statement release: the status flip and the
// location/battery write happen together or not at all.
func (m *MockVehicleRepository) Release(ctx context.Context, id string, lat, lng float64, battery int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	vehicle, ok := m.vehicles[id]
	if !ok || vehicle.Status != domain.VehicleStatusInUse {
		return false, nil
	}
	vehicle.Status = domain.VehicleStatusAvailable
	vehicle.Reserved = false
	vehicle.Lat = lat
	vehicle.Lng = lng
	vehicle.Battery = battery
	return true, nil
}

func (m *MockVehicleRepository) UpdateStatus(ctx context.Context, id string, status domain.VehicleStatus) error {
	atomic.AddInt32(&m.UpdateStatusCallCount, 1)
	if m.UpdateStatusError != nil {
		return m.UpdateStatusError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	vehicle, ok := m.vehicles[id]
	if !ok {
		return repository.ErrNotFound
	}
	vehicle.Status = status
	vehicle.Reserved = status == domain.VehicleStatusInUse
	return nil
}

func (m *MockVehicleRepository) UpdateBattery(ctx context.Context, id string, battery int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	vehicle, ok := m.vehicles[id]
	if !ok {
		return repository.ErrNotFound
	}
	vehicle.Battery = battery
	return nil
}

func (m *MockVehicleRepository) UpdateLocation(ctx context.Context, id string, lat, lng float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	vehicle, ok := m.vehicles[id]
	if !ok {
		return repository.ErrNotFound
	}
	vehicle.Lat = lat
	vehicle.Lng = lng
	return nil
}

func (m *MockVehicleRepository) CountByStatus(ctx context.Context, status domain.VehicleStatus) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, v := range m.vehicles {
		if v.Status == status {
			count++
		}
	}
	return count, nil
}

func (m *MockVehicleRepository) CountAvailableByType(ctx context.Context, vehicleType domain.VehicleType) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, v := range m.vehicles {
		if v.Status == domain.VehicleStatusAvailable && v.Type == vehicleType {
			count++
		}
	}
	return count, nil
}

// ──────────────────────────────────────────────
// MOCK TRIP REPOSITORY
// ──────────────────────────────────────────────

// MockTripRepository is a mock implementation of TripRepository.
type MockTripRepository struct {
	mu    sync.RWMutex
	trips map[string]*domain.Trip

	// Counters for verification
	CreateCallCount int32
	FinishCallCount int32
	CancelCallCount int32

	// Error injection
	CreateError error
	FinishError error
}

// NewMockTripRepository creates a new mock trip repository.
func NewMockTripRepository() *MockTripRepository {
	return &MockTripRepository{
		trips: make(map[string]*domain.Trip),
	}
}

// AddTrip adds a trip to the mock repository.
func (m *MockTripRepository) AddTrip(trip *domain.Trip) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trips[trip.ID] = trip
}

// GetTrip returns a trip for test assertions.
func (m *MockTripRepository) GetTrip(id string) *domain.Trip {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.trips[id]
}

// CountTrips returns the number of stored trips.
func (m *MockTripRepository) CountTrips() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.trips)
}

// CreateIfNoneOngoing mirrors the conditional INSERT: existence check and
// insert are one critical section.
func (m *MockTripRepository) CreateIfNoneOngoing(ctx context.Context, trip *domain.Trip) (bool, error) {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return false, m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.trips {
		if t.UserID == trip.UserID && t.Status == domain.TripStatusOngoing {
			return false, nil
		}
	}
	m.trips[trip.ID] = trip
	return true, nil
}

func (m *MockTripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	trip, ok := m.trips[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *trip
	return &copy, nil
}

func (m *MockTripRepository) GetActiveByUserID(ctx context.Context, userID string) (*domain.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.trips {
		if t.UserID == userID && t.Status == domain.TripStatusOngoing {
			copy := *t
			return &copy, nil
		}
	}
	return nil, nil
}

// Finish mirrors the guarded UPDATE: a trip that is no longer ongoing cannot
// be completed again.
func (m *MockTripRepository) Finish(ctx context.Context, trip *domain.Trip) error {
	atomic.AddInt32(&m.FinishCallCount, 1)
	if m.FinishError != nil {
		return m.FinishError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.trips[trip.ID]
	if !ok || stored.Status != domain.TripStatusOngoing {
		return repository.ErrNotFound
	}
	*stored = *trip
	return nil
}

// Cancel mirrors the guarded UPDATE: only an ongoing trip can be cancelled.
func (m *MockTripRepository) Cancel(ctx context.Context, id string) error {
	atomic.AddInt32(&m.CancelCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	trip, ok := m.trips[id]
	if !ok || trip.Status != domain.TripStatusOngoing {
		return repository.ErrNotFound
	}
	trip.Status = domain.TripStatusCancelled
	return nil
}

func (m *MockTripRepository) GetHistoryByUserID(ctx context.Context, userID string, limit, offset int) ([]*domain.Trip, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	completed := make([]*domain.Trip, 0)
	for _, t := range m.trips {
		if t.UserID == userID && t.Status == domain.TripStatusCompleted {
			copy := *t
			completed = append(completed, &copy)
		}
	}
	sort.Slice(completed, func(i, j int) bool {
		return completed[i].EndTime.After(completed[j].EndTime)
	})
	total := len(completed)
	if offset >= total {
		return []*domain.Trip{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return completed[offset:end], total, nil
}

func (m *MockTripRepository) GetStatsByUserID(ctx context.Context, userID string) (*domain.TripStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	stats := &domain.TripStats{}
	for _, t := range m.trips {
		if t.UserID != userID {
			continue
		}
		stats.TotalTrips++
		switch t.Status {
		case domain.TripStatusCompleted:
			stats.CompletedTrips++
			stats.TotalDistance += t.Distance
			stats.TotalMinutes += t.DurationMinutes
			stats.TotalSpent += t.Price
		case domain.TripStatusCancelled:
			stats.CancelledTrips++
		}
	}
	return stats, nil
}

// ──────────────────────────────────────────────
// MOCK PAYMENT METHOD REPOSITORY
// ──────────────────────────────────────────────

// MockPaymentMethodRepository is a mock implementation of PaymentMethodRepository.
type MockPaymentMethodRepository struct {
	mu      sync.RWMutex
	methods map[string]*domain.PaymentMethod
	seq     int

	// Counters for verification
	CreateCallCount     int32
	SetDefaultCallCount int32
	DeactivateCallCount int32

	// Error injection
	CreateError     error
	SetDefaultError error
}

// NewMockPaymentMethodRepository creates a new mock payment method repository.
func NewMockPaymentMethodRepository() *MockPaymentMethodRepository {
	return &MockPaymentMethodRepository{
		methods: make(map[string]*domain.PaymentMethod),
	}
}

// AddMethod adds a payment method to the mock repository.
func (m *MockPaymentMethodRepository) AddMethod(method *domain.PaymentMethod) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	if method.CreatedAt.IsZero() {
		method.CreatedAt = time.Unix(int64(m.seq), 0)
	}
	m.methods[method.ID] = method
}

// GetMethod returns a payment method for test assertions.
func (m *MockPaymentMethodRepository) GetMethod(id string) *domain.PaymentMethod {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.methods[id]
}

func (m *MockPaymentMethodRepository) Create(ctx context.Context, method *domain.PaymentMethod) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	if method.CreatedAt.IsZero() {
		method.CreatedAt = time.Unix(int64(m.seq), 0)
	}
	m.methods[method.ID] = method
	return nil
}

func (m *MockPaymentMethodRepository) GetByID(ctx context.Context, id string) (*domain.PaymentMethod, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	method, ok := m.methods[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *method
	return &copy, nil
}

func (m *MockPaymentMethodRepository) GetByUserID(ctx context.Context, userID string) ([]*domain.PaymentMethod, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.PaymentMethod, 0)
	for _, pm := range m.methods {
		if pm.UserID == userID {
			copy := *pm
			result = append(result, &copy)
		}
	}
	return result, nil
}

// GetActiveByUserID orders default first, then newest first, matching the
// SQL ordering.
func (m *MockPaymentMethodRepository) GetActiveByUserID(ctx context.Context, userID string) ([]*domain.PaymentMethod, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.PaymentMethod, 0)
	for _, pm := range m.methods {
		if pm.UserID == userID && pm.IsActive {
			copy := *pm
			result = append(result, &copy)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].IsDefault != result[j].IsDefault {
			return result[i].IsDefault
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (m *MockPaymentMethodRepository) ExistsCard(ctx context.Context, userID, cardLast4, provider string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, pm := range m.methods {
		if pm.UserID == userID && pm.CardLast4 == cardLast4 && pm.Provider == provider && pm.IsActive {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockPaymentMethodRepository) ClearDefault(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, pm := range m.methods {
		if pm.UserID == userID {
			pm.IsDefault = false
		}
	}
	return nil
}

func (m *MockPaymentMethodRepository) SetDefault(ctx context.Context, id string) error {
	atomic.AddInt32(&m.SetDefaultCallCount, 1)
	if m.SetDefaultError != nil {
		return m.SetDefaultError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	method, ok := m.methods[id]
	if !ok {
		return repository.ErrNotFound
	}
	method.IsDefault = true
	return nil
}

func (m *MockPaymentMethodRepository) Deactivate(ctx context.Context, id string) error {
	atomic.AddInt32(&m.DeactivateCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	method, ok := m.methods[id]
	if !ok {
		return repository.ErrNotFound
	}
	method.IsActive = false
	method.IsDefault = false
	return nil
}

// ──────────────────────────────────────────────
// MOCK TX RUNNER
// ──────────────────────────────────────────────

// MockTxRunner runs the transactional closure against the supplied mock
// repositories. There is no rollback; tests asserting the no-write-on-error
// property rely on the conditional repo operations refusing to write.
type MockTxRunner struct {
	Repos repository.TxRepos

	// Counter for verification
	RunCallCount int32

	// Error injection, returned before fn runs
	RunError error
}

// NewMockTxRunner creates a TxRunner backed by the given repositories.
func NewMockTxRunner(users *MockUserRepository, vehicles *MockVehicleRepository, trips *MockTripRepository, payments *MockPaymentMethodRepository) *MockTxRunner {
	return &MockTxRunner{
		Repos: repository.TxRepos{
			Users:    users,
			Vehicles: vehicles,
			Trips:    trips,
			Payments: payments,
		},
	}
}

func (m *MockTxRunner) RunInTx(ctx context.Context, fn func(r repository.TxRepos) error) error {
	atomic.AddInt32(&m.RunCallCount, 1)
	if m.RunError != nil {
		return m.RunError
	}
	return fn(m.Repos)
}

// ──────────────────────────────────────────────
// MOCK GEOCODER
// ──────────────────────────────────────────────

// MockGeocoder returns a fixed Location.
type MockGeocoder struct {
	Result service.Location

	// Counter for verification
	LookupCallCount int32
}

func (m *MockGeocoder) ReverseLookup(ctx context.Context, lat, lng float64) service.Location {
	atomic.AddInt32(&m.LookupCallCount, 1)
	return m.Result
}
