package postgres

import (
	"context"
	"database/sql"
	"errors"

	"ecorueda/internal/domain"
	"ecorueda/internal/repository"
)

// VehicleRepository is a PostgreSQL implementation of repository.VehicleRepository.
type VehicleRepository struct {
	q Querier
}

// NewVehicleRepository creates a new PostgreSQL vehicle repository.
func NewVehicleRepository(db *sql.DB) *VehicleRepository {
	return &VehicleRepository{q: db}
}

// NewVehicleRepositoryWithTx creates a vehicle repository using a transaction.
func NewVehicleRepositoryWithTx(tx *sql.Tx) *VehicleRepository {
	return &VehicleRepository{q: tx}
}

const vehicleColumns = `id, company, type, lat, lng, battery, price_per_min, status, canton, distrito, reserved, created_at, updated_at`

// Create persists a new vehicle.
func (r *VehicleRepository) Create(ctx context.Context, vehicle *domain.Vehicle) error {
	query := `
		INSERT INTO vehicles (id, company, type, lat, lng, battery, price_per_min, status, canton, distrito, reserved, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
	`

	var canton, distrito sql.NullString
	if vehicle.Canton != "" {
		canton = sql.NullString{String: vehicle.Canton, Valid: true}
	}
	if vehicle.Distrito != "" {
		distrito = sql.NullString{String: vehicle.Distrito, Valid: true}
	}

	_, err := r.q.ExecContext(ctx, query,
		vehicle.ID,
		vehicle.Company,
		vehicle.Type,
		vehicle.Lat,
		vehicle.Lng,
		vehicle.Battery,
		vehicle.PricePerMin,
		vehicle.Status,
		canton,
		distrito,
		vehicle.Reserved,
	)

	return err
}

// GetByID retrieves a vehicle by ID.
func (r *VehicleRepository) GetByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE id = $1`

	vehicle, err := scanVehicle(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return vehicle, nil
}

// GetAvailable retrieves all vehicles in the available state.
func (r *VehicleRepository) GetAvailable(ctx context.Context) ([]*domain.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE status = $1 ORDER BY created_at`

	rows, err := r.q.QueryContext(ctx, query, domain.VehicleStatusAvailable)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanVehicles(rows)
}

// FindInBounds retrieves available vehicles inside a coordinate box.
func (r *VehicleRepository) FindInBounds(ctx context.Context, minLat, maxLat, minLng, maxLng float64) ([]*domain.Vehicle, error) {
	query := `
		SELECT ` + vehicleColumns + `
		FROM vehicles
		WHERE status = $1
		AND lat BETWEEN $2 AND $3
		AND lng BETWEEN $4 AND $5
	`

	rows, err := r.q.QueryContext(ctx, query, domain.VehicleStatusAvailable, minLat, maxLat, minLng, maxLng)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanVehicles(rows)
}

// ExistsAt reports whether a vehicle already sits at the exact coordinates.
func (r *VehicleRepository) ExistsAt(ctx context.Context, lat, lng float64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM vehicles WHERE lat = $1 AND lng = $2)`

	var exists bool
	if err := r.q.QueryRowContext(ctx, query, lat, lng).Scan(&exists); err != nil {
		return false, err
	}

	return exists, nil
}

// UpdateStatusFrom transitions status only if the current status matches from.
// The expected prior status in the WHERE clause is what prevents two
// concurrent reservations from both succeeding.
func (r *VehicleRepository) UpdateStatusFrom(ctx context.Context, id string, from, to domain.VehicleStatus) (bool, error) {
	query := `
		UPDATE vehicles
		SET status = $1, reserved = ($1 = $4), updated_at = NOW()
		WHERE id = $2 AND status = $3
	`

	result, err := r.q.ExecContext(ctx, query, to, id, from, domain.VehicleStatusInUse)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected == 1, nil
}

// Release flips an in-use vehicle to available and records where it ended up
// and how much battery is left, all in one statement.
func (r *VehicleRepository) Release(ctx context.Context, id string, lat, lng float64, battery int) (bool, error) {
	query := `
		UPDATE vehicles
		SET status = $1, reserved = FALSE, lat = $2, lng = $3, battery = $4, updated_at = NOW()
		WHERE id = $5 AND status = $6
	`

	result, err := r.q.ExecContext(ctx, query, domain.VehicleStatusAvailable, lat, lng, battery, id, domain.VehicleStatusInUse)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected == 1, nil
}

// UpdateStatus sets the status unconditionally.
func (r *VehicleRepository) UpdateStatus(ctx context.Context, id string, status domain.VehicleStatus) error {
	query := `UPDATE vehicles SET status = $1, reserved = ($1 = $3), updated_at = NOW() WHERE id = $2`
	return r.execExpectingRow(ctx, query, status, id, domain.VehicleStatusInUse)
}

// UpdateBattery sets the battery level.
func (r *VehicleRepository) UpdateBattery(ctx context.Context, id string, battery int) error {
	query := `UPDATE vehicles SET battery = $1, updated_at = NOW() WHERE id = $2`
	return r.execExpectingRow(ctx, query, battery, id)
}

// UpdateLocation sets the coordinates.
func (r *VehicleRepository) UpdateLocation(ctx context.Context, id string, lat, lng float64) error {
	query := `UPDATE vehicles SET lat = $1, lng = $2, updated_at = NOW() WHERE id = $3`
	return r.execExpectingRow(ctx, query, lat, lng, id)
}

// CountByStatus returns the number of vehicles in the given state.
func (r *VehicleRepository) CountByStatus(ctx context.Context, status domain.VehicleStatus) (int, error) {
	query := `SELECT COUNT(*) FROM vehicles WHERE status = $1`

	var count int
	if err := r.q.QueryRowContext(ctx, query, status).Scan(&count); err != nil {
		return 0, err
	}

	return count, nil
}

// CountAvailableByType returns the number of available vehicles of a type.
func (r *VehicleRepository) CountAvailableByType(ctx context.Context, vehicleType domain.VehicleType) (int, error) {
	query := `SELECT COUNT(*) FROM vehicles WHERE type = $1 AND status = $2`

	var count int
	if err := r.q.QueryRowContext(ctx, query, vehicleType, domain.VehicleStatusAvailable).Scan(&count); err != nil {
		return 0, err
	}

	return count, nil
}

func (r *VehicleRepository) execExpectingRow(ctx context.Context, query string, args ...any) error {
	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanVehicle(s scanner) (*domain.Vehicle, error) {
	var vehicle domain.Vehicle
	var canton, distrito sql.NullString

	err := s.Scan(
		&vehicle.ID,
		&vehicle.Company,
		&vehicle.Type,
		&vehicle.Lat,
		&vehicle.Lng,
		&vehicle.Battery,
		&vehicle.PricePerMin,
		&vehicle.Status,
		&canton,
		&distrito,
		&vehicle.Reserved,
		&vehicle.CreatedAt,
		&vehicle.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if canton.Valid {
		vehicle.Canton = canton.String
	}
	if distrito.Valid {
		vehicle.Distrito = distrito.String
	}

	return &vehicle, nil
}

func scanVehicles(rows *sql.Rows) ([]*domain.Vehicle, error) {
	var vehicles []*domain.Vehicle
	for rows.Next() {
		vehicle, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, vehicle)
	}

	return vehicles, rows.Err()
}

// Ensure VehicleRepository implements repository.VehicleRepository.
var _ repository.VehicleRepository = (*VehicleRepository)(nil)
