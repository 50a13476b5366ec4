package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"ecorueda/internal/domain"
	"ecorueda/internal/repository"
)

// TripRepository is a PostgreSQL implementation of repository.TripRepository.
type TripRepository struct {
	q Querier
}

// NewTripRepository creates a new PostgreSQL trip repository.
func NewTripRepository(db *sql.DB) *TripRepository {
	return &TripRepository{q: db}
}

// NewTripRepositoryWithTx creates a trip repository using a transaction.
func NewTripRepositoryWithTx(tx *sql.Tx) *TripRepository {
	return &TripRepository{q: tx}
}

const tripColumns = `id, user_id, vehicle_id, status, start_time, end_time, start_lat, start_lng, end_lat, end_lng, start_address, end_address, duration_minutes, distance, price, created_at`

// CreateIfNoneOngoing inserts the trip only if the user has no ongoing trip.
// The NOT EXISTS guard handles the common case, but under READ COMMITTED two
// concurrent inserts can both pass it; the trips_one_ongoing_per_user partial
// unique index (user_id WHERE status = 'ongoing') is what actually serializes
// them, and the losing insert's unique violation reports as not created.
func (r *TripRepository) CreateIfNoneOngoing(ctx context.Context, trip *domain.Trip) (bool, error) {
	query := `
		INSERT INTO trips (id, user_id, vehicle_id, status, start_time, start_lat, start_lng, start_address, created_at)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8, NOW()
		WHERE NOT EXISTS (
			SELECT 1 FROM trips WHERE user_id = $2 AND status = $9
		)
	`

	var vehicleID sql.NullString
	if trip.VehicleID != "" {
		vehicleID = sql.NullString{String: trip.VehicleID, Valid: true}
	}

	var startAddress sql.NullString
	if trip.StartAddress != "" {
		startAddress = sql.NullString{String: trip.StartAddress, Valid: true}
	}

	result, err := r.q.ExecContext(ctx, query,
		trip.ID,
		trip.UserID,
		vehicleID,
		trip.Status,
		trip.StartTime,
		trip.StartLat,
		trip.StartLng,
		startAddress,
		domain.TripStatusOngoing,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected == 1, nil
}

// GetByID retrieves a trip by ID.
func (r *TripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE id = $1`

	trip, err := scanTrip(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return trip, nil
}

// GetActiveByUserID retrieves the user's ongoing trip.
// Returns nil if no ongoing trip exists.
func (r *TripRepository) GetActiveByUserID(ctx context.Context, userID string) (*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE user_id = $1 AND status = $2 LIMIT 1`

	trip, err := scanTrip(r.q.QueryRowContext(ctx, query, userID, domain.TripStatusOngoing))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return trip, nil
}

// Finish marks the trip completed with its end fields and price. The status
// guard in the WHERE clause means a trip that already completed or cancelled
// cannot be completed again, so a retried finish of the same trip touches
// zero rows instead of double-charging.
func (r *TripRepository) Finish(ctx context.Context, trip *domain.Trip) error {
	query := `
		UPDATE trips
		SET status = $1, end_time = $2, end_lat = $3, end_lng = $4, end_address = $5,
		    duration_minutes = $6, distance = $7, price = $8
		WHERE id = $9 AND status = $10
	`

	var endAddress sql.NullString
	if trip.EndAddress != "" {
		endAddress = sql.NullString{String: trip.EndAddress, Valid: true}
	}

	result, err := r.q.ExecContext(ctx, query,
		domain.TripStatusCompleted,
		trip.EndTime,
		trip.EndLat,
		trip.EndLng,
		endAddress,
		trip.DurationMinutes,
		trip.Distance,
		trip.Price,
		trip.ID,
		domain.TripStatusOngoing,
	)
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

// Cancel marks the trip cancelled. Only an ongoing trip can be cancelled, so
// a cancel racing a finish cannot flip a completed trip to cancelled.
func (r *TripRepository) Cancel(ctx context.Context, id string) error {
	query := `UPDATE trips SET status = $1, end_time = NOW() WHERE id = $2 AND status = $3`

	result, err := r.q.ExecContext(ctx, query, domain.TripStatusCancelled, id, domain.TripStatusOngoing)
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

// GetHistoryByUserID retrieves a page of the user's completed trips.
func (r *TripRepository) GetHistoryByUserID(ctx context.Context, userID string, limit, offset int) ([]*domain.Trip, int, error) {
	query := `
		SELECT ` + tripColumns + `
		FROM trips
		WHERE user_id = $1 AND status = $2
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`

	rows, err := r.q.QueryContext(ctx, query, userID, domain.TripStatusCompleted, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var trips []*domain.Trip
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			return nil, 0, err
		}
		trips = append(trips, trip)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	countQuery := `SELECT COUNT(*) FROM trips WHERE user_id = $1 AND status = $2`

	var total int
	if err := r.q.QueryRowContext(ctx, countQuery, userID, domain.TripStatusCompleted).Scan(&total); err != nil {
		return nil, 0, err
	}

	return trips, total, nil
}

// GetStatsByUserID aggregates trip counts, distance, minutes and spend in a
// single query.
func (r *TripRepository) GetStatsByUserID(ctx context.Context, userID string) (*domain.TripStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = $2),
			COUNT(*) FILTER (WHERE status = $3),
			COALESCE(SUM(distance) FILTER (WHERE status = $2), 0),
			COALESCE(SUM(duration_minutes) FILTER (WHERE status = $2), 0),
			COALESCE(SUM(price) FILTER (WHERE status = $2), 0)
		FROM trips
		WHERE user_id = $1
	`

	var stats domain.TripStats
	err := r.q.QueryRowContext(ctx, query, userID, domain.TripStatusCompleted, domain.TripStatusCancelled).Scan(
		&stats.TotalTrips,
		&stats.CompletedTrips,
		&stats.CancelledTrips,
		&stats.TotalDistance,
		&stats.TotalMinutes,
		&stats.TotalSpent,
	)
	if err != nil {
		return nil, err
	}

	return &stats, nil
}

// isUniqueViolation reports whether err is a Postgres unique_violation.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func scanTrip(s scanner) (*domain.Trip, error) {
	var trip domain.Trip
	var vehicleID, startAddress, endAddress sql.NullString
	var endTime sql.NullTime
	var endLat, endLng, durationMinutes, distance, price sql.NullFloat64

	err := s.Scan(
		&trip.ID,
		&trip.UserID,
		&vehicleID,
		&trip.Status,
		&trip.StartTime,
		&endTime,
		&trip.StartLat,
		&trip.StartLng,
		&endLat,
		&endLng,
		&startAddress,
		&endAddress,
		&durationMinutes,
		&distance,
		&price,
		&trip.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if vehicleID.Valid {
		trip.VehicleID = vehicleID.String
	}
	if endTime.Valid {
		trip.EndTime = endTime.Time
	}
	if endLat.Valid {
		trip.EndLat = endLat.Float64
	}
	if endLng.Valid {
		trip.EndLng = endLng.Float64
	}
	if startAddress.Valid {
		trip.StartAddress = startAddress.String
	}
	if endAddress.Valid {
		trip.EndAddress = endAddress.String
	}
	if durationMinutes.Valid {
		trip.DurationMinutes = durationMinutes.Float64
	}
	if distance.Valid {
		trip.Distance = distance.Float64
	}
	if price.Valid {
		trip.Price = price.Float64
	}

	return &trip, nil
}

// Ensure TripRepository implements repository.TripRepository.
var _ repository.TripRepository = (*TripRepository)(nil)
