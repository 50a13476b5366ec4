package postgres

import (
	"context"
	"database/sql"
	"errors"

	"ecorueda/internal/domain"
	"ecorueda/internal/repository"
)

// PaymentMethodRepository is a PostgreSQL implementation of
// repository.PaymentMethodRepository.
type PaymentMethodRepository struct {
	q Querier
}

// NewPaymentMethodRepository creates a new PostgreSQL payment method repository.
func NewPaymentMethodRepository(db *sql.DB) *PaymentMethodRepository {
	return &PaymentMethodRepository{q: db}
}

// NewPaymentMethodRepositoryWithTx creates a payment method repository using a
// transaction.
func NewPaymentMethodRepositoryWithTx(tx *sql.Tx) *PaymentMethodRepository {
	return &PaymentMethodRepository{q: tx}
}

const paymentColumns = `id, user_id, card_last4, provider, method_type, is_default, is_active, created_at`

// Create persists a new payment method.
func (r *PaymentMethodRepository) Create(ctx context.Context, method *domain.PaymentMethod) error {
	query := `
		INSERT INTO payments (id, user_id, card_last4, provider, method_type, is_default, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	`

	_, err := r.q.ExecContext(ctx, query,
		method.ID,
		method.UserID,
		method.CardLast4,
		method.Provider,
		method.MethodType,
		method.IsDefault,
		method.IsActive,
	)

	return err
}

// GetByID retrieves a payment method by ID.
func (r *PaymentMethodRepository) GetByID(ctx context.Context, id string) (*domain.PaymentMethod, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`

	method, err := scanPaymentMethod(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return method, nil
}

// GetByUserID retrieves all of a user's payment methods.
func (r *PaymentMethodRepository) GetByUserID(ctx context.Context, userID string) ([]*domain.PaymentMethod, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPaymentMethods(rows)
}

// GetActiveByUserID retrieves the user's active methods, default first, then
// newest first. This ordering is the promotion order when a default is removed.
func (r *PaymentMethodRepository) GetActiveByUserID(ctx context.Context, userID string) ([]*domain.PaymentMethod, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE user_id = $1 AND is_active = TRUE
		ORDER BY is_default DESC, created_at DESC
	`

	rows, err := r.q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPaymentMethods(rows)
}

// ExistsCard reports whether the user already stored this card. Deactivated
// methods do not count, so a removed card can be added back.
func (r *PaymentMethodRepository) ExistsCard(ctx context.Context, userID, cardLast4, provider string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM payments WHERE user_id = $1 AND card_last4 = $2 AND provider = $3 AND is_active = TRUE)`

	var exists bool
	if err := r.q.QueryRowContext(ctx, query, userID, cardLast4, provider).Scan(&exists); err != nil {
		return false, err
	}

	return exists, nil
}

// ClearDefault clears the default flag on all of the user's methods.
func (r *PaymentMethodRepository) ClearDefault(ctx context.Context, userID string) error {
	query := `UPDATE payments SET is_default = FALSE WHERE user_id = $1`

	_, err := r.q.ExecContext(ctx, query, userID)
	return err
}

// SetDefault marks the method as the user's default.
func (r *PaymentMethodRepository) SetDefault(ctx context.Context, id string) error {
	query := `UPDATE payments SET is_default = TRUE WHERE id = $1`
	return r.execExpectingRow(ctx, query, id)
}

// Deactivate soft-deletes the method.
func (r *PaymentMethodRepository) Deactivate(ctx context.Context, id string) error {
	query := `UPDATE payments SET is_active = FALSE, is_default = FALSE WHERE id = $1`
	return r.execExpectingRow(ctx, query, id)
}

func (r *PaymentMethodRepository) execExpectingRow(ctx context.Context, query string, args ...any) error {
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

func scanPaymentMethod(s scanner) (*domain.PaymentMethod, error) {
	var method domain.PaymentMethod

	err := s.Scan(
		&method.ID,
		&method.UserID,
		&method.CardLast4,
		&method.Provider,
		&method.MethodType,
		&method.IsDefault,
		&method.IsActive,
		&method.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &method, nil
}

func scanPaymentMethods(rows *sql.Rows) ([]*domain.PaymentMethod, error) {
	var methods []*domain.PaymentMethod
	for rows.Next() {
		method, err := scanPaymentMethod(rows)
		if err != nil {
			return nil, err
		}
		methods = append(methods, method)
	}

	return methods, rows.Err()
}

// Ensure PaymentMethodRepository implements repository.PaymentMethodRepository.
var _ repository.PaymentMethodRepository = (*PaymentMethodRepository)(nil)
