package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"ecorueda/internal/domain"
	"ecorueda/internal/repository"
)

// UserRepository is a PostgreSQL implementation of repository.UserRepository.
type UserRepository struct {
	q Querier
}

// NewUserRepository creates a new PostgreSQL user repository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{q: db}
}

// NewUserRepositoryWithTx creates a user repository using a transaction.
func NewUserRepositoryWithTx(tx *sql.Tx) *UserRepository {
	return &UserRepository{q: tx}
}

const userColumns = `id, email, password_hash, name, phone, balance, role, is_active, email_verified, last_login, created_at, updated_at`

// Create persists a new user.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, name, phone, balance, role, is_active, email_verified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
	`

	var phone sql.NullString
	if user.Phone != "" {
		phone = sql.NullString{String: user.Phone, Valid: true}
	}

	_, err := r.q.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.Name,
		phone,
		user.Balance,
		user.Role,
		user.IsActive,
		user.EmailVerified,
	)

	return err
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(r.q.QueryRowContext(ctx, query, id))
}

// GetByEmail retrieves a user by email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanUser(r.q.QueryRowContext(ctx, query, email))
}

func (r *UserRepository) scanUser(row *sql.Row) (*domain.User, error) {
	var user domain.User
	var phone sql.NullString
	var lastLogin sql.NullTime

	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Name,
		&phone,
		&user.Balance,
		&user.Role,
		&user.IsActive,
		&user.EmailVerified,
		&lastLogin,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	if phone.Valid {
		user.Phone = phone.String
	}
	if lastLogin.Valid {
		user.LastLogin = lastLogin.Time
	}

	return &user, nil
}

// UpdateProfile updates a user's name and phone.
func (r *UserRepository) UpdateProfile(ctx context.Context, id, name, phone string) error {
	query := `UPDATE users SET name = $1, phone = $2, updated_at = NOW() WHERE id = $3`

	var phoneVal sql.NullString
	if phone != "" {
		phoneVal = sql.NullString{String: phone, Valid: true}
	}

	return r.execExpectingRow(ctx, query, name, phoneVal, id)
}

// UpdatePassword replaces the stored password hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	query := `UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`
	return r.execExpectingRow(ctx, query, passwordHash, id)
}

// UpdateLastLogin stamps the user's last login time.
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE users SET last_login = $1 WHERE id = $2`
	return r.execExpectingRow(ctx, query, at, id)
}

// Credit adds amount to the user's balance.
func (r *UserRepository) Credit(ctx context.Context, id string, amount float64) error {
	query := `UPDATE users SET balance = balance + $1, updated_at = NOW() WHERE id = $2`
	return r.execExpectingRow(ctx, query, amount, id)
}

// Debit subtracts amount from the user's balance. The balance guard lives in
// the WHERE clause so a concurrent debit cannot drive the balance negative.
func (r *UserRepository) Debit(ctx context.Context, id string, amount float64) (bool, error) {
	query := `
		UPDATE users SET balance = balance - $1, updated_at = NOW()
		WHERE id = $2 AND balance >= $1
	`

	result, err := r.q.ExecContext(ctx, query, amount, id)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected == 1, nil
}

// execExpectingRow runs an update that must touch exactly one row.
func (r *UserRepository) execExpectingRow(ctx context.Context, query string, args ...any) error {
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

// Ensure UserRepository implements repository.UserRepository.
var _ repository.UserRepository = (*UserRepository)(nil)
