package postgres

import (
	"context"
	"database/sql"

	"ecorueda/internal/repository"
)

// TxRunner is a PostgreSQL implementation of repository.TxRunner. It wraps
// fn in BEGIN/COMMIT and hands it repositories scoped to that transaction.
type TxRunner struct {
	db *sql.DB
}

// NewTxRunner creates a new TxRunner.
func NewTxRunner(db *sql.DB) *TxRunner {
	return &TxRunner{db: db}
}

// RunInTx runs fn inside a database transaction. Any error from fn rolls the
// transaction back and is returned to the caller unchanged.
func (t *TxRunner) RunInTx(ctx context.Context, fn func(r repository.TxRepos) error) (err error) {
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	repos := repository.TxRepos{
		Users:    NewUserRepositoryWithTx(tx),
		Vehicles: NewVehicleRepositoryWithTx(tx),
		Trips:    NewTripRepositoryWithTx(tx),
		Payments: NewPaymentMethodRepositoryWithTx(tx),
	}

	if err = fn(repos); err != nil {
		return err
	}

	return tx.Commit()
}

// Ensure TxRunner implements repository.TxRunner.
var _ repository.TxRunner = (*TxRunner)(nil)
