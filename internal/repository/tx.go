package repository

import "context"

// TxRepos bundles the repositories that participate in multi-entity
// transactions. Every repository in the bundle is scoped to the same
// database transaction.
type TxRepos struct {
	Users    UserRepository
	Vehicles VehicleRepository
	Trips    TripRepository
	Payments PaymentMethodRepository
}

// TxRunner runs fn inside a single database transaction. If fn returns an
// error the transaction is rolled back and the error is returned unchanged;
// otherwise the transaction commits. Trip finish and cancel use this so the
// wallet debit, trip update and vehicle release apply as a unit; the payment
// default flag moves between methods under the same protection.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(r TxRepos) error) error
}
