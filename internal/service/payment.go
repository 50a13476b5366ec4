package service

import (
	"context"

	"github.com/google/uuid"

	"ecorueda/internal/domain"
	"ecorueda/internal/repository"
)

// PaymentService handles a user's stored payment methods.
type PaymentService struct {
	tx         repository.TxRunner
	methodRepo repository.PaymentMethodRepository
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(tx repository.TxRunner, methodRepo repository.PaymentMethodRepository) *PaymentService {
	return &PaymentService{
		tx:         tx,
		methodRepo: methodRepo,
	}
}

// AddMethodRequest contains the parameters for storing a payment method.
type AddMethodRequest struct {
	CardLast4  string
	Provider   string
	MethodType domain.MethodType
}

// Add stores a new payment method. The same last4+provider pair cannot be
// stored twice for a user; the user's first method becomes the default.
func (s *PaymentService) Add(ctx context.Context, userID string, req AddMethodRequest) (*domain.PaymentMethod, error) {
	exists, err := s.methodRepo.ExistsCard(ctx, userID, req.CardLast4, req.Provider)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicatePaymentMethod
	}

	existing, err := s.methodRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	methodType := req.MethodType
	if methodType == "" {
		methodType = domain.MethodTypeCard
	}

	method := &domain.PaymentMethod{
		ID:         uuid.New().String(),
		UserID:     userID,
		CardLast4:  req.CardLast4,
		Provider:   req.Provider,
		MethodType: methodType,
		IsDefault:  len(existing) == 0,
		IsActive:   true,
	}

	if err := s.methodRepo.Create(ctx, method); err != nil {
		return nil, err
	}

	return method, nil
}

// List retrieves the user's active payment methods, default first.
func (s *PaymentService) List(ctx context.Context, userID string) ([]*domain.PaymentMethod, error) {
	return s.methodRepo.GetActiveByUserID(ctx, userID)
}

// SetDefault marks the method as the user's default. Clearing the previous
// default and setting the new one commit together, so there is never a
// moment with zero or two defaults among a user's active methods.
func (s *PaymentService) SetDefault(ctx context.Context, id, userID string) (*domain.PaymentMethod, error) {
	method, err := s.methodRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if method.UserID != userID {
		return nil, ErrNotMethodOwner
	}

	err = s.tx.RunInTx(ctx, func(r repository.TxRepos) error {
		if err := r.Payments.ClearDefault(ctx, userID); err != nil {
			return err
		}
		return r.Payments.SetDefault(ctx, id)
	})
	if err != nil {
		return nil, err
	}

	method.IsDefault = true
	return method, nil
}

// Deactivate soft-deletes the method. When the default method is removed,
// the first remaining active method is promoted; with none left the user
// simply has no default.
func (s *PaymentService) Deactivate(ctx context.Context, id, userID string) error {
	method, err := s.methodRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if method.UserID != userID {
		return ErrNotMethodOwner
	}

	return s.tx.RunInTx(ctx, func(r repository.TxRepos) error {
		if err := r.Payments.Deactivate(ctx, id); err != nil {
			return err
		}

		if !method.IsDefault {
			return nil
		}

		remaining, err := r.Payments.GetActiveByUserID(ctx, userID)
		if err != nil {
			return err
		}
		if len(remaining) > 0 {
			return r.Payments.SetDefault(ctx, remaining[0].ID)
		}
		return nil
	})
}
