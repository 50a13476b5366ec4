package service

import (
	"context"

	"ecorueda/internal/domain"
	"ecorueda/internal/repository"
)

// WalletService handles user profiles and atomic balance adjustments.
type WalletService struct {
	userRepo repository.UserRepository
}

// NewWalletService creates a new WalletService.
func NewWalletService(userRepo repository.UserRepository) *WalletService {
	return &WalletService{userRepo: userRepo}
}

// GetProfile retrieves a user's profile.
func (s *WalletService) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// UpdateProfile updates a user's name and phone.
func (s *WalletService) UpdateProfile(ctx context.Context, userID, name, phone string) (*domain.User, error) {
	if err := s.userRepo.UpdateProfile(ctx, userID, name, phone); err != nil {
		return nil, err
	}

	return s.userRepo.GetByID(ctx, userID)
}

// Balance returns the user's current balance.
func (s *WalletService) Balance(ctx context.Context, userID string) (float64, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return 0, err
	}

	return user.Balance, nil
}

// Credit adds amount to the user's balance.
func (s *WalletService) Credit(ctx context.Context, userID string, amount float64) (float64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	if err := s.userRepo.Credit(ctx, userID, amount); err != nil {
		return 0, err
	}

	return s.Balance(ctx, userID)
}

// Debit subtracts amount from the user's balance. The repository applies the
// balance check and the update as one statement; a shortfall surfaces here as
// ErrInsufficientFunds with nothing written.
func (s *WalletService) Debit(ctx context.Context, userID string, amount float64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	return debit(ctx, s.userRepo, userID, amount)
}

// debit runs the conditional debit against the given repository, which may be
// transaction-scoped when called from the trip lifecycle.
func debit(ctx context.Context, users repository.UserRepository, userID string, amount float64) error {
	ok, err := users.Debit(ctx, userID, amount)
	if err != nil {
		return err
	}

	if !ok {
		// Distinguish a missing user from a short balance.
		if _, err := users.GetByID(ctx, userID); err != nil {
			return err
		}
		return ErrInsufficientFunds
	}

	return nil
}
