package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"ecorueda/internal/auth"
	"ecorueda/internal/domain"
	"ecorueda/internal/repository"
)

// AuthService handles registration, login and password changes.
type AuthService struct {
	userRepo repository.UserRepository
	tokens   *auth.JWTManager
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, tokens *auth.JWTManager) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
	}
}

// RegisterRequest contains the parameters for registering a user.
type RegisterRequest struct {
	Email    string
	Password string
	Name     string
	Phone    string
}

// AuthResult is returned from register and login.
type AuthResult struct {
	User  *domain.User
	Token string
}

// Register creates a new user account and returns a signed token.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	existing, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           uuid.New().String(),
		Email:        req.Email,
		PasswordHash: string(hash),
		Name:         req.Name,
		Phone:        req.Phone,
		Balance:      0,
		Role:         domain.RoleUser,
		IsActive:     true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.tokens.Generate(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user, Token: token}, nil
}

// Login authenticates a user and returns a signed token.
// A missing account and a wrong password produce the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, time.Now()); err != nil {
		return nil, err
	}

	token, err := s.tokens.Generate(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user, Token: token}, nil
}

// ChangePassword replaces the user's password after verifying the current one.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)) != nil {
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return s.userRepo.UpdatePassword(ctx, userID, string(hash))
}
