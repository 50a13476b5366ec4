package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"ecorueda/internal/auth"
	"ecorueda/internal/domain"
	"ecorueda/internal/service"
)

// ──────────────────────────────────────────────
// AUTHENTICATION
// ──────────────────────────────────────────────

func newAuthService(userRepo *MockUserRepository) *service.AuthService {
	tokens := auth.NewJWTManager("test-secret", time.Hour, "test")
	return service.NewAuthService(userRepo, tokens)
}

func TestAuth_RegisterCreatesUserWithToken(t *testing.T) {
	t.Parallel()

	userRepo := NewMockUserRepository()
	svc := newAuthService(userRepo)

	result, err := svc.Register(context.Background(), service.RegisterRequest{
		Email:    "ana@example.com",
		Password: "secret-password",
		Name:     "Ana",
		Phone:    "8888-0000",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Token == "" {
		t.Error("expected a signed token")
	}
	if result.User.Role != domain.RoleUser {
		t.Errorf("expected role %s, got %s", domain.RoleUser, result.User.Role)
	}
	if result.User.Balance != 0 {
		t.Errorf("expected zero starting balance, got %v", result.User.Balance)
	}
	if result.User.PasswordHash == "secret-password" {
		t.Error("password stored in plain text")
	}
	if bcrypt.CompareHashAndPassword([]byte(result.User.PasswordHash), []byte("secret-password")) != nil {
		t.Error("stored hash does not match the password")
	}
}

func TestAuth_RegisterRejectsTakenEmail(t *testing.T) {
	t.Parallel()

	userRepo := NewMockUserRepository()
	userRepo.AddUser(&domain.User{ID: "user-1", Email: "ana@example.com"})

	svc := newAuthService(userRepo)

	_, err := svc.Register(context.Background(), service.RegisterRequest{
		Email:    "ana@example.com",
		Password: "secret-password",
	})
	if !errors.Is(err, service.ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}
}

func TestAuth_LoginRoundTrip(t *testing.T) {
	t.Parallel()

	userRepo := NewMockUserRepository()
	svc := newAuthService(userRepo)

	registered, err := svc.Register(context.Background(), service.RegisterRequest{
		Email:    "ana@example.com",
		Password: "secret-password",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := svc.Login(context.Background(), "ana@example.com", "secret-password")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.User.ID != registered.User.ID {
		t.Errorf("expected user %s, got %s", registered.User.ID, result.User.ID)
	}
	if userRepo.GetUser(result.User.ID).LastLogin.IsZero() {
		t.Error("expected last login to be stamped")
	}
}

func TestAuth_LoginSameErrorForMissingUserAndWrongPassword(t *testing.T) {
	t.Parallel()

	userRepo := NewMockUserRepository()
	svc := newAuthService(userRepo)

	if _, err := svc.Register(context.Background(), service.RegisterRequest{
		Email:    "ana@example.com",
		Password: "secret-password",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, wrongPass := svc.Login(context.Background(), "ana@example.com", "wrong")
	_, missing := svc.Login(context.Background(), "nobody@example.com", "whatever")

	if !errors.Is(wrongPass, service.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for wrong password, got %v", wrongPass)
	}
	if !errors.Is(missing, service.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for missing user, got %v", missing)
	}
}

func TestAuth_ChangePassword(t *testing.T) {
	t.Parallel()

	userRepo := NewMockUserRepository()
	svc := newAuthService(userRepo)

	registered, err := svc.Register(context.Background(), service.RegisterRequest{
		Email:    "ana@example.com",
		Password: "old-password",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	userID := registered.User.ID

	if err := svc.ChangePassword(context.Background(), userID, "wrong", "new-password"); !errors.Is(err, service.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}

	if err := svc.ChangePassword(context.Background(), userID, "old-password", "new-password"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.Login(context.Background(), "ana@example.com", "old-password"); !errors.Is(err, service.ErrInvalidCredentials) {
		t.Errorf("expected old password rejected, got %v", err)
	}
	if _, err := svc.Login(context.Background(), "ana@example.com", "new-password"); err != nil {
		t.Errorf("expected new password accepted, got %v", err)
	}
}

// ──────────────────────────────────────────────
// TOKENS
// ──────────────────────────────────────────────

func TestJWT_GenerateVerifyRoundTrip(t *testing.T) {
	t.Parallel()

	tokens := auth.NewJWTManager("test-secret", time.Hour, "test")

	raw, err := tokens.Generate("user-1", "ana@example.com", domain.RoleAdmin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := tokens.Verify(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Errorf("expected user-1, got %s", claims.UserID)
	}
	if claims.Role != domain.RoleAdmin {
		t.Errorf("expected role %s, got %s", domain.RoleAdmin, claims.Role)
	}
}

func TestJWT_VerifyRejectsWrongSecret(t *testing.T) {
	t.Parallel()

	raw, err := auth.NewJWTManager("secret-a", time.Hour, "test").Generate("user-1", "a@example.com", domain.RoleUser)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = auth.NewJWTManager("secret-b", time.Hour, "test").Verify(raw)
	if !errors.Is(err, auth.ErrTokenInvalid) {
		t.Errorf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestJWT_VerifyRejectsExpiredToken(t *testing.T) {
	t.Parallel()

	tokens := auth.NewJWTManager("test-secret", -time.Minute, "test")

	raw, err := tokens.Generate("user-1", "a@example.com", domain.RoleUser)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = tokens.Verify(raw)
	if !errors.Is(err, auth.ErrTokenExpired) {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}
}

func TestJWT_VerifyRejectsGarbage(t *testing.T) {
	t.Parallel()

	tokens := auth.NewJWTManager("test-secret", time.Hour, "test")

	if _, err := tokens.Verify("not-a-token"); !errors.Is(err, auth.ErrTokenInvalid) {
		t.Errorf("expected ErrTokenInvalid, got %v", err)
	}
}
