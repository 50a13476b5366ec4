package tests

import (
	"context"
	"errors"
	"testing"

	"ecorueda/internal/domain"
	"ecorueda/internal/service"
)

// ──────────────────────────────────────────────
// PAYMENT METHODS
// ──────────────────────────────────────────────

func newPaymentService(methods *MockPaymentMethodRepository) *service.PaymentService {
	tx := NewMockTxRunner(NewMockUserRepository(), NewMockVehicleRepository(), NewMockTripRepository(), methods)
	return service.NewPaymentService(tx, methods)
}

func TestPayment_FirstMethodBecomesDefault(t *testing.T) {
	t.Parallel()

	methodRepo := NewMockPaymentMethodRepository()
	svc := newPaymentService(methodRepo)

	first, err := svc.Add(context.Background(), "user-1", service.AddMethodRequest{
		CardLast4: "4242",
		Provider:  "visa",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !first.IsDefault {
		t.Error("expected first method to be default")
	}
	if first.MethodType != domain.MethodTypeCard {
		t.Errorf("expected default method type %s, got %s", domain.MethodTypeCard, first.MethodType)
	}

	second, err := svc.Add(context.Background(), "user-1", service.AddMethodRequest{
		CardLast4:  "1111",
		Provider:   "mastercard",
		MethodType: domain.MethodTypeCard,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.IsDefault {
		t.Error("expected second method not to be default")
	}
}

func TestPayment_AddRejectsDuplicateCard(t *testing.T) {
	t.Parallel()

	methodRepo := NewMockPaymentMethodRepository()
	methodRepo.AddMethod(&domain.PaymentMethod{
		ID:        "pm-1",
		UserID:    "user-1",
		CardLast4: "4242",
		Provider:  "visa",
		IsActive:  true,
	})

	svc := newPaymentService(methodRepo)

	_, err := svc.Add(context.Background(), "user-1", service.AddMethodRequest{
		CardLast4: "4242",
		Provider:  "visa",
	})
	if !errors.Is(err, service.ErrDuplicatePaymentMethod) {
		t.Errorf("expected ErrDuplicatePaymentMethod, got %v", err)
	}

	// The same card under a different provider is a different method.
	if _, err := svc.Add(context.Background(), "user-1", service.AddMethodRequest{
		CardLast4: "4242",
		Provider:  "mastercard",
	}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	// Another user may store the same card.
	if _, err := svc.Add(context.Background(), "user-2", service.AddMethodRequest{
		CardLast4: "4242",
		Provider:  "visa",
	}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestPayment_SetDefaultMovesFlag(t *testing.T) {
	t.Parallel()

	methodRepo := NewMockPaymentMethodRepository()
	methodRepo.AddMethod(&domain.PaymentMethod{
		ID: "pm-1", UserID: "user-1", CardLast4: "4242", Provider: "visa",
		IsDefault: true, IsActive: true,
	})
	methodRepo.AddMethod(&domain.PaymentMethod{
		ID: "pm-2", UserID: "user-1", CardLast4: "1111", Provider: "visa",
		IsActive: true,
	})

	svc := newPaymentService(methodRepo)

	method, err := svc.SetDefault(context.Background(), "pm-2", "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !method.IsDefault {
		t.Error("expected pm-2 to be default")
	}
	if methodRepo.GetMethod("pm-1").IsDefault {
		t.Error("expected pm-1 to lose the default flag")
	}
	if !methodRepo.GetMethod("pm-2").IsDefault {
		t.Error("expected pm-2 to carry the default flag")
	}
}

func TestPayment_SetDefaultEnforcesOwnership(t *testing.T) {
	t.Parallel()

	methodRepo := NewMockPaymentMethodRepository()
	methodRepo.AddMethod(&domain.PaymentMethod{
		ID: "pm-1", UserID: "user-1", IsActive: true,
	})

	svc := newPaymentService(methodRepo)

	_, err := svc.SetDefault(context.Background(), "pm-1", "user-2")
	if !errors.Is(err, service.ErrNotMethodOwner) {
		t.Errorf("expected ErrNotMethodOwner, got %v", err)
	}
	if methodRepo.GetMethod("pm-1").IsDefault {
		t.Error("expected flag untouched")
	}
}

func TestPayment_DeactivateDefaultPromotesNext(t *testing.T) {
	t.Parallel()

	methodRepo := NewMockPaymentMethodRepository()
	methodRepo.AddMethod(&domain.PaymentMethod{
		ID: "pm-1", UserID: "user-1", CardLast4: "4242", Provider: "visa",
		IsDefault: true, IsActive: true,
	})
	methodRepo.AddMethod(&domain.PaymentMethod{
		ID: "pm-2", UserID: "user-1", CardLast4: "1111", Provider: "visa",
		IsActive: true,
	})

	svc := newPaymentService(methodRepo)

	if err := svc.Deactivate(context.Background(), "pm-1", "user-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if methodRepo.GetMethod("pm-1").IsActive {
		t.Error("expected pm-1 deactivated")
	}
	if !methodRepo.GetMethod("pm-2").IsDefault {
		t.Error("expected pm-2 promoted to default")
	}
}

func TestPayment_DeactivateNonDefaultKeepsDefault(t *testing.T) {
	t.Parallel()

	methodRepo := NewMockPaymentMethodRepository()
	methodRepo.AddMethod(&domain.PaymentMethod{
		ID: "pm-1", UserID: "user-1", IsDefault: true, IsActive: true,
	})
	methodRepo.AddMethod(&domain.PaymentMethod{
		ID: "pm-2", UserID: "user-1", IsActive: true,
	})

	svc := newPaymentService(methodRepo)

	if err := svc.Deactivate(context.Background(), "pm-2", "user-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !methodRepo.GetMethod("pm-1").IsDefault {
		t.Error("expected pm-1 to stay default")
	}
}

func TestPayment_DeactivateLastMethodLeavesNoDefault(t *testing.T) {
	t.Parallel()

	methodRepo := NewMockPaymentMethodRepository()
	methodRepo.AddMethod(&domain.PaymentMethod{
		ID: "pm-1", UserID: "user-1", IsDefault: true, IsActive: true,
	})

	svc := newPaymentService(methodRepo)

	if err := svc.Deactivate(context.Background(), "pm-1", "user-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if methodRepo.GetMethod("pm-1").IsActive || methodRepo.GetMethod("pm-1").IsDefault {
		t.Error("expected pm-1 fully deactivated")
	}
	if methodRepo.SetDefaultCallCount != 0 {
		t.Errorf("expected no promotion, got %d SetDefault calls", methodRepo.SetDefaultCallCount)
	}
}

func TestPayment_DeactivateEnforcesOwnership(t *testing.T) {
	t.Parallel()

	methodRepo := NewMockPaymentMethodRepository()
	methodRepo.AddMethod(&domain.PaymentMethod{
		ID: "pm-1", UserID: "user-1", IsActive: true,
	})

	svc := newPaymentService(methodRepo)

	err := svc.Deactivate(context.Background(), "pm-1", "user-2")
	if !errors.Is(err, service.ErrNotMethodOwner) {
		t.Errorf("expected ErrNotMethodOwner, got %v", err)
	}
	if !methodRepo.GetMethod("pm-1").IsActive {
		t.Error("expected pm-1 still active")
	}
}

func TestPayment_ListReturnsActiveDefaultFirst(t *testing.T) {
	t.Parallel()

	methodRepo := NewMockPaymentMethodRepository()
	methodRepo.AddMethod(&domain.PaymentMethod{
		ID: "pm-1", UserID: "user-1", IsActive: true,
	})
	methodRepo.AddMethod(&domain.PaymentMethod{
		ID: "pm-2", UserID: "user-1", IsDefault: true, IsActive: true,
	})
	methodRepo.AddMethod(&domain.PaymentMethod{
		ID: "pm-3", UserID: "user-1", IsActive: false,
	})

	svc := newPaymentService(methodRepo)

	methods, err := svc.List(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(methods) != 2 {
		t.Fatalf("expected 2 active methods, got %d", len(methods))
	}
	if methods[0].ID != "pm-2" {
		t.Errorf("expected default first, got %s", methods[0].ID)
	}
}
