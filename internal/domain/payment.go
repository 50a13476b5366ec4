package domain

import "time"

// MethodType represents the kind of stored payment method.
type MethodType string

const (
	MethodTypeCard   MethodType = "card"
	MethodTypePaypal MethodType = "paypal"
)

// PaymentMethod represents a stored payment method belonging to a user.
// At most one active method per user carries IsDefault. Methods are
// soft-deleted via IsActive.
type PaymentMethod struct {
	ID         string
	UserID     string
	CardLast4  string
	Provider   string
	MethodType MethodType
	IsDefault  bool
	IsActive   bool
	CreatedAt  time.Time
}
