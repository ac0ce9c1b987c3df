package billing

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Processor-side subscription states we care about. Everything else is
// treated as "no change".
const (
	ProcessorStatusPending    = "pending"
	ProcessorStatusAuthorized = "authorized"
	ProcessorStatusPaused     = "paused"
	ProcessorStatusCancelled  = "cancelled"
)

const (
	PaymentStatusApproved = "approved"
	PaymentStatusRejected = "rejected"
)

type SubscriptionRequest struct {
	Reason            string
	ExternalReference string
	PayerEmail        string
	BackURL           string

	Amount     decimal.Decimal
	CurrencyID string
}

type SubscriptionResult struct {
	ID              string
	Status          string
	InitPoint       string
	NextPaymentDate *time.Time
}

type PaymentResult struct {
	ID                string
	Status            string
	Amount            decimal.Decimal
	CurrencyID        string
	ExternalReference string
	DateApproved      *time.Time
}

// Provider abstracts the payment processor. The concrete implementation is
// Mercado Pago; tests substitute a fake.
type Provider interface {
	CreateCustomer(ctx context.Context, email, name string) (string, error)

	CreatePlan(ctx context.Context, reason string, amount decimal.Decimal, currencyID string) (string, error)

	CreateSubscription(ctx context.Context, in SubscriptionRequest) (*SubscriptionResult, error)
	GetSubscription(ctx context.Context, id string) (*SubscriptionResult, error)
	CancelSubscription(ctx context.Context, id string) error

	GetPayment(ctx context.Context, id string) (*PaymentResult, error)
}
