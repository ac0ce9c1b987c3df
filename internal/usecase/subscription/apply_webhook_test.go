package subscription_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/motmatch/mot-marketplace/internal/billing"
	"github.com/motmatch/mot-marketplace/internal/models"
	"github.com/motmatch/mot-marketplace/internal/notify"
	usecase "github.com/motmatch/mot-marketplace/internal/usecase/subscription"
)

// ======================================================
// Fakes
// ======================================================

type fakeProvider struct {
	sub    *billing.SubscriptionResult
	subErr error
	pay    *billing.PaymentResult
	payErr error
}

func (f *fakeProvider) CreateCustomer(context.Context, string, string) (string, error) {
	return "", nil
}

func (f *fakeProvider) CreatePlan(context.Context, string, decimal.Decimal, string) (string, error) {
	return "", nil
}

func (f *fakeProvider) CreateSubscription(context.Context, billing.SubscriptionRequest) (*billing.SubscriptionResult, error) {
	return nil, nil
}

func (f *fakeProvider) GetSubscription(context.Context, string) (*billing.SubscriptionResult, error) {
	return f.sub, f.subErr
}

func (f *fakeProvider) CancelSubscription(context.Context, string) error { return nil }

func (f *fakeProvider) GetPayment(context.Context, string) (*billing.PaymentResult, error) {
	return f.pay, f.payErr
}

var _ billing.Provider = (*fakeProvider)(nil)

type noopMailer struct{}

func (noopMailer) Send(_, _, _ string) error { return nil }

// ======================================================
// Helpers
// ======================================================

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1) // one shared in-memory database, not one per connection

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Plan{},
		&models.Subscription{},
		&models.Invoice{},
		&models.Notification{},
		&models.WebhookEvent{},
	))

	return db
}

func newApplyWebhook(t *testing.T, provider billing.Provider) (*usecase.ApplyWebhook, *gorm.DB) {
	t.Helper()

	db := testDB(t)
	notifier := notify.NewDispatcher(db, noopMailer{})

	return usecase.NewApplyWebhook(db, provider, notifier), db
}

func seedSubscription(t *testing.T, db *gorm.DB, status string) *models.Subscription {
	t.Helper()

	sub := &models.Subscription{
		GarageID:                7,
		PlanID:                  1,
		Status:                  status,
		ProcessorSubscriptionID: "pre_123",
	}
	if status == models.SubscriptionPastDue {
		since := time.Now().Add(-48 * time.Hour)
		sub.PastDueSince = &since
	}
	require.NoError(t, db.Create(sub).Error)

	return sub
}

func approvedPayment(approved time.Time) *billing.PaymentResult {
	return &billing.PaymentResult{
		ID:                "pay-9",
		Status:            billing.PaymentStatusApproved,
		Amount:            decimal.NewFromInt(29),
		CurrencyID:        "GBP",
		ExternalReference: "garage-7",
		DateApproved:      &approved,
	}
}

// ======================================================
// Tests
// ======================================================

func TestApplyWebhook(t *testing.T) {
	ctx := context.Background()
	approved := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)

	t.Run("authorized preapproval activates a pending subscription", func(t *testing.T) {
		provider := &fakeProvider{
			sub: &billing.SubscriptionResult{ID: "pre_123", Status: billing.ProcessorStatusAuthorized},
		}
		uc, db := newApplyWebhook(t, provider)
		seedSubscription(t, db, models.SubscriptionPending)

		require.NoError(t, uc.Execute(ctx, "evt-1", usecase.EventTypePreapproval, "pre_123", "{}"))

		var sub models.Subscription
		require.NoError(t, db.First(&sub).Error)
		assert.Equal(t, models.SubscriptionActive, sub.Status)
	})

	t.Run("approved payment records a paid invoice and recovers past_due", func(t *testing.T) {
		provider := &fakeProvider{pay: approvedPayment(approved)}
		uc, db := newApplyWebhook(t, provider)
		seedSubscription(t, db, models.SubscriptionPastDue)

		require.NoError(t, uc.Execute(ctx, "evt-2", usecase.EventTypePayment, "pay-9", "{}"))

		var invoice models.Invoice
		require.NoError(t, db.First(&invoice).Error)
		assert.Equal(t, models.InvoicePaid, invoice.Status)
		assert.Equal(t, "pay-9", invoice.ProcessorPaymentID)
		require.NotNil(t, invoice.PaidAt)

		var sub models.Subscription
		require.NoError(t, db.First(&sub).Error)
		assert.Equal(t, models.SubscriptionActive, sub.Status)
		assert.Nil(t, sub.PastDueSince)
	})

	t.Run("rejected payment marks past_due and records the failed charge", func(t *testing.T) {
		provider := &fakeProvider{
			pay: &billing.PaymentResult{
				ID:                "pay-10",
				Status:            billing.PaymentStatusRejected,
				Amount:            decimal.NewFromInt(29),
				CurrencyID:        "GBP",
				ExternalReference: "garage-7",
			},
		}
		uc, db := newApplyWebhook(t, provider)
		seedSubscription(t, db, models.SubscriptionActive)

		require.NoError(t, uc.Execute(ctx, "evt-3", usecase.EventTypePayment, "pay-10", "{}"))

		var invoice models.Invoice
		require.NoError(t, db.First(&invoice).Error)
		assert.Equal(t, models.InvoiceFailed, invoice.Status)
		assert.Nil(t, invoice.PaidAt)

		var sub models.Subscription
		require.NoError(t, db.First(&sub).Error)
		assert.Equal(t, models.SubscriptionPastDue, sub.Status)
		require.NotNil(t, sub.PastDueSince)
	})

	t.Run("redelivered event is applied once", func(t *testing.T) {
		provider := &fakeProvider{pay: approvedPayment(approved)}
		uc, db := newApplyWebhook(t, provider)
		seedSubscription(t, db, models.SubscriptionActive)

		require.NoError(t, uc.Execute(ctx, "evt-4", usecase.EventTypePayment, "pay-9", "{}"))

		err := uc.Execute(ctx, "evt-4", usecase.EventTypePayment, "pay-9", "{}")
		require.ErrorIs(t, err, usecase.ErrDuplicateEvent)

		var invoices int64
		require.NoError(t, db.Model(&models.Invoice{}).Count(&invoices).Error)
		assert.EqualValues(t, 1, invoices)
	})

	t.Run("failed apply releases the event for redelivery", func(t *testing.T) {
		provider := &fakeProvider{payErr: errors.New("processor timeout")}
		uc, db := newApplyWebhook(t, provider)
		seedSubscription(t, db, models.SubscriptionActive)

		err := uc.Execute(ctx, "evt-5", usecase.EventTypePayment, "pay-9", "{}")
		require.Error(t, err)
		require.NotErrorIs(t, err, usecase.ErrDuplicateEvent)

		// The dedupe row must not survive a failed apply, or the
		// processor's retry would be swallowed as a duplicate.
		var events int64
		require.NoError(t, db.Model(&models.WebhookEvent{}).Count(&events).Error)
		assert.EqualValues(t, 0, events)

		provider.payErr = nil
		provider.pay = approvedPayment(approved)

		require.NoError(t, uc.Execute(ctx, "evt-5", usecase.EventTypePayment, "pay-9", "{}"))

		var invoice models.Invoice
		require.NoError(t, db.First(&invoice).Error)
		assert.Equal(t, models.InvoicePaid, invoice.Status)
	})

	t.Run("unknown event types are recorded and ignored", func(t *testing.T) {
		uc, db := newApplyWebhook(t, &fakeProvider{})

		require.NoError(t, uc.Execute(ctx, "evt-6", "plan", "res-1", "{}"))

		var events int64
		require.NoError(t, db.Model(&models.WebhookEvent{}).Count(&events).Error)
		assert.EqualValues(t, 1, events)
	})
}
