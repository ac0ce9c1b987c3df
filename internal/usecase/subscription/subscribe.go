package subscription

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/motmatch/mot-marketplace/internal/audit"
	"github.com/motmatch/mot-marketplace/internal/billing"
	"github.com/motmatch/mot-marketplace/internal/httperr"
	"github.com/motmatch/mot-marketplace/internal/models"
)

// ======================================================
// USE CASE
// ======================================================

type Subscribe struct {
	db       *gorm.DB
	provider billing.Provider
	audit    *audit.Dispatcher
}

func NewSubscribe(
	db *gorm.DB,
	provider billing.Provider,
	audit *audit.Dispatcher,
) *Subscribe {
	return &Subscribe{
		db:       db,
		provider: provider,
		audit:    audit,
	}
}

type SubscribeResult struct {
	Subscription *models.Subscription
	CheckoutURL  string
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *Subscribe) Execute(
	ctx context.Context,
	garageID uint,
	actorID uint,
	planCode string,
) (*SubscribeResult, error) {

	// --------------------------------------------------
	// Plan
	// --------------------------------------------------
	var plan models.Plan
	if err := uc.db.WithContext(ctx).
		Where("code = ? AND active = ?", planCode, true).
		First(&plan).Error; err != nil {
		return nil, httperr.ErrBusiness("plan_not_found")
	}

	// --------------------------------------------------
	// One live subscription per garage
	// --------------------------------------------------
	var live int64
	uc.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where(
			"garage_id = ? AND status IN ?",
			garageID,
			[]string{models.SubscriptionPending, models.SubscriptionActive, models.SubscriptionPastDue},
		).
		Count(&live)
	if live > 0 {
		return nil, httperr.ErrBusiness("already_subscribed")
	}

	// --------------------------------------------------
	// Garage + billing contact
	// --------------------------------------------------
	var garage models.Garage
	if err := uc.db.WithContext(ctx).First(&garage, garageID).Error; err != nil {
		return nil, httperr.ErrBusiness("garage_not_found")
	}

	var owner models.User
	if err := uc.db.WithContext(ctx).
		Where("garage_id = ? AND role = ?", garageID, models.RoleGarage).
		Order("id ASC").
		First(&owner).Error; err != nil {
		return nil, httperr.ErrBusiness("garage_owner_not_found")
	}

	// --------------------------------------------------
	// Processor customer (reused across subscriptions)
	// --------------------------------------------------
	customerID, err := uc.ensureCustomer(ctx, garageID, owner)
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// Processor subscription
	// --------------------------------------------------
	created, err := uc.provider.CreateSubscription(ctx, billing.SubscriptionRequest{
		Reason:            fmt.Sprintf("MOT marketplace %s plan", plan.Name),
		ExternalReference: fmt.Sprintf("garage-%d", garageID),
		PayerEmail:        owner.Email,
		Amount:            plan.MonthlyPrice,
		CurrencyID:        plan.CurrencyID,
	})
	if err != nil {
		return nil, err
	}

	sub := models.Subscription{
		GarageID:                garageID,
		PlanID:                  plan.ID,
		Status:                  models.SubscriptionPending,
		ProcessorCustomerID:     customerID,
		ProcessorSubscriptionID: created.ID,
		CurrentPeriodEnd:        created.NextPaymentDate,
	}
	if err := uc.db.WithContext(ctx).Create(&sub).Error; err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		GarageID: garageID,
		UserID:   &actorID,
		Action:   "subscription_created",
		Entity:   "subscription",
		EntityID: &sub.ID,
	})

	return &SubscribeResult{
		Subscription: &sub,
		CheckoutURL:  created.InitPoint,
	}, nil
}

// ensureCustomer reuses the processor customer id from any previous
// subscription before creating a new one.
func (uc *Subscribe) ensureCustomer(
	ctx context.Context,
	garageID uint,
	owner models.User,
) (string, error) {

	var prev models.Subscription
	err := uc.db.WithContext(ctx).
		Where("garage_id = ? AND processor_customer_id <> ''", garageID).
		Order("id DESC").
		First(&prev).Error
	if err == nil {
		return prev.ProcessorCustomerID, nil
	}

	return uc.provider.CreateCustomer(ctx, owner.Email, owner.Name)
}
