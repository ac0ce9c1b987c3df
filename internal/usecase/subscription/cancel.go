package subscription

import (
	"context"

	"gorm.io/gorm"

	"github.com/motmatch/mot-marketplace/internal/audit"
	"github.com/motmatch/mot-marketplace/internal/billing"
	domain "github.com/motmatch/mot-marketplace/internal/domain/subscription"
	"github.com/motmatch/mot-marketplace/internal/httperr"
	"github.com/motmatch/mot-marketplace/internal/models"
	"github.com/motmatch/mot-marketplace/internal/timezone"
)

type Cancel struct {
	db       *gorm.DB
	provider billing.Provider
	audit    *audit.Dispatcher
}

func NewCancel(
	db *gorm.DB,
	provider billing.Provider,
	audit *audit.Dispatcher,
) *Cancel {
	return &Cancel{
		db:       db,
		provider: provider,
		audit:    audit,
	}
}

func (uc *Cancel) Execute(
	ctx context.Context,
	garageID uint,
	actorID uint,
) (*models.Subscription, error) {

	var sub models.Subscription
	if err := uc.db.WithContext(ctx).
		Where(
			"garage_id = ? AND status <> ?",
			garageID, models.SubscriptionCancelled,
		).
		Order("id DESC").
		First(&sub).Error; err != nil {
		return nil, httperr.ErrBusiness("subscription_not_found")
	}

	// Cancel processor-side first; a local row pointing at a live
	// preapproval is worse than the other way round (the daily
	// reconciliation mops up the reverse case).
	if sub.ProcessorSubscriptionID != "" {
		if err := uc.provider.CancelSubscription(ctx, sub.ProcessorSubscriptionID); err != nil {
			return nil, err
		}
	}

	now := timezone.Now()
	if err := domain.Cancel(&sub, now); err != nil {
		return nil, err
	}

	if err := uc.db.WithContext(ctx).Save(&sub).Error; err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		GarageID: garageID,
		UserID:   &actorID,
		Action:   "subscription_cancelled",
		Entity:   "subscription",
		EntityID: &sub.ID,
	})

	return &sub, nil
}
