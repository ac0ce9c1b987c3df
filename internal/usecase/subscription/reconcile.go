package subscription

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/motmatch/mot-marketplace/internal/billing"
	domain "github.com/motmatch/mot-marketplace/internal/domain/subscription"
	"github.com/motmatch/mot-marketplace/internal/models"
	"github.com/motmatch/mot-marketplace/internal/notify"
	"github.com/motmatch/mot-marketplace/internal/timezone"
)

// Reconcile is the daily sweep: pull processor state for every non-terminal
// subscription (webhooks get lost), then suspend PAST_DUE garages whose grace
// window has run out. Per-row failures are logged and skipped so one bad
// subscription never stalls the sweep.
type Reconcile struct {
	db       *gorm.DB
	provider billing.Provider
	notifier *notify.Dispatcher
}

func NewReconcile(
	db *gorm.DB,
	provider billing.Provider,
	notifier *notify.Dispatcher,
) *Reconcile {
	return &Reconcile{
		db:       db,
		provider: provider,
		notifier: notifier,
	}
}

func (uc *Reconcile) Execute(ctx context.Context) error {
	var subs []models.Subscription
	if err := uc.db.WithContext(ctx).
		Where("status <> ?", models.SubscriptionCancelled).
		Find(&subs).Error; err != nil {
		return err
	}

	now := timezone.Now()

	for i := range subs {
		if err := uc.reconcileOne(ctx, &subs[i], now); err != nil {
			log.Printf("reconcile subscription %d: %v", subs[i].ID, err)
		}
	}

	return nil
}

func (uc *Reconcile) reconcileOne(
	ctx context.Context,
	sub *models.Subscription,
	now time.Time,
) error {

	if sub.ProcessorSubscriptionID != "" {
		remote, err := uc.provider.GetSubscription(ctx, sub.ProcessorSubscriptionID)
		if err != nil {
			return err
		}

		changed, err := uc.applyRemoteStatus(sub, remote, now)
		if err != nil {
			return err
		}
		if changed {
			if err := uc.db.WithContext(ctx).Save(sub).Error; err != nil {
				return err
			}
		}
	}

	// Grace window check runs on the post-sync status.
	if domain.GraceExpired(sub, now) {
		if err := domain.Suspend(sub); err != nil {
			return err
		}
		if err := uc.db.WithContext(ctx).Save(sub).Error; err != nil {
			return err
		}
		uc.notifyGarageStaff(sub.GarageID, notify.KindSubscriptionSuspended)
	}

	return nil
}

func (uc *Reconcile) applyRemoteStatus(
	sub *models.Subscription,
	remote *billing.SubscriptionResult,
	now time.Time,
) (bool, error) {

	switch remote.Status {
	case billing.ProcessorStatusAuthorized:
		if sub.Status == models.SubscriptionActive {
			if remote.NextPaymentDate != nil {
				sub.CurrentPeriodEnd = remote.NextPaymentDate
				return true, nil
			}
			return false, nil
		}
		return true, domain.Activate(sub, remote.NextPaymentDate)

	case billing.ProcessorStatusPaused:
		if sub.Status == models.SubscriptionPastDue || sub.Status == models.SubscriptionSuspended {
			return false, nil
		}
		return true, domain.MarkPastDue(sub, now)

	case billing.ProcessorStatusCancelled:
		if sub.Status == models.SubscriptionCancelled {
			return false, nil
		}
		return true, domain.Cancel(sub, now)
	}

	return false, nil
}

func (uc *Reconcile) notifyGarageStaff(garageID uint, kind string) {
	var staff []models.User
	if err := uc.db.
		Where("garage_id = ? AND role = ?", garageID, models.RoleGarage).
		Find(&staff).Error; err != nil {
		return
	}

	for _, u := range staff {
		uc.notifier.Dispatch(notify.Event{UserID: u.ID, Kind: kind})
	}
}
