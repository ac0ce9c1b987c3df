package subscription

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/motmatch/mot-marketplace/internal/billing"
	domain "github.com/motmatch/mot-marketplace/internal/domain/subscription"
	"github.com/motmatch/mot-marketplace/internal/models"
	"github.com/motmatch/mot-marketplace/internal/notify"
	"github.com/motmatch/mot-marketplace/internal/timezone"
)

const (
	EventTypePreapproval       = "subscription_preapproval"
	EventTypeAuthorizedPayment = "subscription_authorized_payment"
	EventTypePayment           = "payment"
)

var ErrDuplicateEvent = errors.New("webhook event already applied")

// ApplyWebhook reconciles one processor callback into local state. The event
// row and the state it produced commit together, deduplicated on the
// processor event id: a redelivery of an applied event is a no-op, while a
// failed apply rolls the event row back so the processor's retry gets a
// clean run.
type ApplyWebhook struct {
	db       *gorm.DB
	provider billing.Provider
	notifier *notify.Dispatcher
}

func NewApplyWebhook(
	db *gorm.DB,
	provider billing.Provider,
	notifier *notify.Dispatcher,
) *ApplyWebhook {
	return &ApplyWebhook{
		db:       db,
		provider: provider,
		notifier: notifier,
	}
}

func (uc *ApplyWebhook) Execute(
	ctx context.Context,
	eventID string,
	eventType string,
	resourceID string,
	rawPayload string,
) error {

	return uc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		event := models.WebhookEvent{
			EventID:    eventID,
			Type:       eventType,
			ResourceID: resourceID,
			Payload:    rawPayload,
		}
		res := tx.
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&event)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrDuplicateEvent
		}

		switch eventType {
		case EventTypePreapproval:
			return uc.applyPreapproval(ctx, tx, resourceID)
		case EventTypeAuthorizedPayment, EventTypePayment:
			return uc.applyPayment(ctx, tx, resourceID)
		default:
			log.Printf("ignoring webhook type %s", eventType)
			return nil
		}
	})
}

func (uc *ApplyWebhook) applyPreapproval(ctx context.Context, tx *gorm.DB, preapprovalID string) error {
	remote, err := uc.provider.GetSubscription(ctx, preapprovalID)
	if err != nil {
		return err
	}

	var sub models.Subscription
	if err := tx.
		Where("processor_subscription_id = ?", preapprovalID).
		First(&sub).Error; err != nil {
		return err
	}

	now := timezone.Now()

	switch remote.Status {
	case billing.ProcessorStatusAuthorized:
		if sub.Status == models.SubscriptionActive {
			return nil
		}
		if err := domain.Activate(&sub, remote.NextPaymentDate); err != nil {
			return err
		}
		uc.notifyGarage(tx, sub.GarageID, notify.KindSubscriptionActivated, map[string]any{
			"plan": sub.PlanID,
		})

	case billing.ProcessorStatusPaused:
		if err := domain.MarkPastDue(&sub, now); err != nil {
			return err
		}
		uc.notifyGarage(tx, sub.GarageID, notify.KindSubscriptionPastDue, nil)

	case billing.ProcessorStatusCancelled:
		if sub.Status == models.SubscriptionCancelled {
			return nil
		}
		if err := domain.Cancel(&sub, now); err != nil {
			return err
		}

	default:
		return nil
	}

	return tx.Save(&sub).Error
}

func (uc *ApplyWebhook) applyPayment(ctx context.Context, tx *gorm.DB, paymentID string) error {
	pay, err := uc.provider.GetPayment(ctx, paymentID)
	if err != nil {
		return err
	}

	// External reference is set to "garage-<id>" when the preapproval is
	// created; that is the only join key the payment carries.
	garageID, ok := parseGarageRef(pay.ExternalReference)
	if !ok {
		log.Printf("payment %s has no garage reference (%q)", pay.ID, pay.ExternalReference)
		return nil
	}

	var sub models.Subscription
	if err := tx.
		Where("garage_id = ? AND processor_subscription_id <> ''", garageID).
		Order("id DESC").
		First(&sub).Error; err != nil {
		return err
	}

	invoice := models.Invoice{
		GarageID:           sub.GarageID,
		SubscriptionID:     sub.ID,
		ProcessorPaymentID: pay.ID,
		Amount:             pay.Amount,
		CurrencyID:         pay.CurrencyID,
	}

	now := timezone.Now()

	switch pay.Status {
	case billing.PaymentStatusApproved:
		invoice.Status = models.InvoicePaid
		invoice.PaidAt = pay.DateApproved

		// A successful charge recovers a PAST_DUE or SUSPENDED garage.
		if sub.Status != models.SubscriptionActive && sub.Status != models.SubscriptionCancelled {
			if err := domain.Activate(&sub, sub.CurrentPeriodEnd); err == nil {
				if err := tx.Save(&sub).Error; err != nil {
					return err
				}
			}
		}

	case billing.PaymentStatusRejected:
		invoice.Status = models.InvoiceFailed

		if err := domain.MarkPastDue(&sub, now); err == nil {
			if err := tx.Save(&sub).Error; err != nil {
				return err
			}
			uc.notifyGarage(tx, sub.GarageID, notify.KindSubscriptionPastDue, nil)
		}

	default:
		// in_process etc: record nothing yet
		return nil
	}

	return tx.
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&invoice).Error
}

func parseGarageRef(ref string) (uint, bool) {
	var id uint
	if _, err := fmt.Sscanf(ref, "garage-%d", &id); err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

func (uc *ApplyWebhook) notifyGarage(tx *gorm.DB, garageID uint, kind string, data map[string]any) {
	var staff []models.User
	if err := tx.
		Where("garage_id = ? AND role = ?", garageID, models.RoleGarage).
		Find(&staff).Error; err != nil {
		return
	}

	for _, u := range staff {
		uc.notifier.Dispatch(notify.Event{
			UserID: u.ID,
			Kind:   kind,
			Data:   data,
		})
	}
}
