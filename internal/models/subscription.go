package models

import "time"

const (
	SubscriptionPending   = "PENDING"
	SubscriptionActive    = "ACTIVE"
	SubscriptionPastDue   = "PAST_DUE"
	SubscriptionSuspended = "SUSPENDED"
	SubscriptionCancelled = "CANCELLED"
)

type Subscription struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	GarageID uint `gorm:"index" json:"garage_id"`

	PlanID uint `json:"plan_id"`
	Plan   Plan `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"plan"`

	Status string `gorm:"size:20;default:'PENDING'" json:"status"`

	// Processor-side identifiers mirrored locally.
	ProcessorCustomerID     string `gorm:"size:64" json:"processor_customer_id"`
	ProcessorSubscriptionID string `gorm:"size:64;index" json:"processor_subscription_id"`

	CurrentPeriodEnd *time.Time `json:"current_period_end"`
	PastDueSince     *time.Time `json:"past_due_since"`
	CancelledAt      *time.Time `json:"cancelled_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
