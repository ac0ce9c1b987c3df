package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	InvoicePaid   = "paid"
	InvoiceFailed = "failed"
)

// Invoice mirrors one recurring charge reported by the payment processor.
type Invoice struct {
	ID             uint `gorm:"primaryKey" json:"id"`
	GarageID       uint `gorm:"index" json:"garage_id"`
	SubscriptionID uint `gorm:"index" json:"subscription_id"`

	ProcessorPaymentID string          `gorm:"size:64;uniqueIndex" json:"processor_payment_id"`
	Amount             decimal.Decimal `gorm:"type:numeric(10,2)" json:"amount"`
	CurrencyID         string          `gorm:"size:3" json:"currency_id"`
	Status             string          `gorm:"size:20" json:"status"`

	PaidAt *time.Time `json:"paid_at"`

	CreatedAt time.Time `json:"created_at"`
}
