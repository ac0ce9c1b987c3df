package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Plan is a platform subscription tier a garage can sign up to.
type Plan struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:50;not null" json:"name"`
	Code string `gorm:"size:30;uniqueIndex;not null" json:"code"`

	MonthlyPrice decimal.Decimal `gorm:"type:numeric(10,2)" json:"monthly_price"`
	CurrencyID   string          `gorm:"size:3;default:'GBP'" json:"currency_id"`

	// Processor-side recurring plan id, set once the plan is mirrored there.
	ProcessorPlanID string `gorm:"size:64" json:"processor_plan_id"`

	Active bool `gorm:"default:true" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
