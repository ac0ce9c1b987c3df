package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	ServiceCategoryMOT    = "mot"
	ServiceCategoryRetest = "retest"
	ServiceCategoryExtra  = "extra"
)

type GarageService struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	GarageID uint `gorm:"index" json:"garage_id"`

	Name        string          `gorm:"size:100;not null" json:"name"`
	Description string          `gorm:"size:255" json:"description"`
	Category    string          `gorm:"size:20;default:'mot'" json:"category"`
	DurationMin int             `json:"duration_min"`
	Price       decimal.Decimal `gorm:"type:numeric(10,2)" json:"price"`
	Active      bool            `gorm:"default:true" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
