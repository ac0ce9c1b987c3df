package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Booking struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Reference string `gorm:"size:36;uniqueIndex;not null" json:"reference"`

	GarageID uint   `gorm:"index" json:"garage_id"`
	Garage   Garage `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"garage"`

	DriverID uint `gorm:"index" json:"driver_id"`
	Driver   User `gorm:"foreignKey:DriverID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"driver"`

	VehicleID uint    `json:"vehicle_id"`
	Vehicle   Vehicle `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"vehicle"`

	SlotID uint `gorm:"index" json:"slot_id"`
	Slot   Slot `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"slot"`

	Status string          `gorm:"size:20;default:'pending'" json:"status"`
	Total  decimal.Decimal `gorm:"type:numeric(10,2)" json:"total"`
	Notes  string          `gorm:"size:255" json:"notes"`

	Lines []BookingLine `json:"lines"`

	ConfirmedAt *time.Time `json:"confirmed_at"`
	CompletedAt *time.Time `json:"completed_at"`
	CancelledAt *time.Time `json:"cancelled_at"`
	NoShowAt    *time.Time `json:"no_show_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type BookingLine struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	BookingID uint `gorm:"index" json:"booking_id"`

	GarageServiceID uint          `json:"garage_service_id"`
	GarageService   GarageService `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"garage_service"`

	Name   string          `gorm:"size:100" json:"name"`
	Amount decimal.Decimal `gorm:"type:numeric(10,2)" json:"amount"`

	CreatedAt time.Time `json:"created_at"`
}
