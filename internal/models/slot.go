package models

import "time"

const (
	SlotStatusAvailable = "available"
	SlotStatusBooked    = "booked"
	SlotStatusBlocked   = "blocked"
)

// Slot is a concrete bookable interval for one garage. The composite unique
// index on (garage_id, start_time) is what makes concurrent booking safe:
// two transactions can never both insert the same interval.
type Slot struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	GarageID uint `gorm:"uniqueIndex:idx_garage_start" json:"garage_id"`

	StartTime time.Time `gorm:"uniqueIndex:idx_garage_start" json:"start_time"`
	EndTime   time.Time `json:"end_time"`

	Status string `gorm:"size:20;default:'available'" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
