package models

import "time"

const (
	GarageStatusPending   = "pending_approval"
	GarageStatusApproved  = "approved"
	GarageStatusSuspended = "suspended"
)

type Garage struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:100;not null" json:"name"`
	Slug string `gorm:"size:100;uniqueIndex;not null" json:"slug"`

	Phone    string `gorm:"size:20" json:"phone"`
	Email    string `gorm:"size:100" json:"email"`
	Address  string `gorm:"size:255" json:"address"`
	Postcode string `gorm:"size:10" json:"postcode"`

	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`

	PhotoURL string `gorm:"size:255" json:"photo_url"`

	// VTS number assigned by the test authority.
	VTSNumber string `gorm:"size:20" json:"vts_number"`

	Status            string `gorm:"size:30;default:'pending_approval'" json:"status"`
	Timezone          string `gorm:"size:50;default:'Europe/London'" json:"timezone"`
	MinAdvanceMinutes int    `gorm:"default:60" json:"min_advance_minutes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
