package models

import "time"

type Vehicle struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	DriverID uint `gorm:"uniqueIndex:idx_driver_registration" json:"driver_id"`
	Driver   User `gorm:"foreignKey:DriverID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	// Normalized registration mark, no spaces, upper case.
	Registration string `gorm:"size:10;not null;uniqueIndex:idx_driver_registration" json:"registration"`

	Make              string `gorm:"size:50" json:"make"`
	Model             string `gorm:"size:50" json:"model"`
	Colour            string `gorm:"size:30" json:"colour"`
	FuelType          string `gorm:"size:20" json:"fuel_type"`
	YearOfManufacture int    `json:"year_of_manufacture"`

	MOTStatus     string     `gorm:"size:30" json:"mot_status"`
	MOTExpiryDate *time.Time `json:"mot_expiry_date"`

	// False when the government lookup failed and the row holds driver input only.
	Verified bool `gorm:"default:false" json:"verified"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
