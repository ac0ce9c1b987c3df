package models

import "time"

// SchedulePattern is the weekly recurring template slots are generated from.
// One row per garage per weekday.
type SchedulePattern struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	GarageID uint `gorm:"uniqueIndex:idx_garage_weekday" json:"garage_id"`

	Weekday int `gorm:"uniqueIndex:idx_garage_weekday" json:"weekday"`

	OpenTime  string `gorm:"size:5" json:"open_time"`
	CloseTime string `gorm:"size:5" json:"close_time"`
	BreakFrom string `gorm:"size:5" json:"break_from"`
	BreakTo   string `gorm:"size:5" json:"break_to"`

	SlotDurationMin int  `gorm:"default:60" json:"slot_duration_min"`
	Active          bool `json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ScheduleException overrides the weekly pattern for a single calendar date:
// either closed for the day or open with different hours.
type ScheduleException struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	GarageID uint `gorm:"uniqueIndex:idx_garage_date" json:"garage_id"`

	Date   string `gorm:"size:10;uniqueIndex:idx_garage_date" json:"date"` // YYYY-MM-DD
	Closed bool   `json:"closed"`

	OpenTime  string `gorm:"size:5" json:"open_time"`
	CloseTime string `gorm:"size:5" json:"close_time"`

	Reason string `gorm:"size:100" json:"reason"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
