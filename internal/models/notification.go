package models

import "time"

type Notification struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"index" json:"user_id"`

	Kind  string `gorm:"size:50;not null" json:"kind"`
	Title string `gorm:"size:100" json:"title"`
	Body  string `gorm:"size:500" json:"body"`

	ReadAt *time.Time `json:"read_at"`

	CreatedAt time.Time `json:"created_at"`
}
