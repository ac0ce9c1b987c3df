package models

import "time"

// WebhookEvent records every processor callback we accepted, keyed by the
// processor's event id so redelivered events are applied once.
type WebhookEvent struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	EventID string `gorm:"size:64;uniqueIndex;not null" json:"event_id"`

	Type       string `gorm:"size:50" json:"type"`
	ResourceID string `gorm:"size:64" json:"resource_id"`
	Payload    string `gorm:"type:text" json:"payload"`

	CreatedAt time.Time `json:"created_at"`
}
