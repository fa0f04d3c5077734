package entities

import "time"

// ProcessedMessage marks an inbound chat message as handled. The provider
// message id is the primary key, so a redelivery cannot be recorded twice.
type ProcessedMessage struct {
	MessageID string    `gorm:"size:128;primaryKey" json:"message_id"`
	Phone     string    `gorm:"size:20;not null;index" json:"phone"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}
