package entities

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChatSession struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Phone            string     `gorm:"size:20;uniqueIndex;not null" json:"phone"`
	CustomerName     string     `gorm:"size:100" json:"customer_name"`
	State            string     `gorm:"size:32;not null;default:idle" json:"state"`
	CategoryID       *uuid.UUID `gorm:"type:uuid" json:"category_id,omitempty"`
	PendingProductID *uuid.UUID `gorm:"type:uuid" json:"pending_product_id,omitempty"`
	Options          []string   `gorm:"type:text;serializer:json" json:"options"`
	LastMessageID    string     `gorm:"size:128" json:"last_message_id,omitempty"`

	Items []ChatSessionItem `gorm:"foreignKey:SessionID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"items"`
	Timestamp
}

func (s *ChatSession) BeforeCreate(*gorm.DB) error {
	newID(&s.ID)
	return nil
}

type ChatSessionItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID uuid.UUID `gorm:"type:uuid;not null;index" json:"session_id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id"`
	Quantity  int       `gorm:"not null;check:quantity > 0" json:"quantity"`

	Product *Product `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"product,omitempty"`
	Timestamp
}

func (i *ChatSessionItem) BeforeCreate(*gorm.DB) error {
	newID(&i.ID)
	return nil
}
