package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InboundMessage records a webhook delivery that was already processed.
// Twilio redelivers a message with the same MessageSid, so the unique index
// turns every redelivery into a no-op.
type InboundMessage struct {
	ID         string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	MessageSID string    `json:"message_sid" gorm:"type:varchar(64);uniqueIndex;not null"`
	Phone      string    `json:"phone" gorm:"index;not null"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName implements the gorm tabler interface
func (InboundMessage) TableName() string { return "inbound_messages" }

// BeforeCreate assigns the id
func (m *InboundMessage) BeforeCreate(*gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
