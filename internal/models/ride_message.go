package models

import (
	"time"

	"github.com/google/uuid"
)

// TombstoneName replaces the sender display name when an account is purged.
// The tombstone sender ID is uuid.Nil.
const TombstoneName = "Deleted User"

// RideMessage is a chat message on a ride. Hidden is the global moderation
// flag; per-user hides live in HiddenMessage.
type RideMessage struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RideID     uuid.UUID `gorm:"type:uuid;not null;index" json:"ride_id"`
	SenderID   uuid.UUID `gorm:"type:uuid;not null;index" json:"sender_id"`
	SenderName string    `gorm:"size:100;not null" json:"sender_name"`
	Text       string    `gorm:"type:text;not null" json:"text"`
	Hidden     bool      `gorm:"not null;default:false" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}

func (RideMessage) TableName() string {
	return "ride_messages"
}
