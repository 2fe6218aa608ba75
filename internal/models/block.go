package models

import (
	"time"

	"github.com/google/uuid"
)

// Block hides one user's content from another. One-directional: the blocker
// stops seeing the blocked user, never the other way around. Blocks do not
// expire.
type Block struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	BlockerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_blocks_pair" json:"blocker_id"`
	BlockedID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_blocks_pair" json:"blocked_id"`
	Reason    string    `gorm:"size:500" json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

func (Block) TableName() string {
	return "blocks"
}

// HiddenRide is a per-user hide of a ride, created when the user reports it.
// Scoped to the hiding user only; global hides are the Hidden flag on the
// ride row.
type HiddenRide struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_hidden_rides_user_ride" json:"user_id"`
	RideID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_hidden_rides_user_ride" json:"ride_id"`
	Reason    string    `gorm:"size:500" json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

func (HiddenRide) TableName() string {
	return "hidden_rides"
}

// HiddenMessage is a per-user hide of a single chat message.
type HiddenMessage struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_hidden_msgs_user_msg" json:"user_id"`
	RideID    uuid.UUID `gorm:"type:uuid;not null;index" json:"ride_id"`
	MessageID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_hidden_msgs_user_msg" json:"message_id"`
	Reason    string    `gorm:"size:500" json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

func (HiddenMessage) TableName() string {
	return "hidden_messages"
}
