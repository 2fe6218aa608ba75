package models

import (
	"time"

	"github.com/google/uuid"
)

// RideRequest statuses. A request is born pending; approval consumes a seat,
// rejection is a terminal owner decision with no seat effect.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// RideRequest is one user's bid for one seat on a ride. The (ride_id,
// user_id) pair is unique: the ledger checks for an existing row inside the
// same locked transaction that inserts, and the index backstops it.
type RideRequest struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RideID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_requests_ride_user" json:"ride_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_requests_ride_user" json:"user_id"`
	UserName  string    `gorm:"size:100" json:"user_name"`
	Status    string    `gorm:"size:20;not null;default:'pending'" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (RideRequest) TableName() string {
	return "ride_requests"
}

// JoinedRide is the reverse index of approved memberships: a row exists iff
// an approved RideRequest exists for the same (user, ride) pair. It is
// created and deleted in the same transaction as the request transition it
// mirrors and has no lifecycle of its own.
type JoinedRide struct {
	ID       uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_joined_user_ride" json:"user_id"`
	RideID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_joined_user_ride" json:"ride_id"`
	JoinedAt time.Time `gorm:"not null" json:"joined_at"`
}

func (JoinedRide) TableName() string {
	return "joined_rides"
}
