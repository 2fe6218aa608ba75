package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the profile record. EmailVerified gates every seat-booking
// operation; the account purge cascade hard-deletes this row last.
type User struct {
	ID              uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email           string    `gorm:"not null;size:255;uniqueIndex" json:"email"`
	Password        string    `gorm:"not null" json:"-"`
	DisplayName     string    `gorm:"size:100" json:"display_name"`
	Role            string    `gorm:"size:20;default:'user'" json:"role"`
	EmailVerified   bool      `gorm:"not null;default:false" json:"email_verified"`
	VerifyTokenHash string    `gorm:"size:64" json:"-"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
