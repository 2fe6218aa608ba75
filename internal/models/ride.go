package models

import (
	"time"

	"github.com/google/uuid"
)

// Ride is a shared-trip offering with a finite seat pool. SeatsAvailable is
// the remaining free seats and ApprovedCount the seats already committed;
// both columns change only inside a ledger transaction that holds the row
// lock on this record.
type Ride struct {
	ID                uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OwnerID           uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_id"`
	OwnerName         string    `gorm:"size:100;not null" json:"owner_name"`
	Route             string    `gorm:"size:255;not null" json:"route"`
	StartLocationName string    `gorm:"size:255;not null" json:"start_location_name"`
	EndLocationName   string    `gorm:"size:255;not null" json:"end_location_name"`
	StartLatitude     float64   `json:"start_latitude"`
	StartLongitude    float64   `json:"start_longitude"`
	DepartureTime     time.Time `gorm:"not null;index" json:"departure_time"`
	SeatsAvailable    int       `gorm:"not null;check:seats_available >= 0" json:"seats_available"`
	ApprovedCount     int       `gorm:"not null;default:0" json:"approved_count"`
	CarNumber         string    `gorm:"size:20" json:"car_number"`
	CarModel          string    `gorm:"size:50" json:"car_model"`
	Hidden            bool      `gorm:"not null;default:false" json:"-"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (Ride) TableName() string {
	return "rides"
}
