package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/poolmate/poolmate-backend/internal/models"
	"github.com/poolmate/poolmate-backend/internal/safety"
	"github.com/poolmate/poolmate-backend/internal/session"
	"gorm.io/gorm"
)

type RideService struct {
	db *gorm.DB
}

func NewRideService(db *gorm.DB) *RideService {
	return &RideService{db: db}
}

// Create publishes a new ride. Verified accounts only.
func (s *RideService) Create(ident session.Identity, ownerName, route string, departure time.Time, seats int,
	startName, endName string, startLat, startLng float64, carNumber, carModel string) (*models.Ride, error) {

	if !ident.EmailVerified {
		return nil, ErrNotVerified
	}
	if seats < 0 {
		seats = 0
	}
	if strings.TrimSpace(route) == "" {
		return nil, errors.New("route is required")
	}

	ride := models.Ride{
		ID:                uuid.New(),
		OwnerID:           ident.UserID,
		OwnerName:         ownerName,
		Route:             route,
		StartLocationName: startName,
		EndLocationName:   endName,
		StartLatitude:     startLat,
		StartLongitude:    startLng,
		DepartureTime:     departure,
		SeatsAvailable:    seats,
		CarNumber:         carNumber,
		CarModel:          carModel,
	}

	if err := s.db.Create(&ride).Error; err != nil {
		return nil, fmt.Errorf("failed to create ride: %w", err)
	}
	return &ride, nil
}

// List returns upcoming rides ordered by departure time, filtered through
// the caller's safety overlay and the global moderation hide flag.
func (s *RideService) List(overlay safety.Snapshot) ([]models.Ride, error) {
	var rides []models.Ride
	err := s.db.Where("hidden = false").Order("departure_time ASC").Find(&rides).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list rides: %w", err)
	}
	return filterRides(rides, overlay, time.Now()), nil
}

// Search filters rides by location substrings and an optional time window.
// The window is the caller's to set; an absent lower bound includes rides
// that already departed.
func (s *RideService) Search(overlay safety.Snapshot, start, end string, from, to *time.Time) ([]models.Ride, error) {
	query := s.db.Where("hidden = false").Order("departure_time ASC")
	if from != nil {
		query = query.Where("departure_time >= ?", *from)
	}
	if to != nil {
		query = query.Where("departure_time <= ?", *to)
	}
	if start != "" {
		query = query.Where("start_location_name ILIKE ?", "%"+start+"%")
	}
	if end != "" {
		query = query.Where("end_location_name ILIKE ?", "%"+end+"%")
	}

	var rides []models.Ride
	if err := query.Find(&rides).Error; err != nil {
		return nil, fmt.Errorf("failed to search rides: %w", err)
	}
	return filterRides(rides, overlay, time.Time{}), nil
}

// filterRides drops rides the caller's overlay hides and, when cutoff is
// set, rides that already departed. The zero cutoff keeps departed rides;
// Search uses it because its time window is explicit.
func filterRides(rides []models.Ride, overlay safety.Snapshot, cutoff time.Time) []models.Ride {
	out := make([]models.Ride, 0, len(rides))
	for _, r := range rides {
		if overlay.UserBlocked(r.OwnerID) || overlay.RideHidden(r.ID) {
			continue
		}
		if !cutoff.IsZero() && !r.DepartureTime.After(cutoff) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Get returns a single ride regardless of overlay state; detail views of
// hidden rides are the client's call, lists are not.
func (s *RideService) Get(rideID uuid.UUID) (*models.Ride, error) {
	var ride models.Ride
	err := s.db.First(&ride, "id = ?", rideID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRideNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read ride: %w", err)
	}
	return &ride, nil
}

// UpdateSeats is a capacity re-plan, not a booking operation: it sets
// seats_available directly, guarded by the approved-count floor evaluated
// on the locked row.
func (s *RideService) UpdateSeats(ident session.Identity, rideID uuid.UUID, newSeats int) error {
	return runSerialized(s.db, func(tx *gorm.DB) error {
		ride, err := lockRide(tx, rideID)
		if err != nil {
			return err
		}
		if ride.OwnerID != ident.UserID {
			return ErrNotRideOwner
		}
		if err := validateCapacity(newSeats, ride.ApprovedCount); err != nil {
			return err
		}
		return tx.Model(ride).Update("seats_available", newSeats).Error
	})
}

// Delete removes a ride and cascades: all its requests, messages, and
// every affected user's joined-ride entry go in the same transaction.
// Seats are not restored; the ride ceases to exist.
func (s *RideService) Delete(ident session.Identity, rideID uuid.UUID) error {
	return runSerialized(s.db, func(tx *gorm.DB) error {
		ride, err := lockRide(tx, rideID)
		if err != nil {
			return err
		}
		if ride.OwnerID != ident.UserID {
			return ErrNotRideOwner
		}

		if err := tx.Where("ride_id = ?", rideID).Delete(&models.RideRequest{}).Error; err != nil {
			return fmt.Errorf("failed to delete requests: %w", err)
		}
		if err := tx.Where("ride_id = ?", rideID).Delete(&models.JoinedRide{}).Error; err != nil {
			return fmt.Errorf("failed to delete joined-ride entries: %w", err)
		}
		if err := tx.Where("ride_id = ?", rideID).Delete(&models.RideMessage{}).Error; err != nil {
			return fmt.Errorf("failed to delete messages: %w", err)
		}
		if err := tx.Delete(ride).Error; err != nil {
			return fmt.Errorf("failed to delete ride: %w", err)
		}
		return nil
	})
}
