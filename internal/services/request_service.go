package services

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/poolmate/poolmate-backend/internal/models"
	"github.com/poolmate/poolmate-backend/internal/session"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RequestService is the ledger for seat requests. Every mutation is one
// transaction that locks the ride row first, so seat checks always run
// against the value the same transaction will write.
type RequestService struct {
	db *gorm.DB
}

func NewRequestService(db *gorm.DB) *RequestService {
	return &RequestService{db: db}
}

// lockRide reads the ride row FOR UPDATE inside tx. Until tx commits, no
// other ledger transaction can read-modify-write this ride's seat counts.
func lockRide(tx *gorm.DB, rideID uuid.UUID) (*models.Ride, error) {
	var ride models.Ride
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&ride, "id = ?", rideID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRideNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read ride: %w", err)
	}
	return &ride, nil
}

// Submit creates a pending request for the caller. No seat is reserved
// here; seats are committed at approval only. The duplicate check runs
// inside the same transaction as the insert.
func (s *RequestService) Submit(ident session.Identity, rideID uuid.UUID) (*models.RideRequest, error) {
	if !ident.EmailVerified {
		return nil, ErrNotVerified
	}

	var created models.RideRequest
	err := runSerialized(s.db, func(tx *gorm.DB) error {
		ride, err := lockRide(tx, rideID)
		if err != nil {
			return err
		}

		var existing models.RideRequest
		err = tx.Where("ride_id = ? AND user_id = ?", ride.ID, ident.UserID).
			First(&existing).Error
		if err == nil {
			return ErrDuplicateRequest
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check existing request: %w", err)
		}

		var user models.User
		if err := tx.First(&user, "id = ?", ident.UserID).Error; err != nil {
			return ErrUserNotFound
		}

		created = models.RideRequest{
			ID:       uuid.New(),
			RideID:   ride.ID,
			UserID:   ident.UserID,
			UserName: user.DisplayName,
			Status:   models.StatusPending,
		}
		if err := tx.Create(&created).Error; err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// Approve commits one seat to a pending request. Seat decrement, status
// change, and the joined-ride index entry commit together or not at all.
// Only the ride owner may approve.
func (s *RequestService) Approve(ident session.Identity, rideID, requestID uuid.UUID) error {
	return runSerialized(s.db, func(tx *gorm.DB) error {
		ride, err := lockRide(tx, rideID)
		if err != nil {
			return err
		}
		if ride.OwnerID != ident.UserID {
			return ErrNotRideOwner
		}

		var req models.RideRequest
		err = tx.Where("id = ? AND ride_id = ?", requestID, rideID).First(&req).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidRequest
		}
		if err != nil {
			return fmt.Errorf("failed to read request: %w", err)
		}
		if err := validateStatus(req.Status); err != nil {
			return err
		}
		if !canTransition(req.Status, models.StatusApproved) {
			return ErrInvalidRequest
		}
		if ride.SeatsAvailable <= 0 {
			return ErrNoSeatsAvailable
		}

		if err := tx.Model(ride).Updates(map[string]interface{}{
			"seats_available": ride.SeatsAvailable - 1,
			"approved_count":  ride.ApprovedCount + 1,
		}).Error; err != nil {
			return fmt.Errorf("failed to decrement seats: %w", err)
		}
		if err := tx.Model(&req).Update("status", models.StatusApproved).Error; err != nil {
			return fmt.Errorf("failed to approve request: %w", err)
		}

		joined := models.JoinedRide{
			ID:       uuid.New(),
			UserID:   req.UserID,
			RideID:   rideID,
			JoinedAt: time.Now().UTC(),
		}
		if err := tx.Create(&joined).Error; err != nil {
			return fmt.Errorf("failed to create joined-ride entry: %w", err)
		}
		return nil
	})
}

// Reject marks a pending request rejected. Terminal, no seat effect.
func (s *RequestService) Reject(ident session.Identity, rideID, requestID uuid.UUID) error {
	return runSerialized(s.db, func(tx *gorm.DB) error {
		ride, err := lockRide(tx, rideID)
		if err != nil {
			return err
		}
		if ride.OwnerID != ident.UserID {
			return ErrNotRideOwner
		}

		var req models.RideRequest
		err = tx.Where("id = ? AND ride_id = ?", requestID, rideID).First(&req).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidRequest
		}
		if err != nil {
			return fmt.Errorf("failed to read request: %w", err)
		}
		if err := validateStatus(req.Status); err != nil {
			return err
		}
		if !canTransition(req.Status, models.StatusRejected) {
			return ErrInvalidRequest
		}
		return tx.Model(&req).Update("status", models.StatusRejected).Error
	})
}

// Withdraw deletes the caller's own request. If it was approved, the seat
// it consumed is restored and the joined-ride entry removed, atomically.
func (s *RequestService) Withdraw(ident session.Identity, rideID, requestID uuid.UUID) error {
	return s.release(rideID, requestID, func(ride *models.Ride, req *models.RideRequest) error {
		if req.UserID != ident.UserID {
			return ErrNotParticipant
		}
		return nil
	})
}

// Remove is the owner removing a rider (or rejecting-and-deleting a
// pending request). Same seat restoration semantics as Withdraw.
func (s *RequestService) Remove(ident session.Identity, rideID, requestID uuid.UUID) error {
	return s.release(rideID, requestID, func(ride *models.Ride, req *models.RideRequest) error {
		if ride.OwnerID != ident.UserID {
			return ErrNotRideOwner
		}
		return nil
	})
}

// release deletes a request and restores exactly the seat approval
// consumed, never more. authorize runs after the locked reads so it sees
// transaction-consistent rows.
func (s *RequestService) release(rideID, requestID uuid.UUID, authorize func(*models.Ride, *models.RideRequest) error) error {
	return runSerialized(s.db, func(tx *gorm.DB) error {
		ride, err := lockRide(tx, rideID)
		if err != nil {
			return err
		}

		var req models.RideRequest
		err = tx.Where("id = ? AND ride_id = ?", requestID, rideID).First(&req).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRequestNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to read request: %w", err)
		}
		if err := validateStatus(req.Status); err != nil {
			return err
		}
		if err := authorize(ride, &req); err != nil {
			return err
		}

		if delta := seatDeltaOnRemoval(req.Status); delta > 0 {
			if err := tx.Model(ride).Updates(map[string]interface{}{
				"seats_available": ride.SeatsAvailable + delta,
				"approved_count":  ride.ApprovedCount - delta,
			}).Error; err != nil {
				return fmt.Errorf("failed to restore seat: %w", err)
			}
			if err := tx.Where("user_id = ? AND ride_id = ?", req.UserID, rideID).
				Delete(&models.JoinedRide{}).Error; err != nil {
				return fmt.Errorf("failed to delete joined-ride entry: %w", err)
			}
		}

		if err := tx.Delete(&req).Error; err != nil {
			return fmt.Errorf("failed to delete request: %w", err)
		}
		return nil
	})
}

// ListForRide returns a ride's requests for its owner, with requesters the
// owner has blocked filtered out. Malformed rows are logged and skipped.
func (s *RequestService) ListForRide(ident session.Identity, rideID uuid.UUID, blocked func(uuid.UUID) bool) ([]models.RideRequest, error) {
	var ride models.Ride
	if err := s.db.First(&ride, "id = ?", rideID).Error; err != nil {
		return nil, ErrRideNotFound
	}
	if ride.OwnerID != ident.UserID {
		return nil, ErrNotRideOwner
	}

	var requests []models.RideRequest
	if err := s.db.Where("ride_id = ?", rideID).Order("created_at ASC").Find(&requests).Error; err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}

	out := make([]models.RideRequest, 0, len(requests))
	for _, req := range requests {
		if err := validateStatus(req.Status); err != nil {
			slog.Warn("skipping malformed request record", "request_id", req.ID, "error", err)
			continue
		}
		if blocked != nil && blocked(req.UserID) {
			continue
		}
		out = append(out, req)
	}
	return out, nil
}

// MyRequest returns the caller's request on a ride, or ErrRequestNotFound.
func (s *RequestService) MyRequest(ident session.Identity, rideID uuid.UUID) (*models.RideRequest, error) {
	var req models.RideRequest
	err := s.db.Where("ride_id = ? AND user_id = ?", rideID, ident.UserID).First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read request: %w", err)
	}
	if err := validateStatus(req.Status); err != nil {
		return nil, err
	}
	return &req, nil
}

// PendingRequest pairs a pending request with the ride it targets.
type PendingRequest struct {
	Request models.RideRequest `json:"request"`
	Ride    models.Ride        `json:"ride"`
}

// ListPending returns the caller's pending requests across upcoming rides.
func (s *RequestService) ListPending(ident session.Identity) ([]PendingRequest, error) {
	var requests []models.RideRequest
	err := s.db.
		Joins("JOIN rides ON rides.id = ride_requests.ride_id").
		Where("ride_requests.user_id = ? AND ride_requests.status = ?", ident.UserID, models.StatusPending).
		Where("rides.departure_time > ?", time.Now()).
		Find(&requests).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pending requests: %w", err)
	}

	out := make([]PendingRequest, 0, len(requests))
	for _, req := range requests {
		var ride models.Ride
		if err := s.db.First(&ride, "id = ?", req.RideID).Error; err != nil {
			continue
		}
		out = append(out, PendingRequest{Request: req, Ride: ride})
	}
	return out, nil
}

// HasActivePending reports whether the caller has any pending request on a
// ride that has not departed yet.
func (s *RequestService) HasActivePending(ident session.Identity) (bool, error) {
	var count int64
	err := s.db.Model(&models.RideRequest{}).
		Joins("JOIN rides ON rides.id = ride_requests.ride_id").
		Where("ride_requests.user_id = ? AND ride_requests.status = ?", ident.UserID, models.StatusPending).
		Where("rides.departure_time > ?", time.Now()).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to count pending requests: %w", err)
	}
	return count > 0, nil
}

// JoinedRides returns the rides the caller holds an approved seat in.
func (s *RequestService) JoinedRides(ident session.Identity) ([]models.Ride, error) {
	var rides []models.Ride
	err := s.db.
		Joins("JOIN joined_rides ON joined_rides.ride_id = rides.id").
		Where("joined_rides.user_id = ?", ident.UserID).
		Order("rides.departure_time ASC").
		Find(&rides).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list joined rides: %w", err)
	}
	return rides, nil
}
