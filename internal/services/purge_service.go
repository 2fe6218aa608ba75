package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/poolmate/poolmate-backend/internal/models"
	"github.com/poolmate/poolmate-backend/internal/safety"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// PurgeService runs the account deletion cascade:
//
//  1. release every request the user holds, per ride (fan-out, barrier)
//  2. tombstone the user's chat messages
//  3. tombstone the user's moderation reports (2 and 3 run concurrently)
//  4. delete the profile and auth records, only after 1-3 have finished
//
// Sub-operation failures never abort the cascade: they are joined,
// persisted through the error-log pipeline for reconciliation, and
// surfaced to the caller as ErrPartialCleanup once deletion completes.
type PurgeService struct {
	db          *gorm.DB
	registry    *safety.Registry
	concurrency int

	// Phase implementations. The constructor wires the database-backed
	// versions; kept as fields so the cascade's ordering and failure
	// handling are testable without a store.
	listRideIDs       func(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	releaseSeat       func(rideID, userID uuid.UUID) error
	tombstoneMessages func(ctx context.Context, userID uuid.UUID) error
	tombstoneReports  func(ctx context.Context, userID uuid.UUID) error
	deleteProfile     func(ctx context.Context, userID uuid.UUID) error
}

func NewPurgeService(db *gorm.DB, registry *safety.Registry, concurrency int) *PurgeService {
	s := &PurgeService{db: db, registry: registry, concurrency: concurrency}
	s.listRideIDs = s.listAffectedRideIDs
	s.releaseSeat = s.releaseSeatTx
	s.tombstoneMessages = s.tombstoneMessagesDB
	s.tombstoneReports = s.tombstoneReportsDB
	s.deleteProfile = s.deleteProfileTx
	return s
}

func (s *PurgeService) PurgeAccount(ctx context.Context, userID uuid.UUID) error {
	var cleanupErrs []error

	// Phase 1: release every ride the user touches. Any request, pending
	// or approved, goes through the locked release transaction; deleting
	// request rows outside the ride lock would race a concurrent approval
	// of the same request.
	rideIDs, err := s.listRideIDs(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to list affected rides: %w", err)
	}

	if err := fanOut(ctx, s.concurrency, rideIDs, func(ctx context.Context, rideID uuid.UUID) error {
		if err := s.releaseSeat(rideID, userID); err != nil {
			return fmt.Errorf("ride %s: %w", rideID, err)
		}
		return nil
	}); err != nil {
		cleanupErrs = append(cleanupErrs, fmt.Errorf("seat cleanup: %w", err))
	}

	// Phases 2 and 3: anonymize authored content and reports.
	g := new(errgroup.Group)
	g.Go(func() error {
		if err := s.tombstoneMessages(ctx, userID); err != nil {
			return fmt.Errorf("message anonymization: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := s.tombstoneReports(ctx, userID); err != nil {
			return fmt.Errorf("report anonymization: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		cleanupErrs = append(cleanupErrs, err)
	}

	// Phase 4: profile and auth records. Runs regardless of earlier
	// failures; an account deletion must not strand the user.
	if err := s.deleteProfile(ctx, userID); err != nil {
		return errors.Join(append(cleanupErrs, err)...)
	}

	if s.registry != nil {
		s.registry.Stop(userID)
	}

	if len(cleanupErrs) > 0 {
		joinedErr := errors.Join(cleanupErrs...)
		slog.Error("account purge completed with failures",
			"action", "account_purge",
			"user_id", userID.String(),
			"error", joinedErr.Error(),
		)
		return fmt.Errorf("%w: %v", ErrPartialCleanup, joinedErr)
	}

	slog.Info("account purged", "action", "account_purge", "user_id", userID.String())
	return nil
}

// listAffectedRideIDs enumerates every ride the user holds a request or a
// joined-ride entry on. Both sources matter: a pending request has no
// joined-ride row, yet its deletion still has to serialize against the
// ride lock.
func (s *PurgeService) listAffectedRideIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var joined []uuid.UUID
	if err := s.db.WithContext(ctx).Model(&models.JoinedRide{}).
		Where("user_id = ?", userID).Pluck("ride_id", &joined).Error; err != nil {
		return nil, fmt.Errorf("failed to list joined rides: %w", err)
	}

	var requested []uuid.UUID
	if err := s.db.WithContext(ctx).Model(&models.RideRequest{}).
		Where("user_id = ?", userID).Pluck("ride_id", &requested).Error; err != nil {
		return nil, fmt.Errorf("failed to list requested rides: %w", err)
	}

	return dedupeRideIDs(joined, requested), nil
}

func dedupeRideIDs(lists ...[]uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{})
	var out []uuid.UUID
	for _, list := range lists {
		for _, id := range list {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

// releaseSeatTx is the same atomic release used by withdrawal: restore the
// seat iff the request is approved, then drop the request and index entry,
// all in one locked transaction per ride.
func (s *PurgeService) releaseSeatTx(rideID, userID uuid.UUID) error {
	return runSerialized(s.db, func(tx *gorm.DB) error {
		ride, err := lockRide(tx, rideID)
		if errors.Is(err, ErrRideNotFound) {
			// Ride already gone; stray rows are all that is left.
			if err := tx.Where("user_id = ? AND ride_id = ?", userID, rideID).
				Delete(&models.RideRequest{}).Error; err != nil {
				return fmt.Errorf("failed to delete request: %w", err)
			}
			return tx.Where("user_id = ? AND ride_id = ?", userID, rideID).
				Delete(&models.JoinedRide{}).Error
		}
		if err != nil {
			return err
		}

		var req models.RideRequest
		err = tx.Where("ride_id = ? AND user_id = ?", rideID, userID).First(&req).Error
		if err == nil {
			if delta := seatDeltaOnRemoval(req.Status); delta > 0 {
				if err := tx.Model(ride).Updates(map[string]interface{}{
					"seats_available": ride.SeatsAvailable + delta,
					"approved_count":  ride.ApprovedCount - delta,
				}).Error; err != nil {
					return fmt.Errorf("failed to restore seat: %w", err)
				}
			}
			if err := tx.Delete(&req).Error; err != nil {
				return fmt.Errorf("failed to delete request: %w", err)
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to read request: %w", err)
		}

		return tx.Where("user_id = ? AND ride_id = ?", userID, rideID).
			Delete(&models.JoinedRide{}).Error
	})
}

func (s *PurgeService) tombstoneMessagesDB(ctx context.Context, userID uuid.UUID) error {
	return s.db.WithContext(ctx).Model(&models.RideMessage{}).
		Where("sender_id = ?", userID).
		Updates(map[string]interface{}{
			"sender_id":   uuid.Nil,
			"sender_name": models.TombstoneName,
		}).Error
}

func (s *PurgeService) tombstoneReportsDB(ctx context.Context, userID uuid.UUID) error {
	return s.db.WithContext(ctx).Model(&models.Report{}).
		Where("reporter_id = ?", userID).
		Update("reporter_id", uuid.Nil).Error
}

func (s *PurgeService) deleteProfileTx(ctx context.Context, userID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.RefreshToken{}).Error; err != nil {
			return fmt.Errorf("failed to delete refresh tokens: %w", err)
		}
		if err := tx.Where("blocker_id = ? OR blocked_id = ?", userID, userID).
			Delete(&models.Block{}).Error; err != nil {
			return fmt.Errorf("failed to delete blocks: %w", err)
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.HiddenRide{}).Error; err != nil {
			return fmt.Errorf("failed to delete hidden rides: %w", err)
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.HiddenMessage{}).Error; err != nil {
			return fmt.Errorf("failed to delete hidden messages: %w", err)
		}
		if err := tx.Delete(&models.User{}, "id = ?", userID).Error; err != nil {
			return fmt.Errorf("failed to delete profile: %w", err)
		}
		return nil
	})
}
