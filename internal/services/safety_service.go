package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/poolmate/poolmate-backend/internal/models"
	"github.com/poolmate/poolmate-backend/internal/safety"
	"gorm.io/gorm"
)

// SafetyService owns blocks, per-user hides, and moderation reports, and
// implements safety.Loader for the overlay registry. Writes invalidate the
// acting user's overlay so the action lands within one refresh cycle.
type SafetyService struct {
	db       *gorm.DB
	registry *safety.Registry
}

func NewSafetyService(db *gorm.DB) *SafetyService {
	return &SafetyService{db: db}
}

// SetRegistry wires the overlay registry after construction; the registry
// itself needs this service as its loader.
func (s *SafetyService) SetRegistry(r *safety.Registry) {
	s.registry = r
}

func (s *SafetyService) invalidate(userID uuid.UUID) {
	if s.registry != nil {
		s.registry.Invalidate(userID)
	}
}

// LoadOverlay builds the user's current overlay snapshot from the store.
func (s *SafetyService) LoadOverlay(ctx context.Context, userID uuid.UUID) (safety.Snapshot, error) {
	snap := safety.EmptySnapshot()

	var blocks []models.Block
	if err := s.db.WithContext(ctx).Where("blocker_id = ?", userID).Find(&blocks).Error; err != nil {
		return safety.Snapshot{}, fmt.Errorf("failed to load blocks: %w", err)
	}
	for _, b := range blocks {
		snap.BlockedUsers[b.BlockedID] = struct{}{}
	}

	var hiddenRides []models.HiddenRide
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&hiddenRides).Error; err != nil {
		return safety.Snapshot{}, fmt.Errorf("failed to load hidden rides: %w", err)
	}
	for _, h := range hiddenRides {
		snap.HiddenRides[h.RideID] = struct{}{}
	}

	var hiddenMsgs []models.HiddenMessage
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&hiddenMsgs).Error; err != nil {
		return safety.Snapshot{}, fmt.Errorf("failed to load hidden messages: %w", err)
	}
	for _, h := range hiddenMsgs {
		if snap.HiddenMessages[h.RideID] == nil {
			snap.HiddenMessages[h.RideID] = map[uuid.UUID]struct{}{}
		}
		snap.HiddenMessages[h.RideID][h.MessageID] = struct{}{}
	}

	return snap, nil
}

// BlockUser blocks blockedID for blockerID only; never the reverse.
func (s *SafetyService) BlockUser(blockerID, blockedID uuid.UUID, reason string) error {
	if blockerID == blockedID {
		return ErrSelfBlock
	}

	var existing models.Block
	err := s.db.Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).First(&existing).Error
	if err == nil {
		return ErrAlreadyBlocked
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check existing block: %w", err)
	}

	block := models.Block{
		ID:        uuid.New(),
		BlockerID: blockerID,
		BlockedID: blockedID,
		Reason:    reason,
	}
	if err := s.db.Create(&block).Error; err != nil {
		return fmt.Errorf("failed to create block: %w", err)
	}

	// Blocking is also a moderation signal.
	report := models.Report{
		ID:          uuid.New(),
		ReporterID:  blockerID,
		ContentType: "user",
		ContentID:   blockedID.String(),
		Reason:      reason,
		Status:      "pending",
	}
	if err := s.db.Create(&report).Error; err != nil {
		return fmt.Errorf("failed to record block report: %w", err)
	}

	s.invalidate(blockerID)
	return nil
}

func (s *SafetyService) UnblockUser(blockerID, blockedID uuid.UUID) error {
	err := s.db.Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Delete(&models.Block{}).Error
	if err != nil {
		return fmt.Errorf("failed to unblock: %w", err)
	}
	s.invalidate(blockerID)
	return nil
}

func (s *SafetyService) ListBlocked(blockerID uuid.UUID) ([]models.Block, error) {
	var blocks []models.Block
	if err := s.db.Where("blocker_id = ?", blockerID).Find(&blocks).Error; err != nil {
		return nil, fmt.Errorf("failed to list blocks: %w", err)
	}
	return blocks, nil
}

// ReportRide files a moderation report and hides the ride for the
// reporting user only. The hide is effective on the reporter's next
// overlay refresh regardless of moderation outcome.
func (s *SafetyService) ReportRide(reporterID, rideID uuid.UUID, reason string) error {
	var ride models.Ride
	if err := s.db.First(&ride, "id = ?", rideID).Error; err != nil {
		return ErrRideNotFound
	}

	report := models.Report{
		ID:          uuid.New(),
		ReporterID:  reporterID,
		ContentType: "ride",
		ContentID:   rideID.String(),
		Reason:      reason,
		Status:      "pending",
	}
	if err := s.db.Create(&report).Error; err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}

	hide := models.HiddenRide{
		ID:     uuid.New(),
		UserID: reporterID,
		RideID: rideID,
		Reason: reason,
	}
	if err := s.db.Create(&hide).Error; err != nil {
		return fmt.Errorf("failed to hide ride: %w", err)
	}

	s.invalidate(reporterID)
	return nil
}

// ReportMessage files a moderation report and hides one message for the
// reporting user only.
func (s *SafetyService) ReportMessage(reporterID, rideID, messageID uuid.UUID, reason string) error {
	var msg models.RideMessage
	if err := s.db.Where("id = ? AND ride_id = ?", messageID, rideID).First(&msg).Error; err != nil {
		return ErrMessageNotFound
	}

	report := models.Report{
		ID:          uuid.New(),
		ReporterID:  reporterID,
		ContentType: "message",
		ContentID:   messageID.String(),
		Reason:      reason,
		Status:      "pending",
	}
	if err := s.db.Create(&report).Error; err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}

	hide := models.HiddenMessage{
		ID:        uuid.New(),
		UserID:    reporterID,
		RideID:    rideID,
		MessageID: messageID,
		Reason:    reason,
	}
	if err := s.db.Create(&hide).Error; err != nil {
		return fmt.Errorf("failed to hide message: %w", err)
	}

	s.invalidate(reporterID)
	return nil
}

func (s *SafetyService) ListReports(status string, limit, offset int) ([]models.Report, int64, error) {
	var reports []models.Report
	var total int64

	query := s.db.Model(&models.Report{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	query.Count(&total)

	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&reports).Error; err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}

// ActionReport resolves a report; actioning can additionally set the
// global hidden flag on the reported content row, which every user's read
// path then filters independently of per-user hides.
func (s *SafetyService) ActionReport(reportID uuid.UUID, status, adminNote string, hideContent bool) error {
	validStatuses := map[string]bool{"reviewed": true, "actioned": true, "dismissed": true}
	if !validStatuses[status] {
		return errors.New("invalid status: must be reviewed, actioned, or dismissed")
	}

	var report models.Report
	if err := s.db.First(&report, "id = ?", reportID).Error; err != nil {
		return ErrReportNotFound
	}

	result := s.db.Model(&report).Updates(map[string]interface{}{
		"status":     status,
		"admin_note": adminNote,
	})
	if result.Error != nil {
		return result.Error
	}

	if !hideContent {
		return nil
	}
	contentID, err := uuid.Parse(report.ContentID)
	if err != nil {
		return fmt.Errorf("%w: report content id %q", ErrMalformedRecord, report.ContentID)
	}
	switch report.ContentType {
	case "ride":
		return s.db.Model(&models.Ride{}).Where("id = ?", contentID).
			Update("hidden", true).Error
	case "message":
		return s.db.Model(&models.RideMessage{}).Where("id = ?", contentID).
			Update("hidden", true).Error
	}
	return nil
}
