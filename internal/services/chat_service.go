package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/poolmate/poolmate-backend/internal/models"
	"github.com/poolmate/poolmate-backend/internal/safety"
	"github.com/poolmate/poolmate-backend/internal/session"
	"gorm.io/gorm"
)

type ChatService struct {
	db     *gorm.DB
	filter *ContentFilter
}

func NewChatService(db *gorm.DB, filter *ContentFilter) *ChatService {
	return &ChatService{db: db, filter: filter}
}

// Send posts a message to a ride's chat. Only the ride owner and approved
// riders may post; content is screened by the filter first.
func (s *ChatService) Send(ident session.Identity, rideID uuid.UUID, text string) (*models.RideMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("message text is required")
	}
	if ok, reason := s.filter.Check(text); !ok {
		return nil, errors.New(s.filter.RejectionMessage(reason))
	}

	var ride models.Ride
	if err := s.db.First(&ride, "id = ?", rideID).Error; err != nil {
		return nil, ErrRideNotFound
	}

	if ride.OwnerID != ident.UserID {
		var joined models.JoinedRide
		err := s.db.Where("user_id = ? AND ride_id = ?", ident.UserID, rideID).First(&joined).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotParticipant
		}
		if err != nil {
			return nil, fmt.Errorf("failed to check membership: %w", err)
		}
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", ident.UserID).Error; err != nil {
		return nil, ErrUserNotFound
	}

	msg := models.RideMessage{
		ID:         uuid.New(),
		RideID:     rideID,
		SenderID:   ident.UserID,
		SenderName: user.DisplayName,
		Text:       text,
	}
	if err := s.db.Create(&msg).Error; err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}
	return &msg, nil
}

// List returns a ride's chat in chronological order, filtered through the
// caller's overlay (blocked senders, per-user hidden messages) and the
// global moderation hide flag.
func (s *ChatService) List(overlay safety.Snapshot, rideID uuid.UUID) ([]models.RideMessage, error) {
	var messages []models.RideMessage
	err := s.db.Where("ride_id = ? AND hidden = false", rideID).
		Order("created_at ASC").Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	out := make([]models.RideMessage, 0, len(messages))
	for _, m := range messages {
		if overlay.UserBlocked(m.SenderID) || overlay.MessageHidden(rideID, m.ID) {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}
