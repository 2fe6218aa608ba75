package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/poolmate/poolmate-backend/internal/models"
	"github.com/poolmate/poolmate-backend/internal/safety"
)

func TestFilterRidesDropsDepartedRides(t *testing.T) {
	now := time.Now()
	upcoming := models.Ride{ID: uuid.New(), OwnerID: uuid.New(), DepartureTime: now.Add(time.Hour)}
	departed := models.Ride{ID: uuid.New(), OwnerID: uuid.New(), DepartureTime: now.Add(-time.Hour)}

	got := filterRides([]models.Ride{upcoming, departed}, safety.EmptySnapshot(), now)
	if len(got) != 1 || got[0].ID != upcoming.ID {
		t.Fatalf("filtered to %d rides, want only the upcoming one", len(got))
	}

	// The zero cutoff disables the time filter; Search controls its own
	// window.
	got = filterRides([]models.Ride{upcoming, departed}, safety.EmptySnapshot(), time.Time{})
	if len(got) != 2 {
		t.Fatalf("zero cutoff filtered to %d rides, want 2", len(got))
	}
}

func TestFilterRidesAppliesOverlay(t *testing.T) {
	now := time.Now()
	blockedOwner := uuid.New()
	visible := models.Ride{ID: uuid.New(), OwnerID: uuid.New(), DepartureTime: now.Add(time.Hour)}
	fromBlocked := models.Ride{ID: uuid.New(), OwnerID: blockedOwner, DepartureTime: now.Add(time.Hour)}
	hidden := models.Ride{ID: uuid.New(), OwnerID: uuid.New(), DepartureTime: now.Add(time.Hour)}

	snap := safety.EmptySnapshot()
	snap.BlockedUsers[blockedOwner] = struct{}{}
	snap.HiddenRides[hidden.ID] = struct{}{}

	got := filterRides([]models.Ride{visible, fromBlocked, hidden}, snap, now)
	if len(got) != 1 || got[0].ID != visible.ID {
		t.Fatalf("filtered to %d rides, want only the unblocked, unhidden one", len(got))
	}
}
