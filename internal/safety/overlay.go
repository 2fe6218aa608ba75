package safety

import (
	"context"

	"github.com/google/uuid"
)

// Snapshot is one user's view of blocked users and hidden content at a
// point in time. It is immutable once published; read paths intersect
// candidate results against it without further round-trips.
type Snapshot struct {
	BlockedUsers   map[uuid.UUID]struct{}
	HiddenRides    map[uuid.UUID]struct{}
	HiddenMessages map[uuid.UUID]map[uuid.UUID]struct{} // ride ID -> message IDs
}

func EmptySnapshot() Snapshot {
	return Snapshot{
		BlockedUsers:   map[uuid.UUID]struct{}{},
		HiddenRides:    map[uuid.UUID]struct{}{},
		HiddenMessages: map[uuid.UUID]map[uuid.UUID]struct{}{},
	}
}

func (s Snapshot) UserBlocked(id uuid.UUID) bool {
	_, ok := s.BlockedUsers[id]
	return ok
}

func (s Snapshot) RideHidden(id uuid.UUID) bool {
	_, ok := s.HiddenRides[id]
	return ok
}

func (s Snapshot) MessageHidden(rideID, messageID uuid.UUID) bool {
	msgs, ok := s.HiddenMessages[rideID]
	if !ok {
		return false
	}
	_, ok = msgs[messageID]
	return ok
}

// Loader produces the current overlay snapshot for a user from the
// underlying store.
type Loader interface {
	LoadOverlay(ctx context.Context, userID uuid.UUID) (Snapshot, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, userID uuid.UUID) (Snapshot, error)

func (f LoaderFunc) LoadOverlay(ctx context.Context, userID uuid.UUID) (Snapshot, error) {
	return f(ctx, userID)
}
