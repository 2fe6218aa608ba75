package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
)

// fakePurge wires a PurgeService whose phases record their execution order
// instead of touching a database.
type fakePurge struct {
	svc *PurgeService

	mu       sync.Mutex
	events   []string
	released []uuid.UUID
}

func newFakePurge(rideIDs []uuid.UUID) *fakePurge {
	f := &fakePurge{}
	f.svc = &PurgeService{
		concurrency: 4,
		listRideIDs: func(_ context.Context, _ uuid.UUID) ([]uuid.UUID, error) {
			return rideIDs, nil
		},
		releaseSeat: func(rideID, _ uuid.UUID) error {
			f.record("release", rideID)
			return nil
		},
		tombstoneMessages: func(_ context.Context, _ uuid.UUID) error {
			f.record("messages", uuid.Nil)
			return nil
		},
		tombstoneReports: func(_ context.Context, _ uuid.UUID) error {
			f.record("reports", uuid.Nil)
			return nil
		},
		deleteProfile: func(_ context.Context, _ uuid.UUID) error {
			f.record("profile", uuid.Nil)
			return nil
		},
	}
	return f
}

func (f *fakePurge) record(event string, rideID uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	if event == "release" {
		f.released = append(f.released, rideID)
	}
}

func (f *fakePurge) eventIndex(event string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, e := range f.events {
		if e == event {
			return i
		}
	}
	return -1
}

func (f *fakePurge) lastEventIndex(event string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	last := -1
	for i, e := range f.events {
		if e == event {
			last = i
		}
	}
	return last
}

func TestPurgeReleasesEveryAffectedRide(t *testing.T) {
	// Three rides: one where the user holds a seat, one where the request
	// is still pending, one rejected. All of them go through the locked
	// release path; none is cleaned up by any other means.
	rideIDs := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	f := newFakePurge(rideIDs)

	if err := f.svc.PurgeAccount(context.Background(), uuid.New()); err != nil {
		t.Fatalf("PurgeAccount = %v, want nil", err)
	}

	if len(f.released) != len(rideIDs) {
		t.Fatalf("released %d rides, want %d", len(f.released), len(rideIDs))
	}
	want := map[uuid.UUID]bool{}
	for _, id := range rideIDs {
		want[id] = true
	}
	for _, id := range f.released {
		if !want[id] {
			t.Fatalf("released unexpected ride %s", id)
		}
	}
}

func TestPurgePhaseOrdering(t *testing.T) {
	f := newFakePurge([]uuid.UUID{uuid.New(), uuid.New()})

	if err := f.svc.PurgeAccount(context.Background(), uuid.New()); err != nil {
		t.Fatalf("PurgeAccount = %v, want nil", err)
	}

	profile := f.eventIndex("profile")
	if profile == -1 {
		t.Fatal("profile deletion never ran")
	}
	if last := f.lastEventIndex("release"); last > profile {
		t.Fatal("profile deletion ran before seat cleanup finished")
	}
	if f.eventIndex("messages") > profile || f.eventIndex("reports") > profile {
		t.Fatal("profile deletion ran before tombstoning finished")
	}
	if f.eventIndex("messages") < f.lastEventIndex("release") ||
		f.eventIndex("reports") < f.lastEventIndex("release") {
		t.Fatal("tombstoning started before the seat-cleanup barrier")
	}
}

func TestPurgeFailedReleaseStillDeletesProfile(t *testing.T) {
	rideIDs := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	badRide := rideIDs[1]
	errLocked := errors.New("could not obtain lock")

	f := newFakePurge(rideIDs)
	f.svc.releaseSeat = func(rideID, _ uuid.UUID) error {
		f.record("release", rideID)
		if rideID == badRide {
			return errLocked
		}
		return nil
	}

	err := f.svc.PurgeAccount(context.Background(), uuid.New())
	if !errors.Is(err, ErrPartialCleanup) {
		t.Fatalf("PurgeAccount = %v, want ErrPartialCleanup", err)
	}

	// The failed ride must not stop its siblings or the later phases.
	if len(f.released) != len(rideIDs) {
		t.Fatalf("released %d rides, want all %d attempted", len(f.released), len(rideIDs))
	}
	if f.eventIndex("profile") == -1 {
		t.Fatal("profile deletion must run despite cleanup failures")
	}
	if f.eventIndex("messages") == -1 || f.eventIndex("reports") == -1 {
		t.Fatal("tombstoning must run despite cleanup failures")
	}
}

func TestPurgeSurfacesJoinedFailures(t *testing.T) {
	errSeat := errors.New("seat release failed")
	errReports := errors.New("report update failed")

	f := newFakePurge([]uuid.UUID{uuid.New()})
	f.svc.releaseSeat = func(rideID, _ uuid.UUID) error {
		f.record("release", rideID)
		return errSeat
	}
	f.svc.tombstoneReports = func(_ context.Context, _ uuid.UUID) error {
		f.record("reports", uuid.Nil)
		return errReports
	}

	err := f.svc.PurgeAccount(context.Background(), uuid.New())
	if !errors.Is(err, ErrPartialCleanup) {
		t.Fatalf("PurgeAccount = %v, want ErrPartialCleanup", err)
	}
	// Both failures must be visible in the wrapped aggregate.
	if msg := err.Error(); !strings.Contains(msg, errSeat.Error()) || !strings.Contains(msg, errReports.Error()) {
		t.Fatalf("aggregate %q missing a phase failure", msg)
	}
}

func TestPurgeProfileFailureIsNotPartialCleanup(t *testing.T) {
	errProfile := errors.New("profile delete failed")
	f := newFakePurge(nil)
	f.svc.deleteProfile = func(_ context.Context, _ uuid.UUID) error {
		return errProfile
	}

	err := f.svc.PurgeAccount(context.Background(), uuid.New())
	if !errors.Is(err, errProfile) {
		t.Fatalf("PurgeAccount = %v, want the profile failure", err)
	}
	if errors.Is(err, ErrPartialCleanup) {
		t.Fatal("a failed deletion must not report as completed-with-cleanup-pending")
	}
}

func TestDedupeRideIDs(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	got := dedupeRideIDs([]uuid.UUID{a, b}, []uuid.UUID{b, c, a})
	if len(got) != 3 {
		t.Fatalf("dedupe returned %d ids, want 3", len(got))
	}
	seen := map[uuid.UUID]int{}
	for _, id := range got {
		seen[id]++
	}
	for _, id := range []uuid.UUID{a, b, c} {
		if seen[id] != 1 {
			t.Fatalf("id %s appears %d times, want exactly once", id, seen[id])
		}
	}
}
