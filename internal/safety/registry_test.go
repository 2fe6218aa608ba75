package safety

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

// fakeLoader serves per-user snapshots from memory and records load calls.
type fakeLoader struct {
	mu    sync.Mutex
	snaps map[uuid.UUID]Snapshot
	fail  bool
	loads int
}

func newFakeLoader() *fakeLoader {
	return &fakeLoader{snaps: map[uuid.UUID]Snapshot{}}
}

func (f *fakeLoader) set(userID uuid.UUID, snap Snapshot) {
	f.mu.Lock()
	f.snaps[userID] = snap
	f.mu.Unlock()
}

func (f *fakeLoader) LoadOverlay(_ context.Context, userID uuid.UUID) (Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	if f.fail {
		return Snapshot{}, errors.New("store unavailable")
	}
	if snap, ok := f.snaps[userID]; ok {
		return snap, nil
	}
	return EmptySnapshot(), nil
}

func snapshotWithBlock(blocked uuid.UUID) Snapshot {
	snap := EmptySnapshot()
	snap.BlockedUsers[blocked] = struct{}{}
	return snap
}

func TestStartLoadsInitialSnapshot(t *testing.T) {
	loader := newFakeLoader()
	user := uuid.New()
	blocked := uuid.New()
	loader.set(user, snapshotWithBlock(blocked))

	r := NewRegistry(loader, time.Hour)
	defer r.StopAll()
	r.Start(context.Background(), user)

	snap := r.Snapshot(context.Background(), user)
	if !snap.UserBlocked(blocked) {
		t.Fatal("snapshot right after Start should already carry the stored block")
	}
	if snap.UserBlocked(uuid.New()) {
		t.Fatal("unrelated user should not read as blocked")
	}
}

func TestInvalidateRefreshesSnapshot(t *testing.T) {
	loader := newFakeLoader()
	user := uuid.New()
	r := NewRegistry(loader, time.Hour)
	defer r.StopAll()
	r.Start(context.Background(), user)

	if snap := r.Snapshot(context.Background(), user); len(snap.BlockedUsers) != 0 {
		t.Fatal("fresh session should start with an empty overlay")
	}

	// A new block lands in the store; Invalidate must surface it without
	// waiting for the hour-long ticker.
	blocked := uuid.New()
	loader.set(user, snapshotWithBlock(blocked))
	r.Invalidate(user)

	deadline := time.After(2 * time.Second)
	for {
		if r.Snapshot(context.Background(), user).UserBlocked(blocked) {
			return
		}
		select {
		case <-deadline:
			t.Fatal("invalidated snapshot never picked up the new block")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestStopClearsSessionState(t *testing.T) {
	loader := newFakeLoader()
	user := uuid.New()
	blocked := uuid.New()
	loader.set(user, snapshotWithBlock(blocked))

	r := NewRegistry(loader, time.Hour)
	r.Start(context.Background(), user)
	r.Stop(user)

	// The next account signing in on this process must not inherit the
	// previous user's sets. Snapshot restarts a session on demand, so wipe
	// the store first to observe what Stop left behind.
	loader.set(user, EmptySnapshot())
	snap := r.Snapshot(context.Background(), user)
	if snap.UserBlocked(blocked) {
		t.Fatal("Stop must clear the overlay, not leak it to the next session")
	}
	r.StopAll()
}

func TestStopIsIdempotent(t *testing.T) {
	r := NewRegistry(newFakeLoader(), time.Hour)
	user := uuid.New()
	r.Start(context.Background(), user)
	r.Stop(user)
	r.Stop(user) // second stop must not block or panic
	r.StopAll()
}

func TestSnapshotStartsSessionOnDemand(t *testing.T) {
	loader := newFakeLoader()
	user := uuid.New()
	blocked := uuid.New()
	loader.set(user, snapshotWithBlock(blocked))

	// No Start call: a valid token outliving a process restart still gets
	// a populated overlay on first read.
	r := NewRegistry(loader, time.Hour)
	defer r.StopAll()
	snap := r.Snapshot(context.Background(), user)
	if !snap.UserBlocked(blocked) {
		t.Fatal("on-demand session should load the overlay before returning")
	}
}

func TestLoadFailureKeepsStaleSnapshot(t *testing.T) {
	loader := newFakeLoader()
	user := uuid.New()
	blocked := uuid.New()
	loader.set(user, snapshotWithBlock(blocked))

	r := NewRegistry(loader, time.Hour)
	defer r.StopAll()
	r.Start(context.Background(), user)

	loader.mu.Lock()
	loader.fail = true
	loader.mu.Unlock()
	r.Invalidate(user)

	// Give the refresh a moment to run and fail.
	time.Sleep(50 * time.Millisecond)
	if !r.Snapshot(context.Background(), user).UserBlocked(blocked) {
		t.Fatal("failed refresh must keep serving the previous snapshot")
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	loader := newFakeLoader()
	alice := uuid.New()
	bob := uuid.New()
	blockedByAlice := uuid.New()
	loader.set(alice, snapshotWithBlock(blockedByAlice))

	r := NewRegistry(loader, time.Hour)
	defer r.StopAll()
	r.Start(context.Background(), alice)
	r.Start(context.Background(), bob)

	if !r.Snapshot(context.Background(), alice).UserBlocked(blockedByAlice) {
		t.Fatal("alice should see her own block")
	}
	if r.Snapshot(context.Background(), bob).UserBlocked(blockedByAlice) {
		t.Fatal("bob must not see alice's block")
	}
}

func TestConcurrentSnapshotAndInvalidate(t *testing.T) {
	loader := newFakeLoader()
	user := uuid.New()
	r := NewRegistry(loader, 10*time.Millisecond)
	defer r.StopAll()
	r.Start(context.Background(), user)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = r.Snapshot(context.Background(), user)
				r.Invalidate(user)
			}
		}()
	}
	wg.Wait()
}
