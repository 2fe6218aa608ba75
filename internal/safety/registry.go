package safety

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Registry holds one overlay session per signed-in user. A session keeps a
// current Snapshot, refreshed on a fixed interval and immediately after
// Invalidate. Stop tears the session down and clears its sets so nothing
// leaks across account switches.
type Registry struct {
	loader   Loader
	interval time.Duration

	mu       sync.Mutex
	sessions map[uuid.UUID]*overlaySession
}

type overlaySession struct {
	mu       sync.RWMutex
	snapshot Snapshot

	refresh chan struct{}
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewRegistry(loader Loader, interval time.Duration) *Registry {
	return &Registry{
		loader:   loader,
		interval: interval,
		sessions: make(map[uuid.UUID]*overlaySession),
	}
}

// Start begins the overlay subscription for a user. The initial load is
// synchronous so the first read after sign-in already sees current blocks.
// Starting an already-started session is a no-op.
func (r *Registry) Start(ctx context.Context, userID uuid.UUID) {
	r.mu.Lock()
	if _, ok := r.sessions[userID]; ok {
		r.mu.Unlock()
		return
	}

	sessCtx, cancel := context.WithCancel(context.Background())
	sess := &overlaySession{
		snapshot: EmptySnapshot(),
		refresh:  make(chan struct{}, 1),
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	r.sessions[userID] = sess
	r.mu.Unlock()

	r.load(ctx, userID, sess)
	go r.run(sessCtx, userID, sess)
}

// Stop ends the subscription and clears the user's sets.
func (r *Registry) Stop(userID uuid.UUID) {
	r.mu.Lock()
	sess, ok := r.sessions[userID]
	if ok {
		delete(r.sessions, userID)
	}
	r.mu.Unlock()
	if !ok {
		return
	}
	sess.cancel()
	<-sess.done
	sess.mu.Lock()
	sess.snapshot = EmptySnapshot()
	sess.mu.Unlock()
}

// StopAll tears down every session; called on server shutdown.
func (r *Registry) StopAll() {
	r.mu.Lock()
	ids := make([]uuid.UUID, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	r.mu.Unlock()
	for _, id := range ids {
		r.Stop(id)
	}
}

// Invalidate schedules an immediate refresh of the user's snapshot; the
// user's own block/hide writes call this so the action is visible within
// one refresh cycle. No-op for users without a session.
func (r *Registry) Invalidate(userID uuid.UUID) {
	r.mu.Lock()
	sess, ok := r.sessions[userID]
	r.mu.Unlock()
	if !ok {
		return
	}
	select {
	case sess.refresh <- struct{}{}:
	default:
	}
}

// Snapshot returns the user's current overlay. Users without a running
// session (token outlived a server restart) get one started on demand.
func (r *Registry) Snapshot(ctx context.Context, userID uuid.UUID) Snapshot {
	r.mu.Lock()
	sess, ok := r.sessions[userID]
	r.mu.Unlock()
	if !ok {
		r.Start(ctx, userID)
		r.mu.Lock()
		sess, ok = r.sessions[userID]
		r.mu.Unlock()
		if !ok {
			return EmptySnapshot()
		}
	}
	sess.mu.RLock()
	defer sess.mu.RUnlock()
	return sess.snapshot
}

func (r *Registry) run(ctx context.Context, userID uuid.UUID, sess *overlaySession) {
	defer close(sess.done)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.load(ctx, userID, sess)
		case <-sess.refresh:
			r.load(ctx, userID, sess)
		}
	}
}

func (r *Registry) load(ctx context.Context, userID uuid.UUID, sess *overlaySession) {
	snap, err := r.loader.LoadOverlay(ctx, userID)
	if err != nil {
		// Keep serving the previous snapshot; a stale overlay beats an
		// empty one re-exposing blocked content.
		slog.Warn("overlay refresh failed", "user_id", userID, "error", err)
		return
	}
	sess.mu.Lock()
	sess.snapshot = snap
	sess.mu.Unlock()
}
