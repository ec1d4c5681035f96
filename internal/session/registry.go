package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"oneonone/internal/config"
	"oneonone/internal/metrics"
	"oneonone/internal/models"
	"oneonone/internal/store"
)

// Registry is the process-wide map of live rooms. It is constructed by the
// server's startup sequence and owns every room for its whole lifetime;
// independent sessions never contend beyond the map lock.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Room

	cache    *store.NotesCache
	sessions *store.SessionRepository
	log      *zap.Logger

	debounce   time.Duration
	staleAfter time.Duration
	cacheTTL   time.Duration
}

func NewRegistry(cache *store.NotesCache, sessions *store.SessionRepository, log *zap.Logger, cfg *config.Config) *Registry {
	return &Registry{
		rooms:      make(map[string]*Room),
		cache:      cache,
		sessions:   sessions,
		log:        log,
		debounce:   cfg.NotesDebounce,
		staleAfter: cfg.RoomStaleness,
		cacheTTL:   cfg.NotesCacheTTL,
	}
}

// GetOrCreate returns the live room for the session record, creating and
// hydrating it on first touch. Concurrent first connections from both roles
// always land in the same room; the loser of the insert race blocks on the
// hydration the winner started.
func (reg *Registry) GetOrCreate(ctx context.Context, rec *models.Session) *Room {
	reg.mu.Lock()
	room, ok := reg.rooms[rec.SessionID]
	if !ok {
		room = newRoom(rec, reg)
		reg.rooms[rec.SessionID] = room
	}
	reg.mu.Unlock()

	if !ok {
		metrics.RoomOpened()
	}
	room.hydrate(ctx)
	return room
}

// Join resolves the live room for the session record and binds the client
// into its role slot. A room torn down between resolution and attach rejects
// the bind, so the loop re-resolves and lands in a fresh room.
func (reg *Registry) Join(ctx context.Context, rec *models.Session, c *Client) *Room {
	for {
		room := reg.GetOrCreate(ctx, rec)
		if room.Attach(c) {
			return room
		}
	}
}

func (reg *Registry) Get(sessionID string) (*Room, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	room, ok := reg.rooms[sessionID]
	return room, ok
}

// Remove drops a room from the map without flushing. Idempotent.
func (reg *Registry) Remove(sessionID string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	delete(reg.rooms, sessionID)
}

func (reg *Registry) Len() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.rooms)
}

// ForceCleanup tears a room down unconditionally, disconnecting any live
// clients. The room is closed and taken out of the map under the map lock,
// which makes concurrent invocations idempotent; one final flush then runs
// synchronously.
func (reg *Registry) ForceCleanup(ctx context.Context, sessionID string) {
	reg.mu.Lock()
	room, ok := reg.rooms[sessionID]
	var content string
	if ok {
		delete(reg.rooms, sessionID)
		content = room.shutdownSnapshot()
	}
	reg.mu.Unlock()
	if !ok {
		return
	}

	metrics.RoomClosed()
	reg.writeThrough(ctx, sessionID, content)
	reg.log.Info("room cleaned up", zap.String("sessionId", sessionID))
}

// CleanupIfIdle tears a room down only when it has no live connections at
// the moment of the check. The check, the closed mark, and the registry
// removal happen under the map lock, so a racing reconnect either lands
// first and keeps the room registered, or finds the room closed and joins
// a fresh one.
func (reg *Registry) CleanupIfIdle(ctx context.Context, sessionID string) bool {
	reg.mu.Lock()
	room, ok := reg.rooms[sessionID]
	if !ok {
		reg.mu.Unlock()
		return false
	}
	content, idle := room.closeIfIdle()
	if !idle {
		reg.mu.Unlock()
		return false
	}
	delete(reg.rooms, sessionID)
	reg.mu.Unlock()

	metrics.RoomClosed()
	reg.writeThrough(ctx, sessionID, content)
	reg.log.Info("room cleaned up", zap.String("sessionId", sessionID))
	return true
}

// Shutdown force-cleans every live room, flushing each one.
func (reg *Registry) Shutdown(ctx context.Context) {
	reg.mu.RLock()
	ids := make([]string, 0, len(reg.rooms))
	for id := range reg.rooms {
		ids = append(ids, id)
	}
	reg.mu.RUnlock()

	for _, id := range ids {
		reg.ForceCleanup(ctx, id)
	}
}

// flush is the debounce callback. The room is re-resolved by id: if it was
// torn down while the timer was pending, the final cleanup flush already
// covered it.
func (reg *Registry) flush(ctx context.Context, sessionID string) {
	room, ok := reg.Get(sessionID)
	if !ok {
		return
	}
	content := room.takeFlushSnapshot()
	reg.writeThrough(ctx, sessionID, content)
}

// staleCheck is the staleness-timer callback. The connection count is
// re-checked at fire time; a reconnect during the wait leaves the room alone.
func (reg *Registry) staleCheck(sessionID string) {
	room, ok := reg.Get(sessionID)
	if !ok {
		return
	}
	if room.clearStaleTimerAndCount() > 0 {
		return
	}
	reg.CleanupIfIdle(context.Background(), sessionID)
}

// writeThrough pushes a notes snapshot to both sinks. Failures are logged
// and swallowed; the in-memory room stays the source of truth until the next
// flush succeeds.
func (reg *Registry) writeThrough(ctx context.Context, sessionID, content string) {
	metrics.FlushAttempted()
	if err := reg.cache.Set(ctx, sessionID, content, reg.cacheTTL); err != nil {
		metrics.FlushFailed()
		reg.log.Error("notes cache write failed", zap.String("sessionId", sessionID), zap.Error(err))
	}
	if err := reg.sessions.UpdateNotes(sessionID, content); err != nil {
		metrics.FlushFailed()
		reg.log.Error("durable notes write failed", zap.String("sessionId", sessionID), zap.Error(err))
	}
}
