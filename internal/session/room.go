package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"oneonone/internal/models"
)

// Room holds the authoritative live notes buffer and the two role slots for
// one session. All mutation goes through its mutex; timer callbacks re-enter
// through the registry by session id so a torn-down room is never touched.
type Room struct {
	SessionID  string
	OrgID      string
	ManagerID  string
	EmployeeID string

	registry *Registry

	mu           sync.Mutex
	closed       bool
	content      string
	manager      *Client
	employee     *Client
	persistTimer *time.Timer
	staleTimer   *time.Timer

	hydrateOnce sync.Once
}

func newRoom(rec *models.Session, registry *Registry) *Room {
	return &Room{
		SessionID:  rec.SessionID,
		OrgID:      rec.OrgID,
		ManagerID:  rec.ManagerID,
		EmployeeID: rec.EmployeeID,
		registry:   registry,
		content:    rec.Notes,
	}
}

// hydrate loads the freshest notes snapshot exactly once per room life.
// The cache wins over the durable notes the room was constructed with; a
// cache read failure keeps the durable value.
func (r *Room) hydrate(ctx context.Context) {
	r.hydrateOnce.Do(func() {
		cached, ok, err := r.registry.cache.Get(ctx, r.SessionID)
		if err != nil {
			r.registry.log.Error("notes cache read failed, using durable notes",
				zap.String("sessionId", r.SessionID), zap.Error(err))
			return
		}
		if ok {
			r.mu.Lock()
			r.content = cached
			r.mu.Unlock()
		}
	})
}

// Attach binds c into its role slot, evicting and closing any incumbent,
// cancels a pending staleness timer, then pushes the current content and a
// presence update. It reports false when the room was already torn down;
// the caller must re-resolve through the registry and try again.
func (r *Room) Attach(c *Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return false
	}

	switch c.Role {
	case models.RoleManager:
		if r.manager != nil && r.manager != c {
			r.manager.Send(models.NewError("replaced by new connection"))
			r.manager.Close()
		}
		r.manager = c
	case models.RoleEmployee:
		if r.employee != nil && r.employee != c {
			r.employee.Send(models.NewError("replaced by new connection"))
			r.employee.Close()
		}
		r.employee = c
	}

	if r.staleTimer != nil {
		r.staleTimer.Stop()
		r.staleTimer = nil
	}

	c.Send(models.NewContentSync(r.SessionID, r.content))
	r.broadcastPresenceLocked()
	return true
}

// Detach clears c's slot if it still occupies one. With one connection left
// it arms the staleness timer; with none left the caller must run the idle
// cleanup. A client that was already evicted by a replacement is a no-op.
func (r *Room) Detach(c *Client) (removed bool, remaining int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch {
	case r.manager == c:
		r.manager = nil
		removed = true
	case r.employee == c:
		r.employee = nil
		removed = true
	default:
		return false, r.liveCountLocked()
	}

	remaining = r.liveCountLocked()
	if r.closed {
		return removed, remaining
	}
	if remaining == 1 && r.staleTimer == nil {
		registry, sessionID := r.registry, r.SessionID
		r.staleTimer = time.AfterFunc(registry.staleAfter, func() {
			registry.staleCheck(sessionID)
		})
	}
	if remaining > 0 {
		r.broadcastPresenceLocked()
	}
	return removed, remaining
}

// UpdateContent replaces the live buffer with an accepted manager edit,
// relays it to the employee slot, and arms the persistence debounce. The
// manager already holds the authoritative content locally.
func (r *Room) UpdateContent(content string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.content = content
	if r.employee != nil {
		r.employee.Send(models.NewContentSync(r.SessionID, content))
	}
	if r.persistTimer == nil {
		registry, sessionID := r.registry, r.SessionID
		r.persistTimer = time.AfterFunc(registry.debounce, func() {
			registry.flush(context.Background(), sessionID)
		})
	}
}

// RelayTo forwards a frame to the given role's slot, if occupied.
func (r *Room) RelayTo(role models.Role, frame any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c := r.slotLocked(role); c != nil {
		c.Send(frame)
	}
}

// RelayOpposite forwards a frame to the peer of the sending role.
func (r *Room) RelayOpposite(from models.Role, frame any) {
	if from == models.RoleManager {
		r.RelayTo(models.RoleEmployee, frame)
		return
	}
	r.RelayTo(models.RoleManager, frame)
}

func (r *Room) Content() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.content
}

func (r *Room) Presence() (managerConnected, employeeConnected bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.manager != nil, r.employee != nil
}

func (r *Room) slotLocked(role models.Role) *Client {
	if role == models.RoleManager {
		return r.manager
	}
	return r.employee
}

func (r *Room) liveCountLocked() int {
	count := 0
	if r.manager != nil {
		count++
	}
	if r.employee != nil {
		count++
	}
	return count
}

func (r *Room) broadcastPresenceLocked() {
	frame := models.NewPresence(r.manager != nil, r.employee != nil)
	if r.manager != nil {
		r.manager.Send(frame)
	}
	if r.employee != nil {
		r.employee.Send(frame)
	}
}

// takeFlushSnapshot consumes the pending debounce and returns the content to
// persist.
func (r *Room) takeFlushSnapshot() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.persistTimer != nil {
		r.persistTimer.Stop()
		r.persistTimer = nil
	}
	return r.content
}

// shutdownSnapshot marks the room closed, disconnects any live clients,
// cancels both timers, and returns the content for the final flush. Repeated
// cancellation of an already-stopped timer is harmless.
func (r *Room) shutdownSnapshot() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	if r.manager != nil {
		r.manager.Close()
		r.manager = nil
	}
	if r.employee != nil {
		r.employee.Close()
		r.employee = nil
	}
	r.stopTimersLocked()
	return r.content
}

// closeIfIdle marks the room closed and returns its content only when no
// connection is live at the moment of the check. A room that refuses stays
// usable; one that closes rejects any later Attach.
func (r *Room) closeIfIdle() (content string, idle bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.liveCountLocked() > 0 {
		return "", false
	}
	r.closed = true
	r.stopTimersLocked()
	return r.content, true
}

func (r *Room) stopTimersLocked() {
	if r.persistTimer != nil {
		r.persistTimer.Stop()
		r.persistTimer = nil
	}
	if r.staleTimer != nil {
		r.staleTimer.Stop()
		r.staleTimer = nil
	}
}

// clearStaleTimerAndCount consumes a fired staleness timer and reports how
// many connections are live right now, not when the timer was armed.
func (r *Room) clearStaleTimerAndCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.staleTimer = nil
	return r.liveCountLocked()
}
