package toast

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jmylchreest/toastd/internal/model"
)

const subscriberBuffer = 64

// Manager owns one allocator/store pair for a UI surface.
// Every operation is atomic with respect to Snapshot. Independent managers
// share nothing.
type Manager struct {
	mu     sync.RWMutex
	store  *Store
	logger *slog.Logger
	now    func() time.Time

	subscribers []chan ChangeEvent

	sweeper  *Sweeper
	sweepCtx context.Context
	closed   bool
}

// NewManager creates a manager bounded to capacity toasts.
func NewManager(capacity int, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		store:  NewStore(capacity),
		logger: logger,
		now:    time.Now,
	}
}

// SetClock replaces the time source used for insertion and sweeping.
func (m *Manager) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// Popup stores a new toast and returns its identifier.
// Overflow is handled by silently evicting the oldest toast.
func (m *Manager) Popup(content model.Content) model.ID {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, evicted := m.store.Insert(content, m.now())

	m.notifyChange(ChangeEvent{Type: ChangeTypeAdd, IDs: []model.ID{id}})
	if len(evicted) > 0 {
		m.logger.Debug("evicted toasts", "ids", recordIDs(evicted), "capacity", m.store.Capacity())
		m.notifyChange(ChangeEvent{Type: ChangeTypeRemove, IDs: recordIDs(evicted), Reason: ReasonEvicted})
	}

	m.logger.Debug("popped toast", "id", id, "position", content.Position, "live", m.store.Len())
	return id
}

// Remove deletes the toast with the given identifier.
// It reports whether a toast was removed; an unknown id is a no-op.
func (m *Manager) Remove(id model.ID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.store.Remove(id); !ok {
		return false
	}
	m.notifyChange(ChangeEvent{Type: ChangeTypeRemove, IDs: []model.ID{id}, Reason: ReasonDismissed})
	return true
}

// Clear removes every toast and returns how many were removed.
// Identifier allocation continues where it left off.
func (m *Manager) Clear() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := m.store.Clear()
	if len(removed) > 0 {
		m.notifyChange(ChangeEvent{Type: ChangeTypeRemove, IDs: recordIDs(removed), Reason: ReasonCleared})
	}
	return len(removed)
}

// Snapshot returns the live toasts in insertion order.
func (m *Manager) Snapshot() []model.Record {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.store.Snapshot()
}

// Buckets returns the live toasts grouped by screen corner.
func (m *Manager) Buckets() Buckets {
	return Group(m.Snapshot())
}

// Get returns the toast with the given identifier.
func (m *Manager) Get(id model.ID) (model.Record, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.store.Get(id)
}

// Len returns the number of live toasts.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.store.Len()
}

// Capacity returns the current bound.
func (m *Manager) Capacity() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.store.Capacity()
}

// SetCapacity changes the bound, evicting the oldest toasts that no longer fit.
func (m *Manager) SetCapacity(capacity int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	old := m.store.Capacity()
	evicted := m.store.SetCapacity(capacity)
	if len(evicted) > 0 {
		m.notifyChange(ChangeEvent{Type: ChangeTypeRemove, IDs: recordIDs(evicted), Reason: ReasonEvicted})
	}
	m.logger.Debug("capacity changed", "old", old, "new", m.store.Capacity(), "evicted", len(evicted))
}

// Sweep removes the toasts expired at now and returns how many were removed.
func (m *Manager) Sweep(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	expired := m.store.SweepExpired(now)
	if len(expired) > 0 {
		m.logger.Debug("swept expired toasts", "ids", recordIDs(expired))
		m.notifyChange(ChangeEvent{Type: ChangeTypeRemove, IDs: recordIDs(expired), Reason: ReasonExpired})
	}
	return len(expired)
}

// sweepNow is the sweeper callback. The lock is taken only for the sweep itself.
func (m *Manager) sweepNow() {
	m.mu.RLock()
	now := m.now
	m.mu.RUnlock()
	m.Sweep(now())
}

// StartSweeper runs the expiry sweep every interval until ctx is cancelled,
// StopSweeper or Close is called. Calling it again replaces the running sweeper.
func (m *Manager) StartSweeper(ctx context.Context, interval time.Duration) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	old := m.sweeper
	m.sweeper = NewSweeper(interval, m.sweepNow, m.logger)
	m.sweepCtx = ctx
	// Started under the lock so Close always sees a running sweeper.
	m.sweeper.Start(ctx)
	m.mu.Unlock()

	// An in-flight sweep of the old loop needs the lock to finish.
	if old != nil {
		old.Stop()
	}
}

// StopSweeper halts the background sweep and waits for an in-flight sweep.
// The manager stays open; StartSweeper may be called again.
func (m *Manager) StopSweeper() {
	m.mu.Lock()
	sw := m.sweeper
	m.sweeper = nil
	m.sweepCtx = nil
	m.mu.Unlock()

	if sw != nil {
		sw.Stop()
	}
}

// SetSweepInterval restarts a running sweeper with a new interval.
func (m *Manager) SetSweepInterval(interval time.Duration) {
	m.mu.RLock()
	ctx := m.sweepCtx
	running := m.sweeper != nil && m.sweeper.Running()
	m.mu.RUnlock()

	if !running || ctx == nil {
		return
	}
	m.StartSweeper(ctx, interval)
}

// SweeperRunning reports whether the background sweep is active.
func (m *Manager) SweeperRunning() bool {
	m.mu.RLock()
	sw := m.sweeper
	m.mu.RUnlock()
	return sw != nil && sw.Running()
}

// Subscribe returns a channel that receives change events.
// Events are dropped for subscribers that fall behind.
func (m *Manager) Subscribe() <-chan ChangeEvent {
	return m.SubscribeWithBuffer(subscriberBuffer)
}

// SubscribeWithBuffer is Subscribe with a caller-chosen channel buffer,
// for consumers that must see bursts without drops.
func (m *Manager) SubscribeWithBuffer(size int) <-chan ChangeEvent {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch := make(chan ChangeEvent, max(size, 0))
	if m.closed {
		close(ch)
		return ch
	}
	m.subscribers = append(m.subscribers, ch)
	return ch
}

// Unsubscribe removes a subscription and closes its channel.
func (m *Manager) Unsubscribe(ch <-chan ChangeEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, sub := range m.subscribers {
		if sub == ch {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			close(sub)
			return
		}
	}
}

// Close stops the sweeper and closes all subscriber channels.
// The toasts themselves stay readable and writable.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	sw := m.sweeper
	m.sweeper = nil
	m.sweepCtx = nil
	for _, ch := range m.subscribers {
		close(ch)
	}
	m.subscribers = nil
	m.mu.Unlock()

	if sw != nil {
		sw.Stop()
	}
}

// notifyChange sends a change event to all subscribers (non-blocking).
func (m *Manager) notifyChange(event ChangeEvent) {
	for _, ch := range m.subscribers {
		select {
		case ch <- event:
		default:
			m.logger.Debug("subscriber full, dropping change event",
				"type", event.Type, "ids", event.IDs)
		}
	}
}
