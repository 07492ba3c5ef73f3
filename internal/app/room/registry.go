/*
Package room contains the in-memory model of focus rooms.

This file defines the Manager, the process-wide registry of live rooms. It owns room
creation, lookup and deferred deletion of rooms that have become empty.
*/
package room

import (
	"errors"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"focusroom/internal/app/user"
	"focusroom/internal/metrics"
	"focusroom/internal/pkg/logx"
)

var (
	// ErrAlreadyExists is returned by Create when the id is registered.
	ErrAlreadyExists = errors.New("room already exists")

	// ErrNotFound is returned by Get when the id is not registered.
	ErrNotFound = errors.New("room not found")
)

// deletion is one armed deferred delete. Its pointer identity tells a firing
// timer whether it was superseded or cancelled in the meantime.
type deletion struct {
	timer clockwork.Timer
}

// Manager coordinates all live rooms.
//
// Lock order: mu before any room lock. pendingMu is a leaf and may be taken while a room lock is held.
type Manager struct {
	// rooms maps room id to Room.
	rooms map[string]*Room

	// mu protects the rooms map.
	mu sync.RWMutex

	// pending holds the armed deletion per room id.
	pending map[string]*deletion

	// pendingMu protects pending.
	pendingMu sync.Mutex

	clock  clockwork.Clock
	logger zerolog.Logger
}

// NewManager constructs an empty registry driven by clock.
func NewManager(clock clockwork.Clock) *Manager {
	return &Manager{
		rooms:   make(map[string]*Room),
		pending: make(map[string]*deletion),
		clock:   clock,
		logger:  logx.Component("RoomManager"),
	}
}

// Create registers a new room with hostConn as its sole member and host.
func (m *Manager) Create(id, hostConnID string, host user.User, settings Settings) (*Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.rooms[id]; ok {
		m.logger.Warn().Str("room_id", id).Msg("Attempted to create existing room.")
		return nil, ErrAlreadyExists
	}

	r := newRoom(id, hostConnID, host, settings, m.clock)
	m.rooms[id] = r

	metrics.RoomsCreated.Inc()
	metrics.RoomsActive.Set(float64(len(m.rooms)))

	m.logger.Info().
		Str("room_id", id).
		Str("host_id", host.ID).
		Int("focus_seconds", settings.FocusDurationSeconds).
		Int("break_seconds", settings.BreakDurationSeconds).
		Bool("strict_mode", settings.StrictMode).
		Msg("New room created.")
	return r, nil
}

// Get retrieves a room by id.
func (m *Manager) Get(id string) (*Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.rooms[id]
	if !ok {
		return nil, ErrNotFound
	}
	return r, nil
}

// Rooms returns the currently registered rooms in no particular order.
func (m *Manager) Rooms() []*Room {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rooms := make([]*Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		rooms = append(rooms, r)
	}
	return rooms
}

// Len returns the number of registered rooms.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.rooms)
}

// ScheduleDeletion arms a one-shot delete of the room after delay.
// Re-arming replaces the previous deletion.
func (m *Manager) ScheduleDeletion(id string, delay time.Duration) {
	m.pendingMu.Lock()
	defer m.pendingMu.Unlock()

	if existing, ok := m.pending[id]; ok {
		existing.timer.Stop()
		m.logger.Debug().Str("room_id", id).Msg("Replaced existing deletion timer.")
	}

	d := &deletion{}
	m.pending[id] = d
	d.timer = m.clock.AfterFunc(delay, func() { m.fireDeletion(id, d) })

	metrics.RoomDeletions.WithLabelValues("scheduled").Inc()
	m.logger.Info().Str("room_id", id).Dur("delay", delay).Msg("Room deletion scheduled.")
}

// CancelDeletion disarms a pending deletion. No-op when none is armed.
func (m *Manager) CancelDeletion(id string) {
	m.pendingMu.Lock()
	defer m.pendingMu.Unlock()

	d, ok := m.pending[id]
	if !ok {
		return
	}
	d.timer.Stop()
	delete(m.pending, id)

	metrics.RoomDeletions.WithLabelValues("cancelled").Inc()
	m.logger.Info().Str("room_id", id).Msg("Room deletion cancelled.")
}

// DeletionPending reports whether a deletion is armed for id.
func (m *Manager) DeletionPending(id string) bool {
	m.pendingMu.Lock()
	defer m.pendingMu.Unlock()

	_, ok := m.pending[id]
	return ok
}

// fireDeletion runs when a deletion timer expires.
func (m *Manager) fireDeletion(id string, d *deletion) {
	m.pendingMu.Lock()
	if m.pending[id] != d {
		m.pendingMu.Unlock()
		return
	}
	delete(m.pending, id)
	m.pendingMu.Unlock()

	m.remove(id)
}

// remove drops the room if it is still empty. Stopping a timer can lose the race with
// its firing, so emptiness is re-checked here under the room lock.
func (m *Manager) remove(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.rooms[id]
	if !ok {
		return false
	}

	r.Lock()
	defer r.Unlock()

	if !r.IsEmpty() {
		metrics.RoomDeletions.WithLabelValues("skipped").Inc()
		m.logger.Info().Str("room_id", id).Int("members", r.MemberCount()).Msg("Room reoccupied before deletion fired. Keeping it.")
		return false
	}

	r.closed = true
	delete(m.rooms, id)

	metrics.RoomDeletions.WithLabelValues("deleted").Inc()
	metrics.RoomsActive.Set(float64(len(m.rooms)))
	m.logger.Info().Str("room_id", id).Msg("Room successfully removed.")
	return true
}

// Shutdown disarms every pending deletion and drops all rooms.
func (m *Manager) Shutdown() {
	m.logger.Info().Msg("Shutting down room manager...")

	m.pendingMu.Lock()
	for id, d := range m.pending {
		d.timer.Stop()
		delete(m.pending, id)
	}
	m.pendingMu.Unlock()

	m.mu.Lock()
	for id, r := range m.rooms {
		r.Lock()
		r.closed = true
		r.Unlock()
		delete(m.rooms, id)
	}
	m.mu.Unlock()

	metrics.RoomsActive.Set(0)
	m.logger.Info().Msg("Room manager shutdown complete.")
}
