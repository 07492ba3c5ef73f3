/*
Package room contains the in-memory model of focus rooms.

This file defines the Room struct: one room's membership, host assignment and timer.
A Room knows nothing about other rooms or about how events reach clients; callers hold
the room lock for the duration of one command or one tick and publish afterwards.
*/
package room

import (
	"errors"
	"sort"
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"focusroom/internal/app/user"
	"focusroom/internal/pkg/logx"
)

// ErrNotPresent is returned when removing a connection that is not a member.
var ErrNotPresent = errors.New("connection is not a member of the room")

// member is one connection's membership. seq orders members by join time.
type member struct {
	user user.User
	seq  uint64
}

// Room represents a single live focus room.
//
// Every method except Lock, Unlock and ID requires the caller to hold the room lock.
type Room struct {
	// id is the caller-chosen unique identifier, immutable.
	id string

	// settings are fixed at creation.
	settings Settings

	// mu serializes commands and ticks against this room.
	mu sync.Mutex

	// hostID is the User.ID of the current host.
	hostID string

	// members maps connection id to membership.
	members map[string]member

	// nextSeq is the join counter feeding member.seq.
	nextSeq uint64

	timer Timer

	// closed is set once the registry has dropped the room.
	closed bool

	clock  clockwork.Clock
	logger zerolog.Logger
}

// Snapshot is the full public view of a room sent on create, join and host transfer.
type Snapshot struct {
	RoomID   string      `json:"roomId"`
	HostID   string      `json:"hostId"`
	Timer    TimerState  `json:"timer"`
	Settings Settings    `json:"settings"`
	Users    []user.User `json:"users"`
}

// newRoom builds a room whose only member is the host connection.
func newRoom(id, hostConnID string, host user.User, settings Settings, clock clockwork.Clock) *Room {
	r := &Room{
		id:       id,
		settings: settings,
		hostID:   host.ID,
		members:  make(map[string]member),
		timer:    NewTimer(settings),
		clock:    clock,
		logger:   logx.Logger().With().Str("room_id", id).Logger(),
	}
	r.AddMember(hostConnID, host)
	return r
}

// ID returns the room identifier.
func (r *Room) ID() string {
	return r.id
}

// Lock acquires exclusive access to the room.
func (r *Room) Lock() {
	r.mu.Lock()
}

// Unlock releases the room.
func (r *Room) Unlock() {
	r.mu.Unlock()
}

// Closed reports whether the registry has already removed the room.
func (r *Room) Closed() bool {
	return r.closed
}

// Settings returns the room's immutable settings.
func (r *Room) Settings() Settings {
	return r.settings
}

// HostID returns the User.ID of the current host.
func (r *Room) HostID() string {
	return r.hostID
}

// IsHost reports whether userID is the current host.
func (r *Room) IsHost(userID string) bool {
	return r.hostID == userID
}

// AddMember inserts a membership. Re-adding a present connection is a no-op and returns false.
// Joining never changes the host.
func (r *Room) AddMember(connID string, u user.User) bool {
	if _, ok := r.members[connID]; ok {
		return false
	}
	r.nextSeq++
	r.members[connID] = member{user: u, seq: r.nextSeq}

	r.logger.Debug().
		Str("connection_id", connID).
		Str("user_id", u.ID).
		Int("total_members", len(r.members)).
		Msg("Member added.")
	return true
}

// RemoveMember deletes a membership and returns the departed user.
// Host failover is left to the caller, see TransferHost.
func (r *Room) RemoveMember(connID string) (user.User, error) {
	m, ok := r.members[connID]
	if !ok {
		return user.User{}, ErrNotPresent
	}
	delete(r.members, connID)

	r.logger.Debug().
		Str("connection_id", connID).
		Str("user_id", m.user.ID).
		Int("total_members", len(r.members)).
		Msg("Member removed.")
	return m.user, nil
}

// Member returns the user behind a connection.
func (r *Room) Member(connID string) (user.User, bool) {
	m, ok := r.members[connID]
	return m.user, ok
}

// HasUser reports whether any connection of userID is still a member.
func (r *Room) HasUser(userID string) bool {
	for _, m := range r.members {
		if m.user.ID == userID {
			return true
		}
	}
	return false
}

// IsEmpty reports whether the room has no members.
func (r *Room) IsEmpty() bool {
	return len(r.members) == 0
}

// MemberCount returns the number of memberships.
func (r *Room) MemberCount() int {
	return len(r.members)
}

// Users returns member identities ordered by join time.
func (r *Room) Users() []user.User {
	ordered := r.orderedMembers()
	users := make([]user.User, 0, len(ordered))
	for _, m := range ordered {
		users = append(users, m.user)
	}
	return users
}

// TransferHost hands the host role to the oldest remaining member and returns it.
// It does nothing and returns false when the host is still present or the room is empty.
func (r *Room) TransferHost() (user.User, bool) {
	if r.IsEmpty() || r.HasUser(r.hostID) {
		return user.User{}, false
	}

	next := r.orderedMembers()[0].user
	previous := r.hostID
	r.hostID = next.ID

	r.logger.Info().
		Str("previous_host_id", previous).
		Str("new_host_id", next.ID).
		Msg("Host transferred.")
	return next, true
}

// Timer returns a copy of the timer state.
func (r *Room) Timer() Timer {
	return r.timer
}

// StartTimer starts the countdown; false when it was already running.
func (r *Room) StartTimer() bool {
	return r.timer.Start(r.clock.Now())
}

// PauseTimer pauses the countdown; false when it was already paused.
func (r *Room) PauseTimer() bool {
	return r.timer.Pause(r.clock.Now())
}

// ResetTimer returns the timer to a paused, full-length focus phase.
func (r *Room) ResetTimer() {
	r.timer.Reset(r.settings)
}

// Tick advances a running timer against the room clock.
func (r *Room) Tick() TickResult {
	return r.timer.Tick(r.clock.Now(), r.settings)
}

// Snapshot builds the public view of the room.
func (r *Room) Snapshot() Snapshot {
	return Snapshot{
		RoomID:   r.id,
		HostID:   r.hostID,
		Timer:    r.timer.State(),
		Settings: r.settings,
		Users:    r.Users(),
	}
}

func (r *Room) orderedMembers() []member {
	ordered := make([]member, 0, len(r.members))
	for _, m := range r.members {
		ordered = append(ordered, m)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].seq < ordered[j].seq })
	return ordered
}
