/*
Package session implements the room event protocol on top of the room registry.

The Coordinator maps each live connection to at most one room membership, validates and
applies inbound commands, performs host failover and fans the results out through the hub.
Every command runs under the target room's lock, and all of its mutations complete before
the first frame is published. The same lock serializes the timer driver in driver.go.
*/
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"focusroom/internal/app/hub"
	"focusroom/internal/app/room"
	"focusroom/internal/app/user"
	"focusroom/internal/metrics"
	"focusroom/internal/pkg/errs"
	"focusroom/internal/pkg/logx"
	"focusroom/internal/pkg/randx"
)

const (
	noticeCreated      = "Welcome to room %s! You are the host."
	noticeWelcome      = "Welcome to room %s!"
	noticeJoined       = "%s joined the room"
	noticeLeft         = "%s left the room"
	noticeDisconnected = "%s disconnected"
	noticeNewHost      = "%s is now the host"
	noticePhase        = "Switched to %s phase"
)

var (
	errUnknownEvent     = errors.New("unknown event type")
	errMalformedPayload = errors.New("malformed payload")
)

// Conn is a live, authenticated connection.
type Conn interface {
	hub.Conn

	// User returns the identity resolved at handshake.
	User() user.User
}

// Options tunes a Coordinator.
type Options struct {
	// DeletionGrace is how long an empty room survives before it is deleted.
	DeletionGrace time.Duration

	// Defaults fill the settings omitted at room creation.
	Defaults room.Settings
}

// Coordinator handles the event protocol for every connection.
type Coordinator struct {
	rooms    *room.Manager
	hub      *hub.Hub
	clock    clockwork.Clock
	grace    time.Duration
	defaults room.Settings

	// joined maps connection id to the id of the room it belongs to.
	joined map[string]string

	// mu protects joined. Never held while acquiring a room lock.
	mu sync.Mutex

	logger zerolog.Logger
}

// NewCoordinator wires a Coordinator to its registry and fan-out hub.
func NewCoordinator(rooms *room.Manager, h *hub.Hub, clock clockwork.Clock, opts Options) *Coordinator {
	return &Coordinator{
		rooms:    rooms,
		hub:      h,
		clock:    clock,
		grace:    opts.DeletionGrace,
		defaults: opts.Defaults,
		joined:   make(map[string]string),
		logger:   logx.Component("SessionCoordinator"),
	}
}

// DefaultSettings returns the process-wide settings applied to new rooms.
func (co *Coordinator) DefaultSettings() room.Settings {
	return co.defaults
}

// CurrentRoom returns the id of the room the connection belongs to, or "".
func (co *Coordinator) CurrentRoom(connID string) string {
	co.mu.Lock()
	defer co.mu.Unlock()

	return co.joined[connID]
}

func (co *Coordinator) setRoom(connID, roomID string) {
	co.mu.Lock()
	defer co.mu.Unlock()

	co.joined[connID] = roomID
}

func (co *Coordinator) clearRoom(connID, roomID string) {
	co.mu.Lock()
	defer co.mu.Unlock()

	if co.joined[connID] == roomID {
		delete(co.joined, connID)
	}
}

// HandleFrame decodes one inbound frame and dispatches it. Failures are answered with a
// single error event to c; malformed frames and unknown events are dropped.
func (co *Coordinator) HandleFrame(c Conn, data []byte) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		co.logger.Warn().Err(err).Str("connection_id", c.ID()).Msg("Client sent invalid JSON.")
		return
	}

	err := co.dispatch(c, env)
	switch {
	case errors.Is(err, errUnknownEvent):
		metrics.EventsReceived.WithLabelValues("unknown").Inc()
		co.logger.Warn().Str("connection_id", c.ID()).Str("event_type", string(env.Type)).Msg("Client sent unsupported event type.")
		return
	case errors.Is(err, errMalformedPayload):
		metrics.EventsReceived.WithLabelValues(string(env.Type)).Inc()
		co.logger.Warn().Str("connection_id", c.ID()).Str("event_type", string(env.Type)).Msg("Client sent invalid payload.")
		return
	}

	metrics.EventsReceived.WithLabelValues(string(env.Type)).Inc()
	if err != nil {
		co.sendError(c, err)
	}
}

func (co *Coordinator) dispatch(c Conn, env Envelope) error {
	switch env.Type {
	case EventCreateRoom:
		var p CreateRoomPayload
		if err := decode(env.Payload, &p); err != nil {
			return err
		}
		return co.CreateRoom(c, p.RoomID, p.Settings)

	case EventJoinRoom:
		var p RoomPayload
		if err := decode(env.Payload, &p); err != nil {
			return err
		}
		return co.JoinRoom(c, p.RoomID)

	case EventLeaveRoom:
		var p LeaveRoomPayload
		if err := decode(env.Payload, &p); err != nil {
			return err
		}
		return co.LeaveRoom(c, p.RoomID, p.UserID, env.TempID)

	case EventSendMessage:
		var p SendMessagePayload
		if err := decode(env.Payload, &p); err != nil {
			return err
		}
		return co.SendChatMessage(c, p.RoomID, p.Message)

	case EventStartTimer, EventPauseTimer, EventResetTimer:
		var p RoomPayload
		if err := decode(env.Payload, &p); err != nil {
			return err
		}
		return co.controlTimer(c, p.RoomID, env.Type)
	}

	return errUnknownEvent
}

func decode(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", errMalformedPayload, err)
	}
	return nil
}

// CreateRoom registers a new room with c as its host. An empty roomID gets a generated code.
func (co *Coordinator) CreateRoom(c Conn, roomID string, in *room.SettingsInput) error {
	roomID = strings.TrimSpace(roomID)
	if roomID == "" {
		code, err := randx.RoomCode()
		if err != nil {
			return fmt.Errorf("generate room code: %w", err)
		}
		roomID = code
	} else if !randx.IsValidRoomID(roomID) {
		return errs.NewError(errs.ErrInvalidRoomID)
	}

	settings, err := in.Merge(co.defaults)
	if err != nil {
		var settingsErr *room.SettingsError
		if errors.As(err, &settingsErr) {
			return errs.NewError(errs.ErrInvalidSettings, settingsErr.Reason)
		}
		return err
	}

	u := c.User()
	r, err := co.rooms.Create(roomID, c.ID(), u, settings)
	if errors.Is(err, room.ErrAlreadyExists) {
		return errs.NewError(errs.ErrRoomIDExists)
	}
	if err != nil {
		return fmt.Errorf("create room %s: %w", roomID, err)
	}

	co.leaveCurrent(c, roomID)

	r.Lock()
	defer r.Unlock()

	co.hub.Join(roomID, c)
	co.setRoom(c.ID(), roomID)

	co.send(c, EventRoomCreated, SnapshotPayload{Snapshot: r.Snapshot(), IsHost: r.IsHost(u.ID)})
	co.publish(roomID, EventChatMessage, co.systemMessage(fmt.Sprintf(noticeCreated, roomID)), "")

	co.logger.Info().
		Str("room_id", roomID).
		Str("connection_id", c.ID()).
		Str("user_id", u.ID).
		Msg("Room created.")
	return nil
}

// JoinRoom adds c to an existing room and cancels any pending deletion of it.
// Joining the room c already belongs to only re-sends the snapshot.
func (co *Coordinator) JoinRoom(c Conn, roomID string) error {
	if !randx.IsValidRoomID(roomID) {
		return errs.NewError(errs.ErrInvalidRoomID)
	}

	r, err := co.rooms.Get(roomID)
	if errors.Is(err, room.ErrNotFound) {
		return errs.NewError(errs.ErrRoomNotFound)
	}
	if err != nil {
		return fmt.Errorf("get room %s: %w", roomID, err)
	}

	u := c.User()

	if co.CurrentRoom(c.ID()) == roomID {
		r.Lock()
		defer r.Unlock()

		if r.Closed() {
			return errs.NewError(errs.ErrRoomNotFound)
		}
		co.send(c, EventRoomJoined, SnapshotPayload{Snapshot: r.Snapshot(), IsHost: r.IsHost(u.ID)})
		return nil
	}

	co.leaveCurrent(c, roomID)

	r.Lock()
	defer r.Unlock()

	if r.Closed() {
		return errs.NewError(errs.ErrRoomNotFound)
	}

	co.rooms.CancelDeletion(roomID)
	r.AddMember(c.ID(), u)

	// A room reoccupied during its grace period may still name a departed host.
	newHost, transferred := r.TransferHost()

	co.hub.Join(roomID, c)
	co.setRoom(c.ID(), roomID)

	co.send(c, EventRoomJoined, SnapshotPayload{Snapshot: r.Snapshot(), IsHost: r.IsHost(u.ID)})
	co.send(c, EventChatMessage, co.systemMessage(fmt.Sprintf(noticeWelcome, roomID)))
	co.publish(roomID, EventUserJoined, userJoinedPayload{User: u}, c.ID())
	co.publish(roomID, EventChatMessage, co.systemMessage(fmt.Sprintf(noticeJoined, u.Username)), c.ID())
	if transferred {
		co.announceHost(r, newHost)
	}

	co.logger.Info().
		Str("room_id", roomID).
		Str("connection_id", c.ID()).
		Str("user_id", u.ID).
		Int("total_members", r.MemberCount()).
		Msg("Connection joined room.")
	return nil
}

// LeaveRoom removes c from roomID. It is a silent no-op when c is not a member or when
// userID names someone else. A non-empty tempID is acknowledged once the leave took effect.
func (co *Coordinator) LeaveRoom(c Conn, roomID, userID, tempID string) error {
	if userID != "" && userID != c.User().ID {
		co.logger.Debug().Str("connection_id", c.ID()).Str("user_id", userID).Msg("Ignoring leave for another user.")
		return nil
	}
	if co.CurrentRoom(c.ID()) != roomID {
		return nil
	}

	if co.leave(c, roomID, noticeLeft) && tempID != "" {
		co.send(c, EventAck, ackPayload{TempID: tempID})
	}
	return nil
}

// Disconnect cleans up after a lost connection.
func (co *Coordinator) Disconnect(c Conn) {
	roomID := co.CurrentRoom(c.ID())
	if roomID == "" {
		return
	}
	co.leave(c, roomID, noticeDisconnected)
}

func (co *Coordinator) leaveCurrent(c Conn, target string) {
	if current := co.CurrentRoom(c.ID()); current != "" && current != target {
		co.leave(c, current, noticeLeft)
	}
}

// leave removes c from roomID, then either arms deletion of the now empty room or runs
// host failover. It reports whether c was a member.
func (co *Coordinator) leave(c Conn, roomID, notice string) bool {
	r, err := co.rooms.Get(roomID)
	if err != nil {
		co.hub.Leave(roomID, c.ID())
		co.clearRoom(c.ID(), roomID)
		return false
	}

	r.Lock()
	defer r.Unlock()

	co.hub.Leave(roomID, c.ID())
	co.clearRoom(c.ID(), roomID)

	u, err := r.RemoveMember(c.ID())
	if err != nil {
		return false
	}

	newHost, transferred := r.TransferHost()
	if r.IsEmpty() {
		co.rooms.ScheduleDeletion(roomID, co.grace)
	}

	co.publish(roomID, EventUserLeft, userLeftPayload{UserID: u.ID}, "")
	co.publish(roomID, EventChatMessage, co.systemMessage(fmt.Sprintf(notice, u.Username)), "")
	if transferred {
		co.announceHost(r, newHost)
	}

	co.logger.Info().
		Str("room_id", roomID).
		Str("connection_id", c.ID()).
		Str("user_id", u.ID).
		Int("total_members", r.MemberCount()).
		Msg("Connection left room.")
	return true
}

// announceHost publishes a completed failover. Caller holds the room lock.
func (co *Coordinator) announceHost(r *room.Room, newHost user.User) {
	metrics.HostTransfers.Inc()

	co.publish(r.ID(), EventHostTransferred, hostTransferredPayload{NewHostID: newHost.ID, Room: r.Snapshot()}, "")
	co.publish(r.ID(), EventChatMessage, co.systemMessage(fmt.Sprintf(noticeNewHost, newHost.Username)), "")
}

// SendChatMessage broadcasts text to the whole room, sender included. Blank text is ignored.
func (co *Coordinator) SendChatMessage(c Conn, roomID, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	return co.withMember(c, roomID, func(r *room.Room, u user.User) error {
		co.publish(roomID, EventChatMessage, ChatMessage{
			ID:        randx.MessageID(),
			Username:  u.Username,
			Message:   text,
			Timestamp: co.clock.Now().UnixMilli(),
		}, "")
		return nil
	})
}

// StartTimer starts the room countdown.
func (co *Coordinator) StartTimer(c Conn, roomID string) error {
	return co.controlTimer(c, roomID, EventStartTimer)
}

// PauseTimer pauses the room countdown.
func (co *Coordinator) PauseTimer(c Conn, roomID string) error {
	return co.controlTimer(c, roomID, EventPauseTimer)
}

// ResetTimer returns the room timer to a paused, full focus phase.
func (co *Coordinator) ResetTimer(c Conn, roomID string) error {
	return co.controlTimer(c, roomID, EventResetTimer)
}

func (co *Coordinator) controlTimer(c Conn, roomID string, action EventType) error {
	return co.withMember(c, roomID, func(r *room.Room, u user.User) error {
		if r.Settings().StrictMode && !r.IsHost(u.ID) {
			return errs.NewError(errs.ErrHostOnly)
		}

		var notice EventType
		switch action {
		case EventStartTimer:
			r.StartTimer()
			notice = EventTimerStarted
		case EventPauseTimer:
			r.PauseTimer()
			notice = EventTimerPaused
		case EventResetTimer:
			r.ResetTimer()
			notice = EventTimerReset
		default:
			return errUnknownEvent
		}

		state := r.Timer().State()
		co.publish(roomID, EventTimerUpdate, state, "")
		co.publish(roomID, notice, nil, "")

		co.logger.Debug().
			Str("room_id", roomID).
			Str("user_id", u.ID).
			Str("action", string(action)).
			Bool("running", state.IsRunning).
			Int("time_left", state.TimeLeft).
			Msg("Timer command applied.")
		return nil
	})
}

// withMember runs fn under the room lock when c is a member of roomID.
func (co *Coordinator) withMember(c Conn, roomID string, fn func(r *room.Room, u user.User) error) error {
	r, err := co.rooms.Get(roomID)
	if err != nil {
		return errs.NewError(errs.ErrNotRoomMember)
	}

	r.Lock()
	defer r.Unlock()

	u, ok := r.Member(c.ID())
	if r.Closed() || !ok {
		return errs.NewError(errs.ErrNotRoomMember)
	}
	return fn(r, u)
}

func (co *Coordinator) message(t EventType, payload any) Message {
	return Message{Type: t, Payload: payload, Timestamp: co.clock.Now().UnixMilli()}
}

func (co *Coordinator) systemMessage(text string) ChatMessage {
	return ChatMessage{
		ID:        randx.MessageID(),
		Username:  SystemUsername,
		Message:   text,
		Timestamp: co.clock.Now().UnixMilli(),
		IsSystem:  true,
	}
}

func (co *Coordinator) publish(roomID string, t EventType, payload any, exceptConnID string) {
	if _, err := co.hub.Publish(roomID, co.message(t, payload), exceptConnID); err != nil {
		co.logger.Error().Err(err).Str("room_id", roomID).Str("event_type", string(t)).Msg("Failed to publish event.")
	}
}

func (co *Coordinator) send(c Conn, t EventType, payload any) {
	if err := co.hub.Send(c, co.message(t, payload)); err != nil {
		co.logger.Error().Err(err).Str("connection_id", c.ID()).Str("event_type", string(t)).Msg("Failed to send event.")
	}
}

// sendError answers a failed command to its sender only.
func (co *Coordinator) sendError(c Conn, err error) {
	customErr := errs.As(err)
	metrics.CommandErrors.WithLabelValues(strconv.Itoa(customErr.Code)).Inc()

	co.logger.Debug().
		Err(err).
		Str("connection_id", c.ID()).
		Int("code", customErr.Code).
		Msg("Command rejected.")

	co.send(c, EventError, errorPayload{Code: customErr.Code, Message: customErr.Message})
}
