package session

import (
	"encoding/json"

	"focusroom/internal/app/room"
	"focusroom/internal/app/user"
)

// EventType names an inbound command or an outbound notification.
type EventType string

// Inbound events.
const (
	EventCreateRoom  EventType = "createRoom"
	EventJoinRoom    EventType = "joinRoom"
	EventLeaveRoom   EventType = "leaveRoom"
	EventSendMessage EventType = "sendMessage"
	EventStartTimer  EventType = "startTimer"
	EventPauseTimer  EventType = "pauseTimer"
	EventResetTimer  EventType = "resetTimer"
)

// Outbound events.
const (
	EventRoomCreated     EventType = "roomCreated"
	EventRoomJoined      EventType = "roomJoined"
	EventUserJoined      EventType = "userJoined"
	EventUserLeft        EventType = "userLeft"
	EventHostTransferred EventType = "hostTransferred"
	EventChatMessage     EventType = "chatMessage"
	EventTimerUpdate     EventType = "timerUpdate"
	EventTimerStarted    EventType = "timerStarted"
	EventTimerPaused     EventType = "timerPause"
	EventTimerReset      EventType = "timerReset"
	EventPhaseSwitched   EventType = "phaseSwitched"
	EventAck             EventType = "ack"
	EventError           EventType = "error"
)

// SystemUsername attributes server-generated chat notices.
const SystemUsername = "System"

// Envelope is an inbound frame.
type Envelope struct {
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
	TempID  string          `json:"tempId,omitempty"`
}

// Message is an outbound frame. Timestamp is unix milliseconds.
type Message struct {
	Type      EventType `json:"type"`
	Payload   any       `json:"payload,omitempty"`
	Timestamp int64     `json:"timestamp"`
}

// CreateRoomPayload carries createRoom. An empty RoomID asks the server to pick a code.
type CreateRoomPayload struct {
	RoomID   string              `json:"roomId"`
	Settings *room.SettingsInput `json:"settings,omitempty"`
}

// RoomPayload carries the commands that only name a room: joinRoom and the timer controls.
type RoomPayload struct {
	RoomID string `json:"roomId"`
}

// LeaveRoomPayload carries leaveRoom.
type LeaveRoomPayload struct {
	RoomID string `json:"roomId"`
	UserID string `json:"userId,omitempty"`
}

// SendMessagePayload carries sendMessage.
type SendMessagePayload struct {
	RoomID  string `json:"roomId"`
	Message string `json:"message"`
}

// SnapshotPayload is sent to the requester on roomCreated and roomJoined.
type SnapshotPayload struct {
	room.Snapshot
	IsHost bool `json:"isHost"`
}

type userJoinedPayload struct {
	User user.User `json:"user"`
}

type userLeftPayload struct {
	UserID string `json:"userId"`
}

type hostTransferredPayload struct {
	NewHostID string        `json:"newHostId"`
	Room      room.Snapshot `json:"room"`
}

// ChatMessage is the payload of chatMessage, for both user and system messages.
type ChatMessage struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
	IsSystem  bool   `json:"isSystem"`
}

type phaseSwitchedPayload struct {
	Phase room.Phase `json:"phase"`
	Label string     `json:"label"`
}

type ackPayload struct {
	TempID string `json:"tempId"`
}

type errorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
