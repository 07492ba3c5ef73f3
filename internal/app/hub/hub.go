/*
Package hub delivers outbound frames to groups of live connections.

A group is the set of connections currently associated with one room. Delivery is
fire-and-forget: each frame is encoded once and handed to every connection's own queue
without waiting, so a slow consumer never stalls the publisher or the other recipients.
*/
package hub

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"focusroom/internal/metrics"
	"focusroom/internal/pkg/logx"
)

// Conn is the transport endpoint the hub delivers to.
type Conn interface {
	// ID returns the unique connection id.
	ID() string

	// Send queues an encoded frame without blocking. It returns false when the frame was dropped.
	Send(frame []byte) bool
}

// Hub maps room ids to the connections subscribed to them.
type Hub struct {
	groups map[string]map[string]Conn
	mu     sync.RWMutex
	logger zerolog.Logger
}

// New creates an empty Hub.
func New() *Hub {
	return &Hub{
		groups: make(map[string]map[string]Conn),
		logger: logx.Component("Hub"),
	}
}

// Join subscribes c to the room group.
func (h *Hub) Join(roomID string, c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	group, ok := h.groups[roomID]
	if !ok {
		group = make(map[string]Conn)
		h.groups[roomID] = group
	}
	group[c.ID()] = c

	h.logger.Debug().
		Str("room_id", roomID).
		Str("connection_id", c.ID()).
		Int("group_size", len(group)).
		Msg("Connection joined group.")
}

// Leave unsubscribes a connection. Empty groups are dropped.
func (h *Hub) Leave(roomID, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	group, ok := h.groups[roomID]
	if !ok {
		return
	}
	delete(group, connID)
	if len(group) == 0 {
		delete(h.groups, roomID)
	}
}

// Size returns the number of connections in a group.
func (h *Hub) Size(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.groups[roomID])
}

// Publish encodes msg once and delivers it to every connection in the group except
// exceptConnID (pass "" to include everyone). It returns the number of connections reached.
func (h *Hub) Publish(roomID string, msg any, exceptConnID string) (int, error) {
	frame, err := json.Marshal(msg)
	if err != nil {
		return 0, fmt.Errorf("encode frame for room %s: %w", roomID, err)
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for id, c := range h.groups[roomID] {
		if id == exceptConnID {
			continue
		}
		if h.deliver(c, frame) {
			delivered++
		}
	}
	return delivered, nil
}

// Send encodes msg and delivers it to a single connection.
func (h *Hub) Send(c Conn, msg any) error {
	frame, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode frame for connection %s: %w", c.ID(), err)
	}
	h.deliver(c, frame)
	return nil
}

func (h *Hub) deliver(c Conn, frame []byte) bool {
	if c.Send(frame) {
		return true
	}
	metrics.DroppedFrames.Inc()
	h.logger.Warn().Str("connection_id", c.ID()).Msg("Connection queue full, frame dropped.")
	return false
}
