package session

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"focusroom/internal/app/room"
	"focusroom/internal/metrics"
)

// RunTimers advances every running room timer once per interval until ctx is done.
func (co *Coordinator) RunTimers(ctx context.Context, interval time.Duration) {
	ticker := co.clock.NewTicker(interval)
	defer ticker.Stop()

	co.logger.Info().Dur("interval", interval).Msg("Timer driver started.")

	for {
		select {
		case <-ctx.Done():
			co.logger.Info().Msg("Timer driver stopped.")
			return
		case <-ticker.Chan():
			co.tickRooms()
		}
	}
}

// tickRooms is one driver pass. Rooms are visited one at a time; no two room locks are
// ever held together.
func (co *Coordinator) tickRooms() {
	timer := prometheus.NewTimer(metrics.DriverLatency)
	defer timer.ObserveDuration()

	for _, r := range co.rooms.Rooms() {
		co.tickRoom(r)
	}
}

func (co *Coordinator) tickRoom(r *room.Room) {
	r.Lock()
	defer r.Unlock()

	if r.Closed() || r.IsEmpty() || !r.Timer().IsRunning {
		return
	}

	res := r.Tick()
	metrics.TimerTicks.Inc()

	t := r.Timer()
	co.publish(r.ID(), EventTimerUpdate, t.State(), "")

	if res.Switched {
		label := r.Settings().Label(t.Phase)
		metrics.PhaseSwitches.WithLabelValues(string(t.Phase)).Inc()

		co.publish(r.ID(), EventPhaseSwitched, phaseSwitchedPayload{Phase: t.Phase, Label: label}, "")
		co.publish(r.ID(), EventChatMessage, co.systemMessage(fmt.Sprintf(noticePhase, label)), "")

		co.logger.Info().Str("room_id", r.ID()).Str("phase", string(t.Phase)).Msg("Phase switched.")
	}
	if res.Completed {
		co.logger.Info().Str("room_id", r.ID()).Str("phase", string(t.Phase)).Msg("Timer finished.")
	}
}
