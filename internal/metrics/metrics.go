package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "focusroom_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "focusroom_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Room metrics
	RoomsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "focusroom_rooms_active",
			Help: "Rooms currently registered, including rooms pending deletion",
		},
	)

	RoomsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "focusroom_rooms_created_total",
			Help: "Total rooms created",
		},
	)

	RoomDeletions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "focusroom_room_deletions_total",
			Help: "Deferred deletion outcomes",
		},
		[]string{"outcome"}, // "scheduled", "cancelled", "deleted", "skipped"
	)

	// Session metrics
	ConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "focusroom_connections_active",
			Help: "Open WebSocket connections",
		},
	)

	EventsReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "focusroom_events_received_total",
			Help: "Inbound events by type",
		},
		[]string{"type"},
	)

	CommandErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "focusroom_command_errors_total",
			Help: "Commands rejected with an error event, by error code",
		},
		[]string{"code"},
	)

	HostTransfers = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "focusroom_host_transfers_total",
			Help: "Total host failovers",
		},
	)

	DroppedFrames = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "focusroom_dropped_frames_total",
			Help: "Outbound frames dropped because a connection queue was full",
		},
	)

	// Timer metrics
	TimerTicks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "focusroom_timer_ticks_total",
			Help: "Running room timers advanced by the driver",
		},
	)

	PhaseSwitches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "focusroom_phase_switches_total",
			Help: "Automatic phase changes by the phase entered",
		},
		[]string{"phase"},
	)

	DriverLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "focusroom_driver_pass_seconds",
			Help:    "Duration of one timer driver pass over all rooms",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1},
		},
	)
)
