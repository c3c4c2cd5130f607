package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Broadcaster metrics
var (
	// BroadcasterConnectedClients tracks the number of connected WebSocket sessions
	BroadcasterConnectedClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "broadcaster_connected_clients",
			Help: "Number of connected WebSocket sessions",
		},
	)

	// BroadcasterEventsDelivered tracks events delivered to sessions by event name
	BroadcasterEventsDelivered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "broadcaster_events_delivered_total",
			Help: "Events delivered to connected sessions by event name",
		},
		[]string{"event"},
	)

	// BroadcasterSlowClientsEvicted tracks clients evicted for full send buffers
	BroadcasterSlowClientsEvicted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "broadcaster_slow_clients_evicted_total",
			Help: "Clients evicted because their send buffer was full",
		},
	)

	// WebSocketPingFailures tracks failed keepalive pings
	WebSocketPingFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_ping_failures_total",
			Help: "Failed WebSocket keepalive pings",
		},
	)
)

// Event pipeline metrics
var (
	// EventsEmittedTotal tracks change events emitted by mutations, by event name
	EventsEmittedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_emitted_total",
			Help: "Change events emitted by mutations, by event name",
		},
		[]string{"event"},
	)

	// BusPublishFailures tracks failed cross-instance event publishes
	BusPublishFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bus_publish_failures_total",
			Help: "Failed cross-instance event publishes",
		},
	)

	// NotificationFailures tracks failed side-notification deliveries
	NotificationFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notification_failures_total",
			Help: "Failed best-effort side-notification deliveries",
		},
	)

	// AuditWriteFailures tracks failed audit sink writes
	AuditWriteFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "audit_write_failures_total",
			Help: "Failed audit sink writes (never block the mutation)",
		},
	)
)

// Stage machine metrics
var (
	// StageTransitionsTotal tracks successful stage transitions by target stage and role
	StageTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stage_transitions_total",
			Help: "Successful application stage transitions by target stage and actor role",
		},
		[]string{"to", "role"},
	)
)
