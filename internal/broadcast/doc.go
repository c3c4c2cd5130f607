// Package broadcast fans change events out to connected WebSocket sessions.
// Delivery is at-most-once and best-effort: clients refetch affected
// collections in full on any signal, so a dropped event costs freshness, not
// correctness.
package broadcast
