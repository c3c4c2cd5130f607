package broadcast

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"github.com/timayobrian6-droid/Internship-tracker/internal/domain"
	"github.com/timayobrian6-droid/Internship-tracker/internal/metrics"
)

const (
	commandTimeout = 5 * time.Second
	stopTimeout    = 10 * time.Second
)

// --- Command types ---

type hubCmd interface{ isHubCmd() }

type baseHubCmd struct{}

func (baseHubCmd) isHubCmd() {}

type registerCmd struct {
	baseHubCmd
	identity     domain.Identity
	connection   *websocket.Conn
	errorChannel chan error
}

type unregisterCmd struct {
	baseHubCmd
	connection *websocket.Conn
}

type emitCmd struct {
	baseHubCmd
	event    domain.ChangeEvent
	audience domain.Audience
}

type clientCountCmd struct {
	baseHubCmd
	replyChannel chan int
}

type stopCmd struct {
	baseHubCmd
}

type session struct {
	identity domain.Identity
	writer   *clientWriter
}

// Hub fans change events out to connected sessions. It is an actor: all state
// lives in the run goroutine and is mutated only through commands. Delivery is
// scoped server-side: a session receives an event only when the event's
// audience covers its identity. Admin sessions receive everything.
type Hub struct {
	cmdCh                 chan hubCmd
	clock                 clockwork.Clock
	sessions              map[*websocket.Conn]*session
	perIdentity           map[domain.Identity]int
	maxClientsPerIdentity int
	done                  chan struct{}
}

// NewHub creates the hub and starts its actor goroutine.
// maxClientsPerIdentity limits simultaneous connections per identity.
func NewHub(clock clockwork.Clock, maxClientsPerIdentity int) *Hub {
	h := &Hub{
		cmdCh:                 make(chan hubCmd, 256),
		clock:                 clock,
		sessions:              make(map[*websocket.Conn]*session),
		perIdentity:           make(map[domain.Identity]int),
		maxClientsPerIdentity: maxClientsPerIdentity,
		done:                  make(chan struct{}),
	}
	go h.run()
	return h
}

// Register adds a connected session for an identity.
// Returns an error only if the per-identity connection limit is reached.
func (h *Hub) Register(identity domain.Identity, conn *websocket.Conn) error {
	errCh := make(chan error, 1)
	h.cmdCh <- registerCmd{identity: identity, connection: conn, errorChannel: errCh}

	timer := h.clock.NewTimer(commandTimeout)
	defer timer.Stop()

	select {
	case err := <-errCh:
		return err
	case <-timer.Chan():
		return fmt.Errorf("register command timed out after %v", commandTimeout)
	}
}

// Unregister removes a session by connection.
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.cmdCh <- unregisterCmd{connection: conn}
}

// Emit implements domain.EventEmitter. Delivery is fire-and-forget: the call
// never blocks on a client, and slow clients are evicted rather than waited on.
func (h *Hub) Emit(event domain.ChangeEvent, audience domain.Audience) {
	h.cmdCh <- emitCmd{event: event, audience: audience}
}

// ClientCount returns the total number of connected sessions.
// Returns -1 if the command times out.
func (h *Hub) ClientCount() int {
	replyCh := make(chan int, 1)
	h.cmdCh <- clientCountCmd{replyChannel: replyCh}

	timer := h.clock.NewTimer(commandTimeout)
	defer timer.Stop()

	select {
	case count := <-replyCh:
		return count
	case <-timer.Chan():
		slog.Warn("ClientCount timed out", "timeout", commandTimeout)
		return -1
	}
}

// Stop shuts down the hub, closing all client connections.
// Blocks until the hub goroutine has exited or timeout is reached.
func (h *Hub) Stop() {
	h.cmdCh <- stopCmd{}

	timer := h.clock.NewTimer(stopTimeout)
	defer timer.Stop()

	select {
	case <-h.done:
		slog.Info("Hub stopped gracefully")
	case <-timer.Chan():
		slog.Warn("Hub stop timeout exceeded, forcing exit", "timeout", stopTimeout)
		close(h.done)
	}
}

func (h *Hub) run() {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Hub panic recovered", "panic", r)
			h.closeAllSessions("hub panic")
		}
	}()
	defer close(h.done)

	for cmd := range h.cmdCh {
		switch c := cmd.(type) {
		case registerCmd:
			h.handleRegister(c)
		case unregisterCmd:
			h.handleUnregister(c.connection)
		case emitCmd:
			h.handleEmit(c)
		case clientCountCmd:
			c.replyChannel <- len(h.sessions)
		case stopCmd:
			h.handleStop()
			return
		default:
			slog.Warn("Hub received unknown command type", "command_type", fmt.Sprintf("%T", cmd))
		}
	}
}

func (h *Hub) handleRegister(c registerCmd) {
	if h.perIdentity[c.identity] >= h.maxClientsPerIdentity {
		slog.Warn("Rejecting client: max clients reached",
			"user_id", c.identity.UserID.String(),
			"max_clients", h.maxClientsPerIdentity,
		)
		_ = c.connection.Close()
		c.errorChannel <- fmt.Errorf("max clients per identity (%d) reached", h.maxClientsPerIdentity)
		return
	}

	h.sessions[c.connection] = &session{
		identity: c.identity,
		writer:   newClientWriter(c.connection, h.clock),
	}
	h.perIdentity[c.identity]++

	metrics.BroadcasterConnectedClients.Set(float64(len(h.sessions)))
	slog.Debug("Session registered",
		"user_id", c.identity.UserID.String(),
		"role", string(c.identity.Role),
		"total_clients", len(h.sessions),
	)
	c.errorChannel <- nil
}

func (h *Hub) handleUnregister(conn *websocket.Conn) {
	s, exists := h.sessions[conn]
	if !exists {
		return
	}

	s.writer.stop()
	delete(h.sessions, conn)
	h.perIdentity[s.identity]--
	if h.perIdentity[s.identity] <= 0 {
		delete(h.perIdentity, s.identity)
	}

	metrics.BroadcasterConnectedClients.Set(float64(len(h.sessions)))
	slog.Debug("Session unregistered",
		"user_id", s.identity.UserID.String(),
		"remaining_clients", len(h.sessions),
	)
}

func (h *Hub) handleEmit(c emitCmd) {
	data, err := json.Marshal(c.event)
	if err != nil {
		slog.Error("Failed to marshal change event", "error", err)
		return
	}

	var slow []*websocket.Conn
	delivered := 0
	for conn, s := range h.sessions {
		if !c.audience.Covers(s.identity) {
			continue
		}
		select {
		case s.writer.sendChannel <- data:
			delivered++
		default:
			slow = append(slow, conn)
		}
	}

	for _, conn := range slow {
		slog.Warn("Disconnecting slow client", "event", string(c.event.Name))
		metrics.BroadcasterSlowClientsEvicted.Inc()
		h.handleUnregister(conn)
	}

	metrics.BroadcasterEventsDelivered.WithLabelValues(string(c.event.Name)).Add(float64(delivered))
}

func (h *Hub) handleStop() {
	slog.Info("Hub shutting down", "connected_clients", len(h.sessions))
	h.closeAllSessions("Server shutting down")
	slog.Info("Hub shutdown complete")
}

// closeAllSessions closes all client connections with the given reason.
// Used during panic recovery and graceful shutdown.
func (h *Hub) closeAllSessions(reason string) {
	for conn, s := range h.sessions {
		s.writer.stopGraceful(reason)
		delete(h.sessions, conn)
	}
	h.perIdentity = make(map[domain.Identity]int)
	metrics.BroadcasterConnectedClients.Set(0)
}
