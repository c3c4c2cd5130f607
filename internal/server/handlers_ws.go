package server

import (
	"log/slog"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// handleWebSocket upgrades the connection and registers it with the hub. The
// server never reads application data from clients; the read loop exists only
// to detect disconnects and drain control frames.
func (s *Server) handleWebSocket(c echo.Context) error {
	id, err := identityFromContext(c)
	if err != nil {
		return err
	}

	conn, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade has already written its own failure response; nothing
		// useful can be sent after this point.
		slog.Warn("WebSocket upgrade failed", "user_id", id.UserID.String(), "error", err)
		return nil
	}

	if err := s.hub.Register(id, conn); err != nil {
		slog.Warn("Rejected websocket client", "user_id", id.UserID.String(), "error", err)
		// Register closes the connection on rejection.
		return nil
	}

	go s.readPump(conn)
	return nil
}

func (s *Server) readPump(conn *websocket.Conn) {
	defer s.hub.Unregister(conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Debug("WebSocket read error", "error", err)
			}
			return
		}
	}
}
