package websocket

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// ServeClient registers the connection with the hub and pumps reads until
// the peer goes away. Operator dashboards only listen; inbound frames are
// drained to keep pings flowing.
func ServeClient(hub *WsHub, operatorID string, conn *websocket.Conn, logger zerolog.Logger) {
	client := &WsClient{OperatorID: operatorID, Conn: conn}
	hub.Register <- client

	defer func() {
		hub.Unregister <- client
	}()

	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Error().Err(err).Str("operator_id", operatorID).Msg("Unexpected WebSocket close")
			}
			return
		}
	}
}
