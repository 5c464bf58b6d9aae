package websocket

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/zwehtet-dev/tg-bot/internal/domain/models"
)

// WsHub fans transaction lifecycle and balance events out to connected
// operator dashboards.
type WsHub struct {
	Clients    map[*websocket.Conn]bool
	Broadcast  chan models.StatusUpdate
	Register   chan *WsClient
	Unregister chan *WsClient
	Logger     zerolog.Logger
}

type WsClient struct {
	OperatorID string
	Conn       *websocket.Conn
}

func NewWsHub(logger zerolog.Logger) *WsHub {
	return &WsHub{
		Clients:    make(map[*websocket.Conn]bool),
		Broadcast:  make(chan models.StatusUpdate, 100),
		Register:   make(chan *WsClient, 100),
		Unregister: make(chan *WsClient, 100),
		Logger:     logger.With().Str("component", "ws_hub").Logger(),
	}
}

func (h *WsHub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.Clients[client.Conn] = true
			h.Logger.Info().
				Str("operator_id", client.OperatorID).
				Int("connection_count", len(h.Clients)).
				Msg("WebSocket client registered")

		case client := <-h.Unregister:
			if _, ok := h.Clients[client.Conn]; ok {
				delete(h.Clients, client.Conn)
				client.Conn.Close()
				h.Logger.Info().
					Str("operator_id", client.OperatorID).
					Int("connection_count", len(h.Clients)).
					Msg("WebSocket client unregistered")
			}

		case update := <-h.Broadcast:
			for conn := range h.Clients {
				if err := conn.WriteJSON(update); err != nil {
					h.Logger.Warn().Err(err).Msg("Failed to push update, dropping client")
					delete(h.Clients, conn)
					conn.Close()
				}
			}
		}
	}
}

// Publish queues an update without blocking the caller; a full buffer
// drops the event rather than stalling the workflow.
func (h *WsHub) Publish(update models.StatusUpdate) {
	if update.Timestamp.IsZero() {
		update.Timestamp = time.Now()
	}
	select {
	case h.Broadcast <- update:
	default:
		h.Logger.Warn().Str("type", string(update.Type)).Msg("Broadcast buffer full, update dropped")
	}
}
