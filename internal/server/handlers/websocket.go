package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	gws "github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/zwehtet-dev/tg-bot/internal/server/websocket"
	"github.com/zwehtet-dev/tg-bot/pkg/config"
)

type WebSocketHandler struct {
	wsHub    *websocket.WsHub
	upgrader gws.Upgrader
	logger   zerolog.Logger
}

func NewWebSocketHandler(wsHub *websocket.WsHub, cfg config.WebSocketConfig, logger zerolog.Logger) *WebSocketHandler {
	readBuf := cfg.ReadBufferSize
	if readBuf == 0 {
		readBuf = 1024
	}
	writeBuf := cfg.WriteBufferSize
	if writeBuf == 0 {
		writeBuf = 1024
	}

	upgrader := gws.Upgrader{
		ReadBufferSize:  readBuf,
		WriteBufferSize: writeBuf,
	}
	if !cfg.CheckOrigin {
		upgrader.CheckOrigin = func(r *http.Request) bool { return true }
	}

	return &WebSocketHandler{
		wsHub:    wsHub,
		logger:   logger,
		upgrader: upgrader,
	}
}

func (h *WebSocketHandler) HandleConnection(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": "Failed to upgrade to WebSocket",
		})
		return
	}

	operatorID := c.GetString("operator_id")
	go websocket.ServeClient(h.wsHub, operatorID, conn, h.logger)
}
