package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/zwehtet-dev/tg-bot/internal/application/authservice"
	"github.com/zwehtet-dev/tg-bot/internal/application/exchangeservice"
	"github.com/zwehtet-dev/tg-bot/internal/server/middleware"
	"github.com/zwehtet-dev/tg-bot/internal/server/websocket"
	"github.com/zwehtet-dev/tg-bot/pkg/config"
)

type Handlers struct {
	ExchangeSvc exchangeservice.IExchangeService
	AuthSvc     authservice.IAuthService
	Logger      zerolog.Logger
	Config      *config.Config
	WsHub       *websocket.WsHub
}

func New(exchangeSvc exchangeservice.IExchangeService, authSvc authservice.IAuthService, logger zerolog.Logger, config *config.Config, wsHub *websocket.WsHub) *Handlers {
	return &Handlers{
		ExchangeSvc: exchangeSvc,
		AuthSvc:     authSvc,
		Logger:      logger,
		Config:      config,
		WsHub:       wsHub,
	}
}

func (h *Handlers) SetupHandlers(router *gin.Engine) {
	mw := middleware.NewMiddleware(h.AuthSvc, h.Logger)
	mw.SetupMiddleware(router)

	exchangeHandler := NewExchangeHandler(h.ExchangeSvc, h.Logger)
	accountHandler := NewAccountHandler(h.ExchangeSvc, h.Logger)
	adminHandler := NewAdminHandler(h.ExchangeSvc, h.Logger)
	authHandler := NewAuthHandler(h.AuthSvc, h.Logger)
	wsHandler := NewWebSocketHandler(h.WsHub, h.Config.WebSocket, h.Logger)
	healthHandler := NewHealthHandler()

	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	router.POST("/v1/auth/token", mw.APIKeyMiddleware(), authHandler.IssueToken)

	// Operator event stream
	router.GET("/status", mw.AuthMiddleware(), wsHandler.HandleConnection)

	v1 := router.Group("/v1")
	v1.Use(mw.AuthMiddleware())
	{
		receipts := v1.Group("/receipts")
		{
			receipts.POST("/extract", exchangeHandler.ExtractReceipt)
		}

		transactions := v1.Group("/transactions")
		{
			transactions.POST("", exchangeHandler.Submit)
			transactions.GET("/today", exchangeHandler.TodaySummary)
			transactions.GET("/:id", exchangeHandler.GetTransaction)
			transactions.POST("/:id/confirm", exchangeHandler.Confirm)
			transactions.POST("/:id/cancel", exchangeHandler.Cancel)
			transactions.POST("/:id/counter-receipt", exchangeHandler.AttachCounterReceipt)
		}

		requesters := v1.Group("/requesters")
		{
			requesters.GET("/:id/pending", exchangeHandler.LatestPending)
		}

		accounts := v1.Group("/accounts")
		{
			accounts.GET("", accountHandler.List)
			accounts.POST("", accountHandler.Register)
			accounts.DELETE("/:id", accountHandler.Deactivate)
			accounts.PUT("/:id/display-name", accountHandler.UpdateDisplayName)
		}

		admin := v1.Group("/admin")
		{
			admin.GET("/rate", adminHandler.GetRate)
			admin.PUT("/rate", adminHandler.SetRate)
			admin.GET("/balances", adminHandler.ListBalances)
			admin.POST("/balances/adjust", adminHandler.AdjustBalance)
			admin.POST("/balances/set", adminHandler.SetBalance)
			admin.GET("/settings/:key", adminHandler.GetSetting)
			admin.PUT("/settings/:key", adminHandler.SetSetting)
		}
	}
}
