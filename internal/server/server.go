package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/zwehtet-dev/tg-bot/internal/application/authservice"
	"github.com/zwehtet-dev/tg-bot/internal/application/exchangeservice"
	"github.com/zwehtet-dev/tg-bot/internal/server/handlers"
	"github.com/zwehtet-dev/tg-bot/internal/server/websocket"
	"github.com/zwehtet-dev/tg-bot/pkg/config"
)

type Server struct {
	ExchangeSvc exchangeservice.IExchangeService
	AuthSvc     authservice.IAuthService
	Cfg         *config.Config
	Logger      zerolog.Logger
	Router      *gin.Engine
	httpServer  *http.Server
	WsHub       *websocket.WsHub
}

func New(cfg *config.Config, exchangeService exchangeservice.IExchangeService, authSvc authservice.IAuthService, logger zerolog.Logger, wsHub *websocket.WsHub) *Server {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	return &Server{
		Cfg:         cfg,
		ExchangeSvc: exchangeService,
		AuthSvc:     authSvc,
		Logger:      logger,
		Router:      router,
		WsHub:       wsHub,
	}
}

func (s *Server) SetupRouter() {
	handler := handlers.New(
		s.ExchangeSvc,
		s.AuthSvc,
		s.Logger,
		s.Cfg,
		s.WsHub,
	)
	handler.SetupHandlers(s.Router)
}

func (s *Server) Start() {
	s.SetupRouter()

	s.httpServer = &http.Server{
		Addr:         s.Cfg.Server.Host + ":" + s.Cfg.Server.Port,
		Handler:      s.Router,
		ReadTimeout:  20 * time.Second,
		WriteTimeout: 20 * time.Second,
	}

	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, syscall.SIGINT, syscall.SIGTERM)

	s.Logger.Info().Msgf("Starting server on %s", s.httpServer.Addr)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.Logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-stopChan
	s.Logger.Info().Msg("Shutdown signal received, shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.Logger.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	s.Logger.Info().Msg("Server exited gracefully")
}
