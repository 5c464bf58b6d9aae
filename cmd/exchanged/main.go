package main

import (
	"context"
	"flag"

	"github.com/zwehtet-dev/tg-bot/internal/application/authservice"
	"github.com/zwehtet-dev/tg-bot/internal/application/exchangeservice"
	"github.com/zwehtet-dev/tg-bot/internal/application/matcher"
	"github.com/zwehtet-dev/tg-bot/internal/infrastructure/clients"
	"github.com/zwehtet-dev/tg-bot/internal/infrastructure/database"
	"github.com/zwehtet-dev/tg-bot/internal/repositories/balancerepo"
	"github.com/zwehtet-dev/tg-bot/internal/repositories/settingsrepo"
	"github.com/zwehtet-dev/tg-bot/internal/repositories/transactionrepo"
	"github.com/zwehtet-dev/tg-bot/internal/server"
	"github.com/zwehtet-dev/tg-bot/internal/server/websocket"
	"github.com/zwehtet-dev/tg-bot/pkg/config"
	"github.com/zwehtet-dev/tg-bot/pkg/logger"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		l := logger.New()
		l.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.NewWithConfig(cfg.Logger)

	db, err := database.New(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.ShutDown()

	balanceRepo := balancerepo.New(db, log)
	transactionRepo := transactionrepo.New(db, log)
	settingsRepo := settingsrepo.New(db, log)

	accountMatcher := matcher.New(cfg.Matching, log)
	extractionClient := clients.NewExtractionClient(&cfg.Extraction, log)
	messengerClient := clients.NewMessengerClient(&cfg.Messenger, log)

	wsHub := websocket.NewWsHub(log)
	go wsHub.Run()

	exchangeService := exchangeservice.New(
		balanceRepo,
		transactionRepo,
		settingsRepo,
		accountMatcher,
		extractionClient,
		messengerClient,
		wsHub,
		cfg.Exchange,
		log,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := exchangeService.Seed(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed initial state")
	}
	go func() {
		if err := exchangeService.StartPendingSweeper(ctx); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("Pending sweeper exited")
		}
	}()

	authSvc := authservice.NewAuthService(cfg, log)

	srv := server.New(cfg, exchangeService, authSvc, log, wsHub)
	srv.Start()
}
