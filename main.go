package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/duelmarket/duelmarket/engine"
	"github.com/duelmarket/duelmarket/engine/catalog"
	"github.com/duelmarket/duelmarket/engine/database"
	"github.com/duelmarket/duelmarket/engine/database/repositories"
	"github.com/duelmarket/duelmarket/engine/economy/auction"
	"github.com/duelmarket/duelmarket/engine/economy/dust"
	"github.com/duelmarket/duelmarket/engine/economy/market"
	"github.com/duelmarket/duelmarket/engine/economy/packs"
	"github.com/duelmarket/duelmarket/engine/economy/sweep"
	"github.com/duelmarket/duelmarket/engine/logger"
	"github.com/duelmarket/duelmarket/engine/web"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	customHandler := logger.NewHandler()
	slog.SetDefault(slog.New(customHandler))

	slog.Info("Starting duelmarket economy engine",
		slog.String("version", version),
		slog.String("commit", commit))

	path := flag.String("config", "config.toml", "path to config")
	flag.Parse()

	cfg, err := engine.LoadConfig(*path)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(-1)
	}
	slog.Info("Configuration loaded successfully")
	customHandler.SetLevel(cfg.Log.Level)

	slog.Info("Initializing database connection...")
	dbStartTime := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := database.New(ctx, cfg.DB)
	if err != nil {
		slog.Error("Failed to connect to database", slog.Any("error", err))
		os.Exit(-1)
	}
	defer db.Close()

	if err := db.InitializeSchema(ctx); err != nil {
		slog.Error("Failed to initialize schema", slog.Any("error", err))
		os.Exit(-1)
	}
	slog.Info("Database ready",
		slog.String("type", "db"),
		slog.Duration("took", time.Since(dbStartTime)))

	userRepo := repositories.NewUserRepository(db.BunDB())
	userCardRepo := repositories.NewUserCardRepository(db.BunDB())
	cardRepo := repositories.NewCardRepository(db.BunDB())
	packRepo := repositories.NewPackRepository(db.BunDB())
	listingRepo := repositories.NewListingRepository(db.BunDB())
	auctionRepo := repositories.NewAuctionRepository(db.BunDB())

	catalogSvc, err := catalog.NewService(cardRepo)
	if err != nil {
		slog.Error("Failed to initialize card catalog", slog.Any("error", err))
		os.Exit(-1)
	}

	packMgr := packs.NewManager(db, packRepo, catalogSvc)
	dustMgr := dust.NewManager(db)
	marketMgr := market.NewManager(db, listingRepo, cfg.Market.ListingHorizon())
	auctionMgr := auction.NewManager(db, auctionRepo, cfg.Market.AuctionHorizon())

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sweeper := sweep.New(cfg.Market.SweepEvery(), marketMgr, auctionMgr,
		sweep.Func(userCardRepo.CleanupZeroAmountCards))
	go sweeper.Run(runCtx)

	app := web.New(&web.App{
		DB:        db,
		Users:     userRepo,
		UserCards: userCardRepo,
		PackRepo:  packRepo,
		Catalog:   catalogSvc,
		Packs:     packMgr,
		Dust:      dustMgr,
		Market:    marketMgr,
		Auctions:  auctionMgr,
	})

	go func() {
		slog.Info("HTTP server listening",
			slog.String("type", "http"),
			slog.String("addr", cfg.Web.Addr()))
		if err := app.Listen(cfg.Web.Addr()); err != nil {
			slog.Error("HTTP server stopped", slog.Any("error", err))
			stop()
		}
	}()

	<-runCtx.Done()
	slog.Info("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("Failed to shut down HTTP server", slog.Any("error", err))
	}
	slog.Info("Shutdown complete")
}
