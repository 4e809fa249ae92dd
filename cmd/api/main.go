package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ArowuTest/memebox-backend/api/routes"
	"github.com/ArowuTest/memebox-backend/internal/config"
	"github.com/ArowuTest/memebox-backend/internal/game"
	"github.com/ArowuTest/memebox-backend/internal/services"
	"github.com/ArowuTest/memebox-backend/internal/storage"
	"github.com/ArowuTest/memebox-backend/pkg/exchange"
	"github.com/ArowuTest/memebox-backend/pkg/jwt"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"golang.org/x/exp/slog"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := config.NewLogger(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)
	gin.SetMode(cfg.Server.Mode)

	ctx := context.Background()
	store, err := storage.Open(ctx, cfg.Storage, cfg.MongoDB)
	if err != nil {
		slog.Error("Failed to open storage", "error", err, "driver", cfg.Storage.Driver)
		os.Exit(1)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			slog.Error("Error closing storage", "error", err)
		}
	}()

	var venue services.ExchangeVenue
	if cfg.Game.PayoutAsset != "" && cfg.Game.PayoutAsset != cfg.Game.PoolAsset {
		client, err := exchange.NewClient(exchange.Config{
			BaseURL:           cfg.Exchange.BaseURL,
			APIKey:            cfg.Exchange.APIKey,
			MockAPI:           cfg.Exchange.MockAPI,
			MockRate:          cfg.Exchange.MockRate,
			MockLiquidity:     cfg.Exchange.MockLiquidity,
			SettlementAccount: cfg.Exchange.SettlementAccount,
		})
		if err != nil {
			slog.Error("Failed to configure exchange", "error", err)
			os.Exit(1)
		}
		venue = client
		slog.Info("Payouts routed through exchange", "poolAsset", cfg.Game.PoolAsset, "payoutAsset", cfg.Game.PayoutAsset, "mock", cfg.Exchange.MockAPI)
	}

	clock := game.RealClock{}
	tokens := jwt.NewTokenService(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiresIn)*time.Second)
	transfers := services.NewLedgerTransfer(store.Accounts, store.Transfers, clock)
	gameService := services.NewGameService(store.Games, store.Accounts, store.Settlements, transfers, venue, clock, services.GameSettings{
		Rules:       cfg.Game.Rules(),
		PoolAsset:   cfg.Game.PoolAsset,
		PayoutAsset: cfg.Game.PayoutAsset,
	})
	accountService := services.NewAccountService(store.Accounts, store.Transfers, store.Settlements, clock)
	authService := services.NewAuthService(store.Users, tokens)

	if err := authService.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		slog.Error("Failed to ensure admin account", "error", err)
		os.Exit(1)
	}

	router := routes.SetupRouter(routes.Dependencies{
		GameService:    gameService,
		AccountService: accountService,
		AuthService:    authService,
		Tokens:         tokens,
		Logger:         logger,
		AllowedHosts:   cfg.Server.AllowedHosts,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Server starting", "port", cfg.Server.Port, "storage", cfg.Storage.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	slog.Info("Server exiting")
}
