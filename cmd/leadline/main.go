package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/hearthline/leadline/internal/leadservice/adapters/smsprovider"
	"github.com/hearthline/leadline/internal/leadservice/app"
	"github.com/hearthline/leadline/internal/leadservice/notify"
	pgrepo "github.com/hearthline/leadline/internal/leadservice/repository/postgres"
	transport "github.com/hearthline/leadline/internal/leadservice/transport/http"
	"github.com/hearthline/leadline/internal/platform/config"
	"github.com/hearthline/leadline/internal/platform/database"
	"github.com/hearthline/leadline/internal/platform/logger"
)

const templatesDir = "web/templates"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	appLogger := logger.New(cfg.LogLevel)
	appLogger.Info("leadline starting", "port", cfg.ServerPort)

	ctx := context.Background()
	dbPool, err := database.NewDBPool(ctx, cfg.PostgresDSN)
	if err != nil {
		appLogger.Error("Failed to connect to PostgreSQL", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()
	appLogger.Info("Connected to PostgreSQL")

	leadRepo := pgrepo.NewPgLeadRepository(dbPool, appLogger)
	notifLog := pgrepo.NewPgNotificationLogRepository(dbPool, appLogger)

	var provider smsprovider.Adapter
	if cfg.TwilioAccountSID != "" {
		provider = smsprovider.NewTwilioProvider(appLogger, cfg.TwilioAPIBaseURL, cfg.TwilioAccountSID, cfg.TwilioAuthToken, nil)
	} else {
		appLogger.Warn("Twilio credentials not configured; outbound messages use the mock provider")
		provider = smsprovider.NewMockProvider(appLogger, "")
	}

	business := notify.BusinessInfo{
		Name:              cfg.BusinessName,
		Phone:             cfg.BusinessPhone,
		ResponseTimeHours: cfg.ResponseTimeHours,
	}

	intake := app.NewIntakeService(leadRepo, notifLog, provider, app.IntakeConfig{
		Business:              business,
		ProviderPhone:         cfg.TwilioPhone,
		OperatorPhone:         cfg.OperatorPhone,
		DedupWindow:           cfg.DedupWindow,
		TranscriptionLookback: cfg.TranscriptionLookback,
		MaxRecordingSeconds:   cfg.MaxRecordingSeconds,
	}, appLogger)

	displayLoc, err := time.LoadLocation(cfg.DisplayTimezone)
	if err != nil {
		appLogger.Error("Invalid display timezone", "error", err, "timezone", cfg.DisplayTimezone)
		os.Exit(1)
	}

	dashboard := app.NewDashboardService(leadRepo, cfg.DashboardWindow, displayLoc, appLogger)

	webhookHandler := transport.NewWebhookHandler(intake, appLogger, transport.TranscriptionPath, transport.VoicemailCompletePath)
	dashboardHandler, err := transport.NewDashboardHandler(dashboard, appLogger, validator.New(), displayLoc, templatesDir)
	if err != nil {
		appLogger.Error("Failed to load dashboard templates", "error", err)
		os.Exit(1)
	}

	router := transport.NewRouter(webhookHandler, dashboardHandler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		appLogger.Info("HTTP server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Graceful shutdown failed", "error", err)
	}
	appLogger.Info("leadline stopped")
}
