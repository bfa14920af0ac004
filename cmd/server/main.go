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

	"github.com/Lixing-Zhang/qr-menu/internal/config"
	"github.com/Lixing-Zhang/qr-menu/internal/handlers"
	"github.com/Lixing-Zhang/qr-menu/internal/menu"
	"github.com/Lixing-Zhang/qr-menu/internal/pinger"
	"github.com/Lixing-Zhang/qr-menu/internal/repository"
	"github.com/Lixing-Zhang/qr-menu/internal/service"
	"github.com/Lixing-Zhang/qr-menu/pkg/logger"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, logCloser := logger.NewFromOptions(logger.Options{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	defer logCloser.Close()
	slog.SetDefault(log)

	log.Info("starting qr menu server",
		"port", cfg.Server.Port,
		"host", cfg.Server.Host,
		"catalog_source", cfg.Catalog.Source,
		"log_level", cfg.Log.Level,
	)

	// Initialize repositories
	var catalog repository.CatalogRepository
	switch cfg.Catalog.Source {
	case "memory":
		catalog = repository.NewDemoCatalogRepository()
	default:
		httpCatalog, err := repository.NewHTTPCatalogRepository(cfg.CatalogURL(), cfg.Catalog.ClientID, cfg.Catalog.Timeout)
		if err != nil {
			log.Error("failed to create catalog repository", "error", err)
			os.Exit(1)
		}
		catalog = httpCatalog
	}

	// Initialize visit pinger
	var tracker pinger.Tracker = pinger.NopTracker{}
	if trackURL := cfg.TrackingURL(); trackURL != "" {
		httpTracker, err := pinger.NewHTTPTracker(trackURL, &http.Client{Timeout: cfg.Tracking.Timeout})
		if err != nil {
			log.Error("failed to create tracker", "error", err)
			os.Exit(1)
		}
		tracker = httpTracker
		log.Info("visit tracking enabled", "endpoint", trackURL, "threshold", cfg.Tracking.Threshold)
	} else {
		log.Info("visit tracking disabled")
	}
	visitPinger := pinger.New(tracker,
		pinger.WithThreshold(cfg.Tracking.Threshold),
		pinger.WithTimeout(cfg.Tracking.Timeout),
		pinger.WithLogger(log),
	)

	// Initialize services
	menuService := service.NewMenuService(catalog, cfg.Menu.TTL, log)

	// Build the first snapshot up front; a failure here is retried on the
	// first page load.
	ctx := context.Background()
	if _, err := menuService.Menu(ctx); err != nil {
		if errors.Is(err, menu.ErrNotFound) {
			log.Warn("catalog is empty, menu will answer not found")
		} else {
			log.Warn("initial menu build failed", "error", err)
		}
	}

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(menuService, log)
	menuHandler := handlers.NewMenuHandler(menuService, visitPinger, cfg.Menu.Title, cfg.Menu.Location, log)

	router := handlers.NewRouter(menuHandler, healthHandler, cfg.Auth, log)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	go func() {
		log.Info("server listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	// Let in-flight visit pings finish
	visitPinger.Wait()

	log.Info("server stopped gracefully")
}
