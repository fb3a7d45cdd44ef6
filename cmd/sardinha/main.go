package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/oauth2"

	"sardinha/internal/amqp"
	"sardinha/internal/config"
	"sardinha/internal/dispatcher"
	apphttp "sardinha/internal/http"
	"sardinha/internal/localstore"
	applog "sardinha/internal/log"
	"sardinha/internal/mirror"
	"sardinha/internal/remote"
)

func main() {
	// Load .env for local development; absent in production is fine.
	_ = godotenv.Load()

	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(os.Getenv("LOG_LEVEL")),
		Component: applog.ComponentApp,
	})
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}

	store, err := localstore.Open(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open local store", applog.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer store.Close()

	var tokens oauth2.TokenSource
	if cfg.APIToken != "" {
		tokens = oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.APIToken})
	}
	remoteClient, err := remote.NewClient(cfg.APIBaseURL, tokens, cfg.APITimeout)
	if err != nil {
		logger.Error("Failed to build remote client", applog.FieldError, err)
		os.Exit(1)
	}

	mirrorSvc := mirror.New(store, cfg.UserID)

	// The sync queue is optional; without it offline writes simply wait
	// for a manual re-entry.
	var publisher dispatcher.Publisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Sync queue unavailable, continuing without it", applog.FieldError, err)
		} else {
			defer amqpClient.Close()
			publisher = amqpClient
		}
	}

	disp := dispatcher.New(remoteClient, mirrorSvc, store, cfg.UserID, publisher,
		logger.WithComponent(applog.ComponentDispatcher).Logger)

	srv := apphttp.NewServer(":"+cfg.Port, disp, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
		cancel()
	}()

	logger.Info("Starting sardinha server",
		"port", cfg.Port,
		"user", cfg.UserID,
		applog.FieldOffline, disp.Offline())
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
