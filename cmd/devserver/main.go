package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"restobook/config"
	"restobook/notify"
	"restobook/pkg/logger"
	"restobook/pkg/telemetry"
	"restobook/server"
	"restobook/storage/postgres"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.ServiceName+"-devserver", cfg.LoggerLevel)

	shutdownTelemetry := telemetry.Setup(cfg.ServiceName+"-devserver", cfg.OTLPEndpoint, log)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTelemetry(ctx)
	}()

	pgStore, err := postgres.New(context.Background(), cfg, log)
	if err != nil {
		log.Error("failed to connect to postgres", logger.Error(err))
		os.Exit(1)
	}
	defer pgStore.Close()

	hub := server.NewHub()
	notifier := notify.New(cfg, log)
	srv := server.New(cfg, pgStore, hub, notifier, log)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.AppPort),
		Handler: srv.Router(),
	}

	go func() {
		log.Info("devserver listening", logger.Int("port", cfg.AppPort))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", logger.Error(err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	log.Info("shutting down devserver")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(ctx)
}
