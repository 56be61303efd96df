// cmd/marketpulse-api/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"marketpulse/internal/api"
	"marketpulse/internal/bootstrap"
	"marketpulse/internal/common/config"
	"marketpulse/internal/common/logger"
)

func main() {
	bootLog := logger.New("info", "console")
	defer bootLog.Sync()

	cfg, err := config.Load()
	if err != nil {
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	if !cfg.App.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()
	services, err := bootstrap.New(ctx, cfg)
	if err != nil {
		bootLog.Fatal("service setup failed", zap.Error(err))
	}
	defer services.Close()

	log := services.Logger.Named("marketpulse-api")

	router := api.NewRouter(api.Deps{
		Searcher:     services.Gateway,
		Resetter:     services.Orchestrator,
		Generator:    services.Generator,
		ErrorHandler: services.Errors,
		Logger:       services.Logger,
		Operations:   services.Observability,
		Ready:        services.Ready(),
	})

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	go func() {
		log.Info("http server listening", map[string]interface{}{"address": server.Addr})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", map[string]interface{}{"error": err.Error()})
			os.Exit(1)
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("shutdown signal received", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown failed", map[string]interface{}{"error": err.Error()})
	}
	log.Info("marketpulse api stopped", nil)
}
