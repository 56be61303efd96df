// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"marketpulse/internal/bootstrap"
	"marketpulse/internal/common/camunda"
	"marketpulse/internal/common/config"
	"marketpulse/internal/common/logger"

	gsd "marketpulse/internal/workers/market/generate-sample-data"
	ms "marketpulse/internal/workers/market/market-search"
	rud "marketpulse/internal/workers/market/reset-user-data"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log logger.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName), map[string]interface{}{
				"error":       err.Error(),
				"attempt":     i + 1,
				"maxRetries":  maxRetries,
				"nextRetryIn": delay.String(),
			})
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	bootLog := logger.New("info", "console")
	defer bootLog.Sync()

	bootLog.Info("Starting worker manager...")

	cfg, err := config.Load()
	if err != nil {
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	ctx := context.Background()
	services, err := bootstrap.New(ctx, cfg)
	if err != nil {
		bootLog.Fatal("service setup failed", zap.Error(err))
	}
	defer services.Close()

	log := services.Logger.Named("worker-manager")

	// --- Init Zeebe Client with retry ---
	zeebe, err := camunda.NewClient(cfg.Camunda)
	if err != nil {
		bootLog.Fatal("zeebe client setup failed", zap.Error(err))
	}
	defer zeebe.Close()

	err = retryWithBackoff(func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return zeebe.Ping(pingCtx)
	}, 10, 2*time.Second, log, "Zeebe connection")
	if err != nil {
		bootLog.Fatal("zeebe unreachable after retries", zap.Error(err))
	}
	log.Info("Zeebe client connected", map[string]interface{}{"broker": cfg.Camunda.BrokerAddress})

	// --- Register Workers ---
	var workers []worker.JobWorker

	searchCfg := config.GetWorkerConfig(cfg, ms.TaskType)
	searchHandler := ms.NewHandler(
		&ms.Config{Timeout: config.GetDuration(searchCfg.Timeout)},
		services.Gateway, services.Errors, services.Logger,
	)
	if w := camunda.StartWorker(zeebe.GetClient(), ms.TaskType, searchCfg, searchHandler.Handle, log); w != nil {
		workers = append(workers, w)
	}

	resetCfg := config.GetWorkerConfig(cfg, rud.TaskType)
	resetHandler := rud.NewHandler(
		&rud.Config{Timeout: config.GetDuration(resetCfg.Timeout)},
		services.Orchestrator, services.Errors, services.Logger,
	)
	if w := camunda.StartWorker(zeebe.GetClient(), rud.TaskType, resetCfg, resetHandler.Handle, log); w != nil {
		workers = append(workers, w)
	}

	sampleCfg := config.GetWorkerConfig(cfg, gsd.TaskType)
	sampleHandler := gsd.NewHandler(
		&gsd.Config{Timeout: config.GetDuration(sampleCfg.Timeout)},
		services.Generator, services.Errors, services.Logger,
	)
	if w := camunda.StartWorker(zeebe.GetClient(), gsd.TaskType, sampleCfg, sampleHandler.Handle, log); w != nil {
		workers = append(workers, w)
	}

	log.Info("workers registered", map[string]interface{}{"count": len(workers)})

	// --- Health & Metrics Server ---
	deps := services.Ready()
	deps["zeebe"] = zeebe

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"status": "healthy"})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		readyCtx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		checks := make(map[string]string, len(deps))
		status := http.StatusOK
		for name, p := range deps {
			if err := p.Ping(readyCtx); err != nil {
				checks[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			checks[name] = "ok"
		}
		writeJSON(w, status, map[string]interface{}{"ready": status == http.StatusOK, "checks": checks})
	})
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{Addr: cfg.Server.Address, Handler: mux}
	go func() {
		log.Info("health/metrics server listening", map[string]interface{}{"address": server.Addr})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("health/metrics server failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("shutdown signal received, stopping workers...", nil)
	for _, w := range workers {
		w.Close()
		w.AwaitClose()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("health/metrics server shutdown failed", map[string]interface{}{"error": err.Error()})
	}

	log.Info("worker manager stopped", nil)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
