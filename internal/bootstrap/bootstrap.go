// Package bootstrap assembles the services shared by the HTTP API and the
// worker manager from loaded configuration.
package bootstrap

import (
	"context"
	"fmt"

	"marketpulse/internal/api"
	"marketpulse/internal/common/config"
	"marketpulse/internal/common/database"
	apperrors "marketpulse/internal/common/errors"
	"marketpulse/internal/common/logger"
	"marketpulse/internal/common/notify"
	"marketpulse/internal/common/observability"
	"marketpulse/internal/common/reporting"
	"marketpulse/internal/datareset"
	"marketpulse/internal/marketsearch"
	"marketpulse/internal/sampledata"
)

type Services struct {
	Config        *config.Config
	Logger        logger.Logger
	Errors        *apperrors.ErrorHandler
	Observability *observability.Observability
	Gateway       *marketsearch.Gateway
	Orchestrator  *datareset.Orchestrator
	Generator     *sampledata.Generator

	Postgres      *database.PostgresClient
	Redis         *database.RedisClient
	Elasticsearch *database.ElasticsearchClient
}

// New builds every service cfg enables. A missing database or search key is
// not fatal here; the affected operation reports it per call.
func New(ctx context.Context, cfg *config.Config) (*Services, error) {
	reporter, reportTimeout, err := reporting.FromConfig(ctx, cfg.Reporting, cfg.Database.Elasticsearch)
	if err != nil {
		return nil, fmt.Errorf("error reporting: %w", err)
	}

	log := logger.NewStructured(logger.Options{
		Level:         cfg.Logging.Level,
		Format:        cfg.Logging.Format,
		Development:   cfg.App.IsDevelopment(),
		Reporter:      reporter,
		ReportTimeout: reportTimeout,
	})

	s := &Services{Config: cfg, Logger: log}
	s.Observability = observability.New(cfg.Observability.ServiceName, cfg.Observability.JaegerEndpoint, log)

	var notifier notify.Notifier = notify.Nop{}
	if cfg.Notifications.Enabled {
		s.Redis = database.NewRedis(cfg.Database.Redis)
		notifier = notify.NewRedisNotifier(s.Redis.Client, cfg.Notifications.Channel)
	}
	s.Errors = apperrors.NewErrorHandler(log, notifier)

	if cfg.Reporting.Elasticsearch.Enabled {
		s.Elasticsearch, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			s.Close()
			return nil, err
		}
	}

	resetOpts := datareset.OptionsFrom(cfg.Reset)
	sampleOpts := sampledata.OptionsFrom(cfg.SampleData)
	var (
		store  datareset.Deleter
		seeder sampledata.Store
	)
	if cfg.Database.Postgres.Configured() {
		s.Postgres, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			s.Close()
			return nil, err
		}
		store = datareset.NewPostgresStore(s.Postgres.GetDB())
		seeder = sampledata.NewPostgresStore(s.Postgres.GetDB())
	} else {
		key, env := cfg.Database.Postgres.Missing()
		resetOpts.MissingStore = &apperrors.ConfigError{Key: key, EnvVar: env}
		sampleOpts.MissingStore = resetOpts.MissingStore
		log.Warn("database not configured; resets and sample data will fail", map[string]interface{}{
			"env": env,
		})
	}

	s.Orchestrator, err = datareset.NewOrchestrator(store, resetOpts, log)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.Generator = sampledata.NewGenerator(seeder, sampleOpts, log)
	s.Gateway = marketsearch.NewGateway(marketsearch.ConfigFrom(cfg.Search), log)

	return s, nil
}

// Ready lists the readiness checks for the dependencies that were opened.
func (s *Services) Ready() map[string]api.Pinger {
	checks := map[string]api.Pinger{}
	if s.Postgres != nil {
		checks["postgres"] = s.Postgres
	}
	if s.Redis != nil {
		checks["redis"] = s.Redis
	}
	if s.Elasticsearch != nil {
		checks["elasticsearch"] = s.Elasticsearch
	}
	return checks
}

// Close releases connections and flushes telemetry.
func (s *Services) Close() {
	if s.Postgres != nil {
		if err := s.Postgres.Close(); err != nil {
			s.Logger.Warn("closing postgres", map[string]interface{}{"error": err.Error()})
		}
	}
	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			s.Logger.Warn("closing redis", map[string]interface{}{"error": err.Error()})
		}
	}
	if s.Observability != nil {
		s.Observability.Shutdown()
	}
}
