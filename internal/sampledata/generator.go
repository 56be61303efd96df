// Package sampledata fills a user's collections with a ready-made jewelry
// business: three personas, three competitor snapshots and two weeks of
// scheduled content awaiting approval.
//
// A user who already has personas is not seeded again; their first personas
// get their demographics and behaviors refreshed instead.
package sampledata

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"marketpulse/internal/common/config"
	apperrors "marketpulse/internal/common/errors"
	"marketpulse/internal/common/logger"
	"marketpulse/internal/common/metrics"
)

// Result messages.
const (
	SeededMessage  = "Sample data generated"
	UpdatedMessage = "Personas updated with complete data"
)

// Outcome describes what Generate did.
type Outcome struct {
	UserID  string `json:"userId"`
	Seeded  bool   `json:"seeded"`
	Updated int    `json:"updated"`
	Message string `json:"message"`
}

type Options struct {
	Timeout time.Duration
	// MissingStore is returned by Generate when no store is configured.
	// Defaults to DATABASE_URL.
	MissingStore *apperrors.ConfigError
	// Now defaults to time.Now.
	Now func() time.Time
}

// OptionsFrom converts the loaded sample_data section.
func OptionsFrom(cfg config.SampleDataConfig) Options {
	return Options{Timeout: config.GetDuration(cfg.Timeout)}
}

type Generator struct {
	store   Store
	missing *apperrors.ConfigError
	timeout time.Duration
	now     func() time.Time
	logger  logger.Logger
}

// NewGenerator accepts a nil store; Generate then fails with a ConfigError.
func NewGenerator(store Store, opts Options, log logger.Logger) *Generator {
	g := &Generator{
		store:   store,
		missing: opts.MissingStore,
		timeout: opts.Timeout,
		now:     opts.Now,
		logger:  log.Named("generate-sample-data"),
	}
	if g.missing == nil {
		g.missing = &apperrors.ConfigError{Key: "database.postgres.url", EnvVar: "DATABASE_URL"}
	}
	if g.timeout <= 0 {
		g.timeout = 15 * time.Second
	}
	if g.now == nil {
		g.now = time.Now
	}
	return g
}

// Generate seeds userID's collections, or refreshes their existing personas.
// A blank businessName falls back to DefaultBusinessName.
func (g *Generator) Generate(ctx context.Context, userID, businessName string) (*Outcome, error) {
	if g.store == nil {
		return nil, g.missing
	}
	if strings.TrimSpace(userID) == "" {
		return nil, &apperrors.ValidationError{Field: "userId", Message: "is required"}
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	g.logger.Info("generating sample data", map[string]interface{}{
		"userId":       userID,
		"businessName": businessName,
	})

	existing, err := g.store.PersonaIDs(ctx, userID)
	if err != nil {
		return nil, g.fail(userID, &apperrors.SeedError{UserID: userID, Stage: "personas", Cause: err})
	}

	if len(existing) > 0 {
		return g.refresh(ctx, userID, existing)
	}

	sample := Build(businessName, g.now())
	if err := g.store.Seed(ctx, userID, sample); err != nil {
		var seedErr *apperrors.SeedError
		if !stderrors.As(err, &seedErr) {
			seedErr = &apperrors.SeedError{UserID: userID, Stage: "transaction", Cause: err}
		}
		return nil, g.fail(userID, seedErr)
	}

	metrics.SampleDataRuns.WithLabelValues("seeded").Inc()
	g.logger.Info("sample data generated", map[string]interface{}{
		"userId":     userID,
		"personas":   len(sample.Personas),
		"marketData": len(sample.MarketData),
		"content":    len(sample.Content),
	})
	return &Outcome{UserID: userID, Seeded: true, Message: SeededMessage}, nil
}

func (g *Generator) refresh(ctx context.Context, userID string, personaIDs []string) (*Outcome, error) {
	profiles := Personas()
	updated := 0
	for i, id := range personaIDs {
		if i >= len(profiles) {
			break
		}
		if err := g.store.UpdatePersonaProfile(ctx, id, profiles[i].Demographics, profiles[i].Behaviors); err != nil {
			return nil, g.fail(userID, &apperrors.SeedError{UserID: userID, Stage: "personas", Cause: err})
		}
		updated++
	}

	metrics.SampleDataRuns.WithLabelValues("updated").Inc()
	g.logger.Info("existing personas updated", map[string]interface{}{
		"userId":  userID,
		"updated": updated,
	})
	return &Outcome{UserID: userID, Updated: updated, Message: UpdatedMessage}, nil
}

func (g *Generator) fail(userID string, seedErr *apperrors.SeedError) error {
	var timedOut *apperrors.TimeoutError
	if !stderrors.As(seedErr.Cause, &timedOut) {
		if tErr := apperrors.AsTimeout("seed "+seedErr.Stage, seedErr.Cause); tErr != nil {
			seedErr.Cause = tErr
		}
	}
	metrics.SampleDataRuns.WithLabelValues("error").Inc()
	g.logger.Warn("sample data generation failed", map[string]interface{}{
		"userId": userID,
		"stage":  seedErr.Stage,
		"error":  seedErr.Cause.Error(),
	})
	return seedErr
}
