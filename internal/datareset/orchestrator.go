// Package datareset clears a user's data across the per-user collections.
//
// In the default mode every collection is deleted independently and
// concurrently. A failure on one collection does not undo the others: the
// returned ResetError lists what failed and what was already deleted. The
// transactional mode runs all deletes in one database transaction instead.
package datareset

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"marketpulse/internal/common/config"
	apperrors "marketpulse/internal/common/errors"
	"marketpulse/internal/common/logger"
	"marketpulse/internal/common/metrics"

	"golang.org/x/sync/errgroup"
)

// SuccessMessage is returned to callers when every collection was cleared.
const SuccessMessage = "All sample data deleted successfully"

// Outcome reports rows deleted per collection.
type Outcome struct {
	UserID  string           `json:"userId"`
	Deleted map[string]int64 `json:"deleted"`
}

type Options struct {
	Collections   []string
	Transactional bool
	Timeout       time.Duration
	// MissingStore is returned by Reset when no store is configured.
	// Defaults to DATABASE_URL.
	MissingStore *apperrors.ConfigError
}

// OptionsFrom converts the loaded reset section.
func OptionsFrom(cfg config.ResetConfig) Options {
	return Options{
		Collections:   cfg.Collections,
		Transactional: cfg.Transactional,
		Timeout:       config.GetDuration(cfg.Timeout),
	}
}

type Orchestrator struct {
	store         Deleter
	missing       *apperrors.ConfigError
	collections   []string
	transactional bool
	timeout       time.Duration
	logger        logger.Logger
}

// NewOrchestrator validates opts. store may be nil when the database is not
// configured; Reset then fails with a ConfigError.
func NewOrchestrator(store Deleter, opts Options, log logger.Logger) (*Orchestrator, error) {
	collections := opts.Collections
	if len(collections) == 0 {
		collections = DefaultCollections
	}
	seen := make(map[string]bool, len(collections))
	for _, c := range collections {
		if !allowedCollections[c] {
			return nil, fmt.Errorf("reset: unknown collection %q", c)
		}
		if seen[c] {
			return nil, fmt.Errorf("reset: duplicate collection %q", c)
		}
		seen[c] = true
	}
	if opts.Transactional && store != nil {
		if _, ok := store.(TxDeleter); !ok {
			return nil, fmt.Errorf("reset: transactional mode needs a store that supports transactions")
		}
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	missing := opts.MissingStore
	if missing == nil {
		missing = &apperrors.ConfigError{Key: "database.postgres.url", EnvVar: "DATABASE_URL"}
	}

	return &Orchestrator{
		store:         store,
		missing:       missing,
		collections:   append([]string(nil), collections...),
		transactional: opts.Transactional,
		timeout:       timeout,
		logger:        log.Named("reset-sample-data"),
	}, nil
}

// Reset deletes userID's rows from every collection. Deleting zero rows is
// success, so repeated resets of the same user all succeed.
func (o *Orchestrator) Reset(ctx context.Context, userID string) (*Outcome, error) {
	if o.store == nil {
		return nil, o.missing
	}
	if strings.TrimSpace(userID) == "" {
		return nil, &apperrors.ValidationError{Field: "userId", Message: "is required"}
	}

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	o.logger.Info("resetting user data", map[string]interface{}{
		"userId":        userID,
		"collections":   o.collections,
		"transactional": o.transactional,
	})

	if o.transactional {
		return o.resetInTx(ctx, userID)
	}
	return o.resetConcurrently(ctx, userID)
}

func (o *Orchestrator) resetConcurrently(ctx context.Context, userID string) (*Outcome, error) {
	var (
		mu       sync.Mutex
		deleted  = make(map[string]int64, len(o.collections))
		failures = make(map[string]error)
	)

	// No WithContext: one failed delete must not cancel the others.
	var g errgroup.Group
	for _, collection := range o.collections {
		collection := collection
		g.Go(func() error {
			n, err := o.store.DeleteByUser(ctx, collection, userID)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if tErr := apperrors.AsTimeout("delete from "+collection, err); tErr != nil {
					err = tErr
				}
				failures[collection] = err
				metrics.ResetDeletions.WithLabelValues(collection, "error").Inc()
				return err
			}
			deleted[collection] = n
			metrics.ResetDeletions.WithLabelValues(collection, "ok").Inc()
			metrics.ResetRowsDeleted.WithLabelValues(collection).Add(float64(n))
			return nil
		})
	}
	_ = g.Wait()

	if len(failures) > 0 {
		resetErr := &apperrors.ResetError{UserID: userID, Failures: failures}
		for _, c := range o.collections {
			if _, ok := deleted[c]; ok {
				resetErr.Completed = append(resetErr.Completed, c)
			}
		}
		o.logger.Warn("reset incomplete", map[string]interface{}{
			"userId":    userID,
			"failed":    resetErr.FailedCollections(),
			"completed": resetErr.Completed,
		})
		return nil, resetErr
	}

	o.logger.Info("user data reset", map[string]interface{}{
		"userId":  userID,
		"deleted": deleted,
	})
	return &Outcome{UserID: userID, Deleted: deleted}, nil
}

func (o *Orchestrator) resetInTx(ctx context.Context, userID string) (*Outcome, error) {
	deleted, err := o.store.(TxDeleter).DeleteAllByUser(ctx, o.collections, userID)
	if err != nil {
		failed := "transaction"
		var collErr *CollectionError
		if stderrors.As(err, &collErr) {
			failed = collErr.Collection
		}
		if tErr := apperrors.AsTimeout("reset transaction", err); tErr != nil {
			err = tErr
		}
		metrics.ResetDeletions.WithLabelValues(failed, "error").Inc()
		o.logger.Warn("reset rolled back", map[string]interface{}{
			"userId": userID,
			"failed": failed,
		})
		return nil, &apperrors.ResetError{UserID: userID, Failures: map[string]error{failed: err}}
	}

	for c, n := range deleted {
		metrics.ResetDeletions.WithLabelValues(c, "ok").Inc()
		metrics.ResetRowsDeleted.WithLabelValues(c).Add(float64(n))
	}
	o.logger.Info("user data reset", map[string]interface{}{
		"userId":  userID,
		"deleted": deleted,
	})
	return &Outcome{UserID: userID, Deleted: deleted}, nil
}
