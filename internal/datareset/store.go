package datareset

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

// DefaultCollections are the per-user collections a reset clears.
var DefaultCollections = []string{"content", "market_data", "personas"}

var allowedCollections = map[string]bool{
	"content":     true,
	"market_data": true,
	"personas":    true,
}

// Deleter removes one user's rows from one collection and reports how many
// rows went.
type Deleter interface {
	DeleteByUser(ctx context.Context, collection, userID string) (int64, error)
}

// TxDeleter removes one user's rows from several collections atomically.
type TxDeleter interface {
	DeleteAllByUser(ctx context.Context, collections []string, userID string) (map[string]int64, error)
}

// CollectionError names the collection a transactional delete failed on.
type CollectionError struct {
	Collection string
	Err        error
}

func (e *CollectionError) Error() string {
	return fmt.Sprintf("delete from %s: %v", e.Collection, e.Err)
}

func (e *CollectionError) Unwrap() error { return e.Err }

// PostgresStore deletes from Postgres tables keyed by user_id.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func deleteQuery(collection string) (string, error) {
	if !allowedCollections[collection] {
		return "", fmt.Errorf("unknown collection %q", collection)
	}
	return fmt.Sprintf("DELETE FROM %s WHERE user_id = $1", pq.QuoteIdentifier(collection)), nil
}

func (s *PostgresStore) DeleteByUser(ctx context.Context, collection, userID string) (int64, error) {
	query, err := deleteQuery(collection)
	if err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("delete from %s: %w", collection, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected for %s: %w", collection, err)
	}
	return n, nil
}

func (s *PostgresStore) DeleteAllByUser(ctx context.Context, collections []string, userID string) (map[string]int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	deleted := make(map[string]int64, len(collections))
	for _, collection := range collections {
		query, err := deleteQuery(collection)
		if err != nil {
			return nil, &CollectionError{Collection: collection, Err: err}
		}
		res, err := tx.ExecContext(ctx, query, userID)
		if err != nil {
			return nil, &CollectionError{Collection: collection, Err: err}
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nil, &CollectionError{Collection: collection, Err: err}
		}
		deleted[collection] = n
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return deleted, nil
}
