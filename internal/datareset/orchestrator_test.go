package datareset

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	apperrors "marketpulse/internal/common/errors"
	"marketpulse/internal/common/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// ==========================
// Fake store
// ==========================

// memStore keeps rows per collection per user. Collections listed in fail
// return an error instead of deleting.
type memStore struct {
	mu    sync.Mutex
	rows  map[string]map[string]int64
	fail  map[string]error
	calls int
}

func newMemStore() *memStore {
	return &memStore{
		rows: map[string]map[string]int64{
			"content":     {"u-1": 3, "u-2": 1},
			"market_data": {"u-1": 2},
			"personas":    {"u-1": 5},
		},
		fail: map[string]error{},
	}
}

func (s *memStore) DeleteByUser(_ context.Context, collection, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if err := s.fail[collection]; err != nil {
		return 0, err
	}
	n := s.rows[collection][userID]
	delete(s.rows[collection], userID)
	return n, nil
}

func (s *memStore) count(collection, userID string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rows[collection][userID]
}

func createTestOrchestrator(t *testing.T, store Deleter, opts Options) *Orchestrator {
	o, err := NewOrchestrator(store, opts, logger.NewTestLogger(t))
	require.NoError(t, err)
	return o
}

// ==========================
// Tests
// ==========================

func TestReset_DeletesEveryCollection(t *testing.T) {
	store := newMemStore()
	o := createTestOrchestrator(t, store, Options{})

	outcome, err := o.Reset(context.Background(), "u-1")

	require.NoError(t, err)
	assert.Equal(t, "u-1", outcome.UserID)
	assert.Equal(t, map[string]int64{"content": 3, "market_data": 2, "personas": 5}, outcome.Deleted)
	assert.Equal(t, int64(1), store.count("content", "u-2"))
}

func TestReset_Idempotent(t *testing.T) {
	store := newMemStore()
	o := createTestOrchestrator(t, store, Options{})

	_, err := o.Reset(context.Background(), "u-1")
	require.NoError(t, err)

	outcome, err := o.Reset(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"content": 0, "market_data": 0, "personas": 0}, outcome.Deleted)
}

func TestReset_PartialFailureKeepsCompletedDeletes(t *testing.T) {
	store := newMemStore()
	store.fail["market_data"] = stderrors.New("permission denied for table market_data")
	o := createTestOrchestrator(t, store, Options{})

	outcome, err := o.Reset(context.Background(), "u-1")

	assert.Nil(t, outcome)
	var resetErr *apperrors.ResetError
	require.True(t, stderrors.As(err, &resetErr))
	assert.Equal(t, []string{"market_data"}, resetErr.FailedCollections())
	assert.Equal(t, []string{"content", "personas"}, resetErr.Completed)
	assert.Equal(t, apperrors.ErrCodeResetFailed, apperrors.Classify(err))

	// Not rolled back.
	assert.Equal(t, int64(0), store.count("content", "u-1"))
	assert.Equal(t, int64(0), store.count("personas", "u-1"))
	assert.Equal(t, int64(2), store.count("market_data", "u-1"))
	assert.Equal(t, 3, store.calls)
}

func TestReset_AllFailuresAggregated(t *testing.T) {
	store := newMemStore()
	for _, c := range DefaultCollections {
		store.fail[c] = stderrors.New("connection reset")
	}

	_, err := createTestOrchestrator(t, store, Options{}).Reset(context.Background(), "u-1")

	var resetErr *apperrors.ResetError
	require.True(t, stderrors.As(err, &resetErr))
	assert.Equal(t, []string{"content", "market_data", "personas"}, resetErr.FailedCollections())
	assert.Empty(t, resetErr.Completed)
}

func TestReset_BlankUserID(t *testing.T) {
	store := newMemStore()

	_, err := createTestOrchestrator(t, store, Options{}).Reset(context.Background(), "  ")

	assert.Equal(t, apperrors.ErrCodeInvalidInput, apperrors.Classify(err))
	assert.Equal(t, 0, store.calls)
}

func TestReset_NoStoreConfigured(t *testing.T) {
	_, err := createTestOrchestrator(t, nil, Options{}).Reset(context.Background(), "u-1")

	var cfgErr *apperrors.ConfigError
	require.True(t, stderrors.As(err, &cfgErr))
	assert.Equal(t, "DATABASE_URL is not configured", err.Error())
}

func TestReset_NoStoreConfigured_NamesMissingSetting(t *testing.T) {
	missing := &apperrors.ConfigError{Key: "database.postgres.service_role_key", EnvVar: "DATABASE_SERVICE_ROLE_KEY"}

	_, err := createTestOrchestrator(t, nil, Options{MissingStore: missing}).Reset(context.Background(), "u-1")

	assert.Equal(t, apperrors.ErrCodeConfigMissing, apperrors.Classify(err))
	assert.Equal(t, "DATABASE_SERVICE_ROLE_KEY is not configured", err.Error())
}

// barrierStore only lets deletes finish once all of them have started.
type barrierStore struct {
	started sync.WaitGroup
}

func (s *barrierStore) DeleteByUser(ctx context.Context, _, _ string) (int64, error) {
	s.started.Done()
	done := make(chan struct{})
	go func() { s.started.Wait(); close(done) }()
	select {
	case <-done:
		return 1, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

func TestReset_DeletesRunConcurrently(t *testing.T) {
	store := &barrierStore{}
	store.started.Add(len(DefaultCollections))
	o := createTestOrchestrator(t, store, Options{Timeout: 2 * time.Second})

	outcome, err := o.Reset(context.Background(), "u-1")

	require.NoError(t, err)
	assert.Len(t, outcome.Deleted, 3)
}

type blockingStore struct{}

func (blockingStore) DeleteByUser(ctx context.Context, _, _ string) (int64, error) {
	<-ctx.Done()
	return 0, ctx.Err()
}

func TestReset_Timeout(t *testing.T) {
	o := createTestOrchestrator(t, blockingStore{}, Options{Timeout: 20 * time.Millisecond})

	_, err := o.Reset(context.Background(), "u-1")

	var tErr *apperrors.TimeoutError
	require.True(t, stderrors.As(err, &tErr))
	var resetErr *apperrors.ResetError
	require.True(t, stderrors.As(err, &resetErr))
	assert.Len(t, resetErr.Failures, 3)
}

func TestNewOrchestrator_RejectsBadCollections(t *testing.T) {
	_, err := NewOrchestrator(newMemStore(), Options{Collections: []string{"content", "users"}}, logger.NewNoOpLogger())
	assert.Error(t, err)

	_, err = NewOrchestrator(newMemStore(), Options{Collections: []string{"content", "content"}}, logger.NewNoOpLogger())
	assert.Error(t, err)

	_, err = NewOrchestrator(newMemStore(), Options{Transactional: true}, logger.NewNoOpLogger())
	assert.Error(t, err)
}

// ==========================
// Postgres-backed
// ==========================

func TestReset_PostgresConcurrent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	mock.MatchExpectationsInOrder(false)

	mock.ExpectExec(`DELETE FROM "content" WHERE user_id = \$1`).WithArgs("u-1").WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`DELETE FROM "market_data" WHERE user_id = \$1`).WithArgs("u-1").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`DELETE FROM "personas" WHERE user_id = \$1`).WithArgs("u-1").WillReturnResult(sqlmock.NewResult(0, 5))

	outcome, err := createTestOrchestrator(t, NewPostgresStore(db), Options{}).Reset(context.Background(), "u-1")

	require.NoError(t, err)
	assert.Equal(t, int64(5), outcome.Deleted["personas"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReset_PostgresTransactionalRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "content"`).WithArgs("u-1").WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`DELETE FROM "market_data"`).WithArgs("u-1").WillReturnError(stderrors.New("deadlock detected"))
	mock.ExpectRollback()

	o := createTestOrchestrator(t, NewPostgresStore(db), Options{Transactional: true})
	_, err = o.Reset(context.Background(), "u-1")

	var resetErr *apperrors.ResetError
	require.True(t, stderrors.As(err, &resetErr))
	assert.Equal(t, []string{"market_data"}, resetErr.FailedCollections())
	assert.Empty(t, resetErr.Completed)
	assert.NoError(t, mock.ExpectationsWereMet())
}
