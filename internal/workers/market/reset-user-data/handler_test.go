// internal/workers/market/reset-user-data/handler_test.go
package resetuserdata

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "marketpulse/internal/common/errors"
	"marketpulse/internal/common/logger"
	"marketpulse/internal/common/notify"
	"marketpulse/internal/datareset"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{Timeout: 2 * time.Second}
}

func createTestHandler(t *testing.T) (*Handler, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	mock.MatchExpectationsInOrder(false)

	log := logger.NewTestLogger(t)
	orchestrator, err := datareset.NewOrchestrator(datareset.NewPostgresStore(db), datareset.Options{}, log)
	require.NoError(t, err)

	return NewHandler(createTestConfig(), orchestrator, apperrors.NewErrorHandler(log, &notify.Recorder{}), log), mock
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	h, mock := createTestHandler(t)
	mock.ExpectExec(`DELETE FROM "content"`).WithArgs("u-1").WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`DELETE FROM "market_data"`).WithArgs("u-1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM "personas"`).WithArgs("u-1").WillReturnResult(sqlmock.NewResult(0, 1))

	output, err := h.Execute(context.Background(), &Input{UserID: "u-1"})

	require.NoError(t, err)
	assert.True(t, output.Reset.Success)
	assert.Equal(t, datareset.SuccessMessage, output.Reset.Message)
	assert.Equal(t, map[string]int64{"content": 3, "market_data": 0, "personas": 1}, output.Reset.Deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_PartialFailure(t *testing.T) {
	h, mock := createTestHandler(t)
	mock.ExpectExec(`DELETE FROM "content"`).WithArgs("u-1").WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`DELETE FROM "market_data"`).WithArgs("u-1").WillReturnError(errors.New("permission denied"))
	mock.ExpectExec(`DELETE FROM "personas"`).WithArgs("u-1").WillReturnResult(sqlmock.NewResult(0, 1))

	output, err := h.Execute(context.Background(), &Input{UserID: "u-1"})

	assert.Nil(t, output)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeResetFailed, apperrors.Classify(err))

	std := apperrors.ToStandardError(err)
	assert.Equal(t, []string{"market_data"}, std.Metadata["failed"])
	assert.Equal(t, []string{"content", "personas"}, std.Metadata["completed"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Variable Parsing Tests
// ==========================

func TestHandler_execute_MissingUserID(t *testing.T) {
	h, mock := createTestHandler(t)

	for _, vars := range []string{`{}`, `{"userId":""}`, `{"userId":"  "}`, `{"userId":12}`, `[]`} {
		job := entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 1, Type: TaskType, Variables: vars}}
		_, err := h.executeJob(context.Background(), job)
		assert.Equal(t, apperrors.ErrCodeInvalidInput, apperrors.Classify(err), vars)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_NoDatabase(t *testing.T) {
	log := logger.NewTestLogger(t)
	orchestrator, err := datareset.NewOrchestrator(nil, datareset.Options{}, log)
	require.NoError(t, err)
	h := NewHandler(createTestConfig(), orchestrator, apperrors.NewErrorHandler(log, nil), log)

	_, err = h.Execute(context.Background(), &Input{UserID: "u-1"})

	assert.Equal(t, apperrors.ErrCodeConfigMissing, apperrors.Classify(err))
}
