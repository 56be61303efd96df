// internal/workers/market/generate-sample-data/handler_test.go
package generatesampledata

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "marketpulse/internal/common/errors"
	"marketpulse/internal/common/logger"
	"marketpulse/internal/common/notify"
	"marketpulse/internal/sampledata"

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

	log := logger.NewTestLogger(t)
	generator := sampledata.NewGenerator(sampledata.NewPostgresStore(db), sampledata.Options{}, log)

	return NewHandler(createTestConfig(), generator, apperrors.NewErrorHandler(log, &notify.Recorder{}), log), mock
}

func expectNoPersonas(mock sqlmock.Sqlmock, userID string) {
	mock.ExpectQuery(`SELECT id FROM personas`).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Seeds(t *testing.T) {
	h, mock := createTestHandler(t)
	expectNoPersonas(mock, "u-1")
	mock.ExpectBegin()
	for i := 0; i < 3; i++ {
		mock.ExpectQuery(`INSERT INTO personas`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("p-" + string(rune('a'+i))))
	}
	for i := 0; i < 3; i++ {
		mock.ExpectExec(`INSERT INTO market_data`).WillReturnResult(sqlmock.NewResult(0, 1))
	}
	for i := 0; i < sampledata.ContentDays; i++ {
		mock.ExpectExec(`INSERT INTO content`).WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	output, err := h.Execute(context.Background(), &Input{UserID: "u-1", BusinessName: "Aurora Gems"})

	require.NoError(t, err)
	assert.Equal(t, &SampleDataResult{Success: true, Message: sampledata.SeededMessage, Seeded: true}, output.SampleData)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_UpdatesExistingPersonas(t *testing.T) {
	h, mock := createTestHandler(t)
	mock.ExpectQuery(`SELECT id FROM personas`).
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("p-a").AddRow("p-b"))
	mock.ExpectExec(`UPDATE personas`).WithArgs("p-a", sqlmock.AnyArg(), sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE personas`).WithArgs("p-b", sqlmock.AnyArg(), sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(0, 1))

	output, err := h.Execute(context.Background(), &Input{UserID: "u-1"})

	require.NoError(t, err)
	assert.Equal(t, &SampleDataResult{Success: true, Message: sampledata.UpdatedMessage, Updated: 2}, output.SampleData)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_RollsBack(t *testing.T) {
	h, mock := createTestHandler(t)
	expectNoPersonas(mock, "u-1")
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO personas`).WillReturnError(errors.New("permission denied for table personas"))
	mock.ExpectRollback()

	output, err := h.Execute(context.Background(), &Input{UserID: "u-1"})

	assert.Nil(t, output)
	assert.Equal(t, apperrors.ErrCodeSeedFailed, apperrors.Classify(err))

	std := apperrors.ToStandardError(err)
	assert.Equal(t, "personas", std.Metadata["stage"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Variable Parsing Tests
// ==========================

func TestHandler_execute_InvalidVariables(t *testing.T) {
	h, mock := createTestHandler(t)

	for _, vars := range []string{`{}`, `{"userId":"  "}`, `{"userId":12}`, `{"userId":"u-1","businessName":false}`, `[]`} {
		job := entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 1, Type: TaskType, Variables: vars}}
		_, err := h.executeJob(context.Background(), job)
		assert.Equal(t, apperrors.ErrCodeInvalidInput, apperrors.Classify(err), vars)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_execute_NullBusinessName(t *testing.T) {
	h, mock := createTestHandler(t)
	mock.ExpectQuery(`SELECT id FROM personas`).
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("p-a"))
	mock.ExpectExec(`UPDATE personas`).WillReturnResult(sqlmock.NewResult(0, 1))

	output, err := h.execute(context.Background(), map[string]interface{}{"userId": "u-1", "businessName": nil})

	require.NoError(t, err)
	assert.Equal(t, 1, output.SampleData.Updated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_NoDatabase(t *testing.T) {
	log := logger.NewTestLogger(t)
	generator := sampledata.NewGenerator(nil, sampledata.Options{}, log)
	h := NewHandler(createTestConfig(), generator, apperrors.NewErrorHandler(log, nil), log)

	_, err := h.Execute(context.Background(), &Input{UserID: "u-1"})

	assert.Equal(t, apperrors.ErrCodeConfigMissing, apperrors.Classify(err))
}
