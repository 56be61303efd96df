package datareset

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresStore_DeleteByUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM "market_data" WHERE user_id = \$1`).
		WithArgs("u-1").
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := NewPostgresStore(db).DeleteByUser(context.Background(), "market_data", "u-1")

	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_RejectsUnknownCollection(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	_, err = NewPostgresStore(db).DeleteByUser(context.Background(), `users"; DROP TABLE content; --`, "u-1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown collection")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_DeleteAllByUser_Commits(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "content"`).WithArgs("u-1").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`DELETE FROM "market_data"`).WithArgs("u-1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM "personas"`).WithArgs("u-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	deleted, err := NewPostgresStore(db).DeleteAllByUser(context.Background(), DefaultCollections, "u-1")

	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"content": 2, "market_data": 0, "personas": 1}, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_DeleteAllByUser_RollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "content"`).WithArgs("u-1").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`DELETE FROM "market_data"`).WithArgs("u-1").WillReturnError(stderrors.New("permission denied"))
	mock.ExpectRollback()

	_, err = NewPostgresStore(db).DeleteAllByUser(context.Background(), DefaultCollections, "u-1")

	var collErr *CollectionError
	require.True(t, stderrors.As(err, &collErr))
	assert.Equal(t, "market_data", collErr.Collection)
	assert.NoError(t, mock.ExpectationsWereMet())
}
