package main

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mysupertc/MySuperTC-sub001/internal/database/schema"
	"github.com/mysupertc/MySuperTC-sub001/pkg/logger"
)

func mockConnect(t *testing.T) (connectFunc, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.MatchExpectationsInOrder(true)

	return func(ctx context.Context) (*sql.DB, error) { return db, nil }, mock
}

func expectSchema(mock sqlmock.Sqlmock) {
	for range schema.TableDefinitions {
		mock.ExpectExec("CREATE TABLE").WillReturnResult(sqlmock.NewResult(0, 0))
	}
	for range schema.IndexDefinitions {
		mock.ExpectExec("CREATE INDEX").WillReturnResult(sqlmock.NewResult(0, 0))
	}
	for range schema.PolicyStatements() {
		mock.ExpectExec("").WillReturnResult(sqlmock.NewResult(0, 0))
	}
}

func expectSeed(mock sqlmock.Sqlmock) {
	mock.ExpectExec("INSERT INTO disclosure_templates").WillReturnResult(sqlmock.NewResult(0, 7))
	mock.ExpectExec("INSERT INTO task_templates").WillReturnResult(sqlmock.NewResult(0, 9))
	mock.ExpectExec("INSERT INTO email_templates").WillReturnResult(sqlmock.NewResult(0, 3))
}

func TestUpCommand(t *testing.T) {
	t.Run("creates the schema", func(t *testing.T) {
		connect, mock := mockConnect(t)
		expectSchema(mock)
		mock.ExpectClose()

		cmd := newRootCmd(connect, logger.NewTestLogger(t))
		cmd.SetArgs([]string{"up"})

		require.NoError(t, cmd.Execute())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("seeds when asked", func(t *testing.T) {
		connect, mock := mockConnect(t)
		expectSchema(mock)
		expectSeed(mock)
		mock.ExpectClose()

		cmd := newRootCmd(connect, logger.NewTestLogger(t))
		cmd.SetArgs([]string{"up", "--seed"})

		require.NoError(t, cmd.Execute())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("connection failure", func(t *testing.T) {
		connect := func(ctx context.Context) (*sql.DB, error) {
			return nil, errors.New("failed to ping database: connection refused")
		}

		cmd := newRootCmd(connect, logger.NewTestLogger(t))
		cmd.SetArgs([]string{"up"})

		err := cmd.Execute()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection refused")
	})
}

func TestSeedCommand(t *testing.T) {
	connect, mock := mockConnect(t)
	expectSeed(mock)
	mock.ExpectClose()

	cmd := newRootCmd(connect, logger.NewTestLogger(t))
	cmd.SetArgs([]string{"seed"})

	require.NoError(t, cmd.Execute())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResetCommand(t *testing.T) {
	t.Run("requires force", func(t *testing.T) {
		connect := func(ctx context.Context) (*sql.DB, error) {
			t.Fatal("reset must not connect without --force")
			return nil, nil
		}

		cmd := newRootCmd(connect, logger.NewTestLogger(t))
		cmd.SetArgs([]string{"reset"})

		err := cmd.Execute()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--force")
	})

	t.Run("drops tables", func(t *testing.T) {
		connect, mock := mockConnect(t)
		for range schema.TableNames {
			mock.ExpectExec("DROP TABLE IF EXISTS").WillReturnResult(sqlmock.NewResult(0, 0))
		}
		mock.ExpectClose()

		cmd := newRootCmd(connect, logger.NewTestLogger(t))
		cmd.SetArgs([]string{"reset", "--force"})

		require.NoError(t, cmd.Execute())
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
