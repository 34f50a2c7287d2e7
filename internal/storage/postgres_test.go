package storage

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/apperrors"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/tenant"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/pkg/logger"
)

// Note on SQL Query Matching in Tests:
// ----------------------------------
// GORM generates SQL with clause ordering that can shift between minor
// versions, which makes exact string matching brittle. Tests here use
// sqlmock's regexp matcher with partial patterns and sqlmock.AnyArg()
// for values whose encoding may vary.

const testTenantID = "tenant-test-123"

// AnyTime matches any time.Time argument.
type AnyTime struct{}

// Match satisfies sqlmock.Argument interface
func (a AnyTime) Match(v driver.Value) bool {
	_, ok := v.(time.Time)
	return ok
}

// newTestRepo creates a mock DB and PostgresRepo instance for testing.
func newTestRepo(t *testing.T) (*PostgresRepo, sqlmock.Sqlmock) {
	logger.Log = zaptest.NewLogger(t).Named("test")

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{
		Logger:                 gormLogger.Default.LogMode(gormLogger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	repo := &PostgresRepo{db: gormDB}
	return repo, mock
}

// contextWithTestTenant returns a context carrying the test company id.
func contextWithTestTenant() context.Context {
	return tenant.WithCompanyID(context.Background(), testTenantID)
}

func TestIsTransientError(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "Nil error",
			err:      nil,
			expected: false,
		},
		{
			name:     "Context deadline exceeded",
			err:      context.DeadlineExceeded,
			expected: true,
		},
		{
			name:     "Wrapped context deadline exceeded",
			err:      fmt.Errorf("operation failed: %w", context.DeadlineExceeded),
			expected: true,
		},
		{
			name:     "GORM record not found",
			err:      gorm.ErrRecordNotFound,
			expected: false,
		},
		{
			name:     "PG connection exception (08000)",
			err:      &pgconn.PgError{Code: "08000"},
			expected: true,
		},
		{
			name:     "PG insufficient resources (53100)",
			err:      &pgconn.PgError{Code: "53100"},
			expected: true,
		},
		{
			name:     "PG deadlock detected (40P01)",
			err:      &pgconn.PgError{Code: "40P01"},
			expected: true,
		},
		{
			name:     "PG serialization failure (40001)",
			err:      &pgconn.PgError{Code: "40001"},
			expected: true,
		},
		{
			name:     "PG syntax error (42601)",
			err:      &pgconn.PgError{Code: "42601"},
			expected: false,
		},
		{
			name:     "Network connection refused",
			err:      errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"),
			expected: true,
		},
		{
			name:     "Network i/o timeout",
			err:      errors.New("read tcp 10.0.0.1:1234->10.0.0.2:5432: i/o timeout"),
			expected: true,
		},
		{
			name:     "Generic application error",
			err:      errors.New("something unexpected"),
			expected: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, isTransientError(tc.err))
		})
	}
}

func TestCheckConstraintViolation(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected error
	}{
		{
			name:     "Nil error",
			err:      nil,
			expected: nil,
		},
		{
			name:     "Record not found",
			err:      gorm.ErrRecordNotFound,
			expected: apperrors.ErrNotFound,
		},
		{
			name:     "Unique violation",
			err:      &pgconn.PgError{Code: "23505", ConstraintName: "idx_chat_messages_message_id"},
			expected: apperrors.ErrDuplicate,
		},
		{
			name:     "Foreign key violation",
			err:      &pgconn.PgError{Code: "23503", ConstraintName: "fk_transactions_contract"},
			expected: apperrors.ErrBadRequest,
		},
		{
			name:     "Not null violation",
			err:      &pgconn.PgError{Code: "23502", ColumnName: "name"},
			expected: apperrors.ErrBadRequest,
		},
		{
			name:     "Value too long",
			err:      &pgconn.PgError{Code: "22001", ColumnName: "description"},
			expected: apperrors.ErrBadRequest,
		},
		{
			name:     "Deadlock",
			err:      &pgconn.PgError{Code: "40P01"},
			expected: apperrors.ErrDatabase,
		},
		{
			name:     "Connection exception",
			err:      &pgconn.PgError{Code: "08006"},
			expected: apperrors.ErrDatabase,
		},
		{
			name:     "Generic error",
			err:      errors.New("boom"),
			expected: apperrors.ErrDatabase,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := checkConstraintViolation(tc.err)
			if tc.expected == nil {
				assert.NoError(t, result)
				return
			}
			assert.ErrorIs(t, result, tc.expected)
		})
	}
}

func TestTenantNamer_QualifiesTableName(t *testing.T) {
	namer := tenantNamer{schemaName: "nocagestor_acme"}
	assert.Equal(t, `"nocagestor_acme".contracts`, namer.TableName("contracts"))
}

func TestRetryableOperation_PermanentErrorNotRetried(t *testing.T) {
	logger.Log = zaptest.NewLogger(t).Named("test")
	ctx := context.Background()

	calls := 0
	operation := func() error {
		calls++
		return fmt.Errorf("%w: gone", apperrors.ErrNotFound)
	}

	policy := newRetryPolicy(ctx, readRetryMaxElapsedTime)
	err := retryableOperation(ctx, policy, "TestOp", operation)

	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryableOperation_TransientErrorRetried(t *testing.T) {
	logger.Log = zaptest.NewLogger(t).Named("test")
	ctx := context.Background()

	calls := 0
	operation := func() error {
		calls++
		if calls < 3 {
			return &pgconn.PgError{Code: "08006"}
		}
		return nil
	}

	policy := newRetryPolicy(ctx, readRetryMaxElapsedTime)
	err := retryableOperation(ctx, policy, "TestOp", operation)

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestPostgresRepo_Close(t *testing.T) {
	repo, mock := newTestRepo(t)
	mock.ExpectClose()

	err := repo.Close(context.Background())
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
