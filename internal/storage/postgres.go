package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/apperrors"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/model"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/pkg/logger"
)

// --- Retry Logic Configuration ---
const (
	defaultRetryInitialInterval = 50 * time.Millisecond
	defaultRetryMaxInterval     = 2 * time.Second
	readRetryMaxElapsedTime     = 5 * time.Second  // More aggressive for reads
	commitRetryMaxElapsedTime   = 15 * time.Second // More tolerant for commits
)

// newRetryPolicy creates a new exponential backoff policy with context awareness.
func newRetryPolicy(ctx context.Context, maxElapsedTime time.Duration) backoff.BackOffContext {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = defaultRetryInitialInterval
	b.MaxInterval = defaultRetryMaxInterval
	b.MaxElapsedTime = maxElapsedTime
	b.Reset() // Important: Reset before first use
	return backoff.WithContext(b, ctx)
}

// retryableOperation wraps a database operation with retry logic.
func retryableOperation(ctx context.Context, policy backoff.BackOffContext, opName string, operation func() error) error {
	notify := func(err error, d time.Duration) {
		logger.FromContext(ctx).Warn("Retrying DB operation",
			zap.String("operation", opName),
			zap.Error(err),
			zap.Duration("after", d),
		)
	}

	err := backoff.RetryNotify(func() error {
		err := operation()
		if err != nil {
			// Check for non-retryable errors first
			if errors.Is(err, gorm.ErrRecordNotFound) ||
				errors.Is(err, gorm.ErrInvalidTransaction) ||
				errors.Is(err, gorm.ErrDuplicatedKey) ||
				errors.Is(err, gorm.ErrForeignKeyViolated) {
				return backoff.Permanent(err) // Don't retry these GORM errors
			}
			// Check for potentially transient errors
			if isTransientError(err) {
				return err // Retry transient errors
			}
			// Treat other errors as permanent by default
			return backoff.Permanent(err)
		}
		return nil // Success
	}, policy, notify)

	return err
}

// isTransientError checks if the error suggests a temporary issue like a network problem.
func isTransientError(err error) bool {
	if err == nil {
		return false
	}

	// Check for context deadline exceeded, often indicates a timeout
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// See https://www.postgresql.org/docs/current/errcodes-appendix.html
		// Class 08 — Connection Exception
		// Class 53 — Insufficient Resources
		if strings.HasPrefix(pgErr.Code, "08") ||
			strings.HasPrefix(pgErr.Code, "53") ||
			strings.HasPrefix(pgErr.Code, "40P01") ||
			strings.HasPrefix(pgErr.Code, "40001") {
			return true // Retry connection and resource errors
		}
	}

	// Fallback to string matching for common network-related errors
	errStr := strings.ToLower(err.Error())
	transientIndicators := []string{
		"connection refused",
		"network is unreachable",
		"i/o timeout",
		"broken pipe",
		"connection reset by peer",
		"could not translate host name",
		"no route to host",
		"database system is starting up",
		"connection timed out",
		"connection reset",
	}
	for _, indicator := range transientIndicators {
		if strings.Contains(errStr, indicator) {
			return true
		}
	}

	return false
}

// PostgresRepo implements the storage repositories on a single tenant schema
type PostgresRepo struct {
	db *gorm.DB
}

// tenantNamer implements gorm schema.Namer interface for multi-tenant schemas
// It embeds the default NamingStrategy and overrides TableName.
type tenantNamer struct {
	schema.NamingStrategy // Embed the default strategy
	schemaName            string
}

// TableName implements the schema.Namer interface, overriding the default.
func (tn tenantNamer) TableName(table string) string {
	// GORM models return the base table name (e.g., "contracts")
	// We prepend the specific schema name for this connection.
	return fmt.Sprintf("%q.%s", tn.schemaName, table) // Qualify with schema
}

// NewPostgresRepo creates a new Postgres repository and initializes the schema
func NewPostgresRepo(dsn string, autoMigrate bool, companyID string) (*PostgresRepo, error) {
	// Retry connecting to the default database
	operationConnectDefault := func() (*gorm.DB, error) {
		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			if isTransientError(err) {
				logger.Log.Warn("Failed to connect to default postgres (transient), retrying...", zap.Error(err))
				return nil, err // Return transient error to trigger retry
			}
			return nil, backoff.Permanent(fmt.Errorf("failed to connect to default postgres db: %w", err))
		}
		return db, nil
	}

	notify := func(err error, d time.Duration) {
		logger.Log.Warn("Retrying default DB connection", zap.Error(err), zap.Duration("after", d))
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 1 * time.Second
	b.MaxInterval = 15 * time.Second
	b.MaxElapsedTime = 1 * time.Minute

	dbDefault, err := backoff.RetryNotifyWithData(operationConnectDefault, b, notify)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to default postgres after retries: %w", err)
	}

	schemaName := fmt.Sprintf("nocagestor_%s", companyID)
	logger.Log.Info("Ensuring PostgreSQL schema exists", zap.String("schema", schemaName))

	// Create schema if it doesn't exist - Use %q to quote the identifier
	if err := dbDefault.Exec(fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %q", schemaName)).Error; err != nil {
		sqlDB, _ := dbDefault.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		return nil, fmt.Errorf("failed to create schema %s: %w", schemaName, err)
	}

	// Close the initial connection
	sqlDB, err := dbDefault.DB()
	if err != nil {
		logger.Log.Warn("Failed to get underlying SQL DB handle for closing", zap.Error(err))
	} else {
		if err := sqlDB.Close(); err != nil {
			logger.Log.Warn("Failed to close initial DB connection", zap.Error(err))
		}
	}

	// Reconnect with a Namer that qualifies every table with the tenant schema
	operationConnectTenant := func() (*gorm.DB, error) {
		namer := tenantNamer{schemaName: schemaName}
		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
			NamingStrategy: namer,
		})
		if err != nil {
			if isTransientError(err) {
				logger.Log.Warn("Failed to connect to tenant schema (transient), retrying...", zap.String("schema", schemaName), zap.Error(err))
				return nil, err
			}
			return nil, backoff.Permanent(fmt.Errorf("failed to connect to postgres tenant schema %s: %w", schemaName, err))
		}
		return db, nil
	}

	notifyTenant := func(err error, d time.Duration) {
		logger.Log.Warn("Retrying tenant schema DB connection", zap.String("schema", schemaName), zap.Error(err), zap.Duration("after", d))
	}

	bTenant := backoff.NewExponentialBackOff()
	bTenant.InitialInterval = 1 * time.Second
	bTenant.MaxInterval = 15 * time.Second
	bTenant.MaxElapsedTime = 1 * time.Minute

	db, err := backoff.RetryNotifyWithData(operationConnectTenant, bTenant, notifyTenant)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres tenant db %s after retries: %w", schemaName, err)
	}

	repo := &PostgresRepo{db: db}

	if autoMigrate {
		logger.Log.Info("Running auto-migration for schema", zap.String("schema", schemaName))
		err = db.AutoMigrate(
			&model.Contract{},
			&model.RawChatMessage{},
			&model.Lead{},
			&model.FinancialTransaction{},
			&model.ClickEvent{},
			&model.RoutineConfig{},
			&model.Settings{},
			&model.WebhookLog{},
		)
		if err != nil {
			logger.Log.Error("Auto-migration failed or produced errors", zap.Error(err), zap.String("schema", schemaName))
		}
	} else {
		logger.Log.Info("Auto-migration disabled")
	}

	// Verify crucial tables after AutoMigrate
	checkExistsSQL := `SELECT EXISTS (SELECT FROM information_schema.tables WHERE table_schema = ? AND table_name = ?)`
	for _, tableName := range []string{"contracts", "chat_messages", "crm_leads", "transactions"} {
		var exists bool
		if err := db.Raw(checkExistsSQL, schemaName, tableName).Scan(&exists).Error; err != nil {
			sqlDBClose, _ := db.DB()
			if sqlDBClose != nil {
				sqlDBClose.Close()
			}
			return nil, fmt.Errorf("failed to check for %q table existence after migration in schema %s: %w", tableName, schemaName, err)
		}
		if !exists {
			sqlDBClose, _ := db.DB()
			if sqlDBClose != nil {
				sqlDBClose.Close()
			}
			return nil, fmt.Errorf("%q table still does not exist after auto-migration in schema %s", tableName, schemaName)
		}
		logger.Log.Debug("Table verified post-migration", zap.String("table", tableName), zap.String("schema", schemaName))
	}

	// Supporting indexes, created manually so they exist even when AutoMigrate is off
	indexes := map[string]string{
		"idx_chat_messages_message_id": fmt.Sprintf("CREATE UNIQUE INDEX IF NOT EXISTS idx_chat_messages_message_id ON %q.chat_messages USING btree (message_id);", schemaName),
		"idx_chat_messages_chat_id":    fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_chat_messages_chat_id ON %q.chat_messages USING btree (chat_id);", schemaName),
		"idx_chat_messages_timestamp":  fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_chat_messages_timestamp ON %q.chat_messages USING btree (timestamp);", schemaName),
		"idx_contracts_phone":          fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_contracts_phone ON %q.contracts USING btree (phone);", schemaName),
		"idx_transactions_contract":    fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_transactions_contract ON %q.transactions USING btree (related_contract_id);", schemaName),
		"idx_webhook_logs_timestamp":   fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_webhook_logs_timestamp ON %q.webhook_logs USING btree (timestamp);", schemaName),
		"idx_click_events_contract_at": fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_click_events_contract_at ON %q.click_events USING btree (contract_id, at);", schemaName),
	}
	for indexName, indexSQL := range indexes {
		if err := db.Exec(indexSQL).Error; err != nil {
			logger.Log.Warn("Failed to create index", zap.String("indexName", indexName), zap.Error(err))
		}
	}

	return repo, nil
}

// Close closes the database connection
func (r *PostgresRepo) Close(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		logger.FromContext(ctx).Warn("Failed to get underlying SQL DB for closing", zap.Error(err))
		return nil
	}

	closeErr := sqlDB.Close()
	if closeErr != nil {
		logger.FromContext(ctx).Error("Failed to close database connection", zap.Error(closeErr))
		return fmt.Errorf("failed to close SQL DB: %w", closeErr)
	}

	logger.FromContext(ctx).Info("Database connection closed successfully")
	return nil
}

// checkConstraintViolation inspects database errors and maps them to standard apperrors.
func checkConstraintViolation(err error) error {
	if err == nil {
		return nil
	}

	// Check for specific GORM errors first
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %w", apperrors.ErrNotFound, err)
	}

	// Check for underlying pgconn errors
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		// Class 23 — Integrity Constraint Violation
		case "23505": // unique_violation
			return fmt.Errorf("%w: constraint %s: %w", apperrors.ErrDuplicate, pgErr.ConstraintName, err)
		case "23503": // foreign_key_violation
			return fmt.Errorf("%w: constraint %s: %w", apperrors.ErrBadRequest, pgErr.ConstraintName, err)
		case "23502": // not_null_violation
			return fmt.Errorf("%w: null value in column %s: %w", apperrors.ErrBadRequest, pgErr.ColumnName, err)
		case "23514": // check_violation
			return fmt.Errorf("%w: constraint %s: %w", apperrors.ErrBadRequest, pgErr.ConstraintName, err)

		// Class 22 — Data Exception
		case "22001": // string_data_right_truncation
			return fmt.Errorf("%w: value too long for column %s: %w", apperrors.ErrBadRequest, pgErr.ColumnName, err)
		case "22P02": // invalid_text_representation
			return fmt.Errorf("%w: invalid input syntax for type %s: %w", apperrors.ErrBadRequest, pgErr.DataTypeName, err)

		// Class 40 — Transaction Rollback
		case "40001": // serialization_failure
			fallthrough
		case "40P01": // deadlock_detected
			return fmt.Errorf("%w: transaction rollback (%s): %w", apperrors.ErrDatabase, pgErr.Code, err)

		default:
			if strings.HasPrefix(pgErr.Code, "53") { // Class 53 — Insufficient Resources
				return fmt.Errorf("%w: insufficient resources (%s): %w", apperrors.ErrDatabase, pgErr.Code, err)
			}
			if strings.HasPrefix(pgErr.Code, "08") { // Class 08 — Connection Exception
				return fmt.Errorf("%w: connection error (%s): %w", apperrors.ErrDatabase, pgErr.Code, err)
			}
			return fmt.Errorf("%w: unhandled pgcode %s: %w", apperrors.ErrDatabase, pgErr.Code, err)
		}
	}

	// Assume other GORM or generic errors are general database errors
	return fmt.Errorf("%w: %w", apperrors.ErrDatabase, err)
}
