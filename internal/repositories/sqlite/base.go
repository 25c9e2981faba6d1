package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/devLucasOAK/lambda-serverless-api/internal/repositories"
)

// queryer is satisfied by both *sql.DB and *sql.Tx
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// baseRepository provides query execution with logging shared by SQLite repositories
type baseRepository struct {
	db     *sql.DB
	table  string
	entity string
	logger *logrus.Logger
}

func newBaseRepository(db *sql.DB, table, entity string, logger *logrus.Logger) baseRepository {
	if logger == nil {
		logger = logrus.New()
	}
	return baseRepository{
		db:     db,
		table:  table,
		entity: entity,
		logger: logger,
	}
}

// logQuery logs a query with its execution time
func (r *baseRepository) logQuery(operation, query string, duration time.Duration, err error) {
	fields := logrus.Fields{
		"operation": operation,
		"table":     r.table,
		"query":     strings.Join(strings.Fields(query), " "),
		"duration":  duration,
	}

	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		fields["error"] = err.Error()
		r.logger.WithFields(fields).Error("Query failed")
	} else {
		r.logger.WithFields(fields).Debug("Query executed")
	}
}

// executeQuery executes a query and logs the result
func (r *baseRepository) executeQuery(ctx context.Context, q queryer, operation, query string, args ...interface{}) (*sql.Rows, error) {
	start := time.Now()
	rows, err := q.QueryContext(ctx, query, args...)
	r.logQuery(operation, query, time.Since(start), err)

	if err != nil {
		return nil, r.storeError(operation, "", err)
	}

	return rows, nil
}

// scanRow executes a single-row query and scans it into dest
func (r *baseRepository) scanRow(ctx context.Context, q queryer, operation, query string, args []interface{}, dest ...interface{}) error {
	start := time.Now()
	err := q.QueryRowContext(ctx, query, args...).Scan(dest...)
	r.logQuery(operation, query, time.Since(start), err)
	return err
}

// executeExec executes a non-query statement and logs the result
func (r *baseRepository) executeExec(ctx context.Context, q queryer, operation, id, query string, args ...interface{}) (sql.Result, error) {
	start := time.Now()
	result, err := q.ExecContext(ctx, query, args...)
	r.logQuery(operation, query, time.Since(start), err)

	if err != nil {
		return nil, r.storeError(operation, id, err)
	}

	return result, nil
}

// checkRowsAffected reports not found when a statement touched no rows
func (r *baseRepository) checkRowsAffected(result sql.Result, operation, id string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return r.storeError(operation, id, err)
	}

	if rowsAffected == 0 {
		return repositories.NotFoundError(operation, r.entity, id)
	}

	return nil
}

// validateID validates that an ID is not empty
func (r *baseRepository) validateID(operation, id string) error {
	if id == "" {
		return repositories.NewRepositoryError(operation, r.entity, id, repositories.ErrInvalidID)
	}
	return nil
}

// storeError wraps a driver error with the matching repository sentinel
func (r *baseRepository) storeError(operation, id string, err error) error {
	sentinel := repositories.ErrRejected
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, sql.ErrConnDone) {
		sentinel = repositories.ErrConnection
	}
	return repositories.NewRepositoryError(operation, r.entity, id, fmt.Errorf("%w: %w", sentinel, err))
}
