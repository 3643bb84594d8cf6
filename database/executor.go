package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ehb/ragchat/logger"

	"gorm.io/gorm"
)

// Record maps column names to values for one result row.
type Record map[string]any

// Executor runs single statements against the store, opening a new handle
// for every call.
type Executor struct {
	open    Opener
	dialect Dialect
}

// NewExecutor returns an Executor that obtains its handles from open.
func NewExecutor(open Opener, dialect Dialect) *Executor {
	return &Executor{open: open, dialect: dialect}
}

// Dialect reports the SQL flavour of the underlying store.
func (e *Executor) Dialect() Dialect {
	return e.dialect
}

// Execute runs statement with positional params inside a transaction. The
// transaction is committed only when commit is true; otherwise it is rolled
// back, so mutating statements must pass commit. The result is nil when the
// statement produces no result set. Any failure is a *StoreError.
func (e *Executor) Execute(ctx context.Context, statement string, commit bool, params ...any) (result []Record, err error) {
	logger.Debugf("executing query: %s", statement)

	db, err := e.open(ctx)
	if err != nil {
		return nil, newStoreError(nil, statement, err)
	}
	defer func() {
		if closeErr := closeHandle(db); closeErr != nil {
			logger.Warning("close store handle:", closeErr)
		}
	}()

	tx := db.Begin()
	if tx.Error != nil {
		return nil, newStoreError(db, statement, tx.Error)
	}
	defer func() {
		if err != nil || !commit {
			if rbErr := tx.Rollback().Error; rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				logger.Warning("rollback:", rbErr)
			}
		}
	}()

	result, err = queryRecords(tx, statement, params)
	if err != nil {
		logger.Warning("database error:", err)
		return nil, newStoreError(db, statement, err)
	}

	if commit {
		if err = tx.Commit().Error; err != nil {
			logger.Warning("commit failed:", err)
			return nil, newStoreError(db, statement, err)
		}
	}

	if result == nil {
		logger.Debug("query returned no result set")
	} else {
		logger.Debugf("query returned %d rows", len(result))
	}
	return result, nil
}

// Ping checks that a handle can be opened and a trivial query answered.
func (e *Executor) Ping(ctx context.Context) error {
	_, err := e.Execute(ctx, "SELECT 1", false)
	return err
}

func queryRecords(tx *gorm.DB, statement string, params []any) ([]Record, error) {
	rows, err := tx.Raw(statement, params...).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		// Statements without a result set still surface their errors here.
		for rows.Next() {
		}
		return nil, rows.Err()
	}

	records := make([]Record, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		record := make(Record, len(columns))
		for i, column := range columns {
			if b, ok := values[i].([]byte); ok {
				record[column] = string(b)
			} else {
				record[column] = values[i]
			}
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func closeHandle(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
