package database

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrUniqueViolation is matched by errors.Is for store errors caused by a
// unique constraint.
var ErrUniqueViolation = errors.New("unique constraint violation")

const pgUniqueViolation = "23505"

// StoreError is returned for every failure of the relational store:
// connectivity, syntax, binding and constraint errors alike.
type StoreError struct {
	Statement string
	Err       error

	unique bool
}

func (e *StoreError) Error() string {
	if e.unique {
		return "store: unique constraint violation: " + e.Err.Error()
	}
	return "store: " + e.Err.Error()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func (e *StoreError) Is(target error) bool {
	return target == ErrUniqueViolation && e.unique
}

// IsUniqueViolation reports whether err is a StoreError for a unique constraint.
func IsUniqueViolation(err error) bool {
	return errors.Is(err, ErrUniqueViolation)
}

func newStoreError(db *gorm.DB, statement string, err error) error {
	if err == nil {
		return nil
	}
	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		return err
	}
	return &StoreError{
		Statement: statement,
		Err:       err,
		unique:    isUnique(db, err),
	}
}

func isUnique(db *gorm.DB, err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	if db != nil {
		if translator, ok := db.Dialector.(gorm.ErrorTranslator); ok {
			if errors.Is(translator.Translate(err), gorm.ErrDuplicatedKey) {
				return true
			}
		}
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
