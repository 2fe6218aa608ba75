package services

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const maxTxRetries = 3

// runSerialized executes fn as one database transaction and retries it when
// Postgres aborts it with a serialization or deadlock failure, so callers
// only ever observe the terminal outcome. fn must be idempotent-safe: no
// side effects outside the transaction's own write set.
func runSerialized(db *gorm.DB, fn func(tx *gorm.DB) error) error {
	var lastErr error
	for attempt := 0; attempt < maxTxRetries; attempt++ {
		err := db.Transaction(fn)
		if err == nil {
			return nil
		}
		if !retryableTxError(err) {
			return err
		}
		lastErr = err
	}
	return fmt.Errorf("%w: %v", ErrTransactionConflict, lastErr)
}

// retryableTxError reports whether err is a Postgres serialization failure
// (40001) or deadlock (40P01), both safe to retry as a whole transaction.
func retryableTxError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "40001" || pgErr.Code == "40P01"
}
