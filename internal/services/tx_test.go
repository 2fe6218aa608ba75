package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestRetryableTxError(t *testing.T) {
	serialization := &pgconn.PgError{Code: "40001"}
	if !retryableTxError(serialization) {
		t.Fatal("serialization failure (40001) should be retryable")
	}

	deadlock := &pgconn.PgError{Code: "40P01"}
	if !retryableTxError(deadlock) {
		t.Fatal("deadlock (40P01) should be retryable")
	}

	unique := &pgconn.PgError{Code: "23505"}
	if retryableTxError(unique) {
		t.Fatal("unique violation must not be retried")
	}

	if retryableTxError(errors.New("connection refused")) {
		t.Fatal("plain errors must not be retried")
	}
	if retryableTxError(nil) {
		t.Fatal("nil is not retryable")
	}
}

func TestRetryableTxErrorWrapped(t *testing.T) {
	// GORM surfaces driver errors wrapped; errors.As must still find them.
	err := fmt.Errorf("failed to approve request: %w", &pgconn.PgError{Code: "40001"})
	if !retryableTxError(err) {
		t.Fatal("wrapped serialization failure should be retryable")
	}
}
