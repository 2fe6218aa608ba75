package services

import (
	"errors"
	"testing"

	"github.com/poolmate/poolmate-backend/internal/models"
)

func TestCanTransition(t *testing.T) {
	if !canTransition(models.StatusPending, models.StatusApproved) {
		t.Fatal("pending -> approved should be allowed")
	}
	if !canTransition(models.StatusPending, models.StatusRejected) {
		t.Fatal("pending -> rejected should be allowed")
	}
	if canTransition(models.StatusApproved, models.StatusRejected) {
		t.Fatal("approved -> rejected should not be allowed")
	}
	if canTransition(models.StatusRejected, models.StatusApproved) {
		t.Fatal("rejected is terminal, no transition out of it")
	}
	if canTransition(models.StatusApproved, models.StatusApproved) {
		t.Fatal("approving twice should not be a valid transition")
	}
	if canTransition("garbage", models.StatusApproved) {
		t.Fatal("unknown status must not transition anywhere")
	}
}

func TestSeatDeltaOnRemoval(t *testing.T) {
	if got := seatDeltaOnRemoval(models.StatusApproved); got != 1 {
		t.Fatalf("approved removal delta = %d, want 1", got)
	}
	if got := seatDeltaOnRemoval(models.StatusPending); got != 0 {
		t.Fatalf("pending removal delta = %d, want 0", got)
	}
	if got := seatDeltaOnRemoval(models.StatusRejected); got != 0 {
		t.Fatalf("rejected removal delta = %d, want 0", got)
	}
}

func TestValidateCapacity(t *testing.T) {
	if err := validateCapacity(3, 3); err != nil {
		t.Fatalf("seats == approved should pass: %v", err)
	}
	if err := validateCapacity(5, 2); err != nil {
		t.Fatalf("seats above approved should pass: %v", err)
	}
	if err := validateCapacity(0, 0); err != nil {
		t.Fatalf("zero/zero should pass: %v", err)
	}

	err := validateCapacity(1, 2)
	if !errors.Is(err, ErrBelowApprovedCount) {
		t.Fatalf("undercutting approved riders = %v, want ErrBelowApprovedCount", err)
	}
	err = validateCapacity(-1, 0)
	if !errors.Is(err, ErrBelowApprovedCount) {
		t.Fatalf("negative seats = %v, want ErrBelowApprovedCount", err)
	}
}

func TestValidateStatus(t *testing.T) {
	for _, status := range []string{models.StatusPending, models.StatusApproved, models.StatusRejected} {
		if err := validateStatus(status); err != nil {
			t.Fatalf("validateStatus(%q) = %v, want nil", status, err)
		}
	}

	err := validateStatus("cancelled")
	if !errors.Is(err, ErrMalformedRecord) {
		t.Fatalf("validateStatus(cancelled) = %v, want ErrMalformedRecord", err)
	}
	if err := validateStatus(""); !errors.Is(err, ErrMalformedRecord) {
		t.Fatalf("validateStatus(\"\") = %v, want ErrMalformedRecord", err)
	}
}
