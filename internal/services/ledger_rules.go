package services

import (
	"fmt"

	"github.com/poolmate/poolmate-backend/internal/models"
)

// The request state machine. Approval is additionally guarded by seat
// availability inside the ledger transaction; rejection is terminal and
// never touches seats.
var requestTransitions = map[string][]string{
	models.StatusPending:  {models.StatusApproved, models.StatusRejected},
	models.StatusApproved: {},
	models.StatusRejected: {},
}

func canTransition(from, to string) bool {
	for _, next := range requestTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// seatDeltaOnRemoval returns the seat adjustment owed when a request leaves
// the ledger (withdraw, remove, purge cleanup). Only a request that holds a
// seat gives one back, and exactly one.
func seatDeltaOnRemoval(status string) int {
	if status == models.StatusApproved {
		return 1
	}
	return 0
}

// validateCapacity enforces the capacity floor for a re-plan: the new seat
// count may never undercut seats already committed to approved riders.
func validateCapacity(newSeats, approvedCount int) error {
	if newSeats < 0 {
		return fmt.Errorf("%w: seat count cannot be negative", ErrBelowApprovedCount)
	}
	if newSeats < approvedCount {
		return ErrBelowApprovedCount
	}
	return nil
}

// validateStatus rejects stored requests whose status column holds a value
// outside the enum instead of silently skipping them.
func validateStatus(status string) error {
	switch status {
	case models.StatusPending, models.StatusApproved, models.StatusRejected:
		return nil
	}
	return fmt.Errorf("%w: unknown request status %q", ErrMalformedRecord, status)
}
