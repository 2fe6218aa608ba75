package services

import "errors"

// Identity preconditions.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidToken       = errors.New("invalid or expired refresh token")
	ErrUserNotFound       = errors.New("user not found")
	ErrNotVerified        = errors.New("email verification required")
)

// Ledger preconditions.
var (
	ErrRideNotFound     = errors.New("ride not found")
	ErrRequestNotFound  = errors.New("request not found")
	ErrMessageNotFound  = errors.New("message not found")
	ErrDuplicateRequest = errors.New("you have already requested this ride")
	ErrInvalidRequest   = errors.New("request no longer exists or is not pending")
	ErrNotRideOwner     = errors.New("only the ride owner may do this")
	ErrNotParticipant   = errors.New("not a participant of this ride")
)

// Capacity invariants.
var (
	ErrNoSeatsAvailable   = errors.New("no seats available")
	ErrBelowApprovedCount = errors.New("seats cannot be less than the number of approved riders")
)

// Store and workflow failures.
var (
	// ErrTransactionConflict surfaces only after the internal retry budget
	// for serialization failures is exhausted.
	ErrTransactionConflict = errors.New("transaction conflict, please try again")

	// ErrMalformedRecord marks a stored record that failed schema
	// validation on read.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrPartialCleanup reports that the account purge finished but one or
	// more cleanup sub-operations failed; the aggregate is wrapped.
	ErrPartialCleanup = errors.New("account deleted with incomplete cleanup")
)

// Safety preconditions.
var (
	ErrSelfBlock      = errors.New("cannot block yourself")
	ErrAlreadyBlocked = errors.New("user already blocked")
	ErrReportNotFound = errors.New("report not found")
)
