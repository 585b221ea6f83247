package service

import "errors"

// Sentinel errors shared by every service. Handlers translate them to HTTP
// statuses with errors.Is; nothing below this layer is swallowed.
var (
	// ErrNotFound: a referenced entity is absent.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput: non-positive quantity, empty reason, malformed reference.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInsufficientStock: the mutation would drive a balance negative.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrPermissionDenied: the acting role lacks the required action.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrStateConflict: the operation violates a lifecycle invariant
	// (receiving a received order, refunding a refunded sale, editing a
	// locked order).
	ErrStateConflict = errors.New("state conflict")
	// ErrStorageFailure: the underlying persistence layer failed. The
	// enclosing atomic unit is rolled back in full.
	ErrStorageFailure = errors.New("storage failure")
)
