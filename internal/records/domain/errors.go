// Package domain defines the record store models and errors built around SecureRecord.
package domain

import (
	"github.com/allisson/sealedrecords/internal/errors"
)

// Record-specific error definitions.
var (
	// ErrRecordNotFound indicates no record exists with the given id.
	ErrRecordNotFound = errors.Wrap(errors.ErrNotFound, "record not found")

	// ErrRecordAlreadyExists indicates a record with the same id is already stored.
	ErrRecordAlreadyExists = errors.Wrap(errors.ErrConflict, "record already exists")

	// ErrPartyIDRequired indicates an encrypt request without a party id.
	ErrPartyIDRequired = errors.Wrap(errors.ErrInvalidInput, "party id is required")

	// ErrInvalidBatchSize indicates a non-positive rewrap batch size.
	ErrInvalidBatchSize = errors.Wrap(errors.ErrInvalidInput, "batch size must be positive")
)
