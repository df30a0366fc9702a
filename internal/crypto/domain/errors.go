package domain

import (
	"fmt"
	"slices"
	"strings"

	"github.com/allisson/sealedrecords/internal/errors"
)

// Envelope encryption error definitions.
//
// Every failure of the engine maps to exactly one of these kinds so that callers can
// branch with errors.Is instead of matching on messages. None of the messages carry key
// material, DEKs or plaintext.
var (
	// ErrNoKeysConfigured indicates no master key entry was found while building a registry.
	// Setup-time and fatal: the process cannot encrypt or decrypt anything.
	ErrNoKeysConfigured = errors.New("no master keys configured")

	// ErrMalformedEncoding indicates a hex field contains invalid characters or has odd length.
	//
	// HTTP Status: 422 Unprocessable Entity
	ErrMalformedEncoding = errors.Wrap(errors.ErrInvalidInput, "malformed encoding")

	// ErrLengthMismatch indicates a decoded field does not have its required byte length.
	// Returned wrapped in a *LengthMismatchError carrying expected and actual counts.
	//
	// HTTP Status: 422 Unprocessable Entity
	ErrLengthMismatch = errors.Wrap(errors.ErrInvalidInput, "length mismatch")

	// ErrUnknownKeyVersion indicates the requested master key version is not in the registry,
	// either because it was never configured or because it has been retired.
	// Returned wrapped in an *UnknownKeyVersionError.
	//
	// HTTP Status: 422 Unprocessable Entity
	ErrUnknownKeyVersion = errors.Wrap(errors.ErrInvalidInput, "unknown key version")

	// ErrAuthenticationFailed indicates an AEAD tag did not verify.
	//
	// This single error covers a wrong key, a tampered ciphertext or tag, and a mismatched
	// party id. The cause is deliberately not disclosed.
	//
	// HTTP Status: 422 Unprocessable Entity
	ErrAuthenticationFailed = errors.Wrap(errors.ErrInvalidInput, "authentication failed")

	// ErrCorruptPayload indicates authentication succeeded but the plaintext is not valid JSON.
	//
	// HTTP Status: 500 Internal Server Error
	ErrCorruptPayload = errors.Wrap(errors.ErrIntegrity, "corrupt payload")

	// ErrUnsupportedAlgorithm indicates the requested or recorded algorithm is not supported.
	//
	// HTTP Status: 422 Unprocessable Entity
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrInvalidInput, "unsupported algorithm")

	// ErrInvalidKeySize indicates a key handed to a cipher is not exactly 32 bytes.
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrInvalidPayload indicates the payload could not be serialized to JSON.
	ErrInvalidPayload = errors.Wrap(errors.ErrInvalidInput, "invalid payload")
)

// LengthMismatchError reports a field whose decoded byte length is wrong.
type LengthMismatchError struct {
	Field    string
	Expected int
	Actual   int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf(
		"%s: %s must be %d bytes, got %d",
		ErrLengthMismatch.Error(),
		e.Field,
		e.Expected,
		e.Actual,
	)
}

// Unwrap allows errors.Is(err, ErrLengthMismatch).
func (e *LengthMismatchError) Unwrap() error {
	return ErrLengthMismatch
}

// UnknownKeyVersionError reports a master key version absent from the registry.
type UnknownKeyVersionError struct {
	Requested uint
	Available []uint
}

func (e *UnknownKeyVersionError) Error() string {
	available := make([]string, 0, len(e.Available))
	for _, v := range e.Available {
		available = append(available, fmt.Sprintf("%d", v))
	}
	return fmt.Sprintf(
		"%s: version %d requested, available [%s]",
		ErrUnknownKeyVersion.Error(),
		e.Requested,
		strings.Join(available, ","),
	)
}

// Unwrap allows errors.Is(err, ErrUnknownKeyVersion).
func (e *UnknownKeyVersionError) Unwrap() error {
	return ErrUnknownKeyVersion
}

func newUnknownKeyVersionError(requested uint, available []uint) *UnknownKeyVersionError {
	return &UnknownKeyVersionError{Requested: requested, Available: slices.Clone(available)}
}
