// Package service provides the cryptographic services behind envelope encryption.
// Implements AEAD ciphers (AES-256-GCM, ChaCha20-Poly1305), the two-layer envelope engine and
// KMS-backed master key decoding.
package service

import (
	"context"

	cryptoDomain "github.com/allisson/sealedrecords/internal/crypto/domain"
)

// AEAD defines the interface for Authenticated Encryption with Associated Data.
//
// The tag is kept separate from the ciphertext so each part can be stored and length-checked
// as its own record field.
type AEAD interface {
	// Seal encrypts plaintext under a freshly generated random nonce, authenticating aad.
	Seal(plaintext, aad []byte) (nonce, ciphertext, tag []byte, err error)

	// Open verifies tag and decrypts ciphertext. Any verification failure returns
	// cryptoDomain.ErrAuthenticationFailed without further detail.
	Open(nonce, ciphertext, tag, aad []byte) ([]byte, error)
}

// AEADManager defines the interface for creating AEAD cipher instances.
type AEADManager interface {
	// CreateCipher creates an AEAD cipher instance for the specified algorithm.
	CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error)
}

// Envelope defines the two-layer encryption protocol consumed by the record store and the
// HTTP transport.
type Envelope interface {
	// Encrypt seals payload under a fresh DEK wrapped by the registry's latest master key.
	Encrypt(
		registry *cryptoDomain.MasterKeyRegistry,
		id, partyID string,
		payload any,
	) (*cryptoDomain.SecureRecord, error)

	// Decrypt validates, unwraps and opens a record.
	Decrypt(
		registry *cryptoDomain.MasterKeyRegistry,
		record *cryptoDomain.SecureRecord,
	) (*cryptoDomain.DecryptedRecord, error)

	// Rewrap moves a record's wrapped DEK to the registry's latest master key version.
	Rewrap(
		registry *cryptoDomain.MasterKeyRegistry,
		record *cryptoDomain.SecureRecord,
	) (*cryptoDomain.SecureRecord, error)
}

// KMSKeeper is the subset of *secrets.Keeper used to unwrap and wrap master keys.
type KMSKeeper interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
	Close() error
}
