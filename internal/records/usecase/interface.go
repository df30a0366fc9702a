// Package usecase implements the record store on top of the envelope engine. It persists
// sealed records, decrypts them on read and migrates wrapped DEKs to the latest master key.
package usecase

import (
	"context"

	cryptoDomain "github.com/allisson/sealedrecords/internal/crypto/domain"
	recordsDomain "github.com/allisson/sealedrecords/internal/records/domain"
)

// RecordRepository defines the interface for SecureRecord persistence operations.
type RecordRepository interface {
	Create(ctx context.Context, record *cryptoDomain.SecureRecord) error
	Get(ctx context.Context, id string) (*cryptoDomain.SecureRecord, error)
	List(ctx context.Context, filter recordsDomain.ListFilter) ([]*cryptoDomain.SecureRecord, error)
	ListByMkVersionBelow(ctx context.Context, version uint, limit int) ([]*cryptoDomain.SecureRecord, error)
	UpdateWrap(ctx context.Context, record *cryptoDomain.SecureRecord, fromVersion uint) error
	Delete(ctx context.Context, id string) error
}

// RecordUseCase defines the record store business logic.
type RecordUseCase interface {
	// Encrypt seals payload without persisting it. An empty id is replaced by a UUIDv7.
	Encrypt(ctx context.Context, id, partyID string, payload any) (*cryptoDomain.SecureRecord, error)
	// Decrypt opens a caller-supplied record without touching storage.
	Decrypt(ctx context.Context, record *cryptoDomain.SecureRecord) (*cryptoDomain.DecryptedRecord, error)
	// Create seals and persists payload.
	Create(ctx context.Context, id, partyID string, payload any) (*cryptoDomain.SecureRecord, error)
	// Get loads and decrypts a stored record.
	Get(ctx context.Context, id string) (*cryptoDomain.DecryptedRecord, error)
	// GetSealed loads a stored record without decrypting it.
	GetSealed(ctx context.Context, id string) (*cryptoDomain.SecureRecord, error)
	List(ctx context.Context, filter recordsDomain.ListFilter) ([]*cryptoDomain.SecureRecord, error)
	Delete(ctx context.Context, id string) error
	// Rewrap moves every stored record below the latest master key version onto it, batchSize
	// records at a time.
	Rewrap(ctx context.Context, batchSize int) (*recordsDomain.RewrapResult, error)
}
