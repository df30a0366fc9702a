// Package mocks provides mock implementations of the record use case and repository.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	cryptoDomain "github.com/allisson/sealedrecords/internal/crypto/domain"
	recordsDomain "github.com/allisson/sealedrecords/internal/records/domain"
)

// MockRecordRepository is a mock implementation of RecordRepository for testing.
type MockRecordRepository struct {
	mock.Mock
}

func (m *MockRecordRepository) Create(ctx context.Context, record *cryptoDomain.SecureRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockRecordRepository) Get(ctx context.Context, id string) (*cryptoDomain.SecureRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cryptoDomain.SecureRecord), args.Error(1)
}

func (m *MockRecordRepository) List(
	ctx context.Context,
	filter recordsDomain.ListFilter,
) ([]*cryptoDomain.SecureRecord, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*cryptoDomain.SecureRecord), args.Error(1)
}

func (m *MockRecordRepository) ListByMkVersionBelow(
	ctx context.Context,
	version uint,
	limit int,
) ([]*cryptoDomain.SecureRecord, error) {
	args := m.Called(ctx, version, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*cryptoDomain.SecureRecord), args.Error(1)
}

func (m *MockRecordRepository) UpdateWrap(
	ctx context.Context,
	record *cryptoDomain.SecureRecord,
	fromVersion uint,
) error {
	args := m.Called(ctx, record, fromVersion)
	return args.Error(0)
}

func (m *MockRecordRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockRecordUseCase is a mock implementation of RecordUseCase for testing.
type MockRecordUseCase struct {
	mock.Mock
}

func (m *MockRecordUseCase) Encrypt(
	ctx context.Context,
	id, partyID string,
	payload any,
) (*cryptoDomain.SecureRecord, error) {
	args := m.Called(ctx, id, partyID, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cryptoDomain.SecureRecord), args.Error(1)
}

func (m *MockRecordUseCase) Decrypt(
	ctx context.Context,
	record *cryptoDomain.SecureRecord,
) (*cryptoDomain.DecryptedRecord, error) {
	args := m.Called(ctx, record)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cryptoDomain.DecryptedRecord), args.Error(1)
}

func (m *MockRecordUseCase) Create(
	ctx context.Context,
	id, partyID string,
	payload any,
) (*cryptoDomain.SecureRecord, error) {
	args := m.Called(ctx, id, partyID, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cryptoDomain.SecureRecord), args.Error(1)
}

func (m *MockRecordUseCase) Get(ctx context.Context, id string) (*cryptoDomain.DecryptedRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cryptoDomain.DecryptedRecord), args.Error(1)
}

func (m *MockRecordUseCase) GetSealed(ctx context.Context, id string) (*cryptoDomain.SecureRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cryptoDomain.SecureRecord), args.Error(1)
}

func (m *MockRecordUseCase) List(
	ctx context.Context,
	filter recordsDomain.ListFilter,
) ([]*cryptoDomain.SecureRecord, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*cryptoDomain.SecureRecord), args.Error(1)
}

func (m *MockRecordUseCase) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRecordUseCase) Rewrap(ctx context.Context, batchSize int) (*recordsDomain.RewrapResult, error) {
	args := m.Called(ctx, batchSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*recordsDomain.RewrapResult), args.Error(1)
}

// MockTxManager runs the unit of work directly, or returns a configured error.
type MockTxManager struct {
	mock.Mock
}

func (m *MockTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(ctx)
}
