package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	cryptoDomain "github.com/allisson/sealedrecords/internal/crypto/domain"
	cryptoService "github.com/allisson/sealedrecords/internal/crypto/service"
	recordsDomain "github.com/allisson/sealedrecords/internal/records/domain"
	"github.com/allisson/sealedrecords/internal/records/usecase/mocks"
)

func randomHexKey(t *testing.T) string {
	t.Helper()
	key := make([]byte, cryptoDomain.KeySize)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return cryptoDomain.EncodeHex(key)
}

type testEnv struct {
	useCase   RecordUseCase
	repo      *mocks.MockRecordRepository
	txManager *mocks.MockTxManager
	envelope  *cryptoService.EnvelopeService
	registry  *cryptoDomain.MasterKeyRegistry
}

func setupUseCase(t *testing.T, config map[string]string) *testEnv {
	t.Helper()

	registry, err := cryptoDomain.BuildMasterKeyRegistry(config)
	require.NoError(t, err)

	env := &testEnv{
		repo:      &mocks.MockRecordRepository{},
		txManager: &mocks.MockTxManager{},
		envelope:  cryptoService.NewEnvelopeService(cryptoService.NewAEADManager(), cryptoDomain.AESGCM),
		registry:  registry,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	env.useCase = NewRecordUseCase(env.txManager, env.repo, env.envelope, registry, 2, logger)

	t.Cleanup(func() {
		env.repo.AssertExpectations(t)
		env.txManager.AssertExpectations(t)
	})
	return env
}

func TestRecordUseCase_Encrypt(t *testing.T) {
	ctx := context.Background()
	env := setupUseCase(t, map[string]string{"MASTER_KEY_V1": randomHexKey(t)})

	t.Run("Success_GeneratesID", func(t *testing.T) {
		record, err := env.useCase.Encrypt(ctx, "", "party-1", map[string]any{"a": 1})
		require.NoError(t, err)

		parsed, err := uuid.Parse(record.ID)
		require.NoError(t, err)
		assert.Equal(t, uuid.Version(7), parsed.Version())
		assert.Equal(t, "party-1", record.PartyID)
	})

	t.Run("Success_KeepsCallerID", func(t *testing.T) {
		record, err := env.useCase.Encrypt(ctx, "custom-id", "party-1", "x")
		require.NoError(t, err)
		assert.Equal(t, "custom-id", record.ID)
	})

	t.Run("Error_EmptyPartyID", func(t *testing.T) {
		record, err := env.useCase.Encrypt(ctx, "id", "", "x")
		assert.Nil(t, record)
		assert.ErrorIs(t, err, recordsDomain.ErrPartyIDRequired)
	})
}

func TestRecordUseCase_Decrypt(t *testing.T) {
	ctx := context.Background()
	env := setupUseCase(t, map[string]string{"MASTER_KEY_V1": randomHexKey(t)})

	record, err := env.useCase.Encrypt(ctx, "id", "party", "hello")
	require.NoError(t, err)

	t.Run("Success", func(t *testing.T) {
		decrypted, err := env.useCase.Decrypt(ctx, record)
		require.NoError(t, err)
		assert.Equal(t, "hello", decrypted.Payload)
	})

	t.Run("Error_TamperedParty", func(t *testing.T) {
		tampered := *record
		tampered.PartyID = "other"

		_, err := env.useCase.Decrypt(ctx, &tampered)
		assert.ErrorIs(t, err, cryptoDomain.ErrAuthenticationFailed)
	})
}

func TestRecordUseCase_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		env := setupUseCase(t, map[string]string{"MASTER_KEY_V1": randomHexKey(t)})
		env.repo.On("Create", ctx, mock.MatchedBy(func(r *cryptoDomain.SecureRecord) bool {
			return r.ID == "rec-1" && r.PartyID == "party-1" && r.MkVersion == 1
		})).Return(nil).Once()

		record, err := env.useCase.Create(ctx, "rec-1", "party-1", map[string]any{"k": "v"})
		require.NoError(t, err)
		assert.Equal(t, "rec-1", record.ID)
	})

	t.Run("Error_AlreadyExists", func(t *testing.T) {
		env := setupUseCase(t, map[string]string{"MASTER_KEY_V1": randomHexKey(t)})
		env.repo.On("Create", ctx, mock.Anything).Return(recordsDomain.ErrRecordAlreadyExists).Once()

		record, err := env.useCase.Create(ctx, "rec-1", "party-1", "x")
		assert.Nil(t, record)
		assert.ErrorIs(t, err, recordsDomain.ErrRecordAlreadyExists)
	})

	t.Run("Error_EmptyPartyIDSkipsRepository", func(t *testing.T) {
		env := setupUseCase(t, map[string]string{"MASTER_KEY_V1": randomHexKey(t)})

		_, err := env.useCase.Create(ctx, "rec-1", "", "x")
		assert.ErrorIs(t, err, recordsDomain.ErrPartyIDRequired)
		env.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestRecordUseCase_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		env := setupUseCase(t, map[string]string{"MASTER_KEY_V1": randomHexKey(t)})
		stored, err := env.envelope.Encrypt(env.registry, "rec-1", "party-1", map[string]any{"k": "v"})
		require.NoError(t, err)
		env.repo.On("Get", ctx, "rec-1").Return(stored, nil).Once()

		decrypted, err := env.useCase.Get(ctx, "rec-1")
		require.NoError(t, err)
		assert.Equal(t, "rec-1", decrypted.ID)
		assert.Equal(t, "party-1", decrypted.PartyID)
		assert.Equal(t, map[string]any{"k": "v"}, decrypted.Payload)
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		env := setupUseCase(t, map[string]string{"MASTER_KEY_V1": randomHexKey(t)})
		env.repo.On("Get", ctx, "missing").Return(nil, recordsDomain.ErrRecordNotFound).Once()

		_, err := env.useCase.Get(ctx, "missing")
		assert.ErrorIs(t, err, recordsDomain.ErrRecordNotFound)
	})

	t.Run("Error_RetiredKeyVersion", func(t *testing.T) {
		old := setupUseCase(t, map[string]string{"MASTER_KEY_V1": randomHexKey(t)})
		stored, err := old.envelope.Encrypt(old.registry, "rec-1", "party-1", "x")
		require.NoError(t, err)

		env := setupUseCase(t, map[string]string{"MASTER_KEY_V2": randomHexKey(t)})
		env.repo.On("Get", ctx, "rec-1").Return(stored, nil).Once()

		_, err = env.useCase.Get(ctx, "rec-1")
		assert.ErrorIs(t, err, cryptoDomain.ErrUnknownKeyVersion)
	})
}

func TestRecordUseCase_GetSealed_List_Delete(t *testing.T) {
	ctx := context.Background()
	env := setupUseCase(t, map[string]string{"MASTER_KEY_V1": randomHexKey(t)})
	stored := &cryptoDomain.SecureRecord{ID: "rec-1", PartyID: "party-1"}
	filter := recordsDomain.ListFilter{PartyID: "party-1", Limit: 10}

	env.repo.On("Get", ctx, "rec-1").Return(stored, nil).Once()
	env.repo.On("List", ctx, filter).Return([]*cryptoDomain.SecureRecord{stored}, nil).Once()
	env.repo.On("Delete", ctx, "rec-1").Return(nil).Once()

	sealed, err := env.useCase.GetSealed(ctx, "rec-1")
	require.NoError(t, err)
	assert.Same(t, stored, sealed)

	records, err := env.useCase.List(ctx, filter)
	require.NoError(t, err)
	assert.Len(t, records, 1)

	assert.NoError(t, env.useCase.Delete(ctx, "rec-1"))
}

func TestRecordUseCase_Rewrap(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ctx := context.Background()
	keyV1 := randomHexKey(t)
	keyV2 := randomHexKey(t)

	// Records sealed before rotation.
	before := setupUseCase(t, map[string]string{"MASTER_KEY_V1": keyV1})
	sealOld := func(t *testing.T, n int) []*cryptoDomain.SecureRecord {
		records := make([]*cryptoDomain.SecureRecord, 0, n)
		for i := range n {
			r, err := before.envelope.Encrypt(before.registry, uuid.NewString(), "party", i)
			require.NoError(t, err)
			records = append(records, r)
		}
		return records
	}

	t.Run("Success_MultipleBatches", func(t *testing.T) {
		env := setupUseCase(t, map[string]string{"MASTER_KEY_V1": keyV1, "MASTER_KEY_V2": keyV2})
		first := sealOld(t, 3)
		second := sealOld(t, 1)

		env.repo.On("ListByMkVersionBelow", ctx, uint(2), 3).Return(first, nil).Once()
		env.repo.On("ListByMkVersionBelow", ctx, uint(2), 3).Return(second, nil).Once()
		env.txManager.On("WithTx", ctx, mock.Anything).Return(nil).Twice()
		env.repo.On("UpdateWrap", ctx, mock.MatchedBy(func(r *cryptoDomain.SecureRecord) bool {
			if r.MkVersion != 2 {
				return false
			}
			_, err := env.envelope.Decrypt(env.registry, r)
			return err == nil
		}), uint(1)).Return(nil).Times(4)

		result, err := env.useCase.Rewrap(ctx, 3)
		require.NoError(t, err)
		assert.Equal(t, &recordsDomain.RewrapResult{TargetVersion: 2, Scanned: 4, Rewrapped: 4}, result)
	})

	t.Run("Success_NothingToDo", func(t *testing.T) {
		env := setupUseCase(t, map[string]string{"MASTER_KEY_V1": keyV1, "MASTER_KEY_V2": keyV2})
		env.repo.On("ListByMkVersionBelow", ctx, uint(2), 10).
			Return([]*cryptoDomain.SecureRecord{}, nil).
			Once()

		result, err := env.useCase.Rewrap(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, 0, result.Scanned)
		env.txManager.AssertNotCalled(t, "WithTx", mock.Anything, mock.Anything)
	})

	t.Run("Success_SkipsConcurrentlyChangedRecords", func(t *testing.T) {
		env := setupUseCase(t, map[string]string{"MASTER_KEY_V1": keyV1, "MASTER_KEY_V2": keyV2})
		batch := sealOld(t, 2)

		env.repo.On("ListByMkVersionBelow", ctx, uint(2), 10).Return(batch, nil).Once()
		env.txManager.On("WithTx", ctx, mock.Anything).Return(nil).Once()
		env.repo.On("UpdateWrap", ctx, mock.MatchedBy(func(r *cryptoDomain.SecureRecord) bool {
			return r.ID == batch[0].ID
		}), uint(1)).Return(recordsDomain.ErrRecordNotFound).Once()
		env.repo.On("UpdateWrap", ctx, mock.MatchedBy(func(r *cryptoDomain.SecureRecord) bool {
			return r.ID == batch[1].ID
		}), uint(1)).Return(nil).Once()

		result, err := env.useCase.Rewrap(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, 2, result.Scanned)
		assert.Equal(t, 1, result.Rewrapped)
	})

	t.Run("Error_RetiredSourceVersion", func(t *testing.T) {
		env := setupUseCase(t, map[string]string{"MASTER_KEY_V2": keyV2})
		batch := sealOld(t, 2)

		env.repo.On("ListByMkVersionBelow", ctx, uint(2), 10).Return(batch, nil).Once()

		result, err := env.useCase.Rewrap(ctx, 10)
		assert.ErrorIs(t, err, cryptoDomain.ErrUnknownKeyVersion)
		assert.Equal(t, 0, result.Rewrapped)
		env.txManager.AssertNotCalled(t, "WithTx", mock.Anything, mock.Anything)
	})

	t.Run("Error_TransactionFails", func(t *testing.T) {
		env := setupUseCase(t, map[string]string{"MASTER_KEY_V1": keyV1, "MASTER_KEY_V2": keyV2})
		batch := sealOld(t, 1)
		txErr := errors.New("tx failed")

		env.repo.On("ListByMkVersionBelow", ctx, uint(2), 10).Return(batch, nil).Once()
		env.txManager.On("WithTx", ctx, mock.Anything).Return(txErr).Once()

		_, err := env.useCase.Rewrap(ctx, 10)
		assert.ErrorIs(t, err, txErr)
	})

	t.Run("Error_InvalidBatchSize", func(t *testing.T) {
		env := setupUseCase(t, map[string]string{"MASTER_KEY_V1": keyV1})

		_, err := env.useCase.Rewrap(ctx, 0)
		assert.ErrorIs(t, err, recordsDomain.ErrInvalidBatchSize)
	})
}
