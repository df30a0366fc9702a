package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	cryptoDomain "github.com/allisson/sealedrecords/internal/crypto/domain"
	cryptoService "github.com/allisson/sealedrecords/internal/crypto/service"
	"github.com/allisson/sealedrecords/internal/database"
	recordsDomain "github.com/allisson/sealedrecords/internal/records/domain"
)

const defaultRewrapConcurrency = 4

type recordUseCase struct {
	txManager   database.TxManager
	recordRepo  RecordRepository
	envelope    cryptoService.Envelope
	registry    *cryptoDomain.MasterKeyRegistry
	concurrency int
	logger      *slog.Logger
}

// NewRecordUseCase creates a RecordUseCase. concurrency bounds how many records of one batch
// are rewrapped in parallel; values below 1 fall back to a default.
func NewRecordUseCase(
	txManager database.TxManager,
	recordRepo RecordRepository,
	envelope cryptoService.Envelope,
	registry *cryptoDomain.MasterKeyRegistry,
	concurrency int,
	logger *slog.Logger,
) RecordUseCase {
	if concurrency < 1 {
		concurrency = defaultRewrapConcurrency
	}
	return &recordUseCase{
		txManager:   txManager,
		recordRepo:  recordRepo,
		envelope:    envelope,
		registry:    registry,
		concurrency: concurrency,
		logger:      logger,
	}
}

func (r *recordUseCase) Encrypt(
	ctx context.Context,
	id, partyID string,
	payload any,
) (*cryptoDomain.SecureRecord, error) {
	if partyID == "" {
		return nil, recordsDomain.ErrPartyIDRequired
	}
	if id == "" {
		generated, err := uuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("failed to generate record id: %w", err)
		}
		id = generated.String()
	}

	return r.envelope.Encrypt(r.registry, id, partyID, payload)
}

func (r *recordUseCase) Decrypt(
	ctx context.Context,
	record *cryptoDomain.SecureRecord,
) (*cryptoDomain.DecryptedRecord, error) {
	decrypted, err := r.envelope.Decrypt(r.registry, record)
	if err != nil {
		r.logDecryptFailure(ctx, record, err)
		return nil, err
	}
	return decrypted, nil
}

func (r *recordUseCase) Create(
	ctx context.Context,
	id, partyID string,
	payload any,
) (*cryptoDomain.SecureRecord, error) {
	record, err := r.Encrypt(ctx, id, partyID, payload)
	if err != nil {
		return nil, err
	}

	if err := r.recordRepo.Create(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (r *recordUseCase) Get(ctx context.Context, id string) (*cryptoDomain.DecryptedRecord, error) {
	record, err := r.recordRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return r.Decrypt(ctx, record)
}

func (r *recordUseCase) GetSealed(ctx context.Context, id string) (*cryptoDomain.SecureRecord, error) {
	return r.recordRepo.Get(ctx, id)
}

func (r *recordUseCase) List(
	ctx context.Context,
	filter recordsDomain.ListFilter,
) ([]*cryptoDomain.SecureRecord, error) {
	return r.recordRepo.List(ctx, filter)
}

func (r *recordUseCase) Delete(ctx context.Context, id string) error {
	return r.recordRepo.Delete(ctx, id)
}

// Rewrap processes batches until no record below the latest version remains. Each batch is
// rewrapped in memory concurrently and then persisted in one transaction; a record changed
// concurrently since it was read is skipped. The first failure aborts the run, leaving
// earlier batches committed.
func (r *recordUseCase) Rewrap(ctx context.Context, batchSize int) (*recordsDomain.RewrapResult, error) {
	if batchSize < 1 {
		return nil, recordsDomain.ErrInvalidBatchSize
	}

	latest := r.registry.LatestVersion()
	result := &recordsDomain.RewrapResult{TargetVersion: latest}

	for {
		batch, err := r.recordRepo.ListByMkVersionBelow(ctx, latest, batchSize)
		if err != nil {
			return result, err
		}
		if len(batch) == 0 {
			break
		}
		result.Scanned += len(batch)

		rewrapped, err := r.rewrapBatch(ctx, batch)
		if err != nil {
			return result, err
		}

		updated := 0
		err = r.txManager.WithTx(ctx, func(txCtx context.Context) error {
			updated = 0
			for i, record := range rewrapped {
				err := r.recordRepo.UpdateWrap(txCtx, record, batch[i].MkVersion)
				if errors.Is(err, recordsDomain.ErrRecordNotFound) {
					continue
				}
				if err != nil {
					return err
				}
				updated++
			}
			return nil
		})
		if err != nil {
			return result, err
		}
		result.Rewrapped += updated

		r.logger.Info("rewrapped record batch",
			slog.Int("batch_size", len(batch)),
			slog.Int("updated", updated),
			slog.Uint64("target_version", uint64(latest)),
		)

		if len(batch) < batchSize {
			break
		}
	}

	return result, nil
}

func (r *recordUseCase) rewrapBatch(
	ctx context.Context,
	batch []*cryptoDomain.SecureRecord,
) ([]*cryptoDomain.SecureRecord, error) {
	rewrapped := make([]*cryptoDomain.SecureRecord, len(batch))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, record := range batch {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			next, err := r.envelope.Rewrap(r.registry, record)
			if err != nil {
				return fmt.Errorf("failed to rewrap record %s: %w", record.ID, err)
			}
			rewrapped[i] = next
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rewrapped, nil
}

// logDecryptFailure records which record failed. The error kind is logged but never the
// payload or any key material.
func (r *recordUseCase) logDecryptFailure(
	ctx context.Context,
	record *cryptoDomain.SecureRecord,
	err error,
) {
	if record == nil {
		return
	}
	r.logger.WarnContext(ctx, "record decryption failed",
		slog.String("record_id", record.ID),
		slog.String("party_id", record.PartyID),
		slog.Uint64("mk_version", uint64(record.MkVersion)),
		slog.Any("error", err),
	)
}
