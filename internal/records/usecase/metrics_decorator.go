package usecase

import (
	"context"
	"time"

	cryptoDomain "github.com/allisson/sealedrecords/internal/crypto/domain"
	"github.com/allisson/sealedrecords/internal/metrics"
	recordsDomain "github.com/allisson/sealedrecords/internal/records/domain"
)

const metricsDomain = "records"

// recordUseCaseWithMetrics decorates RecordUseCase with metrics instrumentation.
type recordUseCaseWithMetrics struct {
	next    RecordUseCase
	metrics metrics.BusinessMetrics
}

// NewRecordUseCaseWithMetrics wraps a RecordUseCase with metrics recording.
func NewRecordUseCaseWithMetrics(useCase RecordUseCase, m metrics.BusinessMetrics) RecordUseCase {
	return &recordUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (r *recordUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	r.metrics.RecordOperation(ctx, metricsDomain, operation, status)
	r.metrics.RecordDuration(ctx, metricsDomain, operation, time.Since(start), status)
}

func (r *recordUseCaseWithMetrics) Encrypt(
	ctx context.Context,
	id, partyID string,
	payload any,
) (*cryptoDomain.SecureRecord, error) {
	start := time.Now()
	record, err := r.next.Encrypt(ctx, id, partyID, payload)
	r.record(ctx, "envelope_encrypt", start, err)
	return record, err
}

func (r *recordUseCaseWithMetrics) Decrypt(
	ctx context.Context,
	record *cryptoDomain.SecureRecord,
) (*cryptoDomain.DecryptedRecord, error) {
	start := time.Now()
	decrypted, err := r.next.Decrypt(ctx, record)
	r.record(ctx, "envelope_decrypt", start, err)
	return decrypted, err
}

func (r *recordUseCaseWithMetrics) Create(
	ctx context.Context,
	id, partyID string,
	payload any,
) (*cryptoDomain.SecureRecord, error) {
	start := time.Now()
	record, err := r.next.Create(ctx, id, partyID, payload)
	r.record(ctx, "record_create", start, err)
	return record, err
}

func (r *recordUseCaseWithMetrics) Get(ctx context.Context, id string) (*cryptoDomain.DecryptedRecord, error) {
	start := time.Now()
	decrypted, err := r.next.Get(ctx, id)
	r.record(ctx, "record_get", start, err)
	return decrypted, err
}

func (r *recordUseCaseWithMetrics) GetSealed(ctx context.Context, id string) (*cryptoDomain.SecureRecord, error) {
	start := time.Now()
	record, err := r.next.GetSealed(ctx, id)
	r.record(ctx, "record_get_sealed", start, err)
	return record, err
}

func (r *recordUseCaseWithMetrics) List(
	ctx context.Context,
	filter recordsDomain.ListFilter,
) ([]*cryptoDomain.SecureRecord, error) {
	start := time.Now()
	records, err := r.next.List(ctx, filter)
	r.record(ctx, "record_list", start, err)
	return records, err
}

func (r *recordUseCaseWithMetrics) Delete(ctx context.Context, id string) error {
	start := time.Now()
	err := r.next.Delete(ctx, id)
	r.record(ctx, "record_delete", start, err)
	return err
}

func (r *recordUseCaseWithMetrics) Rewrap(
	ctx context.Context,
	batchSize int,
) (*recordsDomain.RewrapResult, error) {
	start := time.Now()
	result, err := r.next.Rewrap(ctx, batchSize)
	r.record(ctx, "record_rewrap", start, err)
	// Committed batches count even when a later batch fails.
	if result != nil && result.Rewrapped > 0 {
		r.metrics.RecordRewrapped(ctx, result.TargetVersion, result.Rewrapped)
	}
	return result, err
}
