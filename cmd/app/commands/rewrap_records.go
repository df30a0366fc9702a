package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	recordsUseCase "github.com/allisson/sealedrecords/internal/records/usecase"
)

// RunRewrapRecords moves every stored record onto the latest master key version. Payloads
// are never decrypted; only the wrapped DEKs change.
func RunRewrapRecords(
	ctx context.Context,
	recordUseCase recordsUseCase.RecordUseCase,
	logger *slog.Logger,
	writer io.Writer,
	batchSize int,
) error {
	if batchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}

	logger.Info("starting record rewrap process", slog.Int("batch_size", batchSize))

	result, err := recordUseCase.Rewrap(ctx, batchSize)
	if err != nil {
		return fmt.Errorf("failed to rewrap records: %w", err)
	}

	logger.Info("record rewrap process completed",
		slog.Uint64("target_version", uint64(result.TargetVersion)),
		slog.Int("scanned", result.Scanned),
		slog.Int("rewrapped", result.Rewrapped),
	)

	_, _ = fmt.Fprintf(writer,
		"Rewrapped %d of %d records to master key version %d\n",
		result.Rewrapped,
		result.Scanned,
		result.TargetVersion,
	)
	return nil
}
