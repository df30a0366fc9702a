package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	cryptoDomain "github.com/allisson/sealedrecords/internal/crypto/domain"
	cryptoService "github.com/allisson/sealedrecords/internal/crypto/service"
)

// RunCreateMasterKey generates a master key and prints it as a MASTER_KEY_V<version>
// environment entry. With kmsKeyURI the printed value is the KMS-wrapped key, and the
// process must run with the same KMS_KEY_URI to use it.
func RunCreateMasterKey(
	ctx context.Context,
	kmsService cryptoService.KMSService,
	logger *slog.Logger,
	writer io.Writer,
	version uint,
	kmsKeyURI string,
) error {
	if version == 0 {
		return fmt.Errorf("version must be at least 1")
	}

	value, err := newMasterKeyValue(ctx, kmsService, kmsKeyURI)
	if err != nil {
		return err
	}

	logger.Info("master key created",
		slog.Uint64("version", uint64(version)),
		slog.Bool("kms", kmsKeyURI != ""),
	)

	_, _ = fmt.Fprintln(writer, "# Master Key Configuration")
	_, _ = fmt.Fprintln(writer, "# Copy this environment variable to your .env file or secrets manager")
	_, _ = fmt.Fprintln(writer)
	if kmsKeyURI != "" {
		_, _ = fmt.Fprintf(writer, "KMS_KEY_URI=\"%s\"\n", kmsKeyURI)
	}
	_, _ = fmt.Fprintf(writer, "%s=\"%s\"\n", cryptoDomain.MasterKeyVersionName(version), value)

	return nil
}
