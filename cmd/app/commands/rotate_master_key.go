package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	cryptoDomain "github.com/allisson/sealedrecords/internal/crypto/domain"
	cryptoService "github.com/allisson/sealedrecords/internal/crypto/service"
)

// RunRotateMasterKey loads the current MASTER_KEY* entries, generates a key for the next
// version and prints it with the follow-up steps. Existing entries must stay configured until
// every record has been rewrapped.
func RunRotateMasterKey(
	ctx context.Context,
	kmsService cryptoService.KMSService,
	logger *slog.Logger,
	writer io.Writer,
	kmsKeyURI string,
	masterKeys map[string]string,
) error {
	registry, err := loadMasterKeyRegistry(ctx, kmsService, kmsKeyURI, masterKeys)
	if err != nil {
		return fmt.Errorf("failed to load existing master keys: %w", err)
	}
	currentVersion := registry.LatestVersion()
	registry.Close()

	nextVersion := currentVersion + 1
	value, err := newMasterKeyValue(ctx, kmsService, kmsKeyURI)
	if err != nil {
		return err
	}

	logger.Info("master key rotated",
		slog.Uint64("previous_version", uint64(currentVersion)),
		slog.Uint64("new_version", uint64(nextVersion)),
	)

	_, _ = fmt.Fprintln(writer, "# Master Key Rotation")
	_, _ = fmt.Fprintln(writer, "# Add this environment variable next to the existing MASTER_KEY* entries")
	_, _ = fmt.Fprintln(writer)
	_, _ = fmt.Fprintf(writer, "%s=\"%s\"\n", cryptoDomain.MasterKeyVersionName(nextVersion), value)
	_, _ = fmt.Fprintln(writer)
	_, _ = fmt.Fprintln(writer, "# Rotation Workflow:")
	_, _ = fmt.Fprintln(writer, "# 1. Add the above environment variable")
	_, _ = fmt.Fprintln(writer, "# 2. Restart the application (new records now use the new version)")
	_, _ = fmt.Fprintln(writer, "# 3. Rewrap stored records: app rewrap-records --batch-size 100")
	_, _ = fmt.Fprintf(writer,
		"# 4. Once no record uses a version below %d, remove the older MASTER_KEY* entries\n",
		nextVersion,
	)

	return nil
}
