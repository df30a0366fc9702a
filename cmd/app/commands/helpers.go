// Package commands contains CLI command implementations for the application.
package commands

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/golang-migrate/migrate/v4"

	"github.com/allisson/sealedrecords/internal/app"
	cryptoDomain "github.com/allisson/sealedrecords/internal/crypto/domain"
	cryptoService "github.com/allisson/sealedrecords/internal/crypto/service"
)

// IOTuple holds reader and writer for commands, allowing for testing.
type IOTuple struct {
	Reader io.Reader
	Writer io.Writer
}

// DefaultIO returns an IOTuple with os.Stdin and os.Stdout.
func DefaultIO() IOTuple {
	return IOTuple{
		Reader: os.Stdin,
		Writer: os.Stdout,
	}
}

// closeContainer closes all resources in the container and logs any errors.
func closeContainer(container *app.Container, logger *slog.Logger) {
	if err := container.Shutdown(context.Background()); err != nil {
		logger.Error("failed to shutdown container", slog.Any("error", err))
	}
}

// closeMigrate closes the migration instance and logs any errors.
func closeMigrate(migrate *migrate.Migrate, logger *slog.Logger) {
	sourceError, databaseError := migrate.Close()
	if sourceError != nil || databaseError != nil {
		logger.Error(
			"failed to close the migrate",
			slog.Any("source_error", sourceError),
			slog.Any("database_error", databaseError),
		)
	}
}

// newMasterKeyValue generates a random master key and returns its configuration value:
// lowercase hex, or hex of the KMS ciphertext when kmsKeyURI is set. The raw key is zeroed
// before returning.
func newMasterKeyValue(
	ctx context.Context,
	kmsService cryptoService.KMSService,
	kmsKeyURI string,
) (string, error) {
	masterKey := make([]byte, cryptoDomain.KeySize)
	defer cryptoDomain.Zero(masterKey)

	if _, err := rand.Read(masterKey); err != nil {
		return "", fmt.Errorf("failed to generate master key: %w", err)
	}

	if kmsKeyURI == "" {
		return cryptoDomain.EncodeHex(masterKey), nil
	}

	keeper, err := kmsService.OpenKeeper(ctx, kmsKeyURI)
	if err != nil {
		return "", err
	}
	defer func() { _ = keeper.Close() }()

	return kmsService.WrapMasterKey(ctx, keeper, masterKey)
}

// loadMasterKeyRegistry builds a registry from raw MASTER_KEY* entries, unwrapping them
// through the KMS when kmsKeyURI is set. The caller must Close the registry.
func loadMasterKeyRegistry(
	ctx context.Context,
	kmsService cryptoService.KMSService,
	kmsKeyURI string,
	masterKeys map[string]string,
) (*cryptoDomain.MasterKeyRegistry, error) {
	if kmsKeyURI == "" {
		return cryptoDomain.BuildMasterKeyRegistry(masterKeys)
	}

	keeper, err := kmsService.OpenKeeper(ctx, kmsKeyURI)
	if err != nil {
		return nil, err
	}
	defer func() { _ = keeper.Close() }()

	return cryptoDomain.BuildMasterKeyRegistryWithDecoder(masterKeys, kmsService.KeyDecoder(ctx, keeper))
}
