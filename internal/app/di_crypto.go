package app

import (
	"context"
	"fmt"
	"log/slog"

	cryptoDomain "github.com/allisson/sealedrecords/internal/crypto/domain"
	cryptoService "github.com/allisson/sealedrecords/internal/crypto/service"
)

type cryptoComponents struct {
	aeadManager       lazy[cryptoService.AEADManager]
	kmsService        lazy[cryptoService.KMSService]
	masterKeyRegistry lazy[*cryptoDomain.MasterKeyRegistry]
	envelope          lazy[cryptoService.Envelope]
}

// AEADManager returns the cipher factory.
func (c *Container) AEADManager() cryptoService.AEADManager {
	manager, _ := c.aeadManager.get(func() (cryptoService.AEADManager, error) {
		return cryptoService.NewAEADManager(), nil
	})
	return manager
}

// KMSService returns the KMS service.
func (c *Container) KMSService() cryptoService.KMSService {
	service, _ := c.kmsService.get(func() (cryptoService.KMSService, error) {
		return cryptoService.NewKMSService(), nil
	})
	return service
}

// MasterKeyRegistry builds the registry from the MASTER_KEY* entries captured in config.
// With KMS_KEY_URI set, each value is unwrapped through the KMS keeper first; the keeper is
// closed once every key is decoded.
func (c *Container) MasterKeyRegistry() (*cryptoDomain.MasterKeyRegistry, error) {
	return c.masterKeyRegistry.get(func() (*cryptoDomain.MasterKeyRegistry, error) {
		registry, err := c.buildMasterKeyRegistry(context.Background())
		if err != nil {
			return nil, fmt.Errorf("failed to load master key registry: %w", err)
		}

		c.Logger().Info("master key registry loaded",
			slog.Any("versions", registry.Versions()),
			slog.Uint64("latest_version", uint64(registry.LatestVersion())),
			slog.Bool("kms", c.config.KMSKeyURI != ""),
		)
		return registry, nil
	})
}

func (c *Container) buildMasterKeyRegistry(ctx context.Context) (*cryptoDomain.MasterKeyRegistry, error) {
	if c.config.KMSKeyURI == "" {
		return cryptoDomain.BuildMasterKeyRegistry(c.config.MasterKeys)
	}

	kmsService := c.KMSService()
	keeper, err := kmsService.OpenKeeper(ctx, c.config.KMSKeyURI)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := keeper.Close(); closeErr != nil {
			c.Logger().Warn("failed to close KMS keeper", slog.Any("error", closeErr))
		}
	}()

	return cryptoDomain.BuildMasterKeyRegistryWithDecoder(
		c.config.MasterKeys,
		kmsService.KeyDecoder(ctx, keeper),
	)
}

// Envelope returns the envelope engine sealing new records with the configured algorithm.
func (c *Container) Envelope() (cryptoService.Envelope, error) {
	return c.envelope.get(func() (cryptoService.Envelope, error) {
		alg, err := cryptoDomain.ParseAlgorithm(c.config.EnvelopeAlgorithm)
		if err != nil {
			return nil, fmt.Errorf("invalid ENVELOPE_ALGORITHM %q: %w", c.config.EnvelopeAlgorithm, err)
		}
		return cryptoService.NewEnvelopeService(c.AEADManager(), alg), nil
	})
}
