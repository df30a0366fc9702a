package service

import (
	"context"
	"fmt"

	"gocloud.dev/secrets"

	cryptoDomain "github.com/allisson/sealedrecords/internal/crypto/domain"

	// Register all KMS provider drivers
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// KMSService opens KMS keepers and converts KMS-wrapped master keys.
type KMSService interface {
	// OpenKeeper opens a keeper for keyURI.
	// Supports: gcpkms://, awskms://, azurekeyvault://, hashivault://, base64key://
	OpenKeeper(ctx context.Context, keyURI string) (KMSKeeper, error)

	// KeyDecoder returns a registry decoder whose values are hex-encoded keeper ciphertexts.
	KeyDecoder(ctx context.Context, keeper KMSKeeper) cryptoDomain.KeyDecoder

	// WrapMasterKey encrypts a raw master key with keeper and returns the hex configuration value.
	WrapMasterKey(ctx context.Context, keeper KMSKeeper, key []byte) (string, error)
}

type kmsService struct{}

// NewKMSService creates a new KMS service instance.
func NewKMSService() KMSService {
	return &kmsService{}
}

func (k *kmsService) OpenKeeper(ctx context.Context, keyURI string) (KMSKeeper, error) {
	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	return keeper, nil
}

// KeyDecoder hex-decodes each value, then asks the keeper to unwrap it. The registry builder
// enforces the 32-byte length on the unwrapped key.
func (k *kmsService) KeyDecoder(ctx context.Context, keeper KMSKeeper) cryptoDomain.KeyDecoder {
	return func(name, value string) ([]byte, error) {
		ciphertext, err := cryptoDomain.DecodeHex(name, value, 0)
		if err != nil {
			return nil, err
		}
		if len(ciphertext) == 0 {
			return nil, &cryptoDomain.LengthMismatchError{
				Field:    name,
				Expected: cryptoDomain.KeySize,
				Actual:   0,
			}
		}

		key, err := keeper.Decrypt(ctx, ciphertext)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt master key %s with KMS: %w", name, err)
		}
		return key, nil
	}
}

func (k *kmsService) WrapMasterKey(ctx context.Context, keeper KMSKeeper, key []byte) (string, error) {
	if len(key) != cryptoDomain.KeySize {
		return "", cryptoDomain.ErrInvalidKeySize
	}
	ciphertext, err := keeper.Encrypt(ctx, key)
	if err != nil {
		return "", fmt.Errorf("failed to encrypt master key with KMS: %w", err)
	}
	return cryptoDomain.EncodeHex(ciphertext), nil
}
