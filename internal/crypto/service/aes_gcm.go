package service

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"

	cryptoDomain "github.com/allisson/sealedrecords/internal/crypto/domain"
)

// AESGCMCipher implements the AEAD interface using AES-256-GCM.
//
// Security properties:
//   - 256-bit key
//   - 12-byte random nonce per Seal
//   - 16-byte authentication tag, returned detached from the ciphertext
//
// The cipher holds no mutable state and is safe for concurrent use.
type AESGCMCipher struct {
	aead cipher.AEAD
}

// NewAESGCM creates a new AES-256-GCM cipher instance. The key must be exactly 32 bytes.
func NewAESGCM(key []byte) (*AESGCMCipher, error) {
	if len(key) != cryptoDomain.KeySize {
		return nil, cryptoDomain.ErrInvalidKeySize
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &AESGCMCipher{aead: aead}, nil
}

// Seal encrypts plaintext with aad as additional authenticated data.
func (a *AESGCMCipher) Seal(plaintext, aad []byte) (nonce, ciphertext, tag []byte, err error) {
	return sealDetached(a.aead, plaintext, aad)
}

// Open decrypts ciphertext after verifying tag against nonce and aad.
func (a *AESGCMCipher) Open(nonce, ciphertext, tag, aad []byte) ([]byte, error) {
	return openDetached(a.aead, nonce, ciphertext, tag, aad)
}
