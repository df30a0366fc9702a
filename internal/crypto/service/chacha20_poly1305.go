package service

import (
	"crypto/cipher"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"

	cryptoDomain "github.com/allisson/sealedrecords/internal/crypto/domain"
)

// ChaCha20Poly1305Cipher implements the AEAD interface using ChaCha20-Poly1305.
//
// Same sizes as AES-256-GCM (32-byte key, 12-byte nonce, 16-byte tag), so records sealed
// with either algorithm share one wire shape. Preferred on hardware without AES-NI.
type ChaCha20Poly1305Cipher struct {
	aead cipher.AEAD
}

// NewChaCha20Poly1305 creates a new ChaCha20-Poly1305 cipher instance.
func NewChaCha20Poly1305(key []byte) (*ChaCha20Poly1305Cipher, error) {
	if len(key) != cryptoDomain.KeySize {
		return nil, cryptoDomain.ErrInvalidKeySize
	}

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create ChaCha20-Poly1305 cipher: %w", err)
	}

	return &ChaCha20Poly1305Cipher{aead: aead}, nil
}

// Seal encrypts plaintext with aad as additional authenticated data.
func (c *ChaCha20Poly1305Cipher) Seal(plaintext, aad []byte) (nonce, ciphertext, tag []byte, err error) {
	return sealDetached(c.aead, plaintext, aad)
}

// Open decrypts ciphertext after verifying tag against nonce and aad.
func (c *ChaCha20Poly1305Cipher) Open(nonce, ciphertext, tag, aad []byte) ([]byte, error) {
	return openDetached(c.aead, nonce, ciphertext, tag, aad)
}
