package service

import (
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	cryptoDomain "github.com/allisson/sealedrecords/internal/crypto/domain"
)

// sealDetached runs aead.Seal with a random nonce and splits the trailing tag off the output.
func sealDetached(aead cipher.AEAD, plaintext, aad []byte) (nonce, ciphertext, tag []byte, err error) {
	nonce = make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := aead.Seal(nil, nonce, plaintext, aad)
	split := len(sealed) - aead.Overhead()
	return nonce, sealed[:split:split], sealed[split:], nil
}

// openDetached reassembles ciphertext||tag and opens it. cipher.AEAD panics on a wrong nonce
// size, so lengths are checked first.
func openDetached(aead cipher.AEAD, nonce, ciphertext, tag, aad []byte) ([]byte, error) {
	if len(nonce) != aead.NonceSize() {
		return nil, &cryptoDomain.LengthMismatchError{
			Field:    "nonce",
			Expected: aead.NonceSize(),
			Actual:   len(nonce),
		}
	}
	if len(tag) != aead.Overhead() {
		return nil, &cryptoDomain.LengthMismatchError{
			Field:    "tag",
			Expected: aead.Overhead(),
			Actual:   len(tag),
		}
	}

	sealed := make([]byte, 0, len(ciphertext)+len(tag))
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := aead.Open(nil, nonce, sealed, aad)
	if err != nil {
		return nil, cryptoDomain.ErrAuthenticationFailed
	}
	return plaintext, nil
}
