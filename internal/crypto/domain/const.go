package domain

// Algorithm represents the cryptographic algorithm used for encryption.
//
// All supported algorithms provide Authenticated Encryption with Associated Data (AEAD),
// ensuring both confidentiality and authenticity of encrypted data. Both use a 256-bit key,
// a 96-bit nonce and a 128-bit tag, so a SecureRecord has the same field sizes whichever
// algorithm produced it.
//
// Algorithm selection guidelines:
//   - Use AESGCM on modern CPUs with AES-NI hardware acceleration
//   - Use ChaCha20 on mobile devices or systems without AES-NI
type Algorithm string

const (
	// AESGCM represents the AES-256-GCM authenticated encryption algorithm.
	//
	// Key features:
	//   - 256-bit key size
	//   - 12-byte nonce (96 bits)
	//   - 16-byte authentication tag
	//   - Hardware acceleration on modern CPUs
	AESGCM Algorithm = "aes-256-gcm"

	// ChaCha20 represents the ChaCha20-Poly1305 authenticated encryption algorithm.
	//
	// Key features:
	//   - 256-bit key size
	//   - 12-byte nonce (96 bits)
	//   - 16-byte authentication tag
	//   - Constant-time implementation
	ChaCha20 Algorithm = "chacha20-poly1305"
)

// Byte lengths enforced on every SecureRecord field and master key.
const (
	KeySize   = 32
	NonceSize = 12
	TagSize   = 16
)

// IsSupported reports whether the algorithm is one the envelope engine can process.
func (a Algorithm) IsSupported() bool {
	switch a {
	case AESGCM, ChaCha20:
		return true
	default:
		return false
	}
}

// ParseAlgorithm converts a configuration string into an Algorithm.
func ParseAlgorithm(s string) (Algorithm, error) {
	alg := Algorithm(s)
	if !alg.IsSupported() {
		return "", ErrUnsupportedAlgorithm
	}
	return alg, nil
}
