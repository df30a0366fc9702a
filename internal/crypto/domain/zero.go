package domain

// Zero overwrites key material in place. Every DEK, master key copy and decrypted plaintext
// buffer handled by the engine is passed through Zero once it is no longer needed.
func Zero(b []byte) {
	clear(b)
}
