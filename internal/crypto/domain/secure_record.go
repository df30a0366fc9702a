package domain

import "time"

// SecureRecord is the persisted and transmitted unit produced by envelope encryption.
//
// Every binary field is lowercase hexadecimal text. The record is self-describing: the
// registry plus the record are enough to decrypt it, with PartyID bound to both AEAD layers
// as additional authenticated data. The DEK never appears here in the clear.
//
// Field lengths (decoded):
//   - PayloadNonce, DekWrapNonce: 12 bytes
//   - PayloadTag, DekWrapTag: 16 bytes
//   - WrappedDek: 32 bytes
//   - PayloadCiphertext: same length as the serialized payload
//
// CreatedAt is advisory and not authenticated.
type SecureRecord struct {
	ID                string    `json:"id"`
	PartyID           string    `json:"partyId"`
	CreatedAt         time.Time `json:"createdAt"`
	PayloadNonce      string    `json:"payloadNonce"`
	PayloadCiphertext string    `json:"payloadCiphertext"`
	PayloadTag        string    `json:"payloadTag"`
	DekWrapNonce      string    `json:"dekWrapNonce"`
	WrappedDek        string    `json:"wrappedDek"`
	DekWrapTag        string    `json:"dekWrapTag"`
	Alg               Algorithm `json:"alg"`
	MkVersion         uint      `json:"mkVersion"`
}

// DecryptedRecord is the result of a successful decryption.
type DecryptedRecord struct {
	ID      string `json:"id"`
	PartyID string `json:"partyId"`
	Payload any    `json:"payload"`
}
