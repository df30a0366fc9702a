package service

import (
	"bytes"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"time"
	"unicode/utf8"

	cryptoDomain "github.com/allisson/sealedrecords/internal/crypto/domain"
)

// EnvelopeService implements the two-layer envelope encryption protocol.
//
// Layer 1 seals the JSON payload under a per-record random DEK. Layer 2 seals the DEK under
// the registry's master key. Both layers use the record's party id as additional
// authenticated data, so moving a record to another party breaks both tags.
//
// EnvelopeService holds no mutable state; the registry is passed on every call and is
// read-only, so one instance is safe for concurrent use.
type EnvelopeService struct {
	aeadManager AEADManager
	alg         cryptoDomain.Algorithm
	now         func() time.Time
}

// NewEnvelopeService creates an EnvelopeService that seals new records with alg.
// Decryption always uses the algorithm recorded on the record itself.
func NewEnvelopeService(aeadManager AEADManager, alg cryptoDomain.Algorithm) *EnvelopeService {
	return &EnvelopeService{
		aeadManager: aeadManager,
		alg:         alg,
		now:         time.Now,
	}
}

// sealedRecord holds the decoded binary fields of a SecureRecord.
type sealedRecord struct {
	payloadNonce      []byte
	payloadCiphertext []byte
	payloadTag        []byte
	dekWrapNonce      []byte
	wrappedDek        []byte
	dekWrapTag        []byte
}

// checkRegistry rejects a nil registry and one that holds no key versions.
func checkRegistry(registry *cryptoDomain.MasterKeyRegistry) error {
	if registry == nil || registry.Len() == 0 {
		return cryptoDomain.ErrNoKeysConfigured
	}
	return nil
}

// checkPartyID rejects a party id that is not valid UTF-8. The id is bound into both tags
// as raw bytes and must survive a JSON round trip unchanged.
func checkPartyID(partyID string) error {
	if !utf8.ValidString(partyID) {
		return fmt.Errorf("%w: partyId is not valid UTF-8", cryptoDomain.ErrMalformedEncoding)
	}
	return nil
}

// withDEK generates a fresh random DEK, hands it to fn and zeroes it when fn returns.
// The DEK never outlives fn.
func withDEK(fn func(dek []byte) error) error {
	dek := make([]byte, cryptoDomain.KeySize)
	defer cryptoDomain.Zero(dek)

	if _, err := rand.Read(dek); err != nil {
		return fmt.Errorf("failed to generate DEK: %w", err)
	}
	return fn(dek)
}

// Encrypt serializes payload to JSON and seals it for partyID under the registry's latest
// master key version.
//
// A fresh DEK and two fresh nonces are generated on every call, so encrypting the same
// input twice yields unrelated records. The caller is responsible for rejecting empty id
// and partyID values.
//
// Returns ErrMalformedEncoding if partyID is not valid UTF-8 and ErrInvalidPayload if payload
// cannot be marshaled to JSON.
func (e *EnvelopeService) Encrypt(
	registry *cryptoDomain.MasterKeyRegistry,
	id, partyID string,
	payload any,
) (*cryptoDomain.SecureRecord, error) {
	if err := checkRegistry(registry); err != nil {
		return nil, err
	}
	if err := checkPartyID(partyID); err != nil {
		return nil, err
	}

	plaintext, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrInvalidPayload, err)
	}
	defer cryptoDomain.Zero(plaintext)

	mkVersion := registry.LatestVersion()
	masterKey, err := registry.Get(mkVersion)
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(masterKey)

	aad := []byte(partyID)
	record := &cryptoDomain.SecureRecord{
		ID:        id,
		PartyID:   partyID,
		CreatedAt: e.now().UTC(),
		Alg:       e.alg,
		MkVersion: mkVersion,
	}

	err = withDEK(func(dek []byte) error {
		payloadCipher, err := e.aeadManager.CreateCipher(dek, e.alg)
		if err != nil {
			return err
		}
		nonce, ciphertext, tag, err := payloadCipher.Seal(plaintext, aad)
		if err != nil {
			return err
		}
		record.PayloadNonce = cryptoDomain.EncodeHex(nonce)
		record.PayloadCiphertext = cryptoDomain.EncodeHex(ciphertext)
		record.PayloadTag = cryptoDomain.EncodeHex(tag)

		return e.wrapDEK(record, dek, masterKey, aad)
	})
	if err != nil {
		return nil, err
	}

	return record, nil
}

// Decrypt validates record, unwraps its DEK and returns the decrypted payload.
//
// Checks run in a fixed order and stop at the first failure:
//  1. alg is supported (ErrUnsupportedAlgorithm)
//  2. partyId is valid UTF-8 and every hex field decodes to its exact length
//     (ErrMalformedEncoding, ErrLengthMismatch)
//  3. mkVersion is in the registry (ErrUnknownKeyVersion)
//  4. the wrapped DEK authenticates (ErrAuthenticationFailed)
//  5. the payload authenticates (ErrAuthenticationFailed)
//  6. the payload is a single JSON value (ErrCorruptPayload)
//
// No cryptographic call is made before steps 1-3 pass.
func (e *EnvelopeService) Decrypt(
	registry *cryptoDomain.MasterKeyRegistry,
	record *cryptoDomain.SecureRecord,
) (*cryptoDomain.DecryptedRecord, error) {
	if err := checkRegistry(registry); err != nil {
		return nil, err
	}

	sealed, err := decodeRecord(record)
	if err != nil {
		return nil, err
	}

	masterKey, err := registry.Get(record.MkVersion)
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(masterKey)

	aad := []byte(record.PartyID)

	dek, err := e.unwrapDEK(record.Alg, sealed, masterKey, aad)
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(dek)

	payloadCipher, err := e.aeadManager.CreateCipher(dek, record.Alg)
	if err != nil {
		return nil, err
	}
	plaintext, err := payloadCipher.Open(
		sealed.payloadNonce,
		sealed.payloadCiphertext,
		sealed.payloadTag,
		aad,
	)
	if err != nil {
		return nil, cryptoDomain.ErrAuthenticationFailed
	}
	defer cryptoDomain.Zero(plaintext)

	payload, err := parsePayload(plaintext)
	if err != nil {
		return nil, err
	}

	return &cryptoDomain.DecryptedRecord{
		ID:      record.ID,
		PartyID: record.PartyID,
		Payload: payload,
	}, nil
}

// Rewrap re-encrypts the record's DEK under the registry's latest master key version.
//
// The payload fields, id, party id, creation time and algorithm are carried over unchanged;
// only dekWrapNonce, wrappedDek, dekWrapTag and mkVersion are replaced. A record already on
// the latest version is returned as an unchanged copy. The input record is never modified.
//
// Once every record has been rewrapped, older master key versions can be retired.
func (e *EnvelopeService) Rewrap(
	registry *cryptoDomain.MasterKeyRegistry,
	record *cryptoDomain.SecureRecord,
) (*cryptoDomain.SecureRecord, error) {
	if err := checkRegistry(registry); err != nil {
		return nil, err
	}

	sealed, err := decodeRecord(record)
	if err != nil {
		return nil, err
	}

	rewrapped := *record
	latest := registry.LatestVersion()
	if record.MkVersion == latest {
		return &rewrapped, nil
	}

	oldKey, err := registry.Get(record.MkVersion)
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(oldKey)

	newKey, err := registry.Get(latest)
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(newKey)

	aad := []byte(record.PartyID)

	dek, err := e.unwrapDEK(record.Alg, sealed, oldKey, aad)
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(dek)

	rewrapped.MkVersion = latest
	if err := e.wrapDEK(&rewrapped, dek, newKey, aad); err != nil {
		return nil, err
	}

	return &rewrapped, nil
}

// wrapDEK seals dek under masterKey with record.Alg and stores the result on record.
func (e *EnvelopeService) wrapDEK(
	record *cryptoDomain.SecureRecord,
	dek, masterKey, aad []byte,
) error {
	wrapCipher, err := e.aeadManager.CreateCipher(masterKey, record.Alg)
	if err != nil {
		return err
	}
	nonce, wrapped, tag, err := wrapCipher.Seal(dek, aad)
	if err != nil {
		return err
	}
	record.DekWrapNonce = cryptoDomain.EncodeHex(nonce)
	record.WrappedDek = cryptoDomain.EncodeHex(wrapped)
	record.DekWrapTag = cryptoDomain.EncodeHex(tag)
	return nil
}

// unwrapDEK opens the wrapped DEK. The caller must Zero the returned key.
func (e *EnvelopeService) unwrapDEK(
	alg cryptoDomain.Algorithm,
	sealed *sealedRecord,
	masterKey, aad []byte,
) ([]byte, error) {
	wrapCipher, err := e.aeadManager.CreateCipher(masterKey, alg)
	if err != nil {
		return nil, err
	}
	dek, err := wrapCipher.Open(sealed.dekWrapNonce, sealed.wrappedDek, sealed.dekWrapTag, aad)
	if err != nil {
		return nil, cryptoDomain.ErrAuthenticationFailed
	}
	return dek, nil
}

// decodeRecord checks the algorithm and party id, then decodes every hex field with its
// length contract.
func decodeRecord(record *cryptoDomain.SecureRecord) (*sealedRecord, error) {
	if record == nil {
		return nil, fmt.Errorf("%w: record is required", cryptoDomain.ErrMalformedEncoding)
	}
	if !record.Alg.IsSupported() {
		return nil, cryptoDomain.ErrUnsupportedAlgorithm
	}
	if err := checkPartyID(record.PartyID); err != nil {
		return nil, err
	}

	sealed := &sealedRecord{}
	fields := []struct {
		name   string
		text   string
		length int
		dst    *[]byte
	}{
		{"payloadNonce", record.PayloadNonce, cryptoDomain.NonceSize, &sealed.payloadNonce},
		{"payloadCiphertext", record.PayloadCiphertext, 0, &sealed.payloadCiphertext},
		{"payloadTag", record.PayloadTag, cryptoDomain.TagSize, &sealed.payloadTag},
		{"dekWrapNonce", record.DekWrapNonce, cryptoDomain.NonceSize, &sealed.dekWrapNonce},
		{"wrappedDek", record.WrappedDek, cryptoDomain.KeySize, &sealed.wrappedDek},
		{"dekWrapTag", record.DekWrapTag, cryptoDomain.TagSize, &sealed.dekWrapTag},
	}

	for _, field := range fields {
		b, err := cryptoDomain.DecodeHex(field.name, field.text, field.length)
		if err != nil {
			return nil, err
		}
		*field.dst = b
	}

	return sealed, nil
}

// parsePayload decodes exactly one JSON value. Numbers are kept as json.Number so integer
// payloads survive without float rounding.
func parsePayload(plaintext []byte) (any, error) {
	decoder := json.NewDecoder(bytes.NewReader(plaintext))
	decoder.UseNumber()

	var payload any
	if err := decoder.Decode(&payload); err != nil {
		return nil, cryptoDomain.ErrCorruptPayload
	}
	if _, err := decoder.Token(); err != io.EOF {
		return nil, cryptoDomain.ErrCorruptPayload
	}
	return payload, nil
}
