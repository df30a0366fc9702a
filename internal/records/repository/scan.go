// Package repository implements SecureRecord persistence for PostgreSQL and MySQL.
//
// Records are stored field by field exactly as produced by the envelope engine: every binary
// field stays lowercase hex text, so a row can be handed back to Decrypt unchanged.
package repository

import (
	"database/sql"

	cryptoDomain "github.com/allisson/sealedrecords/internal/crypto/domain"
	apperrors "github.com/allisson/sealedrecords/internal/errors"
)

const recordColumns = `id, party_id, created_at, payload_nonce, payload_ciphertext, payload_tag,
			  dek_wrap_nonce, wrapped_dek, dek_wrap_tag, alg, mk_version`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*cryptoDomain.SecureRecord, error) {
	var record cryptoDomain.SecureRecord
	var alg string
	err := row.Scan(
		&record.ID,
		&record.PartyID,
		&record.CreatedAt,
		&record.PayloadNonce,
		&record.PayloadCiphertext,
		&record.PayloadTag,
		&record.DekWrapNonce,
		&record.WrappedDek,
		&record.DekWrapTag,
		&alg,
		&record.MkVersion,
	)
	if err != nil {
		return nil, err
	}
	record.Alg = cryptoDomain.Algorithm(alg)
	record.CreatedAt = record.CreatedAt.UTC()
	return &record, nil
}

func scanRecords(rows *sql.Rows) ([]*cryptoDomain.SecureRecord, error) {
	defer func() {
		_ = rows.Close()
	}()

	records := make([]*cryptoDomain.SecureRecord, 0)
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan record")
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate records")
	}
	return records, nil
}

func recordArgs(record *cryptoDomain.SecureRecord) []any {
	return []any{
		record.ID,
		record.PartyID,
		record.CreatedAt,
		record.PayloadNonce,
		record.PayloadCiphertext,
		record.PayloadTag,
		record.DekWrapNonce,
		record.WrappedDek,
		record.DekWrapTag,
		string(record.Alg),
		record.MkVersion,
	}
}
