package repository

import (
	"context"
	"database/sql"
	"errors"

	cryptoDomain "github.com/allisson/sealedrecords/internal/crypto/domain"
	"github.com/allisson/sealedrecords/internal/database"
	apperrors "github.com/allisson/sealedrecords/internal/errors"
	recordsDomain "github.com/allisson/sealedrecords/internal/records/domain"
)

// MySQLRecordRepository implements SecureRecord persistence for MySQL databases.
//
// The DSN must set parseTime=true so created_at scans into time.Time.
type MySQLRecordRepository struct {
	db *sql.DB
}

// NewMySQLRecordRepository creates a new MySQL record repository instance.
func NewMySQLRecordRepository(db *sql.DB) *MySQLRecordRepository {
	return &MySQLRecordRepository{db: db}
}

// Create inserts a new record. Returns ErrRecordAlreadyExists on a duplicate id.
func (m *MySQLRecordRepository) Create(ctx context.Context, record *cryptoDomain.SecureRecord) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO secure_records (` + recordColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(ctx, query, recordArgs(record)...)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return recordsDomain.ErrRecordAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create record")
	}
	return nil
}

// Get retrieves a record by id.
func (m *MySQLRecordRepository) Get(ctx context.Context, id string) (*cryptoDomain.SecureRecord, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + recordColumns + ` FROM secure_records WHERE id = ?`

	record, err := scanRecord(querier.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, recordsDomain.ErrRecordNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get record")
	}
	return record, nil
}

// List retrieves records newest first, optionally restricted to one party.
func (m *MySQLRecordRepository) List(
	ctx context.Context,
	filter recordsDomain.ListFilter,
) ([]*cryptoDomain.SecureRecord, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + recordColumns + ` FROM secure_records`
	args := make([]any, 0, 3)
	if filter.PartyID != "" {
		query += ` WHERE party_id = ?`
		args = append(args, filter.PartyID)
	}
	query += ` ORDER BY created_at DESC, id LIMIT ? OFFSET ?`
	args = append(args, filter.Limit, filter.Offset)

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list records")
	}

	return scanRecords(rows)
}

// ListByMkVersionBelow retrieves up to limit records wrapped under a master key version lower
// than version.
func (m *MySQLRecordRepository) ListByMkVersionBelow(
	ctx context.Context,
	version uint,
	limit int,
) ([]*cryptoDomain.SecureRecord, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + recordColumns + `
			  FROM secure_records
			  WHERE mk_version < ?
			  ORDER BY id
			  LIMIT ?`

	rows, err := querier.QueryContext(ctx, query, version, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list records by master key version")
	}

	return scanRecords(rows)
}

// UpdateWrap replaces the wrapped DEK fields and master key version of a record, provided it
// is still on fromVersion. Returns ErrRecordNotFound when no row matched.
func (m *MySQLRecordRepository) UpdateWrap(
	ctx context.Context,
	record *cryptoDomain.SecureRecord,
	fromVersion uint,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE secure_records
			  SET dek_wrap_nonce = ?, wrapped_dek = ?, dek_wrap_tag = ?, mk_version = ?
			  WHERE id = ? AND mk_version = ?`

	result, err := querier.ExecContext(
		ctx,
		query,
		record.DekWrapNonce,
		record.WrappedDek,
		record.DekWrapTag,
		record.MkVersion,
		record.ID,
		fromVersion,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update record wrap")
	}

	return requireAffected(result)
}

// Delete removes a record permanently.
func (m *MySQLRecordRepository) Delete(ctx context.Context, id string) error {
	querier := database.GetTx(ctx, m.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM secure_records WHERE id = ?`, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete record")
	}

	return requireAffected(result)
}
