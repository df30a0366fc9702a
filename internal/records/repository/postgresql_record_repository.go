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

// PostgreSQLRecordRepository implements SecureRecord persistence for PostgreSQL databases.
type PostgreSQLRecordRepository struct {
	db *sql.DB
}

// NewPostgreSQLRecordRepository creates a new PostgreSQL record repository instance.
func NewPostgreSQLRecordRepository(db *sql.DB) *PostgreSQLRecordRepository {
	return &PostgreSQLRecordRepository{db: db}
}

// Create inserts a new record. Returns ErrRecordAlreadyExists on a duplicate id.
func (p *PostgreSQLRecordRepository) Create(
	ctx context.Context,
	record *cryptoDomain.SecureRecord,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO secure_records (` + recordColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

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
func (p *PostgreSQLRecordRepository) Get(
	ctx context.Context,
	id string,
) (*cryptoDomain.SecureRecord, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + recordColumns + `
			  FROM secure_records
			  WHERE id = $1`

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
func (p *PostgreSQLRecordRepository) List(
	ctx context.Context,
	filter recordsDomain.ListFilter,
) ([]*cryptoDomain.SecureRecord, error) {
	querier := database.GetTx(ctx, p.db)

	var rows *sql.Rows
	var err error
	if filter.PartyID != "" {
		query := `SELECT ` + recordColumns + `
				  FROM secure_records
				  WHERE party_id = $1
				  ORDER BY created_at DESC, id
				  LIMIT $2 OFFSET $3`
		rows, err = querier.QueryContext(ctx, query, filter.PartyID, filter.Limit, filter.Offset)
	} else {
		query := `SELECT ` + recordColumns + `
				  FROM secure_records
				  ORDER BY created_at DESC, id
				  LIMIT $1 OFFSET $2`
		rows, err = querier.QueryContext(ctx, query, filter.Limit, filter.Offset)
	}
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list records")
	}

	return scanRecords(rows)
}

// ListByMkVersionBelow retrieves up to limit records wrapped under a master key version lower
// than version.
func (p *PostgreSQLRecordRepository) ListByMkVersionBelow(
	ctx context.Context,
	version uint,
	limit int,
) ([]*cryptoDomain.SecureRecord, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + recordColumns + `
			  FROM secure_records
			  WHERE mk_version < $1
			  ORDER BY id
			  LIMIT $2`

	rows, err := querier.QueryContext(ctx, query, version, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list records by master key version")
	}

	return scanRecords(rows)
}

// UpdateWrap replaces the wrapped DEK fields and master key version of a record, provided it
// is still on fromVersion. Returns ErrRecordNotFound when no row matched.
func (p *PostgreSQLRecordRepository) UpdateWrap(
	ctx context.Context,
	record *cryptoDomain.SecureRecord,
	fromVersion uint,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE secure_records
			  SET dek_wrap_nonce = $1, wrapped_dek = $2, dek_wrap_tag = $3, mk_version = $4
			  WHERE id = $5 AND mk_version = $6`

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
func (p *PostgreSQLRecordRepository) Delete(ctx context.Context, id string) error {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM secure_records WHERE id = $1`, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete record")
	}

	return requireAffected(result)
}

func requireAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to read affected rows")
	}
	if affected == 0 {
		return recordsDomain.ErrRecordNotFound
	}
	return nil
}
