package repositories

import (
	"context"
	"database/sql"

	"github.com/cockroachdb/errors"
	"github.com/desertthunder/newspet/internal/models"
	"github.com/desertthunder/newspet/internal/shared"
)

// RawRecord is a row as read at the start of an exclusive session.
type RawRecord struct {
	models.ModelRecord
	Existed bool // false when the session inserted the row
}

// ClassifierRepository implements the model record store over the classifiers table.
type ClassifierRepository struct {
	db *sql.DB
}

// NewClassifierRepository creates a new ClassifierRepository with the given database connection
func NewClassifierRepository(db *sql.DB) *ClassifierRepository {
	return &ClassifierRepository{db: db}
}

// BeginExclusiveSession opens a manual-commit transaction and selects the row for id.
//
// A missing row is inserted without a payload inside the same transaction, so
// a later session for the same id finds it. On success the caller must finish
// the returned session; on failure it has already been rolled back.
func (r *ClassifierRepository) BeginExclusiveSession(ctx context.Context, id int64) (*RawRecord, *Session, error) {
	s, err := begin(ctx, r.db, id)
	if err != nil {
		return nil, nil, err
	}

	record, err := r.selectOrInsert(ctx, s, id)
	if err != nil {
		if rbErr := s.Rollback(); rbErr != nil {
			err = errors.WithSecondaryError(err, rbErr)
		}
		return nil, nil, err
	}

	return record, s, nil
}

func (r *ClassifierRepository) selectOrInsert(ctx context.Context, s *Session, id int64) (*RawRecord, error) {
	var payload []byte
	err := s.tx.QueryRowContext(ctx, "SELECT payload FROM classifiers WHERE id = ?", id).Scan(&payload)
	switch {
	case err == nil:
		return &RawRecord{ModelRecord: models.ModelRecord{ID: id, Payload: payload}, Existed: true}, nil
	case !errors.Is(err, sql.ErrNoRows):
		return nil, models.NewStoreError("select", id, err)
	}

	if _, err := s.tx.ExecContext(ctx, "INSERT INTO classifiers (id) VALUES (?)", id); err != nil {
		return nil, models.NewStoreError("insert", id, err)
	}

	return &RawRecord{ModelRecord: models.ModelRecord{ID: id}}, nil
}

// Begin opens a transaction scoped to a single payload update.
func (r *ClassifierRepository) Begin(ctx context.Context, id int64) (*Session, error) {
	return begin(ctx, r.db, id)
}

// CommitSession writes payload for id inside s and commits.
//
// The update and the commit are all-or-nothing: on any failure s is rolled
// back and the previously committed payload remains.
func (r *ClassifierRepository) CommitSession(ctx context.Context, s *Session, id int64, payload []byte) error {
	if err := r.UpdatePayload(ctx, s, id, payload); err != nil {
		if rbErr := s.Rollback(); rbErr != nil {
			err = errors.WithSecondaryError(err, rbErr)
		}
		return err
	}

	if err := s.Commit(); err != nil {
		return err
	}

	return nil
}

// UpdatePayload writes payload for id inside s without committing.
func (r *ClassifierRepository) UpdatePayload(ctx context.Context, s *Session, id int64, payload []byte) error {
	result, err := s.tx.ExecContext(ctx, "UPDATE classifiers SET payload = ? WHERE id = ?", payload, id)
	if err != nil {
		return models.NewStoreError("update", id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return models.NewStoreError("update", id, err)
	}
	if rows == 0 {
		return models.NewStoreError("update", id, shared.ErrNotFound)
	}

	return nil
}

// ReadSnapshot returns the committed payload for id without opening a transaction.
//
// ok is false when the row does not exist or has no payload yet.
func (r *ClassifierRepository) ReadSnapshot(ctx context.Context, id int64) (payload []byte, ok bool, err error) {
	err = r.db.QueryRowContext(ctx, "SELECT payload FROM classifiers WHERE id = ?", id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, models.NewStoreError("select", id, err)
	}
	if payload == nil {
		return nil, false, nil
	}
	return payload, true, nil
}

// List returns a summary of every record ordered by id.
func (r *ClassifierRepository) List(ctx context.Context) ([]models.RecordInfo, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, payload IS NOT NULL, COALESCE(LENGTH(payload), 0)
		FROM classifiers
		ORDER BY id
	`)
	if err != nil {
		return nil, models.NewStoreError("list", 0, err)
	}
	defer rows.Close()

	var records []models.RecordInfo
	for rows.Next() {
		var info models.RecordInfo
		if err := rows.Scan(&info.ID, &info.HasPayload, &info.PayloadSize); err != nil {
			return nil, models.NewStoreError("list", 0, err)
		}
		records = append(records, info)
	}

	if err := rows.Err(); err != nil {
		return nil, models.NewStoreError("list", 0, err)
	}

	return records, nil
}

// Delete removes the record for id.
func (r *ClassifierRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM classifiers WHERE id = ?", id)
	if err != nil {
		return models.NewStoreError("delete", id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return models.NewStoreError("delete", id, err)
	}
	if rows == 0 {
		return models.NewStoreError("delete", id, shared.ErrNotFound)
	}

	return nil
}
