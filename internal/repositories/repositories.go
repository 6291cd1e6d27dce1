// package repositories provides persistence layer implementations for the classifier store.
//
// Repositories own transaction boundaries: callers receive a [Session] and
// finish it through the repository, never through database/sql directly.
package repositories

import (
	"context"
	"database/sql"

	"github.com/cockroachdb/errors"
	"github.com/desertthunder/newspet/internal/models"
)

// Session is an open transaction owned by one store operation.
//
// A Session is finished exactly once; Rollback after Commit is a no-op.
type Session struct {
	tx   *sql.Tx
	id   int64
	done bool
}

// begin opens a transaction for the classifier with the given id.
func begin(ctx context.Context, db *sql.DB, id int64) (*Session, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, models.NewStoreError("begin", id, err)
	}
	return &Session{tx: tx, id: id}, nil
}

// Commit commits the session.
func (s *Session) Commit() error {
	if s.done {
		return models.NewStoreError("commit", s.id, errors.New("session already finished"))
	}
	s.done = true
	if err := s.tx.Commit(); err != nil {
		return models.NewStoreError("commit", s.id, err)
	}
	return nil
}

// Rollback aborts the session unless it has already been finished.
func (s *Session) Rollback() error {
	if s.done {
		return nil
	}
	s.done = true
	if err := s.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return models.NewStoreError("rollback", s.id, err)
	}
	return nil
}
