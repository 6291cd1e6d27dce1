package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/desertthunder/newspet/internal/models"
)

var errInjected = errors.New("injected failure")

func newMockRepository(t *testing.T) (*ClassifierRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return NewClassifierRepository(db), mock
}

func assertStoreError(t *testing.T, err error, op string) {
	t.Helper()

	var storeErr *models.StoreError
	if !errors.As(err, &storeErr) {
		t.Fatalf("expected StoreError, got %v", err)
	}
	if storeErr.Op != op {
		t.Errorf("expected op %q, got %q", op, storeErr.Op)
	}
}

func TestClassifierRepositoryErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("BeginExclusiveSession", func(t *testing.T) {
		t.Run("BeginFails", func(t *testing.T) {
			repo, mock := newMockRepository(t)
			mock.ExpectBegin().WillReturnError(errInjected)

			_, s, err := repo.BeginExclusiveSession(ctx, 1)
			assertStoreError(t, err, "begin")
			if s != nil {
				t.Error("no session should be returned on failure")
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unmet expectations: %v", err)
			}
		})

		t.Run("SelectFailsAndRollsBack", func(t *testing.T) {
			repo, mock := newMockRepository(t)
			mock.ExpectBegin()
			mock.ExpectQuery("SELECT payload FROM classifiers").WithArgs(1).WillReturnError(errInjected)
			mock.ExpectRollback()

			_, _, err := repo.BeginExclusiveSession(ctx, 1)
			assertStoreError(t, err, "select")
			if !errors.Is(err, errInjected) {
				t.Errorf("expected injected cause, got %v", err)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unmet expectations: %v", err)
			}
		})

		t.Run("InsertFailsAndRollsBack", func(t *testing.T) {
			repo, mock := newMockRepository(t)
			mock.ExpectBegin()
			mock.ExpectQuery("SELECT payload FROM classifiers").WithArgs(1).WillReturnRows(sqlmock.NewRows([]string{"payload"}))
			mock.ExpectExec("INSERT INTO classifiers").WithArgs(1).WillReturnError(errInjected)
			mock.ExpectRollback()

			_, _, err := repo.BeginExclusiveSession(ctx, 1)
			assertStoreError(t, err, "insert")
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unmet expectations: %v", err)
			}
		})
	})

	t.Run("CommitSession", func(t *testing.T) {
		t.Run("UpdateFailsAndRollsBack", func(t *testing.T) {
			repo, mock := newMockRepository(t)
			mock.ExpectBegin()
			mock.ExpectExec("UPDATE classifiers SET payload").WithArgs([]byte("x"), 1).WillReturnError(errInjected)
			mock.ExpectRollback()

			s, err := repo.Begin(ctx, 1)
			if err != nil {
				t.Fatalf("failed to begin: %v", err)
			}

			assertStoreError(t, repo.CommitSession(ctx, s, 1, []byte("x")), "update")
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unmet expectations: %v", err)
			}
		})

		t.Run("CommitFails", func(t *testing.T) {
			repo, mock := newMockRepository(t)
			mock.ExpectBegin()
			mock.ExpectExec("UPDATE classifiers SET payload").WithArgs([]byte("x"), 1).WillReturnResult(sqlmock.NewResult(0, 1))
			mock.ExpectCommit().WillReturnError(errInjected)

			s, err := repo.Begin(ctx, 1)
			if err != nil {
				t.Fatalf("failed to begin: %v", err)
			}

			err = repo.CommitSession(ctx, s, 1, []byte("x"))
			assertStoreError(t, err, "commit")
			if !errors.Is(err, errInjected) {
				t.Errorf("expected injected cause, got %v", err)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unmet expectations: %v", err)
			}
		})
	})

	t.Run("ReadSnapshot", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		mock.ExpectQuery("SELECT payload FROM classifiers").WithArgs(1).WillReturnError(errInjected)

		_, ok, err := repo.ReadSnapshot(ctx, 1)
		assertStoreError(t, err, "select")
		if ok {
			t.Error("failed read must not report a payload")
		}
	})

	t.Run("List", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		mock.ExpectQuery("SELECT id").WillReturnError(errInjected)

		_, err := repo.List(ctx)
		assertStoreError(t, err, "list")
	})

	t.Run("Delete", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		mock.ExpectExec("DELETE FROM classifiers").WithArgs(1).WillReturnError(errInjected)

		assertStoreError(t, repo.Delete(ctx, 1), "delete")
	})
}
