package shared

import (
	"context"
	"errors"
	"testing"
)

func TestMigrationRunner(t *testing.T) {
	t.Run("loadMigrations", func(t *testing.T) {
		migrations, err := loadMigrations()
		if err != nil {
			t.Fatalf("failed to load migrations: %v", err)
		}

		if len(migrations) == 0 {
			t.Fatal("expected at least one migration")
		}

		for i := 1; i < len(migrations); i++ {
			if migrations[i].Version <= migrations[i-1].Version {
				t.Errorf("migrations not sorted: version %d comes after %d", migrations[i].Version, migrations[i-1].Version)
			}
		}

		for _, m := range migrations {
			if m.Up == "" {
				t.Errorf("migration version %d missing up SQL", m.Version)
			}
			if m.Down == "" {
				t.Errorf("migration version %d missing down SQL", m.Version)
			}
		}

		if migrations[0].Name != "create_classifiers" {
			t.Errorf("expected first migration name create_classifiers, got %q", migrations[0].Name)
		}
	})

	t.Run("RunMigrations And Rollback", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}

		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
			t.Fatalf("failed to query schema_migrations: %v", err)
		}
		if count == 0 {
			t.Error("expected at least one migration to be applied")
		}

		if _, err := db.Exec("SELECT id, payload FROM classifiers LIMIT 1"); err != nil {
			t.Errorf("classifiers table should exist after migrations: %v", err)
		}

		if err := RollbackMigration(db); err != nil {
			t.Fatalf("failed to rollback migration: %v", err)
		}

		var newCount int
		if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&newCount); err != nil {
			t.Fatalf("failed to query schema_migrations after rollback: %v", err)
		}
		if newCount >= count {
			t.Errorf("expected migration count to decrease after rollback, got %d (was %d)", newCount, count)
		}

		if _, err := db.Exec("SELECT id FROM classifiers LIMIT 1"); err == nil {
			t.Error("classifiers table should be gone after rollback")
		}

		if err := RollbackMigration(db); !errors.Is(err, ErrNoMigrations) {
			t.Errorf("expected ErrNoMigrations, got %v", err)
		}
	})

	t.Run("Idempotent Migrations", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		ctx := context.Background()
		if err := RunMigrationsContext(ctx, db, NewDiscardLogger()); err != nil {
			t.Fatalf("failed to run migrations first time: %v", err)
		}

		if err := RunMigrationsContext(ctx, db, nil); err != nil {
			t.Fatalf("failed to run migrations second time: %v", err)
		}

		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
			t.Fatalf("failed to query schema_migrations: %v", err)
		}

		migrations, _ := loadMigrations()
		if count != len(migrations) {
			t.Errorf("expected %d migrations to be applied, got %d", len(migrations), count)
		}
	})
}

func TestSplitStatements(t *testing.T) {
	script := `
-- leading comment
CREATE TABLE a (id INTEGER); -- trailing
;
CREATE TABLE b (id INTEGER);
`
	got := splitStatements(script)
	if len(got) != 2 {
		t.Fatalf("expected 2 statements, got %d: %q", len(got), got)
	}
	if got[0] != "CREATE TABLE a (id INTEGER)" {
		t.Errorf("unexpected first statement %q", got[0])
	}
}
