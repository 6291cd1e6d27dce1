package shared

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestDSN(t *testing.T) {
	tc := []struct {
		name     string
		cfg      DatabaseConfig
		contains []string
		excludes []string
	}{
		{
			name:     "file with WAL and busy timeout",
			cfg:      DatabaseConfig{Path: "/tmp/x.db", JournalMode: "wal", BusyTimeoutMS: 250},
			contains: []string{"file:/tmp/x.db?", "_journal_mode=WAL", "_busy_timeout=250", "_txlock=immediate"},
		},
		{
			name:     "memory skips journal mode",
			cfg:      DatabaseConfig{Path: ":memory:", JournalMode: "WAL"},
			contains: []string{"file::memory:?", "_txlock=immediate"},
			excludes: []string{"_journal_mode"},
		},
		{
			name:     "existing query string",
			cfg:      DatabaseConfig{Path: "file:x.db?mode=rwc"},
			contains: []string{"file:x.db?mode=rwc&_txlock=immediate"},
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got := DSN(tt.cfg)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("DSN() = %v, want it to contain %v", got, want)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(got, unwanted) {
					t.Errorf("DSN() = %v, should not contain %v", got, unwanted)
				}
			}
		})
	}
}

func TestOpenDatabase(t *testing.T) {
	cfg := DatabaseConfig{
		Path:          filepath.Join(t.TempDir(), "test.db"),
		JournalMode:   "WAL",
		BusyTimeoutMS: 1000,
		MaxOpenConns:  4,
		MaxIdleConns:  2,
	}

	db, err := OpenDatabase(cfg)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	var mode string
	if err := db.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("failed to read journal mode: %v", err)
	}
	if strings.ToLower(mode) != "wal" {
		t.Errorf("expected wal journal mode, got %s", mode)
	}

	if stats := db.Stats(); stats.MaxOpenConnections != 4 {
		t.Errorf("expected max open connections 4, got %d", stats.MaxOpenConnections)
	}
}

func TestGenerateID(t *testing.T) {
	a, b := GenerateID(), GenerateID()
	if a == b {
		t.Error("expected distinct ids")
	}
	if len(a) != 36 {
		t.Errorf("expected uuid string, got %q", a)
	}
}
