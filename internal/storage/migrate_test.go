package storage

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"
)

func TestMigrateRoundTripCompatibility(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "migrate-roundtrip.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if err := MigrateUp(db); err != nil {
		t.Fatalf("first migrate up failed: %v", err)
	}

	if err := MigrateDown(db); err != nil {
		t.Fatalf("migrate down failed: %v", err)
	}

	if err := MigrateUp(db); err != nil {
		t.Fatalf("second migrate up failed: %v", err)
	}

	repo, err := NewSQLiteRepository(db)
	if err != nil {
		t.Fatalf("new repo: %v", err)
	}

	if err := repo.Save(t.Context(), StateKey, []byte(`{"schema_version":1}`)); err != nil {
		t.Fatalf("save after roundtrip failed: %v", err)
	}
	got, err := repo.Load(t.Context(), StateKey)
	if err != nil {
		t.Fatalf("load after roundtrip failed: %v", err)
	}
	if string(got) != `{"schema_version":1}` {
		t.Fatalf("unexpected blob after roundtrip: %q", got)
	}

	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	if err := repo.EnqueueIntent(t.Context(), OutboxRecord{
		ID: "intent-rt-1", Kind: "record_move", Payload: []byte(`{}`), NextAttemptAt: now, CreatedAt: now,
	}); err != nil {
		t.Fatalf("enqueue after roundtrip failed: %v", err)
	}
}

func TestMigrateUpIsIdempotent(t *testing.T) {
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "idem.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()
	for i := 0; i < 2; i++ {
		if err := MigrateUp(db); err != nil {
			t.Fatalf("migrate up #%d: %v", i+1, err)
		}
	}
}
