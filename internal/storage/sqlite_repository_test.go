package storage

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func setupRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "leap-test.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := MigrateUp(db); err != nil {
		t.Fatalf("migrate up: %v", err)
	}

	repo, err := NewSQLiteRepository(db)
	if err != nil {
		t.Fatalf("new repo: %v", err)
	}
	return repo
}

func parseRFC3339(t *testing.T, value string) time.Time {
	t.Helper()
	out, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("parse time: %v", err)
	}
	return out
}

func TestBlobSaveLoadOverwriteDelete(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	if _, err := repo.Load(ctx, StateKey); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on empty store, got %v", err)
	}

	if err := repo.Save(ctx, StateKey, []byte("v1")); err != nil {
		t.Fatalf("save v1: %v", err)
	}
	if err := repo.Save(ctx, StateKey, []byte("v2")); err != nil {
		t.Fatalf("save v2: %v", err)
	}
	got, err := repo.Load(ctx, StateKey)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(got) != "v2" {
		t.Fatalf("expected overwrite, got %q", got)
	}

	if err := repo.Delete(ctx, StateKey); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.Delete(ctx, StateKey); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestOutboxDueOrderingAndReschedule(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	base := parseRFC3339(t, "2026-02-09T12:00:00Z")

	records := []OutboxRecord{
		{ID: "b", Kind: "update_stats", Payload: []byte(`{"n":2}`), NextAttemptAt: base, CreatedAt: base.Add(time.Second)},
		{ID: "a", Kind: "create_user", Payload: []byte(`{"n":1}`), NextAttemptAt: base, CreatedAt: base},
		{ID: "c", Kind: "record_move", Payload: []byte(`{"n":3}`), NextAttemptAt: base.Add(time.Hour), CreatedAt: base.Add(2 * time.Second)},
	}
	for _, rec := range records {
		if err := repo.EnqueueIntent(ctx, rec); err != nil {
			t.Fatalf("enqueue %s: %v", rec.ID, err)
		}
	}

	due, err := repo.ListDueIntents(ctx, base.Add(500*time.Millisecond), 0)
	if err != nil {
		t.Fatalf("list due: %v", err)
	}
	if len(due) != 2 || due[0].ID != "a" || due[1].ID != "b" {
		t.Fatalf("unexpected due list: %#v", due)
	}
	if string(due[0].Payload) != `{"n":1}` || due[0].Kind != "create_user" {
		t.Fatalf("unexpected record contents: %#v", due[0])
	}

	if err := repo.RescheduleIntent(ctx, "a", 1, base.Add(2*time.Hour), "boom"); err != nil {
		t.Fatalf("reschedule: %v", err)
	}
	due, err = repo.ListDueIntents(ctx, base.Add(90*time.Minute), 10)
	if err != nil {
		t.Fatalf("list due after reschedule: %v", err)
	}
	if len(due) != 2 || due[0].ID != "b" || due[1].ID != "c" {
		t.Fatalf("unexpected due list after reschedule: %#v", due)
	}

	limited, err := repo.ListDueIntents(ctx, base.Add(3*time.Hour), 1)
	if err != nil {
		t.Fatalf("list limited: %v", err)
	}
	if len(limited) != 1 || limited[0].ID != "a" || limited[0].Attempts != 1 || limited[0].LastError != "boom" {
		t.Fatalf("unexpected limited list: %#v", limited)
	}

	if err := repo.DeleteIntent(ctx, "a"); err != nil {
		t.Fatalf("delete intent: %v", err)
	}
	if err := repo.RescheduleIntent(ctx, "a", 2, base, ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound rescheduling deleted intent, got %v", err)
	}
	n, err := repo.CountIntents(ctx)
	if err != nil || n != 2 {
		t.Fatalf("count = %d, %v; want 2", n, err)
	}
	if err := repo.ClearIntents(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if n, _ := repo.CountIntents(ctx); n != 0 {
		t.Fatalf("expected empty outbox, got %d", n)
	}
}

func TestFileBlobStore(t *testing.T) {
	store, err := NewFileBlobStore(filepath.Join(t.TempDir(), "state"))
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	ctx := context.Background()
	if _, err := store.Load(ctx, StateKey); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := store.Save(ctx, StateKey, []byte(`{"ok":true}`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := store.Load(ctx, StateKey)
	if err != nil || string(got) != `{"ok":true}` {
		t.Fatalf("load = %q, %v", got, err)
	}
	if err := store.Delete(ctx, StateKey); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Load(ctx, StateKey); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}
