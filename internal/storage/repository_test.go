package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestCreateAndGetSnapshot(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	doc := []byte(`{"month_label":"March 2026"}`)
	id, err := repo.CreateSnapshot(ctx, "March 2026", "sig-1", doc)
	if err != nil {
		t.Fatalf("CreateSnapshot: %v", err)
	}
	if id == 0 {
		t.Error("expected a non-zero id")
	}

	got, err := repo.GetSnapshot(ctx, id)
	if err != nil {
		t.Fatalf("GetSnapshot: %v", err)
	}
	if got.MonthLabel != "March 2026" || got.Signature != "sig-1" {
		t.Errorf("unexpected row: %+v", got)
	}
	if string(got.Document) != string(doc) {
		t.Errorf("document = %s, want %s", got.Document, doc)
	}
	if got.Synced {
		t.Error("new snapshot should start unsynced")
	}
}

func TestGetSnapshot_NotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetSnapshot(context.Background(), 9999)
	if !errors.Is(err, ErrSnapshotNotFound) {
		t.Errorf("err = %v, want ErrSnapshotNotFound", err)
	}
}

func TestFindBySignature(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.CreateSnapshot(ctx, "A", "dup", []byte(`{}`)); err != nil {
		t.Fatal(err)
	}
	id2, err := repo.CreateSnapshot(ctx, "B", "dup", []byte(`{}`))
	if err != nil {
		t.Fatal(err)
	}

	got, err := repo.FindBySignature(ctx, "dup")
	if err != nil {
		t.Fatalf("FindBySignature: %v", err)
	}
	if got.ID != id2 {
		t.Errorf("id = %d, want most recent %d", got.ID, id2)
	}

	if _, err := repo.FindBySignature(ctx, "nope"); !errors.Is(err, ErrSnapshotNotFound) {
		t.Errorf("err = %v, want ErrSnapshotNotFound", err)
	}
}

func TestListSnapshots_NewestFirst(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, label := range []string{"Jan", "Feb", "Mar"} {
		if _, err := repo.CreateSnapshot(ctx, label, "sig-"+label, []byte(`{}`)); err != nil {
			t.Fatal(err)
		}
	}

	got, err := repo.ListSnapshots(ctx, 2)
	if err != nil {
		t.Fatalf("ListSnapshots: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].MonthLabel != "Mar" || got[1].MonthLabel != "Feb" {
		t.Errorf("order = [%s, %s], want newest first", got[0].MonthLabel, got[1].MonthLabel)
	}
}

func TestDeleteSnapshot(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.CreateSnapshot(ctx, "X", "sig", []byte(`{}`))
	if err != nil {
		t.Fatal(err)
	}

	if err := repo.DeleteSnapshot(ctx, id); err != nil {
		t.Fatalf("DeleteSnapshot: %v", err)
	}
	if _, err := repo.GetSnapshot(ctx, id); !errors.Is(err, ErrSnapshotNotFound) {
		t.Error("snapshot should be gone")
	}
	if err := repo.DeleteSnapshot(ctx, id); !errors.Is(err, ErrSnapshotNotFound) {
		t.Errorf("second delete err = %v, want ErrSnapshotNotFound", err)
	}
}

func TestPendingSyncLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first, err := repo.CreateSnapshot(ctx, "A", "s1", []byte(`{}`))
	if err != nil {
		t.Fatal(err)
	}
	second, err := repo.CreateSnapshot(ctx, "B", "s2", []byte(`{}`))
	if err != nil {
		t.Fatal(err)
	}

	pending, err := repo.GetPendingSync(ctx, 10)
	if err != nil {
		t.Fatalf("GetPendingSync: %v", err)
	}
	if len(pending) != 2 || pending[0].ID != first {
		t.Fatalf("pending = %+v, want both rows oldest first", pending)
	}

	if err := repo.MarkSynced(ctx, first); err != nil {
		t.Fatalf("MarkSynced: %v", err)
	}
	if err := repo.MarkSyncError(ctx, second); err != nil {
		t.Fatalf("MarkSyncError: %v", err)
	}

	pending, err = repo.GetPendingSync(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	// Errored rows stay pending for retry; synced ones drop out.
	if len(pending) != 1 || pending[0].ID != second || !pending[0].SyncError {
		t.Errorf("pending after marks = %+v, want only the errored row", pending)
	}
}
