package worker

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"pfdash/internal/amqp"
	"pfdash/internal/core"
	"pfdash/internal/sheets"
	"pfdash/internal/sheets/memory"
	"pfdash/internal/storage"
)

func newTestRepo(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func storeSnapshot(t *testing.T, repo *storage.SQLiteRepository, monthLabel string) int64 {
	t.Helper()
	snap := core.Snapshot{
		MonthLabel: monthLabel,
		Tables: core.Tables{
			Income: []core.IncomeRow{{Source: "Salary", MonthlyAmount: 4000}},
			Fixed:  []core.ExpenseRow{{Expense: "Rent", MonthlyAmount: 1200}},
			Assets: []core.BalanceRow{{Item: "Cash", Value: 10000}},
			Debts:  []core.DebtRow{{Debt: "Card", Balance: 1500, APRPercent: 20, MonthlyPayment: 100}},
		},
	}
	document, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("marshal snapshot: %v", err)
	}
	id, err := repo.CreateSnapshot(context.Background(), monthLabel, "sig-"+monthLabel, document)
	if err != nil {
		t.Fatalf("CreateSnapshot: %v", err)
	}
	return id
}

func TestHandleSyncMessage(t *testing.T) {
	repo := newTestRepo(t)
	sink := memory.New()
	w := NewSyncWorker(repo, sink, 10, 2)

	id := storeSnapshot(t, repo, "2026-03")

	msg := amqp.NewSnapshotSyncMessage(id, "sig-2026-03")
	if err := w.HandleSyncMessage(context.Background(), msg); err != nil {
		t.Fatalf("HandleSyncMessage: %v", err)
	}

	rows := sink.Rows()
	if len(rows) != 1 {
		t.Fatalf("expected 1 history row, got %d", len(rows))
	}
	row := rows[0]
	if row.MonthLabel != "2026-03" {
		t.Errorf("MonthLabel = %q, want 2026-03", row.MonthLabel)
	}
	if row.NetIncome != 4000 {
		t.Errorf("NetIncome = %v, want 4000", row.NetIncome)
	}
	if row.NetWorth != 10000 {
		t.Errorf("NetWorth = %v, want 10000", row.NetWorth)
	}
	if row.DebtBalance != 1500 {
		t.Errorf("DebtBalance = %v, want 1500", row.DebtBalance)
	}

	stored, err := repo.GetSnapshot(context.Background(), id)
	if err != nil {
		t.Fatalf("GetSnapshot: %v", err)
	}
	if !stored.Synced {
		t.Error("snapshot should be marked synced")
	}
}

func TestHandleSyncMessageMissingSnapshot(t *testing.T) {
	repo := newTestRepo(t)
	w := NewSyncWorker(repo, memory.New(), 10, 2)

	msg := amqp.NewSnapshotSyncMessage(999, "missing")
	err := w.HandleSyncMessage(context.Background(), msg)
	if !errors.Is(err, storage.ErrSnapshotNotFound) {
		t.Fatalf("expected ErrSnapshotNotFound, got %v", err)
	}
}

func TestProcessPendingSnapshots(t *testing.T) {
	repo := newTestRepo(t)
	sink := memory.New()
	w := NewSyncWorker(repo, sink, 10, 2)

	ids := []int64{
		storeSnapshot(t, repo, "2026-01"),
		storeSnapshot(t, repo, "2026-02"),
		storeSnapshot(t, repo, "2026-03"),
	}

	if err := w.ProcessPendingSnapshots(context.Background()); err != nil {
		t.Fatalf("ProcessPendingSnapshots: %v", err)
	}

	if got := len(sink.Rows()); got != len(ids) {
		t.Fatalf("expected %d history rows, got %d", len(ids), got)
	}
	for _, id := range ids {
		stored, err := repo.GetSnapshot(context.Background(), id)
		if err != nil {
			t.Fatalf("GetSnapshot %d: %v", id, err)
		}
		if !stored.Synced {
			t.Errorf("snapshot %d should be marked synced", id)
		}
	}

	// Second pass finds nothing pending and appends nothing new.
	if err := w.ProcessPendingSnapshots(context.Background()); err != nil {
		t.Fatalf("second ProcessPendingSnapshots: %v", err)
	}
	if got := len(sink.Rows()); got != len(ids) {
		t.Fatalf("expected still %d history rows, got %d", len(ids), got)
	}
}

type failingWriter struct{}

func (failingWriter) AppendHistoryRow(context.Context, sheets.HistoryRow) (string, error) {
	return "", errors.New("sheet unavailable")
}

func TestProcessPendingKeepsFailedSnapshotsPending(t *testing.T) {
	repo := newTestRepo(t)
	w := NewSyncWorker(repo, failingWriter{}, 10, 1)

	id := storeSnapshot(t, repo, "2026-04")

	if err := w.ProcessPendingSnapshots(context.Background()); err != nil {
		t.Fatalf("ProcessPendingSnapshots: %v", err)
	}

	stored, err := repo.GetSnapshot(context.Background(), id)
	if err != nil {
		t.Fatalf("GetSnapshot: %v", err)
	}
	if stored.Synced {
		t.Error("snapshot should not be marked synced after a failed append")
	}
	if !stored.SyncError {
		t.Error("snapshot should carry the sync error flag")
	}

	pending, err := repo.GetPendingSync(context.Background(), 10)
	if err != nil {
		t.Fatalf("GetPendingSync: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("snapshot should remain pending, got %d pending", len(pending))
	}
}
