package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"pfdash/internal/amqp"
	"pfdash/internal/calc"
	"pfdash/internal/core"
	"pfdash/internal/sheets"
	"pfdash/internal/storage"
)

// SyncWorker pushes stored snapshot summaries to the spreadsheet history.
type SyncWorker struct {
	storage     *storage.SQLiteRepository
	sheets      sheets.HistoryWriter
	batchSize   int
	concurrency int
}

func NewSyncWorker(repo *storage.SQLiteRepository, writer sheets.HistoryWriter, batchSize, concurrency int) *SyncWorker {
	if batchSize <= 0 {
		batchSize = 10
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	return &SyncWorker{
		storage:     repo,
		sheets:      writer,
		batchSize:   batchSize,
		concurrency: concurrency,
	}
}

// HandleSyncMessage processes a single snapshot sync message from AMQP.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.SnapshotSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"id", msg.ID,
		"signature", msg.Signature)

	stored, err := w.storage.GetSnapshot(ctx, msg.ID)
	if err != nil {
		return fmt.Errorf("get snapshot from storage: %w", err)
	}

	if err := w.syncSnapshotToSheets(ctx, stored); err != nil {
		if markErr := w.storage.MarkSyncError(ctx, stored.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", stored.ID, "error", markErr)
		}
		return fmt.Errorf("sync snapshot to sheets: %w", err)
	}

	if err := w.storage.MarkSynced(ctx, stored.ID); err != nil {
		return fmt.Errorf("mark snapshot synced: %w", err)
	}

	return nil
}

// ProcessPendingSnapshots syncs snapshots that never made it to the sheet.
// This is a backup mechanism in case AMQP messages are lost.
func (w *SyncWorker) ProcessPendingSnapshots(ctx context.Context) error {
	pending, err := w.storage.GetPendingSync(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending snapshots: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending snapshots", "count", len(pending))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(w.concurrency)

	for _, stored := range pending {
		g.Go(func() error {
			if err := w.syncSnapshotToSheets(ctx, stored); err != nil {
				slog.ErrorContext(ctx, "Failed to sync pending snapshot",
					"id", stored.ID,
					"error", err)
				if markErr := w.storage.MarkSyncError(ctx, stored.ID); markErr != nil {
					slog.ErrorContext(ctx, "Failed to mark sync error", "id", stored.ID, "error", markErr)
				}
				// Keep going; the snapshot stays pending for the next pass.
				return nil
			}
			if err := w.storage.MarkSynced(ctx, stored.ID); err != nil {
				slog.ErrorContext(ctx, "Failed to mark snapshot synced", "id", stored.ID, "error", err)
			}
			return nil
		})
	}

	return g.Wait()
}

// StartupSyncCheck runs a pending-sync pass on worker startup.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) {
	slog.InfoContext(ctx, "Running startup sync check")
	if err := w.ProcessPendingSnapshots(ctx); err != nil {
		slog.ErrorContext(ctx, "Startup sync check failed", "error", err)
		return
	}
	slog.InfoContext(ctx, "Startup sync check completed")
}

func (w *SyncWorker) syncSnapshotToSheets(ctx context.Context, stored storage.StoredSnapshot) error {
	var snap core.Snapshot
	if err := json.Unmarshal(stored.Document, &snap); err != nil {
		return fmt.Errorf("unmarshal snapshot document: %w", err)
	}

	snap = core.Sanitize(snap)
	metrics := calc.Compute(snap, time.Now())

	row := sheets.HistoryRow{
		MonthLabel:     stored.MonthLabel,
		GeneratedAt:    snap.GeneratedAt.UTC().Format(time.RFC3339),
		Signature:      stored.Signature,
		NetIncome:      metrics.NetIncome,
		ExpensesTotal:  metrics.ExpensesTotal,
		SavingTotal:    metrics.SavingTotal,
		InvestingTotal: metrics.InvestingTotal,
		Remaining:      metrics.Remaining,
		NetWorth:       metrics.NetWorth,
		DebtBalance:    metrics.TotalDebtBalance,
	}

	ref, err := w.sheets.AppendHistoryRow(ctx, row)
	if err != nil {
		return fmt.Errorf("append history row: %w", err)
	}

	slog.InfoContext(ctx, "Synced snapshot to sheets",
		"id", stored.ID,
		"signature", stored.Signature,
		"row_ref", ref)

	return nil
}
