package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"pfdash/internal/amqp"
	"pfdash/internal/core"
	"pfdash/internal/storage"
)

// SnapshotService orchestrates snapshot persistence across SQLite and AMQP.
type SnapshotService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
}

func NewSnapshotService(repo *storage.SQLiteRepository, amqpClient *amqp.Client) *SnapshotService {
	return &SnapshotService{
		storage:    repo,
		amqpClient: amqpClient,
	}
}

// SaveResult reports where a saved snapshot ended up.
type SaveResult struct {
	ID        int64  `json:"id"`
	Signature string `json:"signature"`
	Deduped   bool   `json:"deduped"`
}

// Save sanitizes and persists a snapshot, then publishes a sync message.
// A snapshot whose signature already exists is not stored again.
func (s *SnapshotService) Save(ctx context.Context, snap core.Snapshot) (SaveResult, error) {
	snap = core.Sanitize(snap)
	if snap.GeneratedAt.IsZero() {
		snap.GeneratedAt = time.Now().UTC()
	}

	sig, err := Signature(snap)
	if err != nil {
		return SaveResult{}, err
	}

	existing, err := s.storage.FindBySignature(ctx, sig)
	switch {
	case err == nil:
		slog.InfoContext(ctx, "Snapshot already stored",
			"id", existing.ID,
			"signature", sig)
		return SaveResult{ID: existing.ID, Signature: sig, Deduped: true}, nil
	case !errors.Is(err, storage.ErrSnapshotNotFound):
		return SaveResult{}, fmt.Errorf("check snapshot signature: %w", err)
	}

	document, err := json.Marshal(snap)
	if err != nil {
		return SaveResult{}, fmt.Errorf("marshal snapshot: %w", err)
	}

	id, err := s.storage.CreateSnapshot(ctx, snap.MonthLabel, sig, document)
	if err != nil {
		return SaveResult{}, fmt.Errorf("save snapshot: %w", err)
	}

	// Publish async sync message (non-blocking)
	if err := s.publishSyncMessage(ctx, id, sig); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"id", id, "error", err)
		// Don't fail the request - snapshot is saved locally
	}

	return SaveResult{ID: id, Signature: sig}, nil
}

// Get loads a stored snapshot document back into its typed form.
func (s *SnapshotService) Get(ctx context.Context, id int64) (core.Snapshot, error) {
	stored, err := s.storage.GetSnapshot(ctx, id)
	if err != nil {
		return core.Snapshot{}, err
	}
	var snap core.Snapshot
	if err := json.Unmarshal(stored.Document, &snap); err != nil {
		return core.Snapshot{}, fmt.Errorf("unmarshal snapshot %d: %w", id, err)
	}
	return snap, nil
}

// List returns the newest stored snapshots, up to limit.
func (s *SnapshotService) List(ctx context.Context, limit int) ([]storage.SnapshotSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.storage.ListSnapshots(ctx, limit)
}

// Delete removes a stored snapshot.
func (s *SnapshotService) Delete(ctx context.Context, id int64) error {
	return s.storage.DeleteSnapshot(ctx, id)
}

func (s *SnapshotService) publishSyncMessage(ctx context.Context, id int64, signature string) error {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping sync message")
		return nil
	}
	return s.amqpClient.PublishSnapshotSync(ctx, id, signature)
}

// Close closes both storage and AMQP connections.
func (s *SnapshotService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close snapshot service: %v", errs)
	}

	return nil
}
