// Package worker keeps the derived copies of the savings history (CSV
// export file and spreadsheet mirror) up to date.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"savings/internal/core"
	"savings/internal/events"
	"savings/internal/export"
	"savings/internal/records"
)

// Mirror receives the full history after every change.
type Mirror interface {
	Sync(ctx context.Context, recs []core.SavingsRecord) error
}

// SyncWorker refreshes the export file and the mirror from the record store.
type SyncWorker struct {
	store      records.RecordLister
	exportPath string
	mirror     Mirror
}

// NewSyncWorker returns a worker. An empty exportPath or a nil mirror turns
// that target off.
func NewSyncWorker(store records.RecordLister, exportPath string, mirror Mirror) *SyncWorker {
	return &SyncWorker{store: store, exportPath: exportPath, mirror: mirror}
}

// HandleRecordEvent processes a single record event from the broker.
func (w *SyncWorker) HandleRecordEvent(ctx context.Context, e events.RecordEvent) error {
	slog.InfoContext(ctx, "Processing record event", "type", e.Type, "id", e.ID)
	return w.Refresh(ctx)
}

// Refresh rewrites every configured target from the current history.
func (w *SyncWorker) Refresh(ctx context.Context) error {
	recs, err := w.store.List(ctx)
	if err != nil {
		return fmt.Errorf("list records: %w", err)
	}

	var errs []error
	if w.exportPath != "" {
		if err := export.WriteFile(w.exportPath, recs); err != nil {
			errs = append(errs, fmt.Errorf("write export: %w", err))
		} else {
			slog.InfoContext(ctx, "CSV export refreshed", "path", w.exportPath, "records", len(recs))
		}
	}
	if w.mirror != nil {
		if err := w.mirror.Sync(ctx, recs); err != nil {
			errs = append(errs, fmt.Errorf("sync mirror: %w", err))
		}
	}
	return errors.Join(errs...)
}
