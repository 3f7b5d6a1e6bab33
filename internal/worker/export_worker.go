// Package worker runs the background export process that keeps CSV and JSON
// snapshots of the ledger on disk.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"pocketpal/internal/amqp"
	"pocketpal/internal/core"
	"pocketpal/internal/export"
	"pocketpal/internal/storage"
)

// EventConsumer delivers ledger change notifications. *amqp.Client satisfies
// it; a nil consumer means the worker exports on the timer only.
type EventConsumer interface {
	ConsumeLedgerEvents(ctx context.Context, handler func(*amqp.LedgerEventMessage) error) error
}

// ExportWorkerConfig holds configuration for the export worker.
type ExportWorkerConfig struct {
	// ExportDir is the directory snapshots are written to.
	ExportDir string

	// Interval is how often to rewrite snapshots when changes are pending
	// (default: 1m).
	Interval time.Duration
}

// DefaultExportWorkerConfig returns sensible defaults.
func DefaultExportWorkerConfig() ExportWorkerConfig {
	return ExportWorkerConfig{
		ExportDir: "exports",
		Interval:  time.Minute,
	}
}

// ExportWorker consumes ledger events and periodically rewrites the CSV and
// JSON snapshots. Events only mark the ledger dirty; the actual export runs
// on the timer so bursts of changes produce one rewrite.
type ExportWorker struct {
	storage *storage.SQLiteRepository
	events  EventConsumer
	config  ExportWorkerConfig

	dirty chan struct{}

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewExportWorker(storage *storage.SQLiteRepository, events EventConsumer, config ExportWorkerConfig) *ExportWorker {
	if config.Interval <= 0 {
		config.Interval = DefaultExportWorkerConfig().Interval
	}
	return &ExportWorker{
		storage: storage,
		events:  events,
		config:  config,
		dirty:   make(chan struct{}, 1),
	}
}

// Start begins the export loop. Returns an error if already running.
func (w *ExportWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("export worker is already running")
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.mu.Unlock()

	if err := os.MkdirAll(w.config.ExportDir, 0o755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}

	if w.events != nil {
		go w.consumeEvents(ctx)
	}
	go w.runLoop(ctx)

	slog.InfoContext(ctx, "Export worker started",
		"export_dir", w.config.ExportDir,
		"interval", w.config.Interval)

	return nil
}

// Stop gracefully stops the worker and waits for completion.
func (w *ExportWorker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	close(w.stopCh)

	select {
	case <-w.doneCh:
		slog.InfoContext(ctx, "Export worker stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Export worker stop timed out")
		return ctx.Err()
	}

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()

	return nil
}

// IsRunning returns whether the worker is currently running.
func (w *ExportWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *ExportWorker) consumeEvents(ctx context.Context) {
	err := w.events.ConsumeLedgerEvents(ctx, func(msg *amqp.LedgerEventMessage) error {
		w.MarkDirty()
		return nil
	})
	if err != nil && ctx.Err() == nil {
		slog.ErrorContext(ctx, "Event consumption stopped", "error", err)
	}
}

// MarkDirty schedules a snapshot rewrite on the next tick.
func (w *ExportWorker) MarkDirty() {
	select {
	case w.dirty <- struct{}{}:
	default:
	}
}

func (w *ExportWorker) runLoop(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	// Write a snapshot immediately on startup.
	w.ExportOnce(ctx)

	for {
		select {
		case <-w.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			select {
			case <-w.dirty:
				w.ExportOnce(ctx)
			default:
			}
		}
	}
}

// ExportOnce builds the all-time report and rewrites both snapshot files.
func (w *ExportWorker) ExportOnce(ctx context.Context) {
	entries, err := w.storage.ListEntries(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to load entries for export", "error", err)
		return
	}
	categories, err := w.storage.ListCategories(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to load categories for export", "error", err)
		return
	}

	report := core.BuildReport(entries, categories, nil)

	csvPath := filepath.Join(w.config.ExportDir, "ledger.csv")
	if err := export.ToCSV(report.Entries, csvPath); err != nil {
		slog.ErrorContext(ctx, "Failed to write CSV snapshot", "path", csvPath, "error", err)
		return
	}

	jsonPath := filepath.Join(w.config.ExportDir, "ledger.json")
	if err := export.ToJSON(report, jsonPath); err != nil {
		slog.ErrorContext(ctx, "Failed to write JSON snapshot", "path", jsonPath, "error", err)
		return
	}

	slog.InfoContext(ctx, "Exported ledger snapshot",
		"entries", len(report.Entries),
		"csv", csvPath,
		"json", jsonPath)
}
