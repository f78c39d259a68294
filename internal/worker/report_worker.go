// Package worker keeps the external settlement report in sync with the
// ledger.
package worker

import (
	"context"
	"fmt"
	"time"

	"chitieu/internal/amqp"
	"chitieu/internal/core"
	"chitieu/internal/export"
	"chitieu/internal/log"
)

// Store is the read surface the worker needs to rebuild a report.
type Store interface {
	ListParticipants(ctx context.Context) ([]core.Participant, error)
	ListExpenses(ctx context.Context) ([]core.Expense, error)
}

// ReportWorker consumes ledger events and rewrites the settlement report.
// Events are debounced: a burst of writes produces one export, computed from
// the database, not from event payloads, so ordering and duplicates don't
// matter.
type ReportWorker struct {
	store    Store
	writer   export.ReportWriter
	debounce time.Duration
	logger   *log.Logger
	now      func() time.Time
	kick     chan struct{}
}

func NewReportWorker(store Store, writer export.ReportWriter, debounce time.Duration, logger *log.Logger) *ReportWorker {
	return &ReportWorker{
		store:    store,
		writer:   writer,
		debounce: debounce,
		logger:   logger.WithComponent(log.ComponentWorker),
		now:      time.Now,
		kick:     make(chan struct{}, 1),
	}
}

// HandleLedgerEvent schedules a report refresh. Safe to call from the AMQP
// consume loop; never blocks.
func (w *ReportWorker) HandleLedgerEvent(msg *amqp.LedgerEventMessage) error {
	select {
	case w.kick <- struct{}{}:
	default:
	}
	return nil
}

// Run exports reports until ctx is cancelled. Each scheduled refresh waits
// the debounce interval so bursts collapse into a single export.
func (w *ReportWorker) Run(ctx context.Context) error {
	w.logger.InfoContext(ctx, "report worker started", "debounce", w.debounce)

	var due <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			w.logger.InfoContext(ctx, "report worker stopping", "reason", ctx.Err())
			return ctx.Err()
		case <-w.kick:
			due = time.After(w.debounce)
		case <-due:
			due = nil
			if err := w.Export(ctx); err != nil {
				w.logger.ErrorContext(ctx, "report export failed", log.FieldError, err)
			}
		}
	}
}

// Export rebuilds the settlement report from the database and writes it out.
func (w *ReportWorker) Export(ctx context.Context) error {
	roster, err := w.store.ListParticipants(ctx)
	if err != nil {
		return fmt.Errorf("load roster: %w", err)
	}
	expenses, err := w.store.ListExpenses(ctx)
	if err != nil {
		return fmt.Errorf("load expenses: %w", err)
	}

	balances := core.ComputeBalances(expenses, roster)
	report := export.Report{
		GeneratedAt: w.now(),
		Balances:    balances,
		Transfers:   core.PlanSettlements(balances),
	}

	if err := w.writer.WriteSettlementReport(ctx, report); err != nil {
		return fmt.Errorf("write settlement report: %w", err)
	}

	w.logger.InfoContext(ctx, "settlement report exported",
		"balances", len(report.Balances),
		"transfers", len(report.Transfers))
	return nil
}
