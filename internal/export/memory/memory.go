// Package memory is an in-memory ReportWriter for development and tests.
package memory

import (
	"context"
	"sync"

	"chitieu/internal/export"
)

type Writer struct {
	mu      sync.Mutex
	reports []export.Report
}

var _ export.ReportWriter = (*Writer)(nil)

func NewWriter() *Writer {
	return &Writer{}
}

func (w *Writer) WriteSettlementReport(_ context.Context, report export.Report) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.reports = append(w.reports, report)
	return nil
}

// Reports returns a copy of everything written so far.
func (w *Writer) Reports() []export.Report {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]export.Report, len(w.reports))
	copy(out, w.reports)
	return out
}

// Last returns the most recent report, if any.
func (w *Writer) Last() (export.Report, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.reports) == 0 {
		return export.Report{}, false
	}
	return w.reports[len(w.reports)-1], true
}
