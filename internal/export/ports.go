// Package export defines the outbound port for settlement reports.
package export

import (
	"context"
	"time"

	"chitieu/internal/core"
)

// Report is a snapshot of the reconciled ledger at a point in time.
type Report struct {
	GeneratedAt time.Time
	Balances    []core.Balance
	Transfers   []core.Transfer
}

// ReportWriter publishes a settlement report to an external destination.
type ReportWriter interface {
	WriteSettlementReport(ctx context.Context, report Report) error
}
