package memory

import (
	"context"
	"testing"
	"time"

	"chitieu/internal/core"
	"chitieu/internal/export"
)

func TestWriterRecordsReports(t *testing.T) {
	w := NewWriter()

	if _, ok := w.Last(); ok {
		t.Fatal("expected no reports initially")
	}

	report := export.Report{
		GeneratedAt: time.Now(),
		Balances:    []core.Balance{{ParticipantID: "a", Name: "An", Net: 100}},
		Transfers:   []core.Transfer{{From: "Binh", To: "An", Amount: 100}},
	}
	if err := w.WriteSettlementReport(context.Background(), report); err != nil {
		t.Fatalf("WriteSettlementReport: %v", err)
	}

	last, ok := w.Last()
	if !ok {
		t.Fatal("expected a report")
	}
	if len(last.Transfers) != 1 || last.Transfers[0].To != "An" {
		t.Errorf("got %+v", last)
	}
	if got := len(w.Reports()); got != 1 {
		t.Errorf("len(Reports()) = %d, want 1", got)
	}
}
