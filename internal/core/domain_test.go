package core

import (
	"testing"
	"time"
)

func TestExpenseValidate(t *testing.T) {
	good := Expense{
		PayerID:     "a",
		Description: "lunch",
		Amount:      45000,
		Date:        time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	// Zero amounts are allowed; only negatives are rejected.
	free := good
	free.Amount = 0
	if err := free.Validate(); err != nil {
		t.Fatalf("zero amount should validate, got %v", err)
	}

	bads := []Expense{
		{Description: "a", Amount: 1, Date: good.Date},                      // no payer
		{PayerID: "a", Amount: 1, Date: good.Date},                         // no description
		{PayerID: "a", Description: "a", Amount: -1, Date: good.Date},      // negative
		{PayerID: "a", Description: "a", Amount: 1},                        // zero date
	}
	for i, e := range bads {
		if err := e.Validate(); err == nil {
			t.Errorf("case %d expected error", i)
		}
	}
}

func TestParticipantValidate(t *testing.T) {
	if err := (Participant{Name: "An"}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Participant{Name: "  "}).Validate(); err == nil {
		t.Fatal("expected error for blank name")
	}
}

func TestCategoryOrDefault(t *testing.T) {
	if got := (Expense{Category: "Food"}).CategoryOrDefault(); got != "Food" {
		t.Errorf("got %q, want Food", got)
	}
	if got := (Expense{}).CategoryOrDefault(); got != DefaultCategory {
		t.Errorf("got %q, want %q", got, DefaultCategory)
	}
}
