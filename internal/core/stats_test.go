package core

import (
	"testing"
	"time"
)

func datedExpense(payer string, amount float64, category string, date time.Time) Expense {
	return Expense{
		ID:          payer + "-" + category,
		PayerID:     payer,
		Description: "test",
		Amount:      amount,
		Category:    category,
		Date:        date,
	}
}

func TestAggregateThreeDayWindow(t *testing.T) {
	now := time.Date(2025, 6, 18, 18, 0, 0, 0, time.UTC)
	window := RollingWindow(3, now)

	// One expense on the middle day only.
	expenses := []Expense{
		datedExpense("a", 45000, "Food", time.Date(2025, 6, 17, 12, 0, 0, 0, time.UTC)),
	}

	stats := Aggregate(expenses, testRoster, window)
	if len(stats.Days) != 3 {
		t.Fatalf("expected 3 daily buckets, got %d", len(stats.Days))
	}
	for i := 1; i < len(stats.Days); i++ {
		if !stats.Days[i].Date.After(stats.Days[i-1].Date) {
			t.Fatal("daily buckets must be chronologically ascending")
		}
	}
	if stats.Days[0].Total != 0 || stats.Days[2].Total != 0 {
		t.Errorf("empty days total = %v/%v, want 0/0", stats.Days[0].Total, stats.Days[2].Total)
	}
	if !approx(stats.Days[1].Total, 45000) {
		t.Errorf("day 2 total = %v, want 45000", stats.Days[1].Total)
	}
	if !approx(stats.Days[1].ByUser["a"], 45000) {
		t.Errorf("day 2 user sub-total = %v, want 45000", stats.Days[1].ByUser["a"])
	}
	if !approx(stats.Days[1].ByCategory["Food"], 45000) {
		t.Errorf("day 2 category sub-total = %v, want 45000", stats.Days[1].ByCategory["Food"])
	}
	// Zero-expense days count toward the divisor.
	if !approx(stats.AverageDaily, 15000) {
		t.Errorf("average daily = %v, want 15000", stats.AverageDaily)
	}
}

func TestAggregateFiltersAndDefaults(t *testing.T) {
	now := time.Date(2025, 6, 18, 18, 0, 0, 0, time.UTC)
	window := RollingWindow(7, now)

	expenses := []Expense{
		datedExpense("a", 10000, "", time.Date(2025, 6, 18, 8, 0, 0, 0, time.UTC)),
		datedExpense("b", 20000, "Food", time.Date(2025, 6, 16, 8, 0, 0, 0, time.UTC)),
		// Outside the window, must be ignored.
		datedExpense("a", 99999, "Food", time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)),
	}

	stats := Aggregate(expenses, testRoster, window)
	if !approx(stats.TotalAmount, 30000) {
		t.Errorf("total = %v, want 30000", stats.TotalAmount)
	}
	if !approx(stats.ByCategory[DefaultCategory], 10000) {
		t.Errorf("missing category must fall back to %q, got %v", DefaultCategory, stats.ByCategory[DefaultCategory])
	}
	if !approx(stats.ByCategory["Food"], 20000) {
		t.Errorf("Food total = %v, want 20000", stats.ByCategory["Food"])
	}

	// Per-user totals cover the whole roster, colors included.
	if len(stats.ByUser) != 3 {
		t.Fatalf("expected 3 user totals, got %d", len(stats.ByUser))
	}
	if stats.ByUser[0].ParticipantID != "a" || !approx(stats.ByUser[0].Total, 10000) {
		t.Errorf("first user total = %+v, want a/10000", stats.ByUser[0])
	}
	if stats.ByUser[2].Total != 0 || stats.ByUser[2].Color != "#F59E0B" {
		t.Errorf("zero-expense user = %+v, want zero total with color kept", stats.ByUser[2])
	}
}

func TestRankEmptyLedger(t *testing.T) {
	now := time.Date(2025, 6, 18, 18, 0, 0, 0, time.UTC)

	for _, token := range []string{PeriodWeek, PeriodMonth, PeriodQuarter, PeriodYear, "bogus"} {
		entries := Rank(nil, testRoster, ResolveWindow(token, now))
		if len(entries) != 3 {
			t.Fatalf("%s: expected 3 entries, got %d", token, len(entries))
		}
		for i, e := range entries {
			// No expenses: totals zero, roster order preserved.
			if e.TotalAmount != 0 || e.ExpenseCount != 0 || e.TopCategory != "" {
				t.Errorf("%s: entry %d = %+v, want zeroes", token, i, e)
			}
			if e.ParticipantID != testRoster[i].ID {
				t.Errorf("%s: entry %d is %s, want roster order", token, i, e.ParticipantID)
			}
		}
	}
}

func TestRankOrdering(t *testing.T) {
	now := time.Date(2025, 6, 18, 18, 0, 0, 0, time.UTC)
	window := ResolveWindow(PeriodMonth, now)
	day := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	expenses := []Expense{
		datedExpense("b", 50000, "Food", day),
		datedExpense("b", 30000, "Travel", day),
		datedExpense("c", 60000, "Food", day),
		datedExpense("a", 60000, "Rent", day),
	}

	entries := Rank(expenses, testRoster, window)
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	// b leads with 80000; a and c tie at 60000 and keep roster order.
	if entries[0].ParticipantID != "b" || entries[1].ParticipantID != "a" || entries[2].ParticipantID != "c" {
		t.Fatalf("order = %s,%s,%s, want b,a,c",
			entries[0].ParticipantID, entries[1].ParticipantID, entries[2].ParticipantID)
	}
	if entries[0].ExpenseCount != 2 || !approx(entries[0].TotalAmount, 80000) {
		t.Errorf("b entry = %+v, want count 2 total 80000", entries[0])
	}
	if entries[0].TopCategory != "Food" {
		t.Errorf("b top category = %q, want Food", entries[0].TopCategory)
	}
}

func TestRankTopCategoryTie(t *testing.T) {
	now := time.Date(2025, 6, 18, 18, 0, 0, 0, time.UTC)
	window := ResolveWindow(PeriodMonth, now)
	day := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	// Equal amounts in two categories: first encountered wins.
	expenses := []Expense{
		datedExpense("a", 25000, "Coffee", day),
		datedExpense("a", 25000, "Books", day),
	}

	entries := Rank(expenses, testRoster, window)
	if entries[0].TopCategory != "Coffee" {
		t.Errorf("top category = %q, want Coffee (first encountered)", entries[0].TopCategory)
	}
}

func TestRankIgnoresDepartedPayer(t *testing.T) {
	now := time.Date(2025, 6, 18, 18, 0, 0, 0, time.UTC)
	window := ResolveWindow(PeriodYear, now)
	day := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	expenses := []Expense{datedExpense("ghost", 90000, "Food", day)}
	entries := Rank(expenses, testRoster, window)
	for _, e := range entries {
		if e.TotalAmount != 0 {
			t.Errorf("entry %s picked up a departed payer's expense: %+v", e.ParticipantID, e)
		}
	}
}

func TestRankEmptyRoster(t *testing.T) {
	now := time.Date(2025, 6, 18, 18, 0, 0, 0, time.UTC)
	if entries := Rank(nil, nil, ResolveWindow(PeriodWeek, now)); len(entries) != 0 {
		t.Fatalf("expected no entries for empty roster, got %d", len(entries))
	}
}
