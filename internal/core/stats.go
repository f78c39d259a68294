package core

import (
	"sort"
	"time"
)

type (
	// DailyBucket carries one calendar day's total plus its per-user and
	// per-category breakdown. Days without expenses are still materialized
	// with zero totals.
	DailyBucket struct {
		Date       time.Time
		Total      float64
		ByUser     map[string]float64
		ByCategory map[string]float64
	}

	// UserTotal is one participant's window-wide total, with the display
	// color carried along for presentation.
	UserTotal struct {
		ParticipantID string
		Name          string
		Color         string
		Total         float64
	}

	// Statistics is the aggregation output for one window.
	Statistics struct {
		TotalAmount  float64
		AverageDaily float64
		Days         []DailyBucket
		ByCategory   map[string]float64
		ByUser       []UserTotal
	}

	// RankingEntry is one participant's standing for a period.
	RankingEntry struct {
		ParticipantID string
		Name          string
		Color         string
		TotalAmount   float64
		ExpenseCount  int
		TopCategory   string
	}
)

// Aggregate buckets the expenses falling inside the window by day, category
// and participant. Every calendar day the window spans gets a bucket, in
// chronological order, zero-filled when nothing was spent. AverageDaily
// divides by the full day count, zero-expense days included.
func Aggregate(expenses []Expense, roster []Participant, window Window) Statistics {
	stats := Statistics{
		ByCategory: make(map[string]float64),
	}

	days := materializeDays(window)
	buckets := make(map[string]*DailyBucket, len(days))
	for i := range days {
		buckets[dayKey(days[i].Date)] = &days[i]
	}

	userTotals := make(map[string]float64, len(roster))
	for _, e := range expenses {
		if !window.Contains(e.Date) {
			continue
		}
		stats.TotalAmount += e.Amount
		stats.ByCategory[e.CategoryOrDefault()] += e.Amount
		userTotals[e.PayerID] += e.Amount

		if b, ok := buckets[dayKey(e.Date)]; ok {
			b.Total += e.Amount
			b.ByUser[e.PayerID] += e.Amount
			b.ByCategory[e.CategoryOrDefault()] += e.Amount
		}
	}

	stats.Days = days
	if n := len(days); n > 0 {
		stats.AverageDaily = stats.TotalAmount / float64(n)
	}

	stats.ByUser = make([]UserTotal, len(roster))
	for i, p := range roster {
		stats.ByUser[i] = UserTotal{
			ParticipantID: p.ID,
			Name:          p.Name,
			Color:         p.Color,
			Total:         userTotals[p.ID],
		}
	}
	return stats
}

// Rank orders the roster by total spend inside the window. Every roster
// member gets an entry even without expenses, so rankings are never empty
// for a non-empty roster. Equal totals keep roster order.
func Rank(expenses []Expense, roster []Participant, window Window) []RankingEntry {
	entries := make([]RankingEntry, len(roster))
	index := make(map[string]int, len(roster))
	for i, p := range roster {
		entries[i] = RankingEntry{ParticipantID: p.ID, Name: p.Name, Color: p.Color}
		index[p.ID] = i
	}

	// Per-participant category sums, remembering first-encountered order so
	// top-category ties resolve deterministically.
	catAmounts := make([]map[string]float64, len(roster))
	catOrder := make([][]string, len(roster))

	for _, e := range expenses {
		if !window.Contains(e.Date) {
			continue
		}
		i, ok := index[e.PayerID]
		if !ok {
			continue
		}
		entries[i].TotalAmount += e.Amount
		entries[i].ExpenseCount++

		category := e.CategoryOrDefault()
		if catAmounts[i] == nil {
			catAmounts[i] = make(map[string]float64)
		}
		if _, seen := catAmounts[i][category]; !seen {
			catOrder[i] = append(catOrder[i], category)
		}
		catAmounts[i][category] += e.Amount
	}

	for i := range entries {
		var best float64
		for _, category := range catOrder[i] {
			if amount := catAmounts[i][category]; amount > best {
				best = amount
				entries[i].TopCategory = category
			}
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].TotalAmount > entries[j].TotalAmount
	})
	return entries
}

// materializeDays builds one zero-filled bucket per calendar day spanned by
// the window, ascending.
func materializeDays(window Window) []DailyBucket {
	start := startOfDay(window.Start)
	end := startOfDay(window.End)
	if end.Before(start) {
		return nil
	}

	var days []DailyBucket
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, DailyBucket{
			Date:       d,
			ByUser:     make(map[string]float64),
			ByCategory: make(map[string]float64),
		})
	}
	return days
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
