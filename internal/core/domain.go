package core

import (
	"errors"
	"strings"
	"time"
)

const (
	// DefaultCategory labels expenses recorded without a category.
	DefaultCategory = "Other"

	// DefaultColor is the display color assigned to participants created
	// without one.
	DefaultColor = "#3B82F6"

	// Epsilon is the tolerance for "settled" comparisons. Shares are split
	// in floating point without sub-unit rounding, so residual fractions
	// accumulate and exact equality is never used.
	Epsilon = 0.01
)

var (
	ErrEmptyDescription   = errors.New("empty description")
	ErrDescriptionTooLong = errors.New("description too long (max 200 characters)")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrMissingPayer       = errors.New("missing payer")
	ErrZeroDate           = errors.New("date cannot be zero")
	ErrEmptyName          = errors.New("empty name")
	ErrNameTooLong        = errors.New("name too long (max 100 characters)")
)

type (
	// Participant is one member of the roster sharing expenses.
	Participant struct {
		ID    string
		Name  string
		Color string
	}

	// Expense is a single spend. Participants lists who shares the cost;
	// an empty list means the whole roster at computation time, resolved
	// during aggregation rather than at creation.
	Expense struct {
		ID           string
		PayerID      string
		Description  string
		Amount       float64
		Category     string
		Participants []string
		Date         time.Time
		CreatedAt    time.Time
	}

	// Balance is one participant's position across a set of expenses.
	// Net = Paid - Owed; positive means the group owes them money.
	Balance struct {
		ParticipantID string
		Name          string
		Color         string
		Paid          float64
		Owed          float64
		Net           float64
	}

	// Transfer is a recommended settlement payment.
	Transfer struct {
		From   string
		To     string
		Amount float64
	}

	// Window is a concrete inclusive date range.
	Window struct {
		Start time.Time
		End   time.Time
	}
)

// Validate checks an expense at the boundary. Participant membership is not
// checked here: ids that left the roster are tolerated during aggregation.
func (e Expense) Validate() error {
	if strings.TrimSpace(e.PayerID) == "" {
		return ErrMissingPayer
	}
	if strings.TrimSpace(e.Description) == "" {
		return ErrEmptyDescription
	}
	if len(e.Description) > 200 {
		return ErrDescriptionTooLong
	}
	if e.Amount < 0 {
		return ErrInvalidAmount
	}
	if e.Date.IsZero() {
		return ErrZeroDate
	}
	return nil
}

// Validate checks a participant profile.
func (p Participant) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if len(p.Name) > 100 {
		return ErrNameTooLong
	}
	return nil
}

// CategoryOrDefault returns the expense category, falling back to
// DefaultCategory when none was recorded.
func (e Expense) CategoryOrDefault() string {
	if strings.TrimSpace(e.Category) == "" {
		return DefaultCategory
	}
	return e.Category
}

// Contains reports whether t falls inside the window, boundaries included.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}
