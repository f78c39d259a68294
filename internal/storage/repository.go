// Package storage persists participants and expenses in SQLite.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"chitieu/internal/core"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("not found")

// Repository wraps the SQLite database.
type Repository struct {
	db *sql.DB
}

// NewRepository opens the database at dbPath, creating parent directories,
// and applies pending migrations.
func NewRepository(dbPath string) (*Repository, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	if err := RunMigrations(dbPath); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Repository{db: db}, nil
}

// Close releases the underlying database handle.
func (r *Repository) Close() error {
	return r.db.Close()
}

// CreateParticipant inserts a participant, assigning an id and default color
// when missing.
func (r *Repository) CreateParticipant(ctx context.Context, p *core.Participant) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Color == "" {
		p.Color = core.DefaultColor
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO participants (id, name, color, created_at) VALUES (?, ?, ?, ?)`,
		p.ID, p.Name, p.Color, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert participant: %w", err)
	}
	return nil
}

// UpdateParticipant rewrites a participant's name and color.
func (r *Repository) UpdateParticipant(ctx context.Context, p core.Participant) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE participants SET name = ?, color = ? WHERE id = ?`,
		p.Name, p.Color, p.ID,
	)
	if err != nil {
		return fmt.Errorf("update participant: %w", err)
	}
	return requireRow(res)
}

// ListParticipants returns the roster in insertion order. This order is what
// makes balance and ranking output deterministic.
func (r *Repository) ListParticipants(ctx context.Context) ([]core.Participant, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, color FROM participants ORDER BY created_at ASC, rowid ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer rows.Close()

	var out []core.Participant
	for rows.Next() {
		var p core.Participant
		if err := rows.Scan(&p.ID, &p.Name, &p.Color); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// CreateExpense inserts an expense, assigning an id when missing.
func (r *Repository) CreateExpense(ctx context.Context, e *core.Expense) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	participants, err := encodeParticipants(e.Participants)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO expenses (id, payer_id, description, amount, category, participants, spent_on, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.PayerID, e.Description, e.Amount, e.Category, participants,
		e.Date.Unix(), e.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}
	return nil
}

// UpdateExpense rewrites every mutable field of an expense.
func (r *Repository) UpdateExpense(ctx context.Context, e core.Expense) error {
	participants, err := encodeParticipants(e.Participants)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET payer_id = ?, description = ?, amount = ?, category = ?, participants = ?, spent_on = ?
		 WHERE id = ?`,
		e.PayerID, e.Description, e.Amount, e.Category, participants, e.Date.Unix(), e.ID,
	)
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	return requireRow(res)
}

// DeleteExpense removes an expense permanently.
func (r *Repository) DeleteExpense(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return requireRow(res)
}

// GetExpense fetches a single expense by id.
func (r *Repository) GetExpense(ctx context.Context, id string) (core.Expense, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, payer_id, description, amount, category, participants, spent_on, created_at
		 FROM expenses WHERE id = ?`, id,
	)
	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, ErrNotFound
	}
	return e, err
}

// ListExpenses returns every expense, most recent spend first.
func (r *Repository) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	return r.queryExpenses(ctx,
		`SELECT id, payer_id, description, amount, category, participants, spent_on, created_at
		 FROM expenses ORDER BY spent_on DESC, created_at DESC`,
	)
}

// ListExpensesBetween returns expenses whose spend date falls inside the
// inclusive range, most recent first.
func (r *Repository) ListExpensesBetween(ctx context.Context, start, end time.Time) ([]core.Expense, error) {
	return r.queryExpenses(ctx,
		`SELECT id, payer_id, description, amount, category, participants, spent_on, created_at
		 FROM expenses WHERE spent_on >= ? AND spent_on <= ?
		 ORDER BY spent_on DESC, created_at DESC`,
		start.Unix(), end.Unix(),
	)
}

func (r *Repository) queryExpenses(ctx context.Context, query string, args ...any) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExpense(s scanner) (core.Expense, error) {
	var (
		e            core.Expense
		participants string
		spentOn      int64
		createdAt    int64
	)
	err := s.Scan(&e.ID, &e.PayerID, &e.Description, &e.Amount, &e.Category,
		&participants, &spentOn, &createdAt)
	if err != nil {
		return core.Expense{}, err
	}

	if err := json.Unmarshal([]byte(participants), &e.Participants); err != nil {
		return core.Expense{}, fmt.Errorf("decode participants: %w", err)
	}
	e.Date = time.Unix(spentOn, 0)
	e.CreatedAt = time.Unix(createdAt, 0)
	return e, nil
}

func encodeParticipants(ids []string) (string, error) {
	if ids == nil {
		ids = []string{}
	}
	b, err := json.Marshal(ids)
	if err != nil {
		return "", fmt.Errorf("encode participants: %w", err)
	}
	return string(b), nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
