// Package services orchestrates ledger operations across storage, the
// computation core, the cache and AMQP.
package services

import (
	"context"
	"fmt"
	"time"

	"chitieu/internal/amqp"
	"chitieu/internal/cache"
	"chitieu/internal/core"
	"chitieu/internal/log"
)

// SummaryDays is the rolling window used by the summary view.
const SummaryDays = 30

// Store is the persistence surface the service needs.
type Store interface {
	CreateParticipant(ctx context.Context, p *core.Participant) error
	UpdateParticipant(ctx context.Context, p core.Participant) error
	ListParticipants(ctx context.Context) ([]core.Participant, error)

	CreateExpense(ctx context.Context, e *core.Expense) error
	UpdateExpense(ctx context.Context, e core.Expense) error
	DeleteExpense(ctx context.Context, id string) error
	GetExpense(ctx context.Context, id string) (core.Expense, error)
	ListExpenses(ctx context.Context) ([]core.Expense, error)
	ListExpensesBetween(ctx context.Context, start, end time.Time) ([]core.Expense, error)
}

// Publisher emits ledger change events. A nil Publisher disables publishing.
type Publisher interface {
	PublishLedgerEvent(ctx context.Context, kind, expenseID string) error
}

// BalanceReport pairs the per-participant positions with the transfers that
// would settle them.
type BalanceReport struct {
	Balances  []core.Balance
	Transfers []core.Transfer
}

// Summary is the per-user spending overview for the last SummaryDays days.
type Summary struct {
	Window       core.Window
	TotalAmount  float64
	ExpenseCount int
	ByUser       []core.UserTotal
}

// LedgerService orchestrates reads, writes and derived computations.
type LedgerService struct {
	store     Store
	publisher Publisher
	logger    *log.Logger
	now       func() time.Time

	balanceCache *cache.LRU[BalanceReport]
	statsCache   *cache.LRU[core.Statistics]
	rankCache    *cache.LRU[[]core.RankingEntry]
	summaryCache *cache.LRU[Summary]
}

func NewLedgerService(store Store, publisher Publisher, cacheSize int, cacheTTL time.Duration, logger *log.Logger) *LedgerService {
	return &LedgerService{
		store:        store,
		publisher:    publisher,
		logger:       logger.WithComponent(log.ComponentLedger),
		now:          time.Now,
		balanceCache: cache.NewLRU[BalanceReport](cacheSize, cacheTTL),
		statsCache:   cache.NewLRU[core.Statistics](cacheSize, cacheTTL),
		rankCache:    cache.NewLRU[[]core.RankingEntry](cacheSize, cacheTTL),
		summaryCache: cache.NewLRU[Summary](cacheSize, cacheTTL),
	}
}

// CreateParticipant validates and stores a roster member.
func (s *LedgerService) CreateParticipant(ctx context.Context, p core.Participant) (core.Participant, error) {
	if err := p.Validate(); err != nil {
		return core.Participant{}, err
	}
	if err := s.store.CreateParticipant(ctx, &p); err != nil {
		return core.Participant{}, fmt.Errorf("create participant: %w", err)
	}
	s.invalidate()
	return p, nil
}

// UpdateParticipant rewrites a roster member's profile.
func (s *LedgerService) UpdateParticipant(ctx context.Context, p core.Participant) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if err := s.store.UpdateParticipant(ctx, p); err != nil {
		return fmt.Errorf("update participant: %w", err)
	}
	s.invalidate()
	return nil
}

// ListParticipants returns the roster in insertion order.
func (s *LedgerService) ListParticipants(ctx context.Context) ([]core.Participant, error) {
	return s.store.ListParticipants(ctx)
}

// CreateExpense validates and stores an expense, then publishes a change
// event. Publishing is best effort: the expense is already durable, so a
// broker failure only delays downstream exports.
func (s *LedgerService) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	if err := s.store.CreateExpense(ctx, &e); err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}
	s.invalidate()
	s.publish(ctx, amqp.EventExpenseCreated, e.ID)
	return e, nil
}

// UpdateExpense rewrites an existing expense.
func (s *LedgerService) UpdateExpense(ctx context.Context, e core.Expense) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if err := s.store.UpdateExpense(ctx, e); err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	s.invalidate()
	s.publish(ctx, amqp.EventExpenseUpdated, e.ID)
	return nil
}

// DeleteExpense removes an expense.
func (s *LedgerService) DeleteExpense(ctx context.Context, id string) error {
	if err := s.store.DeleteExpense(ctx, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	s.invalidate()
	s.publish(ctx, amqp.EventExpenseDeleted, id)
	return nil
}

// GetExpense fetches one expense.
func (s *LedgerService) GetExpense(ctx context.Context, id string) (core.Expense, error) {
	return s.store.GetExpense(ctx, id)
}

// ListExpenses returns all expenses, most recent first.
func (s *LedgerService) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	return s.store.ListExpenses(ctx)
}

// ListExpensesBetween returns expenses in an inclusive date range.
func (s *LedgerService) ListExpensesBetween(ctx context.Context, start, end time.Time) ([]core.Expense, error) {
	return s.store.ListExpensesBetween(ctx, start, end)
}

// Balances reconciles the full ledger into net positions and a settlement
// plan.
func (s *LedgerService) Balances(ctx context.Context) (BalanceReport, error) {
	const key = "balances"
	if report, ok := s.balanceCache.Get(key); ok {
		return report, nil
	}

	roster, err := s.store.ListParticipants(ctx)
	if err != nil {
		return BalanceReport{}, fmt.Errorf("load roster: %w", err)
	}
	expenses, err := s.store.ListExpenses(ctx)
	if err != nil {
		return BalanceReport{}, fmt.Errorf("load expenses: %w", err)
	}

	balances := core.ComputeBalances(expenses, roster)
	report := BalanceReport{
		Balances:  balances,
		Transfers: core.PlanSettlements(balances),
	}
	s.balanceCache.Set(key, report)
	return report, nil
}

// Statistics aggregates the last days calendar days into daily buckets with
// category and per-user breakdowns.
func (s *LedgerService) Statistics(ctx context.Context, days int) (core.Statistics, error) {
	window := core.RollingWindow(days, s.now())
	key := fmt.Sprintf("stats:%d:%s", days, window.Start.Format("2006-01-02"))
	if stats, ok := s.statsCache.Get(key); ok {
		return stats, nil
	}

	roster, expenses, err := s.loadWindow(ctx, window)
	if err != nil {
		return core.Statistics{}, err
	}

	stats := core.Aggregate(expenses, roster, window)
	s.statsCache.Set(key, stats)
	return stats, nil
}

// Rankings orders the roster by spend inside the named period.
func (s *LedgerService) Rankings(ctx context.Context, period string) ([]core.RankingEntry, error) {
	window := core.ResolveWindow(period, s.now())
	key := fmt.Sprintf("rank:%s:%s", period, window.Start.Format("2006-01-02"))
	if entries, ok := s.rankCache.Get(key); ok {
		return entries, nil
	}

	roster, expenses, err := s.loadWindow(ctx, window)
	if err != nil {
		return nil, err
	}

	entries := core.Rank(expenses, roster, window)
	s.rankCache.Set(key, entries)
	return entries, nil
}

// Summary reports total and per-user spend over the last SummaryDays days.
func (s *LedgerService) Summary(ctx context.Context) (Summary, error) {
	window := core.RollingWindow(SummaryDays, s.now())
	key := "summary:" + window.Start.Format("2006-01-02")
	if summary, ok := s.summaryCache.Get(key); ok {
		return summary, nil
	}

	roster, expenses, err := s.loadWindow(ctx, window)
	if err != nil {
		return Summary{}, err
	}

	stats := core.Aggregate(expenses, roster, window)
	summary := Summary{
		Window:       window,
		TotalAmount:  stats.TotalAmount,
		ExpenseCount: len(expenses),
		ByUser:       stats.ByUser,
	}
	s.summaryCache.Set(key, summary)
	return summary, nil
}

func (s *LedgerService) loadWindow(ctx context.Context, window core.Window) ([]core.Participant, []core.Expense, error) {
	roster, err := s.store.ListParticipants(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load roster: %w", err)
	}
	expenses, err := s.store.ListExpensesBetween(ctx, window.Start, window.End)
	if err != nil {
		return nil, nil, fmt.Errorf("load expenses: %w", err)
	}
	return roster, expenses, nil
}

func (s *LedgerService) invalidate() {
	s.balanceCache.Purge()
	s.statsCache.Purge()
	s.rankCache.Purge()
	s.summaryCache.Purge()
}

func (s *LedgerService) publish(ctx context.Context, kind, expenseID string) {
	if s.publisher == nil {
		s.logger.WarnContext(ctx, "publisher not available, skipping event",
			log.FieldKind, kind, log.FieldExpenseID, expenseID)
		return
	}
	if err := s.publisher.PublishLedgerEvent(ctx, kind, expenseID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish ledger event",
			log.FieldError, err,
			log.FieldKind, kind,
			log.FieldExpenseID, expenseID)
	}
}
