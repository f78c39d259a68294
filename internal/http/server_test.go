package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"chitieu/internal/core"
	"chitieu/internal/log"
	"chitieu/internal/services"
	"chitieu/internal/storage"
)

type fakeStore struct {
	participants []core.Participant
	expenses     []core.Expense
}

func (f *fakeStore) CreateParticipant(_ context.Context, p *core.Participant) error {
	if p.ID == "" {
		p.ID = "p" + string(rune('0'+len(f.participants)))
	}
	if p.Color == "" {
		p.Color = core.DefaultColor
	}
	f.participants = append(f.participants, *p)
	return nil
}

func (f *fakeStore) UpdateParticipant(_ context.Context, p core.Participant) error {
	for i := range f.participants {
		if f.participants[i].ID == p.ID {
			f.participants[i] = p
			return nil
		}
	}
	return storage.ErrNotFound
}

func (f *fakeStore) ListParticipants(context.Context) ([]core.Participant, error) {
	return f.participants, nil
}

func (f *fakeStore) CreateExpense(_ context.Context, e *core.Expense) error {
	if e.ID == "" {
		e.ID = "e" + string(rune('0'+len(f.expenses)))
	}
	e.CreatedAt = time.Now()
	f.expenses = append(f.expenses, *e)
	return nil
}

func (f *fakeStore) UpdateExpense(_ context.Context, e core.Expense) error {
	for i := range f.expenses {
		if f.expenses[i].ID == e.ID {
			f.expenses[i] = e
			return nil
		}
	}
	return storage.ErrNotFound
}

func (f *fakeStore) DeleteExpense(_ context.Context, id string) error {
	for i := range f.expenses {
		if f.expenses[i].ID == id {
			f.expenses = append(f.expenses[:i], f.expenses[i+1:]...)
			return nil
		}
	}
	return storage.ErrNotFound
}

func (f *fakeStore) GetExpense(_ context.Context, id string) (core.Expense, error) {
	for _, e := range f.expenses {
		if e.ID == id {
			return e, nil
		}
	}
	return core.Expense{}, storage.ErrNotFound
}

func (f *fakeStore) ListExpenses(context.Context) ([]core.Expense, error) {
	return f.expenses, nil
}

func (f *fakeStore) ListExpensesBetween(_ context.Context, start, end time.Time) ([]core.Expense, error) {
	w := core.Window{Start: start, End: end}
	var out []core.Expense
	for _, e := range f.expenses {
		if w.Contains(e.Date) {
			out = append(out, e)
		}
	}
	return out, nil
}

func newTestServer(t *testing.T) (*Server, *fakeStore) {
	t.Helper()
	store := &fakeStore{}
	logger := log.New(log.Config{Component: log.ComponentHTTP})
	service := services.NewLedgerService(store, nil, 16, time.Minute, logger)
	s := NewServer(":0", service, logger)
	t.Cleanup(func() { s.rateLimiter.stop() })
	return s, store
}

func doJSON(t *testing.T, s *Server, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	s.Handler.ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response: %v (body %s)", err, rr.Body.String())
	}
	return v
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)
	rr := doJSON(t, s, http.MethodGet, "/healthz", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
}

func TestCreateAndListParticipants(t *testing.T) {
	s, _ := newTestServer(t)

	rr := doJSON(t, s, http.MethodPost, "/api/participants", participantRequest{Name: "An"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body %s)", rr.Code, rr.Body.String())
	}
	created := decodeBody[participantView](t, rr)
	if created.ID == "" || created.Color != core.DefaultColor {
		t.Errorf("created = %+v", created)
	}

	rr = doJSON(t, s, http.MethodGet, "/api/participants", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	roster := decodeBody[[]participantView](t, rr)
	if len(roster) != 1 || roster[0].Name != "An" {
		t.Errorf("roster = %+v", roster)
	}
}

func TestCreateParticipantRejectsEmptyName(t *testing.T) {
	s, _ := newTestServer(t)
	rr := doJSON(t, s, http.MethodPost, "/api/participants", participantRequest{Name: "  "})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestUpdateParticipantNotFound(t *testing.T) {
	s, _ := newTestServer(t)
	rr := doJSON(t, s, http.MethodPut, "/api/participants/missing", participantRequest{Name: "X"})
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
}

func TestExpenseLifecycle(t *testing.T) {
	s, _ := newTestServer(t)

	doJSON(t, s, http.MethodPost, "/api/participants", participantRequest{Name: "An"})

	rr := doJSON(t, s, http.MethodPost, "/api/expenses", expenseRequest{
		PayerID:     "p0",
		Description: "Lunch",
		Amount:      200000,
		Category:    "Food",
		Date:        "2025-06-18",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body %s)", rr.Code, rr.Body.String())
	}
	created := decodeBody[expenseView](t, rr)
	if created.ID == "" || created.Date != "2025-06-18" {
		t.Errorf("created = %+v", created)
	}

	rr = doJSON(t, s, http.MethodGet, "/api/expenses/"+created.ID, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("get status = %d, want 200", rr.Code)
	}

	rr = doJSON(t, s, http.MethodPut, "/api/expenses/"+created.ID, expenseRequest{
		PayerID:     "p0",
		Description: "Lunch updated",
		Amount:      250000,
		Date:        "2025-06-18",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("update status = %d, want 200 (body %s)", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, s, http.MethodDelete, "/api/expenses/"+created.ID, nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", rr.Code)
	}

	rr = doJSON(t, s, http.MethodGet, "/api/expenses/"+created.ID, nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("get after delete status = %d, want 404", rr.Code)
	}
}

func TestCreateExpenseValidation(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		name string
		req  expenseRequest
	}{
		{"missing payer", expenseRequest{Description: "x", Amount: 100, Date: "2025-06-18"}},
		{"empty description", expenseRequest{PayerID: "p0", Amount: 100, Date: "2025-06-18"}},
		{"negative amount", expenseRequest{PayerID: "p0", Description: "x", Amount: -1, Date: "2025-06-18"}},
		{"bad date", expenseRequest{PayerID: "p0", Description: "x", Amount: 100, Date: "18/06/2025"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doJSON(t, s, http.MethodPost, "/api/expenses", tt.req)
			if rr.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400 (body %s)", rr.Code, rr.Body.String())
			}
		})
	}
}

func TestExpensesRange(t *testing.T) {
	s, store := newTestServer(t)
	store.participants = []core.Participant{{ID: "a", Name: "An"}}
	store.expenses = []core.Expense{
		{ID: "e1", PayerID: "a", Description: "in", Amount: 100, Date: time.Date(2025, 6, 18, 10, 0, 0, 0, time.UTC)},
		{ID: "e2", PayerID: "a", Description: "out", Amount: 100, Date: time.Date(2025, 7, 2, 10, 0, 0, 0, time.UTC)},
	}

	rr := doJSON(t, s, http.MethodGet, "/api/expenses/range?start=2025-06-01&end=2025-06-30", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	expenses := decodeBody[[]expenseView](t, rr)
	if len(expenses) != 1 || expenses[0].ID != "e1" {
		t.Errorf("expenses = %+v", expenses)
	}

	rr = doJSON(t, s, http.MethodGet, "/api/expenses/range?start=bad&end=2025-06-30", nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestBalancesEndpoint(t *testing.T) {
	s, store := newTestServer(t)
	store.participants = []core.Participant{
		{ID: "a", Name: "An", Color: "#3B82F6"},
		{ID: "b", Name: "Binh", Color: "#10B981"},
	}
	store.expenses = []core.Expense{
		{ID: "e1", PayerID: "a", Description: "Dinner", Amount: 200000, Date: time.Now()},
	}

	rr := doJSON(t, s, http.MethodGet, "/api/balances", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	view := decodeBody[balancesView](t, rr)
	if len(view.Balances) != 2 {
		t.Fatalf("balances = %+v", view.Balances)
	}
	if view.Balances[0].Net != 100000 || view.Balances[1].Net != -100000 {
		t.Errorf("nets = %v / %v", view.Balances[0].Net, view.Balances[1].Net)
	}
	if len(view.Transfers) != 1 || view.Transfers[0].From != "b" || view.Transfers[0].To != "a" {
		t.Errorf("transfers = %+v", view.Transfers)
	}
}

func TestStatisticsEndpoint(t *testing.T) {
	s, store := newTestServer(t)
	store.participants = []core.Participant{{ID: "a", Name: "An"}}

	rr := doJSON(t, s, http.MethodGet, "/api/statistics?days=7", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	stats := decodeBody[statisticsView](t, rr)
	if len(stats.Days) != 7 {
		t.Errorf("len(days) = %d, want 7", len(stats.Days))
	}
	if len(stats.ByUser) != 1 {
		t.Errorf("by_user = %+v", stats.ByUser)
	}

	rr = doJSON(t, s, http.MethodGet, "/api/statistics?days=abc", nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestRankingsEndpoint(t *testing.T) {
	s, store := newTestServer(t)
	store.participants = []core.Participant{
		{ID: "a", Name: "An"},
		{ID: "b", Name: "Binh"},
	}
	store.expenses = []core.Expense{
		{ID: "e1", PayerID: "b", Description: "Drinks", Amount: 120000, Category: "Out", Date: time.Now()},
	}

	rr := doJSON(t, s, http.MethodGet, "/api/rankings?period=month", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	entries := decodeBody[[]rankingView](t, rr)
	if len(entries) != 2 {
		t.Fatalf("entries = %+v", entries)
	}
	if entries[0].ParticipantID != "b" || entries[0].TopCategory != "Out" {
		t.Errorf("top entry = %+v", entries[0])
	}

	// Default period must also answer.
	rr = doJSON(t, s, http.MethodGet, "/api/rankings", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("default period status = %d, want 200", rr.Code)
	}
}

func TestSummaryEndpoint(t *testing.T) {
	s, store := newTestServer(t)
	store.participants = []core.Participant{{ID: "a", Name: "An"}}
	store.expenses = []core.Expense{
		{ID: "e1", PayerID: "a", Description: "Rent", Amount: 5000000, Date: time.Now().AddDate(0, 0, -2)},
	}

	rr := doJSON(t, s, http.MethodGet, "/api/summary", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	summary := decodeBody[summaryView](t, rr)
	if summary.TotalAmount != 5000000 || summary.ExpenseCount != 1 {
		t.Errorf("summary = %+v", summary)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name     string
		remote   string
		forwards map[string]string
		want     string
	}{
		{"remote addr", "10.0.0.1:1234", nil, "10.0.0.1"},
		{"x-forwarded-for", "10.0.0.1:1234", map[string]string{"X-Forwarded-For": "203.0.113.9"}, "203.0.113.9"},
		{"x-forwarded-for list", "10.0.0.1:1234", map[string]string{"X-Forwarded-For": "203.0.113.9, 10.0.0.2"}, "203.0.113.9"},
		{"x-real-ip", "10.0.0.1:1234", map[string]string{"X-Real-IP": "203.0.113.7"}, "203.0.113.7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.forwards {
				req.Header.Set(k, v)
			}
			if got := clientIP(req); got != tt.want {
				t.Errorf("clientIP = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRateLimiter(t *testing.T) {
	rl := newRateLimiter()
	defer rl.stop()

	for i := 0; i < requestsPerMinute; i++ {
		if !rl.allow("1.2.3.4") {
			t.Fatalf("request %d should be allowed", i)
		}
	}
	if rl.allow("1.2.3.4") {
		t.Error("request over the limit should be rejected")
	}
	if !rl.allow("5.6.7.8") {
		t.Error("other clients must not be affected")
	}
}
