package http

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"chitieu/internal/core"
	"chitieu/internal/log"
	"chitieu/internal/storage"
)

type expenseRequest struct {
	PayerID      string   `json:"payer_id"`
	Description  string   `json:"description"`
	Amount       float64  `json:"amount"`
	Category     string   `json:"category"`
	Participants []string `json:"participants"`
	Date         string   `json:"date"`
}

func (req expenseRequest) toExpense(id string) (core.Expense, error) {
	date, err := time.Parse(dateFormat, req.Date)
	if err != nil {
		return core.Expense{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", req.Date)
	}
	return core.Expense{
		ID:           id,
		PayerID:      req.PayerID,
		Description:  req.Description,
		Amount:       req.Amount,
		Category:     req.Category,
		Participants: req.Participants,
		Date:         date,
	}, nil
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.service.ListExpenses(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "list expenses failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to list expenses")
		return
	}
	writeJSON(w, http.StatusOK, toExpenseViews(expenses))
}

func (s *Server) handleListExpensesRange(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	start, err := time.Parse(dateFormat, query.Get("start"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start date, want YYYY-MM-DD")
		return
	}
	end, err := time.Parse(dateFormat, query.Get("end"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid end date, want YYYY-MM-DD")
		return
	}
	// The end date is inclusive, so push it to the last instant of that day.
	end = end.Add(24*time.Hour - time.Nanosecond)

	expenses, err := s.service.ListExpensesBetween(r.Context(), start, end)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "list expenses range failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to list expenses")
		return
	}
	writeJSON(w, http.StatusOK, toExpenseViews(expenses))
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	expense, err := req.toExpense("")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := s.service.CreateExpense(r.Context(), expense)
	if err != nil {
		if isValidationError(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.ErrorContext(r.Context(), "create expense failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to create expense")
		return
	}
	writeJSON(w, http.StatusCreated, toExpenseView(created))
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	expense, err := s.service.GetExpense(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "expense not found")
			return
		}
		s.logger.ErrorContext(r.Context(), "get expense failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to get expense")
		return
	}
	writeJSON(w, http.StatusOK, toExpenseView(expense))
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	expense, err := req.toExpense(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.service.UpdateExpense(r.Context(), expense); err != nil {
		s.respondWriteError(w, r, err, "update expense")
		return
	}
	writeJSON(w, http.StatusOK, toExpenseView(expense))
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteExpense(r.Context(), r.PathValue("id")); err != nil {
		s.respondWriteError(w, r, err, "delete expense")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// respondWriteError maps a service write failure onto an HTTP status.
func (s *Server) respondWriteError(w http.ResponseWriter, r *http.Request, err error, op string) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case isValidationError(err):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.ErrorContext(r.Context(), op+" failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to "+op)
	}
}

// isValidationError reports whether the error came from input validation
// rather than infrastructure.
func isValidationError(err error) bool {
	return errors.Is(err, core.ErrMissingPayer) ||
		errors.Is(err, core.ErrEmptyDescription) ||
		errors.Is(err, core.ErrDescriptionTooLong) ||
		errors.Is(err, core.ErrInvalidAmount) ||
		errors.Is(err, core.ErrZeroDate) ||
		errors.Is(err, core.ErrEmptyName) ||
		errors.Is(err, core.ErrNameTooLong)
}
