package http

import (
	"net/http"
	"strconv"
	"strings"

	"chitieu/internal/core"
	"chitieu/internal/log"
)

const (
	defaultStatisticsDays = 30
	maxStatisticsDays     = 366
)

func (s *Server) handleBalances(w http.ResponseWriter, r *http.Request) {
	report, err := s.service.Balances(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "balance computation failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to compute balances")
		return
	}
	writeJSON(w, http.StatusOK, toBalancesView(report))
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	days := defaultStatisticsDays
	if v := strings.TrimSpace(r.URL.Query().Get("days")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid days parameter")
			return
		}
		days = n
	}
	if days < 1 {
		days = 1
	}
	if days > maxStatisticsDays {
		days = maxStatisticsDays
	}

	stats, err := s.service.Statistics(r.Context(), days)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "statistics aggregation failed",
			log.FieldError, err, log.FieldWindowDays, days)
		writeError(w, http.StatusInternalServerError, "failed to aggregate statistics")
		return
	}
	writeJSON(w, http.StatusOK, toStatisticsView(stats))
}

func (s *Server) handleRankings(w http.ResponseWriter, r *http.Request) {
	period := strings.TrimSpace(r.URL.Query().Get("period"))
	if period == "" {
		period = core.PeriodWeek
	}

	entries, err := s.service.Rankings(r.Context(), period)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "ranking computation failed",
			log.FieldError, err, log.FieldPeriod, period)
		writeError(w, http.StatusInternalServerError, "failed to compute rankings")
		return
	}
	writeJSON(w, http.StatusOK, toRankingViews(entries))
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.service.Summary(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "summary computation failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to compute summary")
		return
	}
	writeJSON(w, http.StatusOK, toSummaryView(summary))
}
