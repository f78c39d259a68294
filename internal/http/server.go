// Package http exposes the ledger over a JSON API.
package http

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"chitieu/internal/log"
	"chitieu/internal/services"
)

type Server struct {
	http.Server
	service      *services.LedgerService
	logger       *log.Logger
	rateLimiter  *rateLimiter
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// server.
func NewServer(addr string, service *services.LedgerService, logger *log.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		service:     service,
		logger:      logger.WithComponent(log.ComponentHTTP),
		rateLimiter: newRateLimiter(),
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.Handle("GET /api/participants", s.middleware(s.handleListParticipants))
	mux.Handle("POST /api/participants", s.middleware(s.handleCreateParticipant))
	mux.Handle("PUT /api/participants/{id}", s.middleware(s.handleUpdateParticipant))

	mux.Handle("GET /api/expenses", s.middleware(s.handleListExpenses))
	mux.Handle("POST /api/expenses", s.middleware(s.handleCreateExpense))
	mux.Handle("GET /api/expenses/range", s.middleware(s.handleListExpensesRange))
	mux.Handle("GET /api/expenses/{id}", s.middleware(s.handleGetExpense))
	mux.Handle("PUT /api/expenses/{id}", s.middleware(s.handleUpdateExpense))
	mux.Handle("DELETE /api/expenses/{id}", s.middleware(s.handleDeleteExpense))

	mux.Handle("GET /api/balances", s.middleware(s.handleBalances))
	mux.Handle("GET /api/statistics", s.middleware(s.handleStatistics))
	mux.Handle("GET /api/rankings", s.middleware(s.handleRankings))
	mux.Handle("GET /api/summary", s.middleware(s.handleSummary))

	return s
}

// middleware applies rate limiting and request logging to a handler.
func (s *Server) middleware(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !s.rateLimiter.allow(ip) {
			s.logger.WarnContext(r.Context(), "rate limit exceeded",
				log.FieldClientIP, ip, log.FieldPath, r.URL.Path)
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)

		s.logger.InfoContext(r.Context(), "request handled",
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldStatusCode, rec.status,
			log.FieldDuration, time.Since(start).Milliseconds(),
			log.FieldClientIP, ip)
	})
}

// Shutdown stops the server and its background routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// clientIP extracts the originating address, preferring forwarding headers
// set by a reverse proxy.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	if real := r.Header.Get("X-Real-IP"); real != "" {
		return strings.TrimSpace(real)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
