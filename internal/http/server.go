// Package http exposes the budgeting operations as a JSON API.
package http

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"sardinha/internal/core"
	applog "sardinha/internal/log"
	"sardinha/internal/middleware/ratelimit"
	"sardinha/internal/middleware/security"
	"sardinha/internal/middleware/trace"
)

// Service is everything the handlers need from the data layer: the
// operation set plus the offline mode switch.
type Service interface {
	ListProfiles(ctx context.Context) ([]core.Profile, error)
	CreateProfile(ctx context.Context, name string) (core.Profile, error)
	ProfileByName(ctx context.Context, name string) (core.ProfileDetail, error)
	UpdateIncome(ctx context.Context, profileID string, income float64) (core.Profile, error)
	SaveCategories(ctx context.Context, profileID string, cats []core.Category) error
	ListBudgets(ctx context.Context, profileID string) ([]core.Budget, error)
	ListExpenses(ctx context.Context, profileID string) ([]core.Expense, error)
	MonthExpenses(ctx context.Context, profileName, month string) ([]core.Expense, error)
	AddExpense(ctx context.Context, profileID string, e core.Expense) (core.Expense, error)
	UpdateExpense(ctx context.Context, expenseID string, patch core.ExpensePatch) (core.Expense, error)
	DeleteExpense(ctx context.Context, expenseID string) error

	Offline() bool
	GoOffline(ctx context.Context) error
	GoOnline(ctx context.Context) error
}

type Server struct {
	http.Server

	svc         Service
	logger      *applog.Logger
	rateLimiter *ratelimit.Limiter

	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(addr string, svc Service, logger *applog.Logger) *Server {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}

	s := &Server{
		svc:         svc,
		logger:      logger.WithComponent(applog.ComponentHTTP),
		rateLimiter: ratelimit.NewLimiter(ratelimit.DefaultConfig()),
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	mux.HandleFunc("GET /api/profiles", s.handleListProfiles)
	mux.HandleFunc("POST /api/profiles", s.handleCreateProfile)
	mux.HandleFunc("GET /api/profiles/{name}", s.handleProfileByName)
	mux.HandleFunc("PUT /api/profiles/{id}/income", s.handleUpdateIncome)
	mux.HandleFunc("PUT /api/profiles/{id}/categories", s.handleSaveCategories)

	mux.HandleFunc("GET /api/budgets/{profileID}", s.handleListBudgets)

	mux.HandleFunc("GET /api/expenses", s.handleMonthExpenses)
	mux.HandleFunc("GET /api/expenses/{profileID}", s.handleListExpenses)
	mux.HandleFunc("POST /api/expenses/{profileID}", s.handleAddExpense)
	mux.HandleFunc("PUT /api/expenses/{id}", s.handleUpdateExpense)
	mux.HandleFunc("DELETE /api/expenses/{id}", s.handleDeleteExpense)

	mux.HandleFunc("GET /api/report", s.handleMonthReport)

	mux.HandleFunc("GET /api/offline", s.handleGetOffline)
	mux.HandleFunc("PUT /api/offline", s.handleSetOffline)

	mux.HandleFunc("GET /api/backup", s.handleExportBackup)
	mux.HandleFunc("POST /api/backup", s.handleImportBackup)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	tracer := trace.NewMiddleware(extractClientIP)
	limited := s.rateLimiter.Middleware(extractClientIP, nil)

	handler := tracer.Middleware(
		applog.Middleware(s.logger)(
			headers.Middleware(
				limited(mux))))

	s.Server = http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Shutdown stops the rate limiter cleanup goroutine before draining the
// HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// extractClientIP returns the direct peer address, honoring forwarding
// headers only when they carry a parseable address.
func extractClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first := strings.TrimSpace(strings.Split(xff, ",")[0])
		if net.ParseIP(first) != nil {
			return first
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		if net.ParseIP(xri) != nil {
			return xri
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
