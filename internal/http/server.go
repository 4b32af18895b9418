// Package http exposes the analytics engine as a JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"paisa/internal/analytics"
	"paisa/internal/log"
	"paisa/internal/middleware/trace"
	"paisa/internal/store"
)

type Server struct {
	http.Server
	analytics       *analytics.Service
	notifications   store.NotificationStore
	logger          *log.Logger
	traceMW         *trace.Middleware
	recurringMonths int
	forecastMonths  int
	startedAt       time.Time
	shutdownOnce    sync.Once
}

// NewServer configures routes and returns a ready-to-run server.
// recurringMonths and forecastMonths are the horizons used when a request
// does not pass months= explicitly.
func NewServer(addr string, svc *analytics.Service, notifications store.NotificationStore, logger *log.Logger, recurringMonths, forecastMonths int) *Server {
	mux := http.NewServeMux()

	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	if recurringMonths < 1 {
		recurringMonths = analytics.DefaultRecurringMonths
	}
	if forecastMonths < 1 {
		forecastMonths = analytics.DefaultForecastMonths
	}

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		analytics:       svc,
		notifications:   notifications,
		logger:          logger.WithComponent(log.ComponentHTTP),
		recurringMonths: recurringMonths,
		forecastMonths:  forecastMonths,
		startedAt:       time.Now(),
	}
	s.traceMW = trace.NewMiddleware(logger, clientIP)

	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)

	api := func(h http.HandlerFunc) http.Handler {
		return s.traceMW.Middleware(log.Middleware(s.logger)(h))
	}
	mux.Handle("/api/analytics/monthly-spend", api(s.handleMonthlySpend))
	mux.Handle("/api/analytics/category-breakdown", api(s.handleCategoryBreakdown))
	mux.Handle("/api/analytics/projected-recurring", api(s.handleProjectedRecurring))
	mux.Handle("/api/analytics/subscription-forecast", api(s.handleSubscriptionForecast))
	mux.Handle("/api/analytics/money-lent-ageing", api(s.handleMoneyLentAgeing))
	mux.Handle("/api/analytics/budget-progress", api(s.handleBudgetProgress))
	mux.Handle("/api/analytics/account-budgets", api(s.handleAccountBudgets))
	mux.Handle("/api/notifications", api(s.handleNotifications))

	return s
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// clientIP extracts the client address, honoring proxy headers.
func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}
