package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"paisa/internal/analytics"
	"paisa/internal/core"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	metrics := s.traceMW.GetMetrics()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"timestamp":      time.Now().Format(time.RFC3339),
		"uptime":         time.Since(s.startedAt).String(),
		"total_requests": metrics.TotalRequests,
	})
}

// handleReady performs readiness check with a store round trip
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	// Owner 0 never has notifications; this only verifies the store answers.
	if _, err := s.notifications.NotificationsByOwner(r.Context(), 0); err != nil {
		checks["store"] = "failed: " + err.Error()
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["store"] = "ok"
	}

	writeJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

func (s *Server) handleMonthlySpend(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	owner := ownerID(r)
	if owner == 0 {
		writeJSON(w, http.StatusOK, []analytics.MonthTotal{})
		return
	}

	totals, err := s.analytics.MonthlySpend(r.Context(), owner)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, "failed to compute monthly spend", err)
		return
	}
	writeJSON(w, http.StatusOK, totals)
}

func (s *Server) handleCategoryBreakdown(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	owner := ownerID(r)
	if owner == 0 {
		writeJSON(w, http.StatusOK, []analytics.CategoryTotal{})
		return
	}

	from := queryDate(r, "start")
	to := queryDate(r, "end")
	totals, err := s.analytics.CategoryBreakdown(r.Context(), owner, from, to)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, "failed to compute category breakdown", err)
		return
	}
	writeJSON(w, http.StatusOK, totals)
}

func (s *Server) handleProjectedRecurring(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	owner := ownerID(r)
	if owner == 0 {
		writeJSON(w, http.StatusOK, []analytics.RecurringForecast{})
		return
	}

	months := queryMonths(r, "months", s.recurringMonths)
	forecast, err := s.analytics.ProjectedRecurring(r.Context(), owner, months)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, "failed to project recurring costs", err)
		return
	}
	writeJSON(w, http.StatusOK, forecast)
}

func (s *Server) handleSubscriptionForecast(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	owner := ownerID(r)
	if owner == 0 {
		writeJSON(w, http.StatusOK, []analytics.SubscriptionForecast{})
		return
	}

	months := queryMonths(r, "months", s.forecastMonths)
	forecast, err := s.analytics.ProjectedSubscriptionSpend(r.Context(), owner, months)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, "failed to project subscription spend", err)
		return
	}
	writeJSON(w, http.StatusOK, forecast)
}

func (s *Server) handleMoneyLentAgeing(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	owner := ownerID(r)
	if owner == 0 {
		writeJSON(w, http.StatusOK, analytics.EmptyAgeingBuckets())
		return
	}

	buckets, err := s.analytics.MoneyLentAgeing(r.Context(), owner)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, "failed to compute ageing buckets", err)
		return
	}
	writeJSON(w, http.StatusOK, buckets)
}

func (s *Server) handleBudgetProgress(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	owner := ownerID(r)
	if owner == 0 {
		writeJSON(w, http.StatusOK, []analytics.BudgetStatus{})
		return
	}

	month := queryMonth(r, "month")
	statuses, err := s.analytics.BudgetProgress(r.Context(), owner, month)
	if err != nil {
		if errors.Is(err, core.ErrInvalidMonth) {
			s.writeError(w, r, http.StatusBadRequest, "invalid month, want YYYY-MM", err)
			return
		}
		s.writeError(w, r, http.StatusInternalServerError, "failed to compute budget progress", err)
		return
	}
	writeJSON(w, http.StatusOK, statuses)
}

func (s *Server) handleAccountBudgets(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	owner := ownerID(r)
	if owner == 0 {
		writeJSON(w, http.StatusOK, []analytics.AccountBudget{})
		return
	}

	month := r.URL.Query().Get("month")
	budgets, err := s.analytics.AccountBudgetsAndSpending(r.Context(), owner, month)
	if err != nil {
		if errors.Is(err, core.ErrInvalidMonth) {
			s.writeError(w, r, http.StatusBadRequest, "invalid month, want YYYY-MM", err)
			return
		}
		s.writeError(w, r, http.StatusInternalServerError, "failed to compute account budgets", err)
		return
	}
	writeJSON(w, http.StatusOK, budgets)
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	owner := ownerID(r)
	if owner == 0 {
		writeJSON(w, http.StatusOK, []core.Notification{})
		return
	}

	notifs, err := s.notifications.NotificationsByOwner(r.Context(), owner)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, "failed to list notifications", err)
		return
	}
	if notifs == nil {
		notifs = []core.Notification{}
	}
	writeJSON(w, http.StatusOK, notifs)
}

func requireGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusMethodNotAllowed)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "method not allowed"})
		return false
	}
	return true
}
