package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"paisa/internal/analytics"
	"paisa/internal/core"
	"paisa/internal/log"
	"paisa/internal/store/memory"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestServer(st *memory.Store) *Server {
	svc := analytics.NewServiceWithClock(st, func() time.Time { return testNow })
	logger := log.New(log.DefaultConfig())
	return NewServer(":0", svc, st, logger, 3, 12)
}

func doRequest(t *testing.T, s *Server, method, target string, owner int64) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	if owner != 0 {
		req.Header.Set(ownerHeader, "1")
	}
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func seedSpend(st *memory.Store) {
	cat := st.AddCategory(core.Category{OwnerID: 1, Name: "Groceries"})
	st.AddTransaction(core.Transaction{
		OwnerID:    1,
		CategoryID: cat.ID,
		Amount:     core.Money{Paise: 45000},
		OccurredAt: testNow.AddDate(0, 0, -1),
	})
}

func TestMonthlySpend_Unauthenticated(t *testing.T) {
	s := newTestServer(memory.New())

	rec := doRequest(t, s, http.MethodGet, "/api/analytics/monthly-spend", 0)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body []analytics.MonthTotal
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body) != 0 {
		t.Errorf("got %d entries, want empty result for unauthenticated request", len(body))
	}
}

func TestMonthlySpend(t *testing.T) {
	st := memory.New()
	seedSpend(st)
	s := newTestServer(st)

	rec := doRequest(t, s, http.MethodGet, "/api/analytics/monthly-spend", 1)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body []analytics.MonthTotal
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body) != 12 {
		t.Fatalf("got %d months, want 12", len(body))
	}
	last := body[len(body)-1]
	if last.Month != "2025-06" || last.Total.Paise != 45000 {
		t.Errorf("last month = %+v, want 2025-06 / 45000", last)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(memory.New())

	rec := doRequest(t, s, http.MethodPost, "/api/analytics/monthly-spend", 1)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
	if allow := rec.Header().Get("Allow"); allow != http.MethodGet {
		t.Errorf("Allow = %q, want GET", allow)
	}
}

func TestMoneyLentAgeing_EmptyBucketsAreArrays(t *testing.T) {
	s := newTestServer(memory.New())

	rec := doRequest(t, s, http.MethodGet, "/api/analytics/money-lent-ageing", 1)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, key := range []string{"overdue0_30", "overdue31_60", "overdue60_plus"} {
		if string(raw[key]) != "[]" {
			t.Errorf("%s = %s, want []", key, raw[key])
		}
	}
}

func TestBudgetProgress_InvalidMonth(t *testing.T) {
	s := newTestServer(memory.New())

	rec := doRequest(t, s, http.MethodGet, "/api/analytics/budget-progress?month=June", 1)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestBudgetProgress_DefaultsToCurrentMonth(t *testing.T) {
	st := memory.New()
	cat := st.AddCategory(core.Category{OwnerID: 1, Name: "Groceries"})
	if _, err := st.AddBudget(core.Budget{OwnerID: 1, CategoryID: cat.ID, Amount: core.Money{Paise: 1000000}, Month: time.Now().UTC().Format("2006-01")}); err != nil {
		t.Fatalf("AddBudget: %v", err)
	}
	s := newTestServer(st)

	rec := doRequest(t, s, http.MethodGet, "/api/analytics/budget-progress", 1)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var body []analytics.BudgetStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body) != 1 {
		t.Errorf("got %d budgets, want 1", len(body))
	}
}

func TestSubscriptionForecast_MonthsParam(t *testing.T) {
	st := memory.New()
	cat := st.AddCategory(core.Category{OwnerID: 1, Name: "Subscription"})
	st.AddTransaction(core.Transaction{
		OwnerID:    1,
		CategoryID: cat.ID,
		Amount:     core.Money{Paise: 99900},
		OccurredAt: testNow.AddDate(0, -1, 0),
		Meta:       core.Metadata{Subscription: &core.SubscriptionMeta{Provider: "Netflix"}},
	})
	s := newTestServer(st)

	rec := doRequest(t, s, http.MethodGet, "/api/analytics/subscription-forecast?months=4", 1)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body []analytics.SubscriptionForecast
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body) != 4 {
		t.Fatalf("got %d months, want 4", len(body))
	}
	if body[0].Month != "2025-06" || body[0].Amount.Paise != 99900 {
		t.Errorf("first month = %+v", body[0])
	}
}

func TestNotifications(t *testing.T) {
	st := memory.New()
	ctx := httptest.NewRequest(http.MethodGet, "/", nil).Context()
	if _, err := st.CreateNotificationOnce(ctx, core.Notification{
		OwnerID: 1, Type: core.NotificationRenewal, TransactionID: 9, Message: "hello",
	}, "2025-06-16"); err != nil {
		t.Fatalf("seed notification: %v", err)
	}
	s := newTestServer(st)

	rec := doRequest(t, s, http.MethodGet, "/api/notifications", 1)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body []core.Notification
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body) != 1 || body[0].Message != "hello" {
		t.Errorf("body = %+v", body)
	}
}

func TestHealthz(t *testing.T) {
	s := newTestServer(memory.New())

	rec := doRequest(t, s, http.MethodGet, "/healthz", 0)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %v, want ok", body["status"])
	}
}

func TestReadyz(t *testing.T) {
	s := newTestServer(memory.New())

	rec := doRequest(t, s, http.MethodGet, "/readyz", 0)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}
