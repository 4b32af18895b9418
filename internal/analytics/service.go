// Package analytics implements the read-side aggregation queries: monthly
// spend, category breakdowns, recurring cost projections, receivable ageing
// and budget progress. Every query recomputes from the store; there is no
// caching layer, so results always reflect the latest committed writes.
package analytics

import (
	"time"

	"paisa/internal/store"
)

// Store is the read surface the service needs.
type Store interface {
	store.TransactionReader
	store.CategoryReader
	store.AccountReader
	store.BudgetReader
}

const (
	// DefaultRecurringMonths is the projection horizon when the caller
	// does not pass one.
	DefaultRecurringMonths = 3
	// DefaultForecastMonths is the subscription forecast horizon.
	DefaultForecastMonths = 12
)

type Service struct {
	store Store
	now   func() time.Time
}

func NewService(st Store) *Service {
	return &Service{store: st, now: time.Now}
}

// NewServiceWithClock fixes "now" for deterministic tests.
func NewServiceWithClock(st Store, now func() time.Time) *Service {
	return &Service{store: st, now: now}
}
