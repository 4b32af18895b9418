// Package memory provides an in-memory store implementation used by tests
// and the memory backend.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"paisa/internal/core"
)

// Store keeps all records in process. Safe for concurrent use; the
// analytics fan-out queries it from multiple goroutines.
type Store struct {
	mu            sync.Mutex
	nextID        int64
	categories    []core.Category
	accounts      []core.Account
	transactions  []core.Transaction
	budgets       []core.Budget
	prefs         map[int64]core.PreferenceFlags
	prefOrder     []int64
	notifications []core.Notification
	notified      map[string]struct{} // dedup key: "txID|remindDate"
}

func New() *Store {
	return &Store{
		prefs:    make(map[int64]core.PreferenceFlags),
		notified: make(map[string]struct{}),
	}
}

func (s *Store) nextIDLocked() int64 {
	s.nextID++
	return s.nextID
}

// AddCategory stores a category, resolving its role from the name when the
// caller left the role unset, and returns the record with its ID assigned.
func (s *Store) AddCategory(c core.Category) core.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !c.Role.IsValid() {
		c.Role = core.RoleForName(c.Name)
	}
	c.ID = s.nextIDLocked()
	s.categories = append(s.categories, c)
	return c
}

func (s *Store) AddAccount(a core.Account) core.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = s.nextIDLocked()
	s.accounts = append(s.accounts, a)
	return a
}

func (s *Store) AddTransaction(t core.Transaction) core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = s.nextIDLocked()
	s.transactions = append(s.transactions, t)
	return t
}

// AddBudget enforces the one-budget-per-(owner, category, month) invariant
// the external accessor guarantees.
func (s *Store) AddBudget(b core.Budget) (core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.budgets {
		if existing.OwnerID == b.OwnerID && existing.CategoryID == b.CategoryID && existing.Month == b.Month {
			return core.Budget{}, fmt.Errorf("budget already exists for category %d in %s", b.CategoryID, b.Month)
		}
	}
	b.ID = s.nextIDLocked()
	s.budgets = append(s.budgets, b)
	return b, nil
}

func (s *Store) SetPreferences(ownerID int64, flags core.PreferenceFlags) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, seen := s.prefs[ownerID]; !seen {
		s.prefOrder = append(s.prefOrder, ownerID)
	}
	s.prefs[ownerID] = flags
}

func (s *Store) TransactionsByOwner(_ context.Context, ownerID int64) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Transaction
	for _, t := range s.transactions {
		if t.OwnerID == ownerID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *Store) TransactionsInRange(_ context.Context, ownerID int64, from, to time.Time) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Transaction
	for _, t := range s.transactions {
		if t.OwnerID != ownerID {
			continue
		}
		if t.OccurredAt.Before(from) || !t.OccurredAt.Before(to) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (s *Store) TransactionsByCategory(_ context.Context, ownerID, categoryID int64) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Transaction
	for _, t := range s.transactions {
		if t.OwnerID == ownerID && t.CategoryID == categoryID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *Store) CategoriesByOwner(_ context.Context, ownerID int64) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Category
	for _, c := range s.categories {
		if c.OwnerID == ownerID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Store) AccountsByOwner(_ context.Context, ownerID int64) ([]core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Account
	for _, a := range s.accounts {
		if a.OwnerID == ownerID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *Store) BudgetsForMonth(_ context.Context, ownerID int64, month string) ([]core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Budget
	for _, b := range s.budgets {
		if b.OwnerID == ownerID && b.Month == month {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *Store) OwnersWithPreferences(_ context.Context) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int64(nil), s.prefOrder...), nil
}

func (s *Store) PreferencesByOwner(_ context.Context, ownerID int64) (core.PreferenceFlags, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs[ownerID], nil
}

func (s *Store) CreateNotificationOnce(_ context.Context, n core.Notification, remindDate string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := fmt.Sprintf("%d|%s", n.TransactionID, remindDate)
	if _, dup := s.notified[key]; dup {
		return false, nil
	}
	s.notified[key] = struct{}{}
	n.ID = s.nextIDLocked()
	s.notifications = append(s.notifications, n)
	return true, nil
}

func (s *Store) NotificationsByOwner(_ context.Context, ownerID int64) ([]core.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Notification
	for _, n := range s.notifications {
		if n.OwnerID == ownerID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (s *Store) Close() error { return nil }
