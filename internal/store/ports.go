// Package store defines the ports the analytics engine and reminder
// scheduler read through. Implementations: storage (SQLite) and
// store/memory.
package store

import (
	"context"
	"time"

	"paisa/internal/core"
)

type (
	// TransactionReader provides indexed transaction lookups. Results come
	// back in arbitrary-but-stable order.
	TransactionReader interface {
		// TransactionsByOwner returns every transaction of one owner.
		TransactionsByOwner(ctx context.Context, ownerID int64) ([]core.Transaction, error)
		// TransactionsInRange returns transactions with from <= occurredAt < to.
		TransactionsInRange(ctx context.Context, ownerID int64, from, to time.Time) ([]core.Transaction, error)
		// TransactionsByCategory returns one category's transactions.
		TransactionsByCategory(ctx context.Context, ownerID, categoryID int64) ([]core.Transaction, error)
	}

	CategoryReader interface {
		CategoriesByOwner(ctx context.Context, ownerID int64) ([]core.Category, error)
	}

	AccountReader interface {
		AccountsByOwner(ctx context.Context, ownerID int64) ([]core.Account, error)
	}

	BudgetReader interface {
		// BudgetsForMonth returns the owner's budgets for a YYYY-MM month.
		BudgetsForMonth(ctx context.Context, ownerID int64, month string) ([]core.Budget, error)
	}

	// PreferenceReader backs the scheduler's owner collection step. Owners
	// without a preferences row are never returned and never reminded.
	PreferenceReader interface {
		OwnersWithPreferences(ctx context.Context) ([]int64, error)
		// PreferencesByOwner returns the stored tri-state flags; a missing
		// row yields zero flags (which resolve to all-enabled).
		PreferencesByOwner(ctx context.Context, ownerID int64) (core.PreferenceFlags, error)
	}

	// NotificationStore is the scheduler's write side. CreateNotificationOnce
	// is keyed on (transactionID, remindDate) so repeated runs on the same
	// day insert nothing new.
	NotificationStore interface {
		CreateNotificationOnce(ctx context.Context, n core.Notification, remindDate string) (created bool, err error)
		NotificationsByOwner(ctx context.Context, ownerID int64) ([]core.Notification, error)
	}
)

// Store is the full surface a backend provides.
type Store interface {
	TransactionReader
	CategoryReader
	AccountReader
	BudgetReader
	PreferenceReader
	NotificationStore
	Close() error
}
