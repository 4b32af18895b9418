// Package reminder implements the daily batch that turns transactions dated
// tomorrow into notification rows.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"paisa/internal/core"
	applog "paisa/internal/log"
	"paisa/internal/store"
)

// Store is everything a scheduler run reads and writes.
type Store interface {
	store.PreferenceReader
	store.TransactionReader
	store.CategoryReader
	store.NotificationStore
}

// Publisher emits notification-created events for downstream delivery
// workers. Publishing is best effort; a failure never fails the run.
type Publisher interface {
	PublishNotificationCreated(ctx context.Context, n core.Notification) error
}

// ErrRunInProgress is returned when a run overlaps a previous one that has
// not finished. Overlap is a scheduling fault; the dedup index makes it
// harmless, but we still refuse to double the load on the store.
var ErrRunInProgress = errors.New("reminder run already in progress")

// Stats summarizes one scheduler run.
type Stats struct {
	Owners        int
	SkippedOwners int
	FailedOwners  int
	Created       int
	Duplicates    int
}

type Scheduler struct {
	store     Store
	publisher Publisher
	running   atomic.Bool
}

// NewScheduler creates a scheduler. publisher may be nil when AMQP is not
// configured.
func NewScheduler(st Store, publisher Publisher) *Scheduler {
	return &Scheduler{store: st, publisher: publisher}
}

// Run processes one daily batch relative to now. Owners are processed
// sequentially; a failure while processing one owner is logged and does not
// abort the batch. Running twice on the same day creates nothing new: the
// store dedups on (transaction, remind date).
func (s *Scheduler) Run(ctx context.Context, now time.Time) (Stats, error) {
	var stats Stats
	if !s.running.CompareAndSwap(false, true) {
		return stats, ErrRunInProgress
	}
	defer s.running.Store(false)

	runID := uuid.NewString()
	logger := slog.With(applog.FieldComponent, applog.ComponentReminder, applog.FieldRunID, runID)

	// Tomorrow's window, computed once per run at local midnight.
	tomorrow := core.DayStart(now.AddDate(0, 0, 1))
	windowEnd := tomorrow.AddDate(0, 0, 1)
	remindDate := tomorrow.Format("2006-01-02")

	owners, err := s.store.OwnersWithPreferences(ctx)
	if err != nil {
		return stats, fmt.Errorf("list owners: %w", err)
	}
	stats.Owners = len(owners)

	logger.InfoContext(ctx, "Reminder run started",
		"owners", len(owners),
		"remind_date", remindDate)

	for _, ownerID := range owners {
		if err := s.processOwner(ctx, logger, ownerID, tomorrow, windowEnd, remindDate, &stats); err != nil {
			stats.FailedOwners++
			logger.ErrorContext(ctx, "Owner processing failed",
				applog.FieldOwnerID, ownerID,
				applog.FieldError, err)
		}
	}

	logger.InfoContext(ctx, "Reminder run complete",
		"created", stats.Created,
		"duplicates", stats.Duplicates,
		"skipped_owners", stats.SkippedOwners,
		"failed_owners", stats.FailedOwners)
	return stats, nil
}

func (s *Scheduler) processOwner(ctx context.Context, logger *slog.Logger, ownerID int64, windowStart, windowEnd time.Time, remindDate string, stats *Stats) error {
	flags, err := s.store.PreferencesByOwner(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("load preferences: %w", err)
	}
	prefs := core.ResolvePreferences(flags)
	if !prefs.Global {
		stats.SkippedOwners++
		return nil
	}

	txs, err := s.store.TransactionsInRange(ctx, ownerID, windowStart, windowEnd)
	if err != nil {
		return fmt.Errorf("load tomorrow's transactions: %w", err)
	}
	if len(txs) == 0 {
		return nil
	}

	cats, err := s.store.CategoriesByOwner(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("load categories: %w", err)
	}
	roles := make(map[int64]core.CategoryRole, len(cats))
	for _, c := range cats {
		roles[c.ID] = c.Role
	}

	for _, t := range txs {
		n, ok := buildNotification(t, roles[t.CategoryID], prefs)
		if !ok {
			continue
		}
		created, err := s.store.CreateNotificationOnce(ctx, n, remindDate)
		if err != nil {
			return fmt.Errorf("create notification for transaction %d: %w", t.ID, err)
		}
		if !created {
			stats.Duplicates++
			continue
		}
		stats.Created++
		logger.InfoContext(ctx, "Notification created",
			applog.FieldOwnerID, ownerID,
			applog.FieldTxID, t.ID,
			applog.FieldNotifType, string(n.Type))
		s.publish(ctx, logger, n)
	}
	return nil
}

// buildNotification dispatches on the category role and the owner's
// resolved preferences. Generic categories never produce reminders.
func buildNotification(t core.Transaction, role core.CategoryRole, prefs core.Preferences) (core.Notification, bool) {
	switch role {
	case core.RoleSubscription:
		sub := t.Meta.SubscriptionOrDefault()
		if !sub.Remind || !prefs.SubscriptionReminders {
			return core.Notification{}, false
		}
		return core.Notification{
			OwnerID:       t.OwnerID,
			Type:          core.NotificationRenewal,
			TransactionID: t.ID,
			Message:       fmt.Sprintf("Reminder: %s subscription renewal tomorrow for %s", sub.Provider, t.Amount.FormatRupees()),
			CreatedAt:     time.Now().UTC(),
		}, true
	case core.RoleMoneyLent:
		if !prefs.DueDateReminders {
			return core.Notification{}, false
		}
		ml := t.Meta.MoneyLentOrDefault()
		return core.Notification{
			OwnerID:       t.OwnerID,
			Type:          core.NotificationDue,
			TransactionID: t.ID,
			Message:       fmt.Sprintf("Reminder: %s due from %s tomorrow", t.Amount.FormatRupees(), ml.Borrower),
			CreatedAt:     time.Now().UTC(),
		}, true
	default:
		return core.Notification{}, false
	}
}

func (s *Scheduler) publish(ctx context.Context, logger *slog.Logger, n core.Notification) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishNotificationCreated(ctx, n); err != nil {
		logger.WarnContext(ctx, "Failed to publish notification event",
			applog.FieldTxID, n.TransactionID,
			applog.FieldError, err)
	}
}
