package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"paisa/internal/core"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(filepath.Join(t.TempDir(), "paisa.db"))
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestRepository_TransactionRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	cat, err := repo.CreateCategory(ctx, core.Category{OwnerID: 1, Name: "Subscription", Emoji: "🔁"})
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	if cat.Role != core.RoleSubscription {
		t.Fatalf("role = %q, want subscription", cat.Role)
	}

	occurred := time.Date(2025, 4, 10, 9, 30, 0, 0, time.UTC)
	tx, err := repo.CreateTransaction(ctx, core.Transaction{
		OwnerID:    1,
		CategoryID: cat.ID,
		Amount:     core.Money{Paise: 99900},
		OccurredAt: occurred,
		Note:       "netflix",
		Meta: core.Metadata{
			Subscription: &core.SubscriptionMeta{Provider: "Netflix", Remind: true},
		},
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	got, err := repo.TransactionsByCategory(ctx, 1, cat.ID)
	if err != nil {
		t.Fatalf("TransactionsByCategory: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d transactions, want 1", len(got))
	}
	if got[0].ID != tx.ID || got[0].Amount.Paise != 99900 || !got[0].OccurredAt.Equal(occurred) {
		t.Fatalf("round trip mismatch: %+v", got[0])
	}
	sub := got[0].Meta.SubscriptionOrDefault()
	if sub.Provider != "Netflix" || !sub.Remind || sub.Frequency != core.FrequencyMonthly {
		t.Fatalf("metadata mismatch: %+v", sub)
	}
}

func TestRepository_TransactionsInRangeBoundaries(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	day := func(d int) time.Time { return time.Date(2025, 5, d, 0, 0, 0, 0, time.UTC) }
	for _, d := range []int{1, 2, 3} {
		if _, err := repo.CreateTransaction(ctx, core.Transaction{
			OwnerID: 7, Amount: core.Money{Paise: 100}, OccurredAt: day(d),
		}); err != nil {
			t.Fatalf("CreateTransaction: %v", err)
		}
	}

	got, err := repo.TransactionsInRange(ctx, 7, day(2), day(3))
	if err != nil {
		t.Fatalf("TransactionsInRange: %v", err)
	}
	if len(got) != 1 || !got[0].OccurredAt.Equal(day(2)) {
		t.Fatalf("half-open window broken: got %d rows", len(got))
	}
}

func TestRepository_BudgetConstraints(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	b := core.Budget{OwnerID: 1, CategoryID: 3, Month: "2024-12", Amount: core.Money{Paise: 1000000}}
	if _, err := repo.CreateBudget(ctx, b); err != nil {
		t.Fatalf("CreateBudget: %v", err)
	}
	if _, err := repo.CreateBudget(ctx, b); err == nil {
		t.Fatal("duplicate (owner, category, month) budget should fail")
	}
	if _, err := repo.CreateBudget(ctx, core.Budget{OwnerID: 1, CategoryID: 4, Month: "2024-12"}); err == nil {
		t.Fatal("zero-amount budget should be rejected at creation")
	}
	if _, err := repo.CreateBudget(ctx, core.Budget{OwnerID: 1, CategoryID: 5, Month: "dec", Amount: core.Money{Paise: 1}}); err == nil {
		t.Fatal("malformed month should be rejected")
	}
}

func TestRepository_NotificationDedup(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	n := core.Notification{
		OwnerID:       1,
		Type:          core.NotificationRenewal,
		TransactionID: 99,
		Message:       "Reminder: Netflix subscription renewal tomorrow for ₹999.00",
		CreatedAt:     time.Now().UTC(),
	}
	created, err := repo.CreateNotificationOnce(ctx, n, "2025-05-02")
	if err != nil || !created {
		t.Fatalf("first insert: created=%v err=%v", created, err)
	}
	created, err = repo.CreateNotificationOnce(ctx, n, "2025-05-02")
	if err != nil {
		t.Fatalf("second insert errored: %v", err)
	}
	if created {
		t.Fatal("second insert for same (transaction, day) must be ignored")
	}

	all, err := repo.NotificationsByOwner(ctx, 1)
	if err != nil {
		t.Fatalf("NotificationsByOwner: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("stored notifications = %d, want 1", len(all))
	}
}

func TestRepository_Preferences(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	// No row: zero flags, which resolve to all-enabled.
	flags, err := repo.PreferencesByOwner(ctx, 42)
	if err != nil {
		t.Fatalf("PreferencesByOwner: %v", err)
	}
	if !core.ResolvePreferences(flags).Global {
		t.Fatal("missing preferences row should resolve to enabled")
	}

	off := false
	if err := repo.UpsertPreferences(ctx, 42, core.PreferenceFlags{SubscriptionReminders: &off}); err != nil {
		t.Fatalf("UpsertPreferences: %v", err)
	}

	owners, err := repo.OwnersWithPreferences(ctx)
	if err != nil {
		t.Fatalf("OwnersWithPreferences: %v", err)
	}
	if len(owners) != 1 || owners[0] != 42 {
		t.Fatalf("owners = %v, want [42]", owners)
	}

	flags, err = repo.PreferencesByOwner(ctx, 42)
	if err != nil {
		t.Fatalf("PreferencesByOwner: %v", err)
	}
	prefs := core.ResolvePreferences(flags)
	if prefs.SubscriptionReminders || !prefs.Global || !prefs.DueDateReminders {
		t.Fatalf("resolved prefs = %+v", prefs)
	}
}
