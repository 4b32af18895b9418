package reminder

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"paisa/internal/core"
	"paisa/internal/store/memory"
)

var testNow = time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)

func boolPtr(b bool) *bool { return &b }

// seedSubscription creates an owner with a subscription transaction dated
// tomorrow relative to testNow.
func seedSubscription(t *testing.T, st *memory.Store, ownerID int64, provider string, amountPaise int64, remind bool) int64 {
	t.Helper()
	cat := st.AddCategory(core.Category{OwnerID: ownerID, Name: "Subscription"})
	tomorrow := core.DayStart(testNow.AddDate(0, 0, 1)).Add(10 * time.Hour)
	tx := st.AddTransaction(core.Transaction{
		OwnerID:    ownerID,
		CategoryID: cat.ID,
		Amount:     core.Money{Paise: amountPaise},
		OccurredAt: tomorrow,
		Meta: core.Metadata{Subscription: &core.SubscriptionMeta{
			Provider: provider,
			Remind:   remind,
		}},
	})
	return tx.ID
}

type capturingPublisher struct {
	published []core.Notification
	err       error
}

func (p *capturingPublisher) PublishNotificationCreated(_ context.Context, n core.Notification) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, n)
	return nil
}

func TestRun_SubscriptionRenewal(t *testing.T) {
	st := memory.New()
	st.SetPreferences(1, core.PreferenceFlags{})
	seedSubscription(t, st, 1, "Netflix", 99900, true)

	pub := &capturingPublisher{}
	sched := NewScheduler(st, pub)
	stats, err := sched.Run(context.Background(), testNow)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Created != 1 {
		t.Fatalf("created = %d, want 1", stats.Created)
	}

	notifs, err := st.NotificationsByOwner(context.Background(), 1)
	if err != nil {
		t.Fatalf("NotificationsByOwner: %v", err)
	}
	if len(notifs) != 1 {
		t.Fatalf("got %d notifications, want 1", len(notifs))
	}
	n := notifs[0]
	if n.Type != core.NotificationRenewal {
		t.Errorf("type = %q, want renewal", n.Type)
	}
	want := "Reminder: Netflix subscription renewal tomorrow for ₹999.00"
	if n.Message != want {
		t.Errorf("message = %q, want %q", n.Message, want)
	}
	if len(pub.published) != 1 {
		t.Errorf("published %d events, want 1", len(pub.published))
	}
}

func TestRun_DueDateReminder(t *testing.T) {
	st := memory.New()
	st.SetPreferences(7, core.PreferenceFlags{})
	cat := st.AddCategory(core.Category{OwnerID: 7, Name: "Money Lent"})
	due := core.DayStart(testNow.AddDate(0, 0, 1))
	st.AddTransaction(core.Transaction{
		OwnerID:    7,
		CategoryID: cat.ID,
		Amount:     core.Money{Paise: 500000},
		OccurredAt: due.Add(8 * time.Hour),
		Meta: core.Metadata{MoneyLent: &core.MoneyLentMeta{
			Borrower: "Ravi",
			DueDate:  due,
		}},
	})

	sched := NewScheduler(st, nil)
	stats, err := sched.Run(context.Background(), testNow)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Created != 1 {
		t.Fatalf("created = %d, want 1", stats.Created)
	}
	notifs, _ := st.NotificationsByOwner(context.Background(), 7)
	want := "Reminder: ₹5000.00 due from Ravi tomorrow"
	if notifs[0].Message != want {
		t.Errorf("message = %q, want %q", notifs[0].Message, want)
	}
	if notifs[0].Type != core.NotificationDue {
		t.Errorf("type = %q, want due", notifs[0].Type)
	}
}

func TestRun_Idempotent(t *testing.T) {
	st := memory.New()
	st.SetPreferences(1, core.PreferenceFlags{})
	seedSubscription(t, st, 1, "Spotify", 11900, true)

	sched := NewScheduler(st, nil)
	ctx := context.Background()
	if _, err := sched.Run(ctx, testNow); err != nil {
		t.Fatalf("first run: %v", err)
	}
	stats, err := sched.Run(ctx, testNow.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if stats.Created != 0 {
		t.Errorf("second run created = %d, want 0", stats.Created)
	}
	if stats.Duplicates != 1 {
		t.Errorf("second run duplicates = %d, want 1", stats.Duplicates)
	}
	notifs, _ := st.NotificationsByOwner(ctx, 1)
	if len(notifs) != 1 {
		t.Errorf("got %d notifications after two runs, want 1", len(notifs))
	}
}

func TestRun_PreferenceGates(t *testing.T) {
	tests := []struct {
		name        string
		flags       core.PreferenceFlags
		wantCreated int
		wantSkipped int
	}{
		{"all defaults", core.PreferenceFlags{}, 1, 0},
		{"subscriptions disabled", core.PreferenceFlags{SubscriptionReminders: boolPtr(false)}, 0, 0},
		{"global disabled", core.PreferenceFlags{Global: boolPtr(false)}, 0, 1},
		{"due dates disabled leaves renewals on", core.PreferenceFlags{DueDateReminders: boolPtr(false)}, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := memory.New()
			st.SetPreferences(1, tt.flags)
			seedSubscription(t, st, 1, "Hotstar", 29900, true)

			stats, err := NewScheduler(st, nil).Run(context.Background(), testNow)
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			if stats.Created != tt.wantCreated {
				t.Errorf("created = %d, want %d", stats.Created, tt.wantCreated)
			}
			if stats.SkippedOwners != tt.wantSkipped {
				t.Errorf("skipped = %d, want %d", stats.SkippedOwners, tt.wantSkipped)
			}
		})
	}
}

func TestRun_RemindFlagOff(t *testing.T) {
	st := memory.New()
	st.SetPreferences(1, core.PreferenceFlags{})
	seedSubscription(t, st, 1, "Prime", 149900, false)

	stats, err := NewScheduler(st, nil).Run(context.Background(), testNow)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Created != 0 {
		t.Errorf("created = %d, want 0 when subscription has remind off", stats.Created)
	}
}

func TestRun_GenericCategoryIgnored(t *testing.T) {
	st := memory.New()
	st.SetPreferences(1, core.PreferenceFlags{})
	cat := st.AddCategory(core.Category{OwnerID: 1, Name: "Groceries"})
	st.AddTransaction(core.Transaction{
		OwnerID:    1,
		CategoryID: cat.ID,
		Amount:     core.Money{Paise: 45000},
		OccurredAt: core.DayStart(testNow.AddDate(0, 0, 1)).Add(time.Hour),
	})

	stats, err := NewScheduler(st, nil).Run(context.Background(), testNow)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Created != 0 {
		t.Errorf("created = %d, want 0 for generic categories", stats.Created)
	}
}

// failingStore wraps the memory store and fails transaction reads for one
// owner, to prove a bad owner does not abort the batch.
type failingStore struct {
	*memory.Store
	failOwner int64
}

func (f *failingStore) TransactionsInRange(ctx context.Context, ownerID int64, start, end time.Time) ([]core.Transaction, error) {
	if ownerID == f.failOwner {
		return nil, errors.New("boom")
	}
	return f.Store.TransactionsInRange(ctx, ownerID, start, end)
}

func TestRun_OwnerFailureIsolated(t *testing.T) {
	st := memory.New()
	st.SetPreferences(1, core.PreferenceFlags{})
	st.SetPreferences(2, core.PreferenceFlags{})
	seedSubscription(t, st, 1, "Netflix", 99900, true)
	seedSubscription(t, st, 2, "Spotify", 11900, true)

	sched := NewScheduler(&failingStore{Store: st, failOwner: 1}, nil)
	stats, err := sched.Run(context.Background(), testNow)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.FailedOwners != 1 {
		t.Errorf("failed owners = %d, want 1", stats.FailedOwners)
	}
	if stats.Created != 1 {
		t.Errorf("created = %d, want 1 from the healthy owner", stats.Created)
	}
}

func TestRun_PublishFailureDoesNotFailRun(t *testing.T) {
	st := memory.New()
	st.SetPreferences(1, core.PreferenceFlags{})
	seedSubscription(t, st, 1, "Netflix", 99900, true)

	pub := &capturingPublisher{err: errors.New("amqp down")}
	stats, err := NewScheduler(st, pub).Run(context.Background(), testNow)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Created != 1 {
		t.Errorf("created = %d, want 1 despite publish failure", stats.Created)
	}
}

func TestBuildNotification_MissingProvider(t *testing.T) {
	tx := core.Transaction{
		ID: 5, OwnerID: 1,
		Amount: core.Money{Paise: 19900},
		Meta:   core.Metadata{Subscription: &core.SubscriptionMeta{Remind: true}},
	}
	n, ok := buildNotification(tx, core.RoleSubscription, core.ResolvePreferences(core.PreferenceFlags{}))
	if !ok {
		t.Fatal("expected a notification")
	}
	if !strings.Contains(n.Message, "subscription renewal tomorrow") {
		t.Errorf("message = %q", n.Message)
	}
}
