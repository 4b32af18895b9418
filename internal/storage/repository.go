// Package storage implements the store ports over SQLite.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"paisa/internal/core"
	applog "paisa/internal/log"

	_ "modernc.org/sqlite"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const transactionColumns = "id, owner_id, account_id, category_id, amount_paise, occurred_at, note, metadata"

func scanTransactions(rows *sql.Rows) ([]core.Transaction, error) {
	defer rows.Close()
	var out []core.Transaction
	for rows.Next() {
		var (
			t      core.Transaction
			paise  int64
			millis int64
			meta   sql.NullString
		)
		if err := rows.Scan(&t.ID, &t.OwnerID, &t.AccountID, &t.CategoryID, &paise, &millis, &t.Note, &meta); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Amount = core.Money{Paise: paise}
		t.OccurredAt = time.UnixMilli(millis).UTC()
		if meta.Valid {
			t.Meta = core.DecodeMetadata([]byte(meta.String))
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *Repository) TransactionsByOwner(ctx context.Context, ownerID int64) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE owner_id = ? ORDER BY id", ownerID)
	if err != nil {
		return nil, fmt.Errorf("query transactions by owner: %w", err)
	}
	return scanTransactions(rows)
}

func (r *Repository) TransactionsInRange(ctx context.Context, ownerID int64, from, to time.Time) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE owner_id = ? AND occurred_at >= ? AND occurred_at < ? ORDER BY id",
		ownerID, from.UnixMilli(), to.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("query transactions in range: %w", err)
	}
	return scanTransactions(rows)
}

func (r *Repository) TransactionsByCategory(ctx context.Context, ownerID, categoryID int64) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE owner_id = ? AND category_id = ? ORDER BY id",
		ownerID, categoryID)
	if err != nil {
		return nil, fmt.Errorf("query transactions by category: %w", err)
	}
	return scanTransactions(rows)
}

func (r *Repository) CategoriesByOwner(ctx context.Context, ownerID int64) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, owner_id, name, emoji, role FROM categories WHERE owner_id = ? ORDER BY id", ownerID)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()
	var out []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Name, &c.Emoji, &c.Role); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repository) AccountsByOwner(ctx context.Context, ownerID int64) ([]core.Account, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, owner_id, name, type, budget_paise FROM accounts WHERE owner_id = ? ORDER BY id", ownerID)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()
	var out []core.Account
	for rows.Next() {
		var (
			a      core.Account
			budget sql.NullInt64
		)
		if err := rows.Scan(&a.ID, &a.OwnerID, &a.Name, &a.Type, &budget); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		if budget.Valid {
			a.Budget = &core.Money{Paise: budget.Int64}
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *Repository) BudgetsForMonth(ctx context.Context, ownerID int64, month string) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, owner_id, category_id, month, amount_paise FROM budgets WHERE owner_id = ? AND month = ? ORDER BY id",
		ownerID, month)
	if err != nil {
		return nil, fmt.Errorf("query budgets: %w", err)
	}
	defer rows.Close()
	var out []core.Budget
	for rows.Next() {
		var (
			b     core.Budget
			paise int64
		)
		if err := rows.Scan(&b.ID, &b.OwnerID, &b.CategoryID, &b.Month, &paise); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		b.Amount = core.Money{Paise: paise}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *Repository) OwnersWithPreferences(ctx context.Context) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT owner_id FROM notification_preferences ORDER BY owner_id")
	if err != nil {
		return nil, fmt.Errorf("query owners with preferences: %w", err)
	}
	defer rows.Close()
	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan owner id: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (r *Repository) PreferencesByOwner(ctx context.Context, ownerID int64) (core.PreferenceFlags, error) {
	var global, sub, due sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		"SELECT global_enabled, subscription_reminders, due_date_reminders FROM notification_preferences WHERE owner_id = ?",
		ownerID).Scan(&global, &sub, &due)
	if err == sql.ErrNoRows {
		// Missing row resolves to all-enabled downstream
		return core.PreferenceFlags{}, nil
	}
	if err != nil {
		return core.PreferenceFlags{}, fmt.Errorf("query preferences: %w", err)
	}
	return core.PreferenceFlags{
		Global:                nullableBool(global),
		SubscriptionReminders: nullableBool(sub),
		DueDateReminders:      nullableBool(due),
	}, nil
}

func nullableBool(v sql.NullInt64) *bool {
	if !v.Valid {
		return nil
	}
	b := v.Int64 != 0
	return &b
}

// CreateNotificationOnce inserts a notification unless one already exists
// for the same (transaction, remind date). The unique index makes this an
// atomic upsert, so concurrent scheduler runs cannot double-insert.
func (r *Repository) CreateNotificationOnce(ctx context.Context, n core.Notification, remindDate string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO notifications (owner_id, type, transaction_id, message, is_read, remind_date, created_at)
		 VALUES (?, ?, ?, ?, 0, ?, ?)`,
		n.OwnerID, string(n.Type), n.TransactionID, n.Message, remindDate, n.CreatedAt.UnixMilli())
	if err != nil {
		return false, fmt.Errorf("insert notification: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

func (r *Repository) NotificationsByOwner(ctx context.Context, ownerID int64) ([]core.Notification, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, owner_id, type, transaction_id, message, is_read, created_at FROM notifications WHERE owner_id = ? ORDER BY id",
		ownerID)
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}
	defer rows.Close()
	var out []core.Notification
	for rows.Next() {
		var (
			n      core.Notification
			typ    string
			isRead int64
			millis int64
		)
		if err := rows.Scan(&n.ID, &n.OwnerID, &typ, &n.TransactionID, &n.Message, &isRead, &millis); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.Type = core.NotificationType(typ)
		n.IsRead = isRead != 0
		n.CreatedAt = time.UnixMilli(millis).UTC()
		out = append(out, n)
	}
	return out, rows.Err()
}

// Write-side helpers below serve the surrounding CRUD plumbing and tests.
// The analytics engine itself only reads.

func (r *Repository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	if !c.Role.IsValid() {
		// Role is resolved exactly once, at creation time.
		c.Role = core.RoleForName(c.Name)
	}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO categories (owner_id, name, emoji, role) VALUES (?, ?, ?, ?)",
		c.OwnerID, c.Name, c.Emoji, string(c.Role))
	if err != nil {
		return core.Category{}, fmt.Errorf("insert category: %w", err)
	}
	c.ID, err = res.LastInsertId()
	if err != nil {
		return core.Category{}, fmt.Errorf("category id: %w", err)
	}
	return c, nil
}

func (r *Repository) CreateAccount(ctx context.Context, a core.Account) (core.Account, error) {
	var budget any
	if a.Budget != nil {
		budget = a.Budget.Paise
	}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO accounts (owner_id, name, type, budget_paise) VALUES (?, ?, ?, ?)",
		a.OwnerID, a.Name, a.Type, budget)
	if err != nil {
		return core.Account{}, fmt.Errorf("insert account: %w", err)
	}
	a.ID, err = res.LastInsertId()
	if err != nil {
		return core.Account{}, fmt.Errorf("account id: %w", err)
	}
	return a, nil
}

func (r *Repository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	var meta any
	if encoded := t.Meta.Encode(); encoded != nil {
		meta = string(encoded)
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (owner_id, account_id, category_id, amount_paise, occurred_at, note, metadata)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.OwnerID, t.AccountID, t.CategoryID, t.Amount.Paise, t.OccurredAt.UnixMilli(), t.Note, meta)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	t.ID, err = res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction id: %w", err)
	}
	slog.InfoContext(ctx, "Transaction saved",
		applog.FieldTxID, t.ID,
		applog.FieldOwnerID, t.OwnerID,
		applog.FieldAmount, t.Amount.Paise)
	return t, nil
}

func (r *Repository) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	if _, err := core.ParseMonth(b.Month); err != nil {
		return core.Budget{}, err
	}
	if b.Amount.IsZero() {
		// Rejecting zero ceilings here keeps the progress calculator away
		// from division by zero in the normal path.
		return core.Budget{}, core.ErrInvalidAmount
	}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO budgets (owner_id, category_id, month, amount_paise) VALUES (?, ?, ?, ?)",
		b.OwnerID, b.CategoryID, b.Month, b.Amount.Paise)
	if err != nil {
		return core.Budget{}, fmt.Errorf("insert budget: %w", err)
	}
	b.ID, err = res.LastInsertId()
	if err != nil {
		return core.Budget{}, fmt.Errorf("budget id: %w", err)
	}
	return b, nil
}

func (r *Repository) UpsertPreferences(ctx context.Context, ownerID int64, f core.PreferenceFlags) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO notification_preferences (owner_id, global_enabled, subscription_reminders, due_date_reminders)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (owner_id) DO UPDATE SET
		     global_enabled = excluded.global_enabled,
		     subscription_reminders = excluded.subscription_reminders,
		     due_date_reminders = excluded.due_date_reminders`,
		ownerID, boolValue(f.Global), boolValue(f.SubscriptionReminders), boolValue(f.DueDateReminders))
	if err != nil {
		return fmt.Errorf("upsert preferences: %w", err)
	}
	return nil
}

func boolValue(b *bool) any {
	if b == nil {
		return nil
	}
	if *b {
		return int64(1)
	}
	return int64(0)
}
