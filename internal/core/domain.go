package core

import (
	"errors"
	"strings"
	"time"
)

// CategoryRole tags a category with its analytics behavior. The role is
// resolved once when the category is created, so analytics dispatch on a
// stable tag rather than a display name the user could rename.
type CategoryRole string

const (
	RoleGeneric      CategoryRole = "generic"
	RoleSubscription CategoryRole = "subscription"
	RoleLoan         CategoryRole = "loan"
	RoleMoneyLent    CategoryRole = "money_lent"
)

// IsValid reports whether the role is one of the known variants.
func (r CategoryRole) IsValid() bool {
	switch r {
	case RoleGeneric, RoleSubscription, RoleLoan, RoleMoneyLent:
		return true
	default:
		return false
	}
}

// RoleForName maps the conventional built-in category names to their roles.
// Any other name yields RoleGeneric. Intended for category creation only;
// analytics never call this.
func RoleForName(name string) CategoryRole {
	switch strings.TrimSpace(name) {
	case "Subscription":
		return RoleSubscription
	case "EMI/Loan":
		return RoleLoan
	case "Money Lent":
		return RoleMoneyLent
	default:
		return RoleGeneric
	}
}

type NotificationType string

const (
	NotificationRenewal NotificationType = "renewal"
	NotificationDue     NotificationType = "due"
)

type (
	// Category is a user-defined tag on transactions. Name uniqueness per
	// owner is enforced at write time by the surrounding system.
	Category struct {
		ID      int64        `json:"id"`
		OwnerID int64        `json:"ownerId"`
		Name    string       `json:"name"`
		Emoji   string       `json:"emoji"`
		Role    CategoryRole `json:"role"`
	}

	// Account groups transactions and may declare a monthly budget ceiling.
	// A nil Budget means the account is excluded from budget views.
	Account struct {
		ID      int64  `json:"id"`
		OwnerID int64  `json:"ownerId"`
		Name    string `json:"name"`
		Type    string `json:"type"`
		Budget  *Money `json:"budget,omitempty"`
	}

	// Transaction is a dated, owner-scoped record. The analytics engine
	// never mutates transactions.
	Transaction struct {
		ID         int64     `json:"id"`
		OwnerID    int64     `json:"ownerId"`
		AccountID  int64     `json:"accountId"`
		CategoryID int64     `json:"categoryId"`
		Amount     Money     `json:"amount"`
		OccurredAt time.Time `json:"occurredAt"`
		Note       string    `json:"note,omitempty"`
		Meta       Metadata  `json:"metadata,omitempty"`
	}

	// Budget is a per-category ceiling for one month. At most one budget
	// exists per (owner, category, month); the store enforces this.
	Budget struct {
		ID         int64  `json:"id"`
		OwnerID    int64  `json:"ownerId"`
		CategoryID int64  `json:"categoryId"`
		Month      string `json:"month"` // YYYY-MM
		Amount     Money  `json:"amount"`
	}

	// Notification is a reminder row created by the scheduler.
	Notification struct {
		ID            int64            `json:"id"`
		OwnerID       int64            `json:"ownerId"`
		Type          NotificationType `json:"type"`
		TransactionID int64            `json:"transactionId"`
		Message       string           `json:"message"`
		IsRead        bool             `json:"isRead"`
		CreatedAt     time.Time        `json:"createdAt"`
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidMonth  = errors.New("invalid month, want YYYY-MM")
	ErrInvalidOwner  = errors.New("invalid owner")
)

const monthLayout = "2006-01"

// MonthKey formats an instant as its YYYY-MM calendar month.
func MonthKey(t time.Time) string {
	return t.Format(monthLayout)
}

// ParseMonth parses a YYYY-MM string into the UTC instant the month starts.
func ParseMonth(s string) (time.Time, error) {
	t, err := time.Parse(monthLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, ErrInvalidMonth
	}
	return t, nil
}

// MonthStart truncates an instant to the first of its month, keeping the
// location.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// AddMonths shifts a month-start instant by n calendar months. Safe because
// the day component is always 1, so no end-of-month normalization occurs.
func AddMonths(t time.Time, n int) time.Time {
	return time.Date(t.Year(), t.Month()+time.Month(n), 1, 0, 0, 0, 0, t.Location())
}

// MonthLabel renders a month-start instant for display, e.g. "Jan 2025".
func MonthLabel(t time.Time) string {
	return t.Format("Jan 2006")
}

// DayStart truncates an instant to local midnight.
func DayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
