package analytics

import (
	"context"
	"time"

	"paisa/internal/core"
)

// AgeingEntry is one overdue receivable.
type AgeingEntry struct {
	ID          int64      `json:"id"`
	Borrower    string     `json:"borrowerName"`
	Amount      core.Money `json:"amount"`
	DueDate     time.Time  `json:"dueDate"`
	DaysOverdue int        `json:"daysOverdue"`
}

// AgeingBuckets classifies overdue receivables by days past due. Buckets
// are always non-nil, empty when nothing qualifies.
type AgeingBuckets struct {
	Overdue0To30  []AgeingEntry `json:"overdue0_30"`
	Overdue31To60 []AgeingEntry `json:"overdue31_60"`
	Overdue60Plus []AgeingEntry `json:"overdue60_plus"`
}

// EmptyAgeingBuckets returns buckets with all three slices allocated, so
// they serialize as [] rather than null.
func EmptyAgeingBuckets() AgeingBuckets {
	return AgeingBuckets{
		Overdue0To30:  []AgeingEntry{},
		Overdue31To60: []AgeingEntry{},
		Overdue60Plus: []AgeingEntry{},
	}
}

// MoneyLentAgeing buckets money-lent transactions by how many days past
// their due date they are: 1-30, 31-60, 61+. A transaction without a due
// date never qualifies, and "due today" is not overdue.
func (s *Service) MoneyLentAgeing(ctx context.Context, ownerID int64) (AgeingBuckets, error) {
	buckets := EmptyAgeingBuckets()

	txs, err := s.transactionsByRole(ctx, ownerID, core.RoleMoneyLent)
	if err != nil {
		return buckets, err
	}

	now := s.now()
	for _, t := range txs {
		if !t.Meta.HasDueDate() {
			continue
		}
		ml := t.Meta.MoneyLentOrDefault()
		days := int(now.Sub(ml.DueDate) / (24 * time.Hour))
		if days <= 0 {
			continue
		}
		entry := AgeingEntry{
			ID:          t.ID,
			Borrower:    ml.Borrower,
			Amount:      t.Amount,
			DueDate:     ml.DueDate,
			DaysOverdue: days,
		}
		switch {
		case days <= 30:
			buckets.Overdue0To30 = append(buckets.Overdue0To30, entry)
		case days <= 60:
			buckets.Overdue31To60 = append(buckets.Overdue31To60, entry)
		default:
			buckets.Overdue60Plus = append(buckets.Overdue60Plus, entry)
		}
	}
	return buckets, nil
}
