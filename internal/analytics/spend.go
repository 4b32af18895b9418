package analytics

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"paisa/internal/core"
)

// MonthTotal is one calendar month's spend.
type MonthTotal struct {
	Month string     `json:"month"` // YYYY-MM
	Total core.Money `json:"total"`
}

// CategoryTotal is one category's spend over a window. Transactions whose
// category no longer exists surface under a synthetic "Unknown" entry with
// CategoryID 0 so totals never silently lose transactions.
type CategoryTotal struct {
	CategoryID int64      `json:"categoryId"`
	Name       string     `json:"name"`
	Emoji      string     `json:"emoji"`
	Total      core.Money `json:"total"`
}

// UnknownCategoryName labels spend whose category was deleted.
const UnknownCategoryName = "Unknown"

// MonthlySpend returns exactly twelve entries, oldest first, ending at the
// current month. Months without transactions carry a zero total. The twelve
// per-month sums are independent snapshot reads and fan out concurrently.
func (s *Service) MonthlySpend(ctx context.Context, ownerID int64) ([]MonthTotal, error) {
	current := core.MonthStart(s.now())
	results := make([]MonthTotal, 12)

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < 12; i++ {
		i := i
		start := core.AddMonths(current, i-11)
		g.Go(func() error {
			txs, err := s.store.TransactionsInRange(ctx, ownerID, start, core.AddMonths(start, 1))
			if err != nil {
				return err
			}
			var total core.Money
			for _, t := range txs {
				total = total.Add(t.Amount)
			}
			results[i] = MonthTotal{Month: core.MonthKey(start), Total: total}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// CategoryBreakdown groups spend by category over [from, to). With no
// bounds the whole transaction history is summed; a single nil bound
// defaults to the epoch or now respectively. The result is a set, not a
// ranking; callers sort client-side if they need one.
func (s *Service) CategoryBreakdown(ctx context.Context, ownerID int64, from, to *time.Time) ([]CategoryTotal, error) {
	var txs []core.Transaction
	var err error
	if from == nil && to == nil {
		txs, err = s.store.TransactionsByOwner(ctx, ownerID)
	} else {
		windowFrom := time.UnixMilli(0).UTC()
		if from != nil {
			windowFrom = *from
		}
		windowTo := s.now()
		if to != nil {
			windowTo = *to
		}
		txs, err = s.store.TransactionsInRange(ctx, ownerID, windowFrom, windowTo)
	}
	if err != nil {
		return nil, err
	}
	cats, err := s.store.CategoriesByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]core.Category, len(cats))
	for _, c := range cats {
		byID[c.ID] = c
	}

	totals := make(map[int64]core.Money)
	for _, t := range txs {
		id := t.CategoryID
		if _, known := byID[id]; !known {
			id = 0 // orphaned category, kept under "Unknown"
		}
		totals[id] = totals[id].Add(t.Amount)
	}

	out := make([]CategoryTotal, 0, len(totals))
	for id, total := range totals {
		entry := CategoryTotal{CategoryID: id, Name: UnknownCategoryName, Total: total}
		if c, known := byID[id]; known {
			entry.Name = c.Name
			entry.Emoji = c.Emoji
		}
		out = append(out, entry)
	}
	return out, nil
}
