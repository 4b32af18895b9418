package analytics

import (
	"context"
	"encoding/json"
	"math"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"paisa/internal/core"
)

// BudgetStatus is a budget joined with the month's actual spend.
//
// Progress is spent/budgeted. Zero budgets are rejected at creation time,
// but a zero that slips through yields 0 when nothing was spent and +Inf
// otherwise, never a panic. JSON renders a non-finite progress as null.
type BudgetStatus struct {
	BudgetID   int64      `json:"budgetId"`
	CategoryID int64      `json:"categoryId"`
	Budgeted   core.Money `json:"budgeted"`
	Spent      core.Money `json:"spent"`
	Progress   float64    `json:"progress"`
}

func (b BudgetStatus) MarshalJSON() ([]byte, error) {
	type alias BudgetStatus
	payload := struct {
		alias
		Progress any `json:"progress"`
	}{alias: alias(b)}
	if math.IsInf(b.Progress, 0) || math.IsNaN(b.Progress) {
		payload.Progress = nil
	} else {
		payload.Progress = b.Progress
	}
	return json.Marshal(payload)
}

// AccountBudget is the per-account budget view for one month.
type AccountBudget struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	Type       string     `json:"type"`
	Budget     core.Money `json:"budget"`
	Spent      core.Money `json:"spent"`
	Remaining  core.Money `json:"remaining"`
	Percentage int        `json:"percentage"`
}

// BudgetProgress joins the owner's budgets for a YYYY-MM month against that
// month's per-category spend. Per-budget sums are independent reads and fan
// out concurrently; the response is complete or an error, never partial.
func (s *Service) BudgetProgress(ctx context.Context, ownerID int64, month string) ([]BudgetStatus, error) {
	monthStart, err := core.ParseMonth(month)
	if err != nil {
		return nil, err
	}
	monthEnd := core.AddMonths(monthStart, 1)

	budgets, err := s.store.BudgetsForMonth(ctx, ownerID, month)
	if err != nil {
		return nil, err
	}

	results := make([]BudgetStatus, len(budgets))
	g, ctx := errgroup.WithContext(ctx)
	for i, b := range budgets {
		i, b := i, b
		g.Go(func() error {
			txs, err := s.store.TransactionsByCategory(ctx, ownerID, b.CategoryID)
			if err != nil {
				return err
			}
			var spent core.Money
			for _, t := range txs {
				if t.OccurredAt.Before(monthStart) || !t.OccurredAt.Before(monthEnd) {
					continue
				}
				spent = spent.Add(t.Amount)
			}
			results[i] = BudgetStatus{
				BudgetID:   b.ID,
				CategoryID: b.CategoryID,
				Budgeted:   b.Amount,
				Spent:      spent,
				Progress:   progressRatio(spent, b.Amount),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func progressRatio(spent, budgeted core.Money) float64 {
	if budgeted.IsZero() {
		if spent.IsZero() {
			return 0
		}
		return math.Inf(1)
	}
	return float64(spent.Paise) / float64(budgeted.Paise)
}

// AccountBudgetsAndSpending is the per-account counterpart for a month
// (current month when empty). Accounts without a budget ceiling are
// excluded entirely, not zero-filled; the result is sorted descending by
// percentage used.
func (s *Service) AccountBudgetsAndSpending(ctx context.Context, ownerID int64, month string) ([]AccountBudget, error) {
	var monthStart time.Time
	if month == "" {
		monthStart = core.MonthStart(s.now())
	} else {
		var err error
		monthStart, err = core.ParseMonth(month)
		if err != nil {
			return nil, err
		}
	}
	monthEnd := core.AddMonths(monthStart, 1)

	accounts, err := s.store.AccountsByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	txs, err := s.store.TransactionsInRange(ctx, ownerID, monthStart, monthEnd)
	if err != nil {
		return nil, err
	}

	spentByAccount := make(map[int64]core.Money)
	for _, t := range txs {
		spentByAccount[t.AccountID] = spentByAccount[t.AccountID].Add(t.Amount)
	}

	out := make([]AccountBudget, 0, len(accounts))
	for _, a := range accounts {
		if a.Budget == nil || a.Budget.IsZero() {
			continue
		}
		spent := spentByAccount[a.ID]
		out = append(out, AccountBudget{
			ID:         a.ID,
			Name:       a.Name,
			Type:       a.Type,
			Budget:     *a.Budget,
			Spent:      spent,
			Remaining:  a.Budget.Sub(spent),
			Percentage: int(math.Round(float64(spent.Paise) / float64(a.Budget.Paise) * 100)),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Percentage > out[j].Percentage })
	return out, nil
}
