package analytics

import (
	"context"
	"time"

	"paisa/internal/core"
)

// RecurringForecast is one projected month of recurring cost. Subscriptions
// are the frequency-scaled subscription amounts; Loans is the sum of EMI
// amounts, which recur every month regardless of the transaction date.
type RecurringForecast struct {
	Month         string     `json:"month"` // YYYY-MM
	Subscriptions core.Money `json:"subscriptions"`
	Loans         core.Money `json:"loans"`
	Total         core.Money `json:"total"`
}

// SubscriptionForecast is the subscription-only per-month view. Count is
// the flat number of subscription transactions, not a count of recurrences.
type SubscriptionForecast struct {
	Month      string     `json:"month"`
	MonthLabel string     `json:"monthLabel"`
	Amount     core.Money `json:"amount"`
	Count      int        `json:"count"`
}

// ProjectedRecurring estimates recurring cost for the next monthsAhead
// months (default 3), starting at the current month.
//
// The estimate is a flat approximation: weekly subscriptions count as
// four charges per month, yearly ones land on their renewal calendar month
// with the year ignored, and billing-cycle drift, leap months and mid-cycle
// cancellation are not modeled.
func (s *Service) ProjectedRecurring(ctx context.Context, ownerID int64, monthsAhead int) ([]RecurringForecast, error) {
	if monthsAhead <= 0 {
		monthsAhead = DefaultRecurringMonths
	}

	subs, err := s.transactionsByRole(ctx, ownerID, core.RoleSubscription)
	if err != nil {
		return nil, err
	}
	loans, err := s.transactionsByRole(ctx, ownerID, core.RoleLoan)
	if err != nil {
		return nil, err
	}

	// EMI amounts are month-independent, sum them once.
	var emiTotal core.Money
	for _, t := range loans {
		emiTotal = emiTotal.Add(t.Meta.LoanOrDefault().EMIAmount)
	}

	current := core.MonthStart(s.now())
	out := make([]RecurringForecast, 0, monthsAhead)
	for i := 0; i < monthsAhead; i++ {
		month := core.AddMonths(current, i)
		var subTotal core.Money
		for _, t := range subs {
			subTotal = subTotal.Add(subscriptionShare(t, month))
		}
		out = append(out, RecurringForecast{
			Month:         core.MonthKey(month),
			Subscriptions: subTotal,
			Loans:         emiTotal,
			Total:         subTotal.Add(emiTotal),
		})
	}
	return out, nil
}

// ProjectedSubscriptionSpend is the subscription-scoped forecast over
// monthsAhead months (default 12).
func (s *Service) ProjectedSubscriptionSpend(ctx context.Context, ownerID int64, monthsAhead int) ([]SubscriptionForecast, error) {
	if monthsAhead <= 0 {
		monthsAhead = DefaultForecastMonths
	}

	subs, err := s.transactionsByRole(ctx, ownerID, core.RoleSubscription)
	if err != nil {
		return nil, err
	}

	current := core.MonthStart(s.now())
	out := make([]SubscriptionForecast, 0, monthsAhead)
	for i := 0; i < monthsAhead; i++ {
		month := core.AddMonths(current, i)
		var total core.Money
		for _, t := range subs {
			total = total.Add(subscriptionShare(t, month))
		}
		out = append(out, SubscriptionForecast{
			Month:      core.MonthKey(month),
			MonthLabel: core.MonthLabel(month),
			Amount:     total,
			Count:      len(subs),
		})
	}
	return out, nil
}

// subscriptionShare is the amount one subscription contributes to a
// projected month, scaled by its frequency.
func subscriptionShare(t core.Transaction, month time.Time) core.Money {
	sub := t.Meta.SubscriptionOrDefault()
	switch sub.Frequency {
	case core.FrequencyWeekly:
		return t.Amount.Scale(4)
	case core.FrequencyYearly:
		if renewalMonth(t, sub) == month.Month() {
			return t.Amount
		}
		return core.Money{}
	default:
		return t.Amount
	}
}

// renewalMonth is the calendar month a yearly subscription bills in. When
// the renewal date was never recorded, the transaction's own month is the
// best available anchor.
func renewalMonth(t core.Transaction, sub core.SubscriptionMeta) time.Month {
	if !sub.RenewalDate.IsZero() {
		return sub.RenewalDate.Month()
	}
	return t.OccurredAt.Month()
}

// transactionsByRole collects all transactions in the owner's categories
// with the given role. Owners with no category of that role get an empty
// result, not an error.
func (s *Service) transactionsByRole(ctx context.Context, ownerID int64, role core.CategoryRole) ([]core.Transaction, error) {
	cats, err := s.store.CategoriesByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	var out []core.Transaction
	for _, c := range cats {
		if c.Role != role {
			continue
		}
		txs, err := s.store.TransactionsByCategory(ctx, ownerID, c.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, txs...)
	}
	return out, nil
}
