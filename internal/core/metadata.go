package core

import (
	"encoding/json"
	"time"
)

// Frequency is the billing cadence of a subscription.
type Frequency string

const (
	FrequencyMonthly Frequency = "monthly"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyYearly  Frequency = "yearly"
)

// OrDefault returns the frequency, falling back to monthly for absent or
// unknown values. Partial metadata is defaulted, never rejected.
func (f Frequency) OrDefault() Frequency {
	switch f {
	case FrequencyMonthly, FrequencyWeekly, FrequencyYearly:
		return f
	default:
		return FrequencyMonthly
	}
}

type (
	// SubscriptionMeta describes a recurring subscription transaction.
	SubscriptionMeta struct {
		Provider    string    `json:"provider,omitempty"`
		RenewalDate time.Time `json:"renewalDate,omitempty"`
		Remind      bool      `json:"remind,omitempty"`
		Frequency   Frequency `json:"frequency,omitempty"`
	}

	// LoanMeta describes an EMI/loan transaction. EMIAmount, not the
	// transaction amount, drives cost projections.
	LoanMeta struct {
		Lender     string `json:"lender,omitempty"`
		EMIAmount  Money  `json:"emiAmount"`
		TermMonths int    `json:"termMonths,omitempty"`
	}

	// MoneyLentMeta describes money lent to someone, with the due date the
	// ageing classifier buckets on.
	MoneyLentMeta struct {
		Borrower string    `json:"borrowerName"`
		DueDate  time.Time `json:"dueDate,omitempty"`
	}

	// Metadata is the tagged union carried by a transaction, keyed by its
	// category role. Custom categories use the Extra bag.
	Metadata struct {
		Subscription *SubscriptionMeta `json:"subscription,omitempty"`
		Loan         *LoanMeta         `json:"loan,omitempty"`
		MoneyLent    *MoneyLentMeta    `json:"moneyLent,omitempty"`
		Extra        map[string]string `json:"extra,omitempty"`
	}
)

// IsZero reports whether no variant and no extra fields are set.
func (m Metadata) IsZero() bool {
	return m.Subscription == nil && m.Loan == nil && m.MoneyLent == nil && len(m.Extra) == 0
}

// SubscriptionOrDefault returns the subscription variant with all defaults
// applied. Absent metadata yields a zero value with a monthly frequency.
func (m Metadata) SubscriptionOrDefault() SubscriptionMeta {
	if m.Subscription == nil {
		return SubscriptionMeta{Frequency: FrequencyMonthly}
	}
	s := *m.Subscription
	s.Frequency = s.Frequency.OrDefault()
	return s
}

// LoanOrDefault returns the loan variant, zero-valued when absent.
func (m Metadata) LoanOrDefault() LoanMeta {
	if m.Loan == nil {
		return LoanMeta{}
	}
	return *m.Loan
}

// MoneyLentOrDefault returns the money-lent variant, zero-valued when absent.
func (m Metadata) MoneyLentOrDefault() MoneyLentMeta {
	if m.MoneyLent == nil {
		return MoneyLentMeta{}
	}
	return *m.MoneyLent
}

// HasDueDate reports whether a due date is present. Transactions without one
// never enter ageing buckets.
func (m Metadata) HasDueDate() bool {
	return m.MoneyLent != nil && !m.MoneyLent.DueDate.IsZero()
}

// Encode serializes the metadata for storage. A zero metadata encodes as nil
// so the column stays NULL.
func (m Metadata) Encode() []byte {
	if m.IsZero() {
		return nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil
	}
	return b
}

// DecodeMetadata is a best-effort decoder: malformed or empty input yields a
// zero Metadata rather than an error, so a bad record degrades to "no
// analytics behavior" instead of failing a whole batch.
func DecodeMetadata(raw []byte) Metadata {
	if len(raw) == 0 {
		return Metadata{}
	}
	var m Metadata
	if err := json.Unmarshal(raw, &m); err != nil {
		return Metadata{}
	}
	return m
}
