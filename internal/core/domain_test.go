package core

import (
	"testing"
	"time"
)

func TestRoleForName(t *testing.T) {
	cases := []struct {
		name string
		want CategoryRole
	}{
		{"Subscription", RoleSubscription},
		{"EMI/Loan", RoleLoan},
		{"Money Lent", RoleMoneyLent},
		{" Subscription ", RoleSubscription},
		{"subscription", RoleGeneric}, // names are case-sensitive by convention
		{"Groceries", RoleGeneric},
		{"", RoleGeneric},
	}
	for _, tc := range cases {
		if got := RoleForName(tc.name); got != tc.want {
			t.Errorf("RoleForName(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestParseMonth(t *testing.T) {
	got, err := ParseMonth("2024-12")
	if err != nil {
		t.Fatalf("ParseMonth: %v", err)
	}
	want := time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("ParseMonth = %v, want %v", got, want)
	}

	for _, bad := range []string{"2024-13", "2024", "dec 2024", ""} {
		if _, err := ParseMonth(bad); err == nil {
			t.Errorf("ParseMonth(%q) expected error", bad)
		}
	}
}

func TestMonthArithmetic(t *testing.T) {
	jan := time.Date(2025, 1, 31, 15, 4, 5, 0, time.UTC)

	start := MonthStart(jan)
	if want := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC); !start.Equal(want) {
		t.Fatalf("MonthStart = %v, want %v", start, want)
	}

	// No end-of-month drift: stepping across February lands on March 1st.
	if got := AddMonths(start, 2); got.Month() != time.March || got.Day() != 1 {
		t.Fatalf("AddMonths(+2) = %v, want March 1st", got)
	}
	if got := AddMonths(start, -1); got.Year() != 2024 || got.Month() != time.December {
		t.Fatalf("AddMonths(-1) = %v, want December 2024", got)
	}

	if got := MonthKey(start); got != "2025-01" {
		t.Errorf("MonthKey = %q, want 2025-01", got)
	}
	if got := MonthLabel(start); got != "Jan 2025" {
		t.Errorf("MonthLabel = %q, want Jan 2025", got)
	}
}
