package core

import "testing"

func boolPtr(b bool) *bool { return &b }

func TestResolvePreferences(t *testing.T) {
	tests := []struct {
		name  string
		flags PreferenceFlags
		want  Preferences
	}{
		{
			name:  "all absent means all enabled",
			flags: PreferenceFlags{},
			want:  Preferences{Global: true, SubscriptionReminders: true, DueDateReminders: true},
		},
		{
			name:  "explicit false disables",
			flags: PreferenceFlags{SubscriptionReminders: boolPtr(false)},
			want:  Preferences{Global: true, SubscriptionReminders: false, DueDateReminders: true},
		},
		{
			name:  "explicit true is enabled",
			flags: PreferenceFlags{Global: boolPtr(true), DueDateReminders: boolPtr(true)},
			want:  Preferences{Global: true, SubscriptionReminders: true, DueDateReminders: true},
		},
		{
			name:  "global false wins regardless of the rest",
			flags: PreferenceFlags{Global: boolPtr(false), SubscriptionReminders: boolPtr(true)},
			want:  Preferences{Global: false, SubscriptionReminders: true, DueDateReminders: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolvePreferences(tt.flags); got != tt.want {
				t.Fatalf("ResolvePreferences() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
