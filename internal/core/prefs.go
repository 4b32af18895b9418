package core

// PreferenceFlags is the stored, tri-state form of an owner's notification
// preferences: a nil flag means the owner never touched it.
type PreferenceFlags struct {
	Global                *bool
	SubscriptionReminders *bool
	DueDateReminders      *bool
}

// Preferences is the resolved value object the scheduler works with. The
// absent-means-enabled rule is applied exactly once, here, so downstream
// code never re-implements the "not explicitly false" check.
type Preferences struct {
	Global                bool
	SubscriptionReminders bool
	DueDateReminders      bool
}

// ResolvePreferences applies defaults: every flag is enabled unless stored
// as an explicit false.
func ResolvePreferences(f PreferenceFlags) Preferences {
	return Preferences{
		Global:                f.Global == nil || *f.Global,
		SubscriptionReminders: f.SubscriptionReminders == nil || *f.SubscriptionReminders,
		DueDateReminders:      f.DueDateReminders == nil || *f.DueDateReminders,
	}
}
