// Package scheduler keeps the wake timers in step with the stored alarms.
//
// It owns the rule that every enabled alarm has exactly one pending timer at
// its next fire instant, and that disabled or removed alarms have none. The
// timers themselves do not survive a restart, so RescheduleAll rebuilds them
// from the store when the daemon starts.
package scheduler
