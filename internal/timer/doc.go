// Package timer is the wake-timer facility: at most one pending one-shot
// timer per alarm id, each carrying the payload the trigger needs.
//
// Timers run on a robfig/cron scheduler with a one-shot schedule, so the
// cron entry never fires twice and is removed once it has fired.
package timer
