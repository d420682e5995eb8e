// Package trigger runs alerts.
//
// A Session is started for every elapsed alarm timer and moves through
// Idle, Alerting, Speaking and Sustained until it is dismissed or snoozed.
// All session state is owned by one goroutine that consumes an ordered
// event queue; synthesizer callbacks and user requests are posted to that
// queue rather than touching the session directly. Dismissal tears every
// effect down before it returns.
//
// The Controller keeps at most one session per alarm id and connects
// session endings to the scheduler: a dismissed alarm is re-armed or
// disabled, a snoozed one gets a one-shot timer.
package trigger
