// Package daemon wires the alarm process together: state file, scheduler,
// wake timers, trigger controller, host devices and the control API.
package daemon
