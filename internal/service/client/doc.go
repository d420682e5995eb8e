// Package client runs the control commands of the command line: dismiss,
// snooze, read-again, status and reload against a running daemon.
package client
