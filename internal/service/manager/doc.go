// Package manager implements the alarm and preference editing commands.
//
// Edits go straight to the state file shared with the daemon. After each
// change the daemon is asked to reload; when it is not running the change
// is picked up at its next start.
package manager
