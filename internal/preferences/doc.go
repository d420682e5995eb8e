// Package preferences reads and writes the user's speech settings kept in
// the process-local key-value store.
package preferences
