// Package kv implements the process-local key-value storage the daemon keeps
// its persistent state in: the encoded alarm list, the sequential verse
// cursor and the speech preferences.
//
// FileStore keeps all keys in one YAML document and replaces it atomically on
// every write, so a crash mid-write never leaves a truncated file behind.
package kv
