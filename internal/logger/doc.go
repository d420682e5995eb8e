// Package logger holds the process-wide zap logger of scripture-alarm.
//
// Components take a context and log through it, so a firing session carries
// its alarm and session ids on every entry. The daemon may add a rotating
// JSON file next to the console output.
package logger
