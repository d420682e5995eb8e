// Package version exposes build metadata of the scripture-alarm binary.
//
// Version, Commit and BuildTime are injected at build time via Go ldflags.
package version
