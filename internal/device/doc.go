// Package device defines the hardware collaborators an alert drives
// (vibration, audio volume, speech synthesis and the on-screen alert) and
// provides implementations for ordinary Linux hosts.
//
// Callbacks from the synthesizer arrive on goroutines owned by the
// implementation; consumers must not assume any particular goroutine.
package device
