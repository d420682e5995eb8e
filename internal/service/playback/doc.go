// Package playback drives the effects of one alert: the vibration cue, the
// gradual volume ramp and speech. Stop releases all of them and puts the
// system volume back where it was before the first alert began.
package playback
