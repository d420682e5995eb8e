package playback

import (
	"context"
	"sync"
	"time"

	"github.com/covertcloak/scripture-alarm/internal/device"
)

// fakeVolume is an in-memory mixer.
type fakeVolume struct {
	mu    sync.Mutex
	level int
	max   int
	sets  []int
}

func (v *fakeVolume) Current(context.Context) (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.level, nil
}

func (v *fakeVolume) Max(context.Context) (int, error) {
	return v.max, nil
}

func (v *fakeVolume) Set(_ context.Context, level int) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.level = level
	v.sets = append(v.sets, level)

	return nil
}

func (v *fakeVolume) get() (int, []int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.level, append([]int(nil), v.sets...)
}

// fakeHaptic records vibration calls.
type fakeHaptic struct {
	mu       sync.Mutex
	vibrates []bool
	cancels  int
}

func (h *fakeHaptic) Vibrate(_ []time.Duration, repeat bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.vibrates = append(h.vibrates, repeat)
}

func (h *fakeHaptic) Cancel() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.cancels++
}

// fakeSynth records utterances without speaking.
type fakeSynth struct {
	mu     sync.Mutex
	spoken []string
	stops  int
}

func (s *fakeSynth) Init(_ context.Context, ready func(error)) { ready(nil) }
func (s *fakeSynth) SetRate(float64)                           {}
func (s *fakeSynth) SetPitch(float64)                          {}
func (s *fakeSynth) SetVoice(string)                           {}
func (s *fakeSynth) Shutdown()                                 {}

func (s *fakeSynth) Speak(text, _ string, _ device.UtteranceDone) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.spoken = append(s.spoken, text)

	return nil
}

func (s *fakeSynth) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stops++
}
