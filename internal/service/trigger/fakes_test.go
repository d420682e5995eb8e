package trigger

import (
	"context"
	"sync"
	"time"

	"github.com/covertcloak/scripture-alarm/internal/content"
	"github.com/covertcloak/scripture-alarm/internal/device"
	"github.com/covertcloak/scripture-alarm/internal/domain/alarm"
	"github.com/covertcloak/scripture-alarm/internal/preferences"
	"github.com/covertcloak/scripture-alarm/internal/repository/alarms"
)

type spoken struct {
	text string
	id   string
	done device.UtteranceDone
}

// fakeSynth lets tests decide when initialization and utterances complete.
type fakeSynth struct {
	mu     sync.Mutex
	ready  []func(error)
	speaks []spoken
	stops  int
	rate   float64
	voice  string
}

func (s *fakeSynth) Init(_ context.Context, ready func(error)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ready = append(s.ready, ready)
}

func (s *fakeSynth) SetRate(rate float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rate = rate
}

func (s *fakeSynth) SetPitch(float64) {}

func (s *fakeSynth) SetVoice(voice string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.voice = voice
}

func (s *fakeSynth) Speak(text, id string, done device.UtteranceDone) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.speaks = append(s.speaks, spoken{text: text, id: id, done: done})

	return nil
}

func (s *fakeSynth) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stops++
}

func (s *fakeSynth) Shutdown() {}

func (s *fakeSynth) initCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.ready)
}

// finishInit reports the result of the most recent Init.
func (s *fakeSynth) finishInit(err error) {
	s.mu.Lock()
	ready := s.ready[len(s.ready)-1]
	s.mu.Unlock()

	ready(err)
}

func (s *fakeSynth) utterances() []spoken {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]spoken(nil), s.speaks...)
}

// fakeVolume is an in-memory mixer.
type fakeVolume struct {
	mu    sync.Mutex
	level int
}

func (v *fakeVolume) Current(context.Context) (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.level, nil
}

func (v *fakeVolume) Max(context.Context) (int, error) { return 10, nil }

func (v *fakeVolume) Set(_ context.Context, level int) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.level = level

	return nil
}

func (v *fakeVolume) get() int {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.level
}

// fakeHaptic records vibration requests.
type fakeHaptic struct {
	mu       sync.Mutex
	vibrates []bool
}

func (h *fakeHaptic) Vibrate(_ []time.Duration, repeat bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.vibrates = append(h.vibrates, repeat)
}

func (h *fakeHaptic) Cancel() {}

func (h *fakeHaptic) calls() []bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	return append([]bool(nil), h.vibrates...)
}

// fakePresenter records visible alerts.
type fakePresenter struct {
	mu      sync.Mutex
	visible map[int]device.Alert
	removes int
}

func (p *fakePresenter) Show(_ context.Context, alert device.Alert) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.visible == nil {
		p.visible = make(map[int]device.Alert)
	}

	p.visible[alert.AlarmID] = alert
}

func (p *fakePresenter) Remove(_ context.Context, alarmID int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.visible, alarmID)
	p.removes++
}

func (p *fakePresenter) shown(alarmID int) (device.Alert, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	alert, ok := p.visible[alarmID]

	return alert, ok
}

// fakeScheduler records how sessions ended.
type fakeScheduler struct {
	mu      sync.Mutex
	begun   []int
	rearmed []int
	snoozed []alarm.Payload
	delays  []time.Duration
}

func (s *fakeScheduler) Begin(alarmID int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.begun = append(s.begun, alarmID)
}

func (s *fakeScheduler) Rearm(_ context.Context, alarmID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rearmed = append(s.rearmed, alarmID)

	return nil
}

func (s *fakeScheduler) Snooze(_ context.Context, payload alarm.Payload, delay time.Duration) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snoozed = append(s.snoozed, payload)
	s.delays = append(s.delays, delay)

	return time.Date(2025, time.March, 4, 7, 5, 0, 0, time.Local), nil
}

// fixedResolver always returns the same verse.
type fixedResolver struct {
	verse content.Verse
}

func (r fixedResolver) Resolve(context.Context, alarm.Payload) content.Verse {
	return r.verse
}

// fixedPreferences returns constant speech settings.
type fixedPreferences struct {
	speech preferences.Speech
}

func (p fixedPreferences) Load(context.Context) preferences.Speech {
	return p.speech
}

// recordMap serves records from memory.
type recordMap map[int]alarm.Record

func (m recordMap) Get(_ context.Context, id int) (alarm.Record, error) {
	r, ok := m[id]
	if !ok {
		return alarm.Record{}, alarms.ErrNotFound
	}

	return r, nil
}
