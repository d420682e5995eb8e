package control

import (
	"fmt"
	"strconv"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/covertcloak/scripture-alarm/internal/service/trigger"
	"github.com/covertcloak/scripture-alarm/internal/timer"
)

// SessionStatus describes one active alert.
type SessionStatus struct {
	SessionID string
	AlarmID   int
	Label     string
	State     string
	Reference string
	Text      string
	StartedAt time.Time
	Degraded  bool
}

// TimerStatus describes one armed wake timer.
type TimerStatus struct {
	AlarmID int
	FiresAt time.Time
}

// Status is the reply of the Status call.
type Status struct {
	Sessions []SessionStatus
	Timers   []TimerStatus
}

const (
	fieldSessions  = "sessions"
	fieldTimers    = "timers"
	fieldSessionID = "session_id"
	fieldAlarmID   = "alarm_id"
	fieldLabel     = "label"
	fieldState     = "state"
	fieldReference = "reference"
	fieldText      = "text"
	fieldStartedAt = "started_at"
	fieldDegraded  = "degraded"
	fieldFiresAt   = "fires_at"
)

func statusToStruct(sessions []trigger.SessionInfo, timers []timer.Entry) (*structpb.Struct, error) {
	sessionValues := make([]any, 0, len(sessions))
	for _, s := range sessions {
		sessionValues = append(sessionValues, map[string]any{
			fieldSessionID: s.SessionID,
			fieldAlarmID:   s.AlarmID,
			fieldLabel:     s.Label,
			fieldState:     s.State.String(),
			fieldReference: s.Reference,
			fieldText:      s.Text,
			fieldStartedAt: formatTime(s.StartedAt),
			fieldDegraded:  s.Degraded,
		})
	}

	timerValues := make([]any, 0, len(timers))
	for _, entry := range timers {
		timerValues = append(timerValues, map[string]any{
			fieldAlarmID: entry.Payload.AlarmID,
			fieldFiresAt: formatTime(entry.At),
		})
	}

	return structpb.NewStruct(map[string]any{
		fieldSessions: sessionValues,
		fieldTimers:   timerValues,
	})
}

func statusFromStruct(s *structpb.Struct) (*Status, error) {
	result := new(Status)

	for _, value := range s.GetFields()[fieldSessions].GetListValue().GetValues() {
		fields := value.GetStructValue().GetFields()

		startedAt, err := parseTime(fields[fieldStartedAt].GetStringValue())
		if err != nil {
			return nil, fmt.Errorf("session start time: %w", err)
		}

		result.Sessions = append(result.Sessions, SessionStatus{
			SessionID: fields[fieldSessionID].GetStringValue(),
			AlarmID:   int(fields[fieldAlarmID].GetNumberValue()),
			Label:     fields[fieldLabel].GetStringValue(),
			State:     fields[fieldState].GetStringValue(),
			Reference: fields[fieldReference].GetStringValue(),
			Text:      fields[fieldText].GetStringValue(),
			StartedAt: startedAt,
			Degraded:  fields[fieldDegraded].GetBoolValue(),
		})
	}

	for _, value := range s.GetFields()[fieldTimers].GetListValue().GetValues() {
		fields := value.GetStructValue().GetFields()

		firesAt, err := parseTime(fields[fieldFiresAt].GetStringValue())
		if err != nil {
			return nil, fmt.Errorf("timer fire time: %w", err)
		}

		result.Timers = append(result.Timers, TimerStatus{
			AlarmID: int(fields[fieldAlarmID].GetNumberValue()),
			FiresAt: firesAt,
		})
	}

	return result, nil
}

// snoozeToStruct keys re-fire instants by decimal alarm id.
func snoozeToStruct(snoozed map[int]time.Time) (*structpb.Struct, error) {
	values := make(map[string]any, len(snoozed))
	for id, at := range snoozed {
		values[strconv.Itoa(id)] = formatTime(at)
	}

	return structpb.NewStruct(values)
}

func snoozeFromStruct(s *structpb.Struct) (map[int]time.Time, error) {
	result := make(map[int]time.Time, len(s.GetFields()))

	for key, value := range s.GetFields() {
		id, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("alarm id %q: %w", key, err)
		}

		at, err := parseTime(value.GetStringValue())
		if err != nil {
			return nil, fmt.Errorf("snooze time of alarm %d: %w", id, err)
		}

		result[id] = at
	}

	return result, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	return t.Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}

	return time.Parse(time.RFC3339Nano, s)
}
