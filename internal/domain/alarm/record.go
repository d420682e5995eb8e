package alarm

import (
	"errors"
	"fmt"
)

// Record describes one configured alarm. Records are values: an edit
// replaces the whole record in the store.
type Record struct {
	// ID is unique within the store and allocated by it.
	ID int
	// Hour is the local hour of day (0-23).
	Hour int
	// Minute is the minute of the hour (0-59).
	Minute int
	// Enabled alarms are scheduled; disabled ones never are.
	Enabled bool
	// Label is free-form text shown with the alarm.
	Label string
	// Days lists the weekdays a recurring alarm fires on; empty means one-shot.
	Days Days
	// Content selects the scripture read when the alarm fires.
	Content ContentSelector
	// Sequential cycles through the curated list instead of picking at random.
	Sequential bool
}

// Payload is what a wake timer carries back when it fires: exactly the data
// needed to pick content without reading the store.
type Payload struct {
	// AlarmID identifies the alarm that fired.
	AlarmID int
	// Content is the selector copied from the record.
	Content ContentSelector
	// Sequential is copied from the record.
	Sequential bool
}

// ErrInvalidRecord wraps every validation failure of a Record.
var ErrInvalidRecord = errors.New("invalid alarm record")

// Validate checks field ranges and the content selector.
func (r Record) Validate() error {
	if r.Hour < 0 || r.Hour > 23 {
		return fmt.Errorf("%w: hour %d out of range", ErrInvalidRecord, r.Hour)
	}

	if r.Minute < 0 || r.Minute > 59 {
		return fmt.Errorf("%w: minute %d out of range", ErrInvalidRecord, r.Minute)
	}

	if err := r.Content.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}

	return nil
}

// IsRecurring reports whether the alarm repeats on some weekdays.
func (r Record) IsRecurring() bool {
	return !r.Days.IsEmpty()
}

// Payload returns the timer payload for this record.
func (r Record) Payload() Payload {
	return Payload{
		AlarmID:    r.ID,
		Content:    r.Content,
		Sequential: r.Sequential,
	}
}

// TimeString formats the alarm time on a 12-hour clock, e.g. "7:05 AM".
func (r Record) TimeString() string {
	period := "AM"
	if r.Hour >= 12 {
		period = "PM"
	}

	displayHour := r.Hour % 12
	if displayHour == 0 {
		displayHour = 12
	}

	return fmt.Sprintf("%d:%02d %s", displayHour, r.Minute, period)
}
