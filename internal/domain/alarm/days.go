package alarm

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Days is a set of weekdays stored as a bit mask (bit N is time.Weekday(N)).
// The zero value is the empty set, which marks a one-shot alarm.
type Days uint8

// allDays has a bit for every weekday.
const allDays Days = 1<<7 - 1

// Common weekday sets.
const (
	Weekdays = Days(1<<time.Monday | 1<<time.Tuesday | 1<<time.Wednesday | 1<<time.Thursday | 1<<time.Friday)
	Weekends = Days(1<<time.Saturday | 1<<time.Sunday)
	EveryDay = allDays
)

// errUnknownWeekday is returned by ParseDays for an unrecognised token.
var errUnknownWeekday = errors.New("unknown weekday")

// NewDays builds a set from the given weekdays.
func NewDays(days ...time.Weekday) Days {
	var d Days
	for _, day := range days {
		d = d.With(day)
	}

	return d
}

// With returns a copy of the set that also contains day.
func (d Days) With(day time.Weekday) Days {
	if day < time.Sunday || day > time.Saturday {
		return d
	}

	return d | 1<<day
}

// Has reports whether day is in the set.
func (d Days) Has(day time.Weekday) bool {
	return day >= time.Sunday && day <= time.Saturday && d&(1<<day) != 0
}

// IsEmpty reports whether the set has no weekdays.
func (d Days) IsEmpty() bool {
	return d&allDays == 0
}

// List returns the weekdays in the set, Sunday first.
func (d Days) List() []time.Weekday {
	result := make([]time.Weekday, 0, 7)

	for day := time.Sunday; day <= time.Saturday; day++ {
		if d.Has(day) {
			result = append(result, day)
		}
	}

	return result
}

// String renders the set the way the alarm list shows it.
func (d Days) String() string {
	switch d & allDays {
	case 0:
		return "Once"
	case EveryDay:
		return "Every day"
	case Weekends:
		return "Weekends"
	case Weekdays:
		return "Weekdays"
	}

	names := make([]string, 0, 7)
	for _, day := range d.List() {
		names = append(names, day.String()[:3])
	}

	return strings.Join(names, ", ")
}

// ParseDays parses a comma separated list of weekday names ("mon,wed,fri")
// or one of the shortcuts "once", "daily", "weekdays", "weekends".
func ParseDays(s string) (Days, error) {
	s = strings.ToLower(strings.TrimSpace(s))

	switch s {
	case "", "once":
		return 0, nil
	case "daily", "every day", "everyday":
		return EveryDay, nil
	case "weekdays":
		return Weekdays, nil
	case "weekends":
		return Weekends, nil
	}

	var result Days

	for _, token := range strings.Split(s, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}

		day, ok := parseWeekday(token)
		if !ok {
			return 0, fmt.Errorf("%w: %q", errUnknownWeekday, token)
		}

		result = result.With(day)
	}

	return result, nil
}

// parseWeekday accepts full or three-letter English weekday names.
func parseWeekday(token string) (time.Weekday, bool) {
	for day := time.Sunday; day <= time.Saturday; day++ {
		name := strings.ToLower(day.String())
		if token == name || token == name[:3] {
			return day, true
		}
	}

	return time.Sunday, false
}
