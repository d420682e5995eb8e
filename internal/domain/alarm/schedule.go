package alarm

import "time"

// NextFireTime returns the next instant strictly after now at which the
// alarm should fire, computed on now's calendar and location.
//
// The candidate starts at today's hour:minute. A candidate that is not after
// now moves to tomorrow. Recurring alarms then advance day by day until the
// weekday is one of r.Days, which takes at most six more steps.
func NextFireTime(r Record, now time.Time) time.Time {
	candidate := time.Date(now.Year(), now.Month(), now.Day(), r.Hour, r.Minute, 0, 0, now.Location())

	if !candidate.After(now) {
		candidate = candidate.AddDate(0, 0, 1)
	}

	if r.Days.IsEmpty() {
		return candidate
	}

	for range 7 {
		if r.Days.Has(candidate.Weekday()) {
			break
		}

		candidate = candidate.AddDate(0, 0, 1)
	}

	return candidate
}
